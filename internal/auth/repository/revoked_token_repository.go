package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	authdomain "github.com/AlibekovAA/linkmark/internal/auth/domain"
	"github.com/AlibekovAA/linkmark/internal/common/constants"
	"github.com/AlibekovAA/linkmark/internal/common/db"
)

type RevokedTokenRepository interface {
	Revoke(ctx context.Context, token authdomain.RevokedToken) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type PgRevokedTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPgRevokedTokenRepository(pool *pgxpool.Pool) *PgRevokedTokenRepository {
	return &PgRevokedTokenRepository{pool: pool}
}

func (r *PgRevokedTokenRepository) Revoke(ctx context.Context, token authdomain.RevokedToken) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO revoked_tokens (jti, user_id, expires_at, revoked_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (jti) DO NOTHING`,
		token.JTI,
		token.UserID,
		token.ExpiresAt,
	)
	return db.HandleExecError(err, "revoke token", start)
}

func (r *PgRevokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	var exists bool
	err := db.Retry(ctx, "check revoked token", db.DefaultRetryConfig, func(ctx context.Context) error {
		return r.pool.QueryRow(
			ctx,
			`SELECT EXISTS(
				SELECT 1 FROM revoked_tokens
				WHERE jti = $1 AND expires_at > NOW()
			)`,
			jti,
		).Scan(&exists)
	})
	if err != nil {
		return false, db.HandleQueryError(err, nil, "check revoked token", start)
	}
	db.MeasureQueryDuration("check revoked token", start)
	return exists, nil
}

func (r *PgRevokedTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	res, err := r.pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, db.HandleExecError(err, "delete expired revoked tokens", start)
	}
	db.MeasureQueryDuration("delete expired revoked tokens", start)
	return res.RowsAffected(), nil
}
