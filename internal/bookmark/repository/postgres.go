package repository

import (
	"context"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/linkmark/internal/bookmark/domain"
	"github.com/AlibekovAA/linkmark/internal/common/constants"
	"github.com/AlibekovAA/linkmark/internal/common/db"
	userdomain "github.com/AlibekovAA/linkmark/internal/user/domain"
)

const shortCodeConstraint = "bookmarks_short_code_key"

const shortCodeExists = `SELECT EXISTS(SELECT 1 FROM bookmarks WHERE short_code = $1)`

const selectBookmark = `SELECT b.id, b.body, b.url, b.short_code, b.visits, b.created_at, b.updated_at,
		b.user_id, u.email, u.created_at
	 FROM bookmarks b
	 JOIN users u ON u.id = b.user_id`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) List(ctx context.Context, query domain.ListQuery) ([]domain.Bookmark, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		selectBookmark+`
	 WHERE b.user_id = $1
	   AND (b.body ILIKE $2 OR b.url ILIKE $2 OR b.short_code ILIKE $2)
	 ORDER BY b.id ASC
	 LIMIT $3 OFFSET $4`,
		string(query.UserID),
		containsPattern(query.Search),
		query.Limit,
		query.Offset,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, ErrBookmarkNotFound, "list bookmarks", start)
	}
	defer rows.Close()

	bookmarks := make([]domain.Bookmark, 0, query.Limit)
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, db.HandleQueryError(err, ErrBookmarkNotFound, "scan bookmark", start)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, ErrBookmarkNotFound, "list bookmarks", start)
	}

	db.MeasureQueryDuration("list bookmarks", start)
	return bookmarks, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.Bookmark, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	b, err := scanBookmark(r.pool.QueryRow(ctx, selectBookmark+` WHERE b.id = $1`, int64(id)))
	if err := db.HandleQueryError(err, ErrBookmarkNotFound, "find bookmark by id", start); err != nil {
		return domain.Bookmark{}, err
	}
	return b, nil
}

func (r *PgRepository) Stats(ctx context.Context, userID userdomain.ID) ([]domain.Stat, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, url, short_code, visits FROM bookmarks WHERE user_id = $1 ORDER BY id ASC`,
		string(userID),
	)
	if err != nil {
		return nil, db.HandleQueryError(err, ErrBookmarkNotFound, "bookmark stats", start)
	}
	defer rows.Close()

	stats := []domain.Stat{}
	for rows.Next() {
		var s domain.Stat
		if err := rows.Scan(&s.ID, &s.URL, &s.ShortCode, &s.Visits); err != nil {
			return nil, db.HandleQueryError(err, ErrBookmarkNotFound, "scan bookmark stat", start)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, ErrBookmarkNotFound, "bookmark stats", start)
	}

	db.MeasureQueryDuration("bookmark stats", start)
	return stats, nil
}

func (r *PgRepository) IncrementVisits(ctx context.Context, code string) (domain.Visit, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	var visit domain.Visit
	err := db.Retry(ctx, "increment visits", db.DefaultRetryConfig, func(ctx context.Context) error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE bookmarks SET visits = visits + 1 WHERE short_code = $1 RETURNING url, visits`,
			code,
		).Scan(&visit.URL, &visit.Visits)
	})
	if err := db.HandleQueryError(err, ErrBookmarkNotFound, "increment visits", start); err != nil {
		return domain.Visit{}, err
	}
	return visit, nil
}

func (r *PgRepository) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	var exists bool
	err := r.pool.QueryRow(ctx, shortCodeExists, code).Scan(&exists)
	if err := db.HandleQueryError(err, nil, "check short code", start); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &pgTx{tx: tx})
	})
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) LockURL(ctx context.Context, url string) error {
	start := time.Now()
	_, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, url)
	return db.HandleExecError(err, "lock bookmark url", start)
}

func (t *pgTx) URLExists(ctx context.Context, url string) (bool, error) {
	start := time.Now()
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bookmarks WHERE url = $1)`, url).Scan(&exists)
	if err := db.HandleQueryError(err, nil, "check bookmark url", start); err != nil {
		return false, err
	}
	return exists, nil
}

func (t *pgTx) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	start := time.Now()
	var exists bool
	err := t.tx.QueryRow(ctx, shortCodeExists, code).Scan(&exists)
	if err := db.HandleQueryError(err, nil, "check short code", start); err != nil {
		return false, err
	}
	return exists, nil
}

func (t *pgTx) Insert(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	start := time.Now()
	var id domain.ID
	err := t.tx.QueryRow(
		ctx,
		`INSERT INTO bookmarks (body, url, short_code, visits, user_id)
		 VALUES ($1, $2, $3, 0, $4)
		 RETURNING id`,
		b.Body,
		b.URL,
		b.ShortCode,
		string(b.UserID),
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err, shortCodeConstraint) {
			db.MeasureQueryDuration("insert bookmark", start)
			return domain.Bookmark{}, ErrShortCodeTaken
		}
		return domain.Bookmark{}, db.HandleQueryError(err, ErrBookmarkNotFound, "insert bookmark", start)
	}
	db.MeasureQueryDuration("insert bookmark", start)

	return t.find(ctx, id, "find inserted bookmark", "")
}

func (t *pgTx) FindByIDForUpdate(ctx context.Context, id domain.ID) (domain.Bookmark, error) {
	return t.find(ctx, id, "find bookmark for update", " FOR UPDATE OF b")
}

func (t *pgTx) find(ctx context.Context, id domain.ID, operation, suffix string) (domain.Bookmark, error) {
	start := time.Now()
	b, err := scanBookmark(t.tx.QueryRow(ctx, selectBookmark+` WHERE b.id = $1`+suffix, int64(id)))
	if err := db.HandleQueryError(err, ErrBookmarkNotFound, operation, start); err != nil {
		return domain.Bookmark{}, err
	}
	return b, nil
}

func (t *pgTx) Update(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	start := time.Now()
	tag, err := t.tx.Exec(
		ctx,
		`UPDATE bookmarks SET body = $2, url = $3, updated_at = NOW() WHERE id = $1`,
		int64(b.ID),
		b.Body,
		b.URL,
	)
	if err := db.HandleExecError(err, "update bookmark", start); err != nil {
		return domain.Bookmark{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.Bookmark{}, ErrBookmarkNotFound
	}
	return t.find(ctx, b.ID, "find updated bookmark", "")
}

func (t *pgTx) Delete(ctx context.Context, id domain.ID) error {
	start := time.Now()
	tag, err := t.tx.Exec(ctx, `DELETE FROM bookmarks WHERE id = $1`, int64(id))
	if err := db.HandleExecError(err, "delete bookmark", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBookmark(row rowScanner) (domain.Bookmark, error) {
	var b domain.Bookmark
	err := row.Scan(
		&b.ID,
		&b.Body,
		&b.URL,
		&b.ShortCode,
		&b.Visits,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.UserID,
		&b.Owner.Email,
		&b.Owner.CreatedAt,
	)
	if err != nil {
		return domain.Bookmark{}, err
	}
	b.Owner.ID = b.UserID
	return b, nil
}
