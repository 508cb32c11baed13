package service

import (
	"context"
	"errors"

	commonerrors "github.com/AlibekovAA/linkmark/internal/common/errors"
	"github.com/AlibekovAA/linkmark/internal/common/jwtverify"
	"github.com/AlibekovAA/linkmark/internal/common/logger"
	identitydomain "github.com/AlibekovAA/linkmark/internal/identity/domain"
	"github.com/AlibekovAA/linkmark/internal/observability/metrics"
	userdomain "github.com/AlibekovAA/linkmark/internal/user/domain"
	userrepo "github.com/AlibekovAA/linkmark/internal/user/repository"
)

type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

// Guard resolves bearer tokens into identities and enforces ownership.
type Guard struct {
	jwtSecret []byte
	revoked   RevocationChecker
	users     UserLookup
	log       *logger.Logger
}

type GuardOption func(*Guard)

// WithRevocationChecker rejects tokens revoked through logout.
func WithRevocationChecker(checker RevocationChecker) GuardOption {
	return func(g *Guard) { g.revoked = checker }
}

// WithUserLookup rejects tokens whose subject no longer exists.
func WithUserLookup(users UserLookup) GuardOption {
	return func(g *Guard) { g.users = users }
}

func NewGuard(jwtSecret string, log *logger.Logger, opts ...GuardOption) *Guard {
	g := &Guard{jwtSecret: []byte(jwtSecret), log: log}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) Authenticate(ctx context.Context, token string) (identitydomain.Identity, error) {
	if token == "" {
		metrics.AuthenticationFailures.WithLabelValues("missing").Inc()
		return identitydomain.Identity{}, commonerrors.ErrUnauthorized
	}

	claims, err := jwtverify.ParseToken(token, g.jwtSecret)
	if err != nil {
		metrics.AuthenticationFailures.WithLabelValues("invalid").Inc()
		g.log.WithFields(ctx, logger.Fields{
			"action": "authenticate_invalid_token",
		}).Debugf("token rejected: %v", err)
		return identitydomain.Identity{}, commonerrors.ErrUnauthorized.WithCause(err)
	}

	if g.revoked != nil {
		revoked, err := g.revoked.IsRevoked(ctx, claims.JTI)
		if err != nil {
			g.log.WithFields(ctx, logger.Fields{
				"user_id": claims.UserID,
				"action":  "authenticate_revocation_check_failed",
			}).Errorf("revocation check failed: %v", err)
			return identitydomain.Identity{}, commonerrors.ErrDatabaseError.WithCause(err)
		}
		if revoked {
			metrics.AuthenticationFailures.WithLabelValues("revoked").Inc()
			return identitydomain.Identity{}, commonerrors.ErrUnauthorized.WithCause(commonerrors.ErrTokenRevoked)
		}
	}

	identity := identitydomain.Identity{
		UserID:    userdomain.ID(claims.UserID),
		Email:     claims.Email,
		TokenID:   claims.JTI,
		ExpiresAt: claims.ExpiresAt,
	}

	if g.users != nil {
		user, err := g.users.FindByID(ctx, identity.UserID)
		if err != nil {
			if errors.Is(err, userrepo.ErrUserNotFound) {
				metrics.AuthenticationFailures.WithLabelValues("unknown_user").Inc()
				return identitydomain.Identity{}, commonerrors.ErrUnauthorized
			}
			return identitydomain.Identity{}, commonerrors.ErrDatabaseError.WithCause(err)
		}
		identity.Email = user.Email
	}

	return identity, nil
}

// Authorize must only be called once the target is known to exist.
func (g *Guard) Authorize(identity identitydomain.Identity, ownerID userdomain.ID) error {
	if !identity.Owns(ownerID) {
		return commonerrors.ErrForbidden
	}
	return nil
}
