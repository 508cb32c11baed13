package service

import (
	"context"
	"errors"

	authdomain "github.com/AlibekovAA/linkmark/internal/auth/domain"
	authrepo "github.com/AlibekovAA/linkmark/internal/auth/repository"
	"github.com/AlibekovAA/linkmark/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/linkmark/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/linkmark/internal/common/errors"
	"github.com/AlibekovAA/linkmark/internal/common/logger"
	identitydomain "github.com/AlibekovAA/linkmark/internal/identity/domain"
	userdomain "github.com/AlibekovAA/linkmark/internal/user/domain"
	userrepo "github.com/AlibekovAA/linkmark/internal/user/repository"
)

type AuthService struct {
	repo        userrepo.Repository
	revokedRepo authrepo.RevokedTokenRepository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	issuer      *TokenIssuer
	clock       clock.Clock
	log         *logger.Logger
}

func NewAuthService(
	repo userrepo.Repository,
	revokedRepo authrepo.RevokedTokenRepository,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	issuer *TokenIssuer,
	clock clock.Clock,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		revokedRepo: revokedRepo,
		hasher:      hasher,
		idGenerator: idGenerator,
		issuer:      issuer,
		clock:       clock,
		log:         log,
	}
}

type RegisterInput struct {
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (userdomain.User, error) {
	if err := validateRegistration(input.Email, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return userdomain.User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return userdomain.User{}, commonerrors.NewInternalError("PASSWORD_HASH_FAILED", "failed to hash password", err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return userdomain.User{}, commonerrors.NewInternalError("ID_GENERATION_FAILED", "failed to generate user id", err)
	}

	user, err := s.repo.Create(ctx, userdomain.User{
		ID:           userdomain.ID(id),
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrEmailAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  input.Email,
				"action": "register_email_exists",
			}).Warn("register failed: email already exists")
			return userdomain.User{}, ErrEmailTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_create_failed",
		}).Errorf("register failed: %v", err)
		return userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	incrementUsersRegistered()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "register_success",
	}).Info("register success")

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (authdomain.AccessToken, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			incrementLoginFailures("unknown_email")
			s.log.WithFields(ctx, logger.Fields{
				"action": "login_user_not_found",
			}).Warn("login failed: not found")
			return authdomain.AccessToken{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"action": "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		return authdomain.AccessToken{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		incrementLoginFailures("invalid_password")
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "login_invalid_password",
		}).Warn("login failed: invalid password")
		return authdomain.AccessToken{}, ErrInvalidCredentials
	}

	token, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return authdomain.AccessToken{}, commonerrors.NewInternalError("TOKEN_ISSUE_FAILED", "failed to issue access token", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "login_success",
	}).Info("login success")

	return token, nil
}

// Logout revokes the token the identity was resolved from until it expires.
func (s *AuthService) Logout(ctx context.Context, identity identitydomain.Identity) error {
	expiresAt := identity.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = s.clock.Now().Add(s.issuer.accessTokenTTL)
	}

	err := s.revokedRepo.Revoke(ctx, authdomain.RevokedToken{
		JTI:       identity.TokenID,
		UserID:    string(identity.UserID),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(identity.UserID),
			"action":  "logout_revoke_failed",
		}).Errorf("logout failed: %v", err)
		return commonerrors.ErrDatabaseError.WithCause(err)
	}

	incrementAccessTokensRevoked()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(identity.UserID),
		"action":  "logout_success",
	}).Info("access token revoked")
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (userdomain.User, error) {
	user, err := s.repo.FindByID(ctx, userdomain.ID(id))
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return userdomain.User{}, commonerrors.ErrUserNotFound.WithMessage("User with id: " + id + " does not exist")
		}
		return userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return user, nil
}
