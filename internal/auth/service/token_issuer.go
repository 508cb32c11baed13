package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	authdomain "github.com/AlibekovAA/linkmark/internal/auth/domain"
	"github.com/AlibekovAA/linkmark/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/linkmark/internal/common/crypto"
	userdomain "github.com/AlibekovAA/linkmark/internal/user/domain"
)

type TokenIssuer struct {
	jwtSecret      []byte
	idGenerator    commoncrypto.IDGenerator
	clock          clock.Clock
	accessTokenTTL time.Duration
}

func NewTokenIssuer(
	jwtSecret string,
	idGenerator commoncrypto.IDGenerator,
	accessTokenTTL time.Duration,
	clock clock.Clock,
) *TokenIssuer {
	return &TokenIssuer{
		jwtSecret:      []byte(jwtSecret),
		idGenerator:    idGenerator,
		clock:          clock,
		accessTokenTTL: accessTokenTTL,
	}
}

func (ti *TokenIssuer) IssueAccessToken(user userdomain.User) (authdomain.AccessToken, error) {
	jti, err := ti.idGenerator.NewID()
	if err != nil {
		return authdomain.AccessToken{}, err
	}

	now := ti.clock.Now()
	expiresAt := now.Add(ti.accessTokenTTL)
	claims := jwt.MapClaims{
		"sub":   string(user.ID),
		"email": user.Email,
		"jti":   jti,
		"exp":   expiresAt.Unix(),
		"iat":   now.Unix(),
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.jwtSecret)
	if err != nil {
		return authdomain.AccessToken{}, err
	}

	incrementAccessTokensIssued()
	return authdomain.AccessToken{
		Token:     tokenString,
		TokenType: authdomain.TokenTypeBearer,
		JTI:       jti,
		ExpiresAt: expiresAt,
	}, nil
}
