package jwtverify

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	commonerrors "github.com/AlibekovAA/linkmark/internal/common/errors"
)

type Claims struct {
	UserID    string
	Email     string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ParseToken verifies an HS256 token signed with secret and extracts the
// access token claims. Expired tokens are rejected.
func ParseToken(tokenString string, secret []byte) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, commonerrors.ErrInvalidTokenSigningMethod
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, commonerrors.ErrInvalidTokenSigningMethod) {
			return Claims{}, commonerrors.ErrInvalidTokenSigningMethod.WithCause(err)
		}
		return Claims{}, commonerrors.ErrInvalidToken.WithCause(err)
	}
	if !parsed.Valid {
		return Claims{}, commonerrors.ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, commonerrors.ErrInvalidTokenClaims
	}

	sub, _ := mapClaims["sub"].(string)
	jti, _ := mapClaims["jti"].(string)
	email, _ := mapClaims["email"].(string)
	if sub == "" || jti == "" {
		return Claims{}, commonerrors.ErrMissingTokenClaims
	}

	claims := Claims{
		UserID: sub,
		Email:  email,
		JTI:    jti,
	}

	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	return claims, nil
}
