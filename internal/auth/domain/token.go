package domain

import "time"

const TokenTypeBearer = "bearer"

type AccessToken struct {
	Token     string
	TokenType string
	JTI       string
	ExpiresAt time.Time
}

// RevokedToken marks a token id as unusable until ExpiresAt, after which the
// token would be rejected on expiry anyway.
type RevokedToken struct {
	JTI       string
	UserID    string
	ExpiresAt time.Time
}
