package repository

import (
	"context"
	"sync"
	"time"

	authdomain "github.com/AlibekovAA/linkmark/internal/auth/domain"
)

type MemoryRevokedTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]authdomain.RevokedToken
	now    func() time.Time
}

func NewMemoryRevokedTokenRepository(now func() time.Time) *MemoryRevokedTokenRepository {
	if now == nil {
		now = time.Now
	}
	return &MemoryRevokedTokenRepository{
		tokens: make(map[string]authdomain.RevokedToken),
		now:    now,
	}
}

func (r *MemoryRevokedTokenRepository) Revoke(_ context.Context, token authdomain.RevokedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[token.JTI]; !exists {
		r.tokens[token.JTI] = token
	}
	return nil
}

func (r *MemoryRevokedTokenRepository) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[jti]
	return ok && token.ExpiresAt.After(r.now()), nil
}

func (r *MemoryRevokedTokenRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var deleted int64
	for jti, token := range r.tokens {
		if token.ExpiresAt.Before(now) {
			delete(r.tokens, jti)
			deleted++
		}
	}
	return deleted, nil
}
