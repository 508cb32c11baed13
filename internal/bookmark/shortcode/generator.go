package shortcode

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/AlibekovAA/linkmark/internal/common/constants"
	"github.com/AlibekovAA/linkmark/internal/observability/metrics"
)

const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var ErrExhausted = errors.New("short code space exhausted")

// Checker reports whether a code is already assigned. Callers pass the
// transaction that will insert the bookmark.
type Checker interface {
	ShortCodeExists(ctx context.Context, code string) (bool, error)
}

type Generator struct {
	length      int
	maxAttempts int
	intN        func(n int) int
}

type Option func(*Generator)

// WithSource replaces the random index source, e.g. for deterministic tests.
func WithSource(intN func(n int) int) Option {
	return func(g *Generator) { g.intN = intN }
}

func NewGenerator(length, maxAttempts int, opts ...Option) *Generator {
	if length <= 0 {
		length = constants.ShortCodeLength
	}
	if maxAttempts <= 0 {
		maxAttempts = constants.ShortCodeMaxAttempts
	}
	g := &Generator{
		length:      length,
		maxAttempts: maxAttempts,
		intN:        rand.IntN,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Length() int {
	return g.length
}

// Candidate draws one code uniformly at random without checking uniqueness.
func (g *Generator) Candidate() string {
	b := make([]byte, g.length)
	for i := range b {
		b[i] = Alphabet[g.intN(len(Alphabet))]
	}
	return string(b)
}

// Generate draws candidates until checker reports one as free. It gives up
// with ErrExhausted after maxAttempts collisions.
func (g *Generator) Generate(ctx context.Context, checker Checker) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code := g.Candidate()
		exists, err := checker.ShortCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check short code: %w", err)
		}
		if !exists {
			metrics.ShortCodeAttempts.Observe(float64(attempt))
			return code, nil
		}
		metrics.ShortCodeCollisions.Inc()
	}

	metrics.ShortCodeAttempts.Observe(float64(g.maxAttempts))
	return "", fmt.Errorf("%w: no free code after %d attempts", ErrExhausted, g.maxAttempts)
}

func Valid(code string) bool {
	if code == "" {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}
