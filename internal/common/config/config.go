package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AlibekovAA/linkmark/internal/common/constants"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidJWTSecret   = errors.New("JWT_SECRET must be at least 32 bytes")
	ErrInvalidStorage     = errors.New("BOOKMARKS_STORAGE must be postgres or memory")
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type AuthConfig struct {
	HTTPPort       string
	DatabaseURL    string
	JWTSecret      string
	AccessTokenTTL time.Duration
	RequestTimeout time.Duration
	CORSOrigins    []string
	LogDir         string
	LogLevel       string
}

type BookmarksConfig struct {
	HTTPPort             string
	DatabaseURL          string
	JWTSecret            string
	AccessTokenTTL       time.Duration
	Storage              string
	RequestTimeout       time.Duration
	ShortCodeLength      int
	ShortCodeMaxAttempts int
	DefaultListLimit     int
	MaxListLimit         int

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedirectMissTTL time.Duration

	CircuitBreakerThreshold int32
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration

	CORSOrigins []string

	LogDir   string
	LogLevel string
}

// source resolves keys from the process environment first and then from the
// optional YAML file named by CONFIG_FILE.
type source struct {
	file map[string]string
}

func newSource() (source, error) {
	path, ok := os.LookupEnv("CONFIG_FILE")
	if !ok || path == "" {
		return source{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return source{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return source{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return source{file: values}, nil
}

func LoadAuthConfig() (AuthConfig, error) {
	src, err := newSource()
	if err != nil {
		return AuthConfig{}, err
	}

	jwtSecret, databaseURL, err := src.loadShared()
	if err != nil {
		return AuthConfig{}, err
	}

	return AuthConfig{
		HTTPPort:       src.getEnv("AUTH_HTTP_PORT", constants.DefaultAuthHTTPPort),
		DatabaseURL:    databaseURL,
		JWTSecret:      jwtSecret,
		AccessTokenTTL: src.getDurationEnv("ACCESS_TOKEN_TTL", constants.DefaultAccessTokenTTL),
		RequestTimeout: src.getDurationEnv("AUTH_REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		CORSOrigins:    src.getListEnv("CORS_ALLOWED_ORIGINS", constants.DefaultCORSAllowedOrigins),
		LogDir:         src.getEnv("LOG_DIR", constants.DefaultLogDir),
		LogLevel:       src.getEnv("LOG_LEVEL", "INFO"),
	}, nil
}

func LoadBookmarksConfig() (BookmarksConfig, error) {
	src, err := newSource()
	if err != nil {
		return BookmarksConfig{}, err
	}

	jwtSecret, err := src.mustEnv("JWT_SECRET")
	if err != nil {
		return BookmarksConfig{}, err
	}
	if err := validateJWTSecret(jwtSecret); err != nil {
		return BookmarksConfig{}, err
	}

	storage := src.getEnv("BOOKMARKS_STORAGE", StoragePostgres)
	if storage != StoragePostgres && storage != StorageMemory {
		return BookmarksConfig{}, fmt.Errorf("%w: got %q", ErrInvalidStorage, storage)
	}

	var databaseURL string
	if storage == StoragePostgres {
		databaseURL, err = src.mustEnv("DATABASE_URL")
		if err != nil {
			return BookmarksConfig{}, err
		}
	}

	return BookmarksConfig{
		HTTPPort:             src.getEnv("BOOKMARKS_HTTP_PORT", constants.DefaultBookmarksHTTPPort),
		DatabaseURL:          databaseURL,
		JWTSecret:            jwtSecret,
		AccessTokenTTL:       src.getDurationEnv("ACCESS_TOKEN_TTL", constants.DefaultAccessTokenTTL),
		Storage:              storage,
		RequestTimeout:       src.getDurationEnv("BOOKMARKS_REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		ShortCodeLength:      src.getIntEnv("SHORT_CODE_LENGTH", constants.ShortCodeLength),
		ShortCodeMaxAttempts: src.getIntEnv("SHORT_CODE_MAX_ATTEMPTS", constants.ShortCodeMaxAttempts),
		DefaultListLimit:     src.getIntEnv("BOOKMARKS_DEFAULT_LIMIT", constants.DefaultBookmarkLimit),
		MaxListLimit:         src.getIntEnv("BOOKMARKS_MAX_LIMIT", constants.MaxBookmarkLimit),

		RedisAddr:       src.getEnv("REDIS_ADDR", ""),
		RedisPassword:   src.getEnv("REDIS_PASSWORD", ""),
		RedisDB:         src.getIntEnv("REDIS_DB", 0),
		RedirectMissTTL: src.getDurationEnv("REDIRECT_MISS_TTL", constants.DefaultRedirectMissTTL),

		CircuitBreakerThreshold: int32(src.getIntEnv("CIRCUIT_BREAKER_THRESHOLD", constants.DefaultCircuitBreakerThreshold)),
		CircuitBreakerTimeout:   src.getDurationEnv("CIRCUIT_BREAKER_TIMEOUT", constants.DefaultCircuitBreakerTimeout),
		CircuitBreakerReset:     src.getDurationEnv("CIRCUIT_BREAKER_RESET", constants.DefaultCircuitBreakerReset),

		CORSOrigins: src.getListEnv("CORS_ALLOWED_ORIGINS", constants.DefaultCORSAllowedOrigins),

		LogDir:   src.getEnv("LOG_DIR", constants.DefaultLogDir),
		LogLevel: src.getEnv("LOG_LEVEL", "INFO"),
	}, nil
}

// LoadDatabaseURL is used by tooling that only needs the database.
func LoadDatabaseURL() (string, error) {
	src, err := newSource()
	if err != nil {
		return "", err
	}
	return src.mustEnv("DATABASE_URL")
}

func (s source) loadShared() (string, string, error) {
	jwtSecret, err := s.mustEnv("JWT_SECRET")
	if err != nil {
		return "", "", err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return "", "", err
	}

	databaseURL, err := s.mustEnv("DATABASE_URL")
	if err != nil {
		return "", "", err
	}

	return jwtSecret, databaseURL, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func (s source) lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := s.file[key]
	return v, ok
}

func (s source) getEnv(key, fallback string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return fallback
}

func (s source) mustEnv(key string) (string, error) {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func (s source) getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func (s source) getIntEnv(key string, fallback int) int {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

// getListEnv splits a comma separated value, dropping empty items.
func (s source) getListEnv(key, fallback string) []string {
	v, ok := s.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		v = fallback
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
