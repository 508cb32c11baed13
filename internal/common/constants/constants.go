package constants

import "time"

const (
	PasswordMinLength  = 8
	PasswordMaxLength  = 72
	EmailMaxLength     = 254
	JWTSecretMinLength = 32

	ShortCodeLength          = 3
	ShortCodeMaxAttempts     = 100
	BookmarkInsertAttempts   = 3
	BookmarkBodyMaxLength    = 4000
	BookmarkURLMaxLength     = 2048
	DefaultBookmarkLimit     = 10
	MaxBookmarkLimit         = 100
	MaxSearchQueryLength     = 100
	DefaultMaxRequestSize    = 1 << 20
	DefaultRedirectMissTTL   = 1 * time.Minute
	RedirectMissCacheTimeout = 200 * time.Millisecond

	RedisDialTimeout     = 2 * time.Second
	RedisReadTimeout     = 1 * time.Second
	RedisWriteTimeout    = 1 * time.Second
	RedisRetryInterval   = 500 * time.Millisecond
	RedisConnectAttempts = 5

	RateLimitCleanupInterval = 5 * time.Minute

	RateLimitLoginRequestsPerSecond    = 1.0
	RateLimitLoginBurst                = 5
	RateLimitRegisterRequestsPerSecond = 0.5
	RateLimitRegisterBurst             = 3
	RateLimitLogoutRequestsPerSecond   = 2.0
	RateLimitLogoutBurst               = 5
	RateLimitRedirectRequestsPerSecond = 50.0
	RateLimitRedirectBurst             = 100
	RateLimitGeneralRequestsPerSecond  = 10.0
	RateLimitGeneralBurst              = 20

	RevokedTokenCleanupInterval = 1 * time.Hour

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = 1 * time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBQueryTimeout        = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultAuthHTTPPort      = "8081"
	DefaultBookmarksHTTPPort = "8082"

	DefaultCircuitBreakerThreshold = 500
	DefaultCircuitBreakerTimeout   = 15 * time.Second
	DefaultCircuitBreakerReset     = 10 * time.Second

	DefaultRequestTimeout = 5 * time.Second
	DefaultAccessTokenTTL = 30 * time.Minute

	DefaultCORSAllowedOrigins = "*"
	CORSMaxAge                = 300

	DefaultLogDir    = ""
	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28

	TestJWTSecret      = "test-secret-key-must-be-at-least-32-bytes-long"
	TestAccessTokenTTL = 15 * time.Minute
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
