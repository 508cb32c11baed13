package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"golang.org/x/crypto/bcrypt"

	authcleanup "github.com/AlibekovAA/linkmark/internal/auth/cleanup"
	authhttp "github.com/AlibekovAA/linkmark/internal/auth/http"
	authrepo "github.com/AlibekovAA/linkmark/internal/auth/repository"
	authservice "github.com/AlibekovAA/linkmark/internal/auth/service"
	bookmarkhttp "github.com/AlibekovAA/linkmark/internal/bookmark/http"
	bookmarkrepo "github.com/AlibekovAA/linkmark/internal/bookmark/repository"
	bookmarkservice "github.com/AlibekovAA/linkmark/internal/bookmark/service"
	"github.com/AlibekovAA/linkmark/internal/bookmark/shortcode"
	"github.com/AlibekovAA/linkmark/internal/common/clock"
	"github.com/AlibekovAA/linkmark/internal/common/config"
	"github.com/AlibekovAA/linkmark/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/linkmark/internal/common/crypto"
	"github.com/AlibekovAA/linkmark/internal/common/db"
	commonhttp "github.com/AlibekovAA/linkmark/internal/common/http"
	"github.com/AlibekovAA/linkmark/internal/common/logger"
	"github.com/AlibekovAA/linkmark/internal/common/resilience"
	"github.com/AlibekovAA/linkmark/internal/common/server"
	identityservice "github.com/AlibekovAA/linkmark/internal/identity/service"
	userrepo "github.com/AlibekovAA/linkmark/internal/user/repository"
)

// App holds what a binary needs to serve: the wrapped handler and the
// resources to release on shutdown.
type App struct {
	Log     *logger.Logger
	Pool    *pgxpool.Pool
	Handler http.Handler
	Port    string
	Timeout time.Duration

	hooks []server.ShutdownHook
}

// ShutdownHooks returns the release steps in reverse order of acquisition.
func (a *App) ShutdownHooks() []server.ShutdownHook {
	hooks := make([]server.ShutdownHook, 0, len(a.hooks))
	for i := len(a.hooks) - 1; i >= 0; i-- {
		hooks = append(hooks, a.hooks[i])
	}
	return hooks
}

func (a *App) onShutdown(hook server.ShutdownHook) {
	a.hooks = append(a.hooks, hook)
}

func (a *App) Close() {
	for _, hook := range a.ShutdownHooks() {
		_ = hook(context.Background())
	}
	a.hooks = nil
}

type AuthApp struct {
	App
	Config config.AuthConfig
}

type BookmarksApp struct {
	App
	Config config.BookmarksConfig
}

func NewAuthApp(ctx context.Context) (*AuthApp, error) {
	cfg, err := config.LoadAuthConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogDir, "auth", cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app := &AuthApp{App: App{Log: log, Port: cfg.HTTPPort, Timeout: cfg.RequestTimeout}, Config: cfg}

	pool, err := db.NewPool(ctx, log, cfg.DatabaseURL, "linkmark-auth")
	if err != nil {
		return nil, err
	}
	app.Pool = pool
	app.onShutdown(func(context.Context) error {
		pool.Close()
		return nil
	})

	users := userrepo.NewPgRepository(pool)
	revoked := authrepo.NewPgRevokedTokenRepository(pool)

	guard := identityservice.NewGuard(
		cfg.JWTSecret,
		log,
		identityservice.WithRevocationChecker(revoked),
		identityservice.WithUserLookup(users),
	)

	auth := newAuthService(users, revoked, cfg.JWTSecret, cfg.AccessTokenTTL, log)
	app.startRevokedTokenCleanup(revoked, "auth")

	limiter := commonhttp.NewStrictRateLimiter()
	app.onShutdown(func(context.Context) error {
		limiter.Stop()
		return nil
	})

	app.Handler = commonhttp.BuildBaseHandler("auth", log, authhttp.NewHandler(authhttp.Config{
		Auth:           auth,
		Authenticator:  guard,
		RateLimiter:    limiter,
		RequestTimeout: cfg.RequestTimeout,
		HealthChecks:   map[string]commonhttp.HealthCheck{"postgres": pool.Ping},
		Log:            log,
	}), cfg.CORSOrigins)

	return app, nil
}

func NewBookmarksApp(ctx context.Context) (*BookmarksApp, error) {
	cfg, err := config.LoadBookmarksConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogDir, "bookmarks", cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app := &BookmarksApp{App: App{Log: log, Port: cfg.HTTPPort, Timeout: cfg.RequestTimeout}, Config: cfg}

	var (
		repo      bookmarkrepo.Repository
		guardOpts []identityservice.GuardOption
		checks    = map[string]commonhttp.HealthCheck{}
		accounts  *authservice.AuthService
	)

	switch cfg.Storage {
	case config.StorageMemory:
		log.Warnf("bookmarks service: using in-memory storage, data is lost on restart")
		users := userrepo.NewMemoryRepository()
		revoked := authrepo.NewMemoryRevokedTokenRepository(nil)
		repo = bookmarkrepo.NewMemoryRepository(users)
		guardOpts = append(guardOpts,
			identityservice.WithRevocationChecker(revoked),
			identityservice.WithUserLookup(users),
		)
		accounts = newAuthService(users, revoked, cfg.JWTSecret, cfg.AccessTokenTTL, log)
		app.startRevokedTokenCleanup(revoked, "bookmarks")
	default:
		pool, err := db.NewPool(ctx, log, cfg.DatabaseURL, "linkmark-bookmarks")
		if err != nil {
			return nil, err
		}
		app.Pool = pool
		app.onShutdown(func(context.Context) error {
			pool.Close()
			return nil
		})

		repo = bookmarkrepo.NewPgRepository(pool)
		checks["postgres"] = pool.Ping
		guardOpts = append(guardOpts,
			identityservice.WithRevocationChecker(authrepo.NewPgRevokedTokenRepository(pool)),
			identityservice.WithUserLookup(userrepo.NewPgRepository(pool)),
		)
	}

	missCache, err := newMissCache(ctx, cfg, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	if rc, ok := missCache.(*bookmarkrepo.RedisMissCache); ok {
		checks["redis"] = rc.Ping
		app.onShutdown(func(context.Context) error { return rc.Close() })
	}

	guard := identityservice.NewGuard(cfg.JWTSecret, log, guardOpts...)

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  cfg.CircuitBreakerThreshold,
		Timeout:    cfg.CircuitBreakerTimeout,
		ResetAfter: cfg.CircuitBreakerReset,
		Name:       "bookmarks_storage",
		Logger:     log,
	})

	bookmarks := bookmarkservice.NewBookmarkService(
		repo,
		shortcode.NewGenerator(cfg.ShortCodeLength, cfg.ShortCodeMaxAttempts),
		guard,
		log,
		bookmarkservice.WithMissCache(missCache),
		bookmarkservice.WithCircuitBreaker(breaker),
		bookmarkservice.WithListLimits(cfg.DefaultListLimit, cfg.MaxListLimit),
	)

	limiter := commonhttp.NewStrictRateLimiter()
	app.onShutdown(func(context.Context) error {
		limiter.Stop()
		return nil
	})

	handler := bookmarkhttp.NewHandler(bookmarkhttp.Config{
		Bookmarks:      bookmarks,
		Authenticator:  guard,
		RateLimiter:    limiter,
		RequestTimeout: cfg.RequestTimeout,
		DefaultLimit:   cfg.DefaultListLimit,
		HealthChecks:   checks,
		Log:            log,
	})
	if accounts != nil {
		// Tokens must be issued and revoked by the process that checks them.
		log.Infof("bookmarks service: serving account routes from in-memory storage")
		handler = authhttp.Merge(authhttp.NewHandler(authhttp.Config{
			Auth:           accounts,
			Authenticator:  guard,
			RateLimiter:    limiter,
			RequestTimeout: cfg.RequestTimeout,
			Log:            log,
		}), handler)
	}

	app.Handler = commonhttp.BuildBaseHandler("bookmarks", log, handler, cfg.CORSOrigins)

	return app, nil
}

func newAuthService(
	users userrepo.Repository,
	revoked authrepo.RevokedTokenRepository,
	jwtSecret string,
	tokenTTL time.Duration,
	log *logger.Logger,
) *authservice.AuthService {
	ids := commoncrypto.NewUUIDGenerator()
	clk := clock.NewRealClock()
	return authservice.NewAuthService(
		users,
		revoked,
		commoncrypto.NewBcryptHasher(bcrypt.DefaultCost),
		ids,
		authservice.NewTokenIssuer(jwtSecret, ids, tokenTTL, clk),
		clk,
		log,
	)
}

func (a *App) startRevokedTokenCleanup(revoked authcleanup.ExpiredDeleter, serviceName string) {
	ctx, stop := context.WithCancel(context.Background())
	go authcleanup.StartRevokedTokenCleanup(ctx, revoked, constants.RevokedTokenCleanupInterval, a.Log)
	a.onShutdown(func(context.Context) error {
		a.Log.Infof("%s service: stopping revoked token cleanup", serviceName)
		stop()
		return nil
	})
}

func newMissCache(ctx context.Context, cfg config.BookmarksConfig, log *logger.Logger) (bookmarkrepo.MissCache, error) {
	if cfg.RedisAddr == "" {
		log.Infof("bookmarks service: REDIS_ADDR not set, redirect miss cache disabled")
		return bookmarkrepo.NoopMissCache{}, nil
	}

	client, err := bookmarkrepo.NewRedisClient(ctx, bookmarkrepo.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, log)
	if err != nil {
		return nil, err
	}
	return bookmarkrepo.NewRedisMissCache(client, cfg.RedirectMissTTL), nil
}

// Run serves app until a termination signal and exits the process on failure.
func Run(ctx context.Context, app *App, serviceName string) {
	httpServer := server.NewServer(app.Port, app.Handler, app.Timeout)
	if err := server.Run(ctx, httpServer, app.Log, serviceName, app.ShutdownHooks()...); err != nil {
		app.Log.Errorf("%v", err)
		app.Close()
		_ = app.Log.Sync()
		os.Exit(1)
	}
	_ = app.Log.Sync()
}
