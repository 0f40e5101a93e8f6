package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/cercino/vointer/internal/application/auth"
	"github.com/cercino/vointer/internal/application/calendar"
	"github.com/cercino/vointer/internal/config"
	"github.com/cercino/vointer/internal/infrastructure/db/postgres"
	"github.com/cercino/vointer/internal/infrastructure/google"
	"github.com/cercino/vointer/internal/infrastructure/memory"
	rabbitmq_pub "github.com/cercino/vointer/internal/infrastructure/messaging/rabbitmq"
	"github.com/cercino/vointer/internal/infrastructure/redis"
	"github.com/cercino/vointer/internal/infrastructure/security"
	"github.com/cercino/vointer/internal/logger"
	http_handlers "github.com/cercino/vointer/internal/transport/http/handlers"
	"github.com/cercino/vointer/internal/transport/http/middleware"
	"github.com/cercino/vointer/internal/transport/http/response"
	"github.com/cercino/vointer/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing.
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(dsn string) (DBCloser, error)

	NewRedis func(addr, password string, db int) RedisClient

	NewNotifier func(rabbitURL string) (auth.Notifier, error)

	NewGoogle func(cfg *config.Config) calendar.GoogleProvider

	NewRouter func(router.Deps) (http.Handler, error)
}

type DBCloser interface {
	Close() error
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB: func(dsn string) (DBCloser, error) {
			return config.NewDB(dsn)
		},
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewNotifier: func(rabbitURL string) (auth.Notifier, error) {
			return rabbitmq_pub.NewPublisher(rabbitURL)
		},
		NewGoogle: func(cfg *config.Config) calendar.GoogleProvider {
			return google.NewClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		},
		NewRouter: router.New,
	}
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) db
	db, err := deps.NewDB(cfg.DBAddr)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	sqlDB, ok := db.(*sql.DB)
	if !ok {
		runCleanup(cleanupFns)
		return nil, nil, errors.New("bootstrap: NewDB did not return *sql.DB")
	}

	userRepo := postgres.NewUserRepo(sqlDB)

	// 2) redis (best-effort; used-token store falls back to memory)
	var usedStore auth.UsedTokenStore
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := c.Ping(ctx); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; in-memory used-token store")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			usedStore = redis.NewUsedTokenStore(c.(*redis.Client))
		}
	}
	if usedStore == nil {
		if cfg.Env != "dev" {
			runCleanup(cleanupFns)
			return nil, nil, errors.New("bootstrap: redis required outside dev")
		}
		usedStore = memory.NewUsedTokenStore()
	}

	// 3) notifier
	var notifier auth.Notifier
	if cfg.RabbitURL != "" {
		notifier, err = deps.NewNotifier(cfg.RabbitURL)
		if err != nil {
			if cfg.Env == "dev" {
				logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop notifier")
				notifier = memory.NewNoopNotifier()
			} else {
				runCleanup(cleanupFns)
				return nil, nil, err
			}
		} else {
			if p, ok := notifier.(interface{ SetExchange(string) }); ok {
				p.SetExchange(cfg.RabbitExchange)
			}
		}
	} else {
		if cfg.Env != "dev" {
			runCleanup(cleanupFns)
			return nil, nil, errors.New("bootstrap: RABBIT_URL required outside dev")
		}
		notifier = memory.NewNoopNotifier()
	}

	if c, ok := notifier.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 4) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt issuer")
	hasher := security.NewBcryptHasher(security.DefaultBcryptCost)
	issuer := security.NewJWTIssuer(cfg.JWTSecret, cfg.JWTIssuer, security.TTLs{
		Access:        cfg.AccessTokenTTL,
		EmailVerify:   cfg.VerifyEmailTokenTTL,
		PasswordReset: cfg.PasswordResetTokenTTL,
		OAuthState:    cfg.OAuthStateTTL,
	})

	// 5) services
	authSvc := auth.NewService(
		userRepo,
		hasher,
		issuer,
		usedStore,
		notifier,
		auth.Config{
			VerifyEmailBaseURL:   cfg.VerifyEmailBaseURL,
			PasswordResetBaseURL: cfg.PasswordResetBaseURL,
		},
	)

	googleClient := deps.NewGoogle(cfg)
	calSvc := calendar.NewService(userRepo, issuer, googleClient)

	// 6) handlers + middleware
	authH := http_handlers.NewAuthHandler(authSvc)
	calH := http_handlers.NewCalendarHandler(calSvc)
	healthH := http_handlers.NewHealthHandler(sqlDB)

	authMW := middleware.Auth(issuer, response.WriteError)

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health:   healthH,
		Auth:     authH,
		Calendar: calH,
		AuthMW:   authMW,
		Global: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.CORS(cfg.CORSOrigins),
		},
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

// runCleanup executes cleanup functions in reverse registration order.
func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
