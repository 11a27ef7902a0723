package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	candidateshandler "github.com/hireline/talenttrack/domains/candidates/be/handler"
	candidatesrepo "github.com/hireline/talenttrack/domains/candidates/be/repo"
	candidatesservice "github.com/hireline/talenttrack/domains/candidates/be/service"
	dashboardhandler "github.com/hireline/talenttrack/domains/dashboard/be/handler"
	dashboardservice "github.com/hireline/talenttrack/domains/dashboard/be/service"
	interviewshandler "github.com/hireline/talenttrack/domains/interviews/be/handler"
	interviewsrepo "github.com/hireline/talenttrack/domains/interviews/be/repo"
	interviewsservice "github.com/hireline/talenttrack/domains/interviews/be/service"
	jobshandler "github.com/hireline/talenttrack/domains/jobs/be/handler"
	jobsrepo "github.com/hireline/talenttrack/domains/jobs/be/repo"
	jobsservice "github.com/hireline/talenttrack/domains/jobs/be/service"
	tenantshandler "github.com/hireline/talenttrack/domains/tenants/be/handler"
	tenantsrepo "github.com/hireline/talenttrack/domains/tenants/be/repo"
	tenantsservice "github.com/hireline/talenttrack/domains/tenants/be/service"
	usershandler "github.com/hireline/talenttrack/domains/users/be/handler"
	usersrepo "github.com/hireline/talenttrack/domains/users/be/repo"
	usersservice "github.com/hireline/talenttrack/domains/users/be/service"
	webhookshandler "github.com/hireline/talenttrack/domains/webhooks/be/handler"
	webhooksservice "github.com/hireline/talenttrack/domains/webhooks/be/service"
	platformauth "github.com/hireline/talenttrack/platform/go/auth"
	"github.com/hireline/talenttrack/platform/go/idempotency"
	platformlogging "github.com/hireline/talenttrack/platform/go/logging"
	platformmiddleware "github.com/hireline/talenttrack/platform/go/middleware"
	"github.com/hireline/talenttrack/platform/go/persistence"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	RedisAddr       string        `env:"REDIS_ADDR"` // empty falls back to the in-process store
	JWTSecret       string        `env:"JWT_SECRET,required"`
	JWTTTL          time.Duration `env:"JWT_TTL" envDefault:"1h"`
	WebhookSecret   string        `env:"WEBHOOK_SECRET,required"`
	IdempotencyTTL  time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
}

func main() {
	ctx := context.Background()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "api-server",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: cfg.DatabaseURL})
	if err != nil {
		logger.Fatal("init postgres pool", zap.Error(err))
	}
	defer persistence.ClosePool(pool)

	// Webhook deduplication state. Redis is shared across instances; the
	// in-process store only suits a single-instance deployment.
	var idemStore idempotency.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		idemStore, err = idempotency.NewRedisStore(client)
		if err != nil {
			logger.Fatal("init redis idempotency store", zap.Error(err))
		}
	} else {
		logger.Warn("REDIS_ADDR not set, using in-process idempotency store")
		idemStore = idempotency.NewMemoryStore()
	}

	tokens, err := platformauth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Fatal("init token manager", zap.Error(err))
	}

	// Repositories run their DDL in dependency order: tenants first, then
	// everything holding a foreign key onto it.
	tenantRepo, err := tenantsrepo.NewPostgresRepository(ctx, pool)
	if err != nil {
		logger.Fatal("init tenants repository", zap.Error(err))
	}
	userRepo, err := usersrepo.NewPostgresRepository(ctx, pool)
	if err != nil {
		logger.Fatal("init users repository", zap.Error(err))
	}
	jobRepo, err := jobsrepo.NewPostgresRepository(ctx, pool)
	if err != nil {
		logger.Fatal("init jobs repository", zap.Error(err))
	}
	candidateRepo, err := candidatesrepo.NewPostgresRepository(ctx, pool)
	if err != nil {
		logger.Fatal("init candidates repository", zap.Error(err))
	}
	interviewRepo, err := interviewsrepo.NewPostgresRepository(ctx, pool)
	if err != nil {
		logger.Fatal("init interviews repository", zap.Error(err))
	}

	// Delete guards point at the dependent repositories directly, keeping
	// the service graph acyclic.
	tenantService := tenantsservice.New(tenantRepo,
		userRepo.ExistsByTenant,
		jobRepo.ExistsByTenant,
		candidateRepo.ExistsByTenant,
	)
	userService := usersservice.New(userRepo, tenantService)
	jobService := jobsservice.New(jobRepo, tenantService, candidateRepo.ExistsByJob)
	candidateService := candidatesservice.New(candidateRepo, jobService, interviewRepo.ExistsByCandidate)
	interviewService := interviewsservice.New(interviewRepo, candidateService)
	webhookService := webhooksservice.New(cfg.WebhookSecret, cfg.IdempotencyTTL, idemStore, interviewService, logger)
	dashboardService := dashboardservice.New(jobService, candidateService, interviewService)

	tenantHandler := tenantshandler.New(tenantService, logger)
	userHandler := usershandler.New(userService, tokens, logger)
	jobHandler := jobshandler.New(jobService, logger)
	candidateHandler := candidateshandler.New(candidateService, logger)
	interviewHandler := interviewshandler.New(interviewService, logger)
	webhookHandler := webhookshandler.New(webhookService, logger)
	dashboardHandler := dashboardhandler.New(dashboardService, logger)

	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(cfg.RequestTimeout),
		platformmiddleware.DefaultCORS(),
	)

	rootRouter.Use(platformlogging.RequestLogger(logger))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	apiRouter := chi.NewRouter()
	apiRouter.Use(platformauth.Middleware(tokens))

	// Signature-authenticated, no bearer token.
	webhookHandler.Routes(apiRouter)

	userHandler.AuthRoutes(apiRouter)

	apiRouter.Group(func(r chi.Router) {
		r.Use(platformauth.Require)
		tenantHandler.Routes(r)
		userHandler.Routes(r)
		jobHandler.Routes(r)
		candidateHandler.Routes(r)
		interviewHandler.Routes(r)
		dashboardHandler.Routes(r)
	})

	rootRouter.Mount("/api/v1", apiRouter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
