package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"calcfolha/internal/domain/audit"
	"calcfolha/internal/domain/auth"
	"calcfolha/internal/domain/overtime"
	"calcfolha/internal/domain/salary"
	"calcfolha/internal/platform/cache"
	"calcfolha/internal/platform/config"
	"calcfolha/internal/platform/db"
	"calcfolha/internal/platform/jobs"
	"calcfolha/internal/platform/metrics"
	audithandler "calcfolha/internal/transport/http/handlers/audit"
	authhandler "calcfolha/internal/transport/http/handlers/auth"
	overtimehandler "calcfolha/internal/transport/http/handlers/overtime"
	salaryhandler "calcfolha/internal/transport/http/handlers/salary"
	"calcfolha/internal/transport/http/api"
	"calcfolha/internal/transport/http/middleware"
)

// AuditService records calculation mutations and lists them for admins.
type AuditService interface {
	overtime.AuditRecorder
	audithandler.EventLister
}

// Deps is everything the router needs. Optional members may be nil.
type Deps struct {
	Config       config.Config
	Logger       *zap.Logger
	Metrics      *metrics.Collector
	Rules        salary.Rules
	Users        auth.UserStore
	Calculations overtime.StoreAPI
	Cache        overtime.SummaryCache
	Audit        AuditService
	Idempotency  middleware.IdempotencyBackend
	// Checks are run by /readyz, keyed by dependency name.
	Checks map[string]func(context.Context) error
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	collector := d.Metrics
	if collector == nil {
		collector = metrics.New()
	}
	cfg := d.Config

	serviceOpts := []overtime.Option{overtime.WithCounter(collector), overtime.WithLogger(logger)}
	if d.Cache != nil {
		serviceOpts = append(serviceOpts, overtime.WithCache(d.Cache))
	}
	if d.Audit != nil {
		serviceOpts = append(serviceOpts, overtime.WithAudit(d.Audit))
	}
	overtimeService := overtime.NewService(d.Calculations, serviceOpts...)
	authService := auth.NewService(d.Users, cfg.JWTSecret, cfg.TokenTTL, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger, collector))
	router.Use(middleware.Recoverer(logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-Total-Count", "Retry-After", "Idempotent-Replayed"},
		MaxAge:         300,
	}))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for name, check := range d.Checks {
			if err := check(ctx); err != nil {
				logger.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
				http.Error(w, name+" not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequireAdmin).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	window := time.Minute
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.LoginRateLimit(cfg.RateLimitPerMinute, window, middleware.WithRateLimitLogger(logger)))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, window, middleware.WithRateLimitLogger(logger)))

		authhandler.NewHandler(authService, logger).RegisterRoutes(r)
		salaryhandler.NewHandler(salary.NewCalculator(d.Rules), collector).RegisterRoutes(r)
		overtimehandler.NewHandler(overtimeService, d.Idempotency, logger).RegisterRoutes(r)
		if d.Audit != nil {
			audithandler.NewHandler(d.Audit, logger).RegisterRoutes(r)
		}
	})

	return router
}

// Run connects the stores, optionally migrates and seeds, and serves until ctx is done.
func Run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	rules := salary.DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := salary.LoadRules(cfg.RulesFile)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		rules = loaded
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir, logger); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg, logger); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	auditService := audit.New(pool)
	idempotency := middleware.NewIdempotencyStore(pool)
	deps := Deps{
		Config:       cfg,
		Logger:       logger,
		Metrics:      metrics.New(),
		Rules:        rules,
		Users:        auth.NewStore(pool),
		Calculations: overtime.NewStore(pool),
		Audit:        auditService,
		Idempotency:  idempotency,
		Checks:       map[string]func(context.Context) error{"postgres": pool.Ping},
	}

	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer client.Close()
		summaries := cache.NewRedis(client, cfg.CacheTTL)
		deps.Cache = summaries
		deps.Checks["redis"] = summaries.Ping
	} else {
		logger.Info("REDIS_URL not set, summaries are deduplicated in process only")
	}

	retention := jobs.New(logger,
		jobs.Schedule{Name: jobs.JobIdempotencyPurge, Interval: cfg.JobsInterval, Retention: cfg.IdempotencyTTL, Task: idempotency.Purge},
		jobs.Schedule{Name: jobs.JobAuditRetention, Interval: cfg.JobsInterval, Retention: cfg.AuditRetention, Task: auditService.Purge},
	)
	retention.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("calcfolha server listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
