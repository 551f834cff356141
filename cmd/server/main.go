package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"precheck/internal/checkout"
	"precheck/internal/entitlement"
	"precheck/internal/platform/config"
	"precheck/internal/platform/httpserver"
	"precheck/internal/platform/logger"
	"precheck/internal/platform/metrics"
	"precheck/internal/platform/middleware"
	"precheck/internal/platform/redis"
	rlmetrics "precheck/internal/ratelimit/metrics"
	rlmiddleware "precheck/internal/ratelimit/middleware"
	rlmodels "precheck/internal/ratelimit/models"
	rlservice "precheck/internal/ratelimit/service"
	"precheck/internal/ratelimit/store/bucket"
	sessionHandler "precheck/internal/session/handler"
	sessionMetrics "precheck/internal/session/metrics"
	sessionService "precheck/internal/session/service"
	sessionStore "precheck/internal/session/store"
	"precheck/pkg/platform/httputil"
	authmw "precheck/pkg/platform/middleware/auth"
	"precheck/pkg/platform/middleware/metadata"
	"precheck/pkg/platform/middleware/requesttime"
)

const (
	shutdownTimeout     = 10 * time.Second
	requestTimeout      = 30 * time.Second
	janitorInterval     = time.Minute
	entitlementIssuer   = "precheck"
	entitlementAudience = "precheck-api"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "precheck: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if client != nil {
		defer func() {
			if err := client.Close(); err != nil {
				log.Error("failed to close redis", "error", err)
			}
		}()
	}

	store, janitor := buildStore(client, log)
	limiter, err := buildRateLimiter(client, cfg, log)
	if err != nil {
		return err
	}

	gateway := checkout.New(
		checkout.RandomDecider(cfg.Payment.SuccessRate, cfg.Payment.Seed),
		checkout.WithLatency(cfg.Payment.Latency),
		checkout.WithLogger(log),
	)
	tokens := entitlement.NewService(cfg.SigningKey, entitlementIssuer, entitlementAudience)
	service := sessionService.New(store, gateway, tokens,
		sessionService.WithLogger(log),
		sessionService.WithMetrics(sessionMetrics.New()),
		sessionService.WithSessionTTL(cfg.Session.TTL),
		sessionService.WithReportDelay(cfg.Session.ReportDelay),
	)
	handler := sessionHandler.New(service, log,
		authmw.RequireEntitlement(tokens, service, log),
		sessionHandler.WithRateLimiter(limiter),
	)

	router := newRouter(cfg, log, metrics.New(), handler, healthCheck(client))
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.InfoContext(ctx, "starting precheck",
			"addr", cfg.Addr,
			"environment", cfg.Environment,
			"store", storeName(cfg),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down precheck")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	if janitor != nil {
		g.Go(func() error {
			janitor(ctx)
			return nil
		})
	}
	return g.Wait()
}

func newRouter(cfg config.Server, log *slog.Logger, m *metrics.Metrics, h *sessionHandler.Handler, health func(context.Context) error) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.LatencyMiddleware(m))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Locale(cfg.DefaultLocale))
	r.Use(chimw.CleanPath)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := health(req.Context()); err != nil {
			log.WarnContext(req.Context(), "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	h.Register(r)
	return r
}

// buildStore picks Redis when configured and the in-memory store otherwise.
// The in-memory store comes with a janitor that evicts expired sessions.
func buildStore(client *redis.Client, log *slog.Logger) (sessionService.Store, func(context.Context)) {
	if client != nil {
		return sessionStore.NewRedis(client.Client), nil
	}

	store := sessionStore.NewInMemory()
	janitor := func(ctx context.Context) {
		ticker := time.NewTicker(janitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := store.DeleteExpired(ctx); err == nil && n > 0 {
					log.Debug("evicted expired sessions", "count", n)
				}
			}
		}
	}
	return store, janitor
}

// buildRateLimiter keeps buckets in Redis when configured. An in-memory
// limiter takes over while Redis is failing.
func buildRateLimiter(client *redis.Client, cfg config.Server, log *slog.Logger) (*rlmiddleware.Middleware, error) {
	limits := rlmodels.PerMinute(cfg.RateLimit.CheckoutPerMinute, cfg.RateLimit.WritePerMinute, cfg.RateLimit.ReadPerMinute)

	fallback, err := rlservice.New(bucket.New(), rlservice.WithLogger(log), rlservice.WithLimits(limits))
	if err != nil {
		return nil, err
	}
	if client == nil {
		return rlmiddleware.New(fallback, log,
			rlmiddleware.WithDisabled(cfg.RateLimit.Disabled),
			rlmiddleware.WithMetrics(rlmetrics.New()),
		), nil
	}

	primary, err := rlservice.New(bucket.NewRedis(client.Client), rlservice.WithLogger(log), rlservice.WithLimits(limits))
	if err != nil {
		return nil, err
	}
	return rlmiddleware.New(primary, log,
		rlmiddleware.WithDisabled(cfg.RateLimit.Disabled),
		rlmiddleware.WithFallback(fallback),
		rlmiddleware.WithMetrics(rlmetrics.New()),
	), nil
}

func healthCheck(client *redis.Client) func(context.Context) error {
	if client == nil {
		return func(context.Context) error { return nil }
	}
	return client.Health
}

func storeName(cfg config.Server) string {
	if cfg.Redis.URL != "" {
		return "redis"
	}
	return "memory"
}
