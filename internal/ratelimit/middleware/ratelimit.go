package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"precheck/internal/ratelimit/metrics"
	"precheck/internal/ratelimit/models"
	"precheck/internal/ratelimit/service"
	dErrors "precheck/pkg/domain-errors"
	"precheck/pkg/platform/httputil"
	"precheck/pkg/requestcontext"
)

const (
	defaultFailureThreshold = 5
	defaultSuccessThreshold = 3
	degradedHeader          = "X-RateLimit-Status"
)

type RateLimiter interface {
	CheckIPRateLimit(ctx context.Context, ip string, class models.EndpointClass) (*models.RateLimitResult, error)
}

type Middleware struct {
	limiter  RateLimiter
	fallback RateLimiter
	breaker  *CircuitBreaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithFallback sets the limiter used while the primary store is failing.
func WithFallback(fallback RateLimiter) Option {
	return func(m *Middleware) {
		m.fallback = fallback
	}
}

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

// WithCircuitThresholds overrides how many failures open and how many
// successes close the circuit.
func WithCircuitThresholds(failures, successes int) Option {
	return func(m *Middleware) {
		m.breaker = newCircuitBreaker(failures, successes)
	}
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
		breaker: newCircuitBreaker(defaultFailureThreshold, defaultSuccessThreshold),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits requests per client IP for the endpoint class. Limiter
// errors fail open until the circuit opens, then the fallback takes over.
func (m *Middleware) RateLimit(class models.EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, degraded, err := m.check(ctx, ip, class)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check IP rate limit",
					"error", err,
					"ip_prefix", service.AnonymizeIP(ip),
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			if degraded {
				w.Header().Set(degradedHeader, "degraded")
			}
			addRateLimitHeaders(w, result)

			if !result.Allowed {
				m.metrics.IncrementDenied(string(class))
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "Too many requests, retry after "+strconv.Itoa(result.RetryAfter)+" seconds"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) check(ctx context.Context, ip string, class models.EndpointClass) (*models.RateLimitResult, bool, error) {
	result, err := m.limiter.CheckIPRateLimit(ctx, ip, class)
	if err == nil {
		closed := m.breaker.RecordSuccess()
		m.metrics.SetDegraded(!closed)
		return result, false, nil
	}

	useFallback := m.breaker.RecordFailure()
	m.metrics.SetDegraded(useFallback)
	if !useFallback || m.fallback == nil {
		return nil, false, err
	}
	m.metrics.IncrementFallbacks()
	result, fallbackErr := m.fallback.CheckIPRateLimit(ctx, ip, class)
	if fallbackErr != nil {
		return nil, true, fallbackErr
	}
	return result, true, nil
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
