package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"precheck/internal/ratelimit/models"
	dErrors "precheck/pkg/domain-errors"
	"precheck/pkg/requestcontext"
)

// BucketStore records requests in sliding windows.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Service applies the per-IP limit of an endpoint class.
type Service struct {
	buckets BucketStore
	limits  models.Limits
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithLimits(limits models.Limits) Option {
	return func(s *Service) {
		s.limits = limits
	}
}

func New(buckets BucketStore, opts ...Option) (*Service, error) {
	if buckets == nil {
		return nil, errors.New("buckets store is required")
	}
	svc := &Service{
		buckets: buckets,
		limits:  models.DefaultLimits(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CheckIPRateLimit records one request for ip against the class budget.
// A class without a configured limit is denied.
func (s *Service) CheckIPRateLimit(ctx context.Context, ip string, class models.EndpointClass) (*models.RateLimitResult, error) {
	limit, ok := s.limits[class]
	if !ok || limit.RequestsPerWindow <= 0 {
		s.logger.WarnContext(ctx, "rate limit config missing",
			"endpoint_class", class,
			"request_id", requestcontext.RequestID(ctx),
		)
		return &models.RateLimitResult{
			Allowed:    false,
			ResetAt:    requestcontext.Now(ctx),
			RetryAfter: 60,
		}, nil
	}

	result, err := s.buckets.Allow(ctx, models.NewIPKey(ip, class), limit.RequestsPerWindow, limit.Window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check rate limit")
	}
	if !result.Allowed {
		s.logger.WarnContext(ctx, "ip rate limit exceeded",
			"ip_prefix", AnonymizeIP(ip),
			"endpoint_class", class,
			"limit", limit.RequestsPerWindow,
			"window_seconds", int(limit.Window.Seconds()),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return result, nil
}
