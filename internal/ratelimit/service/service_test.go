package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"precheck/internal/ratelimit/models"
	"precheck/internal/ratelimit/store/bucket"
	dErrors "precheck/pkg/domain-errors"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	return nil, errors.New("connection refused")
}

func TestCheckIPRateLimit(t *testing.T) {
	ctx := context.Background()
	svc, err := New(bucket.New(), WithLimits(models.PerMinute(2, 5, 5)))
	require.NoError(t, err)

	t.Run("enforces the class budget per IP", func(t *testing.T) {
		for range 2 {
			res, err := svc.CheckIPRateLimit(ctx, "203.0.113.9", models.ClassCheckout)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
		}
		res, err := svc.CheckIPRateLimit(ctx, "203.0.113.9", models.ClassCheckout)
		require.NoError(t, err)
		assert.False(t, res.Allowed)

		res, err = svc.CheckIPRateLimit(ctx, "203.0.113.9", models.ClassWrite)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "classes have separate buckets")

		res, err = svc.CheckIPRateLimit(ctx, "198.51.100.1", models.ClassCheckout)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "IPs have separate buckets")
	})

	t.Run("unconfigured class is denied", func(t *testing.T) {
		res, err := svc.CheckIPRateLimit(ctx, "203.0.113.9", models.EndpointClass("admin"))
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 60, res.RetryAfter)
	})

	t.Run("store errors are internal", func(t *testing.T) {
		failing, err := New(failingStore{})
		require.NoError(t, err)
		_, err = failing.CheckIPRateLimit(ctx, "203.0.113.9", models.ClassRead)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("store is required", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})
}

func TestAnonymizeIP(t *testing.T) {
	assert.Equal(t, "203.0.113.0/24", AnonymizeIP("203.0.113.77"))
	assert.Equal(t, "2001:db8:1::/48", AnonymizeIP("2001:db8:1:2::5"))
	assert.Equal(t, "invalid", AnonymizeIP("unknown"))
}
