package models

import (
	"strings"
	"time"
)

// EndpointClass categorizes endpoints for differentiated rate limiting.
type EndpointClass string

const (
	// ClassCheckout: session creation, checkout and upgrades (10 req/min)
	ClassCheckout EndpointClass = "checkout"
	// ClassWrite: questionnaire mutations (120 req/min) - answer, next, back, cancel
	ClassWrite EndpointClass = "write"
	// ClassRead: read operations (300 req/min) - current question, report, tiers
	ClassRead EndpointClass = "read"
)

// IsValid checks if the endpoint class is one of the supported enum values.
func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassCheckout, ClassWrite, ClassRead:
		return true
	}
	return false
}

// Limit is a request budget over a sliding window.
type Limit struct {
	RequestsPerWindow int
	Window            time.Duration
}

// Limits maps endpoint classes to their per-IP budget.
type Limits map[EndpointClass]Limit

// DefaultLimits returns the per-IP budgets used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		ClassCheckout: {RequestsPerWindow: 10, Window: time.Minute},
		ClassWrite:    {RequestsPerWindow: 120, Window: time.Minute},
		ClassRead:     {RequestsPerWindow: 300, Window: time.Minute},
	}
}

// PerMinute builds Limits from per-minute budgets.
func PerMinute(checkout, write, read int) Limits {
	return Limits{
		ClassCheckout: {RequestsPerWindow: checkout, Window: time.Minute},
		ClassWrite:    {RequestsPerWindow: write, Window: time.Minute},
		ClassRead:     {RequestsPerWindow: read, Window: time.Minute},
	}
}

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// NewIPKey builds the bucket key for an IP and endpoint class.
func NewIPKey(ip string, class EndpointClass) string {
	return "rl:ip:" + string(class) + ":" + SanitizeKeySegment(ip)
}

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// so an identifier containing ':' cannot address an adjacent bucket.
// IPv6 addresses are affected too; they stay unique after escaping.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
