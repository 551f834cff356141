// Package checkout is the mock payment gateway. It charges nothing: after a
// simulated latency an injected Decider approves or declines the charge.
package checkout

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"precheck/internal/eligibility/models"
	id "precheck/pkg/domain"
	dErrors "precheck/pkg/domain-errors"
	"precheck/pkg/requestcontext"
)

// ErrDeclined is returned for a declined charge.
var ErrDeclined = dErrors.New(dErrors.CodePaymentDeclined, "payment was declined")

// Charge describes one payment attempt.
type Charge struct {
	SessionID   id.SessionID
	Route       models.Route
	Tier        models.Tier
	AmountPence int64
	Description string
}

// Receipt is the proof of an approved charge.
type Receipt struct {
	ID          id.ReceiptID `json:"id"`
	Tier        models.Tier  `json:"tier"`
	AmountPence int64        `json:"amount_pence"`
	Currency    string       `json:"currency"`
	Description string       `json:"description"`
	PaidAt      time.Time    `json:"paid_at"`
}

// Decider decides whether a charge is approved.
type Decider interface {
	Approve(ctx context.Context, c Charge) bool
}

// DeciderFunc adapts a function to a Decider.
type DeciderFunc func(ctx context.Context, c Charge) bool

func (f DeciderFunc) Approve(ctx context.Context, c Charge) bool { return f(ctx, c) }

// AlwaysApprove approves every charge.
var AlwaysApprove Decider = DeciderFunc(func(context.Context, Charge) bool { return true })

// AlwaysDecline declines every charge.
var AlwaysDecline Decider = DeciderFunc(func(context.Context, Charge) bool { return false })

type randomDecider struct {
	mu          sync.Mutex
	rng         *rand.Rand
	successRate float64
}

// RandomDecider approves a charge with probability successRate. The seed makes
// a sequence of outcomes reproducible.
func RandomDecider(successRate float64, seed int64) Decider {
	return &randomDecider{rng: rand.New(rand.NewSource(seed)), successRate: successRate}
}

func (d *randomDecider) Approve(context.Context, Charge) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Float64() < d.successRate
}

// Gateway simulates a card payment provider.
type Gateway struct {
	decider Decider
	latency time.Duration
	logger  *slog.Logger
}

type Option func(*Gateway)

// WithLatency sets the simulated provider round trip.
func WithLatency(d time.Duration) Option {
	return func(g *Gateway) {
		g.latency = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// New creates a Gateway. A nil decider approves everything.
func New(decider Decider, opts ...Option) *Gateway {
	if decider == nil {
		decider = AlwaysApprove
	}
	g := &Gateway{decider: decider, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Charge waits out the simulated latency and asks the decider. Cancelling ctx
// cuts the wait short but the charge still resolves to approved or declined.
func (g *Gateway) Charge(ctx context.Context, c Charge) (*Receipt, error) {
	if c.AmountPence <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "charge amount must be positive")
	}
	g.wait(ctx)

	if !g.decider.Approve(ctx, c) {
		g.logger.WarnContext(ctx, "mock payment declined",
			"session_id", c.SessionID.String(),
			"tier", c.Tier,
			"amount_pence", c.AmountPence,
		)
		return nil, ErrDeclined
	}

	receipt := &Receipt{
		ID:          id.NewReceiptID(),
		Tier:        c.Tier,
		AmountPence: c.AmountPence,
		Currency:    "GBP",
		Description: c.Description,
		PaidAt:      requestcontext.Now(ctx),
	}
	g.logger.InfoContext(ctx, "mock payment approved",
		"session_id", c.SessionID.String(),
		"receipt_id", receipt.ID.String(),
		"tier", c.Tier,
		"amount_pence", c.AmountPence,
	)
	return receipt, nil
}

func (g *Gateway) wait(ctx context.Context) {
	if g.latency <= 0 {
		return
	}
	timer := time.NewTimer(g.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
