// Package service orchestrates a pre-check session: payment, the
// questionnaire flow, tier upgrades and report generation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mssola/useragent"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"precheck/internal/checkout"
	eligibility "precheck/internal/eligibility/models"
	"precheck/internal/entitlement"
	"precheck/internal/questionnaire"
	"precheck/internal/report"
	"precheck/internal/session/metrics"
	"precheck/internal/session/models"
	id "precheck/pkg/domain"
	dErrors "precheck/pkg/domain-errors"
	"precheck/pkg/platform/sentinel"
	"precheck/pkg/requestcontext"
)

const (
	defaultSessionTTL = 2 * time.Hour

	checkoutInitial = "initial"
	checkoutUpgrade = "upgrade"
)

type Store interface {
	Save(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
}

type PaymentGateway interface {
	Charge(ctx context.Context, c checkout.Charge) (*checkout.Receipt, error)
}

type TokenIssuer interface {
	Issue(sessionID id.SessionID, route eligibility.Route, tier eligibility.Tier, now time.Time, expiresIn time.Duration) (*entitlement.Token, error)
}

// Service is safe for concurrent use. Mutations of a single session are
// serialized within the process.
type Service struct {
	store       Store
	payments    PaymentGateway
	tokens      TokenIssuer
	catalog     *questionnaire.Catalog
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	sessionTTL  time.Duration
	reportDelay time.Duration

	locks sync.Map // id.SessionID -> *sync.Mutex
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithReportDelay simulates report generation time.
func WithReportDelay(d time.Duration) Option {
	return func(s *Service) {
		s.reportDelay = d
	}
}

func WithCatalog(catalog *questionnaire.Catalog) Option {
	return func(s *Service) {
		s.catalog = catalog
	}
}

func New(store Store, payments PaymentGateway, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		store:      store,
		payments:   payments,
		tokens:     tokens,
		catalog:    questionnaire.DefaultCatalog(),
		logger:     slog.Default(),
		tracer:     otel.Tracer("precheck/session"),
		sessionTTL: defaultSessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates an unpaid session for a route and tier.
func (s *Service) Start(ctx context.Context, route, tier string) (*models.Session, error) {
	parsedTier, err := eligibility.ParseTier(tier)
	if err != nil {
		return nil, err
	}
	parsedRoute := eligibility.ParseRoute(route)

	session, err := models.NewSession(id.NewSessionID(), parsedRoute, parsedTier, requestcontext.Now(ctx), s.sessionTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session")
	}

	attrs := []any{
		"session_id", session.ID.String(),
		"route", string(parsedRoute),
		"tier", string(parsedTier),
		"request_id", requestcontext.RequestID(ctx),
	}
	s.logger.InfoContext(ctx, "precheck session started", append(attrs, clientAttrs(requestcontext.UserAgent(ctx))...)...)
	s.metrics.IncrementStarted(string(parsedRoute), string(parsedTier))
	return session, nil
}

// Checkout charges the session's tier price and, on approval, issues the
// entitlement token that unlocks the questionnaire. A declined charge leaves
// the session unpaid so the client can retry.
func (s *Service) Checkout(ctx context.Context, sessionID id.SessionID) (*models.CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "session.Checkout",
		trace.WithAttributes(attribute.String("session.id", sessionID.String())))
	defer span.End()

	var result *models.CheckoutResult
	err := s.mutate(ctx, sessionID, func(session *models.Session) error {
		if session.Paid {
			return dErrors.New(dErrors.CodeConflict, "session is already paid")
		}
		span.SetAttributes(
			attribute.String("precheck.route", string(session.Route)),
			attribute.String("precheck.tier", string(session.Tier)),
		)
		// A token only counts once its id is saved on the session.
		token, err := s.issue(ctx, session, session.Tier)
		if err != nil {
			return err
		}
		info := session.Tier.Info()
		receipt, err := s.charge(ctx, checkoutInitial, checkout.Charge{
			SessionID:   session.ID,
			Route:       session.Route,
			Tier:        session.Tier,
			AmountPence: info.PricePence,
			Description: info.Name + " pre-check",
		})
		if err != nil {
			return err
		}
		session.MarkPaid(*receipt, token.ID, requestcontext.Now(ctx))
		result = &models.CheckoutResult{Session: session, Token: token.Value, ExpiresAt: token.ExpiresAt, Receipt: *receipt}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return result, nil
}

// Current returns the question the session is on.
func (s *Service) Current(ctx context.Context, sessionID id.SessionID) (*models.QuestionView, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requirePaid(session); err != nil {
		return nil, err
	}
	return models.NewQuestionView(session, session.Flow(s.catalog)), nil
}

// Answer records an answer for the current question.
func (s *Service) Answer(ctx context.Context, sessionID id.SessionID, value any) (*models.QuestionView, error) {
	return s.step(ctx, sessionID, func(flow *questionnaire.Flow) error {
		return flow.Answer(value)
	})
}

// Next advances the questionnaire, completing it after the last visible question.
func (s *Service) Next(ctx context.Context, sessionID id.SessionID) (*models.QuestionView, error) {
	return s.step(ctx, sessionID, (*questionnaire.Flow).Next)
}

// Back moves to the previous question without discarding answers.
func (s *Service) Back(ctx context.Context, sessionID id.SessionID) (*models.QuestionView, error) {
	return s.step(ctx, sessionID, (*questionnaire.Flow).Back)
}

// Upgrade charges the price difference to a higher tier, keeps every answer
// and re-issues the entitlement. The previous token stops being accepted.
func (s *Service) Upgrade(ctx context.Context, sessionID id.SessionID, tier string) (*models.CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "session.Upgrade",
		trace.WithAttributes(attribute.String("session.id", sessionID.String())))
	defer span.End()

	target, err := eligibility.ParseTier(tier)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	var result *models.CheckoutResult
	err = s.mutate(ctx, sessionID, func(session *models.Session) error {
		if err := requirePaid(session); err != nil {
			return err
		}
		amount, err := eligibility.UpgradePricePence(session.Tier, target)
		if err != nil {
			return err
		}
		from := session.Tier
		span.SetAttributes(
			attribute.String("precheck.tier.from", string(from)),
			attribute.String("precheck.tier.to", string(target)),
		)

		flow := session.Flow(s.catalog)
		if err := flow.Upgrade(target); err != nil {
			return err
		}
		token, err := s.issue(ctx, session, target)
		if err != nil {
			return err
		}
		receipt, err := s.charge(ctx, checkoutUpgrade, checkout.Charge{
			SessionID:   session.ID,
			Route:       session.Route,
			Tier:        target,
			AmountPence: amount,
			Description: "Upgrade to " + target.Info().Name,
		})
		if err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		session.Apply(flow, now)
		session.MarkPaid(*receipt, token.ID, now)

		s.logger.InfoContext(ctx, "precheck session upgraded",
			"session_id", session.ID.String(),
			"from_tier", string(from),
			"to_tier", string(target),
			"amount_pence", amount,
			"request_id", requestcontext.RequestID(ctx),
		)
		result = &models.CheckoutResult{Session: session, Token: token.Value, ExpiresAt: token.ExpiresAt, Receipt: *receipt}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return result, nil
}

// Cancel abandons the session. Its answers are discarded with it.
func (s *Service) Cancel(ctx context.Context, sessionID id.SessionID) error {
	unlock := s.lock(sessionID)
	defer unlock()

	if _, err := s.load(ctx, sessionID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel session")
	}
	s.locks.Delete(sessionID)

	s.logger.InfoContext(ctx, "precheck session cancelled",
		"session_id", sessionID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Report composes the tier-gated report for a completed questionnaire.
func (s *Service) Report(ctx context.Context, sessionID id.SessionID, locale string) (*report.Report, error) {
	ctx, span := s.tracer.Start(ctx, "session.Report",
		trace.WithAttributes(attribute.String("session.id", sessionID.String())))
	defer span.End()
	start := time.Now()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if err := requirePaid(session); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if session.Status() != models.StatusComplete {
		err := dErrors.New(dErrors.CodeConflict, "questionnaire is not complete")
		recordSpanError(span, err)
		return nil, err
	}

	if err := s.simulateGeneration(ctx); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	_, composeSpan := s.tracer.Start(ctx, "report.Compose")
	r := report.Compose(session.Route, session.Tier, session.Progress.Answers,
		report.WithLocale(locale),
		report.WithGeneratedAt(requestcontext.Now(ctx)),
		report.WithLogger(ctx, s.logger),
	)
	composeSpan.SetAttributes(
		attribute.String("precheck.verdict", string(r.Verdict)),
		attribute.Int("precheck.risk_flags", len(r.RiskFlags)),
	)
	composeSpan.End()

	s.metrics.IncrementVerdict(string(session.Route), string(r.Verdict))
	s.metrics.ObserveReportLatency(time.Since(start))
	s.logger.InfoContext(ctx, "precheck report generated",
		"session_id", session.ID.String(),
		"route", string(session.Route),
		"tier", string(session.Tier),
		"verdict", string(r.Verdict),
		"risk_level", string(r.RiskLevel),
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &r, nil
}

// IsTokenRevoked reports whether jti is no longer the session's current
// entitlement. Tokens of missing or expired sessions count as revoked.
func (s *Service) IsTokenRevoked(ctx context.Context, sessionID id.SessionID, jti string) (bool, error) {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
			return true, nil
		}
		return false, err
	}
	return session.TokenID == "" || session.TokenID != jti, nil
}

func (s *Service) step(ctx context.Context, sessionID id.SessionID, fn func(*questionnaire.Flow) error) (*models.QuestionView, error) {
	var view *models.QuestionView
	err := s.mutate(ctx, sessionID, func(session *models.Session) error {
		if err := requirePaid(session); err != nil {
			return err
		}
		flow := session.Flow(s.catalog)
		if err := fn(flow); err != nil {
			return err
		}
		session.Apply(flow, requestcontext.Now(ctx))
		view = models.NewQuestionView(session, flow)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// mutate loads, changes and saves a session under its per-session lock.
// Nothing is saved when fn fails.
func (s *Service) mutate(ctx context.Context, sessionID id.SessionID, fn func(*models.Session) error) error {
	unlock := s.lock(sessionID)
	defer unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := fn(session); err != nil {
		return err
	}
	if err := s.store.Save(ctx, session); err != nil {
		if errors.Is(err, sentinel.ErrExpired) {
			return dErrors.New(dErrors.CodeNotFound, "session has expired")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session")
	}
	return nil
}

func (s *Service) lock(sessionID id.SessionID) func() {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (s *Service) load(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	session, err := s.store.FindByID(ctx, sessionID)
	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
	case errors.Is(err, sentinel.ErrExpired):
		return nil, dErrors.New(dErrors.CodeNotFound, "session has expired")
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
}

func (s *Service) charge(ctx context.Context, kind string, c checkout.Charge) (*checkout.Receipt, error) {
	receipt, err := s.payments.Charge(ctx, c)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodePaymentDeclined) {
			s.metrics.IncrementCheckout(kind, "declined")
			s.logger.WarnContext(ctx, "precheck checkout declined",
				"session_id", c.SessionID.String(),
				"kind", kind,
				"tier", string(c.Tier),
				"request_id", requestcontext.RequestID(ctx),
			)
			return nil, err
		}
		s.metrics.IncrementCheckout(kind, "error")
		if dErrors.CodeOf(err) != dErrors.CodeInternal {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "checkout failed")
	}
	s.metrics.IncrementCheckout(kind, "approved")
	s.metrics.AddRevenue(string(c.Tier), receipt.AmountPence)
	s.logger.InfoContext(ctx, "precheck checkout approved",
		"session_id", c.SessionID.String(),
		"kind", kind,
		"tier", string(c.Tier),
		"receipt_id", receipt.ID.String(),
		"amount_pence", receipt.AmountPence,
		"request_id", requestcontext.RequestID(ctx),
	)
	return receipt, nil
}

// issue signs an entitlement that lives exactly as long as the session.
func (s *Service) issue(ctx context.Context, session *models.Session, tier eligibility.Tier) (*entitlement.Token, error) {
	now := requestcontext.Now(ctx)
	token, err := s.tokens.Issue(session.ID, session.Route, tier, now, session.ExpiresAt.Sub(now))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue entitlement")
	}
	return token, nil
}

func (s *Service) simulateGeneration(ctx context.Context) error {
	if s.reportDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.reportDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "report generation was interrupted")
	}
}

func requirePaid(session *models.Session) error {
	if !session.Paid {
		return dErrors.New(dErrors.CodePaymentRequired, "checkout is required before the questionnaire")
	}
	return nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
}

// clientAttrs summarises the user agent for session-start logs.
func clientAttrs(userAgent string) []any {
	if userAgent == "" {
		return nil
	}
	ua := useragent.New(userAgent)
	browser, version := ua.Browser()
	return []any{
		"browser", browser,
		"browser_version", version,
		"os", ua.OS(),
		"mobile", ua.Mobile(),
		"bot", ua.Bot(),
	}
}
