package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"precheck/internal/checkout"
	eligibility "precheck/internal/eligibility/models"
	"precheck/internal/entitlement"
	"precheck/internal/questionnaire"
	"precheck/internal/session/metrics"
	"precheck/internal/session/models"
	"precheck/internal/session/store"
	id "precheck/pkg/domain"
	dErrors "precheck/pkg/domain-errors"
	"precheck/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	now     time.Time
	store   *store.InMemoryStore
	approve bool
	tokens  *entitlement.Service
	metrics *metrics.Metrics
	service *Service
	charges []checkout.Charge
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	s.approve = true
	s.charges = nil
	s.store = store.NewInMemory(store.WithClock(func() time.Time { return s.now }))
	s.tokens = entitlement.NewService("test-signing-key", "precheck", "precheck-api")
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	gateway := checkout.New(checkout.DeciderFunc(func(_ context.Context, c checkout.Charge) bool {
		s.charges = append(s.charges, c)
		return s.approve
	}), checkout.WithLogger(discardLogger()))
	s.service = New(s.store, gateway, s.tokens,
		WithLogger(discardLogger()),
		WithMetrics(s.metrics),
		WithSessionTTL(time.Hour),
	)
}

// flakyIssuer fails on demand so token errors can be tested against a real gateway.
type flakyIssuer struct {
	tokens TokenIssuer
	fail   bool
}

func (i *flakyIssuer) Issue(sessionID id.SessionID, route eligibility.Route, tier eligibility.Tier, now time.Time, expiresIn time.Duration) (*entitlement.Token, error) {
	if i.fail {
		return nil, errors.New("signing key unavailable")
	}
	return i.tokens.Issue(sessionID, route, tier, now, expiresIn)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *ServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) paidSession(route, tier string) (*models.Session, *models.CheckoutResult) {
	session, err := s.service.Start(s.ctx(), route, tier)
	s.Require().NoError(err)
	result, err := s.service.Checkout(s.ctx(), session.ID)
	s.Require().NoError(err)
	return session, result
}

// complete answers every visible question with a benign value.
func (s *ServiceSuite) complete(sessionID id.SessionID) {
	for range 100 {
		view, err := s.service.Current(s.ctx(), sessionID)
		s.Require().NoError(err)
		if view.Status == models.StatusComplete {
			return
		}
		s.Require().NotNil(view.Question)
		_, err = s.service.Answer(s.ctx(), sessionID, benignAnswer(*view.Question))
		s.Require().NoError(err)
		_, err = s.service.Next(s.ctx(), sessionID)
		s.Require().NoError(err)
	}
	s.FailNow("questionnaire did not complete")
}

func benignAnswer(q questionnaire.Question) any {
	switch q.Type {
	case questionnaire.TypeBoolean:
		return false
	case questionnaire.TypeCurrency, questionnaire.TypeInteger:
		return 40000
	case questionnaire.TypeSingleChoice:
		return q.Options[0].Value
	case questionnaire.TypeMultiChoice:
		return []string{q.Options[0].Value}
	case questionnaire.TypeDate:
		return "2020-01-01"
	default:
		return "text"
	}
}

func (s *ServiceSuite) TestStart() {
	s.Run("creates an unpaid session", func() {
		session, err := s.service.Start(s.ctx(), "Spouse Visa", "basic")
		s.Require().NoError(err)
		s.Equal(eligibility.RouteSpouse, session.Route)
		s.Equal(models.StatusAwaitingPayment, session.Status())
		s.Equal(s.now.Add(time.Hour), session.ExpiresAt)
		s.InDelta(1, testutil.ToFloat64(s.metrics.SessionsStarted.WithLabelValues("spouse", "basic")), 0)
	})

	s.Run("rejects unknown tiers", func() {
		_, err := s.service.Start(s.ctx(), "spouse", "gold")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("questionnaire is locked until checkout", func() {
		session, err := s.service.Start(s.ctx(), "spouse", "full")
		s.Require().NoError(err)
		_, err = s.service.Current(s.ctx(), session.ID)
		s.True(dErrors.HasCode(err, dErrors.CodePaymentRequired))
	})
}

func (s *ServiceSuite) TestCheckout() {
	s.Run("approval unlocks the questionnaire and issues an entitlement", func() {
		session, result := s.paidSession("spouse", "full")
		s.Require().Len(s.charges, 1)
		s.Equal(int64(7900), s.charges[0].AmountPence)
		s.Equal(int64(7900), result.Receipt.AmountPence)

		claims, err := s.tokens.Validate(result.Token)
		s.Require().NoError(err)
		s.Equal(session.ID.String(), claims.SessionID)
		s.Equal("full", claims.Tier)

		revoked, err := s.service.IsTokenRevoked(s.ctx(), session.ID, claims.ID)
		s.Require().NoError(err)
		s.False(revoked)

		view, err := s.service.Current(s.ctx(), session.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusInProgress, view.Status)
	})

	s.Run("decline leaves the session unpaid and retryable", func() {
		session, err := s.service.Start(s.ctx(), "spouse", "basic")
		s.Require().NoError(err)

		s.approve = false
		_, err = s.service.Checkout(s.ctx(), session.ID)
		s.True(dErrors.HasCode(err, dErrors.CodePaymentDeclined))
		found, err := s.store.FindByID(s.ctx(), session.ID)
		s.Require().NoError(err)
		s.False(found.Paid)

		s.approve = true
		_, err = s.service.Checkout(s.ctx(), session.ID)
		s.Require().NoError(err)
	})

	s.Run("a paid session cannot be charged twice", func() {
		session, _ := s.paidSession("other", "basic")
		_, err := s.service.Checkout(s.ctx(), session.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown session", func() {
		_, err := s.service.Checkout(s.ctx(), id.NewSessionID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestQuestionnaire() {
	session, _ := s.paidSession("spouse", "basic")

	view, err := s.service.Next(s.ctx(), session.ID)
	s.Nil(view)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	view, err = s.service.Answer(s.ctx(), session.ID, true)
	s.Require().NoError(err)
	s.True(view.CanAdvance)
	first := view.Question.ID

	view, err = s.service.Next(s.ctx(), session.ID)
	s.Require().NoError(err)
	s.Equal(1, view.Step)

	view, err = s.service.Back(s.ctx(), session.ID)
	s.Require().NoError(err)
	s.Equal(first, view.Question.ID)
	s.Equal(true, view.Answer)
}

func (s *ServiceSuite) TestReport() {
	s.Run("requires a complete questionnaire", func() {
		session, _ := s.paidSession("spouse", "basic")
		_, err := s.service.Report(s.ctx(), session.ID, "en")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("basic report carries only the summary block", func() {
		session, _ := s.paidSession("spouse", "basic")
		s.complete(session.ID)

		r, err := s.service.Report(s.ctx(), session.ID, "en")
		s.Require().NoError(err)
		s.Equal(eligibility.TierBasic, r.Tier)
		s.NotEmpty(r.Verdict)
		s.Nil(r.Professional)
		s.Nil(r.ProPlus)
		s.Equal(s.now, r.GeneratedAt)
	})

	s.Run("pro_plus report carries every section", func() {
		session, _ := s.paidSession("skilled worker", "pro_plus")
		s.complete(session.ID)

		r, err := s.service.Report(s.ctx(), session.ID, "zh")
		s.Require().NoError(err)
		s.NotNil(r.Professional)
		s.NotNil(r.ProPlus)
		s.Equal("zh", r.Labels.Locale)
	})

	s.Run("simulated delay respects cancellation", func() {
		slow := New(s.store, checkout.New(checkout.AlwaysApprove), s.tokens,
			WithLogger(discardLogger()), WithReportDelay(time.Hour))
		session, _ := s.paidSession("other", "basic")
		s.complete(session.ID)

		ctx, cancel := context.WithCancel(s.ctx())
		cancel()
		_, err := slow.Report(ctx, session.ID, "en")
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}

func (s *ServiceSuite) TestUpgrade() {
	s.Run("charges the difference, keeps answers and re-issues the entitlement", func() {
		session, first := s.paidSession("spouse", "basic")
		s.complete(session.ID)
		oldClaims, err := s.tokens.Validate(first.Token)
		s.Require().NoError(err)

		result, err := s.service.Upgrade(s.ctx(), session.ID, "pro_plus")
		s.Require().NoError(err)
		s.Equal(int64(14900-2900), result.Receipt.AmountPence)
		s.Equal(eligibility.TierProPlus, result.Session.Tier)
		s.Len(result.Session.Receipts, 2)

		revoked, err := s.service.IsTokenRevoked(s.ctx(), session.ID, oldClaims.ID)
		s.Require().NoError(err)
		s.True(revoked)

		newClaims, err := s.tokens.Validate(result.Token)
		s.Require().NoError(err)
		s.Equal("pro_plus", newClaims.Tier)

		view, err := s.service.Current(s.ctx(), session.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusInProgress, view.Status)
		s.Require().NotNil(view.Question)
		s.Nil(view.Answer)
	})

	s.Run("refuses a lower or equal tier without charging", func() {
		session, _ := s.paidSession("spouse", "full")
		charges := len(s.charges)
		_, err := s.service.Upgrade(s.ctx(), session.ID, "basic")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		_, err = s.service.Upgrade(s.ctx(), session.ID, "professional")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Len(s.charges, charges)
	})

	s.Run("declined upgrade keeps the current tier and token", func() {
		session, first := s.paidSession("spouse", "basic")
		claims, err := s.tokens.Validate(first.Token)
		s.Require().NoError(err)

		s.approve = false
		_, err = s.service.Upgrade(s.ctx(), session.ID, "full")
		s.True(dErrors.HasCode(err, dErrors.CodePaymentDeclined))
		s.approve = true

		found, err := s.store.FindByID(s.ctx(), session.ID)
		s.Require().NoError(err)
		s.Equal(eligibility.TierBasic, found.Tier)
		revoked, err := s.service.IsTokenRevoked(s.ctx(), session.ID, claims.ID)
		s.Require().NoError(err)
		s.False(revoked)
	})
}

func (s *ServiceSuite) TestTokenFailureNeverCharges() {
	issuer := &flakyIssuer{tokens: s.tokens}
	gateway := checkout.New(checkout.DeciderFunc(func(_ context.Context, c checkout.Charge) bool {
		s.charges = append(s.charges, c)
		return true
	}), checkout.WithLogger(discardLogger()))
	svc := New(s.store, gateway, issuer, WithLogger(discardLogger()), WithSessionTTL(time.Hour))

	s.Run("checkout", func() {
		session, err := svc.Start(s.ctx(), "spouse", "basic")
		s.Require().NoError(err)
		charges := len(s.charges)

		issuer.fail = true
		_, err = svc.Checkout(s.ctx(), session.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Len(s.charges, charges)
		found, err := s.store.FindByID(s.ctx(), session.ID)
		s.Require().NoError(err)
		s.False(found.Paid)
		s.Empty(found.Receipts)
	})

	s.Run("upgrade", func() {
		issuer.fail = false
		session, err := svc.Start(s.ctx(), "spouse", "basic")
		s.Require().NoError(err)
		_, err = svc.Checkout(s.ctx(), session.ID)
		s.Require().NoError(err)
		charges := len(s.charges)

		issuer.fail = true
		_, err = svc.Upgrade(s.ctx(), session.ID, "full")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Len(s.charges, charges)
		found, err := s.store.FindByID(s.ctx(), session.ID)
		s.Require().NoError(err)
		s.Equal(eligibility.TierBasic, found.Tier)
		s.Len(found.Receipts, 1)
	})
}

func (s *ServiceSuite) TestCancel() {
	session, result := s.paidSession("spouse", "basic")
	_, err := s.service.Answer(s.ctx(), session.ID, true)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Cancel(s.ctx(), session.ID))

	_, err = s.service.Current(s.ctx(), session.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	claims, err := s.tokens.Validate(result.Token)
	s.Require().NoError(err)
	revoked, err := s.service.IsTokenRevoked(s.ctx(), session.ID, claims.ID)
	s.Require().NoError(err)
	s.True(revoked)

	s.True(dErrors.HasCode(s.service.Cancel(s.ctx(), session.ID), dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestExpiredSession() {
	session, _ := s.paidSession("spouse", "basic")
	s.now = s.now.Add(2 * time.Hour)
	_, err := s.service.Current(s.ctx(), session.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestClientAttrs(t *testing.T) {
	attrs := clientAttrs("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
	fields := map[string]any{}
	for i := 0; i+1 < len(attrs); i += 2 {
		fields[attrs[i].(string)] = attrs[i+1]
	}
	if fields["mobile"] != true {
		t.Fatalf("expected mobile client, got %v", fields)
	}
	if clientAttrs("") != nil {
		t.Fatal("expected no attributes without a user agent")
	}
}
