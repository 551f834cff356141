package models

import (
	"time"

	"precheck/internal/checkout"
	"precheck/internal/eligibility/models"
	"precheck/internal/questionnaire"
	id "precheck/pkg/domain"
	dErrors "precheck/pkg/domain-errors"
)

// Status is the externally visible lifecycle state of a pre-check session.
type Status string

const (
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusInProgress      Status = "in_progress"
	StatusComplete        Status = "complete"
)

// Session is one paid (or about to be paid) pre-check.
//
// Invariants:
//   - Route is fixed at creation
//   - Tier only ever increases
//   - The questionnaire is only reachable after payment
//   - TokenID names the only entitlement token still accepted for the session
type Session struct {
	ID        id.SessionID           `json:"id"`
	Route     models.Route           `json:"route"`
	Tier      models.Tier            `json:"tier"`
	Paid      bool                   `json:"paid"`
	TokenID   string                 `json:"token_id,omitempty"`
	Progress  questionnaire.Progress `json:"progress"`
	Receipts  []checkout.Receipt     `json:"receipts,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	ExpiresAt time.Time              `json:"expires_at"`
}

// NewSession creates an unpaid session.
func NewSession(sessionID id.SessionID, route models.Route, tier models.Tier, now time.Time, ttl time.Duration) (*Session, error) {
	if sessionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "session id required")
	}
	if !tier.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown tier")
	}
	if ttl <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "session ttl must be positive")
	}
	return &Session{
		ID:    sessionID,
		Route: route,
		Tier:  tier,
		Progress: questionnaire.Progress{
			Route:   route,
			Tier:    tier,
			Status:  questionnaire.StatusInProgress,
			Answers: models.Answers{},
		},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// Status derives the lifecycle state from payment and questionnaire progress.
func (s *Session) Status() Status {
	if !s.Paid {
		return StatusAwaitingPayment
	}
	if s.Progress.Status == questionnaire.StatusComplete {
		return StatusComplete
	}
	return StatusInProgress
}

// IsExpired reports whether the session outlived its TTL.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// MarkPaid records a successful charge and the entitlement issued for it.
func (s *Session) MarkPaid(receipt checkout.Receipt, tokenID string, now time.Time) {
	s.Paid = true
	s.TokenID = tokenID
	s.Receipts = append(s.Receipts, receipt)
	s.UpdatedAt = now
}

// Flow resumes the questionnaire over the session's progress.
func (s *Session) Flow(catalog *questionnaire.Catalog) *questionnaire.Flow {
	return questionnaire.Resume(catalog, s.Progress)
}

// Apply stores the flow's progress back on the session, keeping Tier in step
// with upgrades.
func (s *Session) Apply(flow *questionnaire.Flow, now time.Time) {
	s.Progress = flow.Progress()
	s.Tier = s.Progress.Tier
	s.UpdatedAt = now
}

// QuestionView is what a client needs to render the current step.
type QuestionView struct {
	SessionID  id.SessionID            `json:"session_id"`
	Status     Status                  `json:"status"`
	Tier       models.Tier             `json:"tier"`
	Step       int                     `json:"step"`
	Total      int                     `json:"total"`
	Question   *questionnaire.Question `json:"question,omitempty"`
	Answer     any                     `json:"answer,omitempty"`
	CanAdvance bool                    `json:"can_advance"`
}

// NewQuestionView snapshots a flow for a session.
func NewQuestionView(s *Session, flow *questionnaire.Flow) *QuestionView {
	step, total := flow.Position()
	view := &QuestionView{
		SessionID:  s.ID,
		Status:     s.Status(),
		Tier:       s.Tier,
		Step:       step,
		Total:      total,
		CanAdvance: flow.CanAdvance(),
	}
	if q, ok := flow.Current(); ok {
		view.Question = &q
		view.Answer = flow.Answers()[q.ID]
	}
	return view
}

// CheckoutResult is returned after a successful charge.
type CheckoutResult struct {
	Session   *Session
	Token     string
	ExpiresAt time.Time
	Receipt   checkout.Receipt
}
