// Package store persists pre-check sessions for the lifetime of their TTL.
// Nothing is kept once a session expires or is cancelled.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"precheck/internal/session/models"
	id "precheck/pkg/domain"
	"precheck/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in a map guarded by a RWMutex.
// Expired sessions are reported as sentinel.ErrExpired and evicted on access.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.Session
	now      func() time.Time
}

// MemoryOption configures an InMemoryStore.
type MemoryOption func(*InMemoryStore)

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

func NewInMemory(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		sessions: make(map[id.SessionID]*models.Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Save(_ context.Context, session *models.Session) error {
	if session == nil {
		return sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = copySession(session)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if session.IsExpired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, sentinel.ErrExpired
	}
	return copySession(session), nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// DeleteExpired evicts every session past its expiry and returns the count.
func (s *InMemoryStore) DeleteExpired(_ context.Context) (int, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for sessionID, session := range s.sessions {
		if session.IsExpired(now) {
			delete(s.sessions, sessionID)
			deleted++
		}
	}
	return deleted, nil
}

// copySession detaches stored state from callers so mutations only land
// through Save.
func copySession(in *models.Session) *models.Session {
	out := *in
	out.Progress.Answers = in.Progress.Answers.Clone()
	out.Receipts = slices.Clone(in.Receipts)
	return &out
}
