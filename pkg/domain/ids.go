// Package domain holds typed identifiers shared across modules.
package domain

import (
	"github.com/google/uuid"

	dErrors "precheck/pkg/domain-errors"
)

// SessionID identifies one pre-check session from creation to report.
type SessionID uuid.UUID

// ReceiptID identifies one mock checkout charge.
type ReceiptID uuid.UUID

// NewSessionID returns a fresh random session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// NewReceiptID returns a fresh random receipt identifier.
func NewReceiptID() ReceiptID {
	return ReceiptID(uuid.New())
}

func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id ReceiptID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the identifier is the zero UUID.
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText encodes the identifier as its canonical UUID string.
func (id SessionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText decodes a canonical UUID string.
func (id *SessionID) UnmarshalText(b []byte) error {
	parsed, err := ParseSessionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id ReceiptID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// ParseSessionID validates a session identifier at a trust boundary.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session_id")
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(u), nil
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must not be the nil UUID")
	}
	return u, nil
}

func (id *ReceiptID) UnmarshalText(b []byte) error {
	u, err := parseUUID(string(b), "receipt_id")
	if err != nil {
		return err
	}
	*id = ReceiptID(u)
	return nil
}
