package audit

import "time"

// Event is an immutable, append-only record of an authentication event.
//
// Invariants:
// - Events are never updated or deleted.
// - Capture is best-effort; an audit failure must never block sign-in.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the category of the record.
	Type EventType `json:"type" db:"type"`

	// OperatorID is the authenticated principal, when known. Denied
	// attempts carry only the username.
	OperatorID string `json:"operator_id,omitempty" db:"operator_id"`
	Username   string `json:"username,omitempty" db:"username"`
	Role       string `json:"role,omitempty" db:"role"`

	// IPAddress should capture the original client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLogin       EventType = "login"
	EventTypeLoginDenied EventType = "login_denied"
	EventTypeLogout      EventType = "logout"
)
