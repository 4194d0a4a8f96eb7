package domain

import "time"

// AuthEventKind identifies the operation recorded in the audit trail.
type AuthEventKind string

const (
	EventRegister AuthEventKind = "register"
	EventLogin    AuthEventKind = "login"
	EventLogout   AuthEventKind = "logout"
)

// AuthEvent is an append-only audit record. It never carries a password.
type AuthEvent struct {
	Kind       AuthEventKind
	Email      string
	UserID     string // empty when the account is unknown
	Outcome    string
	OccurredAt time.Time
}
