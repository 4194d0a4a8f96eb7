package domain

import "time"

// User models a registered account. It is created on successful registration
// and never mutated afterwards.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credential is the email/password pair submitted on a single login attempt.
// It must never be persisted or logged.
type Credential struct {
	Email    string
	Password string
}

// String redacts the password so a Credential can't leak through %v.
func (c Credential) String() string {
	return "Credential{Email: " + c.Email + ", Password: [REDACTED]}"
}
