package domain

import (
	"errors"
	"strings"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("user with the same email address already exists")
	ErrInvalidSession = errors.New("invalid session")

	// Sentinels matched by AuthFailure.Is.
	ErrNoSuchUser    = errors.New("no such user")
	ErrWrongPassword = errors.New("wrong password")
	ErrInternal      = errors.New("internal error")
)

// ValidationError collects user-facing messages for a rejected input.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// FailureReason enumerates why an authentication attempt was rejected.
type FailureReason int

const (
	FailureNoSuchUser FailureReason = iota + 1
	FailureWrongPassword
	FailureInternal
)

func (r FailureReason) String() string {
	switch r {
	case FailureNoSuchUser:
		return "no_such_user"
	case FailureWrongPassword:
		return "wrong_password"
	case FailureInternal:
		return "internal_error"
	default:
		return "unknown"
	}
}

// AuthFailure is the rejected outcome of an authentication attempt. Err holds
// the underlying detail for FailureInternal and is nil otherwise.
type AuthFailure struct {
	Reason FailureReason
	Err    error
}

func (f *AuthFailure) Error() string {
	if f.Err != nil {
		return "authentication failed: " + f.Reason.String() + ": " + f.Err.Error()
	}
	return "authentication failed: " + f.Reason.String()
}

func (f *AuthFailure) Unwrap() error { return f.Err }

func (f *AuthFailure) Is(target error) bool {
	switch target {
	case ErrNoSuchUser:
		return f.Reason == FailureNoSuchUser
	case ErrWrongPassword:
		return f.Reason == FailureWrongPassword
	case ErrInternal:
		return f.Reason == FailureInternal
	}
	return false
}

// IsCredentialFailure reports whether err rejects the submitted credentials,
// as opposed to failing for an internal reason.
func IsCredentialFailure(err error) bool {
	return errors.Is(err, ErrNoSuchUser) || errors.Is(err, ErrWrongPassword)
}
