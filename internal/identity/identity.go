// Package identity defines the port to the authentication provider and the
// stable error codes its failures are mapped to.
package identity

import (
	"context"
	"errors"
	"fmt"
)

// AuthState is one auth push: either a signed-in identity or nothing.
type AuthState struct {
	SignedIn    bool
	UID         string
	Email       string
	DisplayName string
}

// AuthFunc receives auth state pushes.
type AuthFunc func(AuthState)

// Disposer cancels an auth subscription.
type Disposer func()

// Provider is the identity provider contract.
type Provider interface {
	// OnAuthStateChanged registers fn and immediately delivers the current
	// state, then every subsequent change.
	OnAuthStateChanged(fn AuthFunc) Disposer

	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password, displayName string) error
	UpdateDisplayName(ctx context.Context, name string) error
	SignOut(ctx context.Context) error

	// Current returns the latest auth state.
	Current() AuthState
}

// Code is a machine-readable identity failure class.
type Code string

const (
	CodeWrongCredential     Code = "wrong-credential"
	CodeUserNotFound        Code = "user-not-found"
	CodeAccountExists       Code = "account-exists"
	CodeTooManyAttempts     Code = "too-many-attempts"
	CodeWeakSecret          Code = "weak-secret"
	CodeMalformedIdentifier Code = "malformed-identifier"
	CodeUnknown             Code = "unknown"
)

// Error carries a stable code alongside the provider's raw message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("identity: %s (%s)", e.Code, e.Message)
}

// NewError builds a coded identity error.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// CodeOf extracts the code from an identity error, or CodeUnknown.
func CodeOf(err error) Code {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code
	}
	return CodeUnknown
}
