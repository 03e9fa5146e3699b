package push

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingDestination is returned when an HMS request carries no
// destination token and the fallback store holds none either.
var ErrMissingDestination = errors.New("no destination token supplied and no fallback available")

// ValidationError reports a malformed or empty request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// MissingCredentialsError reports a required provider secret that was
// absent from both configuration and the process environment. It names
// the field, never its value.
type MissingCredentialsError struct {
	Provider Provider
	Field    string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("%s credentials missing: %s not configured", e.Provider, e.Field)
}

// StorageError reports a failed fallback-token store operation.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("fallback token store %s failed: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// TokenError reports a failed OAuth2 token exchange.
type TokenError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *TokenError) Error() string {
	parts := []string{"token acquisition failed"}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		parts = append(parts, body)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *TokenError) Unwrap() error { return e.Cause }

// SendError reports a provider that rejected the send call.
type SendError struct {
	Provider   Provider
	StatusCode int
	Body       string
	Cause      error
}

func (e *SendError) Error() string {
	parts := []string{fmt.Sprintf("%s send failed", e.Provider)}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		parts = append(parts, body)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *SendError) Unwrap() error { return e.Cause }
