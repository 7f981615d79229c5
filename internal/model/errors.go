package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a unique constraint is violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNoSettingsFound is returned when the settings row is missing.
	// A missing row is an error state; getters never auto-create it.
	ErrNoSettingsFound = errors.New("no settings found")
	// ErrInvalidOrExpiredToken is returned for unknown, consumed or
	// expired password reset tokens.
	ErrInvalidOrExpiredToken = errors.New("token is invalid or expired")
	// ErrRegistrationDisabled is returned when signup is disabled and the
	// requester may not create accounts.
	ErrRegistrationDisabled = errors.New("registration is disabled")
	// ErrInvalidCredentials is deliberately generic: it does not reveal
	// whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("no user exists with supplied email and password")
	// ErrPeerUnreachable is returned when a peer route cannot be reached.
	ErrPeerUnreachable = errors.New("peer unreachable")
	// ErrInvalidPath is returned when a relay path fails base64url decoding.
	ErrInvalidPath = errors.New("invalid path")
	// ErrPermissionDenied is the sentinel all permission denials match.
	ErrPermissionDenied = errors.New("permission denied")
)

// DenialReason distinguishes why an authorization decision failed.
type DenialReason string

const (
	ReasonRoleInsufficient DenialReason = "role-insufficient"
	ReasonSelfElevation    DenialReason = "self-elevation-forbidden"
	ReasonImmutableField   DenialReason = "immutable-field"
	ReasonNotFound         DenialReason = "not-found"
)

// PermissionDeniedError carries the denial reason so callers can render an
// accurate message. It matches ErrPermissionDenied via errors.Is.
type PermissionDeniedError struct {
	Reason DenialReason
	Msg    string
}

func (e *PermissionDeniedError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("permission denied: %s", e.Reason)
	}
	return fmt.Sprintf("permission denied (%s): %s", e.Reason, e.Msg)
}

func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// NewPermissionDenied builds a PermissionDeniedError with a formatted message.
func NewPermissionDenied(reason DenialReason, format string, args ...any) *PermissionDeniedError {
	return &PermissionDeniedError{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// PolicyError reports a validation failure on a specific field, for example
// a weak password or a malformed email.
type PolicyError struct {
	Field string
	Msg   string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("policy violation on %q: %s", e.Field, e.Msg)
}

// StoreError wraps a storage-layer failure with its underlying cause
// preserved for logging.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure in %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
