package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrVendorNotFound     = errors.New("vendor not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError is returned when request input is missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// EmailConflictError is returned when a vendor email is already registered.
type EmailConflictError struct {
	Email string
}

func (e *EmailConflictError) Error() string {
	return fmt.Sprintf("email %q is already registered", e.Email)
}

// SlugConflictError is returned when a derived slug is already in use.
type SlugConflictError struct {
	Slug string
}

func (e *SlugConflictError) Error() string {
	return fmt.Sprintf("slug %q is already in use", e.Slug)
}

// AccountStateError is returned when authentication is denied because
// of the account's lifecycle state rather than its credentials.
type AccountStateError struct {
	Status Status
}

func (e *AccountStateError) Error() string {
	switch e.Status {
	case StatusPending:
		return "account pending approval"
	case StatusRejected:
		return "account rejected"
	default:
		return fmt.Sprintf("account in state %q", e.Status)
	}
}

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

// DependencyError wraps a failure from an external collaborator
// (store, queue, mail transport). The underlying cause stays attached
// for logs; edges decide how much of it to expose.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }
