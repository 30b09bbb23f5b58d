package domain

import (
	"errors"
	"fmt"
)

// Sentinels for the error taxonomy. Typed errors below match them via errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrService      = errors.New("service unavailable")
	ErrNotFound     = errors.New("not found")
)

// AuthError reports bad credentials or an expired token. Message is the
// server's text and is shown to the learner verbatim.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return ErrUnauthorized.Error()
	}
	return e.Message
}

// Is lets errors.Is(err, ErrUnauthorized) match any AuthError.
func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

// ValidationError is a local precondition failure raised before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ServiceError is a recoverable backend failure: transport error, timeout
// or non-auth error status.
type ServiceError struct {
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Detail != "" && e.Status != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Detail)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": " + ErrService.Error()
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrService) match any ServiceError.
func (e *ServiceError) Is(target error) bool {
	return target == ErrService
}
