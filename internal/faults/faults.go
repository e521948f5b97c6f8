// Package faults defines the error taxonomy shared by the workspace
// controller and the service gateways. Callers branch on the category to
// decide presentation: NotFound renders as an empty state, Rejected as a
// user-actionable message, AuthRequired as a re-authentication prompt, and
// ServiceError as a transient notification carrying the remote message
// verbatim.
package faults

import (
	"errors"
	"fmt"
)

// NotFoundError marks a lookup whose target does not exist: a clause number
// outside the current generation, no similar files, no saved entries.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return e.What + " not found"
}

// NewNotFound creates a NotFoundError for the named target.
func NewNotFound(what string) *NotFoundError {
	return &NotFoundError{What: what}
}

// RejectedError marks an operation the service refused on validation
// grounds, e.g. a tag outside the master vocabulary. Distinct from a
// transport failure.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

// NewRejected creates a RejectedError with the service's reason.
func NewRejected(reason string) *RejectedError {
	return &RejectedError{Reason: reason}
}

// AuthRequiredError marks a missing or invalid user identity.
type AuthRequiredError struct {
	Reason string
}

func (e *AuthRequiredError) Error() string {
	if e.Reason == "" {
		return "authentication required"
	}
	return e.Reason
}

// NewAuthRequired creates an AuthRequiredError.
func NewAuthRequired(reason string) *AuthRequiredError {
	return &AuthRequiredError{Reason: reason}
}

// ServiceError carries a remote service's own error message, surfaced
// verbatim, together with the HTTP status that produced it. StatusCode is
// zero for network-level failures.
type ServiceError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.StatusCode, e.Message)
}

// NewServiceError creates a ServiceError for the named service.
func NewServiceError(service string, statusCode int, message string) *ServiceError {
	return &ServiceError{Service: service, StatusCode: statusCode, Message: message}
}

// IsNotFound reports whether any error in the chain is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsRejected reports whether any error in the chain is a RejectedError.
func IsRejected(err error) bool {
	var e *RejectedError
	return errors.As(err, &e)
}

// IsAuthRequired reports whether any error in the chain is an
// AuthRequiredError.
func IsAuthRequired(err error) bool {
	var e *AuthRequiredError
	return errors.As(err, &e)
}

// RemoteMessage extracts the verbatim remote message from a ServiceError in
// the chain, falling back to the error's own text.
func RemoteMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
