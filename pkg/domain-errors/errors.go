// Package domainerrors is the closed error taxonomy of the lifecycle engine.
//
// Every use-case fails with an *Error carrying one of the codes below. Delivery
// layers translate codes into transport responses (HTTP problem+json, CLI
// exit codes); the core never does.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure.
type Code string

const (
	// CodeInvalidInput covers malformed requests and illegal state transitions.
	CodeInvalidInput Code = "invalid_input"
	// CodeAlreadyExists signals a unique-constraint violation (email, slug).
	CodeAlreadyExists Code = "already_exists"
	// CodeNotFound signals a lookup miss (user, event, registration).
	CodeNotFound Code = "not_found"
	// CodeCancelledRegistrationCheckin is raised when an operator checks in a
	// cancelled registration.
	CodeCancelledRegistrationCheckin Code = "cancelled_registration_checkin"
	// CodeRoleForbidden is raised by the user-admin service when the actor
	// lacks the role required for the operation.
	CodeRoleForbidden Code = "role_forbidden"
	// CodeRoleNotFound is raised when an unknown role is named.
	CodeRoleNotFound Code = "role_not_found"
	// CodeUnauthorized is used by delivery layers for missing credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeTimeout marks an aborted transaction boundary.
	CodeTimeout Code = "timeout"
	// CodeInternal wraps infrastructure failures surfaced through ports.
	CodeInternal Code = "internal_error"
)

// Error is the single concrete domain error type.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a domain error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is an alias of HasCode kept for handler readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost domain code, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost domain message, or "" for foreign errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// InvalidInput reports malformed or semantically illegal request data.
func InvalidInput(msg string) *Error {
	return New(CodeInvalidInput, msg)
}

// InvalidTransition reports a transition missing from a lifecycle table.
// The message format invalid_<scope>_transition:<from>-><to> is relied on by
// callers that surface it verbatim.
func InvalidTransition(scope, from, to string) *Error {
	return New(CodeInvalidInput, fmt.Sprintf("invalid_%s_transition:%s->%s", scope, from, to))
}

// AlreadyExists reports a unique-constraint violation on resource.
func AlreadyExists(resource string) *Error {
	return New(CodeAlreadyExists, resource+"_already_exists")
}

// NotFound reports a lookup miss on resource.
func NotFound(resource string) *Error {
	return New(CodeNotFound, resource+"_not_found")
}

// CancelledRegistrationCheckin reports an attempt to check in a cancelled
// registration. It is distinct from InvalidInput because the request itself is
// well-formed; the operator picked the wrong participant.
func CancelledRegistrationCheckin() *Error {
	return New(CodeCancelledRegistrationCheckin, "cancelled_registration_checkin")
}

// RoleForbidden reports that the actor does not hold role.
func RoleForbidden(role string) *Error {
	return New(CodeRoleForbidden, "role_forbidden:"+role)
}

// RoleNotFound reports an unknown role name.
func RoleNotFound(role string) *Error {
	return New(CodeRoleNotFound, "role_not_found:"+role)
}
