// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for the XML-RPC client.
// Every failure surfaced by the codec, the envelope parser, the session and the
// entity mapper carries a machine-readable Kind, so callers can tell a
// retryable transport failure from a permanent conversion problem without
// inspecting message text.
//
// The package supports wrapping underlying errors while maintaining error kind
// information, and matching by kind through the standard errors.Is.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// UnsupportedType indicates a native value with no wire representation.
	UnsupportedType Kind = "unsupported_type"
	// ProtocolError indicates a malformed or value-less response document.
	ProtocolError Kind = "protocol_error"
	// MalformedTimestamp indicates a date-time that does not match the wire layout.
	MalformedTimestamp Kind = "malformed_timestamp"
	// MissingMemberName indicates a struct member without a name element.
	MissingMemberName Kind = "missing_member_name"
	// TypeCoercion indicates a decoded value incompatible with the requested shape.
	TypeCoercion Kind = "type_coercion"
	// AuthenticationFailed indicates the remote service returned a non-positive user id.
	AuthenticationFailed Kind = "authentication_failed"
	// NotAuthenticated indicates a data call made before a successful authentication.
	NotAuthenticated Kind = "not_authenticated"
	// FieldConversion indicates an entity field could not accept a decoded value.
	FieldConversion Kind = "field_conversion"
	// TransportError indicates a network or HTTP status failure.
	TransportError Kind = "transport_error"
	// RemoteFault indicates the service answered with a fault document.
	RemoteFault Kind = "remote_fault"
	// OperationRejected indicates a write or unlink answered false without a fault.
	OperationRejected Kind = "operation_rejected"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrUnsupportedType      = New(UnsupportedType, "")
	ErrProtocol             = New(ProtocolError, "")
	ErrMalformedTimestamp   = New(MalformedTimestamp, "")
	ErrMissingMemberName    = New(MissingMemberName, "")
	ErrTypeCoercion         = New(TypeCoercion, "")
	ErrAuthenticationFailed = New(AuthenticationFailed, "")
	ErrNotAuthenticated     = New(NotAuthenticated, "")
	ErrFieldConversion      = New(FieldConversion, "")
	ErrTransport            = New(TransportError, "")
	ErrRemoteFault          = New(RemoteFault, "")
	ErrOperationRejected    = New(OperationRejected, "")
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// Is matches any *E of the same kind, which makes the package sentinels usable
// with errors.Is regardless of message.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Newf builds an *E with a formatted message.
func Newf(kind Kind, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *E in err's chain, or "" when none.
func KindOf(err error) Kind {
	var (
		e  *E
		f  *Fault
		fe *FieldError
		ce *CoercionError
	)
	switch {
	case stderrors.As(err, &e):
		return e.Kind
	case stderrors.As(err, &f):
		return RemoteFault
	case stderrors.As(err, &fe):
		return FieldConversion
	case stderrors.As(err, &ce):
		return TypeCoercion
	}
	return ""
}

// IsRetryable reports whether err is a transport failure. Everything else is
// deterministic and will fail the same way on a second attempt.
func IsRetryable(err error) bool {
	return KindOf(err) == TransportError
}

// Fault is the error returned when the service answers with a fault document.
type Fault struct {
	Code    int64
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: fault %d: %s", RemoteFault, f.Code, f.Message)
}

// Is lets errors.Is(err, ErrRemoteFault) match faults.
func (f *Fault) Is(target error) bool {
	t, ok := target.(*E)
	return ok && t.Kind == RemoteFault
}

// FieldError describes a field assignment type mismatch in the entity mapper.
type FieldError struct {
	Field    string
	Expected string
	Actual   any
}

func (f *FieldError) Error() string {
	return fmt.Sprintf("%s: field %q expects %s, got %T (%v)", FieldConversion, f.Field, f.Expected, f.Actual, f.Actual)
}

// Is lets errors.Is(err, ErrFieldConversion) match field errors.
func (f *FieldError) Is(target error) bool {
	t, ok := target.(*E)
	return ok && t.Kind == FieldConversion
}

// CoercionError describes a decoded shape that could not be coerced to the
// requested one.
type CoercionError struct {
	Expected string
	Got      string
}

func (c *CoercionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", TypeCoercion, c.Expected, c.Got)
}

// Is lets errors.Is(err, ErrTypeCoercion) match coercion errors.
func (c *CoercionError) Is(target error) bool {
	t, ok := target.(*E)
	return ok && t.Kind == TypeCoercion
}
