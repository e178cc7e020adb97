// Package dErrors defines the coded error taxonomy shared across domain
// services. Codes classify failures at trust boundaries so transports and
// callers can branch on the class without string matching.
package dErrors

import (
	"errors"
	"fmt"
)

// Code identifies the class of a domain error.
type Code string

const (
	// CodeInvalidInput covers malformed commands, unparseable dates, and
	// inverted ranges. Recovered locally with a user-visible reply.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound covers unresolvable identities and ledger writes that
	// target a key the daily initialization job never created.
	CodeNotFound Code = "not_found"
	// CodeAlreadyRecorded is the condition-failed outcome of a conditional
	// write. Expected, not an error in the operational sense.
	CodeAlreadyRecorded Code = "already_recorded"
	// CodeUnavailable covers store/transport failures.
	CodeUnavailable Code = "unavailable"
	// CodeInternal is the fallback for everything else.
	CodeInternal Code = "internal"
)

// Error carries a code alongside the message and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New constructs a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates an underlying error with a code and message. A nil err
// returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal
// for errors produced outside this package.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
