package typesystem

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	// CodeConflict reports two assemblies with the same name but
	// different versions.
	CodeConflict ErrorCode = "conflict"

	// CodeNotFound reports an FQN or dependency no loaded assembly owns.
	CodeNotFound ErrorCode = "not_found"

	// CodeLocked reports a mutation attempted after Lock.
	CodeLocked ErrorCode = "locked"

	// CodeUnlocked reports a derived relationship queried before Lock.
	CodeUnlocked ErrorCode = "unlocked"

	// CodeMalformedSpec reports a descriptor that failed validation.
	CodeMalformedSpec ErrorCode = "malformed_spec"

	// CodeInvalidType reports a structurally invalid type relationship,
	// such as a base FQN that resolves to a non-class.
	CodeInvalidType ErrorCode = "invalid_type"
)

// Error is the standard error envelope for type-system failures.
type Error struct {
	Code ErrorCode

	// FQN names the offending type or assembly, when known.
	FQN string

	Message string

	// Cause is the wrapped underlying error, if any.
	Cause error
}

func (e *Error) Error() string {
	if e.FQN != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.FQN, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Errorf creates a new type-system error with a formatted message.
func Errorf(code ErrorCode, fqn, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		FQN:     fqn,
		Message: fmt.Sprintf(format, args...),
	}
}

// codeIs reports whether err carries the given code.
func codeIs(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsConflict reports whether err is an assembly version conflict.
func IsConflict(err error) bool { return codeIs(err, CodeConflict) }

// IsNotFound reports whether err is an unresolved FQN or dependency.
func IsNotFound(err error) bool { return codeIs(err, CodeNotFound) }

// IsLocked reports whether err is a post-lock mutation attempt.
func IsLocked(err error) bool { return codeIs(err, CodeLocked) }

// IsMalformedSpec reports whether err is a descriptor validation failure.
func IsMalformedSpec(err error) bool { return codeIs(err, CodeMalformedSpec) }

// IsInvalidType reports whether err is a structural type error.
func IsInvalidType(err error) bool { return codeIs(err, CodeInvalidType) }
