// Package errors defines the fatal error taxonomy raised by the symbolic,
// type, package/entity and codegen layers.
package errors

import (
	"fmt"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// ErrorKind discriminates the fatal error taxonomy.
type ErrorKind string

const (
	ParseError            ErrorKind = "ParseError"
	UnresolvedExpression   ErrorKind = "UnresolvedExpression"
	NonIntegralValue       ErrorKind = "NonIntegralValue"
	ResolutionError        ErrorKind = "ResolutionError"
	UnresolvedDependencies ErrorKind = "UnresolvedDependencies"
	NameCollision          ErrorKind = "NameCollision"
	UnsupportedUse         ErrorKind = "UnsupportedUse"
	DuplicateUse           ErrorKind = "DuplicateUse"
	UnsupportedType        ErrorKind = "UnsupportedType"
	InvalidValue           ErrorKind = "InvalidValue"
)

// CodecError is the single error type raised by every layer of this module.
// A stack trace is attached at construction time via github.com/pkg/errors
// so that a caller can recover the original failure point after the error
// has bubbled up through several layers of wrapping.
type CodecError struct {
	Kind    ErrorKind
	Message string
	// Context carries structured fields relevant to the failure, e.g.
	// {"name": "fish"} for a ResolutionError, or {"names": "a, b"} for an
	// UnresolvedDependencies stall.
	Context map[string]string
	cause   error
}

// New constructs a *CodecError of the given kind, attaching a stack trace.
func New(kind ErrorKind, message string, context map[string]string) *CodecError {
	e := &CodecError{Kind: kind, Message: message, Context: context}
	e.cause = pkgerrors.WithStack(e)
	return e
}

// Newf is New with a formatted message.
func Newf(kind ErrorKind, context map[string]string, format string, args ...interface{}) *CodecError {
	return New(kind, fmt.Sprintf(format, args...), context)
}

// Error implements the error interface.
func (e *CodecError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.Kind, e.Message))
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%s", k, e.Context[k]))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

// StackTrace exposes the pkg/errors stack trace captured at construction.
func (e *CodecError) StackTrace() pkgerrors.StackTrace {
	type stackTracer interface {
		StackTrace() pkgerrors.StackTrace
	}
	if st, ok := e.cause.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

// Wrap re-raises err as a CodecError of the given kind, preserving the
// original error as the pkg/errors cause chain.
func Wrap(err error, kind ErrorKind, message string) *CodecError {
	e := &CodecError{Kind: kind, Message: message}
	e.cause = pkgerrors.Wrap(err, message)
	return e
}

// Is reports whether err is a *CodecError of the given kind, unwrapping
// pkg/errors wrap chains as needed.
func Is(err error, kind ErrorKind) bool {
	for err != nil {
		if ce, ok := err.(*CodecError); ok {
			return ce.Kind == kind
		}
		cause := pkgerrors.Cause(err)
		if cause == err {
			return false
		}
		err = cause
	}
	return false
}
