// Package perr implements the structured error model of spec.md §7, grounded
// on the teacher's runtime.FlowError: a typed, JSON-serializable error value
// threaded through evaluation as data, never as a panic.
package perr

import (
	"fmt"

	"pdl/ast"
)

// Kind classifies an error independent of any language's error type
// (spec.md §7).
type Kind string

const (
	KindValidation     Kind = "validation"
	KindUndefinedName  Kind = "undefined_name"
	KindType           Kind = "type"
	KindParser         Kind = "parser"
	KindIterable       Kind = "iterable"
	KindProvider       Kind = "provider"
	KindInternal       Kind = "internal_invariant"
)

// Error is the canonical error value propagated through block evaluation.
// It carries a Location so the user-visible rendering matches spec.md §7's
// "<file>:<line> - <message>" format.
type Error struct {
	Kind    Kind
	Message string
	Loc     ast.Location
	Cause   error
}

func (e *Error) Error() string {
	loc := e.Loc.String()
	if loc == "" {
		return e.Message
	}
	return fmt.Sprintf("%s - %s", loc, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, loc ast.Location, format string, args ...any) *Error {
	return &Error{Kind: kind, Loc: loc, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, loc ast.Location, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Loc: loc, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func Validation(loc ast.Location, format string, args ...any) *Error {
	return New(KindValidation, loc, format, args...)
}

// UndefinedName reports a missing scope binding in the exact wording
// spec.md §4.1 (Literal string, Get) quotes: "<name> is undefined".
func UndefinedName(loc ast.Location, name string) *Error {
	return New(KindUndefinedName, loc, "%s is undefined", name)
}

func Type(loc ast.Location, format string, args ...any) *Error {
	return New(KindType, loc, format, args...)
}

func Parser(loc ast.Location, cause error, parserKind string) *Error {
	return Wrap(KindParser, loc, cause, "%s parser failed: %v", parserKind, cause)
}

func Iterable(loc ast.Location, format string, args ...any) *Error {
	return New(KindIterable, loc, format, args...)
}

func Provider(loc ast.Location, cause error, format string, args ...any) *Error {
	return Wrap(KindProvider, loc, cause, format, args...)
}

func Internal(loc ast.Location, format string, args ...any) *Error {
	return New(KindInternal, loc, format, args...)
}

// ToMap mirrors the teacher's FlowError.ToMap, used to inject an error as a
// plain value into Risor/expr code-block contexts and into the trace.
func (e *Error) ToMap() map[string]any {
	return map[string]any{
		"kind":     string(e.Kind),
		"message":  e.Message,
		"location": e.Loc.String(),
	}
}
