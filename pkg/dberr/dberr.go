// Package dberr defines the flat error-kind taxonomy from spec §7. Every
// kind is carried by the one Error struct, tagged with its Kind and
// holding a human-readable message naming the
// offending identifier(s) and the rule violated, rendered the way the
// teacher's schema.ValidationError does ("[KIND] message").
package dberr

import (
	"fmt"

	"github.com/juju/errors"
)

// Kind identifies one of the seven user-recoverable failure modes.
type Kind string

const (
	KindSyntax     Kind = "SyntaxError"
	KindSemantic   Kind = "SemanticError"
	KindType       Kind = "TypeError"
	KindConstraint Kind = "ConstraintError"
	KindNotFound   Kind = "NotFoundError"
	KindFeature    Kind = "FeatureError"
	KindIO         Kind = "IOError"
)

// Error is the host-visible error shape from spec §6: { kind, message }.
type Error struct {
	EKind   Kind
	Message string
	// Position is set for SyntaxErrors; zero value elsewhere.
	Line, Column int
}

func (e *Error) Error() string {
	if e.EKind == KindSyntax && (e.Line != 0 || e.Column != 0) {
		return fmt.Sprintf("[%s] %s (line %d, column %d)", e.EKind, e.Message, e.Line, e.Column)
	}
	return fmt.Sprintf("[%s] %s", e.EKind, e.Message)
}

// KindOf returns the error's taxonomy kind.
func (e *Error) KindOf() Kind { return e.EKind }

func Syntax(line, col int, format string, args ...interface{}) *Error {
	return &Error{EKind: KindSyntax, Message: fmt.Sprintf(format, args...), Line: line, Column: col}
}

func Semantic(format string, args ...interface{}) *Error {
	return &Error{EKind: KindSemantic, Message: fmt.Sprintf(format, args...)}
}

func TypeErr(format string, args ...interface{}) *Error {
	return &Error{EKind: KindType, Message: fmt.Sprintf(format, args...)}
}

func Constraint(format string, args ...interface{}) *Error {
	return &Error{EKind: KindConstraint, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{EKind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Feature(format string, args ...interface{}) *Error {
	return &Error{EKind: KindFeature, Message: fmt.Sprintf(format, args...)}
}

// IO wraps an underlying I/O cause with github.com/juju/errors so the
// cause chain (e.g. the original os.PathError) survives alongside the
// catalog-level message, per spec §5's persistence-failure handling.
func IO(cause error, format string, args ...interface{}) *Error {
	wrapped := errors.Annotatef(cause, format, args...)
	return &Error{EKind: KindIO, Message: wrapped.Error()}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.EKind == kind
}
