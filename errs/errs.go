// Package errs defines the typed error taxonomy shared by the loader,
// validator and transformation interpreter.
package errs

import "fmt"

// Kind tags a fhirmap error with the taxonomy category it belongs to, so
// callers (HTTP handlers, CLI) can map it to a status code or exit code
// without parsing the message.
type Kind string

const (
	KindConfig            Kind = "ConfigError"
	KindDirectionMismatch Kind = "DirectionMismatch"
	KindRequiredMissing   Kind = "RequiredFieldMissing"
	KindLookupMiss        Kind = "LookupMiss"
	KindValidationFailure Kind = "ValidationFailure"
	KindExpression        Kind = "ExpressionError"
	KindPathConflict      Kind = "PathConflict"
	KindNotBidirectional  Kind = "NotBidirectional"
)

// Error is the concrete error type carrying a Kind plus contextual fields
// used to build a user-visible message chain (mapping id, field id,
// originating expression, wrapped cause).
type Error struct {
	Kind      Kind
	MappingID string
	FieldID   string
	Expr      string
	Cause     error
	msg       string
}

func (e *Error) Error() string {
	s := string(e.Kind)
	if e.MappingID != "" {
		s += fmt.Sprintf(" mapping=%s", e.MappingID)
	}
	if e.FieldID != "" {
		s += fmt.Sprintf(" field=%s", e.FieldID)
	}
	if e.Expr != "" {
		s += fmt.Sprintf(" expr=%q", e.Expr)
	}
	if e.msg != "" {
		s += ": " + e.msg
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates a bare Error of the given kind with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// Wrap creates an Error of the given kind wrapping an existing cause.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// WithMapping returns a copy of e annotated with a mapping id.
func (e *Error) WithMapping(id string) *Error {
	c := *e
	c.MappingID = id
	return &c
}

// WithField returns a copy of e annotated with a field id.
func (e *Error) WithField(id string) *Error {
	c := *e
	c.FieldID = id
	return &c
}

// WithExpr returns a copy of e annotated with the originating expression.
func (e *Error) WithExpr(expr string) *Error {
	c := *e
	c.Expr = expr
	return &c
}

// Is supports errors.Is comparisons against a Kind sentinel created via
// KindSentinel, so callers can write errors.Is(err, errs.KindSentinel(errs.KindLookupMiss)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Cause == nil && t.msg == "" && t.MappingID == "" && t.FieldID == "" && t.Expr == "" {
		return e.Kind == t.Kind
	}
	return false
}

// KindSentinel returns a bare *Error usable as an errors.Is target for the
// given Kind, ignoring all contextual fields.
func KindSentinel(k Kind) *Error {
	return &Error{Kind: k}
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return "", false
	}
	return e.Kind, true
}
