package tmpl

import (
	"errors"
	"log/slog"
	"strings"
)

// Kind classifies an [Error] by the phase that produced it.
type Kind int

const (
	KindSyntax Kind = iota + 1 // syntax
	KindRender                 // render
)

// String returns the lowercase name of k.
func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindRender:
		return "render"
	default:
		return "unknown"
	}
}

// Predefined errors (sentinel values).
//
// Errors returned by this package are copies of these values carrying a
// position, attributes, and possibly a cause. Use [errors.Is] to test them.
var (
	ErrDelimiters      = NewError(KindSyntax, "delimiters must be distinct valid runes")
	ErrUnclosedBlock   = NewError(KindSyntax, "unclosed block")
	ErrUnexpectedClose = NewError(KindSyntax, "unexpected close delimiter")
	ErrTooManyParts    = NewError(KindSyntax, "too many loop parts")
	ErrRead            = NewError(KindSyntax, "failed to read template")

	ErrNullModel        = NewError(KindRender, "trying to nest into null")
	ErrNullValue        = NewError(KindRender, "null value")
	ErrNameNotFound     = NewError(KindRender, "name not found")
	ErrUnsupportedModel = NewError(KindRender, "unsupported model")
	ErrNotIterable      = NewError(KindRender, "not iterable")
	ErrCall             = NewError(KindRender, "method call failed")
	ErrHook             = NewError(KindRender, "hook failed")
	ErrWrite            = NewError(KindRender, "write failed")
	ErrCanceled         = NewError(KindRender, "render canceled")
)

// Error is a template error with a source position and optional structured
// logging attributes. It implements both error and slog.LogValuer.
type Error struct {
	kind  Kind
	pos   Position
	msg   string
	err   error       // wrapped cause
	attrs []slog.Attr // attributes for structured logging
	base  *Error      // sentinel this error was derived from
}

// NewError creates a new sentinel Error of the given kind.
func NewError(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Error implements the error interface.
//
// The message has the form "<line>:<column> <msg>: <cause>", where the
// position is omitted when unknown and the cause when nil.
func (e *Error) Error() string {
	var sb strings.Builder

	if e.pos.IsValid() {
		sb.WriteString(e.pos.String())
		sb.WriteByte(' ')
	}

	sb.WriteString(e.msg)

	if e.err != nil {
		if e.msg != "" {
			sb.WriteString(": ")
		}

		sb.WriteString(e.err.Error())
	}

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e was derived from the same sentinel as target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.sentinel() == t.sentinel()
}

// Kind returns the phase that produced e.
func (e *Error) Kind() Kind { return e.kind }

// Pos returns the source position of e, which is the zero Position when
// unknown.
func (e *Error) Pos() Position { return e.pos }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	attrs = append(attrs, slog.String("error", e.msg))
	attrs = append(attrs, slog.String("kind", e.kind.String()))

	if e.pos.IsValid() {
		attrs = append(attrs, slog.String("pos", e.pos.String()))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// At returns a copy of e positioned at pos.
func (e *Error) At(pos Position) *Error {
	c := e.clone()
	c.pos = pos

	return c
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

func (e *Error) clone() *Error {
	c := *e
	c.base = e.sentinel()

	return &c
}

func (e *Error) sentinel() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// IsSyntax reports whether err contains a compile-time [Error].
func IsSyntax(err error) bool { return isKind(err, KindSyntax) }

// IsRender reports whether err contains a render-time [Error].
func IsRender(err error) bool { return isKind(err, KindRender) }

func isKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	return e.kind == kind
}

// errorAt positions err at pos if it is an [Error] without a position.
// Any other error is wrapped by fallback.
func errorAt(err error, pos Position, fallback *Error) error {
	var e *Error
	if errors.As(err, &e) {
		if e.pos.IsValid() {
			return err
		}

		return e.At(pos)
	}

	return fallback.At(pos).Wrap(err)
}
