package tmpl

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Node is an element of a compiled template tree: a [*Text], [*Name],
// [*Loop], or [*Container].
//
// A tree never changes once built and may be rendered concurrently.
type Node interface {
	// Pos returns the source position where the node began.
	Pos() Position

	render(st *state, model any, scope *Scope) error
	unparse(sb *strings.Builder, d Delimiters)
}

// state is shared by all nodes during a single render call.
type state struct {
	ctx context.Context
	w   io.Writer
	t   *Template
}

func (st *state) cursor(model any, scope *Scope) (Cursor, error) {
	if c, ok := st.t.iterHook.Iterate(model, scope); ok {
		st.t.logger.TraceContext(st.ctx, "iter hook claimed model",
			typeAttr(model))

		return c, nil
	}

	return cursorOf(st.ctx, model)
}

// Text is literal template text.
type Text struct {
	text string
	pos  Position
}

// Pos implements [Node].
func (t *Text) Pos() Position { return t.pos }

// Text returns the literal text with escapes removed.
func (t *Text) Text() string { return t.text }

func (t *Text) render(st *state, _ any, _ *Scope) error {
	if _, err := io.WriteString(st.w, t.text); err != nil {
		return ErrWrite.At(t.pos).Wrap(err)
	}

	return nil
}

func (t *Text) unparse(sb *strings.Builder, d Delimiters) {
	escape(sb, t.text, d, d.Open, d.Close, d.Escape)
}

// Name is a reference to a single value: {name}.
type Name struct {
	name string
	pos  Position
}

// Pos implements [Node].
func (n *Name) Pos() Position { return n.pos }

// Name returns the referenced name.
func (n *Name) Name() string { return n.name }

func (n *Name) render(st *state, model any, scope *Scope) error {
	ok, err := st.t.nameHook.RenderName(st.w, model, n.name, scope)
	if err != nil {
		return ErrHook.At(n.pos).With(slog.String("name", n.name)).Wrap(err)
	}

	if ok {
		st.t.logger.TraceContext(st.ctx, "name hook claimed reference",
			slog.String("name", n.name),
			slog.String("pos", n.pos.String()),
		)

		return nil
	}

	value, err := Resolve(model, n.name)
	if err != nil {
		return errorAt(err, n.pos, ErrHook)
	}

	ok, err = st.t.valueHook.RenderValue(st.w, value, Leaf{
		Scope: scope,
		Model: model,
		Name:  n.name,
		Pos:   n.pos,
	})
	if err != nil {
		return ErrHook.At(n.pos).With(slog.String("name", n.name)).Wrap(err)
	}

	if ok {
		return nil
	}

	if isNil(value) {
		return ErrNullValue.At(n.pos).With(slog.String("name", n.name))
	}

	if s, isString := value.(string); isString {
		_, err = io.WriteString(st.w, s)
	} else {
		_, err = fmt.Fprint(st.w, value)
	}

	if err != nil {
		return ErrWrite.At(n.pos).Wrap(err)
	}

	return nil
}

func (n *Name) unparse(sb *strings.Builder, d Delimiters) {
	sb.WriteRune(d.Open)
	escape(sb, n.name, d, d.Separator, d.Close, d.Escape)
	sb.WriteRune(d.Close)
}

// Loop renders its parts once per element of a collection:
// {name|main|separator|leadIn|leadOut}.
//
// Only main is required. An absent part is nil; a present but empty part is
// an empty [*Container].
type Loop struct {
	main      *Container
	separator *Container
	leadIn    *Container
	leadOut   *Container
	name      string
	pos       Position
}

// Pos implements [Node].
func (l *Loop) Pos() Position { return l.pos }

// Name returns the name of the iterated collection.
func (l *Loop) Name() string { return l.name }

// Main returns the part rendered for each element.
func (l *Loop) Main() *Container { return l.main }

// Separator returns the part rendered between consecutive elements.
func (l *Loop) Separator() *Container { return l.separator }

// LeadIn returns the part rendered before the first element.
func (l *Loop) LeadIn() *Container { return l.leadIn }

// LeadOut returns the part rendered after the last element.
func (l *Loop) LeadOut() *Container { return l.leadOut }

// Parts returns the present parts in source order.
func (l *Loop) Parts() []*Container {
	parts := []*Container{l.main, l.separator, l.leadIn, l.leadOut}

	n := len(parts)
	for n > 1 && parts[n-1] == nil {
		n--
	}

	return parts[:n]
}

func (l *Loop) render(st *state, model any, scope *Scope) error {
	coll, err := Resolve(model, l.name)
	if err != nil {
		return errorAt(err, l.pos, ErrHook)
	}

	cur, err := st.cursor(coll, scope)
	if err != nil {
		return errorAt(err, l.pos, ErrHook)
	}

	if cur == nil {
		return ErrNotIterable.At(l.pos).With(
			slog.String("name", l.name),
			typeAttr(coll),
		)
	}

	if s, ok := cur.(interface{ Stop() }); ok {
		defer s.Stop()
	}

	elem, ok := cur.Next()
	if !ok {
		return l.canceled(st)
	}

	inner := scope.nest()

	if l.leadIn != nil {
		if err := l.leadIn.render(st, model, inner); err != nil {
			return err
		}
	}

	for first := true; ok; elem, ok = cur.Next() {
		if err := l.canceled(st); err != nil {
			return err
		}

		if !first && l.separator != nil {
			if err := l.separator.render(st, elem, inner); err != nil {
				return err
			}
		}

		if err := l.main.render(st, elem, inner); err != nil {
			return err
		}

		first = false
	}

	if err := l.canceled(st); err != nil {
		return err
	}

	if l.leadOut != nil {
		return l.leadOut.render(st, model, inner)
	}

	return nil
}

func (l *Loop) canceled(st *state) error {
	if st.ctx.Err() == nil {
		return nil
	}

	return ErrCanceled.At(l.pos).Wrap(context.Cause(st.ctx))
}

func (l *Loop) unparse(sb *strings.Builder, d Delimiters) {
	sb.WriteRune(d.Open)
	escape(sb, l.name, d, d.Separator, d.Close, d.Escape)

	for _, part := range l.Parts() {
		sb.WriteRune(d.Separator)

		if part != nil {
			part.unparseIn(sb, d)
		}
	}

	sb.WriteRune(d.Close)
}

// Container is an ordered sequence of nodes rendered against the same model.
type Container struct {
	children []Node
	pos      Position
}

// Pos implements [Node].
func (c *Container) Pos() Position { return c.pos }

// Len returns the number of child nodes.
func (c *Container) Len() int { return len(c.children) }

// Children returns an iterator over the child nodes in order.
func (c *Container) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, n := range c.children {
			if !yield(n) {
				return
			}
		}
	}
}

func (c *Container) render(st *state, model any, scope *Scope) error {
	for _, n := range c.children {
		if err := n.render(st, model, scope); err != nil {
			return err
		}
	}

	return nil
}

func (c *Container) unparse(sb *strings.Builder, d Delimiters) {
	for _, n := range c.children {
		n.unparse(sb, d)
	}
}

// unparseIn writes c as the body of a loop part, where the separator is
// special too.
func (c *Container) unparseIn(sb *strings.Builder, d Delimiters) {
	for _, n := range c.children {
		if t, ok := n.(*Text); ok {
			escape(sb, t.text, d, d.Open, d.Separator, d.Close, d.Escape)

			continue
		}

		n.unparse(sb, d)
	}
}

// escape writes s to sb, prefixing each rune in special with d.Escape.
func escape(sb *strings.Builder, s string, d Delimiters, special ...rune) {
	for i, r := range s {
		for _, sp := range special {
			if r == sp {
				sb.WriteRune(d.Escape)

				break
			}
		}

		_, size := utf8.DecodeRuneInString(s[i:])
		sb.WriteString(s[i : i+size])
	}
}
