package tmpl

import "io"

// NameHook overrides how a name reference is rendered.
//
// RenderName reports whether it fully handled the reference, in which case
// it has written any output to w and default resolution is skipped.
type NameHook interface {
	RenderName(w io.Writer, model any, name string, scope *Scope) (bool, error)
}

// ValueHook overrides how a resolved leaf value is written.
//
// RenderValue reports whether it wrote value to w, in which case default
// stringification is skipped.
type ValueHook interface {
	RenderValue(w io.Writer, value any, leaf Leaf) (bool, error)
}

// IterHook overrides how a loop obtains a [Cursor] over its collection.
//
// Iterate reports whether it claims model. A claimed model with a nil Cursor
// is treated as empty.
type IterHook interface {
	Iterate(model any, scope *Scope) (Cursor, bool)
}

// Leaf describes the context of a value passed to a [ValueHook].
type Leaf struct {
	Scope *Scope
	Model any // model the name was resolved against
	Name  string
	Pos   Position
}

// NameFunc adapts a function to a [NameHook].
type NameFunc func(w io.Writer, model any, name string, scope *Scope) (bool, error)

// RenderName implements [NameHook].
func (f NameFunc) RenderName(
	w io.Writer,
	model any,
	name string,
	scope *Scope,
) (bool, error) {
	return f(w, model, name, scope)
}

// ValueFunc adapts a function to a [ValueHook].
type ValueFunc func(w io.Writer, value any, leaf Leaf) (bool, error)

// RenderValue implements [ValueHook].
func (f ValueFunc) RenderValue(w io.Writer, value any, leaf Leaf) (bool, error) {
	return f(w, value, leaf)
}

// IterFunc adapts a function to an [IterHook].
type IterFunc func(model any, scope *Scope) (Cursor, bool)

// Iterate implements [IterHook].
func (f IterFunc) Iterate(model any, scope *Scope) (Cursor, bool) {
	return f(model, scope)
}

// NameHooks tries each hook in order until one claims the reference or
// fails. An empty chain always declines.
type NameHooks []NameHook

// RenderName implements [NameHook].
func (hs NameHooks) RenderName(
	w io.Writer,
	model any,
	name string,
	scope *Scope,
) (bool, error) {
	for _, h := range hs {
		ok, err := h.RenderName(w, model, name, scope)
		if ok || err != nil {
			return ok, err
		}
	}

	return false, nil
}

// ValueHooks tries each hook in order until one claims the value or fails.
type ValueHooks []ValueHook

// RenderValue implements [ValueHook].
func (hs ValueHooks) RenderValue(w io.Writer, value any, leaf Leaf) (bool, error) {
	for _, h := range hs {
		ok, err := h.RenderValue(w, value, leaf)
		if ok || err != nil {
			return ok, err
		}
	}

	return false, nil
}

// IterHooks tries each hook in order until one claims the model.
type IterHooks []IterHook

// Iterate implements [IterHook].
func (hs IterHooks) Iterate(model any, scope *Scope) (Cursor, bool) {
	for _, h := range hs {
		if c, ok := h.Iterate(model, scope); ok {
			if c == nil {
				c = Empty()
			}

			return c, true
		}
	}

	return nil, false
}
