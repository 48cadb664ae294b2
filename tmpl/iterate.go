package tmpl

import (
	"context"
	"iter"
	"log/slog"
	"reflect"
)

// Cursor is a one-shot, forward-only sequence.
//
// Next returns the next element and true, or false once the sequence is
// exhausted. A Cursor that also has a Stop method is stopped when the loop
// consuming it returns.
type Cursor interface {
	Next() (any, bool)
}

// CursorFunc adapts a function to a [Cursor].
type CursorFunc func() (any, bool)

// Next implements [Cursor].
func (f CursorFunc) Next() (any, bool) { return f() }

// Empty returns an exhausted [Cursor].
func Empty() Cursor {
	return CursorFunc(func() (any, bool) { return nil, false })
}

// Values returns a [Cursor] over the given values.
func Values[T any](v ...T) Cursor {
	return &sliceCursor{v: reflect.ValueOf(v)}
}

// Iterate returns a [Cursor] over the elements of model using the built-in
// iteration rules only.
//
// Supported shapes are existing cursors, slices, arrays and pointers to
// arrays, receive channels, iter.Seq and iter.Seq2 functions, and values
// with a niladic All method returning one of those functions. A nil model
// is [ErrNullModel]; any other shape is [ErrNotIterable].
func Iterate(model any) (Cursor, error) {
	c, err := cursorOf(context.Background(), model)
	if err != nil {
		return nil, err
	}

	if c == nil {
		return nil, ErrNotIterable.With(typeAttr(model))
	}

	return c, nil
}

// cursorOf returns nil without error when model has no iterable shape.
func cursorOf(ctx context.Context, model any) (Cursor, error) {
	if isNil(model) {
		if model == nil || reflect.TypeOf(model).Kind() != reflect.Slice {
			return nil, ErrNullModel.With(typeAttr(model))
		}
	}

	switch m := model.(type) {
	case Cursor:
		return m, nil
	case []any:
		return &sliceCursor{v: reflect.ValueOf(m)}, nil
	case iter.Seq[any]:
		return pull(m), nil
	}

	v := reflect.ValueOf(model)

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return &sliceCursor{v: v}, nil

	case reflect.Pointer:
		if v.Type().Elem().Kind() != reflect.Array {
			break
		}

		return &sliceCursor{v: v.Elem()}, nil

	case reflect.Chan:
		if v.Type().ChanDir()&reflect.RecvDir == 0 {
			return nil, nil
		}

		return &chanCursor{ctx: ctx, v: v}, nil

	case reflect.Func:
		if !isSeq(v.Type()) {
			return nil, nil
		}

		return pull(seqOf(v)), nil
	}

	if all := v.MethodByName("All"); all.IsValid() {
		t := all.Type()
		if t.NumIn() == 0 && t.NumOut() == 1 && isSeq(t.Out(0)) {
			return cursorOf(ctx, all.Call(nil)[0].Interface())
		}
	}

	return nil, nil
}

// sliceCursor yields each element of a slice or array with its exact type.
type sliceCursor struct {
	v reflect.Value
	i int
}

func (c *sliceCursor) Next() (any, bool) {
	if c.i >= c.v.Len() {
		return nil, false
	}

	e := c.v.Index(c.i).Interface()
	c.i++

	return e, true
}

// chanCursor receives from a channel until it is closed or ctx is done.
type chanCursor struct {
	ctx context.Context
	v   reflect.Value
}

func (c *chanCursor) Next() (any, bool) {
	cases := []reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: c.v},
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(c.ctx.Done())},
	}

	chosen, recv, ok := reflect.Select(cases)
	if chosen != 0 || !ok {
		return nil, false
	}

	return recv.Interface(), true
}

// pullCursor adapts a push iterator to a [Cursor].
type pullCursor struct {
	next func() (any, bool)
	stop func()
}

func pull(seq iter.Seq[any]) *pullCursor {
	next, stop := iter.Pull(seq)

	return &pullCursor{next: next, stop: stop}
}

func (c *pullCursor) Next() (any, bool) { return c.next() }

// Stop releases the goroutine backing the iterator.
func (c *pullCursor) Stop() { c.stop() }

var boolType = reflect.TypeFor[bool]()

// isSeq reports whether t has the shape of iter.Seq[V] or iter.Seq2[K, V].
func isSeq(t reflect.Type) bool {
	if t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() != 0 {
		return false
	}

	y := t.In(0)
	if y.Kind() != reflect.Func || y.NumOut() != 1 || y.Out(0) != boolType {
		return false
	}

	return y.NumIn() == 1 || y.NumIn() == 2
}

// seqOf converts a reflected iter.Seq or iter.Seq2 into an iter.Seq[any].
// For iter.Seq2 the yielded element is the value, not the key.
func seqOf(fn reflect.Value) iter.Seq[any] {
	yieldType := fn.Type().In(0)

	return func(yield func(any) bool) {
		y := reflect.MakeFunc(yieldType, func(args []reflect.Value) []reflect.Value {
			return []reflect.Value{
				reflect.ValueOf(yield(args[len(args)-1].Interface())),
			}
		})

		fn.Call([]reflect.Value{y})
	}
}

// isNil reports whether v is nil or a nil value of a nillable kind.
func isNil(v any) bool {
	if v == nil {
		return true
	}

	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

func typeAttr(model any) slog.Attr {
	if model == nil {
		return slog.String("type", "nil")
	}

	return slog.String("type", reflect.TypeOf(model).String())
}
