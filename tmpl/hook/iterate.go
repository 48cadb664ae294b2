package hook

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/ardnew/sout/tmpl"
)

// Nil claims nil collections and iterates them as empty, so a loop over a
// missing value renders nothing instead of failing.
var Nil tmpl.IterHook = tmpl.IterFunc(func(model any, _ *tmpl.Scope) (tmpl.Cursor, bool) {
	if !isNil(model) {
		return nil, false
	}

	return tmpl.Empty(), true
})

// Entry is an element of a map iterated by [Map].
type Entry struct {
	Key   any
	Value any
}

// String returns the entry as "key=value".
func (e Entry) String() string { return fmt.Sprintf("%v=%v", e.Key, e.Value) }

// Map claims maps and iterates their entries as [Entry] values in key order.
var Map tmpl.IterHook = tmpl.IterFunc(func(model any, _ *tmpl.Scope) (tmpl.Cursor, bool) {
	v := reflect.ValueOf(model)
	if v.Kind() != reflect.Map {
		return nil, false
	}

	entries := make([]Entry, 0, v.Len())

	for it := v.MapRange(); it.Next(); {
		entries = append(entries, Entry{
			Key:   it.Key().Interface(),
			Value: it.Value().Interface(),
		})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return compareKeys(reflect.ValueOf(a.Key), reflect.ValueOf(b.Key))
	})

	return tmpl.Values(entries...), true
})

// compareKeys orders map keys of the same type: numbers, strings and bools
// by value, anything else by its formatted text.
func compareKeys(a, b reflect.Value) int {
	if a.Kind() != b.Kind() {
		return cmp.Compare(a.Kind(), b.Kind())
	}

	switch a.Kind() {
	case reflect.Invalid:
		return 0

	case reflect.String:
		return cmp.Compare(a.String(), b.String())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint())

	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())

	case reflect.Bool:
		switch {
		case a.Bool() == b.Bool():
			return 0
		case !a.Bool():
			return -1
		default:
			return 1
		}
	}

	return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
