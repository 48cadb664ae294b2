package tmpl

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Fields is implemented by models that resolve names themselves instead of
// through reflection.
type Fields interface {
	Field(name string) (any, bool)
}

// nameSep separates the segments of a compound name.
const nameSep = "."

// maxSuggestions bounds the "did you mean" candidates in [ErrNameNotFound].
const maxSuggestions = 3

// tagKey is the struct tag consulted when matching field names.
const tagKey = "sout"

// Resolve returns the value named by name in model.
//
// The empty name resolves to model itself. A dotted name resolves each
// segment against the result of the previous one and fails at the first
// segment that cannot be resolved.
//
// Each segment is looked up, in order, through [Fields], as a key of a map
// with string keys, as an exported struct field (matching the "sout" tag,
// then the exact field name, then the field name ignoring case), and as a
// niladic method returning a value and optionally an error.
//
// Nesting into a nil value is [ErrNullModel]. A missing name on a map or
// struct is [ErrNameNotFound]. Any other model is [ErrUnsupportedModel].
func Resolve(model any, name string) (any, error) {
	if name == "" {
		return model, nil
	}

	v := model

	for seg := range strings.SplitSeq(name, nameSep) {
		var err error

		v, err = resolveSegment(v, seg)
		if err != nil {
			var e *Error
			if errors.As(err, &e) {
				return nil, e.With(slog.String("name", name))
			}

			return nil, err
		}
	}

	return v, nil
}

func resolveSegment(model any, seg string) (any, error) {
	if isNil(model) {
		return nil, ErrNullModel.With(
			slog.String("segment", seg),
			typeAttr(model),
		)
	}

	if f, ok := model.(Fields); ok {
		if v, ok := f.Field(seg); ok {
			return v, nil
		}

		return nil, notFound(seg, nil)
	}

	orig := reflect.ValueOf(model)
	v := reflect.Indirect(orig)

	var candidates []string

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			break
		}

		e := v.MapIndex(reflect.ValueOf(seg).Convert(v.Type().Key()))
		if e.IsValid() {
			return e.Interface(), nil
		}

		for _, k := range v.MapKeys() {
			candidates = append(candidates, k.String())
		}

	case reflect.Struct:
		fv, ok, err := structField(v, seg)
		if err != nil {
			return nil, err
		}

		if ok {
			return fv, nil
		}

		candidates = fieldNames(v.Type())
	}

	if r, ok, err := callMethod(orig, seg); ok || err != nil {
		return r, err
	}

	switch v.Kind() {
	case reflect.Struct:
		return nil, notFound(seg, append(candidates, methodNames(orig)...))

	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String {
			return nil, notFound(seg, candidates)
		}
	}

	return nil, ErrUnsupportedModel.With(
		slog.String("segment", seg),
		typeAttr(model),
	)
}

// structField finds the exported field of v named seg.
func structField(v reflect.Value, seg string) (any, bool, error) {
	fields := reflect.VisibleFields(v.Type())

	match := []func(reflect.StructField) bool{
		func(f reflect.StructField) bool { return tagName(f) == seg },
		func(f reflect.StructField) bool { return f.Name == seg },
		func(f reflect.StructField) bool { return strings.EqualFold(f.Name, seg) },
	}

	for _, m := range match {
		for _, f := range fields {
			if !f.IsExported() || tagName(f) == "-" || !m(f) {
				continue
			}

			fv, err := v.FieldByIndexErr(f.Index)
			if err != nil {
				return nil, false, ErrNullModel.
					With(slog.String("segment", seg)).
					Wrap(err)
			}

			return fv.Interface(), true, nil
		}
	}

	return nil, false, nil
}

func tagName(f reflect.StructField) string {
	tag, _, _ := strings.Cut(f.Tag.Get(tagKey), ",")

	return tag
}

func fieldNames(t reflect.Type) []string {
	var names []string

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}

		switch tag := tagName(f); tag {
		case "-":
		case "":
			names = append(names, f.Name)
		default:
			names = append(names, tag)
		}
	}

	return names
}

// callMethod calls the niladic method of v named seg (or named seg ignoring
// case) and reports whether such a method exists.
func callMethod(v reflect.Value, seg string) (any, bool, error) {
	m := v.MethodByName(seg)

	if !m.IsValid() {
		t := v.Type()
		for i := range t.NumMethod() {
			if strings.EqualFold(t.Method(i).Name, seg) {
				m = v.Method(i)

				break
			}
		}
	}

	if !m.IsValid() || !isGetter(m.Type()) {
		return nil, false, nil
	}

	out, err := call(m)
	if err != nil {
		return nil, true, ErrCall.With(slog.String("method", seg)).Wrap(err)
	}

	if len(out) == 2 && !out[1].IsNil() {
		err, _ := out[1].Interface().(error)

		return nil, true, ErrCall.With(slog.String("method", seg)).Wrap(err)
	}

	return out[0].Interface(), true, nil
}

// call calls the niladic method m, returning a panic as an error. A method
// promoted through a nil embedded pointer panics when called.
func call(m reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return m.Call(nil), nil
}

var errorType = reflect.TypeFor[error]()

// isGetter reports whether t is func() T or func() (T, error).
func isGetter(t reflect.Type) bool {
	switch t.NumOut() {
	case 1:
		return t.NumIn() == 0
	case 2:
		return t.NumIn() == 0 && t.Out(1) == errorType
	default:
		return false
	}
}

func methodNames(v reflect.Value) []string {
	var names []string

	for i := range v.NumMethod() {
		if isGetter(v.Method(i).Type()) {
			names = append(names, v.Type().Method(i).Name)
		}
	}

	return names
}

// notFound returns [ErrNameNotFound] for seg, suggesting the candidates most
// similar to it.
func notFound(seg string, candidates []string) *Error {
	err := ErrNameNotFound.With(slog.String("segment", seg))

	var suggest []string

	for _, m := range fuzzy.Find(seg, candidates) {
		if len(suggest) == maxSuggestions {
			break
		}

		suggest = append(suggest, m.Str)
	}

	if len(suggest) == 0 {
		return err.Wrap(errors.New(strconv.Quote(seg)))
	}

	return err.
		With(slog.Any("suggest", suggest)).
		Wrap(errors.New(strconv.Quote(seg) + " (did you mean " +
			strings.Join(suggest, ", ") + "?)"))
}
