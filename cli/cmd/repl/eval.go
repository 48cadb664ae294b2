package repl

import (
	"context"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/sout/tmpl"
	"github.com/ardnew/sout/tmpl/hook"
)

// evaluator renders input lines as templates against a data model.
//
// Compiled templates are memoized by the xxh3 hash of their source, so
// recalling a line from history does not parse it again.
type evaluator struct {
	mu     sync.Mutex
	memo   map[uint64]compiled
	opts   []tmpl.Option
	delims tmpl.Delimiters
	data   any
}

type compiled struct {
	src string
	t   *tmpl.Template
}

func newEvaluator(data any, opts ...tmpl.Option) *evaluator {
	e := &evaluator{
		memo:   make(map[uint64]compiled),
		opts:   opts,
		delims: tmpl.DefaultDelimiters,
		data:   data,
	}

	// An empty template reveals the delimiters selected by opts.
	if t, err := tmpl.Compile(context.Background(), "", opts...); err == nil {
		e.delims = t.Delimiters()
	}

	return e
}

// model returns the current data model.
func (e *evaluator) model() any {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.data
}

// setModel replaces the data model.
func (e *evaluator) setModel(data any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.data = data
}

// compile returns the template for src, compiling it on first use.
func (e *evaluator) compile(ctx context.Context, src string) (*tmpl.Template, error) {
	key := xxh3.HashString(src)

	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.memo[key]; ok && c.src == src {
		return c.t, nil
	}

	t, err := tmpl.Compile(ctx, src, e.opts...)
	if err != nil {
		return nil, err
	}

	e.memo[key] = compiled{src: src, t: t}

	return t, nil
}

// eval renders src against the data model. On a render error the partial
// output is returned with the error.
func (e *evaluator) eval(ctx context.Context, src string) (string, error) {
	t, err := e.compile(ctx, src)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	err = t.Render(ctx, &sb, e.model())

	return sb.String(), err
}

// candidates returns the names that can follow path inside the loops
// named by loops, outermost first. Each loop is entered through its first
// element.
func (e *evaluator) candidates(loops []string, path string) []string {
	cur := e.model()

	for _, name := range loops {
		coll, err := tmpl.Resolve(cur, name)
		if err != nil {
			return nil
		}

		var ok bool
		if cur, ok = first(coll); !ok {
			return nil
		}
	}

	if path != "" {
		var err error
		if cur, err = tmpl.Resolve(cur, path); err != nil {
			return nil
		}
	}

	return keysOf(cur)
}

// first returns the first element of coll. Maps yield a [hook.Entry].
func first(coll any) (any, bool) {
	if reflect.ValueOf(coll).Kind() == reflect.Map {
		return hook.Entry{}, true
	}

	c, err := tmpl.Iterate(coll)
	if err != nil {
		return nil, false
	}

	if s, ok := c.(interface{ Stop() }); ok {
		defer s.Stop()
	}

	return c.Next()
}

// keysOf returns the sorted names resolvable directly on v: the string
// keys of a map, or the exported fields of a struct.
func keysOf(v any) []string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	var keys []string

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}

		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}

	case reflect.Struct:
		for _, f := range reflect.VisibleFields(rv.Type()) {
			if !f.IsExported() || f.Anonymous {
				continue
			}

			name, _, _ := strings.Cut(f.Tag.Get("sout"), ",")

			switch name {
			case "-":
				continue
			case "":
				name = f.Name
			}

			keys = append(keys, name)
		}
	}

	slices.Sort(keys)

	return slices.Compact(keys)
}
