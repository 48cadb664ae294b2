package hook

import (
	"io"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/ardnew/sout/tmpl"
)

// Templates is a registry of named templates. As a [tmpl.NameHook] it
// claims every name it holds and renders that template in place of the
// reference, against the same model and within the same scope.
//
// A Templates is safe for concurrent use.
type Templates struct {
	mu sync.RWMutex
	m  map[string]*tmpl.Template
}

// activeKey binds the names of the nested templates being rendered.
type activeKey struct{}

// NewTemplates returns an empty registry.
func NewTemplates() *Templates {
	return &Templates{m: make(map[string]*tmpl.Template)}
}

// Put registers t under name, replacing any template already registered.
func (r *Templates) Put(name string, t *tmpl.Template) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.m[name] = t
}

// Get returns the template registered under name.
func (r *Templates) Get(name string) (*tmpl.Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.m[name]

	return t, ok
}

// Names returns the registered names in sorted order.
func (r *Templates) Names() iter.Seq[string] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Values(slices.Sorted(maps.Keys(r.m)))
}

// RenderName implements [tmpl.NameHook].
//
// A template that references itself, directly or through other registered
// templates, fails with [ErrRecursion].
func (r *Templates) RenderName(
	w io.Writer,
	model any,
	name string,
	scope *tmpl.Scope,
) (bool, error) {
	t, ok := r.Get(name)
	if !ok {
		return false, nil
	}

	var active []string
	if v, ok := scope.Lookup(activeKey{}); ok {
		active, _ = v.([]string)
	}

	if slices.Contains(active, name) {
		return true, ErrRecursion.With(
			slog.String("name", name),
			slog.Any("chain", active),
		)
	}

	scope.Set(activeKey{}, append(slices.Clip(active), name))
	defer scope.Set(activeKey{}, active)

	scope.Logger().TraceContext(scope.Context(), "rendering nested template",
		slog.String("name", name),
		slog.Int("depth", len(active)+1),
	)

	return true, t.RenderIn(scope, w, model)
}
