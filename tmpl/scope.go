package tmpl

import (
	"context"

	"github.com/ardnew/sout/log"
)

// Scope is the lookup chain active at a point in rendering.
//
// Every render call starts with a root Scope, and each active loop adds one
// nested Scope that is discarded when the loop returns. Hooks may attach
// bindings with [Scope.Set]; [Scope.Lookup] searches the chain from the
// innermost Scope outward.
//
// A Scope belongs to a single render call and must not be retained or shared
// across goroutines.
type Scope struct {
	parent *Scope
	root   *rootScope
	vars   map[any]any
	depth  int
}

type rootScope struct {
	ctx    context.Context
	logger log.Logger
}

// NewScope returns a root Scope bound to ctx.
// It is useful for calling [Template.RenderIn] or hooks directly.
func NewScope(ctx context.Context) *Scope {
	return newScope(ctx, log.Logger{})
}

func newScope(ctx context.Context, logger log.Logger) *Scope {
	if ctx == nil {
		ctx = context.Background()
	}

	return &Scope{root: &rootScope{ctx: ctx, logger: logger}}
}

// nest returns a new Scope nested in s.
func (s *Scope) nest() *Scope {
	return &Scope{parent: s, root: s.root, depth: s.depth + 1}
}

// Parent returns the enclosing Scope, or nil for a root Scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Depth returns the loop nesting depth of s. A root Scope has depth 0.
func (s *Scope) Depth() int { return s.depth }

// Context returns the context of the render call that owns s.
func (s *Scope) Context() context.Context { return s.root.ctx }

// Logger returns the logger of the template being rendered.
func (s *Scope) Logger() log.Logger { return s.root.logger }

// Set binds key to value in s, shadowing any binding of key in enclosing
// scopes.
func (s *Scope) Set(key, value any) {
	if s.vars == nil {
		s.vars = make(map[any]any)
	}

	s.vars[key] = value
}

// Lookup returns the value bound to key in s or the nearest enclosing Scope.
func (s *Scope) Lookup(key any) (any, bool) {
	for c := s; c != nil; c = c.parent {
		if v, ok := c.vars[key]; ok {
			return v, true
		}
	}

	return nil, false
}
