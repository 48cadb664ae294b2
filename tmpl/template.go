package tmpl

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/klauspost/readahead"

	"github.com/ardnew/sout/log"
)

// Template is a compiled template.
//
// A Template is immutable and safe for concurrent use; each call to
// [Template.Render] walks the same tree with its own [Scope] chain.
type Template struct {
	root      *Container
	nameHook  NameHooks
	valueHook ValueHooks
	iterHook  IterHooks
	logger    log.Logger
	delims    Delimiters
}

// Option configures a [Template] at compile time.
type Option func(*Template)

// WithDelimiters sets the four special runes of the template syntax.
func WithDelimiters(d Delimiters) Option {
	return func(t *Template) { t.delims = d }
}

// WithNameHook appends h to the hooks tried before resolving a name.
func WithNameHook(h NameHook) Option {
	return func(t *Template) { t.nameHook = append(t.nameHook, h) }
}

// WithValueHook appends h to the hooks tried before writing a resolved value.
func WithValueHook(h ValueHook) Option {
	return func(t *Template) { t.valueHook = append(t.valueHook, h) }
}

// WithIterHook appends h to the hooks tried before the built-in iteration
// rules.
func WithIterHook(h IterHook) Option {
	return func(t *Template) { t.iterHook = append(t.iterHook, h) }
}

// WithLogger sets the logger used for trace output while compiling and
// rendering. The zero [log.Logger] discards everything.
func WithLogger(logger log.Logger) Option {
	return func(t *Template) {
		t.logger = logger.With(slog.String("component", "tmpl"))
	}
}

// Compile parses src into a [Template].
func Compile(ctx context.Context, src string, opts ...Option) (*Template, error) {
	t := &Template{delims: DefaultDelimiters}

	for _, opt := range opts {
		opt(t)
	}

	root, err := Parse(src, t.delims)
	if err != nil {
		t.logger.TraceContext(ctx, "compile failed", slog.Any("error", err))

		return nil, err
	}

	t.root = root

	t.logger.TraceContext(ctx, "compile complete",
		slog.Int("bytes", len(src)),
		slog.Int("nodes", countNodes(root)),
		slog.String("delimiters", t.delims.String()),
	)

	return t, nil
}

// CompileReader reads all of r and parses it into a [Template].
func CompileReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Template, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrRead.Wrap(err)
	}

	return Compile(ctx, string(data), opts...)
}

// MustCompile is like [Compile] but panics on error.
func MustCompile(src string, opts ...Option) *Template {
	t, err := Compile(context.Background(), src, opts...)
	if err != nil {
		panic(err)
	}

	return t
}

// Render writes the template rendered against model to w.
//
// Output written before an error remains written. Cancellation of ctx is
// observed between loop elements.
func (t *Template) Render(ctx context.Context, w io.Writer, model any) error {
	return t.RenderIn(newScope(ctx, t.logger), w, model)
}

// RenderIn is like [Template.Render] but renders within an existing scope,
// so bindings and the context of an enclosing render call remain visible.
// Hooks use it to render nested templates.
func (t *Template) RenderIn(scope *Scope, w io.Writer, model any) error {
	st := &state{ctx: scope.Context(), w: w, t: t}

	t.logger.TraceContext(st.ctx, "render start",
		slog.Int("depth", scope.Depth()),
		typeAttr(model),
	)

	if err := t.root.render(st, model, scope); err != nil {
		t.logger.TraceContext(st.ctx, "render failed", slog.Any("error", err))

		return err
	}

	t.logger.TraceContext(st.ctx, "render complete")

	return nil
}

// Root returns the root of the template tree.
func (t *Template) Root() *Container { return t.root }

// Delimiters returns the delimiters the template was compiled with.
func (t *Template) Delimiters() Delimiters { return t.delims }

// String reconstructs template source from the tree.
func (t *Template) String() string {
	return Unparse(t.root, t.delims)
}

// Unparse reconstructs template source for n using delimiters d.
func Unparse(n Node, d Delimiters) string {
	var sb strings.Builder

	n.unparse(&sb, d)

	return sb.String()
}

func countNodes(n Node) int {
	count := 1

	switch n := n.(type) {
	case *Container:
		for c := range n.Children() {
			count += countNodes(c)
		}

	case *Loop:
		for _, part := range n.Parts() {
			if part != nil {
				count += countNodes(part)
			}
		}
	}

	return count
}
