package cmd

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/ardnew/sout/log"
	"github.com/ardnew/sout/tmpl"
	"github.com/ardnew/sout/tmpl/hook"
)

// Hooks are the flags selecting the extension hooks installed on every
// compiled template. Nil collections always iterate as empty and maps
// always iterate as sorted key/value entries.
type Hooks struct {
	Partial    map[string]string `help:"Register nested template NAME read from FILE."        placeholder:"NAME=FILE" short:"p"`
	TimeLayout string            `help:"Render time values with this Go time layout."         placeholder:"LAYOUT"`
	Expr       bool              `help:"Evaluate names beginning with '=' as expr-lang code." short:"x"`
}

// stdinPartials returns the names of partials read from stdin, sorted.
func (h Hooks) stdinPartials() []string {
	var names []string

	for name, path := range h.Partial {
		if path == stdinSource {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}

// options returns the compile options selected by h, compiling partials
// along the way. Partials are compiled with the same options, so they may
// reference each other.
func (h Hooks) options(ctx context.Context) ([]tmpl.Option, error) {
	opts := []tmpl.Option{
		tmpl.WithDelimiters(delimitersFrom(ctx)),
		tmpl.WithLogger(log.Default()),
		tmpl.WithIterHook(hook.Nil),
		tmpl.WithIterHook(hook.Map),
	}

	var partials *hook.Templates
	if len(h.Partial) > 0 {
		partials = hook.NewTemplates()
		opts = append(opts, tmpl.WithNameHook(partials))
	}

	if h.Expr {
		opts = append(opts, tmpl.WithNameHook(hook.NewExpr(nil)))
	}

	if h.TimeLayout != "" {
		opts = append(opts, tmpl.WithValueHook(hook.Time(h.TimeLayout)))
	}

	for _, name := range slices.Sorted(maps.Keys(h.Partial)) {
		path := h.Partial[name]
		if name == "" || path == "" {
			return nil, ErrPartial.With(
				slog.String("name", name),
				slog.String("path", path),
			)
		}

		t, err := compileFile(ctx, path, opts...)
		if err != nil {
			return nil, ErrPartial.With(slog.String("name", name)).Wrap(err)
		}

		partials.Put(name, t)

		log.DebugContext(ctx, "registered partial",
			slog.String("name", name),
			slog.String("path", path),
		)
	}

	return opts, nil
}

// compileFile compiles the template read from path ("-" for stdin).
func compileFile(
	ctx context.Context,
	path string,
	opts ...tmpl.Option,
) (*tmpl.Template, error) {
	src, err := openSource(ctx, path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	t, err := tmpl.CompileReader(ctx, src, opts...)
	if err != nil {
		return nil, ErrCompile.With(slog.String("path", src.name)).Wrap(err)
	}

	return t, nil
}
