// Package hook provides ready-made [tmpl.NameHook], [tmpl.ValueHook], and
// [tmpl.IterHook] implementations.
//
//   - [Templates] forwards names to nested templates.
//   - [Expr] evaluates names beginning with "=" as expr-lang expressions.
//   - [Time] and [Stringer] format leaf values.
//   - [Nil] and [Map] extend what loops can iterate.
//
// Install them with the options of package tmpl:
//
//	partials := hook.NewTemplates()
//	t, err := tmpl.Compile(ctx, src,
//		tmpl.WithNameHook(partials),
//		tmpl.WithValueHook(hook.Time(time.DateOnly)),
//		tmpl.WithIterHook(hook.Map),
//	)
package hook
