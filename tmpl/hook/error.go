package hook

import "github.com/ardnew/sout/tmpl"

// Predefined errors (sentinel values).
var (
	ErrRecursion   = tmpl.NewError(tmpl.KindRender, "recursive nested template")
	ErrExprCompile = tmpl.NewError(tmpl.KindRender, "failed to compile expression")
	ErrExprRun     = tmpl.NewError(tmpl.KindRender, "failed to evaluate expression")
)
