package hook

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"
	"sync"

	"github.com/ardnew/mung"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/sout/tmpl"
)

// ExprPrefix marks a name reference as an expression.
const ExprPrefix = "="

// Expr is a [tmpl.NameHook] that evaluates names beginning with [ExprPrefix]
// as expr-lang expressions and writes the result:
//
//	{=len(items)} items, total {=sum(items, .Price)}
//
// The expression environment holds the keys of a map[string]any model, the
// model itself as "it", and these builtins:
//
//	env(name)                        value of an environment variable
//	file.exists(path), file.isDir(path)
//	mung.prefix(list, item...)       prepend items to a PATH-like list
//	mung.prefixif(list, pred, item...)
//
// Compiled programs are cached by source, so an Expr should be reused
// across renders. Separator and close runes inside an expression must be
// escaped.
type Expr struct {
	programs sync.Map // source -> *vm.Program
	env      map[string]any
}

// NewExpr returns an Expr whose environment adds the given bindings to the
// builtins.
func NewExpr(env map[string]any) *Expr {
	e := &Expr{env: builtins()}
	maps.Copy(e.env, env)

	return e
}

// RenderName implements [tmpl.NameHook].
func (e *Expr) RenderName(
	w io.Writer,
	model any,
	name string,
	scope *tmpl.Scope,
) (bool, error) {
	src, ok := strings.CutPrefix(name, ExprPrefix)
	if !ok {
		return false, nil
	}

	program, err := e.compile(src)
	if err != nil {
		return true, err
	}

	out, err := expr.Run(program, e.bind(model))
	if err != nil {
		return true, ErrExprRun.With(slog.String("expr", src)).Wrap(err)
	}

	if out == nil {
		return true, tmpl.ErrNullValue.With(slog.String("expr", src))
	}

	scope.Logger().TraceContext(scope.Context(), "evaluated expression",
		slog.String("expr", src),
		slog.String("type", fmt.Sprintf("%T", out)),
	)

	_, err = fmt.Fprint(w, out)

	return true, err
}

// Eval compiles and runs src against model.
func (e *Expr) Eval(src string, model any) (any, error) {
	program, err := e.compile(src)
	if err != nil {
		return nil, err
	}

	out, err := expr.Run(program, e.bind(model))
	if err != nil {
		return nil, ErrExprRun.With(slog.String("expr", src)).Wrap(err)
	}

	return out, nil
}

func (e *Expr) compile(src string) (*vm.Program, error) {
	if p, ok := e.programs.Load(src); ok {
		return p.(*vm.Program), nil
	}

	program, err := expr.Compile(src)
	if err != nil {
		return nil, ErrExprCompile.With(slog.String("expr", src)).Wrap(err)
	}

	p, _ := e.programs.LoadOrStore(src, program)

	return p.(*vm.Program), nil
}

// bind returns the environment for evaluating against model.
func (e *Expr) bind(model any) map[string]any {
	env := maps.Clone(e.env)

	if m, ok := model.(map[string]any); ok {
		maps.Copy(env, m)
	}

	env["it"] = model

	return env
}

func builtins() map[string]any {
	return map[string]any{
		"env": os.Getenv,
		"file": map[string]any{
			"exists": fileExists,
			"isDir":  fileIsDir,
		},
		"mung": map[string]any{
			"prefix":   mungPrefix,
			"prefixif": mungPrefixIf,
		},
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func mungPrefix(list string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

func mungPrefixIf(list string, predicate func(string) bool, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}
