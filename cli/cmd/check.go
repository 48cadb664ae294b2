package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/sout/log"
	"github.com/ardnew/sout/tmpl"
)

// Check compiles templates and reports their syntax errors.
type Check struct {
	Templates []string `arg:"" help:"Template file(s) or '-' for stdin." name:"template"`
}

// Run executes the check command. Each failure is printed as
// "path:line:column message"; the command fails if any template does.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	paths, err := uniqueSources(c.Templates)
	if err != nil {
		return err
	}

	out := streamsFrom(ctx).Out
	opt := tmpl.WithDelimiters(delimitersFrom(ctx))
	failed := 0

	for _, path := range paths {
		if err := checkFile(ctx, path, opt); err != nil {
			failed++

			fmt.Fprintf(out, "%s:%v\n", path, err)
			log.DebugContext(ctx, "check failed",
				slog.String("path", path),
				slog.Any("error", err),
			)

			continue
		}

		log.DebugContext(ctx, "check passed", slog.String("path", path))
	}

	if failed > 0 {
		return ErrCheck.With(
			slog.Int("failed", failed),
			slog.Int("total", len(paths)),
		)
	}

	return nil
}

func checkFile(ctx context.Context, path string, opts ...tmpl.Option) error {
	src, err := openSource(ctx, path)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = tmpl.CompileReader(ctx, src, opts...)

	return err
}
