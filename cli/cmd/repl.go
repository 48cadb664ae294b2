package cmd

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ardnew/sout/cli/cmd/repl"
	"github.com/ardnew/sout/log"
)

// Repl renders templates typed interactively against a data model.
type Repl struct {
	Hooks `embed:""`

	Data []string `help:"Data model file(s) in YAML or JSON, merged in order." placeholder:"FILE" short:"d"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	if slices.Contains(r.Data, stdinSource) {
		return ErrLoadData.With(
			slog.String("reason", "stdin is reserved for interactive input"),
		)
	}

	if names := r.stdinPartials(); len(names) > 0 {
		return ErrPartial.With(
			slog.Any("names", names),
			slog.String("reason", "stdin is reserved for interactive input"),
		)
	}

	opts, err := r.options(ctx)
	if err != nil {
		return err
	}

	data, err := loadData(ctx, r.Data)
	if err != nil {
		return err
	}

	return repl.Run(ctx, data, kongVar(ctx, CacheIdentifier), log.Default(), opts...)
}
