package cmd

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/ardnew/sout/log"
)

// Render renders a template against a data model.
type Render struct {
	Hooks `embed:""`

	Data   []string `help:"Data model file(s) in YAML or JSON, merged in order, or '-' for stdin." placeholder:"FILE" short:"d"`
	Output string   `default:"-"                                                                  help:"Output file or '-' for stdout." short:"o"`

	Template string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"template"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if r.stdinReaders() > 1 {
		return ErrOpenSource.With(
			slog.String("reason", "stdin read by more than one of template, data, and partials"),
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

	t, err := compileFile(ctx, r.Template, opts...)
	if err != nil {
		return err
	}

	w, closeOutput, err := r.output(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := closeOutput(); err == nil && cerr != nil {
			err = ErrRender.With(slog.String("output", r.Output)).Wrap(cerr)
		}
	}()

	if err := t.Render(ctx, w, data); err != nil {
		return ErrRender.With(slog.String("template", r.Template)).Wrap(err)
	}

	log.DebugContext(ctx, "rendered template",
		slog.String("template", r.Template),
		slog.Int("data_files", len(r.Data)),
		slog.String("output", r.Output),
	)

	return nil
}

// stdinReaders counts the template, the data files, and each partial that
// read from stdin. Repeated "-" data files collapse into one reader.
func (r *Render) stdinReaders() int {
	n := len(r.stdinPartials())

	if r.Template == stdinSource {
		n++
	}

	if slices.Contains(r.Data, stdinSource) {
		n++
	}

	return n
}

// output returns a buffered writer for the output destination and a
// function flushing and closing it.
func (r *Render) output(ctx context.Context) (io.Writer, func() error, error) {
	var (
		dst    io.Writer
		closer = func() error { return nil }
	)

	if r.Output == stdinSource {
		dst = streamsFrom(ctx).Out
	} else {
		f, err := os.Create(r.Output)
		if err != nil {
			return nil, nil, ErrRender.With(slog.String("output", r.Output)).Wrap(err)
		}

		dst, closer = f, f.Close
	}

	bw := bufio.NewWriter(dst)

	return bw, func() error {
		if err := bw.Flush(); err != nil {
			_ = closer()

			return err
		}

		return closer()
	}, nil
}
