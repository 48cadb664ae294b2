package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/sout/log"
)

const defaultEditor = "vi"

// editModelCommand implements [tea.ExecCommand] for the edit-decode-retry
// loop. It writes the model as YAML to a temp file, opens the user's editor,
// and decodes the result. On a decode error the user is asked to edit again;
// declining exits the program.
type editModelCommand struct {
	data     any
	ctxFunc  func() context.Context
	logger   log.Logger
	newData  any
	replaced bool
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editModelCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editModelCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editModelCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. If the user declines to edit again after a
// decode error, it returns [ErrEditDeclined]. An emptied file cancels the
// edit and leaves the model unchanged.
func (c *editModelCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := yaml.MarshalContext(ctx, c.data, yaml.Indent(2))
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	f, err := os.CreateTemp("", "sout-model-*.yaml")
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	prompt := bufio.NewScanner(c.stdin)

	for {
		if err := os.WriteFile(path, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		if content, err = os.ReadFile(path); err != nil {
			return err
		}

		if strings.TrimSpace(string(content)) == "" {
			return nil
		}

		data, decodeErr := decodeModel(ctx, content)
		c.logger.TraceContext(ctx, "editor decode attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", decodeErr == nil),
		)

		if decodeErr == nil {
			c.newData, c.replaced = data, true

			return nil
		}

		fmt.Fprintf(c.stderr, "\nDecode error: %s\n", decodeErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		if !prompt.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(prompt.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// decodeModel decodes a YAML (or JSON) document into a generic model.
func decodeModel(ctx context.Context, content []byte) (any, error) {
	var data any

	if err := yaml.UnmarshalContext(ctx, content, &data); err != nil {
		return nil, err
	}

	return data, nil
}

// runEditor opens path in $EDITOR, or [defaultEditor] if unset, and waits for
// it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
