package cmd

import (
	"errors"
	"testing"
)

func TestReplRejectsStdin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		repl    Repl
		wantErr error
	}{
		{"data", Repl{Data: []string{"-"}}, ErrLoadData},
		{"partial", Repl{Hooks: Hooks{Partial: map[string]string{"p": "-"}}}, ErrPartial},
	}

	for _, tt := range tests {
		ctx, out := withStreams("")

		if err := tt.repl.Run(ctx); !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.wantErr, err)
		}

		if out.Len() != 0 {
			t.Errorf("%s: expected no output, got %q", tt.name, out.String())
		}
	}
}
