package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardnew/sout/tmpl"
)

func TestRenderRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		data     []string // file contents, written in order
		hooks    Hooks
		partials map[string]string // name -> content
		want     string
	}{
		{
			name:     "names and loops",
			template: "Hello {name}!{items|\n- {}}",
			data:     []string{"name: Piet\nitems: [a, b]\n"},
			want:     "Hello Piet!\n- a\n- b",
		},
		{
			name:     "merged data",
			template: "{name} {user.x}{user.y}",
			data:     []string{"name: A\nuser: {x: 1}\n", `{"user": {"y": 2}}`},
			want:     "A 12",
		},
		{
			name:     "partials",
			template: "{header}\n{rows|{row}|\n}",
			data:     []string{"title: T\nrows: [{v: 1}, {v: 2}]\n"},
			partials: map[string]string{"header": "== {title} ==", "row": "* {v}"},
			want:     "== T ==\n* 1\n* 2",
		},
		{
			name:     "expressions",
			template: "{=len(items)} items",
			data:     []string{"items: [1, 2, 3]\n"},
			hooks:    Hooks{Expr: true},
			want:     "3 items",
		},
		{
			name:     "maps iterate sorted",
			template: "{m|{Key}={Value}|,}",
			data:     []string{"m: {b: 2, a: 1}\n"},
			want:     "a=1,b=2",
		},
		{
			name:     "null iterates empty",
			template: "[{xs|x|,|<|>}]",
			data:     []string{"xs: null\n"},
			want:     "[]",
		},
		{
			name:     "no data",
			template: `plain \{text\}`,
			want:     "plain {text}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()

			r := &Render{
				Hooks:    tt.hooks,
				Output:   "-",
				Template: writeFile(t, dir, "main.tmpl", tt.template),
			}

			for i, content := range tt.data {
				r.Data = append(r.Data, writeFile(t, dir, "data"+string(rune('0'+i))+".yaml", content))
			}

			for name, content := range tt.partials {
				if r.Partial == nil {
					r.Partial = map[string]string{}
				}

				r.Partial[name] = writeFile(t, dir, name+".tmpl", content)
			}

			ctx, out := withStreams("")

			if err := r.Run(ctx); err != nil {
				t.Fatalf("Render.Run() error = %v", err)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRenderStdinAndOutputFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := filepath.Join(dir, "out.txt")

	r := &Render{
		Data:     []string{writeFile(t, dir, "data.yaml", "who: world\n")},
		Output:   output,
		Template: "-",
	}

	ctx, out := withStreams("hello {who}\n")

	if err := r.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if out.Len() != 0 {
		t.Errorf("expected nothing on stdout, got %q", out.String())
	}

	buf, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(buf); got != "hello world\n" {
		t.Errorf("unexpected output file content %q", got)
	}
}

func TestRenderDelimiters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	r := &Render{
		Data:     []string{writeFile(t, dir, "data.yaml", "xs: [1, 2]\n")},
		Output:   "-",
		Template: writeFile(t, dir, "main.tmpl", "{<xs,<>,; >}"),
	}

	ctx, out := withStreams("")
	ctx = WithDelimiters(ctx, tmpl.Delimiters{Open: '<', Separator: ',', Close: '>', Escape: '~'})

	if err := r.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if got := out.String(); got != "{1; 2}" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestRenderStdinPartial(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	ctx, out := withStreams("<{name}>")

	r := &Render{
		Hooks:    Hooks{Partial: map[string]string{"wrap": "-"}},
		Data:     []string{writeFile(t, dir, "data.yaml", "name: Piet\n")},
		Output:   "-",
		Template: writeFile(t, dir, "main.tmpl", "Hi {wrap}"),
	}

	if err := r.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if got := out.String(); got != "Hi <Piet>" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := writeFile(t, dir, "data.yaml", "name: Piet\n")

	tests := []struct {
		name    string
		render  Render
		wantErr []error
		wantOut string
	}{
		{
			name:    "syntax",
			render:  Render{Template: writeFile(t, dir, "bad.tmpl", "{name")},
			wantErr: []error{ErrCompile, tmpl.ErrUnclosedBlock},
		},
		{
			name:    "missing name",
			render:  Render{Data: []string{data}, Template: writeFile(t, dir, "miss.tmpl", "Hi {nme}")},
			wantErr: []error{ErrRender, tmpl.ErrNameNotFound},
			wantOut: "Hi ",
		},
		{
			name:    "missing template",
			render:  Render{Template: filepath.Join(dir, "none.tmpl")},
			wantErr: []error{ErrOpenSource},
		},
		{
			name:    "missing data",
			render:  Render{Data: []string{filepath.Join(dir, "none.yaml")}, Template: "-"},
			wantErr: []error{ErrLoadData, ErrOpenSource},
		},
		{
			name:    "stdin twice",
			render:  Render{Data: []string{"-"}, Template: "-"},
			wantErr: []error{ErrOpenSource},
		},
		{
			name: "stdin template and partial",
			render: Render{
				Hooks:    Hooks{Partial: map[string]string{"p": "-"}},
				Template: "-",
			},
			wantErr: []error{ErrOpenSource},
		},
		{
			name: "stdin data and partial",
			render: Render{
				Hooks:    Hooks{Partial: map[string]string{"p": "-"}},
				Data:     []string{"-"},
				Template: writeFile(t, dir, "ok.tmpl", "ok"),
			},
			wantErr: []error{ErrOpenSource},
		},
		{
			name: "bad partial",
			render: Render{
				Hooks:    Hooks{Partial: map[string]string{"p": writeFile(t, dir, "p.tmpl", "{")}},
				Template: "-",
			},
			wantErr: []error{ErrPartial, ErrCompile},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := tt.render
			r.Output = "-"

			ctx, out := withStreams("")

			err := r.Run(ctx)
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("expected error matching %v, got %v", want, err)
				}
			}

			if got := out.String(); got != tt.wantOut {
				t.Errorf("expected output %q, got %q", tt.wantOut, got)
			}
		})
	}
}
