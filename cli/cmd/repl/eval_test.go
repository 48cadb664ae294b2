package repl

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/ardnew/sout/tmpl"
	"github.com/ardnew/sout/tmpl/hook"
)

func TestEvaluatorEval(t *testing.T) {
	t.Parallel()

	e := newEvaluator(map[string]any{
		"name":  "Piet",
		"items": []any{1, 2, 3},
	})

	tests := []struct {
		src     string
		want    string
		wantErr error
	}{
		{"Hello {name}!", "Hello Piet!", nil},
		{"{items|{}|, |[|]}", "[1, 2, 3]", nil},
		{"{items|x", "", tmpl.ErrUnclosedBlock},
		{"a {nope} b", "a ", tmpl.ErrNameNotFound},
	}

	for _, tt := range tests {
		got, err := e.eval(context.Background(), tt.src)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("eval(%q) error = %v, want %v", tt.src, err, tt.wantErr)
		}

		if got != tt.want {
			t.Errorf("eval(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestEvaluatorMemo(t *testing.T) {
	t.Parallel()

	e := newEvaluator(nil)
	ctx := context.Background()

	a, err := e.compile(ctx, "x {y}")
	if err != nil {
		t.Fatal(err)
	}

	b, err := e.compile(ctx, "x {y}")
	if err != nil {
		t.Fatal(err)
	}

	if a != b {
		t.Error("expected memoized template")
	}

	if _, err := e.compile(ctx, "{"); err == nil {
		t.Error("expected syntax error")
	}

	if len(e.memo) != 1 {
		t.Errorf("expected 1 memoized template, got %d", len(e.memo))
	}
}

func TestEvaluatorOptions(t *testing.T) {
	t.Parallel()

	d := tmpl.Delimiters{Open: '<', Separator: ',', Close: '>', Escape: '~'}
	e := newEvaluator(map[string]any{"m": map[string]any{"b": 2, "a": 1}},
		tmpl.WithDelimiters(d),
		tmpl.WithIterHook(hook.Map),
	)

	if e.delims != d {
		t.Errorf("expected delimiters %v, got %v", d, e.delims)
	}

	got, err := e.eval(context.Background(), "<m,<Key>=<Value>,;>")
	if err != nil {
		t.Fatal(err)
	}

	if got != "a=1;b=2" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestEvaluatorSetModel(t *testing.T) {
	t.Parallel()

	e := newEvaluator(map[string]any{"v": "old"})
	e.setModel(map[string]any{"v": "new"})

	got, err := e.eval(context.Background(), "{v}")
	if err != nil || got != "new" {
		t.Errorf("eval after setModel = %q, %v", got, err)
	}
}

type person struct {
	Name   string
	Email  string `sout:"mail,omitempty"`
	Secret string `sout:"-"`
	hidden int
}

func TestKeysOf(t *testing.T) {
	t.Parallel()

	p := &person{}

	tests := []struct {
		name  string
		model any
		want  []string
	}{
		{"nil", nil, nil},
		{"map", map[string]any{"b": 1, "a": 2}, []string{"a", "b"}},
		{"int_keys", map[int]any{1: 1}, nil},
		{"struct", person{}, []string{"Name", "mail"}},
		{"pointer", p, []string{"Name", "mail"}},
		{"nil_pointer", (*person)(nil), nil},
		{"scalar", 42, nil},
	}

	for _, tt := range tests {
		if got := keysOf(tt.model); !slices.Equal(got, tt.want) {
			t.Errorf("%s: keysOf = %v, want %v", tt.name, got, tt.want)
		}
	}

}

func TestEvaluatorCandidates(t *testing.T) {
	t.Parallel()

	e := newEvaluator(map[string]any{
		"user":  map[string]any{"addr": map[string]any{"city": "x"}, "age": 3},
		"list":  []any{},
		"pairs": map[string]any{"k": 1},
	})

	tests := []struct {
		loops []string
		path  string
		want  []string
	}{
		{nil, "", []string{"list", "pairs", "user"}},
		{nil, "user", []string{"addr", "age"}},
		{nil, "user.addr", []string{"city"}},
		{nil, "missing", nil},
		{[]string{"list"}, "", nil},
		{[]string{"pairs"}, "", []string{"Key", "Value"}},
	}

	for _, tt := range tests {
		if got := e.candidates(tt.loops, tt.path); !slices.Equal(got, tt.want) {
			t.Errorf("candidates(%v, %q) = %v, want %v", tt.loops, tt.path, got, tt.want)
		}
	}
}

func TestDecodeModel(t *testing.T) {
	t.Parallel()

	data, err := decodeModel(context.Background(), []byte("name: Piet\ntags: [a, b]\n"))
	if err != nil {
		t.Fatal(err)
	}

	m, ok := data.(map[string]any)
	if !ok || m["name"] != "Piet" {
		t.Fatalf("unexpected model %#v", data)
	}

	if _, err := decodeModel(context.Background(), []byte("a: [1, 2")); err == nil {
		t.Error("expected decode error")
	}
}
