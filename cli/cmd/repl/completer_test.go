package repl

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/sout/log"
	"github.com/ardnew/sout/tmpl"
)

func TestFindHole(t *testing.T) {
	t.Parallel()

	d := tmpl.DefaultDelimiters

	tests := []struct {
		name      string
		input     string
		cursor    int
		wantOK    bool
		wantLoops []string
		wantPath  string
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"outside", "hello", 5, false, nil, "", "", 0, 0},
		{"closed", "{name} x", 8, false, nil, "", "", 0, 0},
		{"open", "Hi {na", 6, true, nil, "", "na", 4, 6},
		{"empty", "Hi {", 4, true, nil, "", "", 4, 4},
		{"dotted", "{user.ad", 8, true, nil, "user", "ad", 6, 8},
		{"mid_word", "{name}", 3, true, nil, "", "name", 1, 5},
		{"in_part", "{items|x", 8, false, nil, "", "", 0, 0},
		{"in_loop", "{items|{pr", 10, true, []string{"items"}, "", "pr", 8, 10},
		{"nested_loops", "{a|{b|{c", 8, true, []string{"a", "b"}, "", "c", 7, 8},
		{"after_loop", "{a|x}{b", 7, true, nil, "", "b", 6, 7},
		{"escaped_open", `\{na`, 4, false, nil, "", "", 0, 0},
		{"open_in_name", "{a{b", 4, true, nil, "", "a{b", 1, 4},
		{"stops_at_close", "{na} tail", 2, true, nil, "", "na", 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, ok := findHole(tt.input, tt.cursor, d)
			if ok != tt.wantOK {
				t.Fatalf("findHole(%q, %d) ok = %v, want %v", tt.input, tt.cursor, ok, tt.wantOK)
			}

			if !ok {
				return
			}

			if !slices.Equal(h.loops, tt.wantLoops) || h.path != tt.wantPath ||
				h.word != tt.wantWord || h.start != tt.wantStart || h.end != tt.wantEnd {
				t.Errorf("findHole(%q, %d) = %+v, want loops=%v path=%q word=%q [%d:%d]",
					tt.input, tt.cursor, h,
					tt.wantLoops, tt.wantPath, tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestFindHoleCustomDelimiters(t *testing.T) {
	t.Parallel()

	d := tmpl.Delimiters{Open: '<', Separator: ',', Close: '>', Escape: '~'}

	h, ok := findHole("<xs,<na", 7, d)
	if !ok {
		t.Fatal("expected a hole")
	}

	if h.word != "na" || !slices.Equal(h.loops, []string{"xs"}) {
		t.Errorf("unexpected hole %+v", h)
	}

	if _, ok := findHole("{na", 3, d); ok {
		t.Error("default open rune must not start a block")
	}
}

func TestCtrlWord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"he", 2, "he", 0, 2},
		{"", 0, "", 0, 0},
		{"edit now", 2, "edit", 0, 4},
		{"edit no", 7, "no", 5, 7},
	}

	for _, tt := range tests {
		word, start, end := ctrlWord(tt.input, tt.cursor)
		if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
			t.Errorf("ctrlWord(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
				tt.input, tt.cursor, word, start, end,
				tt.wantWord, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestByteOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s    string
		pos  int
		want int
	}{
		{"abc", 0, 0},
		{"abc", 2, 2},
		{"abc", 9, 3},
		{"héllo", 2, 3},
		{"➜x", 1, 3},
	}

	for _, tt := range tests {
		if got := byteOffset(tt.s, tt.pos); got != tt.want {
			t.Errorf("byteOffset(%q, %d) = %d, want %d", tt.s, tt.pos, got, tt.want)
		}
	}
}

func TestRenderCandidateBar(t *testing.T) {
	t.Parallel()

	matches := fuzzy.Find("a", []string{"alpha", "beta", "gamma", "delta"})

	if got := renderCandidateBar(nil, 0, false, 80); got != "" {
		t.Errorf("expected empty bar, got %q", got)
	}

	if got := renderCandidateBar(matches, 0, false, 0); got != "" {
		t.Errorf("expected empty bar for zero width, got %q", got)
	}

	wide := renderCandidateBar(matches, 0, false, 80)
	for _, m := range matches {
		if !strings.Contains(stripStyles(wide), m.Str) {
			t.Errorf("bar %q missing %q", wide, m.Str)
		}
	}

	narrow := stripStyles(renderCandidateBar(matches, 0, false, 14))
	if !strings.HasSuffix(narrow, "...") {
		t.Errorf("expected ellipsized bar, got %q", narrow)
	}
}

func TestModelCompletion(t *testing.T) {
	t.Parallel()

	m := testModel(t, map[string]any{
		"name":  "Piet",
		"count": 2,
		"items": []any{map[string]any{"price": 1, "label": "x"}},
	})

	m.input.SetValue("Hi {na")
	m.input.SetCursor(6)
	refreshMatches(&m, false)

	if len(m.matches) != 1 || m.matches[0].Str != "name" {
		t.Fatalf("expected sole match name, got %v", m.matches)
	}

	m = m.cycle(1)
	if got := m.input.Value(); got != "Hi {name" {
		t.Errorf("expected completion, got %q", got)
	}

	m.input.SetValue("{items|{")
	m.input.SetCursor(8)
	refreshMatches(&m, false)

	var got []string
	for _, match := range m.matches {
		got = append(got, match.Str)
	}

	if !slices.Equal(got, []string{"label", "price"}) {
		t.Errorf("expected element keys, got %v", got)
	}

	m = m.cycle(-1)
	if v := m.input.Value(); v != "{items|{price" || !m.tabActive {
		t.Errorf("expected backward cycle to last candidate, got %q (tab=%v)", v, m.tabActive)
	}
}

func TestModelCtrlCompletion(t *testing.T) {
	t.Parallel()

	m := testModel(t, nil)
	m = m.toggleMode()
	m.input.SetValue("mo")
	m.input.SetCursor(2)
	refreshMatches(&m, false)

	if len(m.matches) == 0 || m.matches[0].Str != "model" {
		t.Fatalf("expected model command, got %v", m.matches)
	}
}

func testModel(t *testing.T, data any) model {
	t.Helper()

	h := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	return newModel(context.Background(), newEvaluator(data), h, log.Logger{})
}

// stripStyles removes ANSI escape sequences.
func stripStyles(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}

			continue
		}

		b.WriteByte(s[i])
	}

	return b.String()
}
