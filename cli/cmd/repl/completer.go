package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/sout/tmpl"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "model", "edit", "clear", "quit"}

// hole describes the name being typed at the cursor inside an open block.
type hole struct {
	loops      []string // enclosing loop names, outermost first
	path       string   // dotted prefix of the name before word
	word       string   // segment being completed
	start, end int      // byte offsets of word in the input
}

// findHole reports the name under cursor (a byte offset) if the cursor sits
// in the name of an unclosed block. Escaped runes are skipped and an open
// rune inside a name is literal, as in the template parser.
func findHole(input string, cursor int, d tmpl.Delimiters) (hole, bool) {
	type frame struct {
		name   string
		start  int
		inName bool
	}

	cursor = min(cursor, len(input))

	var stack []frame

	for i := 0; i < cursor; {
		r, size := utf8.DecodeRuneInString(input[i:])
		top := len(stack) - 1

		switch {
		case r == d.Escape:
			if i+size < cursor {
				_, n := utf8.DecodeRuneInString(input[i+size:])
				size += n
			}

		case top >= 0 && stack[top].inName && r == d.Open:
			// literal
		case r == d.Open:
			stack = append(stack, frame{start: i + size, inName: true})

		case r == d.Separator && top >= 0:
			if stack[top].inName {
				stack[top].name = input[stack[top].start:i]
				stack[top].inName = false
			}

		case r == d.Close && top >= 0:
			stack = stack[:top]
		}

		i += size
	}

	top := len(stack) - 1
	if top < 0 || !stack[top].inName {
		return hole{}, false
	}

	var h hole

	for _, f := range stack[:top] {
		h.loops = append(h.loops, f.name)
	}

	h.start = stack[top].start
	if dot := strings.LastIndex(input[h.start:cursor], "."); dot >= 0 {
		h.path = input[h.start : h.start+dot]
		h.start += dot + 1
	}

	h.end = cursor
	for h.end < len(input) {
		r, size := utf8.DecodeRuneInString(input[h.end:])
		if r == '.' || r == d.Open || r == d.Separator || r == d.Close ||
			r == d.Escape {
			break
		}

		h.end += size
	}

	h.word = input[h.start:h.end]

	return h, true
}

// ctrlWord returns the command word at cursor in control mode.
func ctrlWord(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = strings.LastIndexAny(input[:cursor], " \t") + 1

	end = cursor
	if i := strings.IndexAny(input[cursor:], " \t"); i >= 0 {
		end += i
	} else {
		end = len(input)
	}

	return input[start:end], start, end
}

// computeMatches calculates the fuzzy matches for the word at the cursor,
// ranked best first, and the word boundaries. Outside a block in eval mode
// there are no matches. An empty word inside a block matches every
// candidate so the available names can be browsed.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()
	cursor := byteOffset(input, m.input.Position())

	var (
		word       string
		candidates []string
	)

	if m.mode == modeCtrl {
		word, wordStart, wordEnd = ctrlWord(input, cursor)
		if word == "" {
			return nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		h, ok := findHole(input, cursor, m.eval.delims)
		if !ok {
			return nil, cursor, cursor
		}

		word, wordStart, wordEnd = h.word, h.start, h.end
		candidates = m.eval.candidates(h.loops, h.path)

		if word == "" {
			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, wordStart, wordEnd
		}
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// byteOffset converts a rune position in s to a byte offset.
func byteOffset(s string, pos int) int {
	for i := range s {
		if pos == 0 {
			return i
		}

		pos--
	}

	return len(s)
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// width. The selected candidate is highlighted while tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var b strings.Builder

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		next := lipgloss.Width(rendered)
		if i > 0 {
			next += lipgloss.Width(sep)
		}

		last := i == len(matches)-1
		if i > 0 && lipgloss.Width(b.String())+next+reserve*boolInt(!last) > width {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched runes emphasized.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, emph := suggestionStyle, matchStyle
	if selected {
		base, emph = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(emph.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}

func boolInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
