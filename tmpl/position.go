package tmpl

import (
	"log/slog"
	"strconv"
)

// Position identifies a location in template source.
// Line and Column are 1-based; Column counts runes, not bytes.
type Position struct {
	Offset int // byte offset from start of source
	Line   int
	Column int
}

// String returns the position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid reports whether p was recorded by the parser.
func (p Position) IsValid() bool { return p.Line > 0 }

// LogValue implements [slog.LogValuer].
func (p Position) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
		slog.Int("offset", p.Offset),
	)
}
