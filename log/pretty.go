package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of a pretty handler. Styles are bound to the
// handler's output so colors are dropped when it is not a terminal.
type palette struct {
	key, str, num, date, dur, null lipgloss.Style
	yes, no                        lipgloss.Style
	trace, debug, info, warn, err  lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		date:  fg("4"),
		dur:   fg("5"),
		null:  fg("8"),
		yes:   fg("2"),
		no:    fg("1"),
		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyBase implements the attribute bookkeeping shared by the pretty
// handlers.
type prettyBase struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	pal    palette
	attrs  []slog.Attr // qualified with their group prefix
	prefix string      // current group prefix, ending in "." when set
}

func newPrettyBase(w io.Writer, opts *slog.HandlerOptions) prettyBase {
	return prettyBase{opts: *opts, mu: &sync.Mutex{}, w: w, pal: newPalette(w)}
}

func (h prettyBase) enabled(level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h prettyBase) withAttrs(attrs []slog.Attr) prettyBase {
	h.attrs = slices.Clip(h.attrs)
	for _, a := range attrs {
		h.attrs = append(h.attrs, h.qualify(a)...)
	}

	return h
}

func (h prettyBase) withGroup(name string) prettyBase {
	if name != "" {
		h.prefix += name + "."
	}

	return h
}

// qualify resolves a, flattens groups, and prefixes keys.
func (h prettyBase) qualify(a slog.Attr) []slog.Attr {
	return flatten(h.prefix, a)
}

func flatten(prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return nil
	}

	if a.Value.Kind() != slog.KindGroup {
		a.Key = prefix + a.Key

		return []slog.Attr{a}
	}

	if a.Key != "" {
		prefix += a.Key + "."
	}

	var out []slog.Attr
	for _, g := range a.Value.Group() {
		out = append(out, flatten(prefix, g)...)
	}

	return out
}

// header returns the built-in attributes of r after ReplaceAttr.
func (h prettyBase) header(r slog.Record) []slog.Attr {
	var out []slog.Attr

	add := func(a slog.Attr) {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if !a.Equal(slog.Attr{}) {
			out = append(out, a)
		}
	}

	if !r.Time.IsZero() {
		add(slog.Time(slog.TimeKey, r.Time))
	}

	add(slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			add(slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	add(slog.String(slog.MessageKey, r.Message))

	return out
}

func (h prettyBase) body(r slog.Record) []slog.Attr {
	out := slices.Clone(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		out = append(out, h.qualify(a)...)

		return true
	})

	return out
}

func (h prettyBase) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// value renders v in its type color. Strings are quoted when quote is set.
func (h prettyBase) value(key string, v slog.Value, level slog.Level, quote bool) string {
	if key == slog.LevelKey {
		return h.pal.level(level).Render(v.String())
	}

	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if quote {
			s = strconv.Quote(s)
		}

		return h.pal.str.Render(s)

	case slog.KindInt64:
		return h.pal.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return h.pal.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return h.pal.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return h.pal.yes.Render("true")
		}

		return h.pal.no.Render("false")

	case slog.KindDuration:
		return h.pal.dur.Render(quoteIf(v.Duration().String(), quote))

	case slog.KindTime:
		return h.pal.date.Render(quoteIf(v.Time().Format(time.RFC3339Nano), quote))
	}

	switch a := v.Any().(type) {
	case nil:
		return h.pal.null.Render("null")
	case error:
		return h.pal.err.Render(quoteIf(a.Error(), quote))
	default:
		return h.pal.str.Render(quoteIf(fmt.Sprint(a), quote))
	}
}

func quoteIf(s string, quote bool) string {
	if quote {
		return strconv.Quote(s)
	}

	return s
}

// prettyTextHandler writes one colorized key=value line per record.
type prettyTextHandler struct{ prettyBase }

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyTextHandler {
	return &prettyTextHandler{newPrettyBase(w, opts)}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	for i, a := range append(h.header(r), h.body(r)...) {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.pal.key.Render(a.Key + "="))
		buf.WriteString(h.value(a.Key, a.Value, r.Level, needsQuote(a.Value)))
	}

	return h.write(buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

// needsQuote reports whether a string value would be ambiguous unquoted.
func needsQuote(v slog.Value) bool {
	if v.Kind() != slog.KindString {
		return false
	}

	s := v.String()

	return s == "" || strings.ContainsAny(s, " \t\n\"=")
}

// prettyJSONHandler writes one colorized, indented JSON object per record.
type prettyJSONHandler struct{ prettyBase }

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyJSONHandler {
	return &prettyJSONHandler{newPrettyBase(w, opts)}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	buf.WriteString("{")

	for i, a := range append(h.header(r), h.body(r)...) {
		if i > 0 {
			buf.WriteByte(',')
		}

		buf.WriteString("\n  ")
		buf.WriteString(h.pal.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")

		if a.Key == slog.LevelKey {
			buf.WriteString(h.pal.level(r.Level).Render(strconv.Quote(a.Value.String())))

			continue
		}

		buf.WriteString(h.value(a.Key, a.Value, r.Level, true))
	}

	buf.WriteString("\n}")

	return h.write(buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}
