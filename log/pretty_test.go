package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyText_WritesAttributes(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(true), WithFormat(FormatText), WithTimeLayout("none"))
	logger.With(slog.String("component", "tmpl")).
		Info("rendered", slog.Int("bytes", 42), slog.String("path", "a b"))

	output := buf.String()
	for _, want := range []string{
		"level=INFO",
		"msg=rendered",
		"component=tmpl",
		"bytes=42",
		`path="a b"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}

	if strings.Contains(output, "time=") {
		t.Errorf("expected no timestamp, got: %s", output)
	}
}

func TestPrettyText_FlattensGroups(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(true), WithFormat(FormatText))
	logger.Logger = logger.WithGroup("req")
	logger.Info("grouped", slog.Group("user", slog.String("id", "7")))

	if !strings.Contains(buf.String(), "req.user.id=7") {
		t.Errorf("expected flattened group key, got: %s", buf.String())
	}
}

func TestPrettyJSON_QuotesStrings(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(true), WithFormat(FormatJSON), WithTimeLayout("none"))
	logger.Warn("careful", slog.Any("error", errors.New("boom")), slog.Bool("ok", false))

	output := buf.String()
	for _, want := range []string{
		`"level": "WARN"`,
		`"msg": "careful"`,
		`"error": "boom"`,
		`"ok": false`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}

	if !strings.HasPrefix(output, "{\n") || !strings.HasSuffix(output, "\n}\n") {
		t.Errorf("expected indented object, got: %s", output)
	}
}
