package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func plain(buf *bytes.Buffer, opts ...Option) Logger {
	return Make(buf, append([]Option{WithPretty(false)}, opts...)...)
}

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if logger.Level() != DefaultLevel {
		t.Errorf("expected level %v, got %v", DefaultLevel, logger.Level())
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("expected format %v, got %v", DefaultFormat, logger.Format())
	}

	if logger.config.caller != DefaultCaller {
		t.Errorf("expected caller %v, got %v", DefaultCaller, logger.config.caller)
	}
}

func TestLogger_WithLevel_FiltersMessages(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		log    func(Logger)
		logged bool
	}{
		{"trace_at_trace", LevelTrace, func(l Logger) { l.Trace("m") }, true},
		{"trace_at_debug", LevelDebug, func(l Logger) { l.Trace("m") }, false},
		{"debug_at_info", LevelInfo, func(l Logger) { l.Debug("m") }, false},
		{"info_at_info", LevelInfo, func(l Logger) { l.Info("m") }, true},
		{"warn_at_error", LevelError, func(l Logger) { l.Warn("m") }, false},
		{"error_at_error", LevelError, func(l Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(plain(&buf, WithLevel(tt.level)))

			if got := buf.Len() > 0; got != tt.logged {
				t.Errorf("expected logged=%v, got %v (%q)", tt.logged, got, buf.String())
			}
		})
	}
}

func TestLogger_WithFormat_JSON(t *testing.T) {
	var buf bytes.Buffer

	plain(&buf, WithFormat(FormatJSON), WithLevel(LevelTrace)).
		Trace("test message", slog.String("key", "value"))

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if result["msg"] != "test message" {
		t.Errorf("expected msg=test message, got %v", result["msg"])
	}

	if result["key"] != "value" {
		t.Errorf("expected key=value, got %v", result["key"])
	}

	if result["level"] != "TRACE" {
		t.Errorf("expected level=TRACE, got %v", result["level"])
	}
}

func TestLogger_WithFormat_Text(t *testing.T) {
	var buf bytes.Buffer

	plain(&buf, WithFormat(FormatText)).Info("test message", slog.String("key", "value"))

	output := buf.String()
	for _, want := range []string{`msg="test message"`, "key=value", "level=INFO"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestLogger_WithTimeLayout(t *testing.T) {
	tests := []struct {
		name    string
		layout  string
		hasTime bool
	}{
		{"named", "RFC3339Nano", true},
		{"punctuated", "rfc-3339", true},
		{"literal", "2006", true},
		{"none", "none", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			plain(&buf, WithTimeLayout(tt.layout)).Info("test")

			if got := strings.Contains(buf.String(), "time="); got != tt.hasTime {
				t.Errorf("expected time present=%v, got: %s", tt.hasTime, buf.String())
			}
		})
	}
}

func TestLogger_WithCaller_IncludesSource(t *testing.T) {
	var buf bytes.Buffer

	plain(&buf, WithCaller(true)).Info("test message")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("expected source to name the calling file, got: %s", buf.String())
	}

	buf.Reset()
	plain(&buf, WithCaller(false)).Info("test message")

	if strings.Contains(buf.String(), "source=") {
		t.Errorf("expected no source, got: %s", buf.String())
	}
}

func TestLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer

	logger := plain(&buf).With(slog.String("component", "tmpl"))
	logger.Info("first")
	logger.Info("second")

	if n := strings.Count(buf.String(), "component=tmpl"); n != 2 {
		t.Errorf("expected attribute on both lines, got %d: %s", n, buf.String())
	}
}

func TestLogger_Wrap_KeepsConfiguration(t *testing.T) {
	var buf bytes.Buffer

	logger := plain(&buf, WithFormat(FormatJSON)).Wrap(WithLevel(LevelDebug))
	logger.Debug("wrapped")

	if logger.Format() != FormatJSON {
		t.Errorf("expected format json, got %v", logger.Format())
	}

	if !strings.Contains(buf.String(), `"msg":"wrapped"`) {
		t.Errorf("expected JSON debug output, got: %s", buf.String())
	}
}

func TestLogger_ZeroValue_Safety(t *testing.T) {
	var logger Logger

	logger.Trace("t")
	logger.Info("i")
	logger.ErrorContext(context.Background(), "e")
	logger = logger.With(slog.String("k", "v"))

	if logger.Logger != nil {
		t.Error("expected With on zero Logger to stay zero")
	}

	if logger.Enabled(context.Background(), LevelError) {
		t.Error("expected zero Logger to be disabled")
	}
}

func TestLogger_ContextMethods(t *testing.T) {
	var buf bytes.Buffer

	logger := plain(&buf, WithLevel(LevelTrace))
	ctx := context.Background()

	methods := []func(context.Context, string, ...slog.Attr){
		logger.TraceContext,
		logger.DebugContext,
		logger.InfoContext,
		logger.WarnContext,
		logger.ErrorContext,
	}

	for _, m := range methods {
		m(ctx, "ctx message")
	}

	if n := strings.Count(buf.String(), "ctx message"); n != len(methods) {
		t.Errorf("expected %d messages, got %d", len(methods), n)
	}
}

func TestLogger_ConcurrentCalls(t *testing.T) {
	var (
		buf bytes.Buffer
		mu  sync.Mutex
		wg  sync.WaitGroup
	)

	logger := Make(writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()

		return buf.Write(p)
	}), WithPretty(false))

	for i := range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			logger.With(slog.Int("i", i)).Info("concurrent")
		}()
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "concurrent"); n != 20 {
		t.Errorf("expected 20 messages, got %d", n)
	}
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func TestPackage_Functions_UseDefaultLogger(t *testing.T) {
	original := Default()
	defer func() {
		defaultMu.Lock()
		defaultLog = original
		defaultMu.Unlock()
	}()

	var buf bytes.Buffer

	Config(
		WithOutput(&buf),
		WithLevel(LevelTrace),
		WithFormat(FormatJSON),
		WithPretty(false),
	)

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Trace", Trace, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("package message", slog.String("key", "value"))

			output := buf.String()
			if !strings.Contains(output, `"level":"`+tt.level+`"`) {
				t.Errorf("expected level %q, got: %s", tt.level, output)
			}

			if !strings.Contains(output, `"key":"value"`) {
				t.Errorf("expected attribute, got: %s", output)
			}
		})
	}
}

func TestPackage_Caller_ReportsCallSite(t *testing.T) {
	original := Default()
	defer func() {
		defaultMu.Lock()
		defaultLog = original
		defaultMu.Unlock()
	}()

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithCaller(true), WithPretty(false))
	Info("where")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("expected source in log_test.go, got: %s", buf.String())
	}
}
