package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestZeroValueLoggerDiscards(t *testing.T) {
	var l Logger

	// Must not panic.
	l.Trace("trace")
	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	if l.Enabled(LevelError) {
		t.Error("zero-value logger should not be enabled at any level")
	}

	if l.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", l.Level(), DefaultLevel)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelWarn), WithTimeLayout("none"))

	l.Info("dropped")
	l.Warn("kept")

	out := buf.String()

	if strings.Contains(out, "dropped") {
		t.Errorf("info message leaked through warn filter: %q", out)
	}

	if !strings.Contains(out, "kept") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestTraceLevel(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelTrace), WithTimeLayout("none"))

	l.Trace("deep detail")

	if !strings.Contains(buf.String(), "deep detail") {
		t.Errorf("trace message missing: %q", buf.String())
	}

	if !strings.Contains(buf.String(), "TRACE") {
		t.Errorf("trace level not rendered as TRACE: %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none"))

	l.Info("structured", slog.Int("cells", 3))

	var record map[string]any

	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%q", err, buf.String())
	}

	if record["msg"] != "structured" {
		t.Errorf("msg = %v, want structured", record["msg"])
	}

	if record["cells"] != float64(3) {
		t.Errorf("cells = %v, want 3", record["cells"])
	}
}

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithTimeLayout("none")).With(slog.String("sheet", "balance"))

	l.Info("recalculated")

	if !strings.Contains(buf.String(), "sheet=balance") {
		t.Errorf("attached attribute missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"text", FormatText},
		{"bogus", DefaultFormat},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFormat(tt.in); got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrettyOutputColors(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(true), WithTimeLayout("none"))

	l.Info("colored", slog.Int("n", 7))

	out := buf.String()

	if !strings.Contains(out, "\033[") {
		t.Errorf("pretty output carries no ANSI codes: %q", out)
	}

	if !strings.Contains(out, "colored") {
		t.Errorf("message missing: %q", out)
	}
}
