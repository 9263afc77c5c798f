package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func handle(t *testing.T, h slog.Handler, r slog.Record) {
	t.Helper()
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
}

func TestTerminalHandler_PlainFormat(t *testing.T) {
	var buf bytes.Buffer
	h := newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, false)

	ts := time.Date(2026, 1, 15, 10, 30, 45, 123000000, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "match computed", 0)
	r.AddAttrs(slog.String("goal_id", "g1"), slog.Int("candidates", 3))
	handle(t, h, r)

	want := "10:30:45.123 INF match computed goal_id=g1 candidates=3\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestTerminalHandler_Levels(t *testing.T) {
	tests := []struct {
		level    slog.Level
		expected string
	}{
		{slog.LevelDebug, "DBG"},
		{slog.LevelInfo, "INF"},
		{slog.LevelWarn, "WRN"},
		{slog.LevelError, "ERR"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			var buf bytes.Buffer
			h := newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, false)
			handle(t, h, slog.NewRecord(time.Now(), tt.level, "msg", 0))

			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected %s in output, got: %s", tt.expected, buf.String())
			}
		})
	}
}

func TestTerminalHandler_ColourCodes(t *testing.T) {
	var coloured, plain bytes.Buffer
	r := slog.NewRecord(time.Now(), slog.LevelError, "fail", 0)

	handle(t, newTerminalHandler(&coloured, nil, true), r)
	handle(t, newTerminalHandler(&plain, nil, false), r)

	if !strings.Contains(coloured.String(), ansiRed) || !strings.Contains(coloured.String(), ansiBold) {
		t.Errorf("expected ANSI codes, got: %q", coloured.String())
	}
	if strings.Contains(plain.String(), "\033[") {
		t.Errorf("expected no ANSI codes, got: %q", plain.String())
	}
}

func TestTerminalHandler_Enabled(t *testing.T) {
	h := newTerminalHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}, false)

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("INFO should be disabled at WARN level")
	}
	if !h.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("WARN should be enabled at WARN level")
	}

	def := newTerminalHandler(&bytes.Buffer{}, nil, false)
	if def.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("DEBUG should be disabled at default INFO level")
	}
}

func TestTerminalHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	h := newTerminalHandler(&buf, nil, false).
		WithAttrs([]slog.Attr{slog.String("component", "api")}).
		WithGroup("http")

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "request", 0)
	r.AddAttrs(slog.String("method", "GET"))
	handle(t, h, r)

	output := buf.String()
	if !strings.Contains(output, "component=api") {
		t.Errorf("expected component attr, got: %s", output)
	}
	if !strings.Contains(output, "http.method=GET") {
		t.Errorf("expected grouped attr http.method, got: %s", output)
	}
}

func TestTerminalHandler_WithAttrsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := newTerminalHandler(&buf, nil, false)
	_ = base.WithAttrs([]slog.Attr{slog.String("scoped", "yes")})

	handle(t, base, slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0))
	if strings.Contains(buf.String(), "scoped") {
		t.Errorf("parent handler picked up child attrs: %s", buf.String())
	}
}

func TestTerminalHandler_EmptyGroup(t *testing.T) {
	h := newTerminalHandler(&bytes.Buffer{}, nil, false)
	if h.WithGroup("") != h {
		t.Error("WithGroup with empty string should return same handler")
	}
}

func TestTerminalHandler_GroupAttr(t *testing.T) {
	var buf bytes.Buffer
	h := newTerminalHandler(&buf, nil, false)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
	r.AddAttrs(slog.Group("request",
		slog.String("method", "POST"),
		slog.Int("status", 201),
	))
	handle(t, h, r)

	output := buf.String()
	if !strings.Contains(output, "request.method=POST") || !strings.Contains(output, "request.status=201") {
		t.Errorf("expected grouped request attrs, got: %s", output)
	}
}

func TestFormatAttrValue(t *testing.T) {
	tests := []struct {
		name  string
		value slog.Value
		want  string
	}{
		{"plain", slog.StringValue("abc"), "abc"},
		{"spaces", slog.StringValue("connection refused"), `"connection refused"`},
		{"empty", slog.StringValue(""), `""`},
		{"duration", slog.DurationValue(1500 * time.Millisecond), "1.5s"},
		{"float", slog.Float64Value(0.123456789), "0.1235"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAttrValue(tt.value); got != tt.want {
				t.Errorf("formatAttrValue() = %q, want %q", got, tt.want)
			}
		})
	}
}
