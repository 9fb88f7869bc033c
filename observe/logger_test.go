package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLoggerWithWriter("warn", buf)
	ctx := context.Background()

	logger.Debug(ctx, "debug msg")
	logger.Info(ctx, "info msg")
	logger.Warn(ctx, "warn msg")
	logger.Error(ctx, "error msg")

	entries := decodeLines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("emitted %d entries at warn level, want 2", len(entries))
	}
	if entries[0]["level"] != "warn" || entries[1]["level"] != "error" {
		t.Errorf("levels = %v, %v; want warn, error", entries[0]["level"], entries[1]["level"])
	}
}

func TestLogger_Fields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLoggerWithWriter("debug", buf)

	logger.Info(context.Background(), "request complete",
		Field{Key: "endpoint", Value: "me"},
		Field{Key: "duration_ms", Value: 42},
	)

	entries := decodeLines(t, buf)
	if len(entries) != 1 {
		t.Fatalf("emitted %d entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry["msg"] != "request complete" {
		t.Errorf("msg = %v, want request complete", entry["msg"])
	}
	if entry["endpoint"] != "me" {
		t.Errorf("endpoint = %v, want me", entry["endpoint"])
	}
	if entry["duration_ms"] != float64(42) {
		t.Errorf("duration_ms = %v, want 42", entry["duration_ms"])
	}
	if entry["timestamp"] == nil {
		t.Error("entry missing timestamp")
	}
}

func TestLogger_Redaction(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLoggerWithWriter("debug", buf)

	logger.Info(context.Background(), "credential refreshed",
		Field{Key: "access_token", Value: "tok-secret"},
		Field{Key: "cipher_key", Value: "ck-secret"},
		Field{Key: "user_id", Value: "user-1"},
	)

	if strings.Contains(buf.String(), "tok-secret") || strings.Contains(buf.String(), "ck-secret") {
		t.Fatal("secret values leaked into log output")
	}

	entry := decodeLines(t, buf)[0]
	if entry["access_token"] != "[REDACTED]" {
		t.Errorf("access_token = %v, want [REDACTED]", entry["access_token"])
	}
	if entry["cipher_key"] != "[REDACTED]" {
		t.Errorf("cipher_key = %v, want [REDACTED]", entry["cipher_key"])
	}
	if entry["user_id"] != "user-1" {
		t.Errorf("user_id = %v; non-secret fields must pass through", entry["user_id"])
	}
}

func TestLogger_WithCategory(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLoggerWithWriter("debug", buf)

	scoped := logger.WithCategory(CategoryGatekeeper)
	scoped.Info(context.Background(), "requery complete")
	logger.Info(context.Background(), "unscoped")

	entries := decodeLines(t, buf)
	if entries[0]["category"] != CategoryGatekeeper {
		t.Errorf("category = %v, want %q", entries[0]["category"], CategoryGatekeeper)
	}
	if _, ok := entries[1]["category"]; ok {
		t.Error("parent logger must stay unscoped")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"minimal", Config{ServiceName: "graphkit"}, false},
		{"missing service name", Config{}, true},
		{"valid tracing", Config{ServiceName: "s", Tracing: TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 0.5}}, false},
		{"bad tracing exporter", Config{ServiceName: "s", Tracing: TracingConfig{Enabled: true, Exporter: "jaeger"}}, true},
		{"sample pct out of range", Config{ServiceName: "s", Tracing: TracingConfig{Enabled: true, SamplePct: 1.5}}, true},
		{"bad metrics exporter", Config{ServiceName: "s", Metrics: MetricsConfig{Enabled: true, Exporter: "statsd"}}, true},
		{"bad log level", Config{ServiceName: "s", Logging: LoggingConfig{Enabled: true, Level: "verbose"}}, true},
		{"disabled subsystems skip validation", Config{ServiceName: "s", Tracing: TracingConfig{Exporter: "jaeger"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
