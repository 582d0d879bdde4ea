package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tubescribe/internal/config"
	"tubescribe/internal/logging"
	"tubescribe/internal/services"
)

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Info("hello")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "tubescribe.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "subtitles").Info("message without caller", logging.Int(logging.FieldAttempt, 2))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
	if !strings.Contains(line, "INFO subtitles: message without caller attempt=2") {
		t.Fatalf("unexpected console line %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("expected no colour codes for file output, got %q", line)
	}
}

func TestJSONLoggerFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("throttled", logging.String(logging.FieldEventType, "rate_limited"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["level"] != "warn" {
		t.Fatalf("expected level warn, got %v", payload["level"])
	}
	if payload["event_type"] != "rate_limited" {
		t.Fatalf("expected event_type, got %v", payload["event_type"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts field, got %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	base, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRequestID(context.Background(), "req-1")
	ctx = services.WithSourceID(ctx, "abc123")

	logging.WithContext(ctx, base).Info("tagged")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, fragment := range []string{"request_id=req-1", "source_id=abc123"} {
		if !strings.Contains(string(content), fragment) {
			t.Fatalf("expected %q in %q", fragment, content)
		}
	}
}

type captureHandler struct {
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	handler := &captureHandler{}
	logging.WarnWithContext(slog.New(handler), "careful", "cache_write_failed")

	if len(handler.records) != 1 {
		t.Fatalf("expected one record, got %d", len(handler.records))
	}
	keys := map[string]string{}
	handler.records[0].Attrs(func(a slog.Attr) bool {
		keys[a.Key] = a.Value.String()
		return true
	})
	if keys[logging.FieldEventType] != "cache_write_failed" {
		t.Fatalf("expected event type, got %v", keys)
	}
	if !strings.Contains(keys[logging.FieldErrorHint], "yt-dlp") {
		t.Fatalf("expected yt-dlp hint default, got %v", keys)
	}
	if keys[logging.FieldImpact] == "" {
		t.Fatalf("expected impact default, got %v", keys)
	}
}

func TestWarnWithContextKeepsCallerFields(t *testing.T) {
	handler := &captureHandler{}
	attrs := append(logging.Attempt(2, 3),
		logging.Path("/tmp/scratch"),
		logging.String(logging.FieldErrorHint, "configure cookies"),
	)
	logging.WarnWithContext(slog.New(handler), "rate limited", "subtitle_rate_limited", attrs...)

	keys := map[string]string{}
	handler.records[0].Attrs(func(a slog.Attr) bool {
		keys[a.Key] = a.Value.String()
		return true
	})
	want := map[string]string{
		logging.FieldAttempt:     "2",
		logging.FieldMaxAttempts: "3",
		logging.FieldPath:        "/tmp/scratch",
		logging.FieldErrorHint:   "configure cookies",
	}
	for key, value := range want {
		if keys[key] != value {
			t.Fatalf("%s = %q, want %q", key, keys[key], value)
		}
	}
}

func TestNewNopDiscards(t *testing.T) {
	if logging.NewNop().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("expected nop logger to be disabled")
	}
}
