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

	"mangaeditor/internal/logging"
	"mangaeditor/internal/testsupport"
)

func TestNewFromConfigWritesJSONFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Logging.Level = "info"
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "mangaeditor.log")

	logger, closeLog, err := logging.NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	defer closeLog()
	logger.Info("row saved", logging.Int64(logging.FieldRowID, 7))

	content, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("log file is not JSON: %v (%q)", err, content)
	}
	if entry["msg"] != "row saved" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if entry["level"] != "info" {
		t.Fatalf("unexpected level: %v", entry["level"])
	}
	if entry["row_id"] != float64(7) {
		t.Fatalf("unexpected row_id: %v", entry["row_id"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
}

func TestFileOutputOmitsSourceForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "info.log")
	logger, closeLog, err := logging.New(logging.Options{Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closeLog()
	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestFileOutputIncludesSourceForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "debug.log")
	logger, closeLog, err := logging.New(logging.Options{Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closeLog()
	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestCloseReleasesLogFiles(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "closed.log")
	logger, closeLog, err := logging.New(logging.Options{Level: "info", OutputPaths: []string{"stderr", logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("before close")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := closeLog(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	// The file handler now writes to a closed file; the record is dropped.
	logger.Info("after close")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "before close") || strings.Contains(string(content), "after close") {
		t.Fatalf("unexpected log content: %q", content)
	}
}

func TestNewConsoleAndJSONToStreams(t *testing.T) {
	for _, format := range []string{"console", "json", ""} {
		logger, _, err := logging.New(logging.Options{Format: format, Level: "invalid", NoColor: true})
		if err != nil {
			t.Fatalf("New(%q) returned error: %v", format, err)
		}
		if logger.Enabled(context.Background(), slog.LevelDebug) {
			t.Fatalf("format %q: invalid level should default to info", format)
		}
	}
}

func TestWarnWithContextFillsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logging.WarnWithContext(logger, "sync failed", "sync_failed",
		logging.String(logging.FieldImpact, "showing cached rows"),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry[logging.FieldEventType] != "sync_failed" {
		t.Fatalf("event_type = %v", entry[logging.FieldEventType])
	}
	if entry[logging.FieldImpact] != "showing cached rows" {
		t.Fatalf("impact should not be overwritten, got %v", entry[logging.FieldImpact])
	}
	if entry[logging.FieldErrorHint] == nil {
		t.Fatal("expected default error_hint")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := logging.WithRequestID(context.Background(), "req-xyz")
	logging.WithSession(logging.WithContext(ctx, base), "sess-1").Info("contextual log")

	out := buf.String()
	if !strings.Contains(out, `"session_id":"sess-1"`) {
		t.Fatalf("missing session_id: %s", out)
	}
	if !strings.Contains(out, `"request_id":"req-xyz"`) {
		t.Fatalf("missing request_id: %s", out)
	}
}

func TestNewComponentLoggerNilBase(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "syncctl")
	logger.Info("discarded")
}
