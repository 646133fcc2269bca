package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LarryLuggage/project-libris/internal/config"
	"github.com/LarryLuggage/project-libris/internal/logging"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Dir = t.TempDir()
	cfg.Logging.Level = "debug"

	logger, err := logging.NewFromConfig(&cfg, io.Discard)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug message")

	content := readLog(t, filepath.Join(cfg.Logging.Dir, "libris.log"))
	if !strings.Contains(content, "debug message") {
		t.Fatalf("expected debug line in log file, got %q", content)
	}
}

func TestConsoleHeaderIncludesComponentAndBook(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "ingest")
	component.Info("excerpts stored",
		logging.Int(logging.FieldExternalID, 84),
		logging.Int(logging.FieldPosition, 3),
		logging.Int(logging.FieldTotal, 10),
		logging.Int("excerpts", 12),
	)

	content := readLog(t, logPath)
	if !strings.Contains(content, "INFO [ingest] Book #84 (3/10) – excerpts stored") {
		t.Fatalf("unexpected header: %q", content)
	}
	if !strings.Contains(content, "    - Excerpts: 12") {
		t.Fatalf("expected excerpts field, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleHidesDebugOnlyFieldsAtInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("batch started", logging.String(logging.FieldRunID, "abc"))
	if content := readLog(t, logPath); strings.Contains(content, "abc") {
		t.Fatalf("run id should be debug only, got %q", content)
	}
}

func TestJSONFormatUsesShortKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithRunID(logging.WithExternalID(context.Background(), 84), "run-1")
	logging.WithContext(ctx, logger).Warn("slow archive", logging.Error(errors.New("boom")))

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record["level"] != "warn" || record["msg"] != "slow archive" {
		t.Fatalf("unexpected record %+v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %+v", record)
	}
	if record[logging.FieldRunID] != "run-1" || record[logging.FieldExternalID] != float64(84) {
		t.Fatalf("expected context fields, got %+v", record)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "cover missing", "cover_missing")

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if _, ok := record[key]; !ok {
			t.Fatalf("expected %s in %+v", key, record)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should not be enabled")
	}
	logging.WarnWithContext(nil, "ignored", "noop")
}
