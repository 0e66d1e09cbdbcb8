package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lingclip/internal/logging"
	"lingclip/internal/services"
)

func TestNewWritesJSONToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "nested", "lingclip.log")

	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	logger.Info("extraction complete", logging.Int("units", 5))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"msg":"extraction complete"`) {
		t.Fatalf("expected message in log output, got %q", content)
	}
	if !strings.Contains(content, `"units":5`) {
		t.Fatalf("expected attribute in log output, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := services.WithMediaID(context.Background(), 42)
	ctx = services.WithRequestID(ctx, "req-1")

	fields := logging.ContextFields(ctx)
	keys := make(map[string]bool, len(fields))
	for _, f := range fields {
		keys[f.Key] = true
	}
	if !keys[logging.FieldMediaID] || !keys[logging.FieldCorrelationID] {
		t.Fatalf("expected media and correlation fields, got %v", keys)
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := logging.WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	logger.Info("no-op")
}
