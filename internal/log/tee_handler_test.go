package log

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestTeeHandler tests record fan-out.
func TestTeeHandler(t *testing.T) {
	t.Parallel()

	t.Run("writes to all handlers", func(t *testing.T) {
		t.Parallel()

		var bufA, bufB bytes.Buffer
		handler := NewTeeHandler(
			slog.NewTextHandler(&bufA, &slog.HandlerOptions{Level: slog.LevelInfo}),
			slog.NewTextHandler(&bufB, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
		logger := slog.New(handler)

		logger.Info("download complete", "saved", 3)

		for name, buf := range map[string]*bytes.Buffer{"first": &bufA, "second": &bufB} {
			if !strings.Contains(buf.String(), "download complete") {
				t.Errorf("%s handler missing record: %q", name, buf.String())
			}
		}
	})

	t.Run("respects per-handler levels", func(t *testing.T) {
		t.Parallel()

		var file, console bytes.Buffer
		handler := NewTeeHandler(
			slog.NewTextHandler(&file, &slog.HandlerOptions{Level: slog.LevelInfo}),
			slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		)
		logger := slog.New(handler)

		logger.Info("only for the file")

		if !strings.Contains(file.String(), "only for the file") {
			t.Error("info record missing from info-level handler")
		}
		if console.Len() != 0 {
			t.Errorf("warn-level handler received info record: %q", console.String())
		}
	})

	t.Run("enabled if any handler is enabled", func(t *testing.T) {
		t.Parallel()

		handler := NewTeeHandler(
			slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
			slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)

		if !handler.Enabled(context.Background(), slog.LevelDebug) {
			t.Error("expected Enabled(debug) = true with a debug-level child")
		}
	})

	t.Run("nil handlers are dropped", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		handler := NewTeeHandler(nil, slog.NewTextHandler(&buf, nil))
		logger := slog.New(handler)

		logger.Warn("still works")
		if !strings.Contains(buf.String(), "still works") {
			t.Error("record not written after dropping nil handler")
		}
	})

	t.Run("WithAttrs propagates to children", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		handler := NewTeeHandler(slog.NewTextHandler(&buf, nil))
		logger := slog.New(handler).With("run", "abc123")

		logger.Warn("tagged")
		if !strings.Contains(buf.String(), "run=abc123") {
			t.Errorf("attribute missing from output: %q", buf.String())
		}
	})
}

// TestNewRunLogger tests log file creation.
func TestNewRunLogger(t *testing.T) {
	t.Parallel()

	t.Run("creates timestamped log file", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "example.com")
		logger, logPath, closeFn, err := NewRunLogger(dir, false)
		if err != nil {
			t.Fatalf("failed to create run logger: %v", err)
		}

		logger.Info("starting run", "url", "https://example.com")
		if err := closeFn(); err != nil {
			t.Fatalf("failed to close log file: %v", err)
		}

		if filepath.Dir(logPath) != dir {
			t.Errorf("log file %q not inside %q", logPath, dir)
		}
		if !strings.HasPrefix(filepath.Base(logPath), "imgrab_") {
			t.Errorf("unexpected log file name %q", filepath.Base(logPath))
		}

		data, err := os.ReadFile(logPath) //nolint:gosec // Test-owned path
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "starting run") {
			t.Errorf("info record missing from log file: %q", string(data))
		}
	})
}
