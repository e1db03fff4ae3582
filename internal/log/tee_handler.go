package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// TeeHandler fans log records out to multiple underlying handlers.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. Each destination keeps its own level and format
//  3. Components only need to accept a single *slog.Logger
type TeeHandler struct {
	// handlers are the underlying handlers receiving each record.
	handlers []slog.Handler
}

// NewTeeHandler creates a TeeHandler wrapping the given handlers.
// Handlers that are nil are dropped.
func NewTeeHandler(handlers ...slog.Handler) *TeeHandler {
	hs := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			hs = append(hs, h)
		}
	}
	return &TeeHandler{handlers: hs}
}

// Enabled reports whether any underlying handler handles records at
// the given level.
func (t *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes the record to every underlying handler whose level
// accepts it. The first error encountered is returned, but all
// handlers still receive the record.
func (t *TeeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WithAttrs returns a new handler with the given attributes added to
// every underlying handler.
func (t *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &TeeHandler{handlers: hs}
}

// WithGroup returns a new handler with the given group name applied to
// every underlying handler.
func (t *TeeHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &TeeHandler{handlers: hs}
}

// NewRunLogger creates the logger for one imgrab run.
//
// It opens a timestamped log file imgrab_<YYYYMMDD_HHMMSS>.log inside
// dir (created if absent) and returns a logger that writes Info and up
// to the file and Warn (or Debug with verbose) and up to stderr.
// The returned close function flushes and closes the log file.
func NewRunLogger(dir string, verbose bool) (*slog.Logger, string, func() error, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, "", nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(dir, fmt.Sprintf("imgrab_%s.log", time.Now().Format("20060102_150405")))
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640) //nolint:gosec // Path is derived from user-chosen output dir
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to create log file: %w", err)
	}

	consoleLevel := slog.LevelWarn
	if verbose {
		consoleLevel = slog.LevelDebug
	}

	fileHandler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})
	consoleHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: consoleLevel})

	logger := slog.New(NewTeeHandler(fileHandler, consoleHandler))
	return logger, logPath, f.Close, nil
}
