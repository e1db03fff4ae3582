// Package log provides logging utilities for imgrab, built on top of
// the standard slog package.
//
// A run logs to two destinations at once: the console (warnings only,
// or debug with --verbose) and a timestamped log file inside the
// per-domain output directory. TeeHandler fans each record out to both
// underlying handlers so components only ever see one *slog.Logger.
//
// # Usage
//
//	logger, logPath, closeFn, err := log.NewRunLogger(outputDir, verbose)
//	if err != nil { ... }
//	defer closeFn()
//	slog.SetDefault(logger)
package log
