package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"imgrab/internal/database"
	"imgrab/internal/model"
)

// seedHistory stores one completed run in a fresh database directory.
func seedHistory(t *testing.T) string {
	t.Helper()

	dbDir := t.TempDir()
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	report := model.NewRunReport("run-12345678", "https://example.com/gallery")
	report.StartedAt = time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	report.Elapsed = time.Second
	report.Tally.OutputDir = "downloaded_images/example.com"
	report.Record(model.Saved(
		model.ImageRef{URL: "https://example.com/a.jpg", Rule: model.RuleSrc},
		"downloaded_images/example.com/a.jpg", "hash-a", 4096))

	if err := db.SaveRun(context.Background(), report); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}
	return dbDir
}

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history" {
			t.Errorf("expected use 'history', got %q", cmd.Use)
		}
	})

	t.Run("has limit flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("limit")
		if flag == nil {
			t.Fatal("expected limit flag")
		}
		if flag.Shorthand != "n" {
			t.Errorf("expected shorthand 'n', got %q", flag.Shorthand)
		}
		if flag.DefValue != "20" {
			t.Errorf("expected default '20', got %q", flag.DefValue)
		}
	})

	t.Run("has images flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("images") == nil {
			t.Fatal("expected images flag")
		}
	})
}

// TestListRuns tests the run history table output.
func TestListRuns(t *testing.T) {
	t.Parallel()

	t.Run("renders stored runs", func(t *testing.T) {
		t.Parallel()

		dbDir := seedHistory(t)
		db, err := database.Open(dbDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)

		if err := listRuns(context.Background(), cmd, db, 20); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"run-1234", "https://example.com/gallery", "Saved"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("empty database", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)

		if err := listRuns(context.Background(), cmd, db, 20); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No runs recorded yet") {
			t.Errorf("expected empty-history message, got %q", buf.String())
		}
	})
}

// TestListRunImages tests the per-run image listing.
func TestListRunImages(t *testing.T) {
	t.Parallel()

	t.Run("renders saved images", func(t *testing.T) {
		t.Parallel()

		dbDir := seedHistory(t)
		db, err := database.Open(dbDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)

		if err := listRunImages(context.Background(), cmd, db, "run-12345678"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"a.jpg", "4.0 KB", "https://example.com/a.jpg"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("unknown run ID is an error", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		cmd := NewHistoryCmd()
		cmd.SetOut(&bytes.Buffer{})

		if err := listRunImages(context.Background(), cmd, db, "nope"); err == nil {
			t.Error("expected error for unknown run ID, got nil")
		}
	})
}

// TestFormatBytes tests compact size rendering.
func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}
