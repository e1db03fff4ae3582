package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"imgrab/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// sampleRunReport builds a report with two saved images, one duplicate
// and one failure.
func sampleRunReport(id, pageURL string) *model.RunReport {
	report := model.NewRunReport(id, pageURL)
	report.StartedAt = time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)
	report.Elapsed = 2 * time.Second
	report.Tally.OutputDir = "downloaded_images/example.com"

	report.Record(model.Saved(
		model.ImageRef{URL: pageURL + "/a.jpg", Rule: model.RuleSrc},
		"downloaded_images/example.com/a.jpg", "hash-a", 1024))
	report.Record(model.Saved(
		model.ImageRef{URL: pageURL + "/b.png", Rule: model.RuleSrcset},
		"downloaded_images/example.com/b.png", "hash-b", 2048))
	report.Record(model.Duplicate(
		model.ImageRef{URL: pageURL + "/a-copy.jpg", Rule: model.RuleLazySrc},
		"downloaded_images/example.com/a.jpg", "hash-a", 1024))
	report.Record(model.Failed(
		model.ImageRef{URL: pageURL + "/broken.gif", Rule: model.RuleCSSURL},
		"HTTP 404"))

	return report
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, "imgrab.db")); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false, EnableWAL: true}
		if _, err := Open(filepath.Join(t.TempDir(), "missing"), opts); err == nil {
			t.Error("expected error for missing database, got nil")
		}
	})
}

// TestSaveRun tests storing a run and reading it back.
func TestSaveRun(t *testing.T) {
	t.Parallel()

	t.Run("persists run and saved images", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		report := sampleRunReport("run-1", "https://example.com")
		if err := db.SaveRun(ctx, report); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		run, err := db.GetRun(ctx, "run-1")
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if run == nil {
			t.Fatal("run not found after save")
		}
		if run.PageURL != "https://example.com" {
			t.Errorf("page URL = %q, expected %q", run.PageURL, "https://example.com")
		}
		if run.Saved != 2 || run.Duplicate != 1 || run.Failed != 1 || run.Total != 4 {
			t.Errorf("tally = %d/%d/%d/%d, expected 2/1/1/4",
				run.Saved, run.Duplicate, run.Failed, run.Total)
		}
		if run.Elapsed != 2*time.Second {
			t.Errorf("elapsed = %v, expected 2s", run.Elapsed)
		}
		if run.StartedAt.IsZero() {
			t.Error("started at should not be zero")
		}

		// Only saved outcomes become image rows.
		images, err := db.ListImages(ctx, "run-1")
		if err != nil {
			t.Fatalf("failed to list images: %v", err)
		}
		if len(images) != 2 {
			t.Fatalf("images = %d, expected 2", len(images))
		}
		if images[0].URL != "https://example.com/a.jpg" {
			t.Errorf("first image URL = %q", images[0].URL)
		}
		if images[1].Hash != "hash-b" {
			t.Errorf("second image hash = %q, expected hash-b", images[1].Hash)
		}
	})

	t.Run("duplicate run ID returns error", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.SaveRun(ctx, sampleRunReport("run-1", "https://example.com")); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		if err := db.SaveRun(ctx, sampleRunReport("run-1", "https://example.org")); err == nil {
			t.Error("expected error for duplicate run ID, got nil")
		}
	})
}

// TestListRuns tests listing with ordering and limits.
func TestListRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	for i, page := range []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"} {
		report := sampleRunReport("run-"+page[8:9], page)
		report.StartedAt = time.Date(2026, 8, 25, 10+i, 0, 0, 0, time.UTC)
		if err := db.SaveRun(ctx, report); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("runs = %d, expected 3", len(runs))
		}
		if runs[0].PageURL != "https://c.example.com" {
			t.Errorf("newest run = %q, expected https://c.example.com", runs[0].PageURL)
		}
	})

	t.Run("limit restricts result count", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, 2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("runs = %d, expected 2", len(runs))
		}
	})
}

// TestGetRun tests lookup of missing runs.
func TestGetRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)

	run, err := db.GetRun(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run != nil {
		t.Error("expected nil for missing run")
	}
}
