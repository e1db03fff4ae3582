package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"imgrab/internal/model"
)

// HistoryDB provides SQLite-based storage for completed download runs.
//
// Design decision: We use a single database file in the XDG data
// directory rather than one per output directory because:
// 1. History queries span all pages the user ever fetched
// 2. Output directories are disposable; the history should survive them
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "imgrab.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files
	// and mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the path to the SQLite database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Runs store one row per completed download run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		page_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		saved INTEGER NOT NULL,
		duplicate INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		total INTEGER NOT NULL,
		output_dir TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_page_url ON runs(page_url);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	-- Images store the files each run actually wrote to disk
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		path TEXT NOT NULL,
		hash TEXT NOT NULL,
		size INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_images_run ON images(run_id);
	CREATE INDEX IF NOT EXISTS idx_images_hash ON images(hash);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord represents a stored download run.
type RunRecord struct {
	ID        string
	PageURL   string
	StartedAt time.Time
	Elapsed   time.Duration
	Saved     int
	Duplicate int
	Failed    int
	Total     int
	OutputDir string
}

// ImageRecord represents a stored image from a past run.
type ImageRecord struct {
	RunID string
	URL   string
	Path  string
	Hash  string
	Size  int64
}

// SaveRun stores a completed run and its saved images in one transaction.
// Only saved outcomes produce image rows; duplicates and failures are
// counted in the run row but wrote nothing to disk.
func (hdb *HistoryDB) SaveRun(ctx context.Context, report *model.RunReport) error {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, page_url, started_at, elapsed_ms, saved, duplicate, failed, total, output_dir)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.ID,
		report.PageURL,
		report.StartedAt.UTC().Format(time.RFC3339),
		report.Elapsed.Milliseconds(),
		report.Tally.Saved,
		report.Tally.Duplicate,
		report.Tally.Failed,
		report.Tally.Total,
		report.Tally.OutputDir,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, o := range report.Outcomes {
		if o.Status != model.StatusSaved {
			continue
		}
		_, err = tx.ExecContext(ctx, `
		INSERT INTO images (run_id, url, path, hash, size)
		VALUES (?, ?, ?, ?, ?)
		`,
			report.ID, o.Ref.URL, o.Path, o.Hash, o.Size,
		)
		if err != nil {
			return fmt.Errorf("failed to insert image: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
// A limit of 0 or less returns all runs.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, page_url, started_at, elapsed_ms, saved, duplicate, failed, total, output_dir
	FROM runs
	ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var startedAt string
		var elapsedMS int64
		if err := rows.Scan(&r.ID, &r.PageURL, &startedAt, &elapsedMS,
			&r.Saved, &r.Duplicate, &r.Failed, &r.Total, &r.OutputDir); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = parseTimestamp(startedAt)
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun retrieves a single run by ID.
// Returns nil without error if no run with that ID exists.
func (hdb *HistoryDB) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	var r RunRecord
	var startedAt string
	var elapsedMS int64

	err := hdb.db.QueryRowContext(ctx, `
	SELECT id, page_url, started_at, elapsed_ms, saved, duplicate, failed, total, output_dir
	FROM runs
	WHERE id = ?
	`, runID).Scan(&r.ID, &r.PageURL, &startedAt, &elapsedMS,
		&r.Saved, &r.Duplicate, &r.Failed, &r.Total, &r.OutputDir)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	r.StartedAt = parseTimestamp(startedAt)
	r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return &r, nil
}

// ListImages returns the images saved by a specific run.
func (hdb *HistoryDB) ListImages(ctx context.Context, runID string) ([]ImageRecord, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT run_id, url, path, hash, size
	FROM images
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var images []ImageRecord
	for rows.Next() {
		var img ImageRecord
		if err := rows.Scan(&img.RunID, &img.URL, &img.Path, &img.Hash, &img.Size); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate images: %w", err)
	}
	return images, nil
}

// parseTimestamp parses a timestamp string from SQLite.
// SQLite may return different formats depending on how the value was stored.
func parseTimestamp(s string) time.Time {
	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
