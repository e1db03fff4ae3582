package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Timeout and worker defaults match what worked well for the kind of
// pages this tool targets: a handful of parallel downloads keeps most
// servers happy without tripping rate limits.
const (
	// DefaultOutputDir is the base output directory. Saved images land
	// in a per-domain subdirectory of it.
	DefaultOutputDir = "downloaded_images"

	// DefaultWorkers is the number of concurrent image downloads.
	// Five parallel fetches saturate typical pages without hammering
	// the origin server.
	DefaultWorkers = 5

	// DefaultTimeout is the per-request timeout for both the page fetch
	// and each image fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxImageSize is the maximum image payload size in bytes.
	// Zero means no limit; the --max-size flag caps it.
	DefaultMaxImageSize = 0

	// DefaultMaxPageSize limits the HTML document size. 10MB is far
	// beyond any sane page and guards against unbounded reads.
	DefaultMaxPageSize = 10 * 1024 * 1024

	// DefaultUserAgent is a browser-like User-Agent. Many image hosts
	// reject requests with obviously non-browser agents, so we blend in.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// AppName is the application name used for XDG directory paths.
	AppName = "imgrab"
)

// Config holds all options for a single imgrab run.
// It is populated from CLI flags and the optional config file, then
// passed through the application via dependency injection rather than
// global state.
type Config struct {
	// Target is the page URL to download images from.
	Target string

	// OutputDir is the base output directory. The actual files land in
	// OutputDir/<domain>/.
	OutputDir string

	// Workers is the number of concurrent image downloads.
	Workers int

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxImageSize is the maximum image payload size in bytes.
	// Zero means unlimited.
	MaxImageSize int64

	// MaxPageSize limits the HTML document size in bytes.
	MaxPageSize int64

	// UserAgent is the User-Agent header for all requests.
	UserAgent string

	// Verbose enables debug-level console logging.
	Verbose bool

	// NoProgress disables the download progress bar.
	NoProgress bool

	// JSONReport selects JSON report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ConfigFilePath is an explicit config file path. Empty means
	// search .imgrab in the current directory and then the home
	// directory.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory for the run history database.
	// Defaults to the XDG data directory.
	DBDir string
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero
// values because most defaults are non-zero, and the constructor
// documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		OutputDir:    DefaultOutputDir,
		Workers:      DefaultWorkers,
		Timeout:      DefaultTimeout,
		MaxImageSize: DefaultMaxImageSize,
		MaxPageSize:  DefaultMaxPageSize,
		UserAgent:    DefaultUserAgent,
		DBDir:        XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for imgrab.
// On Linux: ~/.local/share/imgrab
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found; fixing one error often makes
// the rest irrelevant.
func (c *Config) Validate() error {
	if c.Target == "" {
		return ErrNoTarget
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxImageSize < 0 || c.MaxPageSize < 0 {
		return ErrInvalidMaxSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
