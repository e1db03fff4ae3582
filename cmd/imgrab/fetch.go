package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"imgrab/internal/config"
	"imgrab/internal/database"
	"imgrab/internal/download"
	"imgrab/internal/extract"
	"imgrab/internal/fetch"
	"imgrab/internal/log"
	"imgrab/internal/model"
	"imgrab/internal/report"
	"imgrab/internal/storage"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download every image referenced by a web page",
		Long: `Fetch downloads a single web page, extracts all image references and
downloads them concurrently into a folder named after the page's domain.

Image references are collected from:
- <img src> and <input type="image" src>
- Lazy-loading attributes (data-src, data-lazy-src, data-original)
- srcset entries on <img> and <source>
- Inline CSS url(...) values that point at image files

Byte-identical payloads are saved only once per run; later copies are
reported as duplicates. A failed image never aborts the run.

Examples:
  # Download all images from a page
  imgrab fetch https://example.com/gallery

  # A scheme-less URL gets https:// prepended
  imgrab fetch example.com/gallery

  # Ten parallel downloads into a custom folder
  imgrab fetch -w 10 -o ~/pictures https://example.com/gallery

  # Machine-readable report
  imgrab fetch --json https://example.com/gallery

Configuration file (.imgrab) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      workers: 2`,
		Args: cobra.ExactArgs(1),
		RunE: runFetchCmd,
	}

	// Download behavior flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Base output directory (images land in a per-domain subdirectory)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent image downloads")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout for the page and each image")
	cmd.Flags().Int64P("max-size", "s", config.DefaultMaxImageSize,
		"Maximum image size in bytes (0 = unlimited)")
	cmd.Flags().StringP("user-agent", "A", config.DefaultUserAgent,
		"User-Agent header for all requests")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .imgrab in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().Bool("no-progress", false,
		"Disable the download progress bar")

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "received shutdown signal, cancelling...")
		cancel()
	}()

	return runFetch(ctx, cfg, cmd)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// normalizeTarget prepends https:// to scheme-less URL arguments.
func normalizeTarget(raw string) string {
	if !strings.Contains(raw, "://") {
		return "https://" + raw
	}
	return raw
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Target = normalizeTarget(args[0])

	var err error

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxImageSize, err = cmd.Flags().GetInt64("max-size")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.NoProgress, err = cmd.Flags().GetBool("no-progress")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runFetch executes the download run.
func runFetch(ctx context.Context, cfg *config.Config, cmd *cobra.Command) error {
	domain := model.DomainOf(cfg.Target)
	site := cfg.SiteConfigs.GetSiteConfig(domain)
	applySiteConfig(cfg, site)

	writer := storage.NewWriter(cfg.OutputDir)
	outDir, err := writer.EnsureDir(domain)
	if err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logger, logPath, closeLog, err := log.NewRunLogger(outDir, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	logger.Info("starting run",
		"target", cfg.Target,
		"output", outDir,
		"workers", cfg.Workers,
		"timeout", cfg.Timeout,
	)

	// The page itself is fatal: without the HTML there is nothing to do.
	pageFetcher := fetch.New(
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithMaxBodySize(cfg.MaxPageSize),
		fetch.WithHeaders(site.Headers),
		fetch.WithCookie(site.Cookie),
	)
	html, err := pageFetcher.Fetch(ctx, cfg.Target)
	if err != nil {
		logger.Error("page fetch failed", "target", cfg.Target, "error", err)
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	extractor, err := extract.NewExtractor(cfg.Target)
	if err != nil {
		return fmt.Errorf("invalid target URL %s: %w", cfg.Target, err)
	}
	refs, err := extractor.Extract(bytes.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Found %d image references on %s\n", len(refs), cfg.Target)
	logger.Info("extraction complete", "references", len(refs))

	imageFetcher := fetch.New(
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithMaxBodySize(cfg.MaxImageSize),
		fetch.WithHeaders(site.Headers),
		fetch.WithCookie(site.Cookie),
	)

	opts := []download.Option{
		download.WithWorkers(cfg.Workers),
		download.WithLogger(logger),
	}
	if !cfg.NoProgress && len(refs) > 0 {
		bar := progressbar.NewOptions(len(refs),
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		opts = append(opts, download.WithProgress(func(model.Outcome) {
			_ = bar.Add(1)
		}))
	}

	coordinator := download.NewCoordinator(imageFetcher, writer, opts...)
	runReport := coordinator.Run(ctx, cfg.Target, refs)

	if err := outputReport(cfg, cmd, outDir, runReport); err != nil {
		logger.Error("report output failed", "error", err)
		fmt.Fprintf(os.Stderr, "Warning: report output failed: %v\n", err)
	}

	// History failures never fail the run; the images are already on disk.
	if err := saveRunHistory(ctx, cfg, runReport); err != nil {
		logger.Error("failed to save run history", "error", err)
		fmt.Fprintf(os.Stderr, "Warning: failed to save run history: %v\n", err)
	}

	logger.Info("run complete", "log", logPath)
	return nil
}

// applySiteConfig overlays per-site settings onto the run configuration.
// Flags set the baseline; the config file wins for its domain.
func applySiteConfig(cfg *config.Config, site config.SiteConfig) {
	if site.UserAgent != "" {
		cfg.UserAgent = site.UserAgent
	}
	if site.Workers > 0 {
		cfg.Workers = site.Workers
	}
	if site.MaxImageSize > 0 {
		cfg.MaxImageSize = site.MaxImageSize
	}
}

// outputReport writes the run report to stdout and to a report file in
// the per-domain output directory.
func outputReport(cfg *config.Config, cmd *cobra.Command, outDir string, runReport *model.RunReport) error {
	reportPath := filepath.Join(outDir, reportFileName(cfg))

	f, err := os.Create(reportPath) //nolint:gosec // Path is derived from user-chosen output dir
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewMultiWriter(
			report.NewJSONWriter(cmd.OutOrStdout()),
			report.NewJSONWriter(f),
		)
	case cfg.MarkdownReport:
		w = report.NewMultiWriter(
			report.NewMarkdownWriter(cmd.OutOrStdout()),
			report.NewMarkdownWriter(f),
		)
	default:
		// The file version carries the per-reference listing; the
		// console stays with the summary.
		w = report.NewMultiWriter(
			report.NewSimpleWriter(cmd.OutOrStdout()),
			report.NewSimpleWriter(f, report.WithOutcomes(true)),
		)
	}

	if _, err := w.Write(runReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// reportFileName returns the report file name for the selected format.
func reportFileName(cfg *config.Config) string {
	switch {
	case cfg.JSONReport:
		return "download_report.json"
	case cfg.MarkdownReport:
		return "download_report.md"
	default:
		return "download_report.txt"
	}
}

// saveRunHistory records the completed run in the history database.
func saveRunHistory(ctx context.Context, cfg *config.Config, runReport *model.RunReport) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() { _ = db.Close() }()

	return db.SaveRun(ctx, runReport)
}
