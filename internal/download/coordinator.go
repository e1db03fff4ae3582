package download

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"imgrab/internal/dedup"
	"imgrab/internal/model"
)

// Fetcher fetches one URL and returns its payload.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Saver persists one payload under a suggested name.
type Saver interface {
	Save(domain, suggestedName string, data []byte) (string, error)
}

// Coordinator downloads a set of image references with bounded
// concurrency and aggregates the outcomes into a run report.
//
// Design decision: We use errgroup.SetLimit rather than a hand-rolled
// worker pool because it bounds concurrency correctly with far less
// machinery. Worker errors are never returned to the group; every
// failure is converted to a Failed outcome so that one bad image
// cannot cancel its siblings.
type Coordinator struct {
	// fetcher performs the per-image GET requests.
	fetcher Fetcher

	// saver writes payloads to the output directory.
	saver Saver

	// index is the shared content-hash dedup index.
	index *dedup.Index

	// workers is the maximum number of concurrently active tasks.
	workers int

	// logger receives per-outcome records.
	logger *slog.Logger

	// progress, when set, is called once per completed outcome.
	// It runs on worker goroutines and must be safe for concurrent use.
	progress func(model.Outcome)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWorkers sets the maximum number of concurrent downloads.
// Default is 5 if not specified.
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithProgress sets a callback invoked once per completed outcome.
// This is an observability side channel: the run report is complete
// with or without it.
func WithProgress(fn func(model.Outcome)) Option {
	return func(c *Coordinator) {
		c.progress = fn
	}
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(fetcher Fetcher, saver Saver, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher: fetcher,
		saver:   saver,
		index:   dedup.NewIndex(),
		workers: 5,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Run downloads every reference and returns the completed run report.
// It always waits for all dispatched tasks; there is no early exit on
// failure. Context cancellation stops new work, and in-flight fetches
// fail with their context error, still producing a Failed outcome.
func (c *Coordinator) Run(ctx context.Context, pageURL string, refs []model.ImageRef) *model.RunReport {
	report := model.NewRunReport(uuid.NewString(), pageURL)
	start := time.Now()

	// Every image of a run lands under the target page's domain,
	// regardless of where the image itself is hosted.
	domain := model.DomainOf(pageURL)

	c.logger.Info("starting downloads",
		"page", pageURL,
		"references", len(refs),
		"workers", c.workers,
	)

	var mu sync.Mutex
	record := func(o model.Outcome) {
		mu.Lock()
		report.Record(o)
		mu.Unlock()

		c.logger.Info("outcome",
			"url", o.Ref.URL,
			"status", string(o.Status),
			"path", o.Path,
			"reason", o.Reason,
		)
		if c.progress != nil {
			c.progress(o)
		}
	}

	// Plain errgroup, not WithContext: a worker never returns an
	// error, and sibling tasks must not be cancelled on failure.
	var g errgroup.Group
	g.SetLimit(c.workers)

	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			record(c.process(ctx, domain, ref))
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // Workers never return errors

	report.Elapsed = time.Since(start)
	report.Tally.OutputDir = c.outputDir(domain)

	c.logger.Info("downloads complete",
		"saved", report.Tally.Saved,
		"duplicate", report.Tally.Duplicate,
		"failed", report.Tally.Failed,
		"total", report.Tally.Total,
		"elapsed", report.Elapsed,
	)

	return report
}

// process handles one reference end to end and produces its outcome.
func (c *Coordinator) process(ctx context.Context, domain string, ref model.ImageRef) model.Outcome {
	data, err := c.fetcher.Fetch(ctx, ref.URL)
	if err != nil {
		return model.Failed(ref, err.Error())
	}

	hash := model.ContentHash(data)
	size := int64(len(data))

	if !c.index.CheckAndInsert(hash) {
		return model.Duplicate(ref, c.index.Path(hash), hash, size)
	}

	path, err := c.saver.Save(domain, ref.Filename(), data)
	if err != nil {
		// The hash stays claimed: the content was seen even though the
		// write failed, and retrying the write for a later duplicate
		// would hide the original failure.
		return model.Failed(ref, err.Error())
	}
	c.index.RecordPath(hash, path)

	return model.Saved(ref, path, hash, size)
}

// outputDir resolves the per-domain output directory for the tally.
func (c *Coordinator) outputDir(domain string) string {
	type direr interface {
		Dir(domain string) string
	}

	if d, ok := c.saver.(direr); ok {
		return d.Dir(domain)
	}
	return ""
}
