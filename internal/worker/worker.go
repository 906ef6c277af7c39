// Package worker implements the per-partition scrape pipeline loop.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/listing-scraper/internal/metrics"
	"github.com/JakeFAU/listing-scraper/internal/payload"
	"github.com/JakeFAU/listing-scraper/internal/scraper"
	"github.com/JakeFAU/listing-scraper/internal/summary"
)

// Extractor locates and decodes the data block embedded in a page body.
type Extractor interface {
	Extract(body []byte) (payload.Value, error)
}

// Pipeline holds the collaborators shared read-only by every worker.
// Output and Diagnostics must be safe for concurrent use when shared.
type Pipeline struct {
	Fetcher     scraper.Fetcher
	Extractor   Extractor
	Renderer    scraper.Renderer
	Output      io.Writer
	Diagnostics io.Writer
	Retry       RetryPolicy
}

// Worker processes one partition of target URLs in order.
type Worker struct {
	id       int
	urls     []string
	pipeline Pipeline
	logger   *zap.Logger
}

// New constructs a Worker for urls.
func New(id int, urls []string, pipeline Pipeline, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pipeline.Output == nil {
		pipeline.Output = io.Discard
	}
	if pipeline.Diagnostics == nil {
		pipeline.Diagnostics = io.Discard
	}
	metrics.Init()
	return &Worker{
		id:       id,
		urls:     urls,
		pipeline: pipeline,
		logger:   logger.With(zap.Int("worker", id)),
	}
}

// ID returns the worker's index within the run.
func (w *Worker) ID() int {
	return w.id
}

// Run processes every URL of the partition and returns the worker's stats.
// A failure for one URL is reported and never stops the rest of the partition.
// Cancellation is checked between URLs.
func (w *Worker) Run(ctx context.Context) scraper.Stats {
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	var stats scraper.Stats
	w.logger.Debug("worker started", zap.Int("urls", len(w.urls)))
	for _, url := range w.urls {
		if ctx.Err() != nil {
			w.logger.Warn("worker canceled", zap.Int("remaining", len(w.urls)-stats.Attempted), zap.Error(ctx.Err()))
			break
		}
		stats.Attempted++
		if err := w.handleURL(ctx, url); err != nil {
			kind := scraper.KindOf(err)
			stats.RecordFailure(kind)
			metrics.ObservePage(url, string(kind))
			w.reportFailure(url, err)
			continue
		}
		stats.Rendered++
		metrics.ObservePage(url, metrics.OutcomeRendered)
	}
	w.logger.Debug("worker finished",
		zap.Int("rendered", stats.Rendered),
		zap.Int("failed", stats.Failed),
	)
	return stats
}

func (w *Worker) handleURL(ctx context.Context, url string) error {
	w.logger.Debug("processing url", zap.String("url", url))
	page, err := w.fetch(ctx, url)
	if err != nil {
		return scraper.WithURL(err, url)
	}
	metrics.ObserveFetch(url, page.Duration, len(page.Body))
	w.logger.Debug("page fetched",
		zap.String("url", url),
		zap.Int("status", page.StatusCode),
		zap.Duration("duration", page.Duration),
	)

	doc, err := w.pipeline.Extractor.Extract(page.Body)
	if err != nil {
		return scraper.WithURL(err, url)
	}

	listing, err := summary.Map(doc)
	if err != nil {
		return scraper.WithURL(err, url)
	}
	listing.URL = url

	if err := w.pipeline.Renderer.Render(w.pipeline.Output, listing); err != nil {
		return &scraper.Error{Kind: scraper.KindOutput, URL: url, Err: err}
	}
	w.logger.Debug("report rendered", zap.String("url", url), zap.String("property_name", listing.PropertyName))
	return nil
}

// fetch runs the fetcher, retrying according to the pipeline's policy.
func (w *Worker) fetch(ctx context.Context, url string) (scraper.Page, error) {
	for attempt := 0; ; attempt++ {
		page, err := w.pipeline.Fetcher.Fetch(ctx, url)
		if err == nil {
			return page, nil
		}
		if w.pipeline.Retry == nil || ctx.Err() != nil || !w.pipeline.Retry.ShouldRetry(err, attempt) {
			return scraper.Page{}, err
		}

		delay := w.pipeline.Retry.Backoff(attempt)
		metrics.ObserveRetry(url)
		w.logger.Info("retrying fetch",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if err := sleep(ctx, delay); err != nil {
			return scraper.Page{}, &scraper.Error{Kind: scraper.KindTransport, URL: url, Err: err}
		}
	}
}

func (w *Worker) reportFailure(url string, err error) {
	kind := scraper.KindOf(err)
	detail := err.Error()
	var se *scraper.Error
	if errors.As(err, &se) {
		detail = se.Detail()
	}

	fields := []zap.Field{zap.String("url", url), zap.String("kind", string(kind)), zap.Error(err)}
	if se != nil && se.Status != 0 {
		fields = append(fields, zap.Int("status", se.Status))
	}
	w.logger.Error("scrape failed", fields...)

	line := fmt.Sprintf("Scraper failed to run for URL %s, error: %s, %s\n", url, kind, detail)
	if _, werr := io.WriteString(w.pipeline.Diagnostics, line); werr != nil {
		w.logger.Warn("diagnostic write failed", zap.String("url", url), zap.Error(werr))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry backoff canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
