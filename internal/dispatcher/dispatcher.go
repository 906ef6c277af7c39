// Package dispatcher fans a URL list out to a fixed pool of workers.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/listing-scraper/internal/metrics"
	"github.com/JakeFAU/listing-scraper/internal/partition"
	"github.com/JakeFAU/listing-scraper/internal/scraper"
	"github.com/JakeFAU/listing-scraper/internal/worker"
)

// Dispatcher partitions work and runs one worker per partition.
type Dispatcher struct {
	workers  int
	pipeline worker.Pipeline
	clock    scraper.Clock
	logger   *zap.Logger
}

// New creates a Dispatcher that runs workers goroutines over pipeline.
// The pipeline's sinks are wrapped so concurrent reports stay whole.
func New(workers int, pipeline worker.Pipeline, clock scraper.Clock, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pipeline.Output != nil {
		pipeline.Output = worker.NewSyncWriter(pipeline.Output)
	}
	if pipeline.Diagnostics != nil {
		pipeline.Diagnostics = worker.NewSyncWriter(pipeline.Diagnostics)
	}
	metrics.Init()
	return &Dispatcher{
		workers:  workers,
		pipeline: pipeline,
		clock:    clock,
		logger:   logger,
	}
}

// Run splits urls across the pool, starts every worker, and blocks until all
// of them have finished their partitions. Per-URL failures are counted in the
// returned stats; only an invalid worker count is reported as an error.
func (d *Dispatcher) Run(ctx context.Context, urls []string) (scraper.Stats, error) {
	chunks, err := partition.Split(urls, d.workers)
	if err != nil {
		return scraper.Stats{}, fmt.Errorf("partition %d urls: %w", len(urls), err)
	}

	start := d.clock.Now()
	d.logger.Info("run started", zap.Int("urls", len(urls)), zap.Int("workers", len(chunks)))

	results := make([]scraper.Stats, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(idx int, wk *worker.Worker) {
			defer wg.Done()
			results[idx] = wk.Run(ctx)
		}(i, worker.New(i, chunk, d.pipeline, d.logger))
	}
	wg.Wait()

	var total scraper.Stats
	for _, s := range results {
		total.Merge(s)
	}
	total.Elapsed = d.clock.Now().Sub(start)
	metrics.ObserveRun(total.Elapsed)

	d.logger.Info("run finished",
		zap.Int("attempted", total.Attempted),
		zap.Int("rendered", total.Rendered),
		zap.Int("failed", total.Failed),
		zap.Duration("duration", total.Elapsed),
	)
	return total, nil
}
