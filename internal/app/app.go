// Package app wires the long-lived services of a scrape run: the shared
// fetcher, the worker pool, the output sinks, and the optional metrics
// listener. It is built once at startup and closed after the run.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/listing-scraper/internal/api"
	"github.com/JakeFAU/listing-scraper/internal/clock/system"
	"github.com/JakeFAU/listing-scraper/internal/config"
	"github.com/JakeFAU/listing-scraper/internal/dispatcher"
	"github.com/JakeFAU/listing-scraper/internal/extract"
	collyfetcher "github.com/JakeFAU/listing-scraper/internal/fetcher/colly"
	"github.com/JakeFAU/listing-scraper/internal/id/uuid"
	"github.com/JakeFAU/listing-scraper/internal/report"
	"github.com/JakeFAU/listing-scraper/internal/scraper"
	"github.com/JakeFAU/listing-scraper/internal/worker"
)

// ErrNoTargets is returned when a run is started without any URL.
var ErrNoTargets = errors.New("no target urls configured")

// Deps overrides the collaborators App would otherwise build itself.
type Deps struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Fetcher scraper.Fetcher
	Clock   scraper.Clock
	IDs     scraper.IDGenerator
}

// App holds the services shared by every worker of a run.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	runID  string
	clock  scraper.Clock

	fetcher     scraper.Fetcher
	dispatcher  *dispatcher.Dispatcher
	server      *api.Server
	diagnostics io.Writer
	closers     []func() error
}

// New builds an App from cfg. Unset Deps fall back to the process streams,
// the colly fetcher, the system clock, and UUIDv7 run IDs.
func New(cfg config.Config, logger *zap.Logger, deps Deps) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Clock == nil {
		deps.Clock = system.New()
	}
	if deps.IDs == nil {
		deps.IDs = uuid.New()
	}

	runID, err := deps.IDs.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	logger = logger.With(zap.String("run_id", runID))

	a := &App{
		cfg:         cfg,
		logger:      logger,
		runID:       runID,
		clock:       deps.Clock,
		diagnostics: deps.Stderr,
	}

	renderer, err := report.New(cfg.Output.Format)
	if err != nil {
		return nil, fmt.Errorf("init renderer: %w", err)
	}

	output, err := a.openOutput(deps.Stdout)
	if err != nil {
		return nil, err
	}

	a.fetcher = deps.Fetcher
	if a.fetcher == nil {
		colly := collyfetcher.New(collyfetcher.Config{
			UserAgent:    cfg.Crawler.UserAgent,
			Timeout:      cfg.Timeout(),
			MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		})
		a.fetcher = colly
		a.closers = append(a.closers, func() error {
			colly.Close()
			return nil
		})
	}

	pipeline := worker.Pipeline{
		Fetcher: a.fetcher,
		Extractor: extract.New(extract.Marker{
			Tag: extract.DefaultMarker.Tag,
			Attrs: []extract.Attribute{
				{Name: cfg.Extract.MarkerKey, Value: cfg.Extract.MarkerValue},
				{Name: "type", Value: "application/json"},
			},
		}),
		Renderer:    renderer,
		Output:      output,
		Diagnostics: deps.Stderr,
		Retry:       worker.NewExponentialRetryPolicy(cfg.HTTP.MaxRetries),
	}
	a.dispatcher = dispatcher.New(cfg.Crawler.Workers, pipeline, deps.Clock, logger)

	if cfg.Metrics.Addr != "" {
		a.server = api.NewServer(runID, deps.Clock, logger)
		if _, err := a.server.Start(cfg.Metrics.Addr); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("start metrics server: %w", err)
		}
		a.closers = append(a.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return a.server.Shutdown(ctx)
		})
	}

	logger.Info("application services initialized",
		zap.Int("workers", cfg.Crawler.Workers),
		zap.String("format", cfg.Output.Format),
		zap.Int("max_retries", cfg.HTTP.MaxRetries),
	)
	return a, nil
}

func (a *App) openOutput(stdout io.Writer) (io.Writer, error) {
	if a.cfg.Output.Path == "" {
		return stdout, nil
	}
	f, err := os.Create(a.cfg.Output.Path) // #nosec G304 -- path is operator supplied.
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", a.cfg.Output.Path, err)
	}
	a.closers = append(a.closers, f.Close)
	return f, nil
}

// Logger returns the run-scoped logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// RunID returns the identifier attached to every log line of the run.
func (a *App) RunID() string {
	return a.runID
}

// Run scrapes urls with the worker pool and blocks until every worker is
// done. Per-URL failures are reported on the diagnostic sink and counted in
// the returned stats; they never fail the run.
func (a *App) Run(ctx context.Context, urls []string) (scraper.Stats, error) {
	if len(urls) == 0 {
		return scraper.Stats{}, ErrNoTargets
	}
	if a.server != nil {
		a.server.MarkRunning(len(urls), a.cfg.Crawler.Workers)
	}

	stats, err := a.dispatcher.Run(ctx, urls)
	if err != nil {
		return stats, fmt.Errorf("run dispatcher: %w", err)
	}
	if a.server != nil {
		a.server.MarkFinished(stats)
	}

	if _, err := fmt.Fprintf(a.diagnostics, "Execution time: %s\n", stats.Elapsed); err != nil {
		a.logger.Warn("failed to write execution time", zap.Error(err))
	}
	return stats, nil
}

// Close releases the fetcher's connections, the output file, and the
// metrics listener, in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close app: %w", err)
	}
	return nil
}
