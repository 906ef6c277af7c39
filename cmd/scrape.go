package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/listing-scraper/internal/targets"
)

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape [url...]",
		Short: "Scrape listing URLs and print a summary for each",
		Long: `Scrapes every URL from crawler.target_urls, the --urls-file list, and
the command arguments, in that order. The list is split across the worker
pool; each worker handles its share in order and reports failures without
stopping.`,
		RunE: runScrapeCommand,
	}
}

func runScrapeCommand(cmd *cobra.Command, args []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.Config()
	logger := appInstance.Logger()

	urls, err := targets.Collect(cfg.Crawler.TargetURLs, cfg.Crawler.URLsFile, args)
	if err != nil {
		return fmt.Errorf("load targets: %w", err)
	}

	stats, err := appInstance.Run(cmd.Context(), urls)
	if err != nil {
		return fmt.Errorf("run scraper: %w", err)
	}

	logger.Info("scrape command finished",
		zap.Int("attempted", stats.Attempted),
		zap.Int("rendered", stats.Rendered),
		zap.Int("failed", stats.Failed),
	)
	return nil
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}
