// Package cmd defines the CLI of the listing scraper.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/JakeFAU/listing-scraper/internal/app"
	"github.com/JakeFAU/listing-scraper/internal/config"
	"github.com/JakeFAU/listing-scraper/internal/logging"
	"github.com/JakeFAU/listing-scraper/internal/scraper"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App is what subcommands need from the application container, so tests can
// inject a fake.
type App interface {
	Close() error
	Logger() *zap.Logger
	Config() config.Config
	Run(ctx context.Context, urls []string) (scraper.Stats, error)
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(cfg config.Config, logger *zap.Logger) (App, error) {
	return app.New(cfg, logger, app.Deps{})
}

// flagKeys maps CLI flags onto configuration keys.
var flagKeys = map[string]string{
	"workers":      "crawler.workers",
	"urls-file":    "crawler.urls_file",
	"output":       "output.path",
	"format":       "output.format",
	"metrics-addr": "metrics.addr",
	"dev":          "logging.development",
	"log-level":    "logging.level",
	"max-retries":  "http.max_retries",
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "listing-scraper",
		Short: "Scrapes rental listing pages into property summaries.",
		Long: `listing-scraper fetches rental listing pages concurrently, pulls the
embedded bootstrap data out of each page, and prints a property summary
for every listing. Failures are reported per URL and never stop the run.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)

			appInstance, err := newApp(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			appInstance, ok := cmd.Context().Value(appKey).(App)
			if !ok || appInstance == nil {
				return
			}
			if err := appInstance.Close(); err != nil {
				appInstance.Logger().Warn("error closing application services", zap.Error(err))
			}
			_ = appInstance.Logger().Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, json, or toml)")
	flags.Int("workers", 6, "number of concurrent workers")
	flags.String("urls-file", "", "file with one listing URL per line")
	flags.String("output", "", "write reports to this file instead of stdout")
	flags.String("format", "text", "report format: text or json")
	flags.String("metrics-addr", "", "serve /metrics and health probes on this address")
	flags.Bool("dev", true, "human-friendly development logging")
	flags.String("log-level", "info", "minimum log level")
	flags.Int("max-retries", 0, "extra attempts for transport failures")
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	cmd.AddCommand(newScrapeCmd())
	return cmd
}

// Execute is the main entry point. SIGINT and SIGTERM cancel the run context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
