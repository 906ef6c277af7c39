// Package config loads and validates scraper configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. SCRAPER_CRAWLER_WORKERS.
const EnvPrefix = "SCRAPER"

// Config captures all knobs of a scrape run.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Extract ExtractConfig `mapstructure:"extract"`
	Output  OutputConfig  `mapstructure:"output"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig governs the worker pool and its targets.
type CrawlerConfig struct {
	Workers    int      `mapstructure:"workers"`
	UserAgent  string   `mapstructure:"user_agent"`
	TargetURLs []string `mapstructure:"target_urls"`
	URLsFile   string   `mapstructure:"urls_file"`
}

// HTTPConfig configures the outbound client.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	MaxRetries     int `mapstructure:"max_retries"`
	MaxBodyBytes   int `mapstructure:"max_body_bytes"`
}

// ExtractConfig names the attribute that marks the embedded data block.
type ExtractConfig struct {
	MarkerKey   string `mapstructure:"marker_key"`
	MarkerValue string `mapstructure:"marker_value"`
}

// OutputConfig selects the report sink and format.
type OutputConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the optional metrics listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// LoadDotEnv exports the variables found in the given dotenv files, ".env" by
// default, without overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load builds a Config from defaults, an optional file, and the environment,
// in increasing precedence. A nil v gets a fresh Viper; callers pass their own
// to layer bound CLI flags on top.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.workers", 6)
	v.SetDefault("crawler.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
		"(KHTML, like Gecko) Chrome/60.0.3112.90 Safari/537.36")
	v.SetDefault("crawler.target_urls", []string{})
	v.SetDefault("crawler.urls_file", "")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_retries", 0)
	v.SetDefault("http.max_body_bytes", 0)
	v.SetDefault("extract.marker_key", "data-hypernova-key")
	v.SetDefault("extract.marker_value", "p3indexbundlejs")
	v.SetDefault("output.path", "")
	v.SetDefault("output.format", "text")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.Workers <= 0 {
		return fmt.Errorf("crawler.workers must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.HTTP.MaxBodyBytes < 0 {
		return fmt.Errorf("http.max_body_bytes must be >= 0")
	}
	if strings.TrimSpace(c.Extract.MarkerKey) == "" || strings.TrimSpace(c.Extract.MarkerValue) == "" {
		return fmt.Errorf("extract.marker_key and extract.marker_value must be set")
	}
	switch strings.ToLower(strings.TrimSpace(c.Output.Format)) {
	case "text", "json":
	default:
		return fmt.Errorf("output.format must be text or json, got %q", c.Output.Format)
	}
	return nil
}

// Timeout converts the configured request timeout into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
