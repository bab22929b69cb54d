package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/compilation-harvester/internal/compilation"
	"github.com/pfrederiksen/compilation-harvester/internal/fetcher"
	"github.com/pfrederiksen/compilation-harvester/internal/logger"
	"github.com/pfrederiksen/compilation-harvester/internal/scraper"
)

const (
	// AppName names the config file and the config directory
	AppName   = "compilation-harvester"
	EnvPrefix = "HARVESTER"
)

// ServerConfig holds settings for the HTTP endpoint
type ServerConfig struct {
	Addr        string `mapstructure:"addr" yaml:"addr"`
	DefaultFrom string `mapstructure:"default_from" yaml:"default_from"`
	DefaultTo   string `mapstructure:"default_to" yaml:"default_to"`
}

// Config holds every harvester setting
type Config struct {
	ListingURL       string        `mapstructure:"listing_url" yaml:"listing_url"`
	ListingSelectors []string      `mapstructure:"listing_selectors" yaml:"listing_selectors"`
	Marker           string        `mapstructure:"marker" yaml:"marker"`
	UserAgent        string        `mapstructure:"user_agent" yaml:"user_agent"`
	Accept           string        `mapstructure:"accept" yaml:"accept"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRedirects     int           `mapstructure:"max_redirects" yaml:"max_redirects"`
	DownloadSuffix   string        `mapstructure:"download_suffix" yaml:"download_suffix"`
	DownloadKeywords []string      `mapstructure:"download_keywords" yaml:"download_keywords"`
	Workers          int           `mapstructure:"workers" yaml:"workers"`
	SkipFailedPosts  bool          `mapstructure:"skip_failed_posts" yaml:"skip_failed_posts"`
	DataDir          string        `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel         string        `mapstructure:"log_level" yaml:"log_level"`
	Server           ServerConfig  `mapstructure:"server" yaml:"server"`
}

// SetDefaults registers the default value of every key on v. Keys must be
// known to viper for AutomaticEnv to apply during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("listing_url", scraper.ListingURL)
	v.SetDefault("listing_selectors", strings.Split(scraper.ListingSelector, ", "))
	v.SetDefault("marker", scraper.Marker)
	v.SetDefault("user_agent", fetcher.DefaultUserAgent)
	v.SetDefault("accept", fetcher.DefaultAccept)
	v.SetDefault("timeout", fetcher.DefaultTimeout)
	v.SetDefault("max_redirects", fetcher.DefaultMaxRedirects)
	v.SetDefault("download_suffix", scraper.DownloadSuffix)
	v.SetDefault("download_keywords", scraper.DownloadKeywords)
	v.SetDefault("workers", 1)
	v.SetDefault("skip_failed_posts", false)
	v.SetDefault("data_dir", "~/.local/share/"+AppName)
	v.SetDefault("log_level", "info")
	v.SetDefault("server.addr", ":3001")
	v.SetDefault("server.default_from", "01/2025")
	v.SetDefault("server.default_to", "12/2025")
}

// Init prepares v: defaults, environment binding and the config file.
// An explicit cfgFile must exist; otherwise ./compilation-harvester.yaml and
// ~/.config/compilation-harvester/config.yaml are searched and may be absent.
// Returns the config file used, or "".
func Init(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", AppName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes v into a Config and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// Validate checks that the settings can drive a harvest
func (c *Config) Validate() error {
	u, err := url.Parse(c.ListingURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("listing_url must be an absolute http(s) URL: %q", c.ListingURL)
	}
	if len(c.ListingSelectors) == 0 {
		return errors.New("listing_selectors must not be empty")
	}
	if _, err := cascadia.Compile(c.ListingSelector()); err != nil {
		return fmt.Errorf("listing_selectors: %w", err)
	}
	if strings.TrimSpace(c.Marker) == "" {
		return errors.New("marker must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %s", c.Timeout)
	}
	// the fetcher reads zero as "use the default"
	if c.MaxRedirects < 1 {
		return fmt.Errorf("max_redirects must be at least 1: %d", c.MaxRedirects)
	}
	if c.DownloadSuffix == "" {
		return errors.New("download_suffix must not be empty")
	}
	if len(c.DownloadKeywords) == 0 {
		return errors.New("download_keywords must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1: %d", c.Workers)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := compilation.RangeFromMonthYears(c.Server.DefaultFrom, c.Server.DefaultTo); err != nil {
		return fmt.Errorf("server default range: %w", err)
	}
	return nil
}

// ListingSelector joins the configured selectors into one selector group
func (c *Config) ListingSelector() string {
	return strings.Join(c.ListingSelectors, ", ")
}

// FetcherOptions returns the Page Fetcher settings
func (c *Config) FetcherOptions() fetcher.Options {
	return fetcher.Options{
		UserAgent:    c.UserAgent,
		Accept:       c.Accept,
		Timeout:      c.Timeout,
		MaxRedirects: c.MaxRedirects,
	}
}

// ScraperOptions returns the harvest pipeline settings
func (c *Config) ScraperOptions() scraper.Options {
	return scraper.Options{
		ListingURL:      c.ListingURL,
		ListingSelector: c.ListingSelector(),
		Marker:          c.Marker,
		Matcher: scraper.KeywordMatcher{
			Suffix:   c.DownloadSuffix,
			Keywords: c.DownloadKeywords,
		},
		Workers:         c.Workers,
		SkipFailedPosts: c.SkipFailedPosts,
	}
}
