// Package config handles configuration loading for the companion.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	SEC     SECConfig     `mapstructure:"sec"     yaml:"sec"`
	Quote   QuoteConfig   `mapstructure:"quote"   yaml:"quote"`
	News    NewsConfig    `mapstructure:"news"    yaml:"news"`
	Intel   IntelConfig   `mapstructure:"intel"   yaml:"intel"`
	Store   StoreConfig   `mapstructure:"store"   yaml:"store"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// SECConfig holds EDGAR access settings. The SEC requires a descriptive
// User-Agent with a contact address; requests without one may be rejected.
type SECConfig struct {
	UserAgent        string `mapstructure:"user_agent"         yaml:"user_agent"`
	ContactEmail     string `mapstructure:"contact_email"      yaml:"contact_email"`
	CacheDir         string `mapstructure:"cache_dir"          yaml:"cache_dir"`
	DirectoryTTLDays int    `mapstructure:"directory_ttl_days" yaml:"directory_ttl_days"`
}

// QuoteConfig holds price source settings. The Alpha Vantage key is
// optional; without it the secondary quote source is skipped.
type QuoteConfig struct {
	AlphaVantageKey string `mapstructure:"alphavantage_key" yaml:"alphavantage_key"`
}

// NewsConfig holds news source settings. The NewsAPI key is optional;
// without it keyword search is a no-op and only RSS headlines work.
type NewsConfig struct {
	APIKey string   `mapstructure:"api_key" yaml:"api_key"`
	Feeds  []string `mapstructure:"feeds"   yaml:"feeds"`
}

// IntelConfig holds aggregator settings.
type IntelConfig struct {
	FilingLimit int `mapstructure:"filing_limit" yaml:"filing_limit"`
	NewsLimit   int `mapstructure:"news_limit"   yaml:"news_limit"`
}

// StoreConfig holds local JSON store settings.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// UserAgentString returns the SEC-policy User-Agent, appending the contact
// email when one is configured.
func (c SECConfig) UserAgentString() string {
	if c.ContactEmail == "" {
		return c.UserAgent
	}
	return fmt.Sprintf("%s (contact: %s)", c.UserAgent, c.ContactEmail)
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.companion/config.yaml (home directory)
//  3. /etc/companion/config.yaml (system)
//
// Environment variables override config file values.
// Format: COMPANION_<SECTION>_<KEY>, e.g., COMPANION_NEWS_API_KEY.
// The bare NEWSAPI_KEY, ALPHAVANTAGE_KEY, and SEC_USER_AGENT variables
// are also honored for drop-in compatibility.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".companion"))
	v.AddConfigPath("/etc/companion")

	v.SetEnvPrefix("COMPANION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — use defaults + env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("COMPANION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("sec.user_agent", "companion/1.0")
	v.SetDefault("sec.contact_email", "")
	v.SetDefault("sec.cache_dir", filepath.Join(homeDir(), ".companion", "cache"))
	v.SetDefault("sec.directory_ttl_days", 7)

	v.SetDefault("news.feeds", []string{
		"https://feeds.a.dj.com/rss/RSSMarketsMain.xml",
		"https://www.prnewswire.com/rss/finance-banking-latest-news.rss",
	})

	v.SetDefault("intel.filing_limit", 5)
	v.SetDefault("intel.news_limit", 5)

	v.SetDefault("store.path", filepath.Join(homeDir(), ".companion", "data.json"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables,
// both the prefixed form and the bare names these services conventionally use.
func overrideFromEnv(cfg *Config) {
	for _, name := range []string{"COMPANION_NEWS_API_KEY", "NEWSAPI_KEY"} {
		if key := os.Getenv(name); key != "" {
			cfg.News.APIKey = key
			break
		}
	}
	for _, name := range []string{"COMPANION_QUOTE_ALPHAVANTAGE_KEY", "ALPHAVANTAGE_KEY"} {
		if key := os.Getenv(name); key != "" {
			cfg.Quote.AlphaVantageKey = key
			break
		}
	}
	if ua := os.Getenv("SEC_USER_AGENT"); ua != "" {
		cfg.SEC.UserAgent = ua
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
