package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	LogLevel string `mapstructure:"LOG_LEVEL"`

	OutputDir        string `mapstructure:"OUTPUT_DIR"`
	OutputFilename   string `mapstructure:"OUTPUT_FILENAME"`
	SearchConfigFile string `mapstructure:"SEARCH_CONFIG_FILE"`

	MaxBrowsers        int     `mapstructure:"MAX_BROWSERS"`
	PageLoadTimeout    int     `mapstructure:"PAGE_LOAD_TIMEOUT"` // in seconds
	ScrollAttempts     int     `mapstructure:"SCROLL_ATTEMPTS"`
	ScrollWaitBeforeMs int     `mapstructure:"SCROLL_WAIT_BEFORE_MS"`
	ScrollWaitAfterMs  int     `mapstructure:"SCROLL_WAIT_AFTER_MS"`
	CrawlMaxPages      int     `mapstructure:"CRAWL_MAX_PAGES"`
	CrawlRatePerSec    float64 `mapstructure:"CRAWL_RATE_PER_SEC"`
	Headless           bool    `mapstructure:"HEADLESS"`
	UserAgents         string  `mapstructure:"USER_AGENTS"`
	Proxies            string  `mapstructure:"PROXIES"`

	ZoomMin          int `mapstructure:"ZOOM_MIN"`
	ZoomMax          int `mapstructure:"ZOOM_MAX"`
	MapsScrollRounds int `mapstructure:"MAPS_SCROLL_ROUNDS"`

	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int    `mapstructure:"REDIS_DB"`
	CrawlCacheTTLHours int    `mapstructure:"CRAWL_CACHE_TTL_HOURS"`
	PostgresURL        string `mapstructure:"POSTGRES_URL"`
	ServerPort         string `mapstructure:"SERVER_PORT"`

	PreparedDir    string `mapstructure:"PREPARED_DIR"`
	MaxRowsPerFile int    `mapstructure:"MAX_ROWS_PER_FILE"`
}

// DefaultUserAgent is the desktop Chrome UA sent when USER_AGENTS is empty.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func setDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OUTPUT_DIR", "Leads_Generated")
	v.SetDefault("OUTPUT_FILENAME", "rename_this_file_after_completed.csv")
	v.SetDefault("SEARCH_CONFIG_FILE", "search_configs.json")
	v.SetDefault("MAX_BROWSERS", 2)
	v.SetDefault("PAGE_LOAD_TIMEOUT", 180)
	v.SetDefault("SCROLL_ATTEMPTS", 2)
	v.SetDefault("SCROLL_WAIT_BEFORE_MS", 3000)
	v.SetDefault("SCROLL_WAIT_AFTER_MS", 2000)
	v.SetDefault("CRAWL_MAX_PAGES", 0)
	v.SetDefault("CRAWL_RATE_PER_SEC", 0)
	v.SetDefault("HEADLESS", true)
	v.SetDefault("USER_AGENTS", DefaultUserAgent)
	v.SetDefault("PROXIES", "")
	v.SetDefault("ZOOM_MIN", 10)
	v.SetDefault("ZOOM_MAX", 22)
	v.SetDefault("MAPS_SCROLL_ROUNDS", 10)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CRAWL_CACHE_TTL_HOURS", 48)
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("PREPARED_DIR", "Prepared_Data_Platform_Specific")
	v.SetDefault("MAX_ROWS_PER_FILE", 40000)
}

// LoadFile reads configuration from the env file at path and the
// environment. Environment variables win. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Attempt to read the env file, but don't fail if it's not present
	_ = v.ReadInConfig()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MaxBrowsers < 1 {
		return fmt.Errorf("MAX_BROWSERS must be at least 1, got %d", c.MaxBrowsers)
	}
	if c.ZoomMin > c.ZoomMax {
		return fmt.Errorf("ZOOM_MIN %d is greater than ZOOM_MAX %d", c.ZoomMin, c.ZoomMax)
	}
	if c.MaxRowsPerFile < 1 {
		return fmt.Errorf("MAX_ROWS_PER_FILE must be positive, got %d", c.MaxRowsPerFile)
	}
	return nil
}

func (c *Config) PageTimeout() time.Duration {
	return time.Duration(c.PageLoadTimeout) * time.Second
}

func (c *Config) ScrollWaitBefore() time.Duration {
	return time.Duration(c.ScrollWaitBeforeMs) * time.Millisecond
}

func (c *Config) ScrollWaitAfter() time.Duration {
	return time.Duration(c.ScrollWaitAfterMs) * time.Millisecond
}

func (c *Config) CrawlCacheTTL() time.Duration {
	return time.Duration(c.CrawlCacheTTLHours) * time.Hour
}

// UserAgentList splits USER_AGENTS on "|" since user agent strings contain
// commas.
func (c *Config) UserAgentList() []string { return splitList(c.UserAgents, "|") }

// ProxyList splits PROXIES on commas.
func (c *Config) ProxyList() []string { return splitList(c.Proxies, ",") }

func splitList(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
