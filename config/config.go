package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. PROMO_SERVER_ADDRESS for server.address.
const EnvPrefix = "PROMO"

// Config holds all configuration for the promotion search service
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Data      DataConfig      `mapstructure:"data"`
	Search    SearchSettings  `mapstructure:"search"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	LINE      LINEConfig      `mapstructure:"line"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address        string `mapstructure:"address"`
	Mode           string `mapstructure:"mode"` // gin mode: debug, release, test
	MaxRequestSize int64  `mapstructure:"max_request_size"`
	ViewBaseURL    string `mapstructure:"view_base_url"` // Public base URL used to build /view links
}

// DataConfig describes where promotion records come from and how often they refresh
type DataConfig struct {
	File            string        `mapstructure:"file"`
	Source          string        `mapstructure:"source"` // "file" or "upstream"
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	Watch           bool          `mapstructure:"watch"`
	WatchDebounce   time.Duration `mapstructure:"watch_debounce"`
}

// SessionConfig controls the per-user result cache
type SessionConfig struct {
	Backend       string        `mapstructure:"backend"` // "memory" or "redis"
	Timeout       time.Duration `mapstructure:"timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// RedisConfig contains connection settings for the redis session backend
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// UpstreamConfig contains the promotions API endpoints and credentials
type UpstreamConfig struct {
	LoginURL      string        `mapstructure:"login_url"`
	PromotionsURL string        `mapstructure:"promotions_url"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	BusinessUnits string        `mapstructure:"business_units"`
	PerPage       int           `mapstructure:"per_page"`
	LinkBaseURL   string        `mapstructure:"link_base_url"`
	LoginTimeout  time.Duration `mapstructure:"login_timeout"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
}

// LINEConfig contains LINE Messaging API credentials. The webhook is
// disabled when the channel secret is empty.
type LINEConfig struct {
	ChannelSecret      string `mapstructure:"channel_secret"`
	ChannelAccessToken string `mapstructure:"channel_access_token"`
	MaxItems           int    `mapstructure:"max_items"`
}

// Enabled reports whether the LINE webhook should be mounted.
func (l LINEConfig) Enabled() bool {
	return l.ChannelSecret != "" && l.ChannelAccessToken != ""
}

// LoggingConfig controls log level, format and rotated file output
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "text" or "json"
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// AnalyticsConfig controls search event retention
type AnalyticsConfig struct {
	MaxEvents int    `mapstructure:"max_events"`
	DataFile  string `mapstructure:"data_file"`
}

// JobsConfig controls the background job pool
type JobsConfig struct {
	Workers int           `mapstructure:"workers"`
	MaxAge  time.Duration `mapstructure:"max_age"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.max_request_size", 1<<20)
	v.SetDefault("server.view_base_url", "")

	v.SetDefault("data.file", "data/promotions.json")
	v.SetDefault("data.source", "file")
	v.SetDefault("data.refresh_interval", time.Hour)
	v.SetDefault("data.watch", true)
	v.SetDefault("data.watch_debounce", 500*time.Millisecond)

	v.SetDefault("search.page_size", DefaultPageSize)
	v.SetDefault("search.catalogue_limit", DefaultCatalogueLimit)
	v.SetDefault("search.latest_count", DefaultLatestCount)
	v.SetDefault("search.stale_year_floor", DefaultStaleYearFloor)
	v.SetDefault("search.fuzzy_threshold", DefaultFuzzyThreshold)
	v.SetDefault("search.fuzzy_min_query_length", DefaultFuzzyMinQueryLength)
	v.SetDefault("search.fuzzy_min_word_length", DefaultFuzzyMinWordLength)
	v.SetDefault("search.highlight_open", DefaultHighlightOpen)
	v.SetDefault("search.highlight_close", DefaultHighlightClose)

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.timeout", 30*time.Minute)
	v.SetDefault("session.sweep_interval", time.Minute)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.key_prefix", "promo:session:")

	v.SetDefault("upstream.login_url", "https://api.vrcomseven.com/users/web_login")
	v.SetDefault("upstream.promotions_url", "https://api.vrcomseven.com/v1/promotions")
	v.SetDefault("upstream.business_units", "Apple")
	v.SetDefault("upstream.per_page", 200)
	v.SetDefault("upstream.link_base_url", "https://vrcomseven.com/promotions")
	v.SetDefault("upstream.login_timeout", 30*time.Second)
	v.SetDefault("upstream.fetch_timeout", 60*time.Second)

	v.SetDefault("line.max_items", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 14)

	v.SetDefault("analytics.max_events", 10000)

	v.SetDefault("jobs.workers", 2)
	v.SetDefault("jobs.max_age", 24*time.Hour)
}

// Load reads configuration from the optional file at path, a .env file in the
// working directory, and PROMO_* environment variables, in increasing priority.
// An empty path searches ./config.yaml and ./config/config.yaml; a missing
// file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values that viper defaults cannot express,
// such as settings built programmatically in tests.
func (c *Config) ApplyDefaults() {
	c.Search.ApplyDefaults()
	if c.Session.Timeout <= 0 {
		c.Session.Timeout = 30 * time.Minute
	}
	if c.Session.SweepInterval <= 0 {
		c.Session.SweepInterval = time.Minute
	}
	if c.Session.Backend == "" {
		c.Session.Backend = "memory"
	}
	if c.Data.Source == "" {
		c.Data.Source = "file"
	}
	if c.Data.RefreshInterval <= 0 {
		c.Data.RefreshInterval = time.Hour
	}
	if c.Jobs.Workers <= 0 {
		c.Jobs.Workers = 2
	}
	if c.Analytics.MaxEvents <= 0 {
		c.Analytics.MaxEvents = 10000
	}
	if c.LINE.MaxItems <= 0 {
		c.LINE.MaxItems = 5
	}
}

// Validate checks the whole configuration and reports every problem at once.
func (c *Config) Validate() error {
	problems := c.Search.Validate()

	switch c.Session.Backend {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Redis.Addr) == "" {
			problems = append(problems, "redis.addr is required when session.backend is redis")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown session.backend '%s' (must be 'memory' or 'redis')", c.Session.Backend))
	}

	switch c.Data.Source {
	case "file":
		if strings.TrimSpace(c.Data.File) == "" {
			problems = append(problems, "data.file is required when data.source is file")
		}
	case "upstream":
		if c.Upstream.LoginURL == "" || c.Upstream.PromotionsURL == "" {
			problems = append(problems, "upstream.login_url and upstream.promotions_url are required when data.source is upstream")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown data.source '%s' (must be 'file' or 'upstream')", c.Data.Source))
	}

	if (c.LINE.ChannelSecret == "") != (c.LINE.ChannelAccessToken == "") {
		problems = append(problems, "line.channel_secret and line.channel_access_token must be set together")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
