package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxListLimit is the most coins the list view ever renders.
const MaxListLimit = 100

type Config struct {
	Server struct {
		Port           int `yaml:"port"`
		RenderBudgetMs int `yaml:"render_budget_ms"`
		RefreshSeconds int `yaml:"refresh_seconds"`
	} `yaml:"server"`
	Paprika struct {
		BaseURL           string  `yaml:"base_url"`
		IconBaseURL       string  `yaml:"icon_base_url"`
		TimeoutMs         int     `yaml:"timeout_ms"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"paprika"`
	Cache struct {
		TTLSeconds        int `yaml:"ttl_seconds"`
		FailureTTLSeconds int `yaml:"failure_ttl_seconds"`
	} `yaml:"cache"`
	Views struct {
		ListLimit   int    `yaml:"list_limit"`
		ChartDays   int    `yaml:"chart_days"`
		Theme       string `yaml:"theme"`
		AccentColor string `yaml:"accent_color"`
	} `yaml:"views"`
	Storage struct {
		Path           string `yaml:"path"`
		RetentionHours int    `yaml:"retention_hours"`
		PruneCron      string `yaml:"prune_cron"`
	} `yaml:"storage"`
	Logging struct {
		Level    string `yaml:"level"`
		Encoding string `yaml:"encoding"`
	} `yaml:"logging"`
}

// Load reads the YAML file at path, applies environment overrides and
// defaults, and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	overrideWithEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RenderBudgetMs == 0 {
		c.Server.RenderBudgetMs = 250
	}
	if c.Server.RefreshSeconds == 0 {
		c.Server.RefreshSeconds = 1
	}
	if c.Paprika.BaseURL == "" {
		c.Paprika.BaseURL = "https://api.coinpaprika.com/v1"
	}
	if c.Paprika.IconBaseURL == "" {
		c.Paprika.IconBaseURL = "https://cryptoicon-api.vercel.app/api/icon"
	}
	if c.Paprika.TimeoutMs == 0 {
		c.Paprika.TimeoutMs = 10000
	}
	if c.Paprika.RequestsPerSecond == 0 {
		c.Paprika.RequestsPerSecond = 5
	}
	if c.Paprika.Burst == 0 {
		c.Paprika.Burst = 5
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 300
	}
	if c.Cache.FailureTTLSeconds == 0 {
		c.Cache.FailureTTLSeconds = 30
	}
	if c.Views.ListLimit == 0 {
		c.Views.ListLimit = MaxListLimit
	}
	if c.Views.ChartDays == 0 {
		c.Views.ChartDays = 14
	}
	if c.Views.Theme == "" {
		c.Views.Theme = "dark"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "coins.db"
	}
	if c.Storage.RetentionHours == 0 {
		c.Storage.RetentionHours = 72
	}
	if c.Storage.PruneCron == "" {
		c.Storage.PruneCron = "0 * * * *"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = "json"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RenderBudgetMs < 0 {
		return fmt.Errorf("render budget must not be negative")
	}
	if !strings.HasPrefix(c.Paprika.BaseURL, "http://") && !strings.HasPrefix(c.Paprika.BaseURL, "https://") {
		return fmt.Errorf("invalid paprika base url: %s", c.Paprika.BaseURL)
	}
	if c.Paprika.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative")
	}
	if c.Views.ListLimit < 0 || c.Views.ListLimit > MaxListLimit {
		return fmt.Errorf("list limit must be between 1 and %d, got %d", MaxListLimit, c.Views.ListLimit)
	}
	if c.Views.ChartDays < 0 || c.Views.ChartDays > 365 {
		return fmt.Errorf("chart days must be between 1 and 365, got %d", c.Views.ChartDays)
	}
	switch c.Logging.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log encoding: %s", c.Logging.Encoding)
	}
	return nil
}

// overrideWithEnv lets the environment win over the config file.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("COIN_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("COIN_PAPRIKA_BASE_URL"); v != "" {
		cfg.Paprika.BaseURL = v
	}
	if v := os.Getenv("COIN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("COIN_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
}

func (c *Config) RenderBudget() time.Duration {
	return time.Duration(c.Server.RenderBudgetMs) * time.Millisecond
}

func (c *Config) PaprikaTimeout() time.Duration {
	return time.Duration(c.Paprika.TimeoutMs) * time.Millisecond
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c *Config) CacheFailureTTL() time.Duration {
	return time.Duration(c.Cache.FailureTTLSeconds) * time.Second
}

func (c *Config) Retention() time.Duration {
	return time.Duration(c.Storage.RetentionHours) * time.Hour
}
