// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultCacheTTL      = 30 * time.Second
	defaultHeartbeatCron = "* * * * *"
	defaultSweepCron     = "*/5 * * * *"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type ThemesConfig struct {
	// DefaultPalette overrides the catalog's default palette.
	DefaultPalette string `yaml:"default_palette"`
	// PalettesFile replaces the embedded palette catalog when set.
	PalettesFile  string `yaml:"palettes_file,omitempty"`
	CacheTTL      string `yaml:"cache_ttl"`
	HeartbeatCron string `yaml:"heartbeat_cron"`
	CacheSweep    string `yaml:"cache_sweep_cron"`
}

// CacheTTLDuration returns the parsed cache TTL. Validate has already
// rejected unparseable values.
func (t ThemesConfig) CacheTTLDuration() time.Duration {
	if strings.TrimSpace(t.CacheTTL) == "" {
		return defaultCacheTTL
	}
	d, err := time.ParseDuration(t.CacheTTL)
	if err != nil {
		return defaultCacheTTL
	}
	return d
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`

	Themes ThemesConfig `yaml:"themes"`

	Features struct {
		EnableDebug bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML configuration, applies environment overrides and
// defaults, and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if palette := os.Getenv("DEFAULT_PALETTE"); palette != "" {
		cfg.Themes.DefaultPalette = palette
	}
	if filename := os.Getenv("DATABASE_FILENAME"); filename != "" {
		cfg.Database.Filename = filename
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.Themes.CacheTTL == "" {
		c.Themes.CacheTTL = defaultCacheTTL.String()
	}
	if c.Themes.HeartbeatCron == "" {
		c.Themes.HeartbeatCron = defaultHeartbeatCron
	}
	if c.Themes.CacheSweep == "" {
		c.Themes.CacheSweep = defaultSweepCron
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	ttl, err := time.ParseDuration(c.Themes.CacheTTL)
	if err != nil {
		return fmt.Errorf("themes cache_ttl must be a duration like 30s: %w", err)
	}
	if ttl < 0 {
		return fmt.Errorf("themes cache_ttl must not be negative")
	}
	if _, err := cron.ParseStandard(c.Themes.HeartbeatCron); err != nil {
		return fmt.Errorf("themes heartbeat_cron is invalid: %w", err)
	}
	if _, err := cron.ParseStandard(c.Themes.CacheSweep); err != nil {
		return fmt.Errorf("themes cache_sweep_cron is invalid: %w", err)
	}

	return nil
}
