// Package config loads the application configuration from YAML files,
// merging a local project config over the global one.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orgscout/orgscout/internal/constants"
)

// Config represents the application configuration
type Config struct {
	DefaultFormat string `yaml:"default_format,omitempty"`

	// Top-level config sections
	Scrape *ScrapeOverrides `yaml:"scrape,omitempty"`
	Cache  *CacheOverrides  `yaml:"cache,omitempty"`
	Orgs   *OrgOverrides    `yaml:"orgs,omitempty"`
}

// ScrapeOverrides allows customizing request pacing and retries
type ScrapeOverrides struct {
	DelayMS    *int `yaml:"delay_ms,omitempty"`
	JitterMS   *int `yaml:"jitter_ms,omitempty"`
	MaxRetries *int `yaml:"max_retries,omitempty"`
}

// CacheOverrides allows customizing the page cache
type CacheOverrides struct {
	TTLDays *int    `yaml:"ttl_days,omitempty"`
	Path    *string `yaml:"path,omitempty"`
}

// OrgOverrides extends the built-in attribution tables
type OrgOverrides struct {
	Aliases        map[string]string `yaml:"aliases,omitempty"`
	BlockedDomains []string          `yaml:"blocked_domains,omitempty"`
}

// Settings is the fully resolved configuration
type Settings struct {
	Delay      time.Duration
	Jitter     time.Duration
	MaxRetries int

	CacheTTL  time.Duration
	CachePath string

	Aliases        map[string]string
	BlockedDomains []string
}

// DefaultSettings returns the default settings
func DefaultSettings() Settings {
	return Settings{
		Delay:      constants.DefaultRequestDelay,
		Jitter:     constants.DefaultRequestJitter,
		MaxRetries: constants.MaxFetchAttempts,
		CacheTTL:   constants.PageCacheTTL,
	}
}

// GetSettings returns settings with user overrides merged with defaults
func (c *Config) GetSettings() Settings {
	settings := DefaultSettings()

	if c.Scrape != nil {
		s := c.Scrape
		if s.DelayMS != nil {
			settings.Delay = time.Duration(*s.DelayMS) * time.Millisecond
		}
		if s.JitterMS != nil {
			settings.Jitter = time.Duration(*s.JitterMS) * time.Millisecond
		}
		if s.MaxRetries != nil {
			settings.MaxRetries = *s.MaxRetries
		}
	}

	if c.Cache != nil {
		if c.Cache.TTLDays != nil {
			settings.CacheTTL = time.Duration(*c.Cache.TTLDays) * 24 * time.Hour
		}
		if c.Cache.Path != nil {
			settings.CachePath = *c.Cache.Path
		}
	}

	if c.Orgs != nil {
		settings.Aliases = c.Orgs.Aliases
		settings.BlockedDomains = c.Orgs.BlockedDomains
	}

	return settings
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".orgscout"
	}
	return filepath.Join(configDir, "orgscout")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".orgscout.yaml"
}

// Load loads the configuration from disk.
// It first loads the global config from the XDG config directory, then
// merges any local .orgscout.yaml config on top (local values take
// precedence).
func Load() (*Config, error) {
	cfg := &Config{
		DefaultFormat: "table",
	}

	globalPath := ConfigPath()
	if _, err := os.Stat(globalPath); err == nil {
		data, err := os.ReadFile(globalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read global config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse global config file: %w", err)
		}
	}

	localPath := LocalConfigPath()
	if _, err := os.Stat(localPath); err == nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local config file: %w", err)
		}
		var localCfg Config
		if err := yaml.Unmarshal(data, &localCfg); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}
		cfg = mergeConfig(cfg, &localCfg)
	}

	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "table"
	}

	return cfg, nil
}

// mergeConfig overlays local onto base, returning base.
func mergeConfig(base, local *Config) *Config {
	if local.DefaultFormat != "" {
		base.DefaultFormat = local.DefaultFormat
	}

	if local.Scrape != nil {
		if base.Scrape == nil {
			base.Scrape = &ScrapeOverrides{}
		}
		if local.Scrape.DelayMS != nil {
			base.Scrape.DelayMS = local.Scrape.DelayMS
		}
		if local.Scrape.JitterMS != nil {
			base.Scrape.JitterMS = local.Scrape.JitterMS
		}
		if local.Scrape.MaxRetries != nil {
			base.Scrape.MaxRetries = local.Scrape.MaxRetries
		}
	}

	if local.Cache != nil {
		if base.Cache == nil {
			base.Cache = &CacheOverrides{}
		}
		if local.Cache.TTLDays != nil {
			base.Cache.TTLDays = local.Cache.TTLDays
		}
		if local.Cache.Path != nil {
			base.Cache.Path = local.Cache.Path
		}
	}

	if local.Orgs != nil {
		if base.Orgs == nil {
			base.Orgs = &OrgOverrides{}
		}
		if len(local.Orgs.Aliases) > 0 {
			if base.Orgs.Aliases == nil {
				base.Orgs.Aliases = map[string]string{}
			}
			for k, v := range local.Orgs.Aliases {
				base.Orgs.Aliases[k] = v
			}
		}
		base.Orgs.BlockedDomains = append(base.Orgs.BlockedDomains, local.Orgs.BlockedDomains...)
	}

	return base
}
