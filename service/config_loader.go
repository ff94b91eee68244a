package service

import (
	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
)

// ConfigOverrides holds command-line values that take precedence over the
// configuration file. Zero values and nil pointers leave the file value in place.
type ConfigOverrides struct {
	IgnoreDirs     []string
	IgnorePatterns []string
	Format         string
	CoverProfile   string
	LogLevel       string
	MaxPrompts     *int
	Workers        *int
}

// ConfigurationLoaderImpl loads, merges and validates configuration
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads the file at path, or discovers one upward from target when
// path is empty. Every failure is a *domain.ConfigError.
func (c *ConfigurationLoaderImpl) LoadConfig(path, target string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(path, target)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}
	return cfg, nil
}

// Load loads the configuration and applies overrides on top of it
func (c *ConfigurationLoaderImpl) Load(path, target string, overrides ConfigOverrides) (*config.Config, error) {
	cfg, err := c.LoadConfig(path, target)
	if err != nil {
		return nil, err
	}
	return c.MergeConfig(cfg, overrides)
}

// MergeConfig applies overrides to a copy of base and validates the result.
// Ignore lists extend the configured ones instead of replacing them.
func (c *ConfigurationLoaderImpl) MergeConfig(base *config.Config, overrides ConfigOverrides) (*config.Config, error) {
	merged := *base
	merged.Scan.IgnoreDirs = append(append([]string(nil), base.Scan.IgnoreDirs...), overrides.IgnoreDirs...)
	merged.Scan.IgnorePatterns = append(append([]string(nil), base.Scan.IgnorePatterns...), overrides.IgnorePatterns...)

	if overrides.Format != "" {
		format, err := domain.ParseOutputFormat(overrides.Format)
		if err != nil {
			return nil, err
		}
		merged.Output.Format = string(format)
	}
	if overrides.CoverProfile != "" {
		merged.Coverage.Profile = overrides.CoverProfile
	}
	if overrides.LogLevel != "" {
		merged.Logging.Level = overrides.LogLevel
	}
	if overrides.MaxPrompts != nil {
		merged.Output.MaxPrompts = *overrides.MaxPrompts
	}
	if overrides.Workers != nil {
		merged.Performance.MaxWorkers = *overrides.Workers
	}

	if err := merged.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid configuration", err)
	}
	return &merged, nil
}
