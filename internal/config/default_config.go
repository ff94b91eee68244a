package config

import (
	_ "embed"
	"strings"
)

// DefaultConfigTOML is the documented configuration written by `vibescan init --documented`
//
//go:embed default_config.toml
var DefaultConfigTOML string

// LoadDefaultConfig parses the embedded documented config
func LoadDefaultConfig() (*Config, error) {
	return LoadConfigFromReader(strings.NewReader(DefaultConfigTOML), "toml")
}
