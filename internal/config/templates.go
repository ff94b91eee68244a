package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Strictness represents the analysis strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ParseStrictness converts a preset name into a Strictness
func ParseStrictness(s string) (Strictness, error) {
	switch Strictness(strings.ToLower(s)) {
	case StrictnessRelaxed:
		return StrictnessRelaxed, nil
	case StrictnessStandard, "":
		return StrictnessStandard, nil
	case StrictnessStrict:
		return StrictnessStrict, nil
	default:
		return "", fmt.Errorf("unknown preset %q, must be one of: relaxed, standard, strict", s)
	}
}

// StrictnessPreset holds threshold values for a strictness level
type StrictnessPreset struct {
	MaxCommentRatio     float64
	MaxIdentifierLength int
	MaxFunctionLines    int
	NamingDominance     float64
	SimilarityThreshold float64
	MinUntested         int
}

// GetStrictnessPresets returns presets for the different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			MaxCommentRatio:     0.55,
			MaxIdentifierLength: 45,
			MaxFunctionLines:    120,
			NamingDominance:     0.60,
			SimilarityThreshold: 0.90,
			MinUntested:         8,
		},
		StrictnessStandard: {
			MaxCommentRatio:     DefaultMaxCommentRatio,
			MaxIdentifierLength: DefaultMaxIdentifierLength,
			MaxFunctionLines:    DefaultMaxFunctionLines,
			NamingDominance:     DefaultNamingDominance,
			SimilarityThreshold: DefaultSimilarityThreshold,
			MinUntested:         DefaultMinUntestedFunctions,
		},
		StrictnessStrict: {
			MaxCommentRatio:     0.30,
			MaxIdentifierLength: 30,
			MaxFunctionLines:    50,
			NamingDominance:     0.80,
			SimilarityThreshold: 0.70,
			MinUntested:         3,
		},
	}
}

// ApplyStrictness overwrites the thresholds covered by the preset
func (c *Config) ApplyStrictness(s Strictness) {
	preset, ok := GetStrictnessPresets()[s]
	if !ok {
		return
	}
	c.Smells.ExcessiveComments.MaxRatio = preset.MaxCommentRatio
	c.Smells.VerboseNaming.MaxLength = preset.MaxIdentifierLength
	c.Smells.LongFunctions.MaxLines = preset.MaxFunctionLines
	c.Smells.InconsistentNaming.DominanceThreshold = preset.NamingDominance
	c.Duplicates.SimilarityThreshold = preset.SimilarityThreshold
	c.Coverage.MinFunctions = preset.MinUntested
}

// FormatForPath infers the config format from a file extension
func FormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".json":
		return "json", nil
	default:
		return "", fmt.Errorf("cannot infer config format from %q, use .toml, .yaml or .json", path)
	}
}

// RenderConfig serializes the configuration in the given format with a short header
func RenderConfig(config *Config, format string) ([]byte, error) {
	const header = "vibescan configuration. Every key is optional, omitted keys keep their defaults."

	switch format {
	case "toml":
		body, err := toml.Marshal(config)
		if err != nil {
			return nil, fmt.Errorf("failed to encode TOML: %w", err)
		}
		return append([]byte("# "+header+"\n\n"), body...), nil
	case "yaml":
		var buf bytes.Buffer
		buf.WriteString("# " + header + "\n\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(config); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "json":
		body, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		return append(body, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

// SaveConfig writes the configuration to path, choosing the format from its extension
func SaveConfig(config *Config, path string) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	data, err := RenderConfig(config, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
