package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
	"github.com/ludo-technologies/vibescan/internal/constants"
)

type initOptions struct {
	configPath  string
	format      string
	preset      string
	force       bool
	interactive bool
	documented  bool
}

// defaultConfigPaths are the file names init writes per format; all are discoverable
var defaultConfigPaths = map[string]string{
	"toml": constants.ConfigFileName,
	"yaml": "vibescan.yaml",
	"json": "vibescan.json",
}

func initCmd() *cobra.Command {
	opts := &initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a vibescan configuration file",
		Long: `Generate a vibescan configuration file holding every threshold and weight.

By default, creates .vibescan.toml in the current directory using the
standard preset. Use --interactive for a guided setup.

Examples:
  # Create .vibescan.toml in the current directory
  vibescan init

  # YAML with strict thresholds
  vibescan init --format yaml --preset strict

  # Custom output path, format taken from the extension
  vibescan init --config ci/vibescan.json

  # Commented template listing every key
  vibescan init --documented

  # Overwrite an existing file
  vibescan init --force

  # Interactive setup
  vibescan init -i`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commandError(runInit(cmd, opts))
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "",
		"Output path for the config file (default depends on --format)")
	cmd.Flags().StringVar(&opts.format, "format", "toml",
		"Config format: toml, yaml, json")
	cmd.Flags().StringVarP(&opts.preset, "preset", "p", string(config.StrictnessStandard),
		"Threshold preset: relaxed, standard, strict")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false,
		"Interactive setup wizard")
	cmd.Flags().BoolVar(&opts.documented, "documented", false,
		"Write the commented TOML template with standard thresholds")

	return cmd
}

func runInit(cmd *cobra.Command, opts *initOptions) error {
	strictness, err := config.ParseStrictness(opts.preset)
	if err != nil {
		return domain.NewConfigError("invalid preset", err)
	}
	configPath, err := resolveInitPath(opts.configPath, opts.format, cmd.Flags().Changed("format"))
	if err != nil {
		return err
	}

	if opts.interactive {
		strictness, configPath, err = runInteractiveSetup(cmd.OutOrStdout(), strictness, configPath)
		if err != nil {
			return err
		}
	}

	if !opts.force {
		if _, err := os.Stat(configPath); err == nil {
			return domain.NewConfigError(fmt.Sprintf("%s already exists, use --force to overwrite", configPath), nil)
		}
	}
	if dir := filepath.Dir(configPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return domain.NewPathError(dir, "directory does not exist", err)
		}
	}

	if opts.documented {
		if err := writeDocumented(configPath, strictness); err != nil {
			return err
		}
	} else {
		cfg := config.DefaultConfig()
		cfg.ApplyStrictness(strictness)
		if err := config.SaveConfig(cfg, configPath); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s (%s preset)\n", displayPath, strictness)
	fmt.Fprintf(out, "\nRun '%s scan .' to scan your project.\n", constants.ToolName)
	return nil
}

// writeDocumented writes the embedded template, which only exists as TOML with
// the standard thresholds
func writeDocumented(path string, strictness config.Strictness) error {
	if format, _ := config.FormatForPath(path); format != "toml" {
		return domain.NewConfigError("--documented writes TOML only, use a .toml path", nil)
	}
	if strictness != config.StrictnessStandard {
		return domain.NewConfigError("--documented cannot be combined with the "+string(strictness)+" preset", nil)
	}
	if err := os.WriteFile(path, []byte(config.DefaultConfigTOML), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// resolveInitPath picks the output path. An explicit path decides the format
// through its extension; an explicit --format must then agree with it.
func resolveInitPath(path, format string, formatSet bool) (string, error) {
	if path == "" {
		p, ok := defaultConfigPaths[format]
		if !ok {
			return "", domain.NewConfigError(fmt.Sprintf("unsupported config format %q (want toml, yaml or json)", format), nil)
		}
		return p, nil
	}

	inferred, err := config.FormatForPath(path)
	if err != nil {
		return "", domain.NewConfigError("invalid config path", err)
	}
	if formatSet && inferred != format {
		return "", domain.NewConfigError(fmt.Sprintf("--format %s does not match the extension of %s", format, path), nil)
	}
	return path, nil
}

func runInteractiveSetup(out io.Writer, preset config.Strictness, defaultPath string) (config.Strictness, string, error) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "vibescan Configuration Setup")
	fmt.Fprintln(out, "============================")
	fmt.Fprintln(out)

	presets := config.GetStrictnessPresets()
	levels := []struct {
		Label       string
		Description string
		Value       config.Strictness
	}{
		{"Standard (recommended)", fmt.Sprintf("Functions up to %d lines, duplicates from %.0f%% similarity", presets[config.StrictnessStandard].MaxFunctionLines, presets[config.StrictnessStandard].SimilarityThreshold*100), config.StrictnessStandard},
		{"Relaxed", "Higher thresholds, fewer signals", config.StrictnessRelaxed},
		{"Strict", "Lower thresholds, for CI enforcement", config.StrictnessStrict},
	}
	cursor := 0
	for i, l := range levels {
		if l.Value == preset {
			cursor = i
		}
	}

	presetPrompt := promptui.Select{
		Label:     "How strict should the scan be?",
		Items:     levels,
		CursorPos: cursor,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
			Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
			Selected: "\U00002705 {{ .Label | green }}",
		},
	}
	idx, _, err := presetPrompt.Run()
	if err != nil {
		return "", "", fmt.Errorf("preset selection cancelled: %w", err)
	}
	fmt.Fprintln(out)

	pathPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultPath,
		Validate: func(input string) error {
			if input == "" {
				return nil
			}
			_, err := config.FormatForPath(input)
			return err
		},
	}
	path, err := pathPrompt.Run()
	if err != nil {
		return "", "", fmt.Errorf("output path input cancelled: %w", err)
	}
	if path == "" {
		path = defaultPath
	}
	fmt.Fprintln(out)

	return levels[idx].Value, path, nil
}
