package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/vibescan/app"
	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
	"github.com/ludo-technologies/vibescan/internal/logging"
	"github.com/ludo-technologies/vibescan/internal/watch"
	"github.com/ludo-technologies/vibescan/service"
)

type scanOptions struct {
	ignoreDirs   []string
	exclude      []string
	format       string
	output       string
	configPath   string
	coverProfile string
	maxPrompts   int
	workers      int
	watch        bool
	noProgress   bool
	logLevel     string
}

func scanCmd() *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a source tree and report its health",
		Long: `Scan a source tree, compute its health score and print ranked fix prompts.

The path defaults to the current directory. Configuration is discovered upward
from the path (.vibescan.toml, vibescan.yaml, ...) unless --config is given.

Exit codes:
  0 - Scan completed
  1 - Invalid path, flags or configuration
  2 - Internal error

Examples:
  vibescan scan
  vibescan scan ./service --format json
  vibescan scan --exclude "generated/**" --ignore fixtures
  vibescan scan --coverprofile cover.out --max-prompts 5
  vibescan scan --format markdown --output HEALTH.md
  vibescan scan --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commandError(runScan(cmd, opts, args))
		},
	}

	cmd.Flags().StringSliceVar(&opts.ignoreDirs, "ignore", nil,
		"Additional directory names to skip (comma-separated)")
	cmd.Flags().StringSliceVarP(&opts.exclude, "exclude", "e", nil,
		"Glob patterns to skip, matched against relative paths")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "",
		"Output format: text, json, yaml, markdown (default from config, else text)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&opts.coverProfile, "coverprofile", "",
		"Go cover profile used to mark files as tested")
	cmd.Flags().IntVar(&opts.maxPrompts, "max-prompts", 0,
		"Maximum number of fix prompts, 0 for all")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", 0,
		"Concurrent extraction workers, 0 for one per CPU")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false,
		"Rescan whenever files change")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false,
		"Disable progress bars")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "",
		"Log level: debug, info, warn, error (default from config, else warn)")

	return cmd
}

func runScan(cmd *cobra.Command, opts *scanOptions, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	overrides := service.ConfigOverrides{
		IgnoreDirs:     opts.ignoreDirs,
		IgnorePatterns: opts.exclude,
		Format:         opts.format,
		CoverProfile:   opts.coverProfile,
		LogLevel:       opts.logLevel,
	}
	if cmd.Flags().Changed("max-prompts") {
		overrides.MaxPrompts = &opts.maxPrompts
	}
	if cmd.Flags().Changed("workers") {
		overrides.Workers = &opts.workers
	}

	fileHelper := app.NewFileHelper()
	absRoot, err := fileHelper.ResolveRoot(root)
	if err != nil {
		return domain.NewPathError(root, "cannot resolve path", err)
	}

	// The logger and progress bars are set up before the use case loads the
	// configuration again, so the resolved settings are read here first.
	loader := service.NewConfigurationLoader()
	cfg, err := loader.Load(opts.configPath, absRoot, overrides)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return err
	}
	format, err := domain.ParseOutputFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	showProgress := !opts.noProgress && !opts.watch && !format.IsMachineReadable()
	pm := service.NewProgressManager(showProgress)
	defer pm.Close()

	uc, err := app.NewScanUseCaseBuilder().
		WithConfigLoader(loader).
		WithScanner(service.NewScanServiceWithProgress(pm, logger)).
		WithOutput(cmd.OutOrStdout()).
		WithFileHelper(fileHelper).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}

	req := app.ScanRequest{
		Root:       absRoot,
		ConfigPath: opts.configPath,
		Overrides:  overrides,
		OutputPath: opts.output,
	}

	if opts.watch {
		ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger.Infof("watching %s, press Ctrl+C to stop", absRoot)
		return uc.Watch(ctx, req, watch.DefaultDebounce)
	}

	_, err = uc.Execute(contextOrBackground(cmd), req)
	return err
}

// newLogger builds the stderr logger from the resolved logging settings
func newLogger(w io.Writer, cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, domain.NewConfigError("invalid log level", err)
	}
	return logging.New(w, level, cfg.Logging.IncludeTimestamp), nil
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
