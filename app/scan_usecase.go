package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
	"github.com/ludo-technologies/vibescan/internal/fixer"
	"github.com/ludo-technologies/vibescan/internal/logging"
	"github.com/ludo-technologies/vibescan/internal/walker"
	"github.com/ludo-technologies/vibescan/internal/watch"
	"github.com/ludo-technologies/vibescan/service"
)

// ConfigLoader loads configuration and merges command-line overrides
type ConfigLoader interface {
	Load(path, target string, overrides service.ConfigOverrides) (*config.Config, error)
}

// Scanner produces a health report for a root
type Scanner interface {
	Scan(ctx context.Context, root string, ignorePatterns []string, cfg *config.Config) (*domain.HealthReport, error)
}

// Formatter renders a scan envelope
type Formatter interface {
	Write(env *service.ScanEnvelope, format domain.OutputFormat, writer io.Writer) error
}

// ScanRequest describes one scan invocation
type ScanRequest struct {
	Root       string
	ConfigPath string
	Overrides  service.ConfigOverrides

	// OutputPath writes to a file instead of the use case's writer
	OutputPath string
}

// ScanResult holds what a scan produced
type ScanResult struct {
	Envelope *service.ScanEnvelope
	Config   *config.Config
	Format   domain.OutputFormat
}

// ScanUseCase orchestrates config loading, scanning, prompt generation and output
type ScanUseCase struct {
	loader     ConfigLoader
	scanner    Scanner
	formatter  Formatter
	output     io.Writer
	fileHelper *FileHelper
	logger     *logging.Logger
	now        func() time.Time
}

// Execute runs a single scan and writes the result
func (uc *ScanUseCase) Execute(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	start := uc.now()

	root, err := uc.fileHelper.ResolveRoot(req.Root)
	if err != nil {
		return nil, domain.NewPathError(req.Root, "cannot resolve path", err)
	}

	cfg, err := uc.loader.Load(req.ConfigPath, root, req.Overrides)
	if err != nil {
		return nil, err
	}
	format, err := domain.ParseOutputFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	report, err := uc.scanner.Scan(ctx, root, nil, cfg)
	if err != nil {
		return nil, err
	}
	prompts := fixer.NewEngine(cfg.Output.MaxPrompts).Generate(report)
	env := service.NewScanEnvelope(report, prompts, start, uc.now().Sub(start))

	if err := uc.write(env, format, req.OutputPath); err != nil {
		return nil, err
	}
	uc.logger.Debugf("scan of %s finished in %dms", root, env.DurationMs)

	return &ScanResult{Envelope: env, Config: cfg, Format: format}, nil
}

// Watch scans once, then rescans whenever files under the root change until ctx
// is done. Only the first scan's error is returned; later failures are logged so
// that a transient edit does not end the session.
func (uc *ScanUseCase) Watch(ctx context.Context, req ScanRequest, debounce time.Duration) error {
	result, err := uc.Execute(ctx, req)
	if err != nil {
		return err
	}

	root := result.Envelope.Report.Root
	scan := result.Config.Scan
	walk, err := walker.New(root, walker.Options{
		IgnoreDirs:       scan.IgnoreDirs,
		IgnorePatterns:   scan.IgnorePatterns,
		RespectGitignore: scan.RespectGitignore,
	})
	if err != nil {
		return err
	}

	w, err := watch.New(root, watch.Options{Debounce: debounce, Matcher: walk.Matcher()}, uc.logger)
	if err != nil {
		return fmt.Errorf("starting watch mode: %w", err)
	}
	return w.Run(ctx, func(ctx context.Context, changed []string) {
		uc.logger.Infof("%d changed file(s), rescanning", len(changed))
		if _, err := uc.Execute(ctx, req); err != nil {
			uc.logger.Errorf("rescan failed: %v", err)
		}
	})
}

func (uc *ScanUseCase) write(env *service.ScanEnvelope, format domain.OutputFormat, outputPath string) error {
	if outputPath == "" {
		return uc.formatter.Write(env, format, uc.output)
	}

	f, err := uc.fileHelper.CreateOutput(outputPath)
	if err != nil {
		return err
	}
	if err := uc.formatter.Write(env, format, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	uc.logger.Infof("report written to %s", outputPath)
	return nil
}

// ScanUseCaseBuilder builds a ScanUseCase
type ScanUseCaseBuilder struct {
	loader     ConfigLoader
	scanner    Scanner
	formatter  Formatter
	output     io.Writer
	fileHelper *FileHelper
	logger     *logging.Logger
	now        func() time.Time
}

// NewScanUseCaseBuilder creates a new builder
func NewScanUseCaseBuilder() *ScanUseCaseBuilder {
	return &ScanUseCaseBuilder{}
}

// WithConfigLoader sets the configuration loader
func (b *ScanUseCaseBuilder) WithConfigLoader(loader ConfigLoader) *ScanUseCaseBuilder {
	b.loader = loader
	return b
}

// WithScanner sets the scanner
func (b *ScanUseCaseBuilder) WithScanner(scanner Scanner) *ScanUseCaseBuilder {
	b.scanner = scanner
	return b
}

// WithFormatter sets the output formatter
func (b *ScanUseCaseBuilder) WithFormatter(formatter Formatter) *ScanUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithOutput sets the writer used when no output path is given
func (b *ScanUseCaseBuilder) WithOutput(w io.Writer) *ScanUseCaseBuilder {
	b.output = w
	return b
}

// WithFileHelper sets the file helper
func (b *ScanUseCaseBuilder) WithFileHelper(fh *FileHelper) *ScanUseCaseBuilder {
	b.fileHelper = fh
	return b
}

// WithLogger sets the logger
func (b *ScanUseCaseBuilder) WithLogger(logger *logging.Logger) *ScanUseCaseBuilder {
	b.logger = logger
	return b
}

// WithClock replaces time.Now, for tests
func (b *ScanUseCaseBuilder) WithClock(now func() time.Time) *ScanUseCaseBuilder {
	b.now = now
	return b
}

// Build creates the ScanUseCase with the configured dependencies
func (b *ScanUseCaseBuilder) Build() (*ScanUseCase, error) {
	if b.scanner == nil {
		return nil, fmt.Errorf("scanner is required")
	}
	if b.output == nil {
		return nil, fmt.Errorf("output writer is required")
	}

	uc := &ScanUseCase{
		loader:     b.loader,
		scanner:    b.scanner,
		formatter:  b.formatter,
		output:     b.output,
		fileHelper: b.fileHelper,
		logger:     b.logger,
		now:        b.now,
	}
	if uc.loader == nil {
		uc.loader = service.NewConfigurationLoader()
	}
	if uc.formatter == nil {
		uc.formatter = service.NewOutputFormatter()
	}
	if uc.fileHelper == nil {
		uc.fileHelper = NewFileHelper()
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc, nil
}
