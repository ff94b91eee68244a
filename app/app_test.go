package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
	"github.com/ludo-technologies/vibescan/internal/testutil"
	"github.com/ludo-technologies/vibescan/service"
)

// fakeScanner returns a fixed report and counts calls
type fakeScanner struct {
	calls atomic.Int32
	err   error
	cfgs  chan *config.Config
}

func (s *fakeScanner) Scan(_ context.Context, root string, _ []string, cfg *config.Config) (*domain.HealthReport, error) {
	s.calls.Add(1)
	if s.cfgs != nil {
		select {
		case s.cfgs <- cfg:
		default:
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &domain.HealthReport{
		Root:  root,
		Score: 55,
		Risk:  domain.RiskElevated,
		Files: []domain.FileSummary{{FileMetrics: domain.FileMetrics{
			Path:      "src/billing.py",
			Language:  domain.LanguagePython,
			Support:   domain.SupportPrimary,
			CodeLines: 120,
			Functions: []domain.FunctionSignature{{Name: "charge", StartLine: 3, Lines: 20}},
		}}},
		Signals: []domain.Signal{{
			Detector:    domain.DetectorCriticalUntested,
			Confidence:  domain.ConfidenceHigh,
			Severity:    6,
			Description: "6 functions and no mapped tests",
			Files:       []domain.FileRef{{Path: "src/billing.py", Line: 3}},
		}},
	}, nil
}

// syncBuffer is a bytes.Buffer safe for the watch goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func newUseCase(t *testing.T, scanner Scanner, out *bytes.Buffer) *ScanUseCase {
	t.Helper()
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, err := NewScanUseCaseBuilder().
		WithScanner(scanner).
		WithOutput(out).
		WithClock(func() time.Time {
			clock = clock.Add(250 * time.Millisecond)
			return clock
		}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return uc
}

func TestScanUseCase_ExecuteWritesEnvelope(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"src/billing.py": "x = 1\n"})
	var out bytes.Buffer
	uc := newUseCase(t, &fakeScanner{}, &out)

	result, err := uc.Execute(context.Background(), ScanRequest{
		Root:      root,
		Overrides: service.ConfigOverrides{Format: "json"},
	})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, domain.OutputFormatJSON, result.Format)

	var env service.ScanEnvelope
	if err := json.Unmarshal(out.Bytes(), &env); err != nil {
		t.Fatalf("Expected JSON output, got %v\n%s", err, out.String())
	}
	if env.DurationMs != 250 || env.GeneratedAt != "2026-03-01T09:00:00Z" {
		t.Errorf("Unexpected envelope metadata: %+v", env)
	}
	if env.Report == nil || env.Report.Score != 55 {
		t.Fatalf("Unexpected report: %+v", env.Report)
	}
	if len(env.Prompts) != 1 || env.Prompts[0].Title != "Add tests for src/billing.py" {
		t.Errorf("Expected one prompt for the untested module, got %+v", env.Prompts)
	}
}

func TestScanUseCase_AppliesOverrides(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		".vibescan.toml": "[output]\nmax_prompts = 7\n",
		"app.py":         "x = 1\n",
	})
	scanner := &fakeScanner{cfgs: make(chan *config.Config, 1)}
	var out bytes.Buffer
	uc := newUseCase(t, scanner, &out)

	_, err := uc.Execute(context.Background(), ScanRequest{
		Root:      root,
		Overrides: service.ConfigOverrides{IgnoreDirs: []string{"fixtures"}},
	})
	testutil.AssertNoError(t, err)

	cfg := <-scanner.cfgs
	testutil.AssertEqual(t, 7, cfg.Output.MaxPrompts)
	if len(cfg.Scan.IgnoreDirs) == 0 || cfg.Scan.IgnoreDirs[len(cfg.Scan.IgnoreDirs)-1] != "fixtures" {
		t.Errorf("Expected the ignore override to reach the scanner, got %v", cfg.Scan.IgnoreDirs)
	}
}

func TestScanUseCase_OutputFile(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"app.py": "x = 1\n"})
	var out bytes.Buffer
	uc := newUseCase(t, &fakeScanner{}, &out)

	outputPath := filepath.Join(t.TempDir(), "reports", "health.md")
	_, err := uc.Execute(context.Background(), ScanRequest{
		Root:       root,
		Overrides:  service.ConfigOverrides{Format: "markdown"},
		OutputPath: outputPath,
	})
	testutil.AssertNoError(t, err)

	content, err := os.ReadFile(outputPath)
	testutil.AssertNoError(t, err)
	if !bytes.Contains(content, []byte("# vibescan Health Report")) {
		t.Errorf("Expected a markdown report in %s, got:\n%s", outputPath, content)
	}
	if out.Len() != 0 {
		t.Error("Expected nothing on the writer when an output file is given")
	}
}

func TestScanUseCase_Errors(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"app.py": "x = 1\n"})

	t.Run("invalid format", func(t *testing.T) {
		var out bytes.Buffer
		uc := newUseCase(t, &fakeScanner{}, &out)
		_, err := uc.Execute(context.Background(), ScanRequest{Root: root, Overrides: service.ConfigOverrides{Format: "html"}})
		var cfgErr *domain.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("Expected *domain.ConfigError, got %v", err)
		}
	})

	t.Run("scanner failure", func(t *testing.T) {
		var out bytes.Buffer
		scanner := &fakeScanner{err: domain.NewPathError(root, "does not exist", nil)}
		uc := newUseCase(t, scanner, &out)
		_, err := uc.Execute(context.Background(), ScanRequest{Root: root})
		var pathErr *domain.PathError
		if !errors.As(err, &pathErr) {
			t.Errorf("Expected *domain.PathError, got %v", err)
		}
		if out.Len() != 0 {
			t.Error("Expected no output on failure")
		}
	})
}

func TestScanUseCaseBuilder_Requires(t *testing.T) {
	if _, err := NewScanUseCaseBuilder().WithOutput(&bytes.Buffer{}).Build(); err == nil {
		t.Error("Expected an error without scanner")
	}
	if _, err := NewScanUseCaseBuilder().WithScanner(&fakeScanner{}).Build(); err == nil {
		t.Error("Expected an error without output writer")
	}
}

func TestScanUseCase_WatchRescans(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := testutil.WriteTree(t, map[string]string{"app.py": "x = 1\n"})
	scanner := &fakeScanner{}
	out := &syncBuffer{}
	uc, err := NewScanUseCaseBuilder().WithScanner(scanner).WithOutput(out).Build()
	testutil.AssertNoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- uc.Watch(ctx, ScanRequest{Root: root, Overrides: service.ConfigOverrides{Format: "json"}}, 50*time.Millisecond)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for scanner.calls.Load() < 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	// Give the watcher time to register the tree
	time.Sleep(150 * time.Millisecond)
	testutil.WriteFile(t, root, "app.py", "x = 2\n")

	for scanner.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		testutil.AssertNoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancellation")
	}
	if scanner.calls.Load() < 2 {
		t.Errorf("Expected a rescan after a change, got %d scans", scanner.calls.Load())
	}
}

func TestScanUseCase_WatchReturnsFirstError(t *testing.T) {
	defer goleak.VerifyNone(t)

	scanner := &fakeScanner{err: domain.NewPathError("missing", "does not exist", nil)}
	uc, err := NewScanUseCaseBuilder().WithScanner(scanner).WithOutput(&bytes.Buffer{}).Build()
	testutil.AssertNoError(t, err)

	err = uc.Watch(context.Background(), ScanRequest{Root: t.TempDir()}, 0)
	if !domain.IsUserError(err) {
		t.Errorf("Expected the initial scan error, got %v", err)
	}
}

func TestFileHelper(t *testing.T) {
	h := NewFileHelper()
	dir := t.TempDir()

	root, err := h.ResolveRoot("")
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, filepath.IsAbs(root), "Expected an absolute root")

	out, err := h.CreateOutput(filepath.Join(dir, "reports", "health.json"))
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, out.Close())
	if _, err := os.Stat(filepath.Join(dir, "reports", "health.json")); err != nil {
		t.Errorf("Expected the output file and its directory to be created: %v", err)
	}
}
