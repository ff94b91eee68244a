// Package mcpserver exposes scans and fix prompts to AI assistants over the
// Model Context Protocol.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
	"github.com/ludo-technologies/vibescan/internal/constants"
	"github.com/ludo-technologies/vibescan/internal/fixer"
	"github.com/ludo-technologies/vibescan/internal/logging"
	"github.com/ludo-technologies/vibescan/internal/version"
	"github.com/ludo-technologies/vibescan/service"
)

// Tool names
const (
	ToolScan       = "scan"
	ToolFixPrompts = "fix_prompts"
)

// Scanner produces a health report for a root
type Scanner interface {
	Scan(ctx context.Context, root string, ignorePatterns []string, cfg *config.Config) (*domain.HealthReport, error)
}

// ScanParams are the arguments of the scan tool
type ScanParams struct {
	Path       string   `json:"path"`
	Format     string   `json:"format,omitempty"`
	Exclude    []string `json:"exclude,omitempty"`
	MaxPrompts *int     `json:"max_prompts,omitempty"`
}

// FixPromptsParams are the arguments of the fix_prompts tool
type FixPromptsParams struct {
	Path          string   `json:"path"`
	Exclude       []string `json:"exclude,omitempty"`
	MaxPrompts    *int     `json:"max_prompts,omitempty"`
	MinConfidence string   `json:"min_confidence,omitempty"`
}

// Server serves the scan and fix_prompts tools
type Server struct {
	server     *mcp.Server
	scanner    Scanner
	loader     *service.ConfigurationLoaderImpl
	formatter  *service.OutputFormatterImpl
	configPath string
	logger     *logging.Logger
}

// New creates a server. configPath may be empty to discover configuration per scanned path.
func New(scanner Scanner, configPath string, logger *logging.Logger) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    constants.ToolName,
			Version: version.GetVersion(),
		}, nil),
		scanner:    scanner,
		loader:     service.NewConfigurationLoader(),
		formatter:  service.NewOutputFormatter(),
		configPath: configPath,
		logger:     logger,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	pathSchema := &jsonschema.Schema{
		Type:        "string",
		Description: "Directory to scan, absolute or relative to the server's working directory",
	}
	excludeSchema := &jsonschema.Schema{
		Type:        "array",
		Description: "Extra glob patterns to ignore, matched against slash-separated relative paths",
		Items:       &jsonschema.Schema{Type: "string"},
	}
	maxPromptsSchema := &jsonschema.Schema{
		Type:        "integer",
		Description: "Maximum number of fix prompts, 0 for all",
	}

	s.server.AddTool(&mcp.Tool{
		Name:        ToolScan,
		Description: "Scan a source tree and return its health score, risk tier, signals and ranked fix prompts.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": pathSchema,
				"format": {
					Type:        "string",
					Description: "Output format",
					Enum:        []any{"json", "markdown", "text"},
				},
				"exclude":     excludeSchema,
				"max_prompts": maxPromptsSchema,
			},
			Required: []string{"path"},
		},
	}, s.handleScan)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolFixPrompts,
		Description: "Scan a source tree and return only its ranked fix prompts as copy-pasteable instructions.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path":        pathSchema,
				"exclude":     excludeSchema,
				"max_prompts": maxPromptsSchema,
				"min_confidence": {
					Type:        "string",
					Description: "Drop prompts below this confidence",
					Enum:        []any{"high", "medium", "low"},
				},
			},
			Required: []string{"path"},
		},
	}, s.handleFixPrompts)
}

// Run serves over stdio until ctx is done or the client disconnects
func (s *Server) Run(ctx context.Context) error {
	s.logger.Infof("serving MCP tools %s and %s on stdio", ToolScan, ToolFixPrompts)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) handleScan(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params ScanParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult(ToolScan, domain.NewConfigError("invalid parameters", err)), nil
	}
	format := domain.OutputFormatJSON
	if params.Format != "" {
		f, err := domain.ParseOutputFormat(params.Format)
		if err != nil {
			return errorResult(ToolScan, err), nil
		}
		format = f
	}

	start := time.Now()
	report, prompts, err := s.scan(ctx, params.Path, params.Exclude, params.MaxPrompts)
	if err != nil {
		return errorResult(ToolScan, err), nil
	}

	var buf bytes.Buffer
	env := service.NewScanEnvelope(report, prompts, start, time.Since(start))
	if err := s.formatter.Write(env, format, &buf); err != nil {
		return errorResult(ToolScan, err), nil
	}
	return textResult(buf.String()), nil
}

func (s *Server) handleFixPrompts(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params FixPromptsParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult(ToolFixPrompts, domain.NewConfigError("invalid parameters", err)), nil
	}
	minConfidence := domain.ConfidenceLow
	if params.MinConfidence != "" {
		minConfidence = domain.Confidence(strings.ToLower(params.MinConfidence))
		if !minConfidence.IsValid() {
			return errorResult(ToolFixPrompts, domain.NewConfigError(fmt.Sprintf("unknown confidence %q (want high, medium or low)", params.MinConfidence), nil)), nil
		}
	}

	_, prompts, err := s.scan(ctx, params.Path, params.Exclude, params.MaxPrompts)
	if err != nil {
		return errorResult(ToolFixPrompts, err), nil
	}

	var sb strings.Builder
	shown := 0
	for _, p := range prompts {
		if p.Confidence.Rank() < minConfidence.Rank() {
			continue
		}
		if shown > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "#%d [%s, %s] ", p.Rank, p.Urgency, p.Detector)
		sb.WriteString(p.Text())
		shown++
	}
	if shown == 0 {
		sb.WriteString("No fix prompts: nothing at or above the requested confidence was found.\n")
	}
	return textResult(sb.String()), nil
}

// scan loads configuration for path, scans it and generates prompts
func (s *Server) scan(ctx context.Context, path string, exclude []string, maxPrompts *int) (*domain.HealthReport, []domain.FixPrompt, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil, domain.NewConfigError("path is required", nil)
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, domain.NewPathError(path, "cannot resolve path", err)
	}

	cfg, err := s.loader.Load(s.configPath, root, service.ConfigOverrides{MaxPrompts: maxPrompts})
	if err != nil {
		return nil, nil, err
	}
	report, err := s.scanner.Scan(ctx, root, exclude, cfg)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debugf("mcp scan of %s: score %d", root, report.Score)
	return report, fixer.NewEngine(cfg.Output.MaxPrompts).Generate(report), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult reports a tool failure inside the result so the client sees it
func errorResult(tool string, err error) *mcp.CallToolResult {
	kind := "internal"
	if domain.IsUserError(err) {
		kind = "input"
	}
	res := textResult(fmt.Sprintf("%s failed (%s error): %v", tool, kind, err))
	res.IsError = true
	return res
}
