package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ludo-technologies/vibescan/internal/logging"
	"github.com/ludo-technologies/vibescan/internal/testutil"
	"github.com/ludo-technologies/vibescan/service"
)

func newTestServer() *Server {
	return New(service.NewScanService(logging.Discard()), "", logging.Discard())
}

// call invokes a tool handler the way the SDK does after decoding a request
func call(t *testing.T, s *Server, tool string, params map[string]any) *mcp.CallToolResult {
	t.Helper()
	args, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("Failed to marshal params: %v", err)
	}
	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Name: tool, Arguments: args},
	}

	var res *mcp.CallToolResult
	switch tool {
	case ToolScan:
		res, err = s.handleScan(context.Background(), req)
	case ToolFixPrompts:
		res, err = s.handleFixPrompts(context.Background(), req)
	default:
		t.Fatalf("Unknown tool %s", tool)
	}
	if err != nil {
		t.Fatalf("Handler returned protocol error: %v", err)
	}
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("Expected one content block, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func untestedTree(t *testing.T) string {
	return testutil.WriteTree(t, map[string]string{
		"src/billing.py": testutil.PythonModule("charge", 6),
		"src/util.py":    "# TODO: remove\nx = 1\n",
	})
}

func TestHandleScan_JSON(t *testing.T) {
	root := untestedTree(t)
	res := call(t, newTestServer(), ToolScan, map[string]any{"path": root})
	if res.IsError {
		t.Fatalf("Unexpected tool error: %s", text(t, res))
	}

	var env service.ScanEnvelope
	if err := json.Unmarshal([]byte(text(t, res)), &env); err != nil {
		t.Fatalf("Expected a JSON envelope: %v", err)
	}
	if env.Report == nil || env.Report.Summary.SourceFiles != 2 {
		t.Fatalf("Unexpected report: %+v", env.Report)
	}
	if len(env.Prompts) == 0 {
		t.Error("Expected fix prompts for an untested tree")
	}
}

func TestHandleScan_MarkdownAndExclude(t *testing.T) {
	root := untestedTree(t)
	res := call(t, newTestServer(), ToolScan, map[string]any{
		"path":    root,
		"format":  "markdown",
		"exclude": []string{"src/util.py"},
	})
	if res.IsError {
		t.Fatalf("Unexpected tool error: %s", text(t, res))
	}
	out := text(t, res)
	if !strings.HasPrefix(out, "# vibescan Health Report") {
		t.Errorf("Expected markdown output, got:\n%s", out)
	}
	if strings.Contains(out, "src/util.py") {
		t.Error("Expected the excluded file to be absent")
	}
}

func TestHandleScan_Errors(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   string
	}{
		{"missing path", map[string]any{}, "(input error): path is required"},
		{"blank path", map[string]any{"path": "  "}, "(input error): path is required"},
		{"bad root", map[string]any{"path": filepath.Join(t.TempDir(), "missing")}, "input error"},
		{"bad format", map[string]any{"path": ".", "format": "html"}, "unsupported output format"},
		{"wrong type", map[string]any{"path": 42}, "(input error): invalid parameters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, newTestServer(), ToolScan, tt.params)
			if !res.IsError {
				t.Fatalf("Expected a tool error, got %s", text(t, res))
			}
			if got := text(t, res); !strings.Contains(got, tt.want) {
				t.Errorf("Expected error containing %q, got %q", tt.want, got)
			}
		})
	}
}

func TestHandleFixPrompts(t *testing.T) {
	root := untestedTree(t)
	res := call(t, newTestServer(), ToolFixPrompts, map[string]any{"path": root})
	if res.IsError {
		t.Fatalf("Unexpected tool error: %s", text(t, res))
	}
	out := text(t, res)
	if !strings.HasPrefix(out, "#1 [now, ") {
		t.Errorf("Expected the first prompt to be urgent, got:\n%s", out)
	}
	if !strings.Contains(out, "Verify: ") {
		t.Errorf("Expected a verification line, got:\n%s", out)
	}
}

func TestHandleFixPrompts_Filtering(t *testing.T) {
	root := untestedTree(t)

	res := call(t, newTestServer(), ToolFixPrompts, map[string]any{"path": root, "min_confidence": "high"})
	out := text(t, res)
	if strings.Contains(out, "[later, ") || strings.Contains(out, "[soon, ") {
		t.Errorf("Expected only high confidence prompts, got:\n%s", out)
	}

	res = call(t, newTestServer(), ToolFixPrompts, map[string]any{"path": root, "max_prompts": 1})
	if n := strings.Count(text(t, res), "Verify: "); n != 1 {
		t.Errorf("Expected exactly one prompt, got %d", n)
	}

	res = call(t, newTestServer(), ToolFixPrompts, map[string]any{"path": root, "min_confidence": "certain"})
	if !res.IsError {
		t.Error("Expected an error for an unknown confidence")
	}
	if got := text(t, res); !strings.Contains(got, "(input error): unknown confidence") {
		t.Errorf("Expected an input error, got %q", got)
	}
}

func TestHandleFixPrompts_Clean(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"notes.txt": "nothing to see\n"})
	res := call(t, newTestServer(), ToolFixPrompts, map[string]any{"path": root, "min_confidence": "high"})
	if res.IsError {
		t.Fatalf("Unexpected tool error: %s", text(t, res))
	}
	if !strings.HasPrefix(text(t, res), "No fix prompts") {
		t.Errorf("Expected the empty notice, got %q", text(t, res))
	}
}
