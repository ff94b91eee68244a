package metrics

import (
	"math"
	"reflect"
	"testing"

	"github.com/ludo-technologies/vibescan/domain"
)

func extract(lang domain.Language, support domain.SupportLevel, path, content string) *domain.FileMetrics {
	e := NewExtractor(Options{})
	return e.Extract(&domain.SourceFile{
		Path:     "/repo/" + path,
		RelPath:  path,
		Language: lang,
		Support:  support,
		Content:  []byte(content),
	})
}

func TestExtract_Python(t *testing.T) {
	content := `"""Module docstring."""
import os
from typing import List

# a comment
def add(a, b):
    return a + b


class Greeter:
    def greet(self, name):
        """Say hello."""
        message = "hello there, how are you today"
        return message
`
	m := extract(domain.LanguagePython, domain.SupportPrimary, "pkg/greeter.py", content)

	if m.TotalLines != 14 || m.CodeLines != 8 || m.CommentLines != 3 || m.BlankLines != 3 {
		t.Fatalf("Unexpected line counts: total=%d code=%d comment=%d blank=%d",
			m.TotalLines, m.CodeLines, m.CommentLines, m.BlankLines)
	}
	if math.Abs(m.CommentRatio-3.0/11.0) > 1e-9 {
		t.Errorf("Expected comment ratio 3/11, got %f", m.CommentRatio)
	}
	if m.ImportCount != 2 {
		t.Errorf("Expected 2 imports, got %d", m.ImportCount)
	}
	if len(m.Classes) != 1 || m.Classes[0].Name != "Greeter" || m.Classes[0].Line != 10 {
		t.Errorf("Unexpected classes: %+v", m.Classes)
	}

	if len(m.Functions) != 2 {
		t.Fatalf("Expected 2 functions, got %+v", m.Functions)
	}
	add, greet := m.Functions[0], m.Functions[1]
	if add.Name != "add" || add.Params != 2 || add.StartLine != 6 || add.EndLine != 7 || add.Lines != 2 || add.IsMethod {
		t.Errorf("Unexpected add signature: %+v", add)
	}
	if greet.Name != "greet" || greet.Params != 1 || greet.StartLine != 11 || greet.EndLine != 14 || !greet.IsMethod {
		t.Errorf("Unexpected greet signature: %+v", greet)
	}
	if add.File != "pkg/greeter.py" {
		t.Errorf("Expected function file to be the relative path, got %s", add.File)
	}

	if len(m.StringLiterals) != 1 || m.StringLiterals[0].Line != 13 {
		t.Errorf("Unexpected string literals: %+v", m.StringLiterals)
	}

	names := map[string]domain.IdentifierKind{}
	for _, id := range m.Identifiers {
		names[id.Name] = id.Kind
	}
	want := map[string]domain.IdentifierKind{
		"add":     domain.IdentifierFunction,
		"greet":   domain.IdentifierFunction,
		"Greeter": domain.IdentifierClass,
		"message": domain.IdentifierVariable,
	}
	for name, kind := range want {
		if names[name] != kind {
			t.Errorf("Expected identifier %s of kind %s, got %q", name, kind, names[name])
		}
	}
	lengths := m.IdentifierLengths
	if lengths.Max != len("Greeter") {
		t.Errorf("Expected max identifier length 7, got %d", lengths.Max)
	}
	counted := 0
	for i, b := range lengths.Histogram {
		counted += b.Count
		if i > 0 && b.Length <= lengths.Histogram[i-1].Length {
			t.Errorf("Expected histogram buckets in ascending length, got %+v", lengths.Histogram)
		}
	}
	if counted != len(m.Identifiers) || lengths.Histogram[len(lengths.Histogram)-1].Length != lengths.Max {
		t.Errorf("Histogram %+v does not match %d identifiers", lengths.Histogram, len(m.Identifiers))
	}
	if m.HasErrorHandling {
		t.Error("Expected no error handling")
	}
	if len(m.NormalizedLines) != 11 || len(m.CodeFragment) != 8 {
		t.Errorf("Expected 11 normalized lines and 8 code lines, got %d and %d", len(m.NormalizedLines), len(m.CodeFragment))
	}
}

func TestExtract_Go(t *testing.T) {
	content := `package store

import (
	"errors"
	"fmt"
)

// Store keeps values
type Store struct {
	items map[string]int
}

func (s *Store) Get(key string) (int, error) {
	v, ok := s.items[key]
	if !ok {
		return 0, errors.New("missing")
	}
	return v, nil
}

func New[T any](size int, name string) *Store {
	return &Store{items: make(map[string]int, size)}
}
`
	m := extract(domain.LanguageGo, domain.SupportPrimary, "store/store.go", content)

	if m.ImportCount != 2 {
		t.Errorf("Expected 2 imports from the import block, got %d", m.ImportCount)
	}
	if len(m.Classes) != 1 || m.Classes[0].Name != "Store" {
		t.Errorf("Unexpected classes: %+v", m.Classes)
	}
	if len(m.Functions) != 2 {
		t.Fatalf("Expected 2 functions, got %+v", m.Functions)
	}

	get, ctor := m.Functions[0], m.Functions[1]
	if get.Name != "Get" || !get.IsMethod || get.Params != 1 || get.StartLine != 13 || get.EndLine != 19 || get.Lines != 7 {
		t.Errorf("Unexpected Get signature: %+v", get)
	}
	if !get.HasErrorHandling {
		t.Error("Expected Get to handle errors")
	}
	if ctor.Name != "New" || ctor.IsMethod || ctor.Params != 2 || ctor.Lines != 3 {
		t.Errorf("Unexpected New signature: %+v", ctor)
	}
	if ctor.HasErrorHandling {
		t.Error("Expected New to have no error handling")
	}
	if !m.HasErrorHandling {
		t.Error("Expected file-level error handling")
	}
}

func TestExtract_JavaScriptTodosAndArrows(t *testing.T) {
	content := `// TODO: remove this hack
const fetchUser = async (id, opts) => {
  return api.get(id, opts); // FIXME handle errors
};
`
	m := extract(domain.LanguageJavaScript, domain.SupportPrimary, "src/api.js", content)

	if len(m.Functions) != 1 || m.Functions[0].Name != "fetchUser" || m.Functions[0].Params != 2 {
		t.Fatalf("Unexpected functions: %+v", m.Functions)
	}
	if len(m.Todos) != 2 {
		t.Fatalf("Expected 2 markers, got %+v", m.Todos)
	}
	if m.Todos[0].Tag != "TODO" || m.Todos[0].Text != "remove this hack" || m.Todos[0].Line != 1 {
		t.Errorf("Unexpected first marker: %+v", m.Todos[0])
	}
	if m.Todos[1].Tag != "FIXME" || m.Todos[1].Text != "handle errors" || m.Todos[1].Line != 3 {
		t.Errorf("Unexpected second marker: %+v", m.Todos[1])
	}
}

func TestExtract_ControlFlowIsNotAFunction(t *testing.T) {
	content := `function run(items) {
  if (items.length) {
    for (const item of items) {
      handle(item);
    }
  }
  while (queue.length) {
    queue.pop();
  }
}
`
	m := extract(domain.LanguageJavaScript, domain.SupportPrimary, "run.js", content)
	if len(m.Functions) != 1 || m.Functions[0].Name != "run" || m.Functions[0].Lines != 10 {
		t.Errorf("Expected only run spanning 10 lines, got %+v", m.Functions)
	}
}

func TestExtract_CommentSyntaxes(t *testing.T) {
	tests := []struct {
		name    string
		lang    domain.Language
		content string
		comment int
		code    int
	}{
		{"c block", "C", "/* a\n b */\nint x;\n// c\n", 3, 1},
		{"ruby begin end", domain.LanguageRuby, "=begin\nfoo\n=end\nputs 1\n", 3, 1},
		{"lua block", "Lua", "--[[ start\nstill\n]]\nprint(1)\n-- c\n", 4, 1},
		{"python single quotes", domain.LanguagePython, "'''\ndoc\n'''\nx = 1\n", 3, 1},
		{"shell", "Shell", "#!/bin/sh\n# c\necho hi\n", 2, 1},
		{"unknown", domain.LanguageUnknown, "# heading\ntext\n", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := extract(tt.lang, domain.SupportBasic, "file", tt.content)
			if m.CommentLines != tt.comment || m.CodeLines != tt.code {
				t.Errorf("Expected %d comment / %d code lines, got %d / %d",
					tt.comment, tt.code, m.CommentLines, m.CodeLines)
			}
		})
	}
}

func TestExtract_BasicSupportSkipsStructure(t *testing.T) {
	m := extract("C", domain.SupportBasic, "main.c", "int main(void) {\n  return 0;\n}\n")
	if len(m.Functions) != 0 || len(m.Identifiers) != 0 {
		t.Errorf("Expected no structure for basic support, got %+v", m.Functions)
	}
	if m.CodeLines != 3 {
		t.Errorf("Expected 3 code lines, got %d", m.CodeLines)
	}
}

func TestExtract_EmptyFile(t *testing.T) {
	m := extract(domain.LanguagePython, domain.SupportPrimary, "empty.py", "")
	if m.TotalLines != 0 || m.CommentRatio != 0 || m.Naming.Dominance != 1 || m.Naming.Inconsistent {
		t.Errorf("Unexpected metrics for empty file: %+v", m)
	}
}

func TestExtract_FeatureHits(t *testing.T) {
	content := `from flask import Flask
app = Flask(__name__)

@app.route("/users")
def users_view():
    return "ok"

@app.route("/orders")
def orders():
    return "ok"
`
	m := extract(domain.LanguagePython, domain.SupportPrimary, "app.py", content)
	if m.FeatureHits != 3 {
		t.Errorf("Expected 3 feature hits (two routes and one view), got %d", m.FeatureHits)
	}
}

func TestCountTopLevel(t *testing.T) {
	tests := []struct {
		params string
		lang   domain.Language
		want   int
	}{
		{"", domain.LanguagePython, 0},
		{"self", domain.LanguagePython, 0},
		{"self, a, b=2", domain.LanguagePython, 2},
		{"cls, *, key: str = 'x'", domain.LanguagePython, 1},
		{"a: Map<string, number>, b", domain.LanguageTypeScript, 2},
		{"cb: () => void, x", domain.LanguageTypeScript, 2},
		{"ctx context.Context, fn func(int, int) error", domain.LanguageGo, 2},
	}
	for _, tt := range tests {
		if got := countTopLevel(tt.params, tt.lang); got != tt.want {
			t.Errorf("countTopLevel(%q) = %d, want %d", tt.params, got, tt.want)
		}
	}
}

func TestCountParams_Wrapped(t *testing.T) {
	lines := []string{
		"def build(",
		"    self,",
		"    name,",
		"    value=None,",
		"):",
	}
	if got := countParams(lines, 0, len("def build"), domain.LanguagePython); got != 2 {
		t.Errorf("Expected 2 wrapped params, got %d", got)
	}
}

func TestIdentifierLengths(t *testing.T) {
	ids := []domain.Identifier{{Name: "id"}, {Name: "user"}, {Name: "name"}, {Name: "loadUser"}}
	got := identifierLengths(ids)

	want := []domain.LengthBucket{{Length: 2, Count: 1}, {Length: 4, Count: 2}, {Length: 8, Count: 1}}
	if !reflect.DeepEqual(got.Histogram, want) {
		t.Errorf("Histogram = %+v, want %+v", got.Histogram, want)
	}
	if got.Max != 8 || got.Mean != 4.5 {
		t.Errorf("Expected max 8 and mean 4.5, got %d and %f", got.Max, got.Mean)
	}

	if empty := identifierLengths(nil); empty.Max != 0 || empty.Histogram != nil {
		t.Errorf("Expected a zero distribution, got %+v", empty)
	}
}
