package walker

import (
	"testing"

	"github.com/ludo-technologies/vibescan/domain"
)

func TestIsTestPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"tests/helpers.py", true},
		{"src/__tests__/App.jsx", true},
		{"pkg/service_test.go", true},
		{"test_models.py", true},
		{"web/Button.test.tsx", true},
		{"web/button.spec.ts", true},
		{"spec/user_spec.rb", true},
		{"src/main/java/UserServiceTest.java", true},
		{"src/latest.py", false},
		{"src/contest.go", false},
		{"src/testament.py", false},
		{"src/service.py", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsTestPath(tt.path); got != tt.want {
				t.Errorf("IsTestPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestClassifyLanguage(t *testing.T) {
	tests := []struct {
		path    string
		lang    domain.Language
		support domain.SupportLevel
	}{
		{"a.py", domain.LanguagePython, domain.SupportPrimary},
		{"a.TSX", domain.LanguageTypeScript, domain.SupportPrimary},
		{"a.go", domain.LanguageGo, domain.SupportPrimary},
		{"a.cpp", "C++", domain.SupportBasic},
		{"a.sh", "Shell", domain.SupportBasic},
		{"Makefile", domain.LanguageUnknown, domain.SupportUnknown},
		{"notes.md", domain.LanguageUnknown, domain.SupportUnknown},
	}

	for _, tt := range tests {
		lang, support := ClassifyLanguage(tt.path)
		if lang != tt.lang || support != tt.support {
			t.Errorf("ClassifyLanguage(%q) = %s/%s, want %s/%s", tt.path, lang, support, tt.lang, tt.support)
		}
	}
}

func TestIsBinaryContent(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    bool
	}{
		{"empty", nil, false},
		{"text", []byte("package main\n\nfunc main() {}\n"), false},
		{"utf8 text", []byte("name = \"héllo wörld\"\n"), false},
		{"nul byte", []byte("abc\x00def"), true},
		{"png header", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A}, true},
		{"control heavy", []byte{1, 2, 3, 4, 5, 6, 'a'}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBinaryContent(tt.content); got != tt.want {
				t.Errorf("IsBinaryContent() = %v, want %v", got, tt.want)
			}
		})
	}
}
