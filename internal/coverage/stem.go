package coverage

import (
	"path"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"
)

var (
	stemPrefixes = []string{"test_", "tests_", "spec_"}
	stemSuffixes = []string{"_test", ".test", ".spec", "_spec", "_tests"}

	// camelSuffixes are case-sensitive, as in UserServiceTest
	camelSuffixes = []string{"Tests", "Test", "Spec"}
)

// NormalizeStem reduces a file path to a comparable stem: test affixes are
// removed, the name is split on separators and camel humps, and every token
// is lowercased and stemmed. "tests/test_user_services.py" and
// "src/UserService.java" both normalize to "user_servic".
func NormalizeStem(p string) string {
	name := path.Base(p)
	stem := strings.TrimSuffix(name, path.Ext(name))
	stem = stripAffixes(stem)

	tokens := splitTokens(stem)
	for i, tok := range tokens {
		tokens[i] = porter2.Stem(strings.ToLower(tok))
	}
	return strings.Join(tokens, "_")
}

func stripAffixes(stem string) string {
	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(stem)
		for _, prefix := range stemPrefixes {
			if len(stem) > len(prefix) && strings.HasPrefix(lower, prefix) {
				stem = stem[len(prefix):]
				changed = true
				break
			}
		}
		lower = strings.ToLower(stem)
		for _, suffix := range stemSuffixes {
			if len(stem) > len(suffix) && strings.HasSuffix(lower, suffix) {
				stem = stem[:len(stem)-len(suffix)]
				changed = true
				break
			}
		}
		for _, suffix := range camelSuffixes {
			if len(stem) > len(suffix) && strings.HasSuffix(stem, suffix) {
				stem = stem[:len(stem)-len(suffix)]
				changed = true
				break
			}
		}
	}
	return stem
}

// splitTokens splits on '_', '-', '.' and camel humps. Acronyms stay together:
// "HTTPServer" yields "HTTP" and "Server".
func splitTokens(s string) []string {
	var tokens []string
	runes := []rune(s)
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			tokens = append(tokens, string(runes[start:end]))
		}
		start = -1
	}

	for i, r := range runes {
		if r == '_' || r == '-' || r == '.' || unicode.IsSpace(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush(i)
			start = i
		case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			flush(i)
			start = i
		}
	}
	flush(len(runes))
	return tokens
}

// Similarity returns the Jaro-Winkler similarity of two stems
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(score)
}
