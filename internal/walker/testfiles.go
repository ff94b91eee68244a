package walker

import (
	"path"
	"strings"
)

// testDirectories are path segments that mark everything below them as tests
var testDirectories = map[string]bool{
	"test":      true,
	"tests":     true,
	"spec":      true,
	"specs":     true,
	"__tests__": true,
	"__test__":  true,
	"testing":   true,
}

// testNamePrefixes and testNameFragments are lowercase file name patterns that mark test files
var (
	testNamePrefixes  = []string{"test_", "spec_", "test.", "tests."}
	testNameFragments = []string{"_test.", ".test.", ".spec.", "_spec.", "_tests."}
)

// testNameSuffixes are case-sensitive stem suffixes used by JVM and .NET projects
var testNameSuffixes = []string{"Test", "Tests", "Spec", "IT"}

// IsTestPath reports whether a slash-separated relative path names a test file
func IsTestPath(rel string) bool {
	dir, name := path.Split(rel)
	for _, segment := range strings.Split(strings.Trim(dir, "/"), "/") {
		if testDirectories[strings.ToLower(segment)] {
			return true
		}
	}

	lower := strings.ToLower(name)
	for _, prefix := range testNamePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	for _, fragment := range testNameFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}

	stem := strings.TrimSuffix(name, path.Ext(name))
	for _, suffix := range testNameSuffixes {
		if len(stem) > len(suffix) && strings.HasSuffix(stem, suffix) {
			prev := stem[len(stem)-len(suffix)-1]
			if prev >= 'a' && prev <= 'z' || prev >= '0' && prev <= '9' {
				return true
			}
		}
	}
	return false
}
