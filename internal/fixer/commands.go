package fixer

import "github.com/ludo-technologies/vibescan/domain"

// testCommands is the conventional test runner per language
var testCommands = map[domain.Language]string{
	domain.LanguagePython:     "pytest",
	domain.LanguageJavaScript: "npm test",
	domain.LanguageTypeScript: "npm test",
	domain.LanguageGo:         "go test ./...",
	domain.LanguageRust:       "cargo test",
	domain.LanguageJava:       "mvn test",
	domain.LanguageKotlin:     "./gradlew test",
	domain.LanguageSwift:      "swift test",
	domain.LanguageCSharp:     "dotnet test",
	domain.LanguagePHP:        "vendor/bin/phpunit",
	domain.LanguageRuby:       "bundle exec rspec",
	domain.LanguageDart:       "dart test",
}

const fallbackTestCommand = "the project's test suite"

// TestCommand returns the test runner for a language
func TestCommand(lang domain.Language) string {
	if cmd, ok := testCommands[lang]; ok {
		return cmd
	}
	return fallbackTestCommand
}

// dominantLanguage returns the language with the most code lines
func dominantLanguage(report *domain.HealthReport) domain.Language {
	var best domain.LanguageStat
	for _, stat := range report.Languages {
		if !stat.Support.CountsAsCode() {
			continue
		}
		if best.Language == "" || stat.CodeLines > best.CodeLines ||
			stat.CodeLines == best.CodeLines && stat.Language < best.Language {
			best = stat
		}
	}
	return best.Language
}
