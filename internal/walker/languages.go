package walker

import (
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/vibescan/domain"
)

type languageInfo struct {
	language domain.Language
	support  domain.SupportLevel
}

func primary(lang domain.Language) languageInfo {
	return languageInfo{language: lang, support: domain.SupportPrimary}
}

func basic(name string) languageInfo {
	return languageInfo{language: domain.Language(name), support: domain.SupportBasic}
}

// languageExtensions maps lowercase file extensions to languages
var languageExtensions = map[string]languageInfo{
	".py":  primary(domain.LanguagePython),
	".pyw": primary(domain.LanguagePython),
	".pyi": primary(domain.LanguagePython),

	".js":  primary(domain.LanguageJavaScript),
	".mjs": primary(domain.LanguageJavaScript),
	".cjs": primary(domain.LanguageJavaScript),
	".jsx": primary(domain.LanguageJavaScript),

	".ts":  primary(domain.LanguageTypeScript),
	".tsx": primary(domain.LanguageTypeScript),
	".mts": primary(domain.LanguageTypeScript),
	".cts": primary(domain.LanguageTypeScript),

	".go":    primary(domain.LanguageGo),
	".rs":    primary(domain.LanguageRust),
	".java":  primary(domain.LanguageJava),
	".kt":    primary(domain.LanguageKotlin),
	".kts":   primary(domain.LanguageKotlin),
	".swift": primary(domain.LanguageSwift),
	".cs":    primary(domain.LanguageCSharp),
	".php":   primary(domain.LanguagePHP),
	".rb":    primary(domain.LanguageRuby),
	".rake":  primary(domain.LanguageRuby),
	".dart":  primary(domain.LanguageDart),

	".c":      basic("C"),
	".h":      basic("C"),
	".cpp":    basic("C++"),
	".hpp":    basic("C++"),
	".cc":     basic("C++"),
	".cxx":    basic("C++"),
	".scala":  basic("Scala"),
	".sc":     basic("Scala"),
	".ex":     basic("Elixir"),
	".exs":    basic("Elixir"),
	".lua":    basic("Lua"),
	".pl":     basic("Perl"),
	".pm":     basic("Perl"),
	".r":      basic("R"),
	".sh":     basic("Shell"),
	".bash":   basic("Shell"),
	".zsh":    basic("Shell"),
	".vue":    basic("Vue"),
	".svelte": basic("Svelte"),
	".sql":    basic("SQL"),
	".hs":     basic("Haskell"),
	".ml":     basic("OCaml"),
	".mli":    basic("OCaml"),
	".fs":     basic("F#"),
	".fsx":    basic("F#"),
	".clj":    basic("Clojure"),
	".cljs":   basic("Clojure"),
	".cljc":   basic("Clojure"),
	".erl":    basic("Erlang"),
	".hrl":    basic("Erlang"),
	".zig":    basic("Zig"),
	".nim":    basic("Nim"),
	".cr":     basic("Crystal"),
	".groovy": basic("Groovy"),
	".gvy":    basic("Groovy"),
}

// ClassifyLanguage returns the language and support level for a file path.
// Files with an unrecognized extension fall back to LanguageUnknown.
func ClassifyLanguage(path string) (domain.Language, domain.SupportLevel) {
	ext := strings.ToLower(filepath.Ext(path))
	if info, ok := languageExtensions[ext]; ok {
		return info.language, info.support
	}
	return domain.LanguageUnknown, domain.SupportUnknown
}
