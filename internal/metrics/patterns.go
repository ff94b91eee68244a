package metrics

import (
	"fmt"
	"regexp"

	"github.com/ludo-technologies/vibescan/domain"
)

// blockComment is a start/end marker pair for multi-line comments
type blockComment struct {
	start string
	end   string
}

// commentSyntax describes how comments are written in a language
type commentSyntax struct {
	line   []string
	blocks []blockComment
}

var (
	cStyle     = commentSyntax{line: []string{"//"}, blocks: []blockComment{{"/*", "*/"}}}
	hashStyle  = commentSyntax{line: []string{"#"}}
	noComments = commentSyntax{}
)

// commentSyntaxes covers primary and basic languages
var commentSyntaxes = map[domain.Language]commentSyntax{
	domain.LanguagePython: {
		line:   []string{"#"},
		blocks: []blockComment{{`"""`, `"""`}, {`'''`, `'''`}},
	},
	domain.LanguageJavaScript: cStyle,
	domain.LanguageTypeScript: cStyle,
	domain.LanguageGo:         cStyle,
	domain.LanguageRust:       cStyle,
	domain.LanguageJava:       cStyle,
	domain.LanguageKotlin:     cStyle,
	domain.LanguageSwift:      cStyle,
	domain.LanguageCSharp:     cStyle,
	domain.LanguagePHP: {
		line:   []string{"//", "#"},
		blocks: []blockComment{{"/*", "*/"}},
	},
	domain.LanguageRuby: {
		line:   []string{"#"},
		blocks: []blockComment{{"=begin", "=end"}},
	},
	domain.LanguageDart: cStyle,

	"C":       cStyle,
	"C++":     cStyle,
	"Scala":   cStyle,
	"Groovy":  cStyle,
	"Zig":     {line: []string{"//"}},
	"Shell":   hashStyle,
	"Perl":    hashStyle,
	"R":       hashStyle,
	"Elixir":  hashStyle,
	"Nim":     hashStyle,
	"Crystal": hashStyle,
	"SQL":     {line: []string{"--"}, blocks: []blockComment{{"/*", "*/"}}},
	"Lua":     {line: []string{"--"}, blocks: []blockComment{{"--[[", "]]"}}},
	"Haskell": {line: []string{"--"}, blocks: []blockComment{{"{-", "-}"}}},
	"OCaml":   {blocks: []blockComment{{"(*", "*)"}}},
	"F#":      {line: []string{"//"}, blocks: []blockComment{{"(*", "*)"}}},
	"Clojure": {line: []string{";"}},
	"Erlang":  {line: []string{"%"}},
	"Vue":     {line: []string{"//"}, blocks: []blockComment{{"/*", "*/"}, {"<!--", "-->"}}},
	"Svelte":  {line: []string{"//"}, blocks: []blockComment{{"/*", "*/"}, {"<!--", "-->"}}},
}

func commentSyntaxFor(lang domain.Language) commentSyntax {
	if syntax, ok := commentSyntaxes[lang]; ok {
		return syntax
	}
	return noComments
}

// languagePatterns holds the structural patterns of a primary language.
// Function patterns expose the declared name as the "name" group and,
// for Go, the method receiver as the "recv" group.
type languagePatterns struct {
	functions []*regexp.Regexp
	classes   []*regexp.Regexp
	imports   []*regexp.Regexp
	variables []*regexp.Regexp
	errors    []*regexp.Regexp
	features  []*regexp.Regexp
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

var (
	jsFunctions = []string{
		`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*(?P<name>[\w$]+)\s*[<(]`,
		`^\s*(?:export\s+)?(?:const|let|var)\s+(?P<name>[\w$]+)\s*(?::[^=]+)?=\s*(?:async\s+)?(?:\([^)]*\)|[\w$]+)\s*(?::[^=]+)?=>`,
		`^\s*(?:export\s+)?(?:const|let|var)\s+(?P<name>[\w$]+)\s*=\s*(?:async\s+)?function\b`,
		`^\s*(?P<name>[\w$]+)\s*:\s*(?:async\s+)?function\b`,
		`^\s*(?:(?:public|private|protected|static|readonly|override|abstract)\s+)*(?:async\s+)?(?P<name>[\w$]+)\s*(?:<[^>]*>)?\([^)]*\)\s*(?::\s*[^{=]+)?\{`,
	}
	jsImports  = []string{`^\s*import\s+`, `^\s*(?:const|let|var)\s+[^=]+=\s*require\(`, `^\s*export\s+.*\bfrom\s+['"]`}
	jsVars     = []string{`\b(?:const|let|var)\s+(?P<name>[A-Za-z_$][\w$]*)\s*[=:;]`}
	jsErrors   = []string{`^\s*try\s*\{`, `\.catch\s*\(`, `\bcatch\s*(?:\(|\{)`}
	jsFeatures = []string{
		`\b(?:app|router|server)\.(?:get|post|put|patch|delete)\(`,
		`export\s+(?:default\s+)?(?:async\s+)?function\s+\w+(?:Page|Route)\b`,
		`\bgetServerSideProps\b`,
		`\bgetStaticProps\b`,
	}

	cFamilyErrors = []string{`^\s*try\s*\{?\s*$`, `^\s*try\s*\{`, `\bcatch\s*\(`, `\bthrow\s`}
)

var patternsByLanguage = map[domain.Language]*languagePatterns{
	domain.LanguagePython: {
		functions: compile(`^\s*(?:async\s+)?def\s+(?P<name>\w+)\s*\(`),
		classes:   compile(`^\s*class\s+(\w+)`),
		imports:   compile(`^\s*import\s+\S`, `^\s*from\s+\S+\s+import\b`),
		variables: compile(`^\s*(?P<name>[A-Za-z_]\w*)\s*(?::\s*[^=]+)?=[^=]`),
		errors:    compile(`^\s*try\s*:`, `^\s*except\b`, `^\s*raise\b`),
		features: compile(
			`@app\.route\(`,
			`@(?:app|router)\.(?:get|post|put|patch|delete)\(`,
			`@api_view\(`,
			`\bpath\(['"]`,
			`\burl\(['"]`,
			`def\s+\w+_view\(`,
		),
	},
	domain.LanguageJavaScript: {
		functions: compile(jsFunctions...),
		classes:   compile(`^\s*(?:export\s+)?(?:default\s+)?class\s+([\w$]+)`),
		imports:   compile(jsImports...),
		variables: compile(jsVars...),
		errors:    compile(jsErrors...),
		features:  compile(jsFeatures...),
	},
	domain.LanguageTypeScript: {
		functions: compile(jsFunctions...),
		classes:   compile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([\w$]+)`),
		imports:   compile(jsImports...),
		variables: compile(jsVars...),
		errors:    compile(jsErrors...),
		features:  compile(jsFeatures...),
	},
	domain.LanguageGo: {
		functions: compile(`^func\s+(?P<recv>\([^)]*\)\s*)?(?P<name>\w+)\s*[\[(]`),
		classes:   compile(`^\s*type\s+(\w+)\s+struct\b`),
		imports:   compile(`^\s*import\s+(?:\w+\s+|\.\s+|_\s+)?"`),
		variables: compile(`^\s*(?:var|const)\s+(?P<name>\w+)\b`, `^\s*(?P<name>\w+)(?:\s*,\s*\w+)*\s*:=`),
		errors:    compile(`\bif\s+.*err\s*!=\s*nil`, `\berrors\.(?:Is|As|New)\(`, `\bfmt\.Errorf\(`, `\breturn\b.*\berr\b`),
		features: compile(
			`\bhttp\.HandleFunc\(`,
			`\b\w+\.HandleFunc\(`,
			`\b\w+\.(?:GET|POST|PUT|PATCH|DELETE)\(`,
			`\b\w+\.(?:Get|Post|Put|Patch|Delete)\(\s*"`,
		),
	},
	domain.LanguageRust: {
		functions: compile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:const\s+)?(?:async\s+)?(?:unsafe\s+)?fn\s+(?P<name>\w+)\s*[<(]`),
		classes:   compile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:struct|enum)\s+(\w+)`),
		imports:   compile(`^\s*(?:pub\s+)?use\s+`),
		variables: compile(`\blet\s+(?:mut\s+)?(?P<name>[A-Za-z_]\w*)`),
		errors:    compile(`\?\s*;`, `\.unwrap_or`, `\bErr\(`, `\.map_err\(`),
		features:  compile(`#\[(?:get|post|put|patch|delete)\(`, `\.route\(\s*"`),
	},
	domain.LanguageJava: {
		functions: compile(`^\s*(?:(?:public|private|protected|static|final|abstract|synchronized|native|default)\s+)*(?:<[^>]+>\s+)?[\w<>\[\],.?]+\s+(?P<name>\w+)\s*\([^)]*\)?\s*(?:throws\s+[\w.,\s]+)?\s*\{?\s*$`),
		classes:   compile(`^\s*(?:(?:public|private|protected|abstract|final|static)\s+)*(?:class|record|enum)\s+(\w+)`),
		imports:   compile(`^\s*import\s+`),
		variables: compile(`^\s*(?:final\s+)?(?:var|int|long|double|float|boolean|char|byte|short|String|[A-Z]\w*(?:<[^>]*>)?)\s+(?P<name>[a-zA-Z_]\w*)\s*=[^=]`),
		errors:    compile(cFamilyErrors...),
		features:  compile(`@(?:Get|Post|Put|Patch|Delete|Request)Mapping\b`, `@Path\(`),
	},
	domain.LanguageKotlin: {
		functions: compile(`^\s*(?:(?:public|private|protected|internal|override|open|suspend|inline|operator|infix)\s+)*fun\s+(?:<[^>]+>\s+)?(?:[\w.]+\.)?(?P<name>\w+)\s*\(`),
		classes:   compile(`^\s*(?:(?:public|private|internal|data|open|abstract|sealed|inner|enum)\s+)*class\s+(\w+)`, `^\s*object\s+(\w+)`),
		imports:   compile(`^\s*import\s+`),
		variables: compile(`\b(?:val|var)\s+(?P<name>[A-Za-z_]\w*)`),
		errors:    compile(cFamilyErrors...),
		features:  compile(`\b(?:get|post|put|patch|delete)\(\s*"`, `@(?:Get|Post|Put|Patch|Delete|Request)Mapping\b`),
	},
	domain.LanguageSwift: {
		functions: compile(`^\s*(?:(?:public|private|fileprivate|internal|open|static|class|override|mutating|@\w+)\s+)*func\s+(?P<name>\w+)\s*[<(]`),
		classes:   compile(`^\s*(?:(?:public|private|fileprivate|internal|open|final)\s+)*(?:class|struct|actor)\s+(\w+)`),
		imports:   compile(`^\s*import\s+`),
		variables: compile(`\b(?:let|var)\s+(?P<name>[A-Za-z_]\w*)`),
		errors:    compile(`^\s*do\s*\{`, `\bcatch\b`, `\btry[?!]?\s`, `\bguard\b.*\belse\b`),
		features:  compile(`\b(?:app|router|routes)\.(?:get|post|put|patch|delete)\(`),
	},
	domain.LanguageCSharp: {
		functions: compile(`^\s*(?:(?:public|private|protected|internal|static|virtual|override|abstract|sealed|async|extern|unsafe|new)\s+)+[\w<>\[\],.?]+\s+(?P<name>\w+)\s*(?:<[^>]*>)?\([^)]*\)?\s*\{?\s*$`),
		classes:   compile(`^\s*(?:(?:public|private|protected|internal|abstract|sealed|static|partial)\s+)*(?:class|record|struct)\s+(\w+)`),
		imports:   compile(`^\s*using\s+[\w.]+\s*;`, `^\s*using\s+static\s+`),
		variables: compile(`^\s*(?:var|int|long|double|float|bool|char|byte|short|string|decimal|[A-Z]\w*(?:<[^>]*>)?)\s+(?P<name>[a-zA-Z_]\w*)\s*=[^=]`),
		errors:    compile(cFamilyErrors...),
		features:  compile(`\[Http(?:Get|Post|Put|Patch|Delete)\b`, `\bMap(?:Get|Post|Put|Patch|Delete)\(`),
	},
	domain.LanguagePHP: {
		functions: compile(`^\s*(?:(?:public|private|protected|static|final|abstract)\s+)*function\s+&?(?P<name>\w+)\s*\(`),
		classes:   compile(`^\s*(?:(?:abstract|final)\s+)*class\s+(\w+)`),
		imports:   compile(`^\s*use\s+[\w\\]+`, `^\s*(?:require|include)(?:_once)?\b`),
		variables: compile(`^\s*\$(?P<name>[A-Za-z_]\w*)\s*=[^=]`),
		errors:    compile(cFamilyErrors...),
		features:  compile(`Route::(?:get|post|put|patch|delete)\(`, `->(?:get|post)\(\s*['"]`),
	},
	domain.LanguageRuby: {
		functions: compile(`^\s*def\s+(?:self\.)?(?P<name>\w+[?!=]?)`),
		classes:   compile(`^\s*class\s+(\w+)`),
		imports:   compile(`^\s*require(?:_relative)?\b`, `^\s*load\s+['"]`),
		variables: compile(`^\s*@{0,2}(?P<name>[a-z_]\w*)\s*=[^=~>]`),
		errors:    compile(`^\s*begin\s*$`, `^\s*rescue\b`, `\braise\b`),
		features: compile(
			`^\s*(?:get|post|put|patch|delete)\s+['"]`,
			`^\s*resources?\s+:`,
		),
	},
	domain.LanguageDart: {
		functions: compile(`^\s*(?:(?:static|external|final|const|async)\s+)*(?:[\w<>?,\s]+\s+)?(?P<name>[a-zA-Z_]\w*)\s*\([^)]*\)?\s*(?:async\s*\*?\s*)?(?:\{|=>)`),
		classes:   compile(`^\s*(?:abstract\s+)?class\s+(\w+)`),
		imports:   compile(`^\s*import\s+['"]`, `^\s*export\s+['"]`),
		variables: compile(`\b(?:final|var|const|late)\s+(?:[\w<>?]+\s+)?(?P<name>[a-zA-Z_]\w*)\s*[=;]`),
		errors:    compile(cFamilyErrors...),
		features:  compile(`\bGoRoute\(`, `\brouter\.(?:get|post|put|patch|delete)\(`),
	},
}

func patternsFor(lang domain.Language) *languagePatterns {
	return patternsByLanguage[lang]
}

// controlKeywords are words a loose function pattern may capture from
// control-flow statements
var controlKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "foreach": true, "while": true,
	"switch": true, "case": true, "catch": true, "try": true, "do": true,
	"return": true, "new": true, "function": true, "typeof": true, "sizeof": true,
	"with": true, "using": true, "lock": true, "synchronized": true, "await": true,
	"yield": true, "throw": true, "delete": true, "super": true, "this": true,
	"elif": true, "unless": true, "until": true, "match": true, "guard": true,
	"when": true, "in": true, "of": true, "import": true, "require": true,
}

// SensitiveNamePatterns are lowercase fragments of function names that deal with
// money, identity, secrets or destructive operations
var SensitiveNamePatterns = []string{
	"payment", "pay_", "_pay", "charge", "billing", "invoice",
	"auth", "login", "logout", "signin", "signout", "signup", "register",
	"password", "passwd", "token", "secret", "key", "credential", "apikey",
	"encrypt", "decrypt", "hash", "verify", "validate", "admin",
	"delete", "remove", "destroy", "transfer", "withdraw", "deposit",
}

// todoPattern captures the marker tag and its text from a comment
var todoPattern = regexp.MustCompile(`(?i)(?:#|//|/\*|\*|<!--|--|;)\s*(TODO|FIXME|HACK|XXX|BUG)\b\s*(?:\([^)]*\))?\s*:?\s*(.*)`)

func stringLiteralPattern(minLength int) *regexp.Regexp {
	if minLength < 1 {
		minLength = 1
	}
	return regexp.MustCompile(fmt.Sprintf(`["']([^"'\n]{%d,})["']`, minLength))
}
