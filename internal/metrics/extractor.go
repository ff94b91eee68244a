// Package metrics computes lexical measurements of source files.
package metrics

import (
	"regexp"
	"strings"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
)

// maxSignatureLines bounds how far a parameter list may wrap
const maxSignatureLines = 10

// Options holds extractor thresholds
type Options struct {
	MinLiteralLength   int
	MinIdentifiers     int
	DominanceThreshold float64
}

// OptionsFromConfig derives extractor options from the configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MinLiteralLength:   cfg.Smells.CopyPaste.MinLiteralLength,
		MinIdentifiers:     cfg.Smells.InconsistentNaming.MinIdentifiers,
		DominanceThreshold: cfg.Smells.InconsistentNaming.DominanceThreshold,
	}
}

// Extractor turns loaded source files into FileMetrics
type Extractor struct {
	opts    Options
	literal *regexp.Regexp
}

// NewExtractor creates an extractor with the given options
func NewExtractor(opts Options) *Extractor {
	if opts.MinLiteralLength <= 0 {
		opts.MinLiteralLength = config.DefaultMinLiteralLength
	}
	if opts.MinIdentifiers <= 0 {
		opts.MinIdentifiers = config.DefaultMinNamingIdentifiers
	}
	if opts.DominanceThreshold <= 0 {
		opts.DominanceThreshold = config.DefaultNamingDominance
	}
	return &Extractor{opts: opts, literal: stringLiteralPattern(opts.MinLiteralLength)}
}

type lineKind int

const (
	lineBlank lineKind = iota
	lineComment
	lineCode
)

// Extract measures the content of file. The file must have been loaded.
func (e *Extractor) Extract(file *domain.SourceFile) *domain.FileMetrics {
	m := &domain.FileMetrics{
		Path:     file.RelPath,
		Language: file.Language,
		Support:  file.Support,
		IsTest:   file.IsTest,
	}

	lines := splitLines(string(file.Content))
	m.TotalLines = len(lines)
	kinds := classifyLines(lines, commentSyntaxFor(file.Language))

	for i, line := range lines {
		switch kinds[i] {
		case lineBlank:
			m.BlankLines++
			continue
		case lineComment:
			m.CommentLines++
		case lineCode:
			m.CodeLines++
		}

		normalized := normalizeLine(line)
		m.NormalizedLines = append(m.NormalizedLines, normalized)
		if kinds[i] == lineCode {
			m.CodeFragment = append(m.CodeFragment, domain.NumberedLine{Number: i + 1, Text: normalized})
			for _, match := range e.literal.FindAllStringSubmatch(line, -1) {
				m.StringLiterals = append(m.StringLiterals, domain.StringLiteral{Value: match[1], Line: i + 1})
			}
		}

		if match := todoPattern.FindStringSubmatch(line); match != nil {
			m.Todos = append(m.Todos, domain.TodoMarker{
				Tag:  strings.ToUpper(match[1]),
				Text: strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(match[2]), "*/")),
				Line: i + 1,
			})
		}
	}

	if total := m.CommentLines + m.CodeLines; total > 0 {
		m.CommentRatio = float64(m.CommentLines) / float64(total)
	}

	if patterns := patternsFor(file.Language); patterns != nil && file.Support == domain.SupportPrimary {
		e.extractStructure(m, lines, kinds, patterns)
	}

	m.Naming = TallyNaming(m.Identifiers, e.opts.MinIdentifiers, e.opts.DominanceThreshold)
	return m
}

// extractStructure finds functions, classes, imports, identifiers, error
// handling and feature hits on code lines
func (e *Extractor) extractStructure(m *domain.FileMetrics, lines []string, kinds []lineKind, p *languagePatterns) {
	var (
		pending    *domain.FunctionSignature
		functions  []domain.FunctionSignature
		seen       = make(map[string]bool)
		inGoImport bool
	)

	addIdentifier := func(name string, kind domain.IdentifierKind, line int) {
		if name == "" || controlKeywords[name] {
			return
		}
		key := string(kind) + ":" + name
		if seen[key] {
			return
		}
		seen[key] = true
		m.Identifiers = append(m.Identifiers, domain.Identifier{Name: name, Kind: kind, Line: line})
	}

	closePending := func(end int) {
		if pending == nil {
			return
		}
		functions = append(functions, closeFunction(*pending, end, lines))
		pending = nil
	}

	for i, line := range lines {
		if kinds[i] != lineCode {
			continue
		}
		lineNo := i + 1

		if m.Language == domain.LanguageGo {
			trimmed := strings.TrimSpace(line)
			if inGoImport {
				if strings.HasPrefix(trimmed, ")") {
					inGoImport = false
				} else {
					m.ImportCount++
				}
				continue
			}
			if strings.HasPrefix(trimmed, "import (") || trimmed == "import(" {
				inGoImport = true
				continue
			}
		}
		if matchAny(p.imports, line) {
			m.ImportCount++
		}

		for _, re := range p.errors {
			if re.MatchString(line) {
				m.HasErrorHandling = true
				break
			}
		}
		for _, re := range p.features {
			if re.MatchString(line) {
				m.FeatureHits++
				break
			}
		}

		if name := firstClassName(p.classes, line); name != "" {
			closePending(lineNo - 1)
			m.Classes = append(m.Classes, domain.ClassInfo{Name: name, Line: lineNo})
			addIdentifier(name, domain.IdentifierClass, lineNo)
			continue
		}

		if sig, ok := e.matchFunction(p, m, lines, i); ok {
			closePending(lineNo - 1)
			pending = &sig
			addIdentifier(sig.Name, domain.IdentifierFunction, lineNo)
			continue
		}

		for _, re := range p.variables {
			if match := re.FindStringSubmatch(line); match != nil {
				addIdentifier(match[re.SubexpIndex("name")], domain.IdentifierVariable, lineNo)
				break
			}
		}
	}
	closePending(len(lines))

	for i := range functions {
		functions[i].HasErrorHandling = spanHandlesErrors(p.errors, lines, kinds, functions[i])
	}
	m.Functions = functions

	m.IdentifierLengths = identifierLengths(m.Identifiers)
}

// identifierLengths builds the length histogram with its max and mean
func identifierLengths(ids []domain.Identifier) domain.IdentifierLengths {
	var dist domain.IdentifierLengths
	if len(ids) == 0 {
		return dist
	}
	counts := make(map[int]int)
	total := 0
	for _, id := range ids {
		n := len(id.Name)
		counts[n]++
		total += n
		dist.Max = max(dist.Max, n)
	}
	for n := 1; n <= dist.Max; n++ {
		if c := counts[n]; c > 0 {
			dist.Histogram = append(dist.Histogram, domain.LengthBucket{Length: n, Count: c})
		}
	}
	dist.Mean = float64(total) / float64(len(ids))
	return dist
}

// matchFunction reports the function declared on lines[i], if any
func (e *Extractor) matchFunction(p *languagePatterns, m *domain.FileMetrics, lines []string, i int) (domain.FunctionSignature, bool) {
	line := lines[i]
	for _, re := range p.functions {
		loc := re.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		nameIdx := re.SubexpIndex("name")
		name := line[loc[2*nameIdx]:loc[2*nameIdx+1]]
		if controlKeywords[name] {
			continue
		}

		receiver := false
		if recvIdx := re.SubexpIndex("recv"); recvIdx > 0 && loc[2*recvIdx] >= 0 {
			receiver = true
		}

		sig := domain.FunctionSignature{
			Name:      name,
			File:      m.Path,
			StartLine: i + 1,
			Params:    countParams(lines, i, loc[2*nameIdx+1], m.Language),
			IsMethod:  receiver || (indentOf(line) > 0 && len(m.Classes) > 0),
		}
		return sig, true
	}
	return domain.FunctionSignature{}, false
}

// closeFunction ends a function at end, trimming trailing blank lines
func closeFunction(sig domain.FunctionSignature, end int, lines []string) domain.FunctionSignature {
	for end > sig.StartLine && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if end < sig.StartLine {
		end = sig.StartLine
	}
	sig.EndLine = end
	sig.Lines = end - sig.StartLine + 1
	return sig
}

func spanHandlesErrors(patterns []*regexp.Regexp, lines []string, kinds []lineKind, fn domain.FunctionSignature) bool {
	for n := fn.StartLine; n <= fn.EndLine && n <= len(lines); n++ {
		if kinds[n-1] == lineCode && matchAny(patterns, lines[n-1]) {
			return true
		}
	}
	return false
}

// countParams counts the parameters of the list opening after offset on lines[start].
// Lists may wrap over a few lines.
func countParams(lines []string, start, offset int, lang domain.Language) int {
	var sb strings.Builder
	depth := 0
	opened := false

scan:
	for n := start; n < len(lines) && n < start+maxSignatureLines; n++ {
		text := lines[n]
		if n == start {
			text = text[offset:]
		}
		for _, r := range text {
			switch {
			case !opened:
				if r == '(' {
					opened = true
					depth = 1
				} else if r == '[' && lang == domain.LanguageGo {
					// generic type parameters precede the parameter list
					continue
				} else if !isIdentRune(r) && !strings.ContainsRune(" \t<>,]=:", r) {
					return 0
				}
			case r == '(' || r == '[' || r == '{':
				depth++
				sb.WriteRune(r)
			case r == ')' || r == ']' || r == '}':
				depth--
				if depth == 0 {
					break scan
				}
				sb.WriteRune(r)
			default:
				sb.WriteRune(r)
			}
		}
		if !opened {
			return 0
		}
		sb.WriteRune(' ')
	}

	return countTopLevel(sb.String(), lang)
}

// countTopLevel counts comma-separated entries outside nested brackets
func countTopLevel(params string, lang domain.Language) int {
	count := 0
	depth := 0
	var prev rune
	var current strings.Builder

	flush := func() {
		p := strings.TrimSpace(current.String())
		current.Reset()
		if p == "" || p == "*" || p == "/" {
			return
		}
		if lang == domain.LanguagePython {
			name := strings.TrimSpace(strings.SplitN(strings.SplitN(p, ":", 2)[0], "=", 2)[0])
			if name == "self" || name == "cls" {
				return
			}
		}
		count++
	}

	for _, r := range params {
		switch r {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			// arrows such as => and -> are not closing brackets
			if depth > 0 && !(r == '>' && (prev == '=' || prev == '-')) {
				depth--
			}
		case ',':
			if depth == 0 {
				flush()
				prev = r
				continue
			}
		}
		current.WriteRune(r)
		prev = r
	}
	flush()
	return count
}

// classifyLines assigns each line a blank, comment or code kind.
// Block comments are recognized when their start marker opens the line.
func classifyLines(lines []string, syntax commentSyntax) []lineKind {
	kinds := make([]lineKind, len(lines))
	var openBlock *blockComment

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			kinds[i] = lineBlank
			continue
		}

		if openBlock != nil {
			kinds[i] = lineComment
			if strings.Contains(trimmed, openBlock.end) {
				openBlock = nil
			}
			continue
		}

		kinds[i] = lineCode
		for _, prefix := range syntax.line {
			if strings.HasPrefix(trimmed, prefix) && !startsBlock(trimmed, syntax) {
				kinds[i] = lineComment
				break
			}
		}
		if kinds[i] == lineComment {
			continue
		}

		for j := range syntax.blocks {
			block := syntax.blocks[j]
			if !strings.HasPrefix(trimmed, block.start) {
				continue
			}
			kinds[i] = lineComment
			if !strings.Contains(trimmed[len(block.start):], block.end) {
				openBlock = &syntax.blocks[j]
			}
			break
		}
	}
	return kinds
}

// startsBlock reports whether a block marker that shares a line prefix opens the line, as with Lua's --[[
func startsBlock(trimmed string, syntax commentSyntax) bool {
	for _, block := range syntax.blocks {
		if strings.HasPrefix(trimmed, block.start) {
			return true
		}
	}
	return false
}

// splitLines splits content on newlines, dropping the empty tail after a final newline
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// normalizeLine trims a line and collapses inner whitespace
func normalizeLine(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || r == '.' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

func matchAny(patterns []*regexp.Regexp, line string) bool {
	for _, re := range patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func firstClassName(patterns []*regexp.Regexp, line string) string {
	for _, re := range patterns {
		if match := re.FindStringSubmatch(line); match != nil {
			return match[1]
		}
	}
	return ""
}
