package parsers

import (
	"go/ast"
	"regexp"
	"strings"

	"github.com/mvp-joe/repo-digest/internal/extraction"
)

// patternRule recognizes one declaration form on a single line.
type patternRule struct {
	re         *regexp.Regexp
	kind       extraction.Kind
	nameGroup  int
	ownerGroup int  // Receiver type group, 0 if none
	container  bool // Opens a member scope when the line opens a brace
	prefix     string
}

// lineGrammar is the set of line patterns for one language.
type lineGrammar struct {
	commentPrefix string
	// commentOpen and commentClose delimit block comments, empty if the
	// language has none.
	commentOpen  string
	commentClose string
	// blockOpen matches grouped declarations such as "const (". Group 1 is
	// the keyword used to select blockRules.
	blockOpen   *regexp.Regexp
	blockRules  map[string][]patternRule
	topRules    []patternRule
	memberRules []patternRule
	public      func(name, owner, line string) bool
}

// patternExtractor is a regex-driven extractor for languages without an
// embedded grammar, and for sources a grammar rejects.
type patternExtractor struct {
	grammar lineGrammar
}

func newPatternExtractor(grammar lineGrammar) *patternExtractor {
	return &patternExtractor{grammar: grammar}
}

func (p *patternExtractor) Extract(source []byte) ([]extraction.Declaration, error) {
	s := p.grammar
	var (
		decls     []extraction.Declaration
		depth     int
		container string
		blockKey  string
		doc       string
		inComment bool
		inBlock   bool
	)

	for i, raw := range strings.Split(string(source), "\n") {
		trimmed := strings.TrimSpace(raw)
		line := i + 1

		if s.commentOpen != "" && (inBlock || !strings.HasPrefix(trimmed, s.commentPrefix)) {
			trimmed, inBlock = stripBlockComments(trimmed, inBlock, s)
		}

		if strings.HasPrefix(trimmed, s.commentPrefix) {
			if !inComment {
				doc = cleanComment(trimmed)
			}
			inComment = true
			continue
		}
		pendingDoc := doc
		inComment = false
		doc = ""
		if trimmed == "" {
			continue
		}

		code := stripComment(trimmed, s.commentPrefix)
		delta := braceDelta(code)

		switch {
		case depth == 0 && blockKey != "" && strings.HasPrefix(code, ")"):
			blockKey = ""

		case depth == 0 && blockKey != "":
			if d, rule, ok := p.apply(s.blockRules[blockKey], code, "", pendingDoc, line); ok {
				decls = append(decls, d)
				if rule.container && delta > 0 {
					container = d.Name
				}
			}

		case depth == 0:
			if s.blockOpen != nil {
				if m := s.blockOpen.FindStringSubmatch(code); m != nil {
					blockKey = m[1]
					break
				}
			}
			if d, rule, ok := p.apply(s.topRules, code, "", pendingDoc, line); ok {
				decls = append(decls, d)
				if rule.container && delta > 0 {
					container = d.Name
				}
			}

		case depth == 1 && container != "":
			if d, _, ok := p.apply(s.memberRules, code, container, pendingDoc, line); ok {
				decls = append(decls, d)
			}
		}

		depth += delta
		if depth <= 0 {
			depth = 0
			container = ""
		}
	}
	return decls, nil
}

// apply returns the declaration described by the first rule matching code.
// A line claimed by a rule but hidden by the visibility check yields false.
func (p *patternExtractor) apply(rules []patternRule, code, owner, doc string, line int) (extraction.Declaration, patternRule, bool) {
	for _, rule := range rules {
		m := rule.re.FindStringSubmatch(code)
		if m == nil {
			continue
		}
		name := m[rule.nameGroup]
		kind := rule.kind
		if rule.ownerGroup > 0 && m[rule.ownerGroup] != "" {
			owner = m[rule.ownerGroup]
			kind = extraction.KindMethod
		}
		if p.grammar.public != nil && !p.grammar.public(name, owner, code) {
			return extraction.Declaration{}, rule, false
		}
		return extraction.Declaration{
			Kind:      kind,
			Name:      qualify(owner, name),
			Owner:     owner,
			Signature: rule.prefix + cutBody(code),
			Doc:       doc,
			Line:      line,
		}, rule, true
	}
	return extraction.Declaration{}, patternRule{}, false
}

// cutBody drops an opening brace and anything after it outside of
// parameter lists.
func cutBody(code string) string {
	parens := 0
	for i, r := range code {
		switch r {
		case '(', '[':
			parens++
		case ')', ']':
			parens--
		case '{':
			if parens == 0 {
				return strings.TrimRight(strings.TrimSpace(code[:i]), " =:")
			}
		}
	}
	return strings.TrimRight(strings.TrimSpace(code), " ,;{")
}

// braceDelta counts braces outside of string and character literals.
func braceDelta(code string) int {
	delta := 0
	var quote rune
	escaped := false
	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if r == '\\' && quote != '`' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'' || r == '`':
			quote = r
		case r == '{':
			delta++
		case r == '}':
			delta--
		}
	}
	return delta
}

// stripComment drops a trailing line comment outside of string literals.
func stripComment(s, prefix string) string {
	if prefix == "" {
		return s
	}
	var quote rune
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'' || r == '`':
			quote = r
		case strings.HasPrefix(s[i:], prefix):
			return strings.TrimSpace(s[:i])
		}
	}
	return s
}

// stripBlockComments removes block comment spans from line. open reports
// whether line starts inside a span; the result reports whether one is still
// open at its end. Openers inside quotes or after a line comment are text.
func stripBlockComments(line string, open bool, g lineGrammar) (string, bool) {
	var sb strings.Builder
	for line != "" {
		if open {
			end := strings.Index(line, g.commentClose)
			if end < 0 {
				break
			}
			line = line[end+len(g.commentClose):]
			open = false
			sb.WriteByte(' ')
			continue
		}
		start := indexUnquoted(line, g.commentOpen, g.commentPrefix)
		if start < 0 {
			sb.WriteString(line)
			break
		}
		sb.WriteString(line[:start])
		line = line[start+len(g.commentOpen):]
		open = true
	}
	return strings.TrimSpace(sb.String()), open
}

// indexUnquoted returns the index of sub outside string literals, or -1 if
// it is absent or only found after stop.
func indexUnquoted(s, sub, stop string) int {
	var quote rune
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'' || r == '`':
			quote = r
		case stop != "" && strings.HasPrefix(s[i:], stop):
			return -1
		case strings.HasPrefix(s[i:], sub):
			return i
		}
	}
	return -1
}

var goPatterns = lineGrammar{
	commentPrefix: "//",
	commentOpen:   "/*",
	commentClose:  "*/",
	blockOpen:     regexp.MustCompile(`^(type|const|var)\s*\($`),
	blockRules: map[string][]patternRule{
		"type":  {{re: regexp.MustCompile(`^(\w+)\b`), kind: extraction.KindType, nameGroup: 1, container: true, prefix: "type "}},
		"const": {{re: regexp.MustCompile(`^(\w+)\b`), kind: extraction.KindConstant, nameGroup: 1, prefix: "const "}},
		"var":   {{re: regexp.MustCompile(`^(\w+)\b`), kind: extraction.KindVariable, nameGroup: 1, prefix: "var "}},
	},
	topRules: []patternRule{
		{
			// Receivers may carry type arguments, methods may carry type parameters.
			re:         regexp.MustCompile(`^func\s+(?:\(\s*(?:\w+\s+)?\*?\s*(\w+)[^)]*\)\s*)?(\w+)`),
			kind:       extraction.KindFunction,
			nameGroup:  2,
			ownerGroup: 1,
		},
		{re: regexp.MustCompile(`^type\s+(\w+)`), kind: extraction.KindType, nameGroup: 1, container: true},
		{re: regexp.MustCompile(`^const\s+(\w+)`), kind: extraction.KindConstant, nameGroup: 1},
		{re: regexp.MustCompile(`^var\s+(\w+)`), kind: extraction.KindVariable, nameGroup: 1},
	},
	memberRules: []patternRule{
		{re: regexp.MustCompile(`^(\w+)\s*\(`), kind: extraction.KindMethod, nameGroup: 1},
		{re: regexp.MustCompile(`^(\w+)(?:\s*,\s*\w+)*\s+\S`), kind: extraction.KindField, nameGroup: 1},
	},
	public: func(name, owner, line string) bool {
		return ast.IsExported(name) && (owner == "" || ast.IsExported(owner))
	},
}

// ZigLanguage returns the Zig language, handled by line patterns only.
func ZigLanguage() Language {
	return Language{
		Name:          "zig",
		Extensions:    []string{".zig"},
		CommentPrefix: "//",
		Primary:       newPatternExtractor(zigPatterns),
	}
}

var zigPatterns = lineGrammar{
	commentPrefix: "//",
	topRules: []patternRule{
		{re: regexp.MustCompile(`^(?:pub\s+)?const\s+(\w+)\s*=\s*(?:extern\s+|packed\s+)?(?:struct|enum|union|opaque)\b`), kind: extraction.KindType, nameGroup: 1, container: true},
		{re: regexp.MustCompile(`^(?:pub\s+)?(?:export\s+|inline\s+|extern\s+)?fn\s+(\w+)`), kind: extraction.KindFunction, nameGroup: 1},
		{re: regexp.MustCompile(`^(?:pub\s+)?const\s+(\w+)`), kind: extraction.KindConstant, nameGroup: 1},
		{re: regexp.MustCompile(`^(?:pub\s+)?var\s+(\w+)`), kind: extraction.KindVariable, nameGroup: 1},
	},
	memberRules: []patternRule{
		{re: regexp.MustCompile(`^(?:pub\s+)?(?:inline\s+)?fn\s+(\w+)`), kind: extraction.KindMethod, nameGroup: 1},
		{re: regexp.MustCompile(`^(\w+)\s*:\s*[^=]`), kind: extraction.KindField, nameGroup: 1},
		{re: regexp.MustCompile(`^(\w+)\s*(?:=\s*[^,]+)?,$`), kind: extraction.KindConstant, nameGroup: 1},
		{re: regexp.MustCompile(`^(?:pub\s+)?const\s+(\w+)`), kind: extraction.KindConstant, nameGroup: 1},
	},
	public: func(name, owner, line string) bool {
		if owner != "" {
			return !strings.HasPrefix(line, "fn ") && !strings.HasPrefix(line, "const ")
		}
		return strings.HasPrefix(line, "pub ") || strings.HasPrefix(line, "export ")
	},
}
