package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mvp-joe/repo-digest/internal/extraction"
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// PythonLanguage returns the Python language: a tree-sitter extractor with
// an indentation-aware line heuristic as fallback.
func PythonLanguage() Language {
	return Language{
		Name:          "python",
		Extensions:    []string{".py", ".pyi"},
		CommentPrefix: "#",
		Primary:       newPythonExtractor(),
		Fallback:      ExtractorFunc(extractPythonLines),
	}
}

type pythonExtractor struct {
	language *sitter.Language
}

func newPythonExtractor() *pythonExtractor {
	return &pythonExtractor{language: sitter.NewLanguage(python.Language())}
}

func (p *pythonExtractor) Extract(source []byte) ([]extraction.Declaration, error) {
	tree, err := parseTree(p.language, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("python: %w", ErrSyntax)
	}

	var decls []extraction.Declaration
	p.extractBlock(root, source, "", &decls)
	return decls, nil
}

// extractBlock visits the statements of a module or class body.
func (p *pythonExtractor) extractBlock(block *sitter.Node, source []byte, owner string, decls *[]extraction.Declaration) {
	for _, child := range namedChildren(block) {
		p.extractStatement(child, source, owner, decls)
	}
}

func (p *pythonExtractor) extractStatement(node *sitter.Node, source []byte, owner string, decls *[]extraction.Declaration) {
	switch node.Kind() {
	case "decorated_definition":
		if def := node.ChildByFieldName("definition"); def != nil {
			p.extractStatement(def, source, owner, decls)
		}
	case "class_definition":
		p.extractClass(node, source, owner, decls)
	case "function_definition":
		p.extractFunction(node, source, owner, decls)
	case "expression_statement":
		if assign := findChildByType(node, "assignment"); assign != nil {
			p.extractAssignment(assign, source, owner, decls)
		}
	}
}

func (p *pythonExtractor) extractClass(node *sitter.Node, source []byte, owner string, decls *[]extraction.Declaration) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, source)
	if !pythonPublic(name) {
		return
	}

	qualified := qualify(owner, name)
	sig := "class " + qualified
	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		sig += collapseSpace(nodeText(supers, source))
	}

	body := node.ChildByFieldName("body")
	*decls = append(*decls, extraction.Declaration{
		Kind:      extraction.KindType,
		Name:      qualified,
		Owner:     owner,
		Signature: sig,
		Doc:       pythonDocstring(body, source),
		Line:      nodeLine(node),
	})

	if body != nil {
		p.extractBlock(body, source, qualified, decls)
	}
}

func (p *pythonExtractor) extractFunction(node *sitter.Node, source []byte, owner string, decls *[]extraction.Declaration) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, source)
	if !pythonPublic(name) {
		return
	}

	var sb strings.Builder
	if first := node.Child(0); first != nil && first.Kind() == "async" {
		sb.WriteString("async ")
	}
	sb.WriteString("def ")
	sb.WriteString(qualify(owner, name))
	if params := node.ChildByFieldName("parameters"); params != nil {
		sb.WriteString(collapseParams(nodeText(params, source)))
	} else {
		sb.WriteString("()")
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sb.WriteString(" -> ")
		sb.WriteString(collapseSpace(nodeText(ret, source)))
	}

	kind := extraction.KindFunction
	if owner != "" {
		kind = extraction.KindMethod
	}
	*decls = append(*decls, extraction.Declaration{
		Kind:      kind,
		Name:      qualify(owner, name),
		Owner:     owner,
		Signature: sb.String(),
		Doc:       pythonDocstring(node.ChildByFieldName("body"), source),
		Line:      nodeLine(node),
	})
}

func (p *pythonExtractor) extractAssignment(node *sitter.Node, source []byte, owner string, decls *[]extraction.Declaration) {
	left := node.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return
	}
	name := nodeText(left, source)
	if !pythonPublic(name) {
		return
	}

	typeNode := node.ChildByFieldName("type")
	right := node.ChildByFieldName("right")

	switch {
	case owner != "" && typeNode != nil:
		*decls = append(*decls, extraction.Declaration{
			Kind:      extraction.KindField,
			Name:      qualify(owner, name),
			Owner:     owner,
			Signature: name + ": " + collapseSpace(nodeText(typeNode, source)),
			Line:      nodeLine(node),
		})
	case owner != "" || isConstantName(name):
		sig := name
		if typeNode != nil {
			sig += ": " + collapseSpace(nodeText(typeNode, source))
		}
		if right != nil {
			sig += " = " + truncate(strings.Join(strings.Fields(nodeText(right, source)), " "), 60)
		}
		*decls = append(*decls, extraction.Declaration{
			Kind:      extraction.KindConstant,
			Name:      qualify(owner, name),
			Owner:     owner,
			Signature: sig,
			Line:      nodeLine(node),
		})
	}
}

// pythonDocstring returns the first line of a body's docstring.
func pythonDocstring(body *sitter.Node, source []byte) string {
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Kind() != "expression_statement" {
		return ""
	}
	str := findChildByType(first, "string")
	if str == nil {
		return ""
	}
	text := strings.TrimLeft(nodeText(str, source), "rRbBuUfF")
	text = strings.Trim(text, `"'`)
	return cleanComment(text)
}

// pythonPublic reports whether a Python name is part of the public surface.
func pythonPublic(name string) bool {
	return name == "__init__" || !strings.HasPrefix(name, "_")
}

// isConstantName checks if a name follows Python constant naming convention (ALL_CAPS).
func isConstantName(name string) bool {
	if len(name) == 0 {
		return false
	}
	for _, ch := range name {
		if ch >= 'a' && ch <= 'z' {
			return false
		}
	}
	return true
}

func qualify(owner, name string) string {
	if owner == "" {
		return name
	}
	return owner + "." + name
}

// collapseParams folds a multi-line parameter list onto one line.
func collapseParams(params string) string {
	s := strings.Join(strings.Fields(params), " ")
	s = strings.ReplaceAll(s, "( ", "(")
	s = strings.ReplaceAll(s, ", )", ")")
	s = strings.ReplaceAll(s, ",)", ")")
	return strings.ReplaceAll(s, " )", ")")
}

var (
	pyClassLine = regexp.MustCompile(`^class\s+(\w+)\s*(\([^)]*\))?`)
	pyDefLine   = regexp.MustCompile(`^(async\s+)?def\s+(\w+)\s*(.*)$`)
	pyFieldLine = regexp.MustCompile(`^(\w+)\s*:\s*([^=#]+)`)
	pyConstLine = regexp.MustCompile(`^([A-Z][A-Z0-9_]*)\s*=\s*(.+)$`)
)

// pyScope is an open class or def block in the line heuristic.
type pyScope struct {
	indent int
	name   string
	class  bool
}

// pySignatureHead returns the parameters and return annotation of a def
// line, cut at the colon that closes the signature. Colons inside brackets
// or strings do not count.
func pySignatureHead(rest string) string {
	depth := 0
	var quote byte
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == ':' && depth == 0:
			return strings.TrimSpace(rest[:i])
		}
	}
	return strings.TrimSpace(rest)
}

// extractPythonLines is a line-oriented fallback for files tree-sitter
// rejects. Nesting is tracked by indentation.
func extractPythonLines(source []byte) ([]extraction.Declaration, error) {
	var decls []extraction.Declaration
	var stack []pyScope

	for i, raw := range strings.Split(string(source), "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		indent := len(raw) - len(strings.TrimLeft(raw, " \t"))
		for len(stack) > 0 && indent <= stack[len(stack)-1].indent {
			stack = stack[:len(stack)-1]
		}

		owner := ""
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			if !top.class {
				continue
			}
			owner = top.name
		}
		line := i + 1

		if m := pyClassLine.FindStringSubmatch(trimmed); m != nil {
			name := qualify(owner, m[1])
			stack = append(stack, pyScope{indent: indent, name: name, class: true})
			if pythonPublic(m[1]) {
				decls = append(decls, extraction.Declaration{
					Kind:      extraction.KindType,
					Name:      name,
					Owner:     owner,
					Signature: "class " + name + m[2],
					Line:      line,
				})
			}
			continue
		}

		if m := pyDefLine.FindStringSubmatch(trimmed); m != nil {
			stack = append(stack, pyScope{indent: indent, name: m[2]})
			if !pythonPublic(m[2]) {
				continue
			}
			rest := pySignatureHead(stripComment(m[3], "#"))
			prefix := "def "
			if m[1] != "" {
				prefix = "async def "
			}
			kind := extraction.KindFunction
			if owner != "" {
				kind = extraction.KindMethod
			}
			decls = append(decls, extraction.Declaration{
				Kind:      kind,
				Name:      qualify(owner, m[2]),
				Owner:     owner,
				Signature: prefix + qualify(owner, m[2]) + rest,
				Line:      line,
			})
			continue
		}

		if owner != "" {
			if m := pyFieldLine.FindStringSubmatch(trimmed); m != nil && pythonPublic(m[1]) {
				decls = append(decls, extraction.Declaration{
					Kind:      extraction.KindField,
					Name:      qualify(owner, m[1]),
					Owner:     owner,
					Signature: m[1] + ": " + strings.TrimSpace(m[2]),
					Line:      line,
				})
				continue
			}
		}

		if m := pyConstLine.FindStringSubmatch(trimmed); m != nil {
			decls = append(decls, extraction.Declaration{
				Kind:      extraction.KindConstant,
				Name:      qualify(owner, m[1]),
				Owner:     owner,
				Signature: m[1] + " = " + truncate(strings.TrimSpace(stripComment(m[2], "#")), 60),
				Line:      line,
			})
		}
	}
	return decls, nil
}
