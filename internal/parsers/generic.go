package parsers

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/repo-digest/internal/extraction"
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

const maxSignature = 160

// nodeRule describes how one node kind contributes to the public surface.
type nodeRule struct {
	kind extraction.Kind
	// body is the field holding the node's body. The signature is the text
	// before it. Empty means the whole node is the signature.
	body string
	// bodyKind locates the body by child kind when the grammar has no field.
	bodyKind string
	// members visits the body with this declaration as owner.
	members bool
	// selfBody visits the node's own children as members when no body is
	// found, for grammars that inline the body.
	selfBody bool
	// ownerOnly nodes (impl blocks) declare nothing themselves; their members
	// attach to the type named by name.
	ownerOnly bool
	name      func(n *sitter.Node, source []byte) string
	signature func(n *sitter.Node, source []byte) string
	classify  func(n *sitter.Node) extraction.Kind
}

// declTable is the declaration table for one grammar.
type declTable struct {
	name          string
	extensions    []string
	commentPrefix string
	language      func() *sitter.Language
	rules         map[string]nodeRule
	transparent   map[string]bool
	comments      map[string]bool
	// public reports whether n, found inside container (nil at top level),
	// is part of the public surface. Nil means everything is public.
	public func(n, container *sitter.Node, source []byte) bool
}

// treeSitterExtractor walks a tree-sitter tree using a declTable.
// In lenient mode syntax errors are tolerated and ERROR nodes are walked
// through, which makes it usable as the fallback for its own grammar.
type treeSitterExtractor struct {
	table    *declTable
	language *sitter.Language
	lenient  bool
}

func newTreeSitterExtractor(table *declTable, lenient bool) *treeSitterExtractor {
	return &treeSitterExtractor{table: table, language: table.language(), lenient: lenient}
}

func (e *treeSitterExtractor) Extract(source []byte) ([]extraction.Declaration, error) {
	tree, err := parseTree(e.language, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() && !e.lenient {
		return nil, fmt.Errorf("%s: %w", e.table.name, ErrSyntax)
	}

	var decls []extraction.Declaration
	e.visit(root, source, "", nil, &decls)
	return decls, nil
}

func (e *treeSitterExtractor) visit(node *sitter.Node, source []byte, owner string, container *sitter.Node, decls *[]extraction.Declaration) {
	for _, child := range namedChildren(node) {
		kind := child.Kind()
		if e.table.transparent[kind] || (e.lenient && kind == "ERROR") {
			e.visit(child, source, owner, container, decls)
			continue
		}

		rule, ok := e.table.rules[kind]
		if !ok {
			continue
		}
		if e.table.public != nil && !e.table.public(child, container, source) {
			continue
		}

		name := e.nameOf(rule, child, source)
		if name == "" {
			continue
		}

		body := e.bodyOf(rule, child)
		if rule.ownerOnly {
			if body != nil {
				e.visit(body, source, name, child, decls)
			}
			continue
		}

		declKind := rule.kind
		if rule.classify != nil {
			declKind = rule.classify(child)
		}
		if declKind == extraction.KindFunction && owner != "" {
			declKind = extraction.KindMethod
		}

		*decls = append(*decls, extraction.Declaration{
			Kind:      declKind,
			Name:      qualify(owner, name),
			Owner:     owner,
			Signature: e.signatureOf(rule, child, body, source),
			Doc:       e.docOf(child, source),
			Line:      nodeLine(child),
		})

		if rule.members {
			target := body
			if target == nil && rule.selfBody {
				target = child
			}
			if target != nil {
				e.visit(target, source, qualify(owner, name), child, decls)
			}
		}
	}
}

func (e *treeSitterExtractor) nameOf(rule nodeRule, n *sitter.Node, source []byte) string {
	if rule.name != nil {
		return rule.name(n, source)
	}
	return nodeText(n.ChildByFieldName("name"), source)
}

func (e *treeSitterExtractor) bodyOf(rule nodeRule, n *sitter.Node) *sitter.Node {
	if rule.body != "" {
		if body := n.ChildByFieldName(rule.body); body != nil {
			return body
		}
	}
	if rule.bodyKind != "" {
		return findChildByType(n, rule.bodyKind)
	}
	return nil
}

func (e *treeSitterExtractor) signatureOf(rule nodeRule, n, body *sitter.Node, source []byte) string {
	var sig string
	switch {
	case rule.signature != nil:
		sig = rule.signature(n, source)
	case body != nil:
		sig = collapseSpace(string(source[n.StartByte():body.StartByte()]))
	default:
		sig = collapseSpace(nodeText(n, source))
	}
	return truncate(sig, maxSignature)
}

// docOf finds the comment above n, or above its transparent wrapper such as
// an export statement.
func (e *treeSitterExtractor) docOf(n *sitter.Node, source []byte) string {
	if doc := precedingComment(n, source, e.table.comments); doc != "" {
		return doc
	}
	if parent := n.Parent(); parent != nil && e.table.transparent[parent.Kind()] && parent.Parent() != nil {
		return precedingComment(parent, source, e.table.comments)
	}
	return ""
}

// treeSitterLanguages returns the table-driven tree-sitter languages.
func treeSitterLanguages() []Language {
	tables := []*declTable{typeScriptTable(), tsxTable(), rustTable(), javaTable(), cTable(), rubyTable(), phpTable()}
	langs := make([]Language, 0, len(tables))
	for _, table := range tables {
		langs = append(langs, Language{
			Name:          table.name,
			Extensions:    table.extensions,
			CommentPrefix: table.commentPrefix,
			Primary:       newTreeSitterExtractor(table, false),
			Fallback:      newTreeSitterExtractor(table, true),
		})
	}
	return langs
}

var slashComments = map[string]bool{"comment": true, "line_comment": true, "block_comment": true}

// --- TypeScript / JavaScript ---

func typeScriptRules() map[string]nodeRule {
	return map[string]nodeRule{
		"function_declaration":           {kind: extraction.KindFunction, body: "body"},
		"generator_function_declaration": {kind: extraction.KindFunction, body: "body"},
		"function_signature":             {kind: extraction.KindFunction},
		"class_declaration":              {kind: extraction.KindType, body: "body", members: true},
		"abstract_class_declaration":     {kind: extraction.KindType, body: "body", members: true},
		"interface_declaration":          {kind: extraction.KindType, body: "body", members: true},
		"enum_declaration":               {kind: extraction.KindType, body: "body"},
		"type_alias_declaration":         {kind: extraction.KindType},
		"method_definition":              {kind: extraction.KindMethod, body: "body"},
		"method_signature":               {kind: extraction.KindMethod},
		"abstract_method_signature":      {kind: extraction.KindMethod},
		"public_field_definition":        {kind: extraction.KindField, signature: tsFieldSignature},
		"property_signature":             {kind: extraction.KindField, signature: tsFieldSignature},
		"lexical_declaration":            {kind: extraction.KindConstant, name: firstDeclaratorName, signature: lexicalSignature, classify: lexicalKind},
	}
}

// tsFieldSignature renders a field through its type annotation, or its name
// when untyped. Initializers are left out.
func tsFieldSignature(n *sitter.Node, source []byte) string {
	end := n.ChildByFieldName("type")
	if end == nil {
		end = n.ChildByFieldName("name")
	}
	if end == nil {
		return collapseSpace(nodeText(n, source))
	}
	return collapseSpace(string(source[n.StartByte():end.EndByte()]))
}

func typeScriptPublic(n, container *sitter.Node, source []byte) bool {
	if container == nil {
		return true
	}
	if name := n.ChildByFieldName("name"); name != nil && name.Kind() == "private_property_identifier" {
		return false
	}
	if mod := findChildByType(n, "accessibility_modifier"); mod != nil {
		return nodeText(mod, source) != "private"
	}
	return true
}

func typeScriptTable() *declTable {
	return &declTable{
		name:          "typescript",
		extensions:    []string{".ts", ".mts", ".cts"},
		commentPrefix: "//",
		language:      func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) },
		rules:         typeScriptRules(),
		transparent:   map[string]bool{"export_statement": true, "ambient_declaration": true},
		comments:      slashComments,
		public:        typeScriptPublic,
	}
}

// tsxTable also covers plain JavaScript, which the TSX grammar parses.
func tsxTable() *declTable {
	table := typeScriptTable()
	table.name = "tsx"
	table.extensions = []string{".tsx", ".js", ".jsx", ".mjs", ".cjs"}
	table.language = func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTSX()) }
	return table
}

func firstDeclaratorName(n *sitter.Node, source []byte) string {
	decl := findChildByType(n, "variable_declarator")
	if decl == nil {
		return ""
	}
	name := decl.ChildByFieldName("name")
	if name == nil || name.Kind() != "identifier" {
		return ""
	}
	return nodeText(name, source)
}

// lexicalKind classifies "const f = () => ..." as a function.
func lexicalKind(n *sitter.Node) extraction.Kind {
	if decl := findChildByType(n, "variable_declarator"); decl != nil {
		if value := decl.ChildByFieldName("value"); value != nil {
			switch value.Kind() {
			case "arrow_function", "function_expression", "function":
				return extraction.KindFunction
			}
		}
	}
	return extraction.KindConstant
}

// lexicalSignature renders "const f = (a: T): R =>" for function values
// and "const X: T" otherwise.
func lexicalSignature(n *sitter.Node, source []byte) string {
	decl := findChildByType(n, "variable_declarator")
	if decl == nil {
		return collapseSpace(nodeText(n, source))
	}
	keyword := "const"
	if first := n.Child(0); first != nil {
		keyword = nodeText(first, source)
	}
	value := decl.ChildByFieldName("value")
	if value != nil {
		switch value.Kind() {
		case "arrow_function", "function_expression", "function":
			return keyword + " " + nodeText(decl.ChildByFieldName("name"), source) + " = " + headerText(value, source, "body")
		}
		return collapseSpace(keyword + " " + string(source[decl.StartByte():value.StartByte()]))
	}
	return collapseSpace(keyword + " " + nodeText(decl, source))
}

// --- Rust ---

func rustTable() *declTable {
	return &declTable{
		name:          "rust",
		extensions:    []string{".rs"},
		commentPrefix: "//",
		language:      func() *sitter.Language { return sitter.NewLanguage(rust.Language()) },
		rules: map[string]nodeRule{
			"function_item":           {kind: extraction.KindFunction, body: "body"},
			"function_signature_item": {kind: extraction.KindMethod},
			"struct_item":             {kind: extraction.KindType, body: "body", members: true},
			"enum_item":               {kind: extraction.KindType, body: "body", members: true},
			"union_item":              {kind: extraction.KindType, body: "body", members: true},
			"trait_item":              {kind: extraction.KindType, body: "body", members: true},
			"type_item":               {kind: extraction.KindType},
			"mod_item":                {kind: extraction.KindType, body: "body", members: true},
			"const_item":              {kind: extraction.KindConstant, body: "value"},
			"static_item":             {kind: extraction.KindConstant, body: "value"},
			"field_declaration":       {kind: extraction.KindField},
			"enum_variant":            {kind: extraction.KindConstant},
			"impl_item":               {ownerOnly: true, body: "body", name: rustImplOwner},
		},
		transparent: map[string]bool{"declaration_list": true},
		comments:    slashComments,
		public:      rustPublic,
	}
}

func rustImplOwner(n *sitter.Node, source []byte) string {
	name := nodeText(n.ChildByFieldName("type"), source)
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	return strings.TrimSpace(name)
}

func rustPublic(n, container *sitter.Node, source []byte) bool {
	switch n.Kind() {
	case "impl_item", "enum_variant":
		return true
	}
	if findChildByType(n, "visibility_modifier") != nil {
		return true
	}
	if container == nil {
		return false
	}
	switch container.Kind() {
	case "trait_item":
		return true
	case "impl_item":
		return container.ChildByFieldName("trait") != nil
	}
	return false
}

// --- Java ---

func javaTable() *declTable {
	return &declTable{
		name:          "java",
		extensions:    []string{".java"},
		commentPrefix: "//",
		language:      func() *sitter.Language { return sitter.NewLanguage(java.Language()) },
		rules: map[string]nodeRule{
			"class_declaration":           {kind: extraction.KindType, body: "body", members: true},
			"interface_declaration":       {kind: extraction.KindType, body: "body", members: true},
			"enum_declaration":            {kind: extraction.KindType, body: "body", members: true},
			"record_declaration":          {kind: extraction.KindType, body: "body", members: true},
			"annotation_type_declaration": {kind: extraction.KindType, body: "body"},
			"method_declaration":          {kind: extraction.KindMethod, body: "body"},
			"constructor_declaration":     {kind: extraction.KindMethod, body: "body"},
			"field_declaration":           {kind: extraction.KindField, name: javaFieldName},
			"constant_declaration":        {kind: extraction.KindConstant, name: javaFieldName},
			"enum_constant":               {kind: extraction.KindConstant, body: "body"},
		},
		transparent: map[string]bool{"enum_body_declarations": true},
		comments:    slashComments,
		public: func(n, container *sitter.Node, source []byte) bool {
			if container != nil && container.Kind() == "interface_declaration" {
				return true
			}
			mods := findChildByType(n, "modifiers")
			return mods == nil || !strings.Contains(nodeText(mods, source), "private")
		},
	}
}

func javaFieldName(n *sitter.Node, source []byte) string {
	decl := n.ChildByFieldName("declarator")
	if decl == nil {
		decl = findChildByType(n, "variable_declarator")
	}
	if decl == nil {
		return ""
	}
	return nodeText(decl.ChildByFieldName("name"), source)
}

// --- C ---

func cTable() *declTable {
	return &declTable{
		name:          "c",
		extensions:    []string{".c", ".h"},
		commentPrefix: "//",
		language:      func() *sitter.Language { return sitter.NewLanguage(c.Language()) },
		rules: map[string]nodeRule{
			"function_definition":  {kind: extraction.KindFunction, body: "body", name: cDeclaratorName},
			"declaration":          {kind: extraction.KindFunction, name: cPrototypeName},
			"struct_specifier":     {kind: extraction.KindType, body: "body", members: true},
			"union_specifier":      {kind: extraction.KindType, body: "body", members: true},
			"enum_specifier":       {kind: extraction.KindType, body: "body"},
			"type_definition":      {kind: extraction.KindType, name: cDeclaratorName},
			"field_declaration":    {kind: extraction.KindField, name: cDeclaratorName},
			"preproc_def":          {kind: extraction.KindConstant},
			"preproc_function_def": {kind: extraction.KindFunction},
		},
		transparent: map[string]bool{
			"preproc_ifdef": true, "preproc_if": true, "preproc_else": true,
			"preproc_elif": true, "linkage_specification": true, "declaration_list": true,
		},
		comments: slashComments,
		public: func(n, container *sitter.Node, source []byte) bool {
			if sc := findChildByType(n, "storage_class_specifier"); sc != nil {
				return nodeText(sc, source) != "static"
			}
			return true
		},
	}
}

// cDeclaratorName follows the declarator chain down to the identifier.
func cDeclaratorName(n *sitter.Node, source []byte) string {
	decl := n.ChildByFieldName("declarator")
	for decl != nil {
		switch decl.Kind() {
		case "identifier", "field_identifier", "type_identifier":
			return nodeText(decl, source)
		}
		next := decl.ChildByFieldName("declarator")
		if next == nil {
			return ""
		}
		decl = next
	}
	return ""
}

// cPrototypeName names declarations that declare a function.
func cPrototypeName(n *sitter.Node, source []byte) string {
	decl := n.ChildByFieldName("declarator")
	for decl != nil {
		if decl.Kind() == "function_declarator" {
			return cDeclaratorName(decl, source)
		}
		decl = decl.ChildByFieldName("declarator")
	}
	return ""
}

// --- Ruby ---

func rubyTable() *declTable {
	return &declTable{
		name:          "ruby",
		extensions:    []string{".rb"},
		commentPrefix: "#",
		language:      func() *sitter.Language { return sitter.NewLanguage(ruby.Language()) },
		rules: map[string]nodeRule{
			"class":            {kind: extraction.KindType, members: true, selfBody: true, signature: rubyHeader("superclass", "name")},
			"module":           {kind: extraction.KindType, members: true, selfBody: true, signature: rubyHeader("name")},
			"method":           {kind: extraction.KindFunction, signature: rubyHeader("parameters", "name")},
			"singleton_method": {kind: extraction.KindFunction, signature: rubyHeader("parameters", "name")},
			"assignment":       {kind: extraction.KindConstant, name: rubyConstantName},
		},
		transparent: map[string]bool{"body_statement": true},
		comments:    map[string]bool{"comment": true},
	}
}

// rubyHeader renders a node's text through the first of fields present,
// such as "def name(params)" or "class Name < Base".
func rubyHeader(fields ...string) func(n *sitter.Node, source []byte) string {
	return func(n *sitter.Node, source []byte) string {
		end := n.EndByte()
		for _, field := range fields {
			if f := n.ChildByFieldName(field); f != nil {
				end = f.EndByte()
				break
			}
		}
		return collapseSpace(string(source[n.StartByte():end]))
	}
}

func rubyConstantName(n *sitter.Node, source []byte) string {
	left := n.ChildByFieldName("left")
	if left == nil || left.Kind() != "constant" {
		return ""
	}
	return nodeText(left, source)
}

// --- PHP ---

func phpTable() *declTable {
	return &declTable{
		name:          "php",
		extensions:    []string{".php"},
		commentPrefix: "//",
		language:      func() *sitter.Language { return sitter.NewLanguage(php.LanguagePHP()) },
		rules: map[string]nodeRule{
			"class_declaration":     {kind: extraction.KindType, body: "body", members: true},
			"interface_declaration": {kind: extraction.KindType, body: "body", members: true},
			"trait_declaration":     {kind: extraction.KindType, body: "body", members: true},
			"enum_declaration":      {kind: extraction.KindType, body: "body", members: true},
			"function_definition":   {kind: extraction.KindFunction, body: "body"},
			"method_declaration":    {kind: extraction.KindMethod, body: "body"},
			"property_declaration":  {kind: extraction.KindField, name: phpPropertyName},
			"const_declaration":     {kind: extraction.KindConstant, name: phpConstName},
			"enum_case":             {kind: extraction.KindConstant},
		},
		transparent: map[string]bool{"namespace_definition": true, "compound_statement": true},
		comments:    map[string]bool{"comment": true},
		public: func(n, container *sitter.Node, source []byte) bool {
			if mod := findChildByType(n, "visibility_modifier"); mod != nil {
				return nodeText(mod, source) != "private"
			}
			return true
		},
	}
}

func phpPropertyName(n *sitter.Node, source []byte) string {
	elem := findChildByType(n, "property_element")
	if elem == nil {
		return ""
	}
	if v := findChildByType(elem, "variable_name"); v != nil {
		return strings.TrimPrefix(nodeText(v, source), "$")
	}
	return strings.TrimPrefix(nodeText(elem.ChildByFieldName("name"), source), "$")
}

func phpConstName(n *sitter.Node, source []byte) string {
	elem := findChildByType(n, "const_element")
	if elem == nil {
		return ""
	}
	if name := findChildByType(elem, "name"); name != nil {
		return nodeText(name, source)
	}
	return ""
}
