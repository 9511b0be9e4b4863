package parsers

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strings"

	"github.com/mvp-joe/repo-digest/internal/extraction"
)

// GoLanguage returns the Go language: go/parser first, then the line-pattern
// extractor for files the parser rejects.
func GoLanguage() Language {
	return Language{
		Name:          "go",
		Extensions:    []string{".go"},
		CommentPrefix: "//",
		Primary:       ExtractorFunc(extractGoAST),
		Fallback:      newPatternExtractor(goPatterns),
	}
}

// goWalker collects exported declarations from a parsed Go file.
type goWalker struct {
	fset  *token.FileSet
	decls []extraction.Declaration
}

func extractGoAST(source []byte) ([]extraction.Declaration, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", source, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	w := &goWalker{fset: fset}
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			w.processGenDecl(d)
		case *ast.FuncDecl:
			w.processFuncDecl(d)
		}
	}
	return w.decls, nil
}

// processGenDecl processes general declarations (types, constants, variables).
func (w *goWalker) processGenDecl(decl *ast.GenDecl) {
	for _, spec := range decl.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			w.processTypeSpec(s, decl)
		case *ast.ValueSpec:
			w.processValueSpec(s, decl)
		}
	}
}

func (w *goWalker) processTypeSpec(spec *ast.TypeSpec, decl *ast.GenDecl) {
	if !spec.Name.IsExported() {
		return
	}
	name := spec.Name.Name

	var sb strings.Builder
	sb.WriteString("type ")
	sb.WriteString(name)
	if spec.TypeParams != nil {
		sb.WriteString("[")
		sb.WriteString(w.fieldList(spec.TypeParams, ", "))
		sb.WriteString("]")
	}
	if spec.Assign.IsValid() {
		sb.WriteString(" =")
	}

	switch t := spec.Type.(type) {
	case *ast.StructType:
		sb.WriteString(" struct")
		w.add(extraction.KindType, name, "", sb.String(), docOf(spec.Doc, decl), spec.Pos())
		w.processStructFields(name, t)
	case *ast.InterfaceType:
		sb.WriteString(" interface")
		w.add(extraction.KindType, name, "", sb.String(), docOf(spec.Doc, decl), spec.Pos())
		w.processInterfaceMethods(name, t)
	default:
		sb.WriteString(" ")
		sb.WriteString(w.expr(spec.Type))
		w.add(extraction.KindType, name, "", sb.String(), docOf(spec.Doc, decl), spec.Pos())
	}
}

func (w *goWalker) processStructFields(owner string, st *ast.StructType) {
	if st.Fields == nil {
		return
	}
	for _, field := range st.Fields.List {
		typ := w.expr(field.Type)
		if len(field.Names) == 0 {
			embedded := strings.TrimPrefix(typ, "*")
			if i := strings.LastIndex(embedded, "."); i >= 0 {
				embedded = embedded[i+1:]
			}
			if ast.IsExported(embedded) {
				w.add(extraction.KindField, embedded, owner, typ, fieldDoc(field), field.Pos())
			}
			continue
		}
		var names []string
		for _, n := range field.Names {
			if n.IsExported() {
				names = append(names, n.Name)
			}
		}
		if len(names) == 0 {
			continue
		}
		w.add(extraction.KindField, names[0], owner, strings.Join(names, ", ")+" "+typ, fieldDoc(field), field.Pos())
	}
}

func (w *goWalker) processInterfaceMethods(owner string, it *ast.InterfaceType) {
	if it.Methods == nil {
		return
	}
	for _, field := range it.Methods.List {
		if len(field.Names) == 0 {
			// Embedded interface or type constraint.
			w.add(extraction.KindField, w.expr(field.Type), owner, w.expr(field.Type), fieldDoc(field), field.Pos())
			continue
		}
		ft, ok := field.Type.(*ast.FuncType)
		if !ok {
			continue
		}
		for _, n := range field.Names {
			if !n.IsExported() {
				continue
			}
			sig := n.Name + strings.TrimPrefix(w.expr(ft), "func")
			w.add(extraction.KindMethod, n.Name, owner, sig, fieldDoc(field), field.Pos())
		}
	}
}

// processValueSpec processes constant and variable declarations.
func (w *goWalker) processValueSpec(spec *ast.ValueSpec, decl *ast.GenDecl) {
	kind := extraction.KindConstant
	keyword := "const"
	if decl.Tok == token.VAR {
		kind = extraction.KindVariable
		keyword = "var"
	}

	for i, name := range spec.Names {
		if !name.IsExported() {
			continue
		}
		sig := keyword + " " + name.Name
		if spec.Type != nil {
			sig += " " + w.expr(spec.Type)
		}
		if i < len(spec.Values) {
			sig += " = " + truncate(w.expr(spec.Values[i]), 60)
		}
		w.add(kind, name.Name, "", sig, docOf(spec.Doc, decl), name.Pos())
	}
}

// processFuncDecl processes function declarations.
func (w *goWalker) processFuncDecl(decl *ast.FuncDecl) {
	if !decl.Name.IsExported() {
		return
	}

	owner := ""
	kind := extraction.KindFunction
	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		owner = receiverBase(decl.Recv.List[0].Type)
		if !ast.IsExported(owner) {
			return
		}
		kind = extraction.KindMethod
	}

	header := *decl
	header.Body = nil
	header.Doc = nil

	doc := ""
	if decl.Doc != nil {
		doc = firstLine(decl.Doc.Text())
	}
	w.add(kind, decl.Name.Name, owner, w.node(&header), doc, decl.Pos())
}

func (w *goWalker) add(kind extraction.Kind, name, owner, sig, doc string, pos token.Pos) {
	w.decls = append(w.decls, extraction.Declaration{
		Kind:      kind,
		Name:      qualify(owner, name),
		Owner:     owner,
		Signature: sig,
		Doc:       doc,
		Line:      w.fset.Position(pos).Line,
	})
}

func (w *goWalker) expr(e ast.Expr) string {
	return w.node(e)
}

func (w *goWalker) node(n any) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, w.fset, n); err != nil {
		return ""
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

func (w *goWalker) fieldList(fl *ast.FieldList, sep string) string {
	var parts []string
	for _, f := range fl.List {
		var names []string
		for _, n := range f.Names {
			names = append(names, n.Name)
		}
		part := w.expr(f.Type)
		if len(names) > 0 {
			part = strings.Join(names, ", ") + " " + part
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, sep)
}

// receiverBase returns the type name of a method receiver, without pointer
// or type arguments.
func receiverBase(e ast.Expr) string {
	for {
		switch t := e.(type) {
		case *ast.StarExpr:
			e = t.X
		case *ast.IndexExpr:
			e = t.X
		case *ast.IndexListExpr:
			e = t.X
		case *ast.ParenExpr:
			e = t.X
		case *ast.Ident:
			return t.Name
		default:
			return ""
		}
	}
}

func docOf(spec *ast.CommentGroup, decl *ast.GenDecl) string {
	if spec != nil {
		return firstLine(spec.Text())
	}
	if decl.Doc != nil && len(decl.Specs) == 1 {
		return firstLine(decl.Doc.Text())
	}
	return ""
}

func fieldDoc(f *ast.Field) string {
	if f.Doc != nil {
		return firstLine(f.Doc.Text())
	}
	if f.Comment != nil {
		return firstLine(f.Comment.Text())
	}
	return ""
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return truncate(strings.TrimSpace(text), 100)
}
