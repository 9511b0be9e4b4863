package parsers

import (
	"strings"

	"github.com/mvp-joe/repo-digest/internal/extraction"
)

const indentUnit = "    "

// placed is a declaration with its nesting depth after grouping.
type placed struct {
	decl  extraction.Declaration
	depth int
}

// Render formats declarations one per line. Members are indented under
// their owning type and docs trail the signature as a line comment.
func Render(decls []extraction.Declaration, commentPrefix string) string {
	var sb strings.Builder
	for i, p := range groupMembers(decls) {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Repeat(indentUnit, p.depth))
		sb.WriteString(p.decl.Signature)
		if p.decl.Doc != "" && commentPrefix != "" {
			sb.WriteString("  ")
			sb.WriteString(commentPrefix)
			sb.WriteString(" ")
			sb.WriteString(p.decl.Doc)
		}
	}
	return sb.String()
}

// groupMembers places every member directly after its owning type when the
// type is declared in the same file. Other declarations keep source order.
func groupMembers(decls []extraction.Declaration) []placed {
	types := make(map[string]bool)
	for _, d := range decls {
		if d.Kind == extraction.KindType {
			types[d.Name] = true
		}
	}

	members := make(map[string][]int)
	for i, d := range decls {
		if d.Owner != "" && types[d.Owner] && d.Name != d.Owner {
			members[d.Owner] = append(members[d.Owner], i)
		}
	}

	out := make([]placed, 0, len(decls))
	done := make([]bool, len(decls))

	var emit func(i, depth int)
	emit = func(i, depth int) {
		if done[i] {
			return
		}
		done[i] = true
		d := decls[i]
		out = append(out, placed{decl: d, depth: depth})
		if d.Kind == extraction.KindType {
			for _, m := range members[d.Name] {
				emit(m, depth+1)
			}
		}
	}

	for i, d := range decls {
		if d.Owner != "" && types[d.Owner] {
			continue
		}
		depth := 0
		if d.Owner != "" {
			depth = 1
		}
		emit(i, depth)
	}

	// Members whose owner chain never reached the top level.
	for i := range decls {
		if !done[i] {
			emit(i, 1)
		}
	}
	return out
}
