package parsers

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// parseTree parses source with lang. The caller must Close the tree.
func parseTree(lang *sitter.Language, source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(lang)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse: %w", ErrSyntax)
	}
	return tree, nil
}

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// nodeLine returns the 1-indexed start line of node.
func nodeLine(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// headerText returns node's text up to the start of its body field,
// whitespace-collapsed. Nodes without a body return their full text.
func headerText(node *sitter.Node, source []byte, bodyField string) string {
	end := node.EndByte()
	if body := node.ChildByFieldName(bodyField); body != nil {
		end = body.StartByte()
	}
	return collapseSpace(string(source[node.StartByte():end]))
}

// collapseSpace folds runs of whitespace into single spaces and trims
// trailing block openers.
func collapseSpace(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, " {:;=")
	return strings.TrimSpace(s)
}

// truncate shortens s to max runes, appending "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child != nil && child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// namedChildren returns node's named children in order.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(uint(i)); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// precedingComment returns the first line of the comment block directly
// above node, if any.
func precedingComment(node *sitter.Node, source []byte, commentKinds map[string]bool) string {
	prev := node.PrevNamedSibling()
	if prev == nil || !commentKinds[prev.Kind()] {
		return ""
	}
	if prev.EndPosition().Row+1 < node.StartPosition().Row {
		return ""
	}
	// Walk back to the first comment of a contiguous block.
	for {
		p := prev.PrevNamedSibling()
		if p == nil || !commentKinds[p.Kind()] || p.EndPosition().Row+1 < prev.StartPosition().Row {
			break
		}
		prev = p
	}
	return cleanComment(nodeText(prev, source))
}

// cleanComment strips comment markers and returns the first non-empty line.
func cleanComment(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, marker := range []string{"/**", "/*", "*/", "///", "//!", "//", "#", "*"} {
			line = strings.TrimPrefix(line, marker)
		}
		line = strings.TrimSuffix(strings.TrimSpace(line), "*/")
		line = strings.TrimSpace(line)
		if line != "" {
			return truncate(line, 100)
		}
	}
	return ""
}
