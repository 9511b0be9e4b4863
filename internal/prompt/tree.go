package prompt

import (
	"sort"
	"strings"
)

// treeNode is one directory or file in the rendered listing.
type treeNode struct {
	name     string
	children map[string]*treeNode
}

func (n *treeNode) isDir() bool {
	return len(n.children) > 0
}

func buildTree(paths []string) *treeNode {
	root := &treeNode{name: "."}
	for _, p := range paths {
		node := root
		for _, part := range strings.Split(strings.Trim(p, "/"), "/") {
			if part == "" || part == "." {
				continue
			}
			if node.children == nil {
				node.children = make(map[string]*treeNode)
			}
			child, ok := node.children[part]
			if !ok {
				child = &treeNode{name: part}
				node.children[part] = child
			}
			node = child
		}
	}
	return root
}

// sortedChildren lists directories before files, each group by name.
func (n *treeNode) sortedChildren() []*treeNode {
	out := make([]*treeNode, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].isDir() != out[j].isDir() {
			return out[i].isDir()
		}
		return out[i].name < out[j].name
	})
	return out
}

// RenderTree draws paths as an indented tree rooted at ".".
func RenderTree(paths []string) string {
	var sb strings.Builder
	sb.WriteString(".\n")
	writeChildren(&sb, buildTree(paths), "")
	return sb.String()
}

func writeChildren(sb *strings.Builder, n *treeNode, indent string) {
	children := n.sortedChildren()
	for i, c := range children {
		last := i == len(children)-1
		branch, next := "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}
		sb.WriteString(indent)
		sb.WriteString(branch)
		sb.WriteString(c.name)
		if c.isDir() {
			sb.WriteString("/")
		}
		sb.WriteString("\n")
		if c.isDir() {
			writeChildren(sb, c, indent+next)
		}
	}
}
