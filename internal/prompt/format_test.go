package prompt

import (
	"strings"
	"testing"

	"github.com/mvp-joe/repo-digest/internal/snapshot"
	"github.com/stretchr/testify/assert"
)

func TestFormat_Contract(t *testing.T) {
	t.Parallel()

	snap := &snapshot.Snapshot{
		Paths:    []string{"a.py"},
		Contents: map[string]string{"a.py": "def hello(): pass"},
	}

	out := Format(snap)
	assert.Contains(t, out, "<codebase_tree>")
	assert.Contains(t, out, "</codebase_tree>")
	assert.Contains(t, out, "<file_contents>")
	assert.Contains(t, out, "</file_contents>")
	assert.Contains(t, out, "--- File: a.py ---")
	assert.Contains(t, out, "def hello()")
}

func TestFormat_Exact(t *testing.T) {
	t.Parallel()

	snap := &snapshot.Snapshot{
		Paths: []string{"main.py", "pkg/b.go", "pkg/a.go", "assets/logo.png", "pkg/a.go"},
		Contents: map[string]string{
			"main.py":  "def main()",
			"pkg/a.go": "func A()\n",
			"pkg/b.go": "func B()",
		},
	}

	want := `<codebase_tree>
.
├── assets/
│   └── logo.png
├── pkg/
│   ├── a.go
│   └── b.go
└── main.py
</codebase_tree>

<file_contents>
--- File: main.py ---
def main()

--- File: pkg/a.go ---
func A()

--- File: pkg/b.go ---
func B()
</file_contents>`

	assert.Equal(t, want, Format(snap))
}

func TestFormat_Deterministic(t *testing.T) {
	t.Parallel()

	contents := map[string]string{}
	var paths []string
	for _, p := range []string{"z/z.go", "a/b/c.go", "a/a.go", "m.go", "a/b/a.go"} {
		paths = append(paths, p)
		contents[p] = "content of " + p
	}

	first := Format(&snapshot.Snapshot{Paths: paths, Contents: contents})
	for i := 0; i < 10; i++ {
		reversed := make([]string, len(paths))
		for j, p := range paths {
			reversed[len(paths)-1-j] = p
		}
		assert.Equal(t, first, Format(&snapshot.Snapshot{Paths: reversed, Contents: contents}))
	}
	assert.Less(t, strings.Index(first, "--- File: a/a.go ---"), strings.Index(first, "--- File: a/b/a.go ---"))
	assert.Less(t, strings.Index(first, "--- File: a/b/c.go ---"), strings.Index(first, "--- File: m.go ---"))
}

func TestFormat_Empty(t *testing.T) {
	t.Parallel()

	want := "<codebase_tree>\n.\n</codebase_tree>\n\n<file_contents>\n</file_contents>"
	assert.Equal(t, want, Format(snapshot.New()))
	assert.Equal(t, want, Format(nil))
}

func TestRenderTree_NestedDirectoriesFirst(t *testing.T) {
	t.Parallel()

	got := RenderTree([]string{"b.txt", "a/x/y.go", "a/z.go", "c/d.go"})
	want := ".\n" +
		"├── a/\n" +
		"│   ├── x/\n" +
		"│   │   └── y.go\n" +
		"│   └── z.go\n" +
		"├── c/\n" +
		"│   └── d.go\n" +
		"└── b.txt\n"
	assert.Equal(t, want, got)
}
