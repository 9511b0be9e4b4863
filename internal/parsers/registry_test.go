package parsers

import (
	"errors"
	"testing"

	"github.com/mvp-joe/repo-digest/internal/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Registry:
// - Dispatch by extension, case-insensitive
// - Unknown extensions pass through verbatim
// - Primary failure runs the fallback; both failing yields empty content
// - Extractor panics are contained
// - Every registered language survives malformed input
// - Declaration order mirrors source order

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	tests := []struct {
		path string
		lang string
	}{
		{"main.go", "go"},
		{"pkg/tool.PY", "python"},
		{"web/app.ts", "typescript"},
		{"web/app.tsx", "tsx"},
		{"web/app.js", "tsx"},
		{"src/lib.rs", "rust"},
		{"Main.java", "java"},
		{"include/a.h", "c"},
		{"lib/a.rb", "ruby"},
		{"index.php", "php"},
		{"build.zig", "zig"},
	}
	for _, tt := range tests {
		lang, ok := reg.Lookup(tt.path)
		require.True(t, ok, tt.path)
		assert.Equal(t, tt.lang, lang.Name, tt.path)
	}

	_, ok := reg.Lookup("README.md")
	assert.False(t, ok)
	_, ok = reg.Lookup("Makefile")
	assert.False(t, ok)
}

func TestRegistry_Passthrough(t *testing.T) {
	t.Parallel()

	src := "# Title\n\nSome prose.\n"
	text, res := NewRegistry().Reduce("docs/README.md", []byte(src))
	assert.Equal(t, src, text)
	assert.Equal(t, extraction.StagePassthrough, res.Stage)
	assert.Empty(t, res.Language)
}

func TestRegistry_Cascade(t *testing.T) {
	t.Parallel()

	failing := ExtractorFunc(func([]byte) ([]extraction.Declaration, error) {
		return nil, errors.New("nope")
	})
	panicking := ExtractorFunc(func([]byte) ([]extraction.Declaration, error) {
		panic("boom")
	})
	working := ExtractorFunc(func([]byte) ([]extraction.Declaration, error) {
		return []extraction.Declaration{{Kind: extraction.KindFunction, Name: "f", Signature: "fn f()"}}, nil
	})

	tests := []struct {
		name      string
		primary   Extractor
		fallback  Extractor
		wantStage extraction.Stage
		wantText  string
	}{
		{"primary succeeds", working, failing, extraction.StagePrimary, "fn f()"},
		{"fallback after error", failing, working, extraction.StageFallback, "fn f()"},
		{"fallback after panic", panicking, working, extraction.StageFallback, "fn f()"},
		{"both fail", failing, panicking, extraction.StageFailed, ""},
		{"no fallback", panicking, nil, extraction.StageFailed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reg := NewEmptyRegistry()
			reg.Register(Language{Name: "x", Extensions: []string{".x"}, Primary: tt.primary, Fallback: tt.fallback})

			text, res := reg.Reduce("a.x", []byte("anything"))
			assert.Equal(t, tt.wantStage, res.Stage)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestRegistry_MalformedInputNeverFails(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	inputs := []string{
		"",
		"}}}{{{ ((( ]]] [[[",
		"\x00\x01\x02\xff\xfe",
		"def (:\n\tclass {\n\"unterminated",
		"func (\ntype [\nconst (\n",
	}

	for _, ext := range reg.Extensions() {
		for _, in := range inputs {
			assert.NotPanics(t, func() {
				reg.Reduce("file"+ext, []byte(in))
			}, "ext %s input %q", ext, in)
		}
	}
}

func TestRegistry_DeclarationOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	cases := map[string]string{
		"a.go": "package a\n\ntype A struct{}\n\nfunc F() {}\n",
		"a.py": "class A:\n    pass\n\ndef f():\n    pass\n",
		"a.ts": "class A {}\n\nfunction f() {}\n",
	}
	for path, src := range cases {
		res := reg.Extract(path, []byte(src))
		require.Len(t, res.Declarations, 2, path)
		assert.Equal(t, extraction.KindType, res.Declarations[0].Kind, path)
		assert.Equal(t, extraction.KindFunction, res.Declarations[1].Kind, path)
		assert.Len(t, res.Types(), 1)
		assert.Len(t, res.Functions(), 1)
	}
}
