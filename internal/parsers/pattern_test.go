package parsers

import (
	"testing"

	"github.com/mvp-joe/repo-digest/internal/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZigPatterns(t *testing.T) {
	t.Parallel()

	src := `const std = @import("std");

/// A 2D point.
pub const Point = struct {
    x: f32,
    y: f32,

    pub fn init(x: f32, y: f32) Point {
        return .{ .x = x, .y = y };
    }

    fn hidden() void {}
};

pub const Color = enum {
    red,
    green,
};

pub fn main() !void {
    const local = 1;
    _ = local;
}

fn private() void {}

test "point" {
}
`
	text, res := NewRegistry().Reduce("src/main.zig", []byte(src))
	assert.Equal(t, extraction.StagePrimary, res.Stage)

	assertOrdered(t, text,
		"pub const Point = struct",
		"    x: f32",
		"    y: f32",
		"    pub fn init(x: f32, y: f32) Point",
		"pub const Color = enum",
		"    red",
		"pub fn main() !void",
	)
	assert.Contains(t, text, "A 2D point.")
	assert.NotContains(t, text, "hidden")
	assert.NotContains(t, text, "private")
	assert.NotContains(t, text, "local")
	assert.NotContains(t, text, "std")
}

func TestCutBody(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"func F() {":                        "func F()",
		"func F(x struct{ A int }) error {": "func F(x struct{ A int }) error",
		"func G() { return }":               "func G()",
		"type T struct {":                   "type T struct",
		"x: f32,":                           "x: f32",
		"pub const Point = struct {":        "pub const Point = struct",
		"func (p *Pizza[T]) Add(t T) {":     "func (p *Pizza[T]) Add(t T)",
	}
	for in, want := range tests {
		assert.Equal(t, want, cutBody(in), in)
	}
}

func TestBraceDelta(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, braceDelta(`func f() {`))
	assert.Equal(t, 0, braceDelta(`s := "{"`))
	assert.Equal(t, 0, braceDelta("r := '{'"))
	assert.Equal(t, -1, braceDelta(`}`))
	assert.Equal(t, 0, braceDelta("x := `{{`"))
}

func TestStripComment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "x = 1", stripComment("x = 1 // one", "//"))
	assert.Equal(t, `s := "http://x"`, stripComment(`s := "http://x"`, "//"))
	assert.Equal(t, "def f():", stripComment("def f():  # note", "#"))
}

func TestPatternExtractor_UnbalancedBraces(t *testing.T) {
	t.Parallel()

	decls, err := newPatternExtractor(goPatterns).Extract([]byte("}}}\nfunc After() {\n"))
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "func After()", decls[0].Signature)
}

func TestPatternExtractor_BlockComments(t *testing.T) {
	t.Parallel()

	src := "/*\nfunc Hidden() {\ntype Ghost struct {\n*/\n" +
		"/* one line */ func Real() {\n}\n" +
		"var Pattern = \"/*\"\n" +
		"func Tail() { /* open\nfunc Inside() {\n*/ }\n" +
		"// a line comment /* is not a block\nfunc Last() {\n}\n"

	decls, err := newPatternExtractor(goPatterns).Extract([]byte(src))
	require.NoError(t, err)

	var names []string
	for _, d := range decls {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Real", "Pattern", "Tail", "Last"}, names)
}

func TestStripBlockComments(t *testing.T) {
	t.Parallel()

	code, open := stripBlockComments("a /* b */ c", false, goPatterns)
	assert.Equal(t, "a   c", code)
	assert.False(t, open)

	code, open = stripBlockComments("x := 1 /* start", false, goPatterns)
	assert.Equal(t, "x := 1", code)
	assert.True(t, open)

	code, open = stripBlockComments("still inside", true, goPatterns)
	assert.Equal(t, "", code)
	assert.True(t, open)

	code, open = stripBlockComments(`s := "/*" // x /* y`, false, goPatterns)
	assert.Equal(t, `s := "/*" // x /* y`, code)
	assert.False(t, open)
}
