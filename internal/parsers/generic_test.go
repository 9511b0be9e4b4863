package parsers

import (
	"strings"
	"testing"

	"github.com/mvp-joe/repo-digest/internal/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the table-driven tree-sitter extractors:
// - TypeScript: interfaces, classes, functions, arrow constants, private members hidden
// - TypeScript fields render without initializers
// - Rust: pub items only, impl methods grouped under their struct, trait methods kept
// - Java: private members hidden, constructors and methods kept
// - C: prototypes, definitions, structs and macros; static functions hidden
// - Ruby: classes with superclass, instance and singleton methods
// - PHP: classes, methods, free functions; private methods hidden
// - Syntax errors fall back to the lenient walk

func reduce(t *testing.T, path, src string) (string, extraction.Result) {
	t.Helper()
	var text string
	var res extraction.Result
	require.NotPanics(t, func() {
		text, res = NewRegistry().Reduce(path, []byte(src))
	})
	return text, res
}

func assertOrdered(t *testing.T, text string, parts ...string) {
	t.Helper()
	last := -1
	for _, p := range parts {
		idx := strings.Index(text, p)
		require.GreaterOrEqual(t, idx, 0, "missing %q in:\n%s", p, text)
		assert.Greater(t, idx, last, "%q out of order in:\n%s", p, text)
		last = idx
	}
}

func TestTypeScriptExtractor(t *testing.T) {
	t.Parallel()

	src := `import { Thing } from "./thing";

// Shape is a drawable thing.
export interface Shape {
  area(): number;
  name: string;
}

export class Circle implements Shape {
  private secret = 1;
  name = "circle";
  constructor(public radius: number) {}
  area(): number {
    return Math.PI * this.radius ** 2;
  }
}

export function makeCircle(r: number): Circle {
  return new Circle(r);
}

export const double = (x: number): number => x * 2;
`
	text, res := reduce(t, "src/shape.ts", src)
	assert.Equal(t, extraction.StagePrimary, res.Stage)
	assert.Equal(t, "typescript", res.Language)

	assertOrdered(t, text, "interface Shape", "area(): number", "class Circle implements Shape", "function makeCircle(r: number): Circle")
	assert.Contains(t, text, "// Shape is a drawable thing.")
	assert.Contains(t, text, "name: string")
	assert.Contains(t, text, "const double = (x: number): number")
	assert.NotContains(t, text, "secret")
	assert.NotContains(t, text, "Math.PI")

	var double extraction.Declaration
	for _, d := range res.Declarations {
		if d.Name == "double" {
			double = d
		}
	}
	assert.Equal(t, extraction.KindFunction, double.Kind)
}

func TestTypeScriptExtractor_FieldsOmitInitializers(t *testing.T) {
	t.Parallel()

	src := `export class Point {
  y: number = 2;
  readonly label?: string = "origin";
  count = 0;
}

export interface Named {
  name: string;
}
`
	text, res := reduce(t, "src/point.ts", src)
	require.Equal(t, extraction.StagePrimary, res.Stage)

	sigs := map[string]string{}
	for _, d := range res.Declarations {
		sigs[d.Name] = d.Signature
	}
	assert.Equal(t, "y: number", sigs["Point.y"])
	assert.Equal(t, "readonly label?: string", sigs["Point.label"])
	assert.Equal(t, "count", sigs["Point.count"])
	assert.Equal(t, "name: string", sigs["Named.name"])
	assert.NotContains(t, text, "= 2")
	assert.NotContains(t, text, "origin")
}

func TestJavaScriptUsesTSXGrammar(t *testing.T) {
	t.Parallel()

	src := `export function App() {
  return <div className="app">hi</div>;
}
`
	text, res := reduce(t, "web/App.jsx", src)
	assert.Equal(t, "tsx", res.Language)
	assert.Contains(t, text, "function App()")
}

func TestRustExtractor(t *testing.T) {
	t.Parallel()

	src := `use std::fmt;

/// A point in space.
pub struct Point {
    pub x: f64,
    y: f64,
}

impl Point {
    pub fn new(x: f64, y: f64) -> Self {
        Point { x, y }
    }

    fn secret(&self) {}
}

pub trait Shape {
    fn area(&self) -> f64;
}

pub enum Color {
    Red,
    Green,
}

fn private_helper() {}

pub const MAX: u32 = 10;
`
	text, res := reduce(t, "src/lib.rs", src)
	assert.Equal(t, extraction.StagePrimary, res.Stage)

	assertOrdered(t, text, "pub struct Point", "    pub x: f64", "    pub fn new(x: f64, y: f64) -> Self", "pub trait Shape")
	assert.Contains(t, text, "fn area(&self) -> f64")
	assert.Contains(t, text, "pub enum Color")
	assert.Contains(t, text, "    Red")
	assert.Contains(t, text, "pub const MAX: u32")
	assert.NotContains(t, text, "secret")
	assert.NotContains(t, text, "private_helper")
	assert.NotContains(t, text, "y: f64,")
}

func TestJavaExtractor(t *testing.T) {
	t.Parallel()

	src := `package demo;

public class Greeter {
    private String secret;
    public static final int MAX = 3;

    public Greeter(String name) {
    }

    public String greet(String who) {
        return "hi " + who;
    }

    private void hidden() {}
}
`
	text, _ := reduce(t, "src/Greeter.java", src)
	assertOrdered(t, text, "public class Greeter", "public static final int MAX = 3", "public Greeter(String name)", "public String greet(String who)")
	assert.NotContains(t, text, "hidden")
	assert.NotContains(t, text, "secret")
}

func TestCExtractor(t *testing.T) {
	t.Parallel()

	src := `#include <stdio.h>

#define MAX_SIZE 100

struct point {
    int x;
    int y;
};

typedef struct point point_t;

int add(int a, int b) {
    return a + b;
}

static int helper(void) {
    return 0;
}

void print_point(const struct point *p);
`
	text, _ := reduce(t, "src/point.c", src)
	assertOrdered(t, text, "#define MAX_SIZE 100", "struct point", "    int x", "typedef struct point point_t", "int add(int a, int b)", "void print_point(const struct point *p)")
	assert.NotContains(t, text, "helper")
	assert.NotContains(t, text, "return a + b")
}

func TestRubyExtractor(t *testing.T) {
	t.Parallel()

	src := `# Greets people.
class Greeter < Base
  MAX = 3

  def initialize(name)
    @name = name
  end

  def greet(who)
    "hi #{who}"
  end

  def self.create
    new("x")
  end
end
`
	text, _ := reduce(t, "lib/greeter.rb", src)
	assertOrdered(t, text, "class Greeter < Base", "def initialize(name)", "def greet(who)", "def self.create")
	assert.NotContains(t, text, "@name = name")
}

func TestPHPExtractor(t *testing.T) {
	t.Parallel()

	src := `<?php
namespace App;

class Greeter {
    public function greet(string $who): string {
        return "hi " . $who;
    }

    private function hidden() {}
}

function helper(int $x): int {
    return $x;
}
`
	text, _ := reduce(t, "src/Greeter.php", src)
	assertOrdered(t, text, "class Greeter", "public function greet(string $who): string", "function helper(int $x): int")
	assert.NotContains(t, text, "hidden")
}

func TestTreeSitterExtractor_LenientFallback(t *testing.T) {
	t.Parallel()

	src := `export function ok(a: number): number {
  return a;
}

export function broken(a: number {
`
	text, res := reduce(t, "src/broken.ts", src)
	assert.Equal(t, extraction.StageFallback, res.Stage)
	assert.Contains(t, text, "function ok(a: number): number")
}
