package parsers

import (
	"strings"
	"testing"

	"github.com/mvp-joe/repo-digest/internal/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the Python extractor:
// - Classes keep their bases, methods are qualified with the class name
// - Annotated class attributes render as "name: type"
// - Enum-style class constants are kept
// - Private names are dropped, __init__ is kept
// - Decorated and async functions are handled
// - Docstrings trail their declaration
// - Broken sources fall back to the line heuristic without failing

const pythonRichSource = `
from enum import Enum
from typing import Generic, TypeVar, List
from dataclasses import dataclass

T = TypeVar("T")

class Size(Enum):
    # Pizza size options
    SMALL = 1
    MEDIUM = 2
    LARGE = 3

@dataclass
class Topping:
    # Pizza topping model
    name: str
    price: float
    vegetarian: bool = True

class Pizza(Generic[T]):
    # Delicious disc of dough with toppings

    name: str
    radius: float
    toppings: List[T]

    def __init__(self, name: str, radius: float, toppings: List[T] = None):
        self.name = name
        self.radius = radius
        self.toppings = toppings or []

    def calculate_price(self, tax_rate: float = 0.1) -> float:
        # Calculate the pizza price including tax
        base_price = 10.0 + (self.radius * 0.5)
        return base_price * (1 + tax_rate)

    def add_topping(self, topping: T) -> None:
        # Add a topping to the pizza
        self.toppings.append(topping)

    def _secret(self):
        pass

def top_level_helper(x: int) -> int:
    # A helper function at the module level
    return x * 2

def _private_helper():
    pass
`

func TestPythonExtractor_RichSample(t *testing.T) {
	t.Parallel()

	text, res := NewRegistry().Reduce("pkg/rich_sample.py", []byte(pythonRichSource))
	assert.Equal(t, extraction.StagePrimary, res.Stage)

	for _, want := range []string{
		"class Size(Enum)",
		"    SMALL = 1",
		"class Topping",
		"class Pizza(Generic[T])",
		"def Pizza.__init__(self, name: str, radius: float, toppings: List[T] = None)",
		"def Pizza.calculate_price(self, tax_rate: float = 0.1) -> float",
		"def Pizza.add_topping(self, topping: T) -> None",
		"def top_level_helper(x: int) -> int",
		"name: str",
		"radius: float",
		"toppings: List[T]",
	} {
		assert.Contains(t, text, want)
	}

	assert.NotContains(t, text, "_secret")
	assert.NotContains(t, text, "_private_helper")
	assert.NotContains(t, text, "base_price", "bodies must not leak")
}

func TestPythonExtractor_MembersIndented(t *testing.T) {
	t.Parallel()

	src := `class A:
    x: int

    def m(self) -> int:
        return self.x

def f():
    pass
`
	text, _ := NewRegistry().Reduce("a.py", []byte(src))
	assert.Equal(t, "class A\n    x: int\n    def A.m(self) -> int\ndef f()", text)
}

func TestPythonExtractor_DecoratorsAsyncDocstrings(t *testing.T) {
	t.Parallel()

	src := `import functools

@functools.cache
async def fetch(url: str) -> bytes:
    """Fetch a URL.

    Longer description.
    """
    return b""

class Client:
    '''HTTP client.'''

    @property
    def base(self) -> str:
        return ""
`
	decls, err := newPythonExtractor().Extract([]byte(src))
	require.NoError(t, err)
	require.Len(t, decls, 3)

	assert.Equal(t, "async def fetch(url: str) -> bytes", decls[0].Signature)
	assert.Equal(t, "Fetch a URL.", decls[0].Doc)
	assert.Equal(t, extraction.KindFunction, decls[0].Kind)

	assert.Equal(t, "class Client", decls[1].Signature)
	assert.Equal(t, "HTTP client.", decls[1].Doc)

	assert.Equal(t, "def Client.base(self) -> str", decls[2].Signature)
	assert.Equal(t, extraction.KindMethod, decls[2].Kind)
	assert.Equal(t, "Client", decls[2].Owner)

	text := Render(decls, "#")
	assert.Contains(t, text, "async def fetch(url: str) -> bytes  # Fetch a URL.")
}

func TestPythonExtractor_SyntaxErrorFallsBack(t *testing.T) {
	t.Parallel()

	src := `
    def broken_function(:  # Missing parameter name
        return "This has a syntax error"
    `
	_, err := newPythonExtractor().Extract([]byte(src))
	require.Error(t, err)

	var text string
	var res extraction.Result
	require.NotPanics(t, func() {
		text, res = NewRegistry().Reduce("pkg/broken.py", []byte(src))
	})
	assert.Equal(t, extraction.StageFallback, res.Stage)
	assert.Contains(t, text, "def broken_function")
}

func TestExtractPythonLines(t *testing.T) {
	t.Parallel()

	src := `class Pizza(Base):
    name: str
    LIMIT = 3

    def bake(self, temp: int) -> None:  # hot
        inner: int = 1
        def nested():
            pass

    def _hidden(self):
        pass

def helper(x):
    return x

MAX_SIZE = 10
`
	decls, err := extractPythonLines([]byte(src))
	require.NoError(t, err)

	var sigs []string
	for _, d := range decls {
		sigs = append(sigs, d.Signature)
	}
	assert.Equal(t, []string{
		"class Pizza(Base)",
		"name: str",
		"LIMIT = 3",
		"def Pizza.bake(self, temp: int) -> None",
		"def helper(x)",
		"MAX_SIZE = 10",
	}, sigs)
	assert.Equal(t, "Pizza", decls[3].Owner)
	assert.True(t, strings.HasPrefix(decls[4].Name, "helper"))
}

func TestExtractPythonLines_OneLineBodies(t *testing.T) {
	t.Parallel()

	src := `class K:
    def ok(self): pass
    def typed(self, m: dict[str, int] = {"a": 1}) -> str: return ":"
def lam(f=lambda x: x): return f
def open_ended(a,
`
	decls, err := extractPythonLines([]byte(src))
	require.NoError(t, err)

	var sigs []string
	for _, d := range decls {
		sigs = append(sigs, d.Signature)
	}
	assert.Equal(t, []string{
		"class K",
		"def K.ok(self)",
		`def K.typed(self, m: dict[str, int] = {"a": 1}) -> str`,
		"def lam(f=lambda x: x)",
		"def open_ended(a,",
	}, sigs)
}
