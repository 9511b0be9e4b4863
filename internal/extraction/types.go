package extraction

// Kind classifies a declaration.
type Kind string

const (
	KindType     Kind = "type"
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
	KindField    Kind = "field"
	KindConstant Kind = "constant"
	KindVariable Kind = "variable"
)

// Declaration is a single element of a file's public surface.
type Declaration struct {
	Kind      Kind
	Name      string // Qualified name, "Owner.member" for members
	Owner     string // Enclosing type, empty for top-level declarations
	Signature string // One-line declaration text
	Doc       string // First line of the attached documentation, if any
	Line      int    // 1-indexed source line
}

// IsMember reports whether the declaration belongs to a type.
func (d Declaration) IsMember() bool {
	return d.Owner != ""
}

// Stage records which extraction path produced a result.
type Stage string

const (
	StagePrimary     Stage = "primary"
	StageFallback    Stage = "fallback"
	StageFailed      Stage = "failed"
	StagePassthrough Stage = "passthrough"
)

// Result is the outcome of extracting one file.
type Result struct {
	Path         string
	Language     string // Empty when no extractor is registered
	Stage        Stage
	Declarations []Declaration
}

// Types returns the type declarations, in order.
func (r *Result) Types() []Declaration {
	return r.filter(KindType)
}

// Functions returns the top-level function declarations, in order.
func (r *Result) Functions() []Declaration {
	return r.filter(KindFunction)
}

// Methods returns the method declarations, in order.
func (r *Result) Methods() []Declaration {
	return r.filter(KindMethod)
}

func (r *Result) filter(kind Kind) []Declaration {
	var out []Declaration
	for _, d := range r.Declarations {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
