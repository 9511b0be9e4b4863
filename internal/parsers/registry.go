package parsers

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/mvp-joe/repo-digest/internal/extraction"
)

// Registry maps file extensions to languages.
type Registry struct {
	byExt map[string]*Language
	langs []*Language
}

// NewRegistry returns a registry populated with every built-in language.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	r.Register(GoLanguage())
	r.Register(PythonLanguage())
	for _, lang := range treeSitterLanguages() {
		r.Register(lang)
	}
	r.Register(ZigLanguage())
	return r
}

// NewEmptyRegistry returns a registry with no languages.
func NewEmptyRegistry() *Registry {
	return &Registry{byExt: make(map[string]*Language)}
}

// Register adds lang, replacing any language previously bound to the same extensions.
func (r *Registry) Register(lang Language) {
	l := &lang
	r.langs = append(r.langs, l)
	for _, ext := range lang.Extensions {
		r.byExt[strings.ToLower(ext)] = l
	}
}

// Lookup returns the language registered for path's extension.
func (r *Registry) Lookup(path string) (*Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, false
	}
	lang, ok := r.byExt[ext]
	return lang, ok
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract runs the extraction cascade for path. Files with no registered
// language come back with StagePassthrough and no declarations.
func (r *Registry) Extract(path string, source []byte) extraction.Result {
	lang, ok := r.Lookup(path)
	if !ok {
		return extraction.Result{Path: path, Stage: extraction.StagePassthrough}
	}
	decls, stage := cascade(lang, source)
	return extraction.Result{
		Path:         path,
		Language:     lang.Name,
		Stage:        stage,
		Declarations: decls,
	}
}

// Reduce returns the signature-only text for path. Unsupported files are
// returned verbatim.
func (r *Registry) Reduce(path string, source []byte) (string, extraction.Result) {
	res := r.Extract(path, source)
	if res.Stage == extraction.StagePassthrough {
		return string(source), res
	}
	lang, _ := r.Lookup(path)
	return Render(res.Declarations, lang.CommentPrefix), res
}
