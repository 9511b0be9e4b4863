package parsers

import (
	"errors"
	"fmt"

	"github.com/mvp-joe/repo-digest/internal/extraction"
)

// ErrSyntax is returned by extractors when the source does not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// Extractor reduces source text to its declarations.
type Extractor interface {
	Extract(source []byte) ([]extraction.Declaration, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(source []byte) ([]extraction.Declaration, error)

func (f ExtractorFunc) Extract(source []byte) ([]extraction.Declaration, error) {
	return f(source)
}

// Language describes how files of one language are reduced.
type Language struct {
	Name          string
	Extensions    []string
	CommentPrefix string
	Primary       Extractor
	Fallback      Extractor // Optional
}

// cascade runs the primary extractor and, on failure, the fallback.
// It never returns an error: when both stages fail the result is empty.
func cascade(lang *Language, source []byte) ([]extraction.Declaration, extraction.Stage) {
	if decls, err := safeExtract(lang.Primary, source); err == nil {
		return decls, extraction.StagePrimary
	}
	if lang.Fallback != nil {
		if decls, err := safeExtract(lang.Fallback, source); err == nil {
			return decls, extraction.StageFallback
		}
	}
	return nil, extraction.StageFailed
}

// safeExtract converts extractor panics into errors.
func safeExtract(e Extractor, source []byte) (decls []extraction.Declaration, err error) {
	if e == nil {
		return nil, errors.New("no extractor")
	}
	defer func() {
		if r := recover(); r != nil {
			decls = nil
			err = fmt.Errorf("extractor panic: %v", r)
		}
	}()
	return e.Extract(source)
}
