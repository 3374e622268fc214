package predicate

import (
	"github.com/SpectralDragon/percy/core/filter"
	"github.com/SpectralDragon/percy/core/schema"
)

// Func adapts an arbitrary Go function over a document into a predicate. The
// description is supplied by the caller, since a function body has no
// introspectable textual form.
type Func struct {
	fn          func(schema.Document) bool
	description string
}

var _ filter.Predicate = Func{}

// NewFunc creates a function-backed predicate carrying the given description.
func NewFunc(description string, fn func(schema.Document) bool) Func {
	return Func{fn: fn, description: description}
}

// Evaluate applies the function to the record. Records that are not documents
// are evaluated against a nil document.
func (f Func) Evaluate(record filter.Record) bool {
	return f.fn(asDocument(record))
}

// Description returns the caller-supplied textual form.
func (f Func) Description() string {
	return f.description
}
