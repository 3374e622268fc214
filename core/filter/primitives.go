package filter

// PredicateFilter decides by evaluating an opaque predicate against the
// record; the entity is accepted for interface uniformity but unused.
type PredicateFilter[E any] struct {
	predicate Predicate
}

// NewPredicateFilter creates a filter around a record predicate. The filter
// takes ownership of the predicate, which must stay safe for concurrent reads.
func NewPredicateFilter[E any](predicate Predicate) PredicateFilter[E] {
	return PredicateFilter[E]{predicate: predicate}
}

// Decide evaluates the stored predicate against the record.
func (f PredicateFilter[E]) Decide(_ E, record Record) bool {
	return f.predicate.Evaluate(record)
}

// Describe renders the predicate's own textual form wrapped with a tag.
func (f PredicateFilter[E]) Describe() string {
	return "PredicateFilter(" + f.predicate.Description() + ")"
}

// FunctionFilter decides by evaluating a pure function of the entity alone;
// the record is accepted for interface uniformity but unused.
type FunctionFilter[E any] struct {
	fn func(E) bool
}

// NewFunctionFilter creates a filter around an entity function. The function
// is expected to be pure and deterministic, though this is not enforced.
func NewFunctionFilter[E any](fn func(E) bool) FunctionFilter[E] {
	return FunctionFilter[E]{fn: fn}
}

// Decide evaluates the stored function on the entity.
func (f FunctionFilter[E]) Decide(entity E, _ Record) bool {
	return f.fn(entity)
}

// Describe returns a fixed tag; an opaque function body has no introspectable
// representation.
func (f FunctionFilter[E]) Describe() string {
	return "EntityFilter(Function)"
}
