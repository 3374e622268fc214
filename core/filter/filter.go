// Package filter implements a composable boolean-filter expression system for
// selecting persisted entities. Primitive filters (predicate-based or
// function-based) are combined via logical AND/OR/NOT into compound trees,
// each carrying a human-readable description. Filters are evaluated in memory,
// once per (entity, record) pair, by whatever fetch orchestrator drives the
// filtering pass; this package never touches storage itself.
package filter

// Record is the opaque underlying matchable representation of an entity,
// supplied by the persistence layer (typically a schema.Document). The filter
// core never interprets it; only predicates do.
type Record = any

// Predicate is an externally defined boolean expression over a record. The
// filter core relies on nothing beyond these two operations.
type Predicate interface {
	// Evaluate reports whether the record satisfies the predicate.
	Evaluate(record Record) bool

	// Description returns the predicate's textual form.
	Description() string
}

// Filter is the capability every concrete filter type implements: a pure
// decision over an (entity, record) pair and a stable string representation
// of the filter's logic.
//
// Decide must not fail; if an underlying predicate or function panics, the
// panic propagates uncaught to the caller — this package defines no recovery.
// All implementations in this package are immutable after construction, so
// any number of goroutines may call Decide and Describe concurrently without
// coordination.
type Filter[E any] interface {
	Decide(entity E, record Record) bool
	Describe() string
}
