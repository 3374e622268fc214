package filter

import "strings"

// compoundKind tags the variant of a CompoundFilter. Evaluation and
// description both switch on it.
type compoundKind int

const (
	kindAnd compoundKind = iota
	kindOr
	kindNot
)

// CompoundFilter combines erased filters via AND/OR/NOT into a tree and
// implements the Filter capability recursively. Exactly one variant is
// assigned at construction and never changes: And and Or hold an ordered
// member list, Not holds a single member. List order determines both
// short-circuit evaluation order and description order.
type CompoundFilter[E any] struct {
	kind    compoundKind
	members []AnyFilter[E]
}

// And builds a compound filter that accepts a pair only when every member
// does. Members may be heterogeneous in concrete type; they are erased on
// entry. An empty list is vacuously true.
func And[E any](filters ...Filter[E]) CompoundFilter[E] {
	return CompoundFilter[E]{kind: kindAnd, members: eraseAll(filters)}
}

// Or builds a compound filter that accepts a pair as soon as any member
// does. An empty list is false.
func Or[E any](filters ...Filter[E]) CompoundFilter[E] {
	return CompoundFilter[E]{kind: kindOr, members: eraseAll(filters)}
}

// Not builds a compound filter that negates a single member's decision.
func Not[E any](f Filter[E]) CompoundFilter[E] {
	return CompoundFilter[E]{kind: kindNot, members: []AnyFilter[E]{Erase(f)}}
}

func eraseAll[E any](filters []Filter[E]) []AnyFilter[E] {
	erased := make([]AnyFilter[E], 0, len(filters))
	for _, f := range filters {
		erased = append(erased, Erase(f))
	}
	return erased
}

// Decide evaluates the tree against the pair. Members are evaluated in list
// order and callers may rely on left-to-right short-circuiting: And stops at
// the first false member, Or at the first true one, and members past that
// point are never evaluated.
func (c CompoundFilter[E]) Decide(entity E, record Record) bool {
	switch c.kind {
	case kindAnd:
		for _, member := range c.members {
			if !member.Decide(entity, record) {
				return false
			}
		}
		return true
	case kindOr:
		result := false
		for _, member := range c.members {
			decision := member.Decide(entity, record)
			if result || decision {
				return true
			}
			result = decision
		}
		return result
	default:
		return !c.members[0].Decide(entity, record)
	}
}

// Describe joins each member's description with " AND " or " OR ", with no
// parentheses around members, so nested compounds of different kinds produce
// ambiguous-but-deterministic flat strings. An empty And/Or describes as the
// empty string. Not renders as "NOT " followed by the member's description.
func (c CompoundFilter[E]) Describe() string {
	switch c.kind {
	case kindAnd:
		return c.joinDescriptions(" AND ")
	case kindOr:
		return c.joinDescriptions(" OR ")
	default:
		return "NOT " + c.members[0].Describe()
	}
}

func (c CompoundFilter[E]) joinDescriptions(separator string) string {
	parts := make([]string, 0, len(c.members))
	for _, member := range c.members {
		parts = append(parts, member.Describe())
	}
	return strings.Join(parts, separator)
}
