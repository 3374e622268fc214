package filter

// AnyFilter erases the concrete type of a Filter so heterogeneous filter
// implementations can be stored and combined uniformly. It owns two closures
// captured at construction — the wrapped filter's Decide and Describe — and
// holds no identity beyond them. An AnyFilter is immutable once built.
type AnyFilter[E any] struct {
	decide   func(E, Record) bool
	describe func() string
}

// Erase wraps a concrete filter behind the uniform capability. Decide and
// Describe delegate exactly to the wrapped filter's methods as bound at
// construction time.
func Erase[E any](f Filter[E]) AnyFilter[E] {
	return AnyFilter[E]{
		decide:   f.Decide,
		describe: f.Describe,
	}
}

// Decide delegates to the wrapped filter's decision function.
func (a AnyFilter[E]) Decide(entity E, record Record) bool {
	return a.decide(entity, record)
}

// Describe delegates to the wrapped filter's description function.
func (a AnyFilter[E]) Describe() string {
	return a.describe()
}
