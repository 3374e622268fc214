package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// constFilter always returns the same decision.
type constFilter struct {
	result      bool
	description string
}

func (f constFilter) Decide(_ account, _ Record) bool { return f.result }
func (f constFilter) Describe() string                { return f.description }

// poisonFilter fails the test if it is ever evaluated. It verifies
// short-circuit order.
type poisonFilter struct {
	t *testing.T
}

func (f poisonFilter) Decide(_ account, _ Record) bool {
	f.t.Fatal("filter evaluated past a short-circuit point")
	return false
}

func (f poisonFilter) Describe() string { return "poison" }

func accepts(result bool) constFilter {
	if result {
		return constFilter{result: true, description: "true"}
	}
	return constFilter{result: false, description: "false"}
}

func TestAnd_Decide(t *testing.T) {
	tests := []struct {
		name     string
		results  []bool
		expected bool
	}{
		{name: "all true", results: []bool{true, true, true}, expected: true},
		{name: "one false", results: []bool{true, false, true}, expected: false},
		{name: "all false", results: []bool{false, false}, expected: false},
		{name: "single true", results: []bool{true}, expected: true},
		{name: "single false", results: []bool{false}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := make([]Filter[account], 0, len(tt.results))
			for _, r := range tt.results {
				members = append(members, accepts(r))
			}
			assert.Equal(t, tt.expected, And(members...).Decide(account{}, nil))
		})
	}
}

func TestOr_Decide(t *testing.T) {
	tests := []struct {
		name     string
		results  []bool
		expected bool
	}{
		{name: "all false", results: []bool{false, false, false}, expected: false},
		{name: "one true", results: []bool{false, true, false}, expected: true},
		{name: "all true", results: []bool{true, true}, expected: true},
		{name: "single true", results: []bool{true}, expected: true},
		{name: "single false", results: []bool{false}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := make([]Filter[account], 0, len(tt.results))
			for _, r := range tt.results {
				members = append(members, accepts(r))
			}
			assert.Equal(t, tt.expected, Or(members...).Decide(account{}, nil))
		})
	}
}

func TestNot_Decide(t *testing.T) {
	assert.False(t, Not[account](accepts(true)).Decide(account{}, nil))
	assert.True(t, Not[account](accepts(false)).Decide(account{}, nil))
}

func TestDoubleNegation(t *testing.T) {
	for _, result := range []bool{true, false} {
		f := accepts(result)
		assert.Equal(t, f.Decide(account{}, nil), Not[account](Not[account](f)).Decide(account{}, nil))
	}
}

func TestEmptyCompound_VacuousIdentities(t *testing.T) {
	assert.True(t, And[account]().Decide(account{}, nil))
	assert.False(t, Or[account]().Decide(account{}, nil))
}

func TestDeMorgan_NonEmptyLists(t *testing.T) {
	combinations := [][]bool{
		{true}, {false},
		{true, true}, {true, false}, {false, true}, {false, false},
		{true, false, true}, {false, false, false},
	}

	for _, results := range combinations {
		members := make([]Filter[account], 0, len(results))
		negated := make([]Filter[account], 0, len(results))
		for _, r := range results {
			members = append(members, accepts(r))
			negated = append(negated, Not[account](accepts(r)))
		}

		conjunction := And(members...).Decide(account{}, nil)
		negatedDisjunction := !Or(negated...).Decide(account{}, nil)
		assert.Equal(t, conjunction, negatedDisjunction, "De Morgan violated for %v", results)
	}
}

func TestAnd_ShortCircuitsOnFirstFalse(t *testing.T) {
	f := And[account](accepts(false), poisonFilter{t: t})
	assert.False(t, f.Decide(account{}, nil))
}

func TestOr_ShortCircuitsOnFirstTrue(t *testing.T) {
	f := Or[account](accepts(true), poisonFilter{t: t})
	assert.True(t, f.Decide(account{}, nil))
}

func TestCompound_EvaluationFollowsListOrder(t *testing.T) {
	var order []string
	note := func(name string, result bool) FunctionFilter[account] {
		return NewFunctionFilter(func(account) bool {
			order = append(order, name)
			return result
		})
	}

	And[account](note("a", true), note("b", true), note("c", false), poisonFilter{t: t}).Decide(account{}, nil)
	assert.Equal(t, []string{"a", "b", "c"}, order)

	order = nil
	Or[account](note("a", false), note("b", true), poisonFilter{t: t}).Decide(account{}, nil)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestCompound_Describe(t *testing.T) {
	f1 := constFilter{description: "PredicateFilter(name == 'x')"}
	f2 := constFilter{description: "EntityFilter(Function)"}

	assert.Equal(t, "PredicateFilter(name == 'x') AND EntityFilter(Function)", And[account](f1, f2).Describe())
	assert.Equal(t, "PredicateFilter(name == 'x') OR EntityFilter(Function)", Or[account](f1, f2).Describe())
	assert.Equal(t, "NOT PredicateFilter(name == 'x')", Not[account](f1).Describe())
	assert.Equal(t, f1.Describe()+" AND "+f2.Describe(), And[account](f1, f2).Describe())
}

func TestCompound_DescribeSingleMemberHasNoSeparator(t *testing.T) {
	f := constFilter{description: "PredicateFilter(age > 18)"}
	assert.Equal(t, "PredicateFilter(age > 18)", And[account](f).Describe())
	assert.Equal(t, "PredicateFilter(age > 18)", Or[account](f).Describe())
}

func TestCompound_DescribeEmptyListIsEmptyString(t *testing.T) {
	assert.Equal(t, "", And[account]().Describe())
	assert.Equal(t, "", Or[account]().Describe())
}

func TestCompound_NestedDescriptionStaysFlat(t *testing.T) {
	f1 := constFilter{description: "a == 1"}
	f2 := constFilter{description: "b == 2"}
	f3 := constFilter{description: "c == 3"}

	// The inner AND is not parenthesized; the flat string is ambiguous when
	// mixed with OR at the outer level, and deliberately so.
	nested := Or[account](And[account](f1, f2), f3)
	assert.Equal(t, "a == 1 AND b == 2 OR c == 3", nested.Describe())

	deeper := Not[account](Or[account](f1, And[account](f2, f3)))
	assert.Equal(t, "NOT a == 1 OR b == 2 AND c == 3", deeper.Describe())
}

func TestCompound_NestedEvaluation(t *testing.T) {
	adult := NewFunctionFilter(func(a account) bool { return a.Age >= 18 })
	active := NewFunctionFilter(func(a account) bool { return a.Active })
	named := NewFunctionFilter(func(a account) bool { return a.Name != "" })

	f := Or[account](And[account](adult, active), Not[account](named))

	assert.True(t, f.Decide(account{Name: "x", Age: 30, Active: true}, nil))
	assert.False(t, f.Decide(account{Name: "x", Age: 30, Active: false}, nil))
	assert.True(t, f.Decide(account{Age: 10}, nil))
}
