package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected float64
		ok       bool
	}{
		{name: "int", input: 42, expected: 42, ok: true},
		{name: "int8", input: int8(-3), expected: -3, ok: true},
		{name: "int16", input: int16(7), expected: 7, ok: true},
		{name: "int32", input: int32(9), expected: 9, ok: true},
		{name: "int64", input: int64(30), expected: 30, ok: true},
		{name: "float32", input: float32(1.5), expected: 1.5, ok: true},
		{name: "float64", input: 7.25, expected: 7.25, ok: true},
		{name: "numeric string", input: "3.5", expected: 3.5, ok: true},
		{name: "non-numeric string", input: "abc", ok: false},
		{name: "bool", input: true, ok: false},
		{name: "nil", input: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}
