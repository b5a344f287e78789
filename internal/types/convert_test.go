package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNative(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected interface{}
	}{
		{"int8", int8(3), int64(3)},
		{"int16", int16(-300), int64(-300)},
		{"int32", int32(42), int64(42)},
		{"uint8", uint8(200), int64(200)},
		{"uint32", uint32(70000), int64(70000)},
		{"uint64", uint64(1268868730447), int64(1268868730447)},
		{"int", 7, int64(7)},
		{"int64 unchanged", int64(9), int64(9)},
		{"string unchanged", "Jan", "Jan"},
		{"string list", []interface{}{"en", "de"}, []string{"en", "de"}},
		{"empty list", []interface{}{}, []string{}},
		{"mixed list unchanged", []interface{}{"en", 1}, []interface{}{"en", 1}},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeNative(tt.input))
		})
	}
}

func TestNormalizeProps(t *testing.T) {
	m := map[string]interface{}{
		"length": int8(3),
		"email":  []interface{}{"a@x.com"},
		"name":   "x",
	}
	NormalizeProps(m)
	assert.Equal(t, map[string]interface{}{
		"length": int64(3),
		"email":  []string{"a@x.com"},
		"name":   "x",
	}, m)
}
