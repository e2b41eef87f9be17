package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"+91 98765 43210", true},
		{"9876543210", true},
		{"(022) 4000-1234", true},
		{"12345", false},
		{"", false},
		{"98765abc43210", false},
		{"+91-98765-4321x", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidPhone(tc.in), "ValidPhone(%q)", tc.in)
	}
}

func TestNewID_Distinct(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewID()
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
