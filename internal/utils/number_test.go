package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1 234,50", 1234.5, true},
		{"1\u00A0234,50", 1234.5, true},
		{"1,234.50", 1234.5, true},
		{"1.234.567,8", 1234567.8, true},
		{"12,5", 12.5, true},
		{"(12.5)", -12.5, true},
		{"₹ 1,200.00", 1200, true},
		{"-3", -3, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.InDelta(t, c.want, got, 1e-9, c.in)
	}
}
