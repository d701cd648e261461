package handler

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"076123456", "23276123456"},
		{"+23276123456", "23276123456"},
		{"23276123456", "23276123456"},
		{"76123456", "23276123456"},
		{"076 123 456", "23276123456"},
		{"  +232 76 123 456 ", "23276123456"},

		{"", ""},
		{"7612345", ""},     // too short
		{"761234567", ""},   // too long
		{"07612345a", ""},   // non-digit
		{"+2547612345", ""}, // wrong country, wrong length
	}
	for _, c := range cases {
		if got := normalizePhone(c.in); got != c.want {
			t.Errorf("normalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
