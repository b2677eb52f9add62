package quant

import (
	"testing"
)

func TestParsePriceMicros(t *testing.T) {
	tests := []struct {
		input    string
		expected PriceMicros
		wantErr  bool
	}{
		{"1.23", 1230000, false},
		{"0.000001", 1, false},
		{"0.001", 1000, false},
		{"0", 0, false},
		{"-1.23", -1230000, false},
		{"0.0000019", 1, false}, // excess digits truncated
		{"42", 42000000, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1.x", 0, true},
	}

	for _, tt := range tests {
		got, err := ParsePriceMicros(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePriceMicros(%q) expected error, got %d", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePriceMicros(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParsePriceMicros(%q) = %d; want %d", tt.input, got, tt.expected)
		}
	}
}

func TestPriceMicros_String(t *testing.T) {
	tests := []struct {
		input    PriceMicros
		expected string
	}{
		{1230000, "1.230000"},
		{1000, "0.001000"},
		{1100, "0.001100"},
		{0, "0.000000"},
		{-1230000, "-1.230000"},
	}

	for _, tt := range tests {
		if got := tt.input.String(); got != tt.expected {
			t.Errorf("PriceMicros(%d).String() = %s; want %s", tt.input, got, tt.expected)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, v := range []PriceMicros{0, 1, 1000, 1100, 999999, 1000000, 123456789} {
		parsed, err := ParsePriceMicros(v.String())
		if err != nil {
			t.Fatalf("round trip of %d failed: %v", v, err)
		}
		if parsed != v {
			t.Errorf("round trip of %d gave %d", v, parsed)
		}
	}
}
