package quant

import (
	"testing"
)

// FuzzParsePriceMicros checks that arbitrary input never panics and that
// accepted values survive a format/parse round trip.
func FuzzParsePriceMicros(f *testing.F) {
	f.Add("0")
	f.Add("1.23")
	f.Add("-1.23")
	f.Add("0.000001")
	f.Add("9999999.999999")
	f.Add(".")
	f.Add("-")

	f.Fuzz(func(t *testing.T, s string) {
		v, err := ParsePriceMicros(s)
		if err != nil {
			return
		}
		back, err := ParsePriceMicros(v.String())
		if err != nil {
			t.Fatalf("formatted value %q failed to parse: %v", v.String(), err)
		}
		if back != v {
			t.Fatalf("round trip mismatch: %d -> %q -> %d", v, v.String(), back)
		}
	})
}
