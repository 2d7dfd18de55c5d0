package api

import (
	"encoding/json"
	"math"
)

// Round rounds x to the given number of decimal places for presentation.
// Core computations stay full-precision; rounding happens only when building
// response models.
func Round(x float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(x*scale) / scale
}

// Ratio is a float that serializes non-finite values as strings, since JSON
// has no representation for Inf or NaN.
type Ratio float64

// MarshalJSON implements json.Marshaler.
func (r Ratio) MarshalJSON() ([]byte, error) {
	v := float64(r)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-inf"`), nil
	case math.IsNaN(v):
		return []byte(`"nan"`), nil
	}
	return json.Marshal(v)
}
