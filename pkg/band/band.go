// Package band partitions the positive number line into digit bands.
//
// Band k is the half-open interval [base^k, base^(k+1)) and holds the
// numbers that have exactly k+1 integer digits in that base.
package band

import (
	"fmt"
	"math"

	lverrors "github.com/provide-io/logviz/pkg/errors"
	"github.com/provide-io/logviz/pkg/numeral"
)

const (
	// DefaultMargin scales the upper bound so the boundary just past the
	// rendered value is always present.
	DefaultMargin = 10.0

	// DefaultRangeFloor is the smallest display range DisplayUpperBound
	// returns.
	DefaultRangeFloor = 100.0
)

// Band is one [Lower, Upper) digit band.
type Band struct {
	Index  int     `json:"index"`
	Digits int     `json:"digits"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// Contains reports whether v lies in [Lower, Upper).
func (b Band) Contains(v float64) bool {
	return v >= b.Lower && v < b.Upper
}

// Boundaries returns [base^0, base^1, ...] covering upperBound with
// DefaultMargin.
func Boundaries(base int, upperBound float64) ([]float64, error) {
	return BoundariesWithMargin(base, upperBound, DefaultMargin)
}

// BoundariesWithMargin emits every power of base up to upperBound*margin,
// then the first power beyond it. The result always starts at 1 and has at
// least two elements, so an upperBound of 1 or less still yields [1, base].
func BoundariesWithMargin(base int, upperBound, margin float64) ([]float64, error) {
	if err := numeral.ValidateBase(base); err != nil {
		return nil, err
	}
	if math.IsNaN(upperBound) || math.IsInf(upperBound, 0) {
		return nil, fmt.Errorf("%w: upper bound %v is not finite", lverrors.ErrInvalidValue, upperBound)
	}
	if math.IsNaN(margin) || math.IsInf(margin, 0) || margin < 1 {
		return nil, fmt.Errorf("%w: margin %v must be a finite factor >= 1", lverrors.ErrInvalidValue, margin)
	}

	limit := upperBound * margin
	if math.IsInf(limit, 1) {
		limit = math.MaxFloat64
	}

	b := float64(base)
	out := []float64{1}
	for k := 1; ; k++ {
		p := math.Pow(b, float64(k))
		if math.IsInf(p, 1) {
			break
		}
		out = append(out, p)
		if p > limit {
			break
		}
	}
	return out, nil
}

// DisplayUpperBound is the display-range heuristic: ten times the value of
// interest, never below floor. Values whose tenfold overflows are clamped to
// the largest finite float64.
func DisplayUpperBound(value, floor float64) float64 {
	upper := 10 * value
	if math.IsInf(upper, 1) {
		upper = math.MaxFloat64
	}
	return math.Max(floor, upper)
}

// Bands pairs consecutive boundaries into bands.
func Bands(boundaries []float64) []Band {
	if len(boundaries) < 2 {
		return nil
	}
	out := make([]Band, 0, len(boundaries)-1)
	for i := 0; i+1 < len(boundaries); i++ {
		out = append(out, Band{
			Index:  i,
			Digits: i + 1,
			Lower:  boundaries[i],
			Upper:  boundaries[i+1],
		})
	}
	return out
}

// DigitCount returns how many integer digits value has in base. Values
// below base, zero included, have one digit.
func DigitCount(value float64, base int) (int, error) {
	if err := numeral.ValidateBase(base); err != nil {
		return 0, err
	}
	if err := numeral.ValidateValue(value); err != nil {
		return 0, err
	}

	b := float64(base)
	digits := 1
	for k := 1; ; k++ {
		p := math.Pow(b, float64(k))
		if math.IsInf(p, 1) || p > value {
			break
		}
		digits++
	}
	return digits, nil
}
