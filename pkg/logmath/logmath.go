// Package logmath computes the continuous side of the visualizer: logarithms
// in a real base, the area under 1/t that defines ln, and sampled curves.
//
// The base used here is a real number and is independent of the integer
// base used for numerals and digit bands.
package logmath

import (
	"fmt"
	"math"

	lverrors "github.com/provide-io/logviz/pkg/errors"
)

const (
	// DefaultAreaSteps is the number of Simpson intervals used by Area.
	DefaultAreaSteps = 1000
	MaxAreaSteps     = 10_000_000

	// Sampling defaults for Curve.
	DefaultCurveLow     = 0.1
	DefaultCurveHigh    = 100.0
	DefaultCurveSamples = 400
	MaxCurveSamples     = 100_000
)

// Point is one sample of a curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ValidateBase fails with ErrInvalidLogBase unless base is finite, positive
// and not 1.
func ValidateBase(base float64) error {
	if math.IsNaN(base) || math.IsInf(base, 0) || base <= 0 || base == 1 {
		return fmt.Errorf("%w: %v", lverrors.ErrInvalidLogBase, base)
	}
	return nil
}

func validatePositive(name string, x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
		return fmt.Errorf("%w: %s %v must be positive and finite", lverrors.ErrInvalidValue, name, x)
	}
	return nil
}

// Log returns log_base(x).
func Log(x, base float64) (float64, error) {
	if err := ValidateBase(base); err != nil {
		return 0, err
	}
	if err := validatePositive("x", x); err != nil {
		return 0, err
	}
	return math.Log(x) / math.Log(base), nil
}

// Area integrates 1/t from 1 to x with composite Simpson's rule over steps
// intervals, rounded up to an even count. The result is negative for x < 1
// and approximates ln(x).
func Area(x float64, steps int) (float64, error) {
	if err := validatePositive("x", x); err != nil {
		return 0, err
	}
	if steps < 2 || steps > MaxAreaSteps {
		return 0, fmt.Errorf("%w: steps %d is outside [2, %d]", lverrors.ErrInvalidValue, steps, MaxAreaSteps)
	}
	if steps%2 == 1 {
		steps++
	}
	if x == 1 {
		return 0, nil
	}

	h := (x - 1) / float64(steps)
	sum := 1 + 1/x
	for i := 1; i < steps; i++ {
		t := 1 + float64(i)*h
		if i%2 == 1 {
			sum += 4 / t
		} else {
			sum += 2 / t
		}
	}
	return sum * h / 3, nil
}

// Curve samples log_base over n evenly spaced points of [lo, hi], both ends
// included.
func Curve(lo, hi float64, n int, base float64) ([]Point, error) {
	if err := ValidateBase(base); err != nil {
		return nil, err
	}
	if err := validatePositive("lo", lo); err != nil {
		return nil, err
	}
	if err := validatePositive("hi", hi); err != nil {
		return nil, err
	}
	if hi <= lo {
		return nil, fmt.Errorf("%w: range [%v, %v] is empty", lverrors.ErrInvalidValue, lo, hi)
	}
	if n < 2 || n > MaxCurveSamples {
		return nil, fmt.Errorf("%w: %d samples is outside [2, %d]", lverrors.ErrInvalidValue, n, MaxCurveSamples)
	}

	lnBase := math.Log(base)
	step := (hi - lo) / float64(n-1)
	out := make([]Point, n)
	for i := range out {
		x := lo + float64(i)*step
		if i == n-1 {
			x = hi
		}
		out[i] = Point{X: x, Y: math.Log(x) / lnBase}
	}
	return out, nil
}

// Describe reads log_base(x) = y as "base multiplied by itself y times
// gives x".
func Describe(x, base float64) (string, error) {
	y, err := Log(x, base)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("log_%s(%s) = %.3f: multiplying %s by itself %.3f times gives %s",
		trim(base), trim(x), y, trim(base), y, trim(x)), nil
}

func trim(f float64) string {
	return fmt.Sprintf("%g", f)
}
