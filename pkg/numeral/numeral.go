// Package numeral renders non-negative reals as positional numerals in an
// integer base between 2 and 36.
//
// The integer part is produced by repeated division, the fractional part by
// repeated multiplication. The fraction loop stops early as soon as the
// remainder is exactly zero, so exact binary fractions such as 0.5 stay
// short instead of being padded to the digit limit.
//
// Known limitation: the fraction loop works in float64 and accumulates
// rounding error with every multiplication. Digits past the precision of the
// input are noise of the double, not of the value the user had in mind.
package numeral

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	lverrors "github.com/provide-io/logviz/pkg/errors"
)

const (
	// Alphabet holds the digit symbols; base b uses Alphabet[:b].
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	MinBase = 2
	MaxBase = 36

	// DefaultFractionDigits bounds the fractional expansion of Convert.
	DefaultFractionDigits = 6
	// MaxFractionDigits is the exact binary length of the smallest
	// subnormal float64, so no input needs more.
	MaxFractionDigits = 1074

	// BaseSeparator sits between the digits and the base suffix.
	BaseSeparator = "_"
	// RadixPoint separates integer and fraction digits.
	RadixPoint = "."
)

// 2^64 as a float64, the first integer part that no longer fits a uint64.
const twoTo64 = 18446744073709551616.0

// Numeral is a positional representation of a value in a given base.
type Numeral struct {
	Integer  string `json:"integer"`  // most significant digit first, "0" for a zero integer part
	Fraction string `json:"fraction"` // empty unless Fractional is set
	Base     int    `json:"base"`

	// Fractional reports whether the source value had a non-zero fractional
	// part. Fraction is "0" when it did but no digit was emitted.
	Fractional bool `json:"fractional"`
}

// String returns "<int>.<frac>_<base>" or "<int>_<base>".
func (n Numeral) String() string {
	var sb strings.Builder
	sb.WriteString(n.Integer)
	if n.Fractional {
		sb.WriteString(RadixPoint)
		sb.WriteString(n.Fraction)
	}
	sb.WriteString(BaseSeparator)
	sb.WriteString(strconv.Itoa(n.Base))
	return sb.String()
}

// ValidateBase fails with ErrInvalidBase outside [MinBase, MaxBase].
func ValidateBase(base int) error {
	if base < MinBase || base > MaxBase {
		return fmt.Errorf("%w: %d is outside [%d, %d]", lverrors.ErrInvalidBase, base, MinBase, MaxBase)
	}
	return nil
}

// BaseFromFloat converts a base received as a float (JSON, sliders) into an
// int, rejecting non-integers instead of rounding them.
func BaseFromFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v is not an integer", lverrors.ErrInvalidBase, f)
	}
	if f < MinBase || f > MaxBase {
		return 0, fmt.Errorf("%w: %v is outside [%d, %d]", lverrors.ErrInvalidBase, f, MinBase, MaxBase)
	}
	return int(f), nil
}

// ValidateValue fails with ErrInvalidValue for negative or non-finite input.
func ValidateValue(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %v is not finite", lverrors.ErrInvalidValue, value)
	}
	if value < 0 {
		return fmt.Errorf("%w: %v is negative", lverrors.ErrInvalidValue, value)
	}
	return nil
}

// Convert renders value in base with at most DefaultFractionDigits fraction
// digits.
func Convert(value float64, base int) (string, error) {
	return ConvertDigits(value, base, DefaultFractionDigits)
}

// ConvertDigits renders value in base with at most maxFractionDigits
// fraction digits.
func ConvertDigits(value float64, base, maxFractionDigits int) (string, error) {
	n, err := Format(value, base, maxFractionDigits)
	if err != nil {
		return "", err
	}
	return n.String(), nil
}

// Format is the structured form of ConvertDigits.
func Format(value float64, base, maxFractionDigits int) (Numeral, error) {
	if err := ValidateBase(base); err != nil {
		return Numeral{}, err
	}
	if err := ValidateValue(value); err != nil {
		return Numeral{}, err
	}
	if maxFractionDigits < 0 || maxFractionDigits > MaxFractionDigits {
		return Numeral{}, fmt.Errorf("%w: max fraction digits %d is outside [0, %d]", lverrors.ErrInvalidValue, maxFractionDigits, MaxFractionDigits)
	}

	ip := math.Floor(value)
	frac := value - ip

	n := Numeral{
		Integer: integerDigits(ip, base),
		Base:    base,
	}
	if frac != 0 {
		n.Fractional = true
		n.Fraction = fractionDigits(frac, base, maxFractionDigits)
	}
	return n, nil
}

func integerDigits(ip float64, base int) string {
	if ip >= twoTo64 {
		// Every float64 this large is an integer; big.Float converts it exactly.
		bi, _ := new(big.Float).SetFloat64(ip).Int(nil)
		return strings.ToUpper(bi.Text(base))
	}

	q := uint64(ip)
	if q == 0 {
		return "0"
	}
	b := uint64(base)
	var digits []byte
	for q > 0 {
		digits = append(digits, Alphabet[q%b])
		q /= b
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

func fractionDigits(frac float64, base, limit int) string {
	b := float64(base)
	var digits []byte
	for rem := frac; rem != 0 && len(digits) < limit; {
		rem *= b
		d := math.Floor(rem)
		// rem*b can round up to b when rem is one ulp below 1.
		if d >= b {
			d = b - 1
		}
		digits = append(digits, Alphabet[int(d)])
		rem -= d
	}
	if len(digits) == 0 {
		return "0"
	}
	return string(digits)
}
