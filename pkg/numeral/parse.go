package numeral

import (
	"fmt"
	"strconv"
	"strings"

	lverrors "github.com/provide-io/logviz/pkg/errors"
)

// Parse reads a numeral in the "<int>[.<frac>]_<base>" form produced by
// Convert and returns its value and base. Digits are case-insensitive.
//
// Integers below 2^53 round-trip exactly; fractions are summed in float64.
func Parse(s string) (float64, int, error) {
	s = strings.TrimSpace(s)
	cut := strings.LastIndex(s, BaseSeparator)
	if cut < 0 {
		return 0, 0, fmt.Errorf("%w: %q has no base suffix", lverrors.ErrInvalidNumeral, s)
	}

	base, err := strconv.Atoi(s[cut+1:])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: base suffix %q", lverrors.ErrInvalidNumeral, s[cut+1:])
	}
	if err := ValidateBase(base); err != nil {
		return 0, 0, err
	}

	intPart, fracPart, hasFrac := strings.Cut(s[:cut], RadixPoint)
	if intPart == "" || (hasFrac && fracPart == "") {
		return 0, 0, fmt.Errorf("%w: %q is missing digits", lverrors.ErrInvalidNumeral, s)
	}

	b := float64(base)
	var value float64
	for _, r := range intPart {
		d, err := digitValue(r, base)
		if err != nil {
			return 0, 0, err
		}
		value = value*b + float64(d)
	}

	place := 1.0
	for _, r := range fracPart {
		d, err := digitValue(r, base)
		if err != nil {
			return 0, 0, err
		}
		place /= b
		value += float64(d) * place
	}

	return value, base, nil
}

func digitValue(r rune, base int) (int, error) {
	d := strings.IndexRune(Alphabet, toUpper(r))
	if d < 0 || d >= base {
		return 0, fmt.Errorf("%w: digit %q is not valid in base %d", lverrors.ErrInvalidNumeral, r, base)
	}
	return d, nil
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}
