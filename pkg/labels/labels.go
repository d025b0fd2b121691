// Package labels picks which digit bands and axis ticks get a label.
//
// Two rules share one boundary sequence. Band labels are chosen greedily so
// that no two accepted midpoints sit closer than a minimum log10 gap. Axis
// ticks use a uniform stride capped by a tick count.
package labels

import (
	"fmt"
	"math"

	lverrors "github.com/provide-io/logviz/pkg/errors"
)

// SlotCount is the number of vertical positions labels cycle through.
const SlotCount = 2

// Label is an accepted band label.
type Label struct {
	Index    int     `json:"index"`    // band index k, the band of (k+1)-digit numbers
	Position float64 `json:"position"` // band midpoint
	Slot     int     `json:"slot"`     // 0 or 1, alternating in acceptance order
}

// Select walks band midpoints left to right and accepts a midpoint when it
// is the first one or when its log10 distance to the last accepted
// midpoint is at least minLogGap. A gap exactly equal to minLogGap is
// accepted.
func Select(boundaries []float64, minLogGap float64) ([]Label, error) {
	if math.IsNaN(minLogGap) || math.IsInf(minLogGap, 0) || minLogGap <= 0 {
		return nil, fmt.Errorf("%w: %v must be positive and finite", lverrors.ErrInvalidGap, minLogGap)
	}
	if err := validateBoundaries(boundaries); err != nil {
		return nil, err
	}
	if len(boundaries) < 2 {
		return []Label{}, nil
	}

	out := make([]Label, 0, len(boundaries)-1)
	last := math.Inf(-1)
	for i := 0; i+1 < len(boundaries); i++ {
		mid := boundaries[i] + (boundaries[i+1]-boundaries[i])/2
		pos := math.Log10(mid)
		if len(out) > 0 && pos-last < minLogGap {
			continue
		}
		out = append(out, Label{
			Index:    i,
			Position: mid,
			Slot:     len(out) % SlotCount,
		})
		last = pos
	}
	return out, nil
}

// Ticks takes every step-th boundary starting at index 0, where
// step = ceil(len(boundaries) / maxTicks).
func Ticks(boundaries []float64, maxTicks int) ([]float64, error) {
	if maxTicks < 1 {
		return nil, fmt.Errorf("%w: %d must be at least 1", lverrors.ErrInvalidTickCount, maxTicks)
	}
	if len(boundaries) == 0 {
		return []float64{}, nil
	}

	// ceil(len/maxTicks) without overflowing for maxTicks near MaxInt.
	step := (len(boundaries)-1)/maxTicks + 1
	out := make([]float64, 0, min(maxTicks, len(boundaries)))
	for i := 0; i < len(boundaries); i += step {
		out = append(out, boundaries[i])
	}
	return out, nil
}

func validateBoundaries(boundaries []float64) error {
	for i, b := range boundaries {
		if math.IsNaN(b) || math.IsInf(b, 0) || b <= 0 {
			return fmt.Errorf("%w: element %d (%v) must be positive and finite", lverrors.ErrInvalidBoundaries, i, b)
		}
		if i > 0 && b <= boundaries[i-1] {
			return fmt.Errorf("%w: element %d (%v) does not increase", lverrors.ErrInvalidBoundaries, i, b)
		}
	}
	return nil
}
