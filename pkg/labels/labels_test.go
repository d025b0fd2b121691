package labels

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/logviz/pkg/band"
	lverrors "github.com/provide-io/logviz/pkg/errors"
)

func TestSelect_DecadesAllAccepted(t *testing.T) {
	got, err := Select([]float64{1, 10, 100, 1000, 10000}, 0.12)
	require.NoError(t, err)
	require.Len(t, got, 4)

	wantPos := []float64{5.5, 55, 550, 5500}
	for i, l := range got {
		assert.Equal(t, i, l.Index)
		assert.Equal(t, wantPos[i], l.Position)
		assert.Equal(t, i%2, l.Slot)
	}
}

func TestSelect_SkipsCrowdedMidpoints(t *testing.T) {
	// Binary bands are ~0.3 apart in log10, so a gap of 0.5 keeps every
	// other one.
	boundaries, err := band.Boundaries(2, 100)
	require.NoError(t, err)

	got, err := Select(boundaries, 0.5)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, 0, got[0].Index)

	for i := 1; i < len(got); i++ {
		gap := math.Log10(got[i].Position) - math.Log10(got[i-1].Position)
		assert.GreaterOrEqual(t, gap, 0.5)
		assert.Greater(t, got[i].Index, got[i-1].Index)
		assert.Equal(t, i%2, got[i].Slot, "slot follows acceptance order, not index")
	}
	assert.Less(t, len(got), len(boundaries)-1)
}

func TestSelect_GapEqualToThresholdIsAccepted(t *testing.T) {
	boundaries := []float64{1, 3, 9}
	gap := math.Log10(6) - math.Log10(2)

	got, err := Select(boundaries, gap)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = Select(boundaries, math.Nextafter(gap, math.Inf(1)))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSelect_MidpointNearMaxFloat(t *testing.T) {
	got, err := Select([]float64{1e308, 1.7e308}, 0.1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, math.IsInf(got[0].Position, 0))
	assert.InDelta(t, 1.35e308, got[0].Position, 1e293)
}

func TestSelect_Idempotent(t *testing.T) {
	boundaries, err := band.Boundaries(3, 1e5)
	require.NoError(t, err)

	first, err := Select(boundaries, 0.7)
	require.NoError(t, err)
	second, err := Select(boundaries, 0.7)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSelect_ShortInput(t *testing.T) {
	got, err := Select([]float64{1}, 0.1)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Select(nil, 0.1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelect_InvalidInput(t *testing.T) {
	for _, gap := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Select([]float64{1, 10}, gap)
		assert.ErrorIs(t, err, lverrors.ErrInvalidGap, "gap %v", gap)
	}

	for _, b := range [][]float64{{1, 1}, {10, 1}, {0, 1}, {1, math.Inf(1)}, {math.NaN(), 2}} {
		_, err := Select(b, 0.1)
		assert.ErrorIs(t, err, lverrors.ErrInvalidBoundaries, "%v", b)
	}
}

func TestTicks(t *testing.T) {
	decades := []float64{1, 10, 100, 1000, 10000, 100000, 1000000}

	tests := []struct {
		name     string
		maxTicks int
		expected []float64
	}{
		{name: "stride three", maxTicks: 3, expected: []float64{1, 1000, 1000000}},
		{name: "cap above length", maxTicks: 10, expected: decades},
		{name: "cap equal to length", maxTicks: 7, expected: decades},
		{name: "single tick", maxTicks: 1, expected: []float64{1}},
		{name: "stride two", maxTicks: 4, expected: []float64{1, 100, 10000, 1000000}},
		{name: "huge cap", maxTicks: 1 << 45, expected: decades},
		{name: "max int cap", maxTicks: math.MaxInt, expected: decades},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Ticks(decades, tt.maxTicks)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.LessOrEqual(t, len(got), tt.maxTicks)
		})
	}
}

func TestTicks_EdgeCases(t *testing.T) {
	got, err := Ticks(nil, 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Ticks([]float64{1, 10}, 0)
	assert.ErrorIs(t, err, lverrors.ErrInvalidTickCount)
}
