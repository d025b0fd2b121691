package logmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lverrors "github.com/provide-io/logviz/pkg/errors"
)

func TestLog(t *testing.T) {
	tests := []struct {
		x, base, expected float64
	}{
		{x: 8, base: 2, expected: 3},
		{x: 1000, base: 10, expected: 3},
		{x: 1, base: 7.3, expected: 0},
		{x: 0.25, base: 2, expected: -2},
		{x: math.E, base: math.E, expected: 1},
	}

	for _, tt := range tests {
		got, err := Log(tt.x, tt.base)
		require.NoError(t, err)
		assert.InDelta(t, tt.expected, got, 1e-12, "log_%v(%v)", tt.base, tt.x)
	}
}

func TestLog_InvalidInput(t *testing.T) {
	for _, base := range []float64{1, 0, -2, math.NaN(), math.Inf(1)} {
		_, err := Log(10, base)
		assert.ErrorIs(t, err, lverrors.ErrInvalidLogBase, "base %v", base)
	}
	for _, x := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Log(x, 10)
		assert.ErrorIs(t, err, lverrors.ErrInvalidValue, "x %v", x)
	}
}

func TestArea_ApproximatesNaturalLog(t *testing.T) {
	for _, x := range []float64{0.1, 0.5, 1, 2, math.E, 10, 100} {
		got, err := Area(x, DefaultAreaSteps)
		require.NoError(t, err)
		assert.InDelta(t, math.Log(x), got, 1e-4, "area to %v", x)
	}
}

func TestArea_OddStepsRoundUp(t *testing.T) {
	odd, err := Area(3, 9)
	require.NoError(t, err)
	even, err := Area(3, 10)
	require.NoError(t, err)
	assert.Equal(t, even, odd)
}

func TestArea_InvalidInput(t *testing.T) {
	_, err := Area(0, 100)
	assert.ErrorIs(t, err, lverrors.ErrInvalidValue)

	_, err = Area(2, 1)
	assert.ErrorIs(t, err, lverrors.ErrInvalidValue)

	_, err = Area(2, MaxAreaSteps+1)
	assert.ErrorIs(t, err, lverrors.ErrInvalidValue)

	_, err = Area(2, math.MaxInt)
	assert.ErrorIs(t, err, lverrors.ErrInvalidValue)
}

func TestCurve(t *testing.T) {
	pts, err := Curve(DefaultCurveLow, DefaultCurveHigh, DefaultCurveSamples, 2)
	require.NoError(t, err)
	require.Len(t, pts, DefaultCurveSamples)

	assert.Equal(t, DefaultCurveLow, pts[0].X)
	assert.Equal(t, DefaultCurveHigh, pts[len(pts)-1].X)
	for i := 1; i < len(pts); i++ {
		assert.Greater(t, pts[i].X, pts[i-1].X)
		assert.Greater(t, pts[i].Y, pts[i-1].Y)
	}
	assert.InDelta(t, math.Log2(DefaultCurveHigh), pts[len(pts)-1].Y, 1e-12)
}

func TestCurve_InvalidInput(t *testing.T) {
	_, err := Curve(1, 1, 10, 2)
	assert.ErrorIs(t, err, lverrors.ErrInvalidValue)

	_, err = Curve(0, 10, 10, 2)
	assert.ErrorIs(t, err, lverrors.ErrInvalidValue)

	_, err = Curve(1, 10, 1, 2)
	assert.ErrorIs(t, err, lverrors.ErrInvalidValue)

	_, err = Curve(1, 10, 10, 1)
	assert.ErrorIs(t, err, lverrors.ErrInvalidLogBase)

	_, err = Curve(1, 10, MaxCurveSamples+1, 2)
	assert.ErrorIs(t, err, lverrors.ErrInvalidValue)

	_, err = Curve(1, 10, 1<<45, 2)
	assert.ErrorIs(t, err, lverrors.ErrInvalidValue)
}

func TestCurve_MaxSamples(t *testing.T) {
	pts, err := Curve(1, 10, MaxCurveSamples, 10)
	require.NoError(t, err)
	assert.Len(t, pts, MaxCurveSamples)
	assert.Equal(t, 10.0, pts[len(pts)-1].X)
}

func TestDescribe(t *testing.T) {
	got, err := Describe(8, 2)
	require.NoError(t, err)
	assert.Equal(t, "log_2(8) = 3.000: multiplying 2 by itself 3.000 times gives 8", got)
}
