package pkg

import (
	"math"

	"github.com/provide-io/logviz/pkg/band"
	"github.com/provide-io/logviz/pkg/labels"
	"github.com/provide-io/logviz/pkg/logmath"
	"github.com/provide-io/logviz/pkg/numeral"
)

const (
	DefaultMinLogGap = 0.12
	DefaultMaxTicks  = 8
)

// Request describes one visualizer frame. DisplayBase drives numerals and
// digit bands; ComputeBase drives the logarithm. They are independent.
type Request struct {
	Value       float64
	DisplayBase int
	ComputeBase float64

	MaxFractionDigits int
	MinLogGap         float64
	MaxTicks          int
	RangeFloor        float64
	RangeMargin       float64
	AreaSteps         int
}

// NewRequest fills every tuning knob with its default.
func NewRequest(value float64, displayBase int, computeBase float64) Request {
	return Request{
		Value:             value,
		DisplayBase:       displayBase,
		ComputeBase:       computeBase,
		MaxFractionDigits: numeral.DefaultFractionDigits,
		MinLogGap:         DefaultMinLogGap,
		MaxTicks:          DefaultMaxTicks,
		RangeFloor:        band.DefaultRangeFloor,
		RangeMargin:       band.DefaultMargin,
		AreaSteps:         logmath.DefaultAreaSteps,
	}
}

// Scene is everything a front-end needs to draw one frame.
type Scene struct {
	Value       float64 `json:"value"`
	DisplayBase int     `json:"display_base"`
	ComputeBase float64 `json:"compute_base"`

	Numeral string `json:"numeral"`
	Digits  int    `json:"digits"`

	UpperBound float64        `json:"upper_bound"`
	Boundaries []float64      `json:"boundaries"`
	Bands      []band.Band    `json:"bands"`
	Labels     []labels.Label `json:"labels"`
	Ticks      []float64      `json:"ticks"`

	// Log, Area and Description are absent for a zero value, where the
	// logarithm is undefined.
	Log         *float64 `json:"log,omitempty"`
	Area        *float64 `json:"area,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Render runs the whole engine for req.
func Render(req Request) (*Scene, error) {
	num, err := numeral.ConvertDigits(req.Value, req.DisplayBase, req.MaxFractionDigits)
	if err != nil {
		return nil, err
	}
	if err := logmath.ValidateBase(req.ComputeBase); err != nil {
		return nil, err
	}
	digits, err := band.DigitCount(req.Value, req.DisplayBase)
	if err != nil {
		return nil, err
	}

	upper := band.DisplayUpperBound(req.Value, req.RangeFloor)
	boundaries, err := band.BoundariesWithMargin(req.DisplayBase, upper, req.RangeMargin)
	if err != nil {
		return nil, err
	}
	lbls, err := labels.Select(boundaries, req.MinLogGap)
	if err != nil {
		return nil, err
	}
	ticks, err := labels.Ticks(boundaries, req.MaxTicks)
	if err != nil {
		return nil, err
	}

	scene := &Scene{
		Value:       req.Value,
		DisplayBase: req.DisplayBase,
		ComputeBase: req.ComputeBase,
		Numeral:     num,
		Digits:      digits,
		UpperBound:  upper,
		Boundaries:  boundaries,
		Bands:       band.Bands(boundaries),
		Labels:      lbls,
		Ticks:       ticks,
	}

	if req.Value > 0 {
		y, err := logmath.Log(req.Value, req.ComputeBase)
		if err != nil {
			return nil, err
		}
		area, err := logmath.Area(req.Value, req.AreaSteps)
		if err != nil {
			return nil, err
		}
		desc, err := logmath.Describe(req.Value, req.ComputeBase)
		if err != nil {
			return nil, err
		}
		scene.Log = &y
		scene.Area = &area
		scene.Description = desc
	}

	return scene, nil
}

// DisplayBaseFor derives an integer display base from a real compute base
// by rounding and clamping to the numeral alphabet. Front-ends call it when
// the user only moved the compute-base slider.
func DisplayBaseFor(computeBase float64) int {
	if math.IsNaN(computeBase) {
		return numeral.MinBase
	}
	b := math.Round(computeBase)
	switch {
	case b < numeral.MinBase:
		return numeral.MinBase
	case b > numeral.MaxBase:
		return numeral.MaxBase
	}
	return int(b)
}
