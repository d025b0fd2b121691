package pkg

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/logviz/pkg/band"
	"github.com/provide-io/logviz/pkg/labels"
	"github.com/provide-io/logviz/pkg/numeral"
)

// ErrSelfCheckFailed is returned by VerifyEngineWithLogger when any
// reference case disagrees with the engine.
var ErrSelfCheckFailed = errors.New("❌ engine self-check failed")

type engineCheck struct {
	name string
	run  func() error
}

var engineChecks = []engineCheck{
	{"convert 50 in base 10", func() error { return expectNumeral(50, 10, 6, "50_10") }},
	{"convert 255 in base 16", func() error { return expectNumeral(255, 16, 6, "FF_16") }},
	{"convert 8.5 in base 2", func() error { return expectNumeral(8.5, 2, 3, "1000.1_2") }},
	{"zero in every base", func() error {
		for b := numeral.MinBase; b <= numeral.MaxBase; b++ {
			if err := expectNumeral(0, b, 6, fmt.Sprintf("0_%d", b)); err != nil {
				return err
			}
		}
		return nil
	}},
	{"decimal boundaries", func() error {
		got, err := band.Boundaries(10, 500)
		if err != nil {
			return err
		}
		return expectFloats(got, []float64{1, 10, 100, 1000, 10000})
	}},
	{"degenerate range", func() error {
		got, err := band.Boundaries(2, 0.5)
		if err != nil {
			return err
		}
		return expectFloats(got, []float64{1, 2})
	}},
	{"decade labels", func() error {
		got, err := labels.Select([]float64{1, 10, 100, 1000, 10000}, 0.12)
		if err != nil {
			return err
		}
		want := []labels.Label{
			{Index: 0, Position: 5.5, Slot: 0},
			{Index: 1, Position: 55, Slot: 1},
			{Index: 2, Position: 550, Slot: 0},
			{Index: 3, Position: 5500, Slot: 1},
		}
		if !slices.Equal(got, want) {
			return fmt.Errorf("labels %v, want %v", got, want)
		}
		return nil
	}},
	{"tick stride", func() error {
		got, err := labels.Ticks([]float64{1, 10, 100, 1000, 10000, 100000, 1000000}, 3)
		if err != nil {
			return err
		}
		return expectFloats(got, []float64{1, 1000, 1000000})
	}},
}

func expectNumeral(value float64, base, digits int, want string) error {
	got, err := numeral.ConvertDigits(value, base, digits)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("got %q, want %q", got, want)
	}
	return nil
}

func expectFloats(got, want []float64) error {
	if !slices.EqualFunc(got, want, func(a, b float64) bool { return a == b || math.Abs(a-b) <= 1e-9*math.Abs(b) }) {
		return fmt.Errorf("got %v, want %v", got, want)
	}
	return nil
}

// VerifyEngineWithLogger runs the reference cases against the engine and
// logs one line per case.
func VerifyEngineWithLogger(logger hclog.Logger) error {
	logger.Info("Verifying engine against reference cases")

	failures := []string{}
	for _, c := range engineChecks {
		if err := c.run(); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", c.name, err))
			logger.Error("Reference case failed", "case", c.name, "error", err)
			continue
		}
		logger.Debug("✓ Reference case passed", "case", c.name)
	}

	if len(failures) > 0 {
		logger.Error("✗ Engine verification failed", "error_count", len(failures))
		return fmt.Errorf("%w: %d of %d cases: %v", ErrSelfCheckFailed, len(failures), len(engineChecks), failures)
	}
	logger.Info("✓ Engine verification passed", "cases", len(engineChecks))
	return nil
}
