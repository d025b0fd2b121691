package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/provide-io/logviz/pkg"
	"github.com/provide-io/logviz/pkg/band"
	"github.com/provide-io/logviz/pkg/labels"
	"github.com/provide-io/logviz/pkg/logmath"
	"github.com/provide-io/logviz/pkg/numeral"
)

// emit prints v as JSON under --json, otherwise through text.
func (a *app) emit(v any, text func(w io.Writer)) error {
	if a.jsonOutput {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func parseFloatArg(raw, name string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", name, raw)
	}
	return f, nil
}

// parseBoundaries accepts numbers as separate args or comma/space separated.
func parseBoundaries(args []string) ([]float64, error) {
	var out []float64
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			f, err := parseFloatArg(field, "boundary")
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}
	return out, nil
}

func formatFloats(fs []float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func (a *app) convertCmd() *cobra.Command {
	var base float64
	var digits int

	cmd := &cobra.Command{
		Use:   "convert VALUE",
		Short: "Write a value as a positional numeral",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseFloatArg(args[0], "value")
			if err != nil {
				return err
			}
			b, err := numeral.BaseFromFloat(base)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("digits") {
				digits = a.cfg.MaxFractionDigits
			}

			n, err := numeral.Format(value, b, digits)
			if err != nil {
				return err
			}
			a.logger.Debug("converted", "value", value, "base", b, "numeral", n.String())
			return a.emit(n, func(w io.Writer) {
				fmt.Fprintln(w, n.String())
			})
		},
	}
	cmd.Flags().Float64VarP(&base, "base", "b", 10, "Integer base in [2, 36]")
	cmd.Flags().IntVarP(&digits, "digits", "d", numeral.DefaultFractionDigits, "Maximum fraction digits")
	return cmd
}

func (a *app) parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse NUMERAL",
		Short: "Read a numeral like FF_16 back into a decimal value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, base, err := numeral.Parse(args[0])
			if err != nil {
				return err
			}
			result := struct {
				Numeral string  `json:"numeral"`
				Base    int     `json:"base"`
				Value   float64 `json:"value"`
			}{args[0], base, value}
			return a.emit(result, func(w io.Writer) {
				fmt.Fprintln(w, strconv.FormatFloat(value, 'g', -1, 64))
			})
		},
	}
}

func (a *app) boundariesCmd() *cobra.Command {
	var base, upper, value float64

	cmd := &cobra.Command{
		Use:   "boundaries",
		Short: "List the power-of-base boundaries covering a range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := numeral.BaseFromFloat(base)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("upper") {
				upper = band.DisplayUpperBound(value, a.cfg.RangeFloor)
			}

			out, err := band.BoundariesWithMargin(b, upper, a.cfg.RangeMargin)
			if err != nil {
				return err
			}
			bands := band.Bands(out)
			return a.emit(bands, func(w io.Writer) {
				fmt.Fprintln(w, "DIGITS\tFROM\tTO")
				for _, bd := range bands {
					fmt.Fprintf(w, "%d\t%g\t%g\n", bd.Digits, bd.Lower, bd.Upper)
				}
			})
		},
	}
	cmd.Flags().Float64VarP(&base, "base", "b", 10, "Integer base in [2, 36]")
	cmd.Flags().Float64VarP(&upper, "upper", "u", 0, "Upper bound of the display range")
	cmd.Flags().Float64Var(&value, "value", 0, "Derive the upper bound from this value when --upper is not set")
	return cmd
}

func (a *app) labelsCmd() *cobra.Command {
	var gap float64

	cmd := &cobra.Command{
		Use:   "labels BOUNDARY...",
		Short: "Pick band labels that keep a minimum log10 gap",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boundaries, err := parseBoundaries(args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("gap") {
				gap = a.cfg.MinLogGap
			}

			out, err := labels.Select(boundaries, gap)
			if err != nil {
				return err
			}
			return a.emit(out, func(w io.Writer) {
				fmt.Fprintln(w, "BAND\tDIGITS\tPOSITION\tSLOT")
				for _, l := range out {
					fmt.Fprintf(w, "%d\t%d\t%g\t%d\n", l.Index, l.Index+1, l.Position, l.Slot)
				}
			})
		},
	}
	cmd.Flags().Float64VarP(&gap, "gap", "g", pkg.DefaultMinLogGap, "Minimum log10 distance between labels")
	return cmd
}

func (a *app) ticksCmd() *cobra.Command {
	var maxTicks int

	cmd := &cobra.Command{
		Use:   "ticks BOUNDARY...",
		Short: "Pick axis ticks with a uniform stride",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boundaries, err := parseBoundaries(args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max") {
				maxTicks = a.cfg.MaxTicks
			}

			out, err := labels.Ticks(boundaries, maxTicks)
			if err != nil {
				return err
			}
			return a.emit(out, func(w io.Writer) {
				fmt.Fprintln(w, formatFloats(out))
			})
		},
	}
	cmd.Flags().IntVarP(&maxTicks, "max", "m", pkg.DefaultMaxTicks, "Maximum number of ticks")
	return cmd
}

func (a *app) logCmd() *cobra.Command {
	var base float64

	cmd := &cobra.Command{
		Use:   "log X",
		Short: "Compute log_b(x) for a real base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseFloatArg(args[0], "x")
			if err != nil {
				return err
			}
			y, err := logmath.Log(x, base)
			if err != nil {
				return err
			}
			desc, err := logmath.Describe(x, base)
			if err != nil {
				return err
			}
			result := struct {
				X           float64 `json:"x"`
				Base        float64 `json:"base"`
				Log         float64 `json:"log"`
				Description string  `json:"description"`
			}{x, base, y, desc}
			return a.emit(result, func(w io.Writer) {
				fmt.Fprintln(w, desc)
			})
		},
	}
	cmd.Flags().Float64VarP(&base, "base", "b", 10, "Real base, positive and not 1")
	return cmd
}

func (a *app) areaCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "area X",
		Short: "Integrate 1/t from 1 to x, the area that defines ln(x)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseFloatArg(args[0], "x")
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("steps") {
				steps = a.cfg.AreaSteps
			}
			area, err := logmath.Area(x, steps)
			if err != nil {
				return err
			}
			ln := math.Log(x)
			result := struct {
				X    float64 `json:"x"`
				Area float64 `json:"area"`
				Ln   float64 `json:"ln"`
			}{x, area, ln}
			return a.emit(result, func(w io.Writer) {
				fmt.Fprintf(w, "area\t%.9f\n", area)
				fmt.Fprintf(w, "ln(x)\t%.9f\n", ln)
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", logmath.DefaultAreaSteps, "Simpson intervals")
	return cmd
}

func (a *app) curveCmd() *cobra.Command {
	var base, lo, hi float64
	var n int

	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Sample log_b(x) over a range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("samples") {
				n = a.cfg.CurveSamples
			}
			pts, err := logmath.Curve(lo, hi, n, base)
			if err != nil {
				return err
			}
			return a.emit(pts, func(w io.Writer) {
				fmt.Fprintln(w, "X\tY")
				for _, p := range pts {
					fmt.Fprintf(w, "%g\t%g\n", p.X, p.Y)
				}
			})
		},
	}
	cmd.Flags().Float64VarP(&base, "base", "b", 10, "Real base, positive and not 1")
	cmd.Flags().Float64Var(&lo, "lo", logmath.DefaultCurveLow, "Lower end of the range")
	cmd.Flags().Float64Var(&hi, "hi", logmath.DefaultCurveHigh, "Upper end of the range")
	cmd.Flags().IntVarP(&n, "samples", "n", logmath.DefaultCurveSamples, "Number of samples")
	return cmd
}

func (a *app) sceneCmd() *cobra.Command {
	var base, computeBase float64

	cmd := &cobra.Command{
		Use:   "scene VALUE",
		Short: "Compute everything a visualizer frame needs for one value",
		Long: `scene combines the numeral, digit bands, labels, ticks, logarithm and area
for VALUE. --base sets the integer display base, --compute-base the real base
of the logarithm. Either one defaults from the other.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseFloatArg(args[0], "value")
			if err != nil {
				return err
			}

			baseSet, computeSet := cmd.Flags().Changed("base"), cmd.Flags().Changed("compute-base")
			if !baseSet && computeSet {
				base = float64(pkg.DisplayBaseFor(computeBase))
			}
			displayBase, err := numeral.BaseFromFloat(base)
			if err != nil {
				return err
			}
			if !computeSet {
				computeBase = float64(displayBase)
			}

			scene, err := pkg.Render(a.cfg.Request(value, displayBase, computeBase))
			if err != nil {
				return err
			}
			return a.emit(scene, func(w io.Writer) { printScene(w, scene) })
		},
	}
	cmd.Flags().Float64VarP(&base, "base", "b", 10, "Integer display base in [2, 36]")
	cmd.Flags().Float64VarP(&computeBase, "compute-base", "c", 10, "Real base of the logarithm")
	return cmd
}

func printScene(w io.Writer, s *pkg.Scene) {
	fmt.Fprintf(w, "value\t%g\n", s.Value)
	fmt.Fprintf(w, "numeral\t%s\n", s.Numeral)
	fmt.Fprintf(w, "digits\t%d\n", s.Digits)
	if s.Log != nil {
		fmt.Fprintf(w, "log_%g\t%.6f\n", s.ComputeBase, *s.Log)
	}
	if s.Area != nil {
		fmt.Fprintf(w, "area 1..x\t%.6f\n", *s.Area)
	}
	if s.Description != "" {
		fmt.Fprintf(w, "reading\t%s\n", s.Description)
	}
	fmt.Fprintf(w, "boundaries\t%s\n", formatFloats(s.Boundaries))
	fmt.Fprintf(w, "ticks\t%s\n", formatFloats(s.Ticks))
	for _, l := range s.Labels {
		fmt.Fprintf(w, "label\t%d-digit band at %g (slot %d)\n", l.Index+1, l.Position, l.Slot)
	}
}

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the engine against its reference cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pkg.VerifyEngineWithLogger(a.logger); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "✓ engine verified")
			return nil
		},
	}
}
