// Package config loads logviz settings. Sources are layered
// defaults < YAML file < LOGVIZ_* environment < command-line flags, where a
// later source only overrides the fields it actually sets.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/provide-io/logviz/pkg"
	"github.com/provide-io/logviz/pkg/band"
	"github.com/provide-io/logviz/pkg/logmath"
	"github.com/provide-io/logviz/pkg/numeral"
)

// Environment variables read by FromEnv.
const (
	EnvConfigFile        = "LOGVIZ_CONFIG"
	EnvMaxFractionDigits = "LOGVIZ_MAX_FRACTION_DIGITS"
	EnvMinLogGap         = "LOGVIZ_MIN_LOG_GAP"
	EnvMaxTicks          = "LOGVIZ_MAX_TICKS"
	EnvRangeFloor        = "LOGVIZ_RANGE_FLOOR"
	EnvRangeMargin       = "LOGVIZ_RANGE_MARGIN"
	EnvAreaSteps         = "LOGVIZ_AREA_STEPS"
	EnvCurveSamples      = "LOGVIZ_CURVE_SAMPLES"
	EnvLogLevel          = "LOGVIZ_LOG_LEVEL"
	EnvAddr              = "LOGVIZ_ADDR"
)

const DefaultAddr = ":8080"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("❌ invalid configuration")

// Config holds the engine tuning knobs and the process settings around it.
// Zero values mean "not set" during Merge.
type Config struct {
	MaxFractionDigits int     `yaml:"max_fraction_digits"`
	MinLogGap         float64 `yaml:"min_log_gap"`
	MaxTicks          int     `yaml:"max_ticks"`
	RangeFloor        float64 `yaml:"range_floor"`
	RangeMargin       float64 `yaml:"range_margin"`
	AreaSteps         int     `yaml:"area_steps"`
	CurveSamples      int     `yaml:"curve_samples"`

	LogLevel string `yaml:"log_level"`
	Addr     string `yaml:"addr"`
}

// Defaults returns a Config with every field set.
func Defaults() Config {
	return Config{
		MaxFractionDigits: numeral.DefaultFractionDigits,
		MinLogGap:         pkg.DefaultMinLogGap,
		MaxTicks:          pkg.DefaultMaxTicks,
		RangeFloor:        band.DefaultRangeFloor,
		RangeMargin:       band.DefaultMargin,
		AreaSteps:         logmath.DefaultAreaSteps,
		CurveSamples:      logmath.DefaultCurveSamples,
		Addr:              DefaultAddr,
	}
}

// Load parses a YAML file, rejecting unknown keys.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(raw)
}

// Parse decodes YAML bytes, rejecting unknown keys. Empty input is an empty
// Config.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(raw)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// FromEnv reads the LOGVIZ_* variables. Unset variables leave fields zero;
// malformed ones are an error.
func FromEnv() (Config, error) {
	var cfg Config
	var errs []error

	intVar := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, err))
				return
			}
			*dst = n
		}
	}
	floatVar := func(key string, dst *float64) {
		if v, ok := lookup(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, err))
				return
			}
			*dst = f
		}
	}

	intVar(EnvMaxFractionDigits, &cfg.MaxFractionDigits)
	floatVar(EnvMinLogGap, &cfg.MinLogGap)
	intVar(EnvMaxTicks, &cfg.MaxTicks)
	floatVar(EnvRangeFloor, &cfg.RangeFloor)
	floatVar(EnvRangeMargin, &cfg.RangeMargin)
	intVar(EnvAreaSteps, &cfg.AreaSteps)
	intVar(EnvCurveSamples, &cfg.CurveSamples)
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvAddr); ok {
		cfg.Addr = v
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return cfg, nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Merge overlays the non-zero fields of over onto base.
func Merge(base, over Config) Config {
	out := base
	if over.MaxFractionDigits != 0 {
		out.MaxFractionDigits = over.MaxFractionDigits
	}
	if over.MinLogGap != 0 {
		out.MinLogGap = over.MinLogGap
	}
	if over.MaxTicks != 0 {
		out.MaxTicks = over.MaxTicks
	}
	if over.RangeFloor != 0 {
		out.RangeFloor = over.RangeFloor
	}
	if over.RangeMargin != 0 {
		out.RangeMargin = over.RangeMargin
	}
	if over.AreaSteps != 0 {
		out.AreaSteps = over.AreaSteps
	}
	if over.CurveSamples != 0 {
		out.CurveSamples = over.CurveSamples
	}
	if strings.TrimSpace(over.LogLevel) != "" {
		out.LogLevel = strings.TrimSpace(over.LogLevel)
	}
	if strings.TrimSpace(over.Addr) != "" {
		out.Addr = strings.TrimSpace(over.Addr)
	}
	return out
}

// Resolve builds the effective Config: defaults, then the file at path (or
// $LOGVIZ_CONFIG when path is empty), then the environment.
func Resolve(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		path, _ = lookup(EnvConfigFile)
	}
	if path != "" {
		file, err := Load(path)
		if err != nil {
			return Config{}, err
		}
		cfg = Merge(cfg, file)
	}

	env, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg = Merge(cfg, env)

	return cfg, cfg.Validate()
}

// Validate checks that every engine knob is usable.
func (c Config) Validate() error {
	var errs []error
	if c.MaxFractionDigits < 0 || c.MaxFractionDigits > numeral.MaxFractionDigits {
		errs = append(errs, fmt.Errorf("max_fraction_digits %d is outside [0, %d]", c.MaxFractionDigits, numeral.MaxFractionDigits))
	}
	if !(c.MinLogGap > 0) || math.IsInf(c.MinLogGap, 0) {
		errs = append(errs, fmt.Errorf("min_log_gap %v must be positive", c.MinLogGap))
	}
	if c.MaxTicks < 1 {
		errs = append(errs, fmt.Errorf("max_ticks %d must be at least 1", c.MaxTicks))
	}
	if !(c.RangeFloor > 0) || math.IsInf(c.RangeFloor, 0) {
		errs = append(errs, fmt.Errorf("range_floor %v must be positive", c.RangeFloor))
	}
	if !(c.RangeMargin >= 1) || math.IsInf(c.RangeMargin, 0) {
		errs = append(errs, fmt.Errorf("range_margin %v must be at least 1", c.RangeMargin))
	}
	if c.AreaSteps < 2 || c.AreaSteps > logmath.MaxAreaSteps {
		errs = append(errs, fmt.Errorf("area_steps %d is outside [2, %d]", c.AreaSteps, logmath.MaxAreaSteps))
	}
	if c.CurveSamples < 2 || c.CurveSamples > logmath.MaxCurveSamples {
		errs = append(errs, fmt.Errorf("curve_samples %d is outside [2, %d]", c.CurveSamples, logmath.MaxCurveSamples))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Request builds an engine request carrying this Config's knobs.
func (c Config) Request(value float64, displayBase int, computeBase float64) pkg.Request {
	req := pkg.NewRequest(value, displayBase, computeBase)
	req.MaxFractionDigits = c.MaxFractionDigits
	req.MinLogGap = c.MinLogGap
	req.MaxTicks = c.MaxTicks
	req.RangeFloor = c.RangeFloor
	req.RangeMargin = c.RangeMargin
	req.AreaSteps = c.AreaSteps
	return req
}
