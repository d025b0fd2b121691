package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/provide-io/logviz/pkg"
	"github.com/provide-io/logviz/pkg/band"
	lverrors "github.com/provide-io/logviz/pkg/errors"
	"github.com/provide-io/logviz/pkg/labels"
	"github.com/provide-io/logviz/pkg/logmath"
	"github.com/provide-io/logviz/pkg/numeral"
)

// errBadRequest marks malformed parameters that never reached the engine.
var errBadRequest = errors.New("❌ bad request")

// ConvertResponse is returned by GET /v1/convert.
type ConvertResponse struct {
	Value   float64 `json:"value"`
	Base    int     `json:"base"`
	Numeral string  `json:"numeral"`
}

// BoundariesResponse is returned by GET /v1/boundaries.
type BoundariesResponse struct {
	Base       int         `json:"base"`
	UpperBound float64     `json:"upper_bound"`
	Boundaries []float64   `json:"boundaries"`
	Bands      []band.Band `json:"bands"`
}

// LabelsRequest is the body of POST /v1/labels.
type LabelsRequest struct {
	Boundaries []float64 `json:"boundaries"`
	MinLogGap  *float64  `json:"min_log_gap,omitempty"`
}

// LabelsResponse is returned by POST /v1/labels.
type LabelsResponse struct {
	MinLogGap float64        `json:"min_log_gap"`
	Labels    []labels.Label `json:"labels"`
}

// TicksRequest is the body of POST /v1/ticks.
type TicksRequest struct {
	Boundaries []float64 `json:"boundaries"`
	MaxTicks   *int      `json:"max_ticks,omitempty"`
}

// TicksResponse is returned by POST /v1/ticks.
type TicksResponse struct {
	MaxTicks int       `json:"max_ticks"`
	Ticks    []float64 `json:"ticks"`
}

// CurveResponse is returned by GET /v1/curve.
type CurveResponse struct {
	Base   float64         `json:"base"`
	Points []logmath.Point `json:"points"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	resp, err := func() (*ConvertResponse, error) {
		value, err := requiredFloat(q.Get("value"), "value")
		if err != nil {
			return nil, err
		}
		base, err := requiredBase(q.Get("base"))
		if err != nil {
			return nil, err
		}
		digits, err := optionalInt(q.Get("digits"), "digits", s.cfg.MaxFractionDigits)
		if err != nil {
			return nil, err
		}
		out, err := numeral.ConvertDigits(value, base, digits)
		if err != nil {
			return nil, err
		}
		return &ConvertResponse{Value: value, Base: base, Numeral: out}, nil
	}()
	s.respond(w, r, "convert", start, resp, err)
}

func (s *Server) handleBoundaries(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	resp, err := func() (*BoundariesResponse, error) {
		base, err := requiredBase(q.Get("base"))
		if err != nil {
			return nil, err
		}

		// An explicit upper bound wins; otherwise derive it from the value.
		var upper float64
		if raw := q.Get("upper"); raw != "" {
			if upper, err = requiredFloat(raw, "upper"); err != nil {
				return nil, err
			}
		} else {
			value, err := requiredFloat(q.Get("value"), "value or upper")
			if err != nil {
				return nil, err
			}
			upper = band.DisplayUpperBound(value, s.cfg.RangeFloor)
		}

		out, err := band.BoundariesWithMargin(base, upper, s.cfg.RangeMargin)
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveBoundaries(len(out))
		return &BoundariesResponse{Base: base, UpperBound: upper, Boundaries: out, Bands: band.Bands(out)}, nil
	}()
	s.respond(w, r, "boundaries", start, resp, err)
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	resp, err := func() (*LabelsResponse, error) {
		var req LabelsRequest
		if err := decodeBody(w, r, &req); err != nil {
			return nil, err
		}
		gap := s.cfg.MinLogGap
		if req.MinLogGap != nil {
			gap = *req.MinLogGap
		}
		out, err := labels.Select(req.Boundaries, gap)
		if err != nil {
			return nil, err
		}
		return &LabelsResponse{MinLogGap: gap, Labels: out}, nil
	}()
	s.respond(w, r, "labels", start, resp, err)
}

func (s *Server) handleTicks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	resp, err := func() (*TicksResponse, error) {
		var req TicksRequest
		if err := decodeBody(w, r, &req); err != nil {
			return nil, err
		}
		maxTicks := s.cfg.MaxTicks
		if req.MaxTicks != nil {
			maxTicks = *req.MaxTicks
		}
		out, err := labels.Ticks(req.Boundaries, maxTicks)
		if err != nil {
			return nil, err
		}
		return &TicksResponse{MaxTicks: maxTicks, Ticks: out}, nil
	}()
	s.respond(w, r, "ticks", start, resp, err)
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	resp, err := func() (*CurveResponse, error) {
		base, err := requiredFloat(q.Get("base"), "base")
		if err != nil {
			return nil, err
		}
		lo, err := optionalFloat(q.Get("lo"), "lo", logmath.DefaultCurveLow)
		if err != nil {
			return nil, err
		}
		hi, err := optionalFloat(q.Get("hi"), "hi", logmath.DefaultCurveHigh)
		if err != nil {
			return nil, err
		}
		n, err := optionalInt(q.Get("n"), "n", s.cfg.CurveSamples)
		if err != nil {
			return nil, err
		}
		pts, err := logmath.Curve(lo, hi, n, base)
		if err != nil {
			return nil, err
		}
		return &CurveResponse{Base: base, Points: pts}, nil
	}()
	s.respond(w, r, "curve", start, resp, err)
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	resp, err := func() (*pkg.Scene, error) {
		value, err := requiredFloat(q.Get("value"), "value")
		if err != nil {
			return nil, err
		}
		rawBase, rawCompute := q.Get("base"), q.Get("compute_base")
		if rawBase == "" && rawCompute == "" {
			return nil, fmt.Errorf("%w: base or compute_base is required", errBadRequest)
		}

		var displayBase int
		var computeBase float64
		if rawBase != "" {
			if displayBase, err = requiredBase(rawBase); err != nil {
				return nil, err
			}
		}
		if rawCompute != "" {
			if computeBase, err = requiredFloat(rawCompute, "compute_base"); err != nil {
				return nil, err
			}
		}
		switch {
		case rawBase == "":
			displayBase = pkg.DisplayBaseFor(computeBase)
		case rawCompute == "":
			computeBase = float64(displayBase)
		}

		scene, err := pkg.Render(s.cfg.Request(value, displayBase, computeBase))
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveBoundaries(len(scene.Boundaries))
		return scene, nil
	}()
	s.respond(w, r, "scene", start, resp, err)
}

// respond writes either the payload or the error and records metrics.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, op string, start time.Time, payload any, err error) {
	outcome := "ok"
	switch {
	case err == nil:
		if werr := writeJSON(w, http.StatusOK, payload); werr != nil {
			outcome = "error"
			s.logger.Error("response not encodable", "operation", op, "request_id", RequestID(r.Context()), "error", werr)
		}
	case isClientError(err):
		outcome = "invalid"
		s.logger.Debug("rejected request", "operation", op, "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusBadRequest, err)
	default:
		outcome = "error"
		s.logger.Error("request failed", "operation", op, "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
	s.metrics.Observe(op, outcome, time.Since(start))
}

func isClientError(err error) bool {
	for _, target := range []error{
		errBadRequest,
		lverrors.ErrInvalidBase,
		lverrors.ErrInvalidValue,
		lverrors.ErrInvalidGap,
		lverrors.ErrInvalidTickCount,
		lverrors.ErrInvalidBoundaries,
		lverrors.ErrInvalidLogBase,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeJSON encodes payload before touching the status line, so a payload
// that cannot be encoded becomes a 500 instead of a truncated 200.
func writeJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		err = fmt.Errorf("encode response: %w", err)
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(map[string]string{"error": err.Error()})
		status = http.StatusInternalServerError
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(buf.Bytes())
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
	return nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	_ = writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func requiredFloat(raw, name string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", errBadRequest, name)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", errBadRequest, name, raw)
	}
	return f, nil
}

func optionalFloat(raw, name string, def float64) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return requiredFloat(raw, name)
}

func optionalInt(raw, name string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", errBadRequest, name, raw)
	}
	return n, nil
}

// requiredBase accepts "16" and "16.0" but rejects "2.5" as ErrInvalidBase.
func requiredBase(raw string) (int, error) {
	f, err := requiredFloat(raw, "base")
	if err != nil {
		return 0, err
	}
	return numeral.BaseFromFloat(f)
}
