package server

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/logviz/internal/config"
	"github.com/provide-io/logviz/pkg"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(config.Defaults(), hclog.NewNullLogger())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, dst any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dst != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
	return resp
}

func postJSON(t *testing.T, url, body string, dst any) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if dst != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
	return resp
}

func TestConvertEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var got ConvertResponse
	resp := getJSON(t, ts.URL+"/v1/convert?value=255&base=16", &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "FF_16", got.Numeral)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	resp = getJSON(t, ts.URL+"/v1/convert?value=8.5&base=2&digits=3", &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1000.1_2", got.Numeral)
}

func TestConvertEndpoint_Rejections(t *testing.T) {
	ts := newTestServer(t)

	for _, q := range []string{
		"value=5&base=2.5",
		"value=5&base=40",
		"value=-1&base=10",
		"value=abc&base=10",
		"base=10",
		"value=1&base=10&digits=x",
	} {
		var body map[string]string
		resp := getJSON(t, ts.URL+"/v1/convert?"+q, &body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.NotEmpty(t, body["error"], q)
	}
}

func TestBoundariesEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var got BoundariesResponse
	resp := getJSON(t, ts.URL+"/v1/boundaries?base=10&upper=500", &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []float64{1, 10, 100, 1000, 10000}, got.Boundaries)
	assert.Len(t, got.Bands, 4)

	resp = getJSON(t, ts.URL+"/v1/boundaries?base=10&value=3", &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 100.0, got.UpperBound)

	resp = getJSON(t, ts.URL+"/v1/boundaries?base=10", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLabelsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var got LabelsResponse
	resp := postJSON(t, ts.URL+"/v1/labels", `{"boundaries":[1,10,100,1000,10000],"min_log_gap":0.12}`, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, got.Labels, 4)
	for i, l := range got.Labels {
		assert.Equal(t, i%2, l.Slot)
	}

	resp = postJSON(t, ts.URL+"/v1/labels", `{"boundaries":[1,10,100]}`, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, pkg.DefaultMinLogGap, got.MinLogGap)

	resp = postJSON(t, ts.URL+"/v1/labels", `{"boundaries":[10,1]}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/v1/labels", `{"boundaries":[1,10],"colour":"red"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTicksEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var got TicksResponse
	resp := postJSON(t, ts.URL+"/v1/ticks", `{"boundaries":[1,10,100,1000,10000,100000,1000000],"max_ticks":3}`, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []float64{1, 1000, 1000000}, got.Ticks)

	resp = postJSON(t, ts.URL+"/v1/ticks", `{"boundaries":[1,10],"max_ticks":0}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCurveEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var got CurveResponse
	resp := getJSON(t, ts.URL+"/v1/curve?base=10&lo=1&hi=100&n=3", &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, got.Points, 3)
	assert.InDelta(t, 2, got.Points[2].Y, 1e-12)

	resp = getJSON(t, ts.URL+"/v1/curve?base=1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSceneEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var got pkg.Scene
	resp := getJSON(t, ts.URL+"/v1/scene?value=8&compute_base=2.4", &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, got.DisplayBase, "display base derived from compute base")
	assert.Equal(t, 2.4, got.ComputeBase)
	assert.Equal(t, "1000_2", got.Numeral)
	require.NotNil(t, got.Log)

	resp = getJSON(t, ts.URL+"/v1/scene?value=255&base=16", &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 16.0, got.ComputeBase)
	assert.Equal(t, "FF_16", got.Numeral)

	resp = getJSON(t, ts.URL+"/v1/scene?value=8", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLabelsEndpoint_NearMaxFloat(t *testing.T) {
	ts := newTestServer(t)

	var got LabelsResponse
	resp := postJSON(t, ts.URL+"/v1/labels", `{"boundaries":[1e308,1.7e308],"min_log_gap":0.1}`, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, got.Labels, 1)
	assert.InDelta(t, 1.35e308, got.Labels[0].Position, 1e293)
}

func TestLargeCounts(t *testing.T) {
	ts := newTestServer(t)

	var ticks TicksResponse
	resp := postJSON(t, ts.URL+"/v1/ticks", `{"boundaries":[1,10,100],"max_ticks":35184372088832}`, &ticks)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []float64{1, 10, 100}, ticks.Ticks)

	resp = getJSON(t, ts.URL+"/v1/curve?base=10&n=35184372088832", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = getJSON(t, ts.URL+"/v1/convert?value=0.1&base=3&digits=1000000000", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var scene pkg.Scene
	resp = getJSON(t, ts.URL+"/v1/scene?value=1e308&base=10", &scene)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, math.MaxFloat64, scene.UpperBound)
}

func TestWriteJSON_UnencodablePayload(t *testing.T) {
	rec := httptest.NewRecorder()
	err := writeJSON(rec, http.StatusOK, map[string]float64{"x": math.Inf(1)})
	require.Error(t, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "encode response")
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp := getJSON(t, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	getJSON(t, ts.URL+"/v1/convert?value=1&base=2", nil)
	getJSON(t, ts.URL+"/v1/convert?value=1&base=1", nil)

	mresp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer mresp.Body.Close()
	body, err := io.ReadAll(mresp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `logviz_requests_total{operation="convert",outcome="ok"} 1`)
	assert.Contains(t, text, `logviz_requests_total{operation="convert",outcome="invalid"} 1`)
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(requestIDHeader))
}

func TestRun_StopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	cfg := config.Defaults()
	cfg.Addr = addr
	s := New(cfg, hclog.NewNullLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
