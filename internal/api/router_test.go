package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamroute/jamroute/internal/api"
	"github.com/jamroute/jamroute/internal/api/models"
	"github.com/jamroute/jamroute/internal/congestion"
	"github.com/jamroute/jamroute/internal/geo"
	"github.com/jamroute/jamroute/internal/pipeline"
	"github.com/jamroute/jamroute/internal/weather"
)

// stubEvaluator returns a fixed report or error.
type stubEvaluator struct {
	report *pipeline.Report
	err    error
}

func (s *stubEvaluator) Evaluate(context.Context, pipeline.Request) (*pipeline.Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func testRouterConfig() api.RouterConfig {
	level := congestion.LevelClear
	report := &pipeline.Report{
		Status:      pipeline.StatusOK,
		Message:     "No known bottlenecks near this route - expect normal travel time",
		Level:       &level,
		Weather:     weather.DefaultSnapshot(),
		GeneratedAt: time.Now(),
	}
	return api.RouterConfig{
		Version:   "test",
		BuildTime: "now",
		Logger:    zerolog.Nop(),
		Evaluator: &stubEvaluator{report: report},
		Ready:     func() bool { return true },
		Bottlenecks: []geo.Bottleneck{
			{ID: "CMS_Junction", Location: geo.Coordinate{Lat: 6.4500, Lon: 3.4000}},
		},
	}
}

func TestRouter_Health(t *testing.T) {
	router := api.NewRouter(testRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRouter_Ready(t *testing.T) {
	cfg := testRouterConfig()
	cfg.Ready = func() bool { return false }
	router := api.NewRouter(cfg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_Bottlenecks(t *testing.T) {
	router := api.NewRouter(testRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/metadata/bottlenecks", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var list models.BottleneckList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "CMS_Junction", list.Items[0].ID)
}

func TestRouter_Enums(t *testing.T) {
	router := api.NewRouter(testRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/metadata/enums", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Evaluate(t *testing.T) {
	router := api.NewRouter(testRouterConfig())

	body := `{"start":"9.07,7.39","end":"9.08,7.40"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/congestion:evaluate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report models.CongestionReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "ok", report.Status)
}

func TestRouter_EvaluateRejectsNonJSON(t *testing.T) {
	router := api.NewRouter(testRouterConfig())

	req := httptest.NewRequest(http.MethodPost, "/v1/congestion:evaluate", strings.NewReader("start=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := api.NewRouter(testRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
