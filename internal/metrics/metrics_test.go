package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodPost, "/api/rooms/analyze", 200, 15*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/api/rooms/analyze", 200, 5*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", 404, time.Millisecond)
	m.ObserveAnalysis("analyze_room")
	m.ObserveImport("frd", ResultOK)
	m.ObserveImport("", ResultRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodPost, "/api/rooms/analyze", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "unmatched", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analyses.WithLabelValues("analyze_room")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.imports.WithLabelValues("frd", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.imports.WithLabelValues("unknown", ResultRejected)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest(http.MethodGet, "/health", 200, time.Millisecond)
		m.ObserveAnalysis("quick_analysis")
		m.ObserveImport("txt", ResultOK)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveAnalysis("design_panel")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `roomtreat_analyses_total{operation="design_panel"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
