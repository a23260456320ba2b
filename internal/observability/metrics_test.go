package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.RecordRow("success")
	m.RecordRow("success")
	m.RecordRow("error")
	m.RecordRun("completed")
	m.RecordRequest("/imports", "POST", 200, 15*time.Millisecond)
	m.RecordError("/imports", "POST", "SOURCE_UNREADABLE")

	require.Equal(t, float64(2), testutil.ToFloat64(m.rowTotal.WithLabelValues("success")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.rowTotal.WithLabelValues("error")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.runTotal.WithLabelValues("completed")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.requestTotal.WithLabelValues("/imports", "POST", "200")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.errorTotal.WithLabelValues("/imports", "POST", "SOURCE_UNREADABLE")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RecordRow("success")
		m.RecordRun("aborted")
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
	})
	require.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordRow("skipped")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Equal(t, 200, rec.Code)
	require.Contains(t, string(body), `ticket_import_rows_total{outcome="skipped"} 1`)
}
