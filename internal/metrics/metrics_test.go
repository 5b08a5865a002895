package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics(t *testing.T) {
	m := New()
	m.Evaluations.WithLabelValues("Net Revenue", "NUMBER").Inc()
	m.Evaluations.WithLabelValues("Net Revenue", "NUMBER").Inc()
	m.Evaluations.WithLabelValues("Burn", "NO_VALUE").Inc()

	finished := time.Unix(1425081600, 0)
	m.ObserveRun(finished.Add(-2*time.Second), finished)

	body := scrape(t, m)
	assert.Contains(t, body, `recipes_evaluations_total{kind="NUMBER",recipe="Net Revenue"} 2`)
	assert.Contains(t, body, `recipes_evaluations_total{kind="NO_VALUE",recipe="Burn"} 1`)
	assert.Contains(t, body, "recipes_run_duration_seconds_count 1")
	assert.Contains(t, body, "recipes_last_run_timestamp_seconds 1.4250816e+09")
}
