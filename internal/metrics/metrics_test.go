package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsLens/internal/domain"
)

func TestRecordOutcome(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordOutcome(domain.StatusScored)
	m.RecordOutcome(domain.StatusScored)
	m.RecordOutcome(domain.StatusFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.records.WithLabelValues(string(domain.StatusScored))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.records.WithLabelValues(string(domain.StatusFailed))))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.records.WithLabelValues(string(domain.StatusSkipped))))
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordIngest("The Hindu", "inserted")
	m.ObserveClassifier(1500 * time.Millisecond)
	m.MarkRun(time.Unix(120, 0))

	path := filepath.Join(t.TempDir(), "newslens.prom")
	require.NoError(t, m.WriteTextfile(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), `newslens_ingested_articles_total{publisher="The Hindu",result="inserted"} 1`)
	assert.Contains(t, string(body), "newslens_classifier_duration_seconds_count 1")
	assert.Contains(t, string(body), "newslens_last_run_timestamp_seconds 120")
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.RecordOutcome(domain.StatusScored)
	m.RecordIngest("x", "failed")
	m.ObserveClassifier(time.Second)
	m.MarkRun(time.Now())
	assert.NoError(t, m.WriteTextfile("/nonexistent/metrics.prom"))
	assert.Nil(t, m.Registry())
}
