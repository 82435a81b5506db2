package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest("list", nil, 0.2)
	m.ObserveRequest("list", errors.New("boom"), 0.1)
	m.ObserveRequest("delete", nil, 0.05)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("list", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("list", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("delete", "ok")))
}

func TestRecordScanOnlySetsGaugeWhenComplete(t *testing.T) {
	m := New()

	m.RecordScan(ScanComplete, 12)
	m.RecordScan(ScanPartial, 3)

	assert.Equal(t, 12.0, testutil.ToFloat64(m.DeviceNumbersFound))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeviceScansTotal.WithLabelValues(ScanPartial)))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("list", nil, 1)
		m.AddUploadBytes(10)
		m.RecordScan(ScanDenied, 0)
		m.SetContactsLoaded(3)
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.SetContactsLoaded(7)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pbterm_contacts_loaded 7")
}
