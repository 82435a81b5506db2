// Package metrics provides Prometheus metrics for the contacts client.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all remote API and address book metrics.
type Metrics struct {
	registry prometheus.Gatherer

	// Remote API
	RequestsTotal          *prometheus.CounterVec   // Requests by endpoint and outcome
	RequestDurationSeconds *prometheus.HistogramVec // Round trip latency by endpoint
	UploadBytesTotal       prometheus.Counter       // Bytes sent as profile images

	// Address book
	DeviceScansTotal   *prometheus.CounterVec // Number scans by result (complete, partial, denied)
	DeviceNumbersFound prometheus.Gauge       // Numbers seen by the last scan

	// Store
	ContactsLoaded prometheus.Gauge // Contacts in the last successful list
}

// New creates a Metrics instance registered on its own registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers every metric on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pbterm_api_requests_total",
			Help: "Total number of contacts API requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),

		RequestDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pbterm_api_request_duration_seconds",
			Help:    "Duration of contacts API requests by endpoint",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"endpoint"}),

		UploadBytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pbterm_api_upload_bytes_total",
			Help: "Total bytes of profile images uploaded",
		}),

		DeviceScansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pbterm_device_scans_total",
			Help: "Total number of address book scans by result",
		}, []string{"result"}),

		DeviceNumbersFound: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pbterm_device_numbers_found",
			Help: "Distinct phone numbers seen by the last address book scan",
		}),

		ContactsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pbterm_contacts_loaded",
			Help: "Number of contacts returned by the last successful list",
		}),
	}
}

// ObserveRequest records one API call.
func (m *Metrics) ObserveRequest(endpoint string, err error, durationSeconds float64) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.RequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.RequestDurationSeconds.WithLabelValues(endpoint).Observe(durationSeconds)
}

func (m *Metrics) AddUploadBytes(n int) {
	if m == nil {
		return
	}
	m.UploadBytesTotal.Add(float64(n))
}

// RecordScan records an address book scan result and, when the scan finished,
// how many numbers it saw.
func (m *Metrics) RecordScan(result string, found int) {
	if m == nil {
		return
	}
	m.DeviceScansTotal.WithLabelValues(result).Inc()
	if result == ScanComplete {
		m.DeviceNumbersFound.Set(float64(found))
	}
}

func (m *Metrics) SetContactsLoaded(n int) {
	if m == nil {
		return
	}
	m.ContactsLoaded.Set(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Scan results.
const (
	ScanComplete = "complete"
	ScanPartial  = "partial"
	ScanDenied   = "denied"
)
