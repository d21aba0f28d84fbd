package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics counts bulk import outcomes and geocoder latency. A nil
// *ImportMetrics records nothing.
type ImportMetrics struct {
	importTotal     *prometheus.CounterVec
	importDuration  *prometheus.HistogramVec
	geocodeDuration *prometheus.HistogramVec
}

func NewImportMetrics(registry *prometheus.Registry, serviceName string) *ImportMetrics {
	if registry == nil {
		registry = NewMetricsRegistry()
	}

	constLabels := prometheus.Labels{}
	if serviceName != "" {
		constLabels["service"] = serviceName
	}

	importTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   "directory",
		Subsystem:   "bulk_import",
		Name:        "rows_total",
		Help:        "Total bulk import rows by result and error kind.",
		ConstLabels: constLabels,
	}, []string{"result", "reason"})

	importDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   "directory",
		Subsystem:   "bulk_import",
		Name:        "duration_seconds",
		Help:        "Bulk import row duration in seconds, geocoding included.",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: constLabels,
	}, []string{"result"})

	geocodeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   "directory",
		Subsystem:   "geocoder",
		Name:        "request_duration_seconds",
		Help:        "Geocoder call duration in seconds.",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: constLabels,
	}, []string{"result"})

	registry.MustRegister(importTotal, importDuration, geocodeDuration)

	return &ImportMetrics{
		importTotal:     importTotal,
		importDuration:  importDuration,
		geocodeDuration: geocodeDuration,
	}
}

// ObserveImport records one row. reason is empty on success.
func (m *ImportMetrics) ObserveImport(result, reason string, duration time.Duration) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	m.importTotal.WithLabelValues(result, reason).Inc()
	m.importDuration.WithLabelValues(result).Observe(duration.Seconds())
}

func (m *ImportMetrics) ObserveGeocode(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.geocodeDuration.WithLabelValues(result).Observe(duration.Seconds())
}
