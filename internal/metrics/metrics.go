package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the storefront's Prometheus counters. Methods are safe on a nil receiver.
type Metrics struct {
	entitlementResolutions *prometheus.CounterVec
	downloadRequests       *prometheus.CounterVec
	auditFailures          prometheus.Counter
}

// New builds the counters and registers them on reg (skipped when reg is nil).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		entitlementResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Name:      "entitlement_resolutions_total",
				Help:      "Entitlement resolutions by where the answer came from (remote, cache, none)",
			},
			[]string{"source"},
		),
		downloadRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Name:      "download_requests_total",
				Help:      "Download location requests by outcome",
			},
			[]string{"outcome"},
		),
		auditFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Name:      "download_audit_failures_total",
				Help:      "Download audit rows that could not be written",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.entitlementResolutions, m.downloadRequests, m.auditFailures)
	}
	return m
}

func (m *Metrics) ObserveResolution(source string) {
	if m == nil {
		return
	}
	m.entitlementResolutions.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveDownload(outcome string) {
	if m == nil {
		return
	}
	m.downloadRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAuditFailure() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}

// Resolutions exposes the resolution counter for tests.
func (m *Metrics) Resolutions() *prometheus.CounterVec { return m.entitlementResolutions }

// Downloads exposes the download counter for tests.
func (m *Metrics) Downloads() *prometheus.CounterVec { return m.downloadRequests }
