package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "wifibridge"

// Metrics holds the bridge collectors.
type Metrics struct {
	// Requests counts handled requests by action and result code
	Requests *prometheus.CounterVec
	// ScanDuration observes how long a scan takes from trigger to delivery
	ScanDuration prometheus.Histogram
	// ScanNetworks is the number of records returned by the last scan
	ScanNetworks prometheus.Gauge
	// Registrations counts networks added to the OS list
	Registrations prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of bridge requests",
			},
			[]string{"action", "result"},
		),
		ScanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scan_duration_seconds",
				Help:      "Time from scan trigger to result delivery",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),
		ScanNetworks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "scan_networks",
				Help:      "Number of networks returned by the last scan",
			},
		),
		Registrations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Total number of networks registered",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.ScanDuration, m.ScanNetworks, m.Registrations)
	}
	return m
}
