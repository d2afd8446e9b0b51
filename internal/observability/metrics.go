// Package observability exposes Prometheus metrics for the pollers and the
// HTTP surface.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yidino-api/pkg/market"
	"yidino-api/pkg/poller"
)

const defaultNamespace = "yidino"

var _ poller.Observer = (*Metrics)(nil)

// Metrics holds every collector of the service.
type Metrics struct {
	registry *prometheus.Registry

	// Poll metrics
	PollCycles        *prometheus.CounterVec
	PollDuration      *prometheus.HistogramVec
	LastSuccess       *prometheus.GaugeVec
	SourcesAnswered   *prometheus.GaugeVec
	SnapshotPrice     *prometheus.GaugeVec
	SnapshotLiquidity *prometheus.GaugeVec

	// Feature metrics
	WalletLookups *prometheus.CounterVec
	StreamClients prometheus.Gauge
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		PollCycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "cycles_total",
			Help:      "Completed poll cycles by poller and result",
		}, []string{"poller", "result"}),
		PollDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a poll cycle fan-out",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"poller"}),
		LastSuccess: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "last_success_timestamp",
			Help:      "Unix timestamp of the last successful cycle",
		}, []string{"poller"}),
		SourcesAnswered: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "sources_answered",
			Help:      "Number of upstream sources that contributed to the last snapshot",
		}, []string{"poller"}),
		SnapshotPrice: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "price_usd",
			Help:      "Token price of the last snapshot",
		}, []string{"poller"}),
		SnapshotLiquidity: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "liquidity_usd",
			Help:      "Pool liquidity of the last snapshot",
		}, []string{"poller"}),

		WalletLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "lookups_total",
			Help:      "Wallet report lookups by result",
		}, []string{"result"}),
		StreamClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Connected stats stream clients",
		}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePoll records the outcome of one cycle.
func (m *Metrics) ObservePoll(name string, duration time.Duration, snap *market.Snapshot, err error) {
	m.PollDuration.WithLabelValues(name).Observe(duration.Seconds())
	if err != nil {
		m.PollCycles.WithLabelValues(name, "error").Inc()
		return
	}
	m.PollCycles.WithLabelValues(name, "ok").Inc()
	m.LastSuccess.WithLabelValues(name).SetToCurrentTime()
	if snap == nil {
		return
	}
	m.SourcesAnswered.WithLabelValues(name).Set(float64(len(snap.Sources)))
	m.SnapshotPrice.WithLabelValues(name).Set(snap.Price)
	m.SnapshotLiquidity.WithLabelValues(name).Set(snap.Liquidity)
}

// RecordWalletLookup counts a lookup: ok, mock, invalid or error.
func (m *Metrics) RecordWalletLookup(result string) {
	m.WalletLookups.WithLabelValues(result).Inc()
}
