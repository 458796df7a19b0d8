// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/billminder/internal/alerts"
	"github.com/mmynk/billminder/internal/models"
)

const namespace = "billminder"

// Metrics holds every collector. It implements bills.Observer and
// alerts.Observer.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	bills       *prometheus.GaugeVec
	alerts      *prometheus.GaugeVec
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Connect RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Connect RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_transitions_total",
			Help:      "Persisted bill status changes.",
		}, []string{"from", "to"}),
		bills: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bills",
			Help:      "Bills currently stored, by status.",
		}, []string{"status"}),
		alerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alerts",
			Help:      "Alerts produced by the last classification, by tier.",
		}, []string{"tier"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcRequests,
		m.rpcDuration,
		m.transitions,
		m.bills,
		m.alerts,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRPC records one finished RPC.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

func (m *Metrics) BillTransition(from, to models.Status) {
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) BillCounts(counts map[models.Status]int) {
	for status, n := range counts {
		m.bills.WithLabelValues(string(status)).Set(float64(n))
	}
}

func (m *Metrics) AlertCounts(counts map[alerts.Tier]int) {
	for tier, n := range counts {
		m.alerts.WithLabelValues(string(tier)).Set(float64(n))
	}
}
