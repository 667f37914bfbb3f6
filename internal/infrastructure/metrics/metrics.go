// Package metrics records underwriting and collaborator metrics in Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/nikhilpunky/manaja2/internal/domain/valueobject"
)

// Metrics holds the lending service collectors. It implements
// port.DecisionMetrics and cache.LookupRecorder.
type Metrics struct {
	decisions        *prometheus.CounterVec
	riskScores       *prometheus.HistogramVec
	collaboratorTime *prometheus.HistogramVec
	collaboratorErrs *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	rpcDuration      *prometheus.HistogramVec
}

// New registers the lending collectors in reg. Each registry can hold only
// one Metrics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_underwriting_decisions_total",
				Help: "Underwriting decisions by risk category and outcome.",
			},
			[]string{"risk_category", "approved"},
		),
		riskScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lending_risk_score",
				Help:    "Distribution of composite risk scores.",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
			[]string{"risk_category"},
		),
		collaboratorTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lending_collaborator_call_duration_seconds",
				Help:    "Duration of calls to external collaborators.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"collaborator"},
		),
		collaboratorErrs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_collaborator_errors_total",
				Help: "Failed calls to external collaborators.",
			},
			[]string{"collaborator"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_cache_lookups_total",
				Help: "Cache lookups by cache and result.",
			},
			[]string{"cache", "result"},
		),
		rpcDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lending_rpc_duration_seconds",
				Help:    "Duration of gRPC calls by method and status code.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "code"},
		),
	}
}

// RecordDecision counts an underwriting decision and observes its score.
func (m *Metrics) RecordDecision(category valueobject.RiskCategory, approved bool, riskScore decimal.Decimal) {
	m.decisions.WithLabelValues(category.String(), strconv.FormatBool(approved)).Inc()
	m.riskScores.WithLabelValues(category.String()).Observe(riskScore.InexactFloat64())
}

// RecordCollaboratorCall observes a collaborator call and counts failures.
func (m *Metrics) RecordCollaboratorCall(collaborator string, d time.Duration, err error) {
	m.collaboratorTime.WithLabelValues(collaborator).Observe(d.Seconds())
	if err != nil {
		m.collaboratorErrs.WithLabelValues(collaborator).Inc()
	}
}

// RecordCacheLookup counts a cache hit or miss.
func (m *Metrics) RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

// RecordRPC observes a completed gRPC call.
func (m *Metrics) RecordRPC(method, code string, d time.Duration) {
	m.rpcDuration.WithLabelValues(method, code).Observe(d.Seconds())
}
