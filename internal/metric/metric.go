// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metric holds the Prometheus metrics for index builds and queries.
// A nil *Metrics is valid and records nothing.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "skos_index"

// Metrics groups every collector the indexer exposes.
type Metrics struct {
	BuildDuration   prometheus.Histogram
	ConceptsIndexed prometheus.Gauge
	Entailed        prometheus.Counter
	Anomalies       *prometheus.CounterVec
	Queries         *prometheus.CounterVec
	NotFound        *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "duration_seconds",
			Help:      "Index build duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		ConceptsIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "concepts",
			Help:      "Number of concept records in the open index",
		}),
		Entailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "entailed_total",
			Help:      "Concept type triples added by entailment",
		}),
		Anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "anomalies_total",
			Help:      "Items skipped while building records",
		}, []string{"kind"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "total",
			Help:      "Queries answered by operation",
		}, []string{"operation"}),
		NotFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "not_found_total",
			Help:      "Concept lookups that found no record",
		}, []string{"operation"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.BuildDuration, m.ConceptsIndexed, m.Entailed,
			m.Anomalies, m.Queries, m.NotFound,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// RecordBuild records a finished build.
func (m *Metrics) RecordBuild(d time.Duration, concepts, entailed int, anomalies map[string]int) {
	if m == nil {
		return
	}
	m.BuildDuration.Observe(d.Seconds())
	m.ConceptsIndexed.Set(float64(concepts))
	m.Entailed.Add(float64(entailed))
	for kind, n := range anomalies {
		m.Anomalies.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordOpen records the size of an index opened without building.
func (m *Metrics) RecordOpen(concepts int) {
	if m == nil {
		return
	}
	m.ConceptsIndexed.Set(float64(concepts))
}

// RecordQuery counts one query.
func (m *Metrics) RecordQuery(operation string) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues(operation).Inc()
}

// RecordNotFound counts a lookup of an unknown concept.
func (m *Metrics) RecordNotFound(operation string) {
	if m == nil {
		return
	}
	m.NotFound.WithLabelValues(operation).Inc()
}
