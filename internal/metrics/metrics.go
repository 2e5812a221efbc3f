// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics holds the Prometheus collectors of one crawl. Every
// method is safe on a nil *Recorder, which records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns a private registry so repeated runs in one process (and
// tests) never collide on the default registry.
type Recorder struct {
	registry *prometheus.Registry

	records       *prometheus.CounterVec
	conferences   *prometheus.CounterVec
	remoteCalls   *prometheus.CounterVec
	remoteLatency *prometheus.HistogramVec
}

// New registers the harvester collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_records_total",
				Help: "Records processed, labeled by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		conferences: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_conferences_total",
				Help: "Conferences visited, labeled by status.",
			},
			[]string{"status"},
		),
		remoteCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_remote_calls_total",
				Help: "Remote API calls, labeled by operation and status.",
			},
			[]string{"op", "status"},
		),
		remoteLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "harvester_remote_call_duration_seconds",
				Help:    "Remote API call latency, labeled by operation.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"op"},
		),
	}
	r.registry.MustRegister(r.records, r.conferences, r.remoteCalls, r.remoteLatency)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Record counts one processed record.
func (r *Recorder) Record(kind, outcome string) {
	if r == nil {
		return
	}
	r.records.WithLabelValues(kind, outcome).Inc()
}

// Conference counts one visited conference.
func (r *Recorder) Conference(status string) {
	if r == nil {
		return
	}
	r.conferences.WithLabelValues(status).Inc()
}

// RemoteCall counts one remote call and observes its latency. A nil err
// is labeled "ok".
func (r *Recorder) RemoteCall(op string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.remoteCalls.WithLabelValues(op, status).Inc()
	r.remoteLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// RecordsCounter returns the records counter for tests and reporting.
func (r *Recorder) RecordsCounter() *prometheus.CounterVec {
	if r == nil {
		return nil
	}
	return r.records
}

// RemoteCallsCounter returns the remote call counter.
func (r *Recorder) RemoteCallsCounter() *prometheus.CounterVec {
	if r == nil {
		return nil
	}
	return r.remoteCalls
}

// ConferencesCounter returns the conference counter.
func (r *Recorder) ConferencesCounter() *prometheus.CounterVec {
	if r == nil {
		return nil
	}
	return r.conferences
}

// WriteTextfile writes every collector in Prometheus text format to path,
// atomically, for the node-exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
