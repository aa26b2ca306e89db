// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics holds the Prometheus collectors for orchestration runs.
// The CLI is short-lived, so collectors are exported to a node-exporter
// textfile rather than served over HTTP.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Run metrics
	RunsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "research_assistant_runs_started_total",
			Help: "Total number of orchestration runs started",
		},
	)

	RunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_assistant_runs_completed_total",
			Help: "Total number of orchestration runs completed",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "research_assistant_run_duration_seconds",
			Help:    "Orchestration run duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// Agent metrics
	AgentOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_assistant_agent_outcomes_total",
			Help: "Agent outcomes by agent and state",
		},
		[]string{"agent", "state"},
	)

	AgentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "research_assistant_agent_duration_seconds",
			Help:    "Agent execution duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"agent"},
	)

	// Retrieval metrics
	RecordsRetrieved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_assistant_records_retrieved_total",
			Help: "Records returned by the paper index and dataset catalog",
		},
		[]string{"source"},
	)
)

// RecordAgent records one agent outcome. Agents that did not run carry a
// zero duration and are not observed in the histogram.
func RecordAgent(agent, state string, d time.Duration) {
	AgentOutcomes.WithLabelValues(agent, state).Inc()
	if d > 0 {
		AgentDuration.WithLabelValues(agent).Observe(d.Seconds())
	}
}

// RecordRun records the end of a run.
func RecordRun(status string, d time.Duration) {
	RunsCompleted.WithLabelValues(status).Inc()
	RunDuration.Observe(d.Seconds())
}

// WriteTextfile writes every registered collector to path in the
// Prometheus text exposition format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
