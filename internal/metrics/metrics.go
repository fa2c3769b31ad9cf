// Package metrics exposes Prometheus instrumentation for the assistant pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the pipeline collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	orchestrations *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
}

// NewRecorder creates the collectors and registers them on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		orchestrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walkmate",
			Name:      "orchestrations_total",
			Help:      "Assistant orchestrations by resolved intent and response status.",
		}, []string{"intent", "status"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "walkmate",
			Name:      "stage_duration_seconds",
			Help:      "Latency of each orchestration stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
	}
	reg.MustRegister(r.orchestrations, r.stageDuration)
	return r
}

// ObserveOutcome counts one finished orchestration.
func (r *Recorder) ObserveOutcome(intent, status string) {
	if r == nil {
		return
	}
	if intent == "" {
		intent = "none"
	}
	r.orchestrations.WithLabelValues(intent, status).Inc()
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
