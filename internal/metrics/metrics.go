// Package metrics exposes Prometheus metrics for orchestration runs and
// reasoning calls.
package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/moolen/fitaura/internal/agent"
	"github.com/moolen/fitaura/internal/orchestrator"
)

// Metrics holds every collector. It implements orchestrator.Observer and
// reasoning.Recorder.
type Metrics struct {
	RunsTotal         *prometheus.CounterVec   // Completed runs by termination
	RunFailuresTotal  prometheus.Counter       // Runs that returned an error
	RunsInFlight      prometheus.Gauge         // Runs currently executing
	RunDuration       *prometheus.HistogramVec // Run wall time by outcome
	IntentTotal       *prometheus.CounterVec   // Intent gate results
	DecisionsTotal    *prometheus.CounterVec   // Supervisor decisions by agent
	AgentRunsTotal    *prometheus.CounterVec   // Specialist invocations
	AgentDuration     *prometheus.HistogramVec // Specialist latency
	ReasoningTotal    *prometheus.CounterVec   // Reasoning calls by backend and outcome
	ReasoningDuration *prometheus.HistogramVec // Reasoning latency by backend
	AgentsPerRun      prometheus.Histogram     // Distinct specialists per run
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitaura_runs_total",
			Help: "Completed orchestration runs by termination reason",
		}, []string{"termination"}),
		RunFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fitaura_run_failures_total",
			Help: "Orchestration runs that ended with an error",
		}),
		RunsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fitaura_runs_in_flight",
			Help: "Orchestration runs currently executing",
		}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fitaura_run_duration_seconds",
			Help:    "Wall time of orchestration runs",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
		}, []string{"outcome"}),
		IntentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitaura_intent_classifications_total",
			Help: "Intent gate results",
		}, []string{"in_domain"}),
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitaura_supervisor_decisions_total",
			Help: "Supervisor decisions by chosen agent",
		}, []string{"agent"}),
		AgentRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitaura_agent_invocations_total",
			Help: "Specialist agent invocations",
		}, []string{"agent"}),
		AgentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fitaura_agent_duration_seconds",
			Help:    "Specialist agent latency",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9),
		}, []string{"agent"}),
		ReasoningTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitaura_reasoning_requests_total",
			Help: "Reasoning backend calls by outcome",
		}, []string{"backend", "outcome"}),
		ReasoningDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fitaura_reasoning_duration_seconds",
			Help:    "Reasoning backend latency",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9),
		}, []string{"backend"}),
		AgentsPerRun: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fitaura_agents_per_run",
			Help:    "Distinct specialists invoked per in-domain run",
			Buckets: []float64{0, 1, 2, 3, 4},
		}),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.RunFailuresTotal,
		m.RunsInFlight,
		m.RunDuration,
		m.IntentTotal,
		m.DecisionsTotal,
		m.AgentRunsTotal,
		m.AgentDuration,
		m.ReasoningTotal,
		m.ReasoningDuration,
		m.AgentsPerRun,
	)
	return m
}

// OnEvent implements orchestrator.Observer.
func (m *Metrics) OnEvent(_ context.Context, ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventRunStarted:
		m.RunsInFlight.Inc()
	case orchestrator.EventIntentClassified:
		m.IntentTotal.WithLabelValues(strconv.FormatBool(ev.InDomain)).Inc()
	case orchestrator.EventSupervisorDecision:
		m.DecisionsTotal.WithLabelValues(agentLabel(ev.Agent)).Inc()
	case orchestrator.EventAgentCompleted:
		m.AgentRunsTotal.WithLabelValues(ev.Agent.String()).Inc()
		m.AgentDuration.WithLabelValues(ev.Agent.String()).Observe(ev.Duration.Seconds())
	case orchestrator.EventRunCompleted:
		m.RunsInFlight.Dec()
		m.RunsTotal.WithLabelValues(string(ev.Termination)).Inc()
		m.RunDuration.WithLabelValues("success").Observe(ev.Duration.Seconds())
		if ev.InDomain {
			m.AgentsPerRun.Observe(float64(len(ev.AgentsUsed)))
		}
	case orchestrator.EventRunFailed:
		m.RunsInFlight.Dec()
		m.RunFailuresTotal.Inc()
		m.RunDuration.WithLabelValues("error").Observe(ev.Duration.Seconds())
	}
}

// ObserveCompletion implements reasoning.Recorder.
func (m *Metrics) ObserveCompletion(backend string, d time.Duration, err error) {
	m.ReasoningTotal.WithLabelValues(backend, outcome(err)).Inc()
	m.ReasoningDuration.WithLabelValues(backend).Observe(d.Seconds())
}

func agentLabel(id agent.AgentID) string {
	if id == agent.Unknown {
		return "unknown"
	}
	return id.String()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
