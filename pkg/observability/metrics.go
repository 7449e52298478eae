package observability

import (
	"context"
	"time"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Toybox collectors.
type Metrics struct {
	SessionsOpened    prometheus.Counter
	SessionsCommitted prometheus.Counter
	SessionsDiscarded prometheus.Counter
	SessionDuration   prometheus.Histogram
	EngineCalls       *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		SessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "toybox_sessions_opened_total",
			Help: "Total number of sessions opened",
		}),
		SessionsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "toybox_sessions_committed_total",
			Help: "Total number of sessions that wrote state back",
		}),
		SessionsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "toybox_sessions_discarded_total",
			Help: "Total number of sessions discarded without writing",
		}),
		SessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "toybox_session_duration_seconds",
			Help:    "Time from session open to close or discard",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		EngineCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "toybox_engine_call_duration_seconds",
			Help:    "Duration of engine calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "outcome"}),
	}
	reg.MustRegister(m.SessionsOpened, m.SessionsCommitted, m.SessionsDiscarded, m.SessionDuration, m.EngineCalls)
	return m
}

// Hooks returns session hooks feeding the session collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOpen: func(context.Context, *domain.SessionEvent) {
			m.SessionsOpened.Inc()
		},
		OnCommit: func(context.Context, *domain.CommitEvent) {
			m.SessionsCommitted.Inc()
		},
		OnDiscard: func(_ context.Context, e *domain.SessionEvent) {
			m.SessionsDiscarded.Inc()
			m.SessionDuration.Observe(e.Duration.Seconds())
		},
		OnClose: func(_ context.Context, e *domain.SessionEvent) {
			m.SessionDuration.Observe(e.Duration.Seconds())
		},
	}
}

// ObserveEngineCall records one engine call.
func (m *Metrics) ObserveEngineCall(op string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.EngineCalls.WithLabelValues(op, outcome).Observe(d.Seconds())
}
