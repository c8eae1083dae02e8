package signupform

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pthm/signupform/form"
)

// OutcomeConflict labels submits rejected because another one was in flight.
const OutcomeConflict = "conflict"

// Metrics records submit outcomes and signup API latency. A nil *Metrics
// records nothing.
type Metrics struct {
	submissions *prometheus.CounterVec
	apiDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signupform",
			Name:      "submissions_total",
			Help:      "Signup form submits by outcome.",
		}, []string{"outcome"}),
		apiDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "signupform",
			Name:      "api_request_duration_seconds",
			Help:      "Latency of signup API requests.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.submissions, m.apiDuration)
	return m
}

// ObserveOutcome counts one submit.
func (m *Metrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// Instrument wraps next so every API call is timed.
func (m *Metrics) Instrument(next form.Submitter) form.Submitter {
	if m == nil {
		return next
	}
	return &timedSubmitter{next: next, hist: m.apiDuration}
}

type timedSubmitter struct {
	next form.Submitter
	hist prometheus.Histogram
}

func (t *timedSubmitter) Submit(ctx context.Context, s form.State) (form.Response, error) {
	start := time.Now()
	resp, err := t.next.Submit(ctx, s)
	t.hist.Observe(time.Since(start).Seconds())
	return resp, err
}
