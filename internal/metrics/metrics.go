package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "accounts"

// Metrics holds the collectors for one registry. Tests build their own with
// a fresh registry.
type Metrics struct {
	AuthTotal           *prometheus.CounterVec
	FollowTogglesTotal  *prometheus.CounterVec
	FollowEventsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_total",
			Help:      "Register, login and logout outcomes.",
		}, []string{"op", "result"}),
		FollowTogglesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "follow_toggles_total",
			Help:      "Follow toggles by resulting action.",
		}, []string{"action"}),
		FollowEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "follow_events_consumed_total",
			Help:      "Follow events consumed from the broker.",
		}, []string{"type"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.AuthTotal, m.FollowTogglesTotal, m.FollowEventsTotal, m.HTTPRequestDuration)
	return m
}

func (m *Metrics) ObserveAuth(op, result string) {
	if m == nil {
		return
	}
	m.AuthTotal.WithLabelValues(op, result).Inc()
}

func (m *Metrics) ObserveToggle(action string) {
	if m == nil {
		return
	}
	m.FollowTogglesTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveFollowEvent(eventType string) {
	if m == nil {
		return
	}
	m.FollowEventsTotal.WithLabelValues(eventType).Inc()
}
