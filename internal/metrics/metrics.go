package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legalnest_submissions_total",
			Help: "Form submissions by kind and outcome",
		},
		[]string{"kind", "outcome"}, // contact|enquiry , stored|invalid|failed
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legalnest_notifications_total",
			Help: "Notification attempts by kind and outcome",
		},
		[]string{"kind", "outcome"}, // delivered|skipped|failed|dropped|queued
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "legalnest_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		SubmissionsTotal,
		NotificationsTotal,
		RateLimitedTotal,
	)
}
