package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "overwatch"
	subsystem = "telegram_bot"
)

var (
	// UpstreamRequests counts armory requests by endpoint and outcome.
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_requests",
			Help:      "The total number of requests issued to the armory API",
		},
		[]string{"endpoint", "outcome"},
	)

	// CacheLookups counts leaderboard cache lookups by result (hit or miss).
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "leaderboard_cache_lookups",
			Help:      "The total number of leaderboard cache lookups",
		},
		[]string{"result"},
	)

	// CommandDuration observes how long rendering a command reply took.
	CommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "command_duration_seconds",
			Help:      "The duration of command processing",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"command"},
	)
)

func init() {
	prometheus.MustRegister(UpstreamRequests)
	prometheus.MustRegister(CacheLookups)
	prometheus.MustRegister(CommandDuration)
}
