package vesting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initializeTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agt_vesting_initialize_total",
			Help: "Number of successful one-shot initializations (at most one per store)",
		},
	)

	releasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agt_vesting_releases_total",
			Help: "Release operations by target and outcome",
		},
		[]string{"target", "result"},
	)

	tokensReleasedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agt_vesting_tokens_released_total",
			Help: "Cumulative token amount released per target",
		},
		[]string{"target"},
	)
)

const (
	resultReleased = "released"
	resultNoop     = "noop"
)

// Counters increment inside the transaction body, before the host commits. A
// commit failure after the engine returns can overstate them; the state
// records stay authoritative.

func recordRelease(target string, amount uint64) {
	if amount == 0 {
		releasesTotal.WithLabelValues(target, resultNoop).Inc()
		return
	}
	releasesTotal.WithLabelValues(target, resultReleased).Inc()
	tokensReleasedTotal.WithLabelValues(target).Add(float64(amount))
}
