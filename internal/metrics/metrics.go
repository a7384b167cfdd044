package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal *prometheus.CounterVec
	voteEventsTotal   *prometheus.CounterVec
	togglesTotal      *prometheus.CounterVec
	registerOnce      sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inquiry",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the inquiry API.",
		}, []string{"method", "path", "status"})
		voteEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inquiry",
			Name:      "vote_events_total",
			Help:      "Vote record changes processed by the event worker.",
		}, []string{"kind"})
		togglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inquiry",
			Subsystem: "support",
			Name:      "toggles_total",
			Help:      "Optimistic support operations by mode, backend call and outcome.",
		}, []string{"mode", "op", "outcome"})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func IncVoteEvent(kind string) {
	if voteEventsTotal == nil {
		return
	}
	voteEventsTotal.WithLabelValues(kind).Inc()
}

// IncToggle counts a finished support operation. outcome is one of committed,
// rolled_back or canceled.
func IncToggle(mode, op, outcome string) {
	if togglesTotal == nil {
		return
	}
	togglesTotal.WithLabelValues(mode, op, outcome).Inc()
}
