package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal  *prometheus.CounterVec
	electionEventTotal *prometheus.CounterVec
	registerOnce       sync.Once
)

// Register initializes the collectors on the default registry. Calling it
// more than once is a no-op.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "election_admin",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the election admin server.",
		}, []string{"method", "path", "status"})

		electionEventTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "election_admin",
			Name:      "election_events_total",
			Help:      "Committed election changes, by event type.",
		}, []string{"type"})
	})
}

func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func IncElectionEvent(eventType string) {
	if electionEventTotal == nil {
		return
	}
	electionEventTotal.WithLabelValues(eventType).Inc()
}
