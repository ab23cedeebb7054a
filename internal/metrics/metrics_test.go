package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestIncElectionEvent(t *testing.T) {
	Register()

	before := testutil.ToFloat64(electionEventTotal.WithLabelValues("election.launched"))
	IncElectionEvent("election.launched")
	IncElectionEvent("election.launched")

	assert.Equal(t, before+2, testutil.ToFloat64(electionEventTotal.WithLabelValues("election.launched")))
}

func TestIncRequest(t *testing.T) {
	Register()

	IncRequest("GET", "/health", 200)
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "200")))
}
