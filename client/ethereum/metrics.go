package ethereum

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	updatesApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ethereum_client_updates_applied_total",
		Help: "Count of headers that changed the client state.",
	})
	messagesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethereum_client_messages_rejected_total",
			Help: "Count of client messages that failed verification.",
		},
		[]string{"type"},
	)
	committeeRotations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ethereum_client_sync_committee_rotations_total",
		Help: "Count of sync committee rotations.",
	})
	misbehaviourDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ethereum_client_misbehaviour_total",
		Help: "Count of clients frozen for misbehaviour.",
	})
	membershipVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethereum_client_membership_verifications_total",
			Help: "Count of membership and non-membership verifications.",
		},
		[]string{"kind", "result"},
	)
)

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
