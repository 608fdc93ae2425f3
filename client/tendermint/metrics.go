package tendermint

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	updatesApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tendermint_client_updates_applied_total",
		Help: "Count of headers that added a consensus state.",
	})
	messagesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tendermint_client_messages_rejected_total",
			Help: "Count of client messages that failed verification.",
		},
		[]string{"type"},
	)
	consensusStatesPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tendermint_client_consensus_states_pruned_total",
		Help: "Count of expired consensus states removed.",
	})
	misbehaviourDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tendermint_client_misbehaviour_total",
		Help: "Count of clients frozen for misbehaviour.",
	})
	membershipVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tendermint_client_membership_verifications_total",
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
