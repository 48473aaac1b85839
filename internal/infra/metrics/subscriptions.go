package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		subscriptionActivations,
		activationsSkipped,
	)
}

var (
	subscriptionActivations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_activations_total",
			Help: "Subscription activations by action (activate/renew).",
		},
		[]string{"action"},
	)

	activationsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_activations_skipped_total",
			Help: "Successful payments whose activation was skipped, by reason.",
		},
		[]string{"reason"},
	)
)

func IncSubscriptionActivation(action string) {
	subscriptionActivations.WithLabelValues(norm(action)).Inc()
}

func IncActivationSkipped(reason string) {
	activationsSkipped.WithLabelValues(norm(reason)).Inc()
}
