package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpliftTransitions counts lifecycle transitions by outcome
	UpliftTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_uplift_transitions_total",
		Help: "Application lifecycle transitions by target state and outcome",
	}, []string{"to_state", "outcome"})

	// SubscriptionEvents counts subscription mutations
	SubscriptionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_subscription_events_total",
		Help: "Subscription create/remove operations by outcome",
	}, []string{"operation", "outcome"})

	// EventPublishFailures counts dropped best-effort platform events
	EventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "devhub_event_publish_failures_total",
		Help: "Platform events that could not be delivered",
	})
)
