package metrics

import "time"

// Sink defines the interface for recording scheduler metrics.
// All methods are fire-and-forget: implementations MUST NOT block or propagate errors.
type Sink interface {
	// Scheduler cycle metrics
	CycleStarted()
	CycleSkipped()
	CycleCompleted(duration time.Duration, rulesFired int)

	// Firing metrics
	RuleFired(rule string)
	DeliveryOutcome(outcome string)
	RecordOutcome(outcome string)
}
