package metrics

import "time"

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) CycleStarted()                                         {}
func (n *NoopSink) CycleSkipped()                                         {}
func (n *NoopSink) CycleCompleted(duration time.Duration, rulesFired int) {}
func (n *NoopSink) RuleFired(rule string)                                 {}
func (n *NoopSink) DeliveryOutcome(outcome string)                        {}
func (n *NoopSink) RecordOutcome(outcome string)                          {}
