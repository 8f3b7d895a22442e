package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// PrometheusSink implements Sink using Prometheus client library.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	log zerolog.Logger

	cyclesTotal        prometheus.Counter
	cyclesSkippedTotal prometheus.Counter
	cycleDuration      prometheus.Histogram

	rulesFiredTotal       *prometheus.CounterVec
	deliveryOutcomesTotal *prometheus.CounterVec
	recordOutcomesTotal   *prometheus.CounterVec
}

// NewPrometheusSink creates a new Prometheus metrics sink registered on reg.
func NewPrometheusSink(reg prometheus.Registerer, log zerolog.Logger) *PrometheusSink {
	s := &PrometheusSink{log: log}
	s.initCycleMetrics(reg)
	s.initFiringMetrics(reg)
	return s
}

func (s *PrometheusSink) initCycleMetrics(reg prometheus.Registerer) {
	s.cyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkin_scheduler_cycles_total",
		Help: "Total number of scheduler wake cycles.",
	})
	s.cyclesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkin_scheduler_cycles_skipped_total",
		Help: "Cycles skipped because the minute was already evaluated.",
	})
	s.cycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkin_scheduler_cycle_duration_seconds",
		Help:    "Duration of each evaluated cycle in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	s.cyclesTotal = s.register(reg, s.cyclesTotal, "checkin_scheduler_cycles_total").(prometheus.Counter)
	s.cyclesSkippedTotal = s.register(reg, s.cyclesSkippedTotal, "checkin_scheduler_cycles_skipped_total").(prometheus.Counter)
	s.cycleDuration = s.register(reg, s.cycleDuration, "checkin_scheduler_cycle_duration_seconds").(prometheus.Histogram)
}

func (s *PrometheusSink) initFiringMetrics(reg prometheus.Registerer) {
	s.rulesFiredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkin_scheduler_rules_fired_total",
		Help: "Total number of rule firings.",
	}, []string{"rule"})
	s.deliveryOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkin_scheduler_delivery_outcomes_total",
		Help: "Notifier delivery outcomes.",
	}, []string{"outcome"})
	s.recordOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkin_scheduler_record_outcomes_total",
		Help: "Message log append outcomes.",
	}, []string{"outcome"})

	s.rulesFiredTotal = s.register(reg, s.rulesFiredTotal, "checkin_scheduler_rules_fired_total").(*prometheus.CounterVec)
	s.deliveryOutcomesTotal = s.register(reg, s.deliveryOutcomesTotal, "checkin_scheduler_delivery_outcomes_total").(*prometheus.CounterVec)
	s.recordOutcomesTotal = s.register(reg, s.recordOutcomesTotal, "checkin_scheduler_record_outcomes_total").(*prometheus.CounterVec)
}

// register registers c and returns the collector to use. When the same
// metric is already registered the existing collector is reused.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) prometheus.Collector {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		s.log.Warn().Err(err).Str("metric", name).Msg("metrics: failed to register")
	}
	return c
}

func (s *PrometheusSink) CycleStarted() {
	s.cyclesTotal.Inc()
}

func (s *PrometheusSink) CycleSkipped() {
	s.cyclesSkippedTotal.Inc()
}

func (s *PrometheusSink) CycleCompleted(duration time.Duration, rulesFired int) {
	s.cycleDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) RuleFired(rule string) {
	s.rulesFiredTotal.WithLabelValues(rule).Inc()
}

func (s *PrometheusSink) DeliveryOutcome(outcome string) {
	s.deliveryOutcomesTotal.WithLabelValues(outcome).Inc()
}

func (s *PrometheusSink) RecordOutcome(outcome string) {
	s.recordOutcomesTotal.WithLabelValues(outcome).Inc()
}
