package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/diegoclair/checkin-scheduler/internal/domain"
	"github.com/diegoclair/checkin-scheduler/internal/domain/contract"
	"github.com/diegoclair/checkin-scheduler/internal/domain/entity"
	"github.com/diegoclair/checkin-scheduler/internal/metrics"
	"github.com/rs/zerolog"
)

// SchedulerConfig holds the scheduler's fixed inputs
type SchedulerConfig struct {
	PollInterval time.Duration
	Location     *time.Location
	RecipientID  string
	ChannelTag   string
	SendTimeout  time.Duration
}

// RuleStatus is a read-only view of one rule and its fire state
type RuleStatus struct {
	Name           string          `json:"name"`
	Kind           entity.RuleKind `json:"kind"`
	Schedule       string          `json:"schedule"`
	LastOccurrence string          `json:"last_occurrence,omitempty"`
	LastFiredAt    *time.Time      `json:"last_fired_at,omitempty"`
}

type scheduler struct {
	cfg      SchedulerConfig
	rules    []entity.TriggerRule
	notifier contract.Notifier
	recorder contract.Recorder
	metrics  metrics.Sink
	log      zerolog.Logger
	clock    func() time.Time

	state        *fireState
	lastCycleKey string

	mu       sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
	running  bool
}

func newScheduler(cfg SchedulerConfig, table []entity.TriggerRule, notifier contract.Notifier,
	recorder contract.Recorder, sink metrics.Sink, log zerolog.Logger) *scheduler {

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = domain.DefaultPollInterval
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = domain.DefaultSendTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if sink == nil {
		sink = metrics.NewNoopSink()
	}

	return &scheduler{
		cfg:      cfg,
		rules:    slices.Clone(table),
		notifier: notifier,
		recorder: recorder,
		metrics:  sink,
		log:      log.With().Str("component", "scheduler").Logger(),
		clock:    time.Now,
		state:    newFireState(),
	}
}

// Start runs the loop in a background goroutine until Stop is called
func (s *scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-s.stopChan
		cancel()
	}()
	go func() {
		defer close(s.done)
		_ = s.Run(ctx)
	}()
}

// Stop signals the loop to exit and waits for the current cycle to finish
func (s *scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()

	<-done
}

// Run wakes every poll interval and evaluates the rule table until ctx is
// canceled.
func (s *scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.log.Info().
		Str("timezone", s.cfg.Location.String()).
		Dur("poll_interval", s.cfg.PollInterval).
		Int("rules", len(s.rules)).
		Msg("scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// cycleKey identifies the wall-clock minute a cycle evaluated
func cycleKey(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// runCycle samples the clock and evaluates every rule once per minute.
// It returns the number of rules fired.
func (s *scheduler) runCycle(ctx context.Context) int {
	now := s.clock().In(s.cfg.Location)
	s.metrics.CycleStarted()

	key := cycleKey(now)
	if key == s.lastCycleKey {
		s.metrics.CycleSkipped()
		s.log.Debug().Str("minute", key).Msg("minute already evaluated, skipping cycle")
		return 0
	}
	s.lastCycleKey = key

	start := time.Now()
	fired := s.evaluate(ctx, now)
	s.metrics.CycleCompleted(time.Since(start), fired)

	return fired
}

func (s *scheduler) evaluate(ctx context.Context, now time.Time) int {
	fired := 0

	for _, rule := range s.rules {
		switch rule.Kind {
		case entity.KindFixedTime:
			if !rule.DueAt(now) {
				continue
			}
			occurrence := entity.OccurrenceKey(now)
			if s.state.firedOn(rule.Name, occurrence) {
				continue
			}
			s.fire(ctx, rule)
			s.state.markOccurrence(rule.Name, occurrence, now)
			fired++

		case entity.KindPeriodic:
			if !rule.InWindow(now) {
				continue
			}
			if last, ok := s.state.lastFired(rule.Name); ok && !rule.IntervalElapsed(last, now) {
				continue
			}
			s.fire(ctx, rule)
			s.state.markFiredAt(rule.Name, now)
			fired++
		}
	}

	return fired
}

// Rules returns a copy of the rule table
func (s *scheduler) Rules() []entity.TriggerRule {
	return slices.Clone(s.rules)
}

// Status reports every rule with its last firing
func (s *scheduler) Status() []RuleStatus {
	out := make([]RuleStatus, 0, len(s.rules))
	for _, rule := range s.rules {
		st := RuleStatus{
			Name:           rule.Name,
			Kind:           rule.Kind,
			Schedule:       rule.Schedule(),
			LastOccurrence: s.state.occurrence(rule.Name),
		}
		if at, ok := s.state.lastFired(rule.Name); ok {
			st.LastFiredAt = &at
		}
		out = append(out, st)
	}
	return out
}
