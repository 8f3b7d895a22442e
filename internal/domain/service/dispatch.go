package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/diegoclair/checkin-scheduler/internal/domain"
	"github.com/diegoclair/checkin-scheduler/internal/domain/entity"
)

var errPanic = errors.New("recovered panic")

// FireResult describes what happened when a rule fired
type FireResult struct {
	Rule        string
	Skipped     bool
	Delivered   bool
	DeliveryErr error
	RecordErr   error
}

// fire delivers the rule's message and records it. Failures are logged and
// returned in the result, never propagated.
func (s *scheduler) fire(ctx context.Context, rule entity.TriggerRule) FireResult {
	res := FireResult{Rule: rule.Name}
	log := s.log.With().Str("rule", rule.Name).Logger()

	if s.cfg.RecipientID == "" || s.notifier == nil {
		log.Debug().Msg("no recipient or notifier configured, skipping notification")
		res.Skipped = true
		s.metrics.DeliveryOutcome(domain.OutcomeSkipped)
		return res
	}

	s.metrics.RuleFired(rule.Name)
	log.Info().Str("channel", s.notifier.Name()).Msg("firing rule")

	res.DeliveryErr = contain(func() error {
		sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
		defer cancel()
		return s.deliver(sendCtx, rule)
	})
	if res.DeliveryErr != nil {
		s.metrics.DeliveryOutcome(domain.OutcomeFailed)
		log.Warn().Err(res.DeliveryErr).Str("recipient", s.cfg.RecipientID).Msg("failed to deliver notification")
	} else {
		res.Delivered = true
		s.metrics.DeliveryOutcome(domain.OutcomeSuccess)
	}

	if s.recorder == nil {
		return res
	}

	res.RecordErr = contain(func() error {
		recordCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
		defer cancel()
		return s.recorder.Append(recordCtx, s.cfg.RecipientID, domain.RoleAssistant, rule.Message, s.cfg.ChannelTag)
	})
	if res.RecordErr != nil {
		s.metrics.RecordOutcome(domain.OutcomeFailed)
		log.Warn().Err(res.RecordErr).Msg("failed to record message")
	} else {
		s.metrics.RecordOutcome(domain.OutcomeSuccess)
	}

	return res
}

// deliver initializes the notifier on first use and sends the message
func (s *scheduler) deliver(ctx context.Context, rule entity.TriggerRule) error {
	if !s.notifier.Ready() {
		if err := s.notifier.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize %s notifier: %w", s.notifier.Name(), err)
		}
	}

	return s.notifier.Send(ctx, s.cfg.RecipientID, rule.Message)
}

// contain runs fn and turns a panic into an error
func contain(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()
	return fn()
}
