package entity

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRule is wrapped by every rule validation failure
var ErrInvalidRule = errors.New("invalid trigger rule")

// RuleKind selects how a TriggerRule matches the clock
type RuleKind string

const (
	KindFixedTime RuleKind = "fixed-time"
	KindPeriodic  RuleKind = "periodic-interval"
)

// TriggerRule is one entry of the scheduler's rule table.
//
// Fixed-time rules use Hour, Minute and the optional EveryNthDay modulus.
// Periodic rules use StartHour, EndHour and IntervalMinutes.
type TriggerRule struct {
	Name    string   `json:"name" yaml:"name"`
	Kind    RuleKind `json:"kind" yaml:"kind"`
	Message string   `json:"message" yaml:"message"`

	Hour   int `json:"hour,omitempty" yaml:"hour"`
	Minute int `json:"minute,omitempty" yaml:"minute"`
	// EveryNthDay restricts a fixed-time rule to days whose day-of-year is a
	// multiple of N. Zero or one means every day.
	EveryNthDay int `json:"every_nth_day,omitempty" yaml:"every_nth_day"`

	StartHour       int `json:"start_hour,omitempty" yaml:"start_hour"`
	EndHour         int `json:"end_hour,omitempty" yaml:"end_hour"`
	IntervalMinutes int `json:"interval_minutes,omitempty" yaml:"interval_minutes"`
}

// Validate checks the kind-specific parameters of the rule
func (r TriggerRule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRule)
	}
	if r.Message == "" {
		return fmt.Errorf("%w: rule %q has no message", ErrInvalidRule, r.Name)
	}

	switch r.Kind {
	case KindFixedTime:
		if r.Hour < 0 || r.Hour > 23 {
			return fmt.Errorf("%w: rule %q hour %d out of range 0-23", ErrInvalidRule, r.Name, r.Hour)
		}
		if r.Minute < 0 || r.Minute > 59 {
			return fmt.Errorf("%w: rule %q minute %d out of range 0-59", ErrInvalidRule, r.Name, r.Minute)
		}
		if r.EveryNthDay < 0 {
			return fmt.Errorf("%w: rule %q every_nth_day must not be negative", ErrInvalidRule, r.Name)
		}
	case KindPeriodic:
		if r.StartHour < 0 || r.StartHour > 23 {
			return fmt.Errorf("%w: rule %q start_hour %d out of range 0-23", ErrInvalidRule, r.Name, r.StartHour)
		}
		if r.EndHour <= r.StartHour || r.EndHour > 24 {
			return fmt.Errorf("%w: rule %q window [%d, %d) is empty or exceeds 24", ErrInvalidRule, r.Name, r.StartHour, r.EndHour)
		}
		if r.IntervalMinutes <= 0 {
			return fmt.Errorf("%w: rule %q interval_minutes must be positive", ErrInvalidRule, r.Name)
		}
	default:
		return fmt.Errorf("%w: rule %q has unknown kind %q", ErrInvalidRule, r.Name, r.Kind)
	}

	return nil
}

// DueAt reports whether a fixed-time rule matches the sample's hour, minute and
// day-of-year modulus.
func (r TriggerRule) DueAt(t time.Time) bool {
	if r.Kind != KindFixedTime {
		return false
	}
	if t.Hour() != r.Hour || t.Minute() != r.Minute {
		return false
	}
	if r.EveryNthDay > 1 && t.YearDay()%r.EveryNthDay != 0 {
		return false
	}
	return true
}

// InWindow reports whether the sample's hour falls in a periodic rule's
// active window [StartHour, EndHour).
func (r TriggerRule) InWindow(t time.Time) bool {
	if r.Kind != KindPeriodic {
		return false
	}
	h := t.Hour()
	return h >= r.StartHour && h < r.EndHour
}

// ElapsedMinutes counts the whole wall-clock minutes between two samples.
// Seconds are dropped from both, so sampling jitter inside a minute does not
// push a firing into the next minute.
func ElapsedMinutes(last, now time.Time) int {
	return int(now.Truncate(time.Minute).Sub(last.Truncate(time.Minute)) / time.Minute)
}

// IntervalElapsed reports whether a periodic rule that last fired at last is
// due again at now.
func (r TriggerRule) IntervalElapsed(last, now time.Time) bool {
	return ElapsedMinutes(last, now) >= r.IntervalMinutes
}

// OccurrenceKey identifies the calendar day a fixed-time rule fires on
func OccurrenceKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Schedule renders the rule's trigger in a short human-readable form
func (r TriggerRule) Schedule() string {
	switch r.Kind {
	case KindFixedTime:
		s := fmt.Sprintf("daily at %02d:%02d", r.Hour, r.Minute)
		if r.EveryNthDay > 1 {
			s += fmt.Sprintf(" when day-of-year %% %d == 0", r.EveryNthDay)
		}
		return s
	case KindPeriodic:
		return fmt.Sprintf("every %d min between %02d:00 and %02d:00", r.IntervalMinutes, r.StartHour, r.EndHour)
	}
	return "unknown"
}
