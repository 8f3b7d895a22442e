package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/diegoclair/checkin-scheduler/internal/domain"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:", len(e))
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate checks the configuration and resolves Location.
// A missing recipient or bot token is not an error: the scheduler runs and
// skips every firing.
func (c *Config) Validate() error {
	var errs ValidationErrors

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		errs = append(errs, ValidationError{
			Field:   "TIMEZONE",
			Message: fmt.Sprintf("unknown time zone %q: %v", c.Timezone, err),
		})
	} else {
		c.Location = loc
	}

	if d, err := time.ParseDuration(c.PollIntervalStr); err != nil {
		errs = append(errs, ValidationError{
			Field:   "POLL_INTERVAL",
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	} else if d <= 0 {
		errs = append(errs, ValidationError{
			Field:   "POLL_INTERVAL",
			Message: "must be positive",
		})
	}

	if d, err := time.ParseDuration(c.SendTimeoutStr); err != nil {
		errs = append(errs, ValidationError{
			Field:   "SEND_TIMEOUT",
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	} else if d <= 0 {
		errs = append(errs, ValidationError{
			Field:   "SEND_TIMEOUT",
			Message: "must be positive",
		})
	}

	if !slices.Contains(domain.Channels, c.NotifierChannel) {
		errs = append(errs, ValidationError{
			Field:   "NOTIFIER_CHANNEL",
			Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(domain.Channels, ", "), c.NotifierChannel),
		})
	}

	if c.SendRatePerSec <= 0 {
		errs = append(errs, ValidationError{
			Field:   "SEND_RATE_PER_SEC",
			Message: "must be a positive integer",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
