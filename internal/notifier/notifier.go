// Package notifier implements the scheduler's delivery capability over
// Telegram, Slack and Discord.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/diegoclair/checkin-scheduler/internal/domain"
	"github.com/diegoclair/checkin-scheduler/internal/domain/contract"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

var (
	// ErrNotReady is returned by Send when Init has not completed
	ErrNotReady = errors.New("notifier not initialized")
	// ErrInvalidRecipient is returned when the recipient cannot be addressed on the channel
	ErrInvalidRecipient = errors.New("invalid recipient")
)

// New builds the notifier for channel. Every API request it makes is bounded
// by sendTimeout. It returns a nil Notifier, and no error, for the "none"
// channel or when token is empty.
func New(channel, token string, ratePerSec int, sendTimeout time.Duration, log zerolog.Logger) (contract.Notifier, error) {
	if channel == domain.ChannelNone {
		log.Info().Msg("notifier disabled")
		return nil, nil
	}
	if token == "" {
		log.Warn().Str("channel", channel).Msg("no bot token configured, notifications will be skipped")
		return nil, nil
	}

	var n contract.Notifier
	switch channel {
	case domain.ChannelTelegram:
		n = NewTelegram(token, log, WithTelegramTimeout(sendTimeout))
	case domain.ChannelSlack:
		n = NewSlack(token, log, slack.OptionHTTPClient(&http.Client{Timeout: sendTimeout}))
	case domain.ChannelDiscord:
		n = NewDiscord(token, log, WithDiscordHTTPClient(&http.Client{Timeout: sendTimeout}))
	default:
		return nil, fmt.Errorf("unknown notifier channel %q", channel)
	}

	return NewThrottled(n, ratePerSec), nil
}

// withContext runs fn and gives up when ctx is done first. fn keeps running in
// the background until its own client timeout expires.
func withContext(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
