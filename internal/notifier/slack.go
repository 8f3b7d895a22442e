package notifier

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/diegoclair/checkin-scheduler/internal/domain"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// SlackClient is the subset of *slack.Client the notifier uses
type SlackClient interface {
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Slack posts messages to a Slack channel or DM. Init verifies the token
// with auth.test.
type Slack struct {
	client SlackClient
	log    zerolog.Logger
	ready  atomic.Bool
}

func NewSlack(token string, log zerolog.Logger, opts ...slack.Option) *Slack {
	return NewSlackWithClient(slack.New(token, opts...), log)
}

func NewSlackWithClient(client SlackClient, log zerolog.Logger) *Slack {
	return &Slack{
		client: client,
		log:    log.With().Str("channel", domain.ChannelSlack).Logger(),
	}
}

func (s *Slack) Name() string { return domain.ChannelSlack }

func (s *Slack) Ready() bool { return s.ready.Load() }

func (s *Slack) Init(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}

	resp, err := s.client.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack: auth test failed: %w", err)
	}

	s.ready.Store(true)
	s.log.Info().Str("team", resp.Team).Str("bot_user", resp.UserID).Msg("slack client initialized")
	return nil
}

func (s *Slack) Send(ctx context.Context, recipientID, text string) error {
	if !s.ready.Load() {
		return ErrNotReady
	}
	if recipientID == "" {
		return fmt.Errorf("%w: empty slack channel id", ErrInvalidRecipient)
	}

	_, _, err := s.client.PostMessageContext(ctx, recipientID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(false),
	)
	if err != nil {
		return fmt.Errorf("slack: failed to send message: %w", err)
	}

	return nil
}
