package notifier

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/diegoclair/checkin-scheduler/internal/domain"
	"github.com/rs/zerolog"
)

// Discord sends messages to a Discord channel over the REST API; no gateway
// connection is opened.
type Discord struct {
	token  string
	client *http.Client
	log    zerolog.Logger

	mu      sync.Mutex
	session *discordgo.Session
}

type DiscordOption func(*Discord)

// WithDiscordHTTPClient replaces the session's HTTP client
func WithDiscordHTTPClient(c *http.Client) DiscordOption {
	return func(d *Discord) { d.client = c }
}

func NewDiscord(token string, log zerolog.Logger, opts ...DiscordOption) *Discord {
	d := &Discord{
		token: token,
		log:   log.With().Str("channel", domain.ChannelDiscord).Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Discord) Name() string { return domain.ChannelDiscord }

func (d *Discord) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session != nil
}

func (d *Discord) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		return nil
	}

	s, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return fmt.Errorf("discord: failed to create session: %w", err)
	}
	if d.client != nil {
		s.Client = d.client
	}

	me, err := s.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: failed to verify token: %w", err)
	}

	d.session = s
	d.log.Info().Str("bot", me.Username).Msg("discord session initialized")
	return nil
}

func (d *Discord) Send(ctx context.Context, recipientID, text string) error {
	d.mu.Lock()
	s := d.session
	d.mu.Unlock()

	if s == nil {
		return ErrNotReady
	}
	if recipientID == "" {
		return fmt.Errorf("%w: empty discord channel id", ErrInvalidRecipient)
	}

	if _, err := s.ChannelMessageSend(recipientID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: failed to send message: %w", err)
	}

	return nil
}
