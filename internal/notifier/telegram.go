package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/diegoclair/checkin-scheduler/internal/domain"
	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v4"
)

// Telegram sends messages through the Telegram Bot API. The bot is created
// lazily by Init, which also verifies the token with getMe.
type Telegram struct {
	token   string
	apiURL  string
	client  *http.Client
	timeout time.Duration
	log     zerolog.Logger

	mu  sync.Mutex
	bot *tele.Bot
}

type TelegramOption func(*Telegram)

// WithTelegramAPIURL points the bot at a different Bot API server
func WithTelegramAPIURL(url string) TelegramOption {
	return func(t *Telegram) { t.apiURL = url }
}

// WithTelegramHTTPClient overrides the HTTP client used by the bot
func WithTelegramHTTPClient(c *http.Client) TelegramOption {
	return func(t *Telegram) { t.client = c }
}

// WithTelegramTimeout bounds every Bot API request, getMe included
func WithTelegramTimeout(d time.Duration) TelegramOption {
	return func(t *Telegram) { t.timeout = d }
}

func NewTelegram(token string, log zerolog.Logger, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		token:   token,
		client:  &http.Client{},
		timeout: domain.DefaultSendTimeout,
		log:     log.With().Str("channel", domain.ChannelTelegram).Logger(),
	}
	for _, opt := range opts {
		opt(t)
	}

	// telebot takes no context, so the deadline lives on the client
	client := *t.client
	client.Timeout = t.timeout
	t.client = &client

	return t
}

func (t *Telegram) Name() string { return domain.ChannelTelegram }

func (t *Telegram) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bot != nil
}

func (t *Telegram) Init(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bot != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var b *tele.Bot
	err := withContext(ctx, func() error {
		var err error
		b, err = tele.NewBot(tele.Settings{
			Token:  t.token,
			URL:    t.apiURL,
			Client: t.client,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("telegram: failed to initialize bot: %w", err)
	}

	t.bot = b
	t.log.Info().Str("bot", b.Me.Username).Msg("telegram bot initialized")
	return nil
}

func (t *Telegram) Send(ctx context.Context, recipientID, text string) error {
	t.mu.Lock()
	b := t.bot
	t.mu.Unlock()

	if b == nil {
		return ErrNotReady
	}

	chatID, err := strconv.ParseInt(strings.TrimSpace(recipientID), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: telegram chat id %q", ErrInvalidRecipient, recipientID)
	}

	err = withContext(ctx, func() error {
		_, err := b.Send(tele.ChatID(chatID), text)
		return err
	})
	if err != nil {
		return fmt.Errorf("telegram: failed to send message: %w", err)
	}

	return nil
}
