package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/diegoclair/checkin-scheduler/internal/domain"
)

type Config struct {
	NotifierChannel  string
	TelegramBotToken string
	SlackBotToken    string
	DiscordBotToken  string

	RecipientID string
	ChannelTag  string

	PollInterval    time.Duration
	PollIntervalStr string
	Timezone        string
	// Location is set by Validate
	Location *time.Location

	RulesFile    string
	DatabasePath string

	SendTimeout    time.Duration
	SendTimeoutStr string
	SendRatePerSec int

	LogLevel  string
	LogFormat string

	Port           string
	MetricsEnabled bool
}

func Load() *Config {
	cfg := &Config{
		NotifierChannel:  strings.ToLower(getEnv("NOTIFIER_CHANNEL", domain.ChannelTelegram)),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		SlackBotToken:    getEnv("SLACK_BOT_TOKEN", ""),
		DiscordBotToken:  getEnv("DISCORD_BOT_TOKEN", ""),
		RecipientID:      getEnv("RECIPIENT_ID", getEnv("USER_TELEGRAM_ID", "")),
		PollIntervalStr:  getEnv("POLL_INTERVAL", domain.DefaultPollInterval.String()),
		Timezone:         getEnv("TIMEZONE", domain.DefaultTimezone),
		RulesFile:        getEnv("RULES_FILE", ""),
		DatabasePath:     getEnv("DATABASE_PATH", "./scheduler.db"),
		SendTimeoutStr:   getEnv("SEND_TIMEOUT", domain.DefaultSendTimeout.String()),
		SendRatePerSec:   getEnvInt("SEND_RATE_PER_SEC", domain.DefaultSendRate),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		Port:             getEnv("PORT", "3000"),
		MetricsEnabled:   getEnv("METRICS_ENABLED", "true") == "true",
	}

	cfg.ChannelTag = getEnv("CHANNEL_TAG", domain.DefaultChannelTag(cfg.NotifierChannel))

	// Durations are parsed here so callers can use them even before Validate;
	// Validate reports the ones that failed.
	if d, err := time.ParseDuration(cfg.PollIntervalStr); err == nil {
		cfg.PollInterval = d
	}
	if d, err := time.ParseDuration(cfg.SendTimeoutStr); err == nil {
		cfg.SendTimeout = d
	}

	return cfg
}

// BotToken returns the credential for the selected notifier channel
func (c *Config) BotToken() string {
	switch c.NotifierChannel {
	case domain.ChannelTelegram:
		return c.TelegramBotToken
	case domain.ChannelSlack:
		return c.SlackBotToken
	case domain.ChannelDiscord:
		return c.DiscordBotToken
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
