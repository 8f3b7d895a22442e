package domain

import "time"

// Notifier channel names
const (
	ChannelTelegram = "telegram"
	ChannelSlack    = "slack"
	ChannelDiscord  = "discord"
	ChannelNone     = "none"
)

// Channels lists the notifier channels accepted by NOTIFIER_CHANNEL
var Channels = []string{ChannelTelegram, ChannelSlack, ChannelDiscord, ChannelNone}

// RoleAssistant is the role recorded for every scheduler-originated message
const RoleAssistant = "assistant"

// Default values used when the environment does not override them
const (
	DefaultPollInterval = 60 * time.Second
	DefaultTimezone     = "America/New_York"
	DefaultSendTimeout  = 15 * time.Second
	DefaultSendRate     = 1
)

// Delivery and record outcomes reported to the metrics sink
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// DefaultChannelTag returns the tag recorded with messages sent through channel
func DefaultChannelTag(channel string) string {
	return channel + "_scheduler"
}
