package contract

import "context"

// Notifier delivers a text message to a recipient over one messaging channel.
// Implementations do not deduplicate; the scheduler owns that.
type Notifier interface {
	// Name returns the channel name (telegram, slack, discord)
	Name() string

	// Ready reports whether Init has completed successfully
	Ready() bool

	// Init brings the transport to a ready state. It may fail and may be retried.
	Init(ctx context.Context) error

	// Send delivers text to recipientID
	Send(ctx context.Context, recipientID, text string) error
}

// Recorder durably appends a sent message to the message log
type Recorder interface {
	Append(ctx context.Context, recipientID, role, text, channelTag string) error
}
