package service

import (
	"context"
	"fmt"
	"time"

	"github.com/diegoclair/checkin-scheduler/internal/domain/contract"
	"github.com/diegoclair/checkin-scheduler/internal/domain/entity"
)

// messageRecorder appends sent messages to the message log
type messageRecorder struct {
	dm contract.DataManager
}

func newMessageRecorder(dm contract.DataManager) *messageRecorder {
	return &messageRecorder{dm: dm}
}

func (r *messageRecorder) Append(ctx context.Context, recipientID, role, text, channelTag string) error {
	message := &entity.Message{
		RecipientID: recipientID,
		Role:        role,
		Content:     text,
		Channel:     channelTag,
		CreatedAt:   time.Now().UTC(),
	}

	if err := r.dm.Message().Create(ctx, message); err != nil {
		return fmt.Errorf("failed to record message: %w", err)
	}

	return nil
}

// History returns the most recent messages sent to recipientID
func (r *messageRecorder) History(ctx context.Context, recipientID string, limit int) ([]*entity.Message, error) {
	return r.dm.Message().ListByRecipient(ctx, recipientID, limit)
}

// Count returns how many messages were recorded under channelTag
func (r *messageRecorder) Count(ctx context.Context, channelTag string) (int64, error) {
	count, err := r.dm.Message().CountByChannel(ctx, channelTag)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}
