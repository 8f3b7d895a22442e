package contract

import (
	"context"

	"github.com/diegoclair/checkin-scheduler/internal/domain/entity"
)

// DataManager aggregates all repository interfaces
type DataManager interface {
	Message() MessageRepo
}

// MessageRepo defines the contract for the message log repository
type MessageRepo interface {
	Create(ctx context.Context, message *entity.Message) error
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*entity.Message, error)
	CountByChannel(ctx context.Context, channel string) (int64, error)
}
