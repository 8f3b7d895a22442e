package database

import (
	"context"
	"fmt"
	"time"

	"github.com/diegoclair/checkin-scheduler/internal/domain/contract"
	"github.com/diegoclair/checkin-scheduler/internal/domain/entity"
	"github.com/google/uuid"
)

type messageRepo struct {
	db dbConn
}

func newMessageRepo(db dbConn) contract.MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, message *entity.Message) error {
	query := `
		INSERT INTO messages (id, recipient_id, role, content, channel, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		message.ID,
		message.RecipientID,
		message.Role,
		message.Content,
		message.Channel,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

func (r *messageRepo) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*entity.Message, error) {
	query := `
		SELECT id, recipient_id, role, content, channel, created_at
		FROM messages
		WHERE recipient_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, query, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*entity.Message
	for rows.Next() {
		message := &entity.Message{}
		err := rows.Scan(
			&message.ID,
			&message.RecipientID,
			&message.Role,
			&message.Content,
			&message.Channel,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

func (r *messageRepo) CountByChannel(ctx context.Context, channel string) (int64, error) {
	query := `SELECT COUNT(*) FROM messages WHERE channel = ?`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, channel).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}

	return count, nil
}
