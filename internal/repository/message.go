package repository

import (
	"context"
	"fmt"

	"github.com/chatvault/chatvault/internal/model"
)

// CreateChatMessage inserts a message into a chat box. The timestamp is
// assigned by the database, not the caller.
func (r *Repository) CreateChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	query := `
		INSERT INTO chathistory (chat_box_id, sender, message)
		VALUES ($1, $2, $3)
		RETURNING id, timestamp
	`

	err := r.pool.QueryRow(ctx, query,
		msg.ChatBoxID,
		msg.Sender,
		msg.Message,
	).Scan(&msg.ID, &msg.Timestamp)

	if err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}

	return nil
}

// ListChatMessages retrieves a chat box's history ordered by timestamp
// ascending, i.e. insertion order.
func (r *Repository) ListChatMessages(ctx context.Context, boxID int64) ([]*model.ChatMessage, error) {
	query := `
		SELECT id, chat_box_id, sender, message, timestamp
		FROM chathistory
		WHERE chat_box_id = $1
		ORDER BY timestamp
	`

	rows, err := r.pool.Query(ctx, query, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*model.ChatMessage
	for rows.Next() {
		var msg model.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.ChatBoxID, &msg.Sender, &msg.Message, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}

	return messages, nil
}
