package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chatvault/chatvault/internal/model"
)

// ErrChatBoxNotFound is returned when no chat box matches the query.
var ErrChatBoxNotFound = errors.New("chat box not found")

// CreateChatBox inserts a new chat box and populates its id and creation timestamp.
func (r *Repository) CreateChatBox(ctx context.Context, box *model.ChatBox) error {
	query := `
		INSERT INTO chatboxes (user_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, box.UserID, box.Name).Scan(&box.ID, &box.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chat box: %w", err)
	}

	return nil
}

// ListChatBoxesByUser retrieves all chat boxes owned by a user in
// creation order.
func (r *Repository) ListChatBoxesByUser(ctx context.Context, userID int64) ([]*model.ChatBox, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM chatboxes
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat boxes: %w", err)
	}
	defer rows.Close()

	var boxes []*model.ChatBox
	for rows.Next() {
		var box model.ChatBox
		if err := rows.Scan(&box.ID, &box.UserID, &box.Name, &box.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat box: %w", err)
		}
		boxes = append(boxes, &box)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat boxes: %w", err)
	}

	return boxes, nil
}

// ChatBoxOwnedBy reports whether a chat box with the given id exists AND is
// owned by the given user. A missing box and a box owned by someone else both
// return false; callers must not be able to tell them apart.
func (r *Repository) ChatBoxOwnedBy(ctx context.Context, boxID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM chatboxes WHERE id = $1 AND user_id = $2
		)
	`

	var owned bool
	if err := r.pool.QueryRow(ctx, query, boxID, userID).Scan(&owned); err != nil {
		return false, fmt.Errorf("failed to check chat box ownership: %w", err)
	}

	return owned, nil
}

// GetChatBox retrieves a chat box by id.
func (r *Repository) GetChatBox(ctx context.Context, boxID int64) (*model.ChatBox, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM chatboxes
		WHERE id = $1
	`

	var box model.ChatBox
	err := r.pool.QueryRow(ctx, query, boxID).Scan(&box.ID, &box.UserID, &box.Name, &box.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChatBoxNotFound
		}
		return nil, fmt.Errorf("failed to get chat box: %w", err)
	}

	return &box, nil
}

// DeleteChatBox removes a chat box and its messages.
// The messages go first so the foreign key constraint holds throughout.
func (r *Repository) DeleteChatBox(ctx context.Context, boxID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM chathistory WHERE chat_box_id = $1`, boxID); err != nil {
		return fmt.Errorf("failed to delete chat history: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM chatboxes WHERE id = $1`, boxID)
	if err != nil {
		return fmt.Errorf("failed to delete chat box: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrChatBoxNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	return nil
}
