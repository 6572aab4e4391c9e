package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chatvault/chatvault/internal/model"
)

// Chat service errors.
var (
	// ErrBoxAccessDenied covers both a nonexistent box and a box owned by
	// another user; callers must not be able to tell the two apart.
	ErrBoxAccessDenied = errors.New("not authorized to access this chat box")
	ErrEmptyBoxName    = errors.New("chat box name must not be empty")
	ErrEmptyMessage    = errors.New("message must not be empty")
	ErrEmptySender     = errors.New("sender must not be empty")
)

// ChatRepo is the storage surface the chat service needs.
// *repository.Repository satisfies it.
type ChatRepo interface {
	CreateChatBox(ctx context.Context, box *model.ChatBox) error
	ListChatBoxesByUser(ctx context.Context, userID int64) ([]*model.ChatBox, error)
	ChatBoxOwnedBy(ctx context.Context, boxID, userID int64) (bool, error)
	DeleteChatBox(ctx context.Context, boxID int64) error
	CreateChatMessage(ctx context.Context, msg *model.ChatMessage) error
	ListChatMessages(ctx context.Context, boxID int64) ([]*model.ChatMessage, error)
}

// ChatService handles chat box and message operations. Every box-scoped
// operation passes through the ownership guard before touching storage.
type ChatService struct {
	repo ChatRepo
}

// NewChatService creates a new ChatService.
func NewChatService(repo ChatRepo) *ChatService {
	return &ChatService{repo: repo}
}

// AuthorizeBoxAccess reports whether the given user may touch the given
// chat box: true iff the box exists and the user owns it.
func (s *ChatService) AuthorizeBoxAccess(ctx context.Context, userID, boxID int64) (bool, error) {
	return s.repo.ChatBoxOwnedBy(ctx, boxID, userID)
}

// CreateBox creates a chat box owned by the given user.
func (s *ChatService) CreateBox(ctx context.Context, userID int64, name string) (*model.ChatBox, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyBoxName
	}

	box := &model.ChatBox{
		UserID: userID,
		Name:   name,
	}

	if err := s.repo.CreateChatBox(ctx, box); err != nil {
		return nil, fmt.Errorf("create chat box: %w", err)
	}

	return box, nil
}

// ListBoxes returns all chat boxes owned by the user.
func (s *ChatService) ListBoxes(ctx context.Context, userID int64) ([]*model.ChatBox, error) {
	boxes, err := s.repo.ListChatBoxesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chat boxes: %w", err)
	}
	return boxes, nil
}

// DeleteBox removes a chat box the user owns, along with its history.
func (s *ChatService) DeleteBox(ctx context.Context, userID, boxID int64) error {
	allowed, err := s.AuthorizeBoxAccess(ctx, userID, boxID)
	if err != nil {
		return fmt.Errorf("authorize box access: %w", err)
	}
	if !allowed {
		return ErrBoxAccessDenied
	}

	if err := s.repo.DeleteChatBox(ctx, boxID); err != nil {
		return fmt.Errorf("delete chat box: %w", err)
	}

	return nil
}

// PostMessage appends a message to a chat box the user owns.
func (s *ChatService) PostMessage(ctx context.Context, userID, boxID int64, sender, message string) (*model.ChatMessage, error) {
	if strings.TrimSpace(sender) == "" {
		return nil, ErrEmptySender
	}
	if message == "" {
		return nil, ErrEmptyMessage
	}

	allowed, err := s.AuthorizeBoxAccess(ctx, userID, boxID)
	if err != nil {
		return nil, fmt.Errorf("authorize box access: %w", err)
	}
	if !allowed {
		return nil, ErrBoxAccessDenied
	}

	msg := &model.ChatMessage{
		ChatBoxID: boxID,
		Sender:    sender,
		Message:   message,
	}

	if err := s.repo.CreateChatMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("create chat message: %w", err)
	}

	return msg, nil
}

// History returns a box's messages in timestamp order, oldest first.
func (s *ChatService) History(ctx context.Context, userID, boxID int64) ([]*model.ChatMessage, error) {
	allowed, err := s.AuthorizeBoxAccess(ctx, userID, boxID)
	if err != nil {
		return nil, fmt.Errorf("authorize box access: %w", err)
	}
	if !allowed {
		return nil, ErrBoxAccessDenied
	}

	messages, err := s.repo.ListChatMessages(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}

	return messages, nil
}
