package dto

import (
	"time"

	"github.com/chatvault/chatvault/internal/model"
)

// CreateChatBoxRequest represents the request body for creating a chat box.
type CreateChatBoxRequest struct {
	Name string `json:"name"`
}

// ChatBoxResponse represents a chat box in API responses.
type ChatBoxResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateChatMessageRequest represents the request body for posting a message.
type CreateChatMessageRequest struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// ChatMessageResponse represents a chat message in API responses.
type ChatMessageResponse struct {
	ID        int64     `json:"id"`
	ChatBoxID int64     `json:"chat_box_id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// DeleteChatBoxResponse acknowledges a chat box deletion.
type DeleteChatBoxResponse struct {
	Result bool `json:"result"`
}

// ToChatBoxResponse converts a ChatBox model to ChatBoxResponse DTO.
func ToChatBoxResponse(box *model.ChatBox) *ChatBoxResponse {
	return &ChatBoxResponse{
		ID:        box.ID,
		UserID:    box.UserID,
		Name:      box.Name,
		CreatedAt: box.CreatedAt,
	}
}

// ToChatBoxListResponse converts a slice of ChatBox models.
func ToChatBoxListResponse(boxes []*model.ChatBox) []ChatBoxResponse {
	out := make([]ChatBoxResponse, len(boxes))
	for i, box := range boxes {
		out[i] = *ToChatBoxResponse(box)
	}
	return out
}

// ToChatMessageResponse converts a ChatMessage model.
func ToChatMessageResponse(msg *model.ChatMessage) *ChatMessageResponse {
	return &ChatMessageResponse{
		ID:        msg.ID,
		ChatBoxID: msg.ChatBoxID,
		Sender:    msg.Sender,
		Message:   msg.Message,
		Timestamp: msg.Timestamp,
	}
}

// ToChatMessageListResponse converts a slice of ChatMessage models.
func ToChatMessageListResponse(messages []*model.ChatMessage) []ChatMessageResponse {
	out := make([]ChatMessageResponse, len(messages))
	for i, msg := range messages {
		out[i] = *ToChatMessageResponse(msg)
	}
	return out
}
