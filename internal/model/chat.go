package model

import "time"

// ChatBox is a named message container owned by exactly one user.
// UserID is set at creation and never changes.
type ChatBox struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is a single entry in a chat box. Timestamp is assigned by the
// server at insert time; history reads sort by it ascending.
type ChatMessage struct {
	ID        int64     `json:"id"`
	ChatBoxID int64     `json:"chat_box_id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
