package model

import (
	"time"
)

// GalleryImage is an image generated within a session. The session owns it;
// deleting the session deletes its gallery.
type GalleryImage struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationSession is a conversation thread. Messages live in the message
// log keyed by session id; patterns and preferences are persisted separately.
type ConversationSession struct {
	ID           string         `json:"id"`
	TenantID     string         `json:"tenant_id"`
	UserID       string         `json:"user_id"`
	Title        string         `json:"title"`
	Gallery      []GalleryImage `json:"gallery,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	MessageCount int            `json:"message_count,omitempty"`
	LastMessage  *Message       `json:"last_message,omitempty"`
	Deleted      bool           `json:"deleted,omitempty"`
}

// CreateSessionRequest is the request to create a new session.
type CreateSessionRequest struct {
	Title string `json:"title"`
}

// UpdateSessionRequest is the request to update a session.
type UpdateSessionRequest struct {
	Title string `json:"title,omitempty"`
}

// ListSessionsResponse is the response for listing sessions.
type ListSessionsResponse struct {
	Sessions []ConversationSession `json:"sessions"`
	Total    int                   `json:"total"`
	HasMore  bool                  `json:"has_more"`
}
