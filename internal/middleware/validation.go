package middleware

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxMessageLength is the maximum allowed message content length.
	MaxMessageLength = 32000
	// MaxTitleLength is the maximum allowed session title length.
	MaxTitleLength = 200
)

// ValidateMessageContent validates chat message content.
func ValidateMessageContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("message content cannot be empty")
	}
	if len(content) > MaxMessageLength {
		return fmt.Errorf("message content exceeds maximum length of %d", MaxMessageLength)
	}
	return nil
}

// ValidateSessionID validates a session ID is a well-formed UUID.
func ValidateSessionID(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("session ID must be a valid UUID")
	}
	return nil
}

// ValidateTitle validates a session title.
func ValidateTitle(title string) error {
	if len(title) > MaxTitleLength {
		return fmt.Errorf("title exceeds maximum length of %d", MaxTitleLength)
	}
	return nil
}
