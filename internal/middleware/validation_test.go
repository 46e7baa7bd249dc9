package middleware

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestValidateMessageContent(t *testing.T) {
	if err := ValidateMessageContent("hello"); err != nil {
		t.Errorf("valid content rejected: %v", err)
	}
	if err := ValidateMessageContent(""); err == nil {
		t.Error("empty content accepted")
	}
	if err := ValidateMessageContent("   \n\t"); err == nil {
		t.Error("whitespace-only content accepted")
	}
	if err := ValidateMessageContent(strings.Repeat("a", MaxMessageLength+1)); err == nil {
		t.Error("oversized content accepted")
	}
}

func TestValidateSessionID(t *testing.T) {
	if err := ValidateSessionID(uuid.New().String()); err != nil {
		t.Errorf("valid UUID rejected: %v", err)
	}
	if err := ValidateSessionID(""); err == nil {
		t.Error("empty session ID accepted")
	}
	if err := ValidateSessionID("not-a-uuid"); err == nil {
		t.Error("malformed session ID accepted")
	}
}

func TestValidateTitle(t *testing.T) {
	if err := ValidateTitle("My Session"); err != nil {
		t.Errorf("valid title rejected: %v", err)
	}
	if err := ValidateTitle(""); err != nil {
		t.Errorf("empty title should be allowed: %v", err)
	}
	if err := ValidateTitle(strings.Repeat("t", MaxTitleLength+1)); err == nil {
		t.Error("oversized title accepted")
	}
}
