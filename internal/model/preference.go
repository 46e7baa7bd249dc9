package model

import (
	"time"
)

// PreferenceCategory is one of the five fixed preference categories.
type PreferenceCategory string

const (
	CategoryResponseStyle      PreferenceCategory = "response_style"
	CategoryContentType        PreferenceCategory = "content_type"
	CategoryInteractionPattern PreferenceCategory = "interaction_pattern"
	CategoryCommunication      PreferenceCategory = "communication"
	CategoryTopicInterest      PreferenceCategory = "topic_interest"
)

// ValidPreferenceCategories is the closed set of recognized categories.
var ValidPreferenceCategories = []PreferenceCategory{
	CategoryResponseStyle,
	CategoryContentType,
	CategoryInteractionPattern,
	CategoryCommunication,
	CategoryTopicInterest,
}

// IsValid returns true if the category is recognized.
func (c PreferenceCategory) IsValid() bool {
	for _, v := range ValidPreferenceCategories {
		if c == v {
			return true
		}
	}
	return false
}

// UserPreference is a decaying, strength-scored user tendency. Strength is
// multiplied by the decay factor each merge pass; entries below the floor are
// pruned.
type UserPreference struct {
	Category       PreferenceCategory `json:"category"`
	Label          string             `json:"label"`
	Strength       float64            `json:"strength"`
	Confidence     float64            `json:"confidence"`
	LastReinforced time.Time          `json:"last_reinforced"`
	Examples       []string           `json:"examples,omitempty"`
	Frequency      int                `json:"frequency"`
}

// Key identifies a preference within a profile: same category and label means
// the same preference.
func (p UserPreference) Key() string {
	return string(p.Category) + ":" + p.Label
}

// PreferenceProfile is the persisted preference set for one session.
type PreferenceProfile struct {
	SessionID   string           `json:"session_id"`
	Preferences []UserPreference `json:"preferences"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// PreferenceResult is the outcome of one preference analysis pass.
type PreferenceResult struct {
	Preferences []UserPreference `json:"preferences"`
	Reasoning   []string         `json:"reasoning,omitempty"`
	Confidence  float64          `json:"confidence"`
}
