package model

import (
	"time"
)

// PatternType classifies a conversation pattern.
type PatternType string

const (
	PatternPreference         PatternType = "preference"
	PatternCommunicationStyle PatternType = "communication_style"
	PatternDomainInterest     PatternType = "domain_interest"
	PatternIntentSequence     PatternType = "intent_sequence"
)

// ValidPatternTypes is the closed set of recognized pattern types.
var ValidPatternTypes = []PatternType{
	PatternPreference,
	PatternCommunicationStyle,
	PatternDomainInterest,
	PatternIntentSequence,
}

// IsValid returns true if the pattern type is recognized.
func (pt PatternType) IsValid() bool {
	for _, v := range ValidPatternTypes {
		if pt == v {
			return true
		}
	}
	return false
}

// MaxPatternExamples bounds the example list on every pattern.
const MaxPatternExamples = 5

// ConversationPattern is a typed, confidence-scored observation about
// recurring user behavior. Reinforced when later exchanges match, discarded
// when stale, weak and rarely seen.
type ConversationPattern struct {
	ID          string      `json:"id"`
	Type        PatternType `json:"type"`
	Pattern     string      `json:"pattern"`
	Confidence  float64     `json:"confidence"`
	Occurrences int         `json:"occurrences"`
	LastSeen    time.Time   `json:"last_seen"`
	Examples    []string    `json:"examples,omitempty"`
}

// AddExample appends an example, keeping only the most recent
// MaxPatternExamples entries.
func (p *ConversationPattern) AddExample(example string) {
	p.Examples = append(p.Examples, example)
	if len(p.Examples) > MaxPatternExamples {
		p.Examples = p.Examples[len(p.Examples)-MaxPatternExamples:]
	}
}

// Stale reports whether the pattern is eligible for cleanup: not seen within
// maxAge, confidence at or below 0.8, and fewer than 2 occurrences. All three
// must hold.
func (p *ConversationPattern) Stale(now time.Time, maxAge time.Duration) bool {
	return now.Sub(p.LastSeen) > maxAge && p.Confidence <= 0.8 && p.Occurrences < 2
}

// MemoryInsight is a derived projection of the current pattern set. It has no
// identity and is recomputed every turn.
type MemoryInsight struct {
	Preferences        map[string]float64 `json:"preferences"`
	CommunicationStyle Style              `json:"communication_style"`
	TopicInterests     []string           `json:"topic_interests"`
	IntentSequences    []IntentFrequency  `json:"intent_sequences,omitempty"`
	SessionSummary     string             `json:"session_summary"`
}

// IntentFrequency records how often an intent sequence has been observed.
type IntentFrequency struct {
	Sequence  string `json:"sequence"`
	Frequency int    `json:"frequency"`
}
