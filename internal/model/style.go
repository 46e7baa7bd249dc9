package model

// Style is one of the six fixed communication styles.
type Style string

const (
	StyleDirect    Style = "direct"
	StyleCasual    Style = "casual"
	StyleDetailed  Style = "detailed"
	StyleCreative  Style = "creative"
	StyleTechnical Style = "technical"
	StyleFormal    Style = "formal"
)

// Styles is the fixed iteration order for style scoring. Ties break toward
// the earlier entry.
var Styles = []Style{
	StyleDirect,
	StyleCasual,
	StyleDetailed,
	StyleCreative,
	StyleTechnical,
	StyleFormal,
}

// IsValid returns true if the style is recognized.
func (s Style) IsValid() bool {
	for _, v := range Styles {
		if s == v {
			return true
		}
	}
	return false
}

// StyleResult is the outcome of style detection over a message window.
type StyleResult struct {
	Style           Style    `json:"style"`
	Confidence      float64  `json:"confidence"`
	Characteristics []string `json:"characteristics,omitempty"`
	Examples        []string `json:"examples,omitempty"`
}
