package models

import "strings"

// Anchor is the discrete intensity tier used to filter the prompt corpus.
type Anchor string

const (
	AnchorMicro    Anchor = "micro"
	AnchorSoft     Anchor = "soft"
	AnchorModerate Anchor = "moderate"
	AnchorStrong   Anchor = "strong"
)

// PromptTemplate is one entry of the externally-maintained prompt corpus.
// An empty Anchor means the template is eligible for every tier; an empty
// Times list means no time-of-day restriction.
type PromptTemplate struct {
	ID     string   `yaml:"id" json:"id"`
	Text   string   `yaml:"prompt" json:"prompt"`
	Anchor Anchor   `yaml:"anchor,omitempty" json:"anchor,omitempty"`
	Style  string   `yaml:"style,omitempty" json:"style,omitempty"`
	Tags   []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Times  []string `yaml:"times,omitempty" json:"times,omitempty"`
	Mood   string   `yaml:"mood,omitempty" json:"mood,omitempty"`
	Energy string   `yaml:"energy,omitempty" json:"energy,omitempty"`
}

// StyleLabel returns the template's explicit style, falling back to the
// prefix of its id before the first "-" or "_".
func (p PromptTemplate) StyleLabel() string {
	if p.Style != "" {
		return p.Style
	}
	return DeriveStyle(p.ID)
}

// AllowsTime reports whether the template may be shown for the given
// time-of-day label.
func (p PromptTemplate) AllowsTime(label string) bool {
	if len(p.Times) == 0 {
		return true
	}
	for _, t := range p.Times {
		if t == label {
			return true
		}
	}
	return false
}

// DeriveStyle extracts the style prefix from a prompt id. Ids without a
// separator are their own style.
func DeriveStyle(id string) string {
	if idx := strings.IndexAny(id, "-_"); idx >= 0 {
		return id[:idx]
	}
	return id
}

// SelectionTrace records the candidate ids surviving each filter stage.
// Returned only when a caller asks for diagnostics.
type SelectionTrace struct {
	Initial     []string `json:"initial"`
	AfterAnchor []string `json:"after_anchor"`
	AfterStyle  []string `json:"after_style"`
	AfterTime   []string `json:"after_time"`
	Chosen      string   `json:"chosen,omitempty"`
}

// Selection is the outcome of one run of the prompt filter cascade.
// Style is capitalized for display; Anchor is the tier the cascade
// actually filtered with, empty when no anchor could be derived.
type Selection struct {
	Text   string          `json:"prompt"`
	ID     string          `json:"id,omitempty"`
	Style  string          `json:"category,omitempty"`
	Anchor Anchor          `json:"anchor,omitempty"`
	Tags   []string        `json:"tags,omitempty"`
	Mood   string          `json:"mood,omitempty"`
	Energy string          `json:"energy,omitempty"`
	Trace  *SelectionTrace `json:"debug,omitempty"`
}

// NoPromptsText is the caller-visible soft failure when the corpus is empty.
const NoPromptsText = "No prompts available"
