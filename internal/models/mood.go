package models

import (
	"strconv"
	"strings"
)

// MoodCategory is a canonical mood label derived from free-text input.
type MoodCategory string

const (
	MoodSelfDoubt MoodCategory = "self-doubt"
	MoodSad       MoodCategory = "sad"
	MoodJoyful    MoodCategory = "joyful"
	MoodMeh       MoodCategory = "meh"
	MoodOkay      MoodCategory = "okay"
)

// EnergyCategory is a canonical energy label on the 1-4 scale.
type EnergyCategory string

const (
	EnergyDrained   EnergyCategory = "drained"
	EnergyLow       EnergyCategory = "low"
	EnergyOk        EnergyCategory = "ok"
	EnergyEnergized EnergyCategory = "energized"
)

// energyValues maps each category token to its numeric level.
var energyValues = map[EnergyCategory]int{
	EnergyDrained:   1,
	EnergyLow:       2,
	EnergyOk:        3,
	EnergyEnergized: 4,
}

// moodRule pairs a keyword set with the category it resolves to.
// Rules are evaluated in order; the first match wins, so "doubt"
// always pre-empts the sad/joy/meh/okay classes.
type moodRule struct {
	keywords []string
	category MoodCategory
}

var moodRules = []moodRule{
	{[]string{"doubt"}, MoodSelfDoubt},
	{[]string{"sad", "down", "unhappy"}, MoodSad},
	{[]string{"joy", "happy", "delight", "excite", "grateful", "energy"}, MoodJoyful},
	{[]string{"meh", "flat", "tired", "drained", "low", "exhausted", "numb", "bleh"}, MoodMeh},
	{[]string{"ok", "okay", "calm", "focused", "steady", "neutral", "content", "balanced", "centered"}, MoodOkay},
}

// NormalizeMood maps a free-text mood label to a canonical category.
// Matching is a case-insensitive substring test. Returns false when no
// keyword matches or the input is empty.
func NormalizeMood(raw string) (MoodCategory, bool) {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return "", false
	}
	for _, rule := range moodRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(token, keyword) {
				return rule.category, true
			}
		}
	}
	return "", false
}

// NormalizeEnergy maps a raw log value (category token, integer, or
// numeric string) to the 1-4 energy scale. Values at or below zero and
// unparsable inputs return false.
func NormalizeEnergy(raw any) (int, bool) {
	var value int
	switch v := raw.(type) {
	case nil:
		return 0, false
	case int:
		value = v
	case int64:
		value = int(v)
	case float64:
		value = int(v)
	case string:
		token := strings.ToLower(strings.TrimSpace(v))
		if level, ok := energyValues[EnergyCategory(token)]; ok {
			value = level
		} else {
			parsed, err := strconv.Atoi(token)
			if err != nil {
				return 0, false
			}
			value = parsed
		}
	default:
		return 0, false
	}
	if value <= 0 {
		return 0, false
	}
	if value > 4 {
		value = 4
	}
	return value, true
}

// EnergyCategoryForValue maps a 1-4 level to its category label.
func EnergyCategoryForValue(value int) (EnergyCategory, bool) {
	switch {
	case value <= 0:
		return "", false
	case value == 1:
		return EnergyDrained, true
	case value == 2:
		return EnergyLow, true
	case value == 3:
		return EnergyOk, true
	default:
		return EnergyEnergized, true
	}
}

// EnergyValueForCategory maps a category token back to its 1-4 level.
// Used when writing a reconciled observation to the log.
func EnergyValueForCategory(category string) (int, bool) {
	token := EnergyCategory(strings.ToLower(strings.TrimSpace(category)))
	value, ok := energyValues[token]
	return value, ok
}

// TitleMood formats a mood label the way the external log stores it
// ("self-doubt" becomes "Self-Doubt").
func TitleMood(mood string) string {
	trimmed := strings.TrimSpace(mood)
	if trimmed == "" {
		return ""
	}
	var b strings.Builder
	upperNext := true
	for _, r := range trimmed {
		switch {
		case r == ' ' || r == '-' || r == '_':
			upperNext = true
			b.WriteRune(r)
		case upperNext:
			b.WriteString(strings.ToUpper(string(r)))
			upperNext = false
		default:
			b.WriteString(strings.ToLower(string(r)))
		}
	}
	return b.String()
}
