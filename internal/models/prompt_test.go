package models

import "testing"

func TestDeriveStyle(t *testing.T) {
	tests := []struct {
		id       string
		expected string
	}{
		{"gratitude-3", "gratitude"},
		{"memory_12", "memory"},
		{"reflection-deep-1", "reflection"},
		{"solo", "solo"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := DeriveStyle(tt.id); got != tt.expected {
			t.Errorf("DeriveStyle(%q): expected %q, got %q", tt.id, tt.expected, got)
		}
	}
}

func TestStyleLabelPrefersExplicitStyle(t *testing.T) {
	p := PromptTemplate{ID: "gratitude-3", Style: "evening"}
	if got := p.StyleLabel(); got != "evening" {
		t.Errorf("Expected explicit style 'evening', got %q", got)
	}

	p = PromptTemplate{ID: "gratitude-3"}
	if got := p.StyleLabel(); got != "gratitude" {
		t.Errorf("Expected derived style 'gratitude', got %q", got)
	}
}

func TestAllowsTime(t *testing.T) {
	unrestricted := PromptTemplate{ID: "soft-2"}
	if !unrestricted.AllowsTime("Evening") {
		t.Error("Expected template without times to allow any label")
	}

	morningOnly := PromptTemplate{ID: "soft-1", Times: []string{"Morning"}}
	if morningOnly.AllowsTime("Evening") {
		t.Error("Expected Morning-only template to reject Evening")
	}
	if !morningOnly.AllowsTime("Morning") {
		t.Error("Expected Morning-only template to allow Morning")
	}
}
