package textfilter

import "testing"

func TestFilter_FilterText(t *testing.T) {
	filter := NewFilter()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple replacement", "What the hell is that?", "What the heck is that?"},
		{"multiple words", "This is damn crap!", "This is dang crud!"},
		{"uppercase", "DAMN the torpedoes", "DANG the torpedoes"},
		{"title case", "Hell no.", "Heck no."},
		{"word boundaries", "A classical assassin passes.", "A classical assassin passes."},
		{"compound word", "Total bullshit.", "Total baloney."},
		{"mixed case", "dAmN it", "dAnG it"},
		{"empty", "", ""},
		{"clean", "The bridge sways in the wind.", "The bridge sways in the wind."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.FilterText(tt.input); got != tt.expected {
				t.Errorf("FilterText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFilter_ContainsProfanity(t *testing.T) {
	filter := NewFilter()

	if !filter.ContainsProfanity("Oh hell.") {
		t.Error("Expected profanity to be detected")
	}
	if filter.ContainsProfanity("Hello there, shellfish.") {
		t.Error("Expected no profanity in partial matches")
	}
}

func TestShouldFilter(t *testing.T) {
	for _, rating := range []string{"G", "pg", "PG13", " pg-13 "} {
		if !ShouldFilter(rating) {
			t.Errorf("Expected %q to be filtered", rating)
		}
	}
	for _, rating := range []string{"R", "NC17", ""} {
		if ShouldFilter(rating) {
			t.Errorf("Expected %q not to be filtered", rating)
		}
	}
}
