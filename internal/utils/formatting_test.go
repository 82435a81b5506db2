package utils

import (
	"testing"
	"time"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		max      int
		expected string
	}{
		{"Ada", 10, "Ada"},
		{"Ada Lovelace", 8, "Ada L..."},
		{"Ada Lovelace", 2, "Ad"},
		{"Çiğdem Yılmaz", 7, "Çiğd..."},
	}

	for _, tt := range tests {
		if got := TruncateString(tt.input, tt.max); got != tt.expected {
			t.Errorf("TruncateString(%q, %d): expected %q, got %q", tt.input, tt.max, tt.expected, got)
		}
	}
}

func TestPadString(t *testing.T) {
	if got := PadString("ab", 4, '.'); got != "ab.." {
		t.Errorf("Expected %q, got %q", "ab..", got)
	}
	if got := PadString("abcdef", 4, '.'); got != "abcdef" {
		t.Errorf("Expected long strings to be left alone, got %q", got)
	}
}

func TestFormatTimeAgo(t *testing.T) {
	tests := []struct {
		diff     time.Duration
		expected string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 min ago"},
		{5 * time.Minute, "5 mins ago"},
		{3 * time.Hour, "3 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{14 * 24 * time.Hour, "2 weeks ago"},
		{90 * 24 * time.Hour, "3 months ago"},
	}

	for _, tt := range tests {
		if got := formatTimeAgo(tt.diff); got != tt.expected {
			t.Errorf("formatTimeAgo(%v): expected %q, got %q", tt.diff, tt.expected, got)
		}
	}
}

func TestFormatConfirmationTextIsOrdered(t *testing.T) {
	got := FormatConfirmationText("delete", map[string]string{"phone": "555", "name": "Ada"})
	expected := "Confirm delete:\n\n  name: Ada\n  phone: 555\n\nProceed? (y/N)"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestSetTheme(t *testing.T) {
	defer SetTheme(ThemeMocha)

	if !SetTheme("Latte") {
		t.Fatal("Expected latte to be a known theme")
	}
	if Colours.Base != "#eff1f5" {
		t.Errorf("Expected latte base colour, got %s", Colours.Base)
	}
	if SetTheme("solarized") {
		t.Error("Expected unknown theme to report false")
	}
	if Colours.Base != "#1e1e2e" {
		t.Errorf("Expected fallback to mocha, got %s", Colours.Base)
	}
}
