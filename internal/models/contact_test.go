package models

import (
	"testing"
)

func TestContactDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		contact  Contact
		expected string
	}{
		{"first and last", Contact{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{"first only", Contact{FirstName: "Ada"}, "Ada"},
		{"last only", Contact{LastName: " Lovelace "}, "Lovelace"},
		{"blank names fall back to phone", Contact{FirstName: "  ", Phone: "555 123"}, "555 123"},
		{"nothing at all", Contact{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.contact.DisplayName(); got != tt.expected {
				t.Errorf("Expected display name %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestContactInitial(t *testing.T) {
	tests := []struct {
		contact  Contact
		expected string
	}{
		{Contact{FirstName: "alice"}, "A"},
		{Contact{FirstName: "Bob"}, "B"},
		{Contact{FirstName: "çiğdem"}, "Ç"},
		{Contact{Phone: "5551234"}, "5"},
		{Contact{}, "#"},
	}

	for _, tt := range tests {
		if got := tt.contact.Initial(); got != tt.expected {
			t.Errorf("Expected initial %q for %+v, got %q", tt.expected, tt.contact, got)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"+1 (555) 123-4567": "15551234567",
		"555.123.4567":      "5551234567",
		"":                  "",
		"no digits":         "",
		"٣٤٥":               "٣٤٥",
		"+٩٦٦ ٥٠":           "٩٦٦٥٠",
	}

	for input, expected := range tests {
		if got := NormalizePhone(input); got != expected {
			t.Errorf("NormalizePhone(%q): expected %q, got %q", input, expected, got)
		}
	}
}

func TestContactListFind(t *testing.T) {
	list := &ContactList{Contacts: []Contact{
		{ID: "1", FirstName: "Ada", Phone: "+1 555 0100"},
		{ID: "2", FirstName: "Alan", Phone: "555-0199"},
	}}

	if c := list.FindByID("2"); c == nil || c.FirstName != "Alan" {
		t.Errorf("Expected to find Alan by ID, got %+v", c)
	}
	if c := list.FindByID("3"); c != nil {
		t.Errorf("Expected no contact for unknown ID, got %+v", c)
	}
	if c := list.FindByPhone("15550100"); c == nil || c.ID != "1" {
		t.Errorf("Expected to find Ada by normalized phone, got %+v", c)
	}
	if c := list.FindByPhone("---"); c != nil {
		t.Errorf("Expected blank phone key to match nothing, got %+v", c)
	}
}
