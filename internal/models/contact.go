package models

import (
	"strings"
	"unicode"
)

// Contact is a remote-backed person record. IsInDevice is a local annotation
// and never travels to or from the API.
type Contact struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	PhotoURL   string `json:"photo_url,omitempty"`
	IsInDevice bool   `json:"-"`
}

type ContactList struct {
	Contacts []Contact `json:"contacts"`
}

// FullName joins the non-blank name parts with a single space.
func (c Contact) FullName() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{c.FirstName, c.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// DisplayName is the full name, or the phone number when there is no name.
func (c Contact) DisplayName() string {
	if name := c.FullName(); name != "" {
		return name
	}
	return c.Phone
}

// Initial is the uppercased first rune of the display name, or '#'.
func (c Contact) Initial() string {
	for _, r := range c.DisplayName() {
		return string(unicode.ToUpper(r))
	}
	return "#"
}

func (c Contact) HasPhoto() bool {
	return strings.TrimSpace(c.PhotoURL) != ""
}

// PhoneKey is the normalized phone used for address book membership.
func (c Contact) PhoneKey() string {
	return NormalizePhone(c.Phone)
}

// NormalizePhone keeps only the decimal digits of raw, in any script.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (cl *ContactList) FindByID(id string) *Contact {
	for i, contact := range cl.Contacts {
		if contact.ID == id {
			return &cl.Contacts[i]
		}
	}
	return nil
}

func (cl *ContactList) FindByPhone(phone string) *Contact {
	key := NormalizePhone(phone)
	if key == "" {
		return nil
	}
	for i, contact := range cl.Contacts {
		if contact.PhoneKey() == key {
			return &cl.Contacts[i]
		}
	}
	return nil
}
