package models

import (
	"strings"
	"time"
)

// DeviceEntry is one person in the local address book. A person may carry
// several numbers; membership checks use their normalized form.
type DeviceEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phones    []string  `json:"phones"`
	PhotoFile string    `json:"photo_file,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PhoneKeys returns the non-empty normalized numbers of the entry.
func (e DeviceEntry) PhoneKeys() []string {
	keys := make([]string, 0, len(e.Phones))
	for _, p := range e.Phones {
		if key := NormalizePhone(p); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func (e DeviceEntry) HasPhone(phone string) bool {
	key := NormalizePhone(phone)
	if key == "" {
		return false
	}
	for _, k := range e.PhoneKeys() {
		if k == key {
			return true
		}
	}
	return false
}

func (e DeviceEntry) DisplayName() string {
	if name := strings.TrimSpace(e.Name); name != "" {
		return name
	}
	if len(e.Phones) > 0 {
		return e.Phones[0]
	}
	return ""
}
