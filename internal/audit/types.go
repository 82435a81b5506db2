package audit

import (
	"time"
)

// Action is the kind of change recorded against a contact
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionSaveToDevice Action = "save_to_device"
	ActionExport       Action = "export"
	ActionImport       Action = "import"
)

// Entry is a single line of the activity log
type Entry struct {
	ID        string            `json:"id"`
	ContactID string            `json:"contact_id"`
	Action    Action            `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
	Changes   map[string]Change `json:"changes,omitempty"`
}

// Change is the before and after of one contact field
type Change struct {
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
}
