// Package audit keeps an append-only, day-rotated JSON lines log of what
// happened to contacts.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"rhystmorgan/phonebook/internal/models"
)

const (
	defaultBatchSize = 10
	flushInterval    = time.Minute
)

// Auditor batches entries in memory and appends them to the log file.
type Auditor struct {
	logFile    string
	now        func() time.Time
	batchSize  int
	batchMu    sync.Mutex
	batch      []Entry
	fileMu     sync.Mutex
	flushTimer *time.Timer
}

// NewAuditor creates logDir if needed and opens today's log.
func NewAuditor(logDir string) (*Auditor, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	a := &Auditor{
		logFile:   filepath.Join(logDir, fmt.Sprintf("contact_audit_%s.log", time.Now().Format("2006-01-02"))),
		now:       time.Now,
		batchSize: defaultBatchSize,
		batch:     make([]Entry, 0, defaultBatchSize),
	}

	a.flushTimer = time.AfterFunc(flushInterval, func() {
		_ = a.Flush()
	})

	return a, nil
}

func (a *Auditor) LogFile() string {
	return a.logFile
}

// Record logs action against contactID. A nil Auditor records nothing.
func (a *Auditor) Record(action Action, contactID string, details map[string]string) error {
	if a == nil {
		return nil
	}
	return a.add(Entry{
		ContactID: contactID,
		Action:    action,
		Details:   details,
	})
}

// RecordChange logs the fields that differ between before and after.
func (a *Auditor) RecordChange(before, after models.Contact) error {
	if a == nil {
		return nil
	}

	changes := Diff(before, after)
	if len(changes) == 0 {
		return nil
	}
	return a.add(Entry{
		ContactID: after.ID,
		Action:    ActionUpdate,
		Changes:   changes,
	})
}

func (a *Auditor) add(e Entry) error {
	e.ID = uuid.NewString()
	e.Timestamp = a.now()

	a.batchMu.Lock()
	a.batch = append(a.batch, e)
	full := len(a.batch) >= a.batchSize
	a.batchMu.Unlock()

	if full {
		return a.Flush()
	}
	return nil
}

// Diff compares the remote-backed fields of two contacts.
func Diff(before, after models.Contact) map[string]Change {
	changes := make(map[string]Change)
	fields := []struct {
		name     string
		old, new string
	}{
		{"first_name", before.FirstName, after.FirstName},
		{"last_name", before.LastName, after.LastName},
		{"phone", before.Phone, after.Phone},
		{"photo_url", before.PhotoURL, after.PhotoURL},
	}
	for _, f := range fields {
		if f.old != f.new {
			changes[f.name] = Change{OldValue: f.old, NewValue: f.new}
		}
	}
	return changes
}

// Flush writes all pending entries to the log file.
func (a *Auditor) Flush() error {
	if a == nil {
		return nil
	}

	a.batchMu.Lock()
	if len(a.batch) == 0 {
		a.batchMu.Unlock()
		return nil
	}
	if a.flushTimer != nil {
		a.flushTimer.Reset(flushInterval)
	}
	pending := make([]Entry, len(a.batch))
	copy(pending, a.batch)
	a.batch = a.batch[:0]
	a.batchMu.Unlock()

	a.fileMu.Lock()
	defer a.fileMu.Unlock()

	file, err := os.OpenFile(a.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	for _, e := range pending {
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal audit entry: %w", err)
		}
		if _, err := file.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}
	}

	return nil
}

// History returns every logged entry for contactID, oldest first.
func (a *Auditor) History(contactID string) ([]Entry, error) {
	if err := a.Flush(); err != nil {
		return nil, err
	}

	a.fileMu.Lock()
	defer a.fileMu.Unlock()

	var entries []Entry
	file, err := os.Open(a.logFile)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	for {
		var e Entry
		if err := decoder.Decode(&e); err != nil {
			break
		}
		if e.ContactID == contactID {
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// Close stops the flush timer and writes what is pending.
func (a *Auditor) Close() error {
	if a == nil {
		return nil
	}
	if a.flushTimer != nil {
		a.flushTimer.Stop()
	}
	return a.Flush()
}
