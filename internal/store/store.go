// Package store holds the contacts list the UI renders. Every operation that
// touches the network or the address book returns a tea.Cmd; the message it
// produces is handed back to Apply, which performs exactly one state
// transition.
package store

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Remote
//go:generate mockgen -source=../device/provider.go -destination=mocks/provider_mock.go -package=mocks Provider

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"rhystmorgan/phonebook/internal/audit"
	"rhystmorgan/phonebook/internal/device"
	"rhystmorgan/phonebook/internal/metrics"
	"rhystmorgan/phonebook/internal/models"
)

// Remote is the contacts API. api.Repository satisfies it.
type Remote interface {
	GetAll(ctx context.Context) ([]models.Contact, error)
	// Create and Update upload photoPath first when it is non-empty.
	Create(ctx context.Context, contact models.Contact, photoPath string) (models.Contact, error)
	Update(ctx context.Context, contact models.Contact, photoPath string) (models.Contact, error)
	Delete(ctx context.Context, id string) error
}

// State is replaced as a whole on every change. Contacts is never mutated in
// place once published, so a State returned by Snapshot is safe to keep.
type State struct {
	Contacts           []models.Contact
	SearchQuery        string
	IsLoading          bool
	IsRefreshingBadges bool
	Error              string
}

// Store owns the contact list and the cached address book numbers.
type Store struct {
	remote  Remote
	device  device.Provider
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor *audit.Auditor

	mu            sync.Mutex
	state         State
	deviceNumbers map[string]struct{}
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

func WithAuditor(a *audit.Auditor) Option {
	return func(s *Store) {
		s.auditor = a
	}
}

// New returns a Store with an empty list. provider may be nil.
func New(remote Remote, provider device.Provider, opts ...Option) *Store {
	s := &Store{
		remote:        remote,
		device:        provider,
		logger:        slog.Default(),
		deviceNumbers: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Groups is the filtered, sorted and grouped view of the current state.
func (s *Store) Groups() []Group {
	st := s.Snapshot()
	return Project(st.Contacts, st.SearchQuery)
}

func (s *Store) Device() device.Provider {
	return s.device
}

func (s *Store) update(fn func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	return s.state
}

func (s *Store) SetSearchQuery(query string) {
	s.update(func(st State) State {
		st.SearchQuery = query
		return st
	})
}

func (s *Store) DismissError() {
	s.update(func(st State) State {
		st.Error = ""
		return st
	})
}

// MarkSavedToDevice records that the contact was just written to the address
// book without rescanning it.
func (s *Store) MarkSavedToDevice(id string) {
	s.mu.Lock()
	contacts := make([]models.Contact, len(s.state.Contacts))
	copy(contacts, s.state.Contacts)
	for i := range contacts {
		if contacts[i].ID != id {
			continue
		}
		contacts[i].IsInDevice = true
		if key := contacts[i].PhoneKey(); key != "" {
			s.deviceNumbers[key] = struct{}{}
		}
	}
	s.state.Contacts = contacts
	s.mu.Unlock()

	if err := s.auditor.Record(audit.ActionSaveToDevice, id, nil); err != nil {
		s.logger.Warn("audit record failed", "op", "save_to_device", "id", id, "error", err)
	}
}

// inDevice must be called with mu held.
func (s *Store) inDevice(phone string) bool {
	key := models.NormalizePhone(phone)
	if key == "" {
		return false
	}
	_, ok := s.deviceNumbers[key]
	return ok
}

func (s *Store) findByID(id string) (models.Contact, bool) {
	st := s.Snapshot()
	for _, c := range st.Contacts {
		if c.ID == id {
			return c, true
		}
	}
	return models.Contact{}, false
}

func trimmed(first, last, phone string) (string, string, string) {
	return strings.TrimSpace(first), strings.TrimSpace(last), strings.TrimSpace(phone)
}

// Apply performs the state transition for msg and reports whether msg
// belonged to the store.
func (s *Store) Apply(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case ContactsLoadedMsg:
		s.applyLoaded(msg)
	case ContactCreatedMsg:
		s.applyCreated(msg)
	case ContactUpdatedMsg:
		s.applyUpdated(msg)
	case ContactDeletedMsg:
		s.applyDeleted(msg)
	case DeviceBadgesMsg:
		s.applyBadges(msg)
	default:
		return false
	}
	return true
}
