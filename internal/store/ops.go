package store

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"rhystmorgan/phonebook/internal/api"
	"rhystmorgan/phonebook/internal/audit"
	"rhystmorgan/phonebook/internal/device"
	"rhystmorgan/phonebook/internal/metrics"
	"rhystmorgan/phonebook/internal/models"
)

// Messages
type ContactsLoadedMsg struct {
	Contacts []models.Contact
	Err      error
}

type ContactCreatedMsg struct {
	Contact models.Contact
	Err     error
}

type ContactUpdatedMsg struct {
	Before  models.Contact
	Contact models.Contact
	Err     error
}

type ContactDeletedMsg struct {
	ID  string
	Err error
}

// DeviceBadgesMsg carries an address book scan. Complete is false when the
// scan stopped early and Numbers is only part of the book.
type DeviceBadgesMsg struct {
	Numbers  []string
	Complete bool
}

func errorMessage(action string, err error) string {
	return fmt.Sprintf("failed to %s: %s", action, api.ClassifyError(err).UserMessage())
}

func (s *Store) setLoading() {
	s.update(func(st State) State {
		st.IsLoading = true
		return st
	})
}

// LoadAll fetches the whole list.
func (s *Store) LoadAll() tea.Cmd {
	s.setLoading()
	return func() tea.Msg {
		contacts, err := s.remote.GetAll(context.Background())
		return ContactsLoadedMsg{Contacts: contacts, Err: err}
	}
}

func (s *Store) applyLoaded(msg ContactsLoadedMsg) {
	if msg.Err != nil {
		s.logger.Error("load contacts failed", "op", "load_all", "error", msg.Err)
		s.update(func(st State) State {
			st.IsLoading = false
			st.Error = errorMessage("load contacts", msg.Err)
			return st
		})
		return
	}

	contacts := make([]models.Contact, len(msg.Contacts))
	copy(contacts, msg.Contacts)
	for i := range contacts {
		contacts[i].IsInDevice = false
	}

	s.update(func(st State) State {
		st.Contacts = contacts
		st.IsLoading = false
		st.Error = ""
		return st
	})
	s.metrics.SetContactsLoaded(len(contacts))
	s.logger.Info("contacts loaded", "op", "load_all", "count", len(contacts))
}

// Create sends a new contact. Nothing is added to the list until the server
// returns the stored record.
func (s *Store) Create(first, last, phone, photoPath string) tea.Cmd {
	first, last, phone = trimmed(first, last, phone)
	contact := models.Contact{FirstName: first, LastName: last, Phone: phone}

	s.setLoading()
	return func() tea.Msg {
		created, err := s.remote.Create(context.Background(), contact, photoPath)
		return ContactCreatedMsg{Contact: created, Err: err}
	}
}

func (s *Store) applyCreated(msg ContactCreatedMsg) {
	if msg.Err != nil {
		s.logger.Error("create contact failed", "op", "create", "error", msg.Err)
		s.update(func(st State) State {
			st.IsLoading = false
			st.Error = errorMessage("create contact", msg.Err)
			return st
		})
		return
	}

	s.mu.Lock()
	created := msg.Contact
	created.IsInDevice = s.inDevice(created.Phone)

	contacts := make([]models.Contact, 0, len(s.state.Contacts)+1)
	for _, c := range s.state.Contacts {
		if c.ID != created.ID {
			contacts = append(contacts, c)
		}
	}
	s.state.Contacts = append(contacts, created)
	s.state.IsLoading = false
	s.state.Error = ""
	s.mu.Unlock()

	s.logger.Info("contact created", "op", "create", "id", created.ID)
	if err := s.auditor.Record(audit.ActionCreate, created.ID, nil); err != nil {
		s.logger.Warn("audit record failed", "op", "create", "id", created.ID, "error", err)
	}
}

// Update sends new field values for id. The current record is the base; when
// id is not in the list Error is set and a blank record carrying only the ID
// is sent anyway.
func (s *Store) Update(id, first, last, phone, photoPath string) tea.Cmd {
	first, last, phone = trimmed(first, last, phone)

	before, ok := s.findByID(id)
	if !ok {
		s.logger.Warn("updating contact missing from list", "op", "update", "id", id)
		before = models.Contact{ID: id}
	}

	contact := before
	contact.FirstName = first
	contact.LastName = last
	contact.Phone = phone
	contact.IsInDevice = false

	s.update(func(st State) State {
		st.IsLoading = true
		if !ok {
			st.Error = fmt.Sprintf("failed to update contact: %s is not in the list", id)
		}
		return st
	})
	return func() tea.Msg {
		updated, err := s.remote.Update(context.Background(), contact, photoPath)
		if err == nil && updated.ID == "" {
			updated.ID = id
		}
		return ContactUpdatedMsg{Before: before, Contact: updated, Err: err}
	}
}

func (s *Store) applyUpdated(msg ContactUpdatedMsg) {
	if msg.Err != nil {
		s.logger.Error("update contact failed", "op", "update", "id", msg.Before.ID, "error", msg.Err)
		s.update(func(st State) State {
			st.IsLoading = false
			st.Error = errorMessage("update contact", msg.Err)
			return st
		})
		return
	}

	s.mu.Lock()
	updated := msg.Contact
	updated.IsInDevice = s.inDevice(updated.Phone)

	contacts := make([]models.Contact, len(s.state.Contacts))
	copy(contacts, s.state.Contacts)
	replaced := false
	for i := range contacts {
		if contacts[i].ID == updated.ID {
			contacts[i] = updated
			replaced = true
		}
	}
	s.state.IsLoading = false
	if !replaced {
		// Deleted while the request was in flight, or never listed.
		s.mu.Unlock()
		s.logger.Warn("update reply for contact missing from list", "op", "update", "id", updated.ID)
		return
	}
	s.state.Contacts = contacts
	s.state.Error = ""
	s.mu.Unlock()

	s.logger.Info("contact updated", "op", "update", "id", updated.ID)
	if err := s.auditor.RecordChange(msg.Before, updated); err != nil {
		s.logger.Warn("audit record failed", "op", "update", "id", updated.ID, "error", err)
	}
}

func (s *Store) Delete(id string) tea.Cmd {
	s.setLoading()
	return func() tea.Msg {
		err := s.remote.Delete(context.Background(), id)
		return ContactDeletedMsg{ID: id, Err: err}
	}
}

func (s *Store) applyDeleted(msg ContactDeletedMsg) {
	if msg.Err != nil {
		s.logger.Error("delete contact failed", "op", "delete", "id", msg.ID, "error", msg.Err)
		s.update(func(st State) State {
			st.IsLoading = false
			st.Error = errorMessage("delete contact", msg.Err)
			return st
		})
		return
	}

	s.update(func(st State) State {
		contacts := make([]models.Contact, 0, len(st.Contacts))
		for _, c := range st.Contacts {
			if c.ID != msg.ID {
				contacts = append(contacts, c)
			}
		}
		st.Contacts = contacts
		st.IsLoading = false
		st.Error = ""
		return st
	})

	s.logger.Info("contact deleted", "op", "delete", "id", msg.ID)
	if err := s.auditor.Record(audit.ActionDelete, msg.ID, nil); err != nil {
		s.logger.Warn("audit record failed", "op", "delete", "id", msg.ID, "error", err)
	}
}

// RefreshDeviceBadges rescans the address book. It returns nil without the
// read grant.
func (s *Store) RefreshDeviceBadges() tea.Cmd {
	if s.device == nil || !s.device.HasReadAccess() {
		s.metrics.RecordScan(metrics.ScanDenied, 0)
		return nil
	}

	s.update(func(st State) State {
		st.IsRefreshingBadges = true
		return st
	})
	return func() tea.Msg {
		numbers, err := s.device.ReadAllNumbers(context.Background())
		if err != nil && !errors.Is(err, device.ErrScanAborted) {
			s.logger.Warn("unexpected address book error", "op", "refresh_badges", "error", err)
		}
		return DeviceBadgesMsg{Numbers: numbers, Complete: err == nil}
	}
}

func (s *Store) applyBadges(msg DeviceBadgesMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := make(map[string]struct{}, len(msg.Numbers))
	for _, n := range msg.Numbers {
		if key := models.NormalizePhone(n); key != "" {
			found[key] = struct{}{}
		}
	}

	if msg.Complete {
		s.deviceNumbers = found
	} else {
		for key := range found {
			s.deviceNumbers[key] = struct{}{}
		}
	}

	contacts := make([]models.Contact, len(s.state.Contacts))
	copy(contacts, s.state.Contacts)
	marked := 0
	for i := range contacts {
		in := s.inDevice(contacts[i].Phone)
		if msg.Complete {
			contacts[i].IsInDevice = in
		} else if in {
			contacts[i].IsInDevice = true
		}
		if contacts[i].IsInDevice {
			marked++
		}
	}

	s.state.Contacts = contacts
	s.state.IsRefreshingBadges = false

	s.logger.Debug("device badges refreshed", "op", "refresh_badges",
		"complete", msg.Complete, "numbers", len(found), "count", marked)
}
