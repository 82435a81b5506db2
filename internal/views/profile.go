package views

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/phonebook/internal/audit"
	"rhystmorgan/phonebook/internal/device"
	"rhystmorgan/phonebook/internal/models"
	"rhystmorgan/phonebook/internal/utils"
)

const historyLimit = 5

type deviceLookupMsg struct {
	ID     string
	Exists bool
}

type savedToDeviceMsg struct {
	ID string
	OK bool
}

type historyLoadedMsg struct {
	ID      string
	Entries []audit.Entry
}

// ProfileModel shows one contact and lets the user copy it into the address
// book.
type ProfileModel struct {
	deps          Deps
	id            string
	lookupDone    bool
	inBook        bool
	saving        bool
	confirmDelete bool
	message       string
	history       []audit.Entry

	width  int
	height int
}

func NewProfileModel(deps Deps, id string) *ProfileModel {
	return &ProfileModel{deps: deps, id: id}
}

func (m *ProfileModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *ProfileModel) Init() tea.Cmd {
	return tea.Batch(m.lookup(), m.loadHistory())
}

func (m *ProfileModel) contact() (models.Contact, bool) {
	for _, c := range m.deps.Store.Snapshot().Contacts {
		if c.ID == m.id {
			return c, true
		}
	}
	return models.Contact{}, false
}

func (m *ProfileModel) lookup() tea.Cmd {
	c, ok := m.contact()
	provider := m.deps.Store.Device()
	if !ok || provider == nil {
		return nil
	}
	id := m.id
	return func() tea.Msg {
		return deviceLookupMsg{ID: id, Exists: provider.FindByPhone(context.Background(), c.Phone)}
	}
}

func (m *ProfileModel) loadHistory() tea.Cmd {
	if m.deps.Auditor == nil {
		return nil
	}
	id, auditor := m.id, m.deps.Auditor
	return func() tea.Msg {
		entries, err := auditor.History(id)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to read contact history: %w", err)}
		}
		return historyLoadedMsg{ID: id, Entries: entries}
	}
}

func (m *ProfileModel) Update(msg tea.Msg) (*ProfileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case deviceLookupMsg:
		if msg.ID == m.id {
			m.lookupDone = true
			m.inBook = msg.Exists
		}

	case historyLoadedMsg:
		if msg.ID == m.id {
			m.history = msg.Entries
			if len(m.history) > historyLimit {
				m.history = m.history[len(m.history)-historyLimit:]
			}
		}

	case savedToDeviceMsg:
		m.saving = false
		if msg.ID != m.id {
			return m, nil
		}
		if msg.OK {
			m.deps.Store.MarkSavedToDevice(msg.ID)
			m.inBook = true
			m.lookupDone = true
			m.message = "Saved to address book."
		} else {
			m.message = "Could not save to the address book."
		}
		return m, m.loadHistory()

	case tea.KeyMsg:
		if m.confirmDelete {
			switch msg.String() {
			case "y", "Y":
				m.confirmDelete = false
				return m, m.deps.Store.Delete(m.id)
			case "n", "N", "esc":
				m.confirmDelete = false
			}
			return m, nil
		}

		switch msg.String() {
		case "esc", "q":
			m.deps.Store.DismissError()
			return m, NavigateTo(ViewContacts, nil)
		case "s":
			return m, m.saveToDevice()
		case "e":
			if c, ok := m.contact(); ok {
				return m, NavigateTo(ViewContactForm, FormRequest{Contact: &c})
			}
		case "d":
			m.confirmDelete = true
		}
	}

	return m, nil
}

// saveToDevice writes the contact to the address book. Without the write
// grant nothing is attempted.
func (m *ProfileModel) saveToDevice() tea.Cmd {
	c, ok := m.contact()
	provider := m.deps.Store.Device()
	if !ok || m.saving || provider == nil {
		return nil
	}
	if !provider.HasWriteAccess() {
		m.message = "Address book write access is off (press w on the list to grant it)."
		return nil
	}

	m.saving = true
	m.message = ""
	logger := m.deps.Logger
	fetcher := m.deps.Photos
	return func() tea.Msg {
		photo, err := fetcher.Fetch(context.Background(), c.PhotoURL)
		if err != nil {
			logger.Warn("photo download failed, saving without it", "id", c.ID, "error", err)
		}

		ok := provider.WriteContact(context.Background(), device.NewContact{
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Phone:     c.Phone,
			Photo:     photo,
		})
		return savedToDeviceMsg{ID: c.ID, OK: ok}
	}
}

func (m *ProfileModel) View() string {
	c, ok := m.contact()
	if !ok {
		return headerStyle(m.width).Render("Contact") + "\n" +
			mutedStyle().Padding(1, 0).Render("This contact is no longer in the list. Press esc to go back.")
	}

	var content strings.Builder
	content.WriteString(headerStyle(m.width).Render(c.DisplayName()))
	content.WriteString("\n\n")

	avatar := lipgloss.NewStyle().
		Width(5).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(colour(utils.Colours.Base)).
		Background(colour(utils.Colours.Lavender)).
		Render(c.Initial())

	label := lipgloss.NewStyle().Foreground(colour(utils.Colours.Subtext0)).Width(12)
	rows := []string{
		label.Render("First name") + c.FirstName,
		label.Render("Last name") + c.LastName,
		label.Render("Phone") + c.Phone,
	}
	if c.HasPhoto() {
		rows = append(rows, label.Render("Photo")+utils.TruncateString(c.PhotoURL, 60))
	}

	switch {
	case c.IsInDevice || m.inBook:
		rows = append(rows, label.Render("Device")+lipgloss.NewStyle().Foreground(colour(utils.Colours.Green)).Render("☎ in address book"))
	case m.lookupDone:
		rows = append(rows, label.Render("Device")+mutedStyle().Render("not in address book"))
	default:
		rows = append(rows, label.Render("Device")+mutedStyle().Render("checking..."))
	}

	content.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, avatar, "  ", strings.Join(rows, "\n")))
	content.WriteString("\n")

	if len(m.history) > 0 {
		content.WriteString("\n" + mutedStyle().Render("Recent activity") + "\n")
		for i := len(m.history) - 1; i >= 0; i-- {
			e := m.history[i]
			content.WriteString(fmt.Sprintf("  %s %s\n", string(e.Action), mutedStyle().Render(utils.FormatTimeAgo(e.Timestamp))))
		}
	}

	if st := m.deps.Store.Snapshot(); st.Error != "" {
		content.WriteString("\n" + errorBanner().Render("✗ "+st.Error))
	}
	if m.saving {
		content.WriteString("\n" + mutedStyle().Render("Saving to address book..."))
	}
	if m.message != "" {
		content.WriteString("\n" + successBanner().Render(m.message))
	}
	if m.confirmDelete {
		content.WriteString("\n" + errorBanner().Render(utils.FormatConfirmationText("delete", map[string]string{
			"name":  c.DisplayName(),
			"phone": c.Phone,
		})))
	}

	content.WriteString("\n" + helpStyle().Render("s save to device • e edit • d delete • esc back"))
	return content.String()
}
