package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/phonebook/internal/device"
	"rhystmorgan/phonebook/internal/models"
	"rhystmorgan/phonebook/internal/store"
	"rhystmorgan/phonebook/internal/utils"
)

type ContactsModel struct {
	deps           Deps
	store          *store.Store
	history        *models.SearchHistory
	persistHistory func([]string) tea.Cmd

	searchInput   textinput.Model
	historyIndex  int
	selected      int
	confirmDelete bool
	spinner       spinner.Model

	width  int
	height int
}

func NewContactsModel(deps Deps, history *models.SearchHistory, persist func([]string) tea.Cmd) *ContactsModel {
	searchInput := textinput.New()
	searchInput.Placeholder = "Search by name or phone..."
	searchInput.CharLimit = 50
	searchInput.PromptStyle = lipgloss.NewStyle().Foreground(colour(utils.Colours.Blue))
	searchInput.TextStyle = lipgloss.NewStyle().Foreground(colour(utils.Colours.Text))

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colour(utils.Colours.Yellow))

	return &ContactsModel{
		deps:           deps,
		store:          deps.Store,
		history:        history,
		persistHistory: persist,
		searchInput:    searchInput,
		historyIndex:   -1,
		spinner:        s,
	}
}

func (m *ContactsModel) Init() tea.Cmd {
	return tea.Batch(m.store.LoadAll(), m.spinner.Tick)
}

func (m *ContactsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.searchInput.Width = max(width-12, 10)
}

// Select moves the cursor to id if it is visible.
func (m *ContactsModel) Select(id string) {
	for i, c := range store.Flatten(m.store.Groups()) {
		if c.ID == id {
			m.selected = i
			return
		}
	}
}

func (m *ContactsModel) visible() []models.Contact {
	flat := store.Flatten(m.store.Groups())
	if m.selected >= len(flat) {
		m.selected = max(len(flat)-1, 0)
	}
	return flat
}

func (m *ContactsModel) current() (models.Contact, bool) {
	flat := m.visible()
	if len(flat) == 0 {
		return models.Contact{}, false
	}
	return flat[m.selected], true
}

func (m *ContactsModel) Update(msg tea.Msg) (*ContactsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.confirmDelete {
			return m.updateDeleteConfirm(msg)
		}
		if m.searchInput.Focused() {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m *ContactsModel) updateList(msg tea.KeyMsg) (*ContactsModel, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, func() tea.Msg { return QuitMsg{} }

	case "/", "ctrl+s":
		m.historyIndex = -1
		return m, m.searchInput.Focus()

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.visible())-1 {
			m.selected++
		}

	case "enter":
		if c, ok := m.current(); ok {
			return m, NavigateTo(ViewProfile, c.ID)
		}

	case "n", "ctrl+n":
		return m, NavigateTo(ViewContactForm, FormRequest{})

	case "e":
		if c, ok := m.current(); ok {
			return m, NavigateTo(ViewContactForm, FormRequest{Contact: &c})
		}

	case "d", "delete":
		if _, ok := m.current(); ok {
			m.confirmDelete = true
		}

	case "r":
		return m, m.store.LoadAll()

	case "b":
		return m, m.store.RefreshDeviceBadges()

	case "g":
		return m, m.toggleGrant(true)

	case "w":
		return m, m.toggleGrant(false)

	case "esc":
		m.store.DismissError()
	}

	return m, nil
}

// toggleGrant flips the read or write grant. Granting read rescans at once.
func (m *ContactsModel) toggleGrant(read bool) tea.Cmd {
	if m.deps.Grants == nil {
		return nil
	}

	perms := m.deps.Grants.Permissions()
	if read {
		perms.Read = !perms.Read
	} else {
		perms.Write = !perms.Write
	}
	m.deps.Grants.SetPermissions(perms)
	m.deps.Logger.Info("address book grants changed", "read", perms.Read, "write", perms.Write)

	if read && perms.Read {
		return m.store.RefreshDeviceBadges()
	}
	return nil
}

func (m *ContactsModel) updateSearch(msg tea.KeyMsg) (*ContactsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchInput.Blur()
		m.historyIndex = -1
		return m, nil

	case "enter":
		if m.historyIndex >= 0 && strings.TrimSpace(m.searchInput.Value()) == "" {
			m.applyQuery(m.history.Terms()[m.historyIndex])
		}
		m.searchInput.Blur()
		m.historyIndex = -1
		if strings.TrimSpace(m.searchInput.Value()) == "" {
			return m, nil
		}
		m.history.Push(m.searchInput.Value())
		return m, m.persistHistory(m.history.Terms())

	case "tab":
		if m.searchInput.Value() == "" && m.history.Len() > 0 {
			m.historyIndex = (m.historyIndex + 1) % m.history.Len()
		}
		return m, nil

	case "ctrl+d":
		if m.historyIndex >= 0 {
			m.history.Remove(m.history.Terms()[m.historyIndex])
			m.historyIndex = -1
			return m, m.persistHistory(m.history.Terms())
		}
		return m, nil

	case "ctrl+l":
		m.history.Clear()
		m.historyIndex = -1
		return m, m.persistHistory(m.history.Terms())
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() != m.store.Snapshot().SearchQuery {
		m.applyQuery(m.searchInput.Value())
		m.historyIndex = -1
	}
	return m, cmd
}

func (m *ContactsModel) applyQuery(query string) {
	m.searchInput.SetValue(query)
	m.store.SetSearchQuery(query)
	m.selected = 0
}

func (m *ContactsModel) updateDeleteConfirm(msg tea.KeyMsg) (*ContactsModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirmDelete = false
		if c, ok := m.current(); ok {
			return m, m.store.Delete(c.ID)
		}
	case "n", "N", "esc":
		m.confirmDelete = false
	}
	return m, nil
}

func (m *ContactsModel) View() string {
	st := m.store.Snapshot()
	var content strings.Builder

	title := "Contacts"
	if n := len(st.Contacts); n > 0 {
		title += fmt.Sprintf(" (%d)", n)
	}
	content.WriteString(headerStyle(m.width).Render(title))
	content.WriteString("\n")
	content.WriteString(panelStyle().Width(max(m.width-2, 20)).Render(m.searchInput.View()))
	content.WriteString("\n")

	if m.searchInput.Focused() && m.searchInput.Value() == "" && m.history.Len() > 0 {
		content.WriteString(m.renderHistory())
		content.WriteString("\n")
	}

	if st.Error != "" {
		content.WriteString(errorBanner().Render("✗ " + st.Error + "  (esc to dismiss)"))
		content.WriteString("\n")
	}

	if m.confirmDelete {
		if c, ok := m.current(); ok {
			content.WriteString(errorBanner().Render(utils.FormatConfirmationText("delete", map[string]string{
				"name":  c.DisplayName(),
				"phone": c.Phone,
			})))
			content.WriteString("\n")
		}
	}

	switch {
	case st.IsLoading && len(st.Contacts) == 0:
		content.WriteString(lipgloss.NewStyle().Padding(1, 0).Render(m.spinner.View() + " Loading contacts..."))
	case len(m.visible()) == 0:
		empty := "No contacts yet. Press n to create your first contact."
		if strings.TrimSpace(st.SearchQuery) != "" {
			empty = "No contacts found matching your search."
		}
		content.WriteString(mutedStyle().Padding(1, 0).Render(empty))
	default:
		content.WriteString(m.renderList())
	}

	content.WriteString("\n")
	content.WriteString(m.renderFooter(st))
	return content.String()
}

func (m *ContactsModel) renderHistory() string {
	var b strings.Builder
	b.WriteString(mutedStyle().Render("Recent searches (tab to pick, ctrl+d remove, ctrl+l clear)"))
	for i, term := range m.history.Terms() {
		line := "  " + term
		if i == m.historyIndex {
			line = lipgloss.NewStyle().Foreground(colour(utils.Colours.Mauve)).Render("› " + term)
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

func (m *ContactsModel) renderList() string {
	var lines []string
	selectedLine := 0
	index := 0

	groupStyle := lipgloss.NewStyle().Bold(true).Foreground(colour(utils.Colours.Peach))
	for _, g := range m.store.Groups() {
		lines = append(lines, groupStyle.Render(g.Key))
		for _, c := range g.Contacts {
			if index == m.selected {
				selectedLine = len(lines)
			}
			lines = append(lines, m.renderItem(c, index == m.selected))
			index++
		}
	}

	// Keep the cursor on screen; the header, search box and footer take
	// about ten lines.
	window := max(m.height-10, 5)
	start := 0
	if selectedLine >= window {
		start = selectedLine - window + 1
	}
	end := min(start+window, len(lines))
	return strings.Join(lines[start:end], "\n")
}

func (m *ContactsModel) renderItem(c models.Contact, selected bool) string {
	nameWidth := max(min(m.width/2, 40), 12)
	name := utils.PadString(utils.TruncateString(c.DisplayName(), nameWidth), nameWidth, ' ')

	badge := " "
	if c.IsInDevice {
		badge = lipgloss.NewStyle().Foreground(colour(utils.Colours.Green)).Render("☎")
	}
	avatar := lipgloss.NewStyle().Foreground(colour(utils.Colours.Lavender)).Render(c.Initial())
	if c.HasPhoto() {
		avatar = lipgloss.NewStyle().Foreground(colour(utils.Colours.Sapphire)).Render("◉")
	}

	line := fmt.Sprintf(" %s %s %s %s", avatar, name, mutedStyle().Render(c.Phone), badge)
	if selected {
		return lipgloss.NewStyle().
			Background(colour(utils.Colours.Surface1)).
			Foreground(colour(utils.Colours.Text)).
			Render("›" + line)
	}
	return " " + line
}

func (m *ContactsModel) renderFooter(st store.State) string {
	perms := device.Permissions{}
	if m.deps.Grants != nil {
		perms = m.deps.Grants.Permissions()
	}
	grant := func(label string, on bool) string {
		if on {
			return lipgloss.NewStyle().Foreground(colour(utils.Colours.Green)).Render(label + " ✓")
		}
		return mutedStyle().Render(label + " ✗")
	}

	status := grant("read", perms.Read) + "  " + grant("write", perms.Write)
	if st.IsRefreshingBadges {
		status += "  " + m.spinner.View() + " scanning address book"
	} else if st.IsLoading {
		status += "  " + m.spinner.View() + " syncing"
	}

	help := "/ search • ↑/↓ move • enter open • n new • e edit • d delete • r refresh • b badges • g/w grants • q quit"
	return status + "\n" + helpStyle().Render(help)
}
