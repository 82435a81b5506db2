package views

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/phonebook/internal/audit"
	"rhystmorgan/phonebook/internal/config"
	"rhystmorgan/phonebook/internal/device"
	"rhystmorgan/phonebook/internal/models"
	"rhystmorgan/phonebook/internal/photos"
	"rhystmorgan/phonebook/internal/storage"
	"rhystmorgan/phonebook/internal/store"
	"rhystmorgan/phonebook/internal/utils"
)

type ViewState int

const (
	ViewContacts ViewState = iota
	ViewProfile
	ViewContactForm
	ViewCrop
)

// Grants toggles address book access at runtime. device.Book satisfies it.
type Grants interface {
	Permissions() device.Permissions
	SetPermissions(device.Permissions)
}

// Deps is everything the screens need. Grants, Auditor, Storage and Photos may be
// nil.
type Deps struct {
	Store   *store.Store
	Grants  Grants
	Storage *storage.Storage
	Auditor *audit.Auditor
	Config  *config.AppConfig
	Logger  *slog.Logger
	Photos  *photos.Fetcher
}

type AppModel struct {
	state  ViewState
	width  int
	height int
	deps   Deps
	prefs  *storage.Config

	contactsView *ContactsModel
	profileView  *ProfileModel
	formView     *ContactFormModel
	cropView     *CropModel

	err error
}

type NavigateMsg struct {
	State ViewState
	Data  interface{}
}

type ErrorMsg struct {
	Err error
}

func NewAppModel(deps Deps) (*AppModel, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("contact store is required")
	}
	if deps.Config == nil {
		deps.Config = config.GetDefaultConfig()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Photos == nil {
		deps.Photos = photos.NewFetcher(nil)
	}

	prefs := &storage.Config{Theme: utils.ThemeMocha}
	if deps.Storage != nil {
		loaded, err := deps.Storage.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		prefs = loaded
	}
	if !utils.SetTheme(prefs.Theme) {
		deps.Logger.Warn("unknown theme, using default", "theme", prefs.Theme)
	}

	history := models.NewSearchHistory(models.DefaultSearchHistorySize)
	history.Import(prefs.SearchHistory)

	app := &AppModel{
		state: ViewContacts,
		deps:  deps,
		prefs: prefs,
	}
	app.contactsView = NewContactsModel(deps, history, app.savePrefs)

	return app, nil
}

func (m *AppModel) Init() tea.Cmd {
	return m.contactsView.Init()
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.resize()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case NavigateMsg:
		return m.navigateTo(msg.State, msg.Data)

	case ErrorMsg:
		m.err = msg.Err
		m.deps.Logger.Error("view error", "view", m.viewName(), "error", msg.Err)
		return m, nil

	case CropDoneMsg:
		if m.formView != nil {
			m.formView.SetPhoto(msg.Path)
		}
		return m.navigateTo(ViewContactForm, nil)

	case QuitMsg:
		return m, tea.Quit
	}

	if m.deps.Store.Apply(msg) {
		return m, m.afterStoreMsg(msg)
	}

	switch m.state {
	case ViewContacts:
		m.contactsView, cmd = m.contactsView.Update(msg)
	case ViewProfile:
		if m.profileView != nil {
			m.profileView, cmd = m.profileView.Update(msg)
		}
	case ViewContactForm:
		if m.formView != nil {
			m.formView, cmd = m.formView.Update(msg)
		}
	case ViewCrop:
		if m.cropView != nil {
			m.cropView, cmd = m.cropView.Update(msg)
		}
	}

	return m, cmd
}

// afterStoreMsg decides where to go once the store has applied msg.
func (m *AppModel) afterStoreMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case store.ContactsLoadedMsg:
		if msg.Err == nil {
			return m.deps.Store.RefreshDeviceBadges()
		}
	case store.ContactCreatedMsg:
		if m.formView != nil {
			m.formView.Done()
		}
		if msg.Err == nil && m.state == ViewContactForm {
			m.contactsView.Select(msg.Contact.ID)
			return NavigateTo(ViewContacts, nil)
		}
	case store.ContactUpdatedMsg:
		if m.formView != nil {
			m.formView.Done()
		}
		if msg.Err == nil && m.state == ViewContactForm {
			return NavigateTo(ViewProfile, msg.Contact.ID)
		}
	case store.ContactDeletedMsg:
		if msg.Err == nil && m.state == ViewProfile {
			return NavigateTo(ViewContacts, nil)
		}
	}
	return nil
}

func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content string

	switch m.state {
	case ViewContacts:
		content = m.contactsView.View()
	case ViewProfile:
		if m.profileView != nil {
			content = m.profileView.View()
		}
	case ViewContactForm:
		if m.formView != nil {
			content = m.formView.View()
		}
	case ViewCrop:
		if m.cropView != nil {
			content = m.cropView.View()
		}
	default:
		content = "Unknown view"
	}

	if m.err != nil {
		content += "\n" + errorBanner().Render(fmt.Sprintf("Error: %s", m.err.Error()))
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *AppModel) navigateTo(state ViewState, data interface{}) (tea.Model, tea.Cmd) {
	m.state = state
	m.err = nil

	var cmd tea.Cmd
	switch state {
	case ViewContacts:
		m.profileView = nil
		m.formView = nil
		m.cropView = nil
	case ViewProfile:
		if id, ok := data.(string); ok {
			m.profileView = NewProfileModel(m.deps, id)
			cmd = m.profileView.Init()
		}
		m.formView = nil
	case ViewContactForm:
		// Without a FormRequest this returns to the open form, e.g. after a crop.
		if req, ok := data.(FormRequest); ok || m.formView == nil {
			m.formView = NewContactFormModel(m.deps, req.Contact)
			cmd = m.formView.Init()
		}
		m.cropView = nil
	case ViewCrop:
		if path, ok := data.(string); ok {
			m.cropView = NewCropModel(m.deps, path)
			cmd = m.cropView.Init()
		}
	}

	m.deps.Logger.Debug("navigate", "view", m.viewName())
	return m, tea.Batch(cmd, m.resize())
}

func (m *AppModel) resize() tea.Cmd {
	size := tea.WindowSizeMsg{Width: m.width, Height: m.height}
	m.contactsView.SetSize(m.width, m.height)
	if m.profileView != nil {
		m.profileView.SetSize(m.width, m.height)
	}
	if m.formView != nil {
		m.formView.SetSize(m.width, m.height)
	}
	if m.cropView != nil {
		var cmd tea.Cmd
		m.cropView, cmd = m.cropView.Update(size)
		return cmd
	}
	return nil
}

func (m *AppModel) savePrefs(history []string) tea.Cmd {
	if m.deps.Storage == nil {
		return nil
	}
	prefs := *m.prefs
	prefs.SearchHistory = history
	m.prefs = &prefs
	st := m.deps.Storage
	return func() tea.Msg {
		if err := st.SaveConfig(&prefs); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to save search history: %w", err)}
		}
		return nil
	}
}

func (m *AppModel) viewName() string {
	switch m.state {
	case ViewContacts:
		return "contacts"
	case ViewProfile:
		return "profile"
	case ViewContactForm:
		return "contact_form"
	case ViewCrop:
		return "crop"
	default:
		return "unknown"
	}
}

// QuitMsg ends the program from a child view.
type QuitMsg struct{}

// FormRequest opens the contact form. A nil Contact creates a new one.
type FormRequest struct {
	Contact *models.Contact
}

func NavigateTo(state ViewState, data interface{}) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{State: state, Data: data}
	}
}

func ShowError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}
