package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/phonebook/internal/models"
	"rhystmorgan/phonebook/internal/utils"
	"rhystmorgan/phonebook/internal/validation"
)

type FormField int

const (
	FieldFirstName FormField = iota
	FieldLastName
	FieldPhone
	FieldPhoto
	FieldSubmit
)

// ContactFormModel creates a contact, or edits one when editing is set.
type ContactFormModel struct {
	deps    Deps
	editing *models.Contact

	inputs     []textinput.Model
	field      FormField
	submitting bool
	result     validation.ValidationResult

	width  int
	height int
}

func newFormInput(placeholder string, limit int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.PromptStyle = lipgloss.NewStyle().Foreground(colour(utils.Colours.Blue))
	input.TextStyle = lipgloss.NewStyle().Foreground(colour(utils.Colours.Text))
	return input
}

func NewContactFormModel(deps Deps, editing *models.Contact) *ContactFormModel {
	inputs := []textinput.Model{
		newFormInput("First name", validation.MaxNameLength),
		newFormInput("Last name", validation.MaxNameLength),
		newFormInput("Phone number", validation.MaxPhoneLength),
		newFormInput("Path to a .jpg or .png (enter to crop)", 512),
	}
	if editing != nil {
		inputs[FieldFirstName].SetValue(editing.FirstName)
		inputs[FieldLastName].SetValue(editing.LastName)
		inputs[FieldPhone].SetValue(editing.Phone)
	}

	return &ContactFormModel{
		deps:    deps,
		editing: editing,
		inputs:  inputs,
		field:   FieldFirstName,
		result:  validation.ValidationResult{IsValid: true},
	}
}

func (m *ContactFormModel) Init() tea.Cmd {
	m.deps.Store.DismissError()
	return m.focus()
}

func (m *ContactFormModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetPhoto stages a cropped image for upload.
func (m *ContactFormModel) SetPhoto(path string) {
	m.inputs[FieldPhoto].SetValue(path)
	m.field = FieldSubmit
	m.focus()
}

// Done is called once the store has applied the submit result.
func (m *ContactFormModel) Done() {
	m.submitting = false
}

func (m *ContactFormModel) focus() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.inputs {
		if FormField(i) == m.field {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *ContactFormModel) next() tea.Cmd {
	if m.field < FieldSubmit {
		m.field++
	}
	return m.focus()
}

func (m *ContactFormModel) prev() tea.Cmd {
	if m.field > FieldFirstName {
		m.field--
	}
	return m.focus()
}

func (m *ContactFormModel) value(f FormField) string {
	return strings.TrimSpace(m.inputs[f].Value())
}

// CanSubmit mirrors the save button's enabled state.
func (m *ContactFormModel) CanSubmit() bool {
	return !m.submitting && validation.CanSubmit(m.value(FieldFirstName), m.value(FieldPhone))
}

func (m *ContactFormModel) Update(msg tea.Msg) (*ContactFormModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.submitting {
		return m, nil
	}

	switch key.String() {
	case "esc":
		m.deps.Store.DismissError()
		if m.editing != nil {
			return m, NavigateTo(ViewProfile, m.editing.ID)
		}
		return m, NavigateTo(ViewContacts, nil)

	case "tab", "down":
		return m, m.next()

	case "shift+tab", "up":
		return m, m.prev()

	case "ctrl+s":
		return m, m.submit()

	case "enter":
		switch m.field {
		case FieldPhoto:
			if path := m.value(FieldPhoto); path != "" {
				return m, NavigateTo(ViewCrop, path)
			}
			return m, m.next()
		case FieldSubmit:
			return m, m.submit()
		default:
			return m, m.next()
		}
	}

	if m.field == FieldSubmit {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
	return m, cmd
}

func (m *ContactFormModel) submit() tea.Cmd {
	if !m.CanSubmit() {
		return nil
	}

	in := validation.Input{
		FirstName: m.value(FieldFirstName),
		LastName:  m.value(FieldLastName),
		Phone:     m.value(FieldPhone),
	}
	if m.editing != nil {
		in.ID = m.editing.ID
	}
	m.result = validation.ValidateContact(in, m.deps.Store.Snapshot().Contacts)
	if !m.result.IsValid {
		return nil
	}

	m.submitting = true
	photo := m.value(FieldPhoto)
	if m.editing != nil {
		return m.deps.Store.Update(m.editing.ID, in.FirstName, in.LastName, in.Phone, photo)
	}
	return m.deps.Store.Create(in.FirstName, in.LastName, in.Phone, photo)
}

func (m *ContactFormModel) View() string {
	var content strings.Builder

	title := "New contact"
	if m.editing != nil {
		title = "Edit " + m.editing.DisplayName()
	}
	content.WriteString(headerStyle(m.width).Render(title))
	content.WriteString("\n\n")

	labels := []string{"First name", "Last name", "Phone", "Photo"}
	fieldKeys := []string{"first_name", "last_name", "phone", "photo"}
	label := lipgloss.NewStyle().Width(12).Foreground(colour(utils.Colours.Subtext0))
	active := label.Foreground(colour(utils.Colours.Mauve)).Bold(true)

	for i, input := range m.inputs {
		l := label
		if FormField(i) == m.field {
			l = active
		}
		content.WriteString(l.Render(labels[i]) + input.View() + "\n")
		if msg := m.result.FieldError(fieldKeys[i]); msg != "" {
			content.WriteString(lipgloss.NewStyle().Foreground(colour(utils.Colours.Red)).PaddingLeft(12).Render(msg) + "\n")
		}
	}

	for _, w := range m.result.Warnings {
		content.WriteString(lipgloss.NewStyle().Foreground(colour(utils.Colours.Yellow)).PaddingLeft(12).Render("! "+w.Message) + "\n")
	}

	button := lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder())
	switch {
	case m.submitting:
		button = button.Foreground(colour(utils.Colours.Yellow)).BorderForeground(colour(utils.Colours.Yellow))
		content.WriteString("\n" + button.Render("Saving..."))
	case !m.CanSubmit():
		button = button.Foreground(colour(utils.Colours.Overlay0)).BorderForeground(colour(utils.Colours.Surface1))
		content.WriteString("\n" + button.Render("Save") + mutedStyle().Render("  first name or phone required"))
	case m.field == FieldSubmit:
		button = button.Foreground(colour(utils.Colours.Base)).Background(colour(utils.Colours.Green)).BorderForeground(colour(utils.Colours.Green))
		content.WriteString("\n" + button.Render("Save"))
	default:
		button = button.Foreground(colour(utils.Colours.Green)).BorderForeground(colour(utils.Colours.Green))
		content.WriteString("\n" + button.Render("Save"))
	}

	if st := m.deps.Store.Snapshot(); st.Error != "" && !m.submitting {
		content.WriteString("\n" + errorBanner().Render("✗ "+st.Error))
	}

	content.WriteString("\n" + helpStyle().Render("tab/↑/↓ move • enter on photo to crop • ctrl+s save • esc cancel"))
	return content.String()
}
