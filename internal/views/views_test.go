package views

import (
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"rhystmorgan/phonebook/internal/api"
	"rhystmorgan/phonebook/internal/models"
	"rhystmorgan/phonebook/internal/store"
	"rhystmorgan/phonebook/internal/store/mocks"
)

type AppSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockRemote *mocks.MockRemote
	mockDevice *mocks.MockProvider
	store      *store.Store
	app        *AppModel
}

func (s *AppSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRemote = mocks.NewMockRemote(s.ctrl)
	s.mockDevice = mocks.NewMockProvider(s.ctrl)
	s.mockDevice.EXPECT().HasReadAccess().Return(false).AnyTimes()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.New(s.mockRemote, s.mockDevice, store.WithLogger(logger))

	app, err := NewAppModel(Deps{Store: s.store, Logger: logger})
	s.Require().NoError(err)
	s.app = app
	s.app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
}

func (s *AppSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

// send feeds msg to the app and returns the message of the follow-up command.
func (s *AppSuite) send(msg tea.Msg) tea.Msg {
	_, cmd := s.app.Update(msg)
	if cmd == nil {
		return nil
	}
	return cmd()
}

func (s *AppSuite) openForm(contact *models.Contact) *ContactFormModel {
	s.app.navigateTo(ViewContactForm, FormRequest{Contact: contact})
	s.Require().Equal(ViewContactForm, s.app.state)
	s.Require().NotNil(s.app.formView)
	return s.app.formView
}

func (s *AppSuite) TestNewAppModelRequiresStore() {
	_, err := NewAppModel(Deps{})
	s.Error(err)
}

func (s *AppSuite) TestLoadedContactsAreGrouped() {
	s.mockRemote.EXPECT().GetAll(gomock.Any()).Return([]models.Contact{
		{ID: "1", FirstName: "Bob"},
		{ID: "2", FirstName: "Alice"},
	}, nil)

	// Without a read grant the badge refresh is skipped.
	s.Nil(s.send(s.store.LoadAll()()))

	groups := s.store.Groups()
	s.Require().Len(groups, 2)
	s.Equal("A", groups[0].Key)
	s.Contains(s.app.View(), "Alice")
}

func (s *AppSuite) TestFormSubmitGate() {
	form := s.openForm(nil)
	s.False(form.CanSubmit())

	form.inputs[FieldPhone].SetValue("   ")
	s.False(form.CanSubmit())

	form.inputs[FieldPhone].SetValue("555 0100")
	s.True(form.CanSubmit())

	form.inputs[FieldPhone].SetValue("")
	form.inputs[FieldFirstName].SetValue("Ada")
	s.True(form.CanSubmit())
}

func (s *AppSuite) TestCreateReturnsToListWithSelection() {
	s.mockRemote.EXPECT().
		Create(gomock.Any(), models.Contact{FirstName: "Zed", Phone: "555"}, "").
		Return(models.Contact{ID: "9", FirstName: "Zed", Phone: "555"}, nil)

	form := s.openForm(nil)
	form.inputs[FieldFirstName].SetValue("  Zed ")
	form.inputs[FieldPhone].SetValue("555")

	cmd := form.submit()
	s.Require().NotNil(cmd)
	s.True(s.store.Snapshot().IsLoading)
	s.Nil(form.submit(), "a second submit is ignored while one is in flight")

	nav := s.send(cmd())
	s.Equal(NavigateMsg{State: ViewContacts}, nav)
	s.False(form.submitting)

	s.send(nav)
	s.Equal(ViewContacts, s.app.state)
	s.Nil(s.app.formView)

	current, ok := s.app.contactsView.current()
	s.Require().True(ok)
	s.Equal("9", current.ID)
}

func (s *AppSuite) TestCreateFailureStaysOnForm() {
	s.mockRemote.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.Contact{}, api.NewAPIError(api.ErrNetworkConnection, "offline", nil))

	form := s.openForm(nil)
	form.inputs[FieldFirstName].SetValue("Ada")

	s.Nil(s.send(form.submit()()))
	s.Equal(ViewContactForm, s.app.state)
	s.False(form.submitting)
	s.True(strings.HasPrefix(s.store.Snapshot().Error, "failed to create contact: "))
}

func (s *AppSuite) TestInvalidFormIsNotSent() {
	form := s.openForm(nil)
	form.inputs[FieldFirstName].SetValue(strings.Repeat("a", 51))

	s.Nil(form.submit())
	s.False(form.result.IsValid)
	s.False(s.store.Snapshot().IsLoading)
}

func (s *AppSuite) TestUpdateOpensProfile() {
	existing := models.Contact{ID: "1", FirstName: "Ada", Phone: "555"}
	s.mockRemote.EXPECT().GetAll(gomock.Any()).Return([]models.Contact{existing}, nil)
	s.send(s.store.LoadAll()())

	s.mockRemote.EXPECT().
		Update(gomock.Any(), models.Contact{ID: "1", FirstName: "Ada", LastName: "Lovelace", Phone: "555"}, "").
		Return(models.Contact{ID: "1", FirstName: "Ada", LastName: "Lovelace", Phone: "555"}, nil)

	form := s.openForm(&existing)
	form.inputs[FieldLastName].SetValue("Lovelace")

	nav := s.send(form.submit()())
	s.Equal(NavigateMsg{State: ViewProfile, Data: "1"}, nav)
}

func (s *AppSuite) TestEscLeavesForm() {
	s.openForm(nil)
	nav := s.send(tea.KeyMsg{Type: tea.KeyEsc})
	s.Equal(NavigateMsg{State: ViewContacts}, nav)
}

func (s *AppSuite) TestCropDoneStagesPhoto() {
	form := s.openForm(nil)
	s.app.navigateTo(ViewCrop, "/tmp/photo.png")
	s.Require().NotNil(s.app.cropView)

	s.send(CropDoneMsg{Path: "/tmp/avatar.jpg"})
	s.Equal(ViewContactForm, s.app.state)
	s.Same(form, s.app.formView)
	s.Equal("/tmp/avatar.jpg", form.value(FieldPhoto))
	s.Equal(FieldSubmit, form.field)
}

func (s *AppSuite) TestCropEditorFollowsKeys() {
	s.openForm(nil)
	s.app.navigateTo(ViewCrop, "/tmp/photo.png")

	s.send(cropImageMsg{Image: image.NewNRGBA(image.Rect(0, 0, 200, 100))})
	editor := s.app.cropView.editor
	s.Require().NotNil(editor)
	s.InDelta(editor.MinScale(), editor.Scale(), 1e-9)

	s.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	s.Greater(editor.Scale(), editor.MinScale())

	s.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'0'}})
	s.InDelta(editor.MinScale(), editor.Scale(), 1e-9)

	nav := s.send(tea.KeyMsg{Type: tea.KeyEsc})
	s.Equal(NavigateMsg{State: ViewContactForm}, nav)
}

func (s *AppSuite) TestErrorMsgShowsBanner() {
	s.send(ErrorMsg{Err: errors.New("disk full")})
	s.Contains(s.app.View(), "disk full")
}

func TestHalfBlocks(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})

	out := halfBlocks(img, lipgloss.Color("#000000"))

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines for 3 pixel rows, got %d", len(lines))
	}
	for i, line := range lines {
		if n := strings.Count(line, "▀"); n != 4 {
			t.Errorf("Expected 4 cells on line %d, got %d", i, n)
		}
	}
}

func TestPixelColour(t *testing.T) {
	bg := lipgloss.Color("#101010")

	if got := pixelColour(color.NRGBA{R: 255, A: 10}, bg); got != bg {
		t.Errorf("Expected transparent pixel to use background, got %s", got)
	}
	if got := pixelColour(color.NRGBA{R: 255, G: 128, A: 255}, bg); got != "#ff8000" {
		t.Errorf("Expected #ff8000, got %s", got)
	}
}
