package views

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/phonebook/internal/crop"
	"rhystmorgan/phonebook/internal/utils"
)

const (
	panStep    = 2.0
	zoomStep   = 1.1
	maxPreview = 48
)

// CropDoneMsg carries the staged avatar path.
type CropDoneMsg struct {
	Path string
}

type cropImageMsg struct {
	Image image.Image
}

type cropFailedMsg struct {
	Err error
}

// CropModel pans and zooms a photo behind a circular mask. The preview is
// drawn with half-block cells, so one terminal row is two image rows.
type CropModel struct {
	deps   Deps
	path   string
	src    image.Image
	editor *crop.Editor
	saving bool
	err    error

	width  int
	height int
}

func NewCropModel(deps Deps, path string) *CropModel {
	return &CropModel{deps: deps, path: path}
}

func (m *CropModel) Init() tea.Cmd {
	path := m.path
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return cropFailedMsg{Err: fmt.Errorf("failed to open photo: %w", err)}
		}
		defer f.Close()

		img, err := crop.Decode(f)
		if err != nil {
			return cropFailedMsg{Err: err}
		}
		return cropImageMsg{Image: img}
	}
}

// viewport is the preview area in half-block pixels.
func (m *CropModel) viewport() crop.Size {
	cols := min(m.width-4, maxPreview)
	rows := min(m.height-8, maxPreview/2)
	if cols <= 0 || rows <= 0 {
		return crop.Size{}
	}
	side := min(cols, rows*2)
	return crop.Size{W: float64(side), H: float64(side)}
}

func (m *CropModel) ensureEditor() {
	if m.src == nil {
		return
	}
	vp := m.viewport()
	if vp.Empty() {
		return
	}

	if m.editor == nil {
		b := m.src.Bounds()
		editor, err := crop.NewEditor(vp, crop.Size{W: float64(b.Dx()), H: float64(b.Dy())})
		if err != nil {
			m.err = err
			return
		}
		m.editor = editor
		return
	}
	if err := m.editor.Resize(vp); err != nil {
		m.err = err
	}
}

func (m *CropModel) Update(msg tea.Msg) (*CropModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureEditor()

	case cropImageMsg:
		m.src = msg.Image
		m.ensureEditor()

	case cropFailedMsg:
		m.saving = false
		m.err = msg.Err
		m.deps.Logger.Warn("crop failed", "path", m.path, "error", msg.Err)

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return m, NavigateTo(ViewContactForm, nil)
		}
		if m.editor == nil || m.saving {
			return m, nil
		}

		switch msg.String() {
		case "left", "h":
			m.editor.Pan(-panStep, 0)
		case "right", "l":
			m.editor.Pan(panStep, 0)
		case "up", "k":
			m.editor.Pan(0, -panStep)
		case "down", "j":
			m.editor.Pan(0, panStep)
		case "+", "=":
			m.editor.Zoom(zoomStep)
		case "-", "_":
			m.editor.Zoom(1 / zoomStep)
		case "0":
			m.editor.Reset()
		case "enter":
			m.saving = true
			return m, m.save()
		}
	}

	return m, nil
}

// save renders the full-size crop, encodes it and stages it as an avatar.
func (m *CropModel) save() tea.Cmd {
	src := m.src
	cfg := m.deps.Config
	st := m.deps.Storage
	params := m.editor.Params(cfg.CropSize)

	return func() tea.Msg {
		out, err := crop.Crop(src, params)
		if err != nil {
			return cropFailedMsg{Err: err}
		}

		var buf bytes.Buffer
		if err := crop.Encode(&buf, out, crop.FormatJPEG, cfg.CropQuality); err != nil {
			return cropFailedMsg{Err: err}
		}

		if st == nil {
			return cropFailedMsg{Err: fmt.Errorf("no storage configured for avatars")}
		}
		path, err := st.WriteAvatar(buf.Bytes(), crop.FormatJPEG.Ext())
		if err != nil {
			return cropFailedMsg{Err: err}
		}
		return CropDoneMsg{Path: path}
	}
}

func (m *CropModel) View() string {
	var content strings.Builder
	content.WriteString(headerStyle(m.width).Render("Crop photo"))
	content.WriteString("\n")

	switch {
	case m.err != nil:
		content.WriteString(errorBanner().Render("✗ " + m.err.Error()))
		content.WriteString("\n" + helpStyle().Render("esc back to the form"))
		return content.String()
	case m.src == nil:
		content.WriteString(mutedStyle().Padding(1, 0).Render("Loading " + m.path + "..."))
		return content.String()
	case m.editor == nil:
		content.WriteString(mutedStyle().Padding(1, 0).Render("Window too small to preview."))
		return content.String()
	}

	preview, err := m.renderPreview()
	if err != nil {
		content.WriteString(errorBanner().Render("✗ " + err.Error()))
	} else {
		content.WriteString(preview)
	}

	content.WriteString("\n" + mutedStyle().Render(fmt.Sprintf("zoom %.2fx", m.editor.Scale())))
	if m.saving {
		content.WriteString("  " + mutedStyle().Render("saving..."))
	}
	content.WriteString("\n" + helpStyle().Render("←/→/↑/↓ pan • +/- zoom • 0 reset • enter use photo • esc cancel"))
	return content.String()
}

func (m *CropModel) renderPreview() (string, error) {
	side := int(m.editor.Viewport().Min())
	img, err := crop.Crop(m.src, m.editor.Params(side))
	if err != nil {
		return "", err
	}
	return halfBlocks(img, colour(utils.Colours.Base)), nil
}

// halfBlocks draws img two pixel rows per line: the upper pixel is the
// foreground of '▀' and the lower one its background. Transparent pixels
// take the background colour.
func halfBlocks(img *image.NRGBA, background lipgloss.Color) string {
	b := img.Bounds()
	var out strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := pixelColour(img.NRGBAAt(x, y), background)
			bottom := background
			if y+1 < b.Max.Y {
				bottom = pixelColour(img.NRGBAAt(x, y+1), background)
			}
			out.WriteString(lipgloss.NewStyle().Foreground(top).Background(bottom).Render("▀"))
		}
		if y+2 < b.Max.Y {
			out.WriteString("\n")
		}
	}
	return out.String()
}

func pixelColour(c color.NRGBA, background lipgloss.Color) lipgloss.Color {
	if c.A < 128 {
		return background
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
