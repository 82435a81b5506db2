package crop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorStartsAtMinScaleCentred(t *testing.T) {
	e, err := NewEditor(Size{W: 300, H: 300}, Size{W: 400, H: 200})
	require.NoError(t, err)

	assert.InDelta(t, 1.6, e.Scale(), 1e-9)
	assert.Equal(t, Point{}, e.Translation())
}

func TestEditorZoomIsClamped(t *testing.T) {
	e, err := NewEditor(Size{W: 300, H: 300}, Size{W: 300, H: 300})
	require.NoError(t, err)

	e.Zoom(0.1)
	assert.InDelta(t, e.MinScale(), e.Scale(), 1e-9)

	e.Zoom(100)
	assert.Equal(t, MaxZoom, e.Scale())

	e.Zoom(-1)
	assert.Equal(t, MaxZoom, e.Scale())
}

func TestEditorPanIsClamped(t *testing.T) {
	e, err := NewEditor(Size{W: 300, H: 300}, Size{W: 300, H: 300})
	require.NoError(t, err)

	// At min scale the image exactly covers the circle.
	e.Pan(50, -50)
	assert.Equal(t, Point{}, e.Translation())

	e.Zoom(2)
	limit := MaxTranslation(e.Viewport(), Size{W: 300, H: 300}, e.Scale())
	e.Pan(1000, -1000)
	assert.Equal(t, Point{X: limit.X, Y: -limit.Y}, e.Translation())

	// Zooming back out pulls the translation in with it.
	e.Zoom(0.5)
	limit = MaxTranslation(e.Viewport(), Size{W: 300, H: 300}, e.Scale())
	assert.Equal(t, Point{X: limit.X, Y: -limit.Y}, e.Translation())

	e.Reset()
	assert.Equal(t, Point{}, e.Translation())
	assert.InDelta(t, e.MinScale(), e.Scale(), 1e-9)
}

func TestEditorAllowsMinScaleAboveMaxZoom(t *testing.T) {
	e, err := NewEditor(Size{W: 300, H: 300}, Size{W: 3000, H: 100})
	require.NoError(t, err)

	assert.Greater(t, e.MinScale(), MaxZoom)
	e.Zoom(2)
	assert.InDelta(t, e.MinScale(), e.Scale(), 1e-9)
}

func TestEditorRejectsUnmeasuredViewport(t *testing.T) {
	_, err := NewEditor(Size{}, Size{W: 10, H: 10})
	assert.ErrorIs(t, err, ErrViewportNotMeasured)

	e, err := NewEditor(Size{W: 100, H: 100}, Size{W: 10, H: 10})
	require.NoError(t, err)
	assert.ErrorIs(t, e.Resize(Size{W: 100}), ErrViewportNotMeasured)
	assert.Equal(t, Size{W: 100, H: 100}, e.Viewport())
}

func TestEditorParams(t *testing.T) {
	e, err := NewEditor(Size{W: 200, H: 100}, Size{W: 50, H: 50})
	require.NoError(t, err)
	e.Zoom(1.5)

	p := e.Params(256)
	assert.Equal(t, e.Scale(), p.Scale)
	assert.Equal(t, Size{W: 200, H: 100}, p.Viewport)
	assert.Equal(t, 256, p.OutSize)
}
