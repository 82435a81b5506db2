package crop

import (
	"math"
)

// Editor is the interactive pan/zoom state behind a crop. It keeps the
// scale between the minimum that covers the crop circle and MaxZoom, and
// keeps the translation small enough that the circle stays covered.
type Editor struct {
	viewport    Size
	image       Size
	minScale    float64
	scale       float64
	translation Point
}

// NewEditor starts at the minimum scale, centred.
func NewEditor(viewport, img Size) (*Editor, error) {
	e := &Editor{image: img}
	if err := e.Resize(viewport); err != nil {
		return nil, err
	}
	e.Reset()
	return e, nil
}

// Resize re-measures the viewport and re-applies the bounds to the current
// state.
func (e *Editor) Resize(viewport Size) error {
	minScale, err := MinScale(viewport, e.image)
	if err != nil {
		return err
	}
	e.viewport = viewport
	e.minScale = minScale
	e.apply(e.scale, e.translation)
	return nil
}

func (e *Editor) Reset() {
	e.apply(e.minScale, Point{})
}

// Zoom multiplies the scale by factor.
func (e *Editor) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	e.apply(e.scale*factor, e.translation)
}

// Pan moves the image by dx, dy viewport pixels.
func (e *Editor) Pan(dx, dy float64) {
	e.apply(e.scale, Point{X: e.translation.X + dx, Y: e.translation.Y + dy})
}

func (e *Editor) apply(scale float64, translation Point) {
	maxScale := math.Max(MaxZoom, e.minScale)
	e.scale = math.Min(math.Max(scale, e.minScale), maxScale)

	limit := MaxTranslation(e.viewport, e.image, e.scale)
	e.translation = Point{
		X: math.Min(math.Max(translation.X, -limit.X), limit.X),
		Y: math.Min(math.Max(translation.Y, -limit.Y), limit.Y),
	}
}

func (e *Editor) Scale() float64 {
	return e.scale
}

func (e *Editor) MinScale() float64 {
	return e.minScale
}

func (e *Editor) Translation() Point {
	return e.translation
}

func (e *Editor) Viewport() Size {
	return e.viewport
}

// Params returns the crop parameters for the current state.
func (e *Editor) Params(outSize int) Params {
	return Params{
		Scale:       e.scale,
		Translation: e.translation,
		Viewport:    e.viewport,
		OutSize:     outSize,
	}
}
