package crop

import (
	"errors"
	"math"
)

const (
	// CircleRatio is the crop circle's radius as a share of the output size.
	CircleRatio = 0.40
	// circleViewportRatio is the circle's diameter as a share of the
	// viewport's shorter side.
	circleViewportRatio = 2 * CircleRatio

	MaxZoom = 4.0
)

var ErrViewportNotMeasured = errors.New("crop viewport has not been measured")

type Size struct {
	W float64
	H float64
}

func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

func (s Size) Min() float64 {
	return math.Min(s.W, s.H)
}

type Point struct {
	X float64
	Y float64
}

// Rect is a placement in viewport coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Fit letterboxes an image of size img into viewport, preserving its aspect
// ratio, and centres it.
func Fit(viewport, img Size) Rect {
	imageRatio := img.W / img.H
	containerRatio := viewport.W / viewport.H

	var fitW, fitH float64
	if imageRatio > containerRatio {
		fitW = viewport.W
		fitH = viewport.W / imageRatio
	} else {
		fitH = viewport.H
		fitW = viewport.H * imageRatio
	}

	return Rect{
		Left:   (viewport.W - fitW) / 2,
		Top:    (viewport.H - fitH) / 2,
		Width:  fitW,
		Height: fitH,
	}
}

// CircleDiameter is the on-screen crop circle's diameter for viewport.
func CircleDiameter(viewport Size) float64 {
	return viewport.Min() * circleViewportRatio
}

// MinScale is the smallest zoom at which the fitted image covers the crop
// circle in both dimensions.
func MinScale(viewport, img Size) (float64, error) {
	if viewport.Empty() {
		return 0, ErrViewportNotMeasured
	}
	if img.Empty() {
		return 0, ErrDecode
	}

	fit := Fit(viewport, img)
	d := CircleDiameter(viewport)
	return math.Max(d/fit.Width, d/fit.Height), nil
}

// MaxTranslation is how far the scaled image can move off centre on each
// axis while still covering the crop circle.
func MaxTranslation(viewport, img Size, scale float64) Point {
	fit := Fit(viewport, img)
	d := CircleDiameter(viewport)
	return Point{
		X: math.Max((fit.Width*scale-d)/2, 0),
		Y: math.Max((fit.Height*scale-d)/2, 0),
	}
}
