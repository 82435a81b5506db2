// Package crop turns a panned and zoomed photo into a square avatar with a
// circular opaque region and transparent corners.
package crop

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const DefaultOutSize = 512

var ErrDecode = errors.New("failed to decode image")

// Params is the editor state a crop reproduces. Translation is in viewport
// pixels; Scale is applied about the viewport centre after fitting.
type Params struct {
	Scale       float64
	Translation Point
	Viewport    Size
	OutSize     int
}

// CropReader decodes r and crops it.
func CropReader(r io.Reader, p Params) (*image.NRGBA, error) {
	src, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return Crop(src, p)
}

// Decode reads any registered image format, wrapping failures in ErrDecode.
func Decode(r io.Reader) (image.Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	return src, nil
}

// Crop renders src into an OutSize square exactly as the viewport showed it
// and masks everything outside a circle of radius CircleRatio*OutSize. The
// result is a pure function of its inputs. Scale is not checked against
// MinScale.
func Crop(src image.Image, p Params) (*image.NRGBA, error) {
	if p.Viewport.Empty() {
		return nil, ErrViewportNotMeasured
	}
	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	if p.OutSize <= 0 {
		p.OutSize = DefaultOutSize
	}
	if p.Scale <= 0 {
		p.Scale = 1
	}

	out := float64(p.OutSize)
	canvas := image.NewRGBA(image.Rect(0, 0, p.OutSize, p.OutSize))
	xdraw.BiLinear.Transform(canvas, transform(bounds, p), src, bounds, xdraw.Src, nil)

	dst := image.NewNRGBA(canvas.Bounds())
	center := out / 2
	radius := out * CircleRatio

	for y := 0; y < p.OutSize; y++ {
		for x := 0; x < p.OutSize; x++ {
			dist := math.Hypot(float64(x)+0.5-center, float64(y)+0.5-center)
			coverage := math.Min(math.Max(radius+0.5-dist, 0), 1)
			if coverage == 0 {
				continue
			}

			c := canvas.RGBAAt(x, y)
			if coverage < 1 {
				c = color.RGBA{
					R: uint8(float64(c.R)*coverage + 0.5),
					G: uint8(float64(c.G)*coverage + 0.5),
					B: uint8(float64(c.B)*coverage + 0.5),
					A: uint8(float64(c.A)*coverage + 0.5),
				}
			}
			dst.SetNRGBA(x, y, color.NRGBAModel.Convert(c).(color.NRGBA))
		}
	}

	return dst, nil
}

// transform maps source pixel coordinates to output coordinates: fit into
// the viewport, scale about its centre, pan, then scale the viewport by
// K = OutSize/min(viewport) with its centre landing on the output centre.
func transform(bounds image.Rectangle, p Params) f64.Aff3 {
	img := Size{W: float64(bounds.Dx()), H: float64(bounds.Dy())}
	fit := Fit(p.Viewport, img)

	out := float64(p.OutSize)
	k := out / p.Viewport.Min()
	cx, cy := p.Viewport.W/2, p.Viewport.H/2

	ax := fit.Width / img.W * p.Scale * k
	ay := fit.Height / img.H * p.Scale * k
	bx := ((fit.Left-cx)*p.Scale+p.Translation.X)*k + out/2
	by := ((fit.Top-cy)*p.Scale+p.Translation.Y)*k + out/2

	return f64.Aff3{
		ax, 0, bx - ax*float64(bounds.Min.X),
		0, ay, by - ay*float64(bounds.Min.Y),
	}
}
