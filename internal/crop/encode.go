package crop

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	xdraw "golang.org/x/image/draw"
)

type Format int

const (
	FormatJPEG Format = iota
	FormatPNG
)

const (
	MinQuality     = 70
	MaxQuality     = 100
	DefaultQuality = MinQuality
)

// Ext is the file extension for the format, without the dot.
func (f Format) Ext() string {
	if f == FormatPNG {
		return "png"
	}
	return "jpg"
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return FormatJPEG, fmt.Errorf("unsupported output format %q", s)
	}
}

func ClampQuality(quality int) int {
	if quality < MinQuality {
		return MinQuality
	}
	if quality > MaxQuality {
		return MaxQuality
	}
	return quality
}

// Encode writes img in format. JPEG has no alpha channel, so transparent
// corners are flattened onto white; PNG keeps them. Quality only applies to
// JPEG.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	switch format {
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
		return nil
	default:
		flat := image.NewRGBA(img.Bounds())
		xdraw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
		xdraw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, xdraw.Over)

		if err := jpeg.Encode(w, flat, &jpeg.Options{Quality: ClampQuality(quality)}); err != nil {
			return fmt.Errorf("failed to encode jpeg: %w", err)
		}
		return nil
	}
}
