package caption

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

const (
	// ReferenceWidth is the canvas width at which BaseFontSize maps 1:1 to pixels.
	ReferenceWidth = 800

	MinFontPx           = 18
	MinBaseFontSize     = 12
	MaxBaseFontSize     = 120
	DefaultBaseFontSize = 60

	PaddingFraction = 0.3
	MinStrokePx     = 4
)

// StyleConfig holds the global caption style. It is passed into every render
// and hit-test call and read live; layers do not snapshot it.
type StyleConfig struct {
	Fill         color.RGBA
	Stroke       color.RGBA
	BaseFontSize int
}

func DefaultStyle() StyleConfig {
	return StyleConfig{
		Fill:         color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
		Stroke:       color.RGBA{0x00, 0x00, 0x00, 0xFF},
		BaseFontSize: DefaultBaseFontSize,
	}
}

func (s StyleConfig) Normalized() StyleConfig {
	s.BaseFontSize = ClampBaseFontSize(s.BaseFontSize)
	return s
}

// FontPx resolves the caption pixel size for a canvas of the given width.
func (s StyleConfig) FontPx(canvasWidth float64) int {
	return FontSizePx(canvasWidth, s.BaseFontSize)
}

func ClampBaseFontSize(v int) int {
	if v < MinBaseFontSize {
		return MinBaseFontSize
	}
	if v > MaxBaseFontSize {
		return MaxBaseFontSize
	}
	return v
}

// FontSizePx is max(18, round(canvasWidth/800 * base)).
func FontSizePx(canvasWidth float64, base int) int {
	base = ClampBaseFontSize(base)
	px := int(math.Round(canvasWidth / ReferenceWidth * float64(base)))
	if px < MinFontPx {
		return MinFontPx
	}
	return px
}

// StrokeWidth is max(4, floor(fontPx/12)).
func StrokeWidth(fontPx int) int {
	w := fontPx / 12
	if w < MinStrokePx {
		return MinStrokePx
	}
	return w
}

// ParseHexColor accepts #rgb, #rrggbb and #rrggbbaa.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func HexColor(c color.RGBA) string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
