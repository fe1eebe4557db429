// Package render paints the caption composite at the canvas' logical
// resolution and provides the pixel buffers the host draws chrome into.
package render

import (
	"image"

	"memecap/internal/caption"
)

// Renderer composites the base image and caption layers. Its output depends
// only on the image, the layers and the style; the viewport never reaches it,
// so the on-screen view and the export are the same pixels.
type Renderer struct {
	Fonts *FontBank
}

func NewRenderer(fonts *FontBank) *Renderer {
	if fonts == nil {
		fonts = NewFontBank()
	}
	return &Renderer{Fonts: fonts}
}

// Render clears s and, when img is set, draws it scaled to the surface and
// then every visible layer in creation order. It reports false when there is
// no image, leaving a transparent surface for the host's placeholder.
func (r *Renderer) Render(s Surface, img image.Image, layers []*caption.Layer, style caption.StyleConfig) bool {
	s.ResetTransform()
	s.Clear()
	if img == nil {
		return false
	}
	w, h := s.Size()
	s.DrawImageScaled(img, w, h)

	style = style.Normalized()
	px := style.FontPx(float64(w))
	s.SetFont(r.Fonts, px)
	s.SetStroke(style.Stroke, float64(caption.StrokeWidth(px)))
	s.SetFill(style.Fill)
	for _, l := range layers {
		if !l.Visible() {
			continue
		}
		text := l.DisplayText()
		s.StrokeText(text, l.Position.X, l.Position.Y)
		s.FillText(text, l.Position.X, l.Position.Y)
	}
	return true
}

// MeasureText lets the renderer's face serve as the hit tester's measurer.
func (r *Renderer) MeasureText(s string, fontPx int) float64 {
	return r.Fonts.MeasureText(s, fontPx)
}
