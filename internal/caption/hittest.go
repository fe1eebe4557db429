package caption

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Measurer reports the rendered advance width of s at the given pixel size.
// Hit testing must use the measurer backed by the renderer's own face.
type Measurer interface {
	MeasureText(s string, fontPx int) float64
}

// Bounds is the padded box of a visible layer: the measured width of the
// uppercased text by fontPx, centered on the anchor, grown by 0.3*fontPx on
// every side. It is computed fresh on each call.
func Bounds(l *Layer, m Measurer, fontPx int) (r2.Box, bool) {
	if l == nil || !l.Visible() {
		return r2.Box{}, false
	}
	w := m.MeasureText(l.DisplayText(), fontPx)
	h := float64(fontPx)
	pad := PaddingFraction * float64(fontPx)
	half := r2.Vec{X: w/2 + pad, Y: h/2 + pad}
	return r2.Box{Min: r2.Sub(l.Position, half), Max: r2.Add(l.Position, half)}, true
}

// HitTest walks layers from top to bottom and returns the first whose box
// contains point, edges included.
func HitTest(point r2.Vec, layers []*Layer, m Measurer, fontPx int) *Layer {
	for i := len(layers) - 1; i >= 0; i-- {
		box, ok := Bounds(layers[i], m, fontPx)
		if !ok {
			continue
		}
		if box.Contains(point) {
			return layers[i]
		}
	}
	return nil
}
