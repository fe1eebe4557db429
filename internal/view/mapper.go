package view

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Mapper converts between screen space and logical artwork space.
//
// A screen point is first mapped through Display, the on-screen rectangle
// the canvas occupies at 100% zoom, into canvas pixels. The viewport pan and
// zoom are then undone to reach logical space. Drawing uses the inverse of
// the same chain, so hit testing and painting agree on where a point is.
type Mapper struct {
	Display r2.Box
	Canvas  r2.Vec
	View    Viewport
}

// ScreenToCanvas maps a screen point into canvas pixel space, accounting for
// any scaling between the canvas resolution and its displayed size.
func (m Mapper) ScreenToCanvas(p r2.Vec) r2.Vec {
	s := m.DisplayScale()
	d := r2.Sub(p, m.Display.Min)
	return r2.Vec{X: d.X / s.X, Y: d.Y / s.Y}
}

func (m Mapper) CanvasToScreen(p r2.Vec) r2.Vec {
	s := m.DisplayScale()
	return r2.Add(m.Display.Min, r2.Vec{X: p.X * s.X, Y: p.Y * s.Y})
}

func (m Mapper) ScreenToLogical(p r2.Vec) r2.Vec {
	c := m.ScreenToCanvas(p)
	return r2.Scale(1/m.View.zoom(), r2.Sub(c, m.View.Pan))
}

func (m Mapper) LogicalToScreen(p r2.Vec) r2.Vec {
	c := r2.Add(r2.Scale(m.View.zoom(), p), m.View.Pan)
	return m.CanvasToScreen(c)
}

// ScreenDeltaToCanvas converts a pointer displacement into canvas pixels.
func (m Mapper) ScreenDeltaToCanvas(d r2.Vec) r2.Vec {
	s := m.DisplayScale()
	return r2.Vec{X: d.X / s.X, Y: d.Y / s.Y}
}

// DisplayScale is screen pixels per canvas pixel on each axis.
func (m Mapper) DisplayScale() r2.Vec {
	size := m.Display.Size()
	s := r2.Vec{X: 1, Y: 1}
	if m.Canvas.X > 0 && size.X > 0 {
		s.X = size.X / m.Canvas.X
	}
	if m.Canvas.Y > 0 && size.Y > 0 {
		s.Y = size.Y / m.Canvas.Y
	}
	return s
}

// Affine returns the logical->screen transform as screen = logical*scale + offset.
// The host uses it to place the rendered artwork on screen.
func (m Mapper) Affine() (scale, offset r2.Vec) {
	s := m.DisplayScale()
	z := m.View.zoom()
	scale = r2.Vec{X: z * s.X, Y: z * s.Y}
	offset = r2.Add(m.Display.Min, r2.Vec{X: m.View.Pan.X * s.X, Y: m.View.Pan.Y * s.Y})
	return scale, offset
}

// FitDisplay centers a canvas inside stage, shrinking it to fit but never
// enlarging it past its intrinsic size.
func FitDisplay(stage r2.Box, canvas r2.Vec) r2.Box {
	size := stage.Size()
	if canvas.X <= 0 || canvas.Y <= 0 || size.X <= 0 || size.Y <= 0 {
		return r2.Box{Min: stage.Min, Max: stage.Min}
	}
	scale := 1.0
	if sx := size.X / canvas.X; sx < scale {
		scale = sx
	}
	if sy := size.Y / canvas.Y; sy < scale {
		scale = sy
	}
	shown := r2.Scale(scale, canvas)
	min := r2.Add(stage.Min, r2.Scale(0.5, r2.Sub(size, shown)))
	return r2.Box{Min: min, Max: r2.Add(min, shown)}
}
