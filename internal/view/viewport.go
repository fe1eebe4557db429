// Package view maps pointer positions between the screen and the artwork and
// tracks the display-only pan and zoom of the editor stage.
package view

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	MinZoom  = 0.1
	MaxZoom  = 10.0
	ZoomStep = 1.25
)

// Viewport is the presentation transform over the canvas. Pan is expressed
// in canvas pixels and is applied after zoom. It never reaches the renderer.
type Viewport struct {
	Pan  r2.Vec
	Zoom float64

	MinZoom float64
	MaxZoom float64
}

func NewViewport() *Viewport {
	return &Viewport{Zoom: 1, MinZoom: MinZoom, MaxZoom: MaxZoom}
}

// Reset centers the canvas at 100% zoom.
func (v *Viewport) Reset(canvas r2.Vec) {
	v.Zoom = 1
	v.Pan = centeredPan(canvas, v.Zoom)
}

func (v *Viewport) PanBy(delta r2.Vec) {
	v.Pan = r2.Add(v.Pan, delta)
}

func (v *Viewport) SetZoom(zoom float64) {
	v.Zoom = v.clampZoom(zoom)
}

// ZoomAt scales the view by factor while keeping the canvas pixel under
// anchor fixed on screen.
func (v *Viewport) ZoomAt(factor float64, anchor r2.Vec) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	prev := v.zoom()
	next := v.clampZoom(prev * factor)
	if next == prev {
		return
	}
	// anchor = logical*prev + pan must hold for the same logical point after the change.
	logical := r2.Scale(1/prev, r2.Sub(anchor, v.Pan))
	v.Pan = r2.Sub(anchor, r2.Scale(next, logical))
	v.Zoom = next
}

// ZoomPercent reports the zoom rounded for status display.
func (v *Viewport) ZoomPercent() int {
	return int(math.Round(v.zoom() * 100))
}

func (v *Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

func (v *Viewport) clampZoom(z float64) float64 {
	lo, hi := v.MinZoom, v.MaxZoom
	if lo <= 0 {
		lo = MinZoom
	}
	if hi < lo {
		hi = MaxZoom
	}
	if z < lo {
		return lo
	}
	if z > hi {
		return hi
	}
	return z
}

func centeredPan(canvas r2.Vec, zoom float64) r2.Vec {
	return r2.Scale((1-zoom)/2, canvas)
}
