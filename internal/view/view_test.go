package view

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestScreenLogicalRoundTrip(t *testing.T) {
	displays := []r2.Box{
		{Min: r2.Vec{}, Max: r2.Vec{X: 800, Y: 600}},
		{Min: r2.Vec{X: 37, Y: 81}, Max: r2.Vec{X: 437, Y: 381}},
	}
	points := []r2.Vec{{X: 0, Y: 0}, {X: 400, Y: 36}, {X: -120.5, Y: 999.25}}
	for _, display := range displays {
		for _, zoom := range []float64{0.1, 1, 4} {
			for _, pan := range []r2.Vec{{}, {X: 100, Y: -50}} {
				m := Mapper{
					Display: display,
					Canvas:  r2.Vec{X: 800, Y: 600},
					View:    Viewport{Pan: pan, Zoom: zoom, MinZoom: MinZoom, MaxZoom: MaxZoom},
				}
				for _, p := range points {
					t.Run(fmt.Sprintf("%v/%v/%v/%v", display.Min, zoom, pan, p), func(t *testing.T) {
						back := m.LogicalToScreen(m.ScreenToLogical(p))
						assert.InDelta(t, p.X, back.X, 1e-6)
						assert.InDelta(t, p.Y, back.Y, 1e-6)
					})
				}
			}
		}
	}
}

func TestScreenToLogicalUndoesDisplayScaleThenPanZoom(t *testing.T) {
	m := Mapper{
		Display: r2.Box{Min: r2.Vec{X: 10, Y: 20}, Max: r2.Vec{X: 410, Y: 320}},
		Canvas:  r2.Vec{X: 800, Y: 600},
		View:    Viewport{Pan: r2.Vec{X: 100, Y: -50}, Zoom: 2},
	}
	// screen (210,170) -> canvas (400,300) -> logical ((400-100)/2, (300+50)/2)
	got := m.ScreenToLogical(r2.Vec{X: 210, Y: 170})
	assert.InDelta(t, 150, got.X, 1e-9)
	assert.InDelta(t, 175, got.Y, 1e-9)

	scale, offset := m.Affine()
	screen := r2.Add(offset, r2.Vec{X: got.X * scale.X, Y: got.Y * scale.Y})
	assert.InDelta(t, 210, screen.X, 1e-9)
	assert.InDelta(t, 170, screen.Y, 1e-9)
}

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	v := NewViewport()
	v.Reset(r2.Vec{X: 800, Y: 600})
	m := Mapper{Display: r2.Box{Max: r2.Vec{X: 800, Y: 600}}, Canvas: r2.Vec{X: 800, Y: 600}}

	anchor := r2.Vec{X: 250, Y: 120}
	m.View = *v
	before := m.ScreenToLogical(anchor)

	v.ZoomAt(ZoomStep, m.ScreenToCanvas(anchor))
	m.View = *v
	after := m.ScreenToLogical(anchor)

	assert.InDelta(t, ZoomStep, v.Zoom, 1e-12)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestZoomIsClamped(t *testing.T) {
	v := NewViewport()
	v.SetZoom(100)
	assert.Equal(t, MaxZoom, v.Zoom)
	v.ZoomAt(1e-6, r2.Vec{})
	assert.Equal(t, MinZoom, v.Zoom)
	v.ZoomAt(-1, r2.Vec{})
	assert.Equal(t, MinZoom, v.Zoom, "non-positive factors are ignored")
}

func TestResetCentersAtFullZoom(t *testing.T) {
	v := NewViewport()
	v.SetZoom(3)
	v.PanBy(r2.Vec{X: 40, Y: 40})
	v.Reset(r2.Vec{X: 800, Y: 600})
	assert.Equal(t, 1.0, v.Zoom)
	assert.Equal(t, r2.Vec{}, v.Pan)
	assert.Equal(t, 100, v.ZoomPercent())
}

func TestFitDisplay(t *testing.T) {
	stage := r2.Box{Min: r2.Vec{X: 0, Y: 50}, Max: r2.Vec{X: 1000, Y: 450}}

	got := FitDisplay(stage, r2.Vec{X: 800, Y: 600})
	require.InDelta(t, 400.0/600.0*800, got.Size().X, 1e-9)
	require.InDelta(t, 400, got.Size().Y, 1e-9)
	assert.InDelta(t, 50, got.Min.Y, 1e-9)
	assert.InDelta(t, 500, (got.Min.X+got.Max.X)/2, 1e-9)

	small := FitDisplay(stage, r2.Vec{X: 200, Y: 100})
	assert.InDelta(t, 200, small.Size().X, 1e-9, "never enlarged")
	assert.InDelta(t, 400, small.Min.X, 1e-9)
	assert.InDelta(t, 200, small.Min.Y, 1e-9)
}
