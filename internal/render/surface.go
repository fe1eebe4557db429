package render

import (
	"image"
	"image/color"
	"image/draw"

	"git.sr.ht/~sbinet/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/sfnt"
)

// Surface is the drawing capability the renderer needs. Text calls take the
// anchor as the glyph box center on both axes.
type Surface interface {
	Size() (w, h int)
	Clear()
	DrawImageScaled(img image.Image, w, h int)
	SetFont(bank *FontBank, px int)
	SetFill(c color.Color)
	SetStroke(c color.Color, width float64)
	StrokeText(s string, x, y float64)
	FillText(s string, x, y float64)
	MeasureText(s string) float64
	ResetTransform()
}

// Canvas is a Surface drawn with gg over a FrameBuffer's pixels.
type Canvas struct {
	fb *FrameBuffer
	dc *gg.Context

	bank        *FontBank
	px          int
	fill        color.Color
	stroke      color.Color
	strokeWidth float64
}

var _ Surface = (*Canvas)(nil)

func NewCanvas(w, h int) *Canvas {
	return NewCanvasOn(NewFrameBuffer(w, h))
}

// NewCanvasOn draws into fb; the buffer must not be resized while the
// canvas is in use.
func NewCanvasOn(fb *FrameBuffer) *Canvas {
	return &Canvas{
		fb:     fb,
		dc:     gg.NewContextForRGBA(fb.RGBA()),
		fill:   color.White,
		stroke: color.Black,
	}
}

func (c *Canvas) Size() (int, int) { return c.fb.W, c.fb.H }

// Image shares the canvas pixels.
func (c *Canvas) Image() *image.RGBA { return c.fb.RGBA() }

func (c *Canvas) FrameBuffer() *FrameBuffer { return c.fb }

func (c *Canvas) Clear() {
	c.fb.Clear(color.RGBA{})
}

// DrawImageScaled draws img stretched to w x h at the origin with bilinear
// filtering, composited over what is already there.
func (c *Canvas) DrawImageScaled(img image.Image, w, h int) {
	if img == nil || w <= 0 || h <= 0 {
		return
	}
	dst := c.fb.RGBA()
	r := image.Rect(0, 0, w, h).Intersect(dst.Bounds())
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		draw.Draw(dst, r, img, b.Min, draw.Over)
		return
	}
	xdraw.BiLinear.Scale(dst, image.Rect(0, 0, w, h), img, img.Bounds(), xdraw.Over, nil)
}

func (c *Canvas) SetFont(bank *FontBank, px int) {
	c.bank, c.px = bank, px
}

func (c *Canvas) SetFill(col color.Color) { c.fill = col }

func (c *Canvas) SetStroke(col color.Color, width float64) {
	c.stroke, c.strokeWidth = col, width
}

// StrokeText outlines every glyph with a round-joined pen of the stroke
// width centered on the outline.
func (c *Canvas) StrokeText(s string, x, y float64) {
	if c.strokeWidth <= 0 || !c.textPath(s, x, y) {
		return
	}
	c.dc.SetColor(c.stroke)
	c.dc.SetLineWidth(c.strokeWidth)
	c.dc.SetLineJoinRound()
	c.dc.SetLineCapRound()
	c.dc.Stroke()
}

func (c *Canvas) FillText(s string, x, y float64) {
	if !c.textPath(s, x, y) {
		return
	}
	c.dc.SetColor(c.fill)
	c.dc.SetFillRuleWinding()
	c.dc.Fill()
}

func (c *Canvas) MeasureText(s string) float64 {
	if c.bank == nil {
		return 0
	}
	return c.bank.MeasureText(s, c.px)
}

func (c *Canvas) ResetTransform() {
	c.dc.Identity()
	c.dc.ClearPath()
}

// textPath appends the outlines of s centered on (x, y) to the current
// path. The baseline sits so the ascent/descent span is centered on y.
func (c *Canvas) textPath(s string, x, y float64) bool {
	if c.bank == nil || c.px <= 0 || s == "" {
		return false
	}
	c.dc.ClearPath()
	width := c.bank.MeasureText(s, c.px)
	ascent, descent := c.bank.Metrics(c.px)
	left := x - width/2
	baseline := y + (ascent-descent)/2

	drawn := false
	c.bank.layout(s, c.px, func(segs sfnt.Segments, penX float64) {
		ox := left + penX
		open := false
		for _, seg := range segs {
			a := seg.Args
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				if open {
					c.dc.ClosePath()
				}
				c.dc.MoveTo(ox+fix26(a[0].X), baseline+fix26(a[0].Y))
				open = true
			case sfnt.SegmentOpLineTo:
				c.dc.LineTo(ox+fix26(a[0].X), baseline+fix26(a[0].Y))
			case sfnt.SegmentOpQuadTo:
				c.dc.QuadraticTo(
					ox+fix26(a[0].X), baseline+fix26(a[0].Y),
					ox+fix26(a[1].X), baseline+fix26(a[1].Y))
			case sfnt.SegmentOpCubeTo:
				c.dc.CubicTo(
					ox+fix26(a[0].X), baseline+fix26(a[0].Y),
					ox+fix26(a[1].X), baseline+fix26(a[1].Y),
					ox+fix26(a[2].X), baseline+fix26(a[2].Y))
			}
			drawn = true
		}
		if open {
			c.dc.ClosePath()
		}
	})
	return drawn
}
