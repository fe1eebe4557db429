package ui

import (
	"image"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/spatial/r2"

	"memecap/internal/render"
)

type Layout struct {
	MenuH     int
	ToolbarH  int
	StatusH   int
	StageX    int
	StageY    int
	StageW    int
	StageH    int
	StatusBar int
}

// Stage is the box the canvas is fitted into, in screen pixels.
func (l Layout) Stage() r2.Box {
	return r2.Box{
		Min: r2.Vec{X: float64(l.StageX), Y: float64(l.StageY)},
		Max: r2.Vec{X: float64(l.StageX + l.StageW), Y: float64(l.StageY + l.StageH)},
	}
}

// InStage reports whether a screen point is over the stage.
func (l Layout) InStage(x, y int) bool {
	return x >= l.StageX && y >= l.StageY && x < l.StageX+l.StageW && y < l.StageY+l.StageH
}

func ComputeLayout(w, h int, theme Theme, scale float32) Layout {
	if scale <= 0 {
		scale = 1
	}

	dp := func(v int) int { return int(float32(v) * scale) }

	menuH := dp(theme.MenuHeightDp)
	toolbarH := dp(theme.ToolbarHeightDp)
	statusH := dp(theme.StatusHeightDp)
	margin := dp(theme.StageMarginDp)

	top := menuH + toolbarH
	stageW := w - margin*2
	stageH := h - top - statusH - margin*2
	if stageW < 0 {
		stageW = 0
	}
	if stageH < 0 {
		stageH = 0
	}

	return Layout{
		MenuH:     menuH,
		ToolbarH:  toolbarH,
		StatusH:   statusH,
		StageX:    margin,
		StageY:    top + margin,
		StageW:    stageW,
		StageH:    stageH,
		StatusBar: h - statusH,
	}
}

// DrawShell paints the window chrome. When canvas is non-empty the area the
// artwork covers gets a checkerboard so transparent pixels stay visible.
func DrawShell(fb *render.FrameBuffer, canvas r2.Box, theme Theme, scale float32) Layout {
	layout := ComputeLayout(fb.W, fb.H, theme, scale)

	fb.Clear(theme.AppBackground)

	fb.FillRect(0, 0, fb.W, layout.MenuH, theme.TopBar)
	fb.FillRect(0, layout.MenuH, fb.W, layout.ToolbarH, theme.Toolbar)
	fb.StrokeRect(0, 0, fb.W, layout.MenuH+layout.ToolbarH, 1, theme.Border)

	fb.FillRect(layout.StageX, layout.StageY, layout.StageW, layout.StageH, theme.Stage)
	fb.StrokeRect(layout.StageX-1, layout.StageY-1, layout.StageW+2, layout.StageH+2, 1, theme.Border)

	if size := canvas.Size(); size.X > 0 && size.Y > 0 {
		cell := int(float32(theme.CheckerCellDp) * scale)
		fb.Checker(int(canvas.Min.X), int(canvas.Min.Y), int(size.X+0.5), int(size.Y+0.5), cell, theme.CheckerLight, theme.CheckerDark)
	}

	accentH := int(3 * scale)
	if accentH < 1 {
		accentH = 1
	}
	fb.FillRect(0, layout.MenuH-accentH, fb.W, accentH, theme.Accent)

	fb.FillRect(0, layout.StatusBar, fb.W, layout.StatusH, theme.StatusBar)
	fb.StrokeRect(0, layout.StatusBar, fb.W, layout.StatusH, 1, theme.Border)

	return layout
}

// DrawArtwork composites img into fb with the logical->screen transform
// screen = p*scale + offset, clipped to clip. Hosts without a GPU use it to
// produce the same picture the window shows.
func DrawArtwork(fb *render.FrameBuffer, img image.Image, scale, offset r2.Vec, clip r2.Box) {
	if img == nil || scale.X <= 0 || scale.Y <= 0 {
		return
	}
	r := image.Rect(int(clip.Min.X), int(clip.Min.Y), int(clip.Max.X), int(clip.Max.Y))
	dst, ok := fb.RGBA().SubImage(r).(*image.RGBA)
	if !ok || dst.Rect.Empty() {
		return
	}
	s2d := f64.Aff3{scale.X, 0, offset.X, 0, scale.Y, offset.Y}
	xdraw.ApproxBiLinear.Transform(dst, s2d, img, img.Bounds(), xdraw.Over, nil)
}
