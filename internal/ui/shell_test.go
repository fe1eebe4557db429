package ui

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"memecap/internal/render"
)

func TestComputeLayoutLeavesStageBetweenBars(t *testing.T) {
	theme := DefaultTheme()
	l := ComputeLayout(1000, 700, theme, 1)

	if l.StageY != theme.MenuHeightDp+theme.ToolbarHeightDp+theme.StageMarginDp {
		t.Fatalf("unexpected stage top %d", l.StageY)
	}
	if l.StageY+l.StageH+theme.StageMarginDp != l.StatusBar {
		t.Fatalf("stage overlaps status bar: %+v", l)
	}
	if l.StageW != 1000-2*theme.StageMarginDp {
		t.Fatalf("unexpected stage width %d", l.StageW)
	}
	if !l.InStage(l.StageX, l.StageY) || l.InStage(l.StageX+l.StageW, l.StageY) {
		t.Fatalf("InStage bounds are not half-open")
	}
	if got := l.Stage().Size(); got.X != float64(l.StageW) || got.Y != float64(l.StageH) {
		t.Fatalf("stage box size %v", got)
	}
}

func TestComputeLayoutTinyWindow(t *testing.T) {
	l := ComputeLayout(10, 10, DefaultTheme(), 2)
	if l.StageW != 0 || l.StageH != 0 {
		t.Fatalf("expected empty stage, got %dx%d", l.StageW, l.StageH)
	}
}

func TestDrawShellCheckersCanvas(t *testing.T) {
	theme := DefaultTheme()
	fb := render.NewFrameBuffer(400, 300)
	canvas := r2.Box{Min: r2.Vec{X: 100, Y: 120}, Max: r2.Vec{X: 200, Y: 200}}
	l := DrawShell(fb, canvas, theme, 1)

	px := func(x, y int) [3]uint8 {
		i := (y*fb.W + x) * 4
		return [3]uint8{fb.Pixels[i], fb.Pixels[i+1], fb.Pixels[i+2]}
	}
	light := [3]uint8{theme.CheckerLight.R, theme.CheckerLight.G, theme.CheckerLight.B}
	stage := [3]uint8{theme.Stage.R, theme.Stage.G, theme.Stage.B}
	if got := px(101, 121); got != light {
		t.Fatalf("expected checker at canvas origin, got %v", got)
	}
	if got := px(l.StageX+2, l.StageY+l.StageH-2); got != stage {
		t.Fatalf("expected plain stage outside canvas, got %v", got)
	}
	status := [3]uint8{theme.StatusBar.R, theme.StatusBar.G, theme.StatusBar.B}
	if got := px(200, l.StatusBar+5); got != status {
		t.Fatalf("expected status bar color, got %v", got)
	}
}

func TestDrawArtworkScalesAndClips(t *testing.T) {
	fb := render.NewFrameBuffer(100, 100)
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	red := color.RGBA{R: 255, A: 255}
	draw.Draw(img, img.Bounds(), image.NewUniform(red), image.Point{}, draw.Src)

	clip := r2.Box{Max: r2.Vec{X: 50, Y: 100}}
	DrawArtwork(fb, img, r2.Vec{X: 2, Y: 2}, r2.Vec{X: 10, Y: 10}, clip)

	at := func(x, y int) uint8 { return fb.Pixels[(y*fb.W+x)*4] }
	if at(20, 20) != 255 {
		t.Fatalf("expected artwork inside transform")
	}
	if at(5, 5) != 0 {
		t.Fatalf("expected nothing before offset")
	}
	if at(60, 20) != 0 {
		t.Fatalf("expected clip at x=50")
	}
}
