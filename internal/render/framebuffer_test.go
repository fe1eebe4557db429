package render

import (
	"image/color"
	"testing"
)

func pixelAt(fb *FrameBuffer, x, y int) color.RGBA {
	i := (y*fb.W + x) * 4
	return color.RGBA{fb.Pixels[i], fb.Pixels[i+1], fb.Pixels[i+2], fb.Pixels[i+3]}
}

func TestFillRectClipsToBuffer(t *testing.T) {
	fb := NewFrameBuffer(10, 10)
	red := color.RGBA{R: 255, A: 255}
	fb.FillRect(-5, -5, 8, 8, red)

	if got := pixelAt(fb, 2, 2); got != red {
		t.Fatalf("expected red inside clipped rect, got %v", got)
	}
	if got := pixelAt(fb, 3, 3); got != (color.RGBA{}) {
		t.Fatalf("expected untouched pixel outside rect, got %v", got)
	}
	fb.FillRect(20, 20, 5, 5, red)
}

func TestStrokeRectLeavesInterior(t *testing.T) {
	fb := NewFrameBuffer(10, 10)
	c := color.RGBA{G: 200, A: 255}
	fb.StrokeRect(0, 0, 10, 10, 1, c)
	if got := pixelAt(fb, 0, 5); got != c {
		t.Fatalf("expected edge pixel set, got %v", got)
	}
	if got := pixelAt(fb, 5, 5); got != (color.RGBA{}) {
		t.Fatalf("expected interior untouched, got %v", got)
	}
}

func TestRGBASharesPixels(t *testing.T) {
	fb := NewFrameBuffer(4, 3)
	img := fb.RGBA()
	img.Set(1, 2, color.RGBA{B: 9, A: 255})
	if got := pixelAt(fb, 1, 2); got.B != 9 {
		t.Fatalf("expected write through image view, got %v", got)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}

func TestCheckerAlternates(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	a := color.RGBA{R: 1, A: 255}
	b := color.RGBA{R: 2, A: 255}
	fb.Checker(0, 0, 8, 8, 4, a, b)
	if got := pixelAt(fb, 0, 0); got != a {
		t.Fatalf("unexpected first cell %v", got)
	}
	if got := pixelAt(fb, 4, 0); got != b {
		t.Fatalf("unexpected second cell %v", got)
	}
	if got := pixelAt(fb, 4, 4); got != a {
		t.Fatalf("unexpected diagonal cell %v", got)
	}
}

func TestResizeReallocatesOnlyOnChange(t *testing.T) {
	fb := NewFrameBuffer(4, 4)
	fb.Pixels[0] = 7
	fb.Resize(4, 4)
	if fb.Pixels[0] != 7 {
		t.Fatalf("same-size resize should keep the buffer")
	}
	fb.Resize(6, 2)
	if fb.W != 6 || fb.H != 2 || len(fb.Pixels) != 6*2*4 {
		t.Fatalf("unexpected buffer after resize: %dx%d len=%d", fb.W, fb.H, len(fb.Pixels))
	}
}
