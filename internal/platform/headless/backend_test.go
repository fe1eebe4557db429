package headless

import (
	"image/color"
	"testing"
	"time"

	"memecap/internal/platform"
	"memecap/internal/render"
)

func TestWindowQueuesAndDrainsEvents(t *testing.T) {
	pw, err := New().CreateWindow(platform.WindowConfig{Title: "t", WidthPx: 100, HeightPx: 80})
	if err != nil {
		t.Fatal(err)
	}
	w := pw.(*Window)
	w.Push(platform.Event{Type: platform.EventPointerDown, X: 1, Y: 2},
		platform.Event{Type: platform.EventResize, Width: 300, Height: 200})

	evs := w.PollEvents()
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if again := w.PollEvents(); len(again) != 0 {
		t.Fatalf("expected queue drained, got %d", len(again))
	}
	if gw, gh := w.SizePx(); gw != 300 || gh != 200 {
		t.Fatalf("resize not applied: %dx%d", gw, gh)
	}

	w.Close()
	evs = w.PollEvents()
	if len(evs) != 1 || evs[0].Type != platform.EventClose {
		t.Fatalf("expected close event after Close, got %+v", evs)
	}
}

func TestPresentKeepsCopy(t *testing.T) {
	w := NewWindow(platform.WindowConfig{WidthPx: 4, HeightPx: 4})
	fb := render.NewFrameBuffer(2, 2)
	fb.Clear(color.RGBA{R: 5, A: 255})
	if err := w.Present(fb); err != nil {
		t.Fatal(err)
	}
	fb.Clear(color.RGBA{})

	last, n := w.LastFrame()
	if n != 1 {
		t.Fatalf("expected one present, got %d", n)
	}
	if last.Pixels[0] != 5 {
		t.Fatalf("presented frame aliased the caller's buffer")
	}
	if err := w.Present(nil); err == nil {
		t.Fatalf("expected error presenting nil frame")
	}
}

func TestScriptEvents(t *testing.T) {
	src := []byte(`
steps:
  - {type: down, x: 400, y: 36, at_ms: 0}
  - {type: up, x: 401, y: 36, at_ms: 40}
  - {type: text, text: hello}
  - {type: key, key: Enter}
  - {type: wheel, x: 10, y: 10, delta: 1}
`)
	s, err := ParseScript(src)
	if err != nil {
		t.Fatal(err)
	}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	evs := s.Events(start)
	if len(evs) != 5 {
		t.Fatalf("expected 5 events, got %d", len(evs))
	}
	if evs[1].Type != platform.EventPointerUp || evs[1].Time.Sub(start) != 40*time.Millisecond {
		t.Fatalf("unexpected up event: %+v", evs[1])
	}
	if evs[2].Text != "hello" || evs[3].Key != platform.KeyEnter || evs[4].DeltaY != 1 {
		t.Fatalf("unexpected events: %+v", evs[2:])
	}

	if _, err := ParseScript([]byte("steps:\n  - {type: teleport}\n")); err == nil {
		t.Fatalf("expected unknown type error")
	}
}
