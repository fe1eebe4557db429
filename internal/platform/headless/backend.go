// Package headless is a window backend without a display. Events are queued
// by the caller or replayed from a YAML script; presented frames are kept for
// inspection.
package headless

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"memecap/internal/platform"
	"memecap/internal/render"
)

var (
	_ platform.Platform = (*Backend)(nil)
	_ platform.Window   = (*Window)(nil)
)

type Backend struct{}

func New() *Backend { return &Backend{} }

func (b *Backend) Name() string { return "headless" }

func (b *Backend) CreateWindow(cfg platform.WindowConfig) (platform.Window, error) {
	return NewWindow(cfg), nil
}

// Window queues events until polled and records the last presented frame.
type Window struct {
	mu       sync.Mutex
	title    string
	w        int
	h        int
	scale    float32
	closed   bool
	queue    []platform.Event
	last     *render.FrameBuffer
	presents int
}

func NewWindow(cfg platform.WindowConfig) *Window {
	w, h := cfg.WidthPx, cfg.HeightPx
	if w < cfg.MinWidthPx {
		w = cfg.MinWidthPx
	}
	if h < cfg.MinHeightPx {
		h = cfg.MinHeightPx
	}
	return &Window{title: cfg.Title, w: w, h: h, scale: 1.0}
}

// Push appends events for the next PollEvents. Resize events also change the
// reported size.
func (w *Window) Push(events ...platform.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ev := range events {
		if ev.Type == platform.EventResize && ev.Width > 0 && ev.Height > 0 {
			w.w, w.h = ev.Width, ev.Height
		}
		w.queue = append(w.queue, ev)
	}
}

func (w *Window) PollEvents() []platform.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return []platform.Event{{Type: platform.EventClose}}
	}
	out := w.queue
	w.queue = nil
	return out
}

func (w *Window) SizePx() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w, w.h
}

func (w *Window) Scale() float32 { return w.scale }

func (w *Window) SetTitle(title string) {
	w.mu.Lock()
	w.title = title
	w.mu.Unlock()
}

func (w *Window) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

// Present keeps a copy of fb.
func (w *Window) Present(fb *render.FrameBuffer) error {
	if fb == nil {
		return fmt.Errorf("present: nil frame")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("present: window closed")
	}
	cp := render.NewFrameBuffer(fb.W, fb.H)
	copy(cp.Pixels, fb.Pixels)
	w.last = cp
	w.presents++
	return nil
}

// LastFrame returns the most recent presented frame and how many frames
// were presented in total.
func (w *Window) LastFrame() (*render.FrameBuffer, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.presents
}

func (w *Window) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// ScriptStep is one line of an event script.
type ScriptStep struct {
	Type   string  `yaml:"type"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	AtMs   int     `yaml:"at_ms,omitempty"`
	Text   string  `yaml:"text,omitempty"`
	Key    string  `yaml:"key,omitempty"`
	Delta  float64 `yaml:"delta,omitempty"`
	Width  int     `yaml:"width,omitempty"`
	Height int     `yaml:"height,omitempty"`
	Path   string  `yaml:"path,omitempty"`
}

// Script is a replayable list of events with timestamps relative to Start.
type Script struct {
	Steps []ScriptStep `yaml:"steps"`
}

func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("parse script: %w", err)
	}
	for i, st := range s.Steps {
		if platform.ParseEventType(st.Type) == platform.EventUnknown {
			return Script{}, fmt.Errorf("script step %d: unknown event type %q", i+1, st.Type)
		}
	}
	return s, nil
}

// Events converts the script to events stamped from start.
func (s Script) Events(start time.Time) []platform.Event {
	out := make([]platform.Event, 0, len(s.Steps))
	for _, st := range s.Steps {
		ev := platform.Event{
			Type:   platform.ParseEventType(st.Type),
			X:      st.X,
			Y:      st.Y,
			Text:   st.Text,
			Key:    st.Key,
			DeltaY: st.Delta,
			Width:  st.Width,
			Height: st.Height,
			Time:   start.Add(time.Duration(st.AtMs) * time.Millisecond),
		}
		if st.Path != "" {
			ev.Paths = []string{st.Path}
		}
		out = append(out, ev)
	}
	return out
}
