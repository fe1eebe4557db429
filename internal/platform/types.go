// Package platform defines the typed events a window host delivers to the
// editor session and the window capability the session presents into.
package platform

import (
	"time"

	"memecap/internal/render"
)

type WindowConfig struct {
	Title       string
	WidthPx     int
	HeightPx    int
	MinWidthPx  int
	MinHeightPx int
}

type EventType int

const (
	EventUnknown EventType = iota
	EventClose
	EventResize
	EventKeyDown
	EventKeyUp
	EventTextInput
	EventPointerMove
	EventPointerDown
	EventPointerUp
	EventPointerLeave
	EventWheel
	EventDrop
)

func (t EventType) String() string {
	switch t {
	case EventClose:
		return "close"
	case EventResize:
		return "resize"
	case EventKeyDown:
		return "key"
	case EventKeyUp:
		return "keyup"
	case EventTextInput:
		return "text"
	case EventPointerMove:
		return "move"
	case EventPointerDown:
		return "down"
	case EventPointerUp:
		return "up"
	case EventPointerLeave:
		return "leave"
	case EventWheel:
		return "wheel"
	case EventDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// ParseEventType is the inverse of EventType.String.
func ParseEventType(s string) EventType {
	for t := EventClose; t <= EventDrop; t++ {
		if t.String() == s {
			return t
		}
	}
	return EventUnknown
}

// Key names delivered in Event.Key. Printable text arrives separately as
// EventTextInput.
const (
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
	KeyBackspace = "Backspace"
	KeyDelete    = "Delete"
	KeyLeft      = "Left"
	KeyRight     = "Right"
	KeyHome      = "Home"
	KeyEnd       = "End"
	KeyTab       = "Tab"
)

type Mods uint8

const (
	ModShift Mods = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

func (m Mods) Has(flag Mods) bool { return m&flag != 0 }

// Event is one input from the host. Pointer coordinates are window pixels.
// DeltaY on EventWheel counts notches, positive away from the user.
type Event struct {
	Type   EventType
	Width  int
	Height int
	Scale  float32
	Text   string
	DeltaX float64
	DeltaY float64
	X      float64
	Y      float64
	Button int
	Key    string
	Mods   Mods
	Paths  []string
	Time   time.Time
}

type Platform interface {
	Name() string
	CreateWindow(cfg WindowConfig) (Window, error)
}

type Window interface {
	PollEvents() []Event
	SizePx() (int, int)
	Scale() float32
	Present(fb *render.FrameBuffer) error
	SetTitle(title string)
	Close()
}
