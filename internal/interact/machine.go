// Package interact turns pointer and editor signals into caption edits and
// view changes.
package interact

import (
	"math"
	"time"

	"memecap/internal/caption"
	"memecap/internal/view"

	"gonum.org/v1/gonum/spatial/r2"
)

type State int

const (
	Idle State = iota
	PanCandidate
	Panning
	DraggingLayer
	Editing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PanCandidate:
		return "pan-candidate"
	case Panning:
		return "panning"
	case DraggingLayer:
		return "dragging"
	case Editing:
		return "editing"
	default:
		return "unknown"
	}
}

const (
	DefaultClickDistance = 5.0
	DefaultClickTime     = 200 * time.Millisecond
)

// Config holds the click classification thresholds and the zoom factor of
// one wheel notch. ClickDistance is in screen pixels.
type Config struct {
	ClickDistance float64
	ClickTime     time.Duration
	ZoomStep      float64
}

func DefaultConfig() Config {
	return Config{ClickDistance: DefaultClickDistance, ClickTime: DefaultClickTime, ZoomStep: view.ZoomStep}
}

// Pointer is one pointer sample at the core boundary.
type Pointer struct {
	Screen r2.Vec
	At     time.Time
	Button int
}

// Frame is what a pointer event is resolved against. The host rebuilds it
// for every event from current state so no box or font survives a change.
type Frame struct {
	Mapper   view.Mapper
	Measurer caption.Measurer
	Style    caption.StyleConfig
	HasImage bool
}

func (f Frame) fontPx() int {
	return f.Style.FontPx(f.Mapper.Canvas.X)
}

type Cursor int

const (
	CursorDefault Cursor = iota
	CursorGrab
	CursorGrabbing
)

// Effect tells the host what a transition changed.
type Effect struct {
	Redraw      bool
	Created     string
	OpenEditor  string
	CloseEditor bool
	Committed   bool
	Cursor      Cursor
}

type gesture struct {
	pressAt     time.Time
	pressScreen r2.Vec
	layerID     string
	dragOffset  r2.Vec
	layerStart  r2.Vec
	panStart    r2.Vec
}

type edit struct {
	layerID string
	prior   string
	draft   string
}

// Machine is the direct-manipulation state machine. It owns no state beyond
// the gesture in flight and the open edit; layers and the viewport belong to
// the caller.
type Machine struct {
	store *caption.Store
	view  *view.Viewport
	cfg   Config

	state   State
	gesture gesture
	edit    edit
}

func New(store *caption.Store, v *view.Viewport, cfg Config) *Machine {
	if cfg.ClickDistance <= 0 {
		cfg.ClickDistance = DefaultClickDistance
	}
	if cfg.ClickTime <= 0 {
		cfg.ClickTime = DefaultClickTime
	}
	if cfg.ZoomStep <= 1 {
		cfg.ZoomStep = view.ZoomStep
	}
	return &Machine{store: store, view: v, cfg: cfg}
}

func (m *Machine) State() State { return m.state }

// Editing returns the layer being edited and its text before the edit began.
func (m *Machine) Editing() (layerID, prior string, ok bool) {
	if m.state != Editing {
		return "", "", false
	}
	return m.edit.layerID, m.edit.prior, true
}

// Reset drops any gesture or edit in flight without committing it. Used when
// the image, and with it every layer, is replaced.
func (m *Machine) Reset() {
	m.state = Idle
	m.gesture = gesture{}
	m.edit = edit{}
}

func (m *Machine) PointerDown(f Frame, p Pointer) Effect {
	if !f.HasImage || m.state == Editing {
		return Effect{}
	}
	if m.state != Idle {
		// A down without a matching up; finish the old gesture first.
		m.finishGesture(f)
	}
	logical := f.Mapper.ScreenToLogical(p.Screen)
	m.gesture = gesture{pressAt: p.At, pressScreen: p.Screen, panStart: m.view.Pan}

	hit := m.store.FindAt(logical, f.Measurer, f.fontPx())
	if hit == nil {
		m.state = PanCandidate
		return Effect{}
	}
	m.store.Select(hit.ID)
	hit.Dragging = true
	m.gesture.layerID = hit.ID
	m.gesture.layerStart = hit.Position
	m.gesture.dragOffset = r2.Sub(logical, hit.Position)
	m.state = DraggingLayer
	return Effect{Redraw: true, Cursor: CursorGrabbing}
}

func (m *Machine) PointerMove(f Frame, p Pointer) Effect {
	if !f.HasImage {
		return Effect{}
	}
	switch m.state {
	case Idle:
		logical := f.Mapper.ScreenToLogical(p.Screen)
		if m.store.FindAt(logical, f.Measurer, f.fontPx()) != nil {
			return Effect{Cursor: CursorGrab}
		}
		return Effect{}
	case PanCandidate:
		if m.displacement(p) < m.cfg.ClickDistance {
			return Effect{}
		}
		m.state = Panning
		return m.panTo(f, p)
	case Panning:
		return m.panTo(f, p)
	case DraggingLayer:
		return m.dragTo(f, p)
	}
	return Effect{}
}

func (m *Machine) PointerUp(f Frame, p Pointer) Effect {
	if !f.HasImage {
		return Effect{}
	}
	switch m.state {
	case PanCandidate:
		if m.isClick(p) {
			m.state = Idle
			m.gesture = gesture{}
			logical := f.Mapper.ScreenToLogical(p.Screen)
			if !onCanvas(logical, f.Mapper.Canvas) {
				// Stage margin around the artwork; nothing to caption.
				return Effect{}
			}
			l := m.store.Create(logical, "")
			eff := m.BeginEdit(l.ID)
			eff.Created = l.ID
			eff.Redraw = true
			return eff
		}
		eff := Effect{}
		if m.displacement(p) >= m.cfg.ClickDistance {
			eff = m.panTo(f, p)
		}
		m.state = Idle
		m.gesture = gesture{}
		return eff
	case Panning:
		eff := m.panTo(f, p)
		m.state = Idle
		m.gesture = gesture{}
		return eff
	case DraggingLayer:
		id := m.gesture.layerID
		if m.isClick(p) {
			m.store.Move(id, m.gesture.layerStart)
			m.endDrag()
			eff := m.BeginEdit(id)
			eff.Redraw = true
			return eff
		}
		eff := m.dragTo(f, p)
		m.endDrag()
		eff.Cursor = CursorDefault
		return eff
	}
	return Effect{}
}

// PointerLeave ends any gesture as a release would, but never as a click.
func (m *Machine) PointerLeave(f Frame) Effect {
	switch m.state {
	case PanCandidate, Panning, DraggingLayer:
		return m.finishGesture(f)
	}
	return Effect{}
}

// Wheel zooms the view about the anchor. delta is in wheel notches; positive
// zooms in.
func (m *Machine) Wheel(f Frame, delta float64, anchor r2.Vec) Effect {
	if !f.HasImage || m.state == Editing || delta == 0 {
		return Effect{}
	}
	factor := math.Pow(m.cfg.ZoomStep, delta)
	before := m.view.Zoom
	m.view.ZoomAt(factor, f.Mapper.ScreenToCanvas(anchor))
	return Effect{Redraw: m.view.Zoom != before}
}

// BeginEdit opens the inline editor for a layer. An edit already open is
// confirmed with its draft first.
func (m *Machine) BeginEdit(layerID string) Effect {
	l := m.store.Get(layerID)
	if l == nil {
		return Effect{}
	}
	eff := Effect{}
	if m.state == Editing {
		eff = m.closeEdit(true, m.edit.draft)
	} else if m.state != Idle {
		m.gesture = gesture{}
	}
	m.store.Select(l.ID)
	m.state = Editing
	m.edit = edit{layerID: l.ID, prior: l.Text, draft: l.Text}
	eff.OpenEditor = l.ID
	return eff
}

// SetDraft records the editor's current text so an implicit confirm can
// commit it.
func (m *Machine) SetDraft(text string) {
	if m.state == Editing {
		m.edit.draft = text
	}
}

func (m *Machine) Draft() string { return m.edit.draft }

// Confirm commits the trimmed draft to the layer being edited.
func (m *Machine) Confirm(draft string) Effect {
	if m.state != Editing {
		return Effect{}
	}
	return m.closeEdit(true, draft)
}

// Cancel discards the draft and restores the text the layer had before.
func (m *Machine) Cancel() Effect {
	if m.state != Editing {
		return Effect{}
	}
	return m.closeEdit(false, "")
}

// FocusLost is an implicit confirm.
func (m *Machine) FocusLost(draft string) Effect {
	return m.Confirm(draft)
}

// DeleteSelected removes the selected layer while idle.
func (m *Machine) DeleteSelected() Effect {
	if m.state != Idle {
		return Effect{}
	}
	l := m.store.Selected()
	if l == nil {
		return Effect{}
	}
	m.store.Remove(l.ID)
	return Effect{Redraw: true}
}

func (m *Machine) closeEdit(commit bool, draft string) Effect {
	id, prior := m.edit.layerID, m.edit.prior
	if commit {
		m.store.UpdateText(id, draft)
	} else {
		m.store.UpdateText(id, prior)
	}
	m.state = Idle
	m.edit = edit{}
	return Effect{Redraw: true, CloseEditor: true, Committed: commit}
}

func (m *Machine) finishGesture(f Frame) Effect {
	eff := Effect{Cursor: CursorDefault}
	if m.state == DraggingLayer {
		if l := m.store.Get(m.gesture.layerID); l != nil {
			m.store.Move(l.ID, l.Position)
		}
		m.endDrag()
		eff.Redraw = true
	}
	m.state = Idle
	m.gesture = gesture{}
	return eff
}

func (m *Machine) dragTo(f Frame, p Pointer) Effect {
	logical := f.Mapper.ScreenToLogical(p.Screen)
	if !m.store.Move(m.gesture.layerID, r2.Sub(logical, m.gesture.dragOffset)) {
		m.state = Idle
		m.gesture = gesture{}
		return Effect{Redraw: true}
	}
	return Effect{Redraw: true, Cursor: CursorGrabbing}
}

func (m *Machine) endDrag() {
	if l := m.store.Get(m.gesture.layerID); l != nil {
		l.Dragging = false
	}
	m.state = Idle
	m.gesture = gesture{}
}

// panTo sets the pan to where it was at press time plus the total pointer
// displacement, so dropped move events cannot make the view drift.
func (m *Machine) panTo(f Frame, p Pointer) Effect {
	delta := f.Mapper.ScreenDeltaToCanvas(r2.Sub(p.Screen, m.gesture.pressScreen))
	m.view.Pan = r2.Add(m.gesture.panStart, delta)
	return Effect{Redraw: true}
}

func onCanvas(p, canvas r2.Vec) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= canvas.X && p.Y <= canvas.Y
}

func (m *Machine) displacement(p Pointer) float64 {
	return r2.Norm(r2.Sub(p.Screen, m.gesture.pressScreen))
}

func (m *Machine) isClick(p Pointer) bool {
	return m.displacement(p) < m.cfg.ClickDistance && p.At.Sub(m.gesture.pressAt) < m.cfg.ClickTime
}
