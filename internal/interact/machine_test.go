package interact

import (
	"testing"
	"time"
	"unicode/utf8"

	"memecap/internal/caption"
	"memecap/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

type monoMeasurer struct{}

func (monoMeasurer) MeasureText(s string, fontPx int) float64 {
	return float64(utf8.RuneCountInString(s)) * float64(fontPx) / 2
}

type rig struct {
	store *caption.Store
	view  *view.Viewport
	m     *Machine
	t0    time.Time
	image bool
}

func newRig() *rig {
	canvas := r2.Vec{X: 800, Y: 600}
	v := view.NewViewport()
	v.Reset(canvas)
	s := caption.NewStore(canvas)
	return &rig{
		store: s,
		view:  v,
		m:     New(s, v, DefaultConfig()),
		t0:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		image: true,
	}
}

func (r *rig) frame() Frame {
	return Frame{
		Mapper: view.Mapper{
			Display: r2.Box{Max: r.store.Canvas()},
			Canvas:  r.store.Canvas(),
			View:    *r.view,
		},
		Measurer: monoMeasurer{},
		Style:    caption.DefaultStyle(),
		HasImage: r.image,
	}
}

func (r *rig) at(x, y float64, ms int) Pointer {
	return Pointer{Screen: r2.Vec{X: x, Y: y}, At: r.t0.Add(time.Duration(ms) * time.Millisecond)}
}

func (r *rig) down(x, y float64, ms int) Effect { return r.m.PointerDown(r.frame(), r.at(x, y, ms)) }
func (r *rig) move(x, y float64, ms int) Effect { return r.m.PointerMove(r.frame(), r.at(x, y, ms)) }
func (r *rig) up(x, y float64, ms int) Effect   { return r.m.PointerUp(r.frame(), r.at(x, y, ms)) }

func TestShortClickOnEmptyCreatesLayerAndOpensEditor(t *testing.T) {
	r := newRig()
	r.down(400, 36, 0)
	assert.Equal(t, PanCandidate, r.m.State())
	eff := r.up(402, 36, 50)

	require.Equal(t, 1, r.store.Len())
	l := r.store.Layers()[0]
	assert.Equal(t, l.ID, eff.Created)
	assert.Equal(t, l.ID, eff.OpenEditor)
	assert.Equal(t, r2.Vec{X: 402, Y: 36}, l.Position)
	assert.True(t, l.Selected)
	assert.Equal(t, Editing, r.m.State())
	assert.Equal(t, r2.Vec{}, r.view.Pan)
}

func TestLongDisplacementPansInsteadOfCreating(t *testing.T) {
	r := newRig()
	r.down(100, 100, 0)
	eff := r.up(120, 100, 50)

	assert.Equal(t, 0, r.store.Len())
	assert.True(t, eff.Redraw)
	assert.Equal(t, Idle, r.m.State())
	assert.InDelta(t, 20, r.view.Pan.X, 1e-9)
	assert.InDelta(t, 0, r.view.Pan.Y, 1e-9)
}

func TestClickBesideArtworkCreatesNothing(t *testing.T) {
	r := newRig()
	for _, x := range []float64{-30, 850} {
		r.down(x, 100, 0)
		assert.Equal(t, PanCandidate, r.m.State())
		eff := r.up(x+1, 100, 40)
		assert.Empty(t, eff.Created)
		assert.Empty(t, eff.OpenEditor)
		assert.Equal(t, Idle, r.m.State())
	}
	assert.Equal(t, 0, r.store.Len())
	assert.Equal(t, r2.Vec{}, r.view.Pan)

	// The canvas edge itself still counts.
	r.down(800, 600, 100)
	r.up(800, 600, 130)
	require.Equal(t, 1, r.store.Len())
	assert.Equal(t, r2.Vec{X: 800, Y: 600}, r.store.Layers()[0].Position)
}

func TestSlowPressIsNotAClick(t *testing.T) {
	r := newRig()
	r.down(100, 100, 0)
	r.up(101, 100, 450)
	assert.Equal(t, 0, r.store.Len())
	assert.Equal(t, Idle, r.m.State())
	assert.Equal(t, r2.Vec{}, r.view.Pan)
}

func TestPanningFollowsPointerAndNeverTouchesLayers(t *testing.T) {
	r := newRig()
	l := r.store.Create(r2.Vec{X: 700, Y: 500}, "keep")
	r.m.Reset()

	r.down(100, 100, 0)
	r.move(102, 100, 10)
	assert.Equal(t, PanCandidate, r.m.State(), "below threshold")
	r.move(110, 90, 20)
	assert.Equal(t, Panning, r.m.State())
	r.move(130, 80, 30)
	assert.Equal(t, r2.Vec{X: 30, Y: -20}, r.view.Pan)
	r.up(130, 80, 1000)

	assert.Equal(t, Idle, r.m.State())
	assert.Equal(t, r2.Vec{X: 700, Y: 500}, l.Position)
	assert.Equal(t, "keep", l.Text)
	assert.Equal(t, 1, r.store.Len())
}

func TestPanUsesCanvasPixelsUnderDisplayScale(t *testing.T) {
	r := newRig()
	f := r.frame()
	f.Mapper.Display = r2.Box{Max: r2.Vec{X: 400, Y: 300}}

	r.m.PointerDown(f, r.at(100, 100, 0))
	r.m.PointerUp(f, r.at(120, 100, 50))
	assert.InDelta(t, 40, r.view.Pan.X, 1e-9)
}

func TestDragMovesLayerAndClampsToCanvas(t *testing.T) {
	r := newRig()
	l := r.store.Create(r2.Vec{X: 400, Y: 36}, "top")
	r.m.Reset()

	eff := r.down(400, 36, 0)
	assert.Equal(t, DraggingLayer, r.m.State())
	assert.True(t, l.Dragging)
	assert.Equal(t, CursorGrabbing, eff.Cursor)

	r.move(650, 36, 100)
	assert.Equal(t, r2.Vec{X: 650, Y: 36}, l.Position)
	r.move(900, 36, 200)
	assert.Equal(t, r2.Vec{X: 800, Y: 36}, l.Position)
	r.up(900, 36, 300)

	assert.Equal(t, Idle, r.m.State())
	assert.False(t, l.Dragging)
	assert.Equal(t, r2.Vec{X: 800, Y: 36}, l.Position)
}

func TestDragKeepsGrabOffset(t *testing.T) {
	r := newRig()
	l := r.store.Create(r2.Vec{X: 400, Y: 300}, "wide caption")
	r.m.Reset()

	r.down(420, 310, 0)
	r.up(520, 210, 400)
	assert.Equal(t, r2.Vec{X: 500, Y: 200}, l.Position)
}

func TestClampHoldsForAnyDragSequence(t *testing.T) {
	r := newRig()
	l := r.store.Create(r2.Vec{X: 400, Y: 300}, "x")
	r.m.Reset()

	path := [][2]float64{{-300, 20}, {1200, 900}, {400, -999}, {-1, 601}, {805, 300}}
	r.down(400, 300, 0)
	for i, p := range path {
		r.move(p[0], p[1], 10*(i+1))
		assert.True(t, l.Position.X >= 0 && l.Position.X <= 800, "x=%v", l.Position.X)
		assert.True(t, l.Position.Y >= 0 && l.Position.Y <= 600, "y=%v", l.Position.Y)
	}
	r.up(805, 300, 500)
	assert.Equal(t, r2.Vec{X: 800, Y: 300}, l.Position)
}

func TestTapOnLayerOpensEditorWithoutMoving(t *testing.T) {
	r := newRig()
	l := r.store.Create(r2.Vec{X: 400, Y: 36}, "top")
	r.m.Reset()
	r.store.Select("")

	r.down(400, 36, 0)
	r.move(403, 36, 20)
	eff := r.up(403, 36, 60)

	assert.Equal(t, l.ID, eff.OpenEditor)
	assert.Equal(t, Editing, r.m.State())
	assert.Equal(t, r2.Vec{X: 400, Y: 36}, l.Position, "click restores the press position")
	assert.True(t, l.Selected)
	assert.Equal(t, 1, r.store.Len())
}

func TestLeaveCancelsGestureWithoutClick(t *testing.T) {
	r := newRig()
	r.down(100, 100, 0)
	r.m.PointerLeave(r.frame())
	assert.Equal(t, Idle, r.m.State())
	r.up(100, 100, 10)
	assert.Equal(t, 0, r.store.Len(), "up after leave is not a click")

	l := r.store.Create(r2.Vec{X: 400, Y: 300}, "x")
	r.m.Reset()
	r.down(400, 300, 0)
	r.move(450, 320, 10)
	r.m.PointerLeave(r.frame())
	assert.Equal(t, Idle, r.m.State())
	assert.False(t, l.Dragging)
	assert.Equal(t, r2.Vec{X: 450, Y: 320}, l.Position)
}

func TestConfirmCancelAndFocusLoss(t *testing.T) {
	r := newRig()
	r.down(400, 36, 0)
	r.up(400, 36, 20)
	id, prior, ok := r.m.Editing()
	require.True(t, ok)
	assert.Equal(t, "", prior)

	eff := r.m.Confirm("  hello ")
	assert.True(t, eff.CloseEditor)
	assert.True(t, eff.Committed)
	assert.Equal(t, "hello", r.store.Get(id).Text)
	assert.Equal(t, Idle, r.m.State())

	r.m.BeginEdit(id)
	r.m.SetDraft("changed")
	r.m.Cancel()
	assert.Equal(t, "hello", r.store.Get(id).Text)

	r.m.BeginEdit(id)
	r.m.FocusLost("blurred")
	assert.Equal(t, "blurred", r.store.Get(id).Text)
	assert.Equal(t, Idle, r.m.State())
}

func TestPointerIgnoredWhileEditing(t *testing.T) {
	r := newRig()
	r.down(400, 36, 0)
	r.up(400, 36, 20)
	require.Equal(t, Editing, r.m.State())

	r.down(100, 500, 100)
	r.up(100, 500, 120)
	assert.Equal(t, Editing, r.m.State())
	assert.Equal(t, 1, r.store.Len())
	assert.Equal(t, Effect{}, r.m.Wheel(r.frame(), 1, r2.Vec{X: 10, Y: 10}))
}

func TestBeginEditConfirmsOpenEdit(t *testing.T) {
	r := newRig()
	a := r.store.Create(r2.Vec{X: 100, Y: 100}, "a")
	b := r.store.Create(r2.Vec{X: 500, Y: 500}, "b")
	r.m.Reset()

	r.m.BeginEdit(a.ID)
	r.m.SetDraft("first")
	eff := r.m.BeginEdit(b.ID)

	assert.Equal(t, "first", a.Text)
	assert.True(t, eff.CloseEditor)
	assert.Equal(t, b.ID, eff.OpenEditor)
	id, prior, ok := r.m.Editing()
	require.True(t, ok)
	assert.Equal(t, b.ID, id)
	assert.Equal(t, "b", prior)
	assert.True(t, b.Selected)
	assert.False(t, a.Selected)
}

func TestNoImageMakesGesturesNoOps(t *testing.T) {
	r := newRig()
	r.image = false
	assert.Equal(t, Effect{}, r.down(400, 36, 0))
	assert.Equal(t, Effect{}, r.up(400, 36, 10))
	assert.Equal(t, Effect{}, r.m.Wheel(r.frame(), 1, r2.Vec{}))
	assert.Equal(t, 0, r.store.Len())
	assert.Equal(t, Idle, r.m.State())
}

func TestWheelZoomsAboutAnchor(t *testing.T) {
	r := newRig()
	anchor := r2.Vec{X: 200, Y: 150}
	before := r.frame().Mapper.ScreenToLogical(anchor)

	eff := r.m.Wheel(r.frame(), 2, anchor)
	assert.True(t, eff.Redraw)
	assert.InDelta(t, view.ZoomStep*view.ZoomStep, r.view.Zoom, 1e-12)

	after := r.frame().Mapper.ScreenToLogical(anchor)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestHoverReportsGrabCursor(t *testing.T) {
	r := newRig()
	r.store.Create(r2.Vec{X: 400, Y: 300}, "hover")
	r.m.Reset()
	assert.Equal(t, CursorGrab, r.move(400, 300, 0).Cursor)
	assert.Equal(t, CursorDefault, r.move(10, 10, 0).Cursor)
}

func TestDeleteSelected(t *testing.T) {
	r := newRig()
	r.store.Create(r2.Vec{X: 400, Y: 300}, "gone")
	r.m.Reset()
	assert.True(t, r.m.DeleteSelected().Redraw)
	assert.Equal(t, 0, r.store.Len())
	assert.False(t, r.m.DeleteSelected().Redraw)
}
