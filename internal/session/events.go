package session

import (
	"context"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"memecap/internal/caption"
	"memecap/internal/editor"
	"memecap/internal/interact"
	"memecap/internal/platform"
)

// minEditorWidth keeps an empty editor clickable, in screen pixels.
const minEditorWidth = 120

// Editing returns the layer under edit and its field.
func (s *Session) Editing() (*caption.Layer, *editor.Field, bool) {
	id, _, ok := s.machine.Editing()
	if !ok || s.field == nil {
		return nil, nil, false
	}
	l := s.store.Get(id)
	if l == nil {
		return nil, nil, false
	}
	return l, s.field, true
}

// EditorFontPx is the caption size as it appears on screen, so the inline
// editor lines up with the painted text.
func (s *Session) EditorFontPx() float64 {
	m := s.Mapper()
	return float64(s.FontPx()) * m.View.Zoom * m.DisplayScale().Y
}

// EditorRect is the screen box of the inline editor: centered on the edited
// layer and wide enough for the draft.
func (s *Session) EditorRect() (r2.Box, bool) {
	l, f, ok := s.Editing()
	if !ok {
		return r2.Box{}, false
	}
	m := s.Mapper()
	center := m.LogicalToScreen(l.Position)
	scale := m.View.Zoom * m.DisplayScale().X
	w := s.renderer.MeasureText(f.Text(), s.FontPx())*scale + 2*caption.PaddingFraction*float64(s.FontPx())*scale
	if w < minEditorWidth {
		w = minEditorWidth
	}
	h := s.EditorFontPx() * (1 + 2*caption.PaddingFraction)
	half := r2.Vec{X: w / 2, Y: h / 2}
	return r2.Box{Min: r2.Sub(center, half), Max: r2.Add(center, half)}, true
}

// SelectionBox is the selected layer's glyph box in screen space. The host
// draws the selection outline with it; the renderer never does.
func (s *Session) SelectionBox() (r2.Box, bool) {
	l := s.store.Selected()
	if l == nil || s.field != nil {
		return r2.Box{}, false
	}
	box, ok := caption.Bounds(l, s.renderer, s.FontPx())
	if !ok {
		return r2.Box{}, false
	}
	m := s.Mapper()
	return r2.Box{Min: m.LogicalToScreen(box.Min), Max: m.LogicalToScreen(box.Max)}, true
}

// Dispatch routes one host event and reports whether a redraw is needed.
func (s *Session) Dispatch(ctx context.Context, ev platform.Event) bool {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	p := interact.Pointer{Screen: r2.Vec{X: ev.X, Y: ev.Y}, At: ev.Time, Button: ev.Button}
	switch ev.Type {
	case platform.EventPointerDown:
		if box, ok := s.EditorRect(); ok {
			if box.Contains(p.Screen) {
				return false
			}
			// Clicking away from the editor is a blur: commit, then let the
			// press start a gesture as usual.
			s.commitEdit()
		}
		return s.apply(s.machine.PointerDown(s.frame(), p))
	case platform.EventPointerMove:
		return s.apply(s.machine.PointerMove(s.frame(), p))
	case platform.EventPointerUp:
		return s.apply(s.machine.PointerUp(s.frame(), p))
	case platform.EventPointerLeave:
		return s.apply(s.machine.PointerLeave(s.frame()))
	case platform.EventWheel:
		return s.apply(s.machine.Wheel(s.frame(), ev.DeltaY, p.Screen))
	case platform.EventTextInput:
		return s.typeText(ev.Text)
	case platform.EventKeyDown:
		if s.field != nil {
			return s.editKey(ev)
		}
		return s.idleKey(ev)
	case platform.EventDrop:
		if len(ev.Paths) == 0 {
			return false
		}
		if _, err := s.LoadFile(ctx, ev.Paths[0]); err != nil {
			s.logger.WarnContext(ctx, "dropped file not loaded", "path", ev.Paths[0], "err", err)
			return false
		}
		return true
	case platform.EventResize:
		s.dirty = true
		return true
	}
	return false
}

// FocusLost is the editor losing focus to something other than the stage,
// such as the window itself.
func (s *Session) FocusLost() bool {
	if s.field == nil {
		return false
	}
	return s.apply(s.machine.FocusLost(s.field.Text()))
}

// Paste inserts clipboard text into the open editor.
func (s *Session) Paste(text string) bool {
	return s.typeText(text)
}

// CutSelection removes the editor's selected text and returns it.
func (s *Session) CutSelection() (string, bool) {
	if s.field == nil || !s.field.HasSelection() {
		return "", false
	}
	cut := s.field.SelectedText()
	s.field.DeleteSelection()
	s.machine.SetDraft(s.field.Text())
	return cut, true
}

func (s *Session) typeText(text string) bool {
	if s.field == nil || text == "" {
		return false
	}
	if err := s.field.InsertTextAtCaret(text); err != nil {
		s.logger.Debug("rejected editor input", "err", err)
		return false
	}
	s.machine.SetDraft(s.field.Text())
	return true
}

func (s *Session) editKey(ev platform.Event) bool {
	f := s.field
	word := ev.Mods.Has(platform.ModCtrl) || ev.Mods.Has(platform.ModAlt)
	shift := ev.Mods.Has(platform.ModShift)
	moveCaret := func(move func()) {
		if shift {
			f.EnsureSelectionAnchor()
			move()
			f.UpdateSelectionFromCaret()
			return
		}
		if f.HasSelection() {
			f.ClearSelection()
		}
		move()
	}

	switch ev.Key {
	case platform.KeyEnter:
		return s.apply(s.machine.Confirm(f.Text()))
	case platform.KeyEscape:
		return s.apply(s.machine.Cancel())
	case platform.KeyBackspace:
		if word {
			f.DeleteWordBackward()
		} else {
			f.Backspace()
		}
	case platform.KeyDelete:
		if word {
			f.DeleteWordForward()
		} else {
			f.DeleteForward()
		}
	case platform.KeyLeft:
		if word {
			moveCaret(f.MoveCaretWordLeft)
		} else {
			moveCaret(f.MoveCaretLeft)
		}
	case platform.KeyRight:
		if word {
			moveCaret(f.MoveCaretWordRight)
		} else {
			moveCaret(f.MoveCaretRight)
		}
	case platform.KeyHome:
		moveCaret(f.MoveCaretToLineStart)
	case platform.KeyEnd:
		moveCaret(f.MoveCaretToLineEnd)
	case "A":
		if !ev.Mods.Has(platform.ModCtrl) {
			return false
		}
		f.SelectAll()
	default:
		return false
	}
	s.machine.SetDraft(f.Text())
	return true
}

func (s *Session) idleKey(ev platform.Event) bool {
	switch ev.Key {
	case platform.KeyDelete, platform.KeyBackspace:
		return s.apply(s.machine.DeleteSelected())
	case platform.KeyEnter:
		if l := s.store.Selected(); l != nil {
			return s.apply(s.machine.BeginEdit(l.ID))
		}
	case "0":
		if ev.Mods.Has(platform.ModCtrl) && s.image != nil {
			s.ResetView()
			return true
		}
	}
	return false
}
