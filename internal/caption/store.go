package caption

import (
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

// Store is the ordered set of caption layers on the current canvas. Index 0
// is the bottom of the stack; later layers paint over earlier ones.
type Store struct {
	layers []*Layer
	canvas r2.Vec
	newID  func() string
}

func NewStore(canvas r2.Vec) *Store {
	return &Store{canvas: canvas, newID: uuid.NewString}
}

// Reset drops every layer and adopts new canvas bounds.
func (s *Store) Reset(canvas r2.Vec) {
	s.layers = nil
	s.canvas = canvas
}

func (s *Store) Canvas() r2.Vec { return s.canvas }

func (s *Store) Len() int { return len(s.layers) }

// Layers returns the layers bottom to top. The slice is a copy; the layers
// are shared.
func (s *Store) Layers() []*Layer {
	out := make([]*Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Create appends a layer at position, selects it and deselects the rest.
func (s *Store) Create(position r2.Vec, text string) *Layer {
	id := s.newID()
	for s.Get(id) != nil {
		id = s.newID()
	}
	l := &Layer{ID: id, Text: strings.TrimSpace(text), Position: s.Clamp(position)}
	s.layers = append(s.layers, l)
	s.Select(id)
	return l
}

func (s *Store) Get(id string) *Layer {
	if id == "" {
		return nil
	}
	for _, l := range s.layers {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Select marks the layer with id as the only selected one. An empty or
// unknown id clears the selection.
func (s *Store) Select(id string) {
	for _, l := range s.layers {
		l.Selected = id != "" && l.ID == id
	}
}

func (s *Store) Selected() *Layer {
	for _, l := range s.layers {
		if l.Selected {
			return l
		}
	}
	return nil
}

// UpdateText stores text with surrounding whitespace trimmed. An empty result
// is kept; such a layer is invisible.
func (s *Store) UpdateText(id, text string) bool {
	l := s.Get(id)
	if l == nil {
		return false
	}
	l.Text = strings.TrimSpace(text)
	return true
}

// Move places the layer at position clamped into the canvas.
func (s *Store) Move(id string, position r2.Vec) bool {
	l := s.Get(id)
	if l == nil {
		return false
	}
	l.Position = s.Clamp(position)
	return true
}

func (s *Store) Remove(id string) bool {
	for i, l := range s.layers {
		if l.ID == id {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			return true
		}
	}
	return false
}

// FindAt returns the topmost visible layer whose box contains point.
func (s *Store) FindAt(point r2.Vec, m Measurer, fontPx int) *Layer {
	return HitTest(point, s.layers, m, fontPx)
}

func (s *Store) Clamp(p r2.Vec) r2.Vec {
	return r2.Vec{X: clamp(p.X, 0, s.canvas.X), Y: clamp(p.Y, 0, s.canvas.Y)}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
