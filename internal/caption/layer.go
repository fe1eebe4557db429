// Package caption holds the text layers placed over the artwork: the ordered
// layer store, the style settings they are painted with, and hit testing.
package caption

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Layer is one caption. Position is the center of the glyph box in logical
// canvas pixels. Text keeps the case the user typed.
type Layer struct {
	ID       string
	Text     string
	Position r2.Vec
	Selected bool
	Dragging bool
}

// DisplayText is the text as painted: uppercased.
func (l *Layer) DisplayText() string {
	return strings.ToUpper(l.Text)
}

// Visible reports whether the layer takes part in rendering and hit testing.
func (l *Layer) Visible() bool {
	return strings.TrimSpace(l.Text) != ""
}
