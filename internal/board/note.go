// Package board defines the domain types for corkboard: sticky notes, the
// boards that hold them, and the short identifiers boards are shared under.
package board

import (
	"strings"
	"time"
)

// Palette colors a note can take. The web and terminal clients both render
// from this set; unknown colors are kept as-is and rendered as DefaultColor.
const (
	ColorYellow = "yellow"
	ColorPink   = "pink"
	ColorBlue   = "blue"
	ColorGreen  = "green"
	ColorOrange = "orange"
	ColorPurple = "purple"
)

// DefaultColor is assigned to freshly created notes.
const DefaultColor = ColorYellow

// PaletteColors lists the palette in display order.
var PaletteColors = []string{ColorYellow, ColorPink, ColorBlue, ColorGreen, ColorOrange, ColorPurple}

// Note is a single sticky note. ID is an opaque client-assigned token; X and
// Y are free-form canvas coordinates owned by whatever surface renders the
// board.
type Note struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Color string  `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Blank reports whether the note carries no text (whitespace-only counts as
// blank). Only blank notes may be removed from a working copy, and a board
// consisting solely of blank notes is never created remotely.
func (n Note) Blank() bool {
	return strings.TrimSpace(n.Text) == ""
}

// Board is a server-resident collection of notes addressed by one shareable
// identifier. Notes is never empty while the board exists in the store.
type Board struct {
	ID           string    `json:"id"`
	Notes        []Note    `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
	LastAccessed time.Time `json:"lastAccessed"`
}

// RemoveSummary is returned by a successful board removal.
type RemoveSummary struct {
	ID         string `json:"id"`
	NotesCount int    `json:"notesCount"`
}

// HasContent reports whether at least one note in notes carries non-blank
// text.
func HasContent(notes []Note) bool {
	for _, n := range notes {
		if !n.Blank() {
			return true
		}
	}
	return false
}

// NextColor returns the palette color following c, wrapping around. Unknown
// colors restart at the beginning of the palette.
func NextColor(c string) string {
	for i, pc := range PaletteColors {
		if pc == c {
			return PaletteColors[(i+1)%len(PaletteColors)]
		}
	}
	return PaletteColors[0]
}
