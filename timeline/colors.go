package timeline

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-replay/entity"
)

// PaletteSize is the number of colors cycled through for ships
const PaletteSize = 3

// Palette is the ordered ship color cycle
type Palette [PaletteSize]tcell.Color

// DefaultPalette assigns red, green, blue in first-seen order
var DefaultPalette = Palette{tcell.ColorRed, tcell.ColorGreen, tcell.ColorBlue}

// Colors maps ship IDs to their display color
// Entries are assigned once and never reassigned or freed
type Colors struct {
	palette  Palette
	assigned map[entity.ID]tcell.Color
	order    []entity.ID
}

func newColors(p Palette) *Colors {
	return &Colors{
		palette:  p,
		assigned: make(map[entity.ID]tcell.Color),
	}
}

// assign gives id the next palette color unless it already has one
func (c *Colors) assign(id entity.ID) tcell.Color {
	if color, ok := c.assigned[id]; ok {
		return color
	}
	color := c.palette[len(c.order)%PaletteSize]
	c.assigned[id] = color
	c.order = append(c.order, id)
	return color
}

// Lookup returns the color assigned to id
func (c *Colors) Lookup(id entity.ID) (tcell.Color, bool) {
	if c == nil {
		return tcell.ColorDefault, false
	}
	color, ok := c.assigned[id]
	return color, ok
}

// Len returns the number of assigned colors
func (c *Colors) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Order returns IDs in assignment order
func (c *Colors) Order() []entity.ID {
	if c == nil {
		return nil
	}
	return append([]entity.ID(nil), c.order...)
}
