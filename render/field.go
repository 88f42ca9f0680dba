package render

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-replay/constants"
	"github.com/lixenwraith/vi-replay/entity"
	"github.com/lixenwraith/vi-replay/timeline"
)

// Canvas is the drawing subset of tcell.Screen
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

// Viewport is the cell rectangle the field is drawn into
type Viewport struct {
	X, Y          int
	Width, Height int
}

// drawOrder layers pellets above ships above planets
var drawOrder = [...]entity.Kind{entity.KindPlanet, entity.KindShip, entity.KindPellet}

// layout maps field coordinates into viewport cells
// Field space is scaled to fit, centered horizontally and top aligned
type layout struct {
	vp      Viewport
	scale   float64 // pixels per field unit, one pixel = one cell column
	offsetX float64
	width   float64 // scaled field extent in pixels
	height  float64
}

func newLayout(vp Viewport, dims entity.Vec2) (layout, bool) {
	if vp.Width <= 0 || vp.Height <= 0 || dims.X <= 0 || dims.Y <= 0 {
		return layout{}, false
	}
	pxW := float64(vp.Width)
	pxH := float64(vp.Height) * constants.CellAspect
	scale := math.Min(pxW/dims.X, pxH/dims.Y)
	return layout{
		vp:      vp,
		scale:   scale,
		offsetX: 0.5 * (pxW - scale*dims.X),
		width:   scale * dims.X,
		height:  scale * dims.Y,
	}, true
}

// toPixel converts a field position to viewport-relative pixels
func (l layout) toPixel(p entity.Vec2) (float64, float64) {
	return l.offsetX + p.X*l.scale, p.Y * l.scale
}

// inField reports whether a cell's center lies inside the scaled field
func (l layout) inField(col, row int) bool {
	if col < 0 || row < 0 || col >= l.vp.Width || row >= l.vp.Height {
		return false
	}
	cx := float64(col) + 0.5
	cy := (float64(row) + 0.5) * constants.CellAspect
	return cx >= l.offsetX && cx <= l.offsetX+l.width && cy <= l.height
}

// CellOf returns the viewport cell containing a field position
func CellOf(vp Viewport, dims entity.Vec2, p entity.Vec2) (x, y int, ok bool) {
	l, ok := newLayout(vp, dims)
	if !ok {
		return 0, 0, false
	}
	px, py := l.toPixel(p)
	col := int(math.Floor(px))
	row := int(math.Floor(py / constants.CellAspect))
	if !l.inField(col, row) {
		return 0, 0, false
	}
	return vp.X + col, vp.Y + row, true
}

// Draw renders one snapshot into the viewport
// Pure with respect to its inputs: it only writes cells of vp
func Draw(c Canvas, vp Viewport, dims entity.Vec2, snap *timeline.Snapshot, colors *timeline.Colors) {
	outside := tcell.StyleDefault.Background(RgbBackground)
	l, ok := newLayout(vp, dims)

	for row := 0; row < vp.Height; row++ {
		for col := 0; col < vp.Width; col++ {
			style := outside
			if ok && l.inField(col, row) {
				style = tcell.StyleDefault.Background(RgbField)
			}
			c.SetContent(vp.X+col, vp.Y+row, constants.GlyphEmpty, nil, style)
		}
	}
	if !ok || snap == nil {
		return
	}

	for _, kind := range drawOrder {
		snap.Range(func(e entity.Entity) bool {
			if e.Kind == kind {
				drawEntity(c, l, e, colors)
			}
			return true
		})
	}
}

func drawEntity(c Canvas, l layout, e entity.Entity, colors *timeline.Colors) {
	glyph := constants.GlyphBody
	base := tcell.StyleDefault.Background(RgbField)
	var style tcell.Style

	switch e.Kind {
	case entity.KindShip:
		fg := RgbShipNoColor
		if color, ok := colors.Lookup(e.ID); ok {
			fg = color
		}
		style = base.Foreground(fg)
	case entity.KindPellet:
		glyph = constants.GlyphPellet
		style = base.Foreground(RgbPellet)
	default:
		style = base.Foreground(RgbPlanet)
	}

	px, py := l.toPixel(e.Position())
	r := e.Body.Radius * l.scale

	minCol := int(math.Floor(px - r))
	maxCol := int(math.Floor(px + r))
	minRow := int(math.Floor((py - r) / constants.CellAspect))
	maxRow := int(math.Floor((py + r) / constants.CellAspect))

	drawn := false
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if !l.inField(col, row) {
				continue
			}
			dx := float64(col) + 0.5 - px
			dy := (float64(row)+0.5)*constants.CellAspect - py
			if dx*dx+dy*dy > r*r {
				continue
			}
			c.SetContent(l.vp.X+col, l.vp.Y+row, glyph, nil, style)
			drawn = true
		}
	}

	// Bodies smaller than a cell still occupy the cell at their center
	if !drawn {
		col := int(math.Floor(px))
		row := int(math.Floor(py / constants.CellAspect))
		if l.inField(col, row) {
			c.SetContent(l.vp.X+col, l.vp.Y+row, glyph, nil, style)
		}
	}
}
