package render

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-replay/constants"
	"github.com/lixenwraith/vi-replay/entity"
	"github.com/lixenwraith/vi-replay/timeline"
)

// Status is the information shown on the bottom row
type Status struct {
	State   string
	Tick    int
	Total   int
	Period  time.Duration
	Message string
	IsError bool
}

// Screen draws replays onto a tcell screen with a status bar below the field
type Screen struct {
	screen tcell.Screen
	status Status
}

// NewScreen wraps an initialized tcell screen
func NewScreen(screen tcell.Screen) *Screen {
	return &Screen{screen: screen}
}

// SetStatus replaces the status bar content used by the next draw
func (s *Screen) SetStatus(st Status) {
	s.status = st
}

// Render draws a full frame; implements playback.Renderer
func (s *Screen) Render(dims entity.Vec2, snap *timeline.Snapshot, colors *timeline.Colors) {
	w, h := s.screen.Size()
	Draw(s.screen, s.fieldViewport(w, h), dims, snap, colors)
	s.drawStatus(w, h)
	s.screen.Show()
}

// Blank draws an empty field with the status bar, used before any replay is loaded
func (s *Screen) Blank() {
	w, h := s.screen.Size()
	Draw(s.screen, s.fieldViewport(w, h), entity.Vec2{}, nil, nil)
	s.drawStatus(w, h)
	s.screen.Show()
}

func (s *Screen) fieldViewport(w, h int) Viewport {
	return Viewport{Width: w, Height: max(0, h-constants.StatusBarHeight)}
}

func (s *Screen) drawStatus(w, h int) {
	if h <= 0 {
		return
	}
	y := h - 1
	barStyle := tcell.StyleDefault.Background(RgbStatusBar).Foreground(RgbStatusText)
	msgStyle := tcell.StyleDefault.Background(RgbBackground).Foreground(RgbStatusMessage)
	if s.status.IsError {
		msgStyle = tcell.StyleDefault.Background(RgbStatusError).Foreground(RgbStatusMessage)
	}

	for x := 0; x < w; x++ {
		s.screen.SetContent(x, y, ' ', nil, msgStyle)
	}

	indicator := FormatIndicator(s.status)
	x := drawText(s.screen, 0, y, w, indicator, barStyle)

	text := s.status.Message
	if text == "" {
		text = constants.StatusHelp
		msgStyle = tcell.StyleDefault.Background(RgbBackground).Foreground(RgbShipNoColor)
	}
	drawText(s.screen, x+1, y, w, text, msgStyle)
}

// FormatIndicator renders the state glyph, tick counter and period
func FormatIndicator(st Status) string {
	glyph := '■'
	switch st.State {
	case "playing":
		glyph = '▶'
	case "paused":
		glyph = '‖'
	}
	tick := 0
	if st.Total > 0 {
		tick = st.Tick + 1
	}
	return fmt.Sprintf(" %c %d/%d  %v ", glyph, tick, st.Total, st.Period)
}

// drawText writes s from x, clipped at width, and returns the column after it
func drawText(c Canvas, x, y, width int, s string, style tcell.Style) int {
	for _, r := range s {
		if x >= width {
			break
		}
		c.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
