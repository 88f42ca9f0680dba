package playback

import (
	"github.com/lixenwraith/vi-replay/entity"
	"github.com/lixenwraith/vi-replay/timeline"
)

// State is the playback state machine position
type State uint8

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// Renderer draws one snapshot; the controller never inspects the result
type Renderer interface {
	Render(dims entity.Vec2, snap *timeline.Snapshot, colors *timeline.Colors)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(dims entity.Vec2, snap *timeline.Snapshot, colors *timeline.Colors)

func (f RendererFunc) Render(dims entity.Vec2, snap *timeline.Snapshot, colors *timeline.Colors) {
	f(dims, snap, colors)
}

// Controller owns the current tick and play flag over a read-only timeline
// Not safe for concurrent use; one loop goroutine owns it
type Controller struct {
	timeline *timeline.Timeline
	colors   *timeline.Colors

	current   int
	isPlaying bool
	started   bool
}

// NewController creates a stopped controller at tick 0
// A nil timeline behaves as an empty one
func NewController(tl *timeline.Timeline, colors *timeline.Colors) *Controller {
	return &Controller{timeline: tl, colors: colors}
}

// Replace swaps in a freshly loaded timeline, resetting to a stopped tick 0
func (c *Controller) Replace(res *timeline.Result) {
	c.timeline = res.Timeline
	c.colors = res.Colors
	c.current = 0
	c.isPlaying = false
	c.started = false
}

// Len returns the timeline length
func (c *Controller) Len() int {
	return c.timeline.Len()
}

// Current returns the current tick index
func (c *Controller) Current() int {
	return c.current
}

// IsPlaying reports whether ticks advance playback
func (c *Controller) IsPlaying() bool {
	return c.isPlaying
}

// State derives the state machine position
func (c *Controller) State() State {
	switch {
	case c.Len() == 0 || !c.started:
		return StateStopped
	case c.isPlaying:
		return StatePlaying
	default:
		return StatePaused
	}
}

// Timeline returns the active timeline
func (c *Controller) Timeline() *timeline.Timeline {
	return c.timeline
}

// Colors returns the active color assignment
func (c *Controller) Colors() *timeline.Colors {
	return c.colors
}

// Snapshot returns the current snapshot, nil when the timeline is empty
func (c *Controller) Snapshot() *timeline.Snapshot {
	if c.Len() == 0 {
		return nil
	}
	return c.timeline.At(c.current)
}

// Seek moves to tick n; negative n counts from the end, the result is clamped
// The play flag is unchanged
func (c *Controller) Seek(n int) int {
	total := c.Len()
	if total == 0 {
		return c.current
	}
	if n < 0 {
		n += total
	}
	c.current = clamp(n, total)
	return c.current
}

// Step moves relative to the current tick without wrapping
func (c *Controller) Step(delta int) int {
	total := c.Len()
	if total == 0 {
		return c.current
	}
	c.current = clamp(c.current+delta, total)
	return c.current
}

// Play starts advancing; rejected on an empty timeline
func (c *Controller) Play() bool {
	if c.Len() == 0 {
		return false
	}
	c.isPlaying = true
	c.started = true
	return true
}

// Pause stops advancing
func (c *Controller) Pause() {
	c.isPlaying = false
}

// Toggle flips between playing and paused
func (c *Controller) Toggle() bool {
	if c.isPlaying {
		c.Pause()
		return false
	}
	return c.Play()
}

// Restart rewinds to the first tick and plays
func (c *Controller) Restart() bool {
	c.Seek(0)
	return c.Play()
}

// End jumps to the last tick
func (c *Controller) End() int {
	return c.Seek(-1)
}

// Tick is driven by the fixed-period clock: while playing it renders the
// current tick and advances, pausing once the last tick has been shown
func (c *Controller) Tick(r Renderer) {
	if !c.isPlaying {
		return
	}
	c.Render(r)

	if c.current < c.Len()-1 {
		c.current++
	} else {
		c.Pause()
	}
}

// Render draws the current tick regardless of play state
func (c *Controller) Render(r Renderer) {
	snap := c.Snapshot()
	if snap == nil || r == nil {
		return
	}
	r.Render(c.timeline.Dimensions(), snap, c.colors)
}

func clamp(n, total int) int {
	return max(0, min(n, total-1))
}
