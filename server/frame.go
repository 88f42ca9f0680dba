package server

import (
	"fmt"

	"github.com/lixenwraith/vi-replay/entity"
	"github.com/lixenwraith/vi-replay/timeline"
)

// Message types sent to spectators
const (
	TypeFrame = "frame"
	TypeError = "error"
)

type frameEntity struct {
	ID          entity.ID   `json:"id"`
	Kind        entity.Kind `json:"kind"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Radius      float64     `json:"radius"`
	Orientation float64     `json:"orientation"`
	Color       string      `json:"color,omitempty"`
	Fired       bool        `json:"fired,omitempty"`
}

type frameMessage struct {
	Type       string        `json:"type"`
	Tick       int           `json:"tick"`
	Total      int           `json:"total"`
	State      string        `json:"state"`
	Dimensions entity.Vec2   `json:"dimensions"`
	Entities   []frameEntity `json:"entities"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// command is a spectator request; Tick is the target for seek and the delta for step
type command struct {
	Op   string `json:"op"`
	Tick *int   `json:"tick,omitempty"`
}

func newFrame(tick, total int, state string, dims entity.Vec2, snap *timeline.Snapshot, colors *timeline.Colors) frameMessage {
	msg := frameMessage{
		Type:       TypeFrame,
		Tick:       tick,
		Total:      total,
		State:      state,
		Dimensions: dims,
		Entities:   make([]frameEntity, 0, snap.Len()),
	}
	snap.Range(func(e entity.Entity) bool {
		fe := frameEntity{
			ID:          e.ID,
			Kind:        e.Kind,
			X:           e.Body.State.Position.X,
			Y:           e.Body.State.Position.Y,
			Radius:      e.Body.Radius,
			Orientation: e.Body.State.Orientation,
		}
		if e.IsShip() {
			fe.Fired = e.Weapon.State.Fired
			if c, ok := colors.Lookup(e.ID); ok {
				fe.Color = fmt.Sprintf("#%06x", c.Hex())
			}
		}
		msg.Entities = append(msg.Entities, fe)
		return true
	})
	return msg
}
