package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID identifies an entity within one replay
// Logs carry IDs as JSON numbers or strings; both normalize to their text form
type ID string

// UnmarshalJSON accepts either a JSON string or a JSON number
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("entity id: missing value")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("entity id: %w", err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("entity id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// CompareIDs orders numeric IDs numerically and everything else lexically
// Numeric IDs sort before non-numeric ones
func CompareIDs(a, b ID) int {
	an, aErr := strconv.ParseInt(string(a), 10, 64)
	bn, bErr := strconv.ParseInt(string(b), 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		// "1", "01" and "+1" share a value but stay distinct
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Vec2 is a 2D vector in playing-field units
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Kind is the closed set of entity variants, fixed at creation
type Kind uint8

const (
	KindPlanet Kind = iota
	KindShip
	KindPellet
)

func (k Kind) String() string {
	switch k {
	case KindPlanet:
		return "planet"
	case KindShip:
		return "ship"
	case KindPellet:
		return "pellet"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// BodyState is the per-tick mutable part of a body
type BodyState struct {
	Position    Vec2    `json:"position"`
	Velocity    Vec2    `json:"velocity"`
	Orientation float64 `json:"orientation"`
}

// Body is the circular hitbox shared by all kinds
type Body struct {
	Radius float64   `json:"radius"`
	Mass   float64   `json:"mass"`
	State  BodyState `json:"state"`
}

// WeaponState is the per-tick mutable part of a ship weapon
type WeaponState struct {
	Fired       bool    `json:"fired"`
	Reload      float64 `json:"reload"`
	Temperature float64 `json:"temperature"`
}

// Weapon is attached to ships only
type Weapon struct {
	MaxReload        float64     `json:"max_reload"`
	MaxTemperature   float64     `json:"max_temperature"`
	TemperatureDecay float64     `json:"temperature_decay"`
	Speed            float64     `json:"speed"`
	TimeToLive       float64     `json:"time_to_live"`
	State            WeaponState `json:"state"`
}

// ControllerState holds the control signals a bot emitted on the last tick
type ControllerState struct {
	Fire   bool    `json:"fire"`
	Rotate float64 `json:"rotate"`
	Thrust float64 `json:"thrust"`
}

// Controller describes the bot driving a ship
type Controller struct {
	Name    string          `json:"name"`
	Version int             `json:"version"`
	State   ControllerState `json:"state"`
}

// Entity is a fully materialized game object
// All fields are values so a copied Entity never aliases the original
type Entity struct {
	ID   ID     `json:"id"`
	Kind Kind   `json:"kind"`
	Name string `json:"name,omitempty"`
	Body Body   `json:"body"`

	// Ship only
	Weapon     Weapon     `json:"weapon"`
	Controller Controller `json:"controller"`
	MaxThrust  float64    `json:"max_thrust"`
	MaxRotate  float64    `json:"max_rotate"`

	// Pellet only
	TimeToLive float64 `json:"time_to_live"`
}

// Position is shorthand for the current body position
func (e Entity) Position() Vec2 {
	return e.Body.State.Position
}

// IsShip reports whether the entity is a ship
func (e Entity) IsShip() bool {
	return e.Kind == KindShip
}
