package replaylog

import (
	"encoding/json"
	"fmt"

	"github.com/lixenwraith/vi-replay/entity"
)

// Header is the first log entry describing the playing field
type Header struct {
	Dimensions entity.Vec2 `json:"dimensions"`
	Gravity    float64     `json:"gravity"`
}

// Log is a decoded replay: a header and one batch of records per tick
type Log struct {
	Header Header
	Ticks  []TickBatch
}

// TickBatch holds the records of one simulation tick, in log order
type TickBatch struct {
	Records []Record `json:"data"`
}

// Record is one entity event within a tick
type Record struct {
	ID   entity.ID `json:"id"`
	Data PatchData `json:"data"`

	problem string
}

// UnmarshalJSON keeps a badly shaped record on the tick instead of failing the
// whole line; the reason is reported later through Problem
func (r *Record) UnmarshalJSON(b []byte) error {
	*r = Record{}

	var raw struct {
		ID   json.RawMessage `json:"id"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		r.problem = "record is not an object"
		return nil
	}
	if len(raw.ID) > 0 {
		if err := json.Unmarshal(raw.ID, &r.ID); err != nil {
			r.ID = ""
			r.problem = err.Error()
			return nil
		}
	}
	if len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, &r.Data); err != nil {
			r.Data = PatchData{}
			r.problem = err.Error()
		}
	}
	return nil
}

// Problem returns why the record could not be decoded, or "" for a well-formed record
func (r Record) Problem() string {
	return r.problem
}

// BodyData carries either a create payload (radius, mass, state) or a
// flat state payload (position, velocity, orientation)
type BodyData struct {
	Radius      *float64          `json:"radius"`
	Mass        *float64          `json:"mass"`
	State       *entity.BodyState `json:"state"`
	Position    *entity.Vec2      `json:"position"`
	Velocity    *entity.Vec2      `json:"velocity"`
	Orientation *float64          `json:"orientation"`
}

// IsCreate reports whether the body has the creation shape
func (b *BodyData) IsCreate() bool {
	return b != nil && b.Radius != nil && b.State != nil
}

// StateValue returns the body state from either shape
func (b *BodyData) StateValue() (entity.BodyState, bool) {
	if b == nil {
		return entity.BodyState{}, false
	}
	if b.State != nil {
		return *b.State, true
	}
	if b.Position == nil {
		return entity.BodyState{}, false
	}
	st := entity.BodyState{Position: *b.Position}
	if b.Velocity != nil {
		st.Velocity = *b.Velocity
	}
	if b.Orientation != nil {
		st.Orientation = *b.Orientation
	}
	return st, true
}

// WeaponData carries a weapon create payload or a weapon state payload
type WeaponData struct {
	MaxReload        *float64            `json:"max_reload"`
	MaxTemperature   *float64            `json:"max_temperature"`
	TemperatureDecay *float64            `json:"temperature_decay"`
	Speed            *float64            `json:"speed"`
	TimeToLive       *float64            `json:"time_to_live"`
	State            *entity.WeaponState `json:"state"`
	Fired            *bool               `json:"fired"`
	Reload           *float64            `json:"reload"`
	Temperature      *float64            `json:"temperature"`
}

// StateValue returns the weapon state from either shape
func (w *WeaponData) StateValue() (entity.WeaponState, bool) {
	if w == nil {
		return entity.WeaponState{}, false
	}
	if w.State != nil {
		return *w.State, true
	}
	if w.Fired == nil && w.Reload == nil && w.Temperature == nil {
		return entity.WeaponState{}, false
	}
	var st entity.WeaponState
	if w.Fired != nil {
		st.Fired = *w.Fired
	}
	if w.Reload != nil {
		st.Reload = *w.Reload
	}
	if w.Temperature != nil {
		st.Temperature = *w.Temperature
	}
	return st, true
}

// ControllerData carries a controller create payload or a controller state payload
type ControllerData struct {
	Name    *string                 `json:"name"`
	Version *int                    `json:"version"`
	State   *entity.ControllerState `json:"state"`
	Fire    *bool                   `json:"fire"`
	Rotate  *float64                `json:"rotate"`
	Thrust  *float64                `json:"thrust"`
}

// StateValue returns the controller state from either shape
func (c *ControllerData) StateValue() (entity.ControllerState, bool) {
	if c == nil {
		return entity.ControllerState{}, false
	}
	if c.State != nil {
		return *c.State, true
	}
	if c.Fire == nil && c.Rotate == nil && c.Thrust == nil {
		return entity.ControllerState{}, false
	}
	var st entity.ControllerState
	if c.Fire != nil {
		st.Fire = *c.Fire
	}
	if c.Rotate != nil {
		st.Rotate = *c.Rotate
	}
	if c.Thrust != nil {
		st.Thrust = *c.Thrust
	}
	return st, true
}

// PatchData is the raw, untagged payload of a record
// Pointer fields preserve presence; whether it creates, updates or deletes
// is decided against the object table during reconstruction
type PatchData struct {
	Name       *string         `json:"name"`
	Body       *BodyData       `json:"body"`
	Weapon     *WeaponData     `json:"weapon"`
	Controller *ControllerData `json:"controller"`
	MaxThrust  *float64        `json:"max_thrust"`
	MaxRotate  *float64        `json:"max_rotate"`
	TimeToLive *float64        `json:"time_to_live"`

	present bool
	keys    int
}

// EmptyPatch returns the deletion marker, equivalent to decoding {}
func EmptyPatch() PatchData {
	return PatchData{present: true}
}

// patchFields mirrors PatchData without the custom unmarshaler
type patchFields PatchData

// UnmarshalJSON decodes the payload and counts its raw keys so that an
// empty object stays distinguishable from one with only unknown keys
func (p *PatchData) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("record data: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("record data: expected object, got null")
	}

	var fields patchFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("record data: %w", err)
	}
	*p = PatchData(fields)
	p.present = true
	p.keys = len(raw)
	return nil
}

// IsEmpty reports whether the payload is the deletion marker {}
func (p PatchData) IsEmpty() bool {
	return p.present && p.keys == 0
}

// IsMissing reports whether the record carried no payload at all
func (p PatchData) IsMissing() bool {
	return !p.present && !p.hasFields()
}

func (p PatchData) hasFields() bool {
	return p.Name != nil || p.Body != nil || p.TimeToLive != nil || p.HasShipFields()
}

// HasShipFields reports whether any ship-only field is present
func (p PatchData) HasShipFields() bool {
	return p.Controller != nil || p.Weapon != nil || p.MaxThrust != nil || p.MaxRotate != nil
}
