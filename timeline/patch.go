package timeline

import (
	"github.com/lixenwraith/vi-replay/entity"
	"github.com/lixenwraith/vi-replay/replaylog"
)

// op is a record resolved against the object table: create, update or delete
type op interface {
	apply(table map[entity.ID]entity.Entity)
}

type createOp struct {
	entity entity.Entity
}

func (o createOp) apply(table map[entity.ID]entity.Entity) {
	table[o.entity.ID] = o.entity
}

// updateOp replaces nested state only; nil sub-states are retained
type updateOp struct {
	id         entity.ID
	body       entity.BodyState
	weapon     *entity.WeaponState
	controller *entity.ControllerState
	timeToLive *float64
}

func (o updateOp) apply(table map[entity.ID]entity.Entity) {
	e := table[o.id]
	e.Body.State = o.body
	if o.weapon != nil {
		e.Weapon.State = *o.weapon
	}
	if o.controller != nil {
		e.Controller.State = *o.controller
	}
	if o.timeToLive != nil {
		e.TimeToLive = *o.timeToLive
	}
	table[o.id] = e
}

type deleteOp struct {
	id entity.ID
}

func (o deleteOp) apply(table map[entity.ID]entity.Entity) {
	delete(table, o.id)
}

// resolveError carries the reason a record could not be resolved
type resolveError struct {
	reason    string
	duplicate bool
	kind      entity.Kind
}

// resolve tags a record exactly once against the current table
func resolve(table map[entity.ID]entity.Entity, rec replaylog.Record) (op, *resolveError) {
	if reason := rec.Problem(); reason != "" {
		return nil, &resolveError{reason: reason}
	}
	if rec.ID == "" {
		return nil, &resolveError{reason: "missing id"}
	}
	if rec.Data.IsMissing() {
		return nil, &resolveError{reason: "missing data"}
	}

	existing, live := table[rec.ID]
	if !live {
		if rec.Data.IsEmpty() {
			return nil, &resolveError{reason: "delete of unknown entity"}
		}
		if !rec.Data.Body.IsCreate() {
			return nil, &resolveError{reason: "update of unknown entity"}
		}
		e, reason := buildEntity(rec.ID, rec.Data)
		if reason != "" {
			return nil, &resolveError{reason: reason}
		}
		return createOp{entity: e}, nil
	}

	if rec.Data.IsEmpty() {
		return deleteOp{id: rec.ID}, nil
	}
	if rec.Data.Body.IsCreate() {
		return nil, &resolveError{duplicate: true, kind: existing.Kind}
	}
	return buildUpdate(existing, rec.Data)
}

// inferKind decides the entity variant from field presence, once, at creation
func inferKind(p replaylog.PatchData) (entity.Kind, string) {
	switch {
	case p.Controller != nil && p.TimeToLive != nil:
		return 0, "ambiguous kind: both controller and time_to_live present"
	case p.Controller != nil:
		return entity.KindShip, ""
	case p.HasShipFields():
		return 0, "ship fields without controller"
	case p.TimeToLive != nil:
		return entity.KindPellet, ""
	default:
		return entity.KindPlanet, ""
	}
}

func buildEntity(id entity.ID, p replaylog.PatchData) (entity.Entity, string) {
	kind, reason := inferKind(p)
	if reason != "" {
		return entity.Entity{}, reason
	}

	e := entity.Entity{
		ID:   id,
		Kind: kind,
		Body: entity.Body{
			Radius: *p.Body.Radius,
			State:  *p.Body.State,
		},
	}
	setIf(&e.Body.Mass, p.Body.Mass)
	if p.Name != nil {
		e.Name = *p.Name
	}

	switch kind {
	case entity.KindShip:
		e.Controller = buildController(p.Controller)
		e.Weapon = buildWeapon(p.Weapon)
		setIf(&e.MaxThrust, p.MaxThrust)
		setIf(&e.MaxRotate, p.MaxRotate)
		if e.Name == "" {
			e.Name = e.Controller.Name
		}
	case entity.KindPellet:
		e.TimeToLive = *p.TimeToLive
	}
	return e, ""
}

func buildController(c *replaylog.ControllerData) entity.Controller {
	var out entity.Controller
	if c.Name != nil {
		out.Name = *c.Name
	}
	if c.Version != nil {
		out.Version = *c.Version
	}
	out.State, _ = c.StateValue()
	return out
}

func buildWeapon(w *replaylog.WeaponData) entity.Weapon {
	var out entity.Weapon
	if w == nil {
		return out
	}
	setIf(&out.MaxReload, w.MaxReload)
	setIf(&out.MaxTemperature, w.MaxTemperature)
	setIf(&out.TemperatureDecay, w.TemperatureDecay)
	setIf(&out.Speed, w.Speed)
	setIf(&out.TimeToLive, w.TimeToLive)
	out.State, _ = w.StateValue()
	return out
}

func buildUpdate(existing entity.Entity, p replaylog.PatchData) (op, *resolveError) {
	body, ok := p.Body.StateValue()
	if !ok {
		return nil, &resolveError{reason: "update without body state"}
	}
	u := updateOp{id: existing.ID, body: body}

	switch existing.Kind {
	case entity.KindShip:
		if p.TimeToLive != nil {
			return nil, &resolveError{reason: "time_to_live update for a ship"}
		}
		if p.Weapon != nil {
			st, ok := p.Weapon.StateValue()
			if !ok {
				return nil, &resolveError{reason: "weapon update without state"}
			}
			u.weapon = &st
		}
		if p.Controller != nil {
			st, ok := p.Controller.StateValue()
			if !ok {
				return nil, &resolveError{reason: "controller update without state"}
			}
			u.controller = &st
		}
	case entity.KindPellet:
		if p.HasShipFields() {
			return nil, &resolveError{reason: "ship fields in pellet update"}
		}
		u.timeToLive = p.TimeToLive
	default:
		if p.HasShipFields() || p.TimeToLive != nil {
			return nil, &resolveError{reason: "kind fields in planet update"}
		}
	}
	return u, nil
}

func setIf(dst, src *float64) {
	if src != nil {
		*dst = *src
	}
}
