package timeline

import (
	"maps"
	"slices"

	"github.com/lixenwraith/vi-replay/entity"
)

// Snapshot is the immutable world state at one tick
type Snapshot struct {
	entities map[entity.ID]entity.Entity
	ids      []entity.ID
}

var emptySnapshot = &Snapshot{entities: map[entity.ID]entity.Entity{}}

// capture clones the working table; entities are values so the copy is deep
func capture(table map[entity.ID]entity.Entity) *Snapshot {
	ids := slices.Collect(maps.Keys(table))
	slices.SortFunc(ids, entity.CompareIDs)
	return &Snapshot{
		entities: maps.Clone(table),
		ids:      ids,
	}
}

// Len returns the number of live entities
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// Get returns the entity with the given ID
func (s *Snapshot) Get(id entity.ID) (entity.Entity, bool) {
	if s == nil {
		return entity.Entity{}, false
	}
	e, ok := s.entities[id]
	return e, ok
}

// IDs returns live IDs in display order
func (s *Snapshot) IDs() []entity.ID {
	if s == nil {
		return nil
	}
	return slices.Clone(s.ids)
}

// Entities returns copies of all live entities in display order
func (s *Snapshot) Entities() []entity.Entity {
	if s == nil {
		return nil
	}
	out := make([]entity.Entity, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.entities[id])
	}
	return out
}

// Range calls fn for each entity in display order until fn returns false
func (s *Snapshot) Range(fn func(entity.Entity) bool) {
	if s == nil {
		return
	}
	for _, id := range s.ids {
		if !fn(s.entities[id]) {
			return
		}
	}
}

// Timeline is the ordered sequence of per-tick snapshots
type Timeline struct {
	dimensions entity.Vec2
	snapshots  []*Snapshot
}

// Dimensions returns the playing-field extent from the log header
func (t *Timeline) Dimensions() entity.Vec2 {
	if t == nil {
		return entity.Vec2{}
	}
	return t.dimensions
}

// Len returns the number of ticks
func (t *Timeline) Len() int {
	if t == nil {
		return 0
	}
	return len(t.snapshots)
}

// At returns the snapshot for tick i; i must be in [0, Len())
func (t *Timeline) At(i int) *Snapshot {
	return t.snapshots[i]
}
