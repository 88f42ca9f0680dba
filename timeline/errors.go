package timeline

import (
	"fmt"

	"github.com/lixenwraith/vi-replay/entity"
)

// InconsistentRecordError reports a record whose payload fits neither a
// create nor an update/delete for the entity's current state
// The record is skipped and reconstruction continues
type InconsistentRecordError struct {
	Tick   int
	Index  int
	ID     entity.ID
	Reason string
}

func (e *InconsistentRecordError) Error() string {
	return fmt.Sprintf("tick %d record %d (id %q): inconsistent record: %s", e.Tick, e.Index, e.ID, e.Reason)
}

// DuplicateIDError reports a create for an ID that is already live
// The original entity is kept
type DuplicateIDError struct {
	Tick  int
	Index int
	ID    entity.ID
	Kind  entity.Kind
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("tick %d record %d: duplicate create for live %s %q, keeping original", e.Tick, e.Index, e.Kind, e.ID)
}
