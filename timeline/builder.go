package timeline

import (
	"github.com/lixenwraith/vi-replay/entity"
	"github.com/lixenwraith/vi-replay/replaylog"
)

// Result is the output of reconstructing one log
type Result struct {
	Timeline    *Timeline
	Colors      *Colors
	Diagnostics []error
}

// Option configures a Builder
type Option func(*Builder)

// WithPalette replaces the ship color cycle
func WithPalette(p Palette) Option {
	return func(b *Builder) {
		b.colors.palette = p
	}
}

// WithReporter receives every per-record diagnostic as it is produced
func WithReporter(fn func(error)) Option {
	return func(b *Builder) {
		b.report = fn
	}
}

// Builder folds tick batches into snapshots one tick at a time
type Builder struct {
	table       map[entity.ID]entity.Entity
	timeline    *Timeline
	colors      *Colors
	diagnostics []error
	report      func(error)
	last        *Snapshot
}

// NewBuilder starts from an empty object table and color table
func NewBuilder(dims entity.Vec2, opts ...Option) *Builder {
	b := &Builder{
		table:    make(map[entity.ID]entity.Entity),
		timeline: &Timeline{dimensions: dims},
		colors:   newColors(DefaultPalette),
		last:     emptySnapshot,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Apply folds one tick batch and appends its snapshot to the timeline
func (b *Builder) Apply(batch replaylog.TickBatch) *Snapshot {
	tick := len(b.timeline.snapshots)
	dirty := false

	for i, rec := range batch.Records {
		o, rerr := resolve(b.table, rec)
		if rerr != nil {
			b.diagnose(tick, i, rec.ID, rerr)
			continue
		}

		o.apply(b.table)
		dirty = true

		if c, ok := o.(createOp); ok && c.entity.Kind == entity.KindShip {
			b.colors.assign(c.entity.ID)
		}
	}

	// Unchanged ticks share the previous snapshot; snapshots are never mutated
	if dirty {
		b.last = capture(b.table)
	}
	b.timeline.snapshots = append(b.timeline.snapshots, b.last)
	return b.last
}

// Result returns everything built so far
func (b *Builder) Result() *Result {
	return &Result{
		Timeline:    b.timeline,
		Colors:      b.colors,
		Diagnostics: b.diagnostics,
	}
}

func (b *Builder) diagnose(tick, index int, id entity.ID, rerr *resolveError) {
	var err error
	if rerr.duplicate {
		err = &DuplicateIDError{Tick: tick, Index: index, ID: id, Kind: rerr.kind}
	} else {
		err = &InconsistentRecordError{Tick: tick, Index: index, ID: id, Reason: rerr.reason}
	}

	b.diagnostics = append(b.diagnostics, err)
	if b.report != nil {
		b.report(err)
	}
}

// Reconstruct materializes one snapshot per tick batch of the log
func Reconstruct(log *replaylog.Log, opts ...Option) *Result {
	b := NewBuilder(log.Header.Dimensions, opts...)
	for _, batch := range log.Ticks {
		b.Apply(batch)
	}
	return b.Result()
}
