package timeline

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-replay/entity"
	"github.com/lixenwraith/vi-replay/replaylog"
)

const header = `{"type":"header","data":{"dimensions":{"x":100,"y":100}}}`

const planetCreate = `{"body":{"radius":5,"state":{"position":{"x":10,"y":10},"orientation":0}}}`

func shipCreate(name string) string {
	return `{"body":{"radius":2,"mass":1,"state":{"position":{"x":1,"y":1},"orientation":0}},` +
		`"weapon":{"max_reload":1,"speed":4,"time_to_live":3,"state":{"fired":false,"reload":0,"temperature":0}},` +
		`"controller":{"name":"` + name + `","version":1,"state":{"fire":false,"rotate":0,"thrust":0}},` +
		`"max_thrust":2,"max_rotate":3}`
}

const pelletCreate = `{"body":{"radius":0.1,"state":{"position":{"x":5,"y":5},"orientation":0}},"time_to_live":2}`

func decode(t *testing.T, lines ...string) *replaylog.Log {
	t.Helper()
	log, err := replaylog.Decode(strings.NewReader(strings.Join(append([]string{header}, lines...), "\n")))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return log
}

func TestReconstructPlanetCreateDelete(t *testing.T) {
	log := decode(t,
		`{"data":[{"id":1,"data":`+planetCreate+`}]}`,
		`{"data":[{"id":1,"data":{}}]}`,
	)

	res := Reconstruct(log)
	if res.Timeline.Len() != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", res.Timeline.Len())
	}
	if res.Timeline.Dimensions() != (entity.Vec2{X: 100, Y: 100}) {
		t.Errorf("Expected dimensions 100x100, got %+v", res.Timeline.Dimensions())
	}

	first := res.Timeline.At(0)
	if first.Len() != 1 {
		t.Fatalf("Expected 1 entity at tick 0, got %d", first.Len())
	}
	planet, ok := first.Get("1")
	if !ok {
		t.Fatal("Expected entity 1 at tick 0")
	}
	if planet.Kind != entity.KindPlanet {
		t.Errorf("Expected planet, got %s", planet.Kind)
	}
	if planet.Body.Radius != 5 || planet.Position() != (entity.Vec2{X: 10, Y: 10}) {
		t.Errorf("Expected radius 5 at (10,10), got radius %v at %+v", planet.Body.Radius, planet.Position())
	}

	if res.Timeline.At(1).Len() != 0 {
		t.Errorf("Expected empty snapshot after deletion, got %d entities", res.Timeline.At(1).Len())
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("Expected no diagnostics, got %v", res.Diagnostics)
	}
}

func TestReconstructShipColors(t *testing.T) {
	log := decode(t,
		`{"data":[{"id":2,"data":`+shipCreate("a")+`},{"id":1,"data":`+planetCreate+`}]}`,
		`{"data":[{"id":3,"data":`+shipCreate("b")+`}]}`,
		`{"data":[{"id":4,"data":`+shipCreate("c")+`},{"id":5,"data":`+shipCreate("d")+`}]}`,
	)

	res := Reconstruct(log)

	tests := []struct {
		id   entity.ID
		want tcell.Color
	}{
		{"2", tcell.ColorRed},
		{"3", tcell.ColorGreen},
		{"4", tcell.ColorBlue},
		{"5", tcell.ColorRed},
	}
	for _, tt := range tests {
		got, ok := res.Colors.Lookup(tt.id)
		if !ok {
			t.Errorf("Expected color for ship %s", tt.id)
			continue
		}
		if got != tt.want {
			t.Errorf("Ship %s: expected color %v, got %v", tt.id, tt.want, got)
		}
	}

	if _, ok := res.Colors.Lookup("1"); ok {
		t.Error("Expected planets to receive no color")
	}
	if res.Colors.Len() != 4 {
		t.Errorf("Expected 4 assigned colors, got %d", res.Colors.Len())
	}
	if !reflect.DeepEqual(res.Colors.Order(), []entity.ID{"2", "3", "4", "5"}) {
		t.Errorf("Unexpected assignment order %v", res.Colors.Order())
	}
}

func TestReconstructColorReusedOnRecreate(t *testing.T) {
	log := decode(t,
		`{"data":[{"id":2,"data":`+shipCreate("a")+`}]}`,
		`{"data":[{"id":2,"data":{}}]}`,
		`{"data":[{"id":3,"data":`+shipCreate("b")+`}]}`,
		`{"data":[{"id":2,"data":`+shipCreate("a")+`}]}`,
	)

	res := Reconstruct(log)

	c2, _ := res.Colors.Lookup("2")
	c3, _ := res.Colors.Lookup("3")
	if c2 != tcell.ColorRed {
		t.Errorf("Expected recreated ship to keep red, got %v", c2)
	}
	if c3 != tcell.ColorGreen {
		t.Errorf("Expected second ship to get green, got %v", c3)
	}
	if res.Colors.Len() != 2 {
		t.Errorf("Expected recreation not to consume a palette slot, got %d assignments", res.Colors.Len())
	}
	if _, ok := res.Timeline.At(3).Get("2"); !ok {
		t.Error("Expected ship 2 live again at tick 3")
	}
}

func TestBuilderSnapshotsAreIndependent(t *testing.T) {
	log := decode(t,
		`{"data":[{"id":1,"data":`+planetCreate+`},{"id":2,"data":`+shipCreate("a")+`}]}`,
		`{"data":[{"id":2,"data":{"body":{"position":{"x":50,"y":60},"orientation":1}}},{"id":1,"data":{}}]}`,
	)

	b := NewBuilder(log.Header.Dimensions)
	snap := b.Apply(log.Ticks[0])
	before := snap.Entities()

	b.Apply(log.Ticks[1])

	if !reflect.DeepEqual(before, snap.Entities()) {
		t.Errorf("Snapshot for tick 0 changed after applying tick 1:\nbefore %+v\nafter  %+v", before, snap.Entities())
	}
	if b.Result().Timeline.At(0) != snap {
		t.Error("Expected timeline to hold the captured tick 0 snapshot")
	}

	ship, _ := b.Result().Timeline.At(1).Get("2")
	if ship.Position() != (entity.Vec2{X: 50, Y: 60}) {
		t.Errorf("Expected ship moved to (50,60) at tick 1, got %+v", ship.Position())
	}
}

func TestReconstructSharesUnchangedSnapshots(t *testing.T) {
	log := decode(t,
		`{"data":[{"id":1,"data":`+planetCreate+`}]}`,
		`{"data":[]}`,
		`{"data":[{"id":9,"data":{}}]}`,
	)

	res := Reconstruct(log)
	if res.Timeline.Len() != 3 {
		t.Fatalf("Expected 3 snapshots, got %d", res.Timeline.Len())
	}
	if res.Timeline.At(0) != res.Timeline.At(1) || res.Timeline.At(1) != res.Timeline.At(2) {
		t.Error("Expected ticks without effective changes to share the snapshot")
	}
}

func TestReconstructEmptyFirstTick(t *testing.T) {
	log := decode(t, `{"data":[]}`)

	res := Reconstruct(log)
	if res.Timeline.Len() != 1 || res.Timeline.At(0).Len() != 0 {
		t.Errorf("Expected one empty snapshot, got len %d", res.Timeline.Len())
	}
}

func TestReconstructUpdates(t *testing.T) {
	log := decode(t,
		`{"data":[{"id":"s","data":`+shipCreate("bot")+`},{"id":"p","data":`+pelletCreate+`}]}`,
		`{"data":[`+
			`{"id":"s","data":{"body":{"position":{"x":7,"y":8},"velocity":{"x":1,"y":0},"orientation":0.5},`+
			`"weapon":{"fired":true,"reload":0.9,"temperature":1.5},"controller":{"fire":true,"rotate":-1,"thrust":1}}},`+
			`{"id":"p","data":{"body":{"position":{"x":6,"y":5},"orientation":0},"time_to_live":1.5}}]}`,
		`{"data":[{"id":"s","data":{"body":{"position":{"x":9,"y":9}}}}]}`,
	)

	res := Reconstruct(log)
	if len(res.Diagnostics) != 0 {
		t.Fatalf("Expected no diagnostics, got %v", res.Diagnostics)
	}

	ship, _ := res.Timeline.At(1).Get("s")
	if ship.Kind != entity.KindShip {
		t.Fatalf("Expected ship kind, got %s", ship.Kind)
	}
	want := entity.BodyState{Position: entity.Vec2{X: 7, Y: 8}, Velocity: entity.Vec2{X: 1}, Orientation: 0.5}
	if ship.Body.State != want {
		t.Errorf("Expected body state %+v, got %+v", want, ship.Body.State)
	}
	if ship.Body.Radius != 2 || ship.Body.Mass != 1 {
		t.Errorf("Expected radius and mass retained, got %v/%v", ship.Body.Radius, ship.Body.Mass)
	}
	if !ship.Weapon.State.Fired || ship.Weapon.State.Temperature != 1.5 {
		t.Errorf("Expected weapon state replaced, got %+v", ship.Weapon.State)
	}
	if ship.Weapon.Speed != 4 || ship.Weapon.TimeToLive != 3 {
		t.Errorf("Expected weapon configuration retained, got %+v", ship.Weapon)
	}
	if ship.Controller.State.Rotate != -1 || ship.Controller.Name != "bot" {
		t.Errorf("Expected controller state replaced and name kept, got %+v", ship.Controller)
	}
	if ship.Name != "bot" || ship.MaxThrust != 2 || ship.MaxRotate != 3 {
		t.Errorf("Expected ship name and limits from creation, got %q %v %v", ship.Name, ship.MaxThrust, ship.MaxRotate)
	}

	pellet, _ := res.Timeline.At(1).Get("p")
	if pellet.Kind != entity.KindPellet || pellet.TimeToLive != 1.5 {
		t.Errorf("Expected pellet with ttl 1.5, got %s ttl %v", pellet.Kind, pellet.TimeToLive)
	}

	// Body-only ship update replaces body wholesale and keeps the previous sub-states
	later, _ := res.Timeline.At(2).Get("s")
	if later.Body.State != (entity.BodyState{Position: entity.Vec2{X: 9, Y: 9}}) {
		t.Errorf("Expected body state replaced wholesale, got %+v", later.Body.State)
	}
	if !later.Weapon.State.Fired || later.Controller.State.Thrust != 1 {
		t.Errorf("Expected weapon and controller states retained, got %+v %+v", later.Weapon.State, later.Controller.State)
	}
}

func TestReconstructDuplicateCreate(t *testing.T) {
	log := decode(t,
		`{"data":[{"id":1,"data":`+planetCreate+`}]}`,
		`{"data":[{"id":1,"data":`+shipCreate("impostor")+`}]}`,
	)

	var reported []error
	res := Reconstruct(log, WithReporter(func(err error) { reported = append(reported, err) }))

	if len(res.Diagnostics) != 1 || len(reported) != 1 {
		t.Fatalf("Expected one diagnostic, got %v", res.Diagnostics)
	}
	var dup *DuplicateIDError
	if !errors.As(res.Diagnostics[0], &dup) {
		t.Fatalf("Expected DuplicateIDError, got %T", res.Diagnostics[0])
	}
	if dup.ID != "1" || dup.Tick != 1 || dup.Kind != entity.KindPlanet {
		t.Errorf("Unexpected duplicate details %+v", dup)
	}

	kept, _ := res.Timeline.At(1).Get("1")
	if kept.Kind != entity.KindPlanet {
		t.Errorf("Expected original planet kept, got %s", kept.Kind)
	}
	if res.Colors.Len() != 0 {
		t.Error("Expected discarded duplicate not to receive a color")
	}
}

func TestReconstructInconsistentRecords(t *testing.T) {
	tests := []struct {
		name   string
		record string
	}{
		{"delete unknown", `{"id":42,"data":{}}`},
		{"update unknown", `{"id":42,"data":{"body":{"position":{"x":1,"y":1}}}}`},
		{"missing data", `{"id":42}`},
		{"missing id", `{"data":` + planetCreate + `}`},
		{"unknown keys", `{"id":1,"data":{"colour":"red"}}`},
		{"update without body", `{"id":1,"data":{"time_to_live":3}}`},
		{"ship fields on planet", `{"id":1,"data":{"body":{"position":{"x":1,"y":1}},"controller":{"fire":true}}}`},
		{"create without radius", `{"id":43,"data":{"body":{"state":{"position":{"x":1,"y":1},"orientation":0}}}}`},
		{"ambiguous kind", `{"id":43,"data":{"body":{"radius":1,"state":{"position":{"x":1,"y":1},"orientation":0}},"controller":{"name":"x"},"time_to_live":1}}`},
		{"weapon without controller", `{"id":43,"data":{"body":{"radius":1,"state":{"position":{"x":1,"y":1},"orientation":0}},"weapon":{"speed":1}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := decode(t,
				`{"data":[{"id":1,"data":`+planetCreate+`}]}`,
				`{"data":[`+tt.record+`]}`,
			)

			res := Reconstruct(log)
			if res.Timeline.Len() != 2 {
				t.Fatalf("Expected reconstruction to continue through 2 ticks, got %d", res.Timeline.Len())
			}
			if len(res.Diagnostics) != 1 {
				t.Fatalf("Expected one diagnostic, got %v", res.Diagnostics)
			}
			var inc *InconsistentRecordError
			if !errors.As(res.Diagnostics[0], &inc) {
				t.Fatalf("Expected InconsistentRecordError, got %T: %v", res.Diagnostics[0], res.Diagnostics[0])
			}
			if inc.Tick != 1 || inc.Index != 0 {
				t.Errorf("Expected tick 1 index 0, got tick %d index %d", inc.Tick, inc.Index)
			}

			// Skipped record leaves the world as it was
			if !reflect.DeepEqual(res.Timeline.At(0).Entities(), res.Timeline.At(1).Entities()) {
				t.Error("Expected inconsistent record to be a no-op")
			}
		})
	}
}

func TestReconstructSkipsBadlyShapedRecords(t *testing.T) {
	tests := []struct {
		name   string
		record string
	}{
		{"null data", `{"id":7,"data":null}`},
		{"numeric data", `{"id":7,"data":3}`},
		{"array data", `{"id":7,"data":[]}`},
		{"null id", `{"id":null,"data":{}}`},
		{"object id", `{"id":{},"data":{}}`},
		{"bool id", `{"id":false,"data":{}}`},
		{"not an object", `"planet"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := decode(t,
				`{"data":[{"id":1,"data":`+planetCreate+`}]}`,
				`{"data":[`+tt.record+`,{"id":1,"data":{"body":{"position":{"x":20,"y":20}}}}]}`,
				`{"data":[]}`,
			)

			res := Reconstruct(log)
			if res.Timeline.Len() != 3 {
				t.Fatalf("Expected 3 snapshots, got %d", res.Timeline.Len())
			}
			if len(res.Diagnostics) != 1 {
				t.Fatalf("Expected one diagnostic, got %v", res.Diagnostics)
			}
			var inc *InconsistentRecordError
			if !errors.As(res.Diagnostics[0], &inc) {
				t.Fatalf("Expected InconsistentRecordError, got %T: %v", res.Diagnostics[0], res.Diagnostics[0])
			}
			if inc.Tick != 1 || inc.Index != 0 {
				t.Errorf("Expected tick 1 index 0, got tick %d index %d", inc.Tick, inc.Index)
			}

			// Valid record beside the bad one still applies
			p, _ := res.Timeline.At(1).Get("1")
			if p.Body.State.Position.X != 20 {
				t.Errorf("Expected neighbouring update applied, got x=%v", p.Body.State.Position.X)
			}
		})
	}
}

func TestReconstructShipUpdateWithoutState(t *testing.T) {
	tests := []struct {
		name  string
		patch string
	}{
		{"weapon config only", `"weapon":{"speed":3}`},
		{"controller config only", `"controller":{"name":"renamed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := decode(t,
				`{"data":[{"id":1,"data":`+shipCreate("a")+`}]}`,
				`{"data":[{"id":1,"data":{"body":{"position":{"x":5,"y":5}},`+tt.patch+`}}]}`,
			)

			res := Reconstruct(log)
			if len(res.Diagnostics) != 1 {
				t.Fatalf("Expected one diagnostic, got %v", res.Diagnostics)
			}
			var inc *InconsistentRecordError
			if !errors.As(res.Diagnostics[0], &inc) {
				t.Fatalf("Expected InconsistentRecordError, got %T", res.Diagnostics[0])
			}
			if !reflect.DeepEqual(res.Timeline.At(0).Entities(), res.Timeline.At(1).Entities()) {
				t.Error("Expected rejected ship update to be a no-op")
			}
		})
	}
}

func TestSnapshotOrderIsDeterministic(t *testing.T) {
	log := decode(t, `{"data":[{"id":"1","data":`+planetCreate+`},{"id":"01","data":`+planetCreate+`},{"id":"+1","data":`+planetCreate+`}]}`)

	want := []entity.ID{"+1", "01", "1"}
	for i := 0; i < 50; i++ {
		got := Reconstruct(log).Timeline.At(0).IDs()
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

func TestReconstructWithPalette(t *testing.T) {
	log := decode(t, `{"data":[{"id":1,"data":`+shipCreate("a")+`}]}`)

	palette := Palette{tcell.ColorYellow, tcell.ColorPurple, tcell.ColorTeal}
	res := Reconstruct(log, WithPalette(palette))

	if c, _ := res.Colors.Lookup("1"); c != tcell.ColorYellow {
		t.Errorf("Expected first custom palette color, got %v", c)
	}
}

func TestTimelineLengthMatchesTicks(t *testing.T) {
	lines := []string{
		`{"data":[{"id":1,"data":` + planetCreate + `}]}`,
		`{"data":[{"id":1,"data":` + planetCreate + `}]}`,
		`{"data":[{"id":5,"data":{}}]}`,
		`{"data":[]}`,
		`{"data":[{"id":1,"data":{}}]}`,
	}
	for n := 0; n <= len(lines); n++ {
		res := Reconstruct(decode(t, lines[:n]...))
		if res.Timeline.Len() != n {
			t.Errorf("Expected %d snapshots, got %d", n, res.Timeline.Len())
		}
	}
}

func TestSnapshotAccessors(t *testing.T) {
	log := decode(t, `{"data":[{"id":10,"data":`+planetCreate+`},{"id":2,"data":`+pelletCreate+`},{"id":"x","data":`+planetCreate+`}]}`)
	snap := Reconstruct(log).Timeline.At(0)

	if !reflect.DeepEqual(snap.IDs(), []entity.ID{"2", "10", "x"}) {
		t.Errorf("Unexpected ID order %v", snap.IDs())
	}

	ids := snap.IDs()
	ids[0] = "mutated"
	if snap.IDs()[0] != "2" {
		t.Error("Expected IDs to return a copy")
	}

	var empty *Snapshot
	if empty.IDs() != nil || empty.Entities() != nil || empty.Len() != 0 {
		t.Error("Expected nil snapshot accessors to return empty results")
	}

	var visited int
	snap.Range(func(entity.Entity) bool {
		visited++
		return visited < 2
	})
	if visited != 2 {
		t.Errorf("Expected Range to stop after 2 entities, visited %d", visited)
	}
}
