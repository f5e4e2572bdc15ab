// pkg/engine/gate_test.go
package engine

import (
	"testing"

	"github.com/cyohn55/RTS/pkg/config"
	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/event"
	"github.com/cyohn55/RTS/pkg/physics"
)

func testGate() *Gate {
	return NewGate(config.GateConfig{
		Name:        "left",
		Zone:        physics.Vector3{X: -15},
		Radius:      10,
		FrameMillis: 1000,
	})
}

func TestGate_FullLowerRaiseCycle(t *testing.T) {
	gt := testGate()
	if gt.State != GateUp || gt.Frame != 0 {
		t.Fatalf("new gate = %v frame %d, want up at frame 0", gt.State, gt.Frame)
	}

	// Presence starts the lowering animation.
	gt.Advance(true, 1_000)
	if gt.State != GateLowering {
		t.Fatalf("state = %v, want lowering", gt.State)
	}

	// One frame per second down to fully lowered.
	for i, step := range []struct {
		now       int64
		wantFrame int
		wantState GateState
	}{
		{1_999, 0, GateLowering},
		{2_000, 1, GateLowering},
		{3_000, 2, GateLowering},
		{4_000, 3, GateDown},
	} {
		gt.Advance(true, step.now)
		if gt.Frame != step.wantFrame || gt.State != step.wantState {
			t.Fatalf("step %d: frame/state = %d/%v, want %d/%v",
				i, gt.Frame, gt.State, step.wantFrame, step.wantState)
		}
	}

	// Departure raises it back through every frame.
	gt.Advance(false, 5_000)
	if gt.State != GateRaising {
		t.Fatalf("state = %v, want raising after departure", gt.State)
	}
	gt.Advance(false, 6_000)
	gt.Advance(false, 7_000)
	gt.Advance(false, 8_000)
	if gt.State != GateUp || gt.Frame != 0 {
		t.Errorf("state/frame = %v/%d, want fully raised", gt.State, gt.Frame)
	}
}

func TestGate_ReleaseMidLowerReverses(t *testing.T) {
	gt := testGate()
	gt.Advance(true, 1_000)
	gt.Advance(true, 2_000) // frame 1

	gt.Advance(false, 2_500)
	if gt.State != GateRaising || gt.Frame != 1 {
		t.Fatalf("state/frame = %v/%d, want raising from frame 1", gt.State, gt.Frame)
	}

	// Re-entry mid-raise flips it back down without snapping frames.
	gt.Advance(true, 2_600)
	if gt.State != GateLowering || gt.Frame != 1 {
		t.Errorf("state/frame = %v/%d, want lowering from frame 1", gt.State, gt.Frame)
	}
}

func TestUpdateGates_OnlyLocalRoyalsTrigger(t *testing.T) {
	g := newTestGame(t)
	zone := g.Gates[0].Zone

	// An enemy queen and a local basic unit in the zone: no trigger.
	addUnit(g, 1, entity.ArchetypeQueen, zone)
	addUnit(g, 0, entity.ArchetypeUnit, zone.Add(physics.Vector3{X: 3}))
	g.updateGates(1_000)
	if g.Gates[0].State != GateUp {
		t.Fatal("gate triggered by a non-royal or enemy unit")
	}

	// A local king steps in: the gate starts lowering.
	king := addUnit(g, 0, entity.ArchetypeKing, zone.Add(physics.Vector3{Z: 5}))
	g.updateGates(2_000)
	if g.Gates[0].State != GateLowering {
		t.Fatal("gate did not trigger for a local king in the zone")
	}

	// A neighboring gate out of range stays untouched.
	if g.Gates[1].State != GateUp {
		t.Error("far gate reacted to a royal near the other gate")
	}

	// The king dies: the gate raises.
	king.HP = 0
	g.rebuildGrid()
	g.updateGates(3_000)
	if g.Gates[0].State != GateRaising {
		t.Error("gate did not raise after the royal presence ended")
	}
}

func TestUpdateGates_PublishesStateChanges(t *testing.T) {
	g := newTestGame(t)
	var changes []string
	g.EventBus.Subscribe(event.GateStateChanged, func(e event.Event) {
		ge := e.(*event.GateEvent)
		changes = append(changes, ge.Gate+":"+ge.State)
	})

	addUnit(g, 0, entity.ArchetypeQueen, g.Gates[0].Zone)
	g.updateGates(1_000)
	g.updateGates(1_100) // no transition, no event

	if len(changes) != 1 || changes[0] != "left:lowering" {
		t.Errorf("gate events = %v, want one lowering transition", changes)
	}
}
