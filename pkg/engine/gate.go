// pkg/engine/gate.go
package engine

import (
	"github.com/cyohn55/RTS/pkg/config"
	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/event"
	"github.com/cyohn55/RTS/pkg/physics"
)

// GateState is the animation state of one gate
type GateState int

const (
	GateUp GateState = iota
	GateLowering
	GateDown
	GateRaising
)

// String returns a human-readable gate state name
func (s GateState) String() string {
	switch s {
	case GateUp:
		return "up"
	case GateLowering:
		return "lowering"
	case GateDown:
		return "down"
	case GateRaising:
		return "raising"
	default:
		return "unknown"
	}
}

// Gate animation frames. Frame 0 is fully up, the last frame fully down;
// intermediate frames render the gate partway.
const (
	gateFrameFullyUp   = 0
	gateFrameFullyDown = 3
)

// Gate is a proximity-triggered piece of presentation state. It never blocks
// movement or affects combat; it lowers while a royal unit of the local
// player stands in its zone and raises once the zone empties. Transitions in
// either direction pass through every intermediate frame, so a gate released
// mid-lower raises back from wherever it was.
type Gate struct {
	Name        string
	Zone        physics.Vector3
	Radius      float64
	FrameMillis int64

	State          GateState
	Frame          int
	FrameStartedAt int64
}

// NewGate creates a fully raised gate from configuration
func NewGate(cfg config.GateConfig) *Gate {
	return &Gate{
		Name:        cfg.Name,
		Zone:        cfg.Zone,
		Radius:      cfg.Radius,
		FrameMillis: cfg.FrameMillis,
		State:       GateUp,
		Frame:       gateFrameFullyUp,
	}
}

// Advance steps the gate state machine. It reports whether the gate's state
// changed so the caller can publish a notification.
func (gt *Gate) Advance(triggered bool, nowMillis int64) bool {
	prev := gt.State

	switch gt.State {
	case GateUp:
		if triggered {
			gt.State = GateLowering
			gt.FrameStartedAt = nowMillis
		}
	case GateDown:
		if !triggered {
			gt.State = GateRaising
			gt.FrameStartedAt = nowMillis
		}
	case GateLowering:
		if !triggered {
			gt.State = GateRaising
			gt.FrameStartedAt = nowMillis
			break
		}
		if nowMillis-gt.FrameStartedAt >= gt.FrameMillis {
			gt.Frame++
			gt.FrameStartedAt = nowMillis
			if gt.Frame >= gateFrameFullyDown {
				gt.Frame = gateFrameFullyDown
				gt.State = GateDown
			}
		}
	case GateRaising:
		if triggered {
			gt.State = GateLowering
			gt.FrameStartedAt = nowMillis
			break
		}
		if nowMillis-gt.FrameStartedAt >= gt.FrameMillis {
			gt.Frame--
			gt.FrameStartedAt = nowMillis
			if gt.Frame <= gateFrameFullyUp {
				gt.Frame = gateFrameFullyUp
				gt.State = GateUp
			}
		}
	}

	return gt.State != prev
}

// updateGates advances every gate against the local player's royal presence.
// Only the local player's living Queens and Kings trigger gates.
func (g *Game) updateGates(nowMillis int64) {
	for _, gate := range g.Gates {
		triggered := false
		for _, obj := range g.Grid.QueryRadius(gate.Zone, gate.Radius) {
			u := obj.(*entity.Unit)
			if u.PlayerID != g.LocalPlayerID || !u.IsAlive() {
				continue
			}
			if u.Archetype == entity.ArchetypeQueen || u.Archetype == entity.ArchetypeKing {
				triggered = true
				break
			}
		}
		if gate.Advance(triggered, nowMillis) {
			g.EventBus.Publish(event.NewGateEvent(g, gate.Name, gate.State.String()))
		}
	}
}
