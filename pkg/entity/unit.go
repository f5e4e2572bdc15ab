// pkg/entity/unit.go
package entity

import (
	"sync/atomic"

	"github.com/cyohn55/RTS/pkg/physics"
)

// ID is a unique identifier for a unit. Zero means "no unit"; behavioral
// fields store IDs rather than pointers and are resolved through the game's
// lookup table each tick.
type ID uint64

var nextID uint64

// GenerateID generates a unique unit ID
func GenerateID() ID {
	return ID(atomic.AddUint64(&nextID, 1))
}

// Archetype determines a unit's role and how its stats derive from the
// species base stats.
type Archetype int

const (
	ArchetypeBase Archetype = iota
	ArchetypeQueen
	ArchetypeKing
	ArchetypeUnit
)

// String returns the archetype name
func (a Archetype) String() string {
	switch a {
	case ArchetypeBase:
		return "base"
	case ArchetypeQueen:
		return "queen"
	case ArchetypeKing:
		return "king"
	default:
		return "unit"
	}
}

// BehaviorState is the high-level state of a unit's behavior machine
type BehaviorState int

const (
	StateIdle BehaviorState = iota
	StateMovingToOrder
	StatePursuingEnemy
)

// String returns the behavior state name
func (s BehaviorState) String() string {
	switch s {
	case StateMovingToOrder:
		return "moving_to_order"
	case StatePursuingEnemy:
		return "pursuing_enemy"
	default:
		return "idle"
	}
}

// Patrol is a start/end position pair exclusive to Queens. The unit walks
// between the endpoints, toggling on arrival.
type Patrol struct {
	Start physics.Vector3
	End   physics.Vector3
	ToEnd bool
}

// Target returns the endpoint the patrol is currently approaching
func (p *Patrol) Target() physics.Vector3 {
	if p.ToEnd {
		return p.End
	}
	return p.Start
}

// Toggle flips the patrol toward the other endpoint
func (p *Patrol) Toggle() {
	p.ToEnd = !p.ToEnd
}

// Unit is the only mutable simulation entity. All timestamps are wall-clock
// milliseconds supplied by the tick driver.
type Unit struct {
	ID        ID
	PlayerID  int
	Species   string
	Archetype Archetype
	Movement  MovementClass

	Position physics.Vector3
	Facing   float64

	HP             int
	MaxHP          int
	Damage         int
	MoveSpeed      float64 // world units per second
	CooldownMillis int64
	LastAttackAt   int64

	State       BehaviorState
	OrderTarget *physics.Vector3
	Patrol      *Patrol

	// Combat bookkeeping. Attackers holds the IDs of units currently
	// attacking this one; PriorityAttackerID is the one it focuses on.
	LastCombatTargetID ID
	LastCombatAt       int64
	PriorityAttackerID ID
	Attackers          map[ID]bool

	// Separation bookkeeping
	CollisionCount  int
	MovePausedUntil int64
	BlockedSince    int64

	// Movement-linked animation phase, cyclic in [0, 1)
	AnimPhase float64

	// Queen production. SpawnCount cycles the spawn placement angle.
	LastSpawnAt int64
	SpawnCount  int

	// Regeneration
	LastRegenAt int64

	// AI targeting: cached focus target plus a per-unit phase offset so
	// throttled AI units don't all rethink on the same tick.
	FocusTargetID ID
	ThinkOffset   int
}

// archetypeStats derives concrete stats from species base stats. Bases are
// immobile structures with a large HP pool; Queens and Kings are tougher
// variants of the species unit.
func archetypeStats(species SpeciesStats, archetype Archetype) (hp, damage int, speed float64) {
	switch archetype {
	case ArchetypeBase:
		return species.MaxHP * 10, 0, 0
	case ArchetypeQueen:
		return species.MaxHP * 5, species.Damage, species.Speed * 0.5
	case ArchetypeKing:
		return species.MaxHP * 3, species.Damage * 2, species.Speed * 0.8
	default:
		return species.MaxHP, species.Damage, species.Speed
	}
}

// NewUnit creates a unit of the given archetype from species base stats
func NewUnit(id ID, playerID int, species SpeciesStats, archetype Archetype, position physics.Vector3, cooldownMillis, now int64) *Unit {
	hp, damage, speed := archetypeStats(species, archetype)
	return &Unit{
		ID:             id,
		PlayerID:       playerID,
		Species:        species.Key,
		Archetype:      archetype,
		Movement:       species.Movement,
		Position:       position,
		HP:             hp,
		MaxHP:          hp,
		Damage:         damage,
		MoveSpeed:      speed,
		CooldownMillis: cooldownMillis,
		State:          StateIdle,
		Attackers:      make(map[ID]bool),
		LastRegenAt:    now,
		LastSpawnAt:    now,
	}
}

// IsAlive reports whether the unit is still in play
func (u *Unit) IsAlive() bool {
	return u.HP > 0
}

// CanMove reports whether the unit may ever move. Bases never move and
// never acquire behavioral state.
func (u *Unit) CanMove() bool {
	return u.Archetype != ArchetypeBase
}

// TakeDamage applies damage, clamping HP to [0, MaxHP], and reports whether
// the unit was destroyed by this hit.
func (u *Unit) TakeDamage(amount int) bool {
	u.HP -= amount
	if u.HP < 0 {
		u.HP = 0
	}
	return u.HP == 0
}

// Heal restores HP, clamped to MaxHP
func (u *Unit) Heal(amount int) {
	u.HP += amount
	if u.HP > u.MaxHP {
		u.HP = u.MaxHP
	}
}

// SetOrder activates a move order. Exactly one order or one patrol may be
// active at a time, so any patrol is cleared, along with combat focus and
// block-detection state.
func (u *Unit) SetOrder(target physics.Vector3) {
	t := target
	u.OrderTarget = &t
	u.Patrol = nil
	u.State = StateMovingToOrder
	u.PriorityAttackerID = 0
	u.FocusTargetID = 0
	u.CollisionCount = 0
	u.BlockedSince = 0
}

// ClearOrder drops the active order and returns the unit to idle
func (u *Unit) ClearOrder() {
	u.OrderTarget = nil
	u.State = StateIdle
	u.CollisionCount = 0
	u.BlockedSince = 0
}

// SetPatrol activates a patrol route, clearing any active order
func (u *Unit) SetPatrol(start, end physics.Vector3) {
	u.Patrol = &Patrol{Start: start, End: end, ToEnd: true}
	u.OrderTarget = nil
	u.State = StateIdle
	u.CollisionCount = 0
	u.BlockedSince = 0
}
