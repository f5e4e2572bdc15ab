// pkg/engine/behavior.go
package engine

import (
	"math"

	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/physics"
)

// decideUnit runs one unit's behavior decision for the tick. Player units
// follow the strict priority order: active order, attack response, autonomous
// engagement, patrol (Queens). AI-owned units use the simpler
// always-aggressive variant; the asymmetry is deliberate gameplay balance.
func (g *Game) decideUnit(u *entity.Unit, deltaSeconds float64, nowMillis int64) {
	if !u.CanMove() {
		return
	}

	if g.playerIsAI(u.PlayerID) {
		g.decideAIUnit(u, deltaSeconds, nowMillis)
		return
	}

	// 1. An active order has highest priority and is never interrupted by
	// combat.
	if u.OrderTarget != nil {
		g.executeOrder(u, deltaSeconds, nowMillis)
		return
	}

	// 2. Attack response: focus a priority attacker until it dies or a new
	// order arrives.
	if len(u.Attackers) > 0 {
		if attacker := g.selectPriorityAttacker(u); attacker != nil {
			u.State = entity.StatePursuingEnemy
			g.pursueAndFight(u, attacker, deltaSeconds, nowMillis)
			return
		}
	}

	// 3. Autonomous engagement: recent combat target for continuity, else
	// nearest enemy in detection range.
	if target := g.autonomousTarget(u, nowMillis); target != nil {
		u.State = entity.StatePursuingEnemy
		g.pursueAndFight(u, target, deltaSeconds, nowMillis)
		return
	}

	if u.Archetype == entity.ArchetypeQueen && u.Patrol != nil {
		g.patrolStep(u, deltaSeconds, nowMillis)
		return
	}

	u.State = entity.StateIdle
}

// executeOrder moves the unit straight-line toward its order target,
// fighting opportunistically without abandoning the order. The order clears
// on arrival or after the block timeout.
func (g *Game) executeOrder(u *entity.Unit, deltaSeconds float64, nowMillis int64) {
	target := *u.OrderTarget

	if u.Position.Distance(target) <= g.Config.Behavior.OrderArriveRadius {
		u.ClearOrder()
		return
	}

	if u.BlockedSince != 0 && nowMillis-u.BlockedSince >= g.Config.Separation.BlockAbandonMillis {
		u.ClearOrder()
		return
	}

	if enemy := g.findClosestEnemy(u, g.Config.Behavior.EngagementRadius); enemy != nil {
		g.tryAttack(u, enemy, nowMillis)
	}

	u.State = entity.StateMovingToOrder
	g.moveUnit(u, target, deltaSeconds, nowMillis)
}

// selectPriorityAttacker keeps the existing priority attacker while it is
// still attacking, otherwise picks the nearest registered attacker. Stale
// entries resolve to nil and are skipped.
func (g *Game) selectPriorityAttacker(u *entity.Unit) *entity.Unit {
	if current := g.unitByID(u.PriorityAttackerID); current != nil && u.Attackers[current.ID] {
		return current
	}
	u.PriorityAttackerID = 0

	var nearest *entity.Unit
	best := math.MaxFloat64
	for id := range u.Attackers {
		attacker := g.unitByID(id)
		if attacker == nil {
			continue
		}
		d := u.Position.DistanceSq(attacker.Position)
		if d < best {
			best = d
			nearest = attacker
		}
	}
	if nearest != nil {
		u.PriorityAttackerID = nearest.ID
	}
	return nearest
}

// autonomousTarget prefers re-engaging a recent combat target, else acquires
// the nearest enemy within detection range.
func (g *Game) autonomousTarget(u *entity.Unit, nowMillis int64) *entity.Unit {
	b := g.Config.Behavior
	if last := g.unitByID(u.LastCombatTargetID); last != nil &&
		nowMillis-u.LastCombatAt <= b.ReengageWindowMillis &&
		u.Position.Distance(last.Position) <= b.ReengageRadius {
		return last
	}
	return g.findClosestEnemy(u, b.DetectionRadius)
}

// decideAIUnit is the always-aggressive AI variant: keep fighting the cached
// focus target while it lives and stays in range; rethink the nearest enemy
// only on this unit's think tick (every other tick, phase-offset per unit)
// unless currently engaged.
func (g *Game) decideAIUnit(u *entity.Unit, deltaSeconds float64, nowMillis int64) {
	b := g.Config.Behavior
	rangeSq := g.Config.Combat.AttackRange * g.Config.Combat.AttackRange

	focus := g.unitByID(u.FocusTargetID)
	if focus != nil && u.Position.Distance(focus.Position) > b.AIFocusRange {
		focus = nil
	}
	if focus == nil {
		u.FocusTargetID = 0
	}

	engaged := focus != nil && u.Position.DistanceSq(focus.Position) <= rangeSq
	thinkTick := (g.CurrentTick+uint64(u.ThinkOffset))%2 == 0

	if !engaged && thinkTick {
		if target := g.findClosestEnemy(u, b.AIFocusRange); target != nil {
			focus = target
			u.FocusTargetID = target.ID
		}
	}

	if focus == nil {
		if u.Archetype == entity.ArchetypeQueen && u.Patrol != nil {
			g.patrolStep(u, deltaSeconds, nowMillis)
			return
		}
		u.State = entity.StateIdle
		return
	}

	u.State = entity.StatePursuingEnemy
	g.pursueAndFight(u, focus, deltaSeconds, nowMillis)
}

// pursueAndFight attacks the target when in range, otherwise closes distance
func (g *Game) pursueAndFight(u, target *entity.Unit, deltaSeconds float64, nowMillis int64) {
	rangeSq := g.Config.Combat.AttackRange * g.Config.Combat.AttackRange
	if u.Position.DistanceSq(target.Position) <= rangeSq {
		u.Facing = target.Position.Sub(u.Position).Heading()
		g.tryAttack(u, target, nowMillis)
		return
	}
	g.moveUnit(u, target.Position, deltaSeconds, nowMillis)
}

// patrolStep walks a Queen between its patrol endpoints
func (g *Game) patrolStep(u *entity.Unit, deltaSeconds float64, nowMillis int64) {
	target := u.Patrol.Target()
	if u.Position.Distance(target) <= g.Config.Behavior.PatrolArriveRadius {
		u.Patrol.Toggle()
		return
	}
	u.State = entity.StateIdle
	g.moveUnit(u, target, deltaSeconds, nowMillis)
}

// moveUnit advances the unit one straight-line step toward target through
// the separation resolver, updating facing and animation phase. A unit whose
// movement is paused after repeated blocked steps holds position until the
// pause expires.
func (g *Game) moveUnit(u *entity.Unit, target physics.Vector3, deltaSeconds float64, nowMillis int64) {
	if nowMillis < u.MovePausedUntil {
		return
	}

	dir := target.Sub(u.Position)
	dir.Y = 0
	dist := dir.Length()
	if dist == 0 {
		return
	}

	step := u.MoveSpeed * deltaSeconds
	if step > dist {
		step = dist
	}

	tentative := u.Position.Add(dir.Normalize().Scale(step))
	resolved, blocked := g.resolveSeparation(u, tentative, nowMillis, true)
	resolved.Y = u.Position.Y // movement stays on the ground plane
	u.Position = resolved
	u.Facing = dir.Heading()

	if !blocked {
		u.BlockedSince = 0
	}

	g.advanceAnimation(u, deltaSeconds)
}

// animPhaseRate converts move speed into animation cycles per second
const animPhaseRate = 0.25

// advanceAnimation drives the cyclic hop/wing phase for species that animate
// with movement. Non-moving ticks leave the phase static.
func (g *Game) advanceAnimation(u *entity.Unit, deltaSeconds float64) {
	if u.Movement == entity.Walker {
		return
	}
	u.AnimPhase = math.Mod(u.AnimPhase+u.MoveSpeed*deltaSeconds*animPhaseRate, 1.0)
}
