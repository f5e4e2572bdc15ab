// pkg/engine/combat.go
package engine

import (
	"math"

	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/event"
	"github.com/cyohn55/RTS/pkg/physics"
)

// tryAttack fires at the target if it is within attack range and the
// attacker's cooldown has elapsed. Damage is queued, not applied: all hits
// for the tick land together after the behavior pass so resolution does not
// depend on unit iteration order. Attacker-tracking side effects are stamped
// at attack time, enabling the target's attack response on the next tick.
func (g *Game) tryAttack(u, target *entity.Unit, nowMillis int64) {
	c := g.Config.Combat
	if u.Position.DistanceSq(target.Position) > c.AttackRange*c.AttackRange {
		return
	}

	u.Facing = target.Position.Sub(u.Position).Heading()

	if nowMillis-u.LastAttackAt < u.CooldownMillis {
		return
	}

	u.LastAttackAt = nowMillis
	u.LastCombatTargetID = target.ID
	u.LastCombatAt = nowMillis
	target.Attackers[u.ID] = true

	g.combatQueue = append(g.combatQueue, combatHit{
		AttackerID: u.ID,
		TargetID:   target.ID,
		Damage:     u.Damage,
	})
}

// applyQueuedCombat applies every hit queued during the behavior pass.
// Surviving targets take a small knockback along the attacker→target
// direction, re-validated through the separation resolver.
func (g *Game) applyQueuedCombat(nowMillis int64) {
	for _, hit := range g.combatQueue {
		target, ok := g.unitIndex[hit.TargetID]
		if !ok || !target.IsAlive() {
			continue
		}

		attacker := g.unitIndex[hit.AttackerID]
		destroyed := target.TakeDamage(hit.Damage)

		if destroyed {
			if attacker != nil {
				if p, ok := g.Players[attacker.PlayerID]; ok {
					p.Kills++
				}
			}
			if p, ok := g.Players[target.PlayerID]; ok {
				p.Losses++
			}
			continue
		}

		if attacker != nil {
			g.knockBack(attacker, target, nowMillis)
		}
	}
	g.combatQueue = g.combatQueue[:0]
}

// knockBack shoves the target away from the attacker by a fixed magnitude
func (g *Game) knockBack(attacker, target *entity.Unit, nowMillis int64) {
	dir := target.Position.Sub(attacker.Position)
	dir.Y = 0
	if dir.Length() == 0 {
		dir = physics.FromHeading(g.rng.Float64()*2*math.Pi, 1)
	} else {
		dir = dir.Normalize()
	}

	tentative := target.Position.Add(dir.Scale(g.Config.Combat.Knockback))
	resolved, _ := g.resolveSeparation(target, tentative, nowMillis, false)
	resolved.Y = target.Position.Y
	target.Position = resolved
}

// removeDeadUnits removes every unit with HP ≤ 0 in the same tick it died,
// scrubs all references to the removed IDs from the survivors, and rebuilds
// the spatial grid so next queries reflect the removals.
func (g *Game) removeDeadUnits() {
	removed := make(map[entity.ID]*entity.Unit)
	alive := g.Units[:0]
	for _, u := range g.Units {
		if u.IsAlive() {
			alive = append(alive, u)
			continue
		}
		removed[u.ID] = u
		delete(g.unitIndex, u.ID)
		delete(g.Selection, u.ID)
	}
	g.Units = alive

	if len(removed) == 0 {
		return
	}

	for _, u := range g.Units {
		if _, gone := removed[u.PriorityAttackerID]; gone {
			u.PriorityAttackerID = 0
		}
		if _, gone := removed[u.LastCombatTargetID]; gone {
			u.LastCombatTargetID = 0
		}
		if _, gone := removed[u.FocusTargetID]; gone {
			u.FocusTargetID = 0
		}
		for id := range u.Attackers {
			if _, gone := removed[id]; gone {
				delete(u.Attackers, id)
			}
		}
	}

	g.rebuildGrid()

	for _, u := range removed {
		g.EventBus.Publish(event.NewUnitEvent(
			event.UnitDestroyed, g, uint64(u.ID), u.PlayerID, u.Species))
	}
}

// pruneAttackers drops attacker entries whose unit is dead or has moved out
// of tracking range, keeping the attacker sets bounded and current.
func (g *Game) pruneAttackers() {
	prune := g.Config.Combat.AttackerPruneRange
	for _, u := range g.Units {
		for id := range u.Attackers {
			attacker := g.unitByID(id)
			if attacker == nil || u.Position.Distance(attacker.Position) > prune {
				delete(u.Attackers, id)
			}
		}
		if u.PriorityAttackerID != 0 && !u.Attackers[u.PriorityAttackerID] {
			u.PriorityAttackerID = 0
		}
	}
}
