// pkg/engine/separation.go
package engine

import (
	"math"

	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/physics"
)

// resolveSeparation adjusts a tentative position for minimum unit spacing.
// It is applied to every tentative position the simulation computes:
// movement steps, knockback, and spawn placement.
//
// Rules are asymmetric: enemy pairs within the melee exemption are left
// alone so combat can close to contact; other enemy pairs get a full push
// plus a buffer and count as a collision; friendly pairs get a partial push
// (gentler still when a selected player unit is moving through unselected
// friends) and never count as a collision.
//
// When countCollisions is set, blocked steps accumulate on the unit's
// collision counter; crossing the attempt threshold pauses its movement
// briefly and resets the counter. Knockback and spawn placement pass false.
func (g *Game) resolveSeparation(u *entity.Unit, tentative physics.Vector3, nowMillis int64, countCollisions bool) (physics.Vector3, bool) {
	sep := g.Config.Separation
	collided := false

	for _, obj := range g.Grid.QueryRadius(tentative, sep.CheckRadius) {
		other := obj.(*entity.Unit)
		if other == u || !other.IsAlive() {
			continue
		}

		dist := tentative.Distance(other.Position)
		if dist >= sep.MinSpacing {
			continue
		}

		enemy := other.PlayerID != u.PlayerID
		if enemy && dist <= sep.MeleeExemption {
			continue
		}

		dir := tentative.Sub(other.Position)
		dir.Y = 0
		if dir.Length() == 0 {
			dir = physics.FromHeading(g.rng.Float64()*2*math.Pi, 1)
		} else {
			dir = dir.Normalize()
		}
		overlap := sep.MinSpacing - dist

		if enemy {
			tentative = tentative.Add(dir.Scale(overlap + sep.EnemyBuffer))
			collided = true
			continue
		}

		push := sep.FriendlyPush
		if g.isSelected(u) && !g.isSelected(other) {
			push = sep.SelectedPush
		}
		tentative = tentative.Add(dir.Scale(overlap * push))
	}

	if collided && countCollisions {
		g.recordBlockedStep(u, nowMillis)
	}

	return tentative, collided
}

// recordBlockedStep tracks consecutive blocked movement attempts and pauses
// the unit once the attempt threshold is reached. Ordered units owned by the
// local player get more attempts and a shorter pause so player armies grind
// through congestion instead of stalling.
func (g *Game) recordBlockedStep(u *entity.Unit, nowMillis int64) {
	sep := g.Config.Separation

	if u.BlockedSince == 0 {
		u.BlockedSince = nowMillis
	}
	u.CollisionCount++

	limit := sep.AttemptLimit
	pause := sep.PauseMillis
	if u.OrderTarget != nil && !g.playerIsAI(u.PlayerID) {
		limit = sep.OrderedAttemptLimit
		pause = sep.OrderedPauseMillis
	}

	if u.CollisionCount >= limit {
		u.MovePausedUntil = nowMillis + pause
		u.CollisionCount = 0
	}
}

// isSelected reports whether the unit is in the local player's selection
func (g *Game) isSelected(u *entity.Unit) bool {
	return u.PlayerID == g.LocalPlayerID && g.Selection[u.ID]
}

// playerIsAI reports whether the owning player is AI-controlled
func (g *Game) playerIsAI(playerID int) bool {
	p, ok := g.Players[playerID]
	return ok && p.AI
}
