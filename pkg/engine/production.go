// pkg/engine/production.go
package engine

import (
	"math"

	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/event"
	"github.com/cyohn55/RTS/pkg/physics"
)

// spawnAngles are the eight candidate headings a queen cycles through when
// placing new units, spreading successive spawns around her.
var spawnAngles = [8]float64{
	0, math.Pi / 4, math.Pi / 2, 3 * math.Pi / 4,
	math.Pi, 5 * math.Pi / 4, 3 * math.Pi / 2, 7 * math.Pi / 4,
}

// updateProduction lets each living queen spawn one basic unit per interval,
// up to the per-species unit cap. The spawn timer resets on every attempt,
// even when the cap blocks the spawn, so production resumes one full
// interval after headroom opens up.
func (g *Game) updateProduction(nowMillis int64) {
	p := g.Config.Production

	// Iterate a fixed prefix so units spawned this tick are not themselves
	// visited during the same pass.
	count := len(g.Units)
	for i := 0; i < count; i++ {
		queen := g.Units[i]
		if !queen.IsAlive() || queen.Archetype != entity.ArchetypeQueen {
			continue
		}
		if nowMillis-queen.LastSpawnAt < p.IntervalMillis {
			continue
		}
		queen.LastSpawnAt = nowMillis

		if g.countArchetype(queen.PlayerID, queen.Species, entity.ArchetypeUnit) >= p.UnitCap {
			continue
		}

		angle := spawnAngles[queen.SpawnCount%len(spawnAngles)]
		queen.SpawnCount++

		pos := queen.Position.Add(physics.FromHeading(angle, p.SpawnRadius))
		u := g.createUnit(queen.PlayerID, queen.Species, entity.ArchetypeUnit, pos, nowMillis)

		resolved, _ := g.resolveSeparation(u, u.Position, nowMillis, false)
		resolved.Y = u.Position.Y
		u.Position = resolved

		g.Grid.Insert(u.Position, u)

		g.EventBus.Publish(event.NewUnitEvent(
			event.UnitSpawned, g, uint64(u.ID), u.PlayerID, u.Species))
	}
}

// updateRegeneration heals damaged units standing near a friendly queen.
// It runs only on ticks selected by the caller, heals at most MaxPerTick
// units per invocation, and rate-limits each unit individually.
func (g *Game) updateRegeneration(nowMillis int64) {
	r := g.Config.Regen
	healed := 0

	for _, u := range g.Units {
		if healed >= r.MaxPerTick {
			return
		}
		if !u.IsAlive() || u.HP >= u.MaxHP {
			continue
		}
		if nowMillis-u.LastRegenAt < r.UnitIntervalMillis {
			continue
		}
		if !g.hasFriendlyQueenInRange(u, r.QueenRadius) {
			continue
		}
		u.Heal(r.Amount)
		u.LastRegenAt = nowMillis
		healed++
	}
}
