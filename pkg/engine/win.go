// pkg/engine/win.go
package engine

import (
	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/event"
)

// coreCount returns how many of a player's core structures (Bases, Queens,
// and Kings) are still alive. A player with none left is eliminated.
func (g *Game) coreCount(playerID int) int {
	n := 0
	for _, u := range g.Units {
		if u.PlayerID != playerID || !u.IsAlive() {
			continue
		}
		switch u.Archetype {
		case entity.ArchetypeBase, entity.ArchetypeQueen, entity.ArchetypeKing:
			n++
		}
	}
	return n
}

// checkWinCondition ends the match when exactly one player still holds core
// structures. It is invoked on a throttled schedule from Tick, so elimination
// is detected up to one check interval after it actually happens. Players are
// scanned in ascending ID order so the outcome is deterministic.
func (g *Game) checkWinCondition(nowMillis int64) {
	g.lastWinCheckAt = nowMillis

	ids := g.sortedPlayerIDs()
	if len(ids) < 2 {
		return
	}

	for _, id := range ids {
		eliminatedAllOthers := true
		for _, other := range ids {
			if other == id {
				continue
			}
			if g.coreCount(other) > 0 {
				eliminatedAllOthers = false
				break
			}
		}
		if eliminatedAllOthers {
			g.Winner = id
			g.Status = GameStatusEnded
			g.EventBus.Publish(event.NewMatchEvent(event.MatchEnded, g, id))
			return
		}
	}
}
