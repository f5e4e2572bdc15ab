// pkg/engine/orders.go
package engine

import (
	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/event"
	"github.com/cyohn55/RTS/pkg/physics"
)

// IssueMoveOrder directs the given units toward a ground target. Units that
// do not exist, are dead, belong to another player, or cannot move are
// silently skipped; the order applies to whatever remains.
func (g *Game) IssueMoveOrder(playerID int, unitIDs []entity.ID, target physics.Vector3) {
	g.EntityLock.Lock()
	defer g.EntityLock.Unlock()

	var ordered []uint64
	for _, id := range unitIDs {
		u := g.unitByID(id)
		if u == nil || u.PlayerID != playerID || !u.CanMove() {
			continue
		}
		u.SetOrder(target)
		ordered = append(ordered, uint64(id))
	}

	if len(ordered) > 0 {
		g.EventBus.Publish(event.NewOrderEvent(event.OrderIssued, g, playerID, ordered))
	}
}

// IssueSetPatrol assigns a two-point patrol route to one of the player's
// Queens. Patrol and move orders are mutually exclusive; assigning a patrol
// replaces any standing move order. Non-Queens are silently ignored.
func (g *Game) IssueSetPatrol(playerID int, queenID entity.ID, start, end physics.Vector3) {
	g.EntityLock.Lock()
	defer g.EntityLock.Unlock()

	u := g.unitByID(queenID)
	if u == nil || u.PlayerID != playerID || u.Archetype != entity.ArchetypeQueen {
		return
	}
	u.SetPatrol(start, end)

	g.EventBus.Publish(event.NewOrderEvent(event.PatrolAssigned, g, playerID, []uint64{uint64(queenID)}))
}

// SetSelection replaces the local player's selection set. Selection only has
// gameplay meaning for the local player (it softens friendly separation
// pushes), so selections from any other player are ignored.
func (g *Game) SetSelection(playerID int, unitIDs []entity.ID) {
	g.EntityLock.Lock()
	defer g.EntityLock.Unlock()

	if playerID != g.LocalPlayerID {
		return
	}

	g.Selection = make(map[entity.ID]bool, len(unitIDs))
	for _, id := range unitIDs {
		if u := g.unitByID(id); u != nil && u.PlayerID == playerID {
			g.Selection[id] = true
		}
	}
}

// AddToSelection adds units to the local player's selection set
func (g *Game) AddToSelection(playerID int, unitIDs []entity.ID) {
	g.EntityLock.Lock()
	defer g.EntityLock.Unlock()

	if playerID != g.LocalPlayerID {
		return
	}

	for _, id := range unitIDs {
		if u := g.unitByID(id); u != nil && u.PlayerID == playerID {
			g.Selection[id] = true
		}
	}
}

// ClearSelection empties the local player's selection set
func (g *Game) ClearSelection(playerID int) {
	g.EntityLock.Lock()
	defer g.EntityLock.Unlock()

	if playerID != g.LocalPlayerID {
		return
	}
	g.Selection = make(map[entity.ID]bool)
}
