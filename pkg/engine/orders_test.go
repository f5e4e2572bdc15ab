// pkg/engine/orders_test.go
package engine

import (
	"testing"

	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/event"
	"github.com/cyohn55/RTS/pkg/physics"
)

func TestIssueMoveOrder_FiltersRecipients(t *testing.T) {
	g := newTestGame(t)
	own := addUnit(g, 0, entity.ArchetypeUnit, physics.Vector3{X: 0})
	base := addUnit(g, 0, entity.ArchetypeBase, physics.Vector3{X: 5})
	enemy := addUnit(g, 1, entity.ArchetypeUnit, physics.Vector3{X: 10})
	dead := addUnit(g, 0, entity.ArchetypeUnit, physics.Vector3{X: 15})
	dead.HP = 0

	var ordered []uint64
	g.EventBus.Subscribe(event.OrderIssued, func(e event.Event) {
		ordered = e.(*event.OrderEvent).UnitIDs
	})

	target := physics.Vector3{X: 30}
	g.IssueMoveOrder(0, []entity.ID{own.ID, base.ID, enemy.ID, dead.ID, 99999}, target)

	if own.OrderTarget == nil || *own.OrderTarget != target {
		t.Error("owned mobile unit did not receive the order")
	}
	if base.OrderTarget != nil {
		t.Error("immobile base received a move order")
	}
	if enemy.OrderTarget != nil {
		t.Error("enemy unit received the order")
	}
	if len(ordered) != 1 || ordered[0] != uint64(own.ID) {
		t.Errorf("order event IDs = %v, want just the valid recipient", ordered)
	}
}

func TestIssueMoveOrder_ReplacesPatrol(t *testing.T) {
	g := newTestGame(t)
	queen := addUnit(g, 0, entity.ArchetypeQueen, physics.Vector3{X: 0})
	queen.SetPatrol(physics.Vector3{X: -5}, physics.Vector3{X: 5})

	g.IssueMoveOrder(0, []entity.ID{queen.ID}, physics.Vector3{X: 20})

	if queen.Patrol != nil {
		t.Error("move order did not cancel the active patrol")
	}
	if queen.OrderTarget == nil {
		t.Error("queen did not receive the move order")
	}
}

func TestIssueSetPatrol_QueensOnly(t *testing.T) {
	g := newTestGame(t)
	queen := addUnit(g, 0, entity.ArchetypeQueen, physics.Vector3{X: 0})
	king := addUnit(g, 0, entity.ArchetypeKing, physics.Vector3{X: 5})
	enemyQueen := addUnit(g, 1, entity.ArchetypeQueen, physics.Vector3{X: 10})

	start, end := physics.Vector3{X: -5}, physics.Vector3{X: 5}
	g.IssueSetPatrol(0, queen.ID, start, end)
	g.IssueSetPatrol(0, king.ID, start, end)
	g.IssueSetPatrol(0, enemyQueen.ID, start, end)

	if queen.Patrol == nil {
		t.Error("owned queen did not receive the patrol")
	}
	if king.Patrol != nil {
		t.Error("king accepted a patrol route")
	}
	if enemyQueen.Patrol != nil {
		t.Error("enemy queen accepted a patrol route")
	}
}

func TestIssueSetPatrol_ReplacesOrder(t *testing.T) {
	g := newTestGame(t)
	queen := addUnit(g, 0, entity.ArchetypeQueen, physics.Vector3{X: 0})
	queen.SetOrder(physics.Vector3{X: 20})

	g.IssueSetPatrol(0, queen.ID, physics.Vector3{X: -5}, physics.Vector3{X: 5})

	if queen.OrderTarget != nil {
		t.Error("patrol assignment did not cancel the standing order")
	}
}

func TestSelection_LocalPlayerOnly(t *testing.T) {
	g := newTestGame(t)
	mine := addUnit(g, 0, entity.ArchetypeUnit, physics.Vector3{X: 0})
	other := addUnit(g, 1, entity.ArchetypeUnit, physics.Vector3{X: 5})

	g.SetSelection(0, []entity.ID{mine.ID, other.ID})
	if !g.Selection[mine.ID] {
		t.Error("owned unit not selected")
	}
	if g.Selection[other.ID] {
		t.Error("another player's unit entered the selection")
	}

	// Selections from non-local players are ignored entirely.
	g.SetSelection(1, []entity.ID{other.ID})
	if g.Selection[other.ID] {
		t.Error("non-local player replaced the selection")
	}

	second := addUnit(g, 0, entity.ArchetypeUnit, physics.Vector3{X: 2})
	g.AddToSelection(0, []entity.ID{second.ID})
	if !g.Selection[mine.ID] || !g.Selection[second.ID] {
		t.Error("AddToSelection did not extend the selection")
	}

	g.ClearSelection(0)
	if len(g.Selection) != 0 {
		t.Error("ClearSelection left units selected")
	}
}
