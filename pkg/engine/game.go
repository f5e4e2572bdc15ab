// pkg/engine/game.go
package engine

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/cyohn55/RTS/pkg/config"
	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/event"
	"github.com/cyohn55/RTS/pkg/physics"
)

// GameStatus represents the lifecycle state of a match
type GameStatus int

const (
	GameStatusWaiting GameStatus = iota
	GameStatusActive
	GameStatusEnded
)

// Player represents one faction in the skirmish
type Player struct {
	ID            int
	Name          string
	AI            bool
	Species       []string
	BasePositions []physics.Vector3
	Kills         int
	Losses        int
}

// combatHit is one queued damage application. Damage is queued during the
// behavior pass and applied afterwards so resolution within a tick does not
// depend on unit iteration order.
type combatHit struct {
	AttackerID entity.ID
	TargetID   entity.ID
	Damage     int
}

// Game owns all mutable simulation state. Tick is the only mutator; external
// readers take snapshots through GetGameState. Commands (orders, patrol,
// selection) acquire the same lock and therefore apply between ticks.
type Game struct {
	Config  *config.GameConfig
	Species map[string]entity.SpeciesStats

	// Units is the dense unit storage in spawn order; unitIndex resolves
	// the IDs stored in behavioral fields.
	Units     []*entity.Unit
	unitIndex map[entity.ID]*entity.Unit

	Players       map[int]*Player
	LocalPlayerID int
	Selection     map[entity.ID]bool

	Grid  *physics.Grid
	Gates []*Gate

	EventBus *event.Bus
	Status   GameStatus
	Winner   int // player ID of winner, -1 if none

	EntityLock sync.RWMutex

	CurrentTick    uint64
	lastWinCheckAt int64
	combatQueue    []combatHit
	rng            *rand.Rand
}

// NewGame creates a game from configuration and a species stat sheet
func NewGame(cfg *config.GameConfig, species []entity.SpeciesStats) *Game {
	g := &Game{
		Config:    cfg,
		Species:   entity.SpeciesIndex(species),
		unitIndex: make(map[entity.ID]*entity.Unit),
		Players:   make(map[int]*Player),
		Selection: make(map[entity.ID]bool),
		Grid:      physics.NewGrid(cfg.GridCellSize),
		EventBus:  event.NewEventBus(),
		Winner:    -1,
		rng:       rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)+1)),
	}
	g.initGates()
	return g
}

// initGates creates the gate state machines from configuration
func (g *Game) initGates() {
	g.Gates = make([]*Gate, 0, len(g.Config.Gates))
	for _, gc := range g.Config.Gates {
		g.Gates = append(g.Gates, NewGate(gc))
	}
}

// InitializeMatch resets simulation state and creates one Base, Queen, and
// King per player per chosen species at deterministic offsets from the
// player's base positions. An unknown species key is a configuration error
// and is rejected before anything enters the simulation.
func (g *Game) InitializeMatch(players []config.PlayerConfig, nowMillis int64) error {
	g.EntityLock.Lock()
	defer g.EntityLock.Unlock()

	for _, pc := range players {
		if len(pc.Species) != 3 {
			return fmt.Errorf("player %q selected %d species, want exactly 3", pc.Name, len(pc.Species))
		}
		if len(pc.BasePositions) != len(pc.Species) {
			return fmt.Errorf("player %q has %d base positions for %d species",
				pc.Name, len(pc.BasePositions), len(pc.Species))
		}
		for _, key := range pc.Species {
			if _, ok := g.Species[key]; !ok {
				return fmt.Errorf("unknown species %q for player %q", key, pc.Name)
			}
		}
	}

	g.Units = g.Units[:0]
	g.unitIndex = make(map[entity.ID]*entity.Unit)
	g.Players = make(map[int]*Player)
	g.Selection = make(map[entity.ID]bool)
	g.combatQueue = g.combatQueue[:0]
	g.Winner = -1
	g.CurrentTick = 0
	g.lastWinCheckAt = nowMillis
	g.initGates()

	g.LocalPlayerID = 0
	for i, pc := range players {
		player := &Player{
			ID:            i,
			Name:          pc.Name,
			AI:            pc.AI,
			Species:       append([]string(nil), pc.Species...),
			BasePositions: append([]physics.Vector3(nil), pc.BasePositions...),
		}
		g.Players[i] = player
		if !pc.AI && g.Players[g.LocalPlayerID].AI {
			g.LocalPlayerID = i
		}

		for slot, key := range pc.Species {
			base := pc.BasePositions[slot]
			g.createUnit(i, key, entity.ArchetypeBase, base, nowMillis)
			g.createUnit(i, key, entity.ArchetypeQueen, base.Add(physics.Vector3{X: 4}), nowMillis)
			g.createUnit(i, key, entity.ArchetypeKing, base.Add(physics.Vector3{X: -4}), nowMillis)
		}
	}

	g.rebuildGrid()
	g.Status = GameStatusActive
	g.EventBus.Publish(event.NewMatchEvent(event.MatchStarted, g, -1))
	return nil
}

// createUnit builds a unit, registers it, and returns it. The caller holds
// the entity lock.
func (g *Game) createUnit(playerID int, speciesKey string, archetype entity.Archetype, pos physics.Vector3, nowMillis int64) *entity.Unit {
	species := g.Species[speciesKey]
	u := entity.NewUnit(entity.GenerateID(), playerID, species, archetype,
		pos, g.Config.Combat.CooldownMillis, nowMillis)
	u.ThinkOffset = int(g.rng.Uint64() % 2)
	g.Units = append(g.Units, u)
	g.unitIndex[u.ID] = u
	return u
}

// unitByID resolves a stored unit ID, returning nil for stale references
// (missing or dead units) so callers clear them lazily.
func (g *Game) unitByID(id entity.ID) *entity.Unit {
	if id == 0 {
		return nil
	}
	u, ok := g.unitIndex[id]
	if !ok || !u.IsAlive() {
		return nil
	}
	return u
}

// Tick advances the simulation by exactly one fixed logical step. The caller
// supplies the step length in seconds and a monotonic wall-clock timestamp in
// milliseconds; the engine never reads the clock itself.
func (g *Game) Tick(deltaSeconds float64, nowMillis int64) {
	g.EntityLock.Lock()
	defer g.EntityLock.Unlock()

	if g.Status != GameStatusActive {
		return
	}

	g.rebuildGrid()

	if g.Config.Regen.TickInterval > 0 && g.CurrentTick%g.Config.Regen.TickInterval == 0 {
		g.updateRegeneration(nowMillis)
	}
	g.updateProduction(nowMillis)

	// The behavior pass iterates a stable view: units spawned mid-tick are
	// not decided until the next tick.
	active := len(g.Units)
	for i := 0; i < active; i++ {
		u := g.Units[i]
		if u.IsAlive() {
			g.decideUnit(u, deltaSeconds, nowMillis)
		}
	}

	g.applyQueuedCombat(nowMillis)
	g.removeDeadUnits()
	g.pruneAttackers()
	g.updateGates(nowMillis)

	if nowMillis-g.lastWinCheckAt >= g.Config.WinCheck.IntervalMillis {
		g.checkWinCondition(nowMillis)
	}

	g.CurrentTick++
}

// rebuildGrid clears and re-buckets all living units
func (g *Game) rebuildGrid() {
	g.Grid.Clear()
	for _, u := range g.Units {
		if u.IsAlive() {
			g.Grid.Insert(u.Position, u)
		}
	}
}

// findClosestEnemy returns the nearest living enemy unit within radius
func (g *Game) findClosestEnemy(u *entity.Unit, radius float64) *entity.Unit {
	var closest *entity.Unit
	closestDist := radius + 1
	for _, obj := range g.Grid.QueryRadius(u.Position, radius) {
		other := obj.(*entity.Unit)
		if other.PlayerID == u.PlayerID || !other.IsAlive() || other == u {
			continue
		}
		d := u.Position.Distance(other.Position)
		if d < closestDist {
			closest = other
			closestDist = d
		}
	}
	return closest
}

// hasFriendlyQueenInRange reports whether a living friendly Queen is within
// radius of the unit
func (g *Game) hasFriendlyQueenInRange(u *entity.Unit, radius float64) bool {
	for _, obj := range g.Grid.QueryRadius(u.Position, radius) {
		other := obj.(*entity.Unit)
		if other.PlayerID == u.PlayerID && other.Archetype == entity.ArchetypeQueen &&
			other.IsAlive() && other != u {
			return true
		}
	}
	return false
}

// countArchetype counts a player's living units of the given species and
// archetype
func (g *Game) countArchetype(playerID int, speciesKey string, archetype entity.Archetype) int {
	n := 0
	for _, u := range g.Units {
		if u.PlayerID == playerID && u.Archetype == archetype &&
			u.Species == speciesKey && u.IsAlive() {
			n++
		}
	}
	return n
}

// sortedPlayerIDs returns player IDs in ascending order for deterministic
// iteration
func (g *Game) sortedPlayerIDs() []int {
	ids := make([]int, 0, len(g.Players))
	for id := range g.Players {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// GameState represents a read-only snapshot of the game state
type GameState struct {
	Tick    uint64            `json:"tick"`
	Status  GameStatus        `json:"status"`
	Winner  int               `json:"winner"`
	Units   []UnitState       `json:"units"`
	Players map[int]PlayerState `json:"players"`
	Gates   []GateSnapshot    `json:"gates"`
}

// UnitState represents a snapshot of one unit
type UnitState struct {
	ID        entity.ID       `json:"id"`
	PlayerID  int             `json:"playerId"`
	Species   string          `json:"species"`
	Archetype string          `json:"archetype"`
	Position  physics.Vector3 `json:"position"`
	Facing    float64         `json:"facing"`
	HP        int             `json:"hp"`
	MaxHP     int             `json:"maxHp"`
	State     string          `json:"state"`
	AnimPhase float64         `json:"animPhase"`
	Selected  bool            `json:"selected"`
}

// PlayerState represents a snapshot of one player's standing
type PlayerState struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	AI     bool   `json:"ai"`
	Kills  int    `json:"kills"`
	Losses int    `json:"losses"`
}

// GateSnapshot represents a snapshot of one gate's presentation state
type GateSnapshot struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Frame int    `json:"frame"`
}

// GetGameState returns a consistent snapshot of the current game state
func (g *Game) GetGameState() *GameState {
	g.EntityLock.RLock()
	defer g.EntityLock.RUnlock()

	state := &GameState{
		Tick:    g.CurrentTick,
		Status:  g.Status,
		Winner:  g.Winner,
		Units:   make([]UnitState, 0, len(g.Units)),
		Players: make(map[int]PlayerState, len(g.Players)),
		Gates:   make([]GateSnapshot, 0, len(g.Gates)),
	}

	for _, u := range g.Units {
		if !u.IsAlive() {
			continue
		}
		state.Units = append(state.Units, UnitState{
			ID:        u.ID,
			PlayerID:  u.PlayerID,
			Species:   u.Species,
			Archetype: u.Archetype.String(),
			Position:  u.Position,
			Facing:    u.Facing,
			HP:        u.HP,
			MaxHP:     u.MaxHP,
			State:     u.State.String(),
			AnimPhase: u.AnimPhase,
			Selected:  g.Selection[u.ID],
		})
	}

	for id, p := range g.Players {
		state.Players[id] = PlayerState{
			ID:     p.ID,
			Name:   p.Name,
			AI:     p.AI,
			Kills:  p.Kills,
			Losses: p.Losses,
		}
	}

	for _, gate := range g.Gates {
		state.Gates = append(state.Gates, GateSnapshot{
			Name:  gate.Name,
			State: gate.State.String(),
			Frame: gate.Frame,
		})
	}

	return state
}
