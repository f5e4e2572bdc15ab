// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cyohn55/RTS/pkg/physics"
)

// GameConfig contains the full configuration for a skirmish. Every throttle,
// radius, and interval the simulation uses lives here so tests can override
// them instead of relying on hard-coded literals.
type GameConfig struct {
	WorldSize     float64          `json:"worldSize"`
	TickRate      int              `json:"tickRate"` // logical ticks per second
	Seed          int64            `json:"seed"`
	GridCellSize  float64          `json:"gridCellSize"`
	Players       []PlayerConfig   `json:"players"`
	Separation    SeparationConfig `json:"separation"`
	Combat        CombatConfig     `json:"combat"`
	Behavior      BehaviorConfig   `json:"behavior"`
	Production    ProductionConfig `json:"production"`
	Regen         RegenConfig      `json:"regen"`
	WinCheck      WinCheckConfig   `json:"winCheck"`
	Gates         []GateConfig     `json:"gates"`
	NetworkConfig NetworkConfig    `json:"network"`
}

// PlayerConfig describes one faction: exactly three chosen species with a
// base spawn position each (1:1 with species).
type PlayerConfig struct {
	Name          string            `json:"name"`
	AI            bool              `json:"ai"`
	Species       []string          `json:"species"`
	BasePositions []physics.Vector3 `json:"basePositions"`
}

// SeparationConfig tunes the collision/separation resolver
type SeparationConfig struct {
	MinSpacing          float64 `json:"minSpacing"`          // minimum distance between units
	MeleeExemption      float64 `json:"meleeExemption"`      // enemies this close may overlap
	CheckRadius         float64 `json:"checkRadius"`         // neighbors beyond this are ignored
	FriendlyPush        float64 `json:"friendlyPush"`        // push strength between friendly units
	SelectedPush        float64 `json:"selectedPush"`        // selected unit pushing through unselected friendly
	EnemyBuffer         float64 `json:"enemyBuffer"`         // extra clearance added to enemy pushes
	OrderedAttemptLimit int     `json:"orderedAttemptLimit"` // blocked steps before pausing an ordered player unit
	AttemptLimit        int     `json:"attemptLimit"`        // blocked steps before pausing any other unit
	OrderedPauseMillis  int64   `json:"orderedPauseMillis"`
	PauseMillis         int64   `json:"pauseMillis"`
	BlockAbandonMillis  int64   `json:"blockAbandonMillis"` // continuous blockage before an order is abandoned
}

// CombatConfig tunes combat resolution
type CombatConfig struct {
	AttackRange        float64 `json:"attackRange"`
	CooldownMillis     int64   `json:"cooldownMillis"`
	Knockback          float64 `json:"knockback"`
	AttackerPruneRange float64 `json:"attackerPruneRange"` // attackers beyond this are forgotten
}

// BehaviorConfig tunes the per-unit decision logic
type BehaviorConfig struct {
	DetectionRadius      float64 `json:"detectionRadius"`  // idle autonomous acquisition
	EngagementRadius     float64 `json:"engagementRadius"` // opportunistic combat while ordered
	ReengageWindowMillis int64   `json:"reengageWindowMillis"`
	ReengageRadius       float64 `json:"reengageRadius"`
	AIFocusRange         float64 `json:"aiFocusRange"` // AI cached-target validity range
	OrderArriveRadius    float64 `json:"orderArriveRadius"`
	PatrolArriveRadius   float64 `json:"patrolArriveRadius"`
}

// ProductionConfig tunes Queen unit production
type ProductionConfig struct {
	IntervalMillis int64   `json:"intervalMillis"`
	UnitCap        int     `json:"unitCap"` // per player per species
	SpawnRadius    float64 `json:"spawnRadius"`
}

// RegenConfig tunes Queen-proximity health regeneration
type RegenConfig struct {
	TickInterval       uint64  `json:"tickInterval"` // checked every Nth tick
	UnitIntervalMillis int64   `json:"unitIntervalMillis"`
	Amount             int     `json:"amount"`
	QueenRadius        float64 `json:"queenRadius"`
	MaxPerTick         int     `json:"maxPerTick"`
}

// WinCheckConfig throttles the elimination check
type WinCheckConfig struct {
	IntervalMillis int64 `json:"intervalMillis"`
}

// GateConfig places one proximity-triggered gate
type GateConfig struct {
	Name        string          `json:"name"`
	Zone        physics.Vector3 `json:"zone"`
	Radius      float64         `json:"radius"`
	FrameMillis int64           `json:"frameMillis"`
}

// NetworkConfig contains network-related configuration
type NetworkConfig struct {
	UpdateRate    int    `json:"updateRate"` // state broadcasts per second
	ServerPort    int    `json:"serverPort"`
	ServerAddress string `json:"serverAddress"`
	SpectatorPort int    `json:"spectatorPort"`
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *GameConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the default two-faction skirmish configuration
func DefaultConfig() *GameConfig {
	return &GameConfig{
		WorldSize:    200,
		TickRate:     60,
		Seed:         1,
		GridCellSize: 10,
		Players: []PlayerConfig{
			{
				Name:    "Player",
				AI:      false,
				Species: []string{"ant", "bee", "grasshopper"},
				BasePositions: []physics.Vector3{
					{X: -20, Z: -40},
					{X: 0, Z: -45},
					{X: 20, Z: -40},
				},
			},
			{
				Name:    "Computer",
				AI:      true,
				Species: []string{"beetle", "wasp", "mantis"},
				BasePositions: []physics.Vector3{
					{X: -20, Z: 40},
					{X: 0, Z: 45},
					{X: 20, Z: 40},
				},
			},
		},
		Separation: SeparationConfig{
			MinSpacing:          2.5,
			MeleeExemption:      2.0,
			CheckRadius:         7.5,
			FriendlyPush:        0.5,
			SelectedPush:        0.2,
			EnemyBuffer:         0.1,
			OrderedAttemptLimit: 8,
			AttemptLimit:        5,
			OrderedPauseMillis:  100,
			PauseMillis:         200,
			BlockAbandonMillis:  2000,
		},
		Combat: CombatConfig{
			AttackRange:        4,
			CooldownMillis:     1500,
			Knockback:          0.8,
			AttackerPruneRange: 50,
		},
		Behavior: BehaviorConfig{
			DetectionRadius:      10,
			EngagementRadius:     8,
			ReengageWindowMillis: 3000,
			ReengageRadius:       10,
			AIFocusRange:         50,
			OrderArriveRadius:    0.5,
			PatrolArriveRadius:   1.0,
		},
		Production: ProductionConfig{
			IntervalMillis: 10000,
			UnitCap:        20,
			SpawnRadius:    3,
		},
		Regen: RegenConfig{
			TickInterval:       3,
			UnitIntervalMillis: 3000,
			Amount:             1,
			QueenRadius:        8,
			MaxPerTick:         30,
		},
		WinCheck: WinCheckConfig{
			IntervalMillis: 5000,
		},
		Gates: []GateConfig{
			{Name: "left", Zone: physics.Vector3{X: -15, Z: 0}, Radius: 10, FrameMillis: 1000},
			{Name: "right", Zone: physics.Vector3{X: 15, Z: 0}, Radius: 10, FrameMillis: 1000},
		},
		NetworkConfig: NetworkConfig{
			UpdateRate:    20,
			ServerPort:    4566,
			ServerAddress: "localhost:4566",
			SpectatorPort: 4567,
		},
	}
}
