// cmd/client/main.go
package main

import (
	"flag"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/cyohn55/RTS/pkg/config"
	"github.com/cyohn55/RTS/pkg/engine"
	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/event"
	"github.com/cyohn55/RTS/pkg/network"
	"github.com/cyohn55/RTS/pkg/physics"
	"github.com/cyohn55/RTS/pkg/render"
)

const selectRadius = 5.0

func main() {
	configPath := flag.String("config", "config.json", "Path to configuration file")
	serverAddr := flag.String("server", "", "Server address (overrides config)")
	playerName := flag.String("name", "Player", "Player name")
	seat := flag.Int("seat", -1, "Seat to claim (-1 for first free human seat)")
	flag.Parse()

	var gameConfig *config.GameConfig
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		log.Printf("Configuration file not found, using default configuration")
		gameConfig = config.DefaultConfig()
	} else {
		gameConfig, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	if *serverAddr == "" {
		*serverAddr = gameConfig.NetworkConfig.ServerAddress
	}

	eventBus := event.NewEventBus()
	client := network.NewGameClient(eventBus)

	log.Printf("Connecting to server at %s", *serverAddr)
	if err := client.Connect(*serverAddr, *playerName, *seat); err != nil {
		log.Fatalf("Failed to connect to server: %v", err)
	}
	defer client.Disconnect()

	disconnected := make(chan struct{}, 1)
	eventBus.Subscribe(network.ClientReconnectFailed, func(e event.Event) {
		select {
		case disconnected <- struct{}{}:
		default:
		}
	})

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("Failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("Failed to initialize screen: %v", err)
	}
	defer screen.Fini()

	viewer := render.NewViewer(screen, gameConfig.Gates, client.PlayerID())
	runUI(screen, viewer, client, disconnected)
}

// runUI drives the render/input loop: the latest snapshot from the server
// wins, keys steer the cursor and issue orders.
func runUI(screen tcell.Screen, viewer *render.Viewer, client *network.GameClient, disconnected chan struct{}) {
	keys := make(chan *tcell.EventKey, 16)
	go func() {
		for {
			switch ev := screen.PollEvent().(type) {
			case *tcell.EventKey:
				keys <- ev
			case *tcell.EventResize:
				viewer.Resize()
				screen.Sync()
			case nil:
				return
			}
		}
	}()

	var (
		state       *engine.GameState
		selected    = make(map[entity.ID]bool)
		patrolStart *physics.Vector3
		centered    bool
	)

	for {
		select {
		case s := <-client.GetGameStateChannel():
			state = s
			if !centered {
				centerOnRoyal(viewer, state, client.PlayerID())
				centered = true
			}
			viewer.RenderFrame(state)

		case <-disconnected:
			return

		case ev := <-keys:
			if state == nil {
				continue
			}
			if !handleKey(ev, viewer, client, state, selected, &patrolStart) {
				return
			}
			viewer.RenderFrame(state)
		}
	}
}

// handleKey applies one key press; returns false when the user quits.
func handleKey(ev *tcell.EventKey, viewer *render.Viewer, client *network.GameClient, state *engine.GameState, selected map[entity.ID]bool, patrolStart **physics.Vector3) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		viewer.MoveCursor(0, -1)
	case tcell.KeyDown:
		viewer.MoveCursor(0, 1)
	case tcell.KeyLeft:
		viewer.MoveCursor(-1, 0)
	case tcell.KeyRight:
		viewer.MoveCursor(1, 0)
	case tcell.KeyEnter:
		sendMoveTo(client, selected, viewer.Cursor())
	}

	switch ev.Rune() {
	case 'q':
		return false
	case 'h':
		viewer.MoveCursor(-1, 0)
	case 'j':
		viewer.MoveCursor(0, 1)
	case 'k':
		viewer.MoveCursor(0, -1)
	case 'l':
		viewer.MoveCursor(1, 0)
	case ' ':
		selectNearCursor(viewer, client, state, selected)
	case 'c':
		for id := range selected {
			delete(selected, id)
		}
		client.ClearSelection()
	case 'm':
		sendMoveTo(client, selected, viewer.Cursor())
	case 'p':
		handlePatrol(viewer, client, state, selected, patrolStart)
	}
	return true
}

func sendMoveTo(client *network.GameClient, selected map[entity.ID]bool, target physics.Vector3) {
	if len(selected) == 0 {
		return
	}
	ids := make([]entity.ID, 0, len(selected))
	for id := range selected {
		ids = append(ids, id)
	}
	if err := client.SendMoveOrder(ids, target); err != nil {
		log.Printf("move order failed: %v", err)
	}
}

// selectNearCursor replaces the selection with the player's own mobile units
// within selectRadius of the cursor.
func selectNearCursor(viewer *render.Viewer, client *network.GameClient, state *engine.GameState, selected map[entity.ID]bool) {
	for id := range selected {
		delete(selected, id)
	}
	cursor := viewer.Cursor()
	for _, u := range state.Units {
		if u.PlayerID != client.PlayerID() || u.Archetype == "base" {
			continue
		}
		dx := u.Position.X - cursor.X
		dz := u.Position.Z - cursor.Z
		if dx*dx+dz*dz <= selectRadius*selectRadius {
			selected[u.ID] = true
		}
	}

	ids := make([]entity.ID, 0, len(selected))
	for id := range selected {
		ids = append(ids, id)
	}
	if err := client.SendSelection(ids); err != nil {
		log.Printf("selection failed: %v", err)
	}
}

// handlePatrol sets the patrol start on the first press and assigns the
// route to the selected queen on the second.
func handlePatrol(viewer *render.Viewer, client *network.GameClient, state *engine.GameState, selected map[entity.ID]bool, patrolStart **physics.Vector3) {
	cursor := viewer.Cursor()
	if *patrolStart == nil {
		start := cursor
		*patrolStart = &start
		return
	}

	for _, u := range state.Units {
		if u.Archetype == "queen" && selected[u.ID] {
			if err := client.SendPatrolOrder(u.ID, **patrolStart, cursor); err != nil {
				log.Printf("patrol order failed: %v", err)
			}
			break
		}
	}
	*patrolStart = nil
}

// centerOnRoyal snaps the camera to the player's queen (or king) so the
// first frame opens on their half of the field.
func centerOnRoyal(viewer *render.Viewer, state *engine.GameState, playerID int) {
	for _, u := range state.Units {
		if u.PlayerID == playerID && (u.Archetype == "queen" || u.Archetype == "king") {
			viewer.CenterOn(u.Position)
			return
		}
	}
}
