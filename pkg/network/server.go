// pkg/network/server.go
package network

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/cyohn55/RTS/pkg/engine"
	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/validation"
)

// GameServer runs the authoritative simulation loop and relays state to
// connected clients. Clients send orders; the server validates them and
// applies them to the game between ticks.
type GameServer struct {
	listener    net.Listener
	game        *engine.Game
	clients     map[uint64]*Client
	clientsLock sync.RWMutex
	running     bool
	maxClients  int
	validator   *validation.MessageValidator

	tickInterval   time.Duration
	ticksPerUpdate int // game ticks between state broadcasts
}

// Client represents a connected client
type Client struct {
	ID         uint64
	Conn       net.Conn
	PlayerID   int
	PlayerName string
	Connected  bool
	LastInput  time.Time
}

// NewGameServer creates a game server for an initialized match
func NewGameServer(game *engine.Game, maxClients int) *GameServer {
	cfg := game.Config
	ticksPerUpdate := cfg.TickRate / cfg.NetworkConfig.UpdateRate
	if ticksPerUpdate < 1 {
		ticksPerUpdate = 1
	}
	return &GameServer{
		game:           game,
		clients:        make(map[uint64]*Client),
		maxClients:     maxClients,
		validator:      validation.NewMessageValidator(),
		tickInterval:   time.Second / time.Duration(cfg.TickRate),
		ticksPerUpdate: ticksPerUpdate,
	}
}

// Start begins listening for clients and running the simulation loop
func (s *GameServer) Start(address string) error {
	var err error
	s.listener, err = net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	s.running = true

	go s.acceptConnections()
	go s.gameLoop()

	log.Printf("Game server started on %s", address)
	return nil
}

// Running reports whether the simulation loop is active.
func (s *GameServer) Running() bool {
	return s.running
}

// ListenerAddress returns the bound listen address, or "" before Start.
func (s *GameServer) ListenerAddress() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop stops the game server
func (s *GameServer) Stop() {
	s.running = false

	s.clientsLock.Lock()
	for _, client := range s.clients {
		client.Conn.Close()
	}
	s.clientsLock.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.validator.Close()

	log.Println("Game server stopped")
}

// acceptConnections accepts new client connections
func (s *GameServer) acceptConnections() {
	for s.running {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running {
				log.Printf("Error accepting connection: %v", err)
			}
			continue
		}

		s.clientsLock.RLock()
		clientCount := len(s.clients)
		s.clientsLock.RUnlock()

		if clientCount >= s.maxClients {
			log.Printf("Rejecting connection, server full")
			conn.Close()
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection performs the handshake and then serves the client
func (s *GameServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	msgType, data, err := readMessage(conn)
	if err != nil {
		log.Printf("Error reading connect request: %v", err)
		return
	}
	if msgType != ConnectRequest {
		log.Printf("Expected connect request, got %d", msgType)
		return
	}

	var req ConnectRequestData
	if err := json.Unmarshal(data, &req); err != nil {
		log.Printf("Error parsing connect request: %v", err)
		return
	}

	name, err := validation.ValidatePlayerName(req.PlayerName)
	if err != nil {
		writeMessage(conn, ConnectResponse, ConnectResponseData{Success: false, Error: err.Error()})
		return
	}

	playerID, err := s.claimSeat(req.Seat)
	if err != nil {
		writeMessage(conn, ConnectResponse, ConnectResponseData{Success: false, Error: err.Error()})
		return
	}

	client := &Client{
		ID:         uint64(entity.GenerateID()),
		Conn:       conn,
		PlayerID:   playerID,
		PlayerName: name,
		Connected:  true,
		LastInput:  time.Now(),
	}

	s.clientsLock.Lock()
	s.clients[client.ID] = client
	s.clientsLock.Unlock()

	writeMessage(conn, ConnectResponse, ConnectResponseData{
		Success:  true,
		PlayerID: playerID,
		ClientID: client.ID,
	})

	s.handleClientMessages(client)
}

// claimSeat resolves which player a connecting client controls. A negative
// seat takes the first human seat not yet held by a connected client.
func (s *GameServer) claimSeat(seat int) (int, error) {
	s.clientsLock.RLock()
	taken := make(map[int]bool, len(s.clients))
	for _, c := range s.clients {
		if c.Connected {
			taken[c.PlayerID] = true
		}
	}
	s.clientsLock.RUnlock()

	state := s.game.GetGameState()

	if seat >= 0 {
		p, ok := state.Players[seat]
		switch {
		case !ok:
			return 0, fmt.Errorf("no such seat: %d", seat)
		case p.AI:
			return 0, fmt.Errorf("seat %d is AI-controlled", seat)
		case taken[seat]:
			return 0, fmt.Errorf("seat %d already claimed", seat)
		}
		return seat, nil
	}

	for id := 0; id < len(state.Players); id++ {
		p, ok := state.Players[id]
		if ok && !p.AI && !taken[id] {
			return id, nil
		}
	}
	return 0, fmt.Errorf("no free seat")
}

// handleClientMessages processes messages from a connected client
func (s *GameServer) handleClientMessages(client *Client) {
	clientKey := fmt.Sprintf("client-%d", client.ID)

	for client.Connected && s.running {
		msgType, data, err := readMessage(client.Conn)
		if err != nil {
			if err != io.EOF {
				log.Printf("Error reading message from client %d: %v", client.ID, err)
			}
			break
		}

		if len(data) > 0 {
			if err := s.validator.ValidateMessage(data, clientKey); err != nil {
				log.Printf("Rejecting message from client %d: %v", client.ID, err)
				continue
			}
		}
		client.LastInput = time.Now()

		switch msgType {
		case MoveOrderMessage:
			s.handleMoveOrder(client, data)

		case PatrolOrderMessage:
			s.handlePatrolOrder(client, data)

		case SelectionMessage:
			s.handleSelection(client, data)

		case PingRequest:
			writeMessage(client.Conn, PingResponse, json.RawMessage(data))

		case DisconnectNotification:
			log.Printf("Client %d disconnecting", client.ID)
			client.Connected = false

		default:
			log.Printf("Unknown message type %d from client %d", msgType, client.ID)
		}
	}

	s.removeClient(client)
}

// handleMoveOrder validates and applies a move order
func (s *GameServer) handleMoveOrder(client *Client, data []byte) {
	var order MoveOrderData
	if err := json.Unmarshal(data, &order); err != nil {
		log.Printf("Error parsing move order: %v", err)
		return
	}
	if err := validation.ValidateOrderUnitCount(len(order.UnitIDs)); err != nil {
		log.Printf("Rejecting move order from client %d: %v", client.ID, err)
		return
	}
	if err := validation.ValidateMoveTarget(order.Target, s.game.Config.WorldSize); err != nil {
		log.Printf("Rejecting move order from client %d: %v", client.ID, err)
		return
	}

	s.game.IssueMoveOrder(client.PlayerID, order.UnitIDs, order.Target)
}

// handlePatrolOrder validates and applies a patrol assignment
func (s *GameServer) handlePatrolOrder(client *Client, data []byte) {
	var order PatrolOrderData
	if err := json.Unmarshal(data, &order); err != nil {
		log.Printf("Error parsing patrol order: %v", err)
		return
	}
	worldSize := s.game.Config.WorldSize
	if err := validation.ValidateMoveTarget(order.Start, worldSize); err != nil {
		log.Printf("Rejecting patrol order from client %d: %v", client.ID, err)
		return
	}
	if err := validation.ValidateMoveTarget(order.End, worldSize); err != nil {
		log.Printf("Rejecting patrol order from client %d: %v", client.ID, err)
		return
	}

	s.game.IssueSetPatrol(client.PlayerID, order.QueenID, order.Start, order.End)
}

// handleSelection applies a selection update
func (s *GameServer) handleSelection(client *Client, data []byte) {
	var sel SelectionData
	if err := json.Unmarshal(data, &sel); err != nil {
		log.Printf("Error parsing selection: %v", err)
		return
	}

	switch sel.Mode {
	case "set":
		s.game.SetSelection(client.PlayerID, sel.UnitIDs)
	case "add":
		s.game.AddToSelection(client.PlayerID, sel.UnitIDs)
	case "clear":
		s.game.ClearSelection(client.PlayerID)
	default:
		log.Printf("Unknown selection mode %q from client %d", sel.Mode, client.ID)
	}
}

// removeClient removes a client from the server
func (s *GameServer) removeClient(client *Client) {
	s.clientsLock.Lock()
	delete(s.clients, client.ID)
	s.clientsLock.Unlock()

	log.Printf("Client %d removed", client.ID)
}

// gameLoop drives the simulation at the configured tick rate. A lagging loop
// catches up with extra fixed steps, capped so a long stall degrades to slow
// motion instead of a spiral of ever-larger catch-up batches.
func (s *GameServer) gameLoop() {
	const maxCatchUpSteps = 5

	dt := s.tickInterval.Seconds()
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	var accumulated time.Duration
	last := time.Now()

	for s.running {
		<-ticker.C
		now := time.Now()
		accumulated += now.Sub(last)
		last = now

		steps := 0
		for accumulated >= s.tickInterval && steps < maxCatchUpSteps {
			s.game.Tick(dt, time.Now().UnixMilli())
			accumulated -= s.tickInterval
			steps++
		}
		if steps == maxCatchUpSteps {
			accumulated = 0 // too far behind, drop the debt
		}

		if s.game.CurrentTick%uint64(s.ticksPerUpdate) == 0 {
			s.broadcastState()
		}
	}
}

// broadcastState sends the current snapshot to every connected client
func (s *GameServer) broadcastState() {
	state := s.game.GetGameState()

	s.clientsLock.RLock()
	for _, client := range s.clients {
		if client.Connected {
			if err := writeMessage(client.Conn, GameStateUpdate, state); err != nil {
				log.Printf("Error sending state to client %d: %v", client.ID, err)
			}
		}
	}
	s.clientsLock.RUnlock()
}
