// pkg/network/client.go
package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cyohn55/RTS/pkg/config"
	"github.com/cyohn55/RTS/pkg/engine"
	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/event"
	"github.com/cyohn55/RTS/pkg/physics"
)

// Client event types
const (
	ClientDisconnected    event.Type = "client_disconnected"
	ClientReconnected     event.Type = "client_reconnected"
	ClientReconnectFailed event.Type = "client_reconnect_failed"
)

// GameClient handles network communication with the server. Connection
// attempts run through the circuit breaker so a dead server fails fast
// instead of hanging every retry.
type GameClient struct {
	conn           net.Conn
	clientID       uint64
	playerID       int
	serverAddress  string
	playerName     string
	seat           int
	connected      bool
	receivedStates chan *engine.GameState
	eventBus       *event.Bus
	netService     *NetworkService
	mu             sync.Mutex

	latency              time.Duration
	pingInterval         time.Duration
	reconnectDelay       time.Duration
	maxReconnectAttempts int

	ctx               context.Context
	cancel            context.CancelFunc
	connectionTimeout time.Duration
	readTimeout       time.Duration
	writeTimeout      time.Duration
}

// NewGameClient creates a new game client
func NewGameClient(eventBus *event.Bus) *GameClient {
	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		envConfig = &config.EnvironmentConfig{
			ReadTimeout:                       30 * time.Second,
			WriteTimeout:                      30 * time.Second,
			CircuitBreakerMaxRequests:         3,
			CircuitBreakerMaxConsecutiveFails: 5,
			CircuitBreakerInterval:            60 * time.Second,
			CircuitBreakerTimeout:             30 * time.Second,
		}
	}

	return &GameClient{
		receivedStates:       make(chan *engine.GameState, 10),
		eventBus:             eventBus,
		netService:           NewNetworkService(envConfig),
		pingInterval:         5 * time.Second,
		reconnectDelay:       3 * time.Second,
		maxReconnectAttempts: 5,
		connectionTimeout:    30 * time.Second,
		readTimeout:          envConfig.ReadTimeout,
		writeTimeout:         envConfig.WriteTimeout,
	}
}

// Connect connects to the game server and claims a seat. A negative seat
// asks the server for the first unclaimed human seat.
func (c *GameClient) Connect(address, playerName string, seat int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.serverAddress = address
	c.playerName = playerName
	c.seat = seat

	return c.netService.Execute(c.ctx, func() error {
		if c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
		c.connected = false

		if err := c.dial(address); err != nil {
			return err
		}
		if err := c.handshake(playerName, seat); err != nil {
			c.cleanupConnection()
			return err
		}

		go c.messageLoop()
		go c.pingLoop()
		return nil
	})
}

// dial establishes the TCP connection with a timeout
func (c *GameClient) dial(address string) error {
	ctx, cancel := context.WithTimeout(c.ctx, c.connectionTimeout)
	defer cancel()

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}

	c.conn = conn
	return nil
}

// handshake performs the connect request/response exchange
func (c *GameClient) handshake(playerName string, seat int) error {
	req := ConnectRequestData{PlayerName: playerName, Seat: seat}
	if err := c.writeLocked(ConnectRequest, req); err != nil {
		return fmt.Errorf("failed to send connect request: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(c.connectionTimeout))
	defer c.conn.SetReadDeadline(time.Time{})

	msgType, data, err := readMessage(c.conn)
	if err != nil {
		return fmt.Errorf("failed to read connect response: %w", err)
	}
	if msgType != ConnectResponse {
		return fmt.Errorf("unexpected response type: %d", msgType)
	}

	var resp ConnectResponseData
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to parse connect response: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("server rejected connection: %s", resp.Error)
	}

	c.playerID = resp.PlayerID
	c.clientID = resp.ClientID
	c.connected = true
	return nil
}

// cleanupConnection safely closes the connection and resets state (must be
// called with lock held)
func (c *GameClient) cleanupConnection() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Disconnect disconnects from the game server
func (c *GameClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	c.writeLocked(DisconnectNotification, nil)
	c.cleanupConnection()
	return nil
}

// PlayerID returns the seat assigned during the handshake
func (c *GameClient) PlayerID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

// SendMoveOrder directs units toward a ground target
func (c *GameClient) SendMoveOrder(unitIDs []entity.ID, target physics.Vector3) error {
	return c.send(MoveOrderMessage, MoveOrderData{UnitIDs: unitIDs, Target: target})
}

// SendPatrolOrder assigns a patrol route to a queen
func (c *GameClient) SendPatrolOrder(queenID entity.ID, start, end physics.Vector3) error {
	return c.send(PatrolOrderMessage, PatrolOrderData{QueenID: queenID, Start: start, End: end})
}

// SendSelection replaces the server-side selection set
func (c *GameClient) SendSelection(unitIDs []entity.ID) error {
	return c.send(SelectionMessage, SelectionData{Mode: "set", UnitIDs: unitIDs})
}

// ClearSelection empties the server-side selection set
func (c *GameClient) ClearSelection() error {
	return c.send(SelectionMessage, SelectionData{Mode: "clear"})
}

// GetLatency returns the most recently measured round-trip latency
func (c *GameClient) GetLatency() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latency
}

// GetGameStateChannel returns the channel for receiving game states
func (c *GameClient) GetGameStateChannel() <-chan *engine.GameState {
	return c.receivedStates
}

// send serializes and writes one message under the client lock
func (c *GameClient) send(msgType MessageType, msg interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return errors.New("not connected")
	}
	return c.writeLocked(msgType, msg)
}

// writeLocked writes a message with the write deadline applied. The caller
// holds the client lock.
func (c *GameClient) writeLocked(msgType MessageType, msg interface{}) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	defer c.conn.SetWriteDeadline(time.Time{})
	return writeMessage(c.conn, msgType, msg)
}

// messageLoop handles incoming messages from the server
func (c *GameClient) messageLoop() {
	for c.connected {
		c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		msgType, data, err := readMessage(c.conn)
		if err != nil {
			if c.connected {
				c.handleDisconnect(err)
			}
			return
		}

		switch msgType {
		case GameStateUpdate:
			c.handleGameStateUpdate(data)

		case PingResponse:
			c.handlePingResponse(data)

		default:
			// Ignore unknown message types
		}
	}
}

// handleGameStateUpdate pushes a snapshot to the state channel, dropping it
// if the consumer is behind. Rendering only ever wants the latest state.
func (c *GameClient) handleGameStateUpdate(data []byte) {
	var state engine.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return
	}

	select {
	case c.receivedStates <- &state:
	default:
	}
}

// handlePingResponse processes a ping response
func (c *GameClient) handlePingResponse(data []byte) {
	var pingTime time.Time
	if err := json.Unmarshal(data, &pingTime); err != nil {
		return
	}

	c.mu.Lock()
	c.latency = time.Since(pingTime)
	c.mu.Unlock()
}

// pingLoop periodically sends ping requests to the server
func (c *GameClient) pingLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for c.connected {
		<-ticker.C
		c.send(PingRequest, time.Now())
	}
}

// handleDisconnect handles an unexpected disconnection
func (c *GameClient) handleDisconnect(err error) {
	c.mu.Lock()
	wasConnected := c.connected
	c.connected = false
	c.mu.Unlock()

	if !wasConnected {
		return
	}

	c.eventBus.Publish(&event.BaseEvent{
		EventType: ClientDisconnected,
		Source:    c,
	})

	go c.attemptReconnect()
}

// attemptReconnect tries to re-establish the session with the stored
// handshake parameters. The circuit breaker inside Connect keeps a dead
// server from absorbing every attempt.
func (c *GameClient) attemptReconnect() {
	for attempt := 1; attempt <= c.maxReconnectAttempts; attempt++ {
		time.Sleep(c.reconnectDelay)

		if err := c.Connect(c.serverAddress, c.playerName, c.seat); err == nil {
			c.eventBus.Publish(&event.BaseEvent{
				EventType: ClientReconnected,
				Source:    c,
			})
			return
		}
	}

	c.eventBus.Publish(&event.BaseEvent{
		EventType: ClientReconnectFailed,
		Source:    c,
	})
}
