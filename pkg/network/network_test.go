// pkg/network/network_test.go
package network

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/cyohn55/RTS/pkg/config"
	"github.com/cyohn55/RTS/pkg/engine"
	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/physics"
)

func TestWriteReadMessage_RoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	order := MoveOrderData{
		UnitIDs: []entity.ID{1, 2, 3},
		Target:  physics.Vector3{X: 10, Z: -5},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- writeMessage(client, MoveOrderMessage, order)
	}()

	msgType, data, err := readMessage(server)
	if err != nil {
		t.Fatalf("readMessage: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("writeMessage: %v", err)
	}
	if msgType != MoveOrderMessage {
		t.Errorf("message type = %d, want %d", msgType, MoveOrderMessage)
	}
	if len(data) == 0 {
		t.Error("empty payload")
	}
}

func TestWriteMessage_EmptyPayload(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go writeMessage(client, DisconnectNotification, nil)

	msgType, data, err := readMessage(server)
	if err != nil {
		t.Fatalf("readMessage: %v", err)
	}
	if msgType != DisconnectNotification || len(data) != 0 {
		t.Errorf("got type %d with %d bytes, want empty disconnect", msgType, len(data))
	}
}

func newServerWithMatch(t *testing.T) *GameServer {
	t.Helper()
	cfg := config.DefaultConfig()
	g := engine.NewGame(cfg, entity.DefaultSpecies())
	if err := g.InitializeMatch(cfg.Players, 0); err != nil {
		t.Fatalf("InitializeMatch: %v", err)
	}
	return NewGameServer(g, 4)
}

func TestClaimSeat(t *testing.T) {
	s := newServerWithMatch(t)

	// Automatic assignment picks the human seat (player 0 in the default
	// config; player 1 is AI).
	seat, err := s.claimSeat(-1)
	if err != nil || seat != 0 {
		t.Fatalf("claimSeat(-1) = %d, %v; want 0, nil", seat, err)
	}

	if _, err := s.claimSeat(1); err == nil {
		t.Error("AI seat claimable")
	}
	if _, err := s.claimSeat(5); err == nil {
		t.Error("nonexistent seat claimable")
	}

	// Once a connected client holds seat 0, nothing is left to assign.
	s.clients[1] = &Client{ID: 1, PlayerID: 0, Connected: true}
	if _, err := s.claimSeat(-1); err == nil {
		t.Error("claimed a seat with all human seats taken")
	}
	if _, err := s.claimSeat(0); err == nil {
		t.Error("occupied seat claimable")
	}
}

func TestNetworkService_OpensAfterConsecutiveFailures(t *testing.T) {
	envConfig := &config.EnvironmentConfig{
		CircuitBreakerMaxRequests:         1,
		CircuitBreakerInterval:            time.Minute,
		CircuitBreakerTimeout:             time.Minute,
		CircuitBreakerMaxConsecutiveFails: 2,
	}
	ns := NewNetworkService(envConfig)

	fail := func() error { return errors.New("connection refused") }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := ns.Execute(ctx, fail); err == nil {
			t.Fatal("failing operation reported success")
		}
	}

	if state := ns.GetState(); state != gobreaker.StateOpen {
		t.Errorf("breaker state = %v after consecutive failures, want open", state)
	}

	// With the circuit open, operations fail fast without running.
	ran := false
	ns.Execute(ctx, func() error { ran = true; return nil })
	if ran {
		t.Error("operation executed while the circuit was open")
	}
}

func TestNetworkService_SucceedsWhenClosed(t *testing.T) {
	envConfig := &config.EnvironmentConfig{
		CircuitBreakerMaxRequests:         3,
		CircuitBreakerInterval:            time.Minute,
		CircuitBreakerTimeout:             time.Minute,
		CircuitBreakerMaxConsecutiveFails: 5,
	}
	ns := NewNetworkService(envConfig)

	if err := ns.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("successful operation returned error: %v", err)
	}
	if state := ns.GetState(); state != gobreaker.StateClosed {
		t.Errorf("breaker state = %v, want closed", state)
	}
}
