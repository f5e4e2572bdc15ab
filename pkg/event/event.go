// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Common event types
const (
	MatchStarted     Type = "match_started"
	MatchEnded       Type = "match_ended"
	UnitSpawned      Type = "unit_spawned"
	UnitDestroyed    Type = "unit_destroyed"
	OrderIssued      Type = "order_issued"
	PatrolAssigned   Type = "patrol_assigned"
	GateStateChanged Type = "gate_state_changed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Bus manages event subscriptions and dispatching. Publishing is synchronous;
// the simulation publishes from inside the tick, so handlers must not call
// back into the game.
type Bus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers, ok := b.handlers[event.GetType()]
	b.mu.RUnlock()

	if !ok {
		return
	}

	for _, handler := range handlers {
		handler(event)
	}
}

// UnitEvent contains information about unit-related events
type UnitEvent struct {
	BaseEvent
	UnitID   uint64
	PlayerID int
	Species  string
}

// NewUnitEvent creates a new unit event
func NewUnitEvent(eventType Type, source interface{}, unitID uint64, playerID int, species string) *UnitEvent {
	return &UnitEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		UnitID:   unitID,
		PlayerID: playerID,
		Species:  species,
	}
}

// OrderEvent contains information about issued orders
type OrderEvent struct {
	BaseEvent
	PlayerID int
	UnitIDs  []uint64
}

// NewOrderEvent creates a new order event
func NewOrderEvent(eventType Type, source interface{}, playerID int, unitIDs []uint64) *OrderEvent {
	return &OrderEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		PlayerID: playerID,
		UnitIDs:  unitIDs,
	}
}

// GateEvent contains information about gate state transitions
type GateEvent struct {
	BaseEvent
	Gate  string
	State string
}

// NewGateEvent creates a new gate event
func NewGateEvent(source interface{}, gate, state string) *GateEvent {
	return &GateEvent{
		BaseEvent: BaseEvent{
			EventType: GateStateChanged,
			Source:    source,
		},
		Gate:  gate,
		State: state,
	}
}

// MatchEvent contains information about match lifecycle changes
type MatchEvent struct {
	BaseEvent
	WinnerID int
}

// NewMatchEvent creates a new match event
func NewMatchEvent(eventType Type, source interface{}, winnerID int) *MatchEvent {
	return &MatchEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		WinnerID: winnerID,
	}
}
