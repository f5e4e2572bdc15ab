// pkg/network/spectator.go
package network

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cyohn55/RTS/pkg/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SpectatorHub pushes read-only game snapshots to websocket viewers. It is
// never gameplay-authoritative: spectators receive the same snapshots the
// TCP clients get but cannot send anything back.
type SpectatorHub struct {
	game       *engine.Game
	spectators map[*spectator]bool
	register   chan *spectator
	unregister chan *spectator
	done       chan struct{}
	mu         sync.Mutex
}

type spectator struct {
	conn *websocket.Conn
	send chan []byte
}

// NewSpectatorHub creates a hub broadcasting the game's state
func NewSpectatorHub(game *engine.Game) *SpectatorHub {
	return &SpectatorHub{
		game:       game,
		spectators: make(map[*spectator]bool),
		register:   make(chan *spectator),
		unregister: make(chan *spectator),
		done:       make(chan struct{}),
	}
}

// Run broadcasts snapshots at the configured update rate until Stop
func (h *SpectatorHub) Run() {
	updateRate := h.game.Config.NetworkConfig.UpdateRate
	if updateRate < 1 {
		updateRate = 20
	}
	ticker := time.NewTicker(time.Second / time.Duration(updateRate))
	defer ticker.Stop()

	for {
		select {
		case s := <-h.register:
			h.spectators[s] = true

		case s := <-h.unregister:
			if h.spectators[s] {
				delete(h.spectators, s)
				close(s.send)
			}

		case <-ticker.C:
			if len(h.spectators) == 0 {
				continue
			}
			data, err := json.Marshal(h.game.GetGameState())
			if err != nil {
				continue
			}
			for s := range h.spectators {
				select {
				case s.send <- data:
				default:
					// Viewer too slow, drop it.
					delete(h.spectators, s)
					close(s.send)
				}
			}

		case <-h.done:
			for s := range h.spectators {
				delete(h.spectators, s)
				close(s.send)
			}
			return
		}
	}
}

// Stop shuts the hub down and disconnects all viewers
func (h *SpectatorHub) Stop() {
	close(h.done)
}

// Handler upgrades HTTP requests into spectator websocket sessions
func (h *SpectatorHub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println(err)
			return
		}

		s := &spectator{
			conn: conn,
			send: make(chan []byte, 16),
		}

		h.register <- s
		go h.writePump(s)
		go h.readPump(s)
	}
}

// readPump drains (and discards) incoming frames so pings and close frames
// are processed
func (h *SpectatorHub) readPump(s *spectator) {
	defer func() {
		h.unregister <- s
		s.conn.Close()
	}()

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *SpectatorHub) writePump(s *spectator) {
	defer s.conn.Close()
	for message := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	s.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
