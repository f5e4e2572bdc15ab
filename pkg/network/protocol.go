// pkg/network/protocol.go
package network

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/physics"
)

// MessageType defines the type of network message
type MessageType byte

const (
	ConnectRequest MessageType = iota
	ConnectResponse
	DisconnectNotification
	GameStateUpdate
	MoveOrderMessage
	PatrolOrderMessage
	SelectionMessage
	PingRequest
	PingResponse
)

// ConnectRequestData is the handshake payload: a display name and the seat
// the client wants to occupy. A negative seat asks the server to assign the
// first unclaimed human seat.
type ConnectRequestData struct {
	PlayerName string `json:"playerName"`
	Seat       int    `json:"seat"`
}

// ConnectResponseData is the server's handshake reply
type ConnectResponseData struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	PlayerID int    `json:"playerID"`
	ClientID uint64 `json:"clientID"`
}

// MoveOrderData directs a set of units toward a ground target
type MoveOrderData struct {
	UnitIDs []entity.ID     `json:"unitIDs"`
	Target  physics.Vector3 `json:"target"`
}

// PatrolOrderData assigns a two-point patrol to a queen
type PatrolOrderData struct {
	QueenID entity.ID       `json:"queenID"`
	Start   physics.Vector3 `json:"start"`
	End     physics.Vector3 `json:"end"`
}

// SelectionData replaces, extends, or clears the client's selection
type SelectionData struct {
	Mode    string      `json:"mode"` // "set", "add", or "clear"
	UnitIDs []entity.ID `json:"unitIDs,omitempty"`
}

// maxWireMessage is the largest frame the length prefix can carry
const maxWireMessage = 65535

// readMessage reads one length-prefixed message from a connection
func readMessage(conn net.Conn) (MessageType, []byte, error) {
	var msgType MessageType
	if err := binary.Read(conn, binary.BigEndian, &msgType); err != nil {
		return 0, nil, err
	}

	var msgLen uint16
	if err := binary.Read(conn, binary.BigEndian, &msgLen); err != nil {
		return 0, nil, err
	}

	data := make([]byte, msgLen)
	if _, err := io.ReadFull(conn, data); err != nil {
		return 0, nil, err
	}

	return msgType, data, nil
}

// writeMessage writes one length-prefixed JSON message to a connection
func writeMessage(conn net.Conn, msgType MessageType, msg interface{}) error {
	var data []byte
	if msg != nil {
		var err error
		data, err = json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
	}

	if len(data) > maxWireMessage {
		return errors.New("message too large")
	}

	if err := binary.Write(conn, binary.BigEndian, msgType); err != nil {
		return err
	}
	if err := binary.Write(conn, binary.BigEndian, uint16(len(data))); err != nil {
		return err
	}
	if _, err := conn.Write(data); err != nil {
		return err
	}

	return nil
}
