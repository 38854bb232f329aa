package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ags-games/partyhall/internal/apperrors"
	"github.com/ags-games/partyhall/internal/metrics"
	"github.com/ags-games/partyhall/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// generous limit: drawing submissions carry data URLs
	maxMessageSize = 4 << 20

	sendBuffer = 64
)

// client is one WebSocket connection bound to a seated player.
type client struct {
	conn     *websocket.Conn
	send     chan protocol.Message
	playerID string
	roomCode string
	logger   *zap.Logger

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, playerID, roomCode string, logger *zap.Logger) *client {
	return &client{
		conn:     conn,
		send:     make(chan protocol.Message, sendBuffer),
		playerID: playerID,
		roomCode: roomCode,
		logger:   logger,
	}
}

// enqueue drops the frame when the client's buffer is full.
func (c *client) enqueue(msg protocol.Message) {
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("client send buffer full, dropping frame",
			zap.String("player", c.playerID),
			zap.String("type", msg.Type))
	}
}

func (c *client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// readPump owns the read side. dispatch runs each inbound action;
// onClose runs exactly once when the connection dies.
func (c *client) readPump(dispatch func(*client, protocol.Message), onClose func(*client)) {
	defer func() {
		onClose(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed",
					zap.String("player", c.playerID),
					zap.Error(err))
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.enqueue(protocol.NewErrorMessage(apperrors.ErrInvalidPayload))
			continue
		}
		metrics.MessagesReceived.WithLabelValues(msg.Type).Inc()
		dispatch(c, msg)
	}
}

// writePump owns the write side and keeps the connection alive with
// pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
