package server

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ags-games/partyhall/internal/protocol"
)

// hub fans frames out to a room's clients. Broadcast and Send never
// block: a client whose buffer is full misses the frame and resyncs from
// the next room:state_sync.
type hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	byPlayer map[string]*client

	logger *zap.Logger

	// onGameOver fires once per game-over frame so wins can be recorded
	// outside the room lock.
	onGameOver func(msg protocol.Message)
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		clients:  make(map[*client]struct{}),
		byPlayer: make(map[string]*client),
		logger:   logger,
	}
}

func (h *hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	// a reconnect replaces the player's previous socket
	if old, ok := h.byPlayer[c.playerID]; ok && old != c {
		delete(h.clients, old)
		old.closeSend()
	}
	h.clients[c] = struct{}{}
	h.byPlayer[c.playerID] = c
}

func (h *hub) unregister(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	if h.byPlayer[c.playerID] == c {
		delete(h.byPlayer, c.playerID)
	}
	c.closeSend()
	return true
}

func (h *hub) Broadcast(msg protocol.Message) {
	h.mu.RLock()
	for c := range h.clients {
		c.enqueue(msg)
	}
	h.mu.RUnlock()

	if h.onGameOver != nil &&
		(msg.Type == protocol.TypeQuizGameOver || msg.Type == protocol.TypeBoardGameOver) {
		go h.onGameOver(msg)
	}
}

func (h *hub) Send(playerID string, msg protocol.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.byPlayer[playerID]; ok {
		c.enqueue(msg)
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.closeSend()
	}
	h.clients = make(map[*client]struct{})
	h.byPlayer = make(map[string]*client)
}
