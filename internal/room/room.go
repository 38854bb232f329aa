// Package room implements the shared room registry: join codes, seats,
// reconnect sessions and host failover, independent of game rules.
package room

import (
	"sync"
	"time"

	"github.com/ags-games/partyhall/internal/apperrors"
	"github.com/ags-games/partyhall/internal/ident"
)

// Game types hosted by the registry.
const (
	GameQuiz  = "quiz"
	GameBoard = "board"
)

// Player roles within a room.
const (
	RoleHost   = "host"
	RolePlayer = "player"
)

// PieceColors is the palette board players pick from.
var PieceColors = []string{"red", "blue", "green", "yellow", "purple", "orange"}

// Player is one seat in a room.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Seat      int       `json:"seat"`
	Color     string    `json:"color,omitempty"`
	Connected bool      `json:"connected"`
	JoinedAt  time.Time `json:"-"`
}

type session struct {
	playerID  string
	expiresAt time.Time
}

// Room is one live party. All mutable state is guarded by mu; engines
// mutate their own state inside WithLock so room and game state share a
// single lock.
type Room struct {
	Code       string
	GameType   string
	MaxPlayers int
	CreatedAt  time.Time

	mu           sync.Mutex
	hostID       string
	players      []*Player
	sessions     map[string]session // token -> session
	playerTokens map[string]string  // playerID -> live token
	sessionTTL   time.Duration
	joinable     bool
	lastActive   time.Time
	service      Service
}

func newRoom(code, gameType string, maxPlayers int, ttl time.Duration) *Room {
	now := time.Now()
	return &Room{
		Code:         code,
		GameType:     gameType,
		MaxPlayers:   maxPlayers,
		CreatedAt:    now,
		sessions:     make(map[string]session),
		playerTokens: make(map[string]string),
		sessionTTL:   ttl,
		joinable:     true,
		lastActive:   now,
		service:      NopService{},
	}
}

// AttachService installs the game engine. Must be called before players
// join.
func (r *Room) AttachService(s Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.service = s
}

// WithLock runs fn with the room lock held. Engines use it to serialize
// actions against membership changes.
func (r *Room) WithLock(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = time.Now()
	fn()
}

// Join seats a new player and issues a session token.
func (r *Room) Join(name, color string) (*Player, string, *apperrors.GameError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = time.Now()

	if !r.joinable {
		return nil, "", apperrors.ErrAlreadyStarted
	}
	if len(r.players) >= r.MaxPlayers {
		return nil, "", apperrors.ErrRoomFull
	}

	role := RolePlayer
	if len(r.players) == 0 {
		role = RoleHost
	}

	if r.GameType == GameBoard {
		picked, gerr := r.resolveColorLocked(color)
		if gerr != nil {
			return nil, "", gerr
		}
		color = picked
	} else {
		color = ""
	}

	p := &Player{
		ID:        ident.NewID("player"),
		Name:      name,
		Role:      role,
		Seat:      r.nextSeatLocked(),
		Color:     color,
		Connected: true,
		JoinedAt:  time.Now(),
	}
	r.players = append(r.players, p)
	if role == RoleHost {
		r.hostID = p.ID
	}

	token := r.issueSessionLocked(p.ID)
	r.service.OnPlayerJoined(p)
	return p, token, nil
}

// Reconnect validates a session token and marks the player connected.
// A fresh token is issued; the old one stops working.
func (r *Room) Reconnect(token string) (*Player, string, *apperrors.GameError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = time.Now()

	sess, ok := r.sessions[token]
	if !ok || time.Now().After(sess.expiresAt) {
		delete(r.sessions, token)
		return nil, "", apperrors.ErrInvalidSession
	}
	p := r.playerByIDLocked(sess.playerID)
	if p == nil {
		delete(r.sessions, token)
		return nil, "", apperrors.ErrInvalidSession
	}

	p.Connected = true
	fresh := r.issueSessionLocked(p.ID)
	return p, fresh, nil
}

// Authenticate resolves a token to its player without side effects.
func (r *Room) Authenticate(token string) (*Player, *apperrors.GameError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[token]
	if !ok || time.Now().After(sess.expiresAt) {
		return nil, apperrors.ErrInvalidSession
	}
	p := r.playerByIDLocked(sess.playerID)
	if p == nil {
		return nil, apperrors.ErrInvalidSession
	}
	return p, nil
}

// MarkConnected flips the connected flag when a socket attaches.
func (r *Room) MarkConnected(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.playerByIDLocked(playerID); p != nil {
		p.Connected = true
	}
}

// Disconnect marks a player offline and fails the host seat over to the
// first connected player if the host dropped.
func (r *Room) Disconnect(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = time.Now()

	p := r.playerByIDLocked(playerID)
	if p == nil || !p.Connected {
		return
	}
	p.Connected = false
	r.service.OnPlayerDisconnected(p)

	if playerID == r.hostID {
		r.transferHostLocked()
	}
}

// Remove drops a player entirely: seat renumbering, session purge, and
// host transfer when needed.
func (r *Room) Remove(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(playerID)
}

// RemoveLocked is the lock-held variant for engines that remove players
// from inside WithLock (kicks).
func (r *Room) RemoveLocked(playerID string) {
	r.removeLocked(playerID)
}

func (r *Room) removeLocked(playerID string) {
	idx := -1
	for i, p := range r.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	removed := r.players[idx]
	r.players = append(r.players[:idx], r.players[idx+1:]...)

	if tok, ok := r.playerTokens[playerID]; ok {
		delete(r.sessions, tok)
		delete(r.playerTokens, playerID)
	}

	// keep seats dense, preserving join order
	for i, p := range r.players {
		p.Seat = i
	}

	if playerID == r.hostID {
		r.hostID = ""
		if len(r.players) > 0 {
			next := r.players[0]
			next.Role = RoleHost
			r.hostID = next.ID
			r.service.OnHostTransferred(next.ID)
		}
	}

	r.service.OnPlayerRemoved(removed)
}

func (r *Room) transferHostLocked() {
	for _, p := range r.players {
		if p.Connected && p.ID != r.hostID {
			old := r.playerByIDLocked(r.hostID)
			if old != nil {
				old.Role = RolePlayer
			}
			p.Role = RoleHost
			r.hostID = p.ID
			r.service.OnHostTransferred(p.ID)
			return
		}
	}
}

// SetJoinable closes or reopens the room to new players. Engines close
// it when a game that cannot absorb late joins starts. Lock must be held.
func (r *Room) SetJoinable(v bool) {
	r.joinable = v
}

// HostID returns the current host. Lock-held callers only.
func (r *Room) HostID() string {
	return r.hostID
}

// Players returns the live seat slice. Lock-held callers only; the slice
// must not be retained past the lock.
func (r *Room) Players() []*Player {
	return r.players
}

// PlayerByID returns a seat by id. Lock-held callers only.
func (r *Room) PlayerByID(id string) *Player {
	return r.playerByIDLocked(id)
}

// Snapshot returns copied seat data for handlers outside the lock.
func (r *Room) Snapshot() (hostID string, players []Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	players = make([]Player, len(r.players))
	for i, p := range r.players {
		players[i] = *p
	}
	return r.hostID, players
}

// AvailableColors lists palette colors no seat holds yet.
func (r *Room) AvailableColors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	taken := make(map[string]bool, len(r.players))
	for _, p := range r.players {
		taken[p.Color] = true
	}
	out := make([]string, 0, len(PieceColors))
	for _, c := range PieceColors {
		if !taken[c] {
			out = append(out, c)
		}
	}
	return out
}

// Dispose tears the room down.
func (r *Room) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.service.Dispose()
}

func (r *Room) expired(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return now.Sub(r.lastActive) > r.sessionTTL
}

func (r *Room) playerByIDLocked(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) nextSeatLocked() int {
	return len(r.players)
}

func (r *Room) issueSessionLocked(playerID string) string {
	if old, ok := r.playerTokens[playerID]; ok {
		delete(r.sessions, old)
	}
	token := ident.NewSessionToken()
	r.sessions[token] = session{playerID: playerID, expiresAt: time.Now().Add(r.sessionTTL)}
	r.playerTokens[playerID] = token
	return token
}

func (r *Room) resolveColorLocked(want string) (string, *apperrors.GameError) {
	taken := make(map[string]bool, len(r.players))
	for _, p := range r.players {
		taken[p.Color] = true
	}
	if want != "" {
		valid := false
		for _, c := range PieceColors {
			if c == want {
				valid = true
				break
			}
		}
		if !valid {
			return "", apperrors.ErrInvalidPayload
		}
		if taken[want] {
			return "", apperrors.ErrColorTaken
		}
		return want, nil
	}
	for _, c := range PieceColors {
		if !taken[c] {
			return c, nil
		}
	}
	return "", apperrors.ErrRoomFull
}
