package room

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ags-games/partyhall/internal/apperrors"
	"github.com/ags-games/partyhall/internal/ident"
)

// Seat limits per game type.
const (
	MaxQuizPlayers  = 8
	MaxBoardPlayers = 6
)

// RoomMeta is the directory-facing summary of a room.
type RoomMeta struct {
	Code        string    `json:"code"`
	GameType    string    `json:"game_type"`
	PlayerCount int       `json:"player_count"`
	MaxPlayers  int       `json:"max_players"`
	Joinable    bool      `json:"joinable"`
	CreatedAt   time.Time `json:"created_at"`
}

// Directory mirrors room summaries to external storage, best effort.
type Directory interface {
	SaveRoom(ctx context.Context, meta RoomMeta)
	DeleteRoom(ctx context.Context, code string)
}

// Registry owns every live room. Codes are unique across game types.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	ttl      time.Duration
	dir      Directory
	logger   *zap.Logger
	stopOnce sync.Once
	stop     chan struct{}
}

// NewRegistry builds a registry. dir may be nil when no mirror is
// configured.
func NewRegistry(ttl time.Duration, dir Directory, logger *zap.Logger) *Registry {
	r := &Registry{
		rooms:  make(map[string]*Room),
		ttl:    ttl,
		dir:    dir,
		logger: logger,
		stop:   make(chan struct{}),
	}
	go r.janitor()
	return r
}

// Create allocates a room with a fresh unique join code.
func (reg *Registry) Create(gameType string) (*Room, *apperrors.GameError) {
	maxPlayers := 0
	switch gameType {
	case GameQuiz:
		maxPlayers = MaxQuizPlayers
	case GameBoard:
		maxPlayers = MaxBoardPlayers
	default:
		return nil, apperrors.ErrInvalidPayload
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	var code string
	for {
		code = ident.NewRoomCode()
		if _, exists := reg.rooms[code]; !exists {
			break
		}
	}

	r := newRoom(code, gameType, maxPlayers, reg.ttl)
	reg.rooms[code] = r
	reg.logger.Info("room created",
		zap.String("code", code),
		zap.String("game_type", gameType))
	reg.mirror(r)
	return r, nil
}

// Get looks up a room by join code.
func (reg *Registry) Get(code string) (*Room, *apperrors.GameError) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[code]
	if !ok {
		return nil, apperrors.ErrRoomNotFound
	}
	return r, nil
}

// Remove tears down a room and drops it from the directory.
func (reg *Registry) Remove(code string) {
	reg.mu.Lock()
	r, ok := reg.rooms[code]
	if ok {
		delete(reg.rooms, code)
	}
	reg.mu.Unlock()

	if !ok {
		return
	}
	r.Dispose()
	reg.logger.Info("room removed", zap.String("code", code))
	if reg.dir != nil {
		reg.dir.DeleteRoom(context.Background(), code)
	}
}

// Meta builds the directory summary for a room.
func (reg *Registry) Meta(code string) (RoomMeta, *apperrors.GameError) {
	r, gerr := reg.Get(code)
	if gerr != nil {
		return RoomMeta{}, gerr
	}
	return metaOf(r), nil
}

// Mirror refreshes the directory entry after membership changes.
func (reg *Registry) Mirror(r *Room) {
	reg.mirror(r)
}

// Count returns the number of live rooms.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Close stops the janitor and disposes every room.
func (reg *Registry) Close() {
	reg.stopOnce.Do(func() { close(reg.stop) })

	reg.mu.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	reg.rooms = make(map[string]*Room)
	reg.mu.Unlock()

	for _, r := range rooms {
		r.Dispose()
	}
}

func (reg *Registry) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-reg.stop:
			return
		case now := <-ticker.C:
			reg.sweep(now)
		}
	}
}

func (reg *Registry) sweep(now time.Time) {
	reg.mu.RLock()
	var stale []string
	for code, r := range reg.rooms {
		if r.expired(now) {
			stale = append(stale, code)
		}
	}
	reg.mu.RUnlock()

	for _, code := range stale {
		reg.logger.Info("room expired", zap.String("code", code))
		reg.Remove(code)
	}
}

func (reg *Registry) mirror(r *Room) {
	if reg.dir == nil {
		return
	}
	reg.dir.SaveRoom(context.Background(), metaOf(r))
}

func metaOf(r *Room) RoomMeta {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomMeta{
		Code:        r.Code,
		GameType:    r.GameType,
		PlayerCount: len(r.players),
		MaxPlayers:  r.MaxPlayers,
		Joinable:    r.joinable && len(r.players) < r.MaxPlayers,
		CreatedAt:   r.CreatedAt,
	}
}
