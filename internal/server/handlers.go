package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ags-games/partyhall/internal/apperrors"
	"github.com/ags-games/partyhall/internal/metrics"
	"github.com/ags-games/partyhall/internal/protocol"
	"github.com/ags-games/partyhall/internal/room"
)

type createRoomRequest struct {
	PlayerName string `json:"player_name" binding:"required,min=1,max=32"`
	Color      string `json:"color"`
}

type joinRequest struct {
	PlayerName string `json:"player_name" binding:"required,min=1,max=32"`
	Color      string `json:"color"`
}

type reconnectRequest struct {
	SessionToken string `json:"session_token" binding:"required"`
}

type joinResponse struct {
	RoomCode     string `json:"room_code"`
	GameType     string `json:"game_type"`
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	Role         string `json:"role"`
	Color        string `json:"color,omitempty"`
	SessionToken string `json:"session_token"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"rooms":  s.registry.Count(),
	})
}

func (s *Server) handleCreateQuizRoom(c *gin.Context) {
	s.createAndJoin(c, room.GameQuiz)
}

func (s *Server) handleCreateBoardRoom(c *gin.Context) {
	s.createAndJoin(c, room.GameBoard)
}

func (s *Server) createAndJoin(c *gin.Context, gameType string) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeGameError(c, apperrors.ErrInvalidPayload)
		return
	}

	lr, err := s.createRoom(gameType)
	if err != nil {
		writeGameError(c, apperrors.ErrInvalidPayload)
		return
	}

	p, token, gerr := lr.room.Join(req.PlayerName, req.Color)
	if gerr != nil {
		s.registry.Remove(lr.room.Code)
		writeGameError(c, gerr)
		return
	}
	s.registry.Mirror(lr.room)

	c.JSON(http.StatusCreated, joinResponse{
		RoomCode:     lr.room.Code,
		GameType:     gameType,
		PlayerID:     p.ID,
		PlayerName:   p.Name,
		Role:         p.Role,
		Color:        p.Color,
		SessionToken: token,
	})
}

func (s *Server) handleJoin(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeGameError(c, apperrors.ErrInvalidPayload)
		return
	}

	r, gerr := s.registry.Get(c.Param("code"))
	if gerr != nil {
		writeGameError(c, gerr)
		return
	}
	p, token, gerr := r.Join(req.PlayerName, req.Color)
	if gerr != nil {
		writeGameError(c, gerr)
		return
	}
	s.registry.Mirror(r)

	c.JSON(http.StatusOK, joinResponse{
		RoomCode:     r.Code,
		GameType:     r.GameType,
		PlayerID:     p.ID,
		PlayerName:   p.Name,
		Role:         p.Role,
		Color:        p.Color,
		SessionToken: token,
	})
}

func (s *Server) handleReconnect(c *gin.Context) {
	var req reconnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeGameError(c, apperrors.ErrInvalidPayload)
		return
	}

	r, gerr := s.registry.Get(c.Param("code"))
	if gerr != nil {
		writeGameError(c, gerr)
		return
	}
	p, token, gerr := r.Reconnect(req.SessionToken)
	if gerr != nil {
		writeGameError(c, gerr)
		return
	}

	c.JSON(http.StatusOK, joinResponse{
		RoomCode:     r.Code,
		GameType:     r.GameType,
		PlayerID:     p.ID,
		PlayerName:   p.Name,
		Role:         p.Role,
		Color:        p.Color,
		SessionToken: token,
	})
}

func (s *Server) handleMeta(c *gin.Context) {
	meta, gerr := s.registry.Meta(c.Param("code"))
	if gerr != nil {
		writeGameError(c, gerr)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (s *Server) handleColors(c *gin.Context) {
	r, gerr := s.registry.Get(c.Param("code"))
	if gerr != nil {
		writeGameError(c, gerr)
		return
	}
	if r.GameType != room.GameBoard {
		writeGameError(c, apperrors.ErrInvalidAction)
		return
	}
	c.JSON(http.StatusOK, gin.H{"colors": r.AvailableColors()})
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard not configured"})
		return
	}
	gameType := c.Param("game_type")
	if gameType != room.GameQuiz && gameType != room.GameBoard {
		writeGameError(c, apperrors.ErrInvalidPayload)
		return
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	rows, lerr := s.store.TopWinners(ctx, gameType, limit)
	if lerr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": rows})
}

// handleWebSocket upgrades a live game connection. The client must
// present the full tuple it was handed at join time: room code, player
// id, session token and the game type it believes it joined.
func (s *Server) handleWebSocket(c *gin.Context) {
	code := c.Param("code")
	token := c.Query("token")

	lr, ok := s.liveRoomByCode(code)
	if !ok {
		writeGameError(c, apperrors.ErrRoomNotFound)
		return
	}
	if gameType := c.Query("game_type"); gameType != lr.room.GameType {
		writeGameError(c, apperrors.ErrRoomNotFound)
		return
	}
	p, gerr := lr.room.Authenticate(token)
	if gerr != nil {
		writeGameError(c, gerr)
		return
	}
	if c.Query("player_id") != p.ID {
		writeGameError(c, apperrors.ErrInvalidSession)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := newClient(conn, p.ID, code, s.logger)
	lr.hub.register(cl)
	lr.room.MarkConnected(p.ID)
	metrics.ClientsConnected.Inc()
	s.logger.Info("client connected",
		zap.String("room", code),
		zap.String("player", p.ID))

	// fresh snapshot for the new socket before any broadcast reaches it
	var snapshot protocol.Message
	lr.room.WithLock(func() {
		if lr.quiz != nil {
			snapshot = lr.quiz.Snapshot()
		} else {
			snapshot = lr.board.Snapshot()
		}
	})
	cl.enqueue(snapshot)

	go cl.writePump()
	go cl.readPump(
		func(cl *client, msg protocol.Message) { s.dispatch(lr, cl, msg) },
		func(cl *client) {
			if lr.hub.unregister(cl) {
				lr.room.Disconnect(cl.playerID)
				metrics.ClientsConnected.Dec()
				s.logger.Info("client disconnected",
					zap.String("room", code),
					zap.String("player", cl.playerID))
			}
		},
	)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.Server.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// recordWin runs outside the room lock, fed by the hub.
func (s *Server) recordWin(lr *liveRoom, msg protocol.Message) {
	if s.store == nil {
		return
	}
	var payload struct {
		WinnerID string `json:"winner_id"`
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.WinnerID == "" {
		return
	}
	_, players := lr.room.Snapshot()
	for _, p := range players {
		if p.ID == payload.WinnerID {
			s.store.RecordWin(context.Background(), lr.room.GameType, p.Name)
			return
		}
	}
}

func writeGameError(c *gin.Context, gerr *apperrors.GameError) {
	c.JSON(httpStatusOf(gerr), gin.H{"code": gerr.Code, "message": gerr.Message})
}

func httpStatusOf(gerr *apperrors.GameError) int {
	switch gerr.Code {
	case "ROOM_NOT_FOUND":
		return http.StatusNotFound
	case "INVALID_SESSION":
		return http.StatusUnauthorized
	case "FORBIDDEN":
		return http.StatusForbidden
	case "INVALID_PAYLOAD":
		return http.StatusBadRequest
	default: // ROOM_FULL, ALREADY_STARTED, conflicts
		return http.StatusConflict
	}
}
