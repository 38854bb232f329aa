// Package server wires the HTTP API, the WebSocket transport and the
// game engines together.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ags-games/partyhall/internal/config"
	"github.com/ags-games/partyhall/internal/content"
	"github.com/ags-games/partyhall/internal/game/board"
	"github.com/ags-games/partyhall/internal/game/quiz"
	"github.com/ags-games/partyhall/internal/metrics"
	"github.com/ags-games/partyhall/internal/protocol"
	"github.com/ags-games/partyhall/internal/room"
	"github.com/ags-games/partyhall/internal/storage"
)

// liveRoom bundles a room with its engine and fan-out hub.
type liveRoom struct {
	room  *room.Room
	hub   *hub
	quiz  *quiz.Engine
	board *board.Engine
}

// Server hosts the rooms.
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *room.Registry
	store    *storage.RedisStore // nil when no mirror is configured

	questions []content.Question
	boardDef  []content.Tile

	mu    sync.RWMutex
	rooms map[string]*liveRoom

	http *http.Server
	stop chan struct{}
}

// New builds the server. store may be nil.
func New(cfg *config.Config, logger *zap.Logger, store *storage.RedisStore) (*Server, error) {
	questions, err := content.LoadQuestions(cfg.Content.QuizPath)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	boardDef, err := content.LoadBoard(cfg.Content.BoardPath)
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}

	var dir room.Directory
	if store != nil {
		dir = store
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		registry:  room.NewRegistry(cfg.Game.SessionTTL(), dir, logger),
		store:     store,
		questions: questions,
		boardDef:  boardDef,
		rooms:     make(map[string]*liveRoom),
		stop:      make(chan struct{}),
	}
	return s, nil
}

// Router builds the gin handler tree.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.Server.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = s.cfg.Server.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/quiz/rooms/create", s.handleCreateQuizRoom)
		api.POST("/board/rooms/create", s.handleCreateBoardRoom)
		api.POST("/rooms/:code/join", s.handleJoin)
		api.POST("/rooms/:code/reconnect", s.handleReconnect)
		api.GET("/rooms/:code/meta", s.handleMeta)
		api.GET("/rooms/:code/colors", s.handleColors)
		api.GET("/leaderboard/:game_type", s.handleLeaderboard)
	}

	r.GET("/ws/:code", s.handleWebSocket)
	return r
}

// Run serves until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.http = &http.Server{Addr: addr, Handler: s.Router()}

	go s.sweepLoop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	close(s.stop)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)

	s.mu.Lock()
	for _, lr := range s.rooms {
		lr.hub.closeAll()
	}
	s.rooms = make(map[string]*liveRoom)
	s.mu.Unlock()
	s.registry.Close()
	return err
}

// createRoom allocates a registry room plus engine and hub.
func (s *Server) createRoom(gameType string) (*liveRoom, error) {
	r, gerr := s.registry.Create(gameType)
	if gerr != nil {
		return nil, gerr
	}

	h := newHub(s.logger)
	lr := &liveRoom{room: r, hub: h}
	switch gameType {
	case room.GameQuiz:
		lr.quiz = quiz.New(r, s.cfg.Game, s.questions, h, s.logger)
		r.AttachService(lr.quiz)
	case room.GameBoard:
		lr.board = board.New(r, s.cfg.Game, s.boardDef, h, s.logger)
		r.AttachService(lr.board)
	}
	h.onGameOver = func(msg protocol.Message) { s.recordWin(lr, msg) }

	s.mu.Lock()
	s.rooms[r.Code] = lr
	s.mu.Unlock()
	metrics.RoomsActive.WithLabelValues(gameType).Inc()
	return lr, nil
}

func (s *Server) liveRoomByCode(code string) (*liveRoom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lr, ok := s.rooms[code]
	return lr, ok
}

// sweepLoop drops hubs whose rooms the registry expired.
func (s *Server) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			for code, lr := range s.rooms {
				if _, gerr := s.registry.Get(code); gerr != nil {
					lr.hub.closeAll()
					delete(s.rooms, code)
					metrics.RoomsActive.WithLabelValues(lr.room.GameType).Dec()
				}
			}
			s.mu.Unlock()
		}
	}
}
