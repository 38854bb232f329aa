package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ags-games/partyhall/internal/config"
	"github.com/ags-games/partyhall/internal/logger"
	"github.com/ags-games/partyhall/internal/server"
	"github.com/ags-games/partyhall/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("config load failed, using defaults: %v", err)
		cfg = config.Default()
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer zl.Sync()

	// the Redis mirror is optional; the server runs fine without it
	var store *storage.RedisStore
	if cfg.Redis.Addr != "" {
		store, err = storage.NewRedisStore(cfg.Redis, cfg.Game.SessionTTL(), zl)
		if err != nil {
			zl.Warn("redis unavailable, room mirror and leaderboard disabled", zap.Error(err))
			store = nil
		} else {
			defer store.Close()
		}
	}

	srv, err := server.New(cfg, zl, store)
	if err != nil {
		zl.Fatal("server init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
