// Package storage mirrors room summaries and win counts to Redis. All
// writes are best effort: gameplay never blocks on the store.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ags-games/partyhall/internal/config"
	"github.com/ags-games/partyhall/internal/room"
)

const (
	roomKeyPrefix        = "partyhall:room:"
	leaderboardKeyPrefix = "partyhall:wins:"
	opTimeout            = 3 * time.Second
)

// RedisStore implements room.Directory and the win leaderboard.
type RedisStore struct {
	client  *redis.Client
	logger  *zap.Logger
	roomTTL time.Duration
}

// WinnerEntry is one leaderboard row.
type WinnerEntry struct {
	PlayerName string  `json:"player_name"`
	Wins       float64 `json:"wins"`
}

// NewRedisStore connects and pings. A nil store is a valid "disabled"
// directory, so callers may skip construction entirely.
func NewRedisStore(cfg config.RedisConfig, roomTTL time.Duration, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, logger: logger, roomTTL: roomTTL}, nil
}

// SaveRoom upserts the room summary, asynchronously.
func (s *RedisStore) SaveRoom(_ context.Context, meta room.RoomMeta) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		data, err := json.Marshal(meta)
		if err != nil {
			s.logger.Warn("marshal room meta", zap.Error(err))
			return
		}
		if err := s.client.Set(ctx, roomKeyPrefix+meta.Code, data, s.roomTTL).Err(); err != nil {
			s.logger.Warn("save room meta", zap.String("code", meta.Code), zap.Error(err))
		}
	}()
}

// DeleteRoom drops the room summary, asynchronously.
func (s *RedisStore) DeleteRoom(_ context.Context, code string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := s.client.Del(ctx, roomKeyPrefix+code).Err(); err != nil {
			s.logger.Warn("delete room meta", zap.String("code", code), zap.Error(err))
		}
	}()
}

// LoadRoom reads one room summary back.
func (s *RedisStore) LoadRoom(ctx context.Context, code string) (*room.RoomMeta, error) {
	data, err := s.client.Get(ctx, roomKeyPrefix+code).Bytes()
	if err != nil {
		return nil, err
	}
	var meta room.RoomMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// RecordWin bumps a player's win count for a game type, asynchronously.
func (s *RedisStore) RecordWin(_ context.Context, gameType, playerName string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := s.client.ZIncrBy(ctx, leaderboardKeyPrefix+gameType, 1, playerName).Err(); err != nil {
			s.logger.Warn("record win", zap.String("player", playerName), zap.Error(err))
		}
	}()
}

// TopWinners returns the leaderboard for a game type, best first.
func (s *RedisStore) TopWinners(ctx context.Context, gameType string, n int64) ([]WinnerEntry, error) {
	rows, err := s.client.ZRevRangeWithScores(ctx, leaderboardKeyPrefix+gameType, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]WinnerEntry, 0, len(rows))
	for _, row := range rows {
		name, _ := row.Member.(string)
		out = append(out, WinnerEntry{PlayerName: name, Wins: row.Score})
	}
	return out, nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
