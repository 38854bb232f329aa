package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ags-games/partyhall/internal/config"
	"github.com/ags-games/partyhall/internal/room"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(config.RedisConfig{Addr: mr.Addr()}, 24*time.Hour, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestSaveAndLoadRoom(t *testing.T) {
	store, _ := newTestStore(t)
	meta := room.RoomMeta{
		Code:        "AB2CD",
		GameType:    room.GameQuiz,
		PlayerCount: 3,
		MaxPlayers:  8,
		Joinable:    true,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	store.SaveRoom(context.Background(), meta)

	// the write is async
	require.Eventually(t, func() bool {
		got, err := store.LoadRoom(context.Background(), "AB2CD")
		return err == nil && got.PlayerCount == 3
	}, 2*time.Second, 10*time.Millisecond)

	got, err := store.LoadRoom(context.Background(), "AB2CD")
	require.NoError(t, err)
	assert.Equal(t, meta.GameType, got.GameType)
	assert.True(t, got.Joinable)
}

func TestDeleteRoom(t *testing.T) {
	store, _ := newTestStore(t)
	store.SaveRoom(context.Background(), room.RoomMeta{Code: "XYZ23"})
	require.Eventually(t, func() bool {
		_, err := store.LoadRoom(context.Background(), "XYZ23")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	store.DeleteRoom(context.Background(), "XYZ23")
	require.Eventually(t, func() bool {
		_, err := store.LoadRoom(context.Background(), "XYZ23")
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRoomTTL(t *testing.T) {
	store, mr := newTestStore(t)
	store.SaveRoom(context.Background(), room.RoomMeta{Code: "TTL22"})
	require.Eventually(t, func() bool {
		_, err := store.LoadRoom(context.Background(), "TTL22")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	mr.FastForward(25 * time.Hour)
	_, err := store.LoadRoom(context.Background(), "TTL22")
	assert.Error(t, err)
}

func TestLeaderboard(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.RecordWin(ctx, room.GameQuiz, "omar")
	store.RecordWin(ctx, room.GameQuiz, "omar")
	store.RecordWin(ctx, room.GameQuiz, "sara")
	store.RecordWin(ctx, room.GameBoard, "nour")

	require.Eventually(t, func() bool {
		rows, err := store.TopWinners(ctx, room.GameQuiz, 10)
		return err == nil && len(rows) == 2 && rows[0].Wins == 2
	}, 2*time.Second, 10*time.Millisecond)

	rows, err := store.TopWinners(ctx, room.GameQuiz, 10)
	require.NoError(t, err)
	assert.Equal(t, "omar", rows[0].PlayerName)
	assert.Equal(t, "sara", rows[1].PlayerName)

	boardRows, err := store.TopWinners(ctx, room.GameBoard, 10)
	require.NoError(t, err)
	require.Len(t, boardRows, 1)
	assert.Equal(t, "nour", boardRows[0].PlayerName)
}

func TestNewRedisStoreBadAddr(t *testing.T) {
	_, err := NewRedisStore(config.RedisConfig{Addr: "127.0.0.1:1"}, time.Hour, zap.NewNop())
	assert.Error(t, err)
}
