package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Game.AnswerTimeout())
	assert.Equal(t, 30*time.Second, cfg.Game.DrawingTimeout())
	assert.Equal(t, 45*time.Second, cfg.Game.TurnTimeout())
	assert.Equal(t, 24*time.Hour, cfg.Game.SessionTTL())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: 127.0.0.1
  port: 9000
game:
  answer_seconds: 8
  turn_seconds: 60
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 8*time.Second, cfg.Game.AnswerTimeout())
	assert.Equal(t, 60*time.Second, cfg.Game.TurnTimeout())
	// unset keys fall back to defaults
	assert.Equal(t, 30*time.Second, cfg.Game.DrawingTimeout())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}
