package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Redis   RedisConfig   `yaml:"redis"`
	Game    GameConfig    `yaml:"game"`
	Content ContentConfig `yaml:"content"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP/WebSocket listener settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"` // empty = allow all
}

// RedisConfig holds the optional room-directory mirror settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig holds the gameplay timings shared by both engines.
type GameConfig struct {
	AnswerSeconds      int `yaml:"answer_seconds"`       // quiz: time to answer after a buzz lock
	DrawingSeconds     int `yaml:"drawing_seconds"`      // quiz: drawing phase deadline
	AutoAdvanceSeconds int `yaml:"auto_advance_seconds"` // quiz: AI-host delay before the next round
	TurnSeconds        int `yaml:"turn_seconds"`         // board: turn clock, when enabled
	SessionTTLHours    int `yaml:"session_ttl_hours"`    // reconnect token lifetime
}

// ContentConfig points at optional question-bank and board overrides.
// When a path is empty the built-in content is used.
type ContentConfig struct {
	QuizPath  string `yaml:"quiz_path"`
	BoardPath string `yaml:"board_path"`
}

// LogConfig selects the zap preset.
type LogConfig struct {
	Development bool   `yaml:"development"`
	Level       string `yaml:"level"`
}

func (c *GameConfig) AnswerTimeout() time.Duration {
	return time.Duration(c.AnswerSeconds) * time.Second
}

func (c *GameConfig) DrawingTimeout() time.Duration {
	return time.Duration(c.DrawingSeconds) * time.Second
}

func (c *GameConfig) AutoAdvanceDelay() time.Duration {
	return time.Duration(c.AutoAdvanceSeconds) * time.Second
}

func (c *GameConfig) TurnTimeout() time.Duration {
	return time.Duration(c.TurnSeconds) * time.Second
}

func (c *GameConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Load reads a YAML config file and fills in defaults for missing keys.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8090
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Game.AnswerSeconds == 0 {
		c.Game.AnswerSeconds = 5
	}
	if c.Game.DrawingSeconds == 0 {
		c.Game.DrawingSeconds = 30
	}
	if c.Game.AutoAdvanceSeconds == 0 {
		c.Game.AutoAdvanceSeconds = 5
	}
	if c.Game.TurnSeconds == 0 {
		c.Game.TurnSeconds = 45
	}
	if c.Game.SessionTTLHours == 0 {
		c.Game.SessionTTLHours = 24
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
