package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, populated from the environment.
type Config struct {
	Port     string `env:"PORT" envDefault:"3001"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty   bool   `env:"LOG_PRETTY" envDefault:"false"`

	MaxPlayers  int `env:"ROOM_MAX_PLAYERS" envDefault:"8"`
	MinPlayers  int `env:"ROOM_MIN_PLAYERS" envDefault:"2"`
	RoundTime   int `env:"ROUND_TIME_SECONDS" envDefault:"90"`
	PointsToWin int `env:"POINTS_TO_WIN" envDefault:"5"`

	SelectTimeout  time.Duration `env:"WORD_SELECT_TIMEOUT" envDefault:"10s"`
	PauseDelay     time.Duration `env:"ROUND_PAUSE_DELAY" envDefault:"2s"`
	DisconnectTTL  time.Duration `env:"DISCONNECT_GRACE" envDefault:"30s"`
	MaxMessages    int           `env:"CHAT_HISTORY_LIMIT" envDefault:"50"`
	MaxStrokes     int           `env:"STROKE_HISTORY_LIMIT" envDefault:"1000"`
	MaxEditDist    int           `env:"GUESS_MAX_EDIT_DISTANCE" envDefault:"2"`
	MaxContainGap  int           `env:"GUESS_MAX_CONTAIN_GAP" envDefault:"3"`
	ActionsPerSec  float64       `env:"CLIENT_ACTIONS_PER_SEC" envDefault:"30"`
	ActionBurst    int           `env:"CLIENT_ACTION_BURST" envDefault:"60"`
	WriteTimeout   time.Duration `env:"WS_WRITE_TIMEOUT" envDefault:"10s"`
	PongTimeout    time.Duration `env:"WS_PONG_TIMEOUT" envDefault:"60s"`
	MaxMessageSize int64         `env:"WS_MAX_MESSAGE_BYTES" envDefault:"65536"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.MinPlayers < 2 {
		return Config{}, fmt.Errorf("ROOM_MIN_PLAYERS must be at least 2, got %d", cfg.MinPlayers)
	}
	if cfg.MaxPlayers < cfg.MinPlayers {
		return Config{}, fmt.Errorf("ROOM_MAX_PLAYERS %d below ROOM_MIN_PLAYERS %d", cfg.MaxPlayers, cfg.MinPlayers)
	}
	return cfg, nil
}
