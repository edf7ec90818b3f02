package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sketchdash/sketchdash-server/internal/config"
	"github.com/sketchdash/sketchdash-server/internal/game"
	"github.com/sketchdash/sketchdash-server/internal/transport"
)

// Server bundles the HTTP listener with the game engine it hosts.
type Server struct {
	registry *game.Registry
	ws       *transport.Handler
	log      zerolog.Logger
}

// New assembles the engine: registry, hub, orchestrator and websocket handler.
func New(cfg config.Config, log zerolog.Logger) (*Server, *http.Server) {
	roomCfg := game.Config{
		MaxPlayers:    cfg.MaxPlayers,
		MinPlayers:    cfg.MinPlayers,
		RoundTime:     cfg.RoundTime,
		PointsToWin:   cfg.PointsToWin,
		SelectTimeout: cfg.SelectTimeout,
		PauseDelay:    cfg.PauseDelay,
		MaxMessages:   cfg.MaxMessages,
		MaxStrokes:    cfg.MaxStrokes,
	}
	bank := game.NewWordBank(game.MatchConfig{
		MaxEditDistance: cfg.MaxEditDist,
		MaxContainGap:   cfg.MaxContainGap,
	})

	registry := game.NewRegistry(roomCfg, bank, log)
	hub := transport.NewHub(log)
	orch := game.NewOrchestrator(registry, hub, cfg.DisconnectTTL, log)
	ws := transport.NewHandler(hub, orch, transport.Options{
		WriteTimeout:   cfg.WriteTimeout,
		PongTimeout:    cfg.PongTimeout,
		MaxMessageSize: cfg.MaxMessageSize,
		ActionsPerSec:  cfg.ActionsPerSec,
		ActionBurst:    cfg.ActionBurst,
	}, log)

	s := &Server{registry: registry, ws: ws, log: log}
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      s.RegisterRoutes(),
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  time.Minute,
		WriteTimeout: 30 * time.Second,
	}
	return s, httpServer
}
