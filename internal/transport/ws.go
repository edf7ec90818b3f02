package transport

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/sketchdash/sketchdash-server/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to websocket clients and runs their pumps.
type Handler struct {
	hub  *Hub
	orch *game.Orchestrator
	opts Options
	log  zerolog.Logger
}

func NewHandler(hub *Hub, orch *game.Orchestrator, opts Options, log zerolog.Logger) *Handler {
	return &Handler{hub: hub, orch: orch, opts: opts, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := newClient(conn, h.hub, h.orch, h.opts, h.log)
	h.hub.register(c)
	h.log.Debug().Str("conn", c.id).Str("remote", r.RemoteAddr).Msg("connection opened")

	go c.writePump()
	go c.readPump()
}
