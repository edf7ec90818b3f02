package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/sketchdash/sketchdash-server/internal/game"
)

// Action is the single inbound message shape.
type Action struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	actionCreateRoom   = "create-room"
	actionJoinRoom     = "join-room"
	actionLeaveRoom    = "leave-room"
	actionReconnect    = "reconnect"
	actionStartGame    = "start-game"
	actionSelectWord   = "select-word"
	actionSendMessage  = "send-message"
	actionDraw         = "draw"
	actionClearCanvas  = "clear-canvas"
	actionRequestState = "request-state"
	actionResetGame    = "reset-game"
)

type createRoomPayload struct {
	Name string `json:"name"`
}

type joinRoomPayload struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type reconnectPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type selectWordPayload struct {
	Word       string          `json:"word"`
	Difficulty game.Difficulty `json:"difficulty"`
}

type sendMessagePayload struct {
	Message string `json:"message"`
}

// Options bounds a single connection's behavior.
type Options struct {
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
	MaxMessageSize int64
	ActionsPerSec  float64
	ActionBurst    int
}

// Client is one websocket connection. Outbound events go through the buffered
// send channel so a slow reader never blocks a room broadcast; inbound actions
// are decoded, rate-limited and dispatched to the orchestrator.
type Client struct {
	id     string
	roomID string
	conn   *websocket.Conn
	out    chan game.Event
	orch   *game.Orchestrator
	hub    *Hub
	limit  *rate.Limiter
	opts   Options
	log    zerolog.Logger
}

func newClient(conn *websocket.Conn, hub *Hub, orch *game.Orchestrator, opts Options, log zerolog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:    id,
		conn:  conn,
		out:   make(chan game.Event, 64),
		orch:  orch,
		hub:   hub,
		limit: rate.NewLimiter(rate.Limit(opts.ActionsPerSec), opts.ActionBurst),
		opts:  opts,
		log:   log.With().Str("conn", id).Logger(),
	}
}

// send enqueues without blocking. A full buffer means the reader is hopeless
// behind; drop the connection and let the grace window cover the gap.
func (c *Client) send(ev game.Event) {
	select {
	case c.out <- ev:
	default:
		c.log.Warn().Str("event", ev.Type).Msg("send buffer full, closing connection")
		c.conn.Close()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.orch.HandleDisconnect(c.id)
		c.hub.unregister(c)
		c.conn.Close()
		close(c.out)
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("unexpected close")
			}
			return
		}
		if !c.limit.Allow() {
			continue
		}

		var action Action
		if err := json.Unmarshal(raw, &action); err != nil {
			c.log.Debug().Err(err).Msg("malformed action")
			continue
		}
		c.dispatch(action)
	}
}

func (c *Client) dispatch(action Action) {
	switch action.Type {
	case actionCreateRoom:
		var p createRoomPayload
		if decode(action.Data, &p, c) {
			c.orch.CreateRoom(c.id, p.Name)
		}
	case actionJoinRoom:
		var p joinRoomPayload
		if decode(action.Data, &p, c) {
			c.orch.JoinRoom(c.id, p.RoomID, p.Name)
		}
	case actionLeaveRoom:
		c.orch.LeaveRoom(c.id)
	case actionReconnect:
		var p reconnectPayload
		if decode(action.Data, &p, c) {
			c.orch.Reconnect(c.id, p.RoomID, p.PlayerID)
		}
	case actionStartGame:
		c.orch.StartGame(c.id)
	case actionSelectWord:
		var p selectWordPayload
		if decode(action.Data, &p, c) {
			c.orch.SelectWord(c.id, p.Word, p.Difficulty)
		}
	case actionSendMessage:
		var p sendMessagePayload
		if decode(action.Data, &p, c) {
			c.orch.SendMessage(c.id, p.Message)
		}
	case actionDraw:
		var ev game.DrawEvent
		if decode(action.Data, &ev, c) {
			c.orch.Draw(c.id, ev)
		}
	case actionClearCanvas:
		c.orch.ClearCanvas(c.id)
	case actionRequestState:
		c.orch.RequestState(c.id)
	case actionResetGame:
		c.orch.ResetGame(c.id)
	default:
		c.log.Debug().Str("action", action.Type).Msg("unknown action type")
	}
}

func decode(raw json.RawMessage, v any, c *Client) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		c.log.Debug().Err(err).Msg("malformed action payload")
		return false
	}
	return true
}

func (c *Client) writePump() {
	ping := time.NewTicker(c.opts.PongTimeout * 9 / 10)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
