package game

import (
	"crypto/rand"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const roomCodeLength = 6

// connRef ties a live connection to its seat.
type connRef struct {
	roomID   string
	playerID string
}

// Registry owns the room table plus the connection-to-seat index. Room
// internals are guarded by each room's own mutex; the registry lock only
// covers the maps.
type Registry struct {
	mu          sync.RWMutex
	rooms       map[string]*Room
	conns       map[string]connRef
	playerConns map[string]string // roomID+"/"+playerID -> connID

	cfg    Config
	bank   *WordBank
	driver Driver
	log    zerolog.Logger
}

func NewRegistry(cfg Config, bank *WordBank, log zerolog.Logger) *Registry {
	return &Registry{
		rooms:       make(map[string]*Room),
		conns:       make(map[string]connRef),
		playerConns: make(map[string]string),
		cfg:         cfg,
		bank:        bank,
		log:         log,
	}
}

// SetDriver wires the timer-callback sink. Must be called before any room is
// created; it exists to break the registry/orchestrator construction cycle.
func (g *Registry) SetDriver(d Driver) {
	g.driver = d
}

func seatKey(roomID, playerID string) string {
	return roomID + "/" + playerID
}

// CreateRoom makes a room under a fresh join code and seats the creator.
func (g *Registry) CreateRoom(connID, name string) (*Room, *Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.newRoomCodeLocked()
	room := NewRoom(id, g.cfg, g.bank, g.driver, g.log)
	p, _, err := room.AddPlayer(name)
	if err != nil {
		return nil, nil, err
	}

	g.rooms[id] = room
	g.conns[connID] = connRef{roomID: id, playerID: p.ID}
	g.playerConns[seatKey(id, p.ID)] = connID
	g.log.Info().Str("room", id).Msg("room created")
	return room, p, nil
}

// Join seats a connection in an existing room. Codes compare
// case-insensitively. The bool reports a rejoin of a disconnected seat.
func (g *Registry) Join(connID, roomID, name string) (*Room, *Player, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[strings.ToUpper(strings.TrimSpace(roomID))]
	if !ok {
		return nil, nil, false, ErrRoomNotFound
	}
	p, rejoined, err := room.AddPlayer(name)
	if err != nil {
		return nil, nil, false, err
	}

	g.conns[connID] = connRef{roomID: room.ID(), playerID: p.ID}
	g.playerConns[seatKey(room.ID(), p.ID)] = connID
	return room, p, rejoined, nil
}

// Leave removes the connection's player from their room. The last player out
// destroys the room.
func (g *Registry) Leave(connID string) (*Room, RemoveOutcome, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ref, ok := g.conns[connID]
	if !ok {
		return nil, RemoveOutcome{}, false
	}
	delete(g.conns, connID)
	delete(g.playerConns, seatKey(ref.roomID, ref.playerID))

	room, ok := g.rooms[ref.roomID]
	if !ok {
		return nil, RemoveOutcome{}, false
	}
	out := room.RemovePlayer(ref.playerID)
	if out.Empty {
		delete(g.rooms, ref.roomID)
		g.log.Info().Str("room", ref.roomID).Msg("room destroyed")
	}
	return room, out, true
}

// Disconnect detaches the connection but keeps the seat, returning the room
// and player so the caller can start the grace window.
func (g *Registry) Disconnect(connID string) (*Room, string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ref, ok := g.conns[connID]
	if !ok {
		return nil, "", false
	}
	delete(g.conns, connID)
	delete(g.playerConns, seatKey(ref.roomID, ref.playerID))

	room, ok := g.rooms[ref.roomID]
	if !ok {
		return nil, "", false
	}
	if !room.MarkDisconnected(ref.playerID) {
		return nil, "", false
	}
	return room, ref.playerID, true
}

// Reconnect binds a new connection to a disconnected seat.
func (g *Registry) Reconnect(connID, roomID, playerID string) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[strings.ToUpper(strings.TrimSpace(roomID))]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if !room.Reconnect(playerID) {
		return nil, ErrUnknownPlayer
	}
	g.conns[connID] = connRef{roomID: room.ID(), playerID: playerID}
	g.playerConns[seatKey(room.ID(), playerID)] = connID
	return room, nil
}

// Purge evicts a seat whose grace window expired. Same semantics as Leave.
func (g *Registry) Purge(roomID, playerID string) (*Room, RemoveOutcome, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[roomID]
	if !ok {
		return nil, RemoveOutcome{}, false
	}
	if _, seated := g.playerConns[seatKey(roomID, playerID)]; seated {
		// the seat got a live connection again; nothing to purge
		return nil, RemoveOutcome{}, false
	}
	out := room.RemovePlayer(playerID)
	if !out.Removed {
		return nil, RemoveOutcome{}, false
	}
	if out.Empty {
		delete(g.rooms, roomID)
		g.log.Info().Str("room", roomID).Msg("room destroyed")
	}
	return room, out, true
}

func (g *Registry) Room(roomID string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[roomID]
	return room, ok
}

// ResolveConn maps a connection to its room and player.
func (g *Registry) ResolveConn(connID string) (*Room, string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ref, ok := g.conns[connID]
	if !ok {
		return nil, "", ErrNotInRoom
	}
	room, ok := g.rooms[ref.roomID]
	if !ok {
		return nil, "", ErrRoomNotFound
	}
	return room, ref.playerID, nil
}

// ConnFor returns the live connection bound to a seat, if any.
func (g *Registry) ConnFor(roomID, playerID string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	connID, ok := g.playerConns[seatKey(roomID, playerID)]
	return connID, ok
}

// PlayerFor is ConnFor's inverse, used by transports projecting per-recipient
// views.
func (g *Registry) PlayerFor(connID string) (string, string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ref, ok := g.conns[connID]
	return ref.roomID, ref.playerID, ok
}

// Counts reports room and seated-player totals for health reporting.
func (g *Registry) Counts() (rooms, players int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rooms = len(g.rooms)
	for _, room := range g.rooms {
		players += room.PlayerCount()
	}
	return rooms, players
}

// newRoomCodeLocked draws 6-char codes until one is unused.
func (g *Registry) newRoomCodeLocked() string {
	buf := make([]byte, roomCodeLength)
	for {
		if _, err := rand.Read(buf); err != nil {
			panic(err) // crypto/rand failure is unrecoverable
		}
		for i := range buf {
			buf[i] = roomCodeAlphabet[int(buf[i])%len(roomCodeAlphabet)]
		}
		code := string(buf)
		if _, exists := g.rooms[code]; !exists {
			return code
		}
	}
}
