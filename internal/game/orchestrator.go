package game

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Orchestrator sits between the transport and the rooms. It validates which
// player may perform which action, translates room outcomes into wire events
// and owns the disconnect grace timers. It also implements Driver, so room
// timer expiries flow back through it.
type Orchestrator struct {
	reg     *Registry
	emitter Emitter
	grace   time.Duration
	log     zerolog.Logger

	mu          sync.Mutex
	graceTimers map[string]*time.Timer
}

func NewOrchestrator(reg *Registry, emitter Emitter, grace time.Duration, log zerolog.Logger) *Orchestrator {
	o := &Orchestrator{
		reg:         reg,
		emitter:     emitter,
		grace:       grace,
		log:         log,
		graceTimers: make(map[string]*time.Timer),
	}
	reg.SetDriver(o)
	return o
}

// --- player actions ---

// CreateRoom opens a fresh room with the caller seated as its first player.
func (o *Orchestrator) CreateRoom(connID, name string) {
	room, p, err := o.reg.CreateRoom(connID, name)
	if err != nil {
		o.fail(connID, err)
		return
	}
	o.emitter.Subscribe(connID, room.ID())
	o.emitter.Unicast(connID, Event{Type: EventRoomCreated, Data: RoomCreatedData{RoomID: room.ID()}})
	o.emitter.Unicast(connID, Event{Type: EventYourIdentity, Data: IdentityData{RoomID: room.ID(), PlayerID: p.ID}})
	o.emitter.Unicast(connID, Event{Type: EventFullState, Data: room.Snapshot(p.ID)})
	o.broadcastRoster(room)
}

// JoinRoom seats the caller in an existing room, or reattaches them to a
// disconnected seat carrying the same name.
func (o *Orchestrator) JoinRoom(connID, roomID, name string) {
	room, p, rejoined, err := o.reg.Join(connID, roomID, name)
	if err != nil {
		o.fail(connID, err)
		return
	}
	o.emitter.Subscribe(connID, room.ID())

	if rejoined {
		o.cancelGrace(room.ID(), p.ID)
		o.emitter.Broadcast(room.ID(), Event{Type: EventPlayerReconnected, Data: PlayerConnData{PlayerID: p.ID}})
	}
	o.emitter.Unicast(connID, Event{Type: EventYourIdentity, Data: IdentityData{RoomID: room.ID(), PlayerID: p.ID}})
	o.emitter.Unicast(connID, Event{Type: EventFullState, Data: room.Snapshot(p.ID)})
	o.broadcastRoster(room)
}

// LeaveRoom removes the caller's player outright, with no grace window.
func (o *Orchestrator) LeaveRoom(connID string) {
	room, out, ok := o.reg.Leave(connID)
	if !ok || !out.Removed {
		return
	}
	o.emitter.Unsubscribe(connID)
	o.cancelGrace(room.ID(), out.Player.ID)
	if out.Empty {
		return
	}
	o.broadcastRoster(room)
	o.applyRemoval(room, out)
}

// HandleDisconnect is invoked by the transport when a socket drops. The seat
// survives for the grace window; only then is the player actually removed.
func (o *Orchestrator) HandleDisconnect(connID string) {
	room, playerID, ok := o.reg.Disconnect(connID)
	if !ok {
		return
	}
	o.emitter.Broadcast(room.ID(), Event{Type: EventPlayerDisconnected, Data: PlayerConnData{PlayerID: playerID}})
	o.broadcastRoster(room)

	roomID := room.ID()
	o.mu.Lock()
	key := seatKey(roomID, playerID)
	if t, ok := o.graceTimers[key]; ok {
		t.Stop()
	}
	o.graceTimers[key] = time.AfterFunc(o.grace, func() {
		o.purgeSeat(roomID, playerID)
	})
	o.mu.Unlock()
}

// Reconnect rebinds a connection to its old seat by room and player id.
func (o *Orchestrator) Reconnect(connID, roomID, playerID string) {
	room, err := o.reg.Reconnect(connID, roomID, playerID)
	if err != nil {
		o.fail(connID, err)
		return
	}
	o.emitter.Subscribe(connID, room.ID())
	o.cancelGrace(room.ID(), playerID)
	o.emitter.Broadcast(room.ID(), Event{Type: EventPlayerReconnected, Data: PlayerConnData{PlayerID: playerID}})
	o.emitter.Unicast(connID, Event{Type: EventYourIdentity, Data: IdentityData{RoomID: room.ID(), PlayerID: playerID}})
	o.emitter.Unicast(connID, Event{Type: EventFullState, Data: room.Snapshot(playerID)})
	o.broadcastRoster(room)
}

// StartGame begins the first selecting phase. Any seated player may start.
func (o *Orchestrator) StartGame(connID string) {
	room, _, err := o.reg.ResolveConn(connID)
	if err != nil {
		o.fail(connID, err)
		return
	}
	offer, err := room.StartGame()
	if err != nil {
		o.fail(connID, err)
		return
	}
	o.announceSelecting(room, offer)
}

// SelectWord lets the current drawer pick from their offer and opens the round.
func (o *Orchestrator) SelectWord(connID, word string, difficulty Difficulty) {
	room, playerID, err := o.reg.ResolveConn(connID)
	if err != nil {
		o.fail(connID, err)
		return
	}
	if room.CurrentDrawerID() != playerID {
		o.fail(connID, ErrNotDrawer)
		return
	}
	start, err := room.SelectWord(word, difficulty)
	if err != nil {
		o.fail(connID, err)
		return
	}
	o.announceRoundStart(room, start)
}

// SendMessage handles chat. During a round, text from anyone but the drawer
// is treated as a guess first: a correct guess scores and ends the round
// without echoing the word into chat; close and wrong guesses fall through to
// chat carrying their verdict flags.
func (o *Orchestrator) SendMessage(connID, text string) {
	room, playerID, err := o.reg.ResolveConn(connID)
	if err != nil {
		o.fail(connID, err)
		return
	}

	guess := room.SubmitGuess(playerID, text)
	if guess.Result == GuessCorrect {
		o.emitter.Broadcast(room.ID(), Event{Type: EventGuessCorrect, Data: GuessCorrectData{GuesserID: playerID, Word: guess.Word}})
		o.broadcastRoster(room)
		if guess.Winner != nil {
			o.emitter.Broadcast(room.ID(), Event{Type: EventGameOver, Data: GameOverData{Winner: *guess.Winner, FinalScores: guess.Scores}})
			return
		}
		o.announceRoundOutcome(room, guess.Round)
		return
	}

	isGuess := guess.Result == GuessClose || guess.Result == GuessWrong
	msg, ok := room.AppendMessage(playerID, text, isGuess, false, guess.Result == GuessClose)
	if !ok {
		return
	}
	o.emitter.Broadcast(room.ID(), Event{Type: EventChatAppended, Data: msg})
}

// Draw relays a stroke batch from the drawer to everyone else.
func (o *Orchestrator) Draw(connID string, ev DrawEvent) {
	room, playerID, err := o.reg.ResolveConn(connID)
	if err != nil {
		return
	}
	if room.Status() != StatusDrawing || room.CurrentDrawerID() != playerID {
		return
	}
	room.AppendStroke(ev)
	o.emitter.BroadcastExcept(room.ID(), connID, Event{Type: EventStrokeAppended, Data: ev})
}

// ClearCanvas wipes the drawing buffer on the drawer's request.
func (o *Orchestrator) ClearCanvas(connID string) {
	room, playerID, err := o.reg.ResolveConn(connID)
	if err != nil {
		return
	}
	if room.Status() != StatusDrawing || room.CurrentDrawerID() != playerID {
		return
	}
	room.ClearDrawing()
	o.emitter.BroadcastExcept(room.ID(), connID, Event{Type: EventCanvasCleared})
}

// RequestState resends the caller's full-state projection.
func (o *Orchestrator) RequestState(connID string) {
	room, playerID, err := o.reg.ResolveConn(connID)
	if err != nil {
		o.fail(connID, err)
		return
	}
	o.emitter.Unicast(connID, Event{Type: EventFullState, Data: room.Snapshot(playerID)})
}

// ResetGame returns the room to the lobby with scores zeroed.
func (o *Orchestrator) ResetGame(connID string) {
	room, _, err := o.reg.ResolveConn(connID)
	if err != nil {
		o.fail(connID, err)
		return
	}
	room.Reset()
	o.pushState(room)
}

// --- Driver callbacks, entered from room timers ---

func (o *Orchestrator) SelectionTimedOut(roomID string, epoch uint64) {
	room, ok := o.reg.Room(roomID)
	if !ok {
		return
	}
	start, ok := room.AutoSelectWord(epoch)
	if !ok {
		return
	}
	o.announceRoundStart(room, start)
}

func (o *Orchestrator) RoundTimedOut(roomID string, epoch uint64) {
	room, ok := o.reg.Room(roomID)
	if !ok {
		return
	}
	out, ok := room.EndRoundTimeout(epoch)
	if !ok {
		return
	}
	o.announceRoundOutcome(room, out)
}

func (o *Orchestrator) TickElapsed(roomID string, epoch uint64) {
	room, ok := o.reg.Room(roomID)
	if !ok {
		return
	}
	remaining, ok := room.TickRemaining(epoch)
	if !ok {
		return
	}
	o.emitter.Broadcast(roomID, Event{Type: EventTimeRemaining, Data: TimeRemainingData{Seconds: remaining}})
}

func (o *Orchestrator) PauseElapsed(roomID string, epoch uint64) {
	room, ok := o.reg.Room(roomID)
	if !ok {
		return
	}
	offer, ok := room.ElapsePause(epoch)
	if !ok {
		return
	}
	o.announceSelecting(room, offer)
}

// --- helpers ---

func (o *Orchestrator) purgeSeat(roomID, playerID string) {
	o.mu.Lock()
	delete(o.graceTimers, seatKey(roomID, playerID))
	o.mu.Unlock()

	room, out, ok := o.reg.Purge(roomID, playerID)
	if !ok || !out.Removed {
		return
	}
	o.log.Debug().Str("room", roomID).Str("player", playerID).Msg("seat purged after grace window")
	if out.Empty {
		return
	}
	o.broadcastRoster(room)
	o.applyRemoval(room, out)
}

func (o *Orchestrator) cancelGrace(roomID, playerID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := seatKey(roomID, playerID)
	if t, ok := o.graceTimers[key]; ok {
		t.Stop()
		delete(o.graceTimers, key)
	}
}

// applyRemoval pushes out whatever state change removing a player forced.
func (o *Orchestrator) applyRemoval(room *Room, out RemoveOutcome) {
	switch {
	case out.Round != nil:
		o.announceRoundOutcome(room, out.Round)
	case out.Offer != nil:
		o.announceSelecting(room, out.Offer)
	}
}

func (o *Orchestrator) broadcastRoster(room *Room) {
	o.emitter.Broadcast(room.ID(), Event{Type: EventRosterChanged, Data: RosterData{Players: room.Roster()}})
}

// announceSelecting emits game-started per recipient: the drawer sees the
// word options, everyone else an empty offer.
func (o *Orchestrator) announceSelecting(room *Room, offer *TurnOffer) {
	drawerConn, _ := o.reg.ConnFor(room.ID(), offer.DrawerID)
	o.emitter.Project(room.ID(), func(connID string) (Event, bool) {
		data := GameStartedData{DrawerID: offer.DrawerID, WordOptions: []WordOption{}}
		if connID == drawerConn {
			data.WordOptions = offer.Options
		}
		return Event{Type: EventGameStarted, Data: data}, true
	})
}

// announceRoundStart reveals the mask to the room and the word to the drawer.
func (o *Orchestrator) announceRoundStart(room *Room, start *RoundStart) {
	o.emitter.Broadcast(room.ID(), Event{Type: EventWordRevealedLength, Data: WordLengthData{
		Length:     utf8.RuneCountInString(start.Word),
		Mask:       start.Mask,
		Difficulty: start.Difficulty,
		TimeLimit:  start.TimeLimit,
	}})
	if connID, ok := o.reg.ConnFor(room.ID(), start.DrawerID); ok {
		o.emitter.Unicast(connID, Event{Type: EventWordRevealedText, Data: WordTextData{
			Word:       start.Word,
			Difficulty: start.Difficulty,
			TimeLimit:  start.TimeLimit,
		}})
	}
}

func (o *Orchestrator) announceRoundOutcome(room *Room, out *RoundOutcome) {
	o.emitter.Broadcast(room.ID(), Event{Type: EventRoundEnded, Data: RoundEndedData{
		Word:         out.Word,
		NextDrawerID: out.NextDrawerID,
	}})
	if out.ToWaiting {
		o.pushState(room)
	}
}

// pushState re-sends every recipient their own projection after a transition
// the client cannot derive from incremental events.
func (o *Orchestrator) pushState(room *Room) {
	o.emitter.Project(room.ID(), func(connID string) (Event, bool) {
		_, playerID, ok := o.reg.PlayerFor(connID)
		if !ok {
			return Event{}, false
		}
		return Event{Type: EventFullState, Data: room.Snapshot(playerID)}, true
	})
}

func (o *Orchestrator) fail(connID string, err error) {
	o.emitter.Unicast(connID, Event{Type: EventError, Data: ErrorData{Reason: err.Error()}})
}
