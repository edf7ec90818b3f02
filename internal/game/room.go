package game

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusSelecting Status = "selecting"
	StatusDrawing   Status = "drawing"
	StatusRoundEnd  Status = "roundEnd"
	StatusGameOver  Status = "gameOver"
)

// Config carries the per-room game settings. The JSON-tagged fields travel in
// full-state snapshots; the rest are engine pacing knobs.
type Config struct {
	MaxPlayers  int `json:"maxPlayers"`
	MinPlayers  int `json:"minPlayers"`
	RoundTime   int `json:"roundTimeSeconds"`
	PointsToWin int `json:"pointsToWin"`

	SelectTimeout time.Duration `json:"-"`
	PauseDelay    time.Duration `json:"-"`
	MaxMessages   int           `json:"-"`
	MaxStrokes    int           `json:"-"`
}

func DefaultConfig() Config {
	return Config{
		MaxPlayers:    8,
		MinPlayers:    2,
		RoundTime:     90,
		PointsToWin:   5,
		SelectTimeout: 10 * time.Second,
		PauseDelay:    2 * time.Second,
		MaxMessages:   50,
		MaxStrokes:    1000,
	}
}

// Driver receives room timer expiries. Callbacks run on their own goroutines
// and re-enter the room through the epoch-checked methods; a stale epoch
// makes the callback a no-op.
type Driver interface {
	SelectionTimedOut(roomID string, epoch uint64)
	RoundTimedOut(roomID string, epoch uint64)
	TickElapsed(roomID string, epoch uint64)
	PauseElapsed(roomID string, epoch uint64)
}

type Round struct {
	DrawerID   string
	Word       string
	Difficulty Difficulty
	StartedAt  time.Time
	TimeLimit  int
	guessed    map[string]struct{}
}

// TurnOffer is produced whenever a room enters selecting: the drawer and the
// word options to put in front of them.
type TurnOffer struct {
	DrawerID string
	Options  []WordOption
}

// RoundStart is produced when a word is picked and a round opens.
type RoundStart struct {
	DrawerID   string
	Word       string
	Mask       string
	Difficulty Difficulty
	TimeLimit  int
}

// RoundOutcome is produced when a round closes: the revealed word plus either
// the next drawer or a fallback to waiting.
type RoundOutcome struct {
	Word         string
	NextDrawerID string
	ToWaiting    bool
}

// GuessOutcome reports the effect of one guess. Round is set when the guess
// ended the round, Winner when it ended the game.
type GuessOutcome struct {
	Result GuessResult
	Word   string
	Points int
	Round  *RoundOutcome
	Winner *Player
	Scores []Player
}

// RemoveOutcome reports the side effects of taking a player out of the room.
type RemoveOutcome struct {
	Removed bool
	Player  Player
	Round   *RoundOutcome // drawer left mid-round: force-ended like a timeout
	Offer   *TurnOffer    // drawer left while selecting: next drawer's offer
	Empty   bool
}

// Room owns one game's full state and all transition logic. Every operation,
// including timer callbacks re-entering through the epoch-checked methods,
// serializes on mu.
type Room struct {
	mu     sync.Mutex
	id     string
	cfg    Config
	bank   *WordBank
	driver Driver
	log    zerolog.Logger

	status    Status
	players   []*Player
	round     *Round
	offer     []WordOption
	winner    *Player
	turnOrder []string
	turnIndex int
	messages  []ChatMessage
	strokes   []DrawEvent

	// epoch increments on every state entry; timers capture it at arm time.
	epoch  uint64
	closed bool

	selectionTimer *time.Timer
	roundTimer     *time.Timer
	pauseTimer     *time.Timer
	tickStop       chan struct{}
}

func NewRoom(id string, cfg Config, bank *WordBank, driver Driver, log zerolog.Logger) *Room {
	return &Room{
		id:     id,
		cfg:    cfg,
		bank:   bank,
		driver: driver,
		log:    log.With().Str("room", id).Logger(),
		status: StatusWaiting,
	}
}

func (r *Room) ID() string { return r.id }

func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Room) Epoch() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.epoch
}

func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) == 0
}

func (r *Room) IsFull() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) >= r.cfg.MaxPlayers
}

func (r *Room) ConnectedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connectedCountLocked()
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// CurrentDrawerID returns the id of the player holding the drawing role, or "".
func (r *Room) CurrentDrawerID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.drawerLocked(); p != nil {
		return p.ID
	}
	return ""
}

// Roster returns a value snapshot of all players in join order.
func (r *Room) Roster() []Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked()
}

// AddPlayer joins a player by display name. A disconnected player with the
// same name (case-insensitive) is reactivated instead, keeping their id,
// score and drawing role; the second return reports that rejoin.
func (r *Room) AddPlayer(name string) (*Player, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, p := range r.players {
		if strings.ToLower(strings.TrimSpace(p.Name)) != normalized {
			continue
		}
		if p.Connected {
			return nil, false, ErrNameTaken
		}
		p.Connected = true
		r.log.Debug().Str("player", p.ID).Msg("player rejoined by name")
		return p, true, nil
	}

	if len(r.players) >= r.cfg.MaxPlayers {
		return nil, false, ErrRoomFull
	}

	p := newPlayer(name)
	r.players = append(r.players, p)
	r.log.Debug().Str("player", p.ID).Str("name", name).Msg("player joined")
	return p, false, nil
}

// RemovePlayer deletes the player outright. Leaving drawers force-end the
// phase they were carrying: a live round closes as if it had timed out, a
// pending word selection rotates straight to the next drawer.
func (r *Room) RemovePlayer(id string) RemoveOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, p := range r.players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return RemoveOutcome{}
	}

	removed := *r.players[idx]
	wasDrawer := r.players[idx].IsDrawing
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	// turnOrder deliberately keeps the id: the rotation is fixed at game
	// start and the scan in advanceTurnLocked skips absentees.

	out := RemoveOutcome{Removed: true, Player: removed}

	switch {
	case r.status == StatusDrawing && r.round != nil && r.round.DrawerID == id:
		out.Round = r.endRoundLocked()
	case r.status == StatusSelecting && wasDrawer:
		next := r.advanceTurnLocked()
		if next == nil || r.connectedCountLocked() < 2 {
			r.offer = nil
			r.enterStateLocked(StatusWaiting)
		} else {
			next.IsDrawing = true
			r.offer = r.bank.OfferWords()
			r.enterStateLocked(StatusSelecting)
			out.Offer = &TurnOffer{DrawerID: next.ID, Options: r.offer}
		}
	case r.status == StatusRoundEnd && wasDrawer:
		// the pending drawer left during the pause; hand the role on so the
		// pause expiry still finds someone to open selection for
		next := r.advanceTurnLocked()
		if next == nil || r.connectedCountLocked() < 2 {
			r.enterStateLocked(StatusWaiting)
		} else {
			next.IsDrawing = true
		}
	}

	if len(r.players) == 0 {
		out.Empty = true
		r.shutdownLocked()
	}

	r.log.Debug().Str("player", id).Bool("empty", out.Empty).Msg("player removed")
	return out
}

// MarkDisconnected flips the connected flag only; seat, score, turn order and
// drawing role are all preserved for the grace window.
func (r *Room) MarkDisconnected(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.playerLocked(id)
	if p == nil {
		return false
	}
	p.Connected = false
	return true
}

// Reconnect marks the player connected again. It never changes IsDrawing.
func (r *Room) Reconnect(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.playerLocked(id)
	if p == nil {
		return false
	}
	p.Connected = true
	return true
}

// StartGame fixes the turn order from the current roster, hands the drawing
// role to the first player and enters selecting with a fresh word offer.
func (r *Room) StartGame() (*TurnOffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusWaiting {
		return nil, ErrWrongStatus
	}
	if len(r.players) < r.cfg.MinPlayers {
		return nil, ErrNotEnoughPlayers
	}

	r.turnOrder = make([]string, 0, len(r.players))
	for _, p := range r.players {
		r.turnOrder = append(r.turnOrder, p.ID)
	}
	r.turnIndex = 0
	r.winner = nil
	for i, p := range r.players {
		p.IsDrawing = i == 0
	}

	r.offer = r.bank.OfferWords()
	r.enterStateLocked(StatusSelecting)
	r.log.Info().Int("players", len(r.players)).Msg("game started")
	return &TurnOffer{DrawerID: r.turnOrder[0], Options: r.offer}, nil
}

// SelectWord opens a round with the chosen word. The caller is responsible
// for verifying the request came from the drawer; the room verifies status
// and that the word belongs to the current offer.
func (r *Room) SelectWord(word string, difficulty Difficulty) (*RoundStart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectWordLocked(word, difficulty)
}

// AutoSelectWord is the selection-timeout path: it picks the easy-tier option
// on the drawer's behalf. Stale epochs are dropped.
func (r *Room) AutoSelectWord(epoch uint64) (*RoundStart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.epoch != epoch || r.status != StatusSelecting {
		return nil, false
	}
	for _, opt := range r.offer {
		if opt.Difficulty == DifficultyEasy {
			start, err := r.selectWordLocked(opt.Word, opt.Difficulty)
			if err != nil {
				return nil, false
			}
			r.log.Debug().Str("word", opt.Word).Msg("word auto-selected on timeout")
			return start, true
		}
	}
	return nil, false
}

func (r *Room) selectWordLocked(word string, difficulty Difficulty) (*RoundStart, error) {
	if r.status != StatusSelecting {
		return nil, ErrWrongStatus
	}
	drawer := r.drawerLocked()
	if drawer == nil {
		return nil, ErrWrongStatus
	}

	valid := false
	for _, opt := range r.offer {
		if opt.Word == word && opt.Difficulty == difficulty {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrInvalidWord
	}

	r.round = &Round{
		DrawerID:   drawer.ID,
		Word:       word,
		Difficulty: difficulty,
		StartedAt:  time.Now(),
		TimeLimit:  r.cfg.RoundTime,
		guessed:    make(map[string]struct{}),
	}
	r.offer = nil
	// the drawing buffer is cleared exactly when a round opens
	r.strokes = nil
	r.enterStateLocked(StatusDrawing)
	r.log.Info().Str("drawer", drawer.ID).Str("difficulty", string(difficulty)).Msg("round opened")

	return &RoundStart{
		DrawerID:   drawer.ID,
		Word:       word,
		Mask:       MaskWord(word),
		Difficulty: difficulty,
		TimeLimit:  r.cfg.RoundTime,
	}, nil
}

// SubmitGuess evaluates one guess. Guesses from the drawer, from players who
// already solved this round, or outside an open round are invalid and change
// nothing. A correct guess scores guesser and drawer and closes the round or
// the game in the same atomic step, before any racing timer can act.
func (r *Room) SubmitGuess(playerID, text string) GuessOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusDrawing || r.round == nil {
		return GuessOutcome{Result: GuessInvalid}
	}
	p := r.playerLocked(playerID)
	if p == nil || p.IsDrawing {
		return GuessOutcome{Result: GuessInvalid}
	}
	if _, done := r.round.guessed[playerID]; done {
		return GuessOutcome{Result: GuessInvalid}
	}

	result := r.bank.ScoreGuess(text, r.round.Word)
	if result != GuessCorrect {
		return GuessOutcome{Result: result}
	}

	r.round.guessed[playerID] = struct{}{}
	points := r.bank.PointsFor(r.round.Difficulty, false)
	p.Score += points
	if drawer := r.playerLocked(r.round.DrawerID); drawer != nil {
		drawer.Score += r.bank.PointsFor(r.round.Difficulty, true)
	}

	out := GuessOutcome{Result: GuessCorrect, Word: r.round.Word, Points: points}
	if p.Score >= r.cfg.PointsToWin {
		winner := *p
		r.endGameLocked(&winner)
		out.Winner = &winner
		out.Scores = r.finalScoresLocked()
		return out
	}
	out.Round = r.endRoundLocked()
	return out
}

// EndRoundTimeout is the round-timer expiry path; no guess credit is given.
func (r *Room) EndRoundTimeout(epoch uint64) (*RoundOutcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.epoch != epoch || r.status != StatusDrawing || r.round == nil {
		return nil, false
	}
	return r.endRoundLocked(), true
}

// ContinueRound moves roundEnd to the next selecting phase with a fresh word
// offer for the drawer rotated in by endRound.
func (r *Room) ContinueRound() (*TurnOffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.continueRoundLocked()
}

// ElapsePause is the post-round pause expiry path.
func (r *Room) ElapsePause(epoch uint64) (*TurnOffer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.epoch != epoch || r.status != StatusRoundEnd {
		return nil, false
	}
	offer, err := r.continueRoundLocked()
	if err != nil {
		return nil, false
	}
	return offer, true
}

func (r *Room) continueRoundLocked() (*TurnOffer, error) {
	if r.status != StatusRoundEnd {
		return nil, ErrWrongStatus
	}
	drawer := r.drawerLocked()
	if drawer == nil {
		return nil, ErrWrongStatus
	}
	r.offer = r.bank.OfferWords()
	r.enterStateLocked(StatusSelecting)
	return &TurnOffer{DrawerID: drawer.ID, Options: r.offer}, nil
}

// TickRemaining reports whole seconds left in the active round; stale epochs
// and any status other than drawing return false, which stops the ticker.
func (r *Room) TickRemaining(epoch uint64) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.epoch != epoch || r.status != StatusDrawing || r.round == nil {
		return 0, false
	}
	return r.remainingLocked(), true
}

// Reset returns the room to waiting from any state: scores zeroed, roles and
// round cleared, logs emptied. Connected flags are untouched.
func (r *Room) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.players {
		p.Score = 0
		p.IsDrawing = false
	}
	r.round = nil
	r.offer = nil
	r.winner = nil
	r.turnOrder = nil
	r.turnIndex = 0
	r.messages = nil
	r.strokes = nil
	r.enterStateLocked(StatusWaiting)
	r.log.Info().Msg("room reset")
}

// Shutdown cancels all timers and fences off late callbacks. Called when the
// registry destroys the room.
func (r *Room) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdownLocked()
}

// AppendMessage records a chat line with the sender's name snapshotted at
// send time. The log keeps the most recent entries only.
func (r *Room) AppendMessage(senderID, text string, isGuess, isCorrect, isClose bool) (ChatMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerLocked(senderID)
	if p == nil {
		return ChatMessage{}, false
	}
	msg := newChatMessage(p, text)
	msg.IsGuess = isGuess
	msg.IsCorrect = isCorrect
	msg.IsClose = isClose

	r.messages = append(r.messages, msg)
	if len(r.messages) > r.cfg.MaxMessages {
		r.messages = r.messages[len(r.messages)-r.cfg.MaxMessages:]
	}
	return msg, true
}

// AppendStroke stores an opaque stroke batch, evicting the oldest past the cap.
func (r *Room) AppendStroke(ev DrawEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.strokes = append(r.strokes, ev)
	if len(r.strokes) > r.cfg.MaxStrokes {
		r.strokes = r.strokes[len(r.strokes)-r.cfg.MaxStrokes:]
	}
}

func (r *Room) ClearDrawing() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strokes = nil
}

// Snapshot builds the viewer's full-state projection: the drawer sees the
// word, everyone else the mask.
func (r *Room) Snapshot(viewerID string) StateSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := StateSnapshot{
		RoomID:   r.id,
		Status:   r.status,
		Players:  r.rosterLocked(),
		Winner:   r.winner,
		Messages: append([]ChatMessage(nil), r.messages...),
		Strokes:  append([]DrawEvent(nil), r.strokes...),
		Config:   r.cfg,
	}
	if r.round != nil {
		view := &RoundView{
			DrawerID:   r.round.DrawerID,
			Difficulty: r.round.Difficulty,
			TimeLimit:  r.round.TimeLimit,
			Remaining:  r.remainingLocked(),
		}
		if viewerID == r.round.DrawerID {
			view.Word = r.round.Word
		} else {
			view.Mask = MaskWord(r.round.Word)
		}
		snap.Round = view
	}
	return snap
}

// --- internals, all called with r.mu held ---

func (r *Room) playerLocked(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) drawerLocked() *Player {
	for _, p := range r.players {
		if p.IsDrawing {
			return p
		}
	}
	return nil
}

func (r *Room) connectedCountLocked() int {
	n := 0
	for _, p := range r.players {
		if p.Connected {
			n++
		}
	}
	return n
}

func (r *Room) rosterLocked() []Player {
	out := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, *p)
	}
	return out
}

func (r *Room) finalScoresLocked() []Player {
	scores := r.rosterLocked()
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores
}

func (r *Room) remainingLocked() int {
	if r.round == nil {
		return 0
	}
	remaining := r.round.TimeLimit - int(time.Since(r.round.StartedAt).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// advanceTurnLocked clears all drawing flags and walks the fixed turn order
// to the next player who is still present and connected. Returns nil when no
// such player exists. The caller sets IsDrawing on the result.
func (r *Room) advanceTurnLocked() *Player {
	for _, p := range r.players {
		p.IsDrawing = false
	}
	if len(r.turnOrder) == 0 {
		return nil
	}
	for attempts := 0; attempts < len(r.turnOrder); attempts++ {
		r.turnIndex = (r.turnIndex + 1) % len(r.turnOrder)
		if p := r.playerLocked(r.turnOrder[r.turnIndex]); p != nil && p.Connected {
			return p
		}
	}
	return nil
}

func (r *Room) endRoundLocked() *RoundOutcome {
	word := ""
	if r.round != nil {
		word = r.round.Word
	}
	r.round = nil

	next := r.advanceTurnLocked()
	if next == nil || r.connectedCountLocked() < 2 {
		r.enterStateLocked(StatusWaiting)
		return &RoundOutcome{Word: word, ToWaiting: true}
	}
	next.IsDrawing = true
	r.enterStateLocked(StatusRoundEnd)
	r.log.Info().Str("next", next.ID).Msg("round ended")
	return &RoundOutcome{Word: word, NextDrawerID: next.ID}
}

func (r *Room) endGameLocked(winner *Player) {
	for _, p := range r.players {
		p.IsDrawing = false
	}
	r.round = nil
	r.offer = nil
	r.winner = winner
	r.enterStateLocked(StatusGameOver)
	r.log.Info().Str("winner", winner.ID).Msg("game over")
}

// enterStateLocked is the single transition point: it bumps the epoch,
// cancels every timer, and arms exactly the timer set that belongs to the
// new state. Canceling and rearming inside the same critical section keeps
// two timers from racing to end the same round twice.
func (r *Room) enterStateLocked(s Status) {
	r.epoch++
	r.cancelTimersLocked()
	r.status = s
	if r.closed {
		return
	}

	epoch := r.epoch
	switch s {
	case StatusSelecting:
		r.selectionTimer = time.AfterFunc(r.cfg.SelectTimeout, func() {
			r.driver.SelectionTimedOut(r.id, epoch)
		})
	case StatusDrawing:
		limit := time.Duration(r.cfg.RoundTime) * time.Second
		r.roundTimer = time.AfterFunc(limit, func() {
			r.driver.RoundTimedOut(r.id, epoch)
		})
		stop := make(chan struct{})
		r.tickStop = stop
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					r.driver.TickElapsed(r.id, epoch)
				case <-stop:
					return
				}
			}
		}()
	case StatusRoundEnd:
		r.pauseTimer = time.AfterFunc(r.cfg.PauseDelay, func() {
			r.driver.PauseElapsed(r.id, epoch)
		})
	}
}

func (r *Room) cancelTimersLocked() {
	if r.selectionTimer != nil {
		r.selectionTimer.Stop()
		r.selectionTimer = nil
	}
	if r.roundTimer != nil {
		r.roundTimer.Stop()
		r.roundTimer = nil
	}
	if r.pauseTimer != nil {
		r.pauseTimer.Stop()
		r.pauseTimer = nil
	}
	if r.tickStop != nil {
		close(r.tickStop)
		r.tickStop = nil
	}
}

func (r *Room) shutdownLocked() {
	if r.closed {
		return
	}
	r.closed = true
	r.epoch++
	r.cancelTimersLocked()
}
