package game

// Event is the single outbound message shape. Data is one of the payload
// structs below, keyed by Type.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

const (
	EventRoomCreated        = "room-created"
	EventYourIdentity       = "your-identity"
	EventRosterChanged      = "roster-changed"
	EventGameStarted        = "game-started"
	EventWordRevealedLength = "word-revealed-length"
	EventWordRevealedText   = "word-revealed-text"
	EventStrokeAppended     = "stroke-appended"
	EventCanvasCleared      = "canvas-cleared"
	EventChatAppended       = "chat-appended"
	EventGuessCorrect       = "guess-correct"
	EventRoundEnded         = "round-ended"
	EventGameOver           = "game-over"
	EventTimeRemaining      = "time-remaining"
	EventPlayerDisconnected = "player-disconnected"
	EventPlayerReconnected  = "player-reconnected"
	EventFullState          = "full-state"
	EventError              = "error"
)

type RoomCreatedData struct {
	RoomID string `json:"roomId"`
}

type IdentityData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type RosterData struct {
	Players []Player `json:"players"`
}

// GameStartedData announces a new selecting phase. WordOptions is populated
// only in the drawer's view; everyone else receives an empty slice.
type GameStartedData struct {
	DrawerID    string       `json:"drawerId"`
	WordOptions []WordOption `json:"wordOptions"`
}

type WordLengthData struct {
	Length     int        `json:"length"`
	Mask       string     `json:"mask"`
	Difficulty Difficulty `json:"difficulty"`
	TimeLimit  int        `json:"timeLimit"`
}

type WordTextData struct {
	Word       string     `json:"word"`
	Difficulty Difficulty `json:"difficulty"`
	TimeLimit  int        `json:"timeLimit"`
}

type GuessCorrectData struct {
	GuesserID string `json:"guesserId"`
	Word      string `json:"word"`
}

type RoundEndedData struct {
	Word         string `json:"word"`
	NextDrawerID string `json:"nextDrawerId,omitempty"`
}

type GameOverData struct {
	Winner      Player   `json:"winner"`
	FinalScores []Player `json:"finalScores"`
}

type TimeRemainingData struct {
	Seconds int `json:"seconds"`
}

type PlayerConnData struct {
	PlayerID string `json:"playerId"`
}

type ErrorData struct {
	Reason string `json:"reason"`
}

// RoundView is the role-projected slice of the active round inside a
// full-state snapshot. Word is set for the drawer, Mask for everyone else.
type RoundView struct {
	DrawerID   string     `json:"drawerId"`
	Word       string     `json:"word,omitempty"`
	Mask       string     `json:"mask,omitempty"`
	Difficulty Difficulty `json:"difficulty"`
	TimeLimit  int        `json:"timeLimit"`
	Remaining  int        `json:"remaining"`
}

type StateSnapshot struct {
	RoomID   string        `json:"roomId"`
	Status   Status        `json:"gameStatus"`
	Players  []Player      `json:"players"`
	Round    *RoundView    `json:"currentRound,omitempty"`
	Winner   *Player       `json:"winner,omitempty"`
	Messages []ChatMessage `json:"messages"`
	Strokes  []DrawEvent   `json:"drawingData"`
	Config   Config        `json:"config"`
}

// Emitter is the transport seam. Subscribe and Unsubscribe maintain room
// membership for fan-out; Broadcast and Unicast deliver one payload; Project
// lets the engine emit one semantic event and have the transport derive a
// per-connection view (drawer vs guesser visibility).
type Emitter interface {
	Subscribe(connID, roomID string)
	Unsubscribe(connID string)
	Broadcast(roomID string, ev Event)
	BroadcastExcept(roomID, exceptConnID string, ev Event)
	Unicast(connID string, ev Event)
	Project(roomID string, project func(connID string) (Event, bool))
}
