package game

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	IsDrawing bool   `json:"isDrawing"`
	Connected bool   `json:"connected"`
}

func newPlayer(name string) *Player {
	return &Player{
		ID:        uuid.NewString()[:8],
		Name:      name,
		Connected: true,
	}
}

type ChatMessage struct {
	ID         string `json:"id"`
	SenderID   string `json:"playerId"`
	SenderName string `json:"playerName"`
	Text       string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
	IsGuess    bool   `json:"isGuess,omitempty"`
	IsCorrect  bool   `json:"isCorrect,omitempty"`
	IsClose    bool   `json:"isClose,omitempty"`
}

func newChatMessage(sender *Player, text string) ChatMessage {
	return ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   sender.ID,
		SenderName: sender.Name,
		Text:       text,
		Timestamp:  time.Now().UnixMilli(),
	}
}

// DrawEvent is an opaque stroke batch. The engine stores and relays it; it
// never interprets the point data.
type DrawEvent struct {
	Points    json.RawMessage `json:"points"`
	SessionID string          `json:"sessionId"`
}
