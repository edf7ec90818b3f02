package game

import "errors"

// Expected business-rule rejections. These are returned, never panicked; the
// orchestrator turns them into a single generic error notification.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrNameTaken        = errors.New("name already taken")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrWrongStatus      = errors.New("action not valid in current game status")
	ErrNotDrawer        = errors.New("only the drawer may do that")
	ErrInvalidWord      = errors.New("word is not part of the current offer")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrNotInRoom        = errors.New("connection is not in a room")
)
