package types

import "github.com/DoyleJ11/decrypto-backend/internal/engine"

const (
	MsgStart          = "start"
	MsgSendClue       = "sendClue"
	MsgSendEnemyGuess = "sendEnemyGuess"
	MsgSendTeamGuess  = "sendTeamGuess"
	MsgLateJoin       = "lateJoin"
	MsgChangeTeam     = "changeTeam"
	MsgShuffle        = "shuffle"
)

const (
	MsgStatus  = "status"
	MsgHistory = "history"
	MsgPlayers = "players"
	MsgError   = "error"
)

type ClientMessage struct {
	Type  string   `json:"type"`
	Clues []string `json:"clues,omitempty"`
	Guess []int    `json:"guess,omitempty"`
	Team  *int     `json:"team,omitempty"`
}

type ServerMessage struct {
	Type    string            `json:"type"` // "status" | "history" | "players" | "error"
	Version int               `json:"version,omitempty"`
	Status  *engine.Status    `json:"status,omitempty"`
	History *engine.History   `json:"history,omitempty"`
	Teams   *[2][]engine.Seat `json:"teams,omitempty"`
	Error   string            `json:"error,omitempty"`
}
