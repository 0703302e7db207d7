// Package event defines the domain events published on per-game and
// per-lobby channels.
package event

import (
	"time"

	"github.com/rocketscienceinc/drawonary-backend/internal/entity"
)

const (
	GameStarted    = "game-started"
	SelectingWord  = "selecting-word"
	WordSelected   = "word-selected"
	ChatMessage    = "chat-message"
	WordGuessed    = "word-guessed"
	TurnEnded      = "turn-ended"
	RoundAdvanced  = "round-advanced"
	GameEnded      = "game-ended"
	LetterRevealed = "letter-revealed"
)

// GameChannel is the pub/sub channel carrying events of one game.
func GameChannel(gameID string) string {
	return "game:" + gameID
}

// LobbyChannel carries lobby-scoped events such as chat and game start.
func LobbyChannel(lobbyID string) string {
	return "lobby:" + lobbyID
}

type GameStartedPayload struct {
	LobbyID  string `json:"lobby_id"`
	GameID   string `json:"game_id"`
	GameType string `json:"game_type"`
}

type SelectingWordPayload struct {
	GameID            string    `json:"game_id"`
	DrawerID          string    `json:"drawer_id"`
	SelectionDeadline time.Time `json:"selection_deadline"`
}

// WordSelectedPayload carries only the word's length, never the word
// itself, so guessers cannot read it off the wire.
type WordSelectedPayload struct {
	GameID     string    `json:"game_id"`
	WordLength int       `json:"word_length"`
	TurnEndAt  time.Time `json:"turn_end_at"`
}

type ChatMessagePayload struct {
	LobbyID   string    `json:"lobby_id"`
	PlayerID  string    `json:"player_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type WordGuessedPayload struct {
	GameID     string            `json:"game_id"`
	PlayerID   string            `json:"player_id"`
	Timestamp  time.Time         `json:"timestamp"`
	Scoreboard entity.Scoreboard `json:"scoreboard"`
}

// TurnEndedPayload reveals the word and this turn's point deltas.
// NextDrawerID is empty when the game ended with this turn.
type TurnEndedPayload struct {
	GameID       string            `json:"game_id"`
	PointDeltas  map[string]int    `json:"point_deltas"`
	Scoreboard   entity.Scoreboard `json:"scoreboard"`
	RevealedWord string            `json:"revealed_word"`
	NextDrawerID string            `json:"next_drawer_id,omitempty"`
}

type RoundAdvancedPayload struct {
	GameID   string `json:"game_id"`
	NewRound int    `json:"new_round"`
}

type GameEndedPayload struct {
	GameID string `json:"game_id"`
}

type LetterRevealedPayload struct {
	GameID   string `json:"game_id"`
	Position int    `json:"position"`
	Letter   string `json:"letter"`
}
