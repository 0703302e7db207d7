package entity

import (
	"errors"
	"fmt"
	"time"
)

const (
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"

	GameTypeDraw = "draw"
)

var (
	ErrNoOrder       = errors.New("game has no player order")
	ErrTurnNotInGame = errors.New("current drawer is not part of the player order")
	ErrBadRound      = errors.New("round counter is out of range")
)

// Game holds the full mutable state of one draw-and-guess match.
// Word, TurnEndAt, PossibleWords and Revealed are only set while a turn
// is in the matching phase; RoundData maps guesser id to points earned
// this turn and never contains the drawer.
type Game struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	LobbyID     string   `json:"lobby_id"`
	DeckID      string   `json:"deck_id"`
	Round       int      `json:"round"`
	TotalRounds int      `json:"total_rounds"`
	Order       []string `json:"order"`
	Turn        string   `json:"turn"`

	UsedWords     []string   `json:"used_words,omitempty"`
	PossibleWords []string   `json:"possible_words,omitempty"`
	Word          string     `json:"word,omitempty"`
	TurnEndAt     *time.Time `json:"turn_end_at,omitempty"`
	Revealed      []int      `json:"revealed,omitempty"`

	RoundData  map[string]int `json:"round_data"`
	Scoreboard Scoreboard     `json:"scoreboard"`
	Status     string         `json:"status"`
}

func NewGame(id, lobbyID, deckID string, order []string, totalRounds int, scoreboard Scoreboard) *Game {
	return &Game{
		ID:          id,
		Type:        GameTypeDraw,
		LobbyID:     lobbyID,
		DeckID:      deckID,
		Round:       1,
		TotalRounds: totalRounds,
		Order:       order,
		Turn:        order[0],
		RoundData:   make(map[string]int),
		Scoreboard:  scoreboard,
		Status:      StatusOngoing,
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

// HasGuessed reports whether the player already guessed the word this turn.
func (that *Game) HasGuessed(playerID string) bool {
	_, ok := that.RoundData[playerID]
	return ok
}

// AllGuessersDone reports whether every player except the drawer has guessed.
func (that *Game) AllGuessersDone() bool {
	return len(that.RoundData) == len(that.Order)-1
}

// NextDrawer returns the player after the current drawer in the fixed
// order. wrapped is true when the order has been exhausted and the next
// turn would start a new round.
func (that *Game) NextDrawer() (next string, wrapped bool) {
	for i, playerID := range that.Order {
		if playerID != that.Turn {
			continue
		}

		if i+1 >= len(that.Order) {
			return that.Order[0], true
		}

		return that.Order[i+1], false
	}

	// Turn is validated to be a member of Order on load.
	return that.Order[0], true
}

// ResetTurn clears all per-turn fields ahead of a new selection phase.
func (that *Game) ResetTurn() {
	that.Word = ""
	that.TurnEndAt = nil
	that.PossibleWords = nil
	that.Revealed = nil
	that.RoundData = make(map[string]int)
}

// MarkWordsUsed records words so they are never offered again in this game.
func (that *Game) MarkWordsUsed(words []string) {
	that.UsedWords = append(that.UsedWords, words...)
}

// Validate checks the structural invariants of a game loaded from storage.
func (that *Game) Validate() error {
	if that.ID == "" {
		return errors.New("game has no id")
	}

	if len(that.Order) == 0 {
		return ErrNoOrder
	}

	if that.Round < 1 || that.TotalRounds < 1 {
		return fmt.Errorf("%w: round %d of %d", ErrBadRound, that.Round, that.TotalRounds)
	}

	for _, playerID := range that.Order {
		if playerID == that.Turn {
			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrTurnNotInGame, that.Turn)
}
