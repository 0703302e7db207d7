package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/drawonary-backend/internal/apperror"
	"github.com/rocketscienceinc/drawonary-backend/internal/entity"
	"github.com/rocketscienceinc/drawonary-backend/internal/event"
)

// Deferred task names. The tasks race with live user actions by design:
// every handler re-checks the phase it expects and no-ops otherwise.
const (
	TaskAutoSelectWord = "auto-select-word"
	TaskEndTurn        = "end-turn"
	TaskRevealLetter   = "reveal-letter"
)

// AutoSelectPayload carries the candidates offered when the selection
// window opened; if they no longer match the stored ones the task is stale.
type AutoSelectPayload struct {
	GameID     string   `json:"game_id"`
	Candidates []string `json:"candidates"`
}

// EndTurnPayload carries the word the turn was started with; if the
// stored word differs the turn has already ended.
type EndTurnPayload struct {
	GameID string `json:"game_id"`
	Word   string `json:"word"`
}

type RevealLetterPayload struct {
	GameID string `json:"game_id"`
	Word   string `json:"word"`
}

type taskRegistry interface {
	Register(name string, handler func(ctx context.Context, payload json.RawMessage) error) error
}

// RegisterTasks binds the coordinator's deferred task handlers.
func RegisterTasks(registry taskRegistry, coordinator *Coordinator) error {
	handlers := map[string]func(ctx context.Context, payload json.RawMessage) error{
		TaskAutoSelectWord: coordinator.handleAutoSelectWord,
		TaskEndTurn:        coordinator.handleEndTurn,
		TaskRevealLetter:   coordinator.handleRevealLetter,
	}

	for name, handler := range handlers {
		if err := registry.Register(name, handler); err != nil {
			return fmt.Errorf("failed to register task handler: %w", err)
		}
	}

	return nil
}

// handleAutoSelectWord picks a random candidate when the drawer let the
// selection window lapse.
func (that *Coordinator) handleAutoSelectWord(ctx context.Context, payload json.RawMessage) error {
	var task AutoSelectPayload
	if err := json.Unmarshal(payload, &task); err != nil {
		return fmt.Errorf("failed to unmarshal auto-select payload: %w", err)
	}

	if len(task.Candidates) == 0 {
		return fmt.Errorf("%w: no candidates to select from", apperror.ErrStaleTask)
	}

	word := task.Candidates[rand.Intn(len(task.Candidates))] //nolint:gosec // not used for security

	that.logger.Info("auto-selecting word", "gameID", task.GameID)

	return that.setWord(ctx, task.GameID, word, task.Candidates)
}

func (that *Coordinator) handleEndTurn(ctx context.Context, payload json.RawMessage) error {
	var task EndTurnPayload
	if err := json.Unmarshal(payload, &task); err != nil {
		return fmt.Errorf("failed to unmarshal end-turn payload: %w", err)
	}

	return that.EndTurn(ctx, task.GameID, task.Word)
}

// handleRevealLetter uncovers one random still-hidden letter of the word
// as a staged hint.
func (that *Coordinator) handleRevealLetter(ctx context.Context, payload json.RawMessage) error {
	var task RevealLetterPayload
	if err := json.Unmarshal(payload, &task); err != nil {
		return fmt.Errorf("failed to unmarshal reveal-letter payload: %w", err)
	}

	var (
		position int
		letter   string
	)

	_, err := that.games.Update(ctx, task.GameID, func(game *entity.Game) error {
		if game.IsFinished() {
			return fmt.Errorf("%w: game is finished", apperror.ErrStaleTask)
		}

		if game.Word == "" || game.Word != task.Word {
			return fmt.Errorf("%w: turn has already ended", apperror.ErrStaleTask)
		}

		runes := []rune(game.Word)

		hidden := make([]int, 0, len(runes))
		for i := range runes {
			if !containsPosition(game.Revealed, i) {
				hidden = append(hidden, i)
			}
		}

		if len(hidden) == 0 {
			return fmt.Errorf("%w: every letter is already revealed", apperror.ErrStaleTask)
		}

		position = hidden[rand.Intn(len(hidden))] //nolint:gosec // not used for security
		letter = string(runes[position])

		game.Revealed = append(game.Revealed, position)

		return nil
	})
	if err != nil {
		return err
	}

	that.publish(ctx, event.GameChannel(task.GameID), event.LetterRevealed, event.LetterRevealedPayload{
		GameID:   task.GameID,
		Position: position,
		Letter:   letter,
	})

	return nil
}

func containsPosition(positions []int, position int) bool {
	for _, p := range positions {
		if p == position {
			return true
		}
	}

	return false
}
