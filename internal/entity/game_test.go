package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame() *Game {
	order := []string{"p1", "p2", "p3"}
	return NewGame("g1", "lobby1", "default", order, 3, NewScoreboard(rosterOf(order...)))
}

func TestNewGame(t *testing.T) {
	// When: creating a game for a three player lobby
	game := newTestGame()

	// Then: the game starts at round 1 with the first player drawing
	require.NoError(t, game.Validate())
	assert.Equal(t, 1, game.Round)
	assert.Equal(t, 3, game.TotalRounds)
	assert.Equal(t, "p1", game.Turn)
	assert.Equal(t, StatusOngoing, game.Status)
	assert.Empty(t, game.RoundData)
}

func TestGame_NextDrawer(t *testing.T) {
	t.Run("Moves to the next player in order", func(t *testing.T) {
		game := newTestGame()

		next, wrapped := game.NextDrawer()

		assert.Equal(t, "p2", next)
		assert.False(t, wrapped)
	})

	t.Run("Wraps to the first player after the last", func(t *testing.T) {
		game := newTestGame()
		game.Turn = "p3"

		next, wrapped := game.NextDrawer()

		assert.Equal(t, "p1", next)
		assert.True(t, wrapped)
	})
}

func TestGame_AllGuessersDone(t *testing.T) {
	game := newTestGame()

	// Given: one of two guessers has scored
	game.RoundData["p2"] = 290
	assert.False(t, game.AllGuessersDone())

	// When: the second guesser scores too
	game.RoundData["p3"] = 90

	// Then: everyone but the drawer is done
	assert.True(t, game.AllGuessersDone())
}

func TestGame_ResetTurn(t *testing.T) {
	// Given: a game mid-turn
	game := newTestGame()
	turnEnd := time.Now().Add(time.Minute)
	game.Word = "castle"
	game.TurnEndAt = &turnEnd
	game.PossibleWords = []string{"castle"}
	game.Revealed = []int{2}
	game.RoundData["p2"] = 150

	// When: resetting for a new turn
	game.ResetTurn()

	// Then: all per-turn state is cleared
	assert.Empty(t, game.Word)
	assert.Nil(t, game.TurnEndAt)
	assert.Empty(t, game.PossibleWords)
	assert.Empty(t, game.Revealed)
	assert.Empty(t, game.RoundData)
}

func TestGame_MarkWordsUsed(t *testing.T) {
	game := newTestGame()

	game.MarkWordsUsed([]string{"apple", "castle"})
	game.MarkWordsUsed([]string{"dolphin"})

	// used words only ever grow
	assert.Equal(t, []string{"apple", "castle", "dolphin"}, game.UsedWords)
}

func TestGame_Validate(t *testing.T) {
	t.Run("Rejects a drawer outside the order", func(t *testing.T) {
		game := newTestGame()
		game.Turn = "ghost"

		require.ErrorIs(t, game.Validate(), ErrTurnNotInGame)
	})

	t.Run("Rejects an empty order", func(t *testing.T) {
		game := newTestGame()
		game.Order = nil

		require.ErrorIs(t, game.Validate(), ErrNoOrder)
	})

	t.Run("Rejects an out of range round", func(t *testing.T) {
		game := newTestGame()
		game.Round = 0

		require.ErrorIs(t, game.Validate(), ErrBadRound)
	})
}
