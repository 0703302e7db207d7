package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/drawonary-backend/internal/apperror"
	"github.com/rocketscienceinc/drawonary-backend/testing/suite"
)

func TestLobbyRepository_Players(t *testing.T) {
	t.Run("Players_ReturnsRosterInJoinOrder", func(t *testing.T) {
		ctx, st := suite.New(t)

		lobbyRepo := NewLobbyRepository(st.Storage)

		// Given: three players joined in order
		require.NoError(t, lobbyRepo.AddPlayer(ctx, "lobby1", "p1"))
		require.NoError(t, lobbyRepo.AddPlayer(ctx, "lobby1", "p2"))
		require.NoError(t, lobbyRepo.AddPlayer(ctx, "lobby1", "p3"))

		// When: reading the roster
		players, err := lobbyRepo.Players(ctx, "lobby1")

		// Then: the join order is preserved
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2", "p3"}, players)
	})

	t.Run("Players_EmptyLobbyIsNotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		lobbyRepo := NewLobbyRepository(st.Storage)

		_, err := lobbyRepo.Players(ctx, "empty")

		require.ErrorIs(t, err, apperror.ErrLobbyNotFound)
	})
}

func TestLobbyRepository_GameID(t *testing.T) {
	t.Run("GameID_ResolvesTheAttachedGame", func(t *testing.T) {
		ctx, st := suite.New(t)

		lobbyRepo := NewLobbyRepository(st.Storage)

		// Given: a game attached to the lobby
		require.NoError(t, lobbyRepo.SetGame(ctx, "lobby1", "draw", "game123"))

		// When: resolving the lobby's game
		gameID, err := lobbyRepo.GameID(ctx, "lobby1")

		require.NoError(t, err)
		assert.Equal(t, "game123", gameID)
	})

	t.Run("GameID_NoGameIsNotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		lobbyRepo := NewLobbyRepository(st.Storage)

		_, err := lobbyRepo.GameID(ctx, "lobby1")

		require.ErrorIs(t, err, apperror.ErrLobbyNotFound)
	})
}
