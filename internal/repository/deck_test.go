package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/drawonary-backend/internal/apperror"
	"github.com/rocketscienceinc/drawonary-backend/internal/repository/storage"
)

func newDeckRepo(t *testing.T) (context.Context, DeckRepository) {
	t.Helper()

	ctx := context.Background()

	sqliteStorage, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "words.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqliteStorage.Close()
	})

	require.NoError(t, sqliteStorage.Init(ctx))

	return ctx, NewDeckRepository(sqliteStorage.Connection)
}

func TestDeckRepository_CreateDeck(t *testing.T) {
	ctx, deckRepo := newDeckRepo(t)

	// Given: a deck created twice with an overlapping word list
	require.NoError(t, deckRepo.CreateDeck(ctx, "animals", "Animals", []string{"cat", "dolphin"}))
	require.NoError(t, deckRepo.CreateDeck(ctx, "animals", "Animals", []string{"dolphin", "penguin"}))

	// When: picking more words than the deck holds
	words, err := deckRepo.PickWords(ctx, "animals", nil, 10)

	// Then: duplicates were ignored and every word appears once
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"cat", "dolphin", "penguin"}, words)
}

func TestDeckRepository_PickWords(t *testing.T) {
	t.Run("PickWords_RespectsCountAndExclusions", func(t *testing.T) {
		ctx, deckRepo := newDeckRepo(t)

		deck := []string{"cat", "apple", "castle", "dolphin", "giraffe"}
		require.NoError(t, deckRepo.CreateDeck(ctx, "default", "Default", deck))

		// When: picking three words with two already used
		words, err := deckRepo.PickWords(ctx, "default", []string{"cat", "apple"}, 3)

		// Then: exactly three words, none of them excluded
		require.NoError(t, err)
		require.Len(t, words, 3)
		assert.NotContains(t, words, "cat")
		assert.NotContains(t, words, "apple")
	})

	t.Run("PickWords_ExhaustedDeckReturnsFewerWords", func(t *testing.T) {
		ctx, deckRepo := newDeckRepo(t)

		require.NoError(t, deckRepo.CreateDeck(ctx, "tiny", "Tiny", []string{"cat", "apple"}))

		// When: everything but one word is excluded
		words, err := deckRepo.PickWords(ctx, "tiny", []string{"cat"}, 3)

		require.NoError(t, err)
		assert.Equal(t, []string{"apple"}, words)

		// When: every word is excluded
		words, err = deckRepo.PickWords(ctx, "tiny", []string{"cat", "apple"}, 3)

		// Then: no words and no error, the caller decides what to do
		require.NoError(t, err)
		assert.Empty(t, words)
	})

	t.Run("PickWords_UnknownDeck", func(t *testing.T) {
		ctx, deckRepo := newDeckRepo(t)

		_, err := deckRepo.PickWords(ctx, "missing", nil, 3)

		require.ErrorIs(t, err, apperror.ErrDeckNotFound)
	})

	t.Run("PickWords_WordsStayWithinTheirDeck", func(t *testing.T) {
		ctx, deckRepo := newDeckRepo(t)

		require.NoError(t, deckRepo.CreateDeck(ctx, "animals", "Animals", []string{"cat", "dolphin"}))
		require.NoError(t, deckRepo.CreateDeck(ctx, "food", "Food", []string{"apple", "pizza"}))

		words, err := deckRepo.PickWords(ctx, "food", nil, 10)

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"apple", "pizza"}, words)
	})
}
