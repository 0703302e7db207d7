package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/drawonary-backend/internal/apperror"
)

func rosterOf(ids ...string) []*Player {
	players := make([]*Player, 0, len(ids))
	for _, id := range ids {
		players = append(players, &Player{ID: id, Name: "player " + id})
	}

	return players
}

func TestNewScoreboard(t *testing.T) {
	// When: seeding a scoreboard from a three player roster
	scoreboard := NewScoreboard(rosterOf("p1", "p2", "p3"))

	// Then: everyone starts with zero points and shares first place
	require.Len(t, scoreboard.Entries, 3)
	for _, entry := range scoreboard.Entries {
		assert.Equal(t, 0, entry.Score)
		assert.Equal(t, 1, entry.Placement)
	}
}

func TestScoreboard_AddPoints(t *testing.T) {
	t.Run("Adds points to an existing player", func(t *testing.T) {
		// Given: a fresh scoreboard
		scoreboard := NewScoreboard(rosterOf("p1", "p2"))

		// When: awarding points twice
		require.NoError(t, scoreboard.AddPoints("p1", 290))
		require.NoError(t, scoreboard.AddPoints("p1", 90))

		// Then: the score is cumulative
		score, ok := scoreboard.Score("p1")
		require.True(t, ok)
		assert.Equal(t, 380, score)
	})

	t.Run("Unknown player is a programming error", func(t *testing.T) {
		scoreboard := NewScoreboard(rosterOf("p1"))

		err := scoreboard.AddPoints("ghost", 10)

		require.ErrorIs(t, err, apperror.ErrUnknownPlayer)
	})
}

func TestScoreboard_RecomputePlacements(t *testing.T) {
	t.Run("Orders by score and assigns competition ranks", func(t *testing.T) {
		// Given: p2 leads, p1 and p3 are tied below, p4 trails
		scoreboard := NewScoreboard(rosterOf("p1", "p2", "p3", "p4"))
		require.NoError(t, scoreboard.AddPoints("p1", 100))
		require.NoError(t, scoreboard.AddPoints("p2", 300))
		require.NoError(t, scoreboard.AddPoints("p3", 100))
		require.NoError(t, scoreboard.AddPoints("p4", 50))

		// When: recomputing placements
		scoreboard.RecomputePlacements()

		// Then: ties share a placement and the next rank skips the tie
		assert.Equal(t, []ScoreEntry{
			{PlayerID: "p2", DisplayName: "player p2", Score: 300, Placement: 1},
			{PlayerID: "p1", DisplayName: "player p1", Score: 100, Placement: 2},
			{PlayerID: "p3", DisplayName: "player p3", Score: 100, Placement: 2},
			{PlayerID: "p4", DisplayName: "player p4", Score: 50, Placement: 4},
		}, scoreboard.Entries)
	})

	t.Run("Exact ties keep their existing relative order", func(t *testing.T) {
		// Given: two players with equal scores in a known order
		scoreboard := NewScoreboard(rosterOf("first", "second"))
		require.NoError(t, scoreboard.AddPoints("first", 90))
		require.NoError(t, scoreboard.AddPoints("second", 90))

		// When: recomputing twice
		scoreboard.RecomputePlacements()
		scoreboard.RecomputePlacements()

		// Then: the sort is stable
		assert.Equal(t, "first", scoreboard.Entries[0].PlayerID)
		assert.Equal(t, "second", scoreboard.Entries[1].PlayerID)
	})

	t.Run("Lower score never gets a better placement", func(t *testing.T) {
		scoreboard := NewScoreboard(rosterOf("a", "b", "c"))
		require.NoError(t, scoreboard.AddPoints("a", 10))
		require.NoError(t, scoreboard.AddPoints("b", 20))
		require.NoError(t, scoreboard.AddPoints("c", 30))

		scoreboard.RecomputePlacements()

		for i := 1; i < len(scoreboard.Entries); i++ {
			previous, current := scoreboard.Entries[i-1], scoreboard.Entries[i]
			if current.Score < previous.Score {
				assert.Greater(t, current.Placement, previous.Placement)
			} else {
				assert.Equal(t, previous.Placement, current.Placement)
			}
		}
	})
}

func TestScoreboard_SerializationRoundTrip(t *testing.T) {
	// Given: a scoreboard with scores and placements
	scoreboard := NewScoreboard(rosterOf("p1", "p2", "p3"))
	require.NoError(t, scoreboard.AddPoints("p2", 290))
	require.NoError(t, scoreboard.AddPoints("p3", 90))
	scoreboard.RecomputePlacements()

	// When: serializing and deserializing
	data, err := json.Marshal(scoreboard)
	require.NoError(t, err)

	var restored Scoreboard
	require.NoError(t, json.Unmarshal(data, &restored))

	// Then: the round trip is lossless
	require.Equal(t, scoreboard, restored)
}
