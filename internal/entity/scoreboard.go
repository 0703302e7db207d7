package entity

import (
	"fmt"
	"sort"

	"github.com/rocketscienceinc/drawonary-backend/internal/apperror"
)

type ScoreEntry struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
	Score       int    `json:"score"`
	Placement   int    `json:"placement"`
}

// Scoreboard is the ranked score table of one game. Entries keep the
// order produced by the last RecomputePlacements call.
type Scoreboard struct {
	Entries []ScoreEntry `json:"entries"`
}

// NewScoreboard seeds a blank scoreboard from the lobby roster; everyone
// starts with zero points and shares first place.
func NewScoreboard(players []*Player) Scoreboard {
	scoreboard := Scoreboard{
		Entries: make([]ScoreEntry, 0, len(players)),
	}

	for _, player := range players {
		scoreboard.Entries = append(scoreboard.Entries, ScoreEntry{
			PlayerID:    player.ID,
			DisplayName: player.Name,
			Avatar:      player.Avatar,
			Score:       0,
			Placement:   1,
		})
	}

	return scoreboard
}

// AddPoints increases a player's cumulative score. Points are never
// negative, so scores only grow. A missing player is a programming error.
func (that *Scoreboard) AddPoints(playerID string, points int) error {
	for i := range that.Entries {
		if that.Entries[i].PlayerID != playerID {
			continue
		}

		that.Entries[i].Score += points

		return nil
	}

	return fmt.Errorf("%w: %s", apperror.ErrUnknownPlayer, playerID)
}

// RecomputePlacements re-sorts entries by score descending and assigns
// competition ranks: equal scores share a placement, and the next lower
// score is placed 1 + the number of players strictly ahead of it.
func (that *Scoreboard) RecomputePlacements() {
	sort.SliceStable(that.Entries, func(i, j int) bool {
		return that.Entries[i].Score > that.Entries[j].Score
	})

	for i := range that.Entries {
		if i > 0 && that.Entries[i].Score == that.Entries[i-1].Score {
			that.Entries[i].Placement = that.Entries[i-1].Placement
			continue
		}

		that.Entries[i].Placement = i + 1
	}
}

// Score returns the current score of a player, or false if the player
// has no entry.
func (that *Scoreboard) Score(playerID string) (int, bool) {
	for i := range that.Entries {
		if that.Entries[i].PlayerID == playerID {
			return that.Entries[i].Score, true
		}
	}

	return 0, false
}
