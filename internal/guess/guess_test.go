package guess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("Trims and lower-cases", func(t *testing.T) {
		// When: normalizing a padded mixed-case word
		got := Normalize("  CaT ")

		// Then: surrounding whitespace is gone and the word is folded
		require.Equal(t, "cat", got)
	})

	t.Run("Folds multi-byte characters", func(t *testing.T) {
		// When: normalizing words with non-ASCII upper-case letters
		require.Equal(t, "ärger", Normalize("ÄRGER"))
		require.Equal(t, "ščuka", Normalize("ŠČUKA"))
	})
}

func TestMatches(t *testing.T) {
	t.Run("Exact match after normalization", func(t *testing.T) {
		assert.True(t, Matches("Katze", "  katze "))
	})

	t.Run("Different words do not match", func(t *testing.T) {
		assert.False(t, Matches("cat", "cats"))
	})
}

func TestSimilarity(t *testing.T) {
	t.Run("Identical words score 100", func(t *testing.T) {
		require.InDelta(t, 100, Similarity("giraffe", "giraffe"), 0.0001)
	})

	t.Run("Empty guess scores 0", func(t *testing.T) {
		require.InDelta(t, 0, Similarity("giraffe", ""), 0.0001)
	})

	t.Run("Near miss crosses the close-guess threshold", func(t *testing.T) {
		// Given: word "cat" and guess "cats"
		similarity := Similarity("cat", "cats")

		// Then: 2*3/(3+4)*100 ≈ 85.71, at or above the 85 threshold
		require.InDelta(t, 2.0*3/7*100, similarity, 0.0001)
		assert.GreaterOrEqual(t, similarity, 85.0)

		// Then: it is not an exact match, so it counts as a close guess
		assert.False(t, Matches("cat", "cats"))
	})

	t.Run("Unrelated words score low", func(t *testing.T) {
		assert.Less(t, Similarity("volcano", "penguin"), 50.0)
	})

	t.Run("Matches across the longest common substring split", func(t *testing.T) {
		// Given: inputs sharing a middle block plus leftovers on both sides
		// "xworldy" vs "aworldb": longest common substring "world" (5),
		// nothing else aligns on either side
		similarity := Similarity("xworldy", "aworldb")

		require.InDelta(t, 2.0*5/14*100, similarity, 0.0001)
	})

	t.Run("Case folding applies before scoring", func(t *testing.T) {
		require.InDelta(t, 100, Similarity("KANGAROO", "kangaroo"), 0.0001)
	})
}
