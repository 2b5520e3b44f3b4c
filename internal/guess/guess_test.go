package guess

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	d, err := FindDifficulty("medium")
	require.NoError(t, err)
	return New(d, rand.New(rand.NewSource(42)))
}

func TestNew_SecretInRange(t *testing.T) {
	for _, d := range Difficulties {
		for seed := int64(0); seed < 20; seed++ {
			g := New(d, rand.New(rand.NewSource(seed)))
			assert.GreaterOrEqual(t, g.Secret, d.Min)
			assert.LessOrEqual(t, g.Secret, d.Max)
		}
	}
}

func TestGuess_HintsAndWin(t *testing.T) {
	g := newTestGame(t)

	out, err := g.Guess(g.Secret - 1)
	require.NoError(t, err)
	assert.Equal(t, TooLow, out)

	out, err = g.Guess(g.Secret + 1)
	require.NoError(t, err)
	assert.Equal(t, TooHigh, out)

	out, err = g.Guess(g.Secret)
	require.NoError(t, err)
	assert.Equal(t, Correct, out)
	assert.True(t, g.Won)
	assert.True(t, g.Over())
	assert.Equal(t, 3, g.Attempts)
	assert.Positive(t, g.Score())
}

func TestGuess_OutOfRange(t *testing.T) {
	g := newTestGame(t)
	_, err := g.Guess(0)
	assert.Error(t, err)
	_, err = g.Guess(1000)
	assert.Error(t, err)
	assert.Zero(t, g.Attempts, "rejected guesses do not consume attempts")
}

func TestGame_LossAfterBudget(t *testing.T) {
	g := newTestGame(t)
	wrong := g.Secret - 1
	if wrong < g.Difficulty.Min {
		wrong = g.Secret + 1
	}
	for i := 0; i < g.Difficulty.MaxAttempts; i++ {
		_, err := g.Guess(wrong)
		require.NoError(t, err)
	}
	assert.True(t, g.Over())
	assert.False(t, g.Won)
	assert.Zero(t, g.Remaining())
	assert.Zero(t, g.Score())

	_, err := g.Guess(g.Secret)
	assert.Error(t, err, "guessing after game over is rejected")
}

func TestScore_RewardsFewerAttempts(t *testing.T) {
	quick := newTestGame(t)
	_, err := quick.Guess(quick.Secret)
	require.NoError(t, err)

	slow := newTestGame(t)
	wrong := slow.Secret - 1
	if wrong < slow.Difficulty.Min {
		wrong = slow.Secret + 1
	}
	_, _ = slow.Guess(wrong)
	_, _ = slow.Guess(wrong)
	_, err = slow.Guess(slow.Secret)
	require.NoError(t, err)

	assert.Greater(t, quick.Score(), slow.Score())
}

func TestFindDifficulty_Unknown(t *testing.T) {
	_, err := FindDifficulty("impossible")
	assert.Error(t, err)
}
