// Package guess implements the number guessing game engine.
package guess

import (
	"fmt"
	"math/rand"

	apperrors "taskninja/internal/errors"
)

// Difficulty defines the number range and attempt budget of a game.
type Difficulty struct {
	Key         string
	Label       string
	Min, Max    int
	MaxAttempts int
}

// Difficulties lists the presets in menu order.
var Difficulties = []Difficulty{
	{"easy", "Easy", 1, 50, 10},
	{"medium", "Medium", 1, 100, 7},
	{"hard", "Hard", 1, 200, 5},
}

// FindDifficulty returns the preset with the given key.
func FindDifficulty(key string) (Difficulty, error) {
	for _, d := range Difficulties {
		if d.Key == key {
			return d, nil
		}
	}
	return Difficulty{}, apperrors.InvalidInput(fmt.Sprintf("unknown difficulty %q", key))
}

// Outcome classifies a single guess.
type Outcome int

const (
	TooLow Outcome = iota
	TooHigh
	Correct
)

// Game is one round of the guessing game.
type Game struct {
	Difficulty Difficulty
	Secret     int
	Attempts   int
	Guesses    []int
	Won        bool
}

// New starts a game with a secret drawn from rng, which is injectable so
// tests can fix the seed.
func New(d Difficulty, rng *rand.Rand) *Game {
	return &Game{
		Difficulty: d,
		Secret:     d.Min + rng.Intn(d.Max-d.Min+1),
	}
}

// Guess records an attempt and classifies it. Guessing after the game is
// over is an input error.
func (g *Game) Guess(n int) (Outcome, error) {
	if g.Over() {
		return 0, apperrors.InvalidInput("the game is already over")
	}
	if n < g.Difficulty.Min || n > g.Difficulty.Max {
		return 0, apperrors.InvalidInput(fmt.Sprintf("guess must be between %d and %d", g.Difficulty.Min, g.Difficulty.Max))
	}

	g.Attempts++
	g.Guesses = append(g.Guesses, n)

	switch {
	case n == g.Secret:
		g.Won = true
		return Correct, nil
	case n < g.Secret:
		return TooLow, nil
	default:
		return TooHigh, nil
	}
}

// Over reports whether the game has ended.
func (g *Game) Over() bool {
	return g.Won || g.Attempts >= g.Difficulty.MaxAttempts
}

// Remaining returns the attempts left.
func (g *Game) Remaining() int {
	return g.Difficulty.MaxAttempts - g.Attempts
}

// Score rewards fewer attempts: full range size for a first-try win, down
// to a tenth for a last-attempt win, zero for a loss.
func (g *Game) Score() int {
	if !g.Won {
		return 0
	}
	size := g.Difficulty.Max - g.Difficulty.Min + 1
	score := size * (g.Difficulty.MaxAttempts - g.Attempts + 1) / g.Difficulty.MaxAttempts
	return score
}
