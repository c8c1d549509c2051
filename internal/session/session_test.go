package session

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/game-arcade/internal/domain"
)

// targetForSeed replays the store's first draw so tests know the hidden
// number without touching internals.
func targetForSeed(seed int64) int {
	return rand.New(rand.NewSource(seed)).Intn(100) + 1
}

func newTestStore(seed int64) *Store {
	return NewStore(rand.New(rand.NewSource(seed)), DefaultMaxAttempts)
}

func wrongGuess(target int) int {
	if target == 1 {
		return 2
	}
	return target - 1
}

func TestGuessWithoutStart(t *testing.T) {
	s := newTestStore(1)
	_, err := s.Guess("u1", 50)
	assert.ErrorIs(t, err, domain.ErrNoActiveGame)
}

func TestWinRecordsAttemptCount(t *testing.T) {
	seed := int64(42)
	target := targetForSeed(seed)
	s := newTestStore(seed)

	s.Start("u1")
	require.Equal(t, StateInProgress, s.StateOf("u1"))

	wrong := wrongGuess(target)
	result, err := s.Guess("u1", wrong)
	require.NoError(t, err)
	assert.False(t, result.IsCorrect)
	assert.Equal(t, 9, result.AttemptsLeft)
	if wrong < target {
		assert.Equal(t, "too low", result.Message)
	} else {
		assert.Equal(t, "too high", result.Message)
	}

	result, err = s.Guess("u1", target)
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, "correct", result.Message)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, target, result.CorrectNumber)
	assert.Contains(t, result.PreviousGuesses, wrong)
	assert.Contains(t, result.PreviousGuesses, target)
	assert.Equal(t, StateWon, s.StateOf("u1"))
}

func TestDuplicateGuessNotCounted(t *testing.T) {
	seed := int64(7)
	target := targetForSeed(seed)
	s := newTestStore(seed)

	s.Start("u1")
	wrong := wrongGuess(target)

	result, err := s.Guess("u1", wrong)
	require.NoError(t, err)
	require.Equal(t, 1, result.Attempts)

	_, err = s.Guess("u1", wrong)
	assert.ErrorIs(t, err, domain.ErrDuplicateGuess)

	// The rejected duplicate must not have consumed an attempt.
	result, err = s.Guess("u1", target)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempts)
}

func TestGuessAfterWin(t *testing.T) {
	seed := int64(3)
	target := targetForSeed(seed)
	s := newTestStore(seed)

	s.Start("u1")
	_, err := s.Guess("u1", target)
	require.NoError(t, err)

	_, err = s.Guess("u1", wrongGuess(target))
	assert.ErrorIs(t, err, domain.ErrGameAlreadyOver)
}

func TestLossRevealsTargetWithoutScore(t *testing.T) {
	seed := int64(11)
	target := targetForSeed(seed)
	s := NewStore(rand.New(rand.NewSource(seed)), 3)

	s.Start("u1")

	// Three wrong guesses exhaust the session.
	wrongs := make([]int, 0, 3)
	for v := 1; len(wrongs) < 3; v++ {
		if v != target {
			wrongs = append(wrongs, v)
		}
	}

	var result *GuessResult
	var err error
	for _, v := range wrongs {
		result, err = s.Guess("u1", v)
		require.NoError(t, err)
	}

	assert.True(t, result.GameOver)
	assert.False(t, result.IsCorrect)
	assert.Equal(t, target, result.CorrectNumber)
	assert.Equal(t, 0, result.AttemptsLeft)
	assert.Equal(t, StateLost, s.StateOf("u1"))

	_, err = s.Guess("u1", target)
	assert.ErrorIs(t, err, domain.ErrGameAlreadyOver)
}

func TestStartOverwritesSession(t *testing.T) {
	seed := int64(5)
	target := targetForSeed(seed)
	s := newTestStore(seed)

	s.Start("u1")
	_, err := s.Guess("u1", wrongGuess(target))
	require.NoError(t, err)

	// A fresh start resets attempts and previous guesses with no carry-over.
	s.Start("u1")
	require.Equal(t, StateInProgress, s.StateOf("u1"))

	result, err := s.Guess("u1", wrongGuess(target))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempts)
}

func TestSessionsAreIndependentPerUser(t *testing.T) {
	s := newTestStore(9)

	s.Start("u1")
	_, err := s.Guess("u2", 50)
	assert.ErrorIs(t, err, domain.ErrNoActiveGame)
	assert.Equal(t, StateNotStarted, s.StateOf("u2"))
}
