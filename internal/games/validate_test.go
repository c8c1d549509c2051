package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/game-arcade/internal/domain"
)

func TestValidateGuess(t *testing.T) {
	assert.NoError(t, ValidateGuess(1))
	assert.NoError(t, ValidateGuess(100))
	assert.ErrorIs(t, ValidateGuess(0), domain.ErrInvalidRequest)
	assert.ErrorIs(t, ValidateGuess(101), domain.ErrInvalidRequest)
	assert.ErrorIs(t, ValidateGuess(-5), domain.ErrInvalidRequest)
}

func TestParseReactionTime(t *testing.T) {
	seconds, err := ParseReactionTime("9.8")
	require.NoError(t, err)
	assert.Equal(t, 9.8, seconds)

	_, err = ParseReactionTime("0")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = ParseReactionTime("-1.5")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = ParseReactionTime("fast")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestValidateTypingRound(t *testing.T) {
	assert.NoError(t, ValidateTypingRound(0, 0))
	assert.NoError(t, ValidateTypingRound(120, 100))
	assert.ErrorIs(t, ValidateTypingRound(-1, 90), domain.ErrInvalidRequest)
	assert.ErrorIs(t, ValidateTypingRound(60, 101), domain.ErrInvalidRequest)
	assert.ErrorIs(t, ValidateTypingRound(60, -0.1), domain.ErrInvalidRequest)
}

func TestValidateObstacleScore(t *testing.T) {
	assert.NoError(t, ValidateObstacleScore(0))
	assert.NoError(t, ValidateObstacleScore(450))
	assert.ErrorIs(t, ValidateObstacleScore(-1), domain.ErrInvalidRequest)
}
