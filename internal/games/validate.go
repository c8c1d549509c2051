package games

import (
	"strconv"

	"github.com/game-arcade/internal/domain"
)

// Request-boundary validation. Invalid values are rejected here so resolvers
// and the ledger only ever see sane input.

// ValidateGuess checks a guessing-game submission against the [1,100] range.
func ValidateGuess(value int) error {
	if value < 1 || value > 100 {
		return domain.ErrInvalidRequest
	}
	return nil
}

// ParseReactionTime parses a redlight finish time submitted as a decimal
// string of seconds.
func ParseReactionTime(raw string) (float64, error) {
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds <= 0 {
		return 0, domain.ErrInvalidRequest
	}
	return seconds, nil
}

// ValidateTypingRound checks a typeracer round submission.
func ValidateTypingRound(wpm, accuracy float64) error {
	if wpm < 0 || accuracy < 0 || accuracy > 100 {
		return domain.ErrInvalidRequest
	}
	return nil
}

// ValidateObstacleScore checks a cse17 obstacle-run submission.
func ValidateObstacleScore(score float64) error {
	if score < 0 {
		return domain.ErrInvalidRequest
	}
	return nil
}
