package domain

import "errors"

// Domain errors
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrGameNotFound    = errors.New("game not found")
	ErrNoActiveGame    = errors.New("no active game, start a new one first")
	ErrGameAlreadyOver = errors.New("game is already over, start a new one")
	ErrDuplicateGuess  = errors.New("you already tried that number")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInternalError   = errors.New("internal server error")
)

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrGameNotFound)
}

// IsGameplayError reports whether an error is a soft game-logic failure that
// should reach the client as an in-context payload rather than an HTTP error.
func IsGameplayError(err error) bool {
	return errors.Is(err, ErrNoActiveGame) || errors.Is(err, ErrGameAlreadyOver) || errors.Is(err, ErrDuplicateGuess)
}
