// Package session holds the transient per-user state for the number guessing
// game. State lives only in process memory, is lost on restart, and is never
// written to durable storage; it is a coordination buffer between the start
// and guess calls of one play session.
package session

import (
	"math/rand"
	"sync"

	"github.com/game-arcade/internal/domain"
)

// State is the lifecycle phase of a guessing session.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateWon
	StateLost
)

const (
	// DefaultMaxAttempts is the number of guesses allowed per session.
	DefaultMaxAttempts = 10

	targetMin = 1
	targetMax = 100
)

// Session is one user's guessing game in flight. Each session carries its own
// mutex so concurrent guesses from the same user serialize without blocking
// other users.
type session struct {
	mu              sync.Mutex
	target          int
	attempts        int
	maxAttempts     int
	previousGuesses []int
	state           State
}

// GuessResult is the outcome of a single guess.
type GuessResult struct {
	Message         string `json:"message"`
	IsCorrect       bool   `json:"isCorrect"`
	AttemptsLeft    int    `json:"attemptsLeft"`
	Attempts        int    `json:"attempts"`
	PreviousGuesses []int  `json:"previousGuesses,omitempty"`
	CorrectNumber   int    `json:"correctNumber,omitempty"`
	GameOver        bool   `json:"gameOver"`
}

// Store keeps at most one live session per user.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*session
	rng         *rand.Rand
	maxAttempts int
}

// NewStore creates a session store drawing targets from rng. The rng is
// guarded by the store mutex, so a shared seeded source is safe here.
func NewStore(rng *rand.Rand, maxAttempts int) *Store {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Store{
		sessions:    make(map[string]*session),
		rng:         rng,
		maxAttempts: maxAttempts,
	}
}

// Start begins a fresh session for the user, overwriting any prior one. The
// target is uniform in [1,100].
func (s *Store) Start(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = &session{
		target:      s.rng.Intn(targetMax-targetMin+1) + targetMin,
		maxAttempts: s.maxAttempts,
		state:       StateInProgress,
	}
}

// Guess applies one guess to the user's live session. Duplicate guesses are
// rejected before the attempt counter moves.
func (s *Store) Guess(userID string, value int) (*GuessResult, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()
	if !ok {
		return nil, domain.ErrNoActiveGame
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch sess.state {
	case StateWon, StateLost:
		return nil, domain.ErrGameAlreadyOver
	case StateNotStarted:
		return nil, domain.ErrNoActiveGame
	}

	for _, prev := range sess.previousGuesses {
		if prev == value {
			return nil, domain.ErrDuplicateGuess
		}
	}

	sess.attempts++
	sess.previousGuesses = append(sess.previousGuesses, value)

	result := &GuessResult{
		Attempts:     sess.attempts,
		AttemptsLeft: sess.maxAttempts - sess.attempts,
	}

	switch {
	case value == sess.target:
		sess.state = StateWon
		result.Message = "correct"
		result.IsCorrect = true
		result.GameOver = true
		result.CorrectNumber = sess.target
		result.PreviousGuesses = append([]int(nil), sess.previousGuesses...)
	case value < sess.target:
		result.Message = "too low"
	default:
		result.Message = "too high"
	}

	if !result.IsCorrect && sess.attempts >= sess.maxAttempts {
		sess.state = StateLost
		result.GameOver = true
		result.CorrectNumber = sess.target
		result.PreviousGuesses = append([]int(nil), sess.previousGuesses...)
	}

	return result, nil
}

// StateOf reports the lifecycle phase of a user's session. Users without a
// session are NotStarted.
func (s *Store) StateOf(userID string) State {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()
	if !ok {
		return StateNotStarted
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}
