// Package service wires the game resolvers, the score ledger, the ranking
// views, and the broadcast hub into the arcade's submission flow.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/game-arcade/internal/domain"
	"github.com/game-arcade/internal/games"
	"github.com/game-arcade/internal/session"
	"github.com/game-arcade/internal/store"
)

// BestScoreIndex answers the new-high-score predicates. Submit reports
// whether the value beats the user's previous best and the global best for
// the game's comparison direction.
type BestScoreIndex interface {
	Submit(ctx context.Context, t domain.GameType, userID string, value float64) (personalBest, globalBest bool, err error)
}

// Broadcaster pushes a recomputed leaderboard, optionally with a winner
// announcement, to all connected viewers.
type Broadcaster interface {
	BroadcastLeaderboard(filter string, winner *domain.WinnerAnnouncement)
}

// Arcade provides the game submission and query flow.
type Arcade struct {
	store    store.Store
	sessions *session.Store
	wheel    *games.SpinWheel
	racer    *games.TypeRacer
	index    BestScoreIndex
	hub      Broadcaster
	logger   *slog.Logger
}

// New creates the arcade service.
func New(
	st store.Store,
	sessions *session.Store,
	wheel *games.SpinWheel,
	racer *games.TypeRacer,
	index BestScoreIndex,
	hub Broadcaster,
	logger *slog.Logger,
) *Arcade {
	return &Arcade{
		store:    st,
		sessions: sessions,
		wheel:    wheel,
		racer:    racer,
		index:    index,
		hub:      hub,
		logger:   logger,
	}
}

// EnsureUser returns the user record for an authenticated identity, creating
// it on first sight. Authentication itself happens upstream; this is the seam
// where the external collaborator's identity enters the core.
func (a *Arcade) EnsureUser(ctx context.Context, id, username string) (*domain.User, error) {
	user, err := a.store.GetUser(ctx, id)
	if err == nil {
		return user, nil
	}
	if !domain.IsNotFoundError(err) {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	user = &domain.User{ID: id, Username: username, Role: domain.RoleUser}
	if err := a.store.PutUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// StartGuessing begins a fresh guessing session for the user and counts the
// play. Any prior session is overwritten with no carry-over.
func (a *Arcade) StartGuessing(ctx context.Context, userID string) error {
	a.sessions.Start(userID)
	if err := a.store.IncrementGamesPlayed(ctx, userID); err != nil {
		return fmt.Errorf("counting play: %w", err)
	}
	return nil
}

// Guess applies one guess to the user's live session. A winning guess records
// a ledger score equal to the attempt count; a loss records nothing.
func (a *Arcade) Guess(ctx context.Context, userID string, value int) (*session.GuessResult, error) {
	result, err := a.sessions.Guess(userID, value)
	if err != nil {
		return nil, err
	}

	if result.IsCorrect {
		if _, err := a.recordScore(ctx, userID, domain.GameGuessing, float64(result.Attempts)); err != nil {
			// The session is already Won and the guess cannot be replayed, so
			// the win stands; the dropped score is logged, not lost silently.
			a.logger.Error("dropping guessing score, ledger write failed",
				"user_id", userID,
				"attempts", result.Attempts,
				"error", err,
			)
		}
	}
	return result, nil
}

// Spin resolves one wheel draw and counts the play. "Try Again" outcomes
// yield zero value and never reach the ledger.
func (a *Arcade) Spin(ctx context.Context, userID string) (*games.SpinResult, error) {
	if err := a.store.IncrementGamesPlayed(ctx, userID); err != nil {
		return nil, fmt.Errorf("counting play: %w", err)
	}

	result := a.wheel.Spin()
	if result.Recorded {
		if _, err := a.recordScore(ctx, userID, domain.GameSpinWheel, result.Value); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// StartRound counts the start of an interactive round for games without
// server-side session state (redlight, bread). Starts and scores are separate
// counter triggers; submitting a score never increments the counter.
func (a *Arcade) StartRound(ctx context.Context, userID string) error {
	if err := a.store.IncrementGamesPlayed(ctx, userID); err != nil {
		return fmt.Errorf("counting play: %w", err)
	}
	return nil
}

// StartTypingRound counts the play and returns the round's prompt text.
func (a *Arcade) StartTypingRound(ctx context.Context, userID string) (string, error) {
	if err := a.store.IncrementGamesPlayed(ctx, userID); err != nil {
		return "", fmt.Errorf("counting play: %w", err)
	}
	return a.racer.Prompt(), nil
}

// SubmitReactionTime records a redlight finish time in seconds.
func (a *Arcade) SubmitReactionTime(ctx context.Context, userID string, seconds float64) error {
	_, err := a.recordScore(ctx, userID, domain.GameRedLight, seconds)
	return err
}

// SubmitTypingRound records a finished typing round. WPM is always recorded,
// normal end or timeout alike. A new personal best triggers a winner
// broadcast.
func (a *Arcade) SubmitTypingRound(ctx context.Context, userID string, wpm float64) (*domain.WinnerAnnouncement, error) {
	return a.recordScore(ctx, userID, domain.GameTypeRacer, wpm)
}

// SubmitObstacleScore records a cse17 obstacle run, win or lose. Beating the
// global high score triggers a winner broadcast.
func (a *Arcade) SubmitObstacleScore(ctx context.Context, userID string, score float64) (*domain.WinnerAnnouncement, error) {
	return a.recordScore(ctx, userID, domain.GameCSE17, score)
}

// SubmitScore is the generic ingestion path (bulk/Kafka): it validates the
// value against the game's rule before recording.
func (a *Arcade) SubmitScore(ctx context.Context, userID string, t domain.GameType, value float64) error {
	var err error
	switch t {
	case domain.GameRedLight:
		if value <= 0 {
			err = domain.ErrInvalidRequest
		}
	case domain.GameTypeRacer:
		err = games.ValidateTypingRound(value, 100)
	case domain.GameCSE17, domain.GameSpinWheel:
		err = games.ValidateObstacleScore(value)
	default:
		err = domain.ErrInvalidRequest
	}
	if err != nil {
		return err
	}
	_, err = a.recordScore(ctx, userID, t, value)
	return err
}

// recordScore appends a score to the ledger, creating the game catalog row
// lazily, updates the best-score index, and broadcasts a winner announcement
// when the submission's game defines a new-high-score predicate and it fires.
func (a *Arcade) recordScore(ctx context.Context, userID string, t domain.GameType, value float64) (*domain.WinnerAnnouncement, error) {
	user, err := a.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	if _, err := a.store.EnsureGame(ctx, t); err != nil {
		return nil, fmt.Errorf("ensuring game: %w", err)
	}

	if err := a.store.RecordScore(ctx, &domain.Score{UserID: userID, GameType: t, Value: value}); err != nil {
		return nil, fmt.Errorf("recording score: %w", err)
	}

	personalBest, globalBest, err := a.index.Submit(ctx, t, userID, value)
	if err != nil {
		// The ledger row is already durable; a stale index self-heals on the
		// next worker sync.
		a.logger.Warn("failed to update best-score index", "game_type", t, "error", err)
		return nil, nil
	}

	winner := a.winnerFor(t, user, value, personalBest, globalBest)
	if winner != nil {
		a.hub.BroadcastLeaderboard(string(t), winner)
	}
	return winner, nil
}

// winnerFor applies the per-game new-high-score predicate: typeracer fires on
// a new personal best, cse17 on a new global best. Other games never announce.
func (a *Arcade) winnerFor(t domain.GameType, user *domain.User, value float64, personalBest, globalBest bool) *domain.WinnerAnnouncement {
	var message string
	switch {
	case t == domain.GameTypeRacer && personalBest:
		message = fmt.Sprintf("%s set a new personal best!", user.Username)
	case t == domain.GameCSE17 && globalBest:
		message = fmt.Sprintf("%s set a new high score!", user.Username)
	default:
		return nil
	}

	return &domain.WinnerAnnouncement{
		Player:   user.Username,
		Game:     domain.GameName(t),
		GameType: t,
		Score:    domain.FormatValue(t, value),
		Message:  message,
	}
}

// GameStats is the per-user summary behind the stats endpoints.
type GameStats struct {
	GamesPlayed int64   `json:"gamesPlayed"`
	WinRate     float64 `json:"winRate"`
	BestScore   string  `json:"bestScore"`
}

// Stats summarizes a user's results for one game: the cumulative play
// counter, the share of counted plays that produced a ledger score, and the
// best recorded value for the game's comparison direction.
func (a *Arcade) Stats(ctx context.Context, userID string, t domain.GameType) (*GameStats, error) {
	user, err := a.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	scores, err := a.store.ScoresByUser(ctx, userID, t)
	if err != nil {
		return nil, fmt.Errorf("getting scores: %w", err)
	}

	stats := &GameStats{GamesPlayed: user.GamesPlayed}
	if user.GamesPlayed > 0 {
		stats.WinRate = float64(len(scores)) / float64(user.GamesPlayed)
		if stats.WinRate > 1 {
			stats.WinRate = 1
		}
	}

	if len(scores) > 0 {
		best := scores[0].Value
		for _, sc := range scores[1:] {
			if domain.LowerIsBetter(t) && sc.Value < best {
				best = sc.Value
			} else if !domain.LowerIsBetter(t) && sc.Value > best {
				best = sc.Value
			}
		}
		stats.BestScore = domain.FormatValue(t, best)
	}
	return stats, nil
}
