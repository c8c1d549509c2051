// Package store defines the single persistence contract for users, the game
// catalog, and the append-only score ledger. Deployment picks the backing
// implementation (postgres or memory); game logic never duplicates per
// backend.
package store

import (
	"context"

	"github.com/game-arcade/internal/domain"
)

// Store is the concurrency-safe persistence interface the arcade core
// consumes. Implementations must be safe for concurrent use.
type Store interface {
	// GetUser returns a user by ID, or domain.ErrUserNotFound.
	GetUser(ctx context.Context, id string) (*domain.User, error)
	// PutUser creates or updates a user record.
	PutUser(ctx context.Context, user *domain.User) error
	// ListUsers returns all known users.
	ListUsers(ctx context.Context) ([]domain.User, error)
	// IncrementGamesPlayed bumps a user's cumulative play counter.
	IncrementGamesPlayed(ctx context.Context, userID string) error

	// EnsureGame returns the catalog row for a game type, creating it from
	// the static name table if it does not exist yet. It never fails on an
	// unknown type; the row falls back to "Unknown Game".
	EnsureGame(ctx context.Context, t domain.GameType) (*domain.Game, error)
	// ListGames returns the current catalog.
	ListGames(ctx context.Context) ([]domain.Game, error)

	// RecordScore appends a score to the ledger. Scores are immutable once
	// written.
	RecordScore(ctx context.Context, score *domain.Score) error
	// ScoresByUser returns a user's scores for one game type, oldest first.
	ScoresByUser(ctx context.Context, userID string, t domain.GameType) ([]domain.Score, error)
	// ListScores returns ledger rows joined with player and game display
	// names, oldest first. Pass domain.GameFilterAll to span all games.
	ListScores(ctx context.Context, filter string) ([]domain.ScoreRow, error)
}
