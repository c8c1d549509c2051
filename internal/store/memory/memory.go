// Package memory provides an in-memory Store implementation. It backs tests
// and single-node deployments that do not need durability.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/game-arcade/internal/domain"
)

// Store holds all records in process memory behind a single RWMutex.
type Store struct {
	mu     sync.RWMutex
	users  map[string]*domain.User
	games  map[domain.GameType]*domain.Game
	scores []domain.Score
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users: make(map[string]*domain.User),
		games: make(map[domain.GameType]*domain.Game),
	}
}

// GetUser returns a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// PutUser creates or updates a user record.
func (s *Store) PutUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *user
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	if cp.Role == "" {
		cp.Role = domain.RoleUser
	}
	s.users[cp.ID] = &cp
	return nil
}

// ListUsers returns all users, ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// IncrementGamesPlayed bumps a user's play counter.
func (s *Store) IncrementGamesPlayed(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.GamesPlayed++
	return nil
}

// EnsureGame returns the catalog row for a type, creating it lazily.
func (s *Store) EnsureGame(ctx context.Context, t domain.GameType) (*domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.games[t]; ok {
		cp := *g
		return &cp, nil
	}
	g := &domain.Game{Type: t, Name: domain.GameName(t)}
	s.games[t] = g
	cp := *g
	return &cp, nil
}

// ListGames returns the current catalog.
func (s *Store) ListGames(ctx context.Context) ([]domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]domain.Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, *g)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Type < games[j].Type })
	return games, nil
}

// RecordScore appends a score to the ledger.
func (s *Store) RecordScore(ctx context.Context, score *domain.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *score
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	if _, ok := s.users[cp.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	s.scores = append(s.scores, cp)
	return nil
}

// ScoresByUser returns a user's scores for one game type, oldest first.
func (s *Store) ScoresByUser(ctx context.Context, userID string, t domain.GameType) ([]domain.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Score
	for _, sc := range s.scores {
		if sc.UserID == userID && sc.GameType == t {
			out = append(out, sc)
		}
	}
	return out, nil
}

// ListScores returns ledger rows joined with display names, oldest first.
func (s *Store) ListScores(ctx context.Context, filter string) ([]domain.ScoreRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ScoreRow
	for _, sc := range s.scores {
		if filter != domain.GameFilterAll && string(sc.GameType) != filter {
			continue
		}
		row := domain.ScoreRow{Score: sc, GameName: domain.GameName(sc.GameType)}
		if u, ok := s.users[sc.UserID]; ok {
			row.PlayerName = u.Username
		}
		out = append(out, row)
	}
	return out, nil
}
