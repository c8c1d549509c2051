// Package postgres provides the durable Store implementation on PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/game-arcade/internal/config"
	"github.com/game-arcade/internal/domain"
)

// Store provides PostgreSQL-based data access
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a new PostgreSQL store
func New(cfg *config.PostgresConfig, logger *slog.Logger) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Store{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (s *Store) Close() {
	s.pool.Close()
}

// RunMigrations executes database migrations
func (s *Store) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'user',
			games_played BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			game_type VARCHAR(32) PRIMARY KEY,
			name VARCHAR(255) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL REFERENCES users(id),
			game_type VARCHAR(32) NOT NULL REFERENCES games(game_type),
			value DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_game ON scores(game_type, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_user ON scores(user_id, game_type, created_at)`,
	}

	for _, migration := range migrations {
		_, err := s.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	s.logger.Info("database migrations completed")
	return nil
}

// GetUser returns a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, username, role, games_played, created_at FROM users WHERE id = $1`
	var u domain.User
	err := s.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.Role, &u.GamesPlayed, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

// PutUser creates or updates a user record.
func (s *Store) PutUser(ctx context.Context, user *domain.User) error {
	role := user.Role
	if role == "" {
		role = domain.RoleUser
	}
	query := `
		INSERT INTO users (id, username, role, games_played, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET username = $2, role = $3
	`
	_, err := s.pool.Exec(ctx, query, user.ID, user.Username, string(role), user.GamesPlayed, time.Now())
	if err != nil {
		return fmt.Errorf("putting user: %w", err)
	}
	return nil
}

// ListUsers returns all users, ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	query := `SELECT id, username, role, games_played, created_at FROM users ORDER BY created_at`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.GamesPlayed, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

// IncrementGamesPlayed bumps a user's play counter.
func (s *Store) IncrementGamesPlayed(ctx context.Context, userID string) error {
	query := `UPDATE users SET games_played = games_played + 1 WHERE id = $1`
	result, err := s.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("incrementing games played: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureGame returns the catalog row for a type, creating it lazily from the
// static name table.
func (s *Store) EnsureGame(ctx context.Context, t domain.GameType) (*domain.Game, error) {
	query := `
		INSERT INTO games (game_type, name)
		VALUES ($1, $2)
		ON CONFLICT (game_type) DO NOTHING
	`
	if _, err := s.pool.Exec(ctx, query, string(t), domain.GameName(t)); err != nil {
		return nil, fmt.Errorf("ensuring game: %w", err)
	}

	var g domain.Game
	err := s.pool.QueryRow(ctx, `SELECT game_type, name FROM games WHERE game_type = $1`, string(t)).
		Scan(&g.Type, &g.Name)
	if err != nil {
		return nil, fmt.Errorf("getting game: %w", err)
	}
	return &g, nil
}

// ListGames returns the current catalog.
func (s *Store) ListGames(ctx context.Context) ([]domain.Game, error) {
	rows, err := s.pool.Query(ctx, `SELECT game_type, name FROM games ORDER BY game_type`)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		var g domain.Game
		if err := rows.Scan(&g.Type, &g.Name); err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, g)
	}
	return games, nil
}

// RecordScore appends a score to the ledger.
func (s *Store) RecordScore(ctx context.Context, score *domain.Score) error {
	id := score.ID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := score.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	query := `
		INSERT INTO scores (id, user_id, game_type, value, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.pool.Exec(ctx, query, id, score.UserID, string(score.GameType), score.Value, createdAt)
	if err != nil {
		return fmt.Errorf("recording score: %w", err)
	}
	return nil
}

// ScoresByUser returns a user's scores for one game type, oldest first.
func (s *Store) ScoresByUser(ctx context.Context, userID string, t domain.GameType) ([]domain.Score, error) {
	query := `
		SELECT id, user_id, game_type, value, created_at
		FROM scores
		WHERE user_id = $1 AND game_type = $2
		ORDER BY created_at
	`
	rows, err := s.pool.Query(ctx, query, userID, string(t))
	if err != nil {
		return nil, fmt.Errorf("getting scores by user: %w", err)
	}
	defer rows.Close()

	var scores []domain.Score
	for rows.Next() {
		var sc domain.Score
		if err := rows.Scan(&sc.ID, &sc.UserID, &sc.GameType, &sc.Value, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		scores = append(scores, sc)
	}
	return scores, nil
}

// ListScores returns ledger rows joined with display names, oldest first.
func (s *Store) ListScores(ctx context.Context, filter string) ([]domain.ScoreRow, error) {
	query := `
		SELECT s.id, s.user_id, s.game_type, s.value, s.created_at, u.username, g.name
		FROM scores s
		JOIN users u ON u.id = s.user_id
		JOIN games g ON g.game_type = s.game_type
	`
	args := []any{}
	if filter != domain.GameFilterAll {
		query += ` WHERE s.game_type = $1`
		args = append(args, filter)
	}
	query += ` ORDER BY s.created_at`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing scores: %w", err)
	}
	defer rows.Close()

	var out []domain.ScoreRow
	for rows.Next() {
		var row domain.ScoreRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.GameType, &row.Value, &row.CreatedAt, &row.PlayerName, &row.GameName); err != nil {
			return nil, fmt.Errorf("scanning score row: %w", err)
		}
		out = append(out, row)
	}
	return out, nil
}
