package domain

import "time"

// Role is a user's access level. The core only reads it for display; access
// control lives with the external auth collaborator.
type Role string

const (
	RoleUser     Role = "user"
	RoleMediator Role = "mediator"
	RoleAdmin    Role = "admin"
)

// User is the slice of the externally-owned user record the core touches:
// identity for display plus the cumulative games-played counter.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Role        Role      `json:"role"`
	GamesPlayed int64     `json:"games_played"`
	CreatedAt   time.Time `json:"created_at"`
}

// Score is one append-only ledger row. Values are never mutated in place;
// "best" and "latest" are derived at query time.
type Score struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	GameType  GameType  `json:"game_type"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoreRow is a ledger row joined with display identity, the shape the
// ranking engine consumes.
type ScoreRow struct {
	Score
	PlayerName string `json:"player_name"`
	GameName   string `json:"game_name"`
}

// LeaderboardEntry is a derived ranking row. It is recomputed on every query
// and never persisted.
type LeaderboardEntry struct {
	Rank       int      `json:"rank"`
	PlayerName string   `json:"player"`
	GameName   string   `json:"game"`
	GameType   GameType `json:"gameType"`
	Score      string   `json:"score"`
	Value      float64  `json:"value"`
	Date       string   `json:"date"`
}

// WinnerAnnouncement marks a new high score. Only typeracer (per-user best)
// and cse17 (global best) submissions ever produce one.
type WinnerAnnouncement struct {
	Player   string   `json:"player"`
	Game     string   `json:"game"`
	GameType GameType `json:"gameType"`
	Score    string   `json:"score"`
	Message  string   `json:"message"`
}
