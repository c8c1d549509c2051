// Package leaderboard computes ranked views over the score ledger. Views are
// derived on every query and never persisted.
package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/game-arcade/internal/domain"
	"github.com/game-arcade/internal/store"
)

// Engine joins ledger rows with player and game identity and produces ranked
// leaderboard views.
type Engine struct {
	store  store.Store
	logger *slog.Logger
}

// New creates a ranking engine over the given store.
func New(st store.Store, logger *slog.Logger) *Engine {
	return &Engine{store: st, logger: logger}
}

// Rank returns the ranked leaderboard for a game-type filter
// (domain.GameFilterAll spans every game). Sorting compares raw values with
// each row's own better-direction rule: ascending where lower is better,
// descending otherwise. The mixed "all" view deliberately keeps this per-row
// comparator rather than a single global order. The sort is stable, so ties
// keep ledger insertion order, and ranks are always a contiguous 1..N.
func (e *Engine) Rank(ctx context.Context, filter string) ([]domain.LeaderboardEntry, error) {
	rows, err := e.store.ListScores(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing scores: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromRow(row))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if domain.LowerIsBetter(entries[i].GameType) {
			return entries[i].Value < entries[j].Value
		}
		return entries[i].Value > entries[j].Value
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// TypingLeaderboard returns the typing-only view: exactly one entry per user,
// keeping that user's maximum WPM, ranked descending. When no real scores
// exist yet the fixed placeholder board is returned so the view is never
// empty.
func (e *Engine) TypingLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	rows, err := e.store.ListScores(ctx, string(domain.GameTypeRacer))
	if err != nil {
		return nil, fmt.Errorf("listing typeracer scores: %w", err)
	}

	entries := bestPerUser(rows)
	if len(entries) == 0 {
		return placeholderEntries(typingPlaceholders), nil
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// ObstacleTop returns the obstacle-game top-N board: each user's single best
// score, ranked descending, capped at n. Falls back to the fixed placeholder
// board when empty.
func (e *Engine) ObstacleTop(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	rows, err := e.store.ListScores(ctx, string(domain.GameCSE17))
	if err != nil {
		return nil, fmt.Errorf("listing obstacle scores: %w", err)
	}

	entries := bestPerUser(rows)
	if len(entries) == 0 {
		return placeholderEntries(obstaclePlaceholders), nil
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// bestPerUser collapses ledger rows to one entry per user, keeping the
// maximum value. First-seen order is preserved so stable sorting keeps ties
// deterministic.
func bestPerUser(rows []domain.ScoreRow) []domain.LeaderboardEntry {
	index := make(map[string]int)
	var entries []domain.LeaderboardEntry
	for _, row := range rows {
		if i, ok := index[row.UserID]; ok {
			if row.Value > entries[i].Value {
				entries[i] = entryFromRow(row)
			}
			continue
		}
		index[row.UserID] = len(entries)
		entries = append(entries, entryFromRow(row))
	}
	return entries
}

func entryFromRow(row domain.ScoreRow) domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		PlayerName: row.PlayerName,
		GameName:   row.GameName,
		GameType:   row.GameType,
		Score:      domain.FormatValue(row.GameType, row.Value),
		Value:      row.Value,
		Date:       row.CreatedAt.Format(time.DateOnly),
	}
}

type placeholder struct {
	name  string
	t     domain.GameType
	value float64
}

// Fixed empty-state boards: the specialized views render these when no real
// scores exist, so the UI is never blank.
var typingPlaceholders = []placeholder{
	{"Speedy Sam", domain.GameTypeRacer, 60},
	{"Key Masher", domain.GameTypeRacer, 45},
	{"Slow Loris", domain.GameTypeRacer, 30},
}

var obstaclePlaceholders = []placeholder{
	{"Club Pioneer", domain.GameCSE17, 500},
	{"Night Drifter", domain.GameCSE17, 300},
	{"First Timer", domain.GameCSE17, 100},
}

func placeholderEntries(ps []placeholder) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, len(ps))
	for i, p := range ps {
		entries[i] = domain.LeaderboardEntry{
			Rank:       i + 1,
			PlayerName: p.name,
			GameName:   domain.GameName(p.t),
			GameType:   p.t,
			Score:      domain.FormatValue(p.t, p.value),
			Value:      p.value,
			Date:       "",
		}
	}
	return entries
}
