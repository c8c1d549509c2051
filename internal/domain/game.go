package domain

import (
	"fmt"
)

// GameType identifies one of the fixed mini-games in the catalog.
type GameType string

const (
	GameGuessing  GameType = "guessing"
	GameSpinWheel GameType = "spinwheel"
	GameRedLight  GameType = "redlight"
	GameTypeRacer GameType = "typeracer"
	GameCSE17     GameType = "cse17"

	// GameFilterAll selects scores across every game type in leaderboard queries.
	GameFilterAll = "all"
)

// Game is a catalog entry. Rows are created lazily on the first score of a
// type and are immutable afterwards.
type Game struct {
	Type GameType `json:"gameType"`
	Name string   `json:"name"`
}

// gameNames is the static display-name lookup used for lazy catalog creation.
var gameNames = map[GameType]string{
	GameGuessing:  "Number Guessing",
	GameSpinWheel: "Spin Wheel",
	GameRedLight:  "Red Light, Green Light",
	GameTypeRacer: "Type Racer",
	GameCSE17:     "CSE-17 Obstacle Run",
}

// GameName returns the display name for a game type. An unrecognized type
// falls back to "Unknown Game"; that indicates a programming error upstream,
// never a user-facing failure.
func GameName(t GameType) string {
	if name, ok := gameNames[t]; ok {
		return name
	}
	return "Unknown Game"
}

// KnownGameType reports whether t is part of the fixed catalog.
func KnownGameType(t GameType) bool {
	_, ok := gameNames[t]
	return ok
}

// LowerIsBetter returns the comparison direction for a game type. Guessing
// counts attempts and redlight counts seconds, so fewer wins; every other
// game scores points or words per minute, so more wins.
func LowerIsBetter(t GameType) bool {
	return t == GameGuessing || t == GameRedLight
}

// FormatValue renders a raw score value for display. Formatting is
// presentation-only; ranking always compares raw values.
func FormatValue(t GameType, value float64) string {
	switch t {
	case GameGuessing:
		return fmt.Sprintf("%.0f attempts", value)
	case GameRedLight:
		return fmt.Sprintf("%.1fs", value)
	case GameTypeRacer:
		return fmt.Sprintf("%.0f WPM", value)
	default:
		return fmt.Sprintf("%.0f pts", value)
	}
}
