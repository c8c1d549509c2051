package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/game-arcade/internal/domain"
	"github.com/game-arcade/internal/games"
	"github.com/game-arcade/internal/session"
	"github.com/game-arcade/internal/store"
	"github.com/game-arcade/internal/store/memory"
)

// stubIndex mirrors the Redis index semantics in memory: the first score for a
// game counts as both a personal and a global best, afterwards only strictly
// better values do.
type stubIndex struct {
	mu       sync.Mutex
	personal map[string]float64
	global   map[domain.GameType]float64
	err      error
}

func newStubIndex() *stubIndex {
	return &stubIndex{
		personal: make(map[string]float64),
		global:   make(map[domain.GameType]float64),
	}
}

func (s *stubIndex) Submit(ctx context.Context, t domain.GameType, userID string, value float64) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, false, s.err
	}

	better := func(a, b float64) bool {
		if domain.LowerIsBetter(t) {
			return a < b
		}
		return a > b
	}

	key := string(t) + ":" + userID

	globalBest := true
	if prev, ok := s.global[t]; ok {
		globalBest = better(value, prev)
	}
	personalBest := true
	if prev, ok := s.personal[key]; ok {
		personalBest = better(value, prev)
	}

	if personalBest {
		s.personal[key] = value
	}
	if globalBest {
		s.global[t] = value
	}
	return personalBest, globalBest, nil
}

type broadcastCall struct {
	filter string
	winner *domain.WinnerAnnouncement
}

// recorderHub captures broadcasts instead of fanning them out.
type recorderHub struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (r *recorderHub) BroadcastLeaderboard(filter string, winner *domain.WinnerAnnouncement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, broadcastCall{filter: filter, winner: winner})
}

func (r *recorderHub) broadcasts() []broadcastCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]broadcastCall(nil), r.calls...)
}

func newTestArcade(t *testing.T, seed int64) (*Arcade, *memory.Store, *stubIndex, *recorderHub) {
	t.Helper()
	st := memory.New()
	sessions := session.NewStore(rand.New(rand.NewSource(seed)), session.DefaultMaxAttempts)
	wheel := games.NewSpinWheel(rand.New(rand.NewSource(seed + 1)))
	racer := games.NewTypeRacer(rand.New(rand.NewSource(seed + 2)))
	idx := newStubIndex()
	hub := &recorderHub{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(st, sessions, wheel, racer, idx, hub, logger), st, idx, hub
}

func mustUser(t *testing.T, a *Arcade, id, name string) {
	t.Helper()
	_, err := a.EnsureUser(context.Background(), id, name)
	require.NoError(t, err)
}

func TestEnsureUserProvisionsOnce(t *testing.T) {
	a, st, _, _ := newTestArcade(t, 1)
	ctx := context.Background()

	u1, err := a.EnsureUser(ctx, "u1", "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u1.Role)

	u2, err := a.EnsureUser(ctx, "u1", "someone-else")
	require.NoError(t, err)
	assert.Equal(t, "alice", u2.Username)

	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestGuessingWinRecordsAttemptCount(t *testing.T) {
	seed := int64(21)
	target := rand.New(rand.NewSource(seed)).Intn(100) + 1

	a, st, _, _ := newTestArcade(t, seed)
	ctx := context.Background()
	mustUser(t, a, "u1", "alice")

	require.NoError(t, a.StartGuessing(ctx, "u1"))

	wrong := target - 1
	if wrong < 1 {
		wrong = target + 1
	}
	result, err := a.Guess(ctx, "u1", wrong)
	require.NoError(t, err)
	require.False(t, result.IsCorrect)

	result, err = a.Guess(ctx, "u1", target)
	require.NoError(t, err)
	require.True(t, result.IsCorrect)

	scores, err := st.ScoresByUser(ctx, "u1", domain.GameGuessing)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 2.0, scores[0].Value)

	// The catalog row appears lazily with the first score.
	gamesList, err := st.ListGames(ctx)
	require.NoError(t, err)
	require.Len(t, gamesList, 1)
	assert.Equal(t, domain.GameGuessing, gamesList[0].Type)
	assert.Equal(t, "Number Guessing", gamesList[0].Name)
}

// failingLedger wraps a store with a RecordScore that always errors.
type failingLedger struct {
	store.Store
	err error
}

func (f *failingLedger) RecordScore(ctx context.Context, score *domain.Score) error {
	return f.err
}

func TestGuessingWinSurvivesLedgerFailure(t *testing.T) {
	seed := int64(21)
	target := rand.New(rand.NewSource(seed)).Intn(100) + 1

	st := memory.New()
	sessions := session.NewStore(rand.New(rand.NewSource(seed)), session.DefaultMaxAttempts)
	wheel := games.NewSpinWheel(rand.New(rand.NewSource(seed + 1)))
	racer := games.NewTypeRacer(rand.New(rand.NewSource(seed + 2)))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broken := &failingLedger{Store: st, err: errors.New("disk full")}
	a := New(broken, sessions, wheel, racer, newStubIndex(), &recorderHub{}, logger)

	ctx := context.Background()
	mustUser(t, a, "u1", "alice")
	require.NoError(t, a.StartGuessing(ctx, "u1"))

	// The win is reported even though the ledger write failed; the session is
	// already over and the guess cannot be replayed.
	result, err := a.Guess(ctx, "u1", target)
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, session.StateWon, sessions.StateOf("u1"))

	scores, err := st.ScoresByUser(ctx, "u1", domain.GameGuessing)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestSpinRecordsOnlyPrizeDraws(t *testing.T) {
	a, st, _, _ := newTestArcade(t, 5)
	ctx := context.Background()
	mustUser(t, a, "u1", "alice")

	recorded := 0
	for i := 0; i < 100; i++ {
		result, err := a.Spin(ctx, "u1")
		require.NoError(t, err)
		if result.Recorded {
			require.Greater(t, result.Value, 0.0)
			recorded++
		} else {
			assert.Equal(t, "Try Again", result.Prize)
		}
	}

	scores, err := st.ScoresByUser(ctx, "u1", domain.GameSpinWheel)
	require.NoError(t, err)
	assert.Len(t, scores, recorded)

	user, err := st.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), user.GamesPlayed)
}

func TestTypingPersonalBestAnnouncesWinner(t *testing.T) {
	a, _, _, hub := newTestArcade(t, 9)
	ctx := context.Background()
	mustUser(t, a, "u1", "alice")

	winner, err := a.SubmitTypingRound(ctx, "u1", 50)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, "alice set a new personal best!", winner.Message)
	assert.Equal(t, "50 WPM", winner.Score)

	// A slower round records silently.
	winner, err = a.SubmitTypingRound(ctx, "u1", 40)
	require.NoError(t, err)
	assert.Nil(t, winner)

	winner, err = a.SubmitTypingRound(ctx, "u1", 60)
	require.NoError(t, err)
	require.NotNil(t, winner)

	calls := hub.broadcasts()
	require.Len(t, calls, 2)
	assert.Equal(t, string(domain.GameTypeRacer), calls[0].filter)
	assert.NotNil(t, calls[0].winner)
}

func TestObstacleGlobalBestAnnouncesWinner(t *testing.T) {
	a, _, _, hub := newTestArcade(t, 9)
	ctx := context.Background()
	mustUser(t, a, "u1", "alice")
	mustUser(t, a, "u2", "bob")

	winner, err := a.SubmitObstacleScore(ctx, "u1", 500)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, "alice set a new high score!", winner.Message)

	// bob's personal best is not a global best, so no announcement.
	winner, err = a.SubmitObstacleScore(ctx, "u2", 300)
	require.NoError(t, err)
	assert.Nil(t, winner)

	winner, err = a.SubmitObstacleScore(ctx, "u2", 600)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, "bob set a new high score!", winner.Message)
	assert.Equal(t, "600 pts", winner.Score)

	assert.Len(t, hub.broadcasts(), 2)
}

func TestRedlightNeverAnnounces(t *testing.T) {
	a, st, _, hub := newTestArcade(t, 3)
	ctx := context.Background()
	mustUser(t, a, "u1", "alice")

	require.NoError(t, a.SubmitReactionTime(ctx, "u1", 9.8))
	require.NoError(t, a.SubmitReactionTime(ctx, "u1", 7.2))

	assert.Empty(t, hub.broadcasts())

	scores, err := st.ScoresByUser(ctx, "u1", domain.GameRedLight)
	require.NoError(t, err)
	assert.Len(t, scores, 2)
}

func TestIndexFailureDoesNotLoseTheScore(t *testing.T) {
	a, st, idx, hub := newTestArcade(t, 3)
	ctx := context.Background()
	mustUser(t, a, "u1", "alice")
	idx.err = errors.New("redis down")

	winner, err := a.SubmitTypingRound(ctx, "u1", 80)
	require.NoError(t, err)
	assert.Nil(t, winner)
	assert.Empty(t, hub.broadcasts())

	// The ledger row is durable even when the index write failed.
	scores, err := st.ScoresByUser(ctx, "u1", domain.GameTypeRacer)
	require.NoError(t, err)
	assert.Len(t, scores, 1)
}

func TestSubmitScoreValidatesPerGame(t *testing.T) {
	a, _, _, _ := newTestArcade(t, 3)
	ctx := context.Background()
	mustUser(t, a, "u1", "alice")

	assert.ErrorIs(t, a.SubmitScore(ctx, "u1", domain.GameRedLight, 0), domain.ErrInvalidRequest)
	assert.ErrorIs(t, a.SubmitScore(ctx, "u1", domain.GameTypeRacer, -1), domain.ErrInvalidRequest)
	assert.ErrorIs(t, a.SubmitScore(ctx, "u1", domain.GameCSE17, -5), domain.ErrInvalidRequest)
	assert.ErrorIs(t, a.SubmitScore(ctx, "u1", domain.GameType("pinball"), 10), domain.ErrInvalidRequest)

	assert.NoError(t, a.SubmitScore(ctx, "u1", domain.GameRedLight, 4.2))
	assert.NoError(t, a.SubmitScore(ctx, "u1", domain.GameCSE17, 250))
}

func TestScoreForUnknownUserFails(t *testing.T) {
	a, _, _, _ := newTestArcade(t, 3)
	err := a.SubmitReactionTime(context.Background(), "ghost", 5.0)
	assert.True(t, domain.IsNotFoundError(err))
}

func TestStats(t *testing.T) {
	a, _, _, _ := newTestArcade(t, 3)
	ctx := context.Background()
	mustUser(t, a, "u1", "alice")

	// Four counted round starts, two finished runs.
	for i := 0; i < 4; i++ {
		require.NoError(t, a.StartRound(ctx, "u1"))
	}
	require.NoError(t, a.SubmitReactionTime(ctx, "u1", 12.3))
	require.NoError(t, a.SubmitReactionTime(ctx, "u1", 9.8))

	stats, err := a.Stats(ctx, "u1", domain.GameRedLight)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.GamesPlayed)
	assert.InDelta(t, 0.5, stats.WinRate, 1e-9)
	assert.Equal(t, "9.8s", stats.BestScore)
}

func TestStatsWinRateCappedAtOne(t *testing.T) {
	a, _, _, _ := newTestArcade(t, 3)
	ctx := context.Background()
	mustUser(t, a, "u1", "alice")

	// Three scores on a single counted start would push the raw rate over 1.
	require.NoError(t, a.StartRound(ctx, "u1"))
	for _, v := range []float64{100, 200, 300} {
		_, err := a.SubmitObstacleScore(ctx, "u1", v)
		require.NoError(t, err)
	}

	stats, err := a.Stats(ctx, "u1", domain.GameCSE17)
	require.NoError(t, err)
	assert.Equal(t, 1.0, stats.WinRate)
}

func TestStatsEmpty(t *testing.T) {
	a, _, _, _ := newTestArcade(t, 3)
	ctx := context.Background()
	mustUser(t, a, "u1", "alice")

	stats, err := a.Stats(ctx, "u1", domain.GameGuessing)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.GamesPlayed)
	assert.Zero(t, stats.WinRate)
	assert.Empty(t, stats.BestScore)
}
