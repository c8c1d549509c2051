// Package worker keeps the Redis best-score index consistent with the
// durable score ledger: a full rebuild on startup (recovery) and on a
// configurable interval.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/game-arcade/internal/config"
	"github.com/game-arcade/internal/domain"
	"github.com/game-arcade/internal/redis"
	"github.com/game-arcade/internal/store"
)

// SyncWorker rebuilds the best-score index from the store.
type SyncWorker struct {
	index   *redis.Index
	store   store.Store
	config  *config.WorkerConfig
	logger  *slog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewSyncWorker creates a new sync worker
func NewSyncWorker(index *redis.Index, st store.Store, cfg *config.WorkerConfig, logger *slog.Logger) *SyncWorker {
	return &SyncWorker{
		index:  index,
		store:  st,
		config: cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins the background sync process
func (w *SyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("sync worker started", "interval", w.config.Interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background sync process
func (w *SyncWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("sync worker stopped")
	return nil
}

// run is the main worker loop
func (w *SyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RebuildAll(ctx)
		}
	}
}

// RebuildAll rebuilds the best-score index for every catalogued game from the
// score ledger.
func (w *SyncWorker) RebuildAll(ctx context.Context) {
	w.logger.Info("starting index rebuild")
	startTime := time.Now()

	games, err := w.store.ListGames(ctx)
	if err != nil {
		w.logger.Error("failed to list games for rebuild", "error", err)
		return
	}

	rebuiltCount := 0
	errorCount := 0

	for _, game := range games {
		if err := w.rebuildGame(ctx, game.Type); err != nil {
			w.logger.Error("failed to rebuild game index",
				"game_type", game.Type,
				"error", err,
			)
			errorCount++
		} else {
			rebuiltCount++
		}
	}

	w.logger.Info("index rebuild completed",
		"duration", time.Since(startTime),
		"rebuilt", rebuiltCount,
		"errors", errorCount,
	)
}

// rebuildGame derives each user's best ledger value for one game and replaces
// that game's index with it.
func (w *SyncWorker) rebuildGame(ctx context.Context, t domain.GameType) error {
	rows, err := w.store.ListScores(ctx, string(t))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		w.logger.Debug("no scores to index", "game_type", t)
		return nil
	}

	lowerBetter := domain.LowerIsBetter(t)
	best := make(map[string]float64, len(rows))
	for _, row := range rows {
		current, ok := best[row.UserID]
		if !ok {
			best[row.UserID] = row.Value
			continue
		}
		if (lowerBetter && row.Value < current) || (!lowerBetter && row.Value > current) {
			best[row.UserID] = row.Value
		}
	}

	if err := w.index.Rebuild(ctx, t, best); err != nil {
		return err
	}

	w.logger.Debug("rebuilt game index", "game_type", t, "player_count", len(best))
	return nil
}

// IsRunning returns whether the worker is currently running
func (w *SyncWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
