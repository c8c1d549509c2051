package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/game-arcade/internal/config"
	"github.com/game-arcade/internal/games"
	"github.com/game-arcade/internal/handler"
	"github.com/game-arcade/internal/kafka"
	"github.com/game-arcade/internal/leaderboard"
	"github.com/game-arcade/internal/redis"
	"github.com/game-arcade/internal/service"
	"github.com/game-arcade/internal/session"
	"github.com/game-arcade/internal/store"
	"github.com/game-arcade/internal/store/memory"
	"github.com/game-arcade/internal/store/postgres"
	"github.com/game-arcade/internal/websocket"
	"github.com/game-arcade/internal/worker"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Select the persistence backend
	var st store.Store
	switch cfg.Store.Backend {
	case "memory":
		logger.Info("using in-memory store")
		st = memory.New()
	default:
		logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		pgStore, err := postgres.New(&cfg.Postgres, logger)
		if err != nil {
			logger.Error("failed to connect to PostgreSQL", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()

		if err := pgStore.RunMigrations(ctx); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		st = pgStore
		logger.Info("connected to PostgreSQL")
	}

	// Initialize the Redis best-score index
	logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
	index, err := redis.NewIndex(&cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer index.Close()
	logger.Info("connected to Redis")

	// Initialize the ranking engine and WebSocket hub
	engine := leaderboard.New(st, logger)
	wsHub := websocket.NewHub(engine, logger)
	go wsHub.Run()
	logger.Info("WebSocket hub initialized")

	// Initialize game components
	seed := time.Now().UnixNano()
	sessions := session.NewStore(rand.New(rand.NewSource(seed)), cfg.Guessing.MaxAttempts)
	wheel := games.NewSpinWheel(rand.New(rand.NewSource(seed + 1)))
	racer := games.NewTypeRacer(rand.New(rand.NewSource(seed + 2)))

	arcade := service.New(st, sessions, wheel, racer, index, wsHub, logger)

	// Initialize the index sync worker
	syncWorker := worker.NewSyncWorker(index, st, &cfg.Worker, logger)

	// Rebuild the best-score index from the store on startup (recovery)
	logger.Info("rebuilding best-score index from store")
	syncWorker.RebuildAll(ctx)

	if cfg.Worker.Enabled {
		if err := syncWorker.Start(ctx); err != nil {
			logger.Error("failed to start sync worker", "error", err)
			os.Exit(1)
		}
	}

	// Initialize Kafka consumer for bulk score ingestion
	var kafkaConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka consumer",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
		var err error
		kafkaConsumer, err = kafka.NewConsumer(&cfg.Kafka, arcade, logger)
		if err != nil {
			logger.Warn("failed to create Kafka consumer, continuing without Kafka", "error", err)
		} else {
			if err := kafkaConsumer.Start(); err != nil {
				logger.Warn("failed to start Kafka consumer, continuing without Kafka", "error", err)
				kafkaConsumer = nil
			} else {
				logger.Info("Kafka consumer started successfully")
			}
		}
	}

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(arcade, engine, wsHub, cfg.Leaderboard.ObstacleTopN, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		logger.Info("WebSocket endpoint available at /ws")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop WebSocket hub
	wsHub.Stop()

	// Stop Kafka consumer
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}

	// Stop sync worker
	if err := syncWorker.Stop(); err != nil {
		logger.Error("failed to stop sync worker", "error", err)
	}

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("server stopped")
}
