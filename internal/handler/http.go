package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/game-arcade/internal/domain"
	"github.com/game-arcade/internal/games"
	"github.com/game-arcade/internal/leaderboard"
	"github.com/game-arcade/internal/service"
	"github.com/game-arcade/internal/websocket"
)

// Handler provides HTTP handlers for the arcade API
type Handler struct {
	arcade       *service.Arcade
	engine       *leaderboard.Engine
	hub          *websocket.Hub
	logger       *slog.Logger
	obstacleTopN int
}

// NewHandler creates a new HTTP handler
func NewHandler(arcade *service.Arcade, engine *leaderboard.Engine, hub *websocket.Hub, obstacleTopN int, logger *slog.Logger) *Handler {
	return &Handler{
		arcade:       arcade,
		engine:       engine,
		hub:          hub,
		logger:       logger,
		obstacleTopN: obstacleTopN,
	}
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint
	r.Get("/ws", h.HandleWebSocket)

	// Leaderboard
	r.Get("/leaderboard", h.GetLeaderboard)

	// Game routes require an authenticated identity
	r.Route("/games", func(r chi.Router) {
		r.Use(h.identityMiddleware)

		r.Route("/guessing", func(r chi.Router) {
			r.Post("/start", h.StartGuessing)
			r.Post("/new", h.StartGuessing)
			r.Post("/guess", h.Guess)
			r.Get("/stats", h.GuessingStats)
		})

		r.Post("/spinwheel/spin", h.Spin)

		r.Route("/redlight", func(r chi.Router) {
			r.Post("/start", h.StartRound)
			r.Post("/score", h.SubmitReactionTime)
			r.Get("/stats", h.RedlightStats)
		})

		r.Route("/typeracer", func(r chi.Router) {
			r.Post("/start", h.StartTypingRound)
			r.Post("/score", h.SubmitTypingRound)
			r.Get("/leaderboard", h.TypingLeaderboard)
		})

		r.Route("/bread", func(r chi.Router) {
			r.Post("/start", h.StartRound)
			r.Post("/score", h.SubmitObstacleScore)
			r.Get("/stats", h.ObstacleStats)
			r.Get("/leaderboard", h.ObstacleLeaderboard)
		})
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID, X-User-ID, X-Username")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type contextKey string

const userContextKey contextKey = "arcade-user"

// identityMiddleware is the seam where the external auth collaborator's
// verified identity enters the core: it trusts the X-User-ID / X-Username
// headers set by the auth layer in front of this service and provisions the
// user record on first sight.
func (h *Handler) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		username := r.Header.Get("X-Username")
		if username == "" {
			username = userID
		}

		user, err := h.arcade.EnsureUser(r.Context(), userID, username)
		if err != nil {
			h.logger.Error("failed to resolve user", "user_id", userID, "error", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": domain.ErrInternalError.Error()})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	})
}

func userFrom(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps an error onto the response contract: game-logic failures
// soft-fail as a 200 payload so the client can render them in-context,
// validation problems are a generic 400, unknown references a 404, and
// everything else a 500 with the real cause logged, never exposed.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsGameplayError(err):
		h.writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": domain.ErrInvalidRequest.Error()})
	case domain.IsNotFoundError(err):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("internal error", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": domain.ErrInternalError.Error()})
	}
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// StartGuessing begins a fresh guessing session
func (h *Handler) StartGuessing(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if err := h.arcade.StartGuessing(r.Context(), user.ID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type guessRequest struct {
	Guess int `json:"guess"`
}

// Guess applies one guess to the caller's live session
func (h *Handler) Guess(w http.ResponseWriter, r *http.Request) {
	var req guessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidRequest)
		return
	}
	if err := games.ValidateGuess(req.Guess); err != nil {
		h.writeError(w, err)
		return
	}

	user := userFrom(r.Context())
	result, err := h.arcade.Guess(r.Context(), user.ID, req.Guess)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// GuessingStats returns the caller's guessing-game summary
func (h *Handler) GuessingStats(w http.ResponseWriter, r *http.Request) {
	h.stats(w, r, domain.GameGuessing)
}

// Spin resolves one prize-wheel draw
func (h *Handler) Spin(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	result, err := h.arcade.Spin(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// StartRound counts the start of a redlight or bread round
func (h *Handler) StartRound(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if err := h.arcade.StartRound(r.Context(), user.ID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type reactionTimeRequest struct {
	Time string `json:"time"`
}

// SubmitReactionTime records a redlight finish time
func (h *Handler) SubmitReactionTime(w http.ResponseWriter, r *http.Request) {
	var req reactionTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidRequest)
		return
	}
	seconds, err := games.ParseReactionTime(req.Time)
	if err != nil {
		h.writeError(w, err)
		return
	}

	user := userFrom(r.Context())
	if err := h.arcade.SubmitReactionTime(r.Context(), user.ID, seconds); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// RedlightStats returns the caller's redlight summary
func (h *Handler) RedlightStats(w http.ResponseWriter, r *http.Request) {
	h.stats(w, r, domain.GameRedLight)
}

// StartTypingRound returns the round's prompt text
func (h *Handler) StartTypingRound(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	text, err := h.arcade.StartTypingRound(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

type typingRoundRequest struct {
	WPM      float64 `json:"wpm"`
	Accuracy float64 `json:"accuracy"`
}

// SubmitTypingRound records a finished typing round
func (h *Handler) SubmitTypingRound(w http.ResponseWriter, r *http.Request) {
	var req typingRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidRequest)
		return
	}
	if err := games.ValidateTypingRound(req.WPM, req.Accuracy); err != nil {
		h.writeError(w, err)
		return
	}

	user := userFrom(r.Context())
	winner, err := h.arcade.SubmitTypingRound(r.Context(), user.ID, req.WPM)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "winner": winner})
}

// TypingLeaderboard returns one best-WPM entry per user
func (h *Handler) TypingLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.TypingLeaderboard(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

type obstacleScoreRequest struct {
	Score float64 `json:"score"`
}

// SubmitObstacleScore records a cse17 obstacle run
func (h *Handler) SubmitObstacleScore(w http.ResponseWriter, r *http.Request) {
	var req obstacleScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidRequest)
		return
	}
	if err := games.ValidateObstacleScore(req.Score); err != nil {
		h.writeError(w, err)
		return
	}

	user := userFrom(r.Context())
	winner, err := h.arcade.SubmitObstacleScore(r.Context(), user.ID, req.Score)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "winner": winner})
}

// ObstacleStats returns the caller's bread-game summary
func (h *Handler) ObstacleStats(w http.ResponseWriter, r *http.Request) {
	h.stats(w, r, domain.GameCSE17)
}

// ObstacleLeaderboard returns the obstacle top-N board
func (h *Handler) ObstacleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.ObstacleTop(r.Context(), h.obstacleTopN)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// GetLeaderboard returns the ranked board for a game-type filter
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("gameType")
	if filter == "" {
		filter = domain.GameFilterAll
	}
	if filter != domain.GameFilterAll && !domain.KnownGameType(domain.GameType(filter)) {
		h.writeError(w, domain.ErrInvalidRequest)
		return
	}

	entries, err := h.engine.Rank(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	h.writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request, t domain.GameType) {
	user := userFrom(r.Context())
	stats, err := h.arcade.Stats(r.Context(), user.ID, t)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}
