package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/game-arcade/internal/domain"
)

// Message types
const (
	MessageTypeLeaderboard        = "leaderboard"
	MessageTypeWinner             = "winner"
	MessageTypeRequestLeaderboard = "requestLeaderboard"
	MessageTypeError              = "error"
)

// Message is a server-to-client frame: a leaderboard snapshot, optionally
// carrying a winner announcement.
type Message struct {
	Type     string                     `json:"type"`
	GameType string                     `json:"gameType,omitempty"`
	Data     []domain.LeaderboardEntry  `json:"data"`
	Winner   *domain.WinnerAnnouncement `json:"winner,omitempty"`
}

// Snapshotter computes the current leaderboard for a game-type filter.
type Snapshotter interface {
	Rank(ctx context.Context, filter string) ([]domain.LeaderboardEntry, error)
}

type broadcastRequest struct {
	filter string
	winner *domain.WinnerAnnouncement
}

// Hub maintains the set of connected viewer channels and fans leaderboard
// state out to all of them. There is no per-channel filter subscription:
// every broadcast reaches every open channel.
type Hub struct {
	// All connected clients
	clients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Pending broadcasts
	broadcast chan broadcastRequest

	// Computes leaderboard snapshots on demand
	snapshots Snapshotter

	mu sync.RWMutex

	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a new Hub
func NewHub(snapshots Snapshotter, logger *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastRequest, 256),
		snapshots:  snapshots,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	h.logger.Info("WebSocket hub started")
	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info("WebSocket hub stopping")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", "client_id", client.id)
			// Initial sync: the new viewer immediately gets the full board.
			h.sendSnapshot(client, domain.GameFilterAll)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", "client_id", client.id)

		case req := <-h.broadcast:
			h.broadcastLeaderboard(req)
		}
	}
}

// Stop stops the hub
func (h *Hub) Stop() {
	h.cancel()
}

// BroadcastLeaderboard recomputes the leaderboard for the given filter and
// pushes it to every connected channel. A non-nil winner marks a new high
// score announcement.
func (h *Hub) BroadcastLeaderboard(filter string, winner *domain.WinnerAnnouncement) {
	select {
	case h.broadcast <- broadcastRequest{filter: filter, winner: winner}:
	default:
		h.logger.Warn("broadcast channel full, dropping message")
	}
}

// broadcastLeaderboard performs the fan-out. A slow or dead channel is
// skipped so it never blocks delivery to the others.
func (h *Hub) broadcastLeaderboard(req broadcastRequest) {
	data, err := h.snapshotBytes(req.filter, req.winner)
	if err != nil {
		h.logger.Error("failed to build leaderboard broadcast", "filter", req.filter, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client buffer full, skipping", "client_id", client.id)
		}
	}
}

// sendSnapshot pushes the current board for one filter to a single client.
func (h *Hub) sendSnapshot(client *Client, filter string) {
	data, err := h.snapshotBytes(filter, nil)
	if err != nil {
		h.logger.Error("failed to build leaderboard snapshot", "filter", filter, "error", err)
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.Warn("client buffer full, skipping snapshot", "client_id", client.id)
	}
}

func (h *Hub) snapshotBytes(filter string, winner *domain.WinnerAnnouncement) ([]byte, error) {
	ctx, cancel := context.WithTimeout(h.ctx, 5*time.Second)
	defer cancel()

	entries, err := h.snapshots.Rank(ctx, filter)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}

	msg := Message{
		Type:     MessageTypeLeaderboard,
		GameType: filter,
		Data:     entries,
	}
	if winner != nil {
		msg.Type = MessageTypeWinner
		msg.Winner = winner
	}
	return json.Marshal(msg)
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// GetTotalConnections returns the total number of connected clients
func (h *Hub) GetTotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
