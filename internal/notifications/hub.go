// Package notifications delivers realtime events to connected websocket
// clients, fanned out through Redis pub/sub so every instance sees them.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"chirp/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
)

const (
	// Max connections per user
	maxConnsPerUser = 8
	// Max total connections
	maxTotalConns = 10000
)

// Hub maps userID -> live websocket clients and fans events out to them.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	presence   *Presence
	logger     *observability.WSLogger
}

// NewHub creates a hub. The optional Redis client backs cross-instance
// presence; without it presence is process-local.
func NewHub(redisClients ...*redis.Client) *Hub {
	var rdb *redis.Client
	if len(redisClients) > 0 {
		rdb = redisClients[0]
	}
	return &Hub{
		conns:    make(map[uint]map[*Client]struct{}),
		presence: NewPresence(rdb),
		logger:   observability.NewWSLogger("events"),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "events" }

// Register adds a connection for the user, enforcing per-user and global
// connection limits.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()

	if h.totalConns >= maxTotalConns {
		h.mu.Unlock()
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	client.OnActivity = func(uid uint) {
		h.presence.Touch(context.Background(), uid)
	}

	m[client] = struct{}{}
	h.totalConns++
	h.mu.Unlock()

	h.presence.Register(context.Background(), userID)
	observability.WebSocketConnectionsTotal.Inc()
	h.logger.LogConnect(context.Background(), userID)

	return client, nil
}

// UnregisterClient drops a connection.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	removed := false
	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
			removed = true
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
		}
	}
	h.mu.Unlock()

	if removed {
		h.presence.Unregister(context.Background(), client.UserID)
		observability.WebSocketConnectionsTotal.Dec()
		h.logger.LogDisconnect(context.Background(), client.UserID, "closed")
	}
}

// Broadcast sends the message to every connection the user holds.
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.conns[userID]; ok {
		data := []byte(message)
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// BroadcastAll sends the message to every connected client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// IsOnline reports whether the user currently has at least one live
// connection, on any instance when Redis presence is available.
func (h *Hub) IsOnline(userID uint) bool {
	return h.presence.IsOnline(context.Background(), userID)
}

// OnlineUserIDs lists the currently online users.
func (h *Hub) OnlineUserIDs(ctx context.Context) []uint {
	return h.presence.OnlineUserIDs(ctx)
}

// StartWiring subscribes the hub to the notifier's Redis channels and routes
// arriving events to the addressed user's connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == broadcastChannel {
			observability.WebSocketEventsTotal.WithLabelValues("broadcast").Inc()
			h.BroadcastAll(payload)
			return
		}

		var prefix, eventType string
		switch {
		case strings.HasPrefix(channel, userChannelNS):
			prefix, eventType = userChannelNS, "notification"
		case strings.HasPrefix(channel, dmChannelNS):
			prefix, eventType = dmChannelNS, "message"
		default:
			h.logger.LogError(ctx, 0, fmt.Errorf("unroutable channel %q", channel), "route")
			return
		}

		var userID uint
		if _, err := fmt.Sscanf(strings.TrimPrefix(channel, prefix), "%d", &userID); err != nil {
			h.logger.LogError(ctx, 0, fmt.Errorf("unroutable channel %q", channel), "route")
			return
		}

		observability.WebSocketEventsTotal.WithLabelValues(eventType).Inc()
		h.Broadcast(userID, payload)
	})
}

// Shutdown closes every websocket connection gracefully.
func (h *Hub) Shutdown(_ context.Context) error {
	h.presence.Stop()

	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, userConns := range h.conns {
		for client := range userConns {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				h.logger.LogError(context.Background(), userID, err, "shutdown")
			}
			if err := client.Conn.Close(); err != nil {
				h.logger.LogError(context.Background(), userID, err, "shutdown")
			}
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0

	return nil
}
