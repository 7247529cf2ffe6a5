package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chatclone-backend/internal/database"
	"chatclone-backend/internal/middleware"
	"chatclone-backend/internal/models"
)

const channelPrefix = "transcript_updates:"

// client serializes writes; gorilla connections allow one concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub pushes transcript events to every open tab of a user. With a Redis
// client events travel through pub/sub so any instance can publish them;
// without one they are broadcast in process.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*client
	cancelFuncs map[string]context.CancelFunc
	redis       *database.RedisClients
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

func NewHub(redisClients *database.RedisClients, allowedOrigin string, logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[string][]*client),
		cancelFuncs: make(map[string]context.CancelFunc),
		redis:       redisClients,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigin),
		},
		logger: logger,
	}
}

func originChecker(allowedOrigin string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || origin == allowedOrigin {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// HandleWebSocket upgrades the request for the user of the current session.
// It must run behind the session middleware.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetSession(r.Context()).UserID
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn}
	h.registerConnection(userID, c)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(userID, c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// Publish delivers msg to every connection of userID.
func (h *Hub) Publish(ctx context.Context, userID string, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode websocket message", zap.Error(err))
		return
	}

	if h.redis == nil {
		h.broadcast(userID, data)
		return
	}

	if err := h.redis.Publisher.Publish(ctx, channelPrefix+userID, data).Err(); err != nil {
		h.logger.Warn("failed to publish transcript update",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

func (h *Hub) registerConnection(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[userID] = append(h.connections[userID], c)

	// Start pub/sub subscription if this is the first connection for this user
	if h.redis != nil && len(h.connections[userID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[userID] = cancel
		go h.subscribeToPubSub(ctx, userID)
	}

	h.logger.Debug("websocket connected",
		zap.String("user_id", userID),
		zap.Int("connections", len(h.connections[userID])))
}

func (h *Hub) unregisterConnection(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.conn.Close()

	conns := h.connections[userID]
	for i, existing := range conns {
		if existing == c {
			h.connections[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// If no more connections, cancel pub/sub
	if len(h.connections[userID]) == 0 {
		delete(h.connections, userID)
		if cancel, ok := h.cancelFuncs[userID]; ok {
			cancel()
			delete(h.cancelFuncs, userID)
		}
	}

	h.logger.Debug("websocket disconnected", zap.String("user_id", userID))
}

func (h *Hub) subscribeToPubSub(ctx context.Context, userID string) {
	pubsub := h.redis.Subscriber.Subscribe(ctx, channelPrefix+userID)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(userID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(userID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.connections[userID] {
		if err := c.write(data); err != nil {
			h.logger.Debug("websocket write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

func (h *Hub) connectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}
