package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/pkg/logger"
	"pharmtrain_backend/pkg/monitoring"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	consultationChannelPrefix = "consultation:"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func consultationChannel(sessionID string) string {
	return consultationChannelPrefix + sessionID
}

// Client is one websocket subscriber of a consultation session.
type Client struct {
	Hub       *ConsultationHub
	Conn      *websocket.Conn
	Send      chan []byte
	SessionID string
}

// readPump only services control frames. Subscribers post through the HTTP API.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("WebSocket unexpected close", zap.Error(err), zap.String("sessionId", c.SessionID))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ConsultationHub fans stored consultation messages out to websocket subscribers. Messages go
// through Redis so every server instance sees them.
type ConsultationHub struct {
	Redis *redis.Client

	mu      sync.RWMutex
	clients map[string]map[*Client]bool
}

func NewConsultationHub(rdb *redis.Client) *ConsultationHub {
	return &ConsultationHub{
		Redis:   rdb,
		clients: make(map[string]map[*Client]bool),
	}
}

// Publish sends a stored message to the session's channel.
func (h *ConsultationHub) Publish(ctx context.Context, msg *model.ConsultationMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return h.Redis.Publish(ctx, consultationChannel(msg.SessionID), payload).Err()
}

// Run relays channel traffic to local subscribers until ctx is cancelled.
func (h *ConsultationHub) Run(ctx context.Context) {
	pubsub := h.Redis.PSubscribe(ctx, consultationChannelPrefix+"*")
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
			sessionID := strings.TrimPrefix(msg.Channel, consultationChannelPrefix)
			h.deliver(sessionID, []byte(msg.Payload))
		}
	}
}

func (h *ConsultationHub) deliver(sessionID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[sessionID] {
		select {
		case c.Send <- payload:
		default:
			logger.Log.Warn("Dropping consultation message for slow client", zap.String("sessionId", sessionID))
		}
	}
}

func (h *ConsultationHub) register(c *Client) {
	h.mu.Lock()
	if h.clients[c.SessionID] == nil {
		h.clients[c.SessionID] = make(map[*Client]bool)
	}
	h.clients[c.SessionID][c] = true
	h.mu.Unlock()
	monitoring.ConsultationClients.Inc()
}

func (h *ConsultationHub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.SessionID]
	if !ok || !set[c] {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.SessionID)
	}
	close(c.Send)
	monitoring.ConsultationClients.Dec()
}

// Subscribers reports how many local connections follow a session.
func (h *ConsultationHub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// Stop closes every local connection.
func (h *ConsultationHub) Stop() {
	h.mu.Lock()
	closed := 0
	for sessionID, set := range h.clients {
		for c := range set {
			close(c.Send)
			closed++
		}
		delete(h.clients, sessionID)
	}
	h.mu.Unlock()
	monitoring.ConsultationClients.Set(0)
	logger.Log.Info("Consultation hub stopped", zap.Int("closedConnections", closed))
}

// ServeWs upgrades the request and subscribes the connection to one session.
func ServeWs(hub *ConsultationHub, w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{Hub: hub, Conn: conn, Send: make(chan []byte, 32), SessionID: sessionID}
	hub.register(client)

	go client.writePump()
	go client.readPump()
}
