// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/explore"
	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/logger"
	exploreservice "github.com/kulmetehan/turkish-diaspora-app-sub003/internal/service/explore"
)

// WebSocketClient represents a connected WebSocket client bound to one
// explore session
type WebSocketClient struct {
	conn              *websocket.Conn
	send              chan []byte
	session           explore.Session
	sessionID         string
	natsConn          *nats.Conn
	topic             string
	natsSubscriptions []*nats.Subscription
	closeOnce         sync.Once
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 64 * 1024,
	}
}

// WebSocketUpgrader is used to upgrade HTTP connections to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// SessionWebSocketHandler streams engine state for one explore session and
// accepts viewport, search, and suppress commands from the client.
func SessionWebSocketHandler(manager explore.Manager, natsConn *nats.Conn, topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "id")
		if sessionID == "" {
			http.Error(w, "Missing session ID", http.StatusBadRequest)
			return
		}

		session, err := manager.GetSession(sessionID)
		if err != nil {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}

		// Upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.L().Warn("websocket upgrade failed", "session_id", sessionID, "err", err)
			return
		}

		client := &WebSocketClient{
			conn:      conn,
			send:      make(chan []byte, 256),
			session:   session,
			sessionID: sessionID,
			natsConn:  natsConn,
			topic:     topic,
		}

		// Stream engine events for this session. Subscriptions go in before
		// the pumps start so cleanup never races them.
		if err := client.subscribeToSession(); err != nil {
			logger.L().Warn("websocket subscribe failed", "session_id", sessionID, "err", err)
			client.closeConnection()
			return
		}

		// Start client
		go client.writePump()
		go client.readPump()

		// Send welcome message
		welcomeMsg := map[string]interface{}{
			"type":      "welcome",
			"sessionId": sessionID,
			"time":      time.Now(),
		}
		welcomeJSON, _ := json.Marshal(welcomeMsg)
		client.enqueue(welcomeJSON)

		logger.L().Debug("websocket connected", "session_id", sessionID)

		// Send the current state so the client does not have to wait for the
		// next engine transition
		client.sendSnapshot()
	}
}

// readPump pumps commands from the WebSocket connection into the session
func (c *WebSocketClient) readPump() {
	config := DefaultWebSocketConfig()

	defer func() {
		c.closeConnection()
	}()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.L().Warn("websocket read failed", "session_id", c.sessionID, "err", err)
			}
			break
		}

		c.processIncomingMessage(message)
	}
}

// writePump pumps engine events from the send channel to the WebSocket
// connection
func (c *WebSocketClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processIncomingMessage dispatches one client command to the session
func (c *WebSocketClient) processIncomingMessage(message []byte) {
	var msg struct {
		Type     string  `json:"type"`
		Bbox     *string `json:"bbox"`
		Query    string  `json:"query"`
		Category string  `json:"category"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.L().Debug("websocket message rejected", "session_id", c.sessionID, "err", err)
		return
	}

	switch msg.Type {
	case "viewport":
		c.session.ReportViewportChange(msg.Bbox)

	case "search":
		c.session.UpdateSearch(msg.Query, msg.Category)

	case "suppress_next":
		c.session.SuppressNextFetch()

	default:
		logger.L().Debug("websocket message ignored", "session_id", c.sessionID, "type", msg.Type)
	}
}

// subscribeToSession subscribes to the session's engine event subjects
func (c *WebSocketClient) subscribeToSession() error {
	kinds := []string{
		exploreservice.EventGlobal,
		exploreservice.EventViewport,
		exploreservice.EventSearch,
		exploreservice.EventLifecycle,
	}

	for _, kind := range kinds {
		subject := exploreservice.SessionSubject(c.topic, c.sessionID, kind)
		sub, err := c.natsConn.Subscribe(subject, func(msg *nats.Msg) {
			c.enqueue(msg.Data)
		})
		if err != nil {
			return fmt.Errorf("subscribe to %s: %w", subject, err)
		}
		c.natsSubscriptions = append(c.natsSubscriptions, sub)
	}

	return nil
}

// sendSnapshot sends the session's current state to the client
func (c *WebSocketClient) sendSnapshot() {
	snapshot := map[string]interface{}{
		"type":       "snapshot",
		"sessionId":  c.sessionID,
		"global":     c.session.GlobalState(),
		"viewport":   c.session.ViewportState(),
		"search":     c.session.SearchState(),
		"categories": c.session.Categories(),
		"time":       time.Now(),
	}

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		logger.L().Warn("snapshot marshal failed", "session_id", c.sessionID, "err", err)
		return
	}
	c.enqueue(snapshotJSON)
}

// enqueue hands a message to the write pump, dropping it when the client
// cannot keep up
func (c *WebSocketClient) enqueue(message []byte) {
	select {
	case c.send <- message:
	default:
		logger.L().Debug("websocket client lagging, dropping message", "session_id", c.sessionID)
	}
}

// closeConnection closes the WebSocket connection and cleans up resources.
// Both pumps call it; only the first call does the work.
func (c *WebSocketClient) closeConnection() {
	c.closeOnce.Do(func() {
		for _, sub := range c.natsSubscriptions {
			sub.Unsubscribe()
		}

		c.conn.Close()

		logger.L().Debug("websocket closed", "session_id", c.sessionID)
	})
}
