package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

type WebSocketHub struct {
	clients    map[*websocket.Conn]*Client
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	registry   *SessionRegistry
	mu         sync.RWMutex
}

type Client struct {
	hub       *WebSocketHub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string // Subscribed builder session
}

// envelope is the outbound message frame. Channel "session:<id>" reaches the
// clients subscribed to that session; "broadcast" reaches everyone.
type envelope struct {
	Channel   string      `json:"channel"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

func NewWebSocketHub(registry *SessionRegistry) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan envelope, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		registry:   registry,
	}
}

func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			wsClientsGauge.Set(float64(len(h.clients)))
			h.mu.Unlock()
			LogInfo("WebSocket client connected", map[string]interface{}{
				"session_id":    client.sessionID,
				"total_clients": len(h.clients),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.conn]; ok {
				delete(h.clients, client.conn)
				close(client.send)
			}
			wsClientsGauge.Set(float64(len(h.clients)))
			h.mu.Unlock()
			LogInfo("WebSocket client disconnected", map[string]interface{}{
				"total_clients": len(h.clients),
			})

		case msg := <-h.broadcast:
			jsonData, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for conn, client := range h.clients {
				if msg.Channel != "broadcast" && msg.Channel != "session:"+client.sessionID {
					continue
				}
				select {
				case client.send <- jsonData:
				default:
					close(client.send)
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *WebSocketHub) Broadcast(channel string, data interface{}) {
	h.broadcast <- envelope{
		Channel:   channel,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}

// NotifierFor builds the per-session rejection sink: errors are pushed to the
// session's subscribers as notify_error messages.
func (h *WebSocketHub) NotifierFor(sessionID string) func(string) {
	return func(message string) {
		h.Broadcast("session:"+sessionID, ErrorNotice{
			Type:    "notify_error",
			Message: message,
		})
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				LogError(err, "WebSocket read error", nil)
			}
			break
		}
		c.handleMessage(raw)
	}
}

// handleMessage decodes one drag event, applies it to the client's session
// and replies with the acknowledgement. Large catalog payloads may arrive in
// the agent's LZ4 frame.
func (c *Client) handleMessage(raw []byte) {
	raw, err := decompressLZ4(raw)
	if err != nil {
		LogWarn("Failed to decompress WebSocket payload", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	var ev DragEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		c.sendJSON(ErrorNotice{Type: "notify_error", Message: "invalid drag event"})
		return
	}
	if ev.SessionID == "" {
		ev.SessionID = c.sessionID
	}
	dragEventsTotal.WithLabelValues(ev.Type).Inc()

	session, ok := c.hub.registry.Get(ev.SessionID)
	if !ok {
		c.sendJSON(ErrorNotice{Type: "notify_error", Message: "unknown session"})
		return
	}

	before := session.Mutations()
	ack, err := session.HandleEvent(ev)
	if err != nil {
		c.sendJSON(ErrorNotice{Type: "notify_error", Message: err.Error()})
		return
	}
	c.sendJSON(ack)

	if session.Mutations() != before {
		c.hub.Broadcast("session:"+session.ID, session.Snapshot())
	}
}

func (c *Client) sendJSON(data interface{}) {
	msg := envelope{
		Channel:   "session:" + c.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- jsonData:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				LogError(err, "WebSocket write error", nil)
				return
			}
			w.Write(message)
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}
			if err := w.Close(); err != nil {
				LogError(err, "WebSocket writer close error", nil)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				LogError(err, "WebSocket ping error", nil)
				return
			}
		}
	}
}

// handleWebSocket upgrades the connection and subscribes it to a builder
// session. The session comes from ?session=<id>; with ?chart_type=<t> and no
// session, a fresh one is created implicitly.
func handleWebSocket(hub *WebSocketHub, authHandler *AuthHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if authHandler != nil {
			token := TokenFromRequest(r)
			if token == "" {
				http.Error(w, "unauthorized", 401)
				return
			}
			if _, err := authHandler.VerifyToken(token); err != nil {
				http.Error(w, "invalid token", 401)
				return
			}
		}

		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			chartType := r.URL.Query().Get("chart_type")
			if chartType == "" {
				chartType = ChartBar
			}
			session := hub.registry.Create(chartType, nil)
			session.SetNotify(hub.NotifierFor(session.ID))
			sessionID = session.ID
		} else if _, ok := hub.registry.Get(sessionID); !ok {
			http.Error(w, "unknown session", 404)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			LogError(err, "WebSocket upgrade error", map[string]interface{}{
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
			})
			return
		}
		client := &Client{
			hub:       hub,
			conn:      conn,
			send:      make(chan []byte, 256),
			sessionID: sessionID,
		}
		hub.register <- client

		go client.writePump()
		go client.readPump()

		// Initial snapshot carries the session ID for implicitly-created
		// sessions.
		if session, ok := hub.registry.Get(sessionID); ok {
			client.sendJSON(session.Snapshot())
		}
	}
}
