package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Message is the WebSocket envelope format. Type values are the
// service.Event* constants.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for quiz sessions and hosts
type Hub struct {
	sessionConns map[string]*Connection // sessionID -> conn
	hostConns    map[*Connection]bool

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	SessionID string // Empty for host connections
	IsHost    bool
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	SessionID string // Empty means host fan-out
	ToHosts   bool
	Message   *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		sessionConns: make(map[string]*Connection),
		hostConns:    make(map[*Connection]bool),
		register:     make(chan *Connection),
		unregister:   make(chan *Connection),
		broadcast:    make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsHost {
				h.hostConns[conn] = true
				log.Printf("Host connected via WebSocket")
			} else {
				if existing, ok := h.sessionConns[conn.SessionID]; ok {
					close(existing.Send)
				}
				h.sessionConns[conn.SessionID] = conn
				log.Printf("Session %s connected via WebSocket", conn.SessionID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conn.IsHost {
				if h.hostConns[conn] {
					delete(h.hostConns, conn)
					close(conn.Send)
					log.Printf("Host disconnected")
				}
			} else {
				if existing, ok := h.sessionConns[conn.SessionID]; ok && existing == conn {
					delete(h.sessionConns, conn.SessionID)
					close(conn.Send)
					log.Printf("Session %s disconnected", conn.SessionID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			if msg.ToHosts {
				for conn := range h.hostConns {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			} else if conn, ok := h.sessionConns[msg.SessionID]; ok {
				select {
				case conn.Send <- data:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToSession sends a message to one session's watcher (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    msgType,
			Payload: data,
		},
	}
}

// BroadcastToHosts sends a message to every connected host (implements service.Broadcaster)
func (h *Hub) BroadcastToHosts(msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		ToHosts: true,
		Message: &Message{
			Type:    msgType,
			Payload: data,
		},
	}
}

// DisconnectSession drops a session's watcher connection (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	h.mu.Lock()
	if conn, ok := h.sessionConns[sessionID]; ok {
		delete(h.sessionConns, sessionID)
		close(conn.Send)
	}
	h.mu.Unlock()
}
