package server

import (
	"net/http"
	"sync"
	"time"

	"muselib/logger"

	"github.com/gorilla/websocket"
)

// Mutation event types pushed to connected clients.
const (
	EventTrackCreated = "created"
	EventTrackUpdated = "updated"
	EventTrackDeleted = "deleted"
	EventFileUploaded = "fileUploaded"
	EventFileDeleted  = "fileDeleted"
)

// Event notifies clients that the catalog changed so they can drop cached
// list pages.
type Event struct {
	Type      string    `json:"type"`
	TrackID   string    `json:"trackId"`
	Timestamp time.Time `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub maintains the set of connected event clients and fans mutation events
// out to them.
type Hub struct {
	clients    map[*eventClient]bool
	broadcast  chan Event
	register   chan *eventClient
	unregister chan *eventClient
	mu         sync.RWMutex
}

// NewHub creates an event hub. Call Run in a goroutine before serving.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*eventClient]bool),
		broadcast:  make(chan Event, 64),
		register:   make(chan *eventClient),
		unregister: make(chan *eventClient),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Debug("event client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logger.Debug("event client disconnected")

		case event := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- event:
				default:
					// Slow consumer, drop it.
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an event for all connected clients. Events are dropped
// when the queue is full rather than blocking a mutation.
func (h *Hub) Broadcast(event Event) {
	event.Timestamp = time.Now()
	select {
	case h.broadcast <- event:
	default:
		logger.Warn("event broadcast queue full, dropping event", logger.String("type", event.Type))
	}
}

type eventClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Event
}

// ServeWS upgrades the connection and subscribes it to catalog events.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	client := &eventClient{hub: h, conn: conn, send: make(chan Event, 16)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *eventClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *eventClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
