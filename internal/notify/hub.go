package notify

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is a lending notification pushed to a connected member
type Event struct {
	MemberID int64     `json:"member_id"`
	Action   string    `json:"action"`
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
}

type client struct {
	memberID int64
	conn     *websocket.Conn
	send     chan []byte
}

// Hub routes lending events to the member they concern
type Hub struct {
	clients    map[int64]*client
	register   chan *client
	unregister chan *client
	broadcast  chan Event
	mu         sync.Mutex
}

// NewHub creates a hub; the caller runs it with go hub.Run()
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event),
	}
}

// Run dispatches registrations and events until the process exits
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[c.memberID]; ok {
				close(old.send)
			}
			h.clients[c.memberID] = c
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[c.memberID]; ok && current == c {
				delete(h.clients, c.memberID)
				close(c.send)
			}
			h.mu.Unlock()
		case event := <-h.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("notify: failed to encode event: %v", err)
				continue
			}
			h.mu.Lock()
			if c, ok := h.clients[event.MemberID]; ok {
				select {
				case c.send <- payload:
				default:
					close(c.send)
					delete(h.clients, event.MemberID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an event for delivery to its member
func (h *Hub) Broadcast(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	h.broadcast <- event
}

// ServeWS upgrades the request and streams events to the member
func (h *Hub) ServeWS(c echo.Context, memberID int64) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{
		memberID: memberID,
		conn:     conn,
		send:     make(chan []byte, 8),
	}
	h.register <- cl

	go cl.writePump()
	go cl.readPump(h)

	return nil
}

func (c *client) writePump() {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump drains the connection so pings and close frames are handled
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
