package lessonws

import (
	"encoding/json"
	"log"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/linqiu-w/SwimCoachBack/internal/services"
)

// Hub fans ingestion outcomes out to connected coach clients so the mobile
// calendar refreshes without polling. Clients are keyed by coach id; a coach
// only ever sees their own lesson events.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan services.LessonEvent
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	coachID string
	send    chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan services.LessonEvent, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, coachID string) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		coachID: coachID,
		send:    make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.coachID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.coachID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.coachID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.coachID)
			}
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// PublishLesson satisfies the ingestion service's notifier. Non-blocking:
// if the hub's buffer is full the event is dropped, the client refetches on
// next open.
func (h *Hub) PublishLesson(event services.LessonEvent) {
	select {
	case h.broadcast <- event:
	default:
	}
}

func (h *Hub) deliver(event services.LessonEvent) {
	if event.CoachID == "" {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("lesson hub encode event: %v", err)
		return
	}

	set, ok := h.clients[event.CoachID]
	if !ok {
		return
	}
	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, event.CoachID)
	}
}

// ReadPump drains the connection until the client goes away; the lesson feed
// is push-only, inbound frames are ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
