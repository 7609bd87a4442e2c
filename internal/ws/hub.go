package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

const broadcastBuffer = 256

// Message is the frame sent to every back-office client.
type Message struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// conn is the part of *websocket.Conn the hub writes to.
type conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Hub struct {
	Clients    map[conn]bool
	Register   chan conn
	Unregister chan conn
	Broadcast  chan []byte
	mutex      sync.Mutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		Clients:    make(map[conn]bool),
		Register:   make(chan conn),
		Unregister: make(chan conn),
		Broadcast:  make(chan []byte, broadcastBuffer),
		log:        log,
	}
}

// Publish queues an event for all clients. It never blocks: when the
// buffer is full the event is dropped and logged.
func (h *Hub) Publish(event string, payload any) {
	data, err := json.Marshal(Message{Type: event, Data: payload, Timestamp: time.Now()})
	if err != nil {
		h.log.Error("ws: encode event", zap.String("event", event), zap.Error(err))
		return
	}
	select {
	case h.Broadcast <- data:
	default:
		h.log.Warn("ws: broadcast buffer full, event dropped", zap.String("event", event))
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.Register:
			h.mutex.Lock()
			h.Clients[c] = true
			n := len(h.Clients)
			h.mutex.Unlock()
			h.log.Debug("ws client connected", zap.Int("clients", n))

		case c := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[c]; ok {
				delete(h.Clients, c)
				c.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for c := range h.Clients {
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Debug("ws client dropped", zap.Error(err))
					c.Close()
					delete(h.Clients, c)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.Clients {
		c.Close()
		delete(h.Clients, c)
	}
}

// Handler serves one websocket connection until the client goes away.
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		h.Register <- c
		defer func() { h.Unregister <- c }()

		for {
			// Clients only listen; reads detect disconnects.
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}
}
