package http

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"controlly/internal/amqp"
	"controlly/internal/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 16
)

// ErrHubNotRunning is returned by Publish before Run starts or after it stops.
var ErrHubNotRunning = errors.New("event hub is not running")

// Hub streams entity events to websocket subscribers. It satisfies
// services.Publisher, so it sits next to the AMQP client in a Fanout.
type Hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte
	done       chan struct{}

	running int32
	count   int64
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Nop()
	}
	return &Hub{
		logger: logger.WithComponent(log.ComponentEvents),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte),
		done:       make(chan struct{}),
	}
}

// Run owns the subscriber set until ctx is cancelled, then disconnects
// everyone. It must be called once.
func (h *Hub) Run(ctx context.Context) {
	atomic.StoreInt32(&h.running, 1)
	defer func() {
		atomic.StoreInt32(&h.running, 0)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			n := atomic.AddInt64(&h.count, 1)
			h.logger.Debug("Event subscriber connected", log.FieldCount, n)
		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				h.logger.Debug("Event subscriber disconnected", log.FieldCount, atomic.LoadInt64(&h.count))
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer; it can reconnect and refetch.
					h.drop(c)
					h.logger.Warn("Dropped slow event subscriber")
				}
			}
		}
	}
}

func (h *Hub) drop(c *wsClient) {
	delete(h.clients, c)
	close(c.send)
	atomic.AddInt64(&h.count, -1)
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	return int(atomic.LoadInt64(&h.count))
}

// Running reports whether Run is active.
func (h *Hub) Running() bool {
	return atomic.LoadInt32(&h.running) == 1
}

// Publish broadcasts ev to every subscriber.
func (h *Hub) Publish(ctx context.Context, ev *amqp.EntityEvent) error {
	if !h.Running() {
		return ErrHubNotRunning
	}
	data, err := ev.ToJSON()
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
		return nil
	case <-h.done:
		return ErrHubNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeHTTP upgrades the request and subscribes the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.Running() {
		ErrorResponse(http.StatusServiceUnavailable, ErrHubNotRunning.Error()).Write(w)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to upgrade to WebSocket", log.FieldError, err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, clientSendSize)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump(h)
}

// readPump discards inbound messages and notices disconnects.
func (c *wsClient) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
