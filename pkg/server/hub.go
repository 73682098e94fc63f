package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/taksi8637-pixel/taksi2/pkg/middleware"
	"github.com/taksi8637-pixel/taksi2/pkg/toast"
)

// ContentEventName is the event dispatched when a collection changes, so
// open pages can re-render the affected section.
const ContentEventName = "taksi:content"

const (
	// writeWait is the deadline for a single websocket write.
	writeWait = 10 * time.Second

	// pingPeriod is how often idle connections are pinged.
	pingPeriod = 30 * time.Second

	// pongWait bounds how long a client may stay silent.
	pongWait = 60 * time.Second

	// sendBuffer is the per-client outbound queue. A client that cannot
	// drain it loses events and must refetch on reconnect.
	sendBuffer = 16
)

// event is the JSON frame pushed to live-update clients.
type event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub fans server events out to the open pages: toast notifications and
// content-changed signals. It also implements toast.Notifier, so it can be
// wired directly into the registries.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*hubClient]struct{}
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The page and the API share an origin; only browsers send an
			// Origin header, so its absence is a non-browser client.
			CheckOrigin: sameOrigin,
		},
		clients: make(map[*hubClient]struct{}),
	}
}

// sameOrigin rejects cross-site upgrade attempts by matching the Origin
// host against the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &hubClient{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	middleware.RecordClientConnect()

	go h.writeLoop(client)
	h.readLoop(client)
}

// Broadcast pushes an event to every connected client. Clients whose queue
// is full skip the event rather than stalling the caller.
func (h *Hub) Broadcast(name string, data any) {
	frame, err := json.Marshal(event{Event: name, Data: data})
	if err != nil {
		h.logger.Error("event encode failed", "event", name, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- frame:
		default:
			h.logger.Warn("slow live-update client, event dropped", "event", name)
		}
	}
}

// Notify implements toast.Notifier by broadcasting the toast event.
func (h *Hub) Notify(level toast.Level, message string) {
	h.Broadcast(toast.EventName, map[string]any{
		"level":   string(level),
		"message": message,
	})
}

// ContentChanged signals that a collection was mutated.
func (h *Hub) ContentChanged(collection string) {
	h.Broadcast(ContentEventName, map[string]any{
		"collection": collection,
	})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*hubClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*hubClient]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		close(client.send)
		middleware.RecordClientDisconnect()
	}
}

// readLoop drains the connection; clients send nothing meaningful, this
// exists to observe close and pong frames.
func (h *Hub) readLoop(client *hubClient) {
	defer h.drop(client)

	client.conn.SetReadLimit(512)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.logger.Error("websocket read error", "error", err)
			}
			return
		}
	}
}

// writeLoop delivers queued events and keeps the connection alive.
func (h *Hub) writeLoop(client *hubClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drop unregisters a client and closes its connection.
func (h *Hub) drop(client *hubClient) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
	}
	h.mu.Unlock()

	if ok {
		close(client.send)
		middleware.RecordClientDisconnect()
	}
	client.conn.Close()
}
