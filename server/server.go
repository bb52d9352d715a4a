// Package server runs the overlay bridge: an HTTP server that pushes
// subtitle line events to connected overlay clients over WebSocket.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/akhkim/babel/internal/types"
)

// DefaultAddr is where the bridge listens when not configured.
const DefaultAddr = "127.0.0.1:8737"

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait).
	pingPeriod = (pongWait * 9) / 10

	// Outbound buffer per client; a client this far behind is dropped.
	sendBuffer = 64
)

// StatusFunc reports the current session state for /api/status.
type StatusFunc func() types.SessionStatus

// Bridge broadcasts subtitle events to overlay clients and keeps a
// short replay history for late joiners.
type Bridge struct {
	addr     string
	history  *History
	status   StatusFunc
	upgrader websocket.Upgrader
	server   *http.Server

	mu      sync.Mutex
	clients map[*client]struct{}
}

// New creates a bridge listening on addr. status may be nil.
func New(addr string, status StatusFunc) *Bridge {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Bridge{
		addr:    addr,
		history: NewHistory(DefaultHistorySize),
		status:  status,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Overlay pages are served from file:// or localhost.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Router returns the HTTP routes of the bridge.
func (b *Bridge) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/ws", b.handleWebSocket)
	router.HandleFunc("/healthz", b.handleHealthz).Methods(http.MethodGet)
	router.HandleFunc("/api/status", b.handleStatus).Methods(http.MethodGet)
	return router
}

// Start begins serving. The listen error surfaces here; serve errors
// are logged.
func (b *Bridge) Start() error {
	listener, err := net.Listen("tcp", b.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", b.addr, err)
	}

	b.server = &http.Server{Handler: b.Router()}
	go func() {
		if err := b.server.Serve(listener); err != http.ErrServerClosed {
			slog.Error("overlay bridge server error", "error", err)
		}
	}()

	slog.Info("overlay bridge listening", "addr", b.addr)
	return nil
}

// Addr returns the address the bridge serves on.
func (b *Bridge) Addr() string {
	return b.addr
}

// Shutdown stops the server and disconnects all clients.
func (b *Bridge) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	for c := range b.clients {
		c.close()
	}
	b.clients = make(map[*client]struct{})
	b.mu.Unlock()

	if b.server == nil {
		return nil
	}
	return b.server.Shutdown(ctx)
}

// Publish broadcasts a line update and records it for replay.
func (b *Bridge) Publish(line types.SubtitleLine) {
	b.history.Add(line)
	b.broadcast(marshalLine(line))
}

// Clear broadcasts a clear event and wipes the replay history.
func (b *Bridge) Clear() {
	b.history.Clear()
	b.broadcast(marshalClear())
}

// ClientCount returns how many overlay clients are connected.
func (b *Bridge) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *Bridge) broadcast(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for c := range b.clients {
		select {
		case c.send <- data:
		default:
			// Slow client, drop it.
			delete(b.clients, c)
			c.close()
			slog.Warn("dropping slow overlay client", "remote", c.conn.RemoteAddr())
		}
	}
}

func (b *Bridge) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (b *Bridge) handleStatus(w http.ResponseWriter, _ *http.Request) {
	var status types.SessionStatus
	if b.status != nil {
		status = b.status()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		slog.Error("encode status", "error", err)
	}
}

func (b *Bridge) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		bridge: b,
	}

	// Queue the replay before the client is eligible for broadcasts so
	// history lines always precede live ones.
	for _, line := range b.history.Snapshot() {
		c.send <- marshalLine(line)
	}

	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()

	slog.Debug("overlay client connected", "remote", conn.RemoteAddr())

	go c.writePump()
	go c.readPump()
}

func (b *Bridge) unregister(c *client) {
	b.mu.Lock()
	delete(b.clients, c)
	b.mu.Unlock()
}

type client struct {
	conn      *websocket.Conn
	send      chan []byte
	bridge    *Bridge
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readPump() {
	defer func() {
		c.bridge.unregister(c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}
