// Package telemetry streams frame statistics to WebSocket observers. It runs
// beside the render loop and never touches graphics state.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 250 * time.Millisecond

// FrameStats is one rolling frame-rate sample.
type FrameStats struct {
	Type     string  `json:"type"`
	FPS      float64 `json:"fps"`
	Frames   uint64  `json:"frames"`
	Vertices int     `json:"vertices"`
	Indices  int     `json:"indices"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Time     float64 `json:"time"`
}

// Hub fans FrameStats out to every connected client. Publish never blocks
// on the network or on clientsMutex; Run does the writes.
type Hub struct {
	upgrader websocket.Upgrader

	clientsMutex sync.RWMutex
	clients      map[*websocket.Conn]*sync.Mutex

	latest atomic.Pointer[FrameStats]

	updates chan FrameStats
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // read-only stats, any origin may watch
			},
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
		updates: make(chan FrameStats, 1),
	}
}

// Publish records s as the latest sample and queues it for broadcast. If a
// broadcast is already pending the sample is only kept as latest.
func (h *Hub) Publish(s FrameStats) {
	s.Type = "frame_stats"

	h.latest.Store(&s)

	select {
	case h.updates <- s:
	default:
	}
}

// Latest returns the most recent sample, if any.
func (h *Hub) Latest() (FrameStats, bool) {
	latest := h.latest.Load()
	if latest == nil {
		return FrameStats{}, false
	}
	return *latest, true
}

// ClientCount returns the number of connected observers.
func (h *Hub) ClientCount() int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()
	return len(h.clients)
}

// Run broadcasts queued samples until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case s := <-h.updates:
			h.broadcast(s)
		}
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	h.clientsMutex.Lock()
	h.clients[conn] = connMutex
	h.clientsMutex.Unlock()
	defer h.remove(conn)

	slog.Debug("telemetry client connected", "remote", r.RemoteAddr)

	if latest := h.latest.Load(); latest != nil {
		if err := h.write(conn, connMutex, *latest); err != nil {
			return
		}
	}

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			slog.Debug("telemetry client disconnected", "remote", r.RemoteAddr, "err", err)
			return
		}
	}
}

type client struct {
	conn  *websocket.Conn
	mutex *sync.Mutex
}

// snapshot copies the client set so writes happen without clientsMutex held.
func (h *Hub) snapshot() []client {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()
	clients := make([]client, 0, len(h.clients))
	for conn, mutex := range h.clients {
		clients = append(clients, client{conn: conn, mutex: mutex})
	}
	return clients
}

func (h *Hub) broadcast(s FrameStats) {
	for _, c := range h.snapshot() {
		if err := h.write(c.conn, c.mutex, s); err != nil {
			slog.Debug("telemetry write failed", "err", err)
			c.conn.Close()
			h.remove(c.conn)
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, mutex *sync.Mutex, s FrameStats) error {
	mutex.Lock()
	defer mutex.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(s)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.clientsMutex.Lock()
	delete(h.clients, conn)
	h.clientsMutex.Unlock()
}

func (h *Hub) closeAll() {
	h.clientsMutex.Lock()
	defer h.clientsMutex.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

// Handler routes /ws to the hub and /stats to a JSON snapshot of the latest sample.
func Handler(h *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.Latest()
		if !ok {
			http.Error(w, "no samples yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s)
	})
	return mux
}

// Serve runs the telemetry endpoint on addr until ctx is done.
func Serve(ctx context.Context, addr string, h *Hub) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go h.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("telemetry listening", "addr", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
