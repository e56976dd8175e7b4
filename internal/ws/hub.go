package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alignprobe/alignprobe/internal/api"
	"github.com/alignprobe/alignprobe/internal/store"
)

const (
	// writeWait bounds a single write to a viewer connection.
	writeWait = 10 * time.Second

	// pongWait is how long a viewer may stay silent before its connection
	// is considered dead. Pings go out at a fraction of this.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// outBufSize is the per-viewer outgoing buffer. A viewer that falls
	// this many snapshots behind is dropped rather than throttling the hub.
	outBufSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin checks belong to the reverse proxy in front of the probe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the envelope pushed to viewers on every refresh tick.
type Message struct {
	Event string               `json:"event"`
	Data  api.SnapshotResponse `json:"data"`
}

// Hub streams the live plane snapshots to websocket viewers on the view
// refresh cadence. Viewer lifecycle and delivery share one mutex: a session's
// out channel is only ever closed while the lock is held, and every send into
// it happens under the same lock, so a viewer disconnecting mid-broadcast can
// never panic the hub.
type Hub struct {
	store    *store.Store
	interval time.Duration

	mu       sync.Mutex
	sessions map[*session]struct{}
}

// session is one connected viewer.
type session struct {
	conn *websocket.Conn
	out  chan []byte
}

// New creates a Hub reading from st, broadcasting every interval.
func New(st *store.Store, interval time.Duration) *Hub {
	return &Hub{
		store:    st,
		interval: interval,
		sessions: make(map[*session]struct{}),
	}
}

// Run drives the broadcast ticker until ctx is cancelled, then disconnects
// every viewer.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			h.detachAll()
			return
		case <-t.C:
			if data, err := h.currentMessage(); err == nil {
				h.push(data)
			}
		}
	}
}

// ServeHTTP upgrades the request and serves the viewer until it disconnects.
// The current snapshot goes out immediately so the view is never blank while
// waiting for the first tick.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade failures are already answered by the upgrader.
		return
	}

	s := &session{
		conn: conn,
		out:  make(chan []byte, outBufSize),
	}
	h.attach(s)
	defer h.detach(s)

	if data, err := h.currentMessage(); err == nil {
		h.deliver(s, data)
	}

	go s.writeLoop()
	s.readLoop()
}

// Count returns the number of connected viewers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *Hub) currentMessage() ([]byte, error) {
	return json.Marshal(Message{
		Event: "snapshot",
		Data:  api.BuildSnapshot(h.store),
	})
}

func (h *Hub) attach(s *session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
}

// detach removes the session and closes its out channel, ending writeLoop.
// Idempotent: both the connection handler and push may drop a session.
func (h *Hub) detach(s *session) {
	h.mu.Lock()
	h.dropLocked(s)
	h.mu.Unlock()
}

func (h *Hub) detachAll() {
	h.mu.Lock()
	for s := range h.sessions {
		h.dropLocked(s)
	}
	h.mu.Unlock()
}

// dropLocked is the single place a session's out channel is closed.
// Callers hold h.mu.
func (h *Hub) dropLocked(s *session) {
	if _, ok := h.sessions[s]; !ok {
		return
	}
	delete(h.sessions, s)
	close(s.out)
}

// push hands data to every attached viewer. Stalled viewers (full buffer)
// are dropped in place.
func (h *Hub) push(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.sessions {
		select {
		case s.out <- data:
		default:
			h.dropLocked(s)
		}
	}
}

// deliver sends data to a single session, unless it has been dropped already.
func (h *Hub) deliver(s *session, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s]; !ok {
		return
	}
	select {
	case s.out <- data:
	default:
	}
}

// writeLoop forwards queued messages to the connection and keeps it alive
// with pings. It exits when out is closed or a write fails.
func (s *session) writeLoop() {
	pinger := time.NewTicker(pingPeriod)
	defer func() {
		pinger.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-pinger.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop consumes inbound frames so pong and close control messages are
// processed. Viewers send no application data; anything readable is ignored.
func (s *session) readLoop() {
	defer s.conn.Close()
	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
