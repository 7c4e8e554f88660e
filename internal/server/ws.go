package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FrameSource publishes pipeline frames and events.
type FrameSource interface {
	Subscribe() (<-chan app.Frame, func())
	SubscribeEvents() (<-chan app.Event, func())
}

type streamMessage struct {
	Type  string     `json:"type"`
	Frame *app.Frame `json:"frame,omitempty"`
	Event *app.Event `json:"event,omitempty"`
}

// StreamHandler pushes every frame and event to connected WebSocket clients.
type StreamHandler struct {
	source  FrameSource
	logger  *zap.Logger
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewStreamHandler creates a StreamHandler over source.
func NewStreamHandler(source FrameSource, logger *zap.Logger) *StreamHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamHandler{
		source:  source,
		logger:  logger.Named("stream"),
		clients: make(map[*websocket.Conn]bool),
	}
}

// Clients returns the number of connected clients.
func (h *StreamHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	frames, cancelFrames := h.source.Subscribe()
	defer cancelFrames()
	events, cancelEvents := h.source.SubscribeEvents()
	defer cancelEvents()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Reading is only used to notice the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		var msg streamMessage
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			msg = streamMessage{Type: "frame", Frame: &f}
		case e, ok := <-events:
			if !ok {
				return
			}
			msg = streamMessage{Type: "event", Event: &e}
		}

		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debug("stream client write failed", zap.Error(err))
			return
		}
	}
}
