package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/hand"
)

// DefaultSocketBuffer is the number of updates queued between the sockets and the consumer.
const DefaultSocketBuffer = 64

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // headset connects from the local network
	},
}

// SocketProvider accepts hand updates over websocket connections. Each text
// message is one JSON update. It is an http.Handler; connections are
// rejected until Start is called.
type SocketProvider struct {
	buffer int
	logger *zap.Logger

	mu      sync.Mutex
	ctx     context.Context
	out     chan hand.Update
	conns   map[*websocket.Conn]struct{}
	closed  bool
	readers sync.WaitGroup
	stop    sync.Once
	done    chan struct{}
	cancel  context.CancelFunc
}

// NewSocketProvider creates a SocketProvider. A non-positive buffer uses DefaultSocketBuffer.
func NewSocketProvider(buffer int, logger *zap.Logger) *SocketProvider {
	if buffer <= 0 {
		buffer = DefaultSocketBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SocketProvider{
		buffer: buffer,
		logger: logger.Named("socket"),
		conns:  make(map[*websocket.Conn]struct{}),
		done:   make(chan struct{}),
	}
}

// Start opens the provider for connections.
func (p *SocketProvider) Start(ctx context.Context) (<-chan hand.Update, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("%w: %w", ErrStartFailed, ErrClosed)
	}
	if p.out != nil {
		return nil, fmt.Errorf("%w: socket already started", ErrStartFailed)
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.out = make(chan hand.Update, p.buffer)

	go func() {
		<-p.ctx.Done()
		p.shutdown()
	}()

	return p.out, nil
}

// ServeHTTP upgrades the request and reads updates until the peer disconnects.
func (p *SocketProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	if p.out == nil || p.closed {
		p.mu.Unlock()
		http.Error(w, "tracking not started", http.StatusServiceUnavailable)
		return
	}
	p.readers.Add(1)
	p.mu.Unlock()
	defer p.readers.Done()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.conns[conn] = struct{}{}
	ctx := p.ctx
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.conns, conn)
		p.mu.Unlock()
	}()

	p.logger.Info("tracking client connected", zap.String("remote", r.RemoteAddr))
	p.read(ctx, conn)
	p.logger.Info("tracking client disconnected", zap.String("remote", r.RemoteAddr))
}

func (p *SocketProvider) read(ctx context.Context, conn *websocket.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var u hand.Update
		if err := json.Unmarshal(data, &u); err != nil {
			updatesReceived.WithLabelValues("socket", "malformed").Inc()
			p.logger.Debug("dropping malformed update", zap.Error(err))
			continue
		}

		if !send(ctx, p.out, u) {
			return
		}
		updatesReceived.WithLabelValues("socket", "ok").Inc()
	}
}

// shutdown disconnects every client, waits for readers and closes the channel.
func (p *SocketProvider) shutdown() {
	p.stop.Do(func() {
		p.mu.Lock()
		p.closed = true
		for conn := range p.conns {
			conn.Close()
		}
		out := p.out
		p.mu.Unlock()

		p.readers.Wait()
		if out != nil {
			close(out)
		}
		close(p.done)
	})
}

// Close disconnects all clients and closes the update channel.
func (p *SocketProvider) Close() error {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.shutdown()
	<-p.done
	return nil
}
