package speech

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/logging"
)

// Bridge is a Service whose speech peer connects to us, typically a browser
// page doing ASR/TTS. The latest connection wins. The outstanding command is
// held until its completion event arrives and is resent to every newly
// attached peer.
type Bridge struct {
	cfg      Config
	upgrader websocket.Upgrader
	events   chan Event
	done     chan struct{}

	mu      sync.Mutex
	conn    *websocket.Conn
	pending *Command

	closeOnce sync.Once
}

func NewBridge(cfg Config) *Bridge {
	return &Bridge{
		cfg: cfg.withDefaults(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		events: make(chan Event, 8),
		done:   make(chan struct{}),
	}
}

func (b *Bridge) Prepare(ctx context.Context) error {
	return b.send(ctx, Command{Type: CommandPrepare})
}

func (b *Bridge) Speak(ctx context.Context, text string) error {
	return b.send(ctx, Command{Type: CommandSpeak, Utterance: text})
}

func (b *Bridge) Listen(ctx context.Context) error {
	return b.send(ctx, Command{Type: CommandListen})
}

func (b *Bridge) Events() <-chan Event {
	return b.events
}

// Connected reports whether a speech peer is attached.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
		b.mu.Lock()
		if b.conn != nil {
			_ = b.conn.Close()
			b.conn = nil
		}
		b.mu.Unlock()
	})
	return nil
}

func (b *Bridge) send(ctx context.Context, cmd Command) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return ErrClosed
	default:
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = &cmd
	if b.conn == nil {
		logging.Debugf("speech bridge: no peer, holding %s", cmd.Type)
		return nil
	}
	if err := b.write(b.conn, cmd); err != nil {
		logging.Warnf("speech bridge: write %s failed, waiting for reconnect: %v", cmd.Type, err)
		_ = b.conn.Close()
		b.conn = nil
	}
	return nil
}

// write must be called with b.mu held.
func (b *Bridge) write(conn *websocket.Conn, cmd Command) error {
	payload, err := encodeCommand(cmd, b.cfg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// ServeHTTP upgrades the request and serves the peer until it disconnects.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-b.done:
		http.Error(w, ErrClosed.Error(), http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warnf("speech bridge: upgrade failed: %v", err)
		return
	}
	b.attach(conn)
	defer b.detach(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			logging.Infof("speech bridge: peer %s gone: %v", r.RemoteAddr, err)
			return
		}
		evs, err := decodeEvents(data)
		if err != nil {
			logging.Warnf("speech bridge: %v", err)
			continue
		}
		for _, ev := range evs {
			b.settle(ev)
			select {
			case b.events <- ev:
			case <-b.done:
				return
			}
		}
	}
}

func (b *Bridge) attach(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil {
		_ = b.conn.Close()
	}
	b.conn = conn
	logging.Infof("speech bridge: peer attached")

	if b.pending != nil {
		if err := b.write(conn, *b.pending); err != nil {
			logging.Warnf("speech bridge: resend %s failed: %v", b.pending.Type, err)
		}
	}
}

func (b *Bridge) detach(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == conn {
		b.conn = nil
	}
	_ = conn.Close()
}

func (b *Bridge) settle(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending != nil && ev.Completes(b.pending.Type) {
		b.pending = nil
	}
}
