package speech

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/logging"
)

// Remote speaks the JSON protocol to a speech gateway it dials itself.
type Remote struct {
	cfg     Config
	conn    *websocket.Conn
	writeMu sync.Mutex
	events  chan Event
	done    chan struct{}

	errMu     sync.Mutex
	err       error
	closeOnce sync.Once
}

func DialRemote(ctx context.Context, cfg Config) (*Remote, error) {
	cfg = cfg.withDefaults()
	if cfg.Endpoint == "" {
		return nil, errors.New("speech endpoint is required in remote mode")
	}

	header := http.Header{}
	if cfg.APIKey != "" {
		header.Set("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.Endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("dial speech gateway: %w", err)
	}

	r := &Remote{
		cfg:    cfg,
		conn:   conn,
		events: make(chan Event, 8),
		done:   make(chan struct{}),
	}
	r.startReceiver()
	return r, nil
}

func (r *Remote) Prepare(ctx context.Context) error {
	return r.send(ctx, Command{Type: CommandPrepare})
}

func (r *Remote) Speak(ctx context.Context, text string) error {
	return r.send(ctx, Command{Type: CommandSpeak, Utterance: text})
}

func (r *Remote) Listen(ctx context.Context) error {
	return r.send(ctx, Command{Type: CommandListen})
}

// Events is closed once the connection ends. Err then reports why.
func (r *Remote) Events() <-chan Event {
	return r.events
}

func (r *Remote) Err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

func (r *Remote) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		r.writeMu.Lock()
		_ = r.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		r.writeMu.Unlock()
		err = r.conn.Close()
	})
	return err
}

func (r *Remote) send(ctx context.Context, cmd Command) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrClosed
	default:
	}

	payload, err := encodeCommand(cmd, r.cfg)
	if err != nil {
		return err
	}
	r.writeMu.Lock()
	err = r.conn.WriteMessage(websocket.TextMessage, payload)
	r.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("send %s: %w", cmd.Type, err)
	}
	return nil
}

func (r *Remote) startReceiver() {
	go func() {
		defer close(r.events)
		for {
			_, data, err := r.conn.ReadMessage()
			if err != nil {
				r.setErr(err)
				return
			}
			evs, err := decodeEvents(data)
			if err != nil {
				logging.Warnf("speech gateway: %v", err)
				continue
			}
			for _, ev := range evs {
				select {
				case r.events <- ev:
				case <-r.done:
					return
				}
			}
		}
	}()
}

func (r *Remote) setErr(err error) {
	select {
	case <-r.done:
		return
	default:
	}
	r.errMu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.errMu.Unlock()
}
