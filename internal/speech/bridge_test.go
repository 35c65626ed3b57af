package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialPeer(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("dial bridge: %v", err)
	}
	return conn
}

func readCommand(t *testing.T, conn *websocket.Conn) commandMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read command: %v", err)
	}
	var msg commandMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode command: %v", err)
	}
	return msg
}

func TestBridgeHoldsCommandUntilPeerAttaches(t *testing.T) {
	b := NewBridge(Config{})
	srv := httptest.NewServer(b)
	defer srv.Close()
	defer b.Close()

	if err := b.Speak(context.Background(), "Hello"); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if b.Connected() {
		t.Fatal("expected no peer yet")
	}

	peer := dialPeer(t, srv)
	defer peer.Close()

	if msg := readCommand(t, peer); msg.Type != "SPEAK" || msg.Utterance != "Hello" {
		t.Fatalf("unexpected command %+v", msg)
	}
	if err := peer.WriteMessage(websocket.TextMessage, []byte(`{"type":"SPEAK_COMPLETE"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ev := nextEvent(t, b.Events()); ev.Type != EventSpeakComplete {
		t.Fatalf("expected SPEAK_COMPLETE, got %s", ev.Type)
	}
}

func TestBridgeResendsOutstandingCommandToNewPeer(t *testing.T) {
	b := NewBridge(Config{})
	srv := httptest.NewServer(b)
	defer srv.Close()
	defer b.Close()

	first := dialPeer(t, srv)
	deadline := time.Now().Add(2 * time.Second)
	for !b.Connected() {
		if time.Now().After(deadline) {
			t.Fatal("peer never attached")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := b.Listen(context.Background()); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	if msg := readCommand(t, first); msg.Type != "LISTEN" {
		t.Fatalf("unexpected command %+v", msg)
	}
	first.Close()

	second := dialPeer(t, srv)
	defer second.Close()
	if msg := readCommand(t, second); msg.Type != "LISTEN" {
		t.Fatalf("expected LISTEN to be resent, got %+v", msg)
	}

	if err := second.WriteMessage(websocket.TextMessage, []byte(`{"type":"ASR_NOINPUT"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ev := nextEvent(t, b.Events()); ev.Type != EventNoInput {
		t.Fatalf("expected NO_INPUT, got %s", ev.Type)
	}
	if ev := nextEvent(t, b.Events()); ev.Type != EventListenComplete {
		t.Fatalf("expected LISTEN_COMPLETE, got %s", ev.Type)
	}
}

func TestBridgeClosed(t *testing.T) {
	b := NewBridge(Config{})
	_ = b.Close()
	if err := b.Prepare(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Prepare() error = %v, want ErrClosed", err)
	}
}
