package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

// fakeServer is a minimal realtime service: it records joins and sends,
// and lets the test push frames to the latest connection.
type fakeServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu      sync.Mutex
	conns   []*websocket.Conn
	joins   []string
	sends   []sendMessage
	joined  chan string
	receive chan sendMessage
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	fs := &fakeServer{
		t:       t,
		joined:  make(chan string, 10),
		receive: make(chan sendMessage, 10),
	}
	srv := httptest.NewServer(http.HandlerFunc(fs.handle))
	t.Cleanup(srv.Close)
	return fs, srv
}

func (fs *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := fs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		fs.t.Errorf("upgrade: %v", err)
		return
	}
	fs.mu.Lock()
	fs.conns = append(fs.conns, conn)
	fs.mu.Unlock()

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		switch env.Event {
		case EventJoinRoom:
			var j joinRoom
			_ = json.Unmarshal(env.Data, &j)
			fs.mu.Lock()
			fs.joins = append(fs.joins, j.UserID)
			fs.mu.Unlock()
			fs.joined <- j.UserID
		case EventSendMessage:
			var m sendMessage
			_ = json.Unmarshal(env.Data, &m)
			fs.receive <- m
		}
	}
}

func (fs *fakeServer) latest() *websocket.Conn {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.conns[len(fs.conns)-1]
}

func (fs *fakeServer) connCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.conns)
}

func (fs *fakeServer) push(t *testing.T, msg domain.ChatMessage) {
	t.Helper()
	raw, _ := json.Marshal(msg)
	if err := fs.latest().WriteJSON(Envelope{Event: EventNewMessage, Data: raw}); err != nil {
		t.Fatalf("push: %v", err)
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitJoin(t *testing.T, fs *fakeServer) string {
	t.Helper()
	select {
	case id := <-fs.joined:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for join_room")
		return ""
	}
}

func TestConnectJoinsRoomOnce(t *testing.T) {
	fs, srv := newFakeServer(t)
	c := New(wsURL(srv), Options{})
	defer c.Disconnect()

	ctx := context.Background()
	if err := c.Connect(ctx, "u-1", "Asha", domain.RoleUser); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := waitJoin(t, fs); got != "u-1" {
		t.Fatalf("expected join for u-1, got %s", got)
	}
	if err := c.Connect(ctx, "u-1", "Asha", domain.RoleUser); err != nil {
		t.Fatalf("second Connect: %v", err)
	}
	if n := fs.connCount(); n != 1 {
		t.Fatalf("expected one connection, got %d", n)
	}
}

func TestSendRequiresConnection(t *testing.T) {
	c := New("ws://127.0.0.1:1/ws", Options{})
	if err := c.Send("hi", "u-1", "Asha", domain.RoleUser, nil); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	// Disconnect without a connection must not panic.
	c.Disconnect()
	c.Disconnect()
}

func TestSendPublishesMessage(t *testing.T) {
	fs, srv := newFakeServer(t)
	c := New(wsURL(srv), Options{})
	defer c.Disconnect()
	if err := c.Connect(context.Background(), "u-1", "Asha", domain.RoleUser); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	waitJoin(t, fs)

	if err := c.Send("need help", "u-1", "Asha", domain.RoleUser, nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case m := <-fs.receive:
		if m.Message != "need help" || m.ReceiverID != nil || m.SenderRole != domain.RoleUser {
			t.Fatalf("unexpected message %+v", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for send_message")
	}
}

func TestIncomingHandlersRunInOrder(t *testing.T) {
	fs, srv := newFakeServer(t)
	c := New(wsURL(srv), Options{})
	defer c.Disconnect()

	got := make(chan string, 10)
	c.OnIncoming(func(m domain.ChatMessage) { got <- "a:" + m.Message })
	c.OnIncoming(func(m domain.ChatMessage) { got <- "b:" + m.Message })

	if err := c.Connect(context.Background(), "u-1", "Asha", domain.RoleUser); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	waitJoin(t, fs)

	fs.push(t, domain.ChatMessage{SenderID: "admin-1", Message: "one"})
	fs.push(t, domain.ChatMessage{SenderID: "admin-1", Message: "two"})

	want := []string{"a:one", "b:one", "a:two", "b:two"}
	for _, w := range want {
		select {
		case g := <-got:
			if g != w {
				t.Fatalf("expected %s, got %s", w, g)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timeout waiting for %s", w)
		}
	}
}

func TestReconnectRejoinsRoom(t *testing.T) {
	fs, srv := newFakeServer(t)
	c := New(wsURL(srv), Options{MaxReconnects: 3, Backoff: 10 * time.Millisecond})
	defer c.Disconnect()

	if err := c.Connect(context.Background(), "u-7", "Ravi", domain.RoleUser); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	waitJoin(t, fs)

	fs.latest().Close()

	if got := waitJoin(t, fs); got != "u-7" {
		t.Fatalf("expected rejoin for u-7, got %s", got)
	}
	deadline := time.Now().Add(2 * time.Second)
	for !c.Connected() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !c.Connected() {
		t.Fatal("client should be connected after reconnect")
	}
}

func TestDisconnectStopsClient(t *testing.T) {
	fs, srv := newFakeServer(t)
	c := New(wsURL(srv), Options{MaxReconnects: 3, Backoff: 10 * time.Millisecond})
	if err := c.Connect(context.Background(), "u-1", "Asha", domain.RoleUser); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	waitJoin(t, fs)

	c.Disconnect()
	if c.Connected() {
		t.Fatal("expected disconnected")
	}
	time.Sleep(50 * time.Millisecond)
	if n := fs.connCount(); n != 1 {
		t.Fatalf("client must not reconnect after Disconnect, got %d connections", n)
	}
}
