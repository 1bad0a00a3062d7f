package websocket

import (
	"context"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"social-blog/config"
	"social-blog/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type memoryQueue struct {
	mu    sync.Mutex
	items map[uint][][]byte
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{items: make(map[uint][][]byte)}
}

func (q *memoryQueue) Push(_ context.Context, userID uint, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items[userID] = append(q.items[userID], payload)
	return nil
}

func (q *memoryQueue) Drain(_ context.Context, userID uint) ([][]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items[userID]
	delete(q.items, userID)
	return items, nil
}

func (q *memoryQueue) len(userID uint) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items[userID])
}

func TestManagerReplacesOlderConnection(t *testing.T) {
	m := NewManager(nil)
	first := NewClient(1, nil)
	second := NewClient(1, nil)

	m.AddClient(first)
	m.AddClient(second)

	select {
	case <-first.done:
	default:
		t.Fatal("first client should be closed once replaced")
	}

	m.RemoveClient(first)
	if !m.IsOnline(1) {
		t.Fatal("removing the stale client unregistered the live one")
	}

	m.SendToUser(1, []byte("hi"))
	if got := string(<-second.Send); got != "hi" {
		t.Errorf("got %q", got)
	}

	m.RemoveClient(second)
	if m.IsOnline(1) || m.OnlineCount() != 0 {
		t.Error("user still online after removal")
	}
}

func TestSendToOfflineUserQueues(t *testing.T) {
	q := newMemoryQueue()
	m := NewManager(q)

	m.SendToUser(3, []byte("a"))
	m.SendToUser(3, []byte("b"))
	if q.len(3) != 2 {
		t.Fatalf("queued %d, want 2", q.len(3))
	}

	client := NewClient(3, nil)
	m.AddClient(client)
	if q.len(3) != 0 {
		t.Error("queue not drained on connect")
	}
	if got := string(<-client.Send); got != "a" {
		t.Errorf("first flushed = %q, want a", got)
	}
	if got := string(<-client.Send); got != "b" {
		t.Errorf("second flushed = %q, want b", got)
	}
}

func newTestServer(t *testing.T, m *Manager) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		id, _ := strconv.ParseUint(c.Query("uid"), 10, 64)
		c.Set(jwt.ContextUserIDKey, uint(id))
		c.Next()
	}
	r.GET("/ws", fakeAuth, ServeWS(m, config.WebSocketConfig{
		PingInterval: time.Second,
		ReadTimeout:  5 * time.Second,
	}))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, uid uint) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?uid=" + strconv.FormatUint(uint64(uid), 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func waitOnline(t *testing.T, m *Manager, uid uint) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !m.IsOnline(uid) {
		if time.Now().After(deadline) {
			t.Fatalf("user %d never came online", uid)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServeWSDeliversQueuedAndLiveNotifications(t *testing.T) {
	q := newMemoryQueue()
	m := NewManager(q)
	srv := newTestServer(t, m)

	m.SendToUser(5, []byte(`{"type":"friend_request"}`))

	conn := dial(t, srv, 5)
	if got := readText(t, conn); got != `{"type":"friend_request"}` {
		t.Fatalf("flushed = %s", got)
	}

	waitOnline(t, m, 5)
	m.SendToUser(5, []byte(`{"type":"reaction"}`))
	if got := readText(t, conn); got != `{"type":"reaction"}` {
		t.Fatalf("live = %s", got)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`)); err != nil {
		t.Fatal(err)
	}
	if got := readText(t, conn); got != string(pongMessage) {
		t.Fatalf("heartbeat reply = %s", got)
	}
}

func TestServeWSRejectsAnonymous(t *testing.T) {
	m := NewManager(nil)
	srv := newTestServer(t, m)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("anonymous dial succeeded")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Errorf("response = %v", resp)
	}
}
