package websocket

import (
	"context"
	"sync"
	"time"

	"social-blog/pkg/logger"

	"github.com/gorilla/websocket"
	cmap "github.com/orcaman/concurrent-map/v2"
	"go.uber.org/zap"
)

const sendBufferSize = 256

// OfflineQueue keeps payloads for users that are not connected.
type OfflineQueue interface {
	Push(ctx context.Context, userID uint, payload []byte) error
	Drain(ctx context.Context, userID uint) ([][]byte, error)
}

// Client is one user's live connection. Send is never closed; done marks
// the client as finished.
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(userID uint, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// enqueue hands msg to the writer without blocking. It fails when the
// client is closed or its buffer is full.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// Close stops the writer and closes the connection. Safe to call twice.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.Conn != nil {
			c.Conn.Close()
		}
	})
}

// Manager tracks one live connection per user and routes notifications to
// it, falling back to the offline queue.
type Manager struct {
	clients cmap.ConcurrentMap[uint, *Client]
	offline OfflineQueue
}

func shardByUser(userID uint) uint32 {
	return uint32(userID)
}

// NewManager builds a manager. offline may be nil, in which case messages
// for disconnected users are dropped.
func NewManager(offline OfflineQueue) *Manager {
	return &Manager{
		clients: cmap.NewWithCustomShardingFunction[uint, *Client](shardByUser),
		offline: offline,
	}
}

// AddClient registers client, replacing and closing any earlier connection
// of the same user, then flushes queued notifications to it.
func (m *Manager) AddClient(client *Client) {
	var old *Client
	m.clients.Upsert(client.UserID, client, func(exist bool, current, next *Client) *Client {
		if exist {
			old = current
		}
		return next
	})

	if old != nil && old != client {
		old.Close()
	}
	m.flushOffline(client)
}

// RemoveClient unregisters client if it is still the user's current
// connection, and closes it either way.
func (m *Manager) RemoveClient(client *Client) {
	m.clients.RemoveCb(client.UserID, func(_ uint, current *Client, exists bool) bool {
		return exists && current == client
	})
	client.Close()
}

// SendToUser pushes msg to userID's connection, or queues it when the user
// is offline or too slow to keep up.
func (m *Manager) SendToUser(userID uint, msg []byte) {
	if client, ok := m.clients.Get(userID); ok && client.enqueue(msg) {
		return
	}
	m.storeOffline(userID, msg)
}

func (m *Manager) IsOnline(userID uint) bool {
	return m.clients.Has(userID)
}

// OnlineCount returns the number of connected users.
func (m *Manager) OnlineCount() int {
	return m.clients.Count()
}

func (m *Manager) storeOffline(userID uint, msg []byte) {
	if m.offline == nil {
		logger.Debug("dropping notification for offline user", zap.Uint("user_id", userID))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := m.offline.Push(ctx, userID, msg); err != nil {
		logger.Warn("queue offline notification failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (m *Manager) flushOffline(client *Client) {
	if m.offline == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	payloads, err := m.offline.Drain(ctx, client.UserID)
	if err != nil {
		logger.Warn("drain offline notifications failed", zap.Uint("user_id", client.UserID), zap.Error(err))
		return
	}
	for _, p := range payloads {
		if !client.enqueue(p) {
			logger.Warn("offline notification dropped on flush", zap.Uint("user_id", client.UserID))
			return
		}
	}
}
