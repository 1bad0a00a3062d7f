package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"social-blog/config"
	"social-blog/pkg/jwt"
	"social-blog/pkg/logger"
	"social-blog/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades an authenticated request and keeps the connection
// registered with m until either side goes away. It must run behind
// jwt.AuthMiddleware.
func ServeWS(m *Manager, cfg config.WebSocketConfig) gin.HandlerFunc {
	pingInterval := cfg.PingInterval
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 3 * pingInterval
	}

	return func(c *gin.Context) {
		userID := jwt.GetUserID(c)
		if userID == 0 {
			response.Unauthorized(c, "Unauthorized")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Uint("user_id", userID), zap.Error(err))
			return
		}

		client := NewClient(userID, conn)
		m.AddClient(client)
		logger.Info("websocket connected", zap.Uint("user_id", userID))
		defer func() {
			m.RemoveClient(client)
			logger.Info("websocket disconnected", zap.Uint("user_id", userID))
		}()

		go writePump(client, pingInterval)
		readPump(client, readTimeout)
	}
}

func writePump(client *Client, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-client.done:
			return
		case msg := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				client.Close()
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				client.Close()
				return
			}
		}
	}
}

type clientMessage struct {
	Type string `json:"type"`
}

var pongMessage = []byte(`{"type":"pong"}`)

// readPump only listens for heartbeats; notifications flow server to
// client.
func readPump(client *Client, readTimeout time.Duration) {
	conn := client.Conn
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if msg.Type == "heartbeat" {
			client.enqueue(pongMessage)
		}
	}
}
