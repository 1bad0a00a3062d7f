package service

import (
	"encoding/json"
	"fmt"
	"time"

	"social-blog/pkg/logger"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

// Notifier pushes a serialized event to one user. *websocket.Manager
// satisfies it.
type Notifier interface {
	SendToUser(userID uint, msg []byte)
}

type noopNotifier struct{}

func (noopNotifier) SendToUser(uint, []byte) {}

const (
	EventFriendRequest  = "friend_request"
	EventFriendAccepted = "friend_accepted"
	EventReaction       = "reaction"
)

// eventIDs stamps every event so a client can drop one delivered both live
// and from the offline queue.
var eventIDs = mustNode(1)

func mustNode(id int64) *snowflake.Node {
	node, err := snowflake.NewNode(id)
	if err != nil {
		panic(fmt.Sprintf("snowflake node %d: %v", id, err))
	}
	return node
}

// Event is the payload written to a user's websocket.
type Event struct {
	ID        snowflake.ID `json:"id"`
	Type      string       `json:"type"`
	From      uint         `json:"from"`
	Data      interface{}  `json:"data,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

func notify(n Notifier, to uint, ev Event) {
	ev.ID = eventIDs.Generate()
	ev.Timestamp = time.Now().Unix()
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error("marshal notification failed", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	n.SendToUser(to, payload)
}
