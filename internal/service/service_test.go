package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"social-blog/config"
	"social-blog/internal/repository"
	"social-blog/internal/testutil"
	"social-blog/pkg/jwt"
	"social-blog/pkg/lock"

	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events map[uint][]Event
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(map[uint][]Event)}
}

func (n *recordingNotifier) SendToUser(userID uint, msg []byte) {
	var ev Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		panic(err)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[userID] = append(n.events[userID], ev)
}

func (n *recordingNotifier) typesFor(userID uint) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	types := make([]string, 0, len(n.events[userID]))
	for _, ev := range n.events[userID] {
		types = append(types, ev.Type)
	}
	return types
}

// passthroughLocker never blocks, leaving only the database guards.
type passthroughLocker struct{}

func (passthroughLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

type fixture struct {
	db       *gorm.DB
	store    *repository.Store
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	return &fixture{
		db:       db,
		store:    repository.NewStore(db),
		notifier: newRecordingNotifier(),
	}
}

func (f *fixture) friendships(locker lock.Locker) *FriendshipService {
	return NewFriendshipService(f.store, locker, f.notifier)
}

func (f *fixture) reactions() *ReactionService {
	return f.reactionsWith(lock.NewLocal())
}

func (f *fixture) reactionsWith(locker lock.Locker) *ReactionService {
	return NewReactionService(f.store, locker, f.notifier)
}

func (f *fixture) users() *UserService {
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test", ExpireTime: time.Hour, Issuer: "test"})
	return NewUserService(f.store, jwtService, nil, "http://localhost:3000/")
}
