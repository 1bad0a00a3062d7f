package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"social-blog/internal/model"
	"social-blog/internal/repository"
	"social-blog/internal/testutil"
	"social-blog/pkg/lock"
)

func record(from, to uint, status model.FriendshipStatus) *model.Friendship {
	f := model.NewFriendRequest(from, to)
	f.ID = 1
	f.Status = status
	return f
}

func TestFriendshipRules(t *testing.T) {
	const a, b = 1, 2

	tests := []struct {
		name     string
		rule     friendshipRule
		current  *model.Friendship
		wantErr  error
		wantFrom uint
		wantTo   uint
		want     model.FriendshipStatus
	}{
		{"send creates", sendRule(a, b), nil, nil, a, b, model.FriendshipRequesting},
		{"send duplicate", sendRule(a, b), record(a, b, model.FriendshipRequesting), ErrDuplicateRequest, 0, 0, ""},
		{"send reciprocal", sendRule(a, b), record(b, a, model.FriendshipRequesting), ErrReciprocalRequest, 0, 0, ""},
		{"send already friends", sendRule(a, b), record(b, a, model.FriendshipAccepted), ErrAlreadyFriends, 0, 0, ""},
		{"send reopens removed", sendRule(a, b), record(b, a, model.FriendshipRemoved), nil, a, b, model.FriendshipRequesting},
		{"send reopens declined", sendRule(a, b), record(a, b, model.FriendshipDeclined), nil, a, b, model.FriendshipRequesting},
		{"send reopens cancelled", sendRule(a, b), record(b, a, model.FriendshipCancelled), nil, a, b, model.FriendshipRequesting},

		{"accept", respondRule(b, a, model.FriendshipAccepted), record(a, b, model.FriendshipRequesting), nil, a, b, model.FriendshipAccepted},
		{"accept by requester", respondRule(a, b, model.FriendshipAccepted), record(a, b, model.FriendshipRequesting), ErrRequestNotFound, 0, 0, ""},
		{"accept missing", respondRule(b, a, model.FriendshipAccepted), nil, ErrRequestNotFound, 0, 0, ""},
		{"accept non-pending", respondRule(b, a, model.FriendshipAccepted), record(a, b, model.FriendshipCancelled), ErrRequestNotFound, 0, 0, ""},
		{"decline", respondRule(b, a, model.FriendshipDeclined), record(a, b, model.FriendshipRequesting), nil, a, b, model.FriendshipDeclined},

		{"cancel", cancelRule(a, b), record(a, b, model.FriendshipRequesting), nil, a, b, model.FriendshipCancelled},
		{"cancel by recipient", cancelRule(b, a), record(a, b, model.FriendshipRequesting), ErrRequestNotFound, 0, 0, ""},

		{"remove either side", removeRule(), record(a, b, model.FriendshipAccepted), nil, a, b, model.FriendshipRemoved},
		{"remove pending", removeRule(), record(a, b, model.FriendshipRequesting), ErrFriendNotFound, 0, 0, ""},
		{"remove missing", removeRule(), nil, ErrFriendNotFound, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := tt.rule(tt.current)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if next.FromID != tt.wantFrom || next.ToID != tt.wantTo || next.Status != tt.want {
				t.Errorf("next = from %d to %d %s, want from %d to %d %s",
					next.FromID, next.ToID, next.Status, tt.wantFrom, tt.wantTo, tt.want)
			}
			if tt.current != nil && next.ID != tt.current.ID {
				t.Error("rule changed the record id")
			}
		})
	}
}

func countFriendships(t *testing.T, f *fixture) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&model.Friendship{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func TestFriendshipScenario(t *testing.T) {
	f := newFixture(t)
	u := testutil.CreateUsers(t, f.db, 2)
	svc := f.friendships(lock.NewLocal())
	ctx := context.Background()
	a, b := u[0].ID, u[1].ID

	if _, err := svc.SendRequest(ctx, a, b); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.AcceptRequest(ctx, a, b); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("requester accepting own request: err = %v", err)
	}
	accepted, err := svc.AcceptRequest(ctx, b, a)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != model.FriendshipAccepted {
		t.Fatalf("status = %s", accepted.Status)
	}
	if _, err := svc.SendRequest(ctx, a, b); !errors.Is(err, ErrAlreadyFriends) {
		t.Fatalf("send to friend: err = %v", err)
	}

	removed, err := svc.RemoveFriendship(ctx, b, a)
	if err != nil || removed.Status != model.FriendshipRemoved {
		t.Fatalf("remove: %v %v", removed, err)
	}
	if _, err := svc.RemoveFriendship(ctx, a, b); !errors.Is(err, ErrFriendNotFound) {
		t.Fatalf("second remove: err = %v", err)
	}

	// reopen in the other direction
	reopened, err := svc.SendRequest(ctx, b, a)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.FromID != b || reopened.ToID != a || reopened.Status != model.FriendshipRequesting {
		t.Fatalf("reopened = %+v", reopened)
	}
	if reopened.ID != accepted.ID {
		t.Error("reopening created a new record")
	}

	if err := svc.DeclineRequest(ctx, a, b); err != nil {
		t.Fatalf("decline: %v", err)
	}
	if _, err := svc.CancelRequest(ctx, b, a); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("cancel after decline: err = %v", err)
	}

	if n := countFriendships(t, f); n != 1 {
		t.Errorf("pair has %d records, want 1", n)
	}

	if got := f.notifier.typesFor(b); len(got) != 1 || got[0] != EventFriendRequest {
		t.Errorf("notifications for b = %v", got)
	}
	if got := f.notifier.typesFor(a); len(got) != 2 || got[0] != EventFriendAccepted || got[1] != EventFriendRequest {
		t.Errorf("notifications for a = %v", got)
	}
}

func TestSendRequestValidation(t *testing.T) {
	f := newFixture(t)
	u := testutil.CreateUsers(t, f.db, 1)
	svc := f.friendships(lock.NewLocal())
	ctx := context.Background()

	if _, err := svc.SendRequest(ctx, u[0].ID, 999); !errors.Is(err, ErrRecipientNotFound) {
		t.Errorf("unknown recipient: err = %v", err)
	}
	if _, err := svc.SendRequest(ctx, u[0].ID, u[0].ID); !errors.Is(err, ErrSelfFriendship) {
		t.Errorf("self request: err = %v", err)
	}
	if n := countFriendships(t, f); n != 0 {
		t.Errorf("%d records written by failed requests", n)
	}
}

func TestConcurrentSendRequestsKeepOneRecord(t *testing.T) {
	lockers := map[string]lock.Locker{
		"local lock":  lock.NewLocal(),
		"index alone": passthroughLocker{},
	}
	for name, locker := range lockers {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			u := testutil.CreateUsers(t, f.db, 2)
			svc := f.friendships(locker)
			ctx := context.Background()

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				successes int
			)
			for i := 0; i < 16; i++ {
				from, to := u[0].ID, u[1].ID
				if i%2 == 1 {
					from, to = to, from
				}
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := svc.SendRequest(ctx, from, to)
					switch {
					case err == nil:
						mu.Lock()
						successes++
						mu.Unlock()
					case errors.Is(err, ErrDuplicateRequest), errors.Is(err, ErrReciprocalRequest):
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			if successes != 1 {
				t.Errorf("%d requests succeeded, want 1", successes)
			}
			if n := countFriendships(t, f); n != 1 {
				t.Errorf("pair has %d records, want 1", n)
			}
		})
	}
}

func TestFriendLists(t *testing.T) {
	f := newFixture(t)
	u := testutil.CreateUsers(t, f.db, 4)
	svc := f.friendships(lock.NewLocal())
	ctx := context.Background()

	mustSend := func(from, to uint) {
		t.Helper()
		if _, err := svc.SendRequest(ctx, from, to); err != nil {
			t.Fatal(err)
		}
	}
	mustSend(u[0].ID, u[1].ID)
	mustSend(u[2].ID, u[0].ID)
	mustSend(u[3].ID, u[0].ID)
	if _, err := svc.AcceptRequest(ctx, u[0].ID, u[3].ID); err != nil {
		t.Fatal(err)
	}

	page := repository.Page{Page: 1, Limit: 10}
	friends, total, err := svc.ListFriends(ctx, u[0].ID, page)
	if err != nil || total != 1 || len(friends) != 1 || friends[0].ID != u[3].ID {
		t.Fatalf("friends = %+v total %d err %v", friends, total, err)
	}
	if friends[0].Friendship == nil || friends[0].Friendship.Status != model.FriendshipAccepted {
		t.Error("friend entry missing its friendship")
	}

	outgoing, _, err := svc.ListOutgoing(ctx, u[0].ID, page)
	if err != nil || len(outgoing) != 1 || outgoing[0].ID != u[1].ID {
		t.Fatalf("outgoing = %+v err %v", outgoing, err)
	}
	incoming, _, err := svc.ListIncoming(ctx, u[0].ID, page)
	if err != nil || len(incoming) != 1 || incoming[0].ID != u[2].ID {
		t.Fatalf("incoming = %+v err %v", incoming, err)
	}
}
