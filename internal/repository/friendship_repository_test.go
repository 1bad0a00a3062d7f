package repository

import (
	"context"
	"errors"
	"testing"

	"social-blog/internal/model"
	"social-blog/internal/testutil"
)

func TestFriendshipCreateIfAbsentIsPairUnique(t *testing.T) {
	db := testutil.NewDB(t)
	users := testutil.CreateUsers(t, db, 2)
	repo := NewFriendshipRepository(db)
	ctx := context.Background()

	created, err := repo.CreateIfAbsent(ctx, model.NewFriendRequest(users[0].ID, users[1].ID))
	if err != nil || !created {
		t.Fatalf("first insert: created=%v err=%v", created, err)
	}

	created, err = repo.CreateIfAbsent(ctx, model.NewFriendRequest(users[1].ID, users[0].ID))
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if created {
		t.Fatal("reverse-direction insert created a second record for the pair")
	}

	f, err := repo.FindByPair(ctx, users[1].ID, users[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if f.FromID != users[0].ID || f.Status != model.FriendshipRequesting {
		t.Errorf("record = %+v", f)
	}
}

func TestFriendshipFindByPairNotFound(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFriendshipRepository(db)

	if _, err := repo.FindByPair(context.Background(), 1, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFriendshipCompareAndSwap(t *testing.T) {
	db := testutil.NewDB(t)
	users := testutil.CreateUsers(t, db, 2)
	repo := NewFriendshipRepository(db)
	ctx := context.Background()

	req := model.NewFriendRequest(users[0].ID, users[1].ID)
	if _, err := repo.CreateIfAbsent(ctx, req); err != nil {
		t.Fatal(err)
	}
	stale := *req

	next := *req
	next.Status = model.FriendshipAccepted
	ok, err := repo.CompareAndSwap(ctx, req, next)
	if err != nil || !ok {
		t.Fatalf("swap: ok=%v err=%v", ok, err)
	}
	if req.Status != model.FriendshipAccepted {
		t.Error("prev not updated in place")
	}

	cancelled := stale
	cancelled.Status = model.FriendshipCancelled
	ok, err = repo.CompareAndSwap(ctx, &stale, cancelled)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("swap from a stale read succeeded")
	}

	f, _ := repo.FindByPair(ctx, users[0].ID, users[1].ID)
	if f.Status != model.FriendshipAccepted {
		t.Errorf("status = %s, want accepted", f.Status)
	}
}

func TestFriendshipListsAndCount(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.CreateUsers(t, db, 4)
	repo := NewFriendshipRepository(db)
	ctx := context.Background()

	// u0 -> u1 pending, u2 -> u0 pending, u0 <-> u3 accepted
	for _, f := range []*model.Friendship{
		model.NewFriendRequest(u[0].ID, u[1].ID),
		model.NewFriendRequest(u[2].ID, u[0].ID),
		model.NewFriendRequest(u[3].ID, u[0].ID),
	} {
		if _, err := repo.CreateIfAbsent(ctx, f); err != nil {
			t.Fatal(err)
		}
	}
	f, _ := repo.FindByPair(ctx, u[0].ID, u[3].ID)
	next := *f
	next.Status = model.FriendshipAccepted
	if ok, err := repo.CompareAndSwap(ctx, f, next); !ok || err != nil {
		t.Fatalf("accept: %v %v", ok, err)
	}

	tests := []struct {
		name   string
		filter FriendshipFilter
		other  uint
	}{
		{"friends", FilterFriends, u[3].ID},
		{"outgoing", FilterOutgoing, u[1].ID},
		{"incoming", FilterIncoming, u[2].ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, total, err := repo.List(ctx, u[0].ID, tt.filter, Page{Page: 1, Limit: 10})
			if err != nil {
				t.Fatal(err)
			}
			if total != 1 || len(list) != 1 {
				t.Fatalf("total=%d len=%d, want 1", total, len(list))
			}
			if list[0].Other(u[0].ID) != tt.other {
				t.Errorf("other = %d, want %d", list[0].Other(u[0].ID), tt.other)
			}
		})
	}

	n, err := repo.CountFriends(ctx, u[3].ID)
	if err != nil || n != 1 {
		t.Errorf("CountFriends = %d, %v", n, err)
	}

	byUser, err := repo.FindForUser(ctx, u[0].ID, []uint{u[1].ID, u[2].ID, u[3].ID, 999})
	if err != nil {
		t.Fatal(err)
	}
	if len(byUser) != 3 {
		t.Fatalf("FindForUser returned %d records, want 3", len(byUser))
	}
	if byUser[u[3].ID].Status != model.FriendshipAccepted {
		t.Errorf("u3 status = %s", byUser[u[3].ID].Status)
	}
}

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		in   Page
		want Page
	}{
		{Page{}, Page{Page: 1, Limit: DefaultPageSize}},
		{Page{Page: 3, Limit: 500}, Page{Page: 3, Limit: MaxPageSize}},
		{Page{Page: -1, Limit: 5}, Page{Page: 1, Limit: 5}},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if off := (Page{Page: 3, Limit: 10}).Offset(); off != 20 {
		t.Errorf("Offset = %d, want 20", off)
	}
}
