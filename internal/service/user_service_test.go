package service

import (
	"context"
	"errors"
	"testing"

	"social-blog/internal/model"
	"social-blog/internal/repository"
	"social-blog/pkg/lock"
)

func TestRegisterLoginVerify(t *testing.T) {
	f := newFixture(t)
	svc := f.users()
	ctx := context.Background()

	user, token, err := svc.Register(ctx, RegisterInput{Name: " Alice ", Email: "Alice@Example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token == "" || user.Name != "Alice" || user.Email != "alice@example.com" {
		t.Fatalf("user = %+v token %q", user, token)
	}
	if user.EmailVerified || user.EmailVerificationCode == "" {
		t.Fatal("new account should be unverified with a code")
	}

	if _, _, err := svc.Register(ctx, RegisterInput{Name: "x", Email: "alice@example.com", Password: "y"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate register: err = %v", err)
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "nope"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("bad password: err = %v", err)
	}
	if _, _, err := svc.Login(ctx, "bob@example.com", "secret"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("unknown email: err = %v", err)
	}
	if _, token, err := svc.Login(ctx, "ALICE@example.com", "secret"); err != nil || token == "" {
		t.Fatalf("login: %v", err)
	}

	verified, _, err := svc.VerifyEmail(ctx, user.EmailVerificationCode)
	if err != nil || !verified.EmailVerified {
		t.Fatalf("verify: %+v %v", verified, err)
	}
	if _, _, err := svc.VerifyEmail(ctx, user.EmailVerificationCode); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("reused code: err = %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	svc := f.users()
	ctx := context.Background()

	user, _, err := svc.Register(ctx, RegisterInput{Name: "alice", Email: "a@example.com", Password: "old"})
	if err != nil {
		t.Fatal(err)
	}

	name, pw := "Alice B", "new"
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Name: &name, Password: &pw})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Alice B" {
		t.Errorf("name = %q", updated.Name)
	}
	if _, _, err := svc.Login(ctx, "a@example.com", "new"); err != nil {
		t.Errorf("login with new password: %v", err)
	}

	empty := " "
	if _, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Name: &empty}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank name: err = %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, 999, UpdateProfileInput{}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user: err = %v", err)
	}
}

func TestCurrentUserAndListUsers(t *testing.T) {
	f := newFixture(t)
	users := f.users()
	friends := f.friendships(lock.NewLocal())
	ctx := context.Background()

	var ids []uint
	for _, name := range []string{"ann", "bob", "cat"} {
		u, _, err := users.Register(ctx, RegisterInput{Name: name, Email: name + "@example.com", Password: "pw"})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, u.ID)
	}
	if _, err := friends.SendRequest(ctx, ids[0], ids[1]); err != nil {
		t.Fatal(err)
	}
	if _, err := friends.AcceptRequest(ctx, ids[1], ids[0]); err != nil {
		t.Fatal(err)
	}
	if _, err := friends.SendRequest(ctx, ids[2], ids[0]); err != nil {
		t.Fatal(err)
	}

	me, err := users.GetCurrentUser(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if me.FriendCount != 1 {
		t.Errorf("FriendCount = %d, want 1", me.FriendCount)
	}

	list, total, err := users.ListUsers(ctx, ids[0], "", repository.Page{Page: 1, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(list) != 3 {
		t.Fatalf("total=%d len=%d", total, len(list))
	}
	want := map[uint]model.FriendshipStatus{
		ids[1]: model.FriendshipAccepted,
		ids[2]: model.FriendshipRequesting,
	}
	for _, entry := range list {
		status, related := want[entry.ID]
		switch {
		case !related && entry.Friendship != nil:
			t.Errorf("user %d has unexpected friendship", entry.ID)
		case related && (entry.Friendship == nil || entry.Friendship.Status != status):
			t.Errorf("user %d friendship = %+v, want %s", entry.ID, entry.Friendship, status)
		}
	}
}
