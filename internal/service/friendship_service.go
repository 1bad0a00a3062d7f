package service

import (
	"context"
	"errors"
	"fmt"

	"social-blog/internal/model"
	"social-blog/internal/repository"
	"social-blog/pkg/lock"
	"social-blog/pkg/logger"

	"go.uber.org/zap"
)

// maxSwapAttempts bounds how often a transition re-reads the record after
// losing a compare-and-swap to a concurrent writer.
const maxSwapAttempts = 3

// friendshipRule computes the next state of a pair from its current record,
// which is nil when the pair has none.
type friendshipRule func(current *model.Friendship) (model.Friendship, error)

func sendRule(initiator, recipient uint) friendshipRule {
	return func(cur *model.Friendship) (model.Friendship, error) {
		if cur == nil {
			return *model.NewFriendRequest(initiator, recipient), nil
		}
		switch {
		case cur.Status == model.FriendshipRequesting && cur.FromID == initiator:
			return model.Friendship{}, ErrDuplicateRequest
		case cur.Status == model.FriendshipRequesting:
			return model.Friendship{}, ErrReciprocalRequest
		case cur.Status == model.FriendshipAccepted:
			return model.Friendship{}, ErrAlreadyFriends
		case cur.Status.Reopenable():
			next := *cur
			next.FromID = initiator
			next.ToID = recipient
			next.Status = model.FriendshipRequesting
			return next, nil
		}
		return model.Friendship{}, fmt.Errorf("friendship %d has unknown status %q", cur.ID, cur.Status)
	}
}

// respondRule handles accept and decline: only the recipient of a pending
// request may answer it.
func respondRule(responder, requester uint, status model.FriendshipStatus) friendshipRule {
	return func(cur *model.Friendship) (model.Friendship, error) {
		if cur == nil || cur.Status != model.FriendshipRequesting || cur.FromID != requester || cur.ToID != responder {
			return model.Friendship{}, ErrRequestNotFound
		}
		next := *cur
		next.Status = status
		return next, nil
	}
}

func cancelRule(canceler, recipient uint) friendshipRule {
	return func(cur *model.Friendship) (model.Friendship, error) {
		if cur == nil || cur.Status != model.FriendshipRequesting || cur.FromID != canceler || cur.ToID != recipient {
			return model.Friendship{}, ErrRequestNotFound
		}
		next := *cur
		next.Status = model.FriendshipCancelled
		return next, nil
	}
}

func removeRule() friendshipRule {
	return func(cur *model.Friendship) (model.Friendship, error) {
		if cur == nil || cur.Status != model.FriendshipAccepted {
			return model.Friendship{}, ErrFriendNotFound
		}
		next := *cur
		next.Status = model.FriendshipRemoved
		return next, nil
	}
}

// UserWithFriendship is a user annotated with the caller's relationship
// to them.
type UserWithFriendship struct {
	model.User
	Friendship *model.Friendship `json:"friendship,omitempty"`
}

type FriendshipService struct {
	store    *repository.Store
	locker   lock.Locker
	notifier Notifier
}

// NewFriendshipService wires the service. notifier may be nil.
func NewFriendshipService(store *repository.Store, locker lock.Locker, notifier Notifier) *FriendshipService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &FriendshipService{store: store, locker: locker, notifier: notifier}
}

func pairLockKey(a, b uint) string {
	low, high := model.PairKey(a, b)
	return fmt.Sprintf("friendship:%d:%d", low, high)
}

// transition applies rule to the pair {a, b} under the pair lock. Inserts
// go through the pair's unique index and updates are conditional on the
// record read, so a writer outside the lock can only make us re-read.
func (s *FriendshipService) transition(ctx context.Context, a, b uint, rule friendshipRule) (*model.Friendship, error) {
	unlock, err := s.locker.Lock(ctx, pairLockKey(a, b))
	if err != nil {
		return nil, fmt.Errorf("lock friendship pair: %w", err)
	}
	defer unlock()

	repo := s.store.Friendships
	for attempt := 0; attempt < maxSwapAttempts; attempt++ {
		cur, err := repo.FindByPair(ctx, a, b)
		if errors.Is(err, repository.ErrNotFound) {
			cur = nil
		} else if err != nil {
			return nil, err
		}

		next, err := rule(cur)
		if err != nil {
			return nil, err
		}

		if cur == nil {
			created, err := repo.CreateIfAbsent(ctx, &next)
			if err != nil {
				return nil, err
			}
			if created {
				return &next, nil
			}
			continue
		}

		swapped, err := repo.CompareAndSwap(ctx, cur, next)
		if err != nil {
			return nil, err
		}
		if swapped {
			return cur, nil
		}
	}
	logger.Warn("friendship transition lost every swap",
		zap.Uint("user_a", a),
		zap.Uint("user_b", b),
	)
	return nil, ErrConcurrentUpdate
}

// SendRequest opens a request from initiator to recipient, or reopens a
// declined, cancelled or removed pair.
func (s *FriendshipService) SendRequest(ctx context.Context, initiator, recipient uint) (*model.Friendship, error) {
	if initiator == recipient {
		return nil, ErrSelfFriendship
	}
	exists, err := s.store.Users.Exists(ctx, recipient)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRecipientNotFound
	}

	f, err := s.transition(ctx, initiator, recipient, sendRule(initiator, recipient))
	if err != nil {
		return nil, err
	}

	logger.Info("friend request sent", zap.Uint("from", initiator), zap.Uint("to", recipient))
	notify(s.notifier, recipient, Event{Type: EventFriendRequest, From: initiator, Data: f})
	return f, nil
}

// AcceptRequest accepts the pending request requester sent to accepter.
func (s *FriendshipService) AcceptRequest(ctx context.Context, accepter, requester uint) (*model.Friendship, error) {
	f, err := s.transition(ctx, accepter, requester, respondRule(accepter, requester, model.FriendshipAccepted))
	if err != nil {
		return nil, err
	}

	logger.Info("friend request accepted", zap.Uint("from", requester), zap.Uint("to", accepter))
	notify(s.notifier, requester, Event{Type: EventFriendAccepted, From: accepter, Data: f})
	return f, nil
}

// DeclineRequest declines the pending request requester sent to decliner.
func (s *FriendshipService) DeclineRequest(ctx context.Context, decliner, requester uint) error {
	if _, err := s.transition(ctx, decliner, requester, respondRule(decliner, requester, model.FriendshipDeclined)); err != nil {
		return err
	}
	logger.Info("friend request declined", zap.Uint("from", requester), zap.Uint("to", decliner))
	return nil
}

// CancelRequest withdraws the pending request canceler sent to recipient.
func (s *FriendshipService) CancelRequest(ctx context.Context, canceler, recipient uint) (*model.Friendship, error) {
	f, err := s.transition(ctx, canceler, recipient, cancelRule(canceler, recipient))
	if err != nil {
		return nil, err
	}
	logger.Info("friend request cancelled", zap.Uint("from", canceler), zap.Uint("to", recipient))
	return f, nil
}

// RemoveFriendship ends an accepted friendship from either side.
func (s *FriendshipService) RemoveFriendship(ctx context.Context, remover, other uint) (*model.Friendship, error) {
	f, err := s.transition(ctx, remover, other, removeRule())
	if err != nil {
		return nil, err
	}
	logger.Info("friendship removed", zap.Uint("by", remover), zap.Uint("other", other))
	return f, nil
}

func (s *FriendshipService) ListFriends(ctx context.Context, userID uint, page repository.Page) ([]UserWithFriendship, int64, error) {
	return s.list(ctx, userID, repository.FilterFriends, page)
}

func (s *FriendshipService) ListOutgoing(ctx context.Context, userID uint, page repository.Page) ([]UserWithFriendship, int64, error) {
	return s.list(ctx, userID, repository.FilterOutgoing, page)
}

func (s *FriendshipService) ListIncoming(ctx context.Context, userID uint, page repository.Page) ([]UserWithFriendship, int64, error) {
	return s.list(ctx, userID, repository.FilterIncoming, page)
}

// list pairs each record with the other user. Records whose other user
// has been deleted are skipped.
func (s *FriendshipService) list(ctx context.Context, userID uint, filter repository.FriendshipFilter, page repository.Page) ([]UserWithFriendship, int64, error) {
	records, total, err := s.store.Friendships.List(ctx, userID, filter, page.Normalize())
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(records))
	for i := range records {
		ids = append(ids, records[i].Other(userID))
	}
	users, err := s.store.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	result := make([]UserWithFriendship, 0, len(records))
	for i := range records {
		u, ok := users[records[i].Other(userID)]
		if !ok {
			continue
		}
		result = append(result, UserWithFriendship{User: u, Friendship: &records[i]})
	}
	return result, total, nil
}
