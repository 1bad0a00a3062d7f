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

// ReactionAction is what a toggle did to the caller's reaction.
type ReactionAction string

const (
	ActionAdded   ReactionAction = "Added"
	ActionUpdated ReactionAction = "Updated"
	ActionRemoved ReactionAction = "Removed"
)

// Message is the user-facing text for the action.
func (a ReactionAction) Message() string {
	return string(a) + " reaction"
}

// decideToggle maps the existing reaction and the requested emoji onto an
// action: none adds, a different emoji updates, the same emoji removes.
func decideToggle(existing *model.Reaction, emoji model.Emoji) ReactionAction {
	switch {
	case existing == nil:
		return ActionAdded
	case existing.Emoji == emoji:
		return ActionRemoved
	default:
		return ActionUpdated
	}
}

// ReactionResult is returned by Toggle.
type ReactionResult struct {
	Summary model.ReactionSummary
	Action  ReactionAction
}

type ReactionService struct {
	store    *repository.Store
	locker   lock.Locker
	notifier Notifier
}

// NewReactionService wires the service. notifier may be nil.
func NewReactionService(store *repository.Store, locker lock.Locker, notifier Notifier) *ReactionService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ReactionService{store: store, locker: locker, notifier: notifier}
}

func targetLockKey(targetType model.TargetType, targetID uint) string {
	return fmt.Sprintf("reaction:%s:%d", targetType, targetID)
}

func validateTarget(targetType model.TargetType) error {
	if !targetType.Valid() {
		return ErrInvalidTargetType
	}
	return nil
}

// Toggle adds, switches or removes userID's reaction on a target and
// returns the target's recomputed summary. The mutation and the recompute
// commit together or not at all.
func (s *ReactionService) Toggle(ctx context.Context, userID uint, targetType model.TargetType, targetID uint, emoji model.Emoji) (*ReactionResult, error) {
	if err := validateTarget(targetType); err != nil {
		return nil, err
	}
	if !emoji.Valid() {
		return nil, ErrInvalidEmoji
	}

	unlock, err := s.locker.Lock(ctx, targetLockKey(targetType, targetID))
	if err != nil {
		return nil, fmt.Errorf("lock reaction target: %w", err)
	}
	defer unlock()

	var (
		result ReactionResult
		owner  uint
	)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		target, err := reactableFor(tx, targetType)
		if err != nil {
			return err
		}
		owner, err = lockTargetOwner(ctx, target, targetType, targetID)
		if err != nil {
			return err
		}

		action, err := applyToggle(ctx, tx.Reactions, userID, targetType, targetID, emoji)
		if err != nil {
			return err
		}
		summary, err := recompute(ctx, tx, target, targetType, targetID)
		if err != nil {
			return err
		}
		result = ReactionResult{Summary: summary, Action: action}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("reaction toggled",
		zap.Uint("user_id", userID),
		zap.String("target_type", string(targetType)),
		zap.Uint("target_id", targetID),
		zap.String("emoji", string(emoji)),
		zap.String("action", string(result.Action)),
	)
	if owner != userID && result.Action != ActionRemoved {
		notify(s.notifier, owner, Event{
			Type: EventReaction,
			From: userID,
			Data: map[string]interface{}{
				"targetType": targetType,
				"targetId":   targetID,
				"emoji":      emoji,
				"reactions":  result.Summary,
			},
		})
	}
	return &result, nil
}

// RecomputeSummary rebuilds a target's summary from its reaction rows. Any
// code that writes reactions outside Toggle must call it afterwards.
func (s *ReactionService) RecomputeSummary(ctx context.Context, targetType model.TargetType, targetID uint) (model.ReactionSummary, error) {
	if err := validateTarget(targetType); err != nil {
		return model.ReactionSummary{}, err
	}

	unlock, err := s.locker.Lock(ctx, targetLockKey(targetType, targetID))
	if err != nil {
		return model.ReactionSummary{}, fmt.Errorf("lock reaction target: %w", err)
	}
	defer unlock()

	var summary model.ReactionSummary
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		target, err := reactableFor(tx, targetType)
		if err != nil {
			return err
		}
		if _, err := lockTargetOwner(ctx, target, targetType, targetID); err != nil {
			return err
		}
		summary, err = recompute(ctx, tx, target, targetType, targetID)
		return err
	})
	return summary, err
}

func reactableFor(tx *repository.Store, targetType model.TargetType) (repository.ReactableStore, error) {
	target, ok := tx.Reactable(targetType)
	if !ok {
		return nil, ErrInvalidTargetType
	}
	return target, nil
}

// lockTargetOwner row-locks the target for the rest of the transaction and
// returns its author.
func lockTargetOwner(ctx context.Context, target repository.ReactableStore, targetType model.TargetType, targetID uint) (uint, error) {
	owner, err := target.LockOwner(ctx, targetID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, TargetNotFound(string(targetType))
	}
	return owner, err
}

// applyToggle performs the create, update or delete chosen by decideToggle.
// Each write is conditional on what was read, so a concurrent writer makes
// us re-read rather than clobber its change.
func applyToggle(ctx context.Context, repo *repository.ReactionRepository, userID uint, targetType model.TargetType, targetID uint, emoji model.Emoji) (ReactionAction, error) {
	for attempt := 0; attempt < maxSwapAttempts; attempt++ {
		existing, err := repo.FindByTriple(ctx, userID, targetType, targetID)
		if errors.Is(err, repository.ErrNotFound) {
			existing = nil
		} else if err != nil {
			return "", err
		}

		action := decideToggle(existing, emoji)
		var done bool
		switch action {
		case ActionAdded:
			done, err = repo.CreateIfAbsent(ctx, &model.Reaction{
				UserID:     userID,
				TargetType: targetType,
				TargetID:   targetID,
				Emoji:      emoji,
			})
		case ActionUpdated:
			done, err = repo.UpdateEmoji(ctx, existing, emoji)
		case ActionRemoved:
			done, err = repo.Delete(ctx, existing)
		}
		if err != nil {
			return "", err
		}
		if done {
			return action, nil
		}
	}
	return "", ErrConcurrentUpdate
}

// recompute counts the live reactions on the target and stores the result
// on it. Emoji kinds without rows count as zero.
func recompute(ctx context.Context, tx *repository.Store, target repository.ReactableStore, targetType model.TargetType, targetID uint) (model.ReactionSummary, error) {
	counts, err := tx.Reactions.CountByEmoji(ctx, targetType, targetID)
	if err != nil {
		return model.ReactionSummary{}, fmt.Errorf("recompute reactions: %w", err)
	}
	summary := model.NewReactionSummary(counts)
	if err := target.SaveReactionSummary(ctx, targetID, summary); err != nil {
		return model.ReactionSummary{}, fmt.Errorf("recompute reactions: %w", err)
	}
	return summary, nil
}
