package repository

import (
	"context"
	"time"

	"social-blog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendshipFilter selects one of the per-user friendship lists.
type FriendshipFilter int

const (
	// FilterFriends is accepted records in either direction.
	FilterFriends FriendshipFilter = iota
	// FilterOutgoing is pending requests the user sent.
	FilterOutgoing
	// FilterIncoming is pending requests the user received.
	FilterIncoming
)

type FriendshipRepository struct {
	orm *gorm.DB
}

func NewFriendshipRepository(orm *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{orm: orm}
}

// FindByPair returns the record for the unordered pair {a, b}.
func (r *FriendshipRepository) FindByPair(ctx context.Context, a, b uint) (*model.Friendship, error) {
	low, high := model.PairKey(a, b)
	var f model.Friendship
	err := r.orm.WithContext(ctx).
		Where("user_low = ? AND user_high = ?", low, high).
		Take(&f).Error
	if err != nil {
		return nil, translate("find friendship", err)
	}
	return &f, nil
}

// CreateIfAbsent inserts f unless the pair already has a record. It
// reports whether the insert happened.
func (r *FriendshipRepository) CreateIfAbsent(ctx context.Context, f *model.Friendship) (bool, error) {
	res := r.orm.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_low"}, {Name: "user_high"}},
			DoNothing: true,
		}).
		Create(f)
	if res.Error != nil {
		return false, translate("create friendship", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// CompareAndSwap moves the record from prev to next only if nobody changed
// its status or direction since prev was read. It reports whether the row
// was updated; on success prev is updated in place.
func (r *FriendshipRepository) CompareAndSwap(ctx context.Context, prev *model.Friendship, next model.Friendship) (bool, error) {
	now := time.Now()
	res := r.orm.WithContext(ctx).
		Model(&model.Friendship{}).
		Where("id = ? AND status = ? AND from_id = ? AND to_id = ?", prev.ID, prev.Status, prev.FromID, prev.ToID).
		Updates(map[string]interface{}{
			"from_id":    next.FromID,
			"to_id":      next.ToID,
			"status":     next.Status,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, translate("update friendship", res.Error)
	}
	if res.RowsAffected != 1 {
		return false, nil
	}
	prev.FromID = next.FromID
	prev.ToID = next.ToID
	prev.Status = next.Status
	prev.UpdatedAt = now
	return true, nil
}

func (r *FriendshipRepository) filtered(ctx context.Context, userID uint, filter FriendshipFilter) *gorm.DB {
	q := r.orm.WithContext(ctx).Model(&model.Friendship{})
	switch filter {
	case FilterOutgoing:
		q = q.Where("from_id = ? AND status = ?", userID, model.FriendshipRequesting)
	case FilterIncoming:
		q = q.Where("to_id = ? AND status = ?", userID, model.FriendshipRequesting)
	default:
		q = q.Where("(from_id = ? OR to_id = ?) AND status = ?", userID, userID, model.FriendshipAccepted)
	}
	return q.Session(&gorm.Session{})
}

// List pages through one of userID's friendship lists, most recently
// changed first.
func (r *FriendshipRepository) List(ctx context.Context, userID uint, filter FriendshipFilter, page Page) ([]model.Friendship, int64, error) {
	q := r.filtered(ctx, userID, filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count friendships", err)
	}

	var list []model.Friendship
	if err := q.Scopes(page.scope).Order("updated_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, 0, translate("list friendships", err)
	}
	return list, total, nil
}

// CountFriends returns how many accepted friendships userID has.
func (r *FriendshipRepository) CountFriends(ctx context.Context, userID uint) (int64, error) {
	var total int64
	if err := r.filtered(ctx, userID, FilterFriends).Count(&total).Error; err != nil {
		return 0, translate("count friends", err)
	}
	return total, nil
}

// FindForUser returns the records between viewerID and each of otherIDs,
// keyed by the other user's id. Pairs without a record are absent.
func (r *FriendshipRepository) FindForUser(ctx context.Context, viewerID uint, otherIDs []uint) (map[uint]model.Friendship, error) {
	result := make(map[uint]model.Friendship, len(otherIDs))
	if len(otherIDs) == 0 {
		return result, nil
	}

	var list []model.Friendship
	err := r.orm.WithContext(ctx).
		Where("(user_low = ? AND user_high IN ?) OR (user_high = ? AND user_low IN ?)", viewerID, otherIDs, viewerID, otherIDs).
		Find(&list).Error
	if err != nil {
		return nil, translate("find friendships", err)
	}
	for _, f := range list {
		result[f.Other(viewerID)] = f
	}
	return result, nil
}
