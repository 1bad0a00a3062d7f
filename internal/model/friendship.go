package model

import "time"

// FriendshipStatus is the state of the relationship between two users.
type FriendshipStatus string

const (
	FriendshipRequesting FriendshipStatus = "requesting"
	FriendshipAccepted   FriendshipStatus = "accepted"
	FriendshipDeclined   FriendshipStatus = "decline"
	FriendshipCancelled  FriendshipStatus = "cancel"
	FriendshipRemoved    FriendshipStatus = "removed"
)

// Reopenable reports whether a new request may overwrite a record in this
// status.
func (s FriendshipStatus) Reopenable() bool {
	switch s {
	case FriendshipDeclined, FriendshipCancelled, FriendshipRemoved:
		return true
	}
	return false
}

// Friendship is the single record kept for an unordered pair of users.
// UserLow/UserHigh hold the pair key and carry the unique index; FromID/ToID
// record direction, which only matters while the status is requesting.
type Friendship struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	FromID    uint             `gorm:"not null;index" json:"from"`
	ToID      uint             `gorm:"not null;index" json:"to"`
	UserLow   uint             `gorm:"not null;uniqueIndex:uk_friendship_pair,priority:1" json:"-"`
	UserHigh  uint             `gorm:"not null;uniqueIndex:uk_friendship_pair,priority:2" json:"-"`
	Status    FriendshipStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func (Friendship) TableName() string { return "friendship" }

// PairKey orders two user ids so (a,b) and (b,a) map to the same key.
func PairKey(a, b uint) (low, high uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// NewFriendRequest builds a requesting record from one user to another.
func NewFriendRequest(fromID, toID uint) *Friendship {
	low, high := PairKey(fromID, toID)
	return &Friendship{
		FromID:   fromID,
		ToID:     toID,
		UserLow:  low,
		UserHigh: high,
		Status:   FriendshipRequesting,
	}
}

// Other returns the member of the pair that is not userID.
func (f *Friendship) Other(userID uint) uint {
	if f.FromID == userID {
		return f.ToID
	}
	return f.FromID
}

// Involves reports whether userID is one side of the pair.
func (f *Friendship) Involves(userID uint) bool {
	return f.FromID == userID || f.ToID == userID
}
