package matching

import (
	"context"
	"fmt"
)

// ProfileStore loads profiles. FindByID returns ErrUserNotFound for an unknown
// identity and ErrProfileNotFound for a user without a profile.
type ProfileStore interface {
	FindByID(ctx context.Context, userID int64) (*UserProfile, error)
	FindAll(ctx context.Context, query PoolQuery) ([]*UserProfile, error)
}

// SwipeStore answers swipe-history questions. includeRewound decides whether
// records marked as rewound count.
type SwipeStore interface {
	HasSwiped(ctx context.Context, actorID, targetID int64, includeRewound bool) (bool, error)
	SwipesByActor(ctx context.Context, actorID int64) ([]SwipeRecord, error)
}

// BlockStore answers block questions in both directions.
type BlockStore interface {
	IsBlocked(ctx context.Context, userA, userB int64) (bool, error)
	BlocksInvolving(ctx context.Context, userID int64) ([]BlockRelation, error)
}

// Repository is a single backend serving all three collaborators.
type Repository interface {
	ProfileStore
	SwipeStore
	BlockStore
}

// PoolQuery narrows the active-profile scan. Every field is an optimisation
// hint: the engine re-checks each candidate exactly, so a store may ignore it.
type PoolQuery struct {
	ExcludeUserID int64
	Box           *BoundingBox
}

// cacheKey prints the box edges at full precision so two queries share an
// entry only when their boxes are identical.
func (q PoolQuery) cacheKey() string {
	if q.Box == nil {
		return "all"
	}
	return fmt.Sprintf("box:%v:%v:%v:%v", q.Box.MinLat, q.Box.MaxLat, q.Box.MinLng, q.Box.MaxLng)
}
