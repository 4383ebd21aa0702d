// internal/matching/exclusion.go

package matching

import (
	"context"
	"fmt"
)

type ExclusionReason string

const (
	NotExcluded     ExclusionReason = ""
	ExcludedSelf    ExclusionReason = "self"
	ExcludedBlocked ExclusionReason = "blocked"
	ExcludedSwiped  ExclusionReason = "swiped"
)

// ExclusionResolver decides whether a candidate is removed before scoring.
// Checks run self, block, swipe, cheapest first.
type ExclusionResolver struct {
	swipes         SwipeStore
	blocks         BlockStore
	includeRewound bool
}

func NewExclusionResolver(swipes SwipeStore, blocks BlockStore, includeRewound bool) *ExclusionResolver {
	return &ExclusionResolver{
		swipes:         swipes,
		blocks:         blocks,
		includeRewound: includeRewound,
	}
}

// IsExcluded checks a single pair against the stores.
func (r *ExclusionResolver) IsExcluded(ctx context.Context, requesterID, candidateID int64) (ExclusionReason, error) {
	if requesterID == candidateID {
		return ExcludedSelf, nil
	}

	blocked, err := r.blocks.IsBlocked(ctx, requesterID, candidateID)
	if err != nil {
		return NotExcluded, fmt.Errorf("check block: %w", err)
	}
	if blocked {
		return ExcludedBlocked, nil
	}

	swiped, err := r.swipes.HasSwiped(ctx, requesterID, candidateID, r.includeRewound)
	if err != nil {
		return NotExcluded, fmt.Errorf("check swipe: %w", err)
	}
	if swiped {
		return ExcludedSwiped, nil
	}

	return NotExcluded, nil
}

// Snapshot bulk-loads the requester's blocks and swipes once so a whole pool
// can be checked without a lookup per candidate.
func (r *ExclusionResolver) Snapshot(ctx context.Context, requesterID int64) (*ExclusionSet, error) {
	set := &ExclusionSet{
		requesterID: requesterID,
		blocked:     make(map[int64]struct{}),
		swiped:      make(map[int64]struct{}),
	}

	relations, err := r.blocks.BlocksInvolving(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	for _, rel := range relations {
		set.blocked[rel.Other(requesterID)] = struct{}{}
	}

	records, err := r.swipes.SwipesByActor(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load swipes: %w", err)
	}
	for _, rec := range records {
		if rec.ActorID != requesterID {
			continue
		}
		if rec.Rewound && !r.includeRewound {
			continue
		}
		set.swiped[rec.TargetID] = struct{}{}
	}

	return set, nil
}

// ExclusionSet is a read-only view of one requester's exclusions. Safe for
// concurrent reads.
type ExclusionSet struct {
	requesterID int64
	blocked     map[int64]struct{}
	swiped      map[int64]struct{}
}

func (s *ExclusionSet) Check(candidateID int64) ExclusionReason {
	if candidateID == s.requesterID {
		return ExcludedSelf
	}
	if _, ok := s.blocked[candidateID]; ok {
		return ExcludedBlocked
	}
	if _, ok := s.swiped[candidateID]; ok {
		return ExcludedSwiped
	}
	return NotExcluded
}

func (s *ExclusionSet) BlockedCount() int { return len(s.blocked) }

func (s *ExclusionSet) SwipedCount() int { return len(s.swiped) }

// Excluded reports whether the reason removes the candidate.
func (r ExclusionReason) Excluded() bool { return r != NotExcluded }
