package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logging"
	"github.com/imadgeboyega/kiekky-matching/internal/common/utils"
)

type MatchingEngine interface {
	// FindCandidates returns one page of eligible candidates for the
	// requester, best match first.
	FindCandidates(ctx context.Context, requesterID int64, filters Filters, pageSize int) ([]*RankedCandidate, error)
	// CalculateCompatibility scores a single pair regardless of preferences.
	// Blocked pairs report ErrCandidateNotFound.
	CalculateCompatibility(ctx context.Context, requesterID, candidateID int64) (*RankedCandidate, error)
}

type matchingEngine struct {
	profiles  ProfileStore
	exclusion *ExclusionResolver
	scorer    *Scorer
	cfg       Config
}

type Option func(*engineOptions)

type engineOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now for recency scoring.
func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) {
		o.now = now
	}
}

func NewMatchingEngine(profiles ProfileStore, swipes SwipeStore, blocks BlockStore, cfg Config, opts ...Option) (MatchingEngine, error) {
	if profiles == nil || swipes == nil || blocks == nil {
		return nil, errors.New("matching engine requires profile, swipe and block stores")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching config: %w", err)
	}

	o := engineOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &matchingEngine{
		profiles:  profiles,
		exclusion: NewExclusionResolver(swipes, blocks, cfg.RewoundSwipesExclude),
		scorer:    NewScorer(cfg, o.now),
		cfg:       cfg,
	}, nil
}

func (m *matchingEngine) FindCandidates(ctx context.Context, requesterID int64, filters Filters, pageSize int) (page []*RankedCandidate, err error) {
	start := time.Now()
	mode := filters.Mode()
	defer func() {
		recordFind(mode, err, time.Since(start))
	}()

	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}
	if pageSize > m.cfg.MaxPageSize {
		return nil, invalidArgument("page size %d exceeds maximum of %d", pageSize, m.cfg.MaxPageSize)
	}
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	requester, err := m.loadRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	exclusions, err := m.exclusion.Snapshot(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	pool, err := m.profiles.FindAll(ctx, m.poolQuery(requester, filters))
	if err != nil {
		return nil, fmt.Errorf("load candidate pool: %w", err)
	}

	ranked, err := m.rank(ctx, requester, pool, exclusions, filters)
	if err != nil {
		return nil, err
	}

	page = paginate(ranked, filters.Offset, pageSize)

	logging.Ctx(ctx).Debug().
		Str("mode", mode).
		Int("pool", len(pool)).
		Int("blocked", exclusions.BlockedCount()).
		Int("swiped", exclusions.SwipedCount()).
		Int("eligible", len(ranked)).
		Int("returned", len(page)).
		Int("offset", filters.Offset).
		Dur("elapsed", time.Since(start)).
		Msg("Ranked candidates")

	return page, nil
}

func (m *matchingEngine) CalculateCompatibility(ctx context.Context, requesterID, candidateID int64) (*RankedCandidate, error) {
	if requesterID == candidateID {
		return nil, ErrSelfCompatibility
	}

	requester, err := m.loadRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	reason, err := m.exclusion.IsExcluded(ctx, requesterID, candidateID)
	if err != nil {
		return nil, err
	}
	if reason == ExcludedBlocked {
		return nil, ErrCandidateNotFound
	}

	candidate, err := m.profiles.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrCandidateNotFound, candidateID)
		}
		return nil, fmt.Errorf("load candidate %d: %w", candidateID, err)
	}
	if err := validateProfile(candidate); err != nil {
		return nil, invalidArgument("candidate profile %d: %v", candidateID, err)
	}

	distance := DistanceBetween(requester, candidate)
	score, factors := m.scorer.Score(requester, candidate, distance)
	RecordCompatibilityScore(score)

	return &RankedCandidate{
		Profile:            candidate,
		CompatibilityScore: score,
		DistanceKm:         distance,
		Factors:            factors,
	}, nil
}

func (m *matchingEngine) loadRequester(ctx context.Context, requesterID int64) (*UserProfile, error) {
	requester, err := m.profiles.FindByID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load requester %d: %w", requesterID, err)
	}
	if err := validateProfile(requester); err != nil {
		return nil, invalidArgument("requester profile %d: %v", requesterID, err)
	}
	return requester, nil
}

func validateProfile(p *UserProfile) error {
	if err := utils.ValidateStruct(p); err != nil {
		return err
	}
	if p.Preference != nil {
		return p.Preference.Validate()
	}
	return nil
}

// poolQuery bounds the scan by the tightest radius known up front.
func (m *matchingEngine) poolQuery(requester *UserProfile, filters Filters) PoolQuery {
	q := PoolQuery{ExcludeUserID: requester.UserID}

	radius, bounded := requester.Criteria().DistanceLimit()
	if filters.RadiusKm != nil && (!bounded || *filters.RadiusKm < radius) {
		radius, bounded = *filters.RadiusKm, true
	}
	if !bounded {
		return q
	}

	if box, ok := BoundingBoxAround(requester.Latitude, requester.Longitude, radius); ok {
		q.Box = &box
	}
	return q
}

// rank evaluates the pool in parallel chunks and returns every survivor in
// final order. Each worker owns a disjoint index range of the result slices.
func (m *matchingEngine) rank(ctx context.Context, requester *UserProfile, pool []*UserProfile, exclusions *ExclusionSet, filters Filters) ([]*RankedCandidate, error) {
	results := make([]*RankedCandidate, len(pool))
	rejections := make([]string, len(pool))

	if len(pool) > 0 {
		workers := min(m.cfg.Workers, len(pool))
		chunk := (len(pool) + workers - 1) / workers

		g, gctx := errgroup.WithContext(ctx)
		for lo := 0; lo < len(pool); lo += chunk {
			lo, hi := lo, min(lo+chunk, len(pool))
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					results[i], rejections[i] = m.evaluate(ctx, requester, pool[i], exclusions, filters)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	ranked := make([]*RankedCandidate, 0, len(pool))
	rejected := make(map[string]int)
	seen := make(map[int64]struct{}, len(pool))
	for i, rc := range results {
		if rc == nil {
			rejected[rejections[i]]++
			continue
		}
		if _, dup := seen[rc.Profile.UserID]; dup {
			continue
		}
		seen[rc.Profile.UserID] = struct{}{}
		ranked = append(ranked, rc)
		RecordCompatibilityScore(rc.CompatibilityScore)
	}
	recordRejections(len(pool), rejected)

	SortRanked(ranked)
	return ranked, nil
}

// evaluate runs one candidate through exclusion, validity, mutual preference
// and override checks, then scores it. A nil result carries the reason.
func (m *matchingEngine) evaluate(ctx context.Context, requester, candidate *UserProfile, exclusions *ExclusionSet, filters Filters) (*RankedCandidate, string) {
	if candidate == nil {
		return nil, rejectedInvalidProfile
	}
	if reason := exclusions.Check(candidate.UserID); reason.Excluded() {
		return nil, string(reason)
	}
	if err := validateProfile(candidate); err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Int64("candidate_id", candidate.UserID).
			Msg("Skipping candidate with invalid profile")
		return nil, rejectedInvalidProfile
	}

	distance := DistanceBetween(requester, candidate)
	if !MutuallyCompatible(requester, candidate, distance) {
		return nil, rejectedPreference
	}
	if !filters.admits(candidate, distance) {
		return nil, rejectedOverride
	}

	score, factors := m.scorer.Score(requester, candidate, distance)
	return &RankedCandidate{
		Profile:            candidate,
		CompatibilityScore: score,
		DistanceKm:         distance,
		Factors:            factors,
	}, ""
}

// SortRanked orders by score desc, distance asc, most recently active, then
// user ID asc. The order is total so repeated calls page identically.
func SortRanked(candidates []*RankedCandidate) {
	sort.Slice(candidates, func(i, j int) bool {
		return rankedBefore(candidates[i], candidates[j])
	})
}

func rankedBefore(a, b *RankedCandidate) bool {
	if a.CompatibilityScore != b.CompatibilityScore {
		return a.CompatibilityScore > b.CompatibilityScore
	}
	if a.DistanceKm != b.DistanceKm {
		return a.DistanceKm < b.DistanceKm
	}
	if !a.Profile.LastActive.Equal(b.Profile.LastActive) {
		return a.Profile.LastActive.After(b.Profile.LastActive)
	}
	return a.Profile.UserID < b.Profile.UserID
}

func paginate(ranked []*RankedCandidate, offset, pageSize int) []*RankedCandidate {
	if offset >= len(ranked) {
		return []*RankedCandidate{}
	}
	end := min(offset+pageSize, len(ranked))
	return ranked[offset:end]
}
