package matching

import (
	"context"
	"sort"
	"sync"
	"time"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// kmNorth moves a latitude north by km along a meridian.
func kmNorth(lat, km float64) float64 {
	return lat + toDegrees(km/EarthRadiusKm)
}

func newProfile(id int64, age int, gender Gender, lat, lng float64) *UserProfile {
	return &UserProfile{
		UserID:     id,
		Age:        age,
		Gender:     gender,
		Latitude:   lat,
		Longitude:  lng,
		LastActive: testNow.Add(-time.Hour),
	}
}

func withPref(p *UserProfile, pref *Preference) *UserProfile {
	p.Preference = pref
	return p
}

func pref(g GenderFilter, minAge, maxAge int, maxKm float64) *Preference {
	return &Preference{Gender: g, MinAge: &minAge, MaxAge: &maxAge, MaxDistanceKm: &maxKm}
}

// fakeStore is an in-memory Repository. It honours PoolQuery so tests also
// prove the pre-filter never drops an eligible candidate.
type fakeStore struct {
	mu       sync.Mutex
	profiles map[int64]*UserProfile
	swipes   []SwipeRecord
	blocks   []BlockRelation

	// leakRequester makes FindAll ignore ExcludeUserID.
	leakRequester bool

	err      error
	errOn    map[string]error
	calls    map[string]int
	lastPool PoolQuery
}

func newFakeStore(profiles ...*UserProfile) *fakeStore {
	s := &fakeStore{
		profiles: make(map[int64]*UserProfile),
		errOn:    make(map[string]error),
		calls:    make(map[string]int),
	}
	for _, p := range profiles {
		s.profiles[p.UserID] = p
	}
	return s
}

func (s *fakeStore) swipe(actor, target int64, rewound bool) *fakeStore {
	s.swipes = append(s.swipes, SwipeRecord{
		ActorID:  actor,
		TargetID: target,
		Outcome:  SwipeDislike,
		Rewound:  rewound,
		SwipedAt: testNow.Add(-time.Minute),
	})
	return s
}

func (s *fakeStore) block(blocker, blocked int64) *fakeStore {
	s.blocks = append(s.blocks, BlockRelation{BlockerID: blocker, BlockedID: blocked, CreatedAt: testNow})
	return s
}

func (s *fakeStore) enter(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	if err, ok := s.errOn[op]; ok {
		return err
	}
	return s.err
}

func (s *fakeStore) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *fakeStore) FindByID(ctx context.Context, userID int64) (*UserProfile, error) {
	if err := s.enter("FindByID"); err != nil {
		return nil, err
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return p, nil
}

func (s *fakeStore) FindAll(ctx context.Context, q PoolQuery) ([]*UserProfile, error) {
	if err := s.enter("FindAll"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.lastPool = q
	s.mu.Unlock()

	out := make([]*UserProfile, 0, len(s.profiles))
	for id, p := range s.profiles {
		if id == q.ExcludeUserID && !s.leakRequester {
			continue
		}
		if q.Box != nil && !q.Box.Contains(p.Latitude, p.Longitude) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *fakeStore) HasSwiped(ctx context.Context, actorID, targetID int64, includeRewound bool) (bool, error) {
	if err := s.enter("HasSwiped"); err != nil {
		return false, err
	}
	for _, rec := range s.swipes {
		if rec.ActorID == actorID && rec.TargetID == targetID && (includeRewound || !rec.Rewound) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) SwipesByActor(ctx context.Context, actorID int64) ([]SwipeRecord, error) {
	if err := s.enter("SwipesByActor"); err != nil {
		return nil, err
	}
	var out []SwipeRecord
	for _, rec := range s.swipes {
		if rec.ActorID == actorID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fakeStore) IsBlocked(ctx context.Context, userA, userB int64) (bool, error) {
	if err := s.enter("IsBlocked"); err != nil {
		return false, err
	}
	for _, b := range s.blocks {
		if (b.BlockerID == userA && b.BlockedID == userB) || (b.BlockerID == userB && b.BlockedID == userA) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) BlocksInvolving(ctx context.Context, userID int64) ([]BlockRelation, error) {
	if err := s.enter("BlocksInvolving"); err != nil {
		return nil, err
	}
	var out []BlockRelation
	for _, b := range s.blocks {
		if b.BlockerID == userID || b.BlockedID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

// memoryPoolCache is a PoolCache backed by a map.
type memoryPoolCache struct {
	mu      sync.Mutex
	pools   map[string][]*UserProfile
	getErr  error
	setErr  error
	gets    int
	sets    int
	lastTTL time.Duration
}

func newMemoryPoolCache() *memoryPoolCache {
	return &memoryPoolCache{pools: make(map[string][]*UserProfile)}
}

func (c *memoryPoolCache) GetPool(ctx context.Context, key string) ([]*UserProfile, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	pool, ok := c.pools[key]
	return pool, ok, nil
}

func (c *memoryPoolCache) SetPool(ctx context.Context, key string, pool []*UserProfile, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.lastTTL = ttl
	if c.setErr != nil {
		return c.setErr
	}
	c.pools[key] = pool
	return nil
}
