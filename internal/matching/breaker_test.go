package matching

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logging"
)

func testBreakerConfig(name string) BreakerConfig {
	cfg := DefaultBreakerConfig(name)
	cfg.FailureThreshold = 3
	cfg.Timeout = time.Hour
	return cfg
}

func TestBreakerRepositoryTrips(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	logging.SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { logging.SetLogger(prev) })

	store := newFakeStore(newProfile(1, 30, GenderMale, 6.5, 3.4))
	store.errOn["BlocksInvolving"] = errors.New("connection refused")
	repo := NewBreakerRepository(store, testBreakerConfig("trips"))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.BlocksInvolving(ctx, 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDependencyUnavailable)
	}
	assert.Equal(t, 3, store.count("BlocksInvolving"))
	assert.Equal(t, 2.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("trips")))
	assert.Contains(t, buf.String(), `"component":"breaker"`)
	assert.Contains(t, buf.String(), `"to":"open"`)

	// Open: every operation fails fast without reaching the store.
	_, err := repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, ErrDependencyUnavailable)
	_, err = repo.HasSwiped(ctx, 1, 2, false)
	assert.ErrorIs(t, err, ErrDependencyUnavailable)
	assert.Zero(t, store.count("FindByID"))
	assert.Zero(t, store.count("HasSwiped"))
}

func TestBreakerRepositoryIgnoresNotFound(t *testing.T) {
	store := newFakeStore()
	repo := NewBreakerRepository(store, testBreakerConfig("not-found"))

	for i := 0; i < 10; i++ {
		_, err := repo.FindByID(context.Background(), 42)
		assert.ErrorIs(t, err, ErrUserNotFound)
	}
	assert.Equal(t, 10, store.count("FindByID"))
	assert.Equal(t, 0.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("not-found")))
}

func TestBreakerRepositoryPassesResults(t *testing.T) {
	store := newFakeStore(newProfile(1, 30, GenderMale, 6.5, 3.4), newProfile(2, 30, GenderFemale, 6.5, 3.4)).
		swipe(1, 2, false).
		block(2, 1)
	repo := NewBreakerRepository(store, testBreakerConfig("passthrough"))
	ctx := context.Background()

	p, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.UserID)

	pool, err := repo.FindAll(ctx, PoolQuery{ExcludeUserID: 1})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, profileIDs(pool))

	swiped, err := repo.HasSwiped(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.True(t, swiped)

	records, err := repo.SwipesByActor(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	blocked, err := repo.IsBlocked(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, blocked)

	relations, err := repo.BlocksInvolving(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, relations, 1)
}

func TestEngineOverOpenBreaker(t *testing.T) {
	store := newFakeStore(newProfile(1, 30, GenderMale, 6.5, 3.4))
	store.err = errors.New("connection refused")
	repo := NewBreakerRepository(store, testBreakerConfig("engine"))

	engine, err := NewMatchingEngine(repo, repo, repo, DefaultConfig(), WithClock(fixedClock))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = engine.FindCandidates(context.Background(), 1, Filters{}, 10)
		require.Error(t, err)
	}
	_, err = engine.FindCandidates(context.Background(), 1, Filters{}, 10)
	assert.ErrorIs(t, err, ErrDependencyUnavailable)
}

func TestStateValue(t *testing.T) {
	cb := newCircuitBreaker(testBreakerConfig("state"))
	assert.Equal(t, 0.0, stateValue(cb.State()))
}
