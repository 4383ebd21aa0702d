package matching

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logging"
)

type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // probes allowed while half-open
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // open -> half-open
	FailureThreshold uint32        // consecutive failures before opening
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// breakerRepository trips after repeated store faults and then fails fast
// with ErrDependencyUnavailable until the store recovers.
type breakerRepository struct {
	next Repository
	cb   *gobreaker.CircuitBreaker[interface{}]
}

func NewBreakerRepository(next Repository, cfg BreakerConfig) Repository {
	return &breakerRepository{next: next, cb: newCircuitBreaker(cfg)}
}

func newCircuitBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker[interface{}] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Lookups that miss and callers that hang up say nothing about store health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			circuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			log := logging.WithComponent("breaker")
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	circuitBreakerState.WithLabelValues(cfg.Name).Set(stateValue(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker[interface{}](settings)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func execute[T any](cb *gobreaker.CircuitBreaker[interface{}], op string, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, unavailable(op, err)
		}
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}

func (b *breakerRepository) FindByID(ctx context.Context, userID int64) (*UserProfile, error) {
	return execute(b.cb, "find profile", func() (*UserProfile, error) {
		return b.next.FindByID(ctx, userID)
	})
}

func (b *breakerRepository) FindAll(ctx context.Context, q PoolQuery) ([]*UserProfile, error) {
	return execute(b.cb, "list profiles", func() ([]*UserProfile, error) {
		return b.next.FindAll(ctx, q)
	})
}

func (b *breakerRepository) HasSwiped(ctx context.Context, actorID, targetID int64, includeRewound bool) (bool, error) {
	return execute(b.cb, "check swipe", func() (bool, error) {
		return b.next.HasSwiped(ctx, actorID, targetID, includeRewound)
	})
}

func (b *breakerRepository) SwipesByActor(ctx context.Context, actorID int64) ([]SwipeRecord, error) {
	return execute(b.cb, "list swipes", func() ([]SwipeRecord, error) {
		return b.next.SwipesByActor(ctx, actorID)
	})
}

func (b *breakerRepository) IsBlocked(ctx context.Context, userA, userB int64) (bool, error) {
	return execute(b.cb, "check block", func() (bool, error) {
		return b.next.IsBlocked(ctx, userA, userB)
	})
}

func (b *breakerRepository) BlocksInvolving(ctx context.Context, userID int64) ([]BlockRelation, error) {
	return execute(b.cb, "list blocks", func() ([]BlockRelation, error) {
		return b.next.BlocksInvolving(ctx, userID)
	})
}
