package matching

import (
	"fmt"
	"math"
	"time"
)

// Weights is the contribution of each sub-score. They must sum to 1.
type Weights struct {
	Distance  float64 `koanf:"distance" json:"distance"`
	Interests float64 `koanf:"interests" json:"interests"`
	AgeFit    float64 `koanf:"age_fit" json:"age_fit"`
	Recency   float64 `koanf:"recency" json:"recency"`
}

func (w Weights) Sum() float64 {
	return w.Distance + w.Interests + w.AgeFit + w.Recency
}

// Config tunes scoring and the engine. It is loaded at startup and validated
// once; nothing in it is compiled in except the defaults.
type Config struct {
	Weights Weights `koanf:"weights" json:"weights"`

	// DefaultMaxDistanceKm is the distance ceiling used for scoring when the
	// requester has no distance preference.
	DefaultMaxDistanceKm float64 `koanf:"default_max_distance_km" json:"default_max_distance_km"`

	// RecencyHalfLife is how long after last activity the recency sub-score halves.
	RecencyHalfLife time.Duration `koanf:"recency_half_life" json:"recency_half_life"`

	// RewoundSwipesExclude keeps rewound swipes in the exclusion set. When
	// false a rewound target can surface again.
	RewoundSwipesExclude bool `koanf:"rewound_swipes_exclude" json:"rewound_swipes_exclude"`

	Workers      int           `koanf:"workers" json:"workers"`
	MaxPageSize  int           `koanf:"max_page_size" json:"max_page_size"`
	PoolCacheTTL time.Duration `koanf:"pool_cache_ttl" json:"pool_cache_ttl"`
}

const weightTolerance = 1e-6

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Distance:  0.25,
			Interests: 0.35,
			AgeFit:    0.20,
			Recency:   0.20,
		},
		DefaultMaxDistanceKm: 100,
		RecencyHalfLife:      72 * time.Hour,
		RewoundSwipesExclude: false,
		Workers:              4,
		MaxPageSize:          100,
		PoolCacheTTL:         30 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	w := c.Weights
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"distance", w.Distance},
		{"interests", w.Interests},
		{"age_fit", w.AgeFit},
		{"recency", w.Recency},
	} {
		if f.value < 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("weights.%s must be a non-negative number, got %v", f.name, f.value)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %f", sum)
	}

	if c.DefaultMaxDistanceKm <= 0 || c.DefaultMaxDistanceKm > MaxRadiusKm {
		return fmt.Errorf("default_max_distance_km must be in (0, %.0f], got %f", MaxRadiusKm, c.DefaultMaxDistanceKm)
	}
	if c.RecencyHalfLife <= 0 {
		return fmt.Errorf("recency_half_life must be positive, got %v", c.RecencyHalfLife)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.MaxPageSize < 1 {
		return fmt.Errorf("max_page_size must be positive, got %d", c.MaxPageSize)
	}
	if c.PoolCacheTTL < 0 {
		return fmt.Errorf("pool_cache_ttl must be non-negative, got %v", c.PoolCacheTTL)
	}

	return nil
}
