// internal/config/scoring.go
// Matching engine tuning, layered: defaults -> YAML file -> MATCHING_* env

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/imadgeboyega/kiekky-matching/internal/matching"
)

// scoringEnv maps env names onto koanf paths
var scoringEnv = map[string]string{
	"matching_weight_distance":         "weights.distance",
	"matching_weight_interests":        "weights.interests",
	"matching_weight_age_fit":          "weights.age_fit",
	"matching_weight_recency":          "weights.recency",
	"matching_default_max_distance_km": "default_max_distance_km",
	"matching_recency_half_life":       "recency_half_life",
	"matching_rewound_swipes_exclude":  "rewound_swipes_exclude",
	"matching_workers":                 "workers",
	"matching_max_page_size":           "max_page_size",
	"matching_pool_cache_ttl":          "pool_cache_ttl",
}

// LoadScoring builds the matching config. path may be empty; a named file
// that does not exist is an error. The result is validated.
func LoadScoring(path string) (matching.Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(matching.DefaultConfig(), "koanf"), nil); err != nil {
		return matching.Config{}, fmt.Errorf("failed to load matching defaults: %w", err)
	}

	// Layer 2: config file
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return matching.Config{}, fmt.Errorf("matching config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return matching.Config{}, fmt.Errorf("failed to load matching config %s: %w", path, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider("MATCHING_", ".", scoringEnvKey), nil); err != nil {
		return matching.Config{}, fmt.Errorf("failed to load matching env: %w", err)
	}

	var cfg matching.Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return matching.Config{}, fmt.Errorf("failed to unmarshal matching config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return matching.Config{}, fmt.Errorf("matching config validation failed: %w", err)
	}
	return cfg, nil
}

// scoringEnvKey returns "" for unknown variables so koanf skips them
func scoringEnvKey(key string) string {
	return scoringEnv[strings.ToLower(key)]
}
