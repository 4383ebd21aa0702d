package matching

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDistanceScore(t *testing.T) {
	assert.Equal(t, 1.0, DistanceScore(0, 25))
	assert.Equal(t, 0.0, DistanceScore(25, 25))
	assert.InDelta(t, 0.5, DistanceScore(12.5, 25), 1e-12)
	assert.Equal(t, 0.0, DistanceScore(40, 25))
	assert.Equal(t, neutralScore, DistanceScore(10, 0))
}

func TestInterestOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"both empty", nil, nil, 0},
		{"one empty", []string{"music"}, nil, 0},
		{"identical", []string{"music", "art"}, []string{"art", "music"}, 1},
		{"half", []string{"music", "art"}, []string{"music", "hiking"}, 1.0 / 3},
		{"case and space", []string{" Music", "ART"}, []string{"music", "art "}, 1},
		{"duplicates", []string{"music", "music"}, []string{"music"}, 1},
		{"disjoint", []string{"chess"}, []string{"rugby"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, InterestOverlap(tt.a, tt.b), 1e-12)
			assert.InDelta(t, tt.want, InterestOverlap(tt.b, tt.a), 1e-12)
		})
	}
}

func TestAgeFitScore(t *testing.T) {
	p := *pref(GenderAny, 20, 40, 10)
	assert.Equal(t, 1.0, AgeFitScore(30, p))
	assert.InDelta(t, 0.5, AgeFitScore(25, p), 1e-12)
	assert.Equal(t, 0.0, AgeFitScore(20, p))
	assert.Equal(t, 0.0, AgeFitScore(40, p))
	assert.Equal(t, neutralScore, AgeFitScore(30, Unrestricted{}))

	point := *pref(GenderAny, 30, 30, 10)
	assert.Equal(t, 1.0, AgeFitScore(30, point))
}

func TestRecencyScore(t *testing.T) {
	half := 72 * time.Hour
	assert.Equal(t, 1.0, RecencyScore(testNow, testNow, half))
	assert.Equal(t, 1.0, RecencyScore(testNow.Add(time.Hour), testNow, half))
	assert.InDelta(t, 0.5, RecencyScore(testNow.Add(-half), testNow, half), 1e-12)
	assert.InDelta(t, 0.25, RecencyScore(testNow.Add(-2*half), testNow, half), 1e-12)
	assert.Equal(t, neutralScore, RecencyScore(time.Time{}, testNow, half))

	recent := RecencyScore(testNow.Add(-time.Hour), testNow, half)
	stale := RecencyScore(testNow.Add(-48*time.Hour), testNow, half)
	assert.Greater(t, recent, stale)
}

func TestScoreWeightedSum(t *testing.T) {
	cfg := DefaultConfig()
	s := NewScorer(cfg, fixedClock)

	requester := withPref(newProfile(1, 30, GenderMale, 0, 0), pref("female", 20, 40, 20))
	requester.Interests = []string{"music", "art"}
	candidate := newProfile(2, 30, GenderFemale, 0, 0)
	candidate.Interests = []string{"music", "hiking"}
	candidate.LastActive = testNow.Add(-cfg.RecencyHalfLife)

	score, f := s.Score(requester, candidate, 5)

	assert.InDelta(t, 0.75, f.Distance, 1e-12)
	assert.InDelta(t, 1.0/3, f.Interests, 1e-12)
	assert.Equal(t, 1.0, f.AgeFit)
	assert.InDelta(t, 0.5, f.Recency, 1e-12)

	w := cfg.Weights
	want := 0.75*w.Distance + (1.0/3)*w.Interests + 1.0*w.AgeFit + 0.5*w.Recency
	assert.InDelta(t, want, score, 1e-12)
}

func TestScoreUsesDefaultCeilingWithoutPreference(t *testing.T) {
	cfg := DefaultConfig()
	s := NewScorer(cfg, fixedClock)

	_, f := s.Score(newProfile(1, 30, GenderMale, 0, 0), newProfile(2, 30, GenderFemale, 0, 0), cfg.DefaultMaxDistanceKm/2)
	assert.InDelta(t, 0.5, f.Distance, 1e-12)
	assert.Equal(t, neutralScore, f.AgeFit)
}

func TestScoreGenderOnlyPreferenceIsNeutral(t *testing.T) {
	cfg := DefaultConfig()
	s := NewScorer(cfg, fixedClock)
	requester := withPref(newProfile(1, 30, GenderMale, 0, 0), &Preference{Gender: "female"})

	_, f := s.Score(requester, newProfile(2, 45, GenderFemale, 0, 0), 50)
	assert.InDelta(t, 1-50/cfg.DefaultMaxDistanceKm, f.Distance, 1e-12)
	assert.Equal(t, neutralScore, f.AgeFit)
}

func TestAgeFitScoreHalfOpenBand(t *testing.T) {
	minOnly := Preference{Gender: GenderAny, MinAge: intPtr(60)}
	assert.Equal(t, 1.0, AgeFitScore(80, minOnly))
	assert.Equal(t, 0.0, AgeFitScore(60, minOnly))
}

func TestScoreAlwaysInUnitRange(t *testing.T) {
	s := NewScorer(DefaultConfig(), fixedClock)
	requester := withPref(newProfile(1, 30, GenderMale, 0, 0), pref("any", 18, 100, 1000))

	for _, d := range []float64{0, 0.001, 10, 500, 1000, 5000, math.Inf(1)} {
		for _, age := range []int{18, 59, 100} {
			for _, active := range []time.Time{{}, testNow, testNow.Add(time.Hour), testNow.Add(-1000 * time.Hour)} {
				c := newProfile(2, age, GenderFemale, 0, 0)
				c.LastActive = active
				score, _ := s.Score(requester, c, d)
				assert.GreaterOrEqual(t, score, 0.0)
				assert.LessOrEqual(t, score, 1.0)
			}
		}
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(math.NaN()))
	assert.Equal(t, 0.0, clamp01(-0.1))
	assert.Equal(t, 1.0, clamp01(1.0000001))
	assert.Equal(t, 0.3, clamp01(0.3))
}
