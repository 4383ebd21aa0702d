// internal/matching/scorer.go

package matching

import (
	"math"
	"strings"
	"time"
)

// Neutral value a sub-score falls back to when its inputs are missing.
const neutralScore = 0.5

// Scorer combines the weighted sub-scores for a pair that already passed
// exclusion and preference checks. It never fails on missing optional data.
type Scorer struct {
	cfg Config
	now func() time.Time
}

func NewScorer(cfg Config, now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{cfg: cfg, now: now}
}

// Score returns the clamped weighted total and its breakdown.
func (s *Scorer) Score(requester, candidate *UserProfile, distanceKm float64) (float64, *CompatibilityFactors) {
	criteria := requester.Criteria()

	ceiling, ok := criteria.DistanceLimit()
	if !ok {
		ceiling = s.cfg.DefaultMaxDistanceKm
	}

	factors := &CompatibilityFactors{
		Distance:  DistanceScore(distanceKm, ceiling),
		Interests: InterestOverlap(requester.Interests, candidate.Interests),
		AgeFit:    AgeFitScore(candidate.Age, criteria),
		Recency:   RecencyScore(candidate.LastActive, s.now(), s.cfg.RecencyHalfLife),
	}

	w := s.cfg.Weights
	total := factors.Distance*w.Distance +
		factors.Interests*w.Interests +
		factors.AgeFit*w.AgeFit +
		factors.Recency*w.Recency

	return clamp01(total), factors
}

// DistanceScore is 1 at zero distance falling linearly to 0 at the ceiling.
func DistanceScore(distanceKm, ceilingKm float64) float64 {
	if ceilingKm <= 0 {
		return neutralScore
	}
	return clamp01(1 - distanceKm/ceilingKm)
}

// InterestOverlap is the Jaccard similarity of the two interest sets. Tags are
// compared case-insensitively; two empty sets score 0.
func InterestOverlap(a, b []string) float64 {
	setA := interestSet(a)
	setB := interestSet(b)

	union := len(setA)
	shared := 0
	for tag := range setB {
		if _, ok := setA[tag]; ok {
			shared++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

func interestSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		set[tag] = struct{}{}
	}
	return set
}

// AgeFitScore is 1 at the midpoint of the preferred band and falls linearly to
// 0 at its edges. Without a band it is neutral.
func AgeFitScore(age int, c Criteria) float64 {
	minAge, maxAge, ok := c.AgeRange()
	if !ok {
		return neutralScore
	}

	mid := float64(minAge+maxAge) / 2
	half := float64(maxAge-minAge) / 2
	if half == 0 {
		if float64(age) == mid {
			return 1
		}
		return 0
	}
	return clamp01(1 - math.Abs(float64(age)-mid)/half)
}

// RecencyScore halves every halfLife since lastActive. A zero timestamp is
// neutral and a timestamp in the future counts as just now.
func RecencyScore(lastActive, now time.Time, halfLife time.Duration) float64 {
	if lastActive.IsZero() || halfLife <= 0 {
		return neutralScore
	}
	elapsed := now.Sub(lastActive)
	if elapsed <= 0 {
		return 1
	}
	return clamp01(math.Pow(0.5, float64(elapsed)/float64(halfLife)))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
