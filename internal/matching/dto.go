// internal/matching/dto.go
package matching

import "math"

// DTOs for API requests/responses

// DiscoverParams is the query of GET /discover after parsing.
type DiscoverParams struct {
	PageSize int      `json:"page_size" validate:"gt=0"`
	Offset   int      `json:"offset" validate:"gte=0"`
	RadiusKm *float64 `json:"radius_km,omitempty" validate:"omitempty,gt=0,lte=1000"`
	MinAge   *int     `json:"min_age,omitempty" validate:"omitempty,gte=18,lte=100"`
	MaxAge   *int     `json:"max_age,omitempty" validate:"omitempty,gte=18,lte=100"`
}

// Filters converts the params into engine overrides. An age band needs both
// ends; a lone bound is widened to the allowed range on the other side.
func (p *DiscoverParams) Filters() Filters {
	f := Filters{
		RadiusKm: p.RadiusKm,
		Offset:   p.Offset,
	}
	if p.MinAge != nil || p.MaxAge != nil {
		band := &AgeBand{Min: MinAllowedAge, Max: MaxAllowedAge}
		if p.MinAge != nil {
			band.Min = *p.MinAge
		}
		if p.MaxAge != nil {
			band.Max = *p.MaxAge
		}
		f.AgeBand = band
	}
	return f
}

type DiscoverResponse struct {
	Candidates []*RankedCandidate `json:"candidates"`
	Count      int                `json:"count"`
	PageSize   int                `json:"page_size"`
	Offset     int                `json:"offset"`
}

// Supporting types

type AgeBand struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Filters are caller overrides layered on top of preferences. They only ever
// narrow the preference-derived set.
type Filters struct {
	RadiusKm *float64 `json:"radius_km,omitempty"`
	AgeBand  *AgeBand `json:"age_band,omitempty"`
	Offset   int      `json:"offset"`
}

// Query modes, used as a metrics label.
const (
	ModeUnrestricted = "unrestricted"
	ModeRadius       = "radius"
	ModeAgeBand      = "age_band"
	ModeRadiusAge    = "radius_age_band"
)

func (f Filters) Mode() string {
	switch {
	case f.RadiusKm != nil && f.AgeBand != nil:
		return ModeRadiusAge
	case f.RadiusKm != nil:
		return ModeRadius
	case f.AgeBand != nil:
		return ModeAgeBand
	default:
		return ModeUnrestricted
	}
}

// Validate rejects malformed overrides before any candidate is looked at.
func (f Filters) Validate() error {
	if f.Offset < 0 {
		return invalidArgument("offset must be non-negative, got %d", f.Offset)
	}
	if f.RadiusKm != nil {
		r := *f.RadiusKm
		if math.IsNaN(r) || r <= 0 || r > MaxRadiusKm {
			return invalidArgument("radius must be in (0, %.0f] km, got %v", MaxRadiusKm, r)
		}
	}
	if f.AgeBand != nil {
		if f.AgeBand.Min > f.AgeBand.Max {
			return ErrInvertedBounds
		}
		if f.AgeBand.Min < MinAllowedAge || f.AgeBand.Max > MaxAllowedAge {
			return invalidArgument("age band must lie within [%d, %d]", MinAllowedAge, MaxAllowedAge)
		}
	}
	return nil
}

// admits applies the overrides to one candidate.
func (f Filters) admits(candidate *UserProfile, distanceKm float64) bool {
	if f.RadiusKm != nil && distanceKm > *f.RadiusKm {
		return false
	}
	if f.AgeBand != nil && (candidate.Age < f.AgeBand.Min || candidate.Age > f.AgeBand.Max) {
		return false
	}
	return true
}
