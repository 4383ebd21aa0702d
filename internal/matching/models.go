// internal/matching/models.go

package matching

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// GenderFilter is the gender a preference accepts. GenderAny accepts everyone.
type GenderFilter string

const GenderAny GenderFilter = "any"

// Bounds shared by profiles, preferences and caller overrides.
const (
	MinAllowedAge = 18
	MaxAllowedAge = 100
	MaxRadiusKm   = 1000.0
)

// UserProfile holds the attributes matching cares about. Age is derived from
// the stored birth date when the row is loaded.
type UserProfile struct {
	UserID      int64       `json:"user_id" validate:"gt=0"`
	DisplayName string      `json:"display_name"`
	Age         int         `json:"age" validate:"gte=18,lte=100"`
	Gender      Gender      `json:"gender" validate:"oneof=male female other"`
	Latitude    float64     `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64     `json:"longitude" validate:"gte=-180,lte=180"`
	Interests   []string    `json:"interests"`
	LastActive  time.Time   `json:"last_active"`
	Preference  *Preference `json:"preference,omitempty" validate:"omitempty"`
}

// Criteria returns what the owner accepts in a candidate. A profile with no
// stored preference is Unrestricted.
func (p *UserProfile) Criteria() Criteria {
	if p.Preference == nil {
		return Unrestricted{}
	}
	return *p.Preference
}

// Preference is the owner's stated filter on candidates. A nil bound means
// the owner set no limit on that side.
type Preference struct {
	Gender        GenderFilter `json:"gender" validate:"oneof=male female other any"`
	MinAge        *int         `json:"min_age,omitempty" validate:"omitempty,gte=18,lte=100"`
	MaxAge        *int         `json:"max_age,omitempty" validate:"omitempty,gte=18,lte=100"`
	MaxDistanceKm *float64     `json:"max_distance_km,omitempty" validate:"omitempty,gt=0,lte=1000"`
}

type SwipeOutcome string

const (
	SwipeLike      SwipeOutcome = "like"
	SwipeDislike   SwipeOutcome = "dislike"
	SwipeSuperLike SwipeOutcome = "super_like"
	SwipePass      SwipeOutcome = "pass"
)

// SwipeRecord is an append-only fact. A pair may have several records over
// time; Rewound marks one the actor took back.
type SwipeRecord struct {
	ActorID  int64        `json:"actor_id" db:"actor_id"`
	TargetID int64        `json:"target_id" db:"target_id"`
	Outcome  SwipeOutcome `json:"outcome" db:"outcome"`
	Rewound  bool         `json:"rewound" db:"is_rewound"`
	SwipedAt time.Time    `json:"swiped_at" db:"created_at"`
}

// BlockRelation is directional as stored but excludes both parties.
type BlockRelation struct {
	BlockerID int64     `json:"blocker_id" db:"blocker_id"`
	BlockedID int64     `json:"blocked_id" db:"blocked_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Other returns the party on the other side of the relation from userID.
func (b BlockRelation) Other(userID int64) int64 {
	if b.BlockerID == userID {
		return b.BlockedID
	}
	return b.BlockerID
}

type CompatibilityFactors struct {
	Distance  float64 `json:"distance"`
	Interests float64 `json:"interests"`
	AgeFit    float64 `json:"age_fit"`
	Recency   float64 `json:"recency"`
}

// RankedCandidate is computed per request and never persisted.
type RankedCandidate struct {
	Profile            *UserProfile          `json:"profile"`
	CompatibilityScore float64               `json:"compatibility_score"`
	DistanceKm         float64               `json:"distance_km"`
	Factors            *CompatibilityFactors `json:"factors,omitempty"`
}
