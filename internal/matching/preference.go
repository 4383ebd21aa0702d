package matching

import "fmt"

// Criteria is the closed set of things a profile owner can accept: either a
// stored Preference or Unrestricted. Unrestricted matches, and is matched by,
// everyone.
type Criteria interface {
	AcceptsGender(g Gender) bool
	AcceptsAge(age int) bool
	AcceptsDistance(km float64) bool
	// AgeRange reports the preferred age band; ok is false when there is none.
	AgeRange() (min, max int, ok bool)
	// DistanceLimit reports the hard distance cap; ok is false when there is none.
	DistanceLimit() (km float64, ok bool)

	criteria()
}

// Unrestricted is the criteria of a profile without a Preference.
type Unrestricted struct{}

func (Unrestricted) AcceptsGender(Gender) bool      { return true }
func (Unrestricted) AcceptsAge(int) bool            { return true }
func (Unrestricted) AcceptsDistance(float64) bool   { return true }
func (Unrestricted) AgeRange() (int, int, bool)     { return 0, 0, false }
func (Unrestricted) DistanceLimit() (float64, bool) { return 0, false }
func (Unrestricted) criteria()                      {}

func (p Preference) AcceptsGender(g Gender) bool {
	return p.Gender == GenderAny || Gender(p.Gender) == g
}

func (p Preference) AcceptsAge(age int) bool {
	if p.MinAge != nil && age < *p.MinAge {
		return false
	}
	return p.MaxAge == nil || age <= *p.MaxAge
}

// AcceptsDistance treats the cap as inclusive.
func (p Preference) AcceptsDistance(km float64) bool {
	return p.MaxDistanceKm == nil || km <= *p.MaxDistanceKm
}

// AgeRange fills an open side with the allowed bound. With neither side set
// there is no band.
func (p Preference) AgeRange() (int, int, bool) {
	if p.MinAge == nil && p.MaxAge == nil {
		return 0, 0, false
	}
	minAge, maxAge := MinAllowedAge, MaxAllowedAge
	if p.MinAge != nil {
		minAge = *p.MinAge
	}
	if p.MaxAge != nil {
		maxAge = *p.MaxAge
	}
	return minAge, maxAge, true
}

func (p Preference) DistanceLimit() (float64, bool) {
	if p.MaxDistanceKm == nil {
		return 0, false
	}
	return *p.MaxDistanceKm, true
}

// Validate catches what struct tags cannot: an inverted age band.
func (p Preference) Validate() error {
	if p.MinAge != nil && p.MaxAge != nil && *p.MinAge > *p.MaxAge {
		return fmt.Errorf("%w: min_age %d exceeds max_age %d", ErrInvertedBounds, *p.MinAge, *p.MaxAge)
	}
	return nil
}

func (Preference) criteria() {}

// GenderSatisfies reports whether a candidate of gender g passes c.
func GenderSatisfies(g Gender, c Criteria) bool {
	return c.AcceptsGender(g)
}

// AgeSatisfies reports whether a candidate of the given age passes c.
func AgeSatisfies(age int, c Criteria) bool {
	return c.AcceptsAge(age)
}

// Satisfies reports whether subject, at distanceKm from the owner of c, passes
// every filter in c.
func Satisfies(c Criteria, subject *UserProfile, distanceKm float64) bool {
	return GenderSatisfies(subject.Gender, c) &&
		AgeSatisfies(subject.Age, c) &&
		c.AcceptsDistance(distanceKm)
}

// MutuallyCompatible holds when the requester accepts the candidate and the
// candidate accepts the requester.
func MutuallyCompatible(requester, candidate *UserProfile, distanceKm float64) bool {
	return Satisfies(requester.Criteria(), candidate, distanceKm) &&
		Satisfies(candidate.Criteria(), requester, distanceKm)
}
