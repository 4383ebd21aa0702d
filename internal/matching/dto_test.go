package matching

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestDiscoverParamsFilters(t *testing.T) {
	tests := []struct {
		name   string
		params DiscoverParams
		want   Filters
	}{
		{
			name:   "no overrides",
			params: DiscoverParams{PageSize: 20, Offset: 40},
			want:   Filters{Offset: 40},
		},
		{
			name:   "radius only",
			params: DiscoverParams{PageSize: 20, RadiusKm: floatPtr(10)},
			want:   Filters{RadiusKm: floatPtr(10)},
		},
		{
			name:   "full band",
			params: DiscoverParams{PageSize: 20, MinAge: intPtr(25), MaxAge: intPtr(30)},
			want:   Filters{AgeBand: &AgeBand{Min: 25, Max: 30}},
		},
		{
			name:   "max only",
			params: DiscoverParams{PageSize: 20, MaxAge: intPtr(30)},
			want:   Filters{AgeBand: &AgeBand{Min: MinAllowedAge, Max: 30}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Filters())
		})
	}
}

func TestFiltersMode(t *testing.T) {
	band := &AgeBand{Min: 20, Max: 30}
	assert.Equal(t, ModeUnrestricted, Filters{}.Mode())
	assert.Equal(t, ModeRadius, Filters{RadiusKm: floatPtr(5)}.Mode())
	assert.Equal(t, ModeAgeBand, Filters{AgeBand: band}.Mode())
	assert.Equal(t, ModeRadiusAge, Filters{RadiusKm: floatPtr(5), AgeBand: band}.Mode())
}

func TestFiltersValidate(t *testing.T) {
	assert.NoError(t, Filters{}.Validate())
	assert.NoError(t, Filters{RadiusKm: floatPtr(MaxRadiusKm), AgeBand: &AgeBand{Min: 18, Max: 100}}.Validate())
	assert.NoError(t, Filters{AgeBand: &AgeBand{Min: 30, Max: 30}}.Validate())

	assert.ErrorIs(t, Filters{Offset: -1}.Validate(), ErrInvalidArgument)
	assert.ErrorIs(t, Filters{RadiusKm: floatPtr(math.NaN())}.Validate(), ErrInvalidArgument)
	assert.ErrorIs(t, Filters{RadiusKm: floatPtr(-2)}.Validate(), ErrInvalidArgument)
	assert.ErrorIs(t, Filters{AgeBand: &AgeBand{Min: 31, Max: 30}}.Validate(), ErrInvertedBounds)
	assert.ErrorIs(t, Filters{AgeBand: &AgeBand{Min: 18, Max: 120}}.Validate(), ErrInvalidArgument)
}

func TestFiltersAdmits(t *testing.T) {
	candidate := newProfile(2, 30, GenderFemale, 0, 0)
	f := Filters{RadiusKm: floatPtr(10), AgeBand: &AgeBand{Min: 25, Max: 30}}

	assert.True(t, f.admits(candidate, 10))
	assert.False(t, f.admits(candidate, 10.01))
	assert.False(t, Filters{AgeBand: &AgeBand{Min: 31, Max: 40}}.admits(candidate, 0))
	assert.True(t, Filters{}.admits(candidate, 999))
}
