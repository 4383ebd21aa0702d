package matching

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// profileColumns joins users, profiles and match_preferences. Missing profile
// or preference rows come back as NULLs.
const profileColumns = `
	u.id AS user_id,
	u.display_name,
	p.user_id IS NOT NULL AS has_profile,
	EXTRACT(YEAR FROM AGE(p.birth_date))::int AS age,
	p.gender,
	p.latitude,
	p.longitude,
	p.interests,
	p.last_active,
	mp.gender AS pref_gender,
	mp.min_age AS pref_min_age,
	mp.max_age AS pref_max_age,
	mp.max_distance_km AS pref_max_distance_km
FROM users u
LEFT JOIN profiles p ON p.user_id = u.id
LEFT JOIN match_preferences mp ON mp.user_id = u.id`

type profileRow struct {
	UserID            int64           `db:"user_id"`
	DisplayName       sql.NullString  `db:"display_name"`
	HasProfile        bool            `db:"has_profile"`
	Age               sql.NullInt64   `db:"age"`
	Gender            sql.NullString  `db:"gender"`
	Latitude          sql.NullFloat64 `db:"latitude"`
	Longitude         sql.NullFloat64 `db:"longitude"`
	Interests         pq.StringArray  `db:"interests"`
	LastActive        sql.NullTime    `db:"last_active"`
	PrefGender        sql.NullString  `db:"pref_gender"`
	PrefMinAge        sql.NullInt64   `db:"pref_min_age"`
	PrefMaxAge        sql.NullInt64   `db:"pref_max_age"`
	PrefMaxDistanceKm sql.NullFloat64 `db:"pref_max_distance_km"`
}

func (row *profileRow) toProfile() *UserProfile {
	p := &UserProfile{
		UserID:      row.UserID,
		DisplayName: row.DisplayName.String,
		Age:         int(row.Age.Int64),
		Gender:      Gender(row.Gender.String),
		Latitude:    row.Latitude.Float64,
		Longitude:   row.Longitude.Float64,
		Interests:   []string(row.Interests),
	}
	if row.LastActive.Valid {
		p.LastActive = row.LastActive.Time
	}

	// A preference row with NULL columns means "no limit" for that field.
	if row.PrefGender.Valid || row.PrefMinAge.Valid || row.PrefMaxAge.Valid || row.PrefMaxDistanceKm.Valid {
		pref := &Preference{Gender: GenderAny}
		if row.PrefGender.Valid && row.PrefGender.String != "" {
			pref.Gender = GenderFilter(row.PrefGender.String)
		}
		if row.PrefMinAge.Valid {
			minAge := int(row.PrefMinAge.Int64)
			pref.MinAge = &minAge
		}
		if row.PrefMaxAge.Valid {
			maxAge := int(row.PrefMaxAge.Int64)
			pref.MaxAge = &maxAge
		}
		if row.PrefMaxDistanceKm.Valid {
			maxKm := row.PrefMaxDistanceKm.Float64
			pref.MaxDistanceKm = &maxKm
		}
		p.Preference = pref
	}
	return p
}

func (r *postgresRepository) FindByID(ctx context.Context, userID int64) (*UserProfile, error) {
	query := `SELECT` + profileColumns + `
WHERE u.id = $1`

	var row profileRow
	err := r.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, unavailable("find profile", err)
	}
	if !row.HasProfile {
		return nil, ErrProfileNotFound
	}
	return row.toProfile(), nil
}

// FindAll returns active users with a profile, ordered by ID so scans are
// reproducible.
func (r *postgresRepository) FindAll(ctx context.Context, q PoolQuery) ([]*UserProfile, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT`)
	sb.WriteString(profileColumns)
	sb.WriteString(`
WHERE u.is_active = TRUE AND p.user_id IS NOT NULL AND u.id <> $1`)
	args := []interface{}{q.ExcludeUserID}

	if q.Box != nil {
		sb.WriteString(`
	AND p.latitude BETWEEN $2 AND $3
	AND p.longitude BETWEEN $4 AND $5`)
		args = append(args, q.Box.MinLat, q.Box.MaxLat, q.Box.MinLng, q.Box.MaxLng)
	}
	sb.WriteString(`
ORDER BY u.id`)

	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, sb.String(), args...); err != nil {
		return nil, unavailable("list profiles", err)
	}

	profiles := make([]*UserProfile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, rows[i].toProfile())
	}
	return profiles, nil
}

func (r *postgresRepository) HasSwiped(ctx context.Context, actorID, targetID int64, includeRewound bool) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(
	SELECT 1 FROM swipes
	WHERE actor_id = $1 AND target_id = $2 AND ($3 OR NOT is_rewound)
)`
	if err := r.db.GetContext(ctx, &exists, query, actorID, targetID, includeRewound); err != nil {
		return false, unavailable("check swipe", err)
	}
	return exists, nil
}

func (r *postgresRepository) SwipesByActor(ctx context.Context, actorID int64) ([]SwipeRecord, error) {
	var records []SwipeRecord
	query := `SELECT actor_id, target_id, outcome, is_rewound, created_at
FROM swipes
WHERE actor_id = $1`
	if err := r.db.SelectContext(ctx, &records, query, actorID); err != nil {
		return nil, unavailable("list swipes", err)
	}
	return records, nil
}

// IsBlocked checks both directions
func (r *postgresRepository) IsBlocked(ctx context.Context, userA, userB int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(
	SELECT 1 FROM blocked_users
	WHERE (user_id = $1 AND blocked_id = $2) OR (user_id = $2 AND blocked_id = $1)
)`
	if err := r.db.GetContext(ctx, &exists, query, userA, userB); err != nil {
		return false, unavailable("check block", err)
	}
	return exists, nil
}

func (r *postgresRepository) BlocksInvolving(ctx context.Context, userID int64) ([]BlockRelation, error) {
	var relations []BlockRelation
	query := `SELECT user_id AS blocker_id, blocked_id, blocked_at AS created_at
FROM blocked_users
WHERE user_id = $1 OR blocked_id = $1`
	if err := r.db.SelectContext(ctx, &relations, query, userID); err != nil {
		return nil, unavailable("list blocks", err)
	}
	return relations, nil
}
