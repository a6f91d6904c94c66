package compatibility

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNoAssessment signals that a user exists but has no recorded personality
// assessment. The loader treats it the same as any other fetch failure:
// synthesize instead.
var ErrNoAssessment = errors.New("no personality assessment found")

// storedProfile is the raw row shape of the users x assessments join.
type storedProfile struct {
	UserID              string         `db:"user_id"`
	Age                 sql.NullInt64  `db:"age"`
	Location            sql.NullString `db:"location"`
	BudgetPreference    sql.NullString `db:"budget_preference"`
	GroupSizePreference sql.NullString `db:"group_size_preference"`
	ActivityLevel       sql.NullString `db:"activity_level"`
	EnergyLevel         sql.NullInt64  `db:"energy_level"`
	SocialPreference    sql.NullInt64  `db:"social_preference"`
	AdventureStyle      sql.NullInt64  `db:"adventure_style"`
	RiskTolerance       sql.NullInt64  `db:"risk_tolerance"`
	PlanningStyle       sql.NullInt64  `db:"planning_style"`
	CommunicationStyle  sql.NullInt64  `db:"communication_style"`
	AssessedAt          sql.NullTime   `db:"assessed_at"`
}

// ProfileStore fetches assessment-backed profile data for a user. A "not
// found" answer is expressed as an error; the loader never surfaces it.
type ProfileStore interface {
	FetchProfile(ctx context.Context, userID string) (*LightweightProfile, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a ProfileStore over the users and
// personality_assessments tables.
func NewPostgresStore(db *sqlx.DB) ProfileStore {
	return &postgresStore{db: db}
}

func (s *postgresStore) FetchProfile(ctx context.Context, userID string) (*LightweightProfile, error) {
	var row storedProfile

	query := `
        SELECT u.id AS user_id,
               EXTRACT(YEAR FROM AGE(u.birth_date))::int AS age,
               u.location,
               u.budget_preference, u.group_size_preference, u.activity_level,
               a.energy_level, a.social_preference, a.adventure_style,
               a.risk_tolerance, a.planning_style, a.communication_style,
               a.created_at AS assessed_at
        FROM users u
        LEFT JOIN LATERAL (
            SELECT * FROM personality_assessments
            WHERE user_id = u.id
            ORDER BY created_at DESC
            LIMIT 1
        ) a ON TRUE
        WHERE u.id = $1
    `

	if err := s.db.GetContext(ctx, &row, query, userID); err != nil {
		return nil, err
	}
	if !row.AssessedAt.Valid {
		return nil, ErrNoAssessment
	}

	return row.toProfile(), nil
}

func (r *storedProfile) toProfile() *LightweightProfile {
	personality := make(map[string]int, 6)
	putDimension(personality, DimEnergyLevel, r.EnergyLevel)
	putDimension(personality, DimSocialPreference, r.SocialPreference)
	putDimension(personality, DimAdventureStyle, r.AdventureStyle)
	putDimension(personality, DimRiskTolerance, r.RiskTolerance)
	putDimension(personality, DimPlanningStyle, r.PlanningStyle)
	putDimension(personality, DimCommunicationStyle, r.CommunicationStyle)

	profile := &LightweightProfile{
		UserID:      r.UserID,
		Personality: personality,
		Demographics: Demographics{
			Age:      int(r.Age.Int64),
			Location: r.Location.String,
		},
		Preferences: Preferences{
			BudgetPreference:    r.BudgetPreference.String,
			GroupSizePreference: r.GroupSizePreference.String,
			ActivityLevel:       r.ActivityLevel.String,
		},
	}
	if r.AssessedAt.Valid {
		assessedAt := r.AssessedAt.Time.UTC()
		profile.AssessedAt = &assessedAt
	}
	return profile
}

func putDimension(personality map[string]int, dim string, value sql.NullInt64) {
	if value.Valid {
		personality[dim] = clampInt(int(value.Int64), 0, 100)
	}
}
