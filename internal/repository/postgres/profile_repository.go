package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/blindmatch/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, first_name, birth_date, city, gender, bio)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			birth_date = EXCLUDED.birth_date,
			city = EXCLUDED.city,
			gender = EXCLUDED.gender,
			bio = EXCLUDED.bio,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		profile.UserID, profile.FirstName, profile.BirthDate, profile.City, profile.Gender, profile.Bio,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	query := `SELECT * FROM profiles WHERE user_id = $1`
	err := r.db.GetContext(ctx, &profile, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

type preferencesRepository struct {
	db *sqlx.DB
}

func NewPreferencesRepository(db *sqlx.DB) repository.PreferencesRepository {
	return &preferencesRepository{db: db}
}

func (r *preferencesRepository) Upsert(ctx context.Context, prefs *domain.Preferences) error {
	query := `
		INSERT INTO preferences (user_id, orientation, preferred_genders, min_age, max_age, max_distance_miles, dealbreakers)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			orientation = EXCLUDED.orientation,
			preferred_genders = EXCLUDED.preferred_genders,
			min_age = EXCLUDED.min_age,
			max_age = EXCLUDED.max_age,
			max_distance_miles = EXCLUDED.max_distance_miles,
			dealbreakers = EXCLUDED.dealbreakers,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		prefs.UserID, prefs.Orientation, pq.Array(prefs.PreferredGenders),
		prefs.MinAge, prefs.MaxAge, prefs.MaxDistanceMiles, pq.Array(prefs.Dealbreakers),
	).Scan(&prefs.ID, &prefs.CreatedAt, &prefs.UpdatedAt)
}

func (r *preferencesRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Preferences, error) {
	var prefs domain.Preferences
	query := `
		SELECT id, user_id, orientation, preferred_genders, min_age, max_age,
		       max_distance_miles, dealbreakers, created_at, updated_at
		FROM preferences WHERE user_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&prefs.ID, &prefs.UserID, &prefs.Orientation, pq.Array(&prefs.PreferredGenders),
		&prefs.MinAge, &prefs.MaxAge, &prefs.MaxDistanceMiles, pq.Array(&prefs.Dealbreakers),
		&prefs.CreatedAt, &prefs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPreferencesNotFound
		}
		return nil, err
	}
	return &prefs, nil
}
