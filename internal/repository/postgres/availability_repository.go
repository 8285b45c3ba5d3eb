package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/blindmatch/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type availabilityRepository struct {
	db *sqlx.DB
}

func NewAvailabilityRepository(db *sqlx.DB) repository.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) Create(ctx context.Context, window *domain.AvailabilityWindow) error {
	// The (user_id, date) unique constraint keeps one window per user per day.
	query := `
		INSERT INTO availability_windows (user_id, date, is_available, preferred_from, preferred_to)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, date) DO UPDATE SET
			is_available = EXCLUDED.is_available,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		window.UserID, window.Date, window.IsAvailable, window.PreferredFrom, window.PreferredTo,
	).Scan(&window.ID, &window.CreatedAt, &window.UpdatedAt)
}

func (r *availabilityRepository) GetByUserDate(ctx context.Context, userID uuid.UUID, date string) (*domain.AvailabilityWindow, error) {
	var window domain.AvailabilityWindow
	query := `SELECT * FROM availability_windows WHERE user_id = $1 AND date = $2`
	err := r.db.GetContext(ctx, &window, query, userID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAvailabilityNotFound
		}
		return nil, err
	}
	return &window, nil
}

func (r *availabilityRepository) SetAvailable(ctx context.Context, userID uuid.UUID, date string, available bool) error {
	query := `
		UPDATE availability_windows
		SET is_available = $1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $2 AND date = $3
	`
	result, err := r.db.ExecContext(ctx, query, available, userID, date)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAvailabilityNotFound
	}
	return nil
}

func (r *availabilityRepository) ListAvailableUserIDs(ctx context.Context, date string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT user_id FROM availability_windows WHERE date = $1 AND is_available = true`
	err := r.db.SelectContext(ctx, &ids, query, date)
	return ids, err
}

func (r *availabilityRepository) CountAvailable(ctx context.Context, date string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM availability_windows WHERE date = $1 AND is_available = true`
	err := r.db.GetContext(ctx, &n, query, date)
	return n, err
}
