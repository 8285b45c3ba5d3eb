package repository

import (
	"context"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/google/uuid"
)

type ProfileRepository interface {
	Upsert(ctx context.Context, profile *domain.Profile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
}

type PreferencesRepository interface {
	Upsert(ctx context.Context, prefs *domain.Preferences) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Preferences, error)
}
