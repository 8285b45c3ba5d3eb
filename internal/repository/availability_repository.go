package repository

import (
	"context"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/google/uuid"
)

type AvailabilityRepository interface {
	Create(ctx context.Context, window *domain.AvailabilityWindow) error
	GetByUserDate(ctx context.Context, userID uuid.UUID, date string) (*domain.AvailabilityWindow, error)
	SetAvailable(ctx context.Context, userID uuid.UUID, date string, available bool) error
	ListAvailableUserIDs(ctx context.Context, date string) ([]uuid.UUID, error)
	CountAvailable(ctx context.Context, date string) (int, error)
}
