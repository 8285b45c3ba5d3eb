package repository

import (
	"context"
	"time"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	SetActive(ctx context.Context, phone string, active bool, consentAt *time.Time) error
	SetOnboarded(ctx context.Context, id uuid.UUID, onboarded bool) error
	ListActiveOnboarded(ctx context.Context) ([]*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
	CountAll(ctx context.Context) (int, error)
	CountActive(ctx context.Context) (int, error)
	CountOnboarded(ctx context.Context) (int, error)
}
