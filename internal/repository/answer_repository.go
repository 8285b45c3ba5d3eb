package repository

import (
	"context"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/google/uuid"
)

type AnswerRepository interface {
	Create(ctx context.Context, answer *domain.Answer) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Answer, error)
	ListByUserCategory(ctx context.Context, userID uuid.UUID, category string) ([]*domain.Answer, error)
}

type VectorRepository interface {
	Upsert(ctx context.Context, vector *domain.EmbeddingVector) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.EmbeddingVector, error)
}
