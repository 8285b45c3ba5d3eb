package repository

import (
	"context"
	"time"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/google/uuid"
)

type ConversationRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.ConversationState, error)
	Upsert(ctx context.Context, state *domain.ConversationState) error
}

// StateCache is the ephemeral read-through copy of conversation state.
// A miss is (nil, nil); callers fall back to the durable repository.
type StateCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.ConversationState, error)
	Set(ctx context.Context, state *domain.ConversationState, ttl time.Duration) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// CounterStore provides the atomic fixed-window counter backing the rate
// limiter. Incr must perform the increment and the first-increment expiry
// as one atomic operation per key.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}
