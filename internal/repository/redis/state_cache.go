package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/blindmatch/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type stateCache struct {
	client *redis.Client
}

func NewStateCache(client *redis.Client) repository.StateCache {
	return &stateCache{client: client}
}

func conversationKey(userID uuid.UUID) string {
	return fmt.Sprintf("conversation:%s", userID)
}

func (c *stateCache) Get(ctx context.Context, userID uuid.UUID) (*domain.ConversationState, error) {
	raw, err := c.client.Get(ctx, conversationKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var state domain.ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupt snapshot is treated as a miss; the durable copy wins.
		return nil, nil
	}
	if _, err := domain.ParsePhase(string(state.CurrentState)); err != nil {
		return nil, nil
	}
	return &state, nil
}

func (c *stateCache) Set(ctx context.Context, state *domain.ConversationState, ttl time.Duration) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, conversationKey(state.UserID), raw, ttl).Err()
}

func (c *stateCache) Delete(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, conversationKey(userID)).Err()
}
