package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/blindmatch/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type conversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) repository.ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.ConversationState, error) {
	var (
		state      domain.ConversationState
		rawState   string
		rawContext []byte
	)
	query := `
		SELECT user_id, current_state, context, last_interaction, updated_at
		FROM conversation_states WHERE user_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&state.UserID, &rawState, &rawContext, &state.LastInteraction, &state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}

	phase, err := domain.ParsePhase(rawState)
	if err != nil {
		return nil, fmt.Errorf("stored conversation state corrupt: %w", err)
	}
	state.CurrentState = phase

	if len(rawContext) > 0 {
		if err := json.Unmarshal(rawContext, &state.Context); err != nil {
			return nil, fmt.Errorf("stored conversation context corrupt: %w", err)
		}
	}
	return &state, nil
}

func (r *conversationRepository) Upsert(ctx context.Context, state *domain.ConversationState) error {
	rawContext, err := json.Marshal(state.Context)
	if err != nil {
		return err
	}
	now := time.Now()
	if state.LastInteraction == nil {
		state.LastInteraction = &now
	}
	query := `
		INSERT INTO conversation_states (user_id, current_state, context, last_interaction)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			current_state = EXCLUDED.current_state,
			context = EXCLUDED.context,
			last_interaction = EXCLUDED.last_interaction,
			updated_at = CURRENT_TIMESTAMP
		RETURNING updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		state.UserID, string(state.CurrentState), rawContext, state.LastInteraction,
	).Scan(&state.UpdatedAt)
}
