package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/blindmatch/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	query := `
		INSERT INTO messages (id, user_id, direction, content, provider_sid, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		message.ID, message.UserID, message.Direction, message.Content,
		message.ProviderSID, message.Status,
	).Scan(&message.CreatedAt, &message.UpdatedAt)
}

func (r *messageRepository) UpdateDeliveryStatus(ctx context.Context, providerSID, status string, errorCode *string) error {
	query := `
		UPDATE messages
		SET status = $1, error_code = $2, updated_at = CURRENT_TIMESTAMP
		WHERE provider_sid = $3
	`
	_, err := r.db.ExecContext(ctx, query, status, errorCode, providerSID)
	return err
}

func (r *messageRepository) GetUserIDBySID(ctx context.Context, providerSID string) (*domain.Message, error) {
	var message domain.Message
	query := `SELECT * FROM messages WHERE provider_sid = $1`
	err := r.db.GetContext(ctx, &message, query, providerSID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &message, nil
}

type auditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, event *domain.AuditEvent) error {
	rawData, err := json.Marshal(event.EventData)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO audit_events (user_id, event_type, event_data)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query, event.UserID, event.EventType, rawData).
		Scan(&event.ID, &event.CreatedAt)
}
