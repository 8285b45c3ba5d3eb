package repository

import (
	"context"

	"github.com/blindmatch/backend/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	UpdateDeliveryStatus(ctx context.Context, providerSID, status string, errorCode *string) error
	GetUserIDBySID(ctx context.Context, providerSID string) (*domain.Message, error)
}

type AuditRepository interface {
	Create(ctx context.Context, event *domain.AuditEvent) error
}
