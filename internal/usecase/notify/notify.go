package notify

import (
	"context"
	"fmt"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/blindmatch/backend/internal/infrastructure/twilio"
	"github.com/blindmatch/backend/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sender is the outbound-notification boundary the core consumes. Sends are
// fire-and-forget with respect to conversation and proposal state: a failure
// is reported to the caller for logging but never rolls anything back.
type Sender interface {
	SendSMS(ctx context.Context, userID uuid.UUID, phone, body string) error
}

// Service sends SMS through Twilio and records each outbound message with
// its provider handle so the status callback can attach delivery updates.
type Service struct {
	client   *twilio.Client
	messages repository.MessageRepository
	audit    repository.AuditRepository
	log      *zap.Logger
}

func NewService(client *twilio.Client, messages repository.MessageRepository, audit repository.AuditRepository, log *zap.Logger) *Service {
	return &Service{
		client:   client,
		messages: messages,
		audit:    audit,
		log:      log,
	}
}

func (s *Service) SendSMS(ctx context.Context, userID uuid.UUID, phone, body string) error {
	msg, err := s.client.SendSMS(ctx, phone, body)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}

	// Replies to numbers we have never registered (e.g. HELP before signup)
	// have no user row to attach a message record to.
	if userID == uuid.Nil {
		return nil
	}

	record := &domain.Message{
		UserID:      userID,
		Direction:   domain.DirectionOutbound,
		Content:     body,
		ProviderSID: &msg.SID,
		Status:      &msg.Status,
	}
	if err := s.messages.Create(ctx, record); err != nil {
		// The SMS is already on its way; a logging failure must not surface
		// as a send failure.
		s.log.Warn("failed to record outbound message",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// RecordDeliveryStatus applies a provider status callback to the matching
// outbound message record. Terminal failures additionally land in the audit
// log; nothing here touches conversation or proposal state.
func (s *Service) RecordDeliveryStatus(ctx context.Context, providerSID, status string, errorCode *string) error {
	if err := s.messages.UpdateDeliveryStatus(ctx, providerSID, status, errorCode); err != nil {
		return fmt.Errorf("failed to update delivery status: %w", err)
	}

	if status == "failed" || status == "undelivered" {
		data := map[string]any{"provider_sid": providerSID, "status": status}
		if errorCode != nil {
			data["error_code"] = *errorCode
		}

		var userID *uuid.UUID
		if msg, err := s.messages.GetUserIDBySID(ctx, providerSID); err == nil {
			userID = &msg.UserID
		}

		event := &domain.AuditEvent{UserID: userID, EventType: domain.EventDeliveryFailed, EventData: data}
		if err := s.audit.Create(ctx, event); err != nil {
			s.log.Warn("failed to audit delivery failure",
				zap.String("provider_sid", providerSID), zap.Error(err))
		}
	}
	return nil
}
