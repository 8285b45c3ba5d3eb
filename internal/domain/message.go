package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageDirection string

const (
	DirectionInbound  MessageDirection = "inbound"
	DirectionOutbound MessageDirection = "outbound"
)

// Message is one logged SMS in either direction. Delivery status arrives
// later via the provider's status callback and updates only this record,
// never conversation or proposal state.
type Message struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	UserID      uuid.UUID        `json:"user_id" db:"user_id"`
	Direction   MessageDirection `json:"direction" db:"direction"`
	Content     string           `json:"content" db:"content"`
	ProviderSID *string          `json:"provider_sid" db:"provider_sid"`
	Status      *string          `json:"status" db:"status"`
	ErrorCode   *string          `json:"error_code" db:"error_code"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// AuditEvent is an append-only operational log entry.
type AuditEvent struct {
	ID        int            `json:"id" db:"id"`
	UserID    *uuid.UUID     `json:"user_id" db:"user_id"`
	EventType string         `json:"event_type" db:"event_type"`
	EventData map[string]any `json:"event_data" db:"event_data"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

const (
	EventSMSReceived    = "sms_received"
	EventOptOut         = "opt_out"
	EventOptIn          = "opt_in"
	EventDeliveryFailed = "message_delivery_failed"
	EventInviteBatchRun = "invite_batch_run"
	EventMatchBatchRun  = "match_batch_run"
)
