package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmbeddingVector is a user's profile embedding plus the summary text it was
// derived from. Recomputed wholesale, never appended to.
type EmbeddingVector struct {
	ID        int       `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Embedding []float64 `json:"embedding" db:"embedding"`
	Summary   string    `json:"summary" db:"summary"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AvailabilityWindow records whether a user opted in to being matched on a
// given calendar date. At most one row per (user, date).
type AvailabilityWindow struct {
	ID            int       `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	Date          string    `json:"date" db:"date"`
	IsAvailable   bool      `json:"is_available" db:"is_available"`
	PreferredFrom *string   `json:"preferred_from" db:"preferred_from"`
	PreferredTo   *string   `json:"preferred_to" db:"preferred_to"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// DateKey formats a calendar date the way availability windows and proposal
// idempotency checks key it.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
