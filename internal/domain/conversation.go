package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

type ConversationPhase string

const (
	PhaseNew                  ConversationPhase = "new"
	PhaseOnboarding           ConversationPhase = "onboarding"
	PhaseGatheringPreferences ConversationPhase = "gathering_preferences"
	PhaseActive               ConversationPhase = "active"
	PhaseAvailableTonight     ConversationPhase = "available_tonight"
)

// ParsePhase validates free text against the closed phase enum.
func ParsePhase(s string) (ConversationPhase, error) {
	switch p := ConversationPhase(s); p {
	case PhaseNew, PhaseOnboarding, PhaseGatheringPreferences, PhaseActive, PhaseAvailableTonight:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidState, s)
}

// maxExtraKeys bounds the free-form side channel so a misbehaving generator
// cannot grow the context without limit.
const maxExtraKeys = 32

// Context is the accumulated per-user conversational memory. Known fields
// are typed; anything else the generator emits lands in Extra, capped at
// maxExtraKeys entries.
type Context struct {
	OnboardingStep         *int           `json:"onboarding_step,omitempty" mapstructure:"onboarding_step"`
	QuestionsAsked         []string       `json:"questions_asked,omitempty" mapstructure:"questions_asked"`
	PendingQuestions       []string       `json:"pending_questions,omitempty" mapstructure:"pending_questions"`
	LastSummary            string         `json:"last_summary,omitempty" mapstructure:"last_summary"`
	AvailabilityAskedToday bool           `json:"availability_asked_today,omitempty" mapstructure:"availability_asked_today"`
	ExpectingAvailability  bool           `json:"expecting_availability_response,omitempty" mapstructure:"expecting_availability_response"`
	Extra                  map[string]any `json:"extra,omitempty" mapstructure:"-"`
}

// Merge applies a shallow key-wise overwrite: keys present in updates replace
// the matching typed field, absent keys keep their current value, and unknown
// keys accumulate in Extra. Updates that cannot be coerced into the typed
// fields are rejected wholesale.
func (c *Context) Merge(updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(updates); err != nil {
		return fmt.Errorf("invalid context update: %w", err)
	}

	for _, key := range md.Unused {
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		if _, known := c.Extra[key]; !known && len(c.Extra) >= maxExtraKeys {
			continue
		}
		c.Extra[key] = updates[key]
	}
	return nil
}

// ConversationState is the durable per-user state machine record. The
// authoritative copy lives in the identity store; a cache copy with a bounded
// TTL serves low-latency reads.
type ConversationState struct {
	UserID          uuid.UUID         `json:"user_id" db:"user_id"`
	CurrentState    ConversationPhase `json:"current_state" db:"current_state"`
	Context         Context           `json:"context" db:"context"`
	LastInteraction *time.Time        `json:"last_interaction" db:"last_interaction"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// NewConversationState seeds the state machine for a freshly created user.
func NewConversationState(userID uuid.UUID) *ConversationState {
	return &ConversationState{
		UserID:       userID,
		CurrentState: PhaseNew,
		Context:      Context{},
	}
}
