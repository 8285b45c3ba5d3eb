package domain

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrPreferencesNotFound  = errors.New("preferences not found")
	ErrVectorNotFound       = errors.New("embedding vector not found")
	ErrAvailabilityNotFound = errors.New("availability window not found")
	ErrProposalNotFound     = errors.New("match proposal not found")
	ErrConversationNotFound = errors.New("conversation state not found")
	ErrProposalTerminal     = errors.New("match proposal already resolved")
	ErrNotParticipant       = errors.New("user is not a proposal participant")
	ErrRateLimited          = errors.New("rate limit exceeded")
	ErrInvalidState         = errors.New("invalid conversation state")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidToken         = errors.New("invalid or expired token")
)
