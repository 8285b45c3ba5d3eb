package repository

import (
	"context"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/google/uuid"
)

type ProposalRepository interface {
	// Create inserts the proposal as a single atomic write so a reader never
	// observes a pair with only one participant linked.
	Create(ctx context.Context, proposal *domain.MatchProposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MatchProposal, error)
	// GetOpenForUser returns the most recent proposal still in the proposed
	// state (before lazy expiry) involving the user, or ErrProposalNotFound.
	GetOpenForUser(ctx context.Context, userID uuid.UUID) (*domain.MatchProposal, error)
	ExistsForUserOnDate(ctx context.Context, userID uuid.UUID, date string) (bool, error)
	// RecordResponse writes one participant's answer and resolves the status
	// in a single atomic update against the row's current values: both yes
	// accepts, any no declines, one side still pending leaves the proposal
	// open. Returns the updated proposal, or ErrProposalNotFound when the
	// proposal is no longer open or the user is not a participant.
	RecordResponse(ctx context.Context, id, userID uuid.UUID, response domain.ProposalResponse) (*domain.MatchProposal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProposalStatus) error
	ListRecent(ctx context.Context, limit int) ([]*domain.MatchProposal, error)
	CountOpen(ctx context.Context) (int, error)
}
