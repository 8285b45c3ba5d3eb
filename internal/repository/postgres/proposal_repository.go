package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/blindmatch/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type proposalRepository struct {
	db *sqlx.DB
}

func NewProposalRepository(db *sqlx.DB) repository.ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) Create(ctx context.Context, proposal *domain.MatchProposal) error {
	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}
	// Single-row insert: both participants land atomically, a reader can
	// never see a half-created pair.
	query := `
		INSERT INTO match_proposals (
			id, user1_id, user2_id, status, match_score,
			proposed_date, proposed_time, proposed_activity, proposed_area,
			user1_response, user2_response, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query,
		proposal.ID, proposal.User1ID, proposal.User2ID, proposal.Status, proposal.MatchScore,
		proposal.ProposedDate, proposal.ProposedTime, proposal.ProposedActivity, proposal.ProposedArea,
		proposal.User1Response, proposal.User2Response, proposal.ExpiresAt,
	).Scan(&proposal.CreatedAt)
}

func (r *proposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MatchProposal, error) {
	var proposal domain.MatchProposal
	query := `SELECT * FROM match_proposals WHERE id = $1`
	err := r.db.GetContext(ctx, &proposal, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) GetOpenForUser(ctx context.Context, userID uuid.UUID) (*domain.MatchProposal, error) {
	var proposal domain.MatchProposal
	query := `
		SELECT * FROM match_proposals
		WHERE (user1_id = $1 OR user2_id = $1) AND status = 'proposed'
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &proposal, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) ExistsForUserOnDate(ctx context.Context, userID uuid.UUID, date string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM match_proposals
			WHERE (user1_id = $1 OR user2_id = $1) AND proposed_date = $2
		)
	`
	err := r.db.GetContext(ctx, &exists, query, userID, date)
	return exists, err
}

func (r *proposalRepository) RecordResponse(ctx context.Context, id, userID uuid.UUID, response domain.ProposalResponse) (*domain.MatchProposal, error) {
	// The responder's column and the resolved status are both computed from
	// the row's current values inside one UPDATE. Two participants answering
	// at the same moment therefore cannot overwrite each other's response.
	query := `
		UPDATE match_proposals
		SET user1_response = CASE WHEN user1_id = $2 THEN $3 ELSE user1_response END,
		    user2_response = CASE WHEN user2_id = $2 THEN $3 ELSE user2_response END,
		    status = CASE
		        WHEN (CASE WHEN user1_id = $2 THEN $3 ELSE user1_response END) = 'pending'
		          OR (CASE WHEN user2_id = $2 THEN $3 ELSE user2_response END) = 'pending'
		            THEN status
		        WHEN (CASE WHEN user1_id = $2 THEN $3 ELSE user1_response END) = 'yes'
		         AND (CASE WHEN user2_id = $2 THEN $3 ELSE user2_response END) = 'yes'
		            THEN 'accepted'
		        ELSE 'declined'
		    END
		WHERE id = $1 AND status = 'proposed' AND (user1_id = $2 OR user2_id = $2)
		RETURNING *
	`
	var proposal domain.MatchProposal
	err := r.db.GetContext(ctx, &proposal, query, id, userID, response)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProposalStatus) error {
	query := `UPDATE match_proposals SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProposalNotFound
	}
	return nil
}

func (r *proposalRepository) ListRecent(ctx context.Context, limit int) ([]*domain.MatchProposal, error) {
	var proposals []*domain.MatchProposal
	query := `SELECT * FROM match_proposals ORDER BY created_at DESC LIMIT $1`
	err := r.db.SelectContext(ctx, &proposals, query, limit)
	return proposals, err
}

func (r *proposalRepository) CountOpen(ctx context.Context) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM match_proposals WHERE status IN ('proposed', 'accepted')`
	err := r.db.GetContext(ctx, &n, query)
	return n, err
}
