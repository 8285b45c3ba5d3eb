package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blindmatch/backend/internal/config"
	"github.com/blindmatch/backend/internal/domain"
	"github.com/blindmatch/backend/internal/repository"
	"github.com/blindmatch/backend/internal/usecase/notify"
	"github.com/blindmatch/backend/internal/usecase/scoring"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const stillSearchingMessage = "I'm still looking for great matches for you tonight! I'll keep searching and let you know when I find someone special 💕"

// ProposalService owns the match proposal lifecycle: creation from filter
// and scorer output, response collection, and lazy expiry.
type ProposalService struct {
	cfg          *config.MatchingConfig
	filter       *CandidateFilter
	scorer       *scoring.Scorer
	proposalRepo repository.ProposalRepository
	userRepo     repository.UserRepository
	profileRepo  repository.ProfileRepository
	sender       notify.Sender
	log          *zap.Logger
	now          func() time.Time
}

func NewProposalService(
	cfg *config.MatchingConfig,
	filter *CandidateFilter,
	scorer *scoring.Scorer,
	proposalRepo repository.ProposalRepository,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	sender notify.Sender,
	log *zap.Logger,
) *ProposalService {
	return &ProposalService{
		cfg:          cfg,
		filter:       filter,
		scorer:       scorer,
		proposalRepo: proposalRepo,
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		sender:       sender,
		log:          log,
		now:          time.Now,
	}
}

// ProposeFor runs the full pipeline for one user: filter, score, take the
// top candidates, create one proposal per pair, and notify both parties.
// Finding nobody above the threshold is an expected outcome, answered with a
// "still searching" notice rather than an error.
func (s *ProposalService) ProposeFor(ctx context.Context, userID uuid.UUID) error {
	now := s.now()

	requester, err := s.filter.LoadBundle(ctx, userID)
	if err != nil {
		return err
	}

	candidates, err := s.filter.EligibleCandidates(ctx, requester, now)
	if err != nil {
		return err
	}

	scoringCandidates := make([]scoring.Candidate, 0, len(candidates))
	byID := make(map[uuid.UUID]*Bundle, len(candidates))
	for _, c := range candidates {
		scoringCandidates = append(scoringCandidates, c.scoringCandidate())
		byID[c.User.ID] = c
	}

	scores := s.scorer.Rank(requester.scoringCandidate(), scoringCandidates, now)
	if len(scores) > s.cfg.MaxProposals {
		scores = scores[:s.cfg.MaxProposals]
	}

	if len(scores) == 0 {
		if err := s.sender.SendSMS(ctx, requester.User.ID, requester.User.Phone, stillSearchingMessage); err != nil {
			s.log.Warn("failed to send still-searching notice",
				zap.String("user_id", userID.String()), zap.Error(err))
		}
		return nil
	}

	for _, score := range scores {
		candidate := byID[score.UserID]
		if err := s.createProposal(ctx, requester, candidate, score.Final, now); err != nil {
			s.log.Error("failed to create proposal",
				zap.String("user_id", userID.String()),
				zap.String("candidate_id", score.UserID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *ProposalService) createProposal(ctx context.Context, requester, candidate *Bundle, score float64, now time.Time) error {
	proposal := &domain.MatchProposal{
		User1ID:          requester.User.ID,
		User2ID:          candidate.User.ID,
		Status:           domain.ProposalProposed,
		MatchScore:       score,
		ProposedDate:     domain.DateKey(now),
		ProposedTime:     s.cfg.DefaultTime,
		ProposedActivity: s.cfg.DefaultActivity,
		ProposedArea:     s.cfg.DefaultArea,
		User1Response:    domain.ResponsePending,
		User2Response:    domain.ResponsePending,
		ExpiresAt:        now.Add(s.cfg.ProposalTTL),
	}

	if err := s.proposalRepo.Create(ctx, proposal); err != nil {
		return err
	}

	s.sendProposalNotice(ctx, requester, proposal)
	s.sendProposalNotice(ctx, candidate, proposal)
	return nil
}

func (s *ProposalService) sendProposalNotice(ctx context.Context, bundle *Bundle, proposal *domain.MatchProposal) {
	firstName := "there"
	if bundle.Profile != nil && bundle.Profile.FirstName != "" {
		firstName = bundle.Profile.FirstName
	}

	body := fmt.Sprintf(
		"Hey %s! 💕 I found someone special who might be perfect for you tonight!\n\n"+
			"Interested in %s around %s at %s?\n\n"+
			"Reply YES if you're interested, or NO if not tonight. You have 2 hours to decide! ⏰",
		firstName, proposal.ProposedActivity, proposal.ProposedArea, proposal.ProposedTime,
	)

	if err := s.sender.SendSMS(ctx, bundle.User.ID, bundle.User.Phone, body); err != nil {
		// Dispatch failure never rolls back an already-created proposal.
		s.log.Warn("failed to send proposal notice",
			zap.String("user_id", bundle.User.ID.String()),
			zap.String("proposal_id", proposal.ID.String()),
			zap.Error(err),
		)
	}
}

// OpenProposalFor returns the user's open proposal after applying lazy
// expiry. A proposal whose expiry has passed is persisted as expired before
// this returns, so no consumer ever observes a stale proposed status.
func (s *ProposalService) OpenProposalFor(ctx context.Context, userID uuid.UUID) (*domain.MatchProposal, error) {
	proposal, err := s.proposalRepo.GetOpenForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if proposal.EffectiveStatus(s.now()) == domain.ProposalExpired {
		proposal.Status = domain.ProposalExpired
		if err := s.proposalRepo.UpdateStatus(ctx, proposal.ID, domain.ProposalExpired); err != nil {
			return nil, err
		}
		return nil, domain.ErrProposalNotFound
	}
	return proposal, nil
}

// HandleResponse applies one side's yes/no to the user's open proposal.
// Returns false when the user has no open proposal, so the caller can fall
// through to the normal conversation step.
func (s *ProposalService) HandleResponse(ctx context.Context, userID uuid.UUID, yes bool) (bool, error) {
	proposal, err := s.OpenProposalFor(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProposalNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := proposal.Respond(userID, yes, s.now()); err != nil {
		if errors.Is(err, domain.ErrProposalTerminal) {
			return false, nil
		}
		return false, err
	}

	answer := domain.ResponseNo
	if yes {
		answer = domain.ResponseYes
	}
	updated, err := s.proposalRepo.RecordResponse(ctx, proposal.ID, userID, answer)
	if err != nil {
		if errors.Is(err, domain.ErrProposalNotFound) {
			// Resolved or expired between the read and the write.
			return false, nil
		}
		return false, err
	}

	// Notices follow the stored row, not the in-memory copy: the other side
	// may have responded between our read and our write.
	s.notifyResolution(ctx, updated, userID, yes)
	return true, nil
}

func (s *ProposalService) notifyResolution(ctx context.Context, proposal *domain.MatchProposal, responderID uuid.UUID, yes bool) {
	switch proposal.Status {
	case domain.ProposalAccepted:
		s.sendToParticipant(ctx, proposal.User1ID, func(other string) string {
			return fmt.Sprintf("It's a date! 🎉 %s said yes too. See you at %s, %s — have an amazing time!",
				other, proposal.ProposedArea, proposal.ProposedTime)
		}, proposal.User2ID)
		s.sendToParticipant(ctx, proposal.User2ID, func(other string) string {
			return fmt.Sprintf("It's a date! 🎉 %s said yes too. See you at %s, %s — have an amazing time!",
				other, proposal.ProposedArea, proposal.ProposedTime)
		}, proposal.User1ID)
	case domain.ProposalDeclined:
		// The let-down notice goes to whoever said yes, regardless of which
		// side's answer resolved the proposal.
		if proposal.User1Response == domain.ResponseYes {
			s.sendToParticipant(ctx, proposal.User1ID, func(string) string {
				return "Tonight didn't line up, but don't worry — I'm already looking for your next great match! 💪"
			}, proposal.User2ID)
		}
		if proposal.User2Response == domain.ResponseYes {
			s.sendToParticipant(ctx, proposal.User2ID, func(string) string {
				return "Tonight didn't line up, but don't worry — I'm already looking for your next great match! 💪"
			}, proposal.User1ID)
		}
		if !yes {
			s.sendToParticipant(ctx, responderID, func(string) string {
				return "No problem at all! I'll keep an eye out for another night. 💕"
			}, responderID)
		}
	default:
		// One side in, waiting on the other.
		if yes {
			s.sendToParticipant(ctx, responderID, func(string) string {
				return "Love it! 😊 I'm checking with them now — I'll let you know the moment I hear back."
			}, responderID)
		} else {
			s.sendToParticipant(ctx, responderID, func(string) string {
				return "No problem at all! I'll keep an eye out for another night. 💕"
			}, responderID)
		}
	}
}

func (s *ProposalService) sendToParticipant(ctx context.Context, userID uuid.UUID, build func(otherFirstName string) string, otherID uuid.UUID) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.log.Warn("failed to load proposal participant", zap.String("user_id", userID.String()), zap.Error(err))
		return
	}

	otherName := "your match"
	if profile, err := s.profileRepo.GetByUserID(ctx, otherID); err == nil && profile.FirstName != "" {
		otherName = profile.FirstName
	}

	if err := s.sender.SendSMS(ctx, user.ID, user.Phone, build(otherName)); err != nil {
		s.log.Warn("failed to send proposal resolution notice",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// SetClock overrides the time source; tests use it to drive expiry.
func (s *ProposalService) SetClock(now func() time.Time) {
	s.now = now
}
