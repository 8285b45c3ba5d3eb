package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/blindmatch/backend/internal/repository"
	"github.com/blindmatch/backend/internal/usecase/notify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StateMarker moves a user into the availability-question phase after an
// invite goes out.
type StateMarker interface {
	MarkAvailabilityAsked(ctx context.Context, userID uuid.UUID) error
}

// MatchRunner runs the propose pipeline for one user.
type MatchRunner interface {
	ProposeFor(ctx context.Context, userID uuid.UUID) error
}

// RunResult summarizes one batch run. Skipped counts users the idempotency
// guard filtered out; Failed users are isolated and never abort the batch.
type RunResult struct {
	Processed int      `json:"processed"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

func (r *RunResult) fail(userID uuid.UUID, err error) {
	r.Failed++
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", userID, err))
}

// Service drives the two scheduled batches: the evening availability invite
// and the match proposal run. Both are idempotent per calendar day, so a
// cron retry or overlapping trigger cannot double-message anyone.
type Service struct {
	userRepo     repository.UserRepository
	profileRepo  repository.ProfileRepository
	availRepo    repository.AvailabilityRepository
	proposalRepo repository.ProposalRepository
	auditRepo    repository.AuditRepository
	states       StateMarker
	matcher      MatchRunner
	sender       notify.Sender
	log          *zap.Logger
	now          func() time.Time
}

func NewService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	availRepo repository.AvailabilityRepository,
	proposalRepo repository.ProposalRepository,
	auditRepo repository.AuditRepository,
	states StateMarker,
	matcher MatchRunner,
	sender notify.Sender,
	log *zap.Logger,
) *Service {
	return &Service{
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		availRepo:    availRepo,
		proposalRepo: proposalRepo,
		auditRepo:    auditRepo,
		states:       states,
		matcher:      matcher,
		sender:       sender,
		log:          log,
		now:          time.Now,
	}
}

// RunInvites asks every active, onboarded user whether they are free
// tonight. A user who already has an availability window for today was
// either asked or has answered; they are skipped.
func (s *Service) RunInvites(ctx context.Context) (*RunResult, error) {
	users, err := s.userRepo.ListActiveOnboarded(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users for invites: %w", err)
	}

	date := domain.DateKey(s.now())
	result := &RunResult{}
	for _, user := range users {
		if _, err := s.availRepo.GetByUserDate(ctx, user.ID, date); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, domain.ErrAvailabilityNotFound) {
			result.fail(user.ID, err)
			continue
		}

		if err := s.inviteUser(ctx, user, date); err != nil {
			s.log.Error("invite failed", zap.String("user_id", user.ID.String()), zap.Error(err))
			result.fail(user.ID, err)
			continue
		}
		result.Processed++
	}

	s.auditRun(ctx, domain.EventInviteBatchRun, date, result)
	return result, nil
}

func (s *Service) inviteUser(ctx context.Context, user *domain.User, date string) error {
	// The undecided window doubles as the idempotency marker for this run.
	window := &domain.AvailabilityWindow{UserID: user.ID, Date: date, IsAvailable: false}
	if err := s.availRepo.Create(ctx, window); err != nil {
		return fmt.Errorf("failed to create availability window: %w", err)
	}

	firstName := ""
	if profile, err := s.profileRepo.GetByUserID(ctx, user.ID); err == nil {
		firstName = profile.FirstName
	}
	if err := s.sender.SendSMS(ctx, user.ID, user.Phone, inviteMessage(firstName)); err != nil {
		return fmt.Errorf("failed to send invite: %w", err)
	}

	if err := s.states.MarkAvailabilityAsked(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to update conversation state: %w", err)
	}
	return nil
}

func inviteMessage(firstName string) string {
	greeting := "Hey!"
	if firstName != "" {
		greeting = fmt.Sprintf("Hey %s!", firstName)
	}
	return fmt.Sprintf("%s Are you free for a spontaneous date tonight? Reply YES if you're up for it, or NO if not this time 😊", greeting)
}

// RunProposals runs matching for everyone who said yes today. A user already
// holding a proposal for today is skipped, so repeated runs only pick up
// users the previous run missed.
func (s *Service) RunProposals(ctx context.Context) (*RunResult, error) {
	date := domain.DateKey(s.now())
	userIDs, err := s.availRepo.ListAvailableUserIDs(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list available users: %w", err)
	}

	result := &RunResult{}
	for _, userID := range userIDs {
		exists, err := s.proposalRepo.ExistsForUserOnDate(ctx, userID, date)
		if err != nil {
			result.fail(userID, err)
			continue
		}
		if exists {
			result.Skipped++
			continue
		}

		if err := s.matcher.ProposeFor(ctx, userID); err != nil {
			s.log.Error("match run failed", zap.String("user_id", userID.String()), zap.Error(err))
			result.fail(userID, err)
			continue
		}
		result.Processed++
	}

	s.auditRun(ctx, domain.EventMatchBatchRun, date, result)
	return result, nil
}

func (s *Service) auditRun(ctx context.Context, eventType, date string, result *RunResult) {
	event := &domain.AuditEvent{
		EventType: eventType,
		EventData: map[string]any{
			"date":      date,
			"processed": result.Processed,
			"skipped":   result.Skipped,
			"failed":    result.Failed,
		},
	}
	if err := s.auditRepo.Create(ctx, event); err != nil {
		s.log.Warn("failed to audit batch run", zap.String("event_type", eventType), zap.Error(err))
	}
}

// SetClock overrides the time source for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
