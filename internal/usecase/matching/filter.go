package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/blindmatch/backend/internal/repository"
	"github.com/blindmatch/backend/internal/usecase/scoring"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Bundle is the snapshot of one user the filter and scorer work over.
// Profile, Preferences, Vector, and Values may be nil/empty when the user
// has not provided them yet.
type Bundle struct {
	User        *domain.User
	Profile     *domain.Profile
	Preferences *domain.Preferences
	Vector      *domain.EmbeddingVector
	Values      []*domain.Answer
}

func (b *Bundle) scoringCandidate() scoring.Candidate {
	return scoring.Candidate{
		UserID:        b.User.ID,
		Profile:       b.Profile,
		Preferences:   b.Preferences,
		Vector:        b.Vector,
		ValuesAnswers: b.Values,
	}
}

// CandidateFilter applies the hard eligibility constraints before any
// scoring: activity, onboarding, same-day availability, and mutual
// age/gender acceptance. It is a pure predicate over snapshot data.
type CandidateFilter struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	prefsRepo   repository.PreferencesRepository
	vectorRepo  repository.VectorRepository
	answerRepo  repository.AnswerRepository
	availRepo   repository.AvailabilityRepository
	log         *zap.Logger
}

func NewCandidateFilter(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	prefsRepo repository.PreferencesRepository,
	vectorRepo repository.VectorRepository,
	answerRepo repository.AnswerRepository,
	availRepo repository.AvailabilityRepository,
	log *zap.Logger,
) *CandidateFilter {
	return &CandidateFilter{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		prefsRepo:   prefsRepo,
		vectorRepo:  vectorRepo,
		answerRepo:  answerRepo,
		availRepo:   availRepo,
		log:         log,
	}
}

// LoadBundle assembles a user's snapshot. Missing profile, preferences,
// vector, or answers are left nil rather than failing: absence degrades
// scoring, it does not abort it.
func (f *CandidateFilter) LoadBundle(ctx context.Context, userID uuid.UUID) (*Bundle, error) {
	user, err := f.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	bundle := &Bundle{User: user}

	profile, err := f.profileRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	bundle.Profile = profile

	prefs, err := f.prefsRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrPreferencesNotFound) {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	bundle.Preferences = prefs

	vector, err := f.vectorRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrVectorNotFound) {
		return nil, fmt.Errorf("failed to load embedding: %w", err)
	}
	bundle.Vector = vector

	values, err := f.answerRepo.ListByUserCategory(ctx, userID, domain.AnswerCategoryValues)
	if err != nil {
		return nil, fmt.Errorf("failed to load values answers: %w", err)
	}
	bundle.Values = values

	return bundle, nil
}

// EligibleCandidates returns every other user who is active, onboarded,
// available today, and mutually eligible with the requester. A requester
// without a profile or preferences gets an empty set, not an error.
func (f *CandidateFilter) EligibleCandidates(ctx context.Context, requester *Bundle, now time.Time) ([]*Bundle, error) {
	if requester.Profile == nil || requester.Preferences == nil {
		return nil, nil
	}

	date := domain.DateKey(now)
	availableIDs, err := f.availRepo.ListAvailableUserIDs(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list available users: %w", err)
	}

	var candidates []*Bundle
	for _, id := range availableIDs {
		if id == requester.User.ID {
			continue
		}

		candidate, err := f.LoadBundle(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			return nil, err
		}

		if !f.mutuallyEligible(requester, candidate, now) {
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// mutuallyEligible checks both directions of every hard constraint, so the
// predicate is symmetric by construction: if X fails against Y, Y fails
// against X under the same data.
func (f *CandidateFilter) mutuallyEligible(a, b *Bundle, now time.Time) bool {
	if !b.User.IsActive || !b.User.IsOnboarded {
		return false
	}
	if b.Profile == nil || b.Preferences == nil {
		return false
	}

	ageA := a.Profile.Age(now)
	ageB := b.Profile.Age(now)
	if !a.Preferences.AgeInRange(ageB) || !b.Preferences.AgeInRange(ageA) {
		return false
	}

	if !a.Preferences.AcceptsGender(b.Profile.Gender) || !b.Preferences.AcceptsGender(a.Profile.Gender) {
		return false
	}
	return true
}
