package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/blindmatch/backend/internal/config"
	"github.com/blindmatch/backend/internal/domain"
	"github.com/blindmatch/backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service backs the operator dashboard: login, aggregate stats, and
// read-only views over users and proposals.
type Service struct {
	cfg          *config.AdminConfig
	userRepo     repository.UserRepository
	profileRepo  repository.ProfileRepository
	availRepo    repository.AvailabilityRepository
	proposalRepo repository.ProposalRepository
	now          func() time.Time
}

func NewService(
	cfg *config.AdminConfig,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	availRepo repository.AvailabilityRepository,
	proposalRepo repository.ProposalRepository,
) *Service {
	return &Service{
		cfg:          cfg,
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		availRepo:    availRepo,
		proposalRepo: proposalRepo,
		now:          time.Now,
	}
}

// Login checks the operator password against the stored bcrypt hash and
// issues a short-lived signed token.
func (s *Service) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a token issued by Login.
func (s *Service) VerifyToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return domain.ErrInvalidToken
	}
	return nil
}

// Stats is the dashboard headline view.
type Stats struct {
	TotalUsers       int `json:"total_users"`
	ActiveUsers      int `json:"active_users"`
	OnboardedUsers   int `json:"onboarded_users"`
	AvailableTonight int `json:"available_tonight"`
	OpenProposals    int `json:"open_proposals"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	var err error

	if stats.TotalUsers, err = s.userRepo.CountAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if stats.ActiveUsers, err = s.userRepo.CountActive(ctx); err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}
	if stats.OnboardedUsers, err = s.userRepo.CountOnboarded(ctx); err != nil {
		return nil, fmt.Errorf("failed to count onboarded users: %w", err)
	}
	if stats.AvailableTonight, err = s.availRepo.CountAvailable(ctx, domain.DateKey(s.now())); err != nil {
		return nil, fmt.Errorf("failed to count available users: %w", err)
	}
	if stats.OpenProposals, err = s.proposalRepo.CountOpen(ctx); err != nil {
		return nil, fmt.Errorf("failed to count open proposals: %w", err)
	}
	return stats, nil
}

// ProposalSummary is a proposal flattened for display, with participant
// first names in place of raw IDs and expiry already applied to the status.
type ProposalSummary struct {
	ID               uuid.UUID             `json:"id"`
	User1Name        string                `json:"user1_name"`
	User2Name        string                `json:"user2_name"`
	Status           domain.ProposalStatus `json:"status"`
	MatchScore       float64               `json:"match_score"`
	ProposedDate     string                `json:"proposed_date"`
	ProposedTime     string                `json:"proposed_time"`
	ProposedActivity string                `json:"proposed_activity"`
	ProposedArea     string                `json:"proposed_area"`
	ExpiresAt        time.Time             `json:"expires_at"`
	CreatedAt        time.Time             `json:"created_at"`
}

func (s *Service) RecentProposals(ctx context.Context, limit int) ([]*ProposalSummary, error) {
	proposals, err := s.proposalRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}

	now := s.now()
	summaries := make([]*ProposalSummary, 0, len(proposals))
	for _, p := range proposals {
		summaries = append(summaries, &ProposalSummary{
			ID:               p.ID,
			User1Name:        s.firstName(ctx, p.User1ID),
			User2Name:        s.firstName(ctx, p.User2ID),
			Status:           p.EffectiveStatus(now),
			MatchScore:       p.MatchScore,
			ProposedDate:     p.ProposedDate,
			ProposedTime:     p.ProposedTime,
			ProposedActivity: p.ProposedActivity,
			ProposedArea:     p.ProposedArea,
			ExpiresAt:        p.ExpiresAt,
			CreatedAt:        p.CreatedAt,
		})
	}
	return summaries, nil
}

func (s *Service) firstName(ctx context.Context, userID uuid.UUID) string {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil || profile.FirstName == "" {
		return "Unknown"
	}
	return profile.FirstName
}

func (s *Service) Users(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.List(ctx, limit, offset)
}
