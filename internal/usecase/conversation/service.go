package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blindmatch/backend/internal/config"
	"github.com/blindmatch/backend/internal/domain"
	"github.com/blindmatch/backend/internal/repository"
	"github.com/blindmatch/backend/internal/usecase/notify"
	"github.com/blindmatch/backend/internal/usecase/ratelimit"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Generator produces one structured conversation step. Implemented by the
// Gemini client; tests substitute a scripted fake.
type Generator interface {
	GenerateReply(ctx context.Context, persona string, convContext map[string]any, message string) (*domain.GeneratedReply, error)
}

// Embedder turns a profile summary into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Matchmaker is the proposal side the conversation hands off to: yes/no
// answers to open proposals, and match runs triggered by the generator or an
// availability confirmation.
type Matchmaker interface {
	ProposeFor(ctx context.Context, userID uuid.UUID) error
	HandleResponse(ctx context.Context, userID uuid.UUID, yes bool) (bool, error)
}

// Service drives the per-user conversation state machine. Every inbound
// message takes exactly one step: load state, consult the generator, send the
// reply, commit the new state, then run any requested side effects.
type Service struct {
	convRepo    repository.ConversationRepository
	cache       repository.StateCache
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	prefsRepo   repository.PreferencesRepository
	answerRepo  repository.AnswerRepository
	vectorRepo  repository.VectorRepository
	availRepo   repository.AvailabilityRepository
	messageRepo repository.MessageRepository
	auditRepo   repository.AuditRepository
	limiter     *ratelimit.Limiter
	generator   Generator
	embedder    Embedder
	matcher     Matchmaker
	sender      notify.Sender
	log         *zap.Logger
	locks       *userLocks
	cacheTTL    time.Duration
	now         func() time.Time
}

func NewService(
	cfg *config.RedisConfig,
	convRepo repository.ConversationRepository,
	cache repository.StateCache,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	prefsRepo repository.PreferencesRepository,
	answerRepo repository.AnswerRepository,
	vectorRepo repository.VectorRepository,
	availRepo repository.AvailabilityRepository,
	messageRepo repository.MessageRepository,
	auditRepo repository.AuditRepository,
	limiter *ratelimit.Limiter,
	generator Generator,
	embedder Embedder,
	matcher Matchmaker,
	sender notify.Sender,
	log *zap.Logger,
) *Service {
	return &Service{
		convRepo:    convRepo,
		cache:       cache,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		prefsRepo:   prefsRepo,
		answerRepo:  answerRepo,
		vectorRepo:  vectorRepo,
		availRepo:   availRepo,
		messageRepo: messageRepo,
		auditRepo:   auditRepo,
		limiter:     limiter,
		generator:   generator,
		embedder:    embedder,
		matcher:     matcher,
		sender:      sender,
		log:         log,
		locks:       newUserLocks(),
		cacheTTL:    cfg.StateTTL,
		now:         time.Now,
	}
}

// loadState reads conversation state cache-first. A cache error or corrupt
// entry degrades to the durable copy; a user with no row yet starts at "new".
func (s *Service) loadState(ctx context.Context, userID uuid.UUID) (*domain.ConversationState, error) {
	if state, err := s.cache.Get(ctx, userID); err != nil {
		s.log.Warn("conversation cache read failed", zap.String("user_id", userID.String()), zap.Error(err))
	} else if state != nil {
		return state, nil
	}

	state, err := s.convRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			return domain.NewConversationState(userID), nil
		}
		return nil, err
	}
	return state, nil
}

// commitState persists durably first, then refreshes the cache. A cache
// write failure is only logged: the durable copy is the source of truth and
// the next read falls through to it.
func (s *Service) commitState(ctx context.Context, state *domain.ConversationState) error {
	if err := s.convRepo.Upsert(ctx, state); err != nil {
		return fmt.Errorf("failed to persist conversation state: %w", err)
	}
	if err := s.cache.Set(ctx, state, s.cacheTTL); err != nil {
		s.log.Warn("conversation cache write failed",
			zap.String("user_id", state.UserID.String()), zap.Error(err))
	}
	return nil
}

// step runs one generator-driven transition. The caller must hold the user's
// conversation lock. A generator failure, invalid reply, or unmergeable
// context update fails closed: no state is committed and the user gets a
// generic apology.
func (s *Service) step(ctx context.Context, user *domain.User, state *domain.ConversationState, text string) {
	reply, err := s.generator.GenerateReply(ctx, Persona, s.generatorContext(ctx, user, state), text)
	if err != nil {
		s.failClosed(ctx, user, "generator step failed", err)
		return
	}

	phase, err := reply.Phase()
	if err != nil {
		s.failClosed(ctx, user, "generator returned invalid state", err)
		return
	}

	next := *state
	if err := next.Context.Merge(reply.ContextUpdates); err != nil {
		s.failClosed(ctx, user, "generator context update rejected", err)
		return
	}
	next.CurrentState = phase
	now := s.now()
	next.LastInteraction = &now

	if err := s.sender.SendSMS(ctx, user.ID, user.Phone, reply.Message); err != nil {
		// The transition still commits; outbound delivery is fire-and-forget.
		s.log.Warn("failed to send conversation reply",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	if err := s.commitState(ctx, &next); err != nil {
		s.log.Error("conversation state commit failed",
			zap.String("user_id", user.ID.String()), zap.Error(err))
		return
	}

	s.runActions(ctx, user, &next, reply, text)
}

// generatorContext assembles the snapshot the generator sees. Lookups are
// best-effort; a missing profile simply isn't mentioned.
func (s *Service) generatorContext(ctx context.Context, user *domain.User, state *domain.ConversationState) map[string]any {
	convContext := map[string]any{
		"current_state": state.CurrentState,
		"context":       state.Context,
		"is_onboarded":  user.IsOnboarded,
	}

	if profile, err := s.profileRepo.GetByUserID(ctx, user.ID); err == nil {
		convContext["profile"] = profile
	}
	if prefs, err := s.prefsRepo.GetByUserID(ctx, user.ID); err == nil {
		convContext["preferences"] = prefs
	}
	if answers, err := s.answerRepo.ListByUser(ctx, user.ID, 10); err == nil && len(answers) > 0 {
		recent := make([]map[string]string, 0, len(answers))
		for _, a := range answers {
			recent = append(recent, map[string]string{"question": a.Question, "answer": a.Answer})
		}
		convContext["recent_answers"] = recent
	}
	return convContext
}

func (s *Service) failClosed(ctx context.Context, user *domain.User, msg string, err error) {
	s.log.Error(msg, zap.String("user_id", user.ID.String()), zap.Error(err))
	if sendErr := s.sender.SendSMS(ctx, user.ID, user.Phone, apologyMessage); sendErr != nil {
		s.log.Warn("failed to send apology",
			zap.String("user_id", user.ID.String()), zap.Error(sendErr))
	}
}

// runActions executes generator-requested side effects after the reply and
// state commit. Each action is independent and best-effort.
func (s *Service) runActions(ctx context.Context, user *domain.User, state *domain.ConversationState, reply *domain.GeneratedReply, text string) {
	for _, action := range reply.Actions {
		var err error
		switch action {
		case domain.ActionUpdateProfile:
			err = s.applyProfileUpdates(ctx, user, reply.ContextUpdates)
		case domain.ActionRecordAnswer:
			err = s.recordAnswer(ctx, user.ID, reply.ContextUpdates, text)
		case domain.ActionCreateEmbedding:
			err = s.RecomputeEmbedding(ctx, user.ID)
		case domain.ActionCheckAvailability:
			err = s.ensureAvailabilityWindow(ctx, user.ID)
		case domain.ActionFindMatches:
			err = s.matcher.ProposeFor(ctx, user.ID)
		}
		if err != nil {
			s.log.Error("conversation action failed",
				zap.String("user_id", user.ID.String()),
				zap.String("action", action),
				zap.Error(err),
			)
		}
	}
}

// applyProfileUpdates folds generator-extracted fields into the profile and
// preferences rows, then flips the onboarded flag once both are complete
// enough to match on.
func (s *Service) applyProfileUpdates(ctx context.Context, user *domain.User, updates map[string]any) error {
	profile, err := s.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			return err
		}
		profile = &domain.Profile{UserID: user.ID}
	}
	prefs, err := s.prefsRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrPreferencesNotFound) {
			return err
		}
		prefs = &domain.Preferences{UserID: user.ID}
	}

	if v, ok := asString(updates["first_name"]); ok {
		profile.FirstName = v
	}
	if v, ok := asString(updates["birth_date"]); ok {
		if birth, err := time.Parse("2006-01-02", v); err == nil {
			profile.BirthDate = &birth
		}
	}
	if v, ok := asString(updates["city"]); ok {
		profile.City = &v
	}
	if v, ok := asString(updates["gender"]); ok {
		profile.Gender = &v
	}
	if v, ok := asString(updates["bio"]); ok {
		profile.Bio = &v
	}

	if v, ok := asString(updates["orientation"]); ok {
		prefs.Orientation = &v
	}
	if v, ok := asStringSlice(updates["preferred_genders"]); ok {
		prefs.PreferredGenders = v
	}
	if v, ok := asInt(updates["min_age"]); ok {
		prefs.MinAge = v
	}
	if v, ok := asInt(updates["max_age"]); ok {
		prefs.MaxAge = v
	}
	if v, ok := asInt(updates["max_distance_miles"]); ok {
		prefs.MaxDistanceMiles = &v
	}
	if v, ok := asStringSlice(updates["dealbreakers"]); ok {
		prefs.Dealbreakers = v
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	if err := s.prefsRepo.Upsert(ctx, prefs); err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}

	if !user.IsOnboarded && profileComplete(profile, prefs) {
		if err := s.userRepo.SetOnboarded(ctx, user.ID, true); err != nil {
			return fmt.Errorf("failed to mark user onboarded: %w", err)
		}
		user.IsOnboarded = true
	}
	return nil
}

// profileComplete is the minimum the filter needs: a name, an age, a gender,
// and a preference set that admits someone.
func profileComplete(profile *domain.Profile, prefs *domain.Preferences) bool {
	return profile.FirstName != "" &&
		profile.BirthDate != nil &&
		profile.Gender != nil &&
		len(prefs.PreferredGenders) > 0 &&
		prefs.MaxAge > 0
}

func (s *Service) recordAnswer(ctx context.Context, userID uuid.UUID, updates map[string]any, text string) error {
	question, _ := asString(updates["last_question"])
	answer, ok := asString(updates["last_answer"])
	if !ok || answer == "" {
		answer = text
	}
	category, ok := asString(updates["answer_category"])
	if !ok || category == "" {
		category = domain.AnswerCategoryValues
	}

	return s.answerRepo.Create(ctx, &domain.Answer{
		UserID:   userID,
		Question: question,
		Answer:   answer,
		Category: category,
	})
}

// RecomputeEmbedding rebuilds the user's profile summary from current data
// and replaces the stored embedding wholesale.
func (s *Service) RecomputeEmbedding(ctx context.Context, userID uuid.UUID) error {
	summary, err := s.buildSummary(ctx, userID)
	if err != nil {
		return err
	}
	if summary == "" {
		return fmt.Errorf("nothing to embed for user %s", userID)
	}

	embedding, err := s.embedder.Embed(ctx, summary)
	if err != nil {
		return fmt.Errorf("failed to embed summary: %w", err)
	}

	return s.vectorRepo.Upsert(ctx, &domain.EmbeddingVector{
		UserID:    userID,
		Embedding: embedding,
		Summary:   summary,
	})
}

func (s *Service) buildSummary(ctx context.Context, userID uuid.UUID) (string, error) {
	var parts []string

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return "", err
	}
	if profile != nil {
		line := profile.FirstName
		if age := profile.Age(s.now()); age >= 0 {
			line += fmt.Sprintf(", %d", age)
		}
		if profile.City != nil {
			line += ", " + *profile.City
		}
		parts = append(parts, line)
		if profile.Bio != nil && *profile.Bio != "" {
			parts = append(parts, *profile.Bio)
		}
	}

	prefs, err := s.prefsRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrPreferencesNotFound) {
		return "", err
	}
	if prefs != nil && len(prefs.PreferredGenders) > 0 {
		parts = append(parts, "Looking for: "+strings.Join(prefs.PreferredGenders, ", "))
	}

	answers, err := s.answerRepo.ListByUser(ctx, userID, 20)
	if err != nil {
		return "", err
	}
	for _, a := range answers {
		if a.Question != "" {
			parts = append(parts, a.Question+": "+a.Answer)
		} else {
			parts = append(parts, a.Answer)
		}
	}

	return strings.Join(parts, ". "), nil
}

// ensureAvailabilityWindow creates today's window in the undecided state so
// the evening batch knows this user was already asked.
func (s *Service) ensureAvailabilityWindow(ctx context.Context, userID uuid.UUID) error {
	date := domain.DateKey(s.now())
	if _, err := s.availRepo.GetByUserDate(ctx, userID, date); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrAvailabilityNotFound) {
		return err
	}
	return s.availRepo.Create(ctx, &domain.AvailabilityWindow{
		UserID:      userID,
		Date:        date,
		IsAvailable: false,
	})
}

// SetClock overrides the time source for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asStringSlice(v any) ([]string, bool) {
	switch vs := v.(type) {
	case []string:
		return vs, true
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
