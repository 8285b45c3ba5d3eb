package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	availableYesMessage = "Yay! 🎉 Let me find you an amazing match for tonight. Give me a few minutes to work my magic! ✨"
	availableNoMessage  = "No worries! I'll check in another time. Have a great evening! 💕"
	optInMessage        = "Welcome back! 💕 Text me anytime and we'll pick up where we left off."
)

// HandleInbound is the full inbound pipeline for one SMS: rate limit,
// carrier-style commands, user bootstrap, message logging, and then either a
// deterministic yes/no handler or a generator step. Returns
// domain.ErrRateLimited when the sender is over the window ceiling; every
// other failure is absorbed here so the webhook can always acknowledge.
func (s *Service) HandleInbound(ctx context.Context, from, body, providerSID string) error {
	allowed, err := s.limiter.Allow(ctx, from)
	if err != nil {
		// Counter store trouble must not take the webhook down with it.
		s.log.Warn("rate limit check failed, allowing message", zap.String("from", from), zap.Error(err))
	} else if !allowed {
		s.log.Info("rate limited inbound message", zap.String("from", from))
		return domain.ErrRateLimited
	}

	text := strings.TrimSpace(body)
	switch strings.ToUpper(text) {
	case "STOP", "STOPALL", "UNSUBSCRIBE", "CANCEL", "QUIT":
		return s.optOut(ctx, from)
	case "START", "UNSTOP", "YES_SUBSCRIBE":
		return s.optIn(ctx, from)
	case "HELP", "INFO":
		return s.sendHelp(ctx, from)
	}

	user, err := s.findOrCreateUser(ctx, from)
	if err != nil {
		return err
	}
	if !user.IsActive {
		s.log.Info("dropping message from inactive user", zap.String("user_id", user.ID.String()))
		return nil
	}

	s.recordInbound(ctx, user.ID, text, providerSID)
	s.audit(ctx, &user.ID, domain.EventSMSReceived, map[string]any{"length": len(text)})

	lock := s.locks.forUser(user.ID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadState(ctx, user.ID)
	if err != nil {
		s.failClosed(ctx, user, "failed to load conversation state", err)
		return nil
	}

	// Bare yes/no answers resolve deterministically before the generator is
	// consulted: an open proposal first, then a pending availability ask.
	if yes, ok := parseYesNo(text); ok {
		handled, err := s.matcher.HandleResponse(ctx, user.ID, yes)
		if err != nil {
			s.failClosed(ctx, user, "proposal response failed", err)
			return nil
		}
		if handled {
			return nil
		}
		if state.CurrentState == domain.PhaseAvailableTonight || state.Context.ExpectingAvailability {
			s.recordAvailability(ctx, user, state, yes)
			return nil
		}
	}

	s.step(ctx, user, state, text)
	return nil
}

func (s *Service) findOrCreateUser(ctx context.Context, phone string) (*domain.User, error) {
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	now := s.now()
	user = &domain.User{
		ID:               uuid.New(),
		Phone:            phone,
		IsActive:         true,
		ConsentTimestamp: &now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.convRepo.Upsert(ctx, domain.NewConversationState(user.ID)); err != nil {
		return nil, fmt.Errorf("failed to seed conversation state: %w", err)
	}
	return user, nil
}

// recordAvailability commits a same-day availability answer and returns the
// conversation to the active phase. A yes kicks off a match run immediately.
func (s *Service) recordAvailability(ctx context.Context, user *domain.User, state *domain.ConversationState, yes bool) {
	date := domain.DateKey(s.now())
	window := &domain.AvailabilityWindow{UserID: user.ID, Date: date, IsAvailable: yes}
	if err := s.availRepo.Create(ctx, window); err != nil {
		s.failClosed(ctx, user, "failed to record availability", err)
		return
	}

	next := *state
	next.CurrentState = domain.PhaseActive
	next.Context.ExpectingAvailability = false
	next.Context.AvailabilityAskedToday = true
	now := s.now()
	next.LastInteraction = &now
	if err := s.commitState(ctx, &next); err != nil {
		s.log.Error("failed to commit state after availability answer",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	reply := availableNoMessage
	if yes {
		reply = availableYesMessage
	}
	if err := s.sender.SendSMS(ctx, user.ID, user.Phone, reply); err != nil {
		s.log.Warn("failed to send availability acknowledgement",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	if yes {
		if err := s.matcher.ProposeFor(ctx, user.ID); err != nil {
			s.log.Error("match run after availability answer failed",
				zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}
}

// MarkAvailabilityAsked flips a user into the available_tonight phase after
// the evening batch sends its invite, so the next yes/no lands on the
// deterministic availability path.
func (s *Service) MarkAvailabilityAsked(ctx context.Context, userID uuid.UUID) error {
	lock := s.locks.forUser(userID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadState(ctx, userID)
	if err != nil {
		return err
	}
	next := *state
	next.CurrentState = domain.PhaseAvailableTonight
	next.Context.AvailabilityAskedToday = true
	next.Context.ExpectingAvailability = true
	return s.commitState(ctx, &next)
}

// optOut honors STOP without sending a reply; the carrier blocks further
// outbound traffic to the number anyway.
func (s *Service) optOut(ctx context.Context, phone string) error {
	err := s.userRepo.SetActive(ctx, phone, false, nil)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if user, lookupErr := s.userRepo.GetByPhone(ctx, phone); lookupErr == nil {
		s.audit(ctx, &user.ID, domain.EventOptOut, nil)
	}
	return nil
}

func (s *Service) optIn(ctx context.Context, phone string) error {
	now := s.now()
	err := s.userRepo.SetActive(ctx, phone, true, &now)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}

	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return err
	}
	s.audit(ctx, &user.ID, domain.EventOptIn, nil)
	if sendErr := s.sender.SendSMS(ctx, user.ID, user.Phone, optInMessage); sendErr != nil {
		s.log.Warn("failed to send opt-in confirmation",
			zap.String("user_id", user.ID.String()), zap.Error(sendErr))
	}
	return nil
}

func (s *Service) sendHelp(ctx context.Context, phone string) error {
	userID := uuid.Nil
	if user, err := s.userRepo.GetByPhone(ctx, phone); err == nil {
		userID = user.ID
	}
	return s.sender.SendSMS(ctx, userID, phone, helpMessage)
}

func (s *Service) recordInbound(ctx context.Context, userID uuid.UUID, text, providerSID string) {
	msg := &domain.Message{
		UserID:    userID,
		Direction: domain.DirectionInbound,
		Content:   text,
	}
	if providerSID != "" {
		msg.ProviderSID = &providerSID
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		s.log.Warn("failed to record inbound message",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (s *Service) audit(ctx context.Context, userID *uuid.UUID, eventType string, data map[string]any) {
	event := &domain.AuditEvent{UserID: userID, EventType: eventType, EventData: data}
	if err := s.auditRepo.Create(ctx, event); err != nil {
		s.log.Warn("failed to record audit event", zap.String("event_type", eventType), zap.Error(err))
	}
}

// parseYesNo recognizes a bare affirmative or negative SMS. Anything longer
// than a one-word answer goes to the generator instead.
func parseYesNo(text string) (yes, ok bool) {
	normalized := strings.ToUpper(strings.TrimRight(strings.TrimSpace(text), ".!?"))
	switch normalized {
	case "YES", "Y", "YEAH", "YEP", "YUP", "SURE":
		return true, true
	case "NO", "N", "NOPE", "NAH":
		return false, true
	}
	return false, false
}
