package conversation

import (
	"context"
	"sort"
	"time"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/google/uuid"
)

type fakeConvRepo struct {
	states map[uuid.UUID]*domain.ConversationState
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{states: make(map[uuid.UUID]*domain.ConversationState)}
}

func (f *fakeConvRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.ConversationState, error) {
	state, ok := f.states[userID]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	copied := *state
	return &copied, nil
}

func (f *fakeConvRepo) Upsert(ctx context.Context, state *domain.ConversationState) error {
	copied := *state
	f.states[state.UserID] = &copied
	return nil
}

type fakeStateCache struct {
	states  map[uuid.UUID]*domain.ConversationState
	lastTTL time.Duration
	getErr  error
}

func newFakeStateCache() *fakeStateCache {
	return &fakeStateCache{states: make(map[uuid.UUID]*domain.ConversationState)}
}

func (f *fakeStateCache) Get(ctx context.Context, userID uuid.UUID) (*domain.ConversationState, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	state, ok := f.states[userID]
	if !ok {
		return nil, nil
	}
	copied := *state
	return &copied, nil
}

func (f *fakeStateCache) Set(ctx context.Context, state *domain.ConversationState, ttl time.Duration) error {
	copied := *state
	f.states[state.UserID] = &copied
	f.lastTTL = ttl
	return nil
}

func (f *fakeStateCache) Delete(ctx context.Context, userID uuid.UUID) error {
	delete(f.states, userID)
	return nil
}

type fakeCounterStore struct {
	counts map[string]int64
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{counts: make(map[string]int64)}
}

func (f *fakeCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) SetActive(ctx context.Context, phone string, active bool, consentAt *time.Time) error {
	for _, u := range f.users {
		if u.Phone == phone {
			u.IsActive = active
			if consentAt != nil {
				u.ConsentTimestamp = consentAt
			}
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (f *fakeUserRepo) SetOnboarded(ctx context.Context, id uuid.UUID, onboarded bool) error {
	user, ok := f.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.IsOnboarded = onboarded
	return nil
}

func (f *fakeUserRepo) ListActiveOnboarded(ctx context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range f.users {
		if u.IsActive && u.IsOnboarded {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Phone < out[j].Phone })
	return out, nil
}

func (f *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) CountAll(ctx context.Context) (int, error)       { return len(f.users), nil }
func (f *fakeUserRepo) CountActive(ctx context.Context) (int, error)    { return 0, nil }
func (f *fakeUserRepo) CountOnboarded(ctx context.Context) (int, error) { return 0, nil }

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*domain.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*domain.Profile)}
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, profile *domain.Profile) error {
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return profile, nil
}

type fakePrefsRepo struct {
	prefs map[uuid.UUID]*domain.Preferences
}

func newFakePrefsRepo() *fakePrefsRepo {
	return &fakePrefsRepo{prefs: make(map[uuid.UUID]*domain.Preferences)}
}

func (f *fakePrefsRepo) Upsert(ctx context.Context, prefs *domain.Preferences) error {
	f.prefs[prefs.UserID] = prefs
	return nil
}

func (f *fakePrefsRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Preferences, error) {
	prefs, ok := f.prefs[userID]
	if !ok {
		return nil, domain.ErrPreferencesNotFound
	}
	return prefs, nil
}

type fakeAnswerRepo struct {
	answers []*domain.Answer
}

func (f *fakeAnswerRepo) Create(ctx context.Context, answer *domain.Answer) error {
	f.answers = append(f.answers, answer)
	return nil
}

func (f *fakeAnswerRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Answer, error) {
	var out []*domain.Answer
	for _, a := range f.answers {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAnswerRepo) ListByUserCategory(ctx context.Context, userID uuid.UUID, category string) ([]*domain.Answer, error) {
	var out []*domain.Answer
	for _, a := range f.answers {
		if a.UserID == userID && a.Category == category {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeVectorRepo struct {
	vectors map[uuid.UUID]*domain.EmbeddingVector
}

func newFakeVectorRepo() *fakeVectorRepo {
	return &fakeVectorRepo{vectors: make(map[uuid.UUID]*domain.EmbeddingVector)}
}

func (f *fakeVectorRepo) Upsert(ctx context.Context, vector *domain.EmbeddingVector) error {
	f.vectors[vector.UserID] = vector
	return nil
}

func (f *fakeVectorRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.EmbeddingVector, error) {
	vector, ok := f.vectors[userID]
	if !ok {
		return nil, domain.ErrVectorNotFound
	}
	return vector, nil
}

type fakeAvailRepo struct {
	windows map[string]map[uuid.UUID]*domain.AvailabilityWindow
}

func newFakeAvailRepo() *fakeAvailRepo {
	return &fakeAvailRepo{windows: make(map[string]map[uuid.UUID]*domain.AvailabilityWindow)}
}

func (f *fakeAvailRepo) Create(ctx context.Context, window *domain.AvailabilityWindow) error {
	if f.windows[window.Date] == nil {
		f.windows[window.Date] = make(map[uuid.UUID]*domain.AvailabilityWindow)
	}
	f.windows[window.Date][window.UserID] = window
	return nil
}

func (f *fakeAvailRepo) GetByUserDate(ctx context.Context, userID uuid.UUID, date string) (*domain.AvailabilityWindow, error) {
	window, ok := f.windows[date][userID]
	if !ok {
		return nil, domain.ErrAvailabilityNotFound
	}
	return window, nil
}

func (f *fakeAvailRepo) SetAvailable(ctx context.Context, userID uuid.UUID, date string, available bool) error {
	window, ok := f.windows[date][userID]
	if !ok {
		return domain.ErrAvailabilityNotFound
	}
	window.IsAvailable = available
	return nil
}

func (f *fakeAvailRepo) ListAvailableUserIDs(ctx context.Context, date string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, window := range f.windows[date] {
		if window.IsAvailable {
			ids = append(ids, window.UserID)
		}
	}
	return ids, nil
}

func (f *fakeAvailRepo) CountAvailable(ctx context.Context, date string) (int, error) {
	ids, _ := f.ListAvailableUserIDs(ctx, date)
	return len(ids), nil
}

type fakeMessageRepo struct {
	messages []*domain.Message
}

func (f *fakeMessageRepo) Create(ctx context.Context, message *domain.Message) error {
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeMessageRepo) UpdateDeliveryStatus(ctx context.Context, providerSID, status string, errorCode *string) error {
	return nil
}

func (f *fakeMessageRepo) GetUserIDBySID(ctx context.Context, providerSID string) (*domain.Message, error) {
	return nil, domain.ErrUserNotFound
}

type fakeAuditRepo struct {
	events []*domain.AuditEvent
}

func (f *fakeAuditRepo) Create(ctx context.Context, event *domain.AuditEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeGenerator struct {
	reply       *domain.GeneratedReply
	err         error
	calls       int
	lastContext map[string]any
	lastMessage string
}

func (f *fakeGenerator) GenerateReply(ctx context.Context, persona string, convContext map[string]any, message string) (*domain.GeneratedReply, error) {
	f.calls++
	f.lastContext = convContext
	f.lastMessage = message
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

type fakeEmbedder struct {
	vector   []float64
	lastText string
	calls    int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	f.lastText = text
	return f.vector, nil
}

type fakeMatcher struct {
	handled      bool
	handleErr    error
	responses    []bool
	proposeCalls []uuid.UUID
}

func (f *fakeMatcher) ProposeFor(ctx context.Context, userID uuid.UUID) error {
	f.proposeCalls = append(f.proposeCalls, userID)
	return nil
}

func (f *fakeMatcher) HandleResponse(ctx context.Context, userID uuid.UUID, yes bool) (bool, error) {
	if f.handleErr != nil {
		return false, f.handleErr
	}
	f.responses = append(f.responses, yes)
	return f.handled, nil
}

type sentSMS struct {
	UserID uuid.UUID
	Phone  string
	Body   string
}

type fakeSender struct {
	sent []sentSMS
}

func (f *fakeSender) SendSMS(ctx context.Context, userID uuid.UUID, phone, body string) error {
	f.sent = append(f.sent, sentSMS{UserID: userID, Phone: phone, Body: body})
	return nil
}

func (f *fakeSender) lastBody() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].Body
}
