package matching

import (
	"context"
	"sort"
	"time"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/google/uuid"
)

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
	var out []*domain.User
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Phone < out[j].Phone })
	return out, nil
}

func (f *fakeUserRepo) CountAll(ctx context.Context) (int, error) { return len(f.users), nil }

func (f *fakeUserRepo) CountActive(ctx context.Context) (int, error) {
	n := 0
	for _, u := range f.users {
		if u.IsActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserRepo) CountOnboarded(ctx context.Context) (int, error) {
	n := 0
	for _, u := range f.users {
		if u.IsOnboarded {
			n++
		}
	}
	return n, nil
}

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

type fakeAnswerRepo struct {
	answers map[uuid.UUID][]*domain.Answer
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{answers: make(map[uuid.UUID][]*domain.Answer)}
}

func (f *fakeAnswerRepo) Create(ctx context.Context, answer *domain.Answer) error {
	f.answers[answer.UserID] = append(f.answers[answer.UserID], answer)
	return nil
}

func (f *fakeAnswerRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Answer, error) {
	return f.answers[userID], nil
}

func (f *fakeAnswerRepo) ListByUserCategory(ctx context.Context, userID uuid.UUID, category string) ([]*domain.Answer, error) {
	var out []*domain.Answer
	for _, a := range f.answers[userID] {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out, nil
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
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (f *fakeAvailRepo) CountAvailable(ctx context.Context, date string) (int, error) {
	ids, _ := f.ListAvailableUserIDs(ctx, date)
	return len(ids), nil
}

type fakeProposalRepo struct {
	proposals map[uuid.UUID]*domain.MatchProposal
	order     []uuid.UUID

	// afterGetOpen runs once after a successful read, letting a test slip a
	// competing write between a caller's read and its update.
	afterGetOpen func()
}

func newFakeProposalRepo() *fakeProposalRepo {
	return &fakeProposalRepo{proposals: make(map[uuid.UUID]*domain.MatchProposal)}
}

func (f *fakeProposalRepo) Create(ctx context.Context, proposal *domain.MatchProposal) error {
	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}
	proposal.CreatedAt = time.Now()
	f.proposals[proposal.ID] = proposal
	f.order = append(f.order, proposal.ID)
	return nil
}

func (f *fakeProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MatchProposal, error) {
	proposal, ok := f.proposals[id]
	if !ok {
		return nil, domain.ErrProposalNotFound
	}
	return proposal, nil
}

func (f *fakeProposalRepo) GetOpenForUser(ctx context.Context, userID uuid.UUID) (*domain.MatchProposal, error) {
	for i := len(f.order) - 1; i >= 0; i-- {
		p := f.proposals[f.order[i]]
		if p.Status == domain.ProposalProposed && p.HasUser(userID) {
			snapshot := *p
			if f.afterGetOpen != nil {
				hook := f.afterGetOpen
				f.afterGetOpen = nil
				hook()
			}
			return &snapshot, nil
		}
	}
	return nil, domain.ErrProposalNotFound
}

func (f *fakeProposalRepo) ExistsForUserOnDate(ctx context.Context, userID uuid.UUID, date string) (bool, error) {
	for _, p := range f.proposals {
		if p.ProposedDate == date && p.HasUser(userID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProposalRepo) RecordResponse(ctx context.Context, id, userID uuid.UUID, response domain.ProposalResponse) (*domain.MatchProposal, error) {
	proposal, ok := f.proposals[id]
	if !ok || proposal.Status != domain.ProposalProposed || !proposal.HasUser(userID) {
		return nil, domain.ErrProposalNotFound
	}
	if proposal.User1ID == userID {
		proposal.User1Response = response
	} else {
		proposal.User2Response = response
	}
	if proposal.User1Response != domain.ResponsePending && proposal.User2Response != domain.ResponsePending {
		if proposal.User1Response == domain.ResponseYes && proposal.User2Response == domain.ResponseYes {
			proposal.Status = domain.ProposalAccepted
		} else {
			proposal.Status = domain.ProposalDeclined
		}
	}
	snapshot := *proposal
	return &snapshot, nil
}

func (f *fakeProposalRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProposalStatus) error {
	proposal, ok := f.proposals[id]
	if !ok {
		return domain.ErrProposalNotFound
	}
	proposal.Status = status
	return nil
}

func (f *fakeProposalRepo) ListRecent(ctx context.Context, limit int) ([]*domain.MatchProposal, error) {
	var out []*domain.MatchProposal
	for i := len(f.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.proposals[f.order[i]])
	}
	return out, nil
}

func (f *fakeProposalRepo) CountOpen(ctx context.Context) (int, error) {
	n := 0
	for _, p := range f.proposals {
		if p.Status == domain.ProposalProposed {
			n++
		}
	}
	return n, nil
}

type sentSMS struct {
	UserID uuid.UUID
	Phone  string
	Body   string
}

type fakeSender struct {
	sent []sentSMS
	err  error
}

func (f *fakeSender) SendSMS(ctx context.Context, userID uuid.UUID, phone, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentSMS{UserID: userID, Phone: phone, Body: body})
	return nil
}

func (f *fakeSender) bodiesFor(userID uuid.UUID) []string {
	var out []string
	for _, s := range f.sent {
		if s.UserID == userID {
			out = append(out, s.Body)
		}
	}
	return out
}
