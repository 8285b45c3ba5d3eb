package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testProposal(expiresAt time.Time) *MatchProposal {
	return &MatchProposal{
		ID:            uuid.New(),
		User1ID:       uuid.New(),
		User2ID:       uuid.New(),
		Status:        ProposalProposed,
		User1Response: ResponsePending,
		User2Response: ResponsePending,
		ExpiresAt:     expiresAt,
	}
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC)

	open := testProposal(now.Add(time.Hour))
	if got := open.EffectiveStatus(now); got != ProposalProposed {
		t.Fatalf("EffectiveStatus before expiry = %s, want proposed", got)
	}

	expired := testProposal(now.Add(-time.Minute))
	if got := expired.EffectiveStatus(now); got != ProposalExpired {
		t.Fatalf("EffectiveStatus after expiry = %s, want expired", got)
	}

	atBoundary := testProposal(now)
	if got := atBoundary.EffectiveStatus(now); got != ProposalExpired {
		t.Fatalf("EffectiveStatus at the expiry instant = %s, want expired", got)
	}

	// Terminal states never expire retroactively.
	accepted := testProposal(now.Add(-time.Hour))
	accepted.Status = ProposalAccepted
	if got := accepted.EffectiveStatus(now); got != ProposalAccepted {
		t.Fatalf("EffectiveStatus for accepted = %s, want accepted", got)
	}
}

func TestRespondBothYesAccepts(t *testing.T) {
	now := time.Now()
	p := testProposal(now.Add(time.Hour))

	if err := p.Respond(p.User1ID, true, now); err != nil {
		t.Fatalf("first response failed: %v", err)
	}
	if p.Status != ProposalProposed {
		t.Fatalf("status resolved after one response: %s", p.Status)
	}
	if err := p.Respond(p.User2ID, true, now); err != nil {
		t.Fatalf("second response failed: %v", err)
	}
	if p.Status != ProposalAccepted {
		t.Fatalf("status = %s, want accepted", p.Status)
	}
}

func TestRespondAnyNoDeclines(t *testing.T) {
	now := time.Now()
	p := testProposal(now.Add(time.Hour))

	if err := p.Respond(p.User1ID, true, now); err != nil {
		t.Fatalf("yes response failed: %v", err)
	}
	if err := p.Respond(p.User2ID, false, now); err != nil {
		t.Fatalf("no response failed: %v", err)
	}
	if p.Status != ProposalDeclined {
		t.Fatalf("status = %s, want declined", p.Status)
	}
}

func TestRespondNonParticipant(t *testing.T) {
	now := time.Now()
	p := testProposal(now.Add(time.Hour))

	err := p.Respond(uuid.New(), true, now)
	if !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("err = %v, want ErrNotParticipant", err)
	}
}

func TestRespondAfterExpiry(t *testing.T) {
	now := time.Now()
	p := testProposal(now.Add(-time.Minute))

	err := p.Respond(p.User1ID, true, now)
	if !errors.Is(err, ErrProposalTerminal) {
		t.Fatalf("err = %v, want ErrProposalTerminal", err)
	}
	if p.User1Response != ResponsePending {
		t.Fatalf("expired proposal recorded a response")
	}
}

func TestRespondTerminalIsImmutable(t *testing.T) {
	now := time.Now()
	p := testProposal(now.Add(time.Hour))
	p.Status = ProposalDeclined

	err := p.Respond(p.User1ID, true, now)
	if !errors.Is(err, ErrProposalTerminal) {
		t.Fatalf("err = %v, want ErrProposalTerminal", err)
	}
}

func TestOtherUserID(t *testing.T) {
	p := testProposal(time.Now().Add(time.Hour))

	other, ok := p.OtherUserID(p.User1ID)
	if !ok || other != p.User2ID {
		t.Fatalf("OtherUserID(user1) = %s, %v", other, ok)
	}
	if _, ok := p.OtherUserID(uuid.New()); ok {
		t.Fatalf("OtherUserID accepted a non-participant")
	}
}
