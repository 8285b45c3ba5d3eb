package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProposalStatus string

const (
	ProposalProposed ProposalStatus = "proposed"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalDeclined ProposalStatus = "declined"
	ProposalExpired  ProposalStatus = "expired"
)

type ProposalResponse string

const (
	ResponsePending ProposalResponse = "pending"
	ResponseYes     ProposalResponse = "yes"
	ResponseNo      ProposalResponse = "no"
)

// MatchProposal is a two-party suggested date with its own response and
// expiry lifecycle. Status is authoritative only after lazy expiry has been
// applied; readers must go through EffectiveStatus.
type MatchProposal struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	User1ID          uuid.UUID        `json:"user1_id" db:"user1_id"`
	User2ID          uuid.UUID        `json:"user2_id" db:"user2_id"`
	Status           ProposalStatus   `json:"status" db:"status"`
	MatchScore       float64          `json:"match_score" db:"match_score"`
	ProposedDate     string           `json:"proposed_date" db:"proposed_date"`
	ProposedTime     string           `json:"proposed_time" db:"proposed_time"`
	ProposedActivity string           `json:"proposed_activity" db:"proposed_activity"`
	ProposedArea     string           `json:"proposed_area" db:"proposed_area"`
	User1Response    ProposalResponse `json:"user1_response" db:"user1_response"`
	User2Response    ProposalResponse `json:"user2_response" db:"user2_response"`
	ExpiresAt        time.Time        `json:"expires_at" db:"expires_at"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}

func (m *MatchProposal) HasUser(userID uuid.UUID) bool {
	return m.User1ID == userID || m.User2ID == userID
}

func (m *MatchProposal) OtherUserID(userID uuid.UUID) (uuid.UUID, bool) {
	if m.User1ID == userID {
		return m.User2ID, true
	}
	if m.User2ID == userID {
		return m.User1ID, true
	}
	return uuid.Nil, false
}

// IsTerminal reports whether the stored status can no longer change.
func (m *MatchProposal) IsTerminal() bool {
	return m.Status == ProposalAccepted || m.Status == ProposalDeclined || m.Status == ProposalExpired
}

// EffectiveStatus applies lazy expiry at read time: a still-proposed record
// whose expiry timestamp has passed reads as expired. Terminal states are
// returned unchanged, so an accepted or declined proposal never expires
// retroactively.
func (m *MatchProposal) EffectiveStatus(now time.Time) ProposalStatus {
	if m.Status == ProposalProposed && !now.Before(m.ExpiresAt) {
		return ProposalExpired
	}
	return m.Status
}

// Respond records one side's answer and resolves the proposal once both
// sides have responded: both yes accepts, any no declines. Responding to a
// terminal or expired proposal is an error.
func (m *MatchProposal) Respond(userID uuid.UUID, yes bool, now time.Time) error {
	if !m.HasUser(userID) {
		return ErrNotParticipant
	}
	if m.EffectiveStatus(now) != ProposalProposed {
		return ErrProposalTerminal
	}

	answer := ResponseNo
	if yes {
		answer = ResponseYes
	}
	if m.User1ID == userID {
		m.User1Response = answer
	} else {
		m.User2Response = answer
	}

	if m.User1Response == ResponsePending || m.User2Response == ResponsePending {
		return nil
	}
	if m.User1Response == ResponseYes && m.User2Response == ResponseYes {
		m.Status = ProposalAccepted
	} else {
		m.Status = ProposalDeclined
	}
	return nil
}
