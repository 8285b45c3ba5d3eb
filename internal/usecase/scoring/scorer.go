package scoring

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/google/uuid"
)

// Component weights and the minimum viable match threshold. The threshold is
// a tunable constant, not derived from the weights.
const (
	WeightVector     = 0.6
	WeightPreference = 0.2
	WeightValues     = 0.2

	DefaultThreshold = 0.3
)

// Candidate bundles everything the scorer reads about one user. Any field
// may be nil or empty; missing data degrades the affected component to zero
// instead of failing.
type Candidate struct {
	UserID        uuid.UUID
	Profile       *domain.Profile
	Preferences   *domain.Preferences
	Vector        *domain.EmbeddingVector
	ValuesAnswers []*domain.Answer
}

// Score is a scored candidate with its components kept for auditability.
type Score struct {
	UserID           uuid.UUID `json:"user_id"`
	Final            float64   `json:"score"`
	VectorSimilarity float64   `json:"vector_similarity"`
	PreferenceMatch  float64   `json:"preference_match"`
	ValuesOverlap    float64   `json:"values_overlap"`
}

type Scorer struct {
	threshold float64
}

// NewScorer takes the threshold as configured; configuration validation is
// responsible for rejecting values outside (0,1).
func NewScorer(threshold float64) *Scorer {
	return &Scorer{threshold: threshold}
}

func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// Score computes the weighted compatibility of candidate from requester's
// perspective. Pure over its inputs: identical data always produces an
// identical result.
func (s *Scorer) Score(requester, candidate Candidate, now time.Time) Score {
	var requesterVec, candidateVec []float64
	if requester.Vector != nil {
		requesterVec = requester.Vector.Embedding
	}
	if candidate.Vector != nil {
		candidateVec = candidate.Vector.Embedding
	}

	vector := CosineSimilarity(requesterVec, candidateVec)
	preference := preferenceMatch(requester, candidate, now)
	values := valuesOverlap(requester.ValuesAnswers, candidate.ValuesAnswers)

	return Score{
		UserID:           candidate.UserID,
		Final:            WeightVector*vector + WeightPreference*preference + WeightValues*values,
		VectorSimilarity: vector,
		PreferenceMatch:  preference,
		ValuesOverlap:    values,
	}
}

// Rank scores every candidate, discards results at or below the threshold,
// and returns the survivors in descending score order. The sort is stable so
// ties keep the caller's candidate order.
func (s *Scorer) Rank(requester Candidate, candidates []Candidate, now time.Time) []Score {
	scores := make([]Score, 0, len(candidates))
	for _, candidate := range candidates {
		score := s.Score(requester, candidate, now)
		if score.Final > s.threshold {
			scores = append(scores, score)
		}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Final > scores[j].Final
	})
	return scores
}

// CosineSimilarity is dot(a,b) / (|a|·|b|). Absent, zero-length, or
// dimensionally mismatched vectors score 0; absence is a legitimate
// "no signal" case, never an error.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	magnitude := math.Sqrt(normA) * math.Sqrt(normB)
	if magnitude == 0 {
		return 0
	}
	return dot / magnitude
}

// preferenceMatch averages two sub-checks: mutual age-in-range (1.0 both in
// range, 0.5 one side, 0 neither) and same-city (1.0 exact match only).
// Missing data zeroes the affected sub-check but both always contribute to
// the denominator.
func preferenceMatch(requester, candidate Candidate, now time.Time) float64 {
	score := 0.0
	factors := 2.0

	if requester.Preferences != nil && candidate.Preferences != nil &&
		requester.Profile != nil && candidate.Profile != nil {
		requesterAge := requester.Profile.Age(now)
		candidateAge := candidate.Profile.Age(now)

		requesterInRange := candidate.Preferences.AgeInRange(requesterAge)
		candidateInRange := requester.Preferences.AgeInRange(candidateAge)

		switch {
		case requesterInRange && candidateInRange:
			score += 1.0
		case requesterInRange || candidateInRange:
			score += 0.5
		}
	}

	if requester.Profile != nil && candidate.Profile != nil &&
		requester.Profile.City != nil && candidate.Profile.City != nil &&
		*requester.Profile.City != "" &&
		strings.EqualFold(*requester.Profile.City, *candidate.Profile.City) {
		score += 1.0
	}

	return score / factors
}

// valuesOverlap is the Jaccard similarity of keyword sets extracted from the
// two users' values-category answers. No answers on either side means no
// signal, which scores zero.
func valuesOverlap(answers1, answers2 []*domain.Answer) float64 {
	if len(answers1) == 0 || len(answers2) == 0 {
		return 0
	}
	return JaccardOverlap(answerKeywords(answers1), answerKeywords(answers2))
}

func answerKeywords(answers []*domain.Answer) []string {
	parts := make([]string, 0, len(answers))
	for _, a := range answers {
		parts = append(parts, a.Answer)
	}
	return ExtractKeywords(strings.Join(parts, " "))
}
