package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Phone            string     `json:"phone" db:"phone"`
	IsActive         bool       `json:"is_active" db:"is_active"`
	IsOnboarded      bool       `json:"is_onboarded" db:"is_onboarded"`
	ConsentTimestamp *time.Time `json:"consent_timestamp" db:"consent_timestamp"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

type Profile struct {
	ID        int        `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	FirstName string     `json:"first_name" db:"first_name"`
	BirthDate *time.Time `json:"birth_date" db:"birth_date"`
	City      *string    `json:"city" db:"city"`
	Gender    *string    `json:"gender" db:"gender"`
	Bio       *string    `json:"bio" db:"bio"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Age returns the profile holder's age in whole years at the given instant,
// or -1 when the birth date is unknown.
func (p *Profile) Age(now time.Time) int {
	if p == nil || p.BirthDate == nil {
		return -1
	}
	birth := *p.BirthDate
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

type Preferences struct {
	ID               int       `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	Orientation      *string   `json:"orientation" db:"orientation"`
	PreferredGenders []string  `json:"preferred_genders" db:"preferred_genders"`
	MinAge           int       `json:"min_age" db:"min_age"`
	MaxAge           int       `json:"max_age" db:"max_age"`
	MaxDistanceMiles *int      `json:"max_distance_miles" db:"max_distance_miles"`
	Dealbreakers     []string  `json:"dealbreakers" db:"dealbreakers"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// AcceptsGender reports whether the preference set admits the given gender.
// An "any" entry admits everything; an unset gender is never admitted.
func (p *Preferences) AcceptsGender(gender *string) bool {
	if p == nil || gender == nil {
		return false
	}
	for _, g := range p.PreferredGenders {
		if g == "any" || g == *gender {
			return true
		}
	}
	return false
}

// AgeInRange reports whether age falls inside the accepted [MinAge, MaxAge]
// range. Unknown ages (negative) are never in range.
func (p *Preferences) AgeInRange(age int) bool {
	if p == nil || age < 0 {
		return false
	}
	return age >= p.MinAge && age <= p.MaxAge
}

// Answer is one entry of the append-only question/answer log.
type Answer struct {
	ID        int       `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	Category  string    `json:"category" db:"category"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const AnswerCategoryValues = "values"
