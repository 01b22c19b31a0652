package patient

import (
	"time"

	"github.com/google/uuid"
)

// Profile maps to the patient_profiles table. It extends a user account with
// the medical and contact information the care workflows need. Profiles are
// never hard-deleted; Delete deactivates the row.
type Profile struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	UserID            uuid.UUID  `db:"user_id" json:"user_id"`
	DateOfBirth       time.Time  `db:"date_of_birth" json:"date_of_birth"`
	Gender            string     `db:"gender" json:"gender"`
	PhoneNumber       *string    `db:"phone_number" json:"phone_number,omitempty"`
	EmergencyContact  *string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
	EmergencyPhone    *string    `db:"emergency_phone" json:"emergency_phone,omitempty"`
	ChronicConditions []string   `db:"chronic_conditions" json:"chronic_conditions"`
	Medications       *string    `db:"medications" json:"medications,omitempty"`
	Allergies         *string    `db:"allergies" json:"allergies,omitempty"`
	StabilityScore    float64    `db:"stability_score" json:"stability_score"`
	RiskLevel         string     `db:"risk_level" json:"risk_level"`
	LastAssessment    *time.Time `db:"last_assessment" json:"last_assessment,omitempty"`
	Active            bool       `db:"active" json:"active"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Age returns the patient's age in whole years at the given time.
func (p *Profile) Age(now time.Time) int {
	years := now.Year() - p.DateOfBirth.Year()
	anniversary := p.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// HasCondition reports whether the profile lists the chronic condition.
func (p *Profile) HasCondition(name string) bool {
	for _, c := range p.ChronicConditions {
		if c == name {
			return true
		}
	}
	return false
}

// HealthGoal maps to the health_goals table.
type HealthGoal struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	GoalType     string     `db:"goal_type" json:"goal_type"`
	Title        string     `db:"title" json:"title"`
	Description  *string    `db:"description" json:"description,omitempty"`
	TargetValue  float64    `db:"target_value" json:"target_value"`
	CurrentValue float64    `db:"current_value" json:"current_value"`
	Unit         string     `db:"unit" json:"unit"`
	TargetDate   *time.Time `db:"target_date" json:"target_date,omitempty"`
	Status       string     `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Progress returns completion as a percentage, capped at 100.
func (g *HealthGoal) Progress() float64 {
	if g.TargetValue <= 0 {
		return 0
	}
	pct := g.CurrentValue / g.TargetValue * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// Note maps to the patient_notes table. Notes can be written by the patient
// or a clinician; private notes are visible to clinicians only.
type Note struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	NoteType  string    `db:"note_type" json:"note_type"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	AuthorID  uuid.UUID `db:"author_id" json:"author_id"`
	Private   bool      `db:"private" json:"private"`
	Tags      []string  `db:"tags" json:"tags"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
