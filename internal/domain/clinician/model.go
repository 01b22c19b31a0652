package clinician

import (
	"time"

	"github.com/google/uuid"
)

// Profile maps to the clinician_profiles table.
type Profile struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	UserID              uuid.UUID `db:"user_id" json:"user_id"`
	LicenseNumber       string    `db:"license_number" json:"license_number"`
	Specialization      string    `db:"specialization" json:"specialization"`
	YearsExperience     int       `db:"years_experience" json:"years_experience"`
	PhoneNumber         *string   `db:"phone_number" json:"phone_number,omitempty"`
	HospitalAffiliation *string   `db:"hospital_affiliation" json:"hospital_affiliation,omitempty"`
	Department          *string   `db:"department" json:"department,omitempty"`
	MedicalDegree       *string   `db:"medical_degree" json:"medical_degree,omitempty"`
	BoardCertifications []string  `db:"board_certifications" json:"board_certifications"`
	LanguagesSpoken     []string  `db:"languages_spoken" json:"languages_spoken"`
	Active              bool      `db:"active" json:"active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// Assignment links a clinician to a patient. A clinician can hold at most one
// assignment of each type per patient.
type Assignment struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ClinicianID    uuid.UUID  `db:"clinician_id" json:"clinician_id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	AssignmentType string     `db:"assignment_type" json:"assignment_type"`
	Status         string     `db:"status" json:"status"`
	AssignedAt     time.Time  `db:"assigned_at" json:"assigned_at"`
	EndedAt        *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// ClinicalNote is a clinician-authored record of an encounter or assessment.
type ClinicalNote struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	ClinicianID          uuid.UUID  `db:"clinician_id" json:"clinician_id"`
	PatientID            uuid.UUID  `db:"patient_id" json:"patient_id"`
	NoteType             string     `db:"note_type" json:"note_type"`
	Title                string     `db:"title" json:"title"`
	Content              string     `db:"content" json:"content"`
	DiagnosisCodes       []string   `db:"diagnosis_codes" json:"diagnosis_codes"`
	MedicationsPrescribed []string  `db:"medications_prescribed" json:"medications_prescribed"`
	Recommendations      *string    `db:"recommendations" json:"recommendations,omitempty"`
	FollowUpRequired     bool       `db:"follow_up_required" json:"follow_up_required"`
	FollowUpDate         *time.Time `db:"follow_up_date" json:"follow_up_date,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// TreatmentPlan maps to the treatment_plans table.
type TreatmentPlan struct {
	ID                     uuid.UUID  `db:"id" json:"id"`
	ClinicianID            uuid.UUID  `db:"clinician_id" json:"clinician_id"`
	PatientID              uuid.UUID  `db:"patient_id" json:"patient_id"`
	Title                  string     `db:"title" json:"title"`
	Description            *string    `db:"description" json:"description,omitempty"`
	Status                 string     `db:"status" json:"status"`
	Priority               string     `db:"priority" json:"priority"`
	Goals                  []string   `db:"goals" json:"goals"`
	Interventions          []string   `db:"interventions" json:"interventions"`
	Medications            []string   `db:"medications" json:"medications"`
	LifestyleModifications []string   `db:"lifestyle_modifications" json:"lifestyle_modifications"`
	StartDate              time.Time  `db:"start_date" json:"start_date"`
	EndDate                *time.Time `db:"end_date" json:"end_date,omitempty"`
	ReviewDate             *time.Time `db:"review_date" json:"review_date,omitempty"`
	ProgressNotes          *string    `db:"progress_notes" json:"progress_notes,omitempty"`
	AdherenceScore         *float64   `db:"adherence_score" json:"adherence_score,omitempty"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

// DueForReview reports whether the plan's review date has passed.
func (p *TreatmentPlan) DueForReview(now time.Time) bool {
	return p.ReviewDate != nil && p.Status == "active" && !p.ReviewDate.After(now)
}
