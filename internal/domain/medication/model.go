package medication

import (
	"time"

	"github.com/google/uuid"
)

// Alert is a scheduled medication reminder.
type Alert struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	MedicineName  string     `db:"medicine_name" json:"medicine_name"`
	Dosage        string     `db:"dosage" json:"dosage"`
	Form          string     `db:"form" json:"form"`
	Instructions  *string    `db:"instructions" json:"instructions,omitempty"`
	AlertType     string     `db:"alert_type" json:"alert_type"`
	TimesPerDay   int        `db:"times_per_day" json:"times_per_day"`
	AlertTimes    []string   `db:"alert_times" json:"alert_times"`
	Priority      string     `db:"priority" json:"priority"`
	SnoozeMinutes int        `db:"snooze_minutes" json:"snooze_minutes"`
	StartDate     time.Time  `db:"start_date" json:"start_date"`
	EndDate       *time.Time `db:"end_date" json:"end_date,omitempty"`
	Status        string     `db:"status" json:"status"`
	Enabled       bool       `db:"enabled" json:"enabled"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// ActiveOn reports whether the alert should fire on the given day.
func (a *Alert) ActiveOn(day time.Time) bool {
	if a.Status != "active" || !a.Enabled {
		return false
	}
	if day.Before(a.StartDate) {
		return false
	}
	if a.EndDate != nil && day.After(*a.EndDate) {
		return false
	}
	return true
}

// Intake records what actually happened at a scheduled dose.
type Intake struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	AlertID       uuid.UUID  `db:"alert_id" json:"alert_id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	ScheduledTime time.Time  `db:"scheduled_time" json:"scheduled_time"`
	ActualTime    *time.Time `db:"actual_time" json:"actual_time,omitempty"`
	Status        string     `db:"status" json:"status"`
	DosageTaken   *string    `db:"dosage_taken" json:"dosage_taken,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	SideEffects   *string    `db:"side_effects" json:"side_effects,omitempty"`
	RecordedAt    time.Time  `db:"recorded_at" json:"recorded_at"`
}

// Counted reports whether the intake counts toward adherence. Taken and late
// doses count fully, partial counts half, missed and skipped count zero.
func (i *Intake) AdherenceWeight() float64 {
	switch i.Status {
	case "taken", "late":
		return 1
	case "partial":
		return 0.5
	default:
		return 0
	}
}

// AdherenceReport summarizes intake behavior over a trailing window.
type AdherenceReport struct {
	PatientID      uuid.UUID `json:"patient_id"`
	PeriodDays     int       `json:"period_days"`
	ScheduledDoses int       `json:"scheduled_doses"`
	TakenDoses     int       `json:"taken_doses"`
	MissedDoses    int       `json:"missed_doses"`
	Percentage     float64   `json:"percentage"`
}
