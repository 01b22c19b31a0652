package medication

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var validAlertTypes = map[string]bool{
	"daily": true, "weekly": true, "monthly": true, "as_needed": true, "custom": true,
}

var validAlertStatuses = map[string]bool{
	"active": true, "paused": true, "completed": true, "cancelled": true,
}

var validPriorities = map[string]bool{
	"low": true, "medium": true, "high": true, "critical": true,
}

var validIntakeStatuses = map[string]bool{
	"taken": true, "missed": true, "partial": true, "late": true, "skipped": true,
}

var timeOfDayRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type Service struct {
	alerts  AlertRepository
	intakes IntakeRepository
}

func NewService(alerts AlertRepository, intakes IntakeRepository) *Service {
	return &Service{alerts: alerts, intakes: intakes}
}

// CreateAlert validates and stores a medication schedule.
func (s *Service) CreateAlert(ctx context.Context, a *Alert) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(a.MedicineName) == "" {
		return fmt.Errorf("medicine_name is required")
	}
	if strings.TrimSpace(a.Dosage) == "" {
		return fmt.Errorf("dosage is required")
	}
	if a.Form == "" {
		a.Form = "tablet"
	}
	if a.AlertType == "" {
		a.AlertType = "daily"
	}
	if !validAlertTypes[a.AlertType] {
		return fmt.Errorf("invalid alert type: %s", a.AlertType)
	}
	if a.TimesPerDay == 0 {
		a.TimesPerDay = 1
	}
	if a.TimesPerDay < 1 || a.TimesPerDay > 10 {
		return fmt.Errorf("times_per_day must be between 1 and 10")
	}
	for _, t := range a.AlertTimes {
		if !timeOfDayRe.MatchString(t) {
			return fmt.Errorf("invalid alert time %q: expected HH:MM", t)
		}
	}
	if len(a.AlertTimes) > a.TimesPerDay {
		return fmt.Errorf("more alert times than times_per_day")
	}
	if a.Priority == "" {
		a.Priority = "medium"
	}
	if !validPriorities[a.Priority] {
		return fmt.Errorf("invalid priority: %s", a.Priority)
	}
	if a.SnoozeMinutes == 0 {
		a.SnoozeMinutes = 15
	}
	if a.SnoozeMinutes < 5 || a.SnoozeMinutes > 60 {
		return fmt.Errorf("snooze_minutes must be between 5 and 60")
	}
	if a.StartDate.IsZero() {
		a.StartDate = time.Now()
	}
	if a.EndDate != nil && a.EndDate.Before(a.StartDate) {
		return fmt.Errorf("end_date cannot precede start_date")
	}
	if a.AlertTimes == nil {
		a.AlertTimes = []string{}
	}
	a.Status = "active"
	a.Enabled = true
	return s.alerts.Create(ctx, a)
}

func (s *Service) GetAlert(ctx context.Context, id uuid.UUID) (*Alert, error) {
	return s.alerts.GetByID(ctx, id)
}

// UpdateAlertStatus moves an alert through its lifecycle. Completed and
// cancelled are terminal.
func (s *Service) UpdateAlertStatus(ctx context.Context, id uuid.UUID, status string) (*Alert, error) {
	if !validAlertStatuses[status] {
		return nil, fmt.Errorf("invalid alert status: %s", status)
	}
	a, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("medicine alert not found")
	}
	if a.Status == "completed" || a.Status == "cancelled" {
		return nil, fmt.Errorf("alert is already %s", a.Status)
	}
	a.Status = status
	if err := s.alerts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) ListAlerts(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error) {
	return s.alerts.ListByPatient(ctx, patientID, limit, offset)
}

// DueToday returns active alerts that should fire on the given day.
func (s *Service) DueToday(ctx context.Context, patientID uuid.UUID, day time.Time) ([]*Alert, error) {
	active, err := s.alerts.ListActiveByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	var due []*Alert
	for _, a := range active {
		if a.ActiveOn(day) {
			due = append(due, a)
		}
	}
	return due, nil
}

// RecordIntake logs what happened at a scheduled dose.
func (s *Service) RecordIntake(ctx context.Context, in *Intake) error {
	if in.AlertID == uuid.Nil {
		return fmt.Errorf("alert_id is required")
	}
	if !validIntakeStatuses[in.Status] {
		return fmt.Errorf("invalid intake status: %s", in.Status)
	}
	if in.ScheduledTime.IsZero() {
		return fmt.Errorf("scheduled_time is required")
	}
	alert, err := s.alerts.GetByID(ctx, in.AlertID)
	if err != nil {
		return fmt.Errorf("medicine alert not found")
	}
	in.PatientID = alert.PatientID
	if (in.Status == "taken" || in.Status == "late" || in.Status == "partial") && in.ActualTime == nil {
		now := time.Now()
		in.ActualTime = &now
	}
	return s.intakes.Create(ctx, in)
}

func (s *Service) ListIntakes(ctx context.Context, alertID uuid.UUID, limit, offset int) ([]*Intake, int, error) {
	return s.intakes.ListByAlert(ctx, alertID, limit, offset)
}

// Adherence computes the weighted intake percentage over the trailing window.
// Returns nil when no doses were scheduled in the window.
func (s *Service) Adherence(ctx context.Context, patientID uuid.UUID, days int) (*AdherenceReport, error) {
	if days <= 0 {
		days = 7
	}
	intakes, err := s.intakes.ListSince(ctx, patientID, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}
	if len(intakes) == 0 {
		return nil, nil
	}
	report := &AdherenceReport{PatientID: patientID, PeriodDays: days, ScheduledDoses: len(intakes)}
	var weighted float64
	for _, in := range intakes {
		w := in.AdherenceWeight()
		weighted += w
		if w >= 1 {
			report.TakenDoses++
		} else if w == 0 {
			report.MissedDoses++
		}
	}
	report.Percentage = math.Round(weighted/float64(len(intakes))*1000) / 10
	return report, nil
}
