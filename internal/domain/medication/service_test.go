package medication

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockAlertRepo struct{ store map[uuid.UUID]*Alert }

func newMockAlertRepo() *mockAlertRepo { return &mockAlertRepo{store: make(map[uuid.UUID]*Alert)} }
func (m *mockAlertRepo) Create(_ context.Context, a *Alert) error {
	a.ID = uuid.New(); a.CreatedAt = time.Now(); m.store[a.ID] = a; return nil
}
func (m *mockAlertRepo) GetByID(_ context.Context, id uuid.UUID) (*Alert, error) {
	a, ok := m.store[id]; if !ok { return nil, fmt.Errorf("not found") }; return a, nil
}
func (m *mockAlertRepo) Update(_ context.Context, a *Alert) error {
	if _, ok := m.store[a.ID]; !ok { return fmt.Errorf("not found") }; m.store[a.ID] = a; return nil
}
func (m *mockAlertRepo) ListByPatient(_ context.Context, pid uuid.UUID, limit, offset int) ([]*Alert, int, error) {
	var r []*Alert; for _, a := range m.store { if a.PatientID == pid { r = append(r, a) } }; return r, len(r), nil
}
func (m *mockAlertRepo) ListActiveByPatient(_ context.Context, pid uuid.UUID) ([]*Alert, error) {
	var r []*Alert
	for _, a := range m.store {
		if a.PatientID == pid && a.Status == "active" && a.Enabled { r = append(r, a) }
	}
	return r, nil
}

type mockIntakeRepo struct{ store []*Intake }

func (m *mockIntakeRepo) Create(_ context.Context, i *Intake) error {
	i.ID = uuid.New(); i.RecordedAt = time.Now(); m.store = append(m.store, i); return nil
}
func (m *mockIntakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Intake, error) {
	for _, i := range m.store { if i.ID == id { return i, nil } }; return nil, fmt.Errorf("not found")
}
func (m *mockIntakeRepo) ListByAlert(_ context.Context, aid uuid.UUID, limit, offset int) ([]*Intake, int, error) {
	var r []*Intake; for _, i := range m.store { if i.AlertID == aid { r = append(r, i) } }; return r, len(r), nil
}
func (m *mockIntakeRepo) ListSince(_ context.Context, pid uuid.UUID, since time.Time) ([]*Intake, error) {
	var r []*Intake
	for _, i := range m.store {
		if i.PatientID == pid && !i.ScheduledTime.Before(since) { r = append(r, i) }
	}
	return r, nil
}

func newTestService() *Service {
	return NewService(newMockAlertRepo(), &mockIntakeRepo{})
}

func validAlert() *Alert {
	return &Alert{
		PatientID:    uuid.New(),
		MedicineName: "Lisinopril",
		Dosage:       "10mg",
		AlertTimes:   []string{"08:00"},
	}
}

func TestCreateAlert_Defaults(t *testing.T) {
	svc := newTestService()
	a := validAlert()
	if err := svc.CreateAlert(context.Background(), a); err != nil { t.Fatalf("unexpected error: %v", err) }
	if a.AlertType != "daily" { t.Errorf("expected default type 'daily', got %q", a.AlertType) }
	if a.Status != "active" { t.Errorf("expected status 'active', got %q", a.Status) }
	if a.Priority != "medium" { t.Errorf("expected default priority 'medium', got %q", a.Priority) }
	if a.TimesPerDay != 1 { t.Errorf("expected default times_per_day 1, got %d", a.TimesPerDay) }
	if a.SnoozeMinutes != 15 { t.Errorf("expected default snooze 15, got %d", a.SnoozeMinutes) }
	if !a.Enabled { t.Error("new alerts should be enabled") }
}

func TestCreateAlert_InvalidTime(t *testing.T) {
	svc := newTestService()
	a := validAlert()
	a.AlertTimes = []string{"25:00"}
	if err := svc.CreateAlert(context.Background(), a); err == nil { t.Fatal("expected time format error") }
	a.AlertTimes = []string{"8am"}
	if err := svc.CreateAlert(context.Background(), a); err == nil { t.Fatal("expected time format error") }
}

func TestCreateAlert_TooManyTimes(t *testing.T) {
	svc := newTestService()
	a := validAlert()
	a.TimesPerDay = 1
	a.AlertTimes = []string{"08:00", "20:00"}
	if err := svc.CreateAlert(context.Background(), a); err == nil { t.Fatal("expected times mismatch error") }
}

func TestCreateAlert_TimesPerDayRange(t *testing.T) {
	svc := newTestService()
	a := validAlert()
	a.TimesPerDay = 11
	if err := svc.CreateAlert(context.Background(), a); err == nil { t.Fatal("expected times_per_day range error") }
}

func TestUpdateAlertStatus_Lifecycle(t *testing.T) {
	svc := newTestService()
	a := validAlert()
	svc.CreateAlert(context.Background(), a)

	got, err := svc.UpdateAlertStatus(context.Background(), a.ID, "paused")
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if got.Status != "paused" { t.Errorf("expected paused, got %q", got.Status) }

	svc.UpdateAlertStatus(context.Background(), a.ID, "completed")
	if _, err := svc.UpdateAlertStatus(context.Background(), a.ID, "active"); err == nil {
		t.Fatal("completed alerts cannot be reactivated")
	}
}

func TestActiveOn(t *testing.T) {
	now := time.Now()
	end := now.AddDate(0, 0, 5)
	a := &Alert{Status: "active", Enabled: true, StartDate: now.AddDate(0, 0, -1), EndDate: &end}
	if !a.ActiveOn(now) { t.Error("alert should be active today") }
	if a.ActiveOn(now.AddDate(0, 0, 10)) { t.Error("alert should be inactive after end date") }
	if a.ActiveOn(now.AddDate(0, 0, -5)) { t.Error("alert should be inactive before start date") }
	a.Enabled = false
	if a.ActiveOn(now) { t.Error("disabled alert should not fire") }
}

func TestRecordIntake(t *testing.T) {
	svc := newTestService()
	a := validAlert()
	svc.CreateAlert(context.Background(), a)

	in := &Intake{AlertID: a.ID, ScheduledTime: time.Now(), Status: "taken"}
	if err := svc.RecordIntake(context.Background(), in); err != nil { t.Fatalf("unexpected error: %v", err) }
	if in.PatientID != a.PatientID { t.Error("intake should inherit the alert's patient") }
	if in.ActualTime == nil { t.Error("taken intakes should get an actual time") }
}

func TestRecordIntake_InvalidStatus(t *testing.T) {
	svc := newTestService()
	a := validAlert()
	svc.CreateAlert(context.Background(), a)
	in := &Intake{AlertID: a.ID, ScheduledTime: time.Now(), Status: "forgotten"}
	if err := svc.RecordIntake(context.Background(), in); err == nil { t.Fatal("expected status validation error") }
}

func TestAdherence(t *testing.T) {
	svc := newTestService()
	a := validAlert()
	svc.CreateAlert(context.Background(), a)

	now := time.Now()
	for i, status := range []string{"taken", "taken", "missed", "partial"} {
		svc.RecordIntake(context.Background(), &Intake{
			AlertID: a.ID, ScheduledTime: now.Add(-time.Duration(i) * time.Hour), Status: status,
		})
	}

	report, err := svc.Adherence(context.Background(), a.PatientID, 7)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	// (1 + 1 + 0 + 0.5) / 4 = 62.5%
	if report.Percentage != 62.5 { t.Errorf("expected 62.5%%, got %v", report.Percentage) }
	if report.ScheduledDoses != 4 || report.TakenDoses != 2 || report.MissedDoses != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestAdherence_NoDoses(t *testing.T) {
	svc := newTestService()
	report, err := svc.Adherence(context.Background(), uuid.New(), 7)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if report != nil { t.Error("expected nil report when nothing was scheduled") }
}

func TestAdherenceWeight(t *testing.T) {
	cases := map[string]float64{"taken": 1, "late": 1, "partial": 0.5, "missed": 0, "skipped": 0}
	for status, want := range cases {
		i := &Intake{Status: status}
		if got := i.AdherenceWeight(); got != want {
			t.Errorf("%s: got %v, want %v", status, got, want)
		}
	}
}
