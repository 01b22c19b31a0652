package nudge

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/patient"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/vitals"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/platform/notify"
)

type mockNudgeRepo struct{ store []*Nudge }

func (m *mockNudgeRepo) Create(_ context.Context, n *Nudge) error {
	n.ID = uuid.New(); n.CreatedAt = time.Now(); m.store = append(m.store, n); return nil
}
func (m *mockNudgeRepo) GetByID(_ context.Context, id uuid.UUID) (*Nudge, error) {
	for _, n := range m.store { if n.ID == id { return n, nil } }; return nil, fmt.Errorf("not found")
}
func (m *mockNudgeRepo) Update(_ context.Context, n *Nudge) error { return nil }
func (m *mockNudgeRepo) ListActive(_ context.Context, pid uuid.UUID, now time.Time) ([]*Nudge, error) {
	var r []*Nudge
	for _, n := range m.store {
		if n.PatientID == pid && n.Active(now) { r = append(r, n) }
	}
	return r, nil
}
func (m *mockNudgeRepo) ListByPatient(_ context.Context, pid uuid.UUID, limit, offset int) ([]*Nudge, int, error) {
	var r []*Nudge; for _, n := range m.store { if n.PatientID == pid { r = append(r, n) } }; return r, len(r), nil
}

type mockPredictionRepo struct{ store []*Prediction }

func (m *mockPredictionRepo) Create(_ context.Context, p *Prediction) error {
	p.ID = uuid.New(); p.CreatedAt = time.Now(); m.store = append(m.store, p); return nil
}
func (m *mockPredictionRepo) GetByID(_ context.Context, id uuid.UUID) (*Prediction, error) {
	for _, p := range m.store { if p.ID == id { return p, nil } }; return nil, fmt.Errorf("not found")
}
func (m *mockPredictionRepo) Update(_ context.Context, p *Prediction) error { return nil }
func (m *mockPredictionRepo) ListActive(_ context.Context, pid uuid.UUID, now time.Time) ([]*Prediction, error) {
	var r []*Prediction
	for _, p := range m.store {
		if p.PatientID == pid && !p.Expired(now) { r = append(r, p) }
	}
	return r, nil
}
func (m *mockPredictionRepo) ListByPatient(_ context.Context, pid uuid.UUID, limit, offset int) ([]*Prediction, int, error) {
	var r []*Prediction; for _, p := range m.store { if p.PatientID == pid { r = append(r, p) } }; return r, len(r), nil
}

// mockVitalsRepo returns readings in the order given; tests append newest
// first to mirror the repository's descending sort.
type mockVitalsRepo struct{ store []*vitals.VitalSigns }

func (m *mockVitalsRepo) Create(_ context.Context, v *vitals.VitalSigns) error {
	v.ID = uuid.New(); m.store = append(m.store, v); return nil
}
func (m *mockVitalsRepo) GetByID(_ context.Context, id uuid.UUID) (*vitals.VitalSigns, error) {
	for _, v := range m.store { if v.ID == id { return v, nil } }; return nil, fmt.Errorf("not found")
}
func (m *mockVitalsRepo) ListByPatient(_ context.Context, pid uuid.UUID, limit, offset int) ([]*vitals.VitalSigns, int, error) {
	var r []*vitals.VitalSigns
	for _, v := range m.store {
		if v.PatientID == pid && len(r) < limit { r = append(r, v) }
	}
	return r, len(r), nil
}
func (m *mockVitalsRepo) ListSince(_ context.Context, pid uuid.UUID, since time.Time) ([]*vitals.VitalSigns, error) {
	var r []*vitals.VitalSigns; for _, v := range m.store { if v.PatientID == pid { r = append(r, v) } }; return r, nil
}
func (m *mockVitalsRepo) LatestByPatient(_ context.Context, pid uuid.UUID) (*vitals.VitalSigns, error) {
	for _, v := range m.store { if v.PatientID == pid { return v, nil } }
	return nil, fmt.Errorf("not found")
}

type mockLifestyleRepo struct{ store []*vitals.LifestyleMetrics }

func (m *mockLifestyleRepo) Create(_ context.Context, e *vitals.LifestyleMetrics) error {
	e.ID = uuid.New(); m.store = append(m.store, e); return nil
}
func (m *mockLifestyleRepo) GetByID(_ context.Context, id uuid.UUID) (*vitals.LifestyleMetrics, error) {
	for _, e := range m.store { if e.ID == id { return e, nil } }; return nil, fmt.Errorf("not found")
}
func (m *mockLifestyleRepo) ListByPatient(_ context.Context, pid uuid.UUID, limit, offset int) ([]*vitals.LifestyleMetrics, int, error) {
	var r []*vitals.LifestyleMetrics
	for _, e := range m.store {
		if e.PatientID == pid && len(r) < limit { r = append(r, e) }
	}
	return r, len(r), nil
}
func (m *mockLifestyleRepo) ListSince(_ context.Context, pid uuid.UUID, since time.Time) ([]*vitals.LifestyleMetrics, error) {
	var r []*vitals.LifestyleMetrics; for _, e := range m.store { if e.PatientID == pid { r = append(r, e) } }; return r, nil
}

type mockProfiles struct{ store map[uuid.UUID]*patient.Profile }

func (m *mockProfiles) GetProfile(_ context.Context, id uuid.UUID) (*patient.Profile, error) {
	p, ok := m.store[id]; if !ok { return nil, fmt.Errorf("not found") }; return p, nil
}

type mockPublisher struct{ events []notify.Event }

func (m *mockPublisher) Publish(_ context.Context, ev notify.Event) error {
	m.events = append(m.events, ev); return nil
}
func (m *mockPublisher) Close() error { return nil }

type fixture struct {
	svc       *Service
	nudges    *mockNudgeRepo
	preds     *mockPredictionRepo
	vitals    *mockVitalsRepo
	lifestyle *mockLifestyleRepo
	publisher *mockPublisher
	patientID uuid.UUID
}

func newFixture(conditions ...string) *fixture {
	pid := uuid.New()
	profiles := &mockProfiles{store: map[uuid.UUID]*patient.Profile{
		pid: {ID: pid, ChronicConditions: conditions, Active: true},
	}}
	f := &fixture{
		nudges:    &mockNudgeRepo{},
		preds:     &mockPredictionRepo{},
		vitals:    &mockVitalsRepo{},
		lifestyle: &mockLifestyleRepo{},
		publisher: &mockPublisher{},
		patientID: pid,
	}
	f.svc = NewService(f.nudges, f.preds, f.vitals, f.lifestyle, profiles, f.publisher)
	return f
}

func iptr(v int) *int         { return &v }
func fptr(v float64) *float64 { return &v }

func TestGenerate_AllRulesTriggered(t *testing.T) {
	f := newFixture()
	f.lifestyle.Create(context.Background(), &vitals.LifestyleMetrics{
		PatientID: f.patientID, MedicationAdherence: fptr(65), ExerciseMinutes: iptr(10),
		SleepHours: fptr(5.5), StressLevel: iptr(5), RecordedAt: time.Now(),
	})
	// No vitals recorded at all, so the monitoring rule fires too.

	nudges, err := f.svc.Generate(context.Background(), f.patientID)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if len(nudges) != 5 { t.Fatalf("expected 5 nudges, got %d", len(nudges)) }

	byCategory := map[string]*Nudge{}
	for _, n := range nudges { byCategory[n.Category] = n }
	for _, cat := range []string{"medication", "exercise", "sleep", "stress", "monitoring"} {
		if byCategory[cat] == nil { t.Errorf("missing %s nudge", cat) }
	}

	med := byCategory["medication"]
	if med.Priority != "high" || med.Title != "Medication Reminder" {
		t.Errorf("unexpected medication nudge: %+v", med)
	}
	if med.DeliveredAt == nil { t.Error("expected DeliveredAt stamped after publish") }
	if len(f.publisher.events) != 5 { t.Errorf("expected 5 delivery events, got %d", len(f.publisher.events)) }
	if f.publisher.events[0].Kind != "nudge" { t.Errorf("expected nudge event kind, got %q", f.publisher.events[0].Kind) }
}

func TestGenerate_HealthyPatientGetsNothing(t *testing.T) {
	f := newFixture()
	f.vitals.Create(context.Background(), &vitals.VitalSigns{
		PatientID: f.patientID, SystolicBP: iptr(118), DiastolicBP: iptr(76), MeasuredAt: time.Now(),
	})
	f.lifestyle.Create(context.Background(), &vitals.LifestyleMetrics{
		PatientID: f.patientID, MedicationAdherence: fptr(95), ExerciseMinutes: iptr(45),
		SleepHours: fptr(7.5), StressLevel: iptr(2), RecordedAt: time.Now(),
	})

	nudges, err := f.svc.Generate(context.Background(), f.patientID)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if len(nudges) != 0 { t.Errorf("expected no nudges, got %d", len(nudges)) }
}

func TestGenerate_SkipsActiveCategories(t *testing.T) {
	f := newFixture()
	f.lifestyle.Create(context.Background(), &vitals.LifestyleMetrics{
		PatientID: f.patientID, MedicationAdherence: fptr(60), ExerciseMinutes: iptr(60),
		SleepHours: fptr(8), StressLevel: iptr(1), RecordedAt: time.Now(),
	})
	f.vitals.Create(context.Background(), &vitals.VitalSigns{
		PatientID: f.patientID, HeartRate: iptr(70), MeasuredAt: time.Now(),
	})

	first, _ := f.svc.Generate(context.Background(), f.patientID)
	if len(first) != 1 || first[0].Category != "medication" {
		t.Fatalf("expected single medication nudge, got %+v", first)
	}

	second, _ := f.svc.Generate(context.Background(), f.patientID)
	if len(second) != 0 { t.Errorf("expected duplicate category skipped, got %d nudges", len(second)) }
}

func TestEngagementLifecycle(t *testing.T) {
	f := newFixture()
	n := &Nudge{PatientID: f.patientID, Category: "sleep", Priority: "medium",
		Title: "t", Message: "m", DeliveryMethod: "dashboard", ExpiresAt: time.Now().AddDate(0, 0, 2)}
	f.nudges.Create(context.Background(), n)

	clicked, err := f.svc.MarkClicked(context.Background(), n.ID)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if clicked.ViewedAt == nil || clicked.ClickedAt == nil {
		t.Error("click should stamp both viewed and clicked")
	}

	if _, err := f.svc.Dismiss(context.Background(), n.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Dismiss(context.Background(), n.ID); err == nil {
		t.Error("expected second dismiss to fail")
	}
}

func TestRecordFeedback_Validation(t *testing.T) {
	f := newFixture()
	n := &Nudge{PatientID: f.patientID, Category: "exercise", ExpiresAt: time.Now().AddDate(0, 0, 1)}
	f.nudges.Create(context.Background(), n)

	if _, err := f.svc.RecordFeedback(context.Background(), n.ID, 0); err == nil {
		t.Error("expected rating 0 to be rejected")
	}
	if _, err := f.svc.RecordFeedback(context.Background(), n.ID, 6); err == nil {
		t.Error("expected rating 6 to be rejected")
	}
	got, err := f.svc.RecordFeedback(context.Background(), n.ID, 4)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if got.UserFeedback == nil || *got.UserFeedback != 4 {
		t.Errorf("expected feedback 4, got %v", got.UserFeedback)
	}
}

func TestCreate_DefaultsAndValidation(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Create(context.Background(), &Nudge{
		PatientID: f.patientID, Category: "bogus", Title: "t", Message: "m",
	}); err == nil {
		t.Error("expected invalid category to be rejected")
	}

	n, err := f.svc.Create(context.Background(), &Nudge{
		PatientID: f.patientID, Category: "appointment", Title: "Follow-up Visit",
		Message: "Schedule your quarterly check-in.",
	})
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if n.Priority != "medium" || n.DeliveryMethod != "dashboard" {
		t.Errorf("expected defaults applied, got %+v", n)
	}
	if n.ExpiresAt.IsZero() { t.Error("expected default expiry") }
}

func TestGeneratePredictions_BPSpike(t *testing.T) {
	f := newFixture("hypertension")
	now := time.Now()
	// Newest first: rising systolic trend of +20 mmHg.
	for i, sys := range []int{160, 158, 156, 146, 142, 138} {
		f.vitals.Create(context.Background(), &vitals.VitalSigns{
			PatientID: f.patientID, SystolicBP: iptr(sys),
			MeasuredAt: now.Add(-time.Duration(i) * 24 * time.Hour),
		})
	}
	f.lifestyle.Create(context.Background(), &vitals.LifestyleMetrics{
		PatientID: f.patientID, StressLevel: iptr(5), RecordedAt: now,
	})

	preds, err := f.svc.GeneratePredictions(context.Background(), f.patientID)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if len(preds) != 1 { t.Fatalf("expected 1 prediction, got %d", len(preds)) }

	p := preds[0]
	if p.PredictionType != "blood_pressure_spike" || p.TimeHorizon != "7d" {
		t.Errorf("unexpected prediction: %+v", p)
	}
	// Three factors: trend > 10, avg stress >= 4, hypertension.
	if math.Abs(p.Probability-0.6) > 1e-9 { t.Errorf("expected probability 0.6, got %v", p.Probability) }
	if p.Confidence != 0.75 { t.Errorf("expected confidence 0.75, got %v", p.Confidence) }
	if p.ModelName != "BP_Predictor" { t.Errorf("unexpected model name %q", p.ModelName) }
	if len(f.publisher.events) != 1 || f.publisher.events[0].Kind != "prediction" {
		t.Errorf("expected prediction event, got %+v", f.publisher.events)
	}
}

func TestGeneratePredictions_StableReadingsProduceNothing(t *testing.T) {
	f := newFixture()
	now := time.Now()
	for i := 0; i < 6; i++ {
		f.vitals.Create(context.Background(), &vitals.VitalSigns{
			PatientID: f.patientID, SystolicBP: iptr(120),
			MeasuredAt: now.Add(-time.Duration(i) * 24 * time.Hour),
		})
	}

	preds, err := f.svc.GeneratePredictions(context.Background(), f.patientID)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if len(preds) != 0 { t.Errorf("expected no predictions, got %d", len(preds)) }
}

func TestGeneratePredictions_TooFewReadings(t *testing.T) {
	f := newFixture("hypertension")
	f.vitals.Create(context.Background(), &vitals.VitalSigns{
		PatientID: f.patientID, SystolicBP: iptr(170), MeasuredAt: time.Now(),
	})

	preds, err := f.svc.GeneratePredictions(context.Background(), f.patientID)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if len(preds) != 0 { t.Errorf("expected no predictions with under 3 readings, got %d", len(preds)) }
}

func TestRecordOutcome(t *testing.T) {
	f := newFixture()
	p := &Prediction{PatientID: f.patientID, PredictionType: "blood_pressure_spike",
		TimeHorizon: "7d", Probability: 0.6, Confidence: 0.75, ExpiresAt: time.Now().AddDate(0, 0, 7)}
	f.preds.Create(context.Background(), p)

	got, err := f.svc.RecordOutcome(context.Background(), p.ID, true)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if got.ActualOutcome == nil || !*got.ActualOutcome || got.OutcomeRecordedAt == nil {
		t.Errorf("expected outcome recorded, got %+v", got)
	}
	if _, err := f.svc.RecordOutcome(context.Background(), p.ID, false); err == nil {
		t.Error("expected second outcome recording to fail")
	}
}
