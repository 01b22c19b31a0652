package vitals

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockVitalsRepo struct{ store []*VitalSigns }

func (m *mockVitalsRepo) Create(_ context.Context, v *VitalSigns) error {
	v.ID = uuid.New(); v.CreatedAt = time.Now(); m.store = append(m.store, v); return nil
}
func (m *mockVitalsRepo) GetByID(_ context.Context, id uuid.UUID) (*VitalSigns, error) {
	for _, v := range m.store { if v.ID == id { return v, nil } }; return nil, fmt.Errorf("not found")
}
func (m *mockVitalsRepo) ListByPatient(_ context.Context, pid uuid.UUID, limit, offset int) ([]*VitalSigns, int, error) {
	var r []*VitalSigns; for _, v := range m.store { if v.PatientID == pid { r = append(r, v) } }; return r, len(r), nil
}
func (m *mockVitalsRepo) ListSince(_ context.Context, pid uuid.UUID, since time.Time) ([]*VitalSigns, error) {
	var r []*VitalSigns
	for _, v := range m.store {
		if v.PatientID == pid && !v.MeasuredAt.Before(since) { r = append(r, v) }
	}
	return r, nil
}
func (m *mockVitalsRepo) LatestByPatient(_ context.Context, pid uuid.UUID) (*VitalSigns, error) {
	var latest *VitalSigns
	for _, v := range m.store {
		if v.PatientID == pid && (latest == nil || v.MeasuredAt.After(latest.MeasuredAt)) { latest = v }
	}
	if latest == nil { return nil, fmt.Errorf("not found") }
	return latest, nil
}

type mockLifestyleRepo struct{ store []*LifestyleMetrics }

func (m *mockLifestyleRepo) Create(_ context.Context, e *LifestyleMetrics) error {
	e.ID = uuid.New(); e.CreatedAt = time.Now(); m.store = append(m.store, e); return nil
}
func (m *mockLifestyleRepo) GetByID(_ context.Context, id uuid.UUID) (*LifestyleMetrics, error) {
	for _, e := range m.store { if e.ID == id { return e, nil } }; return nil, fmt.Errorf("not found")
}
func (m *mockLifestyleRepo) ListByPatient(_ context.Context, pid uuid.UUID, limit, offset int) ([]*LifestyleMetrics, int, error) {
	var r []*LifestyleMetrics; for _, e := range m.store { if e.PatientID == pid { r = append(r, e) } }; return r, len(r), nil
}
func (m *mockLifestyleRepo) ListSince(_ context.Context, pid uuid.UUID, since time.Time) ([]*LifestyleMetrics, error) {
	var r []*LifestyleMetrics
	for _, e := range m.store {
		if e.PatientID == pid && !e.RecordedAt.Before(since) { r = append(r, e) }
	}
	return r, nil
}

type mockSymptomRepo struct{ store []*SymptomReport }

func (m *mockSymptomRepo) Create(_ context.Context, s *SymptomReport) error {
	s.ID = uuid.New(); s.ReportedAt = time.Now(); m.store = append(m.store, s); return nil
}
func (m *mockSymptomRepo) GetByID(_ context.Context, id uuid.UUID) (*SymptomReport, error) {
	for _, s := range m.store { if s.ID == id { return s, nil } }; return nil, fmt.Errorf("not found")
}
func (m *mockSymptomRepo) Update(_ context.Context, s *SymptomReport) error {
	for i, old := range m.store { if old.ID == s.ID { m.store[i] = s; return nil } }; return fmt.Errorf("not found")
}
func (m *mockSymptomRepo) ListByPatient(_ context.Context, pid uuid.UUID, limit, offset int) ([]*SymptomReport, int, error) {
	var r []*SymptomReport; for _, s := range m.store { if s.PatientID == pid { r = append(r, s) } }; return r, len(r), nil
}
func (m *mockSymptomRepo) ListSince(_ context.Context, pid uuid.UUID, since time.Time) ([]*SymptomReport, error) {
	var r []*SymptomReport
	for _, s := range m.store {
		if s.PatientID == pid && !s.ReportedAt.Before(since) { r = append(r, s) }
	}
	return r, nil
}

func newTestService() *Service {
	return NewService(&mockVitalsRepo{}, &mockLifestyleRepo{}, &mockSymptomRepo{})
}

func iptr(v int) *int          { return &v }
func fptr(v float64) *float64  { return &v }

func TestRecordVitals_NormalReading(t *testing.T) {
	svc := newTestService()
	v := &VitalSigns{PatientID: uuid.New(), SystolicBP: iptr(118), DiastolicBP: iptr(76), HeartRate: iptr(72)}
	alerts, err := svc.RecordVitals(context.Background(), v)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if len(alerts) != 0 { t.Errorf("normal reading should not alert, got %v", alerts) }
	if v.Source != "manual" { t.Errorf("expected default source 'manual', got %q", v.Source) }
}

func TestRecordVitals_HypertensiveCrisis(t *testing.T) {
	svc := newTestService()
	v := &VitalSigns{PatientID: uuid.New(), SystolicBP: iptr(185), DiastolicBP: iptr(125)}
	alerts, err := svc.RecordVitals(context.Background(), v)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if len(alerts) != 1 || alerts[0] != "CRITICAL: Hypertensive crisis - seek immediate medical attention" {
		t.Errorf("unexpected alerts: %v", alerts)
	}
}

func TestRecordVitals_MultipleAlerts(t *testing.T) {
	svc := newTestService()
	v := &VitalSigns{
		PatientID: uuid.New(), SystolicBP: iptr(150), DiastolicBP: iptr(95),
		HeartRate: iptr(130), OxygenSaturation: iptr(92), BloodGlucose: iptr(260),
	}
	alerts, _ := svc.RecordVitals(context.Background(), v)
	if len(alerts) != 4 { t.Errorf("expected 4 alerts, got %d: %v", len(alerts), alerts) }
}

func TestRecordVitals_OutOfRange(t *testing.T) {
	svc := newTestService()
	cases := []*VitalSigns{
		{PatientID: uuid.New(), SystolicBP: iptr(350)},
		{PatientID: uuid.New(), HeartRate: iptr(10)},
		{PatientID: uuid.New(), Temperature: fptr(120)},
		{PatientID: uuid.New(), OxygenSaturation: iptr(50)},
	}
	for i, v := range cases {
		if _, err := svc.RecordVitals(context.Background(), v); err == nil {
			t.Errorf("case %d: expected range validation error", i)
		}
	}
}

func TestRecordVitals_EmptyReading(t *testing.T) {
	svc := newTestService()
	if _, err := svc.RecordVitals(context.Background(), &VitalSigns{PatientID: uuid.New()}); err == nil {
		t.Fatal("expected error for empty reading")
	}
}

func TestBMI(t *testing.T) {
	v := &VitalSigns{Weight: fptr(150), Height: fptr(65)}
	bmi := v.BMI()
	if bmi == nil || *bmi != 25.0 { t.Errorf("expected BMI 25.0, got %v", bmi) }
	if v.BMICategory() != "Overweight" { t.Errorf("expected Overweight, got %s", v.BMICategory()) }

	missing := &VitalSigns{Weight: fptr(150)}
	if missing.BMI() != nil { t.Error("BMI should be nil without height") }
}

func TestBPCategory(t *testing.T) {
	cases := []struct {
		sys, dia int
		want     string
	}{
		{115, 75, "normal"},
		{125, 78, "elevated"},
		{135, 85, "stage1_hypertension"},
		{160, 100, "stage2_hypertension"},
		{185, 125, "hypertensive_crisis"},
	}
	for _, tc := range cases {
		v := &VitalSigns{SystolicBP: iptr(tc.sys), DiastolicBP: iptr(tc.dia)}
		if got := v.BPCategory(); got != tc.want {
			t.Errorf("%d/%d: got %s, want %s", tc.sys, tc.dia, got, tc.want)
		}
	}
}

func TestGetTrends(t *testing.T) {
	svc := newTestService()
	pid := uuid.New()
	now := time.Now()

	// older readings average ~120, recent ~135: an increasing trend
	for i := 0; i < 7; i++ {
		svc.RecordVitals(context.Background(), &VitalSigns{
			PatientID: pid, SystolicBP: iptr(120), DiastolicBP: iptr(80),
			MeasuredAt: now.AddDate(0, 0, -20+i),
		})
	}
	for i := 0; i < 7; i++ {
		svc.RecordVitals(context.Background(), &VitalSigns{
			PatientID: pid, SystolicBP: iptr(135), DiastolicBP: iptr(85),
			MeasuredAt: now.AddDate(0, 0, -7+i),
		})
	}

	trends, err := svc.GetTrends(context.Background(), pid, 30)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if trends.TotalReadings != 14 { t.Errorf("expected 14 readings, got %d", trends.TotalReadings) }
	if trends.Directions["blood_pressure"] != "increasing" {
		t.Errorf("expected increasing trend, got %q", trends.Directions["blood_pressure"])
	}
	if trends.Ranges["max_systolic_bp"] != 135 || trends.Ranges["min_systolic_bp"] != 120 {
		t.Errorf("unexpected ranges: %v", trends.Ranges)
	}
}

func TestGetTrends_NoData(t *testing.T) {
	svc := newTestService()
	trends, err := svc.GetTrends(context.Background(), uuid.New(), 30)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if trends != nil { t.Error("expected nil trends for a patient with no readings") }
}

func TestRecordLifestyle_Insights(t *testing.T) {
	svc := newTestService()
	m := &LifestyleMetrics{
		PatientID: uuid.New(), StressLevel: iptr(5), SleepHours: fptr(4.5),
		ExerciseMinutes: iptr(10), MedicationAdherence: fptr(60),
	}
	insights, err := svc.RecordLifestyle(context.Background(), m)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if len(insights) != 4 { t.Errorf("expected 4 insights, got %d: %v", len(insights), insights) }
}

func TestRecordLifestyle_RangeValidation(t *testing.T) {
	svc := newTestService()
	cases := []*LifestyleMetrics{
		{PatientID: uuid.New(), StressLevel: iptr(6)},
		{PatientID: uuid.New(), MoodRating: iptr(11)},
		{PatientID: uuid.New(), SleepHours: fptr(25)},
		{PatientID: uuid.New(), MedicationAdherence: fptr(101)},
	}
	for i, m := range cases {
		if _, err := svc.RecordLifestyle(context.Background(), m); err == nil {
			t.Errorf("case %d: expected range validation error", i)
		}
	}
}

func TestLifestyleSummary(t *testing.T) {
	svc := newTestService()
	pid := uuid.New()
	svc.RecordLifestyle(context.Background(), &LifestyleMetrics{PatientID: pid, StressLevel: iptr(2), SleepHours: fptr(8)})
	svc.RecordLifestyle(context.Background(), &LifestyleMetrics{PatientID: pid, StressLevel: iptr(4), SleepHours: fptr(6)})

	summary, err := svc.LifestyleSummary(context.Background(), pid, 7)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if summary["avg_stress"] != 3 { t.Errorf("expected avg_stress 3, got %v", summary["avg_stress"]) }
	if summary["avg_sleep_hours"] != 7 { t.Errorf("expected avg_sleep_hours 7, got %v", summary["avg_sleep_hours"]) }
}

func TestReportSymptom_Urgent(t *testing.T) {
	svc := newTestService()
	r := &SymptomReport{PatientID: uuid.New(), SymptomName: "Chest pain and shortness of breath", Description: "started this morning", Severity: 3}
	alerts, err := svc.ReportSymptom(context.Background(), r)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if len(alerts) != 1 { t.Fatalf("expected 1 urgent alert, got %v", alerts) }
}

func TestReportSymptom_HighSeverity(t *testing.T) {
	svc := newTestService()
	r := &SymptomReport{PatientID: uuid.New(), SymptomName: "Fatigue", Description: "constant", Severity: 4}
	alerts, _ := svc.ReportSymptom(context.Background(), r)
	if len(alerts) != 1 || alerts[0] != "High severity symptoms - consider medical evaluation" {
		t.Errorf("unexpected alerts: %v", alerts)
	}
}

func TestReportSymptom_InvalidSeverity(t *testing.T) {
	svc := newTestService()
	r := &SymptomReport{PatientID: uuid.New(), SymptomName: "Headache", Severity: 0}
	if _, err := svc.ReportSymptom(context.Background(), r); err == nil {
		t.Fatal("expected severity validation error")
	}
}

func TestResolveSymptom(t *testing.T) {
	svc := newTestService()
	r := &SymptomReport{PatientID: uuid.New(), SymptomName: "Headache", Description: "mild", Severity: 1}
	svc.ReportSymptom(context.Background(), r)

	got, err := svc.ResolveSymptom(context.Background(), r.ID)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if !got.Resolved || got.ResolvedAt == nil { t.Error("symptom not marked resolved") }

	if _, err := svc.ResolveSymptom(context.Background(), r.ID); err == nil {
		t.Fatal("resolving twice should fail")
	}
}
