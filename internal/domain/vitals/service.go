package vitals

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var validSources = map[string]bool{
	"manual": true, "device": true, "wearable": true, "clinic": true,
}

type rangeRule struct {
	name string
	min  float64
	max  float64
}

type Service struct {
	vitals    VitalSignsRepository
	lifestyle LifestyleRepository
	symptoms  SymptomRepository
}

func NewService(vitals VitalSignsRepository, lifestyle LifestyleRepository, symptoms SymptomRepository) *Service {
	return &Service{vitals: vitals, lifestyle: lifestyle, symptoms: symptoms}
}

// RecordVitals validates, stores a reading and returns any threshold alerts.
func (s *Service) RecordVitals(ctx context.Context, v *VitalSigns) ([]string, error) {
	if v.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if err := validateRanges(v); err != nil {
		return nil, err
	}
	if v.Source == "" {
		v.Source = "manual"
	}
	if !validSources[v.Source] {
		return nil, fmt.Errorf("invalid source: %s", v.Source)
	}
	if v.MeasuredAt.IsZero() {
		v.MeasuredAt = time.Now()
	}
	alerts := CheckAlerts(v)
	if err := s.vitals.Create(ctx, v); err != nil {
		return nil, err
	}
	if len(alerts) > 0 {
		log.Warn().
			Str("patient_id", v.PatientID.String()).
			Strs("alerts", alerts).
			Msg("abnormal vital signs recorded")
	}
	return alerts, nil
}

func validateRanges(v *VitalSigns) error {
	checks := []struct {
		rule  rangeRule
		value *float64
	}{
		{rangeRule{"systolic_bp", 60, 300}, intPtrToFloat(v.SystolicBP)},
		{rangeRule{"diastolic_bp", 40, 200}, intPtrToFloat(v.DiastolicBP)},
		{rangeRule{"heart_rate", 30, 250}, intPtrToFloat(v.HeartRate)},
		{rangeRule{"temperature", 90, 110}, v.Temperature},
		{rangeRule{"weight", 50, 1000}, v.Weight},
		{rangeRule{"height", 36, 96}, v.Height},
		{rangeRule{"blood_glucose", 40, 600}, intPtrToFloat(v.BloodGlucose)},
		{rangeRule{"oxygen_saturation", 70, 100}, intPtrToFloat(v.OxygenSaturation)},
		{rangeRule{"respiratory_rate", 8, 40}, intPtrToFloat(v.RespiratoryRate)},
	}
	provided := false
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		provided = true
		if *c.value < c.rule.min || *c.value > c.rule.max {
			return fmt.Errorf("%s out of range: %v (allowed %v-%v)", c.rule.name, *c.value, c.rule.min, c.rule.max)
		}
	}
	if !provided {
		return fmt.Errorf("at least one measurement is required")
	}
	return nil
}

func intPtrToFloat(p *int) *float64 {
	if p == nil {
		return nil
	}
	f := float64(*p)
	return &f
}

// CheckAlerts returns alert strings for clinically abnormal values.
func CheckAlerts(v *VitalSigns) []string {
	var alerts []string

	if v.SystolicBP != nil && v.DiastolicBP != nil {
		sys, dia := *v.SystolicBP, *v.DiastolicBP
		switch {
		case sys >= 180 || dia >= 120:
			alerts = append(alerts, "CRITICAL: Hypertensive crisis - seek immediate medical attention")
		case sys >= 140 || dia >= 90:
			alerts = append(alerts, "HIGH: Elevated blood pressure")
		case sys < 90 || dia < 60:
			alerts = append(alerts, "LOW: Blood pressure below normal range")
		}
	}

	if v.HeartRate != nil {
		switch hr := *v.HeartRate; {
		case hr > 120:
			alerts = append(alerts, "HIGH: Elevated heart rate (tachycardia)")
		case hr < 50:
			alerts = append(alerts, "LOW: Low heart rate (bradycardia)")
		}
	}

	if v.Temperature != nil {
		switch t := *v.Temperature; {
		case t >= 103:
			alerts = append(alerts, "CRITICAL: High fever - seek medical attention")
		case t >= 100.4:
			alerts = append(alerts, "FEVER: Elevated temperature")
		case t < 95:
			alerts = append(alerts, "LOW: Below normal body temperature")
		}
	}

	if v.OxygenSaturation != nil {
		switch o := *v.OxygenSaturation; {
		case o < 90:
			alerts = append(alerts, "CRITICAL: Low oxygen saturation - seek immediate care")
		case o < 95:
			alerts = append(alerts, "LOW: Oxygen saturation below normal")
		}
	}

	if v.BloodGlucose != nil {
		switch g := *v.BloodGlucose; {
		case g > 250:
			alerts = append(alerts, "HIGH: Severely elevated blood sugar")
		case g > 180:
			alerts = append(alerts, "HIGH: Elevated blood sugar")
		case g < 70:
			alerts = append(alerts, "LOW: Low blood sugar (hypoglycemia)")
		}
	}

	return alerts
}

func (s *Service) GetVitals(ctx context.Context, id uuid.UUID) (*VitalSigns, error) {
	return s.vitals.GetByID(ctx, id)
}

func (s *Service) ListVitals(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*VitalSigns, int, error) {
	return s.vitals.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) LatestVitals(ctx context.Context, patientID uuid.UUID) (*VitalSigns, error) {
	return s.vitals.LatestByPatient(ctx, patientID)
}

// GetTrends computes average, min/max and direction of vital signs over the
// trailing window. Returns nil when the patient has no readings in the window.
func (s *Service) GetTrends(ctx context.Context, patientID uuid.UUID, days int) (*Trends, error) {
	if days <= 0 {
		days = 30
	}
	readings, err := s.vitals.ListSince(ctx, patientID, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, nil
	}

	t := &Trends{
		PeriodDays:    days,
		TotalReadings: len(readings),
		Averages:      make(map[string]float64),
		Ranges:        make(map[string]int),
		Directions:    make(map[string]string),
	}

	addAvg := func(key string, pick func(*VitalSigns) *float64) {
		var sum float64
		var n int
		for _, v := range readings {
			if f := pick(v); f != nil {
				sum += *f
				n++
			}
		}
		if n > 0 {
			t.Averages[key] = math.Round(sum/float64(n)*10) / 10
		}
	}
	addAvg("systolic_bp", func(v *VitalSigns) *float64 { return intPtrToFloat(v.SystolicBP) })
	addAvg("diastolic_bp", func(v *VitalSigns) *float64 { return intPtrToFloat(v.DiastolicBP) })
	addAvg("heart_rate", func(v *VitalSigns) *float64 { return intPtrToFloat(v.HeartRate) })
	addAvg("temperature", func(v *VitalSigns) *float64 { return v.Temperature })
	addAvg("weight", func(v *VitalSigns) *float64 { return v.Weight })

	addRange := func(key string, pick func(*VitalSigns) *int) {
		min, max := 0, 0
		seen := false
		for _, v := range readings {
			p := pick(v)
			if p == nil {
				continue
			}
			if !seen {
				min, max, seen = *p, *p, true
				continue
			}
			if *p < min {
				min = *p
			}
			if *p > max {
				max = *p
			}
		}
		if seen {
			t.Ranges["min_"+key] = min
			t.Ranges["max_"+key] = max
		}
	}
	addRange("systolic_bp", func(v *VitalSigns) *int { return v.SystolicBP })
	addRange("heart_rate", func(v *VitalSigns) *int { return v.HeartRate })

	// Direction compares the first and last week of systolic readings. A shift
	// of more than 5 mmHg counts as a trend.
	if len(readings) >= 7 {
		firstAvg := avgSystolic(readings[:7])
		lastAvg := avgSystolic(readings[len(readings)-7:])
		switch {
		case lastAvg > firstAvg+5:
			t.Directions["blood_pressure"] = "increasing"
		case lastAvg < firstAvg-5:
			t.Directions["blood_pressure"] = "decreasing"
		default:
			t.Directions["blood_pressure"] = "stable"
		}
	}

	return t, nil
}

func avgSystolic(readings []*VitalSigns) float64 {
	var sum float64
	var n int
	for _, v := range readings {
		if v.SystolicBP != nil {
			sum += float64(*v.SystolicBP)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// --- lifestyle ---

// RecordLifestyle validates, stores a daily entry and returns insight strings.
func (s *Service) RecordLifestyle(ctx context.Context, m *LifestyleMetrics) ([]string, error) {
	if m.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if m.StressLevel != nil && (*m.StressLevel < 1 || *m.StressLevel > 5) {
		return nil, fmt.Errorf("stress_level must be between 1 and 5")
	}
	if m.MoodRating != nil && (*m.MoodRating < 1 || *m.MoodRating > 10) {
		return nil, fmt.Errorf("mood_rating must be between 1 and 10")
	}
	if m.SleepHours != nil && (*m.SleepHours < 0 || *m.SleepHours > 24) {
		return nil, fmt.Errorf("sleep_hours must be between 0 and 24")
	}
	if m.SleepQuality != nil && (*m.SleepQuality < 1 || *m.SleepQuality > 5) {
		return nil, fmt.Errorf("sleep_quality must be between 1 and 5")
	}
	if m.ActivityLevel != nil && (*m.ActivityLevel < 1 || *m.ActivityLevel > 5) {
		return nil, fmt.Errorf("activity_level must be between 1 and 5")
	}
	if m.ExerciseMinutes != nil && (*m.ExerciseMinutes < 0 || *m.ExerciseMinutes > 1440) {
		return nil, fmt.Errorf("exercise_minutes must be between 0 and 1440")
	}
	if m.MedicationAdherence != nil && (*m.MedicationAdherence < 0 || *m.MedicationAdherence > 100) {
		return nil, fmt.Errorf("medication_adherence must be between 0 and 100")
	}
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now()
	}
	if err := s.lifestyle.Create(ctx, m); err != nil {
		return nil, err
	}
	return LifestyleInsights(m), nil
}

// LifestyleInsights returns advisory strings derived from a single entry.
func LifestyleInsights(m *LifestyleMetrics) []string {
	var insights []string
	if m.SleepHours != nil {
		if *m.SleepHours < 6 {
			insights = append(insights, "Consider increasing sleep duration for better health")
		} else if *m.SleepHours > 9 {
			insights = append(insights, "Monitor for potential sleep disorders")
		}
	}
	if m.SleepQuality != nil && *m.SleepQuality <= 2 {
		insights = append(insights, "Poor sleep quality may affect overall health")
	}
	if m.ExerciseMinutes != nil && *m.ExerciseMinutes*7 < 150 {
		insights = append(insights, "Consider increasing physical activity")
	}
	if m.StressLevel != nil && *m.StressLevel >= 4 {
		insights = append(insights, "High stress levels - consider stress management techniques")
	}
	if m.MedicationAdherence != nil && *m.MedicationAdherence < 80 {
		insights = append(insights, "Medication adherence below recommended level")
	}
	return insights
}

func (s *Service) ListLifestyle(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LifestyleMetrics, int, error) {
	return s.lifestyle.ListByPatient(ctx, patientID, limit, offset)
}

// LifestyleSummary averages the entries over the trailing window. Returns nil
// when no entries exist.
func (s *Service) LifestyleSummary(ctx context.Context, patientID uuid.UUID, days int) (map[string]float64, error) {
	if days <= 0 {
		days = 7
	}
	entries, err := s.lifestyle.ListSince(ctx, patientID, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	summary := make(map[string]float64)
	addAvg := func(key string, pick func(*LifestyleMetrics) *float64) {
		var sum float64
		var n int
		for _, m := range entries {
			if f := pick(m); f != nil {
				sum += *f
				n++
			}
		}
		if n > 0 {
			summary[key] = math.Round(sum/float64(n)*10) / 10
		}
	}
	addAvg("avg_stress", func(m *LifestyleMetrics) *float64 { return intPtrToFloat(m.StressLevel) })
	addAvg("avg_sleep_hours", func(m *LifestyleMetrics) *float64 { return m.SleepHours })
	addAvg("avg_sleep_quality", func(m *LifestyleMetrics) *float64 { return intPtrToFloat(m.SleepQuality) })
	addAvg("avg_exercise", func(m *LifestyleMetrics) *float64 { return intPtrToFloat(m.ExerciseMinutes) })
	addAvg("avg_medication_adherence", func(m *LifestyleMetrics) *float64 { return m.MedicationAdherence })
	addAvg("avg_mood", func(m *LifestyleMetrics) *float64 { return intPtrToFloat(m.MoodRating) })
	return summary, nil
}

// --- symptoms ---

var urgentSymptoms = []string{
	"chest pain", "difficulty breathing", "severe headache",
	"confusion", "loss of consciousness", "severe bleeding",
	"severe abdominal pain", "signs of stroke",
}

// ReportSymptom stores a symptom report and returns urgency alerts.
func (s *Service) ReportSymptom(ctx context.Context, r *SymptomReport) ([]string, error) {
	if r.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(r.SymptomName) == "" {
		return nil, fmt.Errorf("symptom_name is required")
	}
	if r.Severity < 1 || r.Severity > 5 {
		return nil, fmt.Errorf("severity must be between 1 and 5")
	}
	if r.OnsetTime.IsZero() {
		r.OnsetTime = time.Now()
	}
	alerts := CheckUrgentSymptoms(r)
	if err := s.symptoms.Create(ctx, r); err != nil {
		return nil, err
	}
	if len(alerts) > 0 {
		log.Warn().
			Str("patient_id", r.PatientID.String()).
			Str("symptom", r.SymptomName).
			Int("severity", r.Severity).
			Msg("urgent symptom reported")
	}
	return alerts, nil
}

// CheckUrgentSymptoms flags symptoms that need immediate attention.
func CheckUrgentSymptoms(r *SymptomReport) []string {
	var alerts []string
	lower := strings.ToLower(r.SymptomName)
	for _, urgent := range urgentSymptoms {
		if strings.Contains(lower, urgent) {
			alerts = append(alerts, fmt.Sprintf("URGENT: %s requires immediate medical attention", r.SymptomName))
			break
		}
	}
	if r.Severity >= 4 {
		alerts = append(alerts, "High severity symptoms - consider medical evaluation")
	}
	return alerts
}

// ResolveSymptom marks a symptom as resolved.
func (s *Service) ResolveSymptom(ctx context.Context, id uuid.UUID) (*SymptomReport, error) {
	r, err := s.symptoms.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("symptom report not found")
	}
	if r.Resolved {
		return nil, fmt.Errorf("symptom already resolved")
	}
	now := time.Now()
	r.Resolved = true
	r.ResolvedAt = &now
	if err := s.symptoms.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) ListSymptoms(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*SymptomReport, int, error) {
	return s.symptoms.ListByPatient(ctx, patientID, limit, offset)
}
