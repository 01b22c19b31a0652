package scoring

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/patient"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/vitals"
)

const (
	windowDays = 7

	weightVitals     = 0.35
	weightLifestyle  = 0.25
	weightMedication = 0.25
	weightSymptoms   = 0.15

	// Neutral defaults applied when a data category has no entries in the
	// window. Adherence assumes good behavior absent evidence; no symptom
	// reports mean no symptom burden.
	neutralVitalsScore     = 50.0
	neutralLifestyleScore  = 50.0
	defaultMedicationScore = 80.0
	defaultSymptomScore    = 100.0

	modelVersion      = "1.0"
	calculationMethod = "rule_based"
	confidenceLevel   = 0.85
)

// AssessmentRecorder receives the computed score so the patient profile's
// denormalized fields stay current. Satisfied by *patient.Service.
type AssessmentRecorder interface {
	RecordAssessment(ctx context.Context, patientID uuid.UUID, score float64, riskLevel string, at time.Time) error
}

// TxRunner runs fn with transactional scope; the score insert and the
// profile update must commit or roll back together. The server wires this
// to db.WithTx so repositories pick the transaction up from the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	scores    ScoreRepository
	vitals    vitals.VitalSignsRepository
	lifestyle vitals.LifestyleRepository
	symptoms  vitals.SymptomRepository
	profiles  ProfileReader
	recorder  AssessmentRecorder
	tx        TxRunner
}

// ProfileReader exposes the profile fields used in risk identification.
type ProfileReader interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*patient.Profile, error)
}

func NewService(scores ScoreRepository, vitalsRepo vitals.VitalSignsRepository,
	lifestyleRepo vitals.LifestyleRepository, symptomRepo vitals.SymptomRepository,
	profiles ProfileReader, recorder AssessmentRecorder, tx TxRunner) *Service {
	return &Service{
		scores:    scores,
		vitals:    vitalsRepo,
		lifestyle: lifestyleRepo,
		symptoms:  symptomRepo,
		profiles:  profiles,
		recorder:  recorder,
		tx:        tx,
	}
}

// Calculate computes a stability score from the trailing 7-day window, stores
// it and updates the patient profile.
func (s *Service) Calculate(ctx context.Context, patientID uuid.UUID) (*StabilityScore, error) {
	profile, err := s.profiles.GetProfile(ctx, patientID)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -windowDays)
	recentVitals, err := s.vitals.ListSince(ctx, patientID, since)
	if err != nil {
		return nil, err
	}
	recentLifestyle, err := s.lifestyle.ListSince(ctx, patientID, since)
	if err != nil {
		return nil, err
	}
	recentSymptoms, err := s.symptoms.ListSince(ctx, patientID, since)
	if err != nil {
		return nil, err
	}

	vitalsScore := vitalsComponent(recentVitals)
	lifestyleScore := lifestyleComponent(recentLifestyle)
	medicationScore := medicationComponent(recentLifestyle)
	symptomScore := symptomComponent(recentSymptoms)

	overall := vitalsScore*weightVitals +
		lifestyleScore*weightLifestyle +
		medicationScore*weightMedication +
		symptomScore*weightSymptoms
	overall = clamp(overall, 0, 100)

	score := &StabilityScore{
		PatientID:         patientID,
		Score:             round1(overall),
		RiskLevel:         riskLevel(overall),
		VitalSignsScore:   round1(vitalsScore),
		LifestyleScore:    round1(lifestyleScore),
		MedicationScore:   round1(medicationScore),
		SymptomScore:      round1(symptomScore),
		IdentifiedRisks:   identifyRisks(profile, recentVitals, recentLifestyle),
		RiskProbability:   round3(math.Max(0, (100-overall)/100)),
		ModelVersion:      modelVersion,
		CalculationMethod: calculationMethod,
		ConfidenceLevel:   confidenceLevel,
		CalculatedAt:      time.Now(),
	}
	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.scores.Create(ctx, score); err != nil {
			return err
		}
		return s.recorder.RecordAssessment(ctx, patientID, score.Score, score.RiskLevel, score.CalculatedAt)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("patient_id", patientID.String()).
		Float64("score", score.Score).
		Str("risk_level", score.RiskLevel).
		Msg("stability score calculated")

	return score, nil
}

// Latest returns the most recent assessment, computing a fresh one if the
// stored record is older than 24 hours.
func (s *Service) Latest(ctx context.Context, patientID uuid.UUID) (*StabilityScore, error) {
	latest, err := s.scores.LatestByPatient(ctx, patientID)
	if err == nil && time.Since(latest.CalculatedAt) < 24*time.Hour {
		return latest, nil
	}
	return s.Calculate(ctx, patientID)
}

func (s *Service) History(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*StabilityScore, int, error) {
	return s.scores.ListByPatient(ctx, patientID, limit, offset)
}

func vitalsComponent(readings []*vitals.VitalSigns) float64 {
	if len(readings) == 0 {
		return neutralVitalsScore
	}
	score := 100.0

	avgSys := avgInt(readings, func(v *vitals.VitalSigns) *int { return v.SystolicBP })
	avgDia := avgInt(readings, func(v *vitals.VitalSigns) *int { return v.DiastolicBP })
	if avgSys != nil && avgDia != nil {
		switch {
		case *avgSys > 140 || *avgDia > 90:
			score -= 25
		case *avgSys > 130 || *avgDia > 85:
			score -= 15
		case *avgSys < 90 || *avgDia < 60:
			score -= 20
		}
	}

	if avgHR := avgInt(readings, func(v *vitals.VitalSigns) *int { return v.HeartRate }); avgHR != nil {
		if *avgHR > 100 || *avgHR < 60 {
			score -= 15
		}
	}

	return math.Max(0, score)
}

func lifestyleComponent(entries []*vitals.LifestyleMetrics) float64 {
	if len(entries) == 0 {
		return neutralLifestyleScore
	}
	score := 100.0

	if stress := avgLifestyleInt(entries, func(m *vitals.LifestyleMetrics) *int { return m.StressLevel }); stress != nil {
		switch {
		case *stress >= 4:
			score -= 20
		case *stress >= 3:
			score -= 10
		}
	}

	if sleep := avgLifestyleFloat(entries, func(m *vitals.LifestyleMetrics) *float64 { return m.SleepHours }); sleep != nil {
		if *sleep < 6 || *sleep > 9 {
			score -= 15
		}
	}

	if quality := avgLifestyleInt(entries, func(m *vitals.LifestyleMetrics) *int { return m.SleepQuality }); quality != nil {
		if *quality < 3 {
			score -= 10
		}
	}

	if exercise := avgLifestyleInt(entries, func(m *vitals.LifestyleMetrics) *int { return m.ExerciseMinutes }); exercise != nil {
		if *exercise < 30 {
			score -= 10
		}
	}

	return math.Max(0, score)
}

func medicationComponent(entries []*vitals.LifestyleMetrics) float64 {
	if len(entries) == 0 {
		return defaultMedicationScore
	}
	adherence := avgLifestyleFloat(entries, func(m *vitals.LifestyleMetrics) *float64 { return m.MedicationAdherence })
	if adherence == nil {
		return defaultMedicationScore
	}
	return *adherence
}

func symptomComponent(reports []*vitals.SymptomReport) float64 {
	if len(reports) == 0 {
		return defaultSymptomScore
	}
	var total float64
	for _, r := range reports {
		total += float64(r.Severity)
	}
	avgSeverity := total / float64(len(reports))
	score := 100 - avgSeverity*10 - float64(len(reports))*5
	return math.Max(0, score)
}

func riskLevel(score float64) string {
	switch {
	case score >= 80:
		return "low"
	case score >= 60:
		return "medium"
	case score >= 40:
		return "high"
	default:
		return "critical"
	}
}

var riskyConditions = map[string]bool{
	"diabetes": true, "hypertension": true, "heart disease": true,
}

func identifyRisks(profile *patient.Profile, readings []*vitals.VitalSigns, entries []*vitals.LifestyleMetrics) []string {
	risks := []string{}

	for _, condition := range profile.ChronicConditions {
		lower := strings.ToLower(condition)
		if riskyConditions[lower] {
			risks = append(risks, "chronic_"+strings.ReplaceAll(lower, " ", "_"))
		}
	}

	if len(readings) > 0 {
		if avgSys := avgInt(readings, func(v *vitals.VitalSigns) *int { return v.SystolicBP }); avgSys != nil && *avgSys > 140 {
			risks = append(risks, "elevated_blood_pressure")
		}
		if avgHR := avgInt(readings, func(v *vitals.VitalSigns) *int { return v.HeartRate }); avgHR != nil && *avgHR > 100 {
			risks = append(risks, "elevated_heart_rate")
		}
	}

	if len(entries) > 0 {
		if stress := avgLifestyleInt(entries, func(m *vitals.LifestyleMetrics) *int { return m.StressLevel }); stress != nil && *stress >= 4 {
			risks = append(risks, "high_stress_levels")
		}
		if adherence := avgLifestyleFloat(entries, func(m *vitals.LifestyleMetrics) *float64 { return m.MedicationAdherence }); adherence != nil && *adherence < 80 {
			risks = append(risks, "poor_medication_adherence")
		}
	}

	return risks
}

func avgInt(readings []*vitals.VitalSigns, pick func(*vitals.VitalSigns) *int) *float64 {
	var sum float64
	var n int
	for _, v := range readings {
		if p := pick(v); p != nil {
			sum += float64(*p)
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func avgLifestyleInt(entries []*vitals.LifestyleMetrics, pick func(*vitals.LifestyleMetrics) *int) *float64 {
	var sum float64
	var n int
	for _, m := range entries {
		if p := pick(m); p != nil {
			sum += float64(*p)
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func avgLifestyleFloat(entries []*vitals.LifestyleMetrics, pick func(*vitals.LifestyleMetrics) *float64) *float64 {
	var sum float64
	var n int
	for _, m := range entries {
		if p := pick(m); p != nil {
			sum += *p
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
