package scoring

import (
	"time"

	"github.com/google/uuid"
)

// StabilityScore is a point-in-time assessment. Records are write-once; a
// recalculation always appends a new row.
type StabilityScore struct {
	ID                uuid.UUID `db:"id" json:"id"`
	PatientID         uuid.UUID `db:"patient_id" json:"patient_id"`
	Score             float64   `db:"score" json:"score"`
	RiskLevel         string    `db:"risk_level" json:"risk_level"`
	VitalSignsScore   float64   `db:"vital_signs_score" json:"vital_signs_score"`
	LifestyleScore    float64   `db:"lifestyle_score" json:"lifestyle_score"`
	MedicationScore   float64   `db:"medication_score" json:"medication_score"`
	SymptomScore      float64   `db:"symptom_score" json:"symptom_score"`
	IdentifiedRisks   []string  `db:"identified_risks" json:"identified_risks"`
	RiskProbability   float64   `db:"risk_probability" json:"risk_probability"`
	ModelVersion      string    `db:"model_version" json:"model_version"`
	CalculationMethod string    `db:"calculation_method" json:"calculation_method"`
	ConfidenceLevel   float64   `db:"confidence_level" json:"confidence_level"`
	CalculatedAt      time.Time `db:"calculated_at" json:"calculated_at"`
}

// IsHighRisk reports whether the assessment calls for clinician attention.
func (s *StabilityScore) IsHighRisk() bool {
	return s.RiskLevel == "high" || s.RiskLevel == "critical"
}
