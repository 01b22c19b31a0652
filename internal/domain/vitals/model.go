package vitals

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// VitalSigns is a single measurement record. Readings are immutable once
// stored; corrections are made by recording a new reading.
type VitalSigns struct {
	ID               uuid.UUID `db:"id" json:"id"`
	PatientID        uuid.UUID `db:"patient_id" json:"patient_id"`
	SystolicBP       *int      `db:"systolic_bp" json:"systolic_bp,omitempty"`
	DiastolicBP      *int      `db:"diastolic_bp" json:"diastolic_bp,omitempty"`
	HeartRate        *int      `db:"heart_rate" json:"heart_rate,omitempty"`
	Temperature      *float64  `db:"temperature" json:"temperature,omitempty"`
	Weight           *float64  `db:"weight" json:"weight,omitempty"`
	Height           *float64  `db:"height" json:"height,omitempty"`
	BloodGlucose     *int      `db:"blood_glucose" json:"blood_glucose,omitempty"`
	OxygenSaturation *int      `db:"oxygen_saturation" json:"oxygen_saturation,omitempty"`
	RespiratoryRate  *int      `db:"respiratory_rate" json:"respiratory_rate,omitempty"`
	MeasuredAt       time.Time `db:"measured_at" json:"measured_at"`
	Source           string    `db:"source" json:"source"`
	Notes            *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// BMI computes body mass index from weight in pounds and height in inches,
// rounded to one decimal. Returns nil when either input is missing.
func (v *VitalSigns) BMI() *float64 {
	if v.Weight == nil || v.Height == nil || *v.Height == 0 {
		return nil
	}
	bmi := math.Round(*v.Weight/(*v.Height**v.Height)*703*10) / 10
	return &bmi
}

// BMICategory buckets the BMI reading.
func (v *VitalSigns) BMICategory() string {
	bmi := v.BMI()
	switch {
	case bmi == nil:
		return "Unknown"
	case *bmi < 18.5:
		return "Underweight"
	case *bmi < 25:
		return "Normal weight"
	case *bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// BPCategory buckets a blood pressure reading per AHA staging.
func (v *VitalSigns) BPCategory() string {
	if v.SystolicBP == nil || v.DiastolicBP == nil {
		return "unknown"
	}
	sys, dia := *v.SystolicBP, *v.DiastolicBP
	switch {
	case sys < 120 && dia < 80:
		return "normal"
	case sys < 130 && dia < 80:
		return "elevated"
	case sys < 140 || dia < 90:
		return "stage1_hypertension"
	case sys < 180 || dia < 120:
		return "stage2_hypertension"
	default:
		return "hypertensive_crisis"
	}
}

// GlucoseCategory buckets a blood glucose reading.
func (v *VitalSigns) GlucoseCategory() string {
	if v.BloodGlucose == nil {
		return "Unknown"
	}
	switch g := *v.BloodGlucose; {
	case g < 70:
		return "Low (Hypoglycemia)"
	case g < 100:
		return "Normal (Fasting)"
	case g < 140:
		return "Pre-diabetes"
	default:
		return "Diabetes Range"
	}
}

// LifestyleMetrics is a daily behavioral health entry.
type LifestyleMetrics struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	PatientID           uuid.UUID `db:"patient_id" json:"patient_id"`
	StressLevel         *int      `db:"stress_level" json:"stress_level,omitempty"`
	MoodRating          *int      `db:"mood_rating" json:"mood_rating,omitempty"`
	SleepHours          *float64  `db:"sleep_hours" json:"sleep_hours,omitempty"`
	SleepQuality        *int      `db:"sleep_quality" json:"sleep_quality,omitempty"`
	ActivityLevel       *int      `db:"activity_level" json:"activity_level,omitempty"`
	ExerciseMinutes     *int      `db:"exercise_minutes" json:"exercise_minutes,omitempty"`
	StepsCount          *int      `db:"steps_count" json:"steps_count,omitempty"`
	MedicationAdherence *float64  `db:"medication_adherence" json:"medication_adherence,omitempty"`
	RecordedAt          time.Time `db:"recorded_at" json:"recorded_at"`
	Notes               *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// SymptomReport is a patient-reported symptom.
type SymptomReport struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	SymptomName   string     `db:"symptom_name" json:"symptom_name"`
	Description   string     `db:"description" json:"description"`
	Severity      int        `db:"severity" json:"severity"`
	OnsetTime     time.Time  `db:"onset_time" json:"onset_time"`
	DurationHours *float64   `db:"duration_hours" json:"duration_hours,omitempty"`
	Triggers      *string    `db:"triggers" json:"triggers,omitempty"`
	Resolved      bool       `db:"resolved" json:"resolved"`
	ResolvedAt    *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	ReportedAt    time.Time  `db:"reported_at" json:"reported_at"`
}

// Trends summarizes vital sign readings over a trailing window.
type Trends struct {
	PeriodDays    int                 `json:"period_days"`
	TotalReadings int                 `json:"total_readings"`
	Averages      map[string]float64  `json:"averages"`
	Ranges        map[string]int      `json:"ranges"`
	Directions    map[string]string   `json:"trends"`
}
