package riskmodel

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// RiskInput is a point-in-time snapshot submitted for assessment. Fields left
// nil are either defaulted (blood pressure, heart rate) or skipped.
type RiskInput struct {
	Systolic            *int     `json:"systolic,omitempty"`
	Diastolic           *int     `json:"diastolic,omitempty"`
	HeartRate           *int     `json:"heart_rate,omitempty"`
	BloodGlucose        *float64 `json:"blood_glucose,omitempty"`
	BMI                 *float64 `json:"bmi,omitempty"`
	OxygenSaturation    *int     `json:"oxygen_saturation,omitempty"`
	StressLevel         *int     `json:"stress_level,omitempty"`
	SleepHours          *float64 `json:"sleep_hours,omitempty"`
	ChronicConditions   []string `json:"chronic_conditions,omitempty"`
	PastEpisodes        []string `json:"past_episodes,omitempty"`
	MedicationAdherence *float64 `json:"medication_adherence,omitempty"`
}

type AssessmentMetadata struct {
	ModelVersion    string `json:"model_version"`
	AssessmentType  string `json:"assessment_type"`
	FactorsAnalyzed int    `json:"factors_analyzed"`
}

type Assessment struct {
	StabilityScore  float64            `json:"stability_score"`
	RiskLevel       string             `json:"risk_level"`
	RiskPercentage  float64            `json:"risk_percentage"`
	ConfidenceScore float64            `json:"confidence_score"`
	RiskFactors     []string           `json:"risk_factors"`
	Recommendations []string           `json:"recommendations"`
	Insights        string             `json:"llama_insights"`
	Metadata        AssessmentMetadata `json:"assessment_metadata"`
}

const (
	assessorModelVersion = "llama-3.2-medical-pro"
	maxRiskFactors       = 5
	maxRecommendations   = 5
)

// Assessor scores a patient snapshot against clinical thresholds. It stands in
// for the browser-side LLM and mirrors the structured response that model
// returns, so the endpoint contract holds when real inference is wired in.
type Assessor struct{}

func NewAssessor() *Assessor {
	return &Assessor{}
}

// Assess never fails: any internal error degrades to a neutral moderate-risk
// response flagged for manual review.
func (a *Assessor) Assess(in RiskInput) (out Assessment) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("risk assessment failed, returning safe response")
			out = safeAssessment(fmt.Sprintf("%v", r))
		}
	}()
	return a.assess(in)
}

func (a *Assessor) assess(in RiskInput) Assessment {
	score := 100.0
	var factors []string

	systolic := valueOr(in.Systolic, 120)
	diastolic := valueOr(in.Diastolic, 80)
	switch {
	case systolic >= 180 || diastolic >= 120:
		factors = append(factors, "Critical hypertension detected")
		score -= 40
	case systolic >= 140 || diastolic >= 90:
		factors = append(factors, "Elevated blood pressure")
		score -= 20
	case systolic < 90 || diastolic < 60:
		factors = append(factors, "Hypotension concern")
		score -= 15
	}

	heartRate := valueOr(in.HeartRate, 72)
	if heartRate > 120 {
		factors = append(factors, "Tachycardia present")
		score -= 15
	} else if heartRate < 50 {
		factors = append(factors, "Bradycardia present")
		score -= 15
	}

	if in.BloodGlucose != nil {
		switch g := *in.BloodGlucose; {
		case g > 250:
			factors = append(factors, "Severe hyperglycemia")
			score -= 30
		case g > 180:
			factors = append(factors, "Elevated blood glucose")
			score -= 15
		case g < 70:
			factors = append(factors, "Hypoglycemia risk")
			score -= 20
		}
	}

	if in.BMI != nil {
		if *in.BMI >= 35 {
			factors = append(factors, "Severe obesity")
			score -= 15
		} else if *in.BMI >= 30 {
			factors = append(factors, "Obesity factor")
			score -= 10
		}
	}

	if in.OxygenSaturation != nil {
		if *in.OxygenSaturation < 90 {
			factors = append(factors, "Critical oxygen saturation")
			score -= 35
		} else if *in.OxygenSaturation < 95 {
			factors = append(factors, "Low oxygen saturation")
			score -= 15
		}
	}

	if in.StressLevel != nil && *in.StressLevel >= 8 {
		factors = append(factors, "High stress level")
		score -= 10
	}
	if in.SleepHours != nil && *in.SleepHours < 5 {
		factors = append(factors, "Severe sleep deprivation")
		score -= 10
	}

	if hasAny(in.ChronicConditions, "diabetes_type1", "diabetes_type2") {
		factors = append(factors, "Diabetes management required")
		score -= 5
	}
	if hasAny(in.ChronicConditions, "heart_disease") {
		factors = append(factors, "Cardiovascular risk factor")
		score -= 10
	}
	if hasAny(in.PastEpisodes, "hypertensive_crisis") {
		factors = append(factors, "History of hypertensive crisis")
		score -= 15
	}
	if hasAny(in.PastEpisodes, "heart_attack") {
		factors = append(factors, "Previous cardiac event")
		score -= 20
	}

	if in.MedicationAdherence != nil && *in.MedicationAdherence < 80 {
		factors = append(factors, "Poor medication adherence")
		score -= 15
	}

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	score = float64(int(score))

	binaryRisk := "0"
	if score < 70 || len(factors) >= 3 {
		binaryRisk = "1"
	}

	if len(factors) == 0 {
		factors = []string{"All vital signs within normal range"}
	}
	if len(factors) > maxRiskFactors {
		factors = factors[:maxRiskFactors]
	}

	level, percentage := riskBand(score)

	return Assessment{
		StabilityScore:  score,
		RiskLevel:       level,
		RiskPercentage:  percentage,
		ConfidenceScore: 0.85,
		RiskFactors:     factors,
		Recommendations: recommendations(factors),
		Insights:        fmt.Sprintf("LLaMA 3.2 Medical Pro assessment completed. Binary risk: %s", binaryRisk),
		Metadata: AssessmentMetadata{
			ModelVersion:    assessorModelVersion,
			AssessmentType:  "ai_prediction",
			FactorsAnalyzed: len(factors),
		},
	}
}

// riskBand maps the stability score to a level and a piecewise-linear
// percentage: each band covers a 25-point probability span except the
// critical tail, which stretches 0-40 across 75-100%.
func riskBand(score float64) (string, float64) {
	var level string
	var pct float64
	switch {
	case score >= 80:
		level, pct = "LOW", 25-(score-80)*1.25
	case score >= 60:
		level, pct = "MODERATE", 25+(80-score)*1.25
	case score >= 40:
		level, pct = "HIGH", 50+(60-score)*1.25
	default:
		level, pct = "CRITICAL", 75+(40-score)*0.625
	}
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}
	return level, pct
}

func recommendations(factors []string) []string {
	var recs []string

	if factorMentions(factors, "hypertension", "blood pressure") {
		recs = append(recs,
			"Monitor blood pressure regularly (2-3 times daily)",
			"Reduce sodium intake to less than 2300mg daily",
			"Consult healthcare provider about blood pressure management")
	}
	if factorMentions(factors, "glucose", "diabetes") {
		recs = append(recs,
			"Check blood glucose levels as recommended by physician",
			"Follow diabetic meal plan if applicable",
			"Monitor for signs of hypoglycemia or hyperglycemia")
	}
	if factorMentions(factors, "heart", "cardiac") {
		recs = append(recs,
			"Avoid strenuous physical activity until medical clearance",
			"Monitor for chest pain, shortness of breath, or palpitations",
			"Keep emergency medications readily available")
	}
	if factorMentions(factors, "oxygen", "respiratory") {
		recs = append(recs,
			"Monitor oxygen saturation regularly",
			"Seek immediate medical attention if breathing difficulty worsens",
			"Use prescribed respiratory medications as directed")
	}
	if factorMentions(factors, "stress") {
		recs = append(recs, "Practice stress reduction techniques (meditation, deep breathing)")
	}
	if factorMentions(factors, "sleep") {
		recs = append(recs, "Prioritize 7-8 hours of quality sleep nightly")
	}
	if factorMentions(factors, "medication") {
		recs = append(recs, "Improve medication adherence and discuss barriers with healthcare provider")
	}

	if len(recs) == 0 {
		recs = []string{
			"Continue current health monitoring routine",
			"Maintain regular follow-up appointments",
			"Report any new or worsening symptoms promptly",
		}
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

func safeAssessment(errMessage string) Assessment {
	return Assessment{
		StabilityScore:  50,
		RiskLevel:       "MODERATE",
		RiskPercentage:  50,
		ConfidenceScore: 0,
		RiskFactors:     []string{fmt.Sprintf("Assessment error: %s", errMessage)},
		Recommendations: []string{
			"Manual risk assessment recommended",
			"Consult healthcare provider for evaluation",
			"Continue monitoring vital signs",
		},
		Insights: "Error in AI assessment - manual review needed",
		Metadata: AssessmentMetadata{
			ModelVersion:   "error-fallback",
			AssessmentType: "error_response",
		},
	}
}

func valueOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func hasAny(list []string, wanted ...string) bool {
	for _, item := range list {
		for _, w := range wanted {
			if item == w {
				return true
			}
		}
	}
	return false
}

func factorMentions(factors []string, keywords ...string) bool {
	for _, f := range factors {
		lower := strings.ToLower(f)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return true
			}
		}
	}
	return false
}
