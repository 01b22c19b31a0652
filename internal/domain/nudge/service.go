package nudge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/patient"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/vitals"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/platform/notify"
)

var validCategories = map[string]bool{
	"medication": true, "lifestyle": true, "exercise": true, "diet": true,
	"stress": true, "sleep": true, "appointment": true, "monitoring": true, "emergency": true,
}

var validPriorities = map[string]bool{
	"low": true, "medium": true, "high": true, "urgent": true,
}

var validDeliveryMethods = map[string]bool{
	"dashboard": true, "email": true, "sms": true, "push": true, "in_app": true,
}

const (
	bpSpikeBaseProbability = 0.15
	bpSpikeFactorWeight    = 0.15
	bpSpikeMaxProbability  = 0.95
	bpSpikeMinProbability  = 0.3
	bpSpikeConfidence      = 0.75
	bpSpikeModelName       = "BP_Predictor"
	bpSpikeModelVersion    = "1.0"
)

// ProfileReader exposes the profile fields used in prediction rules.
type ProfileReader interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*patient.Profile, error)
}

type Service struct {
	nudges      NudgeRepository
	predictions PredictionRepository
	vitals      vitals.VitalSignsRepository
	lifestyle   vitals.LifestyleRepository
	profiles    ProfileReader
	publisher   notify.Publisher
}

func NewService(nudges NudgeRepository, predictions PredictionRepository,
	vitalsRepo vitals.VitalSignsRepository, lifestyleRepo vitals.LifestyleRepository,
	profiles ProfileReader, publisher notify.Publisher) *Service {
	return &Service{
		nudges:      nudges,
		predictions: predictions,
		vitals:      vitalsRepo,
		lifestyle:   lifestyleRepo,
		profiles:    profiles,
		publisher:   publisher,
	}
}

// Generate evaluates the nudge rules against the patient's latest data and
// creates one nudge per triggered rule. Categories with an active, undismissed
// nudge are skipped so patients are not prompted twice for the same behavior.
func (s *Service) Generate(ctx context.Context, patientID uuid.UUID) ([]*Nudge, error) {
	if _, err := s.profiles.GetProfile(ctx, patientID); err != nil {
		return nil, err
	}

	latestVitals, _ := s.vitals.LatestByPatient(ctx, patientID)
	entries, _, err := s.lifestyle.ListByPatient(ctx, patientID, 1, 0)
	if err != nil {
		return nil, err
	}
	var latestLifestyle *vitals.LifestyleMetrics
	if len(entries) > 0 {
		latestLifestyle = entries[0]
	}

	now := time.Now()
	active, err := s.nudges.ListActive(ctx, patientID, now)
	if err != nil {
		return nil, err
	}
	covered := map[string]bool{}
	for _, n := range active {
		covered[n.Category] = true
	}

	var created []*Nudge
	for _, candidate := range buildCandidates(patientID, latestVitals, latestLifestyle, now) {
		if covered[candidate.Category] {
			continue
		}
		if err := s.nudges.Create(ctx, candidate); err != nil {
			return nil, err
		}
		s.deliver(ctx, candidate)
		created = append(created, candidate)
	}

	log.Info().
		Str("patient_id", patientID.String()).
		Int("generated", len(created)).
		Msg("nudge generation completed")

	return created, nil
}

func buildCandidates(patientID uuid.UUID, v *vitals.VitalSigns, l *vitals.LifestyleMetrics, now time.Time) []*Nudge {
	var out []*Nudge

	if l != nil && l.MedicationAdherence != nil && *l.MedicationAdherence < 80 {
		out = append(out, &Nudge{
			PatientID:      patientID,
			Category:       "medication",
			Priority:       "high",
			Title:          "Medication Reminder",
			Message:        "Your medication adherence has decreased. Consistent medication use is crucial for managing your health condition.",
			ActionText:     "Set Reminders",
			TargetBehavior: "medication_adherence",
			DeliveryMethod: "dashboard",
			ExpiresAt:      now.AddDate(0, 0, 3),
		})
	}

	if l != nil && (l.ExerciseMinutes == nil || *l.ExerciseMinutes < 30) {
		out = append(out, &Nudge{
			PatientID:      patientID,
			Category:       "exercise",
			Priority:       "medium",
			Title:          "Stay Active",
			Message:        "Regular physical activity can help improve your cardiovascular health. Even a 15-minute walk can make a difference!",
			ActionText:     "Log Activity",
			TargetBehavior: "physical_activity",
			DeliveryMethod: "dashboard",
			ExpiresAt:      now.AddDate(0, 0, 2),
		})
	}

	if l != nil && (l.SleepHours == nil || *l.SleepHours < 7) {
		out = append(out, &Nudge{
			PatientID:      patientID,
			Category:       "sleep",
			Priority:       "medium",
			Title:          "Improve Your Sleep",
			Message:        "You've been getting less than 7 hours of sleep. Aim for 7-9 hours to support recovery and blood pressure control.",
			ActionText:     "View Sleep Tips",
			TargetBehavior: "sleep_hygiene",
			DeliveryMethod: "dashboard",
			ExpiresAt:      now.AddDate(0, 0, 2),
		})
	}

	if l != nil && l.StressLevel != nil && *l.StressLevel >= 4 {
		out = append(out, &Nudge{
			PatientID:      patientID,
			Category:       "stress",
			Priority:       "high",
			Title:          "Manage Your Stress",
			Message:        "Your stress levels have been high recently. Breathing exercises or a short walk can help bring them down.",
			ActionText:     "Try a Breathing Exercise",
			TargetBehavior: "stress_management",
			DeliveryMethod: "dashboard",
			ExpiresAt:      now.AddDate(0, 0, 3),
		})
	}

	if v == nil || now.Sub(v.MeasuredAt) > 3*24*time.Hour {
		out = append(out, &Nudge{
			PatientID:      patientID,
			Category:       "monitoring",
			Priority:       "medium",
			Title:          "Time to Check Your Vitals",
			Message:        "It's been a few days since your last reading. Regular monitoring helps catch changes early.",
			ActionText:     "Log Vitals",
			TargetBehavior: "vitals_monitoring",
			DeliveryMethod: "dashboard",
			ExpiresAt:      now.AddDate(0, 0, 3),
		})
	}

	return out
}

// deliver publishes a delivery event and stamps DeliveredAt. Publish failures
// are logged but do not fail generation; the nudge still shows on the
// dashboard.
func (s *Service) deliver(ctx context.Context, n *Nudge) {
	err := s.publisher.Publish(ctx, notify.Event{
		Kind:      "nudge",
		PatientID: n.PatientID.String(),
		RefID:     n.ID.String(),
		Title:     n.Title,
		Message:   n.Message,
		Priority:  n.Priority,
	})
	if err != nil {
		log.Warn().Err(err).Str("nudge_id", n.ID.String()).Msg("nudge delivery event failed")
		return
	}
	now := time.Now()
	n.DeliveredAt = &now
	if err := s.nudges.Update(ctx, n); err != nil {
		log.Warn().Err(err).Str("nudge_id", n.ID.String()).Msg("failed to stamp nudge delivery")
	}
}

// Create stores a manually authored nudge, typically from a clinician.
func (s *Service) Create(ctx context.Context, n *Nudge) (*Nudge, error) {
	if _, err := s.profiles.GetProfile(ctx, n.PatientID); err != nil {
		return nil, err
	}
	if !validCategories[n.Category] {
		return nil, fmt.Errorf("invalid nudge category: %s", n.Category)
	}
	if n.Priority == "" {
		n.Priority = "medium"
	}
	if !validPriorities[n.Priority] {
		return nil, fmt.Errorf("invalid priority: %s", n.Priority)
	}
	if n.DeliveryMethod == "" {
		n.DeliveryMethod = "dashboard"
	}
	if !validDeliveryMethods[n.DeliveryMethod] {
		return nil, fmt.Errorf("invalid delivery method: %s", n.DeliveryMethod)
	}
	if n.Title == "" || n.Message == "" {
		return nil, fmt.Errorf("title and message are required")
	}
	if n.ExpiresAt.IsZero() {
		n.ExpiresAt = time.Now().AddDate(0, 0, 7)
	}
	if err := s.nudges.Create(ctx, n); err != nil {
		return nil, err
	}
	s.deliver(ctx, n)
	return n, nil
}

func (s *Service) ListActive(ctx context.Context, patientID uuid.UUID) ([]*Nudge, error) {
	return s.nudges.ListActive(ctx, patientID, time.Now())
}

func (s *Service) History(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Nudge, int, error) {
	return s.nudges.ListByPatient(ctx, patientID, limit, offset)
}

// MarkViewed stamps ViewedAt on first view. Repeat views are no-ops.
func (s *Service) MarkViewed(ctx context.Context, id uuid.UUID) (*Nudge, error) {
	return s.stamp(ctx, id, func(n *Nudge, now time.Time) {
		if n.ViewedAt == nil {
			n.ViewedAt = &now
		}
	})
}

// MarkClicked records a click-through, implying a view.
func (s *Service) MarkClicked(ctx context.Context, id uuid.UUID) (*Nudge, error) {
	return s.stamp(ctx, id, func(n *Nudge, now time.Time) {
		if n.ViewedAt == nil {
			n.ViewedAt = &now
		}
		if n.ClickedAt == nil {
			n.ClickedAt = &now
		}
	})
}

func (s *Service) Dismiss(ctx context.Context, id uuid.UUID) (*Nudge, error) {
	n, err := s.nudges.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.DismissedAt != nil {
		return nil, fmt.Errorf("nudge already dismissed")
	}
	now := time.Now()
	n.DismissedAt = &now
	if err := s.nudges.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// RecordFeedback stores a 1-5 rating of how useful the nudge was.
func (s *Service) RecordFeedback(ctx context.Context, id uuid.UUID, rating int) (*Nudge, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("feedback rating must be between 1 and 5")
	}
	n, err := s.nudges.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	n.UserFeedback = &rating
	if err := s.nudges.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) stamp(ctx context.Context, id uuid.UUID, apply func(*Nudge, time.Time)) (*Nudge, error) {
	n, err := s.nudges.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(n, time.Now())
	if err := s.nudges.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// GeneratePredictions runs the prediction rules and persists any forecast
// crossing the significance threshold.
func (s *Service) GeneratePredictions(ctx context.Context, patientID uuid.UUID) ([]*Prediction, error) {
	profile, err := s.profiles.GetProfile(ctx, patientID)
	if err != nil {
		return nil, err
	}

	recentVitals, _, err := s.vitals.ListByPatient(ctx, patientID, 10, 0)
	if err != nil {
		return nil, err
	}
	recentLifestyle, _, err := s.lifestyle.ListByPatient(ctx, patientID, 7, 0)
	if err != nil {
		return nil, err
	}

	var created []*Prediction
	if p := predictBPSpike(profile, recentVitals, recentLifestyle); p != nil {
		if err := s.predictions.Create(ctx, p); err != nil {
			return nil, err
		}
		if err := s.publisher.Publish(ctx, notify.Event{
			Kind:      "prediction",
			PatientID: p.PatientID.String(),
			RefID:     p.ID.String(),
			Title:     "Blood Pressure Spike Risk",
			Message:   p.Description,
			Priority:  "high",
		}); err != nil {
			log.Warn().Err(err).Str("prediction_id", p.ID.String()).Msg("prediction event failed")
		}
		created = append(created, p)
	}

	return created, nil
}

// predictBPSpike compares the three newest systolic readings against the three
// oldest in the recent window and combines the trend with stress and chronic
// condition risk factors. Returns nil when the risk is not significant.
func predictBPSpike(profile *patient.Profile, recentVitals []*vitals.VitalSigns, recentLifestyle []*vitals.LifestyleMetrics) *Prediction {
	var systolics []float64
	for _, v := range recentVitals {
		if v.SystolicBP != nil {
			systolics = append(systolics, float64(*v.SystolicBP))
		}
	}
	if len(systolics) < 3 {
		return nil
	}

	// recentVitals is ordered newest first.
	newestAvg := (systolics[0] + systolics[1] + systolics[2]) / 3
	n := len(systolics)
	oldestAvg := (systolics[n-1] + systolics[n-2] + systolics[n-3]) / 3
	trend := newestAvg - oldestAvg

	factors := 0
	if trend > 10 {
		factors++
	}

	var stressSum float64
	var stressCount int
	for _, l := range recentLifestyle {
		if l.StressLevel != nil {
			stressSum += float64(*l.StressLevel)
			stressCount++
		}
	}
	if stressCount > 0 && stressSum/float64(stressCount) >= 4 {
		factors++
	}

	if profile.HasCondition("hypertension") {
		factors++
	}

	probability := bpSpikeBaseProbability + float64(factors)*bpSpikeFactorWeight
	if probability > bpSpikeMaxProbability {
		probability = bpSpikeMaxProbability
	}
	if probability <= bpSpikeMinProbability {
		return nil
	}

	now := time.Now()
	return &Prediction{
		PatientID:      profile.ID,
		PredictionType: "blood_pressure_spike",
		TimeHorizon:    "7d",
		Probability:    probability,
		Confidence:     bpSpikeConfidence,
		Description:    fmt.Sprintf("Elevated risk of blood pressure spike based on recent trend (+%.1f mmHg)", trend),
		KeyFactors:     []string{"blood_pressure_trend", "stress_level", "chronic_conditions"},
		ModelName:      bpSpikeModelName,
		ModelVersion:   bpSpikeModelVersion,
		ExpiresAt:      now.AddDate(0, 0, 7),
	}
}

func (s *Service) ListActivePredictions(ctx context.Context, patientID uuid.UUID) ([]*Prediction, error) {
	return s.predictions.ListActive(ctx, patientID, time.Now())
}

// RecordOutcome marks whether a prediction came true, for model evaluation.
func (s *Service) RecordOutcome(ctx context.Context, id uuid.UUID, outcome bool) (*Prediction, error) {
	p, err := s.predictions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ActualOutcome != nil {
		return nil, fmt.Errorf("prediction outcome already recorded")
	}
	now := time.Now()
	p.ActualOutcome = &outcome
	p.OutcomeRecordedAt = &now
	if err := s.predictions.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
