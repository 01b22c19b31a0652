package nudge

import (
	"time"

	"github.com/google/uuid"
)

// Nudge is a personalized health prompt surfaced to the patient. Engagement
// timestamps are stamped once and never cleared.
type Nudge struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`

	Category string `json:"category"`
	Priority string `json:"priority"`

	Title          string `json:"title"`
	Message        string `json:"message"`
	ActionText     string `json:"action_text,omitempty"`
	TargetBehavior string `json:"target_behavior"`

	DeliveryMethod string `json:"delivery_method"`

	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ViewedAt    *time.Time `json:"viewed_at,omitempty"`
	ClickedAt   *time.Time `json:"clicked_at,omitempty"`
	DismissedAt *time.Time `json:"dismissed_at,omitempty"`

	UserFeedback *int `json:"user_feedback,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Active reports whether the nudge should still be shown.
func (n *Nudge) Active(now time.Time) bool {
	return n.DismissedAt == nil && now.Before(n.ExpiresAt)
}

// Prediction is a forecast of a future health event over a bounded horizon.
type Prediction struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`

	PredictionType string `json:"prediction_type"`
	TimeHorizon    string `json:"time_horizon"`

	Probability    float64  `json:"probability"`
	Confidence     float64  `json:"confidence"`
	PredictedValue *float64 `json:"predicted_value,omitempty"`
	Description    string   `json:"description"`
	KeyFactors     []string `json:"key_factors"`

	ModelName    string `json:"model_name"`
	ModelVersion string `json:"model_version"`

	ActualOutcome     *bool      `json:"actual_outcome,omitempty"`
	OutcomeRecordedAt *time.Time `json:"outcome_recorded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the prediction window has passed.
func (p *Prediction) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
