package nudge

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type NudgeRepository interface {
	Create(ctx context.Context, n *Nudge) error
	GetByID(ctx context.Context, id uuid.UUID) (*Nudge, error)
	Update(ctx context.Context, n *Nudge) error
	ListActive(ctx context.Context, patientID uuid.UUID, now time.Time) ([]*Nudge, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Nudge, int, error)
}

type PredictionRepository interface {
	Create(ctx context.Context, p *Prediction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prediction, error)
	Update(ctx context.Context, p *Prediction) error
	ListActive(ctx context.Context, patientID uuid.UUID, now time.Time) ([]*Prediction, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prediction, int, error)
}
