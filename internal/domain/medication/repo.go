package medication

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AlertRepository interface {
	Create(ctx context.Context, a *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	Update(ctx context.Context, a *Alert) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error)
	ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]*Alert, error)
}

type IntakeRepository interface {
	Create(ctx context.Context, i *Intake) error
	GetByID(ctx context.Context, id uuid.UUID) (*Intake, error)
	ListByAlert(ctx context.Context, alertID uuid.UUID, limit, offset int) ([]*Intake, int, error)
	ListSince(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*Intake, error)
}
