package scoring

import (
	"context"

	"github.com/google/uuid"
)

type ScoreRepository interface {
	Create(ctx context.Context, s *StabilityScore) error
	GetByID(ctx context.Context, id uuid.UUID) (*StabilityScore, error)
	LatestByPatient(ctx context.Context, patientID uuid.UUID) (*StabilityScore, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*StabilityScore, int, error)
}
