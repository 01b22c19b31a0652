package vitals

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type VitalSignsRepository interface {
	Create(ctx context.Context, v *VitalSigns) error
	GetByID(ctx context.Context, id uuid.UUID) (*VitalSigns, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*VitalSigns, int, error)
	ListSince(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*VitalSigns, error)
	LatestByPatient(ctx context.Context, patientID uuid.UUID) (*VitalSigns, error)
}

type LifestyleRepository interface {
	Create(ctx context.Context, m *LifestyleMetrics) error
	GetByID(ctx context.Context, id uuid.UUID) (*LifestyleMetrics, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LifestyleMetrics, int, error)
	ListSince(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*LifestyleMetrics, error)
}

type SymptomRepository interface {
	Create(ctx context.Context, s *SymptomReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*SymptomReport, error)
	Update(ctx context.Context, s *SymptomReport) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*SymptomReport, int, error)
	ListSince(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*SymptomReport, error)
}
