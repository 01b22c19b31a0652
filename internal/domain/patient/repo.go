package patient

import (
	"context"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	List(ctx context.Context, limit, offset int) ([]*Profile, int, error)
	ListByRiskLevel(ctx context.Context, riskLevel string, limit, offset int) ([]*Profile, int, error)
}

type GoalRepository interface {
	Create(ctx context.Context, g *HealthGoal) error
	GetByID(ctx context.Context, id uuid.UUID) (*HealthGoal, error)
	Update(ctx context.Context, g *HealthGoal) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthGoal, int, error)
}

type NoteRepository interface {
	Create(ctx context.Context, n *Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*Note, error)
	Update(ctx context.Context, n *Note) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, includePrivate bool, limit, offset int) ([]*Note, int, error)
}
