package clinician

import (
	"context"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	GetByLicense(ctx context.Context, licenseNumber string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	List(ctx context.Context, specialization string, limit, offset int) ([]*Profile, int, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, a *Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error)
	Find(ctx context.Context, clinicianID, patientID uuid.UUID, assignmentType string) (*Assignment, error)
	Update(ctx context.Context, a *Assignment) error
	ListByClinician(ctx context.Context, clinicianID uuid.UUID, limit, offset int) ([]*Assignment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Assignment, int, error)
}

type ClinicalNoteRepository interface {
	Create(ctx context.Context, n *ClinicalNote) error
	GetByID(ctx context.Context, id uuid.UUID) (*ClinicalNote, error)
	Update(ctx context.Context, n *ClinicalNote) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ClinicalNote, int, error)
}

type TreatmentPlanRepository interface {
	Create(ctx context.Context, p *TreatmentPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error)
	Update(ctx context.Context, p *TreatmentPlan) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TreatmentPlan, int, error)
}
