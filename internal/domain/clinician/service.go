package clinician

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var validSpecializations = map[string]bool{
	"cardiology": true, "endocrinology": true, "pulmonology": true,
	"nephrology": true, "general": true, "nursing": true,
	"nutrition": true, "psychology": true,
}

var validAssignmentTypes = map[string]bool{
	"primary": true, "specialist": true, "temporary": true, "collaborative": true,
}

var validAssignmentStatuses = map[string]bool{
	"active": true, "inactive": true, "transferred": true, "completed": true,
}

var validClinicalNoteTypes = map[string]bool{
	"assessment": true, "progress": true, "treatment": true,
	"consultation": true, "discharge": true, "follow_up": true,
}

var validPlanStatuses = map[string]bool{
	"draft": true, "active": true, "modified": true,
	"completed": true, "discontinued": true,
}

var validPlanPriorities = map[string]bool{
	"low": true, "medium": true, "high": true, "urgent": true,
}

type Service struct {
	profiles    ProfileRepository
	assignments AssignmentRepository
	notes       ClinicalNoteRepository
	plans       TreatmentPlanRepository
}

func NewService(profiles ProfileRepository, assignments AssignmentRepository,
	notes ClinicalNoteRepository, plans TreatmentPlanRepository) *Service {
	return &Service{profiles: profiles, assignments: assignments, notes: notes, plans: plans}
}

func (s *Service) CreateProfile(ctx context.Context, p *Profile) error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	p.LicenseNumber = strings.TrimSpace(p.LicenseNumber)
	if p.LicenseNumber == "" {
		return fmt.Errorf("license_number is required")
	}
	if !validSpecializations[p.Specialization] {
		return fmt.Errorf("invalid specialization: %s", p.Specialization)
	}
	if p.YearsExperience < 0 {
		return fmt.Errorf("years_experience cannot be negative")
	}
	if _, err := s.profiles.GetByLicense(ctx, p.LicenseNumber); err == nil {
		return fmt.Errorf("license number already registered")
	}
	if _, err := s.profiles.GetByUserID(ctx, p.UserID); err == nil {
		return fmt.Errorf("profile already exists for this user")
	}
	if p.BoardCertifications == nil {
		p.BoardCertifications = []string{}
	}
	if p.LanguagesSpoken == nil {
		p.LanguagesSpoken = []string{}
	}
	p.Active = true
	return s.profiles.Create(ctx, p)
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

func (s *Service) GetProfileByUser(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in *Profile) (*Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("clinician profile not found")
	}
	if in.Specialization != "" {
		if !validSpecializations[in.Specialization] {
			return nil, fmt.Errorf("invalid specialization: %s", in.Specialization)
		}
		p.Specialization = in.Specialization
	}
	if in.YearsExperience > 0 {
		p.YearsExperience = in.YearsExperience
	}
	if in.PhoneNumber != nil {
		p.PhoneNumber = in.PhoneNumber
	}
	if in.HospitalAffiliation != nil {
		p.HospitalAffiliation = in.HospitalAffiliation
	}
	if in.Department != nil {
		p.Department = in.Department
	}
	if in.MedicalDegree != nil {
		p.MedicalDegree = in.MedicalDegree
	}
	if in.BoardCertifications != nil {
		p.BoardCertifications = in.BoardCertifications
	}
	if in.LanguagesSpoken != nil {
		p.LanguagesSpoken = in.LanguagesSpoken
	}
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListProfiles(ctx context.Context, specialization string, limit, offset int) ([]*Profile, int, error) {
	if specialization != "" && !validSpecializations[specialization] {
		return nil, 0, fmt.Errorf("invalid specialization: %s", specialization)
	}
	return s.profiles.List(ctx, specialization, limit, offset)
}

// --- assignments ---

// AssignPatient creates a clinician-patient assignment. A clinician may hold
// only one assignment of each type per patient.
func (s *Service) AssignPatient(ctx context.Context, a *Assignment) error {
	if a.ClinicianID == uuid.Nil || a.PatientID == uuid.Nil {
		return fmt.Errorf("clinician_id and patient_id are required")
	}
	if a.AssignmentType == "" {
		a.AssignmentType = "primary"
	}
	if !validAssignmentTypes[a.AssignmentType] {
		return fmt.Errorf("invalid assignment type: %s", a.AssignmentType)
	}
	if _, err := s.profiles.GetByID(ctx, a.ClinicianID); err != nil {
		return fmt.Errorf("clinician profile not found")
	}
	if existing, err := s.assignments.Find(ctx, a.ClinicianID, a.PatientID, a.AssignmentType); err == nil && existing.Status == "active" {
		return fmt.Errorf("an active %s assignment already exists for this patient", a.AssignmentType)
	}
	a.Status = "active"
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now()
	}
	return s.assignments.Create(ctx, a)
}

// EndAssignment transitions an assignment to a terminal status and stamps the
// end time.
func (s *Service) EndAssignment(ctx context.Context, id uuid.UUID, status string) (*Assignment, error) {
	if !validAssignmentStatuses[status] || status == "active" {
		return nil, fmt.Errorf("invalid terminal status: %s", status)
	}
	a, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("assignment not found")
	}
	if a.Status != "active" {
		return nil, fmt.Errorf("assignment is not active")
	}
	now := time.Now()
	a.Status = status
	a.EndedAt = &now
	if err := s.assignments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) ListAssignmentsByClinician(ctx context.Context, clinicianID uuid.UUID, limit, offset int) ([]*Assignment, int, error) {
	return s.assignments.ListByClinician(ctx, clinicianID, limit, offset)
}

func (s *Service) ListAssignmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Assignment, int, error) {
	return s.assignments.ListByPatient(ctx, patientID, limit, offset)
}

// --- clinical notes ---

func (s *Service) CreateClinicalNote(ctx context.Context, n *ClinicalNote) error {
	if n.ClinicianID == uuid.Nil || n.PatientID == uuid.Nil {
		return fmt.Errorf("clinician_id and patient_id are required")
	}
	if strings.TrimSpace(n.Title) == "" || strings.TrimSpace(n.Content) == "" {
		return fmt.Errorf("title and content are required")
	}
	if n.NoteType == "" {
		n.NoteType = "progress"
	}
	if !validClinicalNoteTypes[n.NoteType] {
		return fmt.Errorf("invalid note type: %s", n.NoteType)
	}
	if n.FollowUpRequired && n.FollowUpDate == nil {
		return fmt.Errorf("follow_up_date is required when follow-up is flagged")
	}
	if n.DiagnosisCodes == nil {
		n.DiagnosisCodes = []string{}
	}
	if n.MedicationsPrescribed == nil {
		n.MedicationsPrescribed = []string{}
	}
	return s.notes.Create(ctx, n)
}

func (s *Service) GetClinicalNote(ctx context.Context, id uuid.UUID) (*ClinicalNote, error) {
	return s.notes.GetByID(ctx, id)
}

func (s *Service) ListClinicalNotes(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ClinicalNote, int, error) {
	return s.notes.ListByPatient(ctx, patientID, limit, offset)
}

// --- treatment plans ---

func (s *Service) CreatePlan(ctx context.Context, p *TreatmentPlan) error {
	if p.ClinicianID == uuid.Nil || p.PatientID == uuid.Nil {
		return fmt.Errorf("clinician_id and patient_id are required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if p.Status == "" {
		p.Status = "draft"
	}
	if !validPlanStatuses[p.Status] {
		return fmt.Errorf("invalid plan status: %s", p.Status)
	}
	if p.Priority == "" {
		p.Priority = "medium"
	}
	if !validPlanPriorities[p.Priority] {
		return fmt.Errorf("invalid plan priority: %s", p.Priority)
	}
	if p.StartDate.IsZero() {
		p.StartDate = time.Now()
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("end_date cannot precede start_date")
	}
	for _, list := range []*[]string{&p.Goals, &p.Interventions, &p.Medications, &p.LifestyleModifications} {
		if *list == nil {
			*list = []string{}
		}
	}
	return s.plans.Create(ctx, p)
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *Service) UpdatePlanStatus(ctx context.Context, id uuid.UUID, status string) (*TreatmentPlan, error) {
	if !validPlanStatuses[status] {
		return nil, fmt.Errorf("invalid plan status: %s", status)
	}
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("treatment plan not found")
	}
	p.Status = status
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RecordPlanAdherence stores an adherence score on the plan together with
// optional progress notes.
func (s *Service) RecordPlanAdherence(ctx context.Context, id uuid.UUID, score float64, progressNotes string) (*TreatmentPlan, error) {
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("adherence score must be between 0 and 100")
	}
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("treatment plan not found")
	}
	p.AdherenceScore = &score
	if progressNotes != "" {
		p.ProgressNotes = &progressNotes
	}
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPlans(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TreatmentPlan, int, error) {
	return s.plans.ListByPatient(ctx, patientID, limit, offset)
}
