package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var validGenders = map[string]bool{"M": true, "F": true, "O": true}

var validRiskLevels = map[string]bool{
	"low": true, "medium": true, "high": true, "critical": true,
}

var validGoalTypes = map[string]bool{
	"blood_pressure": true, "weight": true, "exercise": true,
	"diet": true, "medication": true, "stress": true, "sleep": true,
}

var validGoalStatuses = map[string]bool{
	"active": true, "achieved": true, "paused": true, "cancelled": true,
}

var validNoteTypes = map[string]bool{
	"general": true, "symptom": true, "medication": true,
	"appointment": true, "emergency": true,
}

type Service struct {
	profiles ProfileRepository
	goals    GoalRepository
	notes    NoteRepository
}

func NewService(profiles ProfileRepository, goals GoalRepository, notes NoteRepository) *Service {
	return &Service{profiles: profiles, goals: goals, notes: notes}
}

// CreateProfile validates and stores a new patient profile. New profiles start
// with a neutral stability score and low risk until the first assessment runs.
func (s *Service) CreateProfile(ctx context.Context, p *Profile) error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if p.DateOfBirth.IsZero() {
		return fmt.Errorf("date_of_birth is required")
	}
	if p.DateOfBirth.After(time.Now()) {
		return fmt.Errorf("date_of_birth cannot be in the future")
	}
	p.Gender = strings.ToUpper(strings.TrimSpace(p.Gender))
	if !validGenders[p.Gender] {
		return fmt.Errorf("invalid gender: %s (must be M, F or O)", p.Gender)
	}
	if _, err := s.profiles.GetByUserID(ctx, p.UserID); err == nil {
		return fmt.Errorf("profile already exists for this user")
	}
	if p.ChronicConditions == nil {
		p.ChronicConditions = []string{}
	}
	p.StabilityScore = 50
	p.RiskLevel = "low"
	p.Active = true
	return s.profiles.Create(ctx, p)
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

func (s *Service) GetProfileByUser(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// UpdateProfile applies editable fields only; the stability score and risk
// level are owned by the assessment pipeline.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in *Profile) (*Profile, error) {
	existing, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("patient profile not found")
	}
	if in.Gender != "" {
		g := strings.ToUpper(strings.TrimSpace(in.Gender))
		if !validGenders[g] {
			return nil, fmt.Errorf("invalid gender: %s (must be M, F or O)", in.Gender)
		}
		existing.Gender = g
	}
	if !in.DateOfBirth.IsZero() {
		if in.DateOfBirth.After(time.Now()) {
			return nil, fmt.Errorf("date_of_birth cannot be in the future")
		}
		existing.DateOfBirth = in.DateOfBirth
	}
	if in.PhoneNumber != nil {
		existing.PhoneNumber = in.PhoneNumber
	}
	if in.EmergencyContact != nil {
		existing.EmergencyContact = in.EmergencyContact
	}
	if in.EmergencyPhone != nil {
		existing.EmergencyPhone = in.EmergencyPhone
	}
	if in.ChronicConditions != nil {
		existing.ChronicConditions = in.ChronicConditions
	}
	if in.Medications != nil {
		existing.Medications = in.Medications
	}
	if in.Allergies != nil {
		existing.Allergies = in.Allergies
	}
	if err := s.profiles.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// RecordAssessment is called by the scoring pipeline after each stability
// computation to keep the denormalized score and risk level current.
func (s *Service) RecordAssessment(ctx context.Context, patientID uuid.UUID, score float64, riskLevel string, at time.Time) error {
	if !validRiskLevels[riskLevel] {
		return fmt.Errorf("invalid risk level: %s", riskLevel)
	}
	p, err := s.profiles.GetByID(ctx, patientID)
	if err != nil {
		return fmt.Errorf("patient profile not found")
	}
	p.StabilityScore = score
	p.RiskLevel = riskLevel
	p.LastAssessment = &at
	return s.profiles.Update(ctx, p)
}

// DeactivateProfile soft-deletes a patient record.
func (s *Service) DeactivateProfile(ctx context.Context, id uuid.UUID) error {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("patient profile not found")
	}
	p.Active = false
	return s.profiles.Update(ctx, p)
}

func (s *Service) ListProfiles(ctx context.Context, riskLevel string, limit, offset int) ([]*Profile, int, error) {
	if riskLevel != "" {
		if !validRiskLevels[riskLevel] {
			return nil, 0, fmt.Errorf("invalid risk level: %s", riskLevel)
		}
		return s.profiles.ListByRiskLevel(ctx, riskLevel, limit, offset)
	}
	return s.profiles.List(ctx, limit, offset)
}

// --- health goals ---

func (s *Service) CreateGoal(ctx context.Context, g *HealthGoal) error {
	if g.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(g.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if !validGoalTypes[g.GoalType] {
		return fmt.Errorf("invalid goal type: %s", g.GoalType)
	}
	if g.TargetValue <= 0 {
		return fmt.Errorf("target_value must be positive")
	}
	if g.Status == "" {
		g.Status = "active"
	}
	if !validGoalStatuses[g.Status] {
		return fmt.Errorf("invalid goal status: %s", g.Status)
	}
	if _, err := s.profiles.GetByID(ctx, g.PatientID); err != nil {
		return fmt.Errorf("patient profile not found")
	}
	return s.goals.Create(ctx, g)
}

func (s *Service) GetGoal(ctx context.Context, id uuid.UUID) (*HealthGoal, error) {
	return s.goals.GetByID(ctx, id)
}

// UpdateGoalProgress records a new current value and automatically marks the
// goal achieved once the target is reached.
func (s *Service) UpdateGoalProgress(ctx context.Context, id uuid.UUID, currentValue float64) (*HealthGoal, error) {
	g, err := s.goals.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("goal not found")
	}
	if currentValue < 0 {
		return nil, fmt.Errorf("current_value cannot be negative")
	}
	g.CurrentValue = currentValue
	if g.Status == "active" && g.Progress() >= 100 {
		g.Status = "achieved"
	}
	if err := s.goals.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) UpdateGoalStatus(ctx context.Context, id uuid.UUID, status string) (*HealthGoal, error) {
	if !validGoalStatuses[status] {
		return nil, fmt.Errorf("invalid goal status: %s", status)
	}
	g, err := s.goals.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("goal not found")
	}
	g.Status = status
	if err := s.goals.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	if _, err := s.goals.GetByID(ctx, id); err != nil {
		return fmt.Errorf("goal not found")
	}
	return s.goals.Delete(ctx, id)
}

func (s *Service) ListGoals(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthGoal, int, error) {
	return s.goals.ListByPatient(ctx, patientID, limit, offset)
}

// --- notes ---

func (s *Service) CreateNote(ctx context.Context, n *Note) error {
	if n.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if n.AuthorID == uuid.Nil {
		return fmt.Errorf("author_id is required")
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(n.Content) == "" {
		return fmt.Errorf("content is required")
	}
	if n.NoteType == "" {
		n.NoteType = "general"
	}
	if !validNoteTypes[n.NoteType] {
		return fmt.Errorf("invalid note type: %s", n.NoteType)
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	if _, err := s.profiles.GetByID(ctx, n.PatientID); err != nil {
		return fmt.Errorf("patient profile not found")
	}
	return s.notes.Create(ctx, n)
}

func (s *Service) GetNote(ctx context.Context, id uuid.UUID) (*Note, error) {
	return s.notes.GetByID(ctx, id)
}

func (s *Service) UpdateNote(ctx context.Context, id uuid.UUID, in *Note) (*Note, error) {
	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("note not found")
	}
	if in.NoteType != "" {
		if !validNoteTypes[in.NoteType] {
			return nil, fmt.Errorf("invalid note type: %s", in.NoteType)
		}
		n.NoteType = in.NoteType
	}
	if strings.TrimSpace(in.Title) != "" {
		n.Title = in.Title
	}
	if strings.TrimSpace(in.Content) != "" {
		n.Content = in.Content
	}
	if in.Tags != nil {
		n.Tags = in.Tags
	}
	n.Private = in.Private
	if err := s.notes.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) DeleteNote(ctx context.Context, id uuid.UUID) error {
	if _, err := s.notes.GetByID(ctx, id); err != nil {
		return fmt.Errorf("note not found")
	}
	return s.notes.Delete(ctx, id)
}

func (s *Service) ListNotes(ctx context.Context, patientID uuid.UUID, includePrivate bool, limit, offset int) ([]*Note, int, error) {
	return s.notes.ListByPatient(ctx, patientID, includePrivate, limit, offset)
}
