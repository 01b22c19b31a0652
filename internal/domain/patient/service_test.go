package patient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockProfileRepo struct{ store map[uuid.UUID]*Profile }

func newMockProfileRepo() *mockProfileRepo { return &mockProfileRepo{store: make(map[uuid.UUID]*Profile)} }
func (m *mockProfileRepo) Create(_ context.Context, p *Profile) error {
	p.ID = uuid.New(); p.CreatedAt = time.Now(); m.store[p.ID] = p; return nil
}
func (m *mockProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*Profile, error) {
	p, ok := m.store[id]; if !ok { return nil, fmt.Errorf("not found") }; return p, nil
}
func (m *mockProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Profile, error) {
	for _, p := range m.store { if p.UserID == userID { return p, nil } }; return nil, fmt.Errorf("not found")
}
func (m *mockProfileRepo) Update(_ context.Context, p *Profile) error {
	if _, ok := m.store[p.ID]; !ok { return fmt.Errorf("not found") }; m.store[p.ID] = p; return nil
}
func (m *mockProfileRepo) List(_ context.Context, limit, offset int) ([]*Profile, int, error) {
	var r []*Profile; for _, p := range m.store { if p.Active { r = append(r, p) } }; return r, len(r), nil
}
func (m *mockProfileRepo) ListByRiskLevel(_ context.Context, rl string, limit, offset int) ([]*Profile, int, error) {
	var r []*Profile; for _, p := range m.store { if p.Active && p.RiskLevel == rl { r = append(r, p) } }; return r, len(r), nil
}

type mockGoalRepo struct{ store map[uuid.UUID]*HealthGoal }

func newMockGoalRepo() *mockGoalRepo { return &mockGoalRepo{store: make(map[uuid.UUID]*HealthGoal)} }
func (m *mockGoalRepo) Create(_ context.Context, g *HealthGoal) error {
	g.ID = uuid.New(); g.CreatedAt = time.Now(); m.store[g.ID] = g; return nil
}
func (m *mockGoalRepo) GetByID(_ context.Context, id uuid.UUID) (*HealthGoal, error) {
	g, ok := m.store[id]; if !ok { return nil, fmt.Errorf("not found") }; return g, nil
}
func (m *mockGoalRepo) Update(_ context.Context, g *HealthGoal) error {
	if _, ok := m.store[g.ID]; !ok { return fmt.Errorf("not found") }; m.store[g.ID] = g; return nil
}
func (m *mockGoalRepo) Delete(_ context.Context, id uuid.UUID) error { delete(m.store, id); return nil }
func (m *mockGoalRepo) ListByPatient(_ context.Context, pid uuid.UUID, limit, offset int) ([]*HealthGoal, int, error) {
	var r []*HealthGoal; for _, g := range m.store { if g.PatientID == pid { r = append(r, g) } }; return r, len(r), nil
}

type mockNoteRepo struct{ store map[uuid.UUID]*Note }

func newMockNoteRepo() *mockNoteRepo { return &mockNoteRepo{store: make(map[uuid.UUID]*Note)} }
func (m *mockNoteRepo) Create(_ context.Context, n *Note) error {
	n.ID = uuid.New(); n.CreatedAt = time.Now(); m.store[n.ID] = n; return nil
}
func (m *mockNoteRepo) GetByID(_ context.Context, id uuid.UUID) (*Note, error) {
	n, ok := m.store[id]; if !ok { return nil, fmt.Errorf("not found") }; return n, nil
}
func (m *mockNoteRepo) Update(_ context.Context, n *Note) error {
	if _, ok := m.store[n.ID]; !ok { return fmt.Errorf("not found") }; m.store[n.ID] = n; return nil
}
func (m *mockNoteRepo) Delete(_ context.Context, id uuid.UUID) error { delete(m.store, id); return nil }
func (m *mockNoteRepo) ListByPatient(_ context.Context, pid uuid.UUID, includePrivate bool, limit, offset int) ([]*Note, int, error) {
	var r []*Note
	for _, n := range m.store {
		if n.PatientID == pid && (includePrivate || !n.Private) { r = append(r, n) }
	}
	return r, len(r), nil
}

func newTestService() *Service {
	return NewService(newMockProfileRepo(), newMockGoalRepo(), newMockNoteRepo())
}

func validProfile() *Profile {
	return &Profile{
		UserID:      uuid.New(),
		DateOfBirth: time.Date(1980, 6, 15, 0, 0, 0, 0, time.UTC),
		Gender:      "F",
	}
}

func TestCreateProfile(t *testing.T) {
	svc := newTestService()
	p := validProfile()
	if err := svc.CreateProfile(context.Background(), p); err != nil { t.Fatalf("unexpected error: %v", err) }
	if p.RiskLevel != "low" { t.Errorf("new profiles should start at low risk, got %q", p.RiskLevel) }
	if p.StabilityScore != 50 { t.Errorf("new profiles should start at score 50, got %v", p.StabilityScore) }
	if !p.Active { t.Error("new profiles should be active") }
}

func TestCreateProfile_InvalidGender(t *testing.T) {
	svc := newTestService()
	p := validProfile()
	p.Gender = "X"
	if err := svc.CreateProfile(context.Background(), p); err == nil { t.Fatal("expected gender validation error") }
}

func TestCreateProfile_FutureBirthDate(t *testing.T) {
	svc := newTestService()
	p := validProfile()
	p.DateOfBirth = time.Now().AddDate(1, 0, 0)
	if err := svc.CreateProfile(context.Background(), p); err == nil { t.Fatal("expected date validation error") }
}

func TestCreateProfile_Duplicate(t *testing.T) {
	svc := newTestService()
	p := validProfile()
	svc.CreateProfile(context.Background(), p)
	dup := validProfile()
	dup.UserID = p.UserID
	if err := svc.CreateProfile(context.Background(), dup); err == nil { t.Fatal("expected duplicate profile error") }
}

func TestAge(t *testing.T) {
	p := &Profile{DateOfBirth: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)}
	now := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	if got := p.Age(now); got != 34 { t.Errorf("day before birthday: got %d, want 34", got) }
	now = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if got := p.Age(now); got != 35 { t.Errorf("on birthday: got %d, want 35", got) }
}

func TestRecordAssessment(t *testing.T) {
	svc := newTestService()
	p := validProfile()
	svc.CreateProfile(context.Background(), p)

	at := time.Now()
	if err := svc.RecordAssessment(context.Background(), p.ID, 42.5, "high", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.GetProfile(context.Background(), p.ID)
	if got.StabilityScore != 42.5 || got.RiskLevel != "high" { t.Errorf("assessment not recorded: %+v", got) }
	if got.LastAssessment == nil { t.Error("last assessment timestamp not set") }
}

func TestRecordAssessment_InvalidRiskLevel(t *testing.T) {
	svc := newTestService()
	p := validProfile()
	svc.CreateProfile(context.Background(), p)
	if err := svc.RecordAssessment(context.Background(), p.ID, 50, "extreme", time.Now()); err == nil {
		t.Fatal("expected risk level validation error")
	}
}

func TestDeactivateProfile(t *testing.T) {
	svc := newTestService()
	p := validProfile()
	svc.CreateProfile(context.Background(), p)
	if err := svc.DeactivateProfile(context.Background(), p.ID); err != nil { t.Fatalf("unexpected error: %v", err) }
	got, _ := svc.GetProfile(context.Background(), p.ID)
	if got.Active { t.Error("profile should be deactivated") }
}

func TestUpdateProfile_PreservesScore(t *testing.T) {
	svc := newTestService()
	p := validProfile()
	svc.CreateProfile(context.Background(), p)
	svc.RecordAssessment(context.Background(), p.ID, 72, "medium", time.Now())

	phone := "555-0100"
	got, err := svc.UpdateProfile(context.Background(), p.ID, &Profile{PhoneNumber: &phone})
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if got.StabilityScore != 72 || got.RiskLevel != "medium" { t.Error("profile update must not touch assessment fields") }
	if got.PhoneNumber == nil || *got.PhoneNumber != "555-0100" { t.Error("phone number not updated") }
}

func TestCreateGoal_And_Progress(t *testing.T) {
	svc := newTestService()
	p := validProfile()
	svc.CreateProfile(context.Background(), p)

	g := &HealthGoal{PatientID: p.ID, GoalType: "exercise", Title: "Walk more", TargetValue: 10000, Unit: "steps"}
	if err := svc.CreateGoal(context.Background(), g); err != nil { t.Fatalf("unexpected error: %v", err) }
	if g.Status != "active" { t.Errorf("expected default status 'active', got %q", g.Status) }

	got, err := svc.UpdateGoalProgress(context.Background(), g.ID, 5000)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if got.Progress() != 50 { t.Errorf("expected 50%% progress, got %v", got.Progress()) }

	got, _ = svc.UpdateGoalProgress(context.Background(), g.ID, 12000)
	if got.Progress() != 100 { t.Errorf("progress should cap at 100, got %v", got.Progress()) }
	if got.Status != "achieved" { t.Errorf("goal should auto-achieve at target, got %q", got.Status) }
}

func TestCreateGoal_InvalidType(t *testing.T) {
	svc := newTestService()
	p := validProfile()
	svc.CreateProfile(context.Background(), p)
	g := &HealthGoal{PatientID: p.ID, GoalType: "gambling", Title: "Nope", TargetValue: 1}
	if err := svc.CreateGoal(context.Background(), g); err == nil { t.Fatal("expected goal type validation error") }
}

func TestGoalProgress_ZeroTarget(t *testing.T) {
	g := &HealthGoal{TargetValue: 0, CurrentValue: 10}
	if g.Progress() != 0 { t.Errorf("zero target should give zero progress, got %v", g.Progress()) }
}

func TestCreateNote_Defaults(t *testing.T) {
	svc := newTestService()
	p := validProfile()
	svc.CreateProfile(context.Background(), p)

	n := &Note{PatientID: p.ID, AuthorID: uuid.New(), Title: "Checkup", Content: "All fine"}
	if err := svc.CreateNote(context.Background(), n); err != nil { t.Fatalf("unexpected error: %v", err) }
	if n.NoteType != "general" { t.Errorf("expected default note type 'general', got %q", n.NoteType) }
	if n.Tags == nil { t.Error("tags should default to an empty list") }
}

func TestListNotes_PrivateFiltering(t *testing.T) {
	svc := newTestService()
	p := validProfile()
	svc.CreateProfile(context.Background(), p)
	author := uuid.New()

	svc.CreateNote(context.Background(), &Note{PatientID: p.ID, AuthorID: author, Title: "a", Content: "x"})
	svc.CreateNote(context.Background(), &Note{PatientID: p.ID, AuthorID: author, Title: "b", Content: "y", Private: true})

	visible, _, _ := svc.ListNotes(context.Background(), p.ID, false, 20, 0)
	if len(visible) != 1 { t.Errorf("expected 1 public note, got %d", len(visible)) }
	all, _, _ := svc.ListNotes(context.Background(), p.ID, true, 20, 0)
	if len(all) != 2 { t.Errorf("expected 2 notes for clinical staff, got %d", len(all)) }
}

func TestListProfiles_RiskFilter(t *testing.T) {
	svc := newTestService()
	a, b := validProfile(), validProfile()
	svc.CreateProfile(context.Background(), a)
	svc.CreateProfile(context.Background(), b)
	svc.RecordAssessment(context.Background(), a.ID, 30, "critical", time.Now())

	crit, _, err := svc.ListProfiles(context.Background(), "critical", 20, 0)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if len(crit) != 1 { t.Errorf("expected 1 critical patient, got %d", len(crit)) }
	if _, _, err := svc.ListProfiles(context.Background(), "extreme", 20, 0); err == nil {
		t.Fatal("expected risk level validation error")
	}
}
