package identity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ErDashrath/Enigma-MAYA-NET/internal/platform/auth"
)

type mockUserRepo struct{ store map[uuid.UUID]*User }

func newMockUserRepo() *mockUserRepo { return &mockUserRepo{store: make(map[uuid.UUID]*User)} }
func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New(); u.CreatedAt = time.Now(); m.store[u.ID] = u; return nil
}
func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.store[id]; if !ok { return nil, fmt.Errorf("not found") }; return u, nil
}
func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.store { if u.Username == username { return u, nil } }; return nil, fmt.Errorf("not found")
}
func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.store { if u.Email == email { return u, nil } }; return nil, fmt.Errorf("not found")
}
func (m *mockUserRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.store[u.ID]; !ok { return fmt.Errorf("not found") }; m.store[u.ID] = u; return nil
}
func (m *mockUserRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var r []*User; for _, u := range m.store { r = append(r, u) }; return r, len(r), nil
}

func newTestService() *Service {
	issuer := auth.NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	return NewService(newMockUserRepo(), issuer)
}

func validInput() RegisterInput {
	return RegisterInput{Username: "jdoe", Email: "jdoe@example.com", Password: "hunter2hunter2", FirstName: "Jane", LastName: "Doe"}
}

func TestRegister_Success(t *testing.T) {
	svc := newTestService()
	sess, err := svc.Register(context.Background(), validInput())
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if sess.Token == "" { t.Error("expected a token") }
	if sess.User.Role != "patient" { t.Errorf("expected default role 'patient', got %q", sess.User.Role) }
	if !sess.User.Active { t.Error("new accounts should be active") }
	if sess.User.PasswordHash == "hunter2hunter2" { t.Error("password must not be stored in plaintext") }
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := newTestService()
	svc.Register(context.Background(), validInput())
	in := validInput()
	in.Email = "other@example.com"
	if _, err := svc.Register(context.Background(), in); err == nil { t.Fatal("expected duplicate username error") }
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService()
	svc.Register(context.Background(), validInput())
	in := validInput()
	in.Username = "other"
	if _, err := svc.Register(context.Background(), in); err == nil { t.Fatal("expected duplicate email error") }
}

func TestRegister_InvalidRole(t *testing.T) {
	svc := newTestService()
	in := validInput()
	in.Role = "superuser"
	if _, err := svc.Register(context.Background(), in); err == nil { t.Fatal("expected invalid role error") }
}

func TestRegister_BadEmail(t *testing.T) {
	svc := newTestService()
	in := validInput()
	in.Email = "not-an-email"
	if _, err := svc.Register(context.Background(), in); err == nil { t.Fatal("expected email validation error") }
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newTestService()
	in := validInput()
	in.Password = "short"
	if _, err := svc.Register(context.Background(), in); err == nil { t.Fatal("expected password length error") }
}

func TestLogin_Success(t *testing.T) {
	svc := newTestService()
	svc.Register(context.Background(), validInput())
	sess, err := svc.Login(context.Background(), LoginInput{Username: "jdoe", Password: "hunter2hunter2"})
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if sess.Token == "" { t.Error("expected a token") }
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService()
	svc.Register(context.Background(), validInput())
	if _, err := svc.Login(context.Background(), LoginInput{Username: "jdoe", Password: "wrong-password"}); err == nil {
		t.Fatal("expected credential error")
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Login(context.Background(), LoginInput{Username: "ghost", Password: "whatever123"}); err == nil {
		t.Fatal("expected credential error")
	}
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	svc := newTestService()
	sess, _ := svc.Register(context.Background(), validInput())
	svc.Deactivate(context.Background(), sess.User.ID)
	if _, err := svc.Login(context.Background(), LoginInput{Username: "jdoe", Password: "hunter2hunter2"}); err == nil {
		t.Fatal("expected deactivated account error")
	}
}

func TestMe(t *testing.T) {
	svc := newTestService()
	sess, _ := svc.Register(context.Background(), validInput())
	u, err := svc.Me(context.Background(), sess.User.ID.String())
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if u.Username != "jdoe" { t.Errorf("unexpected user: %q", u.Username) }
}

func TestMe_InvalidID(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Me(context.Background(), "dev-user"); err == nil { t.Fatal("expected invalid id error") }
}

func TestFullName(t *testing.T) {
	u := &User{Username: "jdoe", FirstName: "Jane", LastName: "Doe"}
	if u.FullName() != "Jane Doe" { t.Errorf("got %q", u.FullName()) }
	u2 := &User{Username: "jdoe"}
	if u2.FullName() != "jdoe" { t.Errorf("got %q", u2.FullName()) }
}
