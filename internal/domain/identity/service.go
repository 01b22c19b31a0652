package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ErDashrath/Enigma-MAYA-NET/internal/platform/auth"
)

type Service struct {
	users  UserRepository
	tokens *auth.TokenIssuer
}

func NewService(users UserRepository, tokens *auth.TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

var validRoles = map[string]bool{
	"patient": true, "clinician": true, "admin": true,
}

// Register creates an account and returns a session with a signed token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if in.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if in.Role == "" {
		in.Role = "patient"
	}
	if !validRoles[in.Role] {
		return nil, fmt.Errorf("invalid role: %s", in.Role)
	}

	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, fmt.Errorf("username already taken")
	}
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("email already registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         in.Role,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	return s.newSession(u)
}

// Login verifies credentials and returns a session with a signed token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if !u.Active {
		return nil, fmt.Errorf("account is deactivated")
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return nil, fmt.Errorf("invalid credentials")
	}

	return s.newSession(u)
}

// Me returns the account for the authenticated user ID.
func (s *Service) Me(ctx context.Context, userID string) (*User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id")
	}
	return s.users.GetByID(ctx, id)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// Deactivate disables an account without removing it.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.Active = false
	return s.users.Update(ctx, u)
}

func (s *Service) newSession(u *User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokens.Expiry()),
		User:      u,
	}, nil
}
