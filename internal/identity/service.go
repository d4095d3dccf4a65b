package identity

import (
	"context"
	"fmt"
)

// Service manages the user lifecycle on top of a Repository.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register stores a new user as submitted. Emails are not required to be unique.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	user, err := s.repo.Create(ctx, User{Name: in.Name, Email: in.Email, Password: in.Password})
	if err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

// Authenticate finds the user matching every submitted credential field exactly.
// A wrong password is reported as ErrNotFound.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	if creds.Email == "" || creds.Password == "" {
		return User{}, ErrMissingCredentials
	}
	return s.repo.FindOne(ctx, creds)
}
