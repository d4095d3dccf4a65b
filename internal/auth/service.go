package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopfront/catalog_api/internal/identity"
)

// ErrPersistence wraps store failures during registration.
var ErrPersistence = errors.New("persist user")

// Service implements registration and login on top of identity.Service and Tokens.
type Service struct {
	ids    *identity.Service
	tokens *Tokens
}

func NewService(ids *identity.Service, tokens *Tokens) *Service {
	return &Service{ids: ids, tokens: tokens}
}

// Session is the outcome of a successful register or login.
type Session struct {
	User  identity.PublicUser
	Token string
}

// Register persists the user and issues a token embedding the public view.
func (s *Service) Register(ctx context.Context, in identity.RegisterInput) (Session, error) {
	user, err := s.ids.Register(ctx, in)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return s.session(user)
}

// Login authenticates by exact credential match and issues a token.
func (s *Service) Login(ctx context.Context, creds identity.Credentials) (Session, error) {
	user, err := s.ids.Authenticate(ctx, creds)
	if err != nil {
		return Session{}, err
	}
	return s.session(user)
}

func (s *Service) session(user identity.User) (Session, error) {
	public := user.Public()
	token, err := s.tokens.Issue(public)
	if err != nil {
		return Session{}, err
	}
	return Session{User: public, Token: token}, nil
}
