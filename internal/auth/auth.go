package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateCredential = errors.New("username or email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

// UserStore is the persistence the auth flow needs. *Store implements it.
type UserStore interface {
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, u *User) error
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
}

type Service struct {
	users  UserStore
	tokens *Issuer
}

func NewService(users UserStore, tokens *Issuer) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
	}
}

type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Identifier string
	Username   string
	Email      string
	Password   string
}

// identifier picks the lookup key: Identifier, then Username, then Email.
func (in LoginInput) identifier() string {
	for _, v := range []string{in.Identifier, in.Username, in.Email} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateCredential
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &User{
		Name:         strings.TrimSpace(in.Name),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
	}
	// A concurrent registration can pass the existence check too; the
	// store maps the unique index violation to ErrDuplicateCredential.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	id := in.identifier()
	if id == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.FindByIdentifier(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(in.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

func (s *Service) session(u *User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{User: u, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
