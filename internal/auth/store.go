package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/db"
)

var ErrUserNotFound = errors.New("user not found")

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const userColumns = `id, name, username, email, password_hash, role, created_at, updated_at`

// ExistsByUsernameOrEmail checks both unique fields in one query.
func (s *Store) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`
	var exists bool
	if err := s.db.GetContext(ctx, &exists, q, username, email); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// Create inserts u, assigning its ID and timestamps. A unique index
// violation is reported as ErrDuplicateCredential.
func (s *Store) Create(ctx context.Context, u *User) error {
	if u.Role == "" {
		u.Role = RoleUser
	}
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	const q = `
		INSERT INTO users (` + userColumns + `)
		VALUES (:id, :name, :username, :email, :password_hash, :role, :created_at, :updated_at)
	`
	if _, err := s.db.NamedExecContext(ctx, q, u); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateCredential
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByIdentifier returns the user whose username or email equals
// identifier. A username match wins over an email match.
func (s *Store) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1 OR email = lower($1)
		ORDER BY (username = $1) DESC
		LIMIT 1
	`
	u := &User{}
	if err := s.db.GetContext(ctx, u, q, identifier); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
