package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Record is one applied migration.
type Record struct {
	Name      string    `db:"name" json:"name"`
	AppliedAt time.Time `db:"applied_at" json:"applied_at"`
	Seq       int64     `db:"seq" json:"-"`
}

// Ledger persists which migrations have been applied. Presence of a record
// is the only signal that a migration ran.
type Ledger interface {
	Ensure(ctx context.Context) error
	Applied(ctx context.Context, name string) (bool, error)
	Record(ctx context.Context, name string, at time.Time) error
	// Latest returns nil when nothing is applied.
	Latest(ctx context.Context) (*Record, error)
	Remove(ctx context.Context, name string) error
	List(ctx context.Context) ([]Record, error)
}

type SQLLedger struct {
	db *sqlx.DB
}

func NewSQLLedger(db *sqlx.DB) *SQLLedger {
	return &SQLLedger{db: db}
}

func (l *SQLLedger) Ensure(ctx context.Context) error {
	const q = `
		CREATE TABLE IF NOT EXISTS migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL,
			seq        BIGSERIAL NOT NULL
		)
	`
	if _, err := l.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}
	return nil
}

func (l *SQLLedger) Applied(ctx context.Context, name string) (bool, error) {
	var ok bool
	if err := l.db.GetContext(ctx, &ok, `SELECT EXISTS (SELECT 1 FROM migrations WHERE name = $1)`, name); err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return ok, nil
}

func (l *SQLLedger) Record(ctx context.Context, name string, at time.Time) error {
	if _, err := l.db.ExecContext(ctx, `INSERT INTO migrations (name, applied_at) VALUES ($1, $2)`, name, at); err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	return nil
}

func (l *SQLLedger) Latest(ctx context.Context) (*Record, error) {
	const q = `SELECT name, applied_at, seq FROM migrations ORDER BY applied_at DESC, seq DESC LIMIT 1`
	rec := &Record{}
	if err := l.db.GetContext(ctx, rec, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest migration: %w", err)
	}
	return rec, nil
}

func (l *SQLLedger) Remove(ctx context.Context, name string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM migrations WHERE name = $1`, name); err != nil {
		return fmt.Errorf("remove migration %s: %w", name, err)
	}
	return nil
}

func (l *SQLLedger) List(ctx context.Context) ([]Record, error) {
	res := []Record{}
	if err := l.db.SelectContext(ctx, &res, `SELECT name, applied_at, seq FROM migrations ORDER BY applied_at, seq`); err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	return res, nil
}
