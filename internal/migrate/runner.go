package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront/internal/db"
)

var ErrMigrationFailure = errors.New("migration failed")

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// MigrationError reports which migration failed and in which direction.
// It matches ErrMigrationFailure under errors.Is.
type MigrationError struct {
	Name      string
	Direction Direction
	Err       error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s (%s): %v", e.Name, e.Direction, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

func (e *MigrationError) Is(target error) bool { return target == ErrMigrationFailure }

type Migration struct {
	Name string
	Up   func(ctx context.Context, exec db.Execer) error
	Down func(ctx context.Context, exec db.Execer) error
}

type DownStatus int

const (
	DownNothingApplied DownStatus = iota
	DownUnknownMigration
	DownReverted
)

func (s DownStatus) String() string {
	switch s {
	case DownNothingApplied:
		return "nothing applied"
	case DownUnknownMigration:
		return "unknown migration"
	case DownReverted:
		return "reverted"
	default:
		return "unknown"
	}
}

type DownResult struct {
	Status DownStatus
	Name   string
}

type Runner struct {
	ledger Ledger
	exec   db.Execer
	defs   []Migration
	logger *slog.Logger
	now    func() time.Time
}

type RunnerOption func(*Runner)

func WithRunnerClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

func NewRunner(ledger Ledger, exec db.Execer, defs []Migration, logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		ledger: ledger,
		exec:   exec,
		defs:   defs,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Names() []string { return Names(r.defs) }

func Names(defs []Migration) []string {
	names := make([]string, 0, len(defs))
	for _, m := range defs {
		names = append(names, m.Name)
	}
	return names
}

// Up applies every pending migration in definition order and returns the
// names it applied. It stops at the first failure; migrations applied before
// it stay recorded.
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	if err := r.ledger.Ensure(ctx); err != nil {
		return nil, err
	}
	applied := []string{}
	for _, m := range r.defs {
		done, err := r.ledger.Applied(ctx, m.Name)
		if err != nil {
			return applied, err
		}
		if done {
			r.logger.DebugContext(ctx, "migration already applied", "name", m.Name)
			continue
		}
		r.logger.InfoContext(ctx, "applying migration", "name", m.Name)
		if err := m.Up(ctx, r.exec); err != nil {
			return applied, &MigrationError{Name: m.Name, Direction: DirectionUp, Err: err}
		}
		if err := r.ledger.Record(ctx, m.Name, r.now()); err != nil {
			return applied, err
		}
		applied = append(applied, m.Name)
	}
	if len(applied) == 0 {
		r.logger.InfoContext(ctx, "no pending migrations")
	}
	return applied, nil
}

// Down reverts the most recently applied migration.
func (r *Runner) Down(ctx context.Context) (DownResult, error) {
	if err := r.ledger.Ensure(ctx); err != nil {
		return DownResult{}, err
	}
	latest, err := r.ledger.Latest(ctx)
	if err != nil {
		return DownResult{}, err
	}
	if latest == nil {
		r.logger.InfoContext(ctx, "no migrations to revert")
		return DownResult{Status: DownNothingApplied}, nil
	}
	m, ok := r.lookup(latest.Name)
	if !ok {
		r.logger.WarnContext(ctx, "latest migration has no definition", "name", latest.Name)
		return DownResult{Status: DownUnknownMigration, Name: latest.Name}, nil
	}
	r.logger.InfoContext(ctx, "reverting migration", "name", m.Name)
	if err := m.Down(ctx, r.exec); err != nil {
		return DownResult{}, &MigrationError{Name: m.Name, Direction: DirectionDown, Err: err}
	}
	if err := r.ledger.Remove(ctx, m.Name); err != nil {
		return DownResult{}, err
	}
	return DownResult{Status: DownReverted, Name: m.Name}, nil
}

func (r *Runner) List(ctx context.Context) ([]Record, error) {
	if err := r.ledger.Ensure(ctx); err != nil {
		return nil, err
	}
	return r.ledger.List(ctx)
}

func (r *Runner) lookup(name string) (Migration, bool) {
	for _, m := range r.defs {
		if m.Name == name {
			return m, true
		}
	}
	return Migration{}, false
}
