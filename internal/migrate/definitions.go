package migrate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/auth"
	"storefront/internal/db"
)

const (
	adminUsername = "admin"
	adminEmail    = "admin@example.com"
	adminPassword = "admin123"
)

type sampleProduct struct {
	name        string
	description string
	price       float64
	category    string
}

var sampleProducts = []sampleProduct{
	{"Sample Product 1", "This is a sample product", 29.99, "electronics"},
	{"Sample Product 2", "Another sample product", 49.99, "clothing"},
}

// Definitions returns the schema migrations in the order they apply.
func Definitions() []Migration {
	return []Migration{
		{Name: "create-users-collection", Up: createUsers, Down: dropUsers},
		{Name: "create-products-collection", Up: createProducts, Down: dropProducts},
	}
}

func createUsers(ctx context.Context, exec db.Execer) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			name          TEXT NOT NULL DEFAULT '',
			username      TEXT NOT NULL,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'user',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (username)`,
	}
	if err := execAll(ctx, exec, stmts); err != nil {
		return err
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	const q = `
		INSERT INTO users (id, name, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
	`
	if _, err := exec.ExecContext(ctx, q, uuid.NewString(), "Administrator", adminUsername, adminEmail, hash, string(auth.RoleAdmin)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	return nil
}

func dropUsers(ctx context.Context, exec db.Execer) error {
	return execAll(ctx, exec, []string{`DROP TABLE IF EXISTS users CASCADE`})
}

func createProducts(ctx context.Context, exec db.Execer) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id          UUID PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price       NUMERIC(12,2) NOT NULL CHECK (price >= 0),
			category    TEXT NOT NULL DEFAULT '',
			in_stock    BOOLEAN NOT NULL DEFAULT TRUE,
			user_id     UUID REFERENCES users (id) ON DELETE SET NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS products_name_idx ON products (name)`,
		`CREATE INDEX IF NOT EXISTS products_category_idx ON products (category)`,
		`CREATE INDEX IF NOT EXISTS products_price_idx ON products (price)`,
	}
	if err := execAll(ctx, exec, stmts); err != nil {
		return err
	}

	const q = `
		INSERT INTO products (id, name, description, price, category, in_stock)
		SELECT $1::uuid, $2::text, $3::text, $4::numeric, $5::text, TRUE
		WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $2)
	`
	for _, p := range sampleProducts {
		if _, err := exec.ExecContext(ctx, q, uuid.NewString(), p.name, p.description, p.price, p.category); err != nil {
			return fmt.Errorf("insert sample product %q: %w", p.name, err)
		}
	}
	return nil
}

func dropProducts(ctx context.Context, exec db.Execer) error {
	return execAll(ctx, exec, []string{`DROP TABLE IF EXISTS products`})
}

func execAll(ctx context.Context, exec db.Execer, stmts []string) error {
	for _, s := range stmts {
		if _, err := exec.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
