package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("product not found")

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Repository is the product persistence used by the HTTP handlers.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const productColumns = `id, name, description, price, category, in_stock, user_id, created_at, updated_at`

func (s *Store) List(ctx context.Context, f Filter) ([]Product, error) {
	clauses := []string{"1=1"}
	args := []interface{}{}
	if f.Category != "" {
		args = append(args, f.Category)
		clauses = append(clauses, "category = $"+strconv.Itoa(len(args)))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	query := "SELECT " + productColumns + " FROM products WHERE " + strings.Join(clauses, " AND ") +
		" ORDER BY created_at DESC, id LIMIT " + strconv.Itoa(limit) + " OFFSET " + strconv.Itoa(offset)

	res := []Product{}
	if err := s.db.SelectContext(ctx, &res, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return res, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Product, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p := &Product{}
	if err := s.db.GetContext(ctx, p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *Store) Create(ctx context.Context, p *Product) error {
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	const q = `
		INSERT INTO products (` + productColumns + `)
		VALUES (:id, :name, :description, :price, :category, :in_stock, :user_id, :created_at, :updated_at)
	`
	if _, err := s.db.NamedExecContext(ctx, q, p); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update replaces the editable fields of the product with p.ID and loads
// the stored owner and creation time back into p.
func (s *Store) Update(ctx context.Context, p *Product) error {
	if !validID(p.ID) {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	const q = `
		UPDATE products
		SET name = $1, description = $2, price = $3, category = $4, in_stock = $5, updated_at = $6
		WHERE id = $7
		RETURNING user_id, created_at
	`
	row := s.db.QueryRowxContext(ctx, q, p.Name, p.Description, p.Price, p.Category, p.InStock, p.UpdatedAt, p.ID)
	if err := row.Scan(&p.UserID, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM products WHERE name = $1)`, name); err != nil {
		return false, fmt.Errorf("check product exists: %w", err)
	}
	return exists, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
