// Package seed loads demo users and products from a YAML fixture.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"storefront/internal/auth"
	"storefront/internal/products"
)

type Fixture struct {
	Users    []UserFixture    `yaml:"users"`
	Products []ProductFixture `yaml:"products"`
}

type UserFixture struct {
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type ProductFixture struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
	Category    string  `yaml:"category"`
	InStock     *bool   `yaml:"in_stock"`
	Owner       string  `yaml:"owner"`
}

// ProductStore is the subset of products.Store the seeder writes through.
type ProductStore interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, p *products.Product) error
}

type Result struct {
	UsersCreated    int
	UsersSkipped    int
	ProductsCreated int
	ProductsSkipped int
}

type Seeder struct {
	users    auth.UserStore
	products ProductStore
	logger   *slog.Logger
}

func New(users auth.UserStore, products ProductStore, logger *slog.Logger) *Seeder {
	return &Seeder{users: users, products: products, logger: logger}
}

func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

func (s *Seeder) RunFile(ctx context.Context, path string) (Result, error) {
	f, err := Load(path)
	if err != nil {
		return Result{}, err
	}
	return s.Apply(ctx, f)
}

// Apply inserts every user and product in f that does not exist yet. Users
// are matched by username or email, products by name.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (Result, error) {
	var res Result
	for _, u := range f.Users {
		created, err := s.seedUser(ctx, u)
		if err != nil {
			return res, err
		}
		if created {
			res.UsersCreated++
		} else {
			res.UsersSkipped++
		}
	}
	for _, p := range f.Products {
		created, err := s.seedProduct(ctx, p)
		if err != nil {
			return res, err
		}
		if created {
			res.ProductsCreated++
		} else {
			res.ProductsSkipped++
		}
	}
	s.logger.InfoContext(ctx, "seed complete",
		"users_created", res.UsersCreated, "users_skipped", res.UsersSkipped,
		"products_created", res.ProductsCreated, "products_skipped", res.ProductsSkipped)
	return res, nil
}

func (s *Seeder) seedUser(ctx context.Context, in UserFixture) (bool, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return false, fmt.Errorf("seed user %q: username, email and password are required", in.Username)
	}
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return false, err
	}
	if exists {
		s.logger.DebugContext(ctx, "user exists, skipping", "username", username)
		return false, nil
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return false, err
	}
	role := auth.Role(in.Role)
	if role == "" {
		role = auth.RoleUser
	}
	u := &auth.User{
		Name:         in.Name,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, auth.ErrDuplicateCredential) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Seeder) seedProduct(ctx context.Context, in ProductFixture) (bool, error) {
	if strings.TrimSpace(in.Name) == "" {
		return false, errors.New("seed product: name is required")
	}
	if in.Price < 0 {
		return false, fmt.Errorf("seed product %q: price must be >= 0", in.Name)
	}
	exists, err := s.products.ExistsByName(ctx, in.Name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	p := &products.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		InStock:     in.InStock == nil || *in.InStock,
	}
	if in.Owner != "" {
		owner, err := s.users.FindByIdentifier(ctx, in.Owner)
		if err != nil {
			return false, fmt.Errorf("seed product %q: owner %q: %w", in.Name, in.Owner, err)
		}
		p.UserID = &owner.ID
	}
	if err := s.products.Create(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}
