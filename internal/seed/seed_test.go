package seed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/auth"
	"storefront/internal/products"
)

type fakeUsers struct {
	users []*auth.User
}

func (f *fakeUsers) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) Create(_ context.Context, u *auth.User) error {
	u.ID = "id-" + u.Username
	f.users = append(f.users, u)
	return nil
}

func (f *fakeUsers) FindByIdentifier(_ context.Context, identifier string) (*auth.User, error) {
	for _, u := range f.users {
		if u.Username == identifier || u.Email == strings.ToLower(identifier) {
			return u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

type fakeProducts struct {
	items []*products.Product
}

func (f *fakeProducts) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, p := range f.items {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProducts) Create(_ context.Context, p *products.Product) error {
	f.items = append(f.items, p)
	return nil
}

func newSeeder() (*Seeder, *fakeUsers, *fakeProducts) {
	users, prods := &fakeUsers{}, &fakeProducts{}
	return New(users, prods, slog.New(slog.NewTextHandler(io.Discard, nil))), users, prods
}

func TestRunFile_BundledFixture(t *testing.T) {
	s, users, prods := newSeeder()

	res, err := s.RunFile(context.Background(), filepath.Join("..", "..", "config", "seed.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Result{UsersCreated: 1, ProductsCreated: 3}, res)

	require.Len(t, users.users, 1)
	alice := users.users[0]
	assert.Equal(t, "alice", alice.Username)
	assert.Equal(t, auth.RoleUser, alice.Role)
	assert.True(t, auth.VerifyPassword("securePass123", alice.PasswordHash))

	require.Len(t, prods.items, 3)
	assert.Equal(t, "Wireless Mouse", prods.items[0].Name)
	require.NotNil(t, prods.items[0].UserID)
	assert.Equal(t, alice.ID, *prods.items[0].UserID)
	assert.True(t, prods.items[1].InStock)
	assert.False(t, prods.items[2].InStock)
	assert.Nil(t, prods.items[2].UserID)
}

func TestApply_SkipsExisting(t *testing.T) {
	s, _, _ := newSeeder()
	f := &Fixture{
		Users:    []UserFixture{{Name: "Bob", Username: "bob", Email: "Bob@X.com", Password: "pw123456", Role: "admin"}},
		Products: []ProductFixture{{Name: "Desk", Price: 120, Owner: "bob@x.com"}},
	}

	res, err := s.Apply(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, Result{UsersCreated: 1, ProductsCreated: 1}, res)

	res, err = s.Apply(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, Result{UsersSkipped: 1, ProductsSkipped: 1}, res)
}

func TestApply_UnknownOwner(t *testing.T) {
	s, _, prods := newSeeder()

	_, err := s.Apply(context.Background(), &Fixture{
		Products: []ProductFixture{{Name: "Desk", Price: 120, Owner: "ghost"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
	assert.Empty(t, prods.items)
}

func TestApply_InvalidEntries(t *testing.T) {
	s, _, _ := newSeeder()

	_, err := s.Apply(context.Background(), &Fixture{Users: []UserFixture{{Username: "x"}}})
	assert.Error(t, err)

	_, err = s.Apply(context.Background(), &Fixture{Products: []ProductFixture{{Name: "x", Price: -1}}})
	assert.Error(t, err)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: [unclosed"), 0o600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "parse fixture")
}
