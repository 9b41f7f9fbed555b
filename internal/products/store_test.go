package products

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "5d0c8c2e-9d7b-4a8e-8f51-8f0c1f0d2a11"

var productCols = []string{"id", "name", "description", "price", "category", "in_stock", "user_id", "created_at", "updated_at"}

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewStore(sqlx.NewDb(mockDB, "postgres")), mock
}

func TestStore_List_Defaults(t *testing.T) {
	store, mock := newStoreWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM products WHERE 1=1 ORDER BY created_at DESC, id LIMIT 50 OFFSET 0`).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(testID, "Mouse", "", 25.5, "electronics", true, nil, now, now))

	items, err := store.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Mouse", items[0].Name)
	assert.Nil(t, items[0].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_List_CategoryAndClamp(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`WHERE 1=1 AND category = \$1 ORDER BY created_at DESC, id LIMIT 200 OFFSET 10`).
		WithArgs("books").
		WillReturnRows(sqlmock.NewRows(productCols))

	items, err := store.List(context.Background(), Filter{Category: "books", Limit: 1000, Offset: 10})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get(t *testing.T) {
	store, mock := newStoreWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(testID, "Mouse", "wireless", 25.5, "electronics", false, "owner-1", now, now))

	p, err := store.Get(context.Background(), testID)
	require.NoError(t, err)
	assert.Equal(t, "wireless", p.Description)
	assert.False(t, p.InStock)
	require.NotNil(t, p.UserID)
	assert.Equal(t, "owner-1", *p.UserID)
}

func TestStore_Get_NotFound(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
		WithArgs(testID).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), testID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Create(t *testing.T) {
	store, mock := newStoreWithMock(t)
	owner := "owner-1"

	mock.ExpectExec(`INSERT INTO products`).
		WithArgs(sqlmock.AnyArg(), "Mouse", "", 25.5, "electronics", true, owner, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := &Product{Name: "Mouse", Price: 25.5, Category: "electronics", InStock: true, UserID: &owner}
	require.NoError(t, store.Create(context.Background(), p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Update(t *testing.T) {
	store, mock := newStoreWithMock(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`UPDATE products\s+SET name = \$1`).
		WithArgs("Mouse 2", "", 30.0, "electronics", true, sqlmock.AnyArg(), testID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "created_at"}).AddRow("owner-1", created))

	p := &Product{ID: testID, Name: "Mouse 2", Price: 30, Category: "electronics", InStock: true}
	require.NoError(t, store.Update(context.Background(), p))
	assert.Equal(t, created, p.CreatedAt)
	require.NotNil(t, p.UserID)
	assert.Equal(t, "owner-1", *p.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Update_NotFound(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`UPDATE products`).WillReturnError(sql.ErrNoRows)

	err := store.Update(context.Background(), &Product{ID: testID, Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Update(context.Background(), &Product{ID: "bad"}), ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(testID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(testID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Delete(context.Background(), testID))
	assert.ErrorIs(t, store.Delete(context.Background(), testID), ErrNotFound)
	assert.ErrorIs(t, store.Delete(context.Background(), "bad"), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ExistsByName(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM products WHERE name = \$1\)`).
		WithArgs("Mouse").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := store.ExistsByName(context.Background(), "Mouse")
	require.NoError(t, err)
	assert.False(t, ok)
}
