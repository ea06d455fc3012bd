package catalog

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category_id INTEGER NOT NULL DEFAULT 1,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			unit_price REAL NOT NULL,
			image_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	require.NoError(t, err)

	return &Repository{db: db}
}

func seed(t *testing.T, r *Repository, categoryID int64, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := r.db.Exec(
			`INSERT INTO products (category_id, name, unit_price, image_url, created_at) VALUES ($1, $2, $3, $4, $5)`,
			categoryID, name, 9.99, "assets/"+name+".png", time.Now().UTC(),
		)
		require.NoError(t, err)
	}
}

func TestGetProduct(t *testing.T) {
	sut := newTestRepository(t)
	seed(t, sut, 1, "Crash Course in Go")

	product, err := sut.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Crash Course in Go", product.Name)
	assert.Equal(t, 9.99, product.UnitPrice)

	_, err = sut.GetProduct(context.Background(), 999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestByCategory_Paginates(t *testing.T) {
	sut := newTestRepository(t)
	seed(t, sut, 1, "A", "B", "C", "D", "E", "F", "G")
	seed(t, sut, 2, "Other")

	page, err := sut.ByCategory(context.Background(), 1, 1, 5)
	require.NoError(t, err)
	assert.Len(t, page.Products, 5)
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, int64(7), page.TotalElements)
	assert.Equal(t, "A", page.Products[0].Name)

	page, err = sut.ByCategory(context.Background(), 1, 2, 5)
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
	assert.Equal(t, "F", page.Products[0].Name)
}

func TestByCategory_OutOfRangePageIsEmpty(t *testing.T) {
	sut := newTestRepository(t)
	seed(t, sut, 1, "A", "B")

	page, err := sut.ByCategory(context.Background(), 1, 9, 5)
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.Equal(t, int64(2), page.TotalElements)
}

func TestSearch_MatchesKeyword(t *testing.T) {
	sut := newTestRepository(t)
	seed(t, sut, 1, "Crash Course in Go", "Become a Guru in JavaScript", "Coffee Mug")

	page, err := sut.Search(context.Background(), "Go", 1, 5)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Crash Course in Go", page.Products[0].Name)

	page, err = sut.Search(context.Background(), "nothing", 1, 5)
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.Zero(t, page.TotalElements)
}

func TestPagingDefaults(t *testing.T) {
	sut := newTestRepository(t)
	seed(t, sut, 1, "A")

	page, err := sut.ByCategory(context.Background(), 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, defaultPageSize, page.PageSize)
}
