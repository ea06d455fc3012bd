package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

var ErrProductNotFound = errors.New("product not found")

const defaultPageSize = 5

type Repository struct {
	db *sql.DB
}

type RepoInterface interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ByCategory(ctx context.Context, categoryID int64, page, size int) (*Page, error)
	Search(ctx context.Context, keyword string, page, size int) (*Page, error)
	Close() error
	RunMigrations(string) error
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	query := `
		SELECT id, category_id, name, description, unit_price, image_url, created_at
		FROM products
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	p := &Product{}
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.UnitPrice, &p.ImageURL, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return p, nil
}

// ByCategory returns one page of the category's products. Page numbers
// start at 1; an out-of-range page yields empty items with the correct
// total.
func (r *Repository) ByCategory(ctx context.Context, categoryID int64, page, size int) (*Page, error) {
	page, size = normalizePaging(page, size)

	var total int64
	countQuery := `SELECT COUNT(*) FROM products WHERE category_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, categoryID).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query := `
		SELECT id, category_id, name, description, unit_price, image_url, created_at
		FROM products
		WHERE category_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, categoryID, size, (page-1)*size)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return buildPage(rows, page, size, total)
}

// Search returns one page of products whose name contains the keyword.
func (r *Repository) Search(ctx context.Context, keyword string, page, size int) (*Page, error) {
	page, size = normalizePaging(page, size)
	pattern := "%" + keyword + "%"

	var total int64
	countQuery := `SELECT COUNT(*) FROM products WHERE name LIKE $1`
	if err := r.db.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query := `
		SELECT id, category_id, name, description, unit_price, image_url, created_at
		FROM products
		WHERE name LIKE $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, pattern, size, (page-1)*size)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return buildPage(rows, page, size, total)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func normalizePaging(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	return page, size
}

func buildPage(rows *sql.Rows, page, size int, total int64) (*Page, error) {
	products := []*Product{}
	for rows.Next() {
		p := &Product{}
		err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.UnitPrice, &p.ImageURL, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return &Page{
		Products:      products,
		PageNumber:    page,
		PageSize:      size,
		TotalElements: total,
	}, nil
}
