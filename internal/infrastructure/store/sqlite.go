package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/partsmarket/backend/internal/domain"
	"github.com/rs/zerolog/log"

	_ "github.com/mattn/go-sqlite3"
)

// InMemoryDSN opens a private in-memory database.
const InMemoryDSN = ":memory:"

const (
	listProductsQuery = `SELECT id, title, car_brands FROM products ORDER BY rowid`
	getProductQuery   = `SELECT id, title, car_brands FROM products WHERE id = ?`
	upsertProductStmt = `INSERT INTO products (id, title, car_brands) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET title = excluded.title, car_brands = excluded.car_brands, updated_at = CURRENT_TIMESTAMP`
	deleteProductStmt = `DELETE FROM products WHERE id = ?`
)

// SQLiteRepository stores the catalog in SQLite. Fitment tags are kept as a
// JSON array in car_brands. Upserts keep a product's original position.
type SQLiteRepository struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(path string) (*SQLiteRepository, error) {
	if path != InMemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == InMemoryDSN {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug().Str("component", "store").Str("path", path).Msg("catalog database ready")

	return NewSQLiteRepository(db), nil
}

// NewSQLiteRepository wraps an already migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// ListProducts returns all products in insertion order.
func (r *SQLiteRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, listProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// GetProduct returns one product or domain.ErrProductNotFound.
func (r *SQLiteRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, getProductQuery, id)

	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpsertProducts inserts or updates products in one transaction.
func (r *SQLiteRepository) UpsertProducts(ctx context.Context, products ...domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, upsertProductStmt)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, product := range products {
		tags, err := encodeCarBrands(product.CarBrands)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, product.ID, product.Title, tags); err != nil {
			return fmt.Errorf("failed to upsert product %q: %w", product.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit products: %w", err)
	}
	return nil
}

// DeleteProduct removes a product or returns domain.ErrProductNotFound.
func (r *SQLiteRepository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteProductStmt, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %q: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete product %q: %w", id, err)
	}
	if n == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		product domain.Product
		tags    string
	)
	if err := row.Scan(&product.ID, &product.Title, &tags); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return product, err
		}
		return product, fmt.Errorf("failed to scan product: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &product.CarBrands); err != nil {
		return product, fmt.Errorf("invalid car_brands for product %q: %w", product.ID, err)
	}
	return product, nil
}

func encodeCarBrands(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode car brands: %w", err)
	}
	return string(data), nil
}
