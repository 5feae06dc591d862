package store

import (
	"context"
	"slices"
	"sync"

	"github.com/partsmarket/backend/internal/domain"
)

// MemoryRepository keeps the catalog in process memory, in insertion order.
type MemoryRepository struct {
	mu       sync.RWMutex
	products []domain.Product
	index    map[string]int
}

// NewMemoryRepository creates a repository seeded with products.
func NewMemoryRepository(products ...domain.Product) *MemoryRepository {
	r := &MemoryRepository{index: make(map[string]int)}
	for _, p := range products {
		r.upsert(p)
	}
	return r
}

// ListProducts returns a copy of all products.
func (r *MemoryRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]domain.Product, len(r.products))
	for i, p := range r.products {
		products[i] = cloneProduct(p)
	}
	return products, nil
}

// GetProduct returns one product or domain.ErrProductNotFound.
func (r *MemoryRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	product := cloneProduct(r.products[i])
	return &product, nil
}

// UpsertProducts inserts or replaces products in place.
func (r *MemoryRepository) UpsertProducts(ctx context.Context, products ...domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range products {
		r.upsert(p)
	}
	return nil
}

// DeleteProduct removes a product or returns domain.ErrProductNotFound.
func (r *MemoryRepository) DeleteProduct(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return domain.ErrProductNotFound
	}

	r.products = slices.Delete(r.products, i, i+1)
	delete(r.index, id)
	for j := i; j < len(r.products); j++ {
		r.index[r.products[j].ID] = j
	}
	return nil
}

func (r *MemoryRepository) upsert(p domain.Product) {
	p = cloneProduct(p)
	if i, ok := r.index[p.ID]; ok {
		r.products[i] = p
		return
	}
	r.index[p.ID] = len(r.products)
	r.products = append(r.products, p)
}

func cloneProduct(p domain.Product) domain.Product {
	p.CarBrands = slices.Clone(p.CarBrands)
	return p
}
