package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogRepository defines the persistence of catalog products.
// ListProducts returns products in catalog order.
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	UpsertProducts(ctx context.Context, products ...Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// CatalogSource supplies a full catalog from outside the store
// (seed files, vendor feeds).
type CatalogSource interface {
	FetchProducts(ctx context.Context) ([]Product, error)
}
