package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product id is not in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCatalogUnavailable is returned before the first catalog snapshot is loaded
	ErrCatalogUnavailable = errors.New("catalog not loaded")

	// ErrFeedFailure is returned when the vendor feed request fails
	ErrFeedFailure = errors.New("vendor feed request failed")

	// ErrUnsupportedFormat is returned for catalog files with an unknown extension
	ErrUnsupportedFormat = errors.New("unsupported catalog file format")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
