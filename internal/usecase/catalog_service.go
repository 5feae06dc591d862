package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/partsmarket/backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/language"
)

// optionsCachePrefix namespaces cached fitment options. Keys carry the
// snapshot version, and the whole prefix is dropped on every reload.
const optionsCachePrefix = "fitment:options:"

const defaultSuggestLimit = 10

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	OptionsCacheTTL time.Duration
	Locale          language.Tag
}

// CatalogService serves storefront queries from the current catalog snapshot
// and swaps in a new snapshot whenever the catalog changes.
type CatalogService struct {
	repo       domain.CatalogRepository
	cache      domain.CacheRepository
	optionsTTL time.Duration
	locale     language.Tag

	snapshot atomic.Pointer[CatalogSnapshot]
	reloadMu sync.Mutex
}

// FilteredCatalog is a filter result tagged with the snapshot version it
// was computed from.
type FilteredCatalog struct {
	domain.FilterResult
	CatalogVersion uint64
}

// NewCatalogService creates a new catalog service with dependencies.
// cache may be nil, in which case options are recomputed on every call.
func NewCatalogService(
	repo domain.CatalogRepository,
	cache domain.CacheRepository,
	config CatalogServiceConfig,
) *CatalogService {
	ttl := config.OptionsCacheTTL
	if ttl == 0 {
		ttl = 10 * time.Minute
	}

	locale := config.Locale
	if locale == language.Und {
		locale = DefaultCatalogLocale
	}

	return &CatalogService{
		repo:       repo,
		cache:      cache,
		optionsTTL: ttl,
		locale:     locale,
	}
}

// Reload reads the catalog from the repository and publishes it as the next
// snapshot version.
func (s *CatalogService) Reload(ctx context.Context) (*CatalogSnapshot, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog products: %w", err)
	}

	version := uint64(1)
	if current := s.snapshot.Load(); current != nil {
		version = current.Version() + 1
	}

	next := NewCatalogSnapshot(version, products)
	s.snapshot.Store(next)
	s.invalidateOptions(ctx)

	log.Info().
		Str("component", "catalog").
		Uint64("version", version).
		Int("products", next.Len()).
		Msg("catalog snapshot published")

	return next, nil
}

// Snapshot returns the current catalog snapshot.
func (s *CatalogService) Snapshot() (*CatalogSnapshot, error) {
	current := s.snapshot.Load()
	if current == nil {
		return nil, domain.ErrCatalogUnavailable
	}
	return current, nil
}

// FilterProducts runs the storefront filter against the current snapshot.
func (s *CatalogService) FilterProducts(ctx context.Context, input domain.FilterInput) (*FilteredCatalog, error) {
	input, err := NormalizeSelection(input)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	result := snapshot.Filter(input)

	log.Debug().
		Str("component", "catalog").
		Str("brand", input.SelectedBrand).
		Str("model", input.SelectedModel).
		Str("query", input.NameQuery).
		Bool("include_uncertain", input.IncludeUncertain).
		Int("items", len(result.Items)).
		Int("uncertain", len(result.UncertainIDs)).
		Msg("filtered catalog")

	return &FilteredCatalog{
		FilterResult:   result,
		CatalogVersion: snapshot.Version(),
	}, nil
}

// ProductFitment classifies a single product against a selection.
func (s *CatalogService) ProductFitment(
	ctx context.Context,
	id, selectedBrand, selectedModel string,
) (domain.FitmentMatch, error) {
	input, err := NormalizeSelection(domain.FilterInput{
		SelectedBrand: selectedBrand,
		SelectedModel: selectedModel,
	})
	if err != nil {
		return domain.FitmentMatch{}, err
	}

	snapshot, err := s.Snapshot()
	if err != nil {
		return domain.FitmentMatch{}, err
	}

	match, ok := snapshot.Match(id, input.SelectedBrand, input.SelectedModel)
	if !ok {
		return domain.FitmentMatch{}, domain.ErrProductNotFound
	}
	return match, nil
}

// FitmentOptions returns the brand and model selector lists for the current
// snapshot, served from cache when possible.
func (s *CatalogService) FitmentOptions(ctx context.Context) (*domain.FitmentOptions, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	key := s.optionsCacheKey(snapshot.Version())
	if cached, err := s.getOptionsFromCache(ctx, key); err == nil {
		return cached, nil
	}

	options := snapshot.Options(s.locale)
	if err := s.setOptionsInCache(ctx, key, &options); err != nil {
		log.Warn().Err(err).Str("component", "catalog").Str("key", key).Msg("failed to cache fitment options")
	}

	return &options, nil
}

// SuggestBrands ranks known brands against a partial query for selector
// typeahead. Matching runs on normalized text so spelling variants still hit.
func (s *CatalogService) SuggestBrands(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	options, err := s.FitmentOptions(ctx)
	if err != nil {
		return nil, err
	}

	needle := NormalizeArabic(query)
	if needle == "" {
		return options.Brands[:min(limit, len(options.Brands))], nil
	}

	haystack := make([]string, len(options.Brands))
	for i, brand := range options.Brands {
		haystack[i] = NormalizeArabic(brand)
	}

	matches := fuzzy.Find(needle, haystack)
	suggestions := make([]string, 0, min(limit, len(matches)))
	for _, match := range matches {
		if len(suggestions) == limit {
			break
		}
		suggestions = append(suggestions, options.Brands[match.Index])
	}
	return suggestions, nil
}

// UpsertProduct stores a product and publishes a new snapshot.
func (s *CatalogService) UpsertProduct(ctx context.Context, product domain.Product) error {
	if _, err := s.ImportProducts(ctx, []domain.Product{product}); err != nil {
		return err
	}
	return nil
}

// DeleteProduct removes a product and publishes a new snapshot.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrInvalidRequest
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	_, err := s.Reload(ctx)
	return err
}

// ImportProducts upserts a batch of products and publishes a new snapshot.
// Products absent from the batch are left untouched.
func (s *CatalogService) ImportProducts(ctx context.Context, products []domain.Product) (int, error) {
	for i := range products {
		if err := validateProduct(products[i]); err != nil {
			return 0, fmt.Errorf("product %d: %w", i, err)
		}
	}

	if len(products) > 0 {
		if err := s.repo.UpsertProducts(ctx, products...); err != nil {
			return 0, fmt.Errorf("failed to store products: %w", err)
		}
	}

	if _, err := s.Reload(ctx); err != nil {
		return 0, err
	}
	return len(products), nil
}

// SyncFrom imports the full catalog offered by source. Source items that fail
// validation are skipped and logged; the returned count covers imported
// products only.
func (s *CatalogService) SyncFrom(ctx context.Context, source domain.CatalogSource) (int, error) {
	products, err := source.FetchProducts(ctx)
	if err != nil {
		return 0, err
	}

	valid := make([]domain.Product, 0, len(products))
	for i, product := range products {
		if err := validateProduct(product); err != nil {
			log.Warn().
				Err(err).
				Str("component", "catalog").
				Int("index", i).
				Str("id", product.ID).
				Msg("skipping invalid source product")
			continue
		}
		valid = append(valid, product)
	}

	count, err := s.ImportProducts(ctx, valid)
	if err != nil {
		return 0, err
	}

	log.Info().
		Str("component", "catalog").
		Int("products", count).
		Int("skipped", len(products)-len(valid)).
		Msg("catalog synced from source")
	return count, nil
}

// Product returns the stored copy of a product.
func (s *CatalogService) Product(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.repo.GetProduct(ctx, id)
}

// NormalizeSelection trims the selection and rejects a model without a brand.
// Callers of the filter functions apply it before filtering.
func NormalizeSelection(input domain.FilterInput) (domain.FilterInput, error) {
	input.SelectedBrand = strings.TrimSpace(input.SelectedBrand)
	input.SelectedModel = strings.TrimSpace(input.SelectedModel)

	if input.SelectedBrand == "" && input.SelectedModel != "" {
		return input, fmt.Errorf("%w: model %q selected without a brand", domain.ErrInvalidRequest, input.SelectedModel)
	}
	return input, nil
}

func validateProduct(product domain.Product) error {
	if strings.TrimSpace(product.ID) == "" {
		return fmt.Errorf("%w: product id is required", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(product.Title) == "" {
		return fmt.Errorf("%w: product title is required", domain.ErrInvalidRequest)
	}
	return nil
}

// optionsCacheKey format: "fitment:options:v{version}:{locale}"
func (s *CatalogService) optionsCacheKey(version uint64) string {
	return fmt.Sprintf("%sv%d:%s", optionsCachePrefix, version, s.locale)
}

func (s *CatalogService) getOptionsFromCache(ctx context.Context, key string) (*domain.FitmentOptions, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			log.Warn().Err(err).Str("component", "catalog").Str("key", key).Msg("cache read failed")
		}
		return nil, err
	}

	var options domain.FitmentOptions
	if err := json.Unmarshal(data, &options); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheMiss, err)
	}
	return &options, nil
}

func (s *CatalogService) setOptionsInCache(ctx context.Context, key string, options *domain.FitmentOptions) error {
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(options)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.optionsTTL)
}

func (s *CatalogService) invalidateOptions(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, optionsCachePrefix); err != nil {
		log.Warn().Err(err).Str("component", "catalog").Msg("failed to invalidate fitment options cache")
	}
}
