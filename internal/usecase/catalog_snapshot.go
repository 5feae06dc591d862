package usecase

import (
	"slices"

	"github.com/partsmarket/backend/internal/domain"
	"golang.org/x/text/language"
)

// CatalogSnapshot is an immutable view of the catalog at one version.
// Fitment tags and normalized titles are computed once when the snapshot is
// built; a catalog change produces a new snapshot instead of mutating this one.
type CatalogSnapshot struct {
	version  uint64
	products []domain.Product
	entries  []snapshotEntry
	index    map[string]int
}

type snapshotEntry struct {
	fitment ProductFitment
	title   string
}

// NewCatalogSnapshot copies products and precomputes their search data.
func NewCatalogSnapshot(version uint64, products []domain.Product) *CatalogSnapshot {
	snapshot := &CatalogSnapshot{
		version:  version,
		products: make([]domain.Product, len(products)),
		entries:  make([]snapshotEntry, len(products)),
		index:    make(map[string]int, len(products)),
	}

	for i, product := range products {
		product.CarBrands = slices.Clone(product.CarBrands)
		snapshot.products[i] = product
		snapshot.entries[i] = snapshotEntry{
			fitment: ParseProductFitment(product.CarBrands),
			title:   NormalizeArabic(product.Title),
		}
		snapshot.index[product.ID] = i
	}

	return snapshot
}

// Version returns the catalog version this snapshot was built from.
func (s *CatalogSnapshot) Version() uint64 {
	return s.version
}

// Len returns the number of products.
func (s *CatalogSnapshot) Len() int {
	return len(s.products)
}

// Product looks up a product by id.
func (s *CatalogSnapshot) Product(id string) (domain.Product, bool) {
	i, ok := s.index[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.products[i], true
}

// Filter runs the storefront filter over the snapshot.
func (s *CatalogSnapshot) Filter(input domain.FilterInput) domain.FilterResult {
	return runHomeFilter(
		s.products,
		input,
		func(i int) domain.FitmentMatch {
			return s.entries[i].fitment.Match(input.SelectedBrand, input.SelectedModel)
		},
		func(i int) string {
			return s.entries[i].title
		},
	)
}

// Match classifies one product. ok is false when the id is unknown.
func (s *CatalogSnapshot) Match(id, selectedBrand, selectedModel string) (match domain.FitmentMatch, ok bool) {
	i, ok := s.index[id]
	if !ok {
		return domain.FitmentMatch{}, false
	}
	return s.entries[i].fitment.Match(selectedBrand, selectedModel), true
}

// Options builds the selector lists from the precomputed fitment data.
func (s *CatalogSnapshot) Options(locale language.Tag) domain.FitmentOptions {
	models := make(map[string]map[string]struct{})
	for _, entry := range s.entries {
		for brand, set := range entry.fitment.models {
			merged, ok := models[brand]
			if !ok {
				merged = make(map[string]struct{}, len(set))
				models[brand] = merged
			}
			for model := range set {
				merged[model] = struct{}{}
			}
		}
	}
	return buildFitmentOptions(models, locale)
}
