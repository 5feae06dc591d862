package usecase

import (
	"slices"
	"strings"

	"github.com/partsmarket/backend/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultCatalogLocale is the collation locale for brand and model lists.
var DefaultCatalogLocale = language.Arabic

// ExtractFitmentOptions builds the brand and per-brand model lists shown in
// the storefront selectors, sorted for the default catalog locale.
func ExtractFitmentOptions(products []domain.Product) domain.FitmentOptions {
	return ExtractFitmentOptionsForLocale(products, DefaultCatalogLocale)
}

// ExtractFitmentOptionsForLocale is ExtractFitmentOptions with an explicit
// collation locale. Every brand has an entry in ModelsByBrand, empty when
// only brand-only tags mention it.
func ExtractFitmentOptionsForLocale(products []domain.Product, locale language.Tag) domain.FitmentOptions {
	models := make(map[string]map[string]struct{})
	for _, product := range products {
		for _, raw := range product.CarBrands {
			tag := SplitBrandModel(raw)
			if tag.Brand == "" {
				continue
			}
			set, ok := models[tag.Brand]
			if !ok {
				set = make(map[string]struct{})
				models[tag.Brand] = set
			}
			if tag.HasModel() {
				set[tag.Model] = struct{}{}
			}
		}
	}
	return buildFitmentOptions(models, locale)
}

// buildFitmentOptions turns accumulated sets into sorted lists.
func buildFitmentOptions(models map[string]map[string]struct{}, locale language.Tag) domain.FitmentOptions {
	sorter := newCollationSorter(locale)

	options := domain.FitmentOptions{
		Brands:        make([]string, 0, len(models)),
		ModelsByBrand: make(map[string][]string, len(models)),
	}
	for brand, set := range models {
		options.Brands = append(options.Brands, brand)
		list := make([]string, 0, len(set))
		for model := range set {
			list = append(list, model)
		}
		sorter.sort(list)
		options.ModelsByBrand[brand] = list
	}
	sorter.sort(options.Brands)

	return options
}

// collationSorter orders strings with a Unicode collator. Strings the
// collator considers equal fall back to byte order so results are stable.
// A collator is not safe for concurrent use, so each build gets its own.
type collationSorter struct {
	collator *collate.Collator
}

func newCollationSorter(locale language.Tag) *collationSorter {
	return &collationSorter{collator: collate.New(locale)}
}

func (s *collationSorter) compare(a, b string) int {
	if c := s.collator.CompareString(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func (s *collationSorter) sort(list []string) {
	slices.SortFunc(list, s.compare)
}
