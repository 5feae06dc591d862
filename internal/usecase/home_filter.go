package usecase

import (
	"strings"

	"github.com/partsmarket/backend/internal/domain"
)

// FilterHomeProducts applies the storefront filters to a catalog.
//
// Fitment runs first and the title search only narrows what fitment kept, so
// a title match on a product known not to fit never surfaces. Products keep
// their catalog order.
func FilterHomeProducts(products []domain.Product, input domain.FilterInput) domain.FilterResult {
	return runHomeFilter(
		products,
		input,
		func(i int) domain.FitmentMatch {
			return GetProductFitmentMatch(products[i], input.SelectedBrand, input.SelectedModel)
		},
		func(i int) string {
			return NormalizeArabic(products[i].Title)
		},
	)
}

// runHomeFilter is the two-stage pipeline. matchAt and titleAt supply the
// fitment decision and normalized title of products[i], so callers holding
// precomputed data avoid re-parsing.
func runHomeFilter(
	products []domain.Product,
	input domain.FilterInput,
	matchAt func(i int) domain.FitmentMatch,
	titleAt func(i int) string,
) domain.FilterResult {
	// Stage A: fitment
	kept := make([]int, 0, len(products))
	uncertain := make(map[string]struct{})
	for i := range products {
		match := matchAt(i)
		switch {
		case match.Confirmed:
			kept = append(kept, i)
		case input.SelectedBrand != "" && input.IncludeUncertain && match.Uncertain:
			kept = append(kept, i)
			uncertain[products[i].ID] = struct{}{}
		}
	}

	// Stage B: title query over the fitment survivors
	query := NormalizeArabic(input.NameQuery)
	if query != "" {
		matched := make([]int, 0, len(kept))
		narrowed := make(map[string]struct{})
		for _, i := range kept {
			if !strings.Contains(titleAt(i), query) {
				continue
			}
			matched = append(matched, i)
			if _, ok := uncertain[products[i].ID]; ok {
				narrowed[products[i].ID] = struct{}{}
			}
		}
		kept = matched
		uncertain = narrowed
	}

	items := make([]domain.Product, 0, len(kept))
	for _, i := range kept {
		items = append(items, products[i])
	}

	return domain.FilterResult{
		Items:        items,
		UncertainIDs: uncertain,
	}
}
