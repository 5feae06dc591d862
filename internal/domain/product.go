package domain

import "sort"

// Product is a catalog entry as far as fitment filtering is concerned.
type Product struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	// CarBrands holds raw compatibility tags, each "Brand" or "Brand - Model".
	// An empty list means no fitment data was recorded for the product.
	CarBrands []string `json:"carBrands" yaml:"carBrands"`
}

// FitmentTag is a parsed compatibility tag. Model is empty for brand-only tags.
type FitmentTag struct {
	Brand string `json:"brand"`
	Model string `json:"model,omitempty"`
}

// HasModel reports whether the tag names a specific model.
func (t FitmentTag) HasModel() bool {
	return t.Model != ""
}

// FitmentOptions feeds the brand/model selectors of the storefront.
type FitmentOptions struct {
	Brands        []string            `json:"brands"`
	ModelsByBrand map[string][]string `json:"modelsByBrand"`
}

// FitmentMatch classifies a product against a brand/model selection.
// Confirmed and Uncertain are never both true.
type FitmentMatch struct {
	Confirmed bool `json:"confirmed"`
	Uncertain bool `json:"uncertain"`
}

// Excluded reports whether the product is known not to fit.
func (m FitmentMatch) Excluded() bool {
	return !m.Confirmed && !m.Uncertain
}

// FilterInput is the storefront filter selection.
type FilterInput struct {
	SelectedBrand    string `json:"selectedBrand"`
	SelectedModel    string `json:"selectedModel"`
	NameQuery        string `json:"nameQuery"`
	IncludeUncertain bool   `json:"includeUncertain"`
}

// FilterResult holds the filtered products in catalog order together with
// the ids that were kept only because their fitment is uncertain.
type FilterResult struct {
	Items        []Product           `json:"items"`
	UncertainIDs map[string]struct{} `json:"-"`
}

// IsUncertain reports whether id was kept through the uncertain branch.
func (r *FilterResult) IsUncertain(id string) bool {
	_, ok := r.UncertainIDs[id]
	return ok
}

// UncertainIDList returns the uncertain ids sorted, for stable output.
func (r *FilterResult) UncertainIDList() []string {
	ids := make([]string, 0, len(r.UncertainIDs))
	for id := range r.UncertainIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
