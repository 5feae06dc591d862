package usecase

import (
	"strings"

	"github.com/partsmarket/backend/internal/domain"
)

// brandModelSeparator splits "Brand - Model" tags. Only the first occurrence
// separates; later ones belong to the model name.
const brandModelSeparator = " - "

// SplitBrandModel parses a raw compatibility tag. A tag without the separator
// is brand-only. An empty Brand in the result means the tag should be skipped.
func SplitBrandModel(raw string) domain.FitmentTag {
	value := strings.TrimSpace(raw)
	if value == "" {
		return domain.FitmentTag{}
	}

	brand, model, found := strings.Cut(value, brandModelSeparator)
	if !found {
		return domain.FitmentTag{Brand: value}
	}

	return domain.FitmentTag{
		Brand: strings.TrimSpace(brand),
		Model: strings.TrimSpace(model),
	}
}

// ProductFitment is the parsed fitment data of one product: each listed brand
// with the set of models listed under it. It is built once per product and
// reused across filter calls.
type ProductFitment struct {
	models map[string]map[string]struct{}
}

// ParseProductFitment parses every raw tag of a product, skipping tags whose
// brand is empty after trimming.
func ParseProductFitment(tags []string) ProductFitment {
	fitment := ProductFitment{}
	for _, raw := range tags {
		tag := SplitBrandModel(raw)
		if tag.Brand == "" {
			continue
		}
		if fitment.models == nil {
			fitment.models = make(map[string]map[string]struct{})
		}
		models, ok := fitment.models[tag.Brand]
		if !ok {
			models = make(map[string]struct{})
			fitment.models[tag.Brand] = models
		}
		if tag.HasModel() {
			models[tag.Model] = struct{}{}
		}
	}
	return fitment
}

// Empty reports whether the product carries no usable fitment data.
func (f ProductFitment) Empty() bool {
	return len(f.models) == 0
}

// HasBrand reports whether brand is listed, with or without models.
func (f ProductFitment) HasBrand(brand string) bool {
	_, ok := f.models[brand]
	return ok
}

// HasModel reports whether model is listed under brand. Comparison is exact.
func (f ProductFitment) HasModel(brand, model string) bool {
	_, ok := f.models[brand][model]
	return ok
}

// Match classifies the product against a selection. Rules apply in order:
// no brand selected, no fitment data, brand not listed, brand-only query,
// model listed, model not listed.
func (f ProductFitment) Match(selectedBrand, selectedModel string) domain.FitmentMatch {
	switch {
	case selectedBrand == "":
		return confirmedMatch
	case f.Empty():
		return uncertainMatch
	case !f.HasBrand(selectedBrand):
		return domain.FitmentMatch{}
	case selectedModel == "":
		return confirmedMatch
	case f.HasModel(selectedBrand, selectedModel):
		return confirmedMatch
	default:
		return uncertainMatch
	}
}

var (
	confirmedMatch = domain.FitmentMatch{Confirmed: true}
	uncertainMatch = domain.FitmentMatch{Uncertain: true}
)
