package usecase

import "github.com/partsmarket/backend/internal/domain"

// GetProductFitmentMatch classifies a single product against the selected
// brand and model.
//
// A product without fitment data is uncertain rather than excluded so that
// items with missing data stay visible when the shopper opts in. A product
// listing the brand but not the requested model is uncertain for the same
// reason. selectedModel must be empty when selectedBrand is empty; callers
// validate that before getting here.
func GetProductFitmentMatch(product domain.Product, selectedBrand, selectedModel string) domain.FitmentMatch {
	if selectedBrand == "" {
		return confirmedMatch
	}
	return ParseProductFitment(product.CarBrands).Match(selectedBrand, selectedModel)
}
