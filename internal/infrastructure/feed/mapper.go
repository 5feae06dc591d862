package feed

import (
	"strings"

	"github.com/partsmarket/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// PageResponse is one page of the vendor feed
type PageResponse struct {
	Items      []Item `json:"items"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
}

// Item is a vendor product with structured fitment
type Item struct {
	SKU     string    `json:"sku"`
	Name    string    `json:"name"`
	Fitment []Fitment `json:"fitment"`
}

// Fitment is one vehicle the vendor lists for an item. Model may be empty.
type Fitment struct {
	Make  string `json:"make"`
	Model string `json:"model,omitempty"`
}

// tagSeparator must match the separator the fitment parser splits on
const tagSeparator = " - "

// MapToProducts converts feed items to catalog products, keeping feed order
func MapToProducts(items []Item) []domain.Product {
	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		products = append(products, MapToProduct(item))
	}
	return products
}

// MapToProduct converts one feed item to our domain Product
func MapToProduct(item Item) domain.Product {
	return domain.Product{
		ID:        strings.TrimSpace(item.SKU),
		Title:     strings.TrimSpace(item.Name),
		CarBrands: fitmentTags(item.Fitment),
	}
}

// fitmentTags flattens structured fitment into raw "Make - Model" tags.
// Entries without a make are dropped; duplicates keep their first position.
// A separator inside the make is collapsed to "-" so the tag splits back
// into the same make; entries that still would not are dropped.
func fitmentTags(fitment []Fitment) []string {
	tags := make([]string, 0, len(fitment))
	seen := make(map[string]bool, len(fitment))

	for _, f := range fitment {
		brand := strings.ReplaceAll(strings.TrimSpace(f.Make), tagSeparator, "-")
		if brand == "" {
			continue
		}

		tag := brand
		if model := strings.TrimSpace(f.Model); model != "" {
			tag = brand + tagSeparator + model
		}

		if i := strings.Index(tag, tagSeparator); i >= 0 && i != len(brand) {
			log.Warn().
				Str("component", "feed").
				Str("make", f.Make).
				Str("model", f.Model).
				Msg("dropping fitment entry that cannot be encoded as a tag")
			continue
		}

		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	return tags
}
