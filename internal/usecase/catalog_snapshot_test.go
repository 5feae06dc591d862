package usecase

import (
	"testing"

	"github.com/partsmarket/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestCatalogSnapshot(t *testing.T) {
	products := serviceCatalog()
	snapshot := NewCatalogSnapshot(7, products)

	t.Run("metadata", func(t *testing.T) {
		assert.Equal(t, uint64(7), snapshot.Version())
		assert.Equal(t, 5, snapshot.Len())
		for _, want := range products {
			got, ok := snapshot.Product(want.ID)
			require.True(t, ok)
			assert.Equal(t, want, got)
		}
	})

	t.Run("product lookup", func(t *testing.T) {
		product, ok := snapshot.Product("p3")
		require.True(t, ok)
		assert.Equal(t, "فلتر زيت", product.Title)

		_, ok = snapshot.Product("nope")
		assert.False(t, ok)
	})

	t.Run("match", func(t *testing.T) {
		match, ok := snapshot.Match("p3", "تويوتا", "كورولا")
		require.True(t, ok)
		assert.Equal(t, domain.FitmentMatch{Uncertain: true}, match)

		_, ok = snapshot.Match("nope", "تويوتا", "")
		assert.False(t, ok)
	})

	t.Run("filter normalizes titles once", func(t *testing.T) {
		result := snapshot.Filter(domain.FilterInput{NameQuery: "بطاريه 70 امبير"})
		assert.Equal(t, []string{"p4"}, productIDs(result.Items))
	})

	t.Run("options honor the locale", func(t *testing.T) {
		english := NewCatalogSnapshot(1, []domain.Product{
			{ID: "a", Title: "x", CarBrands: []string{"bmw - X5", "Audi - a4", "Audi - A3"}},
		})
		options := english.Options(language.English)
		assert.Equal(t, []string{"Audi", "bmw"}, options.Brands)
		assert.Equal(t, []string{"A3", "a4"}, options.ModelsByBrand["Audi"])
	})
}

func TestCatalogSnapshot_IsolatedFromInput(t *testing.T) {
	products := serviceCatalog()
	snapshot := NewCatalogSnapshot(1, products)

	products[0].Title = "changed"
	products[0].CarBrands[0] = "نيسان - صني"

	product, ok := snapshot.Product("p1")
	require.True(t, ok)
	assert.Equal(t, "تيل فرامل كورولا", product.Title)
	assert.Equal(t, []string{"تويوتا - كورولا"}, product.CarBrands)

	match, _ := snapshot.Match("p1", "تويوتا", "كورولا")
	assert.True(t, match.Confirmed)
}
