package usecase

import (
	"reflect"
	"testing"

	"github.com/partsmarket/backend/internal/domain"
)

func productIDs(products []domain.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func toggleCatalog() []domain.Product {
	return []domain.Product{
		{ID: "p1", Title: "تيل فرامل كورولا", CarBrands: []string{"تويوتا - كورولا"}},
		{ID: "p2", Title: "فلتر هواء توسان", CarBrands: []string{"هيونداي - توسان"}},
		{ID: "p3", Title: "بطارية 70 أمبير", CarBrands: []string{}},
		{ID: "p4", Title: "فلتر زيت", CarBrands: []string{"تويوتا"}},
	}
}

func TestFilterHomeProducts(t *testing.T) {
	tests := []struct {
		name          string
		input         domain.FilterInput
		wantIDs       []string
		wantUncertain []string
	}{
		{
			name:          "no filters keeps catalog order",
			input:         domain.FilterInput{},
			wantIDs:       []string{"p1", "p2", "p3", "p4"},
			wantUncertain: []string{},
		},
		{
			name:          "include uncertain without brand adds nothing",
			input:         domain.FilterInput{IncludeUncertain: true},
			wantIDs:       []string{"p1", "p2", "p3", "p4"},
			wantUncertain: []string{},
		},
		{
			name:          "brand and model, confirmed only",
			input:         domain.FilterInput{SelectedBrand: "تويوتا", SelectedModel: "كورولا"},
			wantIDs:       []string{"p1"},
			wantUncertain: []string{},
		},
		{
			name:          "brand and model with uncertain",
			input:         domain.FilterInput{SelectedBrand: "تويوتا", SelectedModel: "كورولا", IncludeUncertain: true},
			wantIDs:       []string{"p1", "p3", "p4"},
			wantUncertain: []string{"p3", "p4"},
		},
		{
			name:          "brand only confirms brand-only tags",
			input:         domain.FilterInput{SelectedBrand: "تويوتا"},
			wantIDs:       []string{"p1", "p4"},
			wantUncertain: []string{},
		},
		{
			name:          "brand only with uncertain adds products without data",
			input:         domain.FilterInput{SelectedBrand: "تويوتا", IncludeUncertain: true},
			wantIDs:       []string{"p1", "p3", "p4"},
			wantUncertain: []string{"p3"},
		},
		{
			name:          "query narrows uncertain ids",
			input:         domain.FilterInput{SelectedBrand: "تويوتا", SelectedModel: "كورولا", IncludeUncertain: true, NameQuery: "فلتر"},
			wantIDs:       []string{"p4"},
			wantUncertain: []string{"p4"},
		},
		{
			name:          "query without selection",
			input:         domain.FilterInput{NameQuery: "فلتر"},
			wantIDs:       []string{"p2", "p4"},
			wantUncertain: []string{},
		},
		{
			name:          "query must match as one substring",
			input:         domain.FilterInput{NameQuery: "  بطاريه امبير "},
			wantIDs:       []string{},
			wantUncertain: []string{},
		},
		{
			name:          "query matches across hamza and taa marbuta",
			input:         domain.FilterInput{NameQuery: "بطاريه 70 امبير"},
			wantIDs:       []string{"p3"},
			wantUncertain: []string{},
		},
		{
			name:          "blank query is ignored",
			input:         domain.FilterInput{SelectedBrand: "هيونداي", NameQuery: "   "},
			wantIDs:       []string{"p2"},
			wantUncertain: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FilterHomeProducts(toggleCatalog(), tt.input)

			if got := productIDs(result.Items); !reflect.DeepEqual(got, tt.wantIDs) {
				t.Errorf("items = %v, want %v", got, tt.wantIDs)
			}
			if got := result.UncertainIDList(); !reflect.DeepEqual(got, tt.wantUncertain) {
				t.Errorf("uncertainIds = %v, want %v", got, tt.wantUncertain)
			}
		})
	}
}

func TestFilterHomeProducts_FitmentRunsBeforeQuery(t *testing.T) {
	products := []domain.Product{
		{ID: "p1", Title: "تيل فرامل كورولا", CarBrands: []string{"تويوتا - كورولا"}},
		{ID: "p2", Title: "فلتر هواء توسان", CarBrands: []string{"هيونداي - توسان"}},
	}

	result := FilterHomeProducts(products, domain.FilterInput{
		SelectedBrand: "تويوتا",
		SelectedModel: "كورولا",
		NameQuery:     "فلتر",
	})

	if len(result.Items) != 0 {
		t.Errorf("items = %v, want none", productIDs(result.Items))
	}
	if len(result.UncertainIDs) != 0 {
		t.Errorf("uncertainIds = %v, want none", result.UncertainIDList())
	}
}

func TestFilterHomeProducts_EmptyCatalog(t *testing.T) {
	result := FilterHomeProducts(nil, domain.FilterInput{SelectedBrand: "تويوتا", IncludeUncertain: true})

	if result.Items == nil {
		t.Error("Items should be an empty slice, not nil")
	}
	if len(result.Items) != 0 || len(result.UncertainIDs) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestFilterHomeProducts_DoesNotMutateInput(t *testing.T) {
	products := toggleCatalog()
	before := toggleCatalog()

	FilterHomeProducts(products, domain.FilterInput{SelectedBrand: "تويوتا", SelectedModel: "كورولا", IncludeUncertain: true, NameQuery: "فلتر"})

	if !reflect.DeepEqual(products, before) {
		t.Error("input catalog was modified")
	}
}
