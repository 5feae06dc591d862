package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/partsmarket/backend/config"
	"github.com/partsmarket/backend/internal/domain"
	"github.com/partsmarket/backend/internal/infrastructure/cache"
	"github.com/partsmarket/backend/internal/infrastructure/store"
	"github.com/partsmarket/backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

var storefrontProducts = []domain.Product{
	{ID: "p1", Title: "فلتر زيت", CarBrands: []string{"تويوتا - كورولا"}},
	{ID: "p2", Title: "فلتر هواء", CarBrands: []string{"تويوتا - كامري"}},
	{ID: "p3", Title: "فحمات فرامل", CarBrands: []string{"تويوتا"}},
	{ID: "p4", Title: "بطارية", CarBrands: []string{}},
	{ID: "p5", Title: "مساعدات أمامية", CarBrands: []string{"هيونداي - النترا"}},
}

type stubSource struct {
	products []domain.Product
	err      error
}

func (s stubSource) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Cache: config.CacheConfig{Type: "memory"},
	}
}

// setupTestRouter creates a router over a loaded in-memory catalog
func setupTestRouter(t *testing.T, feed domain.CatalogSource) (*gin.Engine, *usecase.CatalogService) {
	t.Helper()

	memCache := cache.NewMemoryCache()
	t.Cleanup(func() { memCache.Close() })

	service := usecase.NewCatalogService(store.NewMemoryRepository(storefrontProducts...), memCache, usecase.CatalogServiceConfig{})
	_, err := service.Reload(context.Background())
	require.NoError(t, err)

	return SetupRouter(testConfig(), NewHandler(service, feed)), service
}

func doRequest(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) productListResponse {
	t.Helper()
	var resp productListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func itemIDs(items []productItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status with catalog version", func(t *testing.T) {
		router, _ := setupTestRouter(t, nil)

		w := doRequest(router, "GET", "/health", "")
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, "partsmarket-backend", response["service"])
		assert.Equal(t, float64(1), response["catalogVersion"])
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router, _ := setupTestRouter(t, nil)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w := doRequest(router, method, "/health", "")
			assert.Equal(t, http.StatusNotFound, w.Code, method)
		}
	})
}

func TestListProducts(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	tests := []struct {
		name          string
		target        string
		wantIDs       []string
		wantUncertain []string
	}{
		{
			name:          "no selection returns everything",
			target:        "/api/v1/products",
			wantIDs:       []string{"p1", "p2", "p3", "p4", "p5"},
			wantUncertain: []string{},
		},
		{
			name:          "brand and model, confirmed only",
			target:        "/api/v1/products?brand=تويوتا&model=كورولا",
			wantIDs:       []string{"p1"},
			wantUncertain: []string{},
		},
		{
			name:          "brand and model with uncertain",
			target:        "/api/v1/products?brand=تويوتا&model=كورولا&includeUncertain=true",
			wantIDs:       []string{"p1", "p2", "p3", "p4"},
			wantUncertain: []string{"p2", "p3", "p4"},
		},
		{
			name:          "name query applies after fitment",
			target:        "/api/v1/products?brand=تويوتا&model=كورولا&includeUncertain=true&q=فحمات",
			wantIDs:       []string{"p3"},
			wantUncertain: []string{"p3"},
		},
		{
			name:          "name query is normalized",
			target:        "/api/v1/products?q=امامية",
			wantIDs:       []string{"p5"},
			wantUncertain: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "GET", tt.target, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			resp := decodeList(t, w)
			assert.Equal(t, tt.wantIDs, itemIDs(resp.Items))
			assert.Equal(t, tt.wantUncertain, resp.UncertainIDs)
			assert.Equal(t, len(tt.wantIDs), resp.Total)
			assert.Equal(t, uint64(1), resp.CatalogVersion)

			for _, item := range resp.Items {
				assert.Equal(t, contains(tt.wantUncertain, item.ID), item.FitmentUncertain, item.ID)
				assert.NotNil(t, item.CarBrands)
			}
		})
	}
}

func TestListProducts_BadRequests(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	for _, target := range []string{
		"/api/v1/products?includeUncertain=maybe",
		"/api/v1/products?model=كورولا",
	} {
		w := doRequest(router, "GET", target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestGetProductFitment(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	t.Run("uncertain for brand-only tag", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/v1/products/p3/fitment?brand=تويوتا&model=كورولا", "")
		require.Equal(t, http.StatusOK, w.Code)

		var match domain.FitmentMatch
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &match))
		assert.Equal(t, domain.FitmentMatch{Confirmed: false, Uncertain: true}, match)
	})

	t.Run("excluded for another brand", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/v1/products/p5/fitment?brand=تويوتا", "")
		require.Equal(t, http.StatusOK, w.Code)

		var response fitmentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, fitmentResponse{Excluded: true}, response)
	})

	t.Run("unknown product", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/v1/products/nope/fitment?brand=تويوتا", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetProduct(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w := doRequest(router, "GET", "/api/v1/products/p1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var product domain.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.Equal(t, "p1", product.ID)
	assert.Equal(t, storefrontProducts[0].CarBrands, product.CarBrands)

	w = doRequest(router, "GET", "/api/v1/products/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpsertAndDeleteProduct(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w := doRequest(router, "PUT", "/api/v1/products/p6", `{"title":"فلتر بنزين","carBrands":["نيسان - صني"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeList(t, doRequest(router, "GET", "/api/v1/products?brand=نيسان&model=صني", ""))
	assert.Equal(t, []string{"p6"}, itemIDs(resp.Items))
	assert.Equal(t, uint64(2), resp.CatalogVersion)

	w = doRequest(router, "DELETE", "/api/v1/products/p6", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	resp = decodeList(t, doRequest(router, "GET", "/api/v1/products?brand=نيسان&model=صني", ""))
	assert.Empty(t, resp.Items)

	w = doRequest(router, "DELETE", "/api/v1/products/p6", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpsertProduct_RequiresTitle(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w := doRequest(router, "PUT", "/api/v1/products/p7", `{"carBrands":["كيا"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFitmentOptionsEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w := doRequest(router, "GET", "/api/v1/fitment/options", "")
	require.Equal(t, http.StatusOK, w.Code)

	var options domain.FitmentOptions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &options))
	assert.ElementsMatch(t, []string{"تويوتا", "هيونداي"}, options.Brands)
	assert.ElementsMatch(t, []string{"كامري", "كورولا"}, options.ModelsByBrand["تويوتا"])
	assert.Equal(t, []string{"النترا"}, options.ModelsByBrand["هيونداي"])
}

func TestSuggestBrandsEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w := doRequest(router, "GET", "/api/v1/fitment/brands/suggest?q=تو", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Brands []string `json:"brands"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, []string{"تويوتا"}, response.Brands)

	w = doRequest(router, "GET", "/api/v1/fitment/brands/suggest?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReloadCatalogEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w := doRequest(router, "POST", "/api/v1/catalog/reload", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["catalogVersion"])
	assert.Equal(t, float64(len(storefrontProducts)), response["total"])
}

func TestSyncCatalogEndpoint(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		router, _ := setupTestRouter(t, nil)

		w := doRequest(router, "POST", "/api/v1/catalog/sync", "")
		assert.Equal(t, http.StatusNotImplemented, w.Code)
	})

	t.Run("imports feed products", func(t *testing.T) {
		feed := stubSource{products: []domain.Product{{ID: "f1", Title: "كفرات", CarBrands: []string{"كيا"}}}}
		router, service := setupTestRouter(t, feed)

		w := doRequest(router, "POST", "/api/v1/catalog/sync", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		snapshot, err := service.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, len(storefrontProducts)+1, snapshot.Len())
	})

	t.Run("invalid feed items are skipped", func(t *testing.T) {
		feed := stubSource{products: []domain.Product{
			{ID: "f1", Title: "كفرات", CarBrands: []string{"كيا"}},
			{ID: "", Title: "بلا رقم"},
		}}
		router, service := setupTestRouter(t, feed)

		w := doRequest(router, "POST", "/api/v1/catalog/sync", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(1), response["synced"])

		snapshot, err := service.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, len(storefrontProducts)+1, snapshot.Len())
		_, ok := snapshot.Product("f1")
		assert.True(t, ok)
	})

	t.Run("feed failure is a bad gateway", func(t *testing.T) {
		feed := stubSource{err: errors.Join(domain.ErrFeedFailure, errors.New("status 500"))}
		router, _ := setupTestRouter(t, feed)

		w := doRequest(router, "POST", "/api/v1/catalog/sync", "")
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestCatalogNotConfigured(t *testing.T) {
	router := SetupRouter(testConfig(), NewHandler(nil, nil))

	w := doRequest(router, "GET", "/api/v1/products", "")
	require.Equal(t, http.StatusNotImplemented, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "not configured")

	w = doRequest(router, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogNotLoaded(t *testing.T) {
	service := usecase.NewCatalogService(store.NewMemoryRepository(), nil, usecase.CatalogServiceConfig{})
	router := SetupRouter(testConfig(), NewHandler(service, nil))

	w := doRequest(router, "GET", "/api/v1/products", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCORSIntegration(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	req := httptest.NewRequest("GET", "/api/v1/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware(), RecoveryMiddleware())
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := doRequest(router, "GET", "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAPIVersioning(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w := doRequest(router, "GET", "/products", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
