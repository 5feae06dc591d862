package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/partsmarket/backend/internal/domain"
	"github.com/partsmarket/backend/internal/usecase"
	"github.com/rs/zerolog/log"
)

const (
	serviceName    = "partsmarket-backend"
	serviceVersion = "1.0.0"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog *usecase.CatalogService
	feed    domain.CatalogSource
}

// NewHandler creates a new HTTP handler. catalog may be nil, in which case
// API routes answer 501. feed may be nil, which disables catalog sync.
func NewHandler(catalog *usecase.CatalogService, feed domain.CatalogSource) *Handler {
	return &Handler{
		catalog: catalog,
		feed:    feed,
	}
}

type productItem struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	CarBrands        []string `json:"carBrands"`
	FitmentUncertain bool     `json:"fitmentUncertain"`
}

type productListResponse struct {
	Items          []productItem `json:"items"`
	UncertainIDs   []string      `json:"uncertainIds"`
	Total          int           `json:"total"`
	CatalogVersion uint64        `json:"catalogVersion"`
}

type fitmentResponse struct {
	Confirmed bool `json:"confirmed"`
	Uncertain bool `json:"uncertain"`
	Excluded  bool `json:"excluded"`
}

type upsertProductRequest struct {
	Title     string   `json:"title" binding:"required"`
	CarBrands []string `json:"carBrands"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	var catalogVersion uint64
	if h.catalog != nil {
		if snapshot, err := h.catalog.Snapshot(); err == nil {
			catalogVersion = snapshot.Version()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"service":        serviceName,
		"version":        serviceVersion,
		"catalogVersion": catalogVersion,
	})
}

// RequireCatalog aborts API requests with 501 when no catalog service is wired
func (h *Handler) RequireCatalog() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.catalog == nil {
			c.AbortWithStatusJSON(http.StatusNotImplemented, gin.H{
				"error": "catalog service not configured",
			})
			return
		}
		c.Next()
	}
}

// ListProducts filters the storefront catalog
func (h *Handler) ListProducts(c *gin.Context) {
	includeUncertain := false
	if raw := c.Query("includeUncertain"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "includeUncertain must be a boolean"})
			return
		}
		includeUncertain = parsed
	}

	result, err := h.catalog.FilterProducts(c.Request.Context(), domain.FilterInput{
		SelectedBrand:    c.Query("brand"),
		SelectedModel:    c.Query("model"),
		NameQuery:        c.Query("q"),
		IncludeUncertain: includeUncertain,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]productItem, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, productItem{
			ID:               p.ID,
			Title:            p.Title,
			CarBrands:        nonNil(p.CarBrands),
			FitmentUncertain: result.IsUncertain(p.ID),
		})
	}

	c.JSON(http.StatusOK, productListResponse{
		Items:          items,
		UncertainIDs:   result.UncertainIDList(),
		Total:          len(items),
		CatalogVersion: result.CatalogVersion,
	})
}

// GetProductFitment classifies one product against the selection
func (h *Handler) GetProductFitment(c *gin.Context) {
	match, err := h.catalog.ProductFitment(c.Request.Context(), c.Param("id"), c.Query("brand"), c.Query("model"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, fitmentResponse{
		Confirmed: match.Confirmed,
		Uncertain: match.Uncertain,
		Excluded:  match.Excluded(),
	})
}

// GetProduct returns the stored product
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.catalog.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	product.CarBrands = nonNil(product.CarBrands)
	c.JSON(http.StatusOK, product)
}

// UpsertProduct creates or replaces a product
func (h *Handler) UpsertProduct(c *gin.Context) {
	var req upsertProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	product := domain.Product{
		ID:        c.Param("id"),
		Title:     req.Title,
		CarBrands: nonNil(req.CarBrands),
	}
	if err := h.catalog.UpsertProduct(c.Request.Context(), product); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetFitmentOptions returns the brand and model selector lists
func (h *Handler) GetFitmentOptions(c *gin.Context) {
	options, err := h.catalog.FitmentOptions(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, options)
}

// SuggestBrands returns brands ranked against a partial query
func (h *Handler) SuggestBrands(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	brands, err := h.catalog.SuggestBrands(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"brands": nonNil(brands)})
}

// ReloadCatalog rebuilds the snapshot from the repository
func (h *Handler) ReloadCatalog(c *gin.Context) {
	snapshot, err := h.catalog.Reload(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"catalogVersion": snapshot.Version(),
		"total":          snapshot.Len(),
	})
}

// SyncCatalog pulls the vendor feed into the catalog
func (h *Handler) SyncCatalog(c *gin.Context) {
	if h.feed == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "vendor feed not configured"})
		return
	}

	count, err := h.catalog.SyncFrom(c.Request.Context(), h.feed)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var catalogVersion uint64
	if snapshot, err := h.catalog.Snapshot(); err == nil {
		catalogVersion = snapshot.Version()
	}

	c.JSON(http.StatusOK, gin.H{
		"synced":         count,
		"catalogVersion": catalogVersion,
	})
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrFeedFailure):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrCatalogUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("component", "http").Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
