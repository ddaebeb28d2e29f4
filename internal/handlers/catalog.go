package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/platform/httpx"
	"github.com/manira/api/internal/repositories"
	"github.com/manira/api/internal/services"
)

// CatalogHandlers exposes the public product, category and promotion
// preview endpoints.
type CatalogHandlers struct {
	catalog    services.CatalogService
	promotions services.PromotionService
}

const (
	maxPreviewBodySize  = 8 * 1024
	maxProductListLimit = 100
)

// NewCatalogHandlers constructs the public storefront handlers.
func NewCatalogHandlers(catalog services.CatalogService, promotions services.PromotionService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog, promotions: promotions}
}

// Routes wires the public catalog endpoints onto the API root.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)
	r.Get("/categories", h.listCategories)
	r.Post("/promotions:preview", h.previewPromotion)
}

type productPayload struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Price          float64 `json:"price"`
	Category       string  `json:"category,omitempty"`
	Material       string  `json:"material,omitempty"`
	Size           string  `json:"size,omitempty"`
	Weight         string  `json:"weight,omitempty"`
	ImageURL       string  `json:"image_url,omitempty"`
	InventoryCount int     `json:"inventory_count"`
	Active         bool    `json:"active"`
	CreatedAt      string  `json:"created_at,omitempty"`
	UpdatedAt      string  `json:"updated_at,omitempty"`
}

func buildProductPayload(product domain.Product) productPayload {
	return productPayload{
		ID:             product.ID,
		Name:           product.Name,
		Description:    product.Description,
		Price:          moneyMajor(product.Price),
		Category:       product.Category,
		Material:       product.Material,
		Size:           product.Size,
		Weight:         product.Weight,
		ImageURL:       product.ImageURL,
		InventoryCount: product.InventoryCount,
		Active:         product.Active,
		CreatedAt:      formatTime(product.CreatedAt),
		UpdatedAt:      formatTime(product.UpdatedAt),
	}
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	filter := repositories.ProductListFilter{
		Category:   strings.TrimSpace(r.URL.Query().Get("category")),
		ActiveOnly: true,
		Limit:      maxProductListLimit,
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "limit must be a positive integer", http.StatusBadRequest))
			return
		}
		if limit < maxProductListLimit {
			filter.Limit = limit
		}
	}

	products, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	payload := make([]productPayload, 0, len(products))
	for _, product := range products {
		payload = append(payload, buildProductPayload(product))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"products": payload})
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildProductPayload(product))
}

func (h *CatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"categories": categories})
}

type previewPromotionRequest struct {
	Code        string  `json:"code"`
	OrderAmount float64 `json:"order_amount"`
}

type previewPromotionResponse struct {
	Code           string  `json:"code"`
	Description    string  `json:"description,omitempty"`
	OriginalAmount float64 `json:"original_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
}

func (h *CatalogHandlers) previewPromotion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.promotions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("promotion_service_unavailable", "promotion service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxPreviewBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req previewPromotionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}
	if req.OrderAmount <= 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order_amount must be positive", http.StatusBadRequest))
		return
	}

	quote, err := h.promotions.Validate(ctx, req.Code, moneyMinor(req.OrderAmount))
	if err != nil {
		writePromotionError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, previewPromotionResponse{
		Code:           quote.Promotion.Code,
		Description:    quote.Promotion.Description,
		OriginalAmount: moneyMajor(quote.OriginalAmount),
		DiscountAmount: moneyMajor(quote.DiscountAmount),
		FinalAmount:    moneyMajor(quote.FinalAmount),
	})
}

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrProductInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrProductConflict):
		httpx.WriteError(ctx, w, httpx.NewError("product_conflict", "product was modified concurrently", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unable to process request", http.StatusInternalServerError))
	}
}

func writePromotionError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrPromotionInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrPromotionMinimumNotMet):
		httpx.WriteError(ctx, w, httpx.NewError("promotion_minimum_not_met", "order amount does not meet the promotion minimum", http.StatusBadRequest))
	case errors.Is(err, services.ErrPromotionNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("promotion_not_found", "promotion code is not valid", http.StatusNotFound))
	case errors.Is(err, services.ErrPromotionConflict):
		httpx.WriteError(ctx, w, httpx.NewError("promotion_conflict", "promotion was modified concurrently", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unable to process request", http.StatusInternalServerError))
	}
}
