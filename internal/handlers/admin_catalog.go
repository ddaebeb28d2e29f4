package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/platform/httpx"
	"github.com/manira/api/internal/repositories"
	"github.com/manira/api/internal/services"
)

// AdminCatalogHandlers exposes the administrative product, promotion and
// settings endpoints.
type AdminCatalogHandlers struct {
	catalog    services.CatalogService
	promotions services.PromotionService
	settings   services.SettingsService
}

// NewAdminCatalogHandlers constructs the admin catalog handlers.
func NewAdminCatalogHandlers(catalog services.CatalogService, promotions services.PromotionService, settings services.SettingsService) *AdminCatalogHandlers {
	return &AdminCatalogHandlers{catalog: catalog, promotions: promotions, settings: settings}
}

// Routes wires the admin catalog endpoints onto the /admin group.
func (h *AdminCatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Get("/products/{productID}", h.getProduct)
	r.Put("/products/{productID}", h.updateProduct)
	r.Delete("/products/{productID}", h.deleteProduct)

	r.Get("/promotions", h.listPromotions)
	r.Post("/promotions", h.createPromotion)
	r.Get("/promotions/{promotionID}", h.getPromotion)
	r.Put("/promotions/{promotionID}", h.updatePromotion)
	r.Delete("/promotions/{promotionID}", h.deletePromotion)

	r.Get("/settings", h.getSettings)
	r.Put("/settings", h.updateSettings)
}

type upsertProductRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	Category       string  `json:"category"`
	Material       string  `json:"material"`
	Size           string  `json:"size"`
	Weight         string  `json:"weight"`
	ImageURL       string  `json:"image_url"`
	InventoryCount int     `json:"inventory_count"`
	Active         bool    `json:"active"`
}

func (r upsertProductRequest) command(productID string) services.UpsertProductCommand {
	return services.UpsertProductCommand{
		ProductID:      productID,
		Name:           r.Name,
		Description:    r.Description,
		Price:          moneyMinor(r.Price),
		Category:       r.Category,
		Material:       r.Material,
		Size:           r.Size,
		Weight:         r.Weight,
		ImageURL:       r.ImageURL,
		InventoryCount: r.InventoryCount,
		Active:         r.Active,
	}
}

func (h *AdminCatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	filter := repositories.ProductListFilter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Limit:    maxAdminOrderListLimit,
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "limit must be a positive integer", http.StatusBadRequest))
			return
		}
		if limit < maxAdminOrderListLimit {
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

func (h *AdminCatalogHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req upsertProductRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	product, err := h.catalog.CreateProduct(ctx, req.command(""))
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildProductPayload(product))
}

func (h *AdminCatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
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

func (h *AdminCatalogHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req upsertProductRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	product, err := h.catalog.UpdateProduct(ctx, req.command(chi.URLParam(r, "productID")))
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildProductPayload(product))
}

func (h *AdminCatalogHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	if err := h.catalog.DeleteProduct(ctx, chi.URLParam(r, "productID")); err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type promotionPayload struct {
	ID              string  `json:"id"`
	Code            string  `json:"code"`
	Description     string  `json:"description,omitempty"`
	DiscountPercent int     `json:"discount_percent,omitempty"`
	DiscountAmount  float64 `json:"discount_amount,omitempty"`
	MinOrderAmount  float64 `json:"min_order_amount,omitempty"`
	StartsAt        string  `json:"starts_at"`
	EndsAt          string  `json:"ends_at"`
	Active          bool    `json:"active"`
	CreatedAt       string  `json:"created_at,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

func buildPromotionPayload(promotion domain.Promotion) promotionPayload {
	return promotionPayload{
		ID:              promotion.ID,
		Code:            promotion.Code,
		Description:     promotion.Description,
		DiscountPercent: promotion.DiscountPercent,
		DiscountAmount:  moneyMajor(promotion.DiscountAmount),
		MinOrderAmount:  moneyMajor(promotion.MinOrderAmount),
		StartsAt:        formatTime(promotion.StartsAt),
		EndsAt:          formatTime(promotion.EndsAt),
		Active:          promotion.Active,
		CreatedAt:       formatTime(promotion.CreatedAt),
		UpdatedAt:       formatTime(promotion.UpdatedAt),
	}
}

type upsertPromotionRequest struct {
	Code            string  `json:"code"`
	Description     string  `json:"description"`
	DiscountPercent int     `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	MinOrderAmount  float64 `json:"min_order_amount"`
	StartsAt        string  `json:"starts_at"`
	EndsAt          string  `json:"ends_at"`
	Active          bool    `json:"active"`
}

func (r upsertPromotionRequest) command(promotionID string) (services.UpsertPromotionCommand, error) {
	cmd := services.UpsertPromotionCommand{
		PromotionID:     promotionID,
		Code:            r.Code,
		Description:     r.Description,
		DiscountPercent: r.DiscountPercent,
		DiscountAmount:  moneyMinor(r.DiscountAmount),
		MinOrderAmount:  moneyMinor(r.MinOrderAmount),
		Active:          r.Active,
	}
	if r.StartsAt != "" {
		startsAt, err := time.Parse(time.RFC3339, r.StartsAt)
		if err != nil {
			return cmd, err
		}
		cmd.StartsAt = startsAt
	}
	if r.EndsAt != "" {
		endsAt, err := time.Parse(time.RFC3339, r.EndsAt)
		if err != nil {
			return cmd, err
		}
		cmd.EndsAt = endsAt
	}
	return cmd, nil
}

func (h *AdminCatalogHandlers) listPromotions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.promotions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("promotion_service_unavailable", "promotion service is unavailable", http.StatusServiceUnavailable))
		return
	}

	promotions, err := h.promotions.List(ctx)
	if err != nil {
		writePromotionError(ctx, w, err)
		return
	}

	payload := make([]promotionPayload, 0, len(promotions))
	for _, promotion := range promotions {
		payload = append(payload, buildPromotionPayload(promotion))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"promotions": payload})
}

func (h *AdminCatalogHandlers) createPromotion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.promotions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("promotion_service_unavailable", "promotion service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req upsertPromotionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	cmd, err := req.command("")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "starts_at and ends_at must be RFC3339 timestamps", http.StatusBadRequest))
		return
	}

	promotion, err := h.promotions.Create(ctx, cmd)
	if err != nil {
		writePromotionError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildPromotionPayload(promotion))
}

func (h *AdminCatalogHandlers) getPromotion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.promotions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("promotion_service_unavailable", "promotion service is unavailable", http.StatusServiceUnavailable))
		return
	}

	promotion, err := h.promotions.Get(ctx, chi.URLParam(r, "promotionID"))
	if err != nil {
		writePromotionError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildPromotionPayload(promotion))
}

func (h *AdminCatalogHandlers) updatePromotion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.promotions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("promotion_service_unavailable", "promotion service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req upsertPromotionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	cmd, err := req.command(chi.URLParam(r, "promotionID"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "starts_at and ends_at must be RFC3339 timestamps", http.StatusBadRequest))
		return
	}

	promotion, err := h.promotions.Update(ctx, cmd)
	if err != nil {
		writePromotionError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildPromotionPayload(promotion))
}

func (h *AdminCatalogHandlers) deletePromotion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.promotions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("promotion_service_unavailable", "promotion service is unavailable", http.StatusServiceUnavailable))
		return
	}

	if err := h.promotions.Delete(ctx, chi.URLParam(r, "promotionID")); err != nil {
		writePromotionError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type settingsPayload struct {
	StoreName       string   `json:"store_name"`
	ContactEmail    string   `json:"contact_email,omitempty"`
	ContactPhone    string   `json:"contact_phone,omitempty"`
	SupportAddress  string   `json:"support_address,omitempty"`
	AnnouncementBar string   `json:"announcement_bar,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	UpdatedAt       string   `json:"updated_at,omitempty"`
}

func buildSettingsPayload(settings domain.StoreSettings) settingsPayload {
	return settingsPayload{
		StoreName:       settings.StoreName,
		ContactEmail:    settings.ContactEmail,
		ContactPhone:    settings.ContactPhone,
		SupportAddress:  settings.SupportAddress,
		AnnouncementBar: settings.AnnouncementBar,
		Categories:      settings.Categories,
		UpdatedAt:       formatTime(settings.UpdatedAt),
	}
}

func (h *AdminCatalogHandlers) getSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.settings == nil {
		httpx.WriteError(ctx, w, httpx.NewError("settings_service_unavailable", "settings service is unavailable", http.StatusServiceUnavailable))
		return
	}

	settings, err := h.settings.Get(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unable to load settings", http.StatusInternalServerError))
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSettingsPayload(settings))
}

type updateSettingsRequest struct {
	StoreName       string   `json:"store_name"`
	ContactEmail    string   `json:"contact_email"`
	ContactPhone    string   `json:"contact_phone"`
	SupportAddress  string   `json:"support_address"`
	AnnouncementBar string   `json:"announcement_bar"`
	Categories      []string `json:"categories"`
}

func (h *AdminCatalogHandlers) updateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.settings == nil {
		httpx.WriteError(ctx, w, httpx.NewError("settings_service_unavailable", "settings service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req updateSettingsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	settings, err := h.settings.Update(ctx, services.UpdateSettingsCommand{
		StoreName:       req.StoreName,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		SupportAddress:  req.SupportAddress,
		AnnouncementBar: req.AnnouncementBar,
		Categories:      req.Categories,
	})
	if err != nil {
		if errors.Is(err, services.ErrSettingsInvalidInput) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unable to save settings", http.StatusInternalServerError))
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSettingsPayload(settings))
}
