package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/repositories"
	"github.com/manira/api/internal/services"
)

func TestCatalogHandlersListProducts(t *testing.T) {
	service := &stubCatalogService{
		listFunc: func(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
			if !filter.ActiveOnly {
				t.Fatalf("public listing must filter to active products")
			}
			if filter.Category != "rings" {
				t.Fatalf("unexpected category %q", filter.Category)
			}
			return []domain.Product{
				{ID: "prd_1", Name: "Gold Ring", Price: 250000, Category: "rings", Active: true},
			}, nil
		},
	}

	handler := NewCatalogHandlers(service, nil)
	router := chi.NewRouter()
	handler.Routes(router)

	req := httptest.NewRequest(http.MethodGet, "/products?category=rings", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var body struct {
		Products []productPayload `json:"products"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(body.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(body.Products))
	}
	if body.Products[0].Price != 2500 {
		t.Fatalf("expected price 2500.00, got %v", body.Products[0].Price)
	}
}

func TestCatalogHandlersGetProductNotFound(t *testing.T) {
	service := &stubCatalogService{
		getFunc: func(ctx context.Context, productID string) (domain.Product, error) {
			return domain.Product{}, services.ErrProductNotFound
		},
	}

	handler := NewCatalogHandlers(service, nil)
	router := chi.NewRouter()
	handler.Routes(router)

	req := httptest.NewRequest(http.MethodGet, "/products/prd_missing", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestCatalogHandlersPreviewPromotion(t *testing.T) {
	service := &stubPromotionService{
		validateFunc: func(ctx context.Context, code string, orderAmount int64) (services.PromotionQuote, error) {
			if code != "FESTIVE10" {
				t.Fatalf("unexpected code %q", code)
			}
			if orderAmount != 620000 {
				t.Fatalf("expected amount in minor units, got %d", orderAmount)
			}
			return services.PromotionQuote{
				Promotion:      domain.Promotion{Code: "FESTIVE10", Description: "Festive season"},
				OriginalAmount: 620000,
				DiscountAmount: 62000,
				FinalAmount:    558000,
			}, nil
		},
	}

	handler := NewCatalogHandlers(nil, service)
	router := chi.NewRouter()
	handler.Routes(router)

	req := httptest.NewRequest(http.MethodPost, "/promotions:preview", strings.NewReader(`{"code":"FESTIVE10","order_amount":6200}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp previewPromotionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.DiscountAmount != 620 {
		t.Fatalf("expected discount 620.00, got %v", resp.DiscountAmount)
	}
	if resp.FinalAmount != 5580 {
		t.Fatalf("expected final 5580.00, got %v", resp.FinalAmount)
	}
}

func TestCatalogHandlersPreviewPromotionMinimumNotMet(t *testing.T) {
	service := &stubPromotionService{
		validateFunc: func(ctx context.Context, code string, orderAmount int64) (services.PromotionQuote, error) {
			return services.PromotionQuote{}, services.ErrPromotionMinimumNotMet
		},
	}

	handler := NewCatalogHandlers(nil, service)
	router := chi.NewRouter()
	handler.Routes(router)

	req := httptest.NewRequest(http.MethodPost, "/promotions:preview", strings.NewReader(`{"code":"FESTIVE10","order_amount":10}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body["error"] != "promotion_minimum_not_met" {
		t.Fatalf("expected promotion_minimum_not_met, got %v", body["error"])
	}
}
