package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	domain "github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/repositories"
)

func newTestCatalogService(t *testing.T, products *stubProductRepo, settings *stubSettingsRepo) CatalogService {
	t.Helper()
	deps := CatalogServiceDeps{Products: products, Clock: testClock}
	if settings != nil {
		deps.Settings = settings
	}
	svc, err := NewCatalogService(deps)
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	return svc
}

func TestCreateProductSanitisesDescription(t *testing.T) {
	var saved domain.Product
	products := &stubProductRepo{
		insertFn: func(_ context.Context, product domain.Product) error {
			saved = product
			return nil
		},
	}
	svc := newTestCatalogService(t, products, nil)

	created, err := svc.CreateProduct(context.Background(), UpsertProductCommand{
		Name:        "Emerald Pendant",
		Description: "Hand cut <em>emerald</em><script>steal()</script>",
		Price:       480000,
		Category:    "pendants",
		Active:      true,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	if strings.Contains(saved.Description, "script") {
		t.Fatalf("script content must be stripped, got %q", saved.Description)
	}
	if !strings.Contains(saved.Description, "<em>emerald</em>") {
		t.Fatalf("benign markup should survive, got %q", saved.Description)
	}
	if !strings.HasPrefix(created.ID, "prd_") {
		t.Fatalf("product id should carry the prd_ prefix, got %q", created.ID)
	}
	if !created.CreatedAt.Equal(testClock()) {
		t.Fatalf("timestamps should come from the injected clock")
	}
}

func TestCreateProductRejectsBadInput(t *testing.T) {
	svc := newTestCatalogService(t, &stubProductRepo{}, nil)

	cases := []UpsertProductCommand{
		{Name: "", Price: 100},
		{Name: "Ring", Price: -1},
		{Name: "Ring", Price: 100, InventoryCount: -5},
	}
	for _, cmd := range cases {
		if _, err := svc.CreateProduct(context.Background(), cmd); !errors.Is(err, ErrProductInvalidInput) {
			t.Fatalf("command %+v: expected ErrProductInvalidInput, got %v", cmd, err)
		}
	}
}

func TestListCategoriesPrefersSettings(t *testing.T) {
	settings := &stubSettingsRepo{
		getFn: func(context.Context) (domain.StoreSettings, error) {
			return domain.StoreSettings{Categories: []string{"rings", "chains"}}, nil
		},
	}
	svc := newTestCatalogService(t, &stubProductRepo{}, settings)

	categories, err := svc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 2 || categories[0] != "rings" {
		t.Fatalf("unexpected categories %v", categories)
	}
}

func TestListCategoriesFallsBackToCatalog(t *testing.T) {
	products := &stubProductRepo{
		listFn: func(context.Context, repositories.ProductListFilter) ([]domain.Product, error) {
			return []domain.Product{
				{ID: "prd_1", Category: "rings", Active: true},
				{ID: "prd_2", Category: "chains", Active: true},
				{ID: "prd_3", Category: "rings", Active: true},
				{ID: "prd_4", Category: "", Active: true},
			}, nil
		},
	}
	svc := newTestCatalogService(t, products, &stubSettingsRepo{})

	categories, err := svc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 2 || categories[0] != "chains" || categories[1] != "rings" {
		t.Fatalf("expected distinct sorted categories, got %v", categories)
	}
}

func TestGetProductMapsNotFound(t *testing.T) {
	svc := newTestCatalogService(t, &stubProductRepo{}, nil)

	if _, err := svc.GetProduct(context.Background(), "prd_ghost"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
