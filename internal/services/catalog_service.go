package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	domain "github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/repositories"
)

const productIDPrefix = "prd_"

var (
	// ErrProductInvalidInput signals the caller provided invalid product data.
	ErrProductInvalidInput = errors.New("catalog: invalid input")
	// ErrProductNotFound indicates the product could not be located.
	ErrProductNotFound = errors.New("catalog: product not found")
	// ErrProductConflict indicates a duplicate product ID.
	ErrProductConflict = errors.New("catalog: conflict")
)

// CatalogServiceDeps bundles collaborators required to construct the catalog service.
type CatalogServiceDeps struct {
	Products    repositories.ProductRepository
	Settings    repositories.SettingsRepository
	Clock       func() time.Time
	IDGenerator func() string
}

type catalogService struct {
	products  repositories.ProductRepository
	settings  repositories.SettingsRepository
	clock     func() time.Time
	newID     func() string
	sanitizer *bluemonday.Policy
}

// NewCatalogService wires dependencies into a concrete CatalogService implementation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return productIDPrefix + ulid.Make().String() }
	}
	return &catalogService{
		products:  deps.Products,
		settings:  deps.Settings,
		clock:     func() time.Time { return clock().UTC() },
		newID:     newID,
		sanitizer: bluemonday.UGCPolicy(),
	}, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, cmd UpsertProductCommand) (domain.Product, error) {
	product, err := s.fromCommand(cmd)
	if err != nil {
		return domain.Product{}, err
	}

	now := s.clock()
	product.ID = s.newID()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.products.Insert(ctx, product); err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, cmd UpsertProductCommand) (domain.Product, error) {
	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrProductInvalidInput)
	}

	existing, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}

	product, err := s.fromCommand(cmd)
	if err != nil {
		return domain.Product{}, err
	}
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = s.clock()

	if err := s.products.Update(ctx, product); err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrProductInvalidInput)
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return products, nil
}

// ListCategories returns the configured storefront categories when present,
// falling back to the distinct categories of active products.
func (s *catalogService) ListCategories(ctx context.Context) ([]string, error) {
	if s.settings != nil {
		settings, err := s.settings.Get(ctx)
		if err == nil && len(settings.Categories) > 0 {
			return settings.Categories, nil
		}
		var repoErr repositories.RepositoryError
		if err != nil && !(errors.As(err, &repoErr) && repoErr.IsNotFound()) {
			return nil, err
		}
	}

	products, err := s.products.List(ctx, repositories.ProductListFilter{ActiveOnly: true})
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}

	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, product := range products {
		category := strings.TrimSpace(product.Category)
		if category == "" || seen[category] {
			continue
		}
		seen[category] = true
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return fmt.Errorf("%w: product id is required", ErrProductInvalidInput)
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return s.mapRepositoryError(err)
	}
	return nil
}

func (s *catalogService) fromCommand(cmd UpsertProductCommand) (domain.Product, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name is required", ErrProductInvalidInput)
	}
	if cmd.Price < 0 {
		return domain.Product{}, fmt.Errorf("%w: price must not be negative", ErrProductInvalidInput)
	}
	if cmd.InventoryCount < 0 {
		return domain.Product{}, fmt.Errorf("%w: inventory count must not be negative", ErrProductInvalidInput)
	}

	return domain.Product{
		Name:           name,
		Description:    s.sanitizer.Sanitize(strings.TrimSpace(cmd.Description)),
		Price:          cmd.Price,
		Category:       strings.TrimSpace(cmd.Category),
		Material:       strings.TrimSpace(cmd.Material),
		Size:           strings.TrimSpace(cmd.Size),
		Weight:         strings.TrimSpace(cmd.Weight),
		ImageURL:       strings.TrimSpace(cmd.ImageURL),
		InventoryCount: cmd.InventoryCount,
		Active:         cmd.Active,
	}, nil
}

func (s *catalogService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrProductNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrProductConflict, err)
		}
	}
	return err
}
