package firestore

import (
	"context"
	"errors"

	pfirestore "github.com/manira/api/internal/platform/firestore"
	"github.com/manira/api/internal/repositories"
)

// Registry bundles every Firestore repository behind the repositories.Registry
// interface and owns the shared provider lifecycle.
type Registry struct {
	provider *pfirestore.Provider

	orders     *OrderRepository
	products   *ProductRepository
	promotions *PromotionRepository
	carts      *CartRepository
	users      *UserRepository
	settings   *SettingsRepository
}

// NewRegistry wires all Firestore repositories onto the shared provider.
func NewRegistry(provider *pfirestore.Provider) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry requires firestore provider")
	}

	orders, err := NewOrderRepository(provider)
	if err != nil {
		return nil, err
	}
	products, err := NewProductRepository(provider)
	if err != nil {
		return nil, err
	}
	promotions, err := NewPromotionRepository(provider)
	if err != nil {
		return nil, err
	}
	carts, err := NewCartRepository(provider)
	if err != nil {
		return nil, err
	}
	users, err := NewUserRepository(provider)
	if err != nil {
		return nil, err
	}
	settings, err := NewSettingsRepository(provider)
	if err != nil {
		return nil, err
	}

	return &Registry{
		provider:   provider,
		orders:     orders,
		products:   products,
		promotions: promotions,
		carts:      carts,
		users:      users,
		settings:   settings,
	}, nil
}

// Close releases the underlying Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

// Orders returns the order repository.
func (r *Registry) Orders() repositories.OrderRepository { return r.orders }

// Products returns the product repository.
func (r *Registry) Products() repositories.ProductRepository { return r.products }

// Promotions returns the promotion repository.
func (r *Registry) Promotions() repositories.PromotionRepository { return r.promotions }

// Carts returns the cart repository.
func (r *Registry) Carts() repositories.CartRepository { return r.carts }

// Users returns the user repository.
func (r *Registry) Users() repositories.UserRepository { return r.users }

// Settings returns the settings repository.
func (r *Registry) Settings() repositories.SettingsRepository { return r.settings }

var _ repositories.Registry = (*Registry)(nil)
