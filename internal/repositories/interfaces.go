package repositories

import (
	"context"

	domain "github.com/manira/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Orders() OrderRepository
	Products() ProductRepository
	Promotions() PromotionRepository
	Carts() CartRepository
	Users() UserRepository
	Settings() SettingsRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// OrderListFilter narrows order listings for admin and customer views.
type OrderListFilter struct {
	UserID        string
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	Limit         int
}

// OrderRepository persists order documents and provides the conditional
// update primitive the lifecycle services are built on.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	List(ctx context.Context, filter OrderListFilter) ([]domain.Order, error)
	// UpdateIf applies mutate to the stored order only when its current
	// status is one of expectStatus. A status outside the set fails with a
	// conflict error carrying the observed status, so callers can
	// distinguish a lost race from a missing document.
	UpdateIf(ctx context.Context, orderID string, expectStatus []domain.OrderStatus, mutate func(order domain.Order) (domain.Order, error)) (domain.Order, error)
	Delete(ctx context.Context, orderID string) error
}

// ProductRepository maintains the jewellery catalog.
type ProductRepository interface {
	Insert(ctx context.Context, product domain.Product) error
	Update(ctx context.Context, product domain.Product) error
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	List(ctx context.Context, filter ProductListFilter) ([]domain.Product, error)
	Delete(ctx context.Context, productID string) error
}

// ProductListFilter narrows catalog listings.
type ProductListFilter struct {
	Category   string
	ActiveOnly bool
	Limit      int
}

// PromotionRepository maintains promotion definitions keyed by code.
type PromotionRepository interface {
	Insert(ctx context.Context, promotion domain.Promotion) error
	Update(ctx context.Context, promotion domain.Promotion) error
	FindByID(ctx context.Context, promotionID string) (domain.Promotion, error)
	FindByCode(ctx context.Context, code string) (domain.Promotion, error)
	List(ctx context.Context) ([]domain.Promotion, error)
	Delete(ctx context.Context, promotionID string) error
}

// CartRepository stores per-user cart lines.
type CartRepository interface {
	Upsert(ctx context.Context, item domain.CartItem) error
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	Remove(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}

// UserRepository persists customer and administrator accounts.
type UserRepository interface {
	Insert(ctx context.Context, user domain.User) error
	Update(ctx context.Context, user domain.User) error
	FindByID(ctx context.Context, userID string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context, limit int) ([]domain.User, error)
}

// SettingsRepository stores the singleton storefront configuration document.
type SettingsRepository interface {
	Get(ctx context.Context) (domain.StoreSettings, error)
	Save(ctx context.Context, settings domain.StoreSettings) error
}
