package services

import (
	"context"
	"time"

	domain "github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/repositories"
)

// OrderService owns the order lifecycle from submission through review,
// cancellation and the administrative escape hatches.
type OrderService interface {
	Submit(ctx context.Context, cmd SubmitOrderCommand) (domain.Order, error)
	Review(ctx context.Context, cmd ReviewOrderCommand) (domain.Order, error)
	Cancel(ctx context.Context, cmd CancelOrderCommand) (domain.Order, error)
	ForcePaymentState(ctx context.Context, cmd ForcePaymentStateCommand) (domain.Order, error)
	Get(ctx context.Context, cmd GetOrderCommand) (domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error)
	Delete(ctx context.Context, orderID string) error
}

// PromotionService validates promotion codes against order amounts and
// exposes administrative CRUD over promotion definitions.
type PromotionService interface {
	Validate(ctx context.Context, code string, orderAmount int64) (PromotionQuote, error)
	Create(ctx context.Context, cmd UpsertPromotionCommand) (domain.Promotion, error)
	Update(ctx context.Context, cmd UpsertPromotionCommand) (domain.Promotion, error)
	Get(ctx context.Context, promotionID string) (domain.Promotion, error)
	List(ctx context.Context) ([]domain.Promotion, error)
	Delete(ctx context.Context, promotionID string) error
}

// PaymentService drives the two-phase gateway confirmation protocol.
type PaymentService interface {
	CreateIntent(ctx context.Context, cmd CreateIntentCommand) (PaymentIntent, error)
	VerifyPayment(ctx context.Context, cmd VerifyPaymentCommand) (domain.Order, error)
}

// CatalogService manages the jewellery catalog and its public views.
type CatalogService interface {
	CreateProduct(ctx context.Context, cmd UpsertProductCommand) (domain.Product, error)
	UpdateProduct(ctx context.Context, cmd UpsertProductCommand) (domain.Product, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	ListProducts(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	DeleteProduct(ctx context.Context, productID string) error
}

// CartService stores the customer's pre-order selections.
type CartService interface {
	AddItem(ctx context.Context, cmd CartItemCommand) error
	UpdateItem(ctx context.Context, cmd CartItemCommand) error
	RemoveItem(ctx context.Context, userID, productID string) error
	GetCart(ctx context.Context, userID string) (Cart, error)
	Clear(ctx context.Context, userID string) error
}

// UserService registers, authenticates and maintains customer accounts.
type UserService interface {
	Register(ctx context.Context, cmd RegisterCommand) (AuthSession, error)
	Login(ctx context.Context, cmd LoginCommand) (AuthSession, error)
	GetProfile(ctx context.Context, userID string) (domain.User, error)
	UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (domain.User, error)
}

// SettingsService exposes the administrator-editable storefront configuration.
type SettingsService interface {
	Get(ctx context.Context) (domain.StoreSettings, error)
	Update(ctx context.Context, cmd UpdateSettingsCommand) (domain.StoreSettings, error)
}

// OrderEventPublisher publishes order lifecycle events for downstream consumers.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

// OrderEvent captures metadata for emitted order lifecycle events.
type OrderEvent struct {
	Type          string
	OrderID       string
	UserID        string
	Status        string
	PaymentStatus string
	TotalAmount   int64
	ActorID       string
	OccurredAt    time.Time
}

// SubmitOrderItem names a product and quantity from the customer's cart.
type SubmitOrderItem struct {
	ProductID string
	Quantity  int
}

// SubmitOrderCommand creates a new order awaiting review.
type SubmitOrderCommand struct {
	UserID          string
	Items           []SubmitOrderItem
	PromotionCode   string
	ShippingAddress string
	Phone           string
	PaymentMethod   string
}

// ReviewItemDecision carries the admin verdict for one line item. Quantity,
// when positive, revises the ordered quantity on an accepted item.
type ReviewItemDecision struct {
	ProductID string
	Status    domain.ItemDecision
	Quantity  int
}

// ReviewActions accepted by ReviewOrderCommand.
const (
	ReviewActionAccept  = "accept"
	ReviewActionPartial = "partial"
	ReviewActionReject  = "reject"
)

// ReviewOrderCommand applies an admin review verdict to a pending order.
type ReviewOrderCommand struct {
	OrderID    string
	Action     string
	Items      []ReviewItemDecision
	AdminNotes string
	ActorID    string
}

// CancelOrderCommand withdraws a not-yet-reviewed order on behalf of its owner.
type CancelOrderCommand struct {
	OrderID string
	UserID  string
}

// ForcePaymentStateCommand unconditionally rewrites the payment axis of an order.
type ForcePaymentStateCommand struct {
	OrderID       string
	PaymentStatus domain.PaymentStatus
	Status        domain.OrderStatus
	ActorID       string
}

// GetOrderCommand loads one order, enforcing ownership unless the actor is an admin.
type GetOrderCommand struct {
	OrderID    string
	ActorID    string
	ActorAdmin bool
}

// PromotionQuote is the outcome of validating a code against an order amount.
type PromotionQuote struct {
	Promotion      domain.Promotion
	OriginalAmount int64
	DiscountAmount int64
	FinalAmount    int64
}

// UpsertPromotionCommand creates or updates a promotion definition.
type UpsertPromotionCommand struct {
	PromotionID     string
	Code            string
	Description     string
	DiscountPercent int
	DiscountAmount  int64
	MinOrderAmount  int64
	StartsAt        time.Time
	EndsAt          time.Time
	Active          bool
}

// CreateIntentCommand asks the gateway for a payment intent on a reviewed order.
type CreateIntentCommand struct {
	OrderID string
	UserID  string
}

// PaymentIntent is returned to the client to launch the gateway checkout.
type PaymentIntent struct {
	OrderID         string
	GatewayIntentID string
	Amount          int64
	Currency        string
	GatewayKeyID    string
}

// VerifyPaymentCommand carries the gateway confirmation triple.
type VerifyPaymentCommand struct {
	OrderID          string
	UserID           string
	GatewayIntentID  string
	GatewayPaymentID string
	Signature        string
}

// UpsertProductCommand creates or updates a catalog entry.
type UpsertProductCommand struct {
	ProductID      string
	Name           string
	Description    string
	Price          int64
	Category       string
	Material       string
	Size           string
	Weight         string
	ImageURL       string
	InventoryCount int
	Active         bool
}

// CartItemCommand adds or updates one cart line.
type CartItemCommand struct {
	UserID    string
	ProductID string
	Quantity  int
}

// CartLine is a cart item joined with its catalog snapshot.
type CartLine struct {
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int
	LineTotal int64
	AddedAt   time.Time
}

// Cart is the customer's current selection with a running subtotal.
type Cart struct {
	UserID   string
	Lines    []CartLine
	Subtotal int64
}

// RegisterCommand creates a customer account.
type RegisterCommand struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Address  string
}

// LoginCommand authenticates by email and password.
type LoginCommand struct {
	Email    string
	Password string
}

// AuthSession couples the account with a freshly issued access token.
type AuthSession struct {
	User  domain.User
	Token string
}

// UpdateProfileCommand rewrites the mutable profile fields.
type UpdateProfileCommand struct {
	UserID   string
	FullName string
	Phone    string
	Address  string
}

// UpdateSettingsCommand replaces the storefront configuration.
type UpdateSettingsCommand struct {
	StoreName       string
	ContactEmail    string
	ContactPhone    string
	SupportAddress  string
	AnnouncementBar string
	Categories      []string
}
