package domain

import (
	"time"
)

// OrderStatus enumerates valid lifecycle states for orders.
type OrderStatus string

const (
	// OrderStatusPending indicates the order awaits administrator review.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusReview indicates an administrator has started reviewing the order.
	OrderStatusReview OrderStatus = "review"
	// OrderStatusAccepted indicates every line item was accepted.
	OrderStatusAccepted OrderStatus = "accepted"
	// OrderStatusPartiallyAccepted indicates a subset of line items was accepted.
	OrderStatusPartiallyAccepted OrderStatus = "partially_accepted"
	// OrderStatusRejected indicates every line item was rejected.
	OrderStatusRejected OrderStatus = "rejected"
	// OrderStatusConfirmed indicates payment completed and the order is locked for fulfilment.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusShipped indicates the order left the warehouse.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the order reached the customer.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the customer withdrew the order before review finished.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus tracks the payment axis independently of the order status.
type PaymentStatus string

const (
	// PaymentStatusPending indicates no successful gateway confirmation yet.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusCompleted indicates the gateway confirmed collection; monotonic once set.
	PaymentStatusCompleted PaymentStatus = "completed"
	// PaymentStatusFailed indicates the gateway reported a terminal failure.
	PaymentStatusFailed PaymentStatus = "failed"
)

// ItemDecision records the administrator's verdict on a single line item.
type ItemDecision string

const (
	// ItemDecisionUndecided is the state of every item before review.
	ItemDecisionUndecided ItemDecision = "undecided"
	// ItemDecisionAccepted marks the item as payable.
	ItemDecisionAccepted ItemDecision = "accepted"
	// ItemDecisionRejected excludes the item from the payable total.
	ItemDecisionRejected ItemDecision = "rejected"
)

// OrderLineItem stores a product snapshot within an order. UnitPrice is
// captured from the catalog at submission time, in minor currency units.
type OrderLineItem struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice int64
	Decision  ItemDecision
}

// LineTotal returns the payable amount for this item.
func (i OrderLineItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// Order is the central entity: a customer's purchase request and its evolving
// review/payment state. All monetary fields are minor currency units.
type Order struct {
	ID              string
	UserID          string
	Items           []OrderLineItem
	OriginalAmount  int64
	DiscountAmount  int64
	TotalAmount     int64
	PromotionCode   string
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	ShippingAddress string
	Phone           string
	PaymentMethod   string
	AdminNotes      string
	Currency        string

	// Gateway correlation, populated only by the payment protocol.
	// GatewayIntentAmount records what the intent was opened for, so a
	// stale intent is never reused after the payable total changes.
	GatewayIntentID     string
	GatewayIntentAmount int64
	GatewayPaymentID    string

	CreatedAt time.Time
	UpdatedAt time.Time
	PaidAt    *time.Time
}

// AcceptedTotal sums unit price times quantity over accepted items only.
func (o Order) AcceptedTotal() int64 {
	var total int64
	for _, item := range o.Items {
		if item.Decision == ItemDecisionAccepted {
			total += item.LineTotal()
		}
	}
	return total
}

// Promotion describes a named, time-bounded discount rule. DiscountPercent
// takes precedence over DiscountAmount when both are set.
type Promotion struct {
	ID              string
	Code            string
	Description     string
	DiscountPercent int
	DiscountAmount  int64
	MinOrderAmount  int64
	StartsAt        time.Time
	EndsAt          time.Time
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Product is a catalog entry. Price is minor currency units.
type Product struct {
	ID             string
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
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CartItem stores one product/quantity pair in a customer's cart.
type CartItem struct {
	UserID    string
	ProductID string
	Quantity  int
	AddedAt   time.Time
}

// User is the authenticated principal record owned by the auth collaborator.
type User struct {
	ID           string
	Email        string
	Phone        string
	FullName     string
	Address      string
	Admin        bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StoreSettings carries the administrator-editable storefront configuration.
type StoreSettings struct {
	StoreName       string
	ContactEmail    string
	ContactPhone    string
	SupportAddress  string
	AnnouncementBar string
	Categories      []string
	UpdatedAt       time.Time
}
