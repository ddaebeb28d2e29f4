package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	domain "github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/repositories"
)

const (
	orderEventCreated          = "order.created"
	orderEventReviewed         = "order.reviewed"
	orderEventCanceled         = "order.canceled"
	orderEventPaymentCompleted = "order.payment.completed"

	orderIDPrefix   = "ord_"
	defaultCurrency = "INR"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid order data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderStateConflict indicates the order moved out of the expected
	// status set before the mutation could land.
	ErrOrderStateConflict = errors.New("order: state conflict")
	// ErrOrderForbidden indicates the actor does not own the order.
	ErrOrderForbidden = errors.New("order: forbidden")
)

// reviewableStatuses are the states an admin verdict may land on.
var reviewableStatuses = []domain.OrderStatus{
	domain.OrderStatusPending,
	domain.OrderStatusReview,
}

// cancellableStatuses are the states a customer may withdraw from.
var cancellableStatuses = []domain.OrderStatus{
	domain.OrderStatusPending,
	domain.OrderStatusReview,
}

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Products    repositories.ProductRepository
	Carts       repositories.CartRepository
	Promotions  PromotionService
	Currency    string
	Clock       func() time.Time
	IDGenerator func() string
	Events      OrderEventPublisher
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders     repositories.OrderRepository
	products   repositories.ProductRepository
	carts      repositories.CartRepository
	promotions PromotionService
	currency   string
	clock      func() time.Time
	newID      func() string
	events     OrderEventPublisher
	logger     func(context.Context, string, map[string]any)
	sanitizer  *bluemonday.Policy
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("order service: product repository is required")
	}

	currency := strings.ToUpper(strings.TrimSpace(deps.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return orderIDPrefix + ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &orderService{
		orders:     deps.Orders,
		products:   deps.Products,
		carts:      deps.Carts,
		promotions: deps.Promotions,
		currency:   currency,
		clock:      func() time.Time { return clock().UTC() },
		newID:      newID,
		events:     deps.Events,
		logger:     logger,
		sanitizer:  bluemonday.StrictPolicy(),
	}, nil
}

func (s *orderService) Submit(ctx context.Context, cmd SubmitOrderCommand) (domain.Order, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return domain.Order{}, fmt.Errorf("%w: user id is required", ErrOrderInvalidInput)
	}
	if len(cmd.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: at least one item is required", ErrOrderInvalidInput)
	}
	shipping := strings.TrimSpace(cmd.ShippingAddress)
	if shipping == "" {
		return domain.Order{}, fmt.Errorf("%w: shipping address is required", ErrOrderInvalidInput)
	}

	items, err := s.buildLineItems(ctx, cmd.Items)
	if err != nil {
		return domain.Order{}, err
	}

	// Unit prices come from the catalog and the discount is recomputed from
	// the stored promotion. Client-declared amounts are never trusted.
	var promotion *domain.Promotion
	promotionCode := strings.ToUpper(strings.TrimSpace(cmd.PromotionCode))
	if promotionCode != "" {
		if s.promotions == nil {
			return domain.Order{}, fmt.Errorf("%w: promotions are not enabled", ErrOrderInvalidInput)
		}
		var subtotal int64
		for _, item := range items {
			subtotal += item.LineTotal()
		}
		quote, err := s.promotions.Validate(ctx, promotionCode, subtotal)
		if err != nil {
			return domain.Order{}, err
		}
		promotion = &quote.Promotion
	}

	quote, err := PriceItems(items, promotion)
	if err != nil {
		return domain.Order{}, err
	}

	now := s.clock()
	order := domain.Order{
		ID:              s.newID(),
		UserID:          userID,
		Items:           items,
		OriginalAmount:  quote.OriginalAmount,
		DiscountAmount:  quote.DiscountAmount,
		TotalAmount:     quote.TotalAmount,
		PromotionCode:   promotionCode,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		ShippingAddress: shipping,
		Phone:           strings.TrimSpace(cmd.Phone),
		PaymentMethod:   strings.TrimSpace(cmd.PaymentMethod),
		Currency:        s.currency,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	// The order stands even when the cart cannot be emptied.
	if s.carts != nil {
		if err := s.carts.Clear(ctx, userID); err != nil {
			s.logger(ctx, "order.cart_clear_failed", map[string]any{
				"order_id": order.ID,
				"user_id":  userID,
				"error":    err.Error(),
			})
		}
	}

	s.publishEvent(ctx, OrderEvent{
		Type:          orderEventCreated,
		OrderID:       order.ID,
		UserID:        order.UserID,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		TotalAmount:   order.TotalAmount,
		ActorID:       userID,
		OccurredAt:    now,
	})
	return order, nil
}

func (s *orderService) Review(ctx context.Context, cmd ReviewOrderCommand) (domain.Order, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	action := strings.ToLower(strings.TrimSpace(cmd.Action))
	switch action {
	case ReviewActionAccept, ReviewActionPartial, ReviewActionReject:
	default:
		return domain.Order{}, fmt.Errorf("%w: unknown review action %q", ErrOrderInvalidInput, cmd.Action)
	}
	if action == ReviewActionPartial && len(cmd.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: partial review requires item decisions", ErrOrderInvalidInput)
	}

	notes := strings.TrimSpace(s.sanitizer.Sanitize(cmd.AdminNotes))
	now := s.clock()

	updated, err := s.orders.UpdateIf(ctx, orderID, reviewableStatuses, func(order domain.Order) (domain.Order, error) {
		switch action {
		case ReviewActionAccept:
			for i := range order.Items {
				order.Items[i].Decision = domain.ItemDecisionAccepted
			}
			order.Status = domain.OrderStatusAccepted
			order.TotalAmount = order.AcceptedTotal()
		case ReviewActionReject:
			for i := range order.Items {
				order.Items[i].Decision = domain.ItemDecisionRejected
			}
			order.Status = domain.OrderStatusRejected
			order.TotalAmount = 0
		case ReviewActionPartial:
			s.applyItemDecisions(ctx, &order, cmd.Items)
			order.OriginalAmount = order.TotalAmount
			order.Status = domain.OrderStatusPartiallyAccepted
			order.TotalAmount = order.AcceptedTotal()
		}
		if notes != "" {
			order.AdminNotes = notes
		}
		order.UpdatedAt = now
		return order, nil
	})
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	s.publishEvent(ctx, OrderEvent{
		Type:          orderEventReviewed,
		OrderID:       updated.ID,
		UserID:        updated.UserID,
		Status:        string(updated.Status),
		PaymentStatus: string(updated.PaymentStatus),
		TotalAmount:   updated.TotalAmount,
		ActorID:       cmd.ActorID,
		OccurredAt:    now,
	})
	return updated, nil
}

func (s *orderService) Cancel(ctx context.Context, cmd CancelOrderCommand) (domain.Order, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return domain.Order{}, fmt.Errorf("%w: user id is required", ErrOrderInvalidInput)
	}

	now := s.clock()
	updated, err := s.orders.UpdateIf(ctx, orderID, cancellableStatuses, func(order domain.Order) (domain.Order, error) {
		if order.UserID != userID {
			return domain.Order{}, fmt.Errorf("%w: order %s belongs to another customer", ErrOrderForbidden, orderID)
		}
		order.Status = domain.OrderStatusCancelled
		order.UpdatedAt = now
		return order, nil
	})
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	s.publishEvent(ctx, OrderEvent{
		Type:          orderEventCanceled,
		OrderID:       updated.ID,
		UserID:        updated.UserID,
		Status:        string(updated.Status),
		PaymentStatus: string(updated.PaymentStatus),
		TotalAmount:   updated.TotalAmount,
		ActorID:       userID,
		OccurredAt:    now,
	})
	return updated, nil
}

func (s *orderService) ForcePaymentState(ctx context.Context, cmd ForcePaymentStateCommand) (domain.Order, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if cmd.PaymentStatus == "" && cmd.Status == "" {
		return domain.Order{}, fmt.Errorf("%w: a payment status or order status is required", ErrOrderInvalidInput)
	}

	now := s.clock()
	updated, err := s.orders.UpdateIf(ctx, orderID, nil, func(order domain.Order) (domain.Order, error) {
		if cmd.PaymentStatus != "" {
			order.PaymentStatus = cmd.PaymentStatus
		}
		if cmd.Status != "" {
			order.Status = cmd.Status
		}
		order.UpdatedAt = now
		return order, nil
	})
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	s.logger(ctx, "order.payment_state_forced", map[string]any{
		"order_id":       updated.ID,
		"status":         string(updated.Status),
		"payment_status": string(updated.PaymentStatus),
		"actor_id":       cmd.ActorID,
	})
	return updated, nil
}

func (s *orderService) Get(ctx context.Context, cmd GetOrderCommand) (domain.Order, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}
	if !cmd.ActorAdmin && order.UserID != strings.TrimSpace(cmd.ActorID) {
		return domain.Order{}, fmt.Errorf("%w: order %s belongs to another customer", ErrOrderForbidden, orderID)
	}
	return order, nil
}

func (s *orderService) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrOrderInvalidInput)
	}
	orders, err := s.orders.List(ctx, repositories.OrderListFilter{UserID: userID})
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return orders, nil
}

func (s *orderService) ListAll(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return orders, nil
}

func (s *orderService) Delete(ctx context.Context, orderID string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		return s.mapRepositoryError(err)
	}
	return nil
}

// buildLineItems resolves catalog snapshots for the requested products.
func (s *orderService) buildLineItems(ctx context.Context, requested []SubmitOrderItem) ([]domain.OrderLineItem, error) {
	items := make([]domain.OrderLineItem, 0, len(requested))
	for _, req := range requested {
		productID := strings.TrimSpace(req.ProductID)
		if productID == "" {
			return nil, fmt.Errorf("%w: product id is required", ErrOrderInvalidInput)
		}
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for %s must be positive", ErrOrderInvalidInput, productID)
		}

		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			var repoErr repositories.RepositoryError
			if errors.As(err, &repoErr) && repoErr.IsNotFound() {
				return nil, fmt.Errorf("%w: product %s not found", ErrOrderInvalidInput, productID)
			}
			return nil, err
		}
		if !product.Active {
			return nil, fmt.Errorf("%w: product %s is not available", ErrOrderInvalidInput, productID)
		}

		items = append(items, domain.OrderLineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  req.Quantity,
			UnitPrice: product.Price,
			Decision:  domain.ItemDecisionUndecided,
		})
	}
	return items, nil
}

// applyItemDecisions matches review decisions to line items by product id.
// Decisions naming unknown products are skipped with a warning; items the
// admin left out keep whatever decision they already carried.
func (s *orderService) applyItemDecisions(ctx context.Context, order *domain.Order, decisions []ReviewItemDecision) {
	index := make(map[string]int, len(order.Items))
	for i, item := range order.Items {
		index[item.ProductID] = i
	}

	for _, decision := range decisions {
		productID := strings.TrimSpace(decision.ProductID)
		i, ok := index[productID]
		if !ok {
			s.logger(ctx, "order.review_decision_unmatched", map[string]any{
				"order_id":   order.ID,
				"product_id": productID,
			})
			continue
		}
		switch decision.Status {
		case domain.ItemDecisionAccepted:
			order.Items[i].Decision = domain.ItemDecisionAccepted
			if decision.Quantity > 0 {
				order.Items[i].Quantity = decision.Quantity
			}
		case domain.ItemDecisionRejected:
			order.Items[i].Decision = domain.ItemDecisionRejected
		default:
			s.logger(ctx, "order.review_decision_unknown_status", map[string]any{
				"order_id":   order.ID,
				"product_id": productID,
				"status":     string(decision.Status),
			})
		}
	}
}

func (s *orderService) publishEvent(ctx context.Context, event OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger(ctx, "order.event_publish_failed", map[string]any{
			"order_id": event.OrderID,
			"type":     event.Type,
			"error":    err.Error(),
		})
	}
}

func (s *orderService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrOrderForbidden) {
		return err
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrOrderStateConflict, err)
		}
	}
	return err
}
