package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/payments"
	"github.com/manira/api/internal/repositories"
)

// payableStatuses are the review outcomes that unlock payment.
var payableStatuses = []domain.OrderStatus{
	domain.OrderStatusAccepted,
	domain.OrderStatusPartiallyAccepted,
}

// verifiableStatuses additionally admit confirmed orders so repeated
// confirmations of the same payment stay idempotent.
var verifiableStatuses = []domain.OrderStatus{
	domain.OrderStatusAccepted,
	domain.OrderStatusPartiallyAccepted,
	domain.OrderStatusConfirmed,
}

// PaymentServiceDeps bundles collaborators required to construct the payment service.
type PaymentServiceDeps struct {
	Orders       repositories.OrderRepository
	Gateway      payments.Gateway
	GatewayKeyID string
	Events       OrderEventPublisher
	Clock        func() time.Time
	Logger       func(ctx context.Context, event string, fields map[string]any)
}

type paymentService struct {
	orders  repositories.OrderRepository
	gateway payments.Gateway
	keyID   string
	events  OrderEventPublisher
	clock   func() time.Time
	logger  func(context.Context, string, map[string]any)
}

// NewPaymentService wires dependencies into a concrete PaymentService implementation.
func NewPaymentService(deps PaymentServiceDeps) (PaymentService, error) {
	if deps.Orders == nil {
		return nil, errors.New("payment service: order repository is required")
	}
	if deps.Gateway == nil {
		return nil, errors.New("payment service: gateway is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &paymentService{
		orders:  deps.Orders,
		gateway: deps.Gateway,
		keyID:   strings.TrimSpace(deps.GatewayKeyID),
		events:  deps.Events,
		clock:   func() time.Time { return clock().UTC() },
		logger:  logger,
	}, nil
}

func (s *paymentService) CreateIntent(ctx context.Context, cmd CreateIntentCommand) (PaymentIntent, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return PaymentIntent{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return PaymentIntent{}, fmt.Errorf("%w: user id is required", ErrOrderInvalidInput)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return PaymentIntent{}, s.mapRepositoryError(err)
	}
	if order.UserID != userID {
		return PaymentIntent{}, fmt.Errorf("%w: order %s belongs to another customer", ErrOrderForbidden, orderID)
	}
	if !orderIsPayable(order.Status) {
		return PaymentIntent{}, fmt.Errorf("%w: order %s is %s", ErrOrderStateConflict, orderID, order.Status)
	}
	if order.PaymentStatus == domain.PaymentStatusCompleted {
		return PaymentIntent{}, fmt.Errorf("%w: order %s is already paid", ErrOrderStateConflict, orderID)
	}

	// A previously opened intent is reused as long as the payable total has
	// not moved underneath it, so retried clients do not pile up gateway
	// orders for the same purchase.
	if order.GatewayIntentID != "" && order.GatewayIntentAmount == order.TotalAmount {
		return PaymentIntent{
			OrderID:         order.ID,
			GatewayIntentID: order.GatewayIntentID,
			Amount:          order.TotalAmount,
			Currency:        order.Currency,
			GatewayKeyID:    s.keyID,
		}, nil
	}

	intent, err := s.gateway.CreateIntent(ctx, payments.IntentRequest{
		Amount:   order.TotalAmount,
		Currency: order.Currency,
		Receipt:  order.ID,
		Notes:    map[string]string{"order_id": order.ID},
	})
	if err != nil {
		return PaymentIntent{}, err
	}

	now := s.clock()
	updated, err := s.orders.UpdateIf(ctx, orderID, payableStatuses, func(current domain.Order) (domain.Order, error) {
		if current.PaymentStatus == domain.PaymentStatusCompleted {
			return domain.Order{}, fmt.Errorf("%w: order %s is already paid", ErrOrderStateConflict, orderID)
		}
		current.GatewayIntentID = intent.ID
		current.GatewayIntentAmount = intent.Amount
		current.UpdatedAt = now
		return current, nil
	})
	if err != nil {
		return PaymentIntent{}, s.mapRepositoryError(err)
	}

	s.logger(ctx, "payment.intent.recorded", map[string]any{
		"order_id":  updated.ID,
		"intent_id": intent.ID,
		"amount":    intent.Amount,
	})

	return PaymentIntent{
		OrderID:         updated.ID,
		GatewayIntentID: intent.ID,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
		GatewayKeyID:    intent.KeyID,
	}, nil
}

func (s *paymentService) VerifyPayment(ctx context.Context, cmd VerifyPaymentCommand) (domain.Order, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return domain.Order{}, fmt.Errorf("%w: user id is required", ErrOrderInvalidInput)
	}
	intentID := strings.TrimSpace(cmd.GatewayIntentID)
	paymentID := strings.TrimSpace(cmd.GatewayPaymentID)
	signature := strings.TrimSpace(cmd.Signature)
	if intentID == "" || paymentID == "" || signature == "" {
		return domain.Order{}, fmt.Errorf("%w: intent id, payment id and signature are required", ErrOrderInvalidInput)
	}

	if err := s.gateway.VerifyConfirmation(payments.Confirmation{
		IntentID:  intentID,
		PaymentID: paymentID,
		Signature: signature,
	}); err != nil {
		if errors.Is(err, payments.ErrSignatureMismatch) {
			s.logger(ctx, "payment.signature.rejected", map[string]any{
				"order_id":   orderID,
				"intent_id":  intentID,
				"payment_id": paymentID,
			})
		}
		return domain.Order{}, err
	}

	now := s.clock()
	var replayed bool
	updated, err := s.orders.UpdateIf(ctx, orderID, verifiableStatuses, func(current domain.Order) (domain.Order, error) {
		if current.UserID != userID {
			return domain.Order{}, fmt.Errorf("%w: order %s belongs to another customer", ErrOrderForbidden, orderID)
		}
		if current.GatewayIntentID != "" && current.GatewayIntentID != intentID {
			return domain.Order{}, fmt.Errorf("%w: confirmation names a different intent", ErrOrderStateConflict)
		}
		if current.PaymentStatus == domain.PaymentStatusCompleted {
			if current.GatewayPaymentID == paymentID {
				replayed = true
				return current, nil
			}
			return domain.Order{}, fmt.Errorf("%w: order %s was paid through another confirmation", ErrOrderStateConflict, orderID)
		}

		current.PaymentStatus = domain.PaymentStatusCompleted
		current.Status = domain.OrderStatusConfirmed
		current.GatewayPaymentID = paymentID
		current.PaidAt = &now
		current.UpdatedAt = now
		return current, nil
	})
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	if !replayed {
		s.publishEvent(ctx, OrderEvent{
			Type:          orderEventPaymentCompleted,
			OrderID:       updated.ID,
			UserID:        updated.UserID,
			Status:        string(updated.Status),
			PaymentStatus: string(updated.PaymentStatus),
			TotalAmount:   updated.TotalAmount,
			ActorID:       userID,
			OccurredAt:    now,
		})
	}
	return updated, nil
}

func (s *paymentService) publishEvent(ctx context.Context, event OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger(ctx, "payment.event_publish_failed", map[string]any{
			"order_id": event.OrderID,
			"type":     event.Type,
			"error":    err.Error(),
		})
	}
}

func (s *paymentService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrOrderForbidden) || errors.Is(err, ErrOrderStateConflict) {
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

func orderIsPayable(status domain.OrderStatus) bool {
	for _, candidate := range payableStatuses {
		if status == candidate {
			return true
		}
	}
	return false
}
