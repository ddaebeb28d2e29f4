package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/payments"
)

func acceptedOrder() domain.Order {
	order := pendingOrder()
	order.Status = domain.OrderStatusAccepted
	for i := range order.Items {
		order.Items[i].Decision = domain.ItemDecisionAccepted
	}
	return order
}

func newTestPaymentService(t *testing.T, deps PaymentServiceDeps) PaymentService {
	t.Helper()
	if deps.Gateway == nil {
		deps.Gateway = &stubGateway{}
	}
	if deps.Clock == nil {
		deps.Clock = testClock
	}
	svc, err := NewPaymentService(deps)
	if err != nil {
		t.Fatalf("NewPaymentService: %v", err)
	}
	return svc
}

func TestCreateIntentRecordsGatewayOrder(t *testing.T) {
	store := newFakeOrderStore(acceptedOrder())
	var captured payments.IntentRequest
	svc := newTestPaymentService(t, PaymentServiceDeps{
		Orders: store,
		Gateway: &stubGateway{
			createFn: func(_ context.Context, req payments.IntentRequest) (payments.Intent, error) {
				captured = req
				return payments.Intent{ID: "intent_1", Amount: req.Amount, Currency: req.Currency, KeyID: "rzp_test_key"}, nil
			},
		},
	})

	intent, err := svc.CreateIntent(context.Background(), CreateIntentCommand{OrderID: "ord_1", UserID: "usr_1"})
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}

	if captured.Amount != 620000 || captured.Receipt != "ord_1" {
		t.Fatalf("unexpected gateway request %+v", captured)
	}
	if intent.GatewayIntentID != "intent_1" || intent.GatewayKeyID != "rzp_test_key" {
		t.Fatalf("unexpected intent %+v", intent)
	}

	stored, err := store.FindByID(context.Background(), "ord_1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.GatewayIntentID != "intent_1" || stored.GatewayIntentAmount != 620000 {
		t.Fatalf("intent should be recorded on the order, got %q / %d", stored.GatewayIntentID, stored.GatewayIntentAmount)
	}
}

func TestCreateIntentReusesRecordedIntent(t *testing.T) {
	order := acceptedOrder()
	order.GatewayIntentID = "intent_existing"
	order.GatewayIntentAmount = order.TotalAmount
	store := newFakeOrderStore(order)

	gatewayCalls := 0
	svc := newTestPaymentService(t, PaymentServiceDeps{
		Orders:       store,
		GatewayKeyID: "rzp_test_key",
		Gateway: &stubGateway{
			createFn: func(context.Context, payments.IntentRequest) (payments.Intent, error) {
				gatewayCalls++
				return payments.Intent{ID: "intent_fresh"}, nil
			},
		},
	})

	intent, err := svc.CreateIntent(context.Background(), CreateIntentCommand{OrderID: "ord_1", UserID: "usr_1"})
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if gatewayCalls != 0 {
		t.Fatalf("gateway should not be called when the intent is reusable")
	}
	if intent.GatewayIntentID != "intent_existing" || intent.GatewayKeyID != "rzp_test_key" {
		t.Fatalf("unexpected intent %+v", intent)
	}
}

func TestCreateIntentReplacesStaleIntent(t *testing.T) {
	order := acceptedOrder()
	order.GatewayIntentID = "intent_stale"
	order.GatewayIntentAmount = order.TotalAmount + 1000
	store := newFakeOrderStore(order)

	svc := newTestPaymentService(t, PaymentServiceDeps{
		Orders: store,
		Gateway: &stubGateway{
			createFn: func(_ context.Context, req payments.IntentRequest) (payments.Intent, error) {
				return payments.Intent{ID: "intent_fresh", Amount: req.Amount, Currency: req.Currency}, nil
			},
		},
	})

	intent, err := svc.CreateIntent(context.Background(), CreateIntentCommand{OrderID: "ord_1", UserID: "usr_1"})
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if intent.GatewayIntentID != "intent_fresh" {
		t.Fatalf("stale intent should be replaced, got %q", intent.GatewayIntentID)
	}
}

func TestCreateIntentConflictsOutsidePayableStates(t *testing.T) {
	for _, status := range []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusRejected,
		domain.OrderStatusCancelled,
		domain.OrderStatusConfirmed,
	} {
		order := acceptedOrder()
		order.Status = status
		svc := newTestPaymentService(t, PaymentServiceDeps{Orders: newFakeOrderStore(order)})

		_, err := svc.CreateIntent(context.Background(), CreateIntentCommand{OrderID: "ord_1", UserID: "usr_1"})
		if !errors.Is(err, ErrOrderStateConflict) {
			t.Fatalf("status %s: expected ErrOrderStateConflict, got %v", status, err)
		}
	}
}

func TestCreateIntentGatewayFailureLeavesOrderUntouched(t *testing.T) {
	store := newFakeOrderStore(acceptedOrder())
	svc := newTestPaymentService(t, PaymentServiceDeps{
		Orders: store,
		Gateway: &stubGateway{
			createFn: func(context.Context, payments.IntentRequest) (payments.Intent, error) {
				return payments.Intent{}, payments.ErrGateway
			},
		},
	})

	_, err := svc.CreateIntent(context.Background(), CreateIntentCommand{OrderID: "ord_1", UserID: "usr_1"})
	if !errors.Is(err, payments.ErrGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}

	stored, _ := store.FindByID(context.Background(), "ord_1")
	if stored.GatewayIntentID != "" {
		t.Fatalf("no intent should be recorded after a gateway failure")
	}
}

func TestVerifyPaymentConfirmsOrder(t *testing.T) {
	order := acceptedOrder()
	order.GatewayIntentID = "intent_1"
	order.GatewayIntentAmount = order.TotalAmount
	store := newFakeOrderStore(order)
	events := &capturedEvents{}

	svc := newTestPaymentService(t, PaymentServiceDeps{Orders: store, Events: events})

	confirmed, err := svc.VerifyPayment(context.Background(), VerifyPaymentCommand{
		OrderID:          "ord_1",
		UserID:           "usr_1",
		GatewayIntentID:  "intent_1",
		GatewayPaymentID: "pay_1",
		Signature:        "sig",
	})
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}

	if confirmed.Status != domain.OrderStatusConfirmed || confirmed.PaymentStatus != domain.PaymentStatusCompleted {
		t.Fatalf("unexpected state %s / %s", confirmed.Status, confirmed.PaymentStatus)
	}
	if confirmed.GatewayPaymentID != "pay_1" || confirmed.PaidAt == nil {
		t.Fatalf("payment correlation missing: %+v", confirmed)
	}
	if event, _ := events.last(); event.Type != "order.payment.completed" {
		t.Fatalf("expected order.payment.completed event, got %+v", event)
	}
}

func TestVerifyPaymentIsIdempotentForSamePaymentID(t *testing.T) {
	order := acceptedOrder()
	order.GatewayIntentID = "intent_1"
	store := newFakeOrderStore(order)
	events := &capturedEvents{}
	svc := newTestPaymentService(t, PaymentServiceDeps{Orders: store, Events: events})

	cmd := VerifyPaymentCommand{
		OrderID:          "ord_1",
		UserID:           "usr_1",
		GatewayIntentID:  "intent_1",
		GatewayPaymentID: "pay_1",
		Signature:        "sig",
	}
	if _, err := svc.VerifyPayment(context.Background(), cmd); err != nil {
		t.Fatalf("first VerifyPayment: %v", err)
	}
	if _, err := svc.VerifyPayment(context.Background(), cmd); err != nil {
		t.Fatalf("replayed VerifyPayment should succeed: %v", err)
	}
	if len(events.events) != 1 {
		t.Fatalf("replay must not publish a second event, got %d", len(events.events))
	}

	cmd.GatewayPaymentID = "pay_other"
	if _, err := svc.VerifyPayment(context.Background(), cmd); !errors.Is(err, ErrOrderStateConflict) {
		t.Fatalf("different payment id should conflict, got %v", err)
	}
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	store := newFakeOrderStore(acceptedOrder())
	svc := newTestPaymentService(t, PaymentServiceDeps{
		Orders: store,
		Gateway: &stubGateway{
			verifyFn: func(payments.Confirmation) error {
				return payments.ErrSignatureMismatch
			},
		},
	})

	_, err := svc.VerifyPayment(context.Background(), VerifyPaymentCommand{
		OrderID:          "ord_1",
		UserID:           "usr_1",
		GatewayIntentID:  "intent_1",
		GatewayPaymentID: "pay_1",
		Signature:        "forged",
	})
	if !errors.Is(err, payments.ErrSignatureMismatch) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}

	stored, _ := store.FindByID(context.Background(), "ord_1")
	if stored.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("order state must not change on signature mismatch")
	}
}

func TestVerifyPaymentRequiresConfirmationFields(t *testing.T) {
	svc := newTestPaymentService(t, PaymentServiceDeps{Orders: newFakeOrderStore(acceptedOrder())})

	_, err := svc.VerifyPayment(context.Background(), VerifyPaymentCommand{
		OrderID: "ord_1",
		UserID:  "usr_1",
	})
	if !errors.Is(err, ErrOrderInvalidInput) {
		t.Fatalf("expected ErrOrderInvalidInput, got %v", err)
	}
}
