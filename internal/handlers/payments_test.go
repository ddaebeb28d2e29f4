package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/payments"
	"github.com/manira/api/internal/services"
)

func TestPaymentHandlersCreateIntent(t *testing.T) {
	service := &stubPaymentService{
		createFunc: func(ctx context.Context, cmd services.CreateIntentCommand) (services.PaymentIntent, error) {
			if cmd.OrderID != "ord_1" || cmd.UserID != "usr_1" {
				t.Fatalf("unexpected command %+v", cmd)
			}
			return services.PaymentIntent{
				OrderID:         "ord_1",
				GatewayIntentID: "order_R1",
				Amount:          558000,
				Currency:        "INR",
				GatewayKeyID:    "rzp_test_key",
			}, nil
		},
	}

	handler := NewPaymentHandlers(service)
	router := chi.NewRouter()
	router.Route("/orders", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/orders/ord_1/payment:create-intent", "", "usr_1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp paymentIntentResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.GatewayIntentID != "order_R1" {
		t.Fatalf("expected gateway intent id, got %q", resp.GatewayIntentID)
	}
	if resp.Amount != 5580 {
		t.Fatalf("expected amount 5580.00, got %v", resp.Amount)
	}
	if resp.GatewayKeyID != "rzp_test_key" {
		t.Fatalf("expected gateway key id, got %q", resp.GatewayKeyID)
	}
}

func TestPaymentHandlersCreateIntentStateConflict(t *testing.T) {
	service := &stubPaymentService{
		createFunc: func(ctx context.Context, cmd services.CreateIntentCommand) (services.PaymentIntent, error) {
			return services.PaymentIntent{}, services.ErrOrderStateConflict
		},
	}

	handler := NewPaymentHandlers(service)
	router := chi.NewRouter()
	router.Route("/orders", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/orders/ord_1/payment:create-intent", "", "usr_1"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}

func TestPaymentHandlersCreateIntentGatewayDown(t *testing.T) {
	service := &stubPaymentService{
		createFunc: func(ctx context.Context, cmd services.CreateIntentCommand) (services.PaymentIntent, error) {
			return services.PaymentIntent{}, payments.ErrGateway
		},
	}

	handler := NewPaymentHandlers(service)
	router := chi.NewRouter()
	router.Route("/orders", handler.Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/orders/ord_1/payment:create-intent", "", "usr_1"))

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rr.Code)
	}
}

func TestPaymentHandlersVerify(t *testing.T) {
	service := &stubPaymentService{
		verifyFunc: func(ctx context.Context, cmd services.VerifyPaymentCommand) (domain.Order, error) {
			if cmd.GatewayIntentID != "order_R1" || cmd.GatewayPaymentID != "pay_77" || cmd.Signature != "sig" {
				t.Fatalf("unexpected command %+v", cmd)
			}
			return domain.Order{
				ID:            "ord_1",
				UserID:        "usr_1",
				Status:        domain.OrderStatusConfirmed,
				PaymentStatus: domain.PaymentStatusCompleted,
				TotalAmount:   558000,
				Currency:      "INR",
			}, nil
		},
	}

	handler := NewPaymentHandlers(service)
	router := chi.NewRouter()
	router.Route("/orders", handler.Routes)

	body := `{"gateway_intent_id":"order_R1","gateway_payment_id":"pay_77","signature":"sig"}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/orders/ord_1/payment:verify", body, "usr_1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Message string       `json:"message"`
		Order   orderPayload `json:"order"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Order.Status != string(domain.OrderStatusConfirmed) {
		t.Fatalf("expected confirmed order, got %s", resp.Order.Status)
	}
	if resp.Order.PaymentStatus != string(domain.PaymentStatusCompleted) {
		t.Fatalf("expected completed payment, got %s", resp.Order.PaymentStatus)
	}
}

func TestPaymentHandlersVerifyBadSignature(t *testing.T) {
	service := &stubPaymentService{
		verifyFunc: func(ctx context.Context, cmd services.VerifyPaymentCommand) (domain.Order, error) {
			return domain.Order{}, payments.ErrSignatureMismatch
		},
	}

	handler := NewPaymentHandlers(service)
	router := chi.NewRouter()
	router.Route("/orders", handler.Routes)

	body := `{"gateway_intent_id":"order_R1","gateway_payment_id":"pay_77","signature":"forged"}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/orders/ord_1/payment:verify", body, "usr_1"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	var errBody map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &errBody); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if errBody["error"] != "signature_mismatch" {
		t.Fatalf("expected signature_mismatch, got %v", errBody["error"])
	}
}

func TestPaymentHandlersIntentMiddlewareApplied(t *testing.T) {
	var sawHeader bool
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawHeader = r.Header.Get("Idempotency-Key") != ""
			next.ServeHTTP(w, r)
		})
	}
	service := &stubPaymentService{
		createFunc: func(ctx context.Context, cmd services.CreateIntentCommand) (services.PaymentIntent, error) {
			return services.PaymentIntent{OrderID: cmd.OrderID, Currency: "INR"}, nil
		},
	}

	handler := NewPaymentHandlers(service, mw)
	router := chi.NewRouter()
	router.Route("/orders", handler.Routes)

	req := authedRequest(http.MethodPost, "/orders/ord_1/payment:create-intent", "", "usr_1")
	req.Header.Set("Idempotency-Key", "key-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !sawHeader {
		t.Fatalf("expected intent middleware to run")
	}
}
