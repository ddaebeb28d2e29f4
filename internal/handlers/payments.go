package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/manira/api/internal/payments"
	"github.com/manira/api/internal/platform/httpx"
	"github.com/manira/api/internal/services"
)

// PaymentHandlers exposes the two-phase payment confirmation endpoints,
// nested under the authenticated /orders group.
type PaymentHandlers struct {
	payments services.PaymentService
	intentMW []func(http.Handler) http.Handler
}

const maxPaymentBodySize = 16 * 1024

// NewPaymentHandlers constructs the payment handlers. Middlewares passed here
// wrap only the intent creation route, which is where idempotency keys apply.
func NewPaymentHandlers(svc services.PaymentService, intentMW ...func(http.Handler) http.Handler) *PaymentHandlers {
	return &PaymentHandlers{payments: svc, intentMW: intentMW}
}

// Routes wires the payment endpoints onto the /orders group.
func (h *PaymentHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.With(h.intentMW...).Post("/{orderID}/payment:create-intent", h.createIntent)
	r.Post("/{orderID}/payment:verify", h.verifyPayment)
}

type paymentIntentResponse struct {
	GatewayIntentID string  `json:"gateway_intent_id"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	GatewayKeyID    string  `json:"gateway_key_id"`
}

func (h *PaymentHandlers) createIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.payments == nil {
		httpx.WriteError(ctx, w, httpx.NewError("payment_service_unavailable", "payment service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	intent, err := h.payments.CreateIntent(ctx, services.CreateIntentCommand{
		OrderID: chi.URLParam(r, "orderID"),
		UserID:  identity.UserID,
	})
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, paymentIntentResponse{
		GatewayIntentID: intent.GatewayIntentID,
		Amount:          moneyMajor(intent.Amount),
		Currency:        intent.Currency,
		GatewayKeyID:    intent.GatewayKeyID,
	})
}

type verifyPaymentRequest struct {
	GatewayIntentID  string `json:"gateway_intent_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
}

func (h *PaymentHandlers) verifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.payments == nil {
		httpx.WriteError(ctx, w, httpx.NewError("payment_service_unavailable", "payment service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxPaymentBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req verifyPaymentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	order, err := h.payments.VerifyPayment(ctx, services.VerifyPaymentCommand{
		OrderID:          chi.URLParam(r, "orderID"),
		UserID:           identity.UserID,
		GatewayIntentID:  req.GatewayIntentID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"message": "payment verified",
		"order":   buildOrderPayload(order),
	})
}

func writePaymentError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, payments.ErrSignatureMismatch):
		httpx.WriteError(ctx, w, httpx.NewError("signature_mismatch", "payment signature could not be verified", http.StatusBadRequest))
	case errors.Is(err, payments.ErrGateway):
		httpx.WriteError(ctx, w, httpx.NewError("gateway_error", "payment gateway is unavailable", http.StatusBadGateway))
	case errors.Is(err, payments.ErrInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		writeOrderError(ctx, w, err)
	}
}
