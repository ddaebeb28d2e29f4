package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/platform/auth"
	"github.com/manira/api/internal/platform/httpx"
	"github.com/manira/api/internal/services"
)

// OrderHandlers exposes the customer-facing order lifecycle endpoints.
type OrderHandlers struct {
	authn  *auth.Authenticator
	orders services.OrderService
}

const maxOrderBodySize = 64 * 1024

// NewOrderHandlers constructs handlers enforcing authentication before invoking the order service.
func NewOrderHandlers(authn *auth.Authenticator, orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{authn: authn, orders: orders}
}

// Routes wires the /orders endpoints onto the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Post("/", h.submitOrder)
	r.Get("/", h.listOrders)
	r.Get("/{orderID}", h.getOrder)
	r.Post("/{orderID}:cancel", h.cancelOrder)
}

type orderItemPayload struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
	Status    string  `json:"status"`
}

type orderPayload struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	Items           []orderItemPayload `json:"items"`
	OriginalAmount  float64            `json:"original_amount,omitempty"`
	DiscountAmount  float64            `json:"discount_amount,omitempty"`
	TotalAmount     float64            `json:"total_amount"`
	PromotionCode   string             `json:"promotion_code,omitempty"`
	Status          string             `json:"status"`
	PaymentStatus   string             `json:"payment_status"`
	ShippingAddress string             `json:"shipping_address,omitempty"`
	Phone           string             `json:"phone,omitempty"`
	PaymentMethod   string             `json:"payment_method,omitempty"`
	AdminNotes      string             `json:"admin_notes,omitempty"`
	Currency        string             `json:"currency"`
	CreatedAt       string             `json:"created_at,omitempty"`
	UpdatedAt       string             `json:"updated_at,omitempty"`
	PaidAt          string             `json:"paid_at,omitempty"`
}

func buildOrderPayload(order domain.Order) orderPayload {
	items := make([]orderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemPayload{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: moneyMajor(item.UnitPrice),
			LineTotal: moneyMajor(item.LineTotal()),
			Status:    string(item.Decision),
		})
	}
	return orderPayload{
		ID:              order.ID,
		UserID:          order.UserID,
		Items:           items,
		OriginalAmount:  moneyMajor(order.OriginalAmount),
		DiscountAmount:  moneyMajor(order.DiscountAmount),
		TotalAmount:     moneyMajor(order.TotalAmount),
		PromotionCode:   order.PromotionCode,
		Status:          string(order.Status),
		PaymentStatus:   string(order.PaymentStatus),
		ShippingAddress: order.ShippingAddress,
		Phone:           order.Phone,
		PaymentMethod:   order.PaymentMethod,
		AdminNotes:      order.AdminNotes,
		Currency:        order.Currency,
		CreatedAt:       formatTime(order.CreatedAt),
		UpdatedAt:       formatTime(order.UpdatedAt),
		PaidAt:          formatTimePtr(order.PaidAt),
	}
}

type submitOrderRequest struct {
	Items []struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	PromotionCode   string `json:"promotion_code"`
	ShippingAddress string `json:"shipping_address"`
	Phone           string `json:"phone"`
	PaymentMethod   string `json:"payment_method"`
}

func (h *OrderHandlers) submitOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req submitOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	cmd := services.SubmitOrderCommand{
		UserID:          identity.UserID,
		PromotionCode:   req.PromotionCode,
		ShippingAddress: req.ShippingAddress,
		Phone:           req.Phone,
		PaymentMethod:   req.PaymentMethod,
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, services.SubmitOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orders.Submit(ctx, cmd)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildOrderPayload(order))
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	orders, err := h.orders.ListByUser(ctx, identity.UserID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	payload := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		payload = append(payload, buildOrderPayload(order))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"orders": payload})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	order, err := h.orders.Get(ctx, services.GetOrderCommand{
		OrderID:    chi.URLParam(r, "orderID"),
		ActorID:    identity.UserID,
		ActorAdmin: identity.IsAdmin(),
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	order, err := h.orders.Cancel(ctx, services.CancelOrderCommand{
		OrderID: chi.URLParam(r, "orderID"),
		UserID:  identity.UserID,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

func requireIdentity(ctx context.Context, w http.ResponseWriter) (*auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || strings.TrimSpace(identity.UserID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return nil, false
	}
	return identity, true
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput), errors.Is(err, services.ErrPricingInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrPromotionMinimumNotMet):
		httpx.WriteError(ctx, w, httpx.NewError("promotion_minimum_not_met", "order amount does not meet the promotion minimum", http.StatusBadRequest))
	case errors.Is(err, services.ErrPromotionNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("promotion_not_found", "promotion code is not valid", http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderForbidden):
		httpx.WriteError(ctx, w, httpx.NewError("forbidden", "order belongs to a different user", http.StatusForbidden))
	case errors.Is(err, services.ErrOrderStateConflict):
		httpx.WriteError(ctx, w, httpx.NewError("order_state_conflict", "order state does not allow this operation", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unable to process request", http.StatusInternalServerError))
	}
}
