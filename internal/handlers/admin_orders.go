package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/platform/httpx"
	"github.com/manira/api/internal/repositories"
	"github.com/manira/api/internal/services"
)

// AdminOrderHandlers exposes the administrative order review endpoints.
type AdminOrderHandlers struct {
	orders services.OrderService
}

const maxAdminOrderListLimit = 200

// NewAdminOrderHandlers constructs the admin order handlers.
func NewAdminOrderHandlers(orders services.OrderService) *AdminOrderHandlers {
	return &AdminOrderHandlers{orders: orders}
}

// Routes wires the admin order endpoints onto the /admin group.
func (h *AdminOrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/orders", h.listOrders)
	r.Post("/orders/{orderID}:review", h.reviewOrder)
	r.Post("/orders/{orderID}:force-payment", h.forcePayment)
	r.Delete("/orders/{orderID}", h.deleteOrder)
}

func (h *AdminOrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	filter := repositories.OrderListFilter{
		UserID:        strings.TrimSpace(r.URL.Query().Get("user_id")),
		Status:        domain.OrderStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
		PaymentStatus: domain.PaymentStatus(strings.TrimSpace(r.URL.Query().Get("payment_status"))),
		Limit:         maxAdminOrderListLimit,
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "limit must be a positive integer", http.StatusBadRequest))
			return
		}
		if limit < maxAdminOrderListLimit {
			filter.Limit = limit
		}
	}

	orders, err := h.orders.ListAll(ctx, filter)
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

type reviewOrderRequest struct {
	Action      string `json:"action"`
	ItemsStatus []struct {
		ProductID string `json:"product_id"`
		Status    string `json:"status"`
		Quantity  int    `json:"quantity"`
	} `json:"items_status"`
	AdminNotes string `json:"admin_notes"`
}

func (h *AdminOrderHandlers) reviewOrder(w http.ResponseWriter, r *http.Request) {
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
	var req reviewOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	cmd := services.ReviewOrderCommand{
		OrderID:    chi.URLParam(r, "orderID"),
		Action:     req.Action,
		AdminNotes: req.AdminNotes,
		ActorID:    identity.UserID,
	}
	for _, decision := range req.ItemsStatus {
		cmd.Items = append(cmd.Items, services.ReviewItemDecision{
			ProductID: decision.ProductID,
			Status:    domain.ItemDecision(decision.Status),
			Quantity:  decision.Quantity,
		})
	}

	order, err := h.orders.Review(ctx, cmd)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"message":   "order reviewed",
		"new_total": moneyMajor(order.TotalAmount),
		"order":     buildOrderPayload(order),
	})
}

type forcePaymentRequest struct {
	PaymentStatus string `json:"payment_status"`
	Status        string `json:"status"`
}

func (h *AdminOrderHandlers) forcePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
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
	var req forcePaymentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	order, err := h.orders.ForcePaymentState(ctx, services.ForcePaymentStateCommand{
		OrderID:       chi.URLParam(r, "orderID"),
		PaymentStatus: domain.PaymentStatus(req.PaymentStatus),
		Status:        domain.OrderStatus(req.Status),
		ActorID:       identity.UserID,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

func (h *AdminOrderHandlers) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	if err := h.orders.Delete(ctx, chi.URLParam(r, "orderID")); err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
