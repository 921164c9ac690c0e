package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"ticketline/internal/middleware"
	"ticketline/internal/models"
	"ticketline/internal/services"

	"github.com/go-chi/chi/v5"
)

// OrderHandler handles order lifecycle requests
type OrderHandler struct {
	checkout  *services.CheckoutService
	orders    *services.OrderService
	tickets   *services.TicketService
	inventory *services.InventoryService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(checkout *services.CheckoutService, orders *services.OrderService, tickets *services.TicketService, inventory *services.InventoryService) *OrderHandler {
	return &OrderHandler{
		checkout:  checkout,
		orders:    orders,
		tickets:   tickets,
		inventory: inventory,
	}
}

func orderIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "orderID"))
	return id, err == nil && id > 0
}

// decodeOptionalJSON decodes a request body into v, treating a missing
// body as the zero value.
func decodeOptionalJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req services.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}

	order, err := h.checkout.CreateOrder(userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// Checkout handles POST /orders/{orderID}/checkout
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	orderID, ok := orderIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order ID", Code: "bad_request"})
		return
	}

	// An empty body is fine here; the payment method defaults below.
	var req checkoutRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "card"
	}

	result, err := h.checkout.Checkout(userID, orderID, req.PaymentMethod)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// CancelOrder handles DELETE /orders/{orderID}
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	orderID, ok := orderIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order ID", Code: "bad_request"})
		return
	}

	if err := h.checkout.Cancel(userID, orderID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type correctStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// CorrectStatus handles POST /orders/{orderID}/status (admin)
func (h *OrderHandler) CorrectStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order ID", Code: "bad_request"})
		return
	}

	var req correctStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}

	if err := models.ValidateStatus(req.Status); err != nil {
		writeServiceError(w, err)
		return
	}

	order, err := h.checkout.CorrectStatus(orderID, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// GetOrder handles GET /orders/{orderID}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	orderID, ok := orderIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order ID", Code: "bad_request"})
		return
	}

	order, err := h.orders.GetOrder(userID, orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// GetOrderDetails handles GET /orders/{orderID}/details
func (h *OrderHandler) GetOrderDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	orderID, ok := orderIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order ID", Code: "bad_request"})
		return
	}

	details, err := h.orders.GetOrderDetails(userID, orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

// GetOrderTickets handles GET /orders/{orderID}/tickets
func (h *OrderHandler) GetOrderTickets(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	orderID, ok := orderIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order ID", Code: "bad_request"})
		return
	}

	// Ownership check rides on the order lookup.
	if _, err := h.orders.GetOrder(userID, orderID); err != nil {
		writeServiceError(w, err)
		return
	}

	tickets, err := h.tickets.GetTicketsByOrder(orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tickets": tickets})
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status := models.OrderStatus(r.URL.Query().Get("status"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, total, err := h.orders.ListOrders(userID, status, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
	})
}

// GetStatistics handles GET /orders/stats
func (h *OrderHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := h.orders.GetStatistics(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// CheckAvailability handles GET /events/{eventID}/ticket-types/{ticketTypeID}/availability
func (h *OrderHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid event ID", Code: "bad_request"})
		return
	}

	ticketTypeID, err := strconv.Atoi(chi.URLParam(r, "ticketTypeID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid ticket type ID", Code: "bad_request"})
		return
	}

	quantity := 1
	if q := r.URL.Query().Get("quantity"); q != "" {
		quantity, err = strconv.Atoi(q)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid quantity", Code: "bad_request"})
			return
		}
	}

	result, err := h.inventory.CheckAvailability(eventID, ticketTypeID, quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
