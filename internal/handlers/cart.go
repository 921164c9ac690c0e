package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"ticketline/internal/middleware"
	"ticketline/internal/models"
	"ticketline/internal/services"

	"github.com/go-chi/chi/v5"
)

// CartHandler handles cart requests
type CartHandler struct {
	cart *services.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cart *services.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	order, err := h.cart.GetCart(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

type addItemRequest struct {
	EventID      int                   `json:"event_id"`
	TicketTypeID int                   `json:"ticket_type_id"`
	Quantity     int                   `json:"quantity"`
	Attendee     *models.AttendeeInput `json:"attendee,omitempty"`
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}

	order, err := h.cart.AddItem(userID, req.EventID, req.TicketTypeID, req.Quantity, req.Attendee)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem handles PATCH /cart/items/{itemID}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itemID, err := strconv.Atoi(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid item ID", Code: "bad_request"})
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}

	order, err := h.cart.UpdateItemQuantity(userID, itemID, req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// RemoveItem handles DELETE /cart/items/{itemID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itemID, err := strconv.Atoi(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid item ID", Code: "bad_request"})
		return
	}

	order, deleted, err := h.cart.RemoveItem(userID, itemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if deleted {
		writeJSON(w, http.StatusOK, map[string]interface{}{"cart_deleted": true})
		return
	}

	writeJSON(w, http.StatusOK, order)
}
