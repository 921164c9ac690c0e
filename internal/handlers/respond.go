package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ticketline/internal/models"
)

// ErrorResponse is the JSON body for every error status.
type ErrorResponse struct {
	Error        string `json:"error"`
	Code         string `json:"code"`
	TicketTypeID int    `json:"ticket_type_id,omitempty"`
	Requested    int    `json:"requested,omitempty"`
	Available    int    `json:"available,omitempty"`
	Max          int    `json:"max,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to write JSON response", "error", err)
		}
	}
}

// writeServiceError maps a service error onto an HTTP status and JSON
// body. State and stock conflicts are 409, input problems 422, and
// anything unclassified is a logged 500 with no detail leaked.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *models.ValidationError
		inventoryErr  *models.InsufficientInventoryError
		maxPerOrder   *models.MaxPerOrderExceededError
		priceMismatch *models.PriceMismatchError
	)

	switch {
	case errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrOrderItemNotFound),
		errors.Is(err, models.ErrTicketTypeNotFound),
		errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrTicketNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})

	case errors.Is(err, models.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: "unauthorized"})

	case errors.Is(err, models.ErrInvalidState):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "invalid_state"})

	case errors.Is(err, models.ErrEventUnavailable):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "event_unavailable"})

	case errors.As(err, &inventoryErr):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:        inventoryErr.Error(),
			Code:         "insufficient_inventory",
			TicketTypeID: inventoryErr.TicketTypeID,
			Requested:    inventoryErr.Requested,
			Available:    inventoryErr.Available,
		})

	case errors.Is(err, models.ErrInvalidQuantity):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "invalid_quantity"})

	case errors.As(err, &maxPerOrder):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:        maxPerOrder.Error(),
			Code:         "max_per_order_exceeded",
			TicketTypeID: maxPerOrder.TicketTypeID,
			Requested:    maxPerOrder.Requested,
			Max:          maxPerOrder.Max,
		})

	case errors.As(err, &priceMismatch):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:        priceMismatch.Error(),
			Code:         "price_mismatch",
			TicketTypeID: priceMismatch.TicketTypeID,
		})

	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: validationErr.Error(), Code: "validation_error"})

	default:
		slog.Error("unhandled service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal"})
	}
}
