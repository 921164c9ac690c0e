package models

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderItemNotFound  = errors.New("order item not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrInvalidState       = errors.New("operation not allowed in current order status")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrEventUnavailable   = errors.New("event is not available for sale")
)

// ValidationError reports missing or malformed caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InsufficientInventoryError names the ticket type whose stock could not
// cover the request. Returned by the inventory ledger; the whole
// operation it belongs to has been rolled back.
type InsufficientInventoryError struct {
	TicketTypeID int
	Requested    int
	Available    int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for ticket type %d: requested %d, available %d",
		e.TicketTypeID, e.Requested, e.Available)
}

// MaxPerOrderExceededError reports a quantity above the per-order cap.
type MaxPerOrderExceededError struct {
	TicketTypeID int
	Requested    int
	Max          int
}

func (e *MaxPerOrderExceededError) Error() string {
	return fmt.Sprintf("ticket type %d allows at most %d per order, requested %d",
		e.TicketTypeID, e.Max, e.Requested)
}

// PriceMismatchError reports a caller-supplied unit price that diverges
// from the catalog price beyond the accepted tolerance.
type PriceMismatchError struct {
	TicketTypeID   int
	SubmittedCents int
	CatalogCents   int
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("price mismatch for ticket type %d: submitted %d, catalog %d",
		e.TicketTypeID, e.SubmittedCents, e.CatalogCents)
}
