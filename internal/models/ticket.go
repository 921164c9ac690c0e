package models

import (
	"strings"
	"time"
)

// TicketStatus represents the status of an issued ticket
type TicketStatus string

const (
	TicketActive   TicketStatus = "active"
	TicketUsed     TicketStatus = "used"
	TicketRefunded TicketStatus = "refunded"
)

// TicketType is a purchasable SKU within an event. QuantityAvailable is
// the remaining sellable stock; the inventory ledger is the only writer
// and only ever decrements it conditionally or restores it.
type TicketType struct {
	ID                int       `json:"id" db:"id"`
	EventID           int       `json:"event_id" db:"event_id"`
	Name              string    `json:"name" db:"name"`
	PriceCents        int       `json:"price_cents" db:"price_cents"`
	QuantityAvailable int       `json:"quantity_available" db:"quantity_available"`
	MaxPerOrder       int       `json:"max_per_order" db:"max_per_order"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// HasStock reports whether the requested quantity is currently in stock.
// This is advisory only; the ledger's conditional decrement is the
// authoritative check.
func (tt *TicketType) HasStock(quantity int) bool {
	return quantity > 0 && tt.QuantityAvailable >= quantity
}

// Validate validates the ticket type data
func (tt *TicketType) Validate() error {
	if strings.TrimSpace(tt.Name) == "" {
		return &ValidationError{Message: "ticket type name is required"}
	}

	if tt.PriceCents < 0 {
		return &ValidationError{Message: "ticket type price cannot be negative"}
	}

	if tt.QuantityAvailable < 0 {
		return &ValidationError{Message: "ticket type quantity cannot be negative"}
	}

	if tt.MaxPerOrder < 1 {
		return &ValidationError{Message: "ticket type max per order must be at least 1"}
	}

	return nil
}

// Ticket is an issued ticket document reference for one attendee of a
// completed order.
type Ticket struct {
	ID           int          `json:"id" db:"id"`
	OrderID      int          `json:"order_id" db:"order_id"`
	TicketTypeID int          `json:"ticket_type_id" db:"ticket_type_id"`
	AttendeeID   int          `json:"attendee_id" db:"attendee_id"`
	QRCode       string       `json:"qr_code" db:"qr_code"`
	Status       TicketStatus `json:"status" db:"status"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// CanBeUsed returns true if the ticket can be marked as used
func (t *Ticket) CanBeUsed() bool {
	return t.Status == TicketActive
}

// CanBeRefunded returns true if the ticket can be refunded
func (t *Ticket) CanBeRefunded() bool {
	return t.Status == TicketActive
}
