package models

import (
	"fmt"
	"time"
)

// OrderStatus represents the payment status of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderFailed    OrderStatus = "failed"
	OrderRefunded  OrderStatus = "refunded"
)

// Order is the aggregate root for a purchase. While pending it is the
// user's cart; after checkout it is immutable except for administrative
// status corrections.
type Order struct {
	ID            int               `json:"id" db:"id"`
	UserID        int               `json:"user_id" db:"user_id"`
	Status        OrderStatus       `json:"status" db:"status"`
	PaymentMethod string            `json:"payment_method" db:"payment_method"`
	TransactionID string            `json:"transaction_id" db:"transaction_id"` // empty until completion
	SubtotalCents int               `json:"subtotal_cents" db:"subtotal_cents"`
	FeeCents      int               `json:"fee_cents" db:"fee_cents"`
	TotalCents    int               `json:"total_cents" db:"total_cents"`
	Items         []*OrderItem      `json:"items"`
	Attendees     []*AttendeeRecord `json:"attendees"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

// OrderItem is one line of an order. At most one item exists per ticket
// type within an order; quantity is merged instead of duplicated. The
// unit price is captured when the item is first added and never changes.
type OrderItem struct {
	ID             int `json:"id" db:"id"`
	OrderID        int `json:"order_id" db:"order_id"`
	EventID        int `json:"event_id" db:"event_id"`
	TicketTypeID   int `json:"ticket_type_id" db:"ticket_type_id"`
	Quantity       int `json:"quantity" db:"quantity"`
	UnitPriceCents int `json:"unit_price_cents" db:"unit_price_cents"`
}

// SubtotalCents returns the line subtotal.
func (i *OrderItem) SubtotalCents() int {
	return i.Quantity * i.UnitPriceCents
}

func validOrderStatus(status OrderStatus) bool {
	switch status {
	case OrderPending, OrderCompleted, OrderFailed, OrderRefunded:
		return true
	default:
		return false
	}
}

// Validate validates the order data
func (o *Order) Validate() error {
	if !validOrderStatus(o.Status) {
		return &ValidationError{Message: fmt.Sprintf("invalid order status: %s", o.Status)}
	}

	if o.SubtotalCents < 0 || o.FeeCents < 0 || o.TotalCents < 0 {
		return &ValidationError{Message: "order amounts cannot be negative"}
	}

	if o.TotalCents != o.SubtotalCents+o.FeeCents {
		return &ValidationError{Message: "order total does not match subtotal plus fee"}
	}

	return nil
}

// ValidateStatus reports whether s is a known order status.
func ValidateStatus(s OrderStatus) error {
	if !validOrderStatus(s) {
		return &ValidationError{Message: fmt.Sprintf("invalid order status: %s", s)}
	}
	return nil
}

// ItemForTicketType returns the order item for a ticket type, or nil.
func (o *Order) ItemForTicketType(ticketTypeID int) *OrderItem {
	for _, item := range o.Items {
		if item.TicketTypeID == ticketTypeID {
			return item
		}
	}
	return nil
}

// AttendeeCount returns the number of attendee records for a ticket type.
func (o *Order) AttendeeCount(ticketTypeID int) int {
	count := 0
	for _, a := range o.Attendees {
		if a.TicketTypeID == ticketTypeID {
			count++
		}
	}
	return count
}

// IsPending returns true if the order is pending
func (o *Order) IsPending() bool {
	return o.Status == OrderPending
}

// IsCompleted returns true if the order is completed
func (o *Order) IsCompleted() bool {
	return o.Status == OrderCompleted
}

// CanBeCancelled returns true if the order can be cancelled. Cancelling
// deletes the order; only carts that never consumed inventory qualify.
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderPending
}

// CanBeCompleted returns true if the order can be marked as completed
func (o *Order) CanBeCompleted() bool {
	return o.Status == OrderPending
}

// IsExpired returns true if a pending order is older than the given duration
func (o *Order) IsExpired(expirationDuration time.Duration) bool {
	if o.Status != OrderPending {
		return false
	}
	return time.Since(o.CreatedAt) > expirationDuration
}

// ComputeFeeCents computes the service fee on a subtotal, in cents,
// rounding half up. The rate is expressed in basis points so repeated
// recomputation stays exact in integer arithmetic.
func ComputeFeeCents(subtotalCents, feeBasisPoints int) int {
	return (subtotalCents*feeBasisPoints + 5000) / 10000
}

// GenerateTransactionID builds the transaction identifier recorded on a
// completed order. The order id suffix keeps it unique even when two
// orders complete within the same second.
func GenerateTransactionID(prefix string, orderID int, now time.Time) string {
	return fmt.Sprintf("%s-%s-%d", prefix, now.UTC().Format("20060102150405"), orderID)
}

// GetStatusDisplayName returns a human-readable status name
func (o *Order) GetStatusDisplayName() string {
	switch o.Status {
	case OrderPending:
		return "Pending Payment"
	case OrderCompleted:
		return "Completed"
	case OrderFailed:
		return "Failed"
	case OrderRefunded:
		return "Refunded"
	default:
		return string(o.Status)
	}
}
