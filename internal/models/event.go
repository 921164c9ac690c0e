package models

import (
	"time"
)

// EventStatus represents the lifecycle status of an event
type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusPublished EventStatus = "published"
	StatusCancelled EventStatus = "cancelled"
)

// Event is the catalog-owned slice of an event the order core reads:
// status and sale window. Full event CRUD lives in the catalog service.
type Event struct {
	ID        int         `json:"id" db:"id"`
	Title     string      `json:"title" db:"title"`
	Status    EventStatus `json:"status" db:"status"`
	SaleStart time.Time   `json:"sale_start" db:"sale_start"`
	SaleEnd   time.Time   `json:"sale_end" db:"sale_end"`
	StartsAt  time.Time   `json:"starts_at" db:"starts_at"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// IsCancelled returns true if the event has been cancelled
func (e *Event) IsCancelled() bool {
	return e.Status == StatusCancelled
}

// IsOnSale reports whether tickets can be added to a cart right now.
func (e *Event) IsOnSale(now time.Time) bool {
	if e.Status != StatusPublished {
		return false
	}
	return !now.Before(e.SaleStart) && !now.After(e.SaleEnd)
}
