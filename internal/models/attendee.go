package models

import (
	"regexp"
	"strings"
	"time"
)

// AttendeeRecord holds the per-unit metadata for one purchased ticket.
// For every ticket type in an order, the number of attendee records
// always equals the order item's quantity.
type AttendeeRecord struct {
	ID           int       `json:"id" db:"id"`
	OrderID      int       `json:"order_id" db:"order_id"`
	TicketTypeID int       `json:"ticket_type_id" db:"ticket_type_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// AttendeeInput is the caller-supplied attendee details for a ticket type.
type AttendeeInput struct {
	TicketTypeID int    `json:"ticket_type_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

var attendeeEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate validates the attendee input
func (a *AttendeeInput) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return &ValidationError{Message: "attendee name is required"}
	}

	if len(a.Name) > 255 {
		return &ValidationError{Message: "attendee name must be less than 255 characters"}
	}

	if a.Email == "" {
		return &ValidationError{Message: "attendee email is required"}
	}

	if !attendeeEmailRegex.MatchString(a.Email) {
		return &ValidationError{Message: "attendee email format is invalid"}
	}

	if len(a.Phone) > 32 {
		return &ValidationError{Message: "attendee phone must be less than 32 characters"}
	}

	return nil
}

// PlaceholderAttendee returns the attendee used when a quantity increase
// has no existing record to clone from.
func PlaceholderAttendee(ticketTypeID int) AttendeeInput {
	return AttendeeInput{
		TicketTypeID: ticketTypeID,
		Name:         "Guest",
		Email:        "guest@pending.invalid",
	}
}
