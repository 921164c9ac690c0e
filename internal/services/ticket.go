package services

import (
	"fmt"

	"ticketline/internal/models"
	"ticketline/internal/repositories"

	"github.com/google/uuid"
)

// TicketService issues tickets for completed orders
type TicketService struct {
	tickets TicketRepository
	orders  OrderRepository
}

// NewTicketService creates a new ticket service
func NewTicketService(tickets TicketRepository, orders OrderRepository) *TicketService {
	return &TicketService{
		tickets: tickets,
		orders:  orders,
	}
}

// IssueTickets generates one ticket per attendee record of a completed
// order. Issuance is idempotent: when tickets already exist for the
// order they are returned as-is and nothing new is written.
func (s *TicketService) IssueTickets(orderID int) ([]*models.Ticket, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if !order.IsCompleted() {
		return nil, fmt.Errorf("%w: tickets can only be issued for completed orders", models.ErrInvalidState)
	}

	existing, err := s.tickets.GetTicketsByOrder(orderID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	newTickets := make([]repositories.NewTicket, 0, len(order.Attendees))
	for _, attendee := range order.Attendees {
		newTickets = append(newTickets, repositories.NewTicket{
			OrderID:      orderID,
			TicketTypeID: attendee.TicketTypeID,
			AttendeeID:   attendee.ID,
			QRCode:       fmt.Sprintf("TKT-%d-%s", orderID, uuid.NewString()),
		})
	}

	return s.tickets.CreateTicketsForOrder(newTickets)
}

// GetTicketsByOrder returns the tickets issued for an order.
func (s *TicketService) GetTicketsByOrder(orderID int) ([]*models.Ticket, error) {
	return s.tickets.GetTicketsByOrder(orderID)
}
