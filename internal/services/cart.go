package services

import (
	"fmt"

	"ticketline/internal/config"
	"ticketline/internal/models"
	"ticketline/internal/repositories"
)

// CartService manages the user's pending order
type CartService struct {
	orders  OrderRepository
	catalog CatalogRepository
	cfg     config.OrderConfig
}

// NewCartService creates a new cart service
func NewCartService(orders OrderRepository, catalog CatalogRepository, cfg config.OrderConfig) *CartService {
	return &CartService{
		orders:  orders,
		catalog: catalog,
		cfg:     cfg,
	}
}

// validateTicketSelection checks that a quantity of a ticket type can
// be ordered right now: the event exists, is on sale and the ticket
// type belongs to it. Stock is deliberately not checked here; the
// inventory ledger decides at checkout.
func validateTicketSelection(catalog CatalogRepository, eventID, ticketTypeID, quantity int) (*models.TicketType, error) {
	if quantity < 1 {
		return nil, models.ErrInvalidQuantity
	}

	event, err := catalog.GetEvent(eventID)
	if err != nil {
		return nil, err
	}

	if event.IsCancelled() {
		return nil, fmt.Errorf("%w: event is cancelled", models.ErrEventUnavailable)
	}
	if !event.IsOnSale(timeNow()) {
		return nil, fmt.Errorf("%w: event is not on sale", models.ErrEventUnavailable)
	}

	ticketType, err := catalog.GetTicketType(ticketTypeID, eventID)
	if err != nil {
		return nil, err
	}

	return ticketType, nil
}

// GetCart returns the user's pending order, or an empty cart view when
// the user has none.
func (s *CartService) GetCart(userID int) (*models.Order, error) {
	order, err := s.orders.GetPendingByUser(userID)
	if err != nil {
		if err == models.ErrOrderNotFound {
			return &models.Order{UserID: userID, Status: models.OrderPending}, nil
		}
		return nil, err
	}
	return order, nil
}

// AddItem adds a quantity of a ticket type to the user's cart, creating
// the cart when needed and merging into an existing line for the same
// ticket type. The unit price is always taken from the catalog. When no
// attendee is given, placeholder records keep the attendee count equal
// to the purchased quantity.
func (s *CartService) AddItem(userID, eventID, ticketTypeID, quantity int, attendee *models.AttendeeInput) (*models.Order, error) {
	ticketType, err := validateTicketSelection(s.catalog, eventID, ticketTypeID, quantity)
	if err != nil {
		return nil, err
	}

	record := models.PlaceholderAttendee(ticketTypeID)
	if attendee != nil {
		if err := attendee.Validate(); err != nil {
			return nil, err
		}
		record = *attendee
		record.TicketTypeID = ticketTypeID
	}

	item := repositories.NewOrderItem{
		EventID:        eventID,
		TicketTypeID:   ticketTypeID,
		Quantity:       quantity,
		UnitPriceCents: ticketType.PriceCents,
	}

	return s.orders.AddItem(userID, item, record, ticketType.MaxPerOrder, s.cfg.ServiceFeeBasisPoints)
}

// UpdateItemQuantity sets a cart line to an absolute quantity. The
// owning event is re-checked against the catalog, so a line whose
// event has been cancelled or gone off sale can no longer grow.
func (s *CartService) UpdateItemQuantity(userID, orderItemID, quantity int) (*models.Order, error) {
	item, err := s.orders.GetItem(userID, orderItemID)
	if err != nil {
		return nil, err
	}

	ticketType, err := validateTicketSelection(s.catalog, item.EventID, item.TicketTypeID, quantity)
	if err != nil {
		return nil, err
	}

	return s.orders.UpdateItemQuantity(userID, orderItemID, quantity, ticketType.MaxPerOrder, s.cfg.ServiceFeeBasisPoints)
}

// RemoveItem deletes a cart line. Removing the last line deletes the
// cart itself; the second return value reports that case.
func (s *CartService) RemoveItem(userID, orderItemID int) (*models.Order, bool, error) {
	return s.orders.RemoveItem(userID, orderItemID, s.cfg.ServiceFeeBasisPoints)
}
