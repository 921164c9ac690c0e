package services

import (
	"fmt"

	"ticketline/internal/config"
	"ticketline/internal/models"
	"ticketline/internal/repositories"
)

// CheckoutService drives the order lifecycle: payment completion,
// cancellation, administrative corrections and direct order creation.
type CheckoutService struct {
	orders    OrderRepository
	inventory InventoryLedger
	catalog   CatalogRepository
	tickets   *TicketService
	cfg       config.OrderConfig
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(orders OrderRepository, inventory InventoryLedger, catalog CatalogRepository, tickets *TicketService, cfg config.OrderConfig) *CheckoutService {
	return &CheckoutService{
		orders:    orders,
		inventory: inventory,
		catalog:   catalog,
		tickets:   tickets,
		cfg:       cfg,
	}
}

// CheckoutResult is the outcome of a successful checkout. Ticket
// issuance is best-effort: a failure there leaves the order completed
// and is reported in IssuanceError rather than failing the checkout.
type CheckoutResult struct {
	Order            *models.Order    `json:"order"`
	TransactionID    string           `json:"transaction_id"`
	Tickets          []*models.Ticket `json:"tickets,omitempty"`
	TicketsGenerated bool             `json:"tickets_generated"`
	IssuanceError    string           `json:"issuance_error,omitempty"`
}

// Checkout completes a pending order: inventory is taken for every line
// atomically, the order flips to completed with a transaction id, and
// tickets are issued. Stock is only ever held by completed orders, so a
// failure at any step before completion leaves nothing to undo except
// the decrement itself.
func (s *CheckoutService) Checkout(userID, orderID int, paymentMethod string) (*CheckoutResult, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, models.ErrUnauthorized
	}

	if !order.CanBeCompleted() {
		return nil, fmt.Errorf("%w: order is %s, not pending", models.ErrInvalidState, order.Status)
	}

	if len(order.Items) == 0 {
		return nil, &models.ValidationError{Message: "order has no items"}
	}

	// Revalidate each line for precise errors before paying. The
	// catalog checks are advisory; the ledger decrement below is the
	// authority on stock.
	for _, item := range order.Items {
		if order.AttendeeCount(item.TicketTypeID) != item.Quantity {
			return nil, &models.ValidationError{
				Message: fmt.Sprintf("ticket type %d has %d attendees for %d tickets", item.TicketTypeID, order.AttendeeCount(item.TicketTypeID), item.Quantity),
			}
		}
		ticketType, err := validateTicketSelection(s.catalog, item.EventID, item.TicketTypeID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if !ticketType.HasStock(item.Quantity) {
			return nil, &models.InsufficientInventoryError{
				TicketTypeID: item.TicketTypeID,
				Requested:    item.Quantity,
				Available:    ticketType.QuantityAvailable,
			}
		}
	}

	quantities := make([]repositories.ItemQuantity, 0, len(order.Items))
	for _, item := range order.Items {
		quantities = append(quantities, repositories.ItemQuantity{
			TicketTypeID: item.TicketTypeID,
			Quantity:     item.Quantity,
		})
	}

	if err := s.inventory.ReserveAndDecrement(quantities); err != nil {
		return nil, err
	}

	transactionID := models.GenerateTransactionID(s.cfg.TransactionPrefix, orderID, timeNow())

	if err := s.orders.CompletePending(orderID, paymentMethod, transactionID); err != nil {
		// Lost the completion race (or the order vanished); give the
		// stock back before reporting.
		if restoreErr := s.inventory.Restore(quantities); restoreErr != nil {
			return nil, fmt.Errorf("failed to restore inventory after completion failure: %w", restoreErr)
		}
		return nil, err
	}

	result := &CheckoutResult{TransactionID: transactionID}

	tickets, err := s.tickets.IssueTickets(orderID)
	if err != nil {
		result.IssuanceError = err.Error()
	} else {
		result.Tickets = tickets
		result.TicketsGenerated = true
	}

	completed, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	result.Order = completed

	return result, nil
}

// Cancel deletes a pending order. Pending orders hold no stock, so
// cancellation never touches the inventory ledger.
func (s *CheckoutService) Cancel(userID, orderID int) error {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return err
	}

	if order.UserID != userID {
		return models.ErrUnauthorized
	}

	if !order.CanBeCancelled() {
		return fmt.Errorf("%w: only pending orders can be cancelled", models.ErrInvalidState)
	}

	return s.orders.Delete(orderID)
}

// CorrectStatus applies an administrative status correction, keeping
// the inventory ledger consistent with the transition: correcting into
// completed takes stock first, and correcting a completed order to
// failed or refunded returns stock when restocking is enabled.
// Correcting to the current status is a no-op.
func (s *CheckoutService) CorrectStatus(orderID int, newStatus models.OrderStatus) (*models.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == newStatus {
		return order, nil
	}

	quantities := make([]repositories.ItemQuantity, 0, len(order.Items))
	for _, item := range order.Items {
		quantities = append(quantities, repositories.ItemQuantity{
			TicketTypeID: item.TicketTypeID,
			Quantity:     item.Quantity,
		})
	}

	// The status update is guarded on the status read above, so only
	// one of any concurrent corrections applies; the losers get
	// ErrInvalidState and never touch stock.
	switch newStatus {
	case models.OrderCompleted:
		// The order never went through checkout, so stock was never
		// taken for it.
		if err := s.inventory.ReserveAndDecrement(quantities); err != nil {
			return nil, err
		}

		transactionID := order.TransactionID
		if transactionID == "" {
			transactionID = models.GenerateTransactionID(s.cfg.TransactionPrefix, orderID, timeNow())
		}
		if err := s.orders.UpdateStatus(orderID, order.Status, newStatus, transactionID); err != nil {
			// Lost the correction race; give the stock back before
			// reporting, as checkout does.
			if restoreErr := s.inventory.Restore(quantities); restoreErr != nil {
				return nil, fmt.Errorf("failed to restore inventory after correction failure: %w", restoreErr)
			}
			return nil, err
		}

	case models.OrderRefunded:
		if order.Status != models.OrderCompleted {
			return nil, fmt.Errorf("%w: only completed orders can be refunded", models.ErrInvalidState)
		}
		if err := s.orders.UpdateStatus(orderID, order.Status, newStatus, ""); err != nil {
			return nil, err
		}
		if s.cfg.RestockOnRefund {
			if err := s.inventory.Restore(quantities); err != nil {
				return nil, err
			}
		}

	case models.OrderFailed:
		if err := s.orders.UpdateStatus(orderID, order.Status, newStatus, ""); err != nil {
			return nil, err
		}
		if order.Status == models.OrderCompleted && s.cfg.RestockOnRefund {
			if err := s.inventory.Restore(quantities); err != nil {
				return nil, err
			}
		}

	default:
		return nil, fmt.Errorf("%w: cannot correct order to status %q", models.ErrInvalidState, newStatus)
	}

	return s.orders.GetByID(orderID)
}

// CreateOrderItemRequest is one requested line of a direct order.
type CreateOrderItemRequest struct {
	EventID        int `json:"event_id"`
	TicketTypeID   int `json:"ticket_type_id"`
	Quantity       int `json:"quantity"`
	UnitPriceCents int `json:"unit_price_cents"`
}

// CreateOrderRequest creates a pending order in one call instead of
// through cart mutations. Submitted prices are verified against the
// catalog. Attendees may be omitted entirely, in which case placeholder
// records are generated per unit; a partial list is rejected.
type CreateOrderRequest struct {
	Items     []CreateOrderItemRequest `json:"items"`
	Attendees []models.AttendeeInput   `json:"attendees,omitempty"`
}

// priceToleranceCents absorbs rounding differences from clients that
// convert display prices back to cents.
const priceToleranceCents = 1

// CreateOrder creates a pending order directly from a full item list.
func (s *CheckoutService) CreateOrder(userID int, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, &models.ValidationError{Message: "order must have at least one item"}
	}

	// Merge duplicate ticket types so each appears as one line.
	merged := make([]repositories.NewOrderItem, 0, len(req.Items))
	index := make(map[int]int)
	for _, item := range req.Items {
		if pos, ok := index[item.TicketTypeID]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[item.TicketTypeID] = len(merged)
		merged = append(merged, repositories.NewOrderItem{
			EventID:        item.EventID,
			TicketTypeID:   item.TicketTypeID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	quantityByType := make(map[int]int)
	for i := range merged {
		ticketType, err := validateTicketSelection(s.catalog, merged[i].EventID, merged[i].TicketTypeID, merged[i].Quantity)
		if err != nil {
			return nil, err
		}

		diff := merged[i].UnitPriceCents - ticketType.PriceCents
		if diff < -priceToleranceCents || diff > priceToleranceCents {
			return nil, &models.PriceMismatchError{
				TicketTypeID:   merged[i].TicketTypeID,
				SubmittedCents: merged[i].UnitPriceCents,
				CatalogCents:   ticketType.PriceCents,
			}
		}
		// Persist the catalog price, not the submitted one.
		merged[i].UnitPriceCents = ticketType.PriceCents

		if ticketType.MaxPerOrder > 0 && merged[i].Quantity > ticketType.MaxPerOrder {
			return nil, &models.MaxPerOrderExceededError{
				TicketTypeID: merged[i].TicketTypeID,
				Requested:    merged[i].Quantity,
				Max:          ticketType.MaxPerOrder,
			}
		}

		quantityByType[merged[i].TicketTypeID] = merged[i].Quantity
	}

	attendees := req.Attendees
	if len(attendees) == 0 {
		for _, item := range merged {
			for i := 0; i < item.Quantity; i++ {
				attendees = append(attendees, models.PlaceholderAttendee(item.TicketTypeID))
			}
		}
	} else {
		attendeesByType := make(map[int]int)
		for i := range attendees {
			if err := attendees[i].Validate(); err != nil {
				return nil, err
			}
			attendeesByType[attendees[i].TicketTypeID]++
		}
		for ticketTypeID, quantity := range quantityByType {
			if attendeesByType[ticketTypeID] != quantity {
				return nil, &models.ValidationError{
					Message: fmt.Sprintf("ticket type %d requires %d attendees, got %d", ticketTypeID, quantity, attendeesByType[ticketTypeID]),
				}
			}
		}
		for ticketTypeID := range attendeesByType {
			if _, ok := quantityByType[ticketTypeID]; !ok {
				return nil, &models.ValidationError{
					Message: fmt.Sprintf("attendee references ticket type %d not present in the order", ticketTypeID),
				}
			}
		}
	}

	return s.orders.CreateWithItems(userID, merged, attendees, s.cfg.ServiceFeeBasisPoints)
}
