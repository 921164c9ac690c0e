package services

import (
	"time"

	"ticketline/internal/models"
	"ticketline/internal/repositories"
)

// OrderRepository defines order data access methods used by services
type OrderRepository interface {
	GetByID(id int) (*models.Order, error)
	GetPendingByUser(userID int) (*models.Order, error)
	GetItem(userID, orderItemID int) (*models.OrderItem, error)
	AddItem(userID int, item repositories.NewOrderItem, attendee models.AttendeeInput, maxPerOrder, feeBasisPoints int) (*models.Order, error)
	UpdateItemQuantity(userID, orderItemID, newQuantity, maxPerOrder, feeBasisPoints int) (*models.Order, error)
	RemoveItem(userID, orderItemID, feeBasisPoints int) (*models.Order, bool, error)
	CreateWithItems(userID int, items []repositories.NewOrderItem, attendees []models.AttendeeInput, feeBasisPoints int) (*models.Order, error)
	CompletePending(orderID int, paymentMethod, transactionID string) error
	UpdateStatus(orderID int, fromStatus, toStatus models.OrderStatus, transactionID string) error
	Delete(orderID int) error
	Search(filters repositories.OrderSearchFilters) ([]*models.Order, int, error)
	GetDetails(orderID int) (*repositories.OrderDetails, error)
	GetExpiredPending(olderThan time.Duration) ([]*models.Order, error)
	GetStatistics(userID *int) (*repositories.OrderStatistics, error)
}

// InventoryLedger defines the stock operations used by services.
// Implementations must guarantee that ReserveAndDecrement is atomic
// across all items and never takes stock below zero.
type InventoryLedger interface {
	ReserveAndDecrement(items []repositories.ItemQuantity) error
	Restore(items []repositories.ItemQuantity) error
}

// CatalogRepository defines catalog reads used by services
type CatalogRepository interface {
	GetTicketType(ticketTypeID, eventID int) (*models.TicketType, error)
	GetEvent(eventID int) (*models.Event, error)
}

// TicketRepository defines ticket persistence used by services
type TicketRepository interface {
	CreateTicketsForOrder(tickets []repositories.NewTicket) ([]*models.Ticket, error)
	GetTicketsByOrder(orderID int) ([]*models.Ticket, error)
}
