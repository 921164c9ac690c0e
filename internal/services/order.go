package services

import (
	"log/slog"
	"time"

	"ticketline/internal/config"
	"ticketline/internal/models"
	"ticketline/internal/repositories"
)

// OrderService exposes the order read model and housekeeping
type OrderService struct {
	orders OrderRepository
	cfg    config.OrderConfig
}

// NewOrderService creates a new order service
func NewOrderService(orders OrderRepository, cfg config.OrderConfig) *OrderService {
	return &OrderService{
		orders: orders,
		cfg:    cfg,
	}
}

// GetOrder returns an order owned by the given user.
func (s *OrderService) GetOrder(userID, orderID int) (*models.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, models.ErrUnauthorized
	}

	return order, nil
}

// GetOrderDetails returns the denormalized display view of an order
// owned by the given user.
func (s *OrderService) GetOrderDetails(userID, orderID int) (*repositories.OrderDetails, error) {
	details, err := s.orders.GetDetails(orderID)
	if err != nil {
		return nil, err
	}

	if details.UserID != userID {
		return nil, models.ErrUnauthorized
	}

	return details, nil
}

// ListOrders returns the user's orders, optionally filtered by status,
// newest first.
func (s *OrderService) ListOrders(userID int, status models.OrderStatus, limit, offset int) ([]*models.Order, int, error) {
	if status != "" {
		if err := models.ValidateStatus(status); err != nil {
			return nil, 0, err
		}
	}

	return s.orders.Search(repositories.OrderSearchFilters{
		UserID:   userID,
		Status:   status,
		Limit:    limit,
		Offset:   offset,
		SortBy:   "created_at",
		SortDesc: true,
	})
}

// GetStatistics returns order counts and revenue for one user.
func (s *OrderService) GetStatistics(userID int) (*repositories.OrderStatistics, error) {
	return s.orders.GetStatistics(&userID)
}

// SweepExpiredCarts deletes pending orders older than the configured
// cart expiration. Pending orders hold no stock, so the sweep never
// touches the inventory ledger. Returns the number of carts removed.
func (s *OrderService) SweepExpiredCarts(logger *slog.Logger) (int, error) {
	maxAge := time.Duration(s.cfg.CartExpirationMinutes) * time.Minute

	expired, err := s.orders.GetExpiredPending(maxAge)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, order := range expired {
		if err := s.orders.Delete(order.ID); err != nil {
			logger.Error("failed to delete expired cart",
				"order_id", order.ID,
				"error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info("swept expired carts", "removed", removed)
	}

	return removed, nil
}
