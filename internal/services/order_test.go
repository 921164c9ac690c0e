package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"ticketline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_GetOrderOwnership(t *testing.T) {
	f := newCheckoutFixture(testOrderConfig())
	svc := NewOrderService(f.orders, testOrderConfig())

	order := f.cartWith(t, 1, 10, 1)

	got, err := svc.GetOrder(1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.GetOrder(2, order.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.GetOrder(1, 42)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestOrderService_GetOrderDetailsOwnership(t *testing.T) {
	f := newCheckoutFixture(testOrderConfig())
	svc := NewOrderService(f.orders, testOrderConfig())

	order := f.cartWith(t, 1, 10, 2)

	details, err := svc.GetOrderDetails(1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, details.AttendeeCount)
	require.Len(t, details.Lines, 1)
	assert.Equal(t, 2, details.Lines[0].Quantity)

	_, err = svc.GetOrderDetails(2, order.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestOrderService_ListOrders(t *testing.T) {
	f := newCheckoutFixture(testOrderConfig())
	svc := NewOrderService(f.orders, testOrderConfig())

	order := f.cartWith(t, 1, 10, 1)
	_, err := f.checkout.Checkout(1, order.ID, "card")
	require.NoError(t, err)
	f.cartWith(t, 1, 11, 1)

	// Another user's orders must not leak into the listing.
	f.cartWith(t, 2, 10, 1)

	all, total, err := svc.ListOrders(1, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	completed, total, err := svc.ListOrders(1, models.OrderCompleted, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, completed, 1)
	assert.Equal(t, order.ID, completed[0].ID)
}

func TestOrderService_ListOrdersInvalidStatus(t *testing.T) {
	f := newCheckoutFixture(testOrderConfig())
	svc := NewOrderService(f.orders, testOrderConfig())

	_, _, err := svc.ListOrders(1, "shipped", 10, 0)

	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestOrderService_GetStatistics(t *testing.T) {
	f := newCheckoutFixture(testOrderConfig())
	svc := NewOrderService(f.orders, testOrderConfig())

	order := f.cartWith(t, 1, 10, 2)
	_, err := f.checkout.Checkout(1, order.ID, "card")
	require.NoError(t, err)
	f.cartWith(t, 1, 11, 1)

	stats, err := svc.GetStatistics(1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.CompletedOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1150, stats.RevenueCents)
}

func TestOrderService_SweepExpiredCarts(t *testing.T) {
	f := newCheckoutFixture(testOrderConfig())
	svc := NewOrderService(f.orders, testOrderConfig())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stale := f.cartWith(t, 1, 10, 1)
	fresh := f.cartWith(t, 2, 10, 1)

	completedID := f.cartWith(t, 3, 10, 1).ID
	_, err := f.checkout.Checkout(3, completedID, "card")
	require.NoError(t, err)

	// Age the first cart and the completed order past the expiration.
	f.orders.mu.Lock()
	f.orders.orders[stale.ID].CreatedAt = time.Now().Add(-2 * time.Hour)
	f.orders.orders[completedID].CreatedAt = time.Now().Add(-2 * time.Hour)
	f.orders.mu.Unlock()

	removed, err := svc.SweepExpiredCarts(logger)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = f.orders.GetByID(stale.ID)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	// Fresh carts and completed orders survive the sweep.
	_, err = f.orders.GetByID(fresh.ID)
	assert.NoError(t, err)
	_, err = f.orders.GetByID(completedID)
	assert.NoError(t, err)
}

func TestInventoryService_CheckAvailability(t *testing.T) {
	catalog := newTestCatalog()
	svc := NewInventoryService(catalog)

	result, err := svc.CheckAvailability(1, 10, 5)
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Equal(t, 100, result.Remaining)
	assert.Equal(t, 6, result.MaxPerOrder)

	result, err = svc.CheckAvailability(1, 11, 20)
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Equal(t, 10, result.Remaining)

	_, err = svc.CheckAvailability(1, 99, 1)
	assert.ErrorIs(t, err, models.ErrTicketTypeNotFound)

	_, err = svc.CheckAvailability(2, 20, 1)
	assert.ErrorIs(t, err, models.ErrEventUnavailable)

	_, err = svc.CheckAvailability(1, 10, 0)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)
}
