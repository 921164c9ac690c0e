package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ticketline/internal/models"

	"github.com/lib/pq"
)

// OrderRepository handles order, order item and attendee persistence.
// Every mutating method runs as a single transaction so no partial
// state (an item without its attendees, a stale total) is ever visible
// to a concurrent reader.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// NewOrderItem is the input for adding a line to an order.
type NewOrderItem struct {
	EventID        int
	TicketTypeID   int
	Quantity       int
	UnitPriceCents int
}

// OrderSearchFilters represents filters for order search
type OrderSearchFilters struct {
	UserID   int                // Filter by user
	Status   models.OrderStatus // Filter by status
	DateFrom *time.Time         // Filter orders created from this date
	DateTo   *time.Time         // Filter orders created before this date
	Limit    int                // Number of results to return
	Offset   int                // Number of results to skip
	SortBy   string             // "created_at", "total_cents", "status"
	SortDesc bool               // Sort in descending order
}

// OrderLine is one denormalized display row of an order.
type OrderLine struct {
	TicketTypeID   int       `json:"ticket_type_id"`
	TicketTypeName string    `json:"ticket_type_name"`
	EventID        int       `json:"event_id"`
	EventTitle     string    `json:"event_title"`
	EventStartsAt  time.Time `json:"event_starts_at"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int       `json:"unit_price_cents"`
}

// OrderDetails is the read-model view of an order for display.
type OrderDetails struct {
	*models.Order
	Lines         []OrderLine `json:"lines"`
	AttendeeCount int         `json:"attendee_count"`
	TicketCount   int         `json:"ticket_count"`
}

// OrderStatistics summarizes orders by status.
type OrderStatistics struct {
	TotalOrders     int `json:"total_orders"`
	PendingOrders   int `json:"pending_orders"`
	CompletedOrders int `json:"completed_orders"`
	FailedOrders    int `json:"failed_orders"`
	RefundedOrders  int `json:"refunded_orders"`
	RevenueCents    int `json:"revenue_cents"` // completed orders only
}

const orderColumns = `id, user_id, status, payment_method, transaction_id, subtotal_cents, fee_cents, total_cents, created_at, updated_at`

func scanOrder(row *sql.Row) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.PaymentMethod,
		&order.TransactionID,
		&order.SubtotalCents,
		&order.FeeCents,
		&order.TotalCents,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetByID retrieves an order with its items and attendees.
func (r *OrderRepository) GetByID(id int) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRow(
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := r.loadItemsAndAttendees(order); err != nil {
		return nil, err
	}

	return order, nil
}

// GetPendingByUser retrieves the user's cart (single pending order).
func (r *OrderRepository) GetPendingByUser(userID int) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRow(
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 AND status = 'pending'`, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get pending order: %w", err)
	}

	if err := r.loadItemsAndAttendees(order); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) loadItemsAndAttendees(order *models.Order) error {
	itemRows, err := r.db.Query(`
		SELECT id, order_id, event_id, ticket_type_id, quantity, unit_price_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC`, order.ID)
	if err != nil {
		return fmt.Errorf("failed to get order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item := &models.OrderItem{}
		err := itemRows.Scan(&item.ID, &item.OrderID, &item.EventID, &item.TicketTypeID, &item.Quantity, &item.UnitPriceCents)
		if err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	attendeeRows, err := r.db.Query(`
		SELECT id, order_id, ticket_type_id, name, email, phone, created_at
		FROM attendees
		WHERE order_id = $1
		ORDER BY id ASC`, order.ID)
	if err != nil {
		return fmt.Errorf("failed to get attendees: %w", err)
	}
	defer attendeeRows.Close()

	for attendeeRows.Next() {
		a := &models.AttendeeRecord{}
		err := attendeeRows.Scan(&a.ID, &a.OrderID, &a.TicketTypeID, &a.Name, &a.Email, &a.Phone, &a.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to scan attendee: %w", err)
		}
		order.Attendees = append(order.Attendees, a)
	}
	if err := attendeeRows.Err(); err != nil {
		return fmt.Errorf("error iterating attendees: %w", err)
	}

	return nil
}

// GetItem retrieves one order item from the user's pending order.
func (r *OrderRepository) GetItem(userID, orderItemID int) (*models.OrderItem, error) {
	item := &models.OrderItem{}
	err := r.db.QueryRow(`
		SELECT oi.id, oi.order_id, oi.event_id, oi.ticket_type_id, oi.quantity, oi.unit_price_cents
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE oi.id = $1 AND o.user_id = $2 AND o.status = 'pending'`,
		orderItemID, userID).Scan(
		&item.ID, &item.OrderID, &item.EventID, &item.TicketTypeID, &item.Quantity, &item.UnitPriceCents)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrOrderItemNotFound
		}
		return nil, fmt.Errorf("failed to get order item: %w", err)
	}
	return item, nil
}

// AddItem merges a line into the user's pending order, creating the
// order when none exists, and appends one attendee record per purchased
// unit. The per-order cap is enforced on the merged quantity inside the
// transaction, so racing additions cannot slip past it.
func (r *OrderRepository) AddItem(userID int, item NewOrderItem, attendee models.AttendeeInput, maxPerOrder, feeBasisPoints int) (*models.Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The partial unique index on (user_id) WHERE status='pending'
	// guarantees a single cart; the insert is a no-op when one exists.
	_, err = tx.Exec(`
		INSERT INTO orders (user_id, status)
		VALUES ($1, 'pending')
		ON CONFLICT (user_id) WHERE status = 'pending' DO NOTHING`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pending order: %w", err)
	}

	// Lock the cart row to serialize mutations against it.
	var orderID int
	err = tx.QueryRow(`
		SELECT id FROM orders
		WHERE user_id = $1 AND status = 'pending'
		FOR UPDATE`, userID).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock pending order: %w", err)
	}

	var mergedQuantity int
	err = tx.QueryRow(`
		INSERT INTO order_items (order_id, event_id, ticket_type_id, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id, ticket_type_id)
		DO UPDATE SET quantity = order_items.quantity + EXCLUDED.quantity
		RETURNING quantity`,
		orderID, item.EventID, item.TicketTypeID, item.Quantity, item.UnitPriceCents).Scan(&mergedQuantity)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert order item: %w", err)
	}

	if maxPerOrder > 0 && mergedQuantity > maxPerOrder {
		return nil, &models.MaxPerOrderExceededError{
			TicketTypeID: item.TicketTypeID,
			Requested:    mergedQuantity,
			Max:          maxPerOrder,
		}
	}

	for i := 0; i < item.Quantity; i++ {
		_, err = tx.Exec(`
			INSERT INTO attendees (order_id, ticket_type_id, name, email, phone)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, item.TicketTypeID, attendee.Name, attendee.Email, attendee.Phone)
		if err != nil {
			return nil, fmt.Errorf("failed to insert attendee: %w", err)
		}
	}

	if err := r.recomputeTotals(tx, orderID, feeBasisPoints); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cart addition: %w", err)
	}

	return r.GetByID(orderID)
}

// UpdateItemQuantity changes a line's quantity and keeps the attendee
// records in lockstep: an increase clones the most recent attendee for
// the ticket type (or a placeholder), a decrease removes the newest
// records. The unit price is never touched.
func (r *OrderRepository) UpdateItemQuantity(userID, orderItemID, newQuantity, maxPerOrder, feeBasisPoints int) (*models.Order, error) {
	if newQuantity < 1 {
		return nil, models.ErrInvalidQuantity
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var orderID, ticketTypeID, oldQuantity int
	err = tx.QueryRow(`
		SELECT o.id, oi.ticket_type_id, oi.quantity
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE oi.id = $1 AND o.user_id = $2 AND o.status = 'pending'
		FOR UPDATE OF o, oi`,
		orderItemID, userID).Scan(&orderID, &ticketTypeID, &oldQuantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrOrderItemNotFound
		}
		return nil, fmt.Errorf("failed to lock order item: %w", err)
	}

	if maxPerOrder > 0 && newQuantity > maxPerOrder {
		return nil, &models.MaxPerOrderExceededError{
			TicketTypeID: ticketTypeID,
			Requested:    newQuantity,
			Max:          maxPerOrder,
		}
	}

	_, err = tx.Exec(`UPDATE order_items SET quantity = $2 WHERE id = $1`, orderItemID, newQuantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update order item quantity: %w", err)
	}

	switch {
	case newQuantity > oldQuantity:
		template := models.PlaceholderAttendee(ticketTypeID)
		err = tx.QueryRow(`
			SELECT name, email, phone FROM attendees
			WHERE order_id = $1 AND ticket_type_id = $2
			ORDER BY id DESC LIMIT 1`,
			orderID, ticketTypeID).Scan(&template.Name, &template.Email, &template.Phone)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to load attendee template: %w", err)
		}

		for i := 0; i < newQuantity-oldQuantity; i++ {
			_, err = tx.Exec(`
				INSERT INTO attendees (order_id, ticket_type_id, name, email, phone)
				VALUES ($1, $2, $3, $4, $5)`,
				orderID, ticketTypeID, template.Name, template.Email, template.Phone)
			if err != nil {
				return nil, fmt.Errorf("failed to insert attendee: %w", err)
			}
		}

	case newQuantity < oldQuantity:
		_, err = tx.Exec(`
			DELETE FROM attendees
			WHERE id IN (
				SELECT id FROM attendees
				WHERE order_id = $1 AND ticket_type_id = $2
				ORDER BY id DESC
				LIMIT $3
			)`, orderID, ticketTypeID, oldQuantity-newQuantity)
		if err != nil {
			return nil, fmt.Errorf("failed to remove attendees: %w", err)
		}
	}

	if err := r.recomputeTotals(tx, orderID, feeBasisPoints); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit quantity update: %w", err)
	}

	return r.GetByID(orderID)
}

// RemoveItem deletes a line together with all attendee records of its
// ticket type. An order emptied by the removal is deleted outright; the
// second return value reports that case.
func (r *OrderRepository) RemoveItem(userID, orderItemID, feeBasisPoints int) (*models.Order, bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var orderID, ticketTypeID int
	err = tx.QueryRow(`
		SELECT o.id, oi.ticket_type_id
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE oi.id = $1 AND o.user_id = $2 AND o.status = 'pending'
		FOR UPDATE OF o, oi`,
		orderItemID, userID).Scan(&orderID, &ticketTypeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, models.ErrOrderItemNotFound
		}
		return nil, false, fmt.Errorf("failed to lock order item: %w", err)
	}

	_, err = tx.Exec(`DELETE FROM attendees WHERE order_id = $1 AND ticket_type_id = $2`, orderID, ticketTypeID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to delete attendees: %w", err)
	}

	_, err = tx.Exec(`DELETE FROM order_items WHERE id = $1`, orderItemID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to delete order item: %w", err)
	}

	var remaining int
	err = tx.QueryRow(`SELECT COUNT(*) FROM order_items WHERE order_id = $1`, orderID).Scan(&remaining)
	if err != nil {
		return nil, false, fmt.Errorf("failed to count remaining items: %w", err)
	}

	// An empty pending order has no reason to exist.
	if remaining == 0 {
		if _, err := tx.Exec(`DELETE FROM orders WHERE id = $1`, orderID); err != nil {
			return nil, false, fmt.Errorf("failed to delete emptied order: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("failed to commit item removal: %w", err)
		}
		return nil, true, nil
	}

	if err := r.recomputeTotals(tx, orderID, feeBasisPoints); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit item removal: %w", err)
	}

	order, err := r.GetByID(orderID)
	return order, false, err
}

// CreateWithItems writes a brand-new pending order with all its items
// and attendees in one step.
func (r *OrderRepository) CreateWithItems(userID int, items []NewOrderItem, attendees []models.AttendeeInput, feeBasisPoints int) (*models.Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var orderID int
	err = tx.QueryRow(`
		INSERT INTO orders (user_id, status)
		VALUES ($1, 'pending')
		RETURNING id`, userID).Scan(&orderID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, fmt.Errorf("%w: user already has a pending order", models.ErrInvalidState)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range items {
		_, err = tx.Exec(`
			INSERT INTO order_items (order_id, event_id, ticket_type_id, quantity, unit_price_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, item.EventID, item.TicketTypeID, item.Quantity, item.UnitPriceCents)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	for _, a := range attendees {
		_, err = tx.Exec(`
			INSERT INTO attendees (order_id, ticket_type_id, name, email, phone)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, a.TicketTypeID, a.Name, a.Email, a.Phone)
		if err != nil {
			return nil, fmt.Errorf("failed to insert attendee: %w", err)
		}
	}

	if err := r.recomputeTotals(tx, orderID, feeBasisPoints); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order creation: %w", err)
	}

	return r.GetByID(orderID)
}

// CompletePending flips a pending order to completed. The status guard
// in the WHERE clause makes the transition happen exactly once: a
// second caller sees zero rows and gets ErrInvalidState.
func (r *OrderRepository) CompletePending(orderID int, paymentMethod, transactionID string) error {
	result, err := r.db.Exec(`
		UPDATE orders
		SET status = 'completed', payment_method = $2, transaction_id = $3, updated_at = $4
		WHERE id = $1 AND status = 'pending'`,
		orderID, paymentMethod, transactionID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check order existence: %w", err)
		}
		if !exists {
			return models.ErrOrderNotFound
		}
		return models.ErrInvalidState
	}

	return nil
}

// UpdateStatus writes an administrative status correction, guarded on
// the status the caller observed so concurrent corrections cannot both
// apply. Zero rows means the order is gone (ErrOrderNotFound) or was
// corrected by someone else first (ErrInvalidState). The caller is
// responsible for any inventory interaction the transition implies.
func (r *OrderRepository) UpdateStatus(orderID int, fromStatus, toStatus models.OrderStatus, transactionID string) error {
	var result sql.Result
	var err error

	if transactionID != "" {
		result, err = r.db.Exec(`
			UPDATE orders SET status = $3, transaction_id = $4, updated_at = $5 WHERE id = $1 AND status = $2`,
			orderID, fromStatus, toStatus, transactionID, time.Now())
	} else {
		result, err = r.db.Exec(`
			UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
			orderID, fromStatus, toStatus, time.Now())
	}
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check order existence: %w", err)
		}
		if !exists {
			return models.ErrOrderNotFound
		}
		return models.ErrInvalidState
	}

	return nil
}

// Delete removes an order together with its items and attendees.
func (r *OrderRepository) Delete(orderID int) error {
	result, err := r.db.Exec(`DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrOrderNotFound
	}

	return nil
}

func (r *OrderRepository) recomputeTotals(tx *sql.Tx, orderID, feeBasisPoints int) error {
	var subtotal int
	err := tx.QueryRow(`
		SELECT COALESCE(SUM(quantity * unit_price_cents), 0)
		FROM order_items
		WHERE order_id = $1`, orderID).Scan(&subtotal)
	if err != nil {
		return fmt.Errorf("failed to compute subtotal: %w", err)
	}

	fee := models.ComputeFeeCents(subtotal, feeBasisPoints)

	_, err = tx.Exec(`
		UPDATE orders
		SET subtotal_cents = $2, fee_cents = $3, total_cents = $4, updated_at = $5
		WHERE id = $1`,
		orderID, subtotal, fee, subtotal+fee, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update order totals: %w", err)
	}

	return nil
}

// Search searches for orders with filters and pagination
func (r *OrderRepository) Search(filters OrderSearchFilters) ([]*models.Order, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filters.UserID > 0 {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, filters.UserID)
		argIndex++
	}

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filters.Status)
		argIndex++
	}

	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *filters.DateFrom)
		argIndex++
	}

	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIndex))
		args = append(args, *filters.DateTo)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := "ORDER BY created_at DESC"
	if filters.SortBy != "" {
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}

		switch filters.SortBy {
		case "created_at", "total_cents", "status":
			orderBy = fmt.Sprintf("ORDER BY %s %s", filters.SortBy, direction)
		}
	}

	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders %s", whereClause)
	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get order count: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, orderBy, argIndex, argIndex+1)

	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&order.PaymentMethod,
			&order.TransactionID,
			&order.SubtotalCents,
			&order.FeeCents,
			&order.TotalCents,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, total, nil
}

// GetDetails assembles the denormalized display view of an order by
// joining its lines with ticket type and event metadata. Read only.
func (r *OrderRepository) GetDetails(orderID int) (*OrderDetails, error) {
	order, err := r.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	details := &OrderDetails{Order: order}

	rows, err := r.db.Query(`
		SELECT oi.ticket_type_id, tt.name, oi.event_id, e.title, e.starts_at, oi.quantity, oi.unit_price_cents
		FROM order_items oi
		JOIN ticket_types tt ON oi.ticket_type_id = tt.id
		JOIN events e ON oi.event_id = e.id
		WHERE oi.order_id = $1
		ORDER BY oi.id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line OrderLine
		err := rows.Scan(&line.TicketTypeID, &line.TicketTypeName, &line.EventID, &line.EventTitle, &line.EventStartsAt, &line.Quantity, &line.UnitPriceCents)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		details.Lines = append(details.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}

	details.AttendeeCount = len(order.Attendees)

	err = r.db.QueryRow(`SELECT COUNT(*) FROM tickets WHERE order_id = $1`, orderID).Scan(&details.TicketCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}

	return details, nil
}

// GetExpiredPending retrieves pending orders older than the given age.
// Pending orders hold no reserved stock, so sweeping them is pure
// cleanup.
func (r *OrderRepository) GetExpiredPending(olderThan time.Duration) ([]*models.Order, error) {
	cutoff := time.Now().Add(-olderThan)

	rows, err := r.db.Query(`
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&order.PaymentMethod,
			&order.TransactionID,
			&order.SubtotalCents,
			&order.FeeCents,
			&order.TotalCents,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expired order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expired orders: %w", err)
	}

	return orders, nil
}

// GetStatistics retrieves order statistics, optionally for one user.
func (r *OrderRepository) GetStatistics(userID *int) (*OrderStatistics, error) {
	whereClause := ""
	var args []interface{}
	if userID != nil {
		whereClause = "WHERE user_id = $1"
		args = append(args, *userID)
	}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS total_orders,
			COUNT(CASE WHEN status = 'pending' THEN 1 END) AS pending_orders,
			COUNT(CASE WHEN status = 'completed' THEN 1 END) AS completed_orders,
			COUNT(CASE WHEN status = 'failed' THEN 1 END) AS failed_orders,
			COUNT(CASE WHEN status = 'refunded' THEN 1 END) AS refunded_orders,
			COALESCE(SUM(CASE WHEN status = 'completed' THEN total_cents END), 0) AS revenue_cents
		FROM orders
		%s`, whereClause)

	stats := &OrderStatistics{}
	err := r.db.QueryRow(query, args...).Scan(
		&stats.TotalOrders,
		&stats.PendingOrders,
		&stats.CompletedOrders,
		&stats.FailedOrders,
		&stats.RefundedOrders,
		&stats.RevenueCents,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get order statistics: %w", err)
	}

	return stats, nil
}
