package repositories

import (
	"database/sql"
	"fmt"

	"ticketline/internal/models"
)

// TicketRepository handles catalog reads and issued ticket persistence.
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// GetTicketType retrieves a ticket type scoped to its event.
func (r *TicketRepository) GetTicketType(ticketTypeID, eventID int) (*models.TicketType, error) {
	tt := &models.TicketType{}
	err := r.db.QueryRow(`
		SELECT id, event_id, name, price_cents, quantity_available, max_per_order, created_at, updated_at
		FROM ticket_types
		WHERE id = $1 AND event_id = $2`,
		ticketTypeID, eventID).Scan(
		&tt.ID, &tt.EventID, &tt.Name, &tt.PriceCents, &tt.QuantityAvailable, &tt.MaxPerOrder, &tt.CreatedAt, &tt.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTicketTypeNotFound
		}
		return nil, fmt.Errorf("failed to get ticket type: %w", err)
	}
	return tt, nil
}

// GetEvent retrieves an event by ID.
func (r *TicketRepository) GetEvent(eventID int) (*models.Event, error) {
	event := &models.Event{}
	err := r.db.QueryRow(`
		SELECT id, title, status, sale_start, sale_end, starts_at, created_at
		FROM events
		WHERE id = $1`,
		eventID).Scan(
		&event.ID, &event.Title, &event.Status, &event.SaleStart, &event.SaleEnd, &event.StartsAt, &event.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// NewTicket is the input for persisting one issued ticket.
type NewTicket struct {
	OrderID      int
	TicketTypeID int
	AttendeeID   int
	QRCode       string
}

// CreateTicketsForOrder persists a batch of issued tickets in one
// transaction so an order never ends up with a partial set.
func (r *TicketRepository) CreateTicketsForOrder(tickets []NewTicket) ([]*models.Ticket, error) {
	if len(tickets) == 0 {
		return nil, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	created := make([]*models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		ticket := &models.Ticket{
			OrderID:      t.OrderID,
			TicketTypeID: t.TicketTypeID,
			AttendeeID:   t.AttendeeID,
			QRCode:       t.QRCode,
			Status:       models.TicketActive,
		}
		err := tx.QueryRow(`
			INSERT INTO tickets (order_id, ticket_type_id, attendee_id, qr_code, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`,
			t.OrderID, t.TicketTypeID, t.AttendeeID, t.QRCode, models.TicketActive).Scan(&ticket.ID, &ticket.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert ticket: %w", err)
		}
		created = append(created, ticket)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ticket creation: %w", err)
	}

	return created, nil
}

// GetTicketsByOrder retrieves the tickets issued for an order.
func (r *TicketRepository) GetTicketsByOrder(orderID int) ([]*models.Ticket, error) {
	rows, err := r.db.Query(`
		SELECT id, order_id, ticket_type_id, attendee_id, qr_code, status, created_at
		FROM tickets
		WHERE order_id = $1
		ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket := &models.Ticket{}
		err := rows.Scan(&ticket.ID, &ticket.OrderID, &ticket.TicketTypeID, &ticket.AttendeeID, &ticket.QRCode, &ticket.Status, &ticket.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}
