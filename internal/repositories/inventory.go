package repositories

import (
	"database/sql"
	"fmt"
	"sort"

	"ticketline/internal/models"
)

// InventoryRepository is the ledger of record for ticket availability.
// Decrements are conditional updates guarded by the remaining quantity,
// so the database rejects any write that would take stock below zero.
type InventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// ItemQuantity pairs a ticket type with a unit count.
type ItemQuantity struct {
	TicketTypeID int
	Quantity     int
}

// ReserveAndDecrement atomically takes stock for every requested ticket
// type. Either all decrements succeed or none do: the first type with
// too little stock rolls back the whole transaction and is reported in
// an InsufficientInventoryError. Ticket types are processed in id order
// so concurrent multi-type checkouts cannot deadlock on each other.
func (r *InventoryRepository) ReserveAndDecrement(items []ItemQuantity) error {
	if len(items) == 0 {
		return nil
	}

	sorted := make([]ItemQuantity, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TicketTypeID < sorted[j].TicketTypeID
	})

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range sorted {
		result, err := tx.Exec(`
			UPDATE ticket_types
			SET quantity_available = quantity_available - $2, updated_at = NOW()
			WHERE id = $1 AND quantity_available >= $2`,
			item.TicketTypeID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement inventory: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			var available int
			err := tx.QueryRow(`SELECT quantity_available FROM ticket_types WHERE id = $1`, item.TicketTypeID).Scan(&available)
			if err != nil {
				if err == sql.ErrNoRows {
					return models.ErrTicketTypeNotFound
				}
				return fmt.Errorf("failed to read remaining inventory: %w", err)
			}
			return &models.InsufficientInventoryError{
				TicketTypeID: item.TicketTypeID,
				Requested:    item.Quantity,
				Available:    available,
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit inventory reservation: %w", err)
	}

	return nil
}

// Restore returns previously taken stock to the pool, e.g. when a
// completed order is refunded with restocking enabled.
func (r *InventoryRepository) Restore(items []ItemQuantity) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		result, err := tx.Exec(`
			UPDATE ticket_types
			SET quantity_available = quantity_available + $2, updated_at = NOW()
			WHERE id = $1`,
			item.TicketTypeID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to restore inventory: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return models.ErrTicketTypeNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit inventory restore: %w", err)
	}

	return nil
}
