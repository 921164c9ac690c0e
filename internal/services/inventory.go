package services

import "time"

// timeNow is swapped in tests that need a fixed clock.
var timeNow = time.Now

// AvailabilityResult reports whether a requested quantity of a ticket
// type could currently be fulfilled. It is advisory: only the ledger
// decrement at checkout is authoritative.
type AvailabilityResult struct {
	Available   bool `json:"available"`
	Remaining   int  `json:"remaining"`
	MaxPerOrder int  `json:"max_per_order"`
}

// InventoryService answers availability questions against the catalog
type InventoryService struct {
	catalog CatalogRepository
}

// NewInventoryService creates a new inventory service
func NewInventoryService(catalog CatalogRepository) *InventoryService {
	return &InventoryService{catalog: catalog}
}

// CheckAvailability reports whether a quantity of a ticket type can be
// bought right now.
func (s *InventoryService) CheckAvailability(eventID, ticketTypeID, quantity int) (*AvailabilityResult, error) {
	ticketType, err := validateTicketSelection(s.catalog, eventID, ticketTypeID, quantity)
	if err != nil {
		return nil, err
	}

	return &AvailabilityResult{
		Available:   ticketType.QuantityAvailable >= quantity,
		Remaining:   ticketType.QuantityAvailable,
		MaxPerOrder: ticketType.MaxPerOrder,
	}, nil
}
