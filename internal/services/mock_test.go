package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"ticketline/internal/models"
	"ticketline/internal/repositories"
)

// mockOrderRepository is an in-memory OrderRepository. Mutations mimic
// the transactional semantics of the real repository: caps are checked
// before anything is applied, and status transitions are guarded under
// one lock.
type mockOrderRepository struct {
	mu             sync.Mutex
	orders         map[int]*models.Order
	nextOrderID    int
	nextItemID     int
	nextAttendeeID int

	// beforeComplete and beforeUpdateStatus, when set, run at the top
	// of CompletePending and UpdateStatus so tests can interleave a
	// competing transition.
	beforeComplete     func()
	beforeUpdateStatus func()
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		orders:         make(map[int]*models.Order),
		nextOrderID:    1,
		nextItemID:     1,
		nextAttendeeID: 1,
	}
}

func (m *mockOrderRepository) recompute(o *models.Order, feeBasisPoints int) {
	subtotal := 0
	for _, item := range o.Items {
		subtotal += item.Quantity * item.UnitPriceCents
	}
	o.SubtotalCents = subtotal
	o.FeeCents = models.ComputeFeeCents(subtotal, feeBasisPoints)
	o.TotalCents = subtotal + o.FeeCents
	o.UpdatedAt = time.Now()
}

func (m *mockOrderRepository) pendingByUser(userID int) *models.Order {
	for _, o := range m.orders {
		if o.UserID == userID && o.Status == models.OrderPending {
			return o
		}
	}
	return nil
}

func (m *mockOrderRepository) GetByID(id int) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return o, nil
}

func (m *mockOrderRepository) GetPendingByUser(userID int) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o := m.pendingByUser(userID); o != nil {
		return o, nil
	}
	return nil, models.ErrOrderNotFound
}

func (m *mockOrderRepository) GetItem(userID, orderItemID int) (*models.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.pendingByUser(userID)
	if o == nil {
		return nil, models.ErrOrderItemNotFound
	}
	for _, item := range o.Items {
		if item.ID == orderItemID {
			return item, nil
		}
	}
	return nil, models.ErrOrderItemNotFound
}

func (m *mockOrderRepository) AddItem(userID int, item repositories.NewOrderItem, attendee models.AttendeeInput, maxPerOrder, feeBasisPoints int) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := m.pendingByUser(userID)
	if o == nil {
		o = &models.Order{
			ID:        m.nextOrderID,
			UserID:    userID,
			Status:    models.OrderPending,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		m.nextOrderID++
		m.orders[o.ID] = o
	}

	existing := o.ItemForTicketType(item.TicketTypeID)
	merged := item.Quantity
	if existing != nil {
		merged += existing.Quantity
	}
	if maxPerOrder > 0 && merged > maxPerOrder {
		return nil, &models.MaxPerOrderExceededError{
			TicketTypeID: item.TicketTypeID,
			Requested:    merged,
			Max:          maxPerOrder,
		}
	}

	if existing != nil {
		existing.Quantity = merged
	} else {
		o.Items = append(o.Items, &models.OrderItem{
			ID:             m.nextItemID,
			OrderID:        o.ID,
			EventID:        item.EventID,
			TicketTypeID:   item.TicketTypeID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
		m.nextItemID++
	}

	for i := 0; i < item.Quantity; i++ {
		o.Attendees = append(o.Attendees, &models.AttendeeRecord{
			ID:           m.nextAttendeeID,
			OrderID:      o.ID,
			TicketTypeID: item.TicketTypeID,
			Name:         attendee.Name,
			Email:        attendee.Email,
			Phone:        attendee.Phone,
			CreatedAt:    time.Now(),
		})
		m.nextAttendeeID++
	}

	m.recompute(o, feeBasisPoints)
	return o, nil
}

func (m *mockOrderRepository) UpdateItemQuantity(userID, orderItemID, newQuantity, maxPerOrder, feeBasisPoints int) (*models.Order, error) {
	if newQuantity < 1 {
		return nil, models.ErrInvalidQuantity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	o := m.pendingByUser(userID)
	if o == nil {
		return nil, models.ErrOrderItemNotFound
	}

	var target *models.OrderItem
	for _, item := range o.Items {
		if item.ID == orderItemID {
			target = item
			break
		}
	}
	if target == nil {
		return nil, models.ErrOrderItemNotFound
	}

	if maxPerOrder > 0 && newQuantity > maxPerOrder {
		return nil, &models.MaxPerOrderExceededError{
			TicketTypeID: target.TicketTypeID,
			Requested:    newQuantity,
			Max:          maxPerOrder,
		}
	}

	oldQuantity := target.Quantity
	target.Quantity = newQuantity

	switch {
	case newQuantity > oldQuantity:
		template := models.PlaceholderAttendee(target.TicketTypeID)
		for i := len(o.Attendees) - 1; i >= 0; i-- {
			if o.Attendees[i].TicketTypeID == target.TicketTypeID {
				template.Name = o.Attendees[i].Name
				template.Email = o.Attendees[i].Email
				template.Phone = o.Attendees[i].Phone
				break
			}
		}
		for i := 0; i < newQuantity-oldQuantity; i++ {
			o.Attendees = append(o.Attendees, &models.AttendeeRecord{
				ID:           m.nextAttendeeID,
				OrderID:      o.ID,
				TicketTypeID: target.TicketTypeID,
				Name:         template.Name,
				Email:        template.Email,
				Phone:        template.Phone,
				CreatedAt:    time.Now(),
			})
			m.nextAttendeeID++
		}

	case newQuantity < oldQuantity:
		toRemove := oldQuantity - newQuantity
		for i := len(o.Attendees) - 1; i >= 0 && toRemove > 0; i-- {
			if o.Attendees[i].TicketTypeID == target.TicketTypeID {
				o.Attendees = append(o.Attendees[:i], o.Attendees[i+1:]...)
				toRemove--
			}
		}
	}

	m.recompute(o, feeBasisPoints)
	return o, nil
}

func (m *mockOrderRepository) RemoveItem(userID, orderItemID, feeBasisPoints int) (*models.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := m.pendingByUser(userID)
	if o == nil {
		return nil, false, models.ErrOrderItemNotFound
	}

	idx := -1
	for i, item := range o.Items {
		if item.ID == orderItemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, false, models.ErrOrderItemNotFound
	}

	ticketTypeID := o.Items[idx].TicketTypeID
	o.Items = append(o.Items[:idx], o.Items[idx+1:]...)

	kept := o.Attendees[:0]
	for _, a := range o.Attendees {
		if a.TicketTypeID != ticketTypeID {
			kept = append(kept, a)
		}
	}
	o.Attendees = kept

	if len(o.Items) == 0 {
		delete(m.orders, o.ID)
		return nil, true, nil
	}

	m.recompute(o, feeBasisPoints)
	return o, false, nil
}

func (m *mockOrderRepository) CreateWithItems(userID int, items []repositories.NewOrderItem, attendees []models.AttendeeInput, feeBasisPoints int) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pendingByUser(userID) != nil {
		return nil, fmt.Errorf("%w: user already has a pending order", models.ErrInvalidState)
	}

	o := &models.Order{
		ID:        m.nextOrderID,
		UserID:    userID,
		Status:    models.OrderPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.nextOrderID++
	m.orders[o.ID] = o

	for _, item := range items {
		o.Items = append(o.Items, &models.OrderItem{
			ID:             m.nextItemID,
			OrderID:        o.ID,
			EventID:        item.EventID,
			TicketTypeID:   item.TicketTypeID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
		m.nextItemID++
	}

	for _, a := range attendees {
		o.Attendees = append(o.Attendees, &models.AttendeeRecord{
			ID:           m.nextAttendeeID,
			OrderID:      o.ID,
			TicketTypeID: a.TicketTypeID,
			Name:         a.Name,
			Email:        a.Email,
			Phone:        a.Phone,
			CreatedAt:    time.Now(),
		})
		m.nextAttendeeID++
	}

	m.recompute(o, feeBasisPoints)
	return o, nil
}

func (m *mockOrderRepository) CompletePending(orderID int, paymentMethod, transactionID string) error {
	if m.beforeComplete != nil {
		m.beforeComplete()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return models.ErrOrderNotFound
	}
	if o.Status != models.OrderPending {
		return models.ErrInvalidState
	}

	o.Status = models.OrderCompleted
	o.PaymentMethod = paymentMethod
	o.TransactionID = transactionID
	o.UpdatedAt = time.Now()
	return nil
}

func (m *mockOrderRepository) UpdateStatus(orderID int, fromStatus, toStatus models.OrderStatus, transactionID string) error {
	if m.beforeUpdateStatus != nil {
		m.beforeUpdateStatus()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return models.ErrOrderNotFound
	}
	if o.Status != fromStatus {
		return models.ErrInvalidState
	}
	o.Status = toStatus
	if transactionID != "" {
		o.TransactionID = transactionID
	}
	o.UpdatedAt = time.Now()
	return nil
}

func (m *mockOrderRepository) Delete(orderID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[orderID]; !ok {
		return models.ErrOrderNotFound
	}
	delete(m.orders, orderID)
	return nil
}

func (m *mockOrderRepository) Search(filters repositories.OrderSearchFilters) ([]*models.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*models.Order
	for _, o := range m.orders {
		if filters.UserID > 0 && o.UserID != filters.UserID {
			continue
		}
		if filters.Status != "" && o.Status != filters.Status {
			continue
		}
		matched = append(matched, o)
	}

	sort.Slice(matched, func(i, j int) bool {
		if filters.SortDesc {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filters.Offset:]
		}
	}
	if filters.Limit > 0 && len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}

	return matched, total, nil
}

func (m *mockOrderRepository) GetDetails(orderID int) (*repositories.OrderDetails, error) {
	o, err := m.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	details := &repositories.OrderDetails{Order: o, AttendeeCount: len(o.Attendees)}
	for _, item := range o.Items {
		details.Lines = append(details.Lines, repositories.OrderLine{
			TicketTypeID:   item.TicketTypeID,
			EventID:        item.EventID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return details, nil
}

func (m *mockOrderRepository) GetExpiredPending(olderThan time.Duration) ([]*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var expired []*models.Order
	for _, o := range m.orders {
		if o.Status == models.OrderPending && o.CreatedAt.Before(cutoff) {
			expired = append(expired, o)
		}
	}
	return expired, nil
}

func (m *mockOrderRepository) GetStatistics(userID *int) (*repositories.OrderStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &repositories.OrderStatistics{}
	for _, o := range m.orders {
		if userID != nil && o.UserID != *userID {
			continue
		}
		stats.TotalOrders++
		switch o.Status {
		case models.OrderPending:
			stats.PendingOrders++
		case models.OrderCompleted:
			stats.CompletedOrders++
			stats.RevenueCents += o.TotalCents
		case models.OrderFailed:
			stats.FailedOrders++
		case models.OrderRefunded:
			stats.RefundedOrders++
		}
	}
	return stats, nil
}

// mockCatalog is an in-memory CatalogRepository
type mockCatalog struct {
	mu          sync.Mutex
	events      map[int]*models.Event
	ticketTypes map[int]*models.TicketType
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		events:      make(map[int]*models.Event),
		ticketTypes: make(map[int]*models.TicketType),
	}
}

func (m *mockCatalog) addEvent(e *models.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.ID] = e
}

func (m *mockCatalog) addTicketType(tt *models.TicketType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticketTypes[tt.ID] = tt
}

func (m *mockCatalog) GetEvent(eventID int) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	return e, nil
}

func (m *mockCatalog) GetTicketType(ticketTypeID, eventID int) (*models.TicketType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tt, ok := m.ticketTypes[ticketTypeID]
	if !ok || tt.EventID != eventID {
		return nil, models.ErrTicketTypeNotFound
	}
	return tt, nil
}

// mockInventoryLedger mirrors the all-or-nothing semantics of the real
// ledger: every requested type is checked under one lock and nothing is
// decremented unless everything fits.
type mockInventoryLedger struct {
	mu           sync.Mutex
	stock        map[int]int
	reserveCalls int
	restoreCalls int
}

func newMockInventoryLedger() *mockInventoryLedger {
	return &mockInventoryLedger{stock: make(map[int]int)}
}

func (m *mockInventoryLedger) ReserveAndDecrement(items []repositories.ItemQuantity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reserveCalls++

	sorted := make([]repositories.ItemQuantity, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TicketTypeID < sorted[j].TicketTypeID })

	for _, item := range sorted {
		available, ok := m.stock[item.TicketTypeID]
		if !ok {
			return models.ErrTicketTypeNotFound
		}
		if available < item.Quantity {
			return &models.InsufficientInventoryError{
				TicketTypeID: item.TicketTypeID,
				Requested:    item.Quantity,
				Available:    available,
			}
		}
	}

	for _, item := range sorted {
		m.stock[item.TicketTypeID] -= item.Quantity
	}
	return nil
}

func (m *mockInventoryLedger) Restore(items []repositories.ItemQuantity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreCalls++

	for _, item := range items {
		if _, ok := m.stock[item.TicketTypeID]; !ok {
			return models.ErrTicketTypeNotFound
		}
		m.stock[item.TicketTypeID] += item.Quantity
	}
	return nil
}

func (m *mockInventoryLedger) remaining(ticketTypeID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[ticketTypeID]
}

// mockTicketRepository is an in-memory TicketRepository
type mockTicketRepository struct {
	mu         sync.Mutex
	tickets    map[int][]*models.Ticket
	nextID     int
	failCreate bool
}

func newMockTicketRepository() *mockTicketRepository {
	return &mockTicketRepository{tickets: make(map[int][]*models.Ticket), nextID: 1}
}

func (m *mockTicketRepository) CreateTicketsForOrder(tickets []repositories.NewTicket) ([]*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCreate {
		return nil, fmt.Errorf("ticket store unavailable")
	}

	var created []*models.Ticket
	for _, t := range tickets {
		ticket := &models.Ticket{
			ID:           m.nextID,
			OrderID:      t.OrderID,
			TicketTypeID: t.TicketTypeID,
			AttendeeID:   t.AttendeeID,
			QRCode:       t.QRCode,
			Status:       models.TicketActive,
			CreatedAt:    time.Now(),
		}
		m.nextID++
		m.tickets[t.OrderID] = append(m.tickets[t.OrderID], ticket)
		created = append(created, ticket)
	}
	return created, nil
}

func (m *mockTicketRepository) GetTicketsByOrder(orderID int) ([]*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tickets[orderID], nil
}
