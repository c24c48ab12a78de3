package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

func copyOrder(order models.Order) models.Order {
	copied := order
	copied.Items = make([]models.OrderItem, len(order.Items))
	copy(copied.Items, order.Items)
	if order.Prescription != nil {
		p := *order.Prescription
		p.Items = make([]models.PrescriptionItem, len(order.Prescription.Items))
		copy(p.Items, order.Prescription.Items)
		copied.Prescription = &p
	}
	return copied
}

// List returns orders matching the filter, newest first.
func (r *MockOrderRepository) List(filter OrderFilter) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.CustomerID != "" && order.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		matched = append(matched, copyOrder(order))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return []models.Order{}, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, models.ErrOrderNotFound)
	}
	copied := copyOrder(order)
	return &copied, nil
}

// Create adds a new order with its items.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = copyOrder(*order)
	return nil
}

// UpdateStatus applies lifecycle fields with a compare-and-swap on the prior
// status, mirroring the conditional UPDATE of the GORM implementation.
func (r *MockOrderRepository) UpdateStatus(order *models.Order, from models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return fmt.Errorf("order with ID %s for status update: %w", order.ID, models.ErrOrderNotFound)
	}
	if stored.Status != from {
		return fmt.Errorf("order %s changed concurrently: %w", order.ID,
			&models.InvalidTransitionError{From: from, To: order.Status})
	}
	stored.Status = order.Status
	stored.PaymentStatus = order.PaymentStatus
	stored.ShippedAt = order.ShippedAt
	stored.DeliveredAt = order.DeliveredAt
	stored.UpdatedAt = time.Now()
	r.orders[order.ID] = stored
	return nil
}

// attachPrescription links a prescription to the stored order so subsequent
// reads see it; used by the mock prescription repository.
func (r *MockOrderRepository) attachPrescription(p models.Prescription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[p.OrderID]
	if !ok {
		return
	}
	order.Prescription = &p
	r.orders[p.OrderID] = order
}

// snapshot captures current state and returns a closure restoring it.
func (r *MockOrderRepository) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := make(map[string]models.Order, len(r.orders))
	for id, order := range r.orders {
		saved[id] = copyOrder(order)
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.orders = saved
	}
}
