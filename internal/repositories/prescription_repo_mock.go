package repositories

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
)

// MockPrescriptionRepository is an in-memory implementation of PrescriptionRepository.
type MockPrescriptionRepository struct {
	prescriptions map[string]models.Prescription // keyed by order ID
	orders        *MockOrderRepository           // optional, to mirror the link onto stored orders
	mu            sync.RWMutex
}

// NewMockPrescriptionRepository creates a new instance of MockPrescriptionRepository.
// orders may be nil when prescription/order linkage is not under test.
func NewMockPrescriptionRepository(orders *MockOrderRepository) *MockPrescriptionRepository {
	return &MockPrescriptionRepository{
		prescriptions: make(map[string]models.Prescription),
		orders:        orders,
	}
}

// Create stores the prescription and mirrors it onto the owning order.
func (r *MockPrescriptionRepository) Create(prescription *models.Prescription) error {
	r.mu.Lock()
	if prescription.ID == "" {
		prescription.ID = uuid.New().String()
	}
	for i := range prescription.Items {
		if prescription.Items[i].ID == "" {
			prescription.Items[i].ID = uuid.New().String()
		}
		prescription.Items[i].PrescriptionID = prescription.ID
	}
	r.prescriptions[prescription.OrderID] = *prescription
	r.mu.Unlock()

	if r.orders != nil {
		r.orders.attachPrescription(*prescription)
	}
	return nil
}

// GetByOrderID returns the prescription attached to an order, if any.
func (r *MockPrescriptionRepository) GetByOrderID(orderID string) (*models.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prescription, ok := r.prescriptions[orderID]
	if !ok {
		return nil, fmt.Errorf("prescription for order %s: %w", orderID, models.ErrPrescriptionNotFound)
	}
	return &prescription, nil
}

// Update modifies a stored prescription.
func (r *MockPrescriptionRepository) Update(prescription *models.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.prescriptions[prescription.OrderID]; !ok {
		return fmt.Errorf("prescription for order %s: %w", prescription.OrderID, models.ErrPrescriptionNotFound)
	}
	r.prescriptions[prescription.OrderID] = *prescription
	return nil
}

// snapshot captures current state and returns a closure restoring it.
func (r *MockPrescriptionRepository) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := make(map[string]models.Prescription, len(r.prescriptions))
	for id, p := range r.prescriptions {
		saved[id] = p
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.prescriptions = saved
	}
}
