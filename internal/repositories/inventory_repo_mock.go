package repositories

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
)

// MockInventoryRepository is an in-memory implementation of InventoryRepository.
// The mutex plays the role of the database's conditional UPDATE: the
// check-and-decrement in Reserve runs atomically per repository.
type MockInventoryRepository struct {
	inventories map[string]models.Inventory
	movements   []models.InventoryMovement
	mu          sync.Mutex
}

// NewMockInventoryRepository creates a new instance of MockInventoryRepository.
func NewMockInventoryRepository() *MockInventoryRepository {
	return &MockInventoryRepository{
		inventories: make(map[string]models.Inventory),
	}
}

// GetByProductID returns the inventory record for a product.
func (r *MockInventoryRepository) GetByProductID(productID string) (*models.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inventory, ok := r.inventories[productID]
	if !ok {
		return nil, fmt.Errorf("inventory for product %s: %w", productID, models.ErrInventoryNotFound)
	}
	return &inventory, nil
}

// Create adds a new inventory record.
func (r *MockInventoryRepository) Create(inventory *models.Inventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inventory.ID == "" {
		inventory.ID = uuid.New().String()
	}
	r.inventories[inventory.ProductID] = *inventory
	return nil
}

// Reserve atomically moves quantity from available to reserved.
func (r *MockInventoryRepository) Reserve(productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inventory, ok := r.inventories[productID]
	if !ok {
		return fmt.Errorf("inventory for product %s: %w", productID, models.ErrInventoryNotFound)
	}
	if inventory.AvailableQuantity < quantity {
		return &models.InsufficientStockError{
			ProductID: productID,
			Requested: quantity,
			Available: inventory.AvailableQuantity,
		}
	}
	inventory.AvailableQuantity -= quantity
	inventory.ReservedQuantity += quantity
	r.inventories[productID] = inventory
	return nil
}

// Release moves quantity back from reserved to available.
func (r *MockInventoryRepository) Release(productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inventory, ok := r.inventories[productID]
	if !ok {
		return fmt.Errorf("inventory for product %s: %w", productID, models.ErrInventoryNotFound)
	}
	if inventory.ReservedQuantity < quantity {
		return fmt.Errorf("no reservation of %d units to release for product %s: %w",
			quantity, productID, models.ErrInventoryNotFound)
	}
	inventory.AvailableQuantity += quantity
	inventory.ReservedQuantity -= quantity
	r.inventories[productID] = inventory
	return nil
}

// Commit decrements reserved and total together.
func (r *MockInventoryRepository) Commit(productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inventory, ok := r.inventories[productID]
	if !ok {
		return fmt.Errorf("inventory for product %s: %w", productID, models.ErrInventoryNotFound)
	}
	if inventory.ReservedQuantity < quantity {
		return fmt.Errorf("no reservation of %d units to commit for product %s: %w",
			quantity, productID, models.ErrInventoryNotFound)
	}
	inventory.ReservedQuantity -= quantity
	inventory.TotalQuantity -= quantity
	r.inventories[productID] = inventory
	return nil
}

// Restock adds quantity to total and available.
func (r *MockInventoryRepository) Restock(productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inventory, ok := r.inventories[productID]
	if !ok {
		return fmt.Errorf("inventory for product %s: %w", productID, models.ErrInventoryNotFound)
	}
	inventory.AvailableQuantity += quantity
	inventory.TotalQuantity += quantity
	r.inventories[productID] = inventory
	return nil
}

// CreateMovement appends a movement to the in-memory ledger.
func (r *MockInventoryRepository) CreateMovement(movement *models.InventoryMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	r.movements = append(r.movements, *movement)
	return nil
}

// MovementsByOrder lists ledger entries recorded for an order.
func (r *MockInventoryRepository) MovementsByOrder(orderID string) ([]models.InventoryMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []models.InventoryMovement
	for _, m := range r.movements {
		if m.OrderID == orderID {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

// AllMovements returns the full ledger; test helper.
func (r *MockInventoryRepository) AllMovements() []models.InventoryMovement {
	r.mu.Lock()
	defer r.mu.Unlock()

	movements := make([]models.InventoryMovement, len(r.movements))
	copy(movements, r.movements)
	return movements
}

// snapshot captures current state and returns a closure restoring it.
func (r *MockInventoryRepository) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	savedInventories := make(map[string]models.Inventory, len(r.inventories))
	for id, inventory := range r.inventories {
		savedInventories[id] = inventory
	}
	savedMovements := make([]models.InventoryMovement, len(r.movements))
	copy(savedMovements, r.movements)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.inventories = savedInventories
		r.movements = savedMovements
	}
}
